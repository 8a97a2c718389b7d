// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/pdiddy/kb-export/pkg/types"
)

// ISOTime is the timestamp layout used in the summary and the log:
// ISO-8601 UTC with milliseconds.
const ISOTime = "2006-01-02T15:04:05.000Z07:00"

// Bucket keys for categorical values that carry no text of their own.
const (
	KeyAbsent = "undefined"
	KeyNull   = "null"
)

// Summarize reduces records to a Summary in a single pass. The fields
// argument names the designated categorical, flag, and date fields; now
// becomes the export date.
//
// Counts do not depend on record order. For the date range, a value equal
// to the current earliest or latest instant does not replace it, so the
// literal string kept for a tie is the first one encountered.
func Summarize(records []types.Record, fields types.FieldMap, now time.Time) types.Summary {
	s := types.Summary{
		ExportDate:      now.UTC().Format(ISOTime),
		TotalArticles:   len(records),
		ArticleTypes:    types.NewTally(),
		Languages:       types.NewTally(),
		PublishStatuses: types.NewTally(),
	}

	var earliest, latest time.Time
	for _, rec := range records {
		s.ArticleTypes.Add(bucketKey(rec, fields.ArticleType))
		s.Languages.Add(bucketKey(rec, fields.Language))
		s.PublishStatuses.Add(bucketKey(rec, fields.PublishStatus))

		if flagSet(rec, fields.VisibleInPkb) {
			s.VisibilityStats.VisibleInPkb++
		}
		if flagSet(rec, fields.VisibleInCsp) {
			s.VisibilityStats.VisibleInCsp++
		}
		if flagSet(rec, fields.VisibleInPrm) {
			s.VisibilityStats.VisibleInPrm++
		}

		raw, t, ok := recordDate(rec, fields.CreatedDate)
		if !ok {
			continue
		}
		if s.DateRange.Earliest == nil || t.Before(earliest) {
			earliest = t
			s.DateRange.Earliest = &raw
		}
		if s.DateRange.Latest == nil || t.After(latest) {
			latest = t
			s.DateRange.Latest = &raw
		}
	}

	return s
}

// bucketKey returns the tally key for a categorical field. An absent field
// is KeyAbsent and a JSON null is KeyNull, matching how a JavaScript object
// key stringifies undefined and null.
func bucketKey(rec types.Record, name string) string {
	v, ok := rec.Value(name)
	if !ok {
		return KeyAbsent
	}
	if v == nil {
		return KeyNull
	}
	return Stringify(v)
}

// flagSet reports whether a flag field is truthy: true, a non-zero number,
// a non-empty string, or any object or array.
func flagSet(rec types.Record, name string) bool {
	v, ok := rec.Value(name)
	if !ok {
		return false
	}
	return Truthy(v)
}

// Truthy applies loose boolean semantics to a decoded JSON value.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0 && !math.IsNaN(val)
	case map[string]any, []any:
		return true
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// recordDate parses the named date field. Only string values are
// considered; anything unparseable is skipped.
func recordDate(rec types.Record, name string) (string, time.Time, bool) {
	v, ok := rec.Value(name)
	if !ok {
		return "", time.Time{}, false
	}
	raw, ok := v.(string)
	if !ok {
		return "", time.Time{}, false
	}
	t, err := ParseDate(raw)
	if err != nil {
		return "", time.Time{}, false
	}
	return raw, t, true
}

// isoLayouts are the ISO-8601 forms tried before falling back to cast.
// Fractional seconds are accepted after any seconds field.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate parses an ISO-8601 date or date-time, including the Salesforce
// form 2006-01-02T15:04:05.000+0000 and the reduced forms 2006-01 and 2006.
// Values without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return cast.StringToDate(s)
}
