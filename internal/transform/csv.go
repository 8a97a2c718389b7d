// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/pdiddy/kb-export/pkg/types"
)

const delimiter = ","

// RenderCSV renders records as delimited text. The header is the first
// record's field names in source order; every record, the first included,
// yields one row with a cell per header field. Fields absent from a record
// render as empty cells and fields the first record lacks are dropped.
// Lines are joined with "\n" without a trailing newline. An empty input
// renders as the empty string.
func RenderCSV(records []types.Record) string {
	if len(records) == 0 {
		return ""
	}

	header := records[0].Fields()
	lines := make([]string, 0, len(records)+1)

	cells := make([]string, len(header))
	for i, name := range header {
		cells[i] = escapeCell(name)
	}
	lines = append(lines, strings.Join(cells, delimiter))

	for _, rec := range records {
		cells := make([]string, len(header))
		for i, name := range header {
			v, _ := rec.Value(name)
			cells[i] = escapeCell(Stringify(v))
		}
		lines = append(lines, strings.Join(cells, delimiter))
	}

	return strings.Join(lines, "\n")
}

// escapeCell quotes s when it contains the delimiter, a double quote, or a
// line break, doubling any embedded quotes.
func escapeCell(s string) string {
	if !strings.ContainsAny(s, delimiter+"\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Stringify converts a decoded JSON value to cell text. nil becomes the
// empty string, scalars use their plain form, and nested objects or arrays
// are rendered as compact JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
