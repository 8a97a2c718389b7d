// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.yaml.in/yaml/v3"
)

// Summary holds aggregate statistics computed over all records in one
// export run. It is created fresh on every run and never persisted
// between runs.
type Summary struct {
	// ExportDate is the time the summary was computed, ISO-8601 UTC.
	ExportDate string `json:"exportDate" yaml:"exportDate"`

	// TotalArticles is the number of input records.
	TotalArticles int `json:"totalArticles" yaml:"totalArticles"`

	ArticleTypes    *Tally `json:"articleTypes" yaml:"articleTypes"`
	Languages       *Tally `json:"languages" yaml:"languages"`
	PublishStatuses *Tally `json:"publishStatuses" yaml:"publishStatuses"`

	VisibilityStats VisibilityStats `json:"visibilityStats" yaml:"visibilityStats"`
	DateRange       DateRange       `json:"dateRange" yaml:"dateRange"`
}

// VisibilityStats counts records whose visibility flag is set, per channel.
type VisibilityStats struct {
	VisibleInPkb int `json:"visibleInPkb" yaml:"visibleInPkb"`
	VisibleInCsp int `json:"visibleInCsp" yaml:"visibleInCsp"`
	VisibleInPrm int `json:"visibleInPrm" yaml:"visibleInPrm"`
}

// DateRange holds the earliest and latest creation dates observed, as the
// literal strings found in the input. Both are nil when no record carried a
// parseable date.
type DateRange struct {
	Earliest *string `json:"earliest" yaml:"earliest"`
	Latest   *string `json:"latest" yaml:"latest"`
}

// Tally counts occurrences per distinct key. Keys serialize in the order
// they were first seen.
type Tally struct {
	counts *orderedmap.OrderedMap[string, int]
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: orderedmap.New[string, int]()}
}

// Add increments the count for key.
func (t *Tally) Add(key string) {
	n, _ := t.counts.Get(key)
	t.counts.Set(key, n+1)
}

// Count returns the count for key, or zero.
func (t *Tally) Count(key string) int {
	n, _ := t.counts.Get(key)
	return n
}

// Len returns the number of distinct keys.
func (t *Tally) Len() int {
	return t.counts.Len()
}

// Keys returns the distinct keys in first-seen order.
func (t *Tally) Keys() []string {
	keys := make([]string, 0, t.counts.Len())
	for pair := t.counts.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Map returns the counts as a plain map.
func (t *Tally) Map() map[string]int {
	m := make(map[string]int, t.counts.Len())
	for pair := t.counts.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

// MarshalJSON encodes the tally as a JSON object in first-seen key order.
func (t *Tally) MarshalJSON() ([]byte, error) {
	if t.counts.Len() == 0 {
		return []byte("{}"), nil
	}
	return t.counts.MarshalJSON()
}

// MarshalYAML encodes the tally as a YAML mapping in first-seen key order.
func (t *Tally) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for pair := t.counts.Oldest(); pair != nil; pair = pair.Next() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(pair.Value)},
		)
	}
	return node, nil
}

// LogEntry is one line of the append-only operation log.
type LogEntry struct {
	Time      string `json:"time" yaml:"time"`
	Operation string `json:"operation" yaml:"operation"`
	Status    string `json:"status" yaml:"status"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
}
