// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.yaml.in/yaml/v3"
)

// Record is one flat article entry from a Knowledge export. Field order is
// the key order of the source JSON object and is preserved across
// decode and encode.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: orderedmap.New[string, any]()}
}

// Set stores value under name. A new name is appended to the field order;
// an existing name keeps its position. Set returns the record so calls can
// be chained; callers holding a zero Record must use the returned value.
func (r Record) Set(name string, value any) Record {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(name, value)
	return r
}

// Value returns the value stored under name and whether the field is present.
// A present field may still hold nil (JSON null).
func (r Record) Value(name string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(name)
}

// Fields returns the field names in source order.
func (r Record) Fields() []string {
	if r.fields == nil {
		return nil
	}
	names := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object into the record. JSON null decodes
// to an empty record; any other non-object value is an error.
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		r.fields = orderedmap.New[string, any]()
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("record must be a JSON object, got %s", preview(trimmed))
	}

	fields := orderedmap.New[string, any]()
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	r.fields = fields
	return nil
}

// MarshalYAML encodes the record as a YAML mapping in field order.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range r.Fields() {
		v, _ := r.Value(name)
		var value yaml.Node
		if err := value.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&value,
		)
	}
	return node, nil
}

func preview(data []byte) string {
	const max = 20
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
