// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform turns exported Knowledge records into a CSV rendering
// and an aggregate Summary. Both operations are pure reducers over the
// record sequence; reading the input file is the only I/O here.
package transform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pdiddy/kb-export/pkg/types"
)

var (
	// ErrMissingInput reports that the input JSON file does not exist.
	ErrMissingInput = errors.New("input file not found")

	// ErrMalformedInput reports that the input is not a JSON array of objects.
	ErrMalformedInput = errors.New("input is not a JSON array of objects")
)

// ReadRecords loads the JSON array at path. A missing file yields
// ErrMissingInput; invalid JSON or a non-array document yields
// ErrMalformedInput. Both are wrapped with the path.
func ReadRecords(path string) ([]types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	records, err := DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// DecodeRecords parses a JSON array of flat objects, keeping each object's
// key order. A null element decodes to an empty record.
func DecodeRecords(data []byte) ([]types.Record, error) {
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	// A bare null document decodes without error into a nil slice.
	if records == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedInput)
	}
	return records, nil
}
