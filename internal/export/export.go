// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export runs one conversion of a Knowledge export: read the input
// JSON, write the CSV rendering, write the summary, and record each step in
// the operation log.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kb-export/internal/oplog"
	"github.com/pdiddy/kb-export/internal/transform"
	"github.com/pdiddy/kb-export/pkg/types"
)

// ErrOutputWrite reports that the CSV or summary file could not be written.
var ErrOutputWrite = errors.New("writing output")

// Operation names recorded in the log.
const (
	opConvert      = "convert"
	opReadInput    = "read-input"
	opWriteCSV     = "write-csv"
	opWriteSummary = "write-summary"
)

// Result holds the outcome of a successful run.
type Result struct {
	Records int
	Columns int
	Summary types.Summary
}

// Runner carries the collaborators of a conversion run.
type Runner struct {
	cfg types.ExportConfig
	log *oplog.Log
	now func() time.Time
}

// NewRunner returns a Runner for cfg that records operations in log.
func NewRunner(cfg types.ExportConfig, log *oplog.Log) *Runner {
	if cfg.SummaryFormat == "" {
		cfg.SummaryFormat = types.SummaryJSON
	}
	cfg.Fields = cfg.Fields.WithDefaults()
	return &Runner{cfg: cfg, log: log, now: time.Now}
}

// Run performs the conversion, writing progress lines to w. A missing or
// malformed input aborts before any output is written. Outputs written
// before a later failure are left in place.
func (r *Runner) Run(ctx context.Context, w io.Writer) (Result, error) {
	switch r.cfg.SummaryFormat {
	case types.SummaryJSON, types.SummaryYAML:
	default:
		return Result{}, fmt.Errorf("unsupported summary format %q: use json or yaml", r.cfg.SummaryFormat)
	}

	r.log.Record(opConvert, oplog.StatusStarted, "")

	records, err := transform.ReadRecords(r.cfg.InputPath)
	if err != nil {
		return Result{}, r.fail(opReadInput, err)
	}
	r.log.Record(opReadInput, oplog.StatusSuccess, fmt.Sprintf("%d records from %s", len(records), r.cfg.InputPath))
	fmt.Fprintf(w, "read     %s (%d records)\n", r.cfg.InputPath, len(records))

	if err := ctx.Err(); err != nil {
		return Result{}, r.fail(opConvert, err)
	}

	result := Result{Records: len(records)}
	if len(records) > 0 {
		result.Columns = records[0].Len()
	}

	csvText := transform.RenderCSV(records)
	if err := writeFile(r.cfg.CSVPath, []byte(csvText)); err != nil {
		return result, r.fail(opWriteCSV, fmt.Errorf("%w: %w", ErrOutputWrite, err))
	}
	r.log.Record(opWriteCSV, oplog.StatusSuccess, r.cfg.CSVPath)
	fmt.Fprintf(w, "wrote    %s (%d rows, %d columns)\n", r.cfg.CSVPath, result.Records, result.Columns)

	if err := ctx.Err(); err != nil {
		return result, r.fail(opConvert, err)
	}

	result.Summary = transform.Summarize(records, r.cfg.Fields, r.now())
	data, err := encodeSummary(result.Summary, r.cfg.SummaryFormat)
	if err != nil {
		return result, r.fail(opWriteSummary, err)
	}
	if err := writeFile(r.cfg.SummaryPath, data); err != nil {
		return result, r.fail(opWriteSummary, fmt.Errorf("%w: %w", ErrOutputWrite, err))
	}
	r.log.Record(opWriteSummary, oplog.StatusSuccess, r.cfg.SummaryPath)
	fmt.Fprintf(w, "wrote    %s\n", r.cfg.SummaryPath)

	r.log.Record(opConvert, oplog.StatusCompleted, fmt.Sprintf("%d articles", result.Records))
	fmt.Fprintf(w, "\nexported %d articles\n", result.Records)
	return result, nil
}

// fail logs a failed step and returns err prefixed with the step name.
func (r *Runner) fail(op string, err error) error {
	r.log.Record(op, oplog.StatusFailed, err.Error())
	return fmt.Errorf("%s: %w", op, err)
}

func encodeSummary(s types.Summary, format types.SummaryFormat) ([]byte, error) {
	switch format {
	case types.SummaryJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return data, nil
	case types.SummaryYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported summary format %q: use json or yaml", format)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
