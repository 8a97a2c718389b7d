// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oplog appends one line per export operation to a text file.
// Lines have the form
//
//	[2024-03-15T09:30:00.000Z] write-csv: success - data/knowledge_articles.csv
//
// The file is only ever appended to; it is never rewritten or rotated.
package oplog

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/kb-export/pkg/types"
)

// Status values written by the export pipeline.
const (
	StatusStarted   = "started"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Log appends entries to a file. Append reports failures to the caller;
// Record swallows them after a warning on the diagnostic logger.
type Log struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Log writing to path. A nil logger uses slog.Default.
func New(path string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{path: path, logger: logger, now: time.Now}
}

// Append writes one line for operation and status. detail is omitted from
// the line when empty. The file and its directory are created on demand.
func (l *Log) Append(operation, status, detail string) error {
	line := Format(types.LogEntry{
		Time:      l.now().UTC().Format(timeLayout),
		Operation: operation,
		Status:    status,
		Detail:    detail,
	})

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log %s: %w", l.path, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("appending to log %s: %w", l.path, err)
	}
	return f.Close()
}

// Record is the best-effort form of Append: a failure is logged as a
// warning and otherwise ignored.
func (l *Log) Record(operation, status, detail string) {
	if err := l.Append(operation, status, detail); err != nil {
		l.logger.Warn("operation log write failed",
			"operation", operation, "status", status, "error", err)
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Format renders an entry as a log line without the trailing newline.
// Line breaks in the detail become spaces so every entry stays on one line.
func Format(e types.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", e.Time, e.Operation, e.Status)
	if e.Detail != "" {
		b.WriteString(" - ")
		b.WriteString(lineBreaks.Replace(e.Detail))
	}
	return b.String()
}

var linePattern = regexp.MustCompile(`^\[([^\]]+)\] ([^:]+): (\S+)(?: - (.*))?$`)

// Read parses the log at path. Lines that do not match the log format are
// skipped.
func Read(path string) ([]types.LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()

	var entries []types.LogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := linePattern.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		entries = append(entries, types.LogEntry{
			Time:      m[1],
			Operation: m[2],
			Status:    m[3],
			Detail:    m[4],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log %s: %w", path, err)
	}
	return entries, nil
}
