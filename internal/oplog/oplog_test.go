// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oplog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kb-export/pkg/types"
)

func fixedLog(path string, logger *slog.Logger) *Log {
	l := New(path, logger)
	l.now = func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }
	return l
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		entry types.LogEntry
		want  string
	}{
		{
			name:  "without detail",
			entry: types.LogEntry{Time: "2024-03-15T09:30:00.000Z", Operation: "convert", Status: StatusStarted},
			want:  "[2024-03-15T09:30:00.000Z] convert: started",
		},
		{
			name:  "with detail",
			entry: types.LogEntry{Time: "2024-03-15T09:30:00.000Z", Operation: "read-input", Status: StatusSuccess, Detail: "42 records"},
			want:  "[2024-03-15T09:30:00.000Z] read-input: success - 42 records",
		},
		{
			name:  "line breaks in detail",
			entry: types.LogEntry{Time: "2024-03-15T09:30:00.000Z", Operation: "write-csv", Status: StatusFailed, Detail: "disk full\nretry\r\nlater\rnow"},
			want:  "[2024-03-15T09:30:00.000Z] write-csv: failed - disk full retry later now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.entry))
		})
	}
}

func TestAppendCreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "export.log")
	l := fixedLog(path, nil)

	require.NoError(t, l.Append("convert", StatusStarted, ""))
	require.NoError(t, l.Append("write-csv", StatusSuccess, "out.csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[2024-03-15T09:30:00.000Z] convert: started\n"+
			"[2024-03-15T09:30:00.000Z] write-csv: success - out.csv\n",
		string(data))

	// A second Log on the same file keeps earlier lines.
	require.NoError(t, fixedLog(path, nil).Append("convert", StatusCompleted, ""))
	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "convert", entries[2].Operation)
	assert.Equal(t, StatusCompleted, entries[2].Status)
}

func TestAppendMultilineDetailStaysOneEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.log")
	l := fixedLog(path, nil)

	require.NoError(t, l.Append("read-input", StatusFailed, "bad input:\nunexpected token"))
	require.NoError(t, l.Append("convert", StatusCompleted, ""))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bad input: unexpected token", entries[0].Detail)
	assert.Equal(t, StatusCompleted, entries[1].Status)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.log")
	content := strings.Join([]string{
		"[2024-03-15T09:30:00.000Z] read-input: failed - reading data/x.json: input file not found",
		"garbage line",
		"[2024-03-15T09:31:00.000Z] convert: completed",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, types.LogEntry{
		Time:      "2024-03-15T09:30:00.000Z",
		Operation: "read-input",
		Status:    StatusFailed,
		Detail:    "reading data/x.json: input file not found",
	}, entries[0])
	assert.Equal(t, "", entries[1].Detail)
}

func TestRecordSwallowsFailure(t *testing.T) {
	// A directory in place of the log file makes the open fail.
	path := t.TempDir()

	var diag bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&diag, nil))
	l := fixedLog(path, logger)

	require.Error(t, l.Append("convert", StatusStarted, ""))

	assert.NotPanics(t, func() { l.Record("convert", StatusStarted, "") })
	assert.Contains(t, diag.String(), "operation log write failed")
	assert.Contains(t, diag.String(), "operation=convert")
}
