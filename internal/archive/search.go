// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/kb-export/pkg/types"
)

// Article is an archived Knowledge article: the designated fields as text
// plus the full source record.
type Article struct {
	ID       string       `json:"id" yaml:"id"`
	Title    string       `json:"title" yaml:"title"`
	Body     string       `json:"summary" yaml:"summary"`
	Type     string       `json:"type" yaml:"type"`
	Language string       `json:"language" yaml:"language"`
	Status   string       `json:"status" yaml:"status"`
	Created  string       `json:"created" yaml:"created"`
	Record   types.Record `json:"record" yaml:"record"`
}

// QueryOptions holds parameters for archive searches.
type QueryOptions struct {
	// Query is an FTS match expression over title and summary.
	Query string

	// Type, Language, and Status filter on exact values.
	Type     string
	Language string
	Status   string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.Language == "" && q.Status == ""
}

// Search queries the archive with an optional full-text match and exact
// filters. Results are ordered by title, then id.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Article, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	if opts.Query != "" {
		qb.WriteString(
			`SELECT a.id, a.title, a.body, a.type, a.language, a.status, a.created, a.record
			FROM articles_fts
			JOIN articles a ON a.rowid = articles_fts.docid
			WHERE articles_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT a.id, a.title, a.body, a.type, a.language, a.status, a.created, a.record
			FROM articles a
			WHERE 1=1`)
	}

	if opts.Type != "" {
		qb.WriteString(` AND a.type = ?`)
		args = append(args, opts.Type)
	}
	if opts.Language != "" {
		qb.WriteString(` AND a.language = ?`)
		args = append(args, opts.Language)
	}
	if opts.Status != "" {
		qb.WriteString(` AND a.status = ?`)
		args = append(args, opts.Status)
	}

	qb.WriteString(` ORDER BY a.title, a.id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []Article
	for rows.Next() {
		var (
			a                       Article
			title, body, typ, lang  sql.NullString
			status, created, record sql.NullString
		)
		if err := rows.Scan(&a.ID, &title, &body, &typ, &lang, &status, &created, &record); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		a.Title = title.String
		a.Body = body.String
		a.Type = typ.String
		a.Language = lang.String
		a.Status = status.String
		a.Created = created.String
		if record.Valid {
			if err := a.Record.UnmarshalJSON([]byte(record.String)); err != nil {
				return nil, fmt.Errorf("decoding record %s: %w", a.ID, err)
			}
		}
		results = append(results, a)
	}

	return results, rows.Err()
}
