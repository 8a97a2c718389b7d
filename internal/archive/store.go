// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps exported Knowledge articles in a local SQLite
// database with a full-text index over title and summary, so successive
// exports can be searched and re-exported without the org.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/kb-export/internal/transform"
	"github.com/pdiddy/kb-export/pkg/types"
)

const dbFile = "articles.db"

// Store manages the archive database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	fields     types.FieldMap
}

// Open opens or creates the archive at cfg.ArchiveDir/articles.db and
// creates the schema if it does not exist.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ArchiveDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dir:        cfg.ArchiveDir,
		maxResults: maxResults,
		fields:     cfg.Fields.WithDefaults(),
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			body TEXT,
			type TEXT,
			language TEXT,
			status TEXT,
			created TEXT,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_type ON articles(type)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_language ON articles(language)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// External-content FTS4 table kept in sync by triggers. FTS4 ships in
	// the default go-sqlite3 build; FTS5 needs a build tag.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts4(content="articles", title, body)`,
			`CREATE TRIGGER articles_bu BEFORE UPDATE ON articles BEGIN
				DELETE FROM articles_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER articles_bd BEFORE DELETE ON articles BEGIN
				DELETE FROM articles_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(docid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(docid, title, body) VALUES (new.rowid, new.title, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from one archive ingest.
type IngestSummary struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Inserted + s.Updated + s.Skipped
}

// Ingest upserts records keyed by article id in a single transaction.
// Records without an id are skipped. Progress is written to w.
func (s *Store) Ingest(ctx context.Context, records []types.Record, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (id, title, body, type, language, status, created, record)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, body=excluded.body, type=excluded.type,
			language=excluded.language, status=excluded.status,
			created=excluded.created, record=excluded.record`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		a := s.articleFrom(rec)
		if a.ID == "" {
			fmt.Fprintf(w, "skipped record %d: no %s or %s\n", i, s.fields.ArticleID, s.fields.RecordID)
			summary.Skipped++
			continue
		}

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT count(*) FROM articles WHERE id = ?`, a.ID).Scan(&exists)
		if err != nil {
			return summary, fmt.Errorf("looking up %s: %w", a.ID, err)
		}

		raw, err := rec.MarshalJSON()
		if err != nil {
			return summary, fmt.Errorf("encoding %s: %w", a.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			a.ID, a.Title, a.Body, a.Type, a.Language, a.Status, a.Created, string(raw),
		); err != nil {
			return summary, fmt.Errorf("upserting %s: %w", a.ID, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "inserted: %d, updated: %d, skipped: %d\n",
		summary.Inserted, summary.Updated, summary.Skipped)
	return summary, nil
}

// Count returns the number of archived articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// articleFrom projects the designated fields of rec into an Article.
func (s *Store) articleFrom(rec types.Record) Article {
	text := func(name string) string {
		v, _ := rec.Value(name)
		return transform.Stringify(v)
	}

	id := text(s.fields.ArticleID)
	if id == "" {
		id = text(s.fields.RecordID)
	}

	return Article{
		ID:       id,
		Title:    text(s.fields.Title),
		Body:     text(s.fields.Body),
		Type:     text(s.fields.ArticleType),
		Language: text(s.fields.Language),
		Status:   text(s.fields.PublishStatus),
		Created:  text(s.fields.CreatedDate),
		Record:   rec,
	}
}
