// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kb-export/internal/transform"
	"github.com/pdiddy/kb-export/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "archive")
	store, err := Open(types.ArchiveConfig{ArchiveDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func sampleRecords(t *testing.T) []types.Record {
	t.Helper()
	records, err := transform.DecodeRecords([]byte(`[
		{"KnowledgeArticleId":"kA01","Title":"Reset your password","Summary":"Use the login page link",
		 "ArticleType":"FAQ__kav","Language":"en_US","PublishStatus":"Online","CreatedDate":"2023-01-10"},
		{"KnowledgeArticleId":"kA02","Title":"Configure single sign-on","Summary":"SAML setup for admins",
		 "ArticleType":"How_To__kav","Language":"en_US","PublishStatus":"Draft","CreatedDate":"2023-02-11"},
		{"KnowledgeArticleId":"kA03","Title":"Réinitialiser le mot de passe","Summary":"password reset",
		 "ArticleType":"FAQ__kav","Language":"fr","PublishStatus":"Online","CreatedDate":"2023-03-12"},
		{"Id":"ka04","Title":"Fallback id only","ArticleType":"FAQ__kav"},
		{"Title":"No identifier at all"}
	]`))
	require.NoError(t, err)
	return records
}

func ingest(t *testing.T, store *Store, records []types.Record) IngestSummary {
	t.Helper()
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), records, &buf)
	require.NoError(t, err)
	return summary
}

// --- schema tests ---

func TestOpenCreatesSchema(t *testing.T) {
	store, dir := testStore(t)

	for _, table := range []string{"articles", "articles_fts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
	assert.FileExists(t, filepath.Join(dir, dbFile))
}

func TestOpenTwice(t *testing.T) {
	store, dir := testStore(t)
	ingest(t, store, sampleRecords(t))
	require.NoError(t, store.Close())

	reopened, err := Open(types.ArchiveConfig{ArchiveDir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	store, _ := testStore(t)

	first := ingest(t, store, sampleRecords(t))
	assert.Equal(t, IngestSummary{Inserted: 4, Skipped: 1}, first)
	assert.Equal(t, 5, first.Total())

	second := ingest(t, store, sampleRecords(t))
	assert.Equal(t, IngestSummary{Updated: 4, Skipped: 1}, second)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestIngestUpdateRefreshesIndex(t *testing.T) {
	store, _ := testStore(t)
	ingest(t, store, sampleRecords(t))

	updated := types.NewRecord().
		Set("KnowledgeArticleId", "kA01").
		Set("Title", "Recover a locked account").
		Set("Summary", "Unlock steps")
	ingest(t, store, []types.Record{updated})

	results, err := store.Search(context.Background(), QueryOptions{Query: "locked"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kA01", results[0].ID)

	results, err = store.Search(context.Background(), QueryOptions{Query: "login"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

// --- search tests ---

func TestSearch(t *testing.T) {
	store, _ := testStore(t)
	ingest(t, store, sampleRecords(t))

	tests := []struct {
		name    string
		opts    QueryOptions
		wantIDs []string
	}{
		{"full text on title", QueryOptions{Query: "password"}, []string{"kA01", "kA03"}},
		{"full text on summary", QueryOptions{Query: "SAML"}, []string{"kA02"}},
		{"type filter", QueryOptions{Type: "FAQ__kav"}, []string{"ka04", "kA01", "kA03"}},
		{"language filter", QueryOptions{Language: "fr"}, []string{"kA03"}},
		{"status filter", QueryOptions{Status: "Draft"}, []string{"kA02"}},
		{"text and filter", QueryOptions{Query: "password", Language: "en_US"}, []string{"kA01"}},
		{"limit", QueryOptions{Type: "FAQ__kav", MaxResults: 1}, []string{"ka04"}},
		{"no match", QueryOptions{Query: "kubernetes"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Search(context.Background(), tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSearchReturnsSourceRecord(t *testing.T) {
	store, _ := testStore(t)
	ingest(t, store, sampleRecords(t))

	results, err := store.Search(context.Background(), QueryOptions{Status: "Draft"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	a := results[0]
	assert.Equal(t, "Configure single sign-on", a.Title)
	assert.Equal(t, "SAML setup for admins", a.Body)
	assert.Equal(t, "2023-02-11", a.Created)
	assert.Equal(t, []string{
		"KnowledgeArticleId", "Title", "Summary", "ArticleType", "Language", "PublishStatus", "CreatedDate",
	}, a.Record.Fields())
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{}.IsEmpty())
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{Language: "en_US"}.IsEmpty())
}

// --- export tests ---

func TestExportJSON(t *testing.T) {
	store, dir := testStore(t)
	ingest(t, store, sampleRecords(t))

	path := filepath.Join(dir, "exports", "faq.json")
	n, err := store.ExportJSON(context.Background(), QueryOptions{Type: "FAQ__kav"}, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 3)
	assert.Equal(t, "ka04", got[0]["id"])
	record, ok := got[1]["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Reset your password", record["Title"])
}

func TestExportYAML(t *testing.T) {
	store, dir := testStore(t)
	ingest(t, store, sampleRecords(t))

	path := filepath.Join(dir, "exports", "all.yaml")
	n, err := store.ExportYAML(context.Background(), QueryOptions{}, path)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []struct {
		ID     string         `yaml:"id"`
		Record map[string]any `yaml:"record"`
	}
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Len(t, got, 4)
	assert.Equal(t, "Configure single sign-on", got[0].Record["Title"])
}

func TestExportEmptyArchive(t *testing.T) {
	store, dir := testStore(t)

	path := filepath.Join(dir, "empty.json")
	n, err := store.ExportJSON(context.Background(), QueryOptions{}, path)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
