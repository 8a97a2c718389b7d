// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kb-export/internal/archive"
	"github.com/pdiddy/kb-export/internal/oplog"
	"github.com/pdiddy/kb-export/internal/transform"
	"github.com/pdiddy/kb-export/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the local article archive (store, search, export)",
	Long: `Archive keeps exported articles in a local SQLite database with a
full-text index over title and summary. Use subcommands to store the
current export, search it, or write it back out.`,
}

// --- store subcommand ---

var archiveStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Store the articles from the input JSON in the archive",
	Long: `Store reads the input JSON and upserts every article into the archive,
keyed by KnowledgeArticleId (or Id). Articles already archived are updated
in place.`,
	Args: cobra.NoArgs,
	RunE: runArchiveStore,
}

func runArchiveStore(cmd *cobra.Command, args []string) error {
	cfg, err := archiveConfig(cmd)
	if err != nil {
		return err
	}
	inputPath := viper.GetString("input")
	log := oplog.New(viper.GetString("log"), newLogger())

	records, err := transform.ReadRecords(inputPath)
	if err != nil {
		log.Record("archive-store", oplog.StatusFailed, err.Error())
		return fmt.Errorf("read-input: %w", err)
	}

	store, err := archive.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), records, cmd.OutOrStdout())
	if err != nil {
		log.Record("archive-store", oplog.StatusFailed, err.Error())
		return err
	}
	total, err := store.Count(context.Background())
	if err != nil {
		log.Record("archive-store", oplog.StatusFailed, err.Error())
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records archived, %d articles in archive\n",
		summary.Inserted+summary.Updated, summary.Total(), total)

	log.Record("archive-store", oplog.StatusSuccess,
		fmt.Sprintf("%d inserted, %d updated, %d skipped", summary.Inserted, summary.Updated, summary.Skipped))
	return nil
}

// --- search subcommand ---

var archiveSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search archived articles with full-text search and filters",
	Long: `Search matches archived articles by title and summary text, by
article type, language, or publish status, or a combination of these.`,
	RunE: runArchiveSearch,
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	cfg, err := archiveConfig(cmd)
	if err != nil {
		return err
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --language, or --status")
	}

	store, err := archive.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatSearchOutput(w io.Writer, results []archive.Article, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-18s  %-40s  %-16s  %-8s  %s\n",
		"ID", "Title", "Type", "Lang", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, a := range results {
		fmt.Fprintf(w, "%-18s  %-40s  %-16s  %-8s  %s\n",
			truncate(a.ID, 18), truncate(a.Title, 40), truncate(a.Type, 16), truncate(a.Language, 8), a.Status)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export archived articles to YAML or JSON",
	Long: `Export writes the archived articles (or a filtered subset) to a YAML
or JSON file. Supports the same filter flags as search.`,
	RunE: runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	cfg, err := archiveConfig(cmd)
	if err != nil {
		return err
	}
	store, err := archive.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var n int
	switch format {
	case "yaml", "":
		if output == "" {
			output = "data/archive/export.yaml"
		}
		n, err = store.ExportYAML(context.Background(), opts, output)
	case "json":
		if output == "" {
			output = "data/archive/export.json"
		}
		n, err = store.ExportJSON(context.Background(), opts, output)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d articles to %s\n", n, output)
	return nil
}

// --- shared helpers ---

func archiveConfig(cmd *cobra.Command) (types.ArchiveConfig, error) {
	archiveDir, _ := cmd.Flags().GetString("archive-dir")
	if archiveDir == "" {
		archiveDir = "data/archive"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	fm, err := fieldMap()
	if err != nil {
		return types.ArchiveConfig{}, err
	}

	return types.ArchiveConfig{
		ArchiveDir: archiveDir,
		MaxResults: maxResults,
		Fields:     fm,
	}, nil
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) archive.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	articleType, _ := cmd.Flags().GetString("type")
	language, _ := cmd.Flags().GetString("language")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	return archive.QueryOptions{
		Query:      queryText,
		Type:       articleType,
		Language:   language,
		Status:     status,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	archiveCmd.PersistentFlags().String("archive-dir", "data/archive", "directory holding articles.db")
	archiveCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	// Filter flags shared by search and export.
	for _, c := range []*cobra.Command{archiveSearchCmd, archiveExportCmd} {
		c.Flags().String("query", "", "full-text search over title and summary")
		c.Flags().String("type", "", "filter by article type")
		c.Flags().String("language", "", "filter by language")
		c.Flags().String("status", "", "filter by publish status")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
	}
	archiveSearchCmd.Flags().Bool("json", false, "output results as JSON")

	archiveExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	archiveExportCmd.Flags().String("output", "", "export file (default: data/archive/export.<format>)")

	// Wire subcommands.
	archiveCmd.AddCommand(archiveStoreCmd)
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
