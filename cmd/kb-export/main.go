// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kb-export CLI.
// The root command converts a Salesforce Knowledge export (JSON) into a CSV
// file, a summary file, and an append-only operation log.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kb-export/internal/export"
	"github.com/pdiddy/kb-export/internal/oplog"
	"github.com/pdiddy/kb-export/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultInput   = "data/knowledge_articles.json"
	defaultCSV     = "data/knowledge_articles.csv"
	defaultSummary = "data/export_summary.json"
	defaultLog     = "data/export.log"
)

// rootCmd converts the export when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "kb-export",
	Short: "Convert a Salesforce Knowledge export into CSV and summary files",
	Long: `kb-export reads the JSON array produced by the org-side Apex script
(see "kb-export query --apex") and writes three files:

  - a CSV rendering of the articles, columns in the order of the first record
  - a summary with counts by article type, language, publish status,
    visibility flags, and the creation date range
  - an append-only log line per operation

All file locations have defaults and can be overridden by flags, by the
config file, or by KB_EXPORT_* environment variables.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./kb-export.yaml or ~/.config/kb-export/config.yaml)")
	rootCmd.PersistentFlags().String("input", defaultInput, "input JSON array of articles")
	rootCmd.PersistentFlags().String("log", defaultLog, "append-only operation log")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, error")

	rootCmd.Flags().String("csv", defaultCSV, "output CSV file")
	rootCmd.Flags().String("summary", defaultSummary, "output summary file")
	rootCmd.Flags().String("format", string(types.SummaryJSON), "summary format: json or yaml")

	for _, name := range []string{"input", "log", "log-level"} {
		viper.BindPFlag(configKey(name), rootCmd.PersistentFlags().Lookup(name))
	}
	for _, name := range []string{"csv", "summary", "format"} {
		viper.BindPFlag(configKey(name), rootCmd.Flags().Lookup(name))
	}
}

// configKey maps a flag name to its config file key.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kb-export")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "kb-export"))
		}
	}

	viper.SetEnvPrefix("KB_EXPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns the diagnostic logger: text on stderr at the configured level.
func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// fieldMap reads the optional fields: section of the config file.
func fieldMap() (types.FieldMap, error) {
	var fm types.FieldMap
	if err := viper.UnmarshalKey("fields", &fm); err != nil {
		return fm, fmt.Errorf("reading fields config: %w", err)
	}
	return fm.WithDefaults(), nil
}

func exportConfig() (types.ExportConfig, error) {
	fm, err := fieldMap()
	if err != nil {
		return types.ExportConfig{}, err
	}
	return types.ExportConfig{
		InputPath:     viper.GetString("input"),
		CSVPath:       viper.GetString("csv"),
		SummaryPath:   viper.GetString("summary"),
		LogPath:       viper.GetString("log"),
		SummaryFormat: types.SummaryFormat(viper.GetString("format")),
		Fields:        fm,
	}, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := exportConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	logger.Debug("converting", "input", cfg.InputPath, "csv", cfg.CSVPath,
		"summary", cfg.SummaryPath, "log", cfg.LogPath, "format", cfg.SummaryFormat)

	runner := export.NewRunner(cfg, oplog.New(cfg.LogPath, logger))
	_, err = runner.Run(context.Background(), cmd.OutOrStdout())
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
