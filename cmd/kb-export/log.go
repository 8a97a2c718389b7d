// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kb-export/internal/oplog"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print entries from the operation log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tail, _ := cmd.Flags().GetInt("tail")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		entries, err := oplog.Read(viper.GetString("log"))
		if err != nil {
			return err
		}
		if tail > 0 && len(entries) > tail {
			entries = entries[len(entries)-tail:]
		}

		w := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		for _, e := range entries {
			fmt.Fprintln(w, oplog.Format(e))
		}
		return nil
	},
}

func init() {
	logCmd.Flags().Int("tail", 0, "print only the last N entries (0 = all)")
	logCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(logCmd)
}
