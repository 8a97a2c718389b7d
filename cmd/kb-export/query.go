// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kb-export/internal/orgscript"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the SOQL query or Apex script that produces the input JSON",
	Long: `Query prints the org-side steps that produce the converter input.
Run the SOQL in the Developer Console query editor to preview the articles,
then run the Apex script (--apex) as anonymous Apex and save the JSON it
logs to the input path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apex, _ := cmd.Flags().GetBool("apex")
		fields, _ := cmd.Flags().GetBool("fields")
		if fields {
			for _, f := range orgscript.QueryFields() {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		}
		if apex {
			fmt.Fprintln(cmd.OutOrStdout(), orgscript.Apex())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), orgscript.Query())
		return nil
	},
}

func init() {
	queryCmd.Flags().Bool("apex", false, "print the anonymous Apex export script instead of the SOQL query")
	queryCmd.Flags().Bool("fields", false, "print the queried field names, one per line")

	rootCmd.AddCommand(queryCmd)
}
