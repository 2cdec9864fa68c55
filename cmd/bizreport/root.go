package main

import (
	"fmt"
	"os"

	"github.com/nao1215/bizreport/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for bizreport.
// Running it without a subcommand analyses the given data files.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bizreport [data-file...]",
		Short: "Print a statistics report for business data exports",
		Long: `bizreport reads JSON exports of business records and prints a report
that checks the declared record count against the actual array and
summarises the records: ID patterns, top industries and neighborhoods,
duplicate names, the structure of the first record and business ages.

Without arguments it analyses ` + config.DefaultDataFile + ` in the current directory.
A missing or malformed file is reported on a single line.

Examples:
  # Analyse the default data file
  bizreport

  # Analyse several exports, two at a time
  bizreport -b 2 export-a.json export-b.json

  # Write a Markdown report to a file
  bizreport --markdown -o report.md data.json

  # Record the run so it shows up in 'bizreport history'
  bizreport --record data.json

Configuration file (.bizreport) example:
  limits:
    sample: 5
    topCategories: 10
  idPrefix: "prof-"`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runAnalyzeCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addAnalyzeFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
