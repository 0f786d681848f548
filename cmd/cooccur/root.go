package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for cooccur.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cooccur",
		Short: "Literature co-occurrence collection and association ranking",
		Long: `cooccur builds association rankings between factors and category terms
from literature co-occurrence counts.

'collect' queries PubMed for hit counts and saves one counts artifact per
category. When PubMed cannot be reached, a clearly marked offline
placeholder is saved instead so that the rest of the pipeline still runs.
'analyze' loads the artifacts, drops the least frequent terms, normalizes
the counts and exports the top associations in both directions.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log format (text, json)")

	cmd.AddCommand(NewCollectCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewArtifactsCmd())
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
