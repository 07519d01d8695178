package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for duckfetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duckfetch",
		Short: "DuckDuckGo search from the command line with proxy rotation",
		Long: `duckfetch searches DuckDuckGo through its lite HTML endpoint.

Each failed attempt is retried through the next proxy of a rotating list,
with a short randomized pause in between. Searches are recorded in a local
history database unless --no-history is given.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewProxyCmd())
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
