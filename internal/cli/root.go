// Package cli defines the cobra commands of the birds binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	lang    string
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "birds",
	Short: "Save the Birds, an arithmetic game",
	Long: `Save the Birds frees caged birds for every correctly answered
arithmetic problem. Clear a cage before the timer runs out to reach the
next, harder level.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "", "interface language (en|ru); defaults to DEFAULT_LANG")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(leaderboardCmd)
}
