package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"savethebirds/internal/i18n"
	"savethebirds/internal/tui"
)

var asJSON bool

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the top scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, board, closeAll := openBoard(cmd.Context(), cmd.ErrOrStderr())
		defer closeAll()

		entries := board.Entries()
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		tag := resolveLang(cfg)
		fmt.Fprintln(out, i18n.T(tag, i18n.KeyLeaderboard))
		if len(entries) == 0 {
			fmt.Fprintln(out, i18n.T(tag, i18n.KeyLeaderboardEmpty))
			return nil
		}
		fmt.Fprintln(out, tui.Leaderboard(entries))
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
}
