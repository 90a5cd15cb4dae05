package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"savethebirds/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Serve the browser version of the game. Settings come from the
environment (PORT, DATABASE_URL, SQLITE_PATH, LEADERBOARD_DIR, ...).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if lang != "" {
			os.Setenv("DEFAULT_LANG", lang)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx)
	},
}
