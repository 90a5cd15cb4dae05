package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"savethebirds/internal/config"
	"savethebirds/internal/events"
	"savethebirds/internal/gamedata"
	"savethebirds/internal/i18n"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/server"
	"savethebirds/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Play a local game in the terminal. Scores go to the same
leaderboard the web server uses.`,
	RunE: runPlay,
}

// openBoard loads the configured leaderboard. Logs go to w so they do not
// tear the terminal UI.
func openBoard(ctx context.Context, w io.Writer) (config.Config, *leaderboard.Board, func()) {
	cfg, err := config.Load()
	logger := server.NewLogger(w, cfg.LogLevel)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("invalid environment, using defaults", "err", err)
	}
	store, database := server.OpenStore(cfg, logger)
	board := leaderboard.NewBoard(ctx, store, logger)
	closeAll := func() {
		board.Close()
		if database != nil {
			database.Close()
		}
	}
	return cfg, board, closeAll
}

func resolveLang(cfg config.Config) language.Tag {
	i18n.SetDefault(cfg.DefaultLanguage)
	if tag, ok := i18n.ParseTag(lang); ok {
		return tag
	}
	return i18n.Default()
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, board, closeAll := openBoard(cmd.Context(), io.Discard)
	defer closeAll()

	game := gamedata.NewGame(gamedata.NewMachine(cfg.Game()), board, events.NewBus(), cfg.Game())
	defer game.Close()

	return tui.Run(game, resolveLang(cfg))
}
