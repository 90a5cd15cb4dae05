package server

import (
	"bufio"
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"savethebirds/internal/config"
	"savethebirds/internal/db"
	"savethebirds/internal/i18n"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/metrics"
	"savethebirds/internal/sessions"
	"savethebirds/web"
)

// New wires a Server around an already loaded board.
func New(cfg config.Config, board *leaderboard.Board, database *db.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	m := metrics.New()
	store := sessions.NewStore(cfg.Game(), board, m, cfg.SessionTTL)
	store.View = entryView
	store.MaxEntries = cfg.MaxSessions

	funcMap := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	return &Server{
		Sessions: store,
		Board:    board,
		Tmpl:     web.Templates(funcMap),
		Metrics:  m,
		DB:       database,
		Logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHome)
	mux.HandleFunc("GET /scene", s.handleScene)
	mux.HandleFunc("POST /start", s.handleStart)
	mux.HandleFunc("POST /answer", s.handleAnswer)
	mux.HandleFunc("POST /restart", s.handleRestart)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.Metrics.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(web.StaticFS())))
	return mux
}

// Close ends every live session.
func (s *Server) Close() {
	s.Sessions.Close()
}

// Run serves the game until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, cfgErr := config.Load()
	logger := NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	if cfgErr != nil {
		logger.Warn("invalid environment, using defaults", "err", cfgErr)
	}
	i18n.SetDefault(cfg.DefaultLanguage)

	store, database := OpenStore(cfg, logger)
	if database != nil {
		defer database.Close()
	}
	board := leaderboard.NewBoard(ctx, store, logger)
	defer board.Close()

	srv := New(cfg, board, database, logger)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           requestLogger(logger, srv.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
		// streams end when ctx is cancelled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpSrv.Addr, "backend", cfg.Backend())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// OpenStore picks the leaderboard backend from cfg. A SQL backend that cannot
// be reached falls back to the JSON file store.
func OpenStore(cfg config.Config, logger *slog.Logger) (leaderboard.Store, *db.DB) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "db")

	var (
		database *db.DB
		err      error
	)
	switch cfg.Backend() {
	case "postgres":
		database, err = db.Connect(cfg.DatabaseURL)
	case "sqlite":
		database, err = db.OpenSQLite(cfg.SQLitePath)
	default:
		log.Info("no database configured, using file store", "dir", cfg.LeaderboardDir)
		return fileStore(cfg, log), nil
	}
	if err != nil {
		log.Warn("database unavailable, using file store", "err", err)
		return fileStore(cfg, log), nil
	}
	if err := database.Migrate(); err != nil {
		log.Warn("migration failed, using file store", "err", err)
		database.Close()
		return fileStore(cfg, log), nil
	}
	log.Info("database connected and migrations applied", "dialect", database.Dialect())
	return &db.LeaderboardStore{DB: database, Key: cfg.LeaderboardKey}, database
}

// fileStore opens the JSON store for cfg, falling back to the default key when
// the configured one cannot name a file.
func fileStore(cfg config.Config, log *slog.Logger) leaderboard.Store {
	store, err := leaderboard.NewFileStore(cfg.LeaderboardDir, cfg.LeaderboardKey)
	if err == nil {
		return store
	}
	fallback := config.Defaults().LeaderboardKey
	log.Warn("invalid leaderboard key, using default", "err", err, "key", fallback)
	store, _ = leaderboard.NewFileStore(cfg.LeaderboardDir, fallback)
	return store
}

// NewLogger builds the text logger used by every command.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// requestLogger logs method, path, status, bytes, and duration.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"dur", time.Since(start).Round(time.Millisecond),
		)
	})
}
