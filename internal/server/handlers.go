package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"savethebirds/internal/db"
	"savethebirds/internal/gamedata"
	"savethebirds/internal/i18n"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/metrics"
	"savethebirds/internal/session"
	"savethebirds/internal/sessions"
)

const sessionCookie = "birds_session"

var errSessionNotFound = errors.New("session not found")

type Server struct {
	Sessions *sessions.Store
	Board    *leaderboard.Board
	Tmpl     *template.Template
	Metrics  *metrics.Collector
	DB       *db.DB // nil unless a SQL backend is configured
	Logger   *slog.Logger
}

// entry resolves the caller's session from its cookie, creating one when
// create is set and none is live.
func (s *Server) entry(w http.ResponseWriter, r *http.Request, create bool) (*sessions.Entry, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if e := s.Sessions.Get(cookie.Value); e != nil {
			return e, nil
		}
	}
	if !create {
		return nil, nil
	}
	e, err := s.Sessions.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    e.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return e, nil
}

// language resolves the request language and remembers it on the session.
func (s *Server) language(w http.ResponseWriter, r *http.Request, e *sessions.Entry) language.Tag {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	if e != nil {
		e.SetLang(tag.String())
	}
	return tag
}

func (s *Server) render(w http.ResponseWriter, name string, data page) {
	var buf bytes.Buffer
	if err := s.Tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.Logger.Error("render failed", "template", name, "err", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	e, err := s.entry(w, r, true)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	tag := s.language(w, r, e)
	s.render(w, "index", newPage(tag, e.Game.Snapshot(), s.Board.Entries()))
}

// handleScene renders only the inner scene for in-place swaps. It never
// creates a session; the page load that precedes it does.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	e, _ := s.entry(w, r, false)
	if e == nil {
		http.Error(w, errSessionNotFound.Error(), http.StatusNotFound)
		return
	}
	tag := s.language(w, r, e)
	s.render(w, "scene", newPage(tag, e.Game.Snapshot(), s.Board.Entries()))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(g *gamedata.Game) error {
		return g.Start(r.FormValue("name"))
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(g *gamedata.Game) error {
		return g.Submit(r.FormValue("answer"))
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(g *gamedata.Game) error {
		return g.Restart()
	})
}

// act applies one player action. JSON callers get the new state; form posts
// are redirected back to the page.
func (s *Server) act(w http.ResponseWriter, r *http.Request, apply func(*gamedata.Game) error) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	e, err := s.entry(w, r, true)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	tag := s.language(w, r, e)

	if err := apply(e.Game); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, NewView(e.Game.Snapshot(), tag))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	e, _ := s.entry(w, r, false)
	if e == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": errSessionNotFound.Error()})
		return
	}
	tag := s.language(w, r, e)
	writeJSON(w, http.StatusOK, NewView(e.Game.Snapshot(), tag))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Board.Entries())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": status, "error": err.Error()})
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNameRequired):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotStartScreen),
		errors.Is(err, session.ErrNotPlaying),
		errors.Is(err, session.ErrNotGameOver),
		errors.Is(err, session.ErrLevelTransition):
		return http.StatusConflict
	case errors.Is(err, gamedata.ErrClosed):
		return http.StatusGone
	case errors.Is(err, sessions.ErrStoreFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, err.Error(), status)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
