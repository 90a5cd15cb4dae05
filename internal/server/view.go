package server

import (
	"golang.org/x/text/language"

	"savethebirds/internal/birds"
	"savethebirds/internal/i18n"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/session"
	"savethebirds/internal/sessions"
)

// View is a session snapshot rendered for one language. It backs the HTML
// templates, /api/state and the realtime state pushes.
type View struct {
	State         string            `json:"state"`
	PlayerName    string            `json:"playerName"`
	Score         int               `json:"score"`
	Level         int               `json:"level"`
	TimeLeft      int               `json:"timeLeft"`
	ScoreText     string            `json:"scoreText"`
	LevelText     string            `json:"levelText"`
	TimeText      string            `json:"timeText"`
	Problem       string            `json:"problem,omitempty"`
	Cage          []string          `json:"cage"`
	Freed         []birds.FreedBird `json:"freed"`
	Message       string            `json:"message,omitempty"`
	MessageKey    string            `json:"messageKey,omitempty"`
	LevelComplete bool              `json:"levelComplete"`
	Backdrop      int               `json:"backdrop"`
	CageSkin      int               `json:"cageSkin"`
}

func NewView(s session.Session, tag language.Tag) View {
	v := View{
		State:         string(s.State),
		PlayerName:    s.PlayerName,
		Score:         s.Score,
		Level:         s.Level,
		TimeLeft:      s.TimeLeft,
		ScoreText:     i18n.T(tag, i18n.KeyScore, s.Score),
		LevelText:     i18n.T(tag, i18n.KeyLevel, s.Level),
		TimeText:      i18n.T(tag, i18n.KeyTime, s.TimeLeft),
		Cage:          s.Cage,
		Freed:         s.Freed,
		MessageKey:    string(s.Message.Key),
		LevelComplete: s.LevelComplete,
		Backdrop:      s.Backdrop(),
		CageSkin:      s.CageSkin(),
	}
	if v.Cage == nil {
		v.Cage = []string{}
	}
	if v.Freed == nil {
		v.Freed = []birds.FreedBird{}
	}
	if s.State == session.StatePlaying {
		v.Problem = s.Problem.String()
	}
	switch s.Message.Key {
	case session.MsgNone:
	case session.MsgLevelComplete:
		v.Message = i18n.T(tag, string(s.Message.Key), s.Message.Level)
	default:
		v.Message = i18n.T(tag, string(s.Message.Key))
	}
	return v
}

type page struct {
	Lang        string
	T           func(key string, args ...any) string
	View        View
	Leaderboard []leaderboard.Entry
	Error       string
}

func newPage(tag language.Tag, s session.Session, entries []leaderboard.Entry) page {
	return page{
		Lang:        tag.String(),
		T:           translator(tag),
		View:        NewView(s, tag),
		Leaderboard: entries,
	}
}

func translator(tag language.Tag) func(string, ...any) string {
	printer := i18n.Printer(tag)
	return func(key string, args ...any) string {
		return printer.Sprintf(key, args...)
	}
}

// entryView renders pushes for WebSocket clients in the entry's language.
func entryView(e *sessions.Entry, s session.Session) any {
	tag, ok := i18n.ParseTag(e.Lang())
	if !ok {
		tag = i18n.Default()
	}
	return NewView(s, tag)
}
