// Package session holds the game session aggregate and its transitions.
//
// Transitions take the current Session by value and return the next one together
// with an Outcome describing the side effects the caller has to perform: audio cues,
// timer (re)starts, the deferred level advance and the leaderboard entry of a
// finished game. Transitions never mutate their input.
package session

import (
	"errors"
	"strings"

	"savethebirds/internal/birds"
	"savethebirds/internal/events"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/problems"
)

type State string

const (
	StateStartScreen = State("start")
	StatePlaying     = State("playing")
	StateGameOver    = State("game_over")
)

var (
	ErrNotStartScreen  = errors.New("game already started")
	ErrNotPlaying      = errors.New("game is not in progress")
	ErrNotGameOver     = errors.New("game is not over")
	ErrNameRequired    = errors.New("player name is required")
	ErrLevelTransition = errors.New("level transition in progress")
)

// MessageKey identifies a player-facing message in the i18n catalog.
type MessageKey string

const (
	MsgNone          = MessageKey("")
	MsgLevelComplete = MessageKey("msg.level_complete")
	MsgWrongAnswer   = MessageKey("msg.wrong_answer")
	MsgTimeUp        = MessageKey("msg.time_up")
)

type Message struct {
	Key   MessageKey `json:"key,omitempty"`
	Level int        `json:"level,omitempty"`
}

type Rules struct {
	BirdsPerLevel int
	LevelDuration int // seconds
}

func DefaultRules() Rules {
	return Rules{
		BirdsPerLevel: 5,
		LevelDuration: 30,
	}
}

type Session struct {
	State                 State             `json:"state"`
	PlayerName            string            `json:"playerName"`
	Score                 int               `json:"score"`
	Level                 int               `json:"level"`
	CorrectAnswersInLevel int               `json:"correctAnswersInLevel"`
	TimeLeft              int               `json:"timeLeft"`
	Problem               problems.Problem  `json:"problem"`
	Cage                  []string          `json:"cage"`
	Freed                 []birds.FreedBird `json:"freed"`
	Message               Message           `json:"message"`
	Generation            uint64            `json:"generation"`
	LevelComplete         bool              `json:"levelComplete"`
	AmbientStarted        bool              `json:"-"`
}

// Clone returns a deep copy.
func (s Session) Clone() Session {
	out := s
	out.Cage = append([]string(nil), s.Cage...)
	out.Freed = append([]birds.FreedBird(nil), s.Freed...)
	return out
}

// Backdrop is the scenery tier for the current level, 1 to 4.
func (s Session) Backdrop() int {
	switch {
	case s.Level >= 7:
		return 4
	case s.Level >= 5:
		return 3
	case s.Level >= 3:
		return 2
	default:
		return 1
	}
}

// CageSkin cycles through four cage styles as levels go by.
func (s Session) CageSkin() int {
	if s.Level < 1 {
		return 1
	}
	return (s.Level-1)%4 + 1
}

// Outcome lists the side effects of a transition.
type Outcome struct {
	Cues []events.Cue
	// StartCountdown asks the caller to (re)start the countdown from TimeLeft.
	StartCountdown bool
	// StopCountdown asks the caller to cancel the countdown and any pending advance.
	StopCountdown bool
	// ScheduleAdvance asks the caller to call AdvanceLevel with Generation after the
	// level-up display delay.
	ScheduleAdvance bool
	// Finished is set when the transition ended the game.
	Finished *leaderboard.Entry
}

// Machine applies transitions. It owns the random sources used for new problems and cages.
type Machine struct {
	Rules    Rules
	Problems *problems.Generator
	Aviary   *birds.Aviary
}

func NewMachine(rules Rules, gen *problems.Generator, aviary *birds.Aviary) *Machine {
	if rules.BirdsPerLevel <= 0 {
		rules.BirdsPerLevel = DefaultRules().BirdsPerLevel
	}
	if rules.LevelDuration <= 0 {
		rules.LevelDuration = DefaultRules().LevelDuration
	}
	return &Machine{Rules: rules, Problems: gen, Aviary: aviary}
}

// New returns a session waiting on the start screen.
func (m *Machine) New() Session {
	return Session{
		State:    StateStartScreen,
		Level:    1,
		TimeLeft: m.Rules.LevelDuration,
		Problem:  m.Problems.Generate(1),
		Cage:     m.Aviary.Cage(m.Rules.BirdsPerLevel),
		Freed:    []birds.FreedBird{},
	}
}

func (m *Machine) Start(s Session, name string) (Session, Outcome, error) {
	if s.State != StateStartScreen {
		return s, Outcome{}, ErrNotStartScreen
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s, Outcome{}, ErrNameRequired
	}

	next := m.fresh(s)
	next.PlayerName = name

	out := Outcome{StartCountdown: true}
	if !s.AmbientStarted {
		out.Cues = append(out.Cues, events.CueAmbient)
		next.AmbientStarted = true
	}
	return next, out, nil
}

func (m *Machine) Submit(s Session, input string) (Session, Outcome, error) {
	if s.State != StatePlaying {
		return s, Outcome{}, ErrNotPlaying
	}
	if s.LevelComplete {
		return s, Outcome{}, ErrLevelTransition
	}

	if !s.Problem.Check(input) {
		next, out := m.gameOver(s, MsgWrongAnswer)
		out.Cues = append([]events.Cue{events.CueWrongAnswer}, out.Cues...)
		return next, out, nil
	}

	next := s.Clone()
	next.Score++
	if rest, symbol, ok := birds.Pop(next.Cage); ok {
		next.Cage = rest
		next.Freed = append(next.Freed, m.Aviary.Free(symbol))
	}
	next.CorrectAnswersInLevel++

	out := Outcome{Cues: []events.Cue{events.CueBirdFreed}}
	if next.CorrectAnswersInLevel >= m.Rules.BirdsPerLevel {
		next.CorrectAnswersInLevel = m.Rules.BirdsPerLevel
		next.LevelComplete = true
		next.Message = Message{Key: MsgLevelComplete, Level: s.Level}
		out.Cues = append(out.Cues, events.CueLevelUp)
		out.ScheduleAdvance = true
		return next, out, nil
	}

	next.Problem = m.Problems.Generate(next.Level)
	return next, out, nil
}

// AdvanceLevel completes a level-up scheduled under generation. Stale calls are no-ops.
func (m *Machine) AdvanceLevel(s Session, generation uint64) (Session, Outcome, error) {
	if s.State != StatePlaying || !s.LevelComplete || s.Generation != generation {
		return s, Outcome{}, nil
	}

	next := s.Clone()
	next.Level++
	next.CorrectAnswersInLevel = 0
	next.LevelComplete = false
	next.Cage = m.Aviary.Cage(m.Rules.BirdsPerLevel)
	next.Problem = m.Problems.Generate(next.Level)
	next.Message = Message{}
	next.TimeLeft = m.Rules.LevelDuration
	return next, Outcome{StartCountdown: true}, nil
}

// Tick applies one elapsed second. Ticks outside Playing are ignored.
func (m *Machine) Tick(s Session) (Session, Outcome, error) {
	if s.State != StatePlaying {
		return s, Outcome{}, nil
	}
	if s.TimeLeft <= 1 {
		next, out := m.gameOver(s, MsgTimeUp)
		next.TimeLeft = 0
		return next, out, nil
	}
	next := s.Clone()
	next.TimeLeft--
	return next, Outcome{}, nil
}

func (m *Machine) Restart(s Session) (Session, Outcome, error) {
	if s.State != StateGameOver {
		return s, Outcome{}, ErrNotGameOver
	}
	next := m.fresh(s)
	next.AmbientStarted = true
	return next, Outcome{
		Cues:           []events.Cue{events.CueAmbient},
		StartCountdown: true,
	}, nil
}

// fresh returns a level-1 Playing session for the player of s under a new generation.
func (m *Machine) fresh(s Session) Session {
	return Session{
		State:          StatePlaying,
		PlayerName:     s.PlayerName,
		Level:          1,
		TimeLeft:       m.Rules.LevelDuration,
		Problem:        m.Problems.Generate(1),
		Cage:           m.Aviary.Cage(m.Rules.BirdsPerLevel),
		Freed:          []birds.FreedBird{},
		Generation:     s.Generation + 1,
		AmbientStarted: s.AmbientStarted,
	}
}

func (m *Machine) gameOver(s Session, msg MessageKey) (Session, Outcome) {
	next := s.Clone()
	next.State = StateGameOver
	next.LevelComplete = false
	next.Message = Message{Key: msg}
	next.Generation++
	return next, Outcome{
		StopCountdown: true,
		Finished: &leaderboard.Entry{
			Name:  s.PlayerName,
			Score: s.Score,
			Level: s.Level,
		},
	}
}
