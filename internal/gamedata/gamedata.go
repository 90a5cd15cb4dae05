package gamedata

import (
	"context"
	"errors"
	"sync"
	"time"

	"savethebirds/internal/birds"
	"savethebirds/internal/events"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/metrics"
	"savethebirds/internal/problems"
	"savethebirds/internal/session"
)

var ErrClosed = errors.New("game closed")

type Config struct {
	LevelDuration int // seconds
	BirdsPerLevel int
	LevelUpDelay  time.Duration
	TickInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		LevelDuration: 30,
		BirdsPerLevel: 5,
		LevelUpDelay:  2 * time.Second,
		TickInterval:  1 * time.Second,
	}
}

func (c Config) Rules() session.Rules {
	return session.Rules{
		BirdsPerLevel: c.BirdsPerLevel,
		LevelDuration: c.LevelDuration,
	}
}

// NewMachine builds a state machine with fresh random sources for cfg.
func NewMachine(cfg Config) *session.Machine {
	return session.NewMachine(cfg.Rules(), problems.NewRandomGenerator(), birds.NewRandomAviary())
}

// Game runs one session: it serializes transitions, drives the countdown and the
// delayed level advance, and publishes changes on the event bus.
type Game struct {
	mu      sync.Mutex
	machine *session.Machine
	sess    session.Session

	stopCountdown  context.CancelFunc
	countdownEpoch uint64
	advance        *time.Timer
	closed         bool

	Board   *leaderboard.Board
	Events  *events.Bus
	Metrics *metrics.Collector
	Config  Config
}

func NewGame(m *session.Machine, board *leaderboard.Board, bus *events.Bus, cfg Config) *Game {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	return &Game{
		machine: m,
		sess:    m.New(),
		Board:   board,
		Events:  bus,
		Config:  cfg,
	}
}

// Snapshot returns a copy of the current session.
func (g *Game) Snapshot() session.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sess.Clone()
}

func (g *Game) State() session.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sess.State
}

func (g *Game) Start(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	next, out, err := g.machine.Start(g.sess, name)
	if err != nil {
		return err
	}
	g.Metrics.GameStarted()
	g.applyLocked(next, out)
	return nil
}

func (g *Game) Submit(input string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	next, out, err := g.machine.Submit(g.sess, input)
	if err != nil {
		return err
	}
	g.Metrics.Answer(out.Finished == nil)
	g.applyLocked(next, out)
	return nil
}

func (g *Game) Restart() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	next, out, err := g.machine.Restart(g.sess)
	if err != nil {
		return err
	}
	g.Metrics.GameStarted()
	g.applyLocked(next, out)
	return nil
}

// Close stops the countdown and any pending level advance, then closes the bus.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.stopTimersLocked()
	g.Events.Close()
}

func (g *Game) applyLocked(next session.Session, out session.Outcome) {
	g.sess = next

	for _, c := range out.Cues {
		g.Events.PublishCue(c)
	}
	if out.StopCountdown {
		g.stopTimersLocked()
	}
	if out.Finished != nil {
		reason := "wrong_answer"
		if next.Message.Key == session.MsgTimeUp {
			reason = "time_up"
		}
		g.Metrics.GameOver(reason, out.Finished.Level)
		if g.Board != nil {
			g.Board.Add(*out.Finished)
		}
	}
	if out.ScheduleAdvance {
		generation := next.Generation
		if g.advance != nil {
			g.advance.Stop()
		}
		g.advance = time.AfterFunc(g.Config.LevelUpDelay, func() {
			g.advanceLevel(generation)
		})
	}
	if out.StartCountdown {
		g.startCountdownLocked()
	}

	g.Events.PublishChange(events.ChangeEvent{
		State:      string(next.State),
		Generation: next.Generation,
	})
}

func (g *Game) advanceLevel(generation uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	next, out, _ := g.machine.AdvanceLevel(g.sess, generation)
	if !out.StartCountdown {
		// stale: the game ended or restarted during the delay
		return
	}
	g.advance = nil
	g.applyLocked(next, out)
}

func (g *Game) startCountdownLocked() {
	if g.stopCountdown != nil {
		g.stopCountdown()
	}
	g.countdownEpoch++
	epoch := g.countdownEpoch
	ctx, cancel := context.WithCancel(context.Background())
	g.stopCountdown = cancel
	go g.runCountdown(ctx, epoch)
}

func (g *Game) stopTimersLocked() {
	if g.stopCountdown != nil {
		g.stopCountdown()
		g.stopCountdown = nil
	}
	// invalidate ticks already in flight
	g.countdownEpoch++
	if g.advance != nil {
		g.advance.Stop()
		g.advance = nil
	}
}

func (g *Game) runCountdown(ctx context.Context, epoch uint64) {
	ticker := time.NewTicker(g.Config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !g.tick(epoch) {
				return
			}
		}
	}
}

// tick applies one second and reports whether the countdown should keep running.
func (g *Game) tick(epoch uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || epoch != g.countdownEpoch {
		return false
	}
	next, out, _ := g.machine.Tick(g.sess)
	g.applyLocked(next, out)
	return g.sess.State == session.StatePlaying && epoch == g.countdownEpoch
}
