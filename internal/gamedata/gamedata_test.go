package gamedata

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"savethebirds/internal/birds"
	"savethebirds/internal/events"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/problems"
	"savethebirds/internal/session"
)

func testConfig() Config {
	return Config{
		LevelDuration: 30,
		BirdsPerLevel: 5,
		LevelUpDelay:  20 * time.Millisecond,
		TickInterval:  time.Hour,
	}
}

func newTestGame(t *testing.T, cfg Config) (*Game, *leaderboard.MemoryStore) {
	t.Helper()
	store := &leaderboard.MemoryStore{}
	board := leaderboard.NewBoard(context.Background(), store, nil)
	m := session.NewMachine(cfg.Rules(), problems.NewGenerator(1), birds.NewAviary(1))
	g := NewGame(m, board, events.NewBus(), cfg)
	t.Cleanup(func() {
		g.Close()
		board.Close()
	})
	return g, store
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func answer(g *Game) string {
	return strconv.Itoa(g.Snapshot().Problem.Answer())
}

func TestNewGame_StartsOnStartScreen(t *testing.T) {
	g, _ := newTestGame(t, testConfig())
	if g.State() != session.StateStartScreen {
		t.Errorf("initial state = %q, want %q", g.State(), session.StateStartScreen)
	}
}

func TestGame_Start_SendsEvents(t *testing.T) {
	g, _ := newTestGame(t, testConfig())

	if err := g.Start("Alice"); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-g.Events.Cues:
		if ev.Cue != events.CueAmbient {
			t.Errorf("cue = %q, want %q", ev.Cue, events.CueAmbient)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for ambient cue")
	}

	select {
	case ev := <-g.Events.Changes:
		if ev.State != string(session.StatePlaying) {
			t.Errorf("change state = %q, want %q", ev.State, session.StatePlaying)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for state change")
	}
}

func TestGame_Start_RequiresName(t *testing.T) {
	g, _ := newTestGame(t, testConfig())
	if err := g.Start(" "); !errors.Is(err, session.ErrNameRequired) {
		t.Errorf("err = %v, want ErrNameRequired", err)
	}
	if g.State() != session.StateStartScreen {
		t.Error("failed start must not leave the start screen")
	}
}

func TestGame_WrongAnswerRecordsLeaderboard(t *testing.T) {
	g, store := newTestGame(t, testConfig())
	g.Start("Alice")
	g.Submit(answer(g))
	g.Submit(answer(g))

	if err := g.Submit("nope"); err != nil {
		t.Fatal(err)
	}
	if g.State() != session.StateGameOver {
		t.Fatalf("state = %q, want game over", g.State())
	}

	entries := g.Board.Entries()
	if len(entries) != 1 {
		t.Fatalf("leaderboard has %d entries, want 1", len(entries))
	}
	if entries[0] != (leaderboard.Entry{Name: "Alice", Score: 2, Level: 1}) {
		t.Errorf("entry = %+v", entries[0])
	}

	if err := g.Submit("1"); !errors.Is(err, session.ErrNotPlaying) {
		t.Errorf("submit after game over: err = %v, want ErrNotPlaying", err)
	}

	g.Board.Close()
	saved, _ := store.Load(context.Background())
	if len(saved) != 1 {
		t.Errorf("persisted %d entries, want 1", len(saved))
	}
}

func TestGame_CountdownExpires(t *testing.T) {
	cfg := testConfig()
	cfg.LevelDuration = 3
	cfg.TickInterval = 5 * time.Millisecond
	g, _ := newTestGame(t, cfg)

	g.Start("Alice")
	waitFor(t, "time up", func() bool { return g.State() == session.StateGameOver })

	s := g.Snapshot()
	if s.TimeLeft != 0 {
		t.Errorf("TimeLeft = %d, want 0", s.TimeLeft)
	}
	if s.Message.Key != session.MsgTimeUp {
		t.Errorf("message = %q, want %q", s.Message.Key, session.MsgTimeUp)
	}
	if len(g.Board.Entries()) != 1 {
		t.Errorf("leaderboard entries = %d, want 1", len(g.Board.Entries()))
	}

	// no further ticks after game over
	time.Sleep(30 * time.Millisecond)
	if len(g.Board.Entries()) != 1 {
		t.Error("countdown kept firing after game over")
	}
}

func TestGame_LevelAdvancesAfterDelay(t *testing.T) {
	g, _ := newTestGame(t, testConfig())
	g.Start("Alice")

	for i := 0; i < 5; i++ {
		if err := g.Submit(answer(g)); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	if s := g.Snapshot(); !s.LevelComplete || s.Level != 1 {
		t.Fatalf("expected pending level complete, got level=%d complete=%v", s.Level, s.LevelComplete)
	}

	waitFor(t, "level 2", func() bool { return g.Snapshot().Level == 2 })

	s := g.Snapshot()
	if s.CorrectAnswersInLevel != 0 || len(s.Cage) != 5 || s.Score != 5 {
		t.Errorf("after advance: correct=%d cage=%d score=%d", s.CorrectAnswersInLevel, len(s.Cage), s.Score)
	}
	if s.TimeLeft != 30 {
		t.Errorf("TimeLeft = %d, want reset to 30", s.TimeLeft)
	}
}

func TestGame_RestartDuringLevelDelay(t *testing.T) {
	cfg := testConfig()
	cfg.LevelUpDelay = 100 * time.Millisecond
	g, _ := newTestGame(t, cfg)
	g.Start("Alice")
	for i := 0; i < 5; i++ {
		g.Submit(answer(g))
	}

	// end the game through the countdown path while the advance is pending
	g.mu.Lock()
	next, out, _ := g.machine.Tick(session.Session{
		State:         session.StatePlaying,
		PlayerName:    "Alice",
		Level:         1,
		Score:         5,
		TimeLeft:      1,
		LevelComplete: true,
		Generation:    g.sess.Generation,
	})
	g.applyLocked(next, out)
	g.mu.Unlock()

	if err := g.Restart(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	s := g.Snapshot()
	if s.Level != 1 || s.Score != 0 || s.State != session.StatePlaying {
		t.Errorf("stale level advance leaked into restarted game: level=%d score=%d state=%q", s.Level, s.Score, s.State)
	}
}

func TestGame_CloseStopsTimers(t *testing.T) {
	cfg := testConfig()
	cfg.TickInterval = 5 * time.Millisecond
	cfg.LevelUpDelay = 20 * time.Millisecond
	g, _ := newTestGame(t, cfg)
	g.Start("Alice")
	for i := 0; i < 5; i++ {
		g.Submit(answer(g))
	}
	g.Close()
	before := g.Snapshot()

	time.Sleep(60 * time.Millisecond)
	after := g.Snapshot()
	if after.TimeLeft != before.TimeLeft || after.Level != before.Level {
		t.Errorf("timers fired after Close: before=%d/%d after=%d/%d",
			before.TimeLeft, before.Level, after.TimeLeft, after.Level)
	}
	if err := g.Submit("1"); !errors.Is(err, ErrClosed) {
		t.Errorf("submit after close: err = %v, want ErrClosed", err)
	}
}

func TestGame_RestartResets(t *testing.T) {
	g, _ := newTestGame(t, testConfig())
	g.Start("Alice")
	g.Submit(answer(g))
	g.Submit("wrong")

	if err := g.Restart(); err != nil {
		t.Fatal(err)
	}
	s := g.Snapshot()
	if s.State != session.StatePlaying || s.Score != 0 || s.Level != 1 || s.CorrectAnswersInLevel != 0 {
		t.Errorf("restart = %+v", s)
	}
	if len(s.Cage) != 5 || len(s.Freed) != 0 {
		t.Errorf("cage/freed = %d/%d", len(s.Cage), len(s.Freed))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LevelDuration != 30 {
		t.Errorf("LevelDuration = %d, want 30", cfg.LevelDuration)
	}
	if cfg.BirdsPerLevel != 5 {
		t.Errorf("BirdsPerLevel = %d, want 5", cfg.BirdsPerLevel)
	}
	if cfg.LevelUpDelay != 2*time.Second {
		t.Errorf("LevelUpDelay = %v, want 2s", cfg.LevelUpDelay)
	}
}
