package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"savethebirds/internal/gamedata"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/metrics"
	"savethebirds/internal/session"
	"savethebirds/internal/wshub"
)

func testConfig() gamedata.Config {
	return gamedata.Config{
		LevelDuration: 30,
		BirdsPerLevel: 5,
		LevelUpDelay:  10 * time.Millisecond,
		TickInterval:  time.Hour,
	}
}

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	board := leaderboard.NewBoard(context.Background(), &leaderboard.MemoryStore{}, nil)
	s := NewStore(testConfig(), board, metrics.New(), ttl)
	t.Cleanup(func() {
		s.Close()
		board.Close()
	})
	return s
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t, 0)
	if len(s.List()) != 0 {
		t.Error("new store should have no sessions")
	}
	if s.ttl != defaultTTL {
		t.Errorf("ttl = %v, want default %v", s.ttl, defaultTTL)
	}
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t, time.Hour)
	e, err := s.Create()
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == "" {
		t.Error("session id should not be empty")
	}
	if e.Game == nil || e.Broadcaster == nil || e.Hub == nil {
		t.Fatal("entry is missing its game plumbing")
	}
	if e.Game.State() != session.StateStartScreen {
		t.Errorf("state = %q, want start screen", e.Game.State())
	}
}

func TestStore_GetAndDelete(t *testing.T) {
	s := newTestStore(t, time.Hour)
	e, _ := s.Create()

	if got := s.Get(e.ID); got != e {
		t.Fatal("Get() did not return the created entry")
	}
	if s.Get("missing") != nil {
		t.Error("Get() should return nil for unknown id")
	}

	s.Delete(e.ID)
	if s.Get(e.ID) != nil {
		t.Error("entry should be deleted")
	}
	if err := e.Game.Start("Alice"); err == nil {
		t.Error("deleted session's game should be closed")
	}
}

func TestStore_Sweep(t *testing.T) {
	s := newTestStore(t, time.Hour)
	old, _ := s.Create()
	fresh, _ := s.Create()

	now := time.Now()
	old.touch(now.Add(-2 * time.Hour))

	if n := s.Sweep(now); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if s.Get(old.ID) != nil {
		t.Error("stale session survived the sweep")
	}
	if s.Get(fresh.ID) == nil {
		t.Error("fresh session was swept")
	}
	select {
	case <-old.Broadcaster.Done():
	case <-time.After(time.Second):
		t.Error("swept session's broadcaster kept running")
	}
}

func TestStore_MaxEntries(t *testing.T) {
	s := newTestStore(t, time.Hour)
	s.MaxEntries = 2

	first, err := s.Create()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(); !errors.Is(err, ErrStoreFull) {
		t.Fatalf("Create() on a full store error = %v, want ErrStoreFull", err)
	}
	if n := len(s.List()); n != 2 {
		t.Errorf("live sessions = %d, want 2", n)
	}

	// A stale entry is swept to make room.
	first.touch(time.Now().Add(-2 * time.Hour))
	e, err := s.Create()
	if err != nil {
		t.Fatalf("Create() after a stale entry: %v", err)
	}
	if s.Get(first.ID) != nil {
		t.Error("stale session should have been swept")
	}
	if s.Get(e.ID) == nil {
		t.Error("new session not stored")
	}
}

func TestStore_MaxEntriesConcurrent(t *testing.T) {
	s := newTestStore(t, time.Hour)
	s.MaxEntries = 3

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create()
		}()
	}
	wg.Wait()
	if n := len(s.List()); n != 3 {
		t.Errorf("live sessions = %d, want 3", n)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore(t, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Create()
		}()
	}
	wg.Wait()

	if n := len(s.List()); n != 50 {
		t.Errorf("concurrent creates: got %d sessions, want 50", n)
	}
}

func TestStore_SessionIsolation(t *testing.T) {
	s := newTestStore(t, time.Hour)
	e1, _ := s.Create()
	e2, _ := s.Create()

	if err := e1.Game.Start("Alice"); err != nil {
		t.Fatal(err)
	}
	if e2.Game.State() != session.StateStartScreen {
		t.Error("starting one session changed another")
	}
}

func TestStore_ForwardsToHub(t *testing.T) {
	s := newTestStore(t, time.Hour)
	s.View = func(e *Entry, snap session.Session) any {
		return map[string]string{"state": string(snap.State)}
	}
	e, _ := s.Create()

	c := &wshub.Client{ID: "c1", Send: make(chan []byte, 16)}
	e.Hub.Register(c)

	if err := e.Game.Start("Alice"); err != nil {
		t.Fatal(err)
	}

	var sawCue, sawState bool
	deadline := time.After(time.Second)
	for !sawCue || !sawState {
		select {
		case data := <-c.Send:
			var msg struct {
				Type  string            `json:"t"`
				Cue   string            `json:"c"`
				State map[string]string `json:"s"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatal(err)
			}
			switch msg.Type {
			case wshub.TypeCue:
				sawCue = msg.Cue == "ambient"
			case wshub.TypeState:
				sawState = msg.State["state"] == "playing"
			}
		case <-deadline:
			t.Fatalf("cue=%v state=%v before timeout", sawCue, sawState)
		}
	}
}

func TestEntry_Lang(t *testing.T) {
	e := &Entry{}
	e.SetLang("ru")
	if e.Lang() != "ru" {
		t.Errorf("Lang() = %q, want ru", e.Lang())
	}
}
