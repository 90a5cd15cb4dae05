package sessions

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"savethebirds/internal/broadcast"
	"savethebirds/internal/events"
	"savethebirds/internal/gamedata"
	"savethebirds/internal/leaderboard"
	"savethebirds/internal/metrics"
	"savethebirds/internal/session"
	"savethebirds/internal/wshub"
)

const defaultTTL = 1 * time.Hour

// ErrStoreFull is returned by Create when MaxEntries live sessions exist.
var ErrStoreFull = errors.New("too many active sessions")

// ViewFunc renders the snapshot pushed to WebSocket clients of an entry.
type ViewFunc func(e *Entry, s session.Session) any

type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	cfg     gamedata.Config
	board   *leaderboard.Board
	metrics *metrics.Collector
	ttl     time.Duration

	// View must be set before the first Create. Nil sends the raw session.
	View ViewFunc
	// MaxEntries caps live sessions. Zero means no limit.
	MaxEntries int

	stop     chan struct{}
	stopOnce sync.Once
}

func NewStore(cfg gamedata.Config, board *leaderboard.Board, m *metrics.Collector, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &Store{
		entries: make(map[string]*Entry),
		cfg:     cfg,
		board:   board,
		metrics: m,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.sweepStale()
	return s
}

func (s *Store) full() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.MaxEntries > 0 && len(s.entries) >= s.MaxEntries
}

// Create starts a new session. When the store is full, stale entries are
// swept first and ErrStoreFull is returned if none could be dropped.
func (s *Store) Create() (*Entry, error) {
	if s.full() && s.Sweep(time.Now()) == 0 {
		return nil, ErrStoreFull
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	bus := events.NewBus()
	game := gamedata.NewGame(gamedata.NewMachine(s.cfg), s.board, bus, s.cfg)
	game.Metrics = s.metrics

	now := time.Now()
	e := &Entry{
		ID:          id.String(),
		Game:        game,
		Broadcaster: broadcast.NewBroadcaster(bus),
		Hub:         wshub.NewHub(),
		CreatedAt:   now,
		lastSeen:    now,
	}
	sub := e.Broadcaster.Subscribe()
	go s.forward(e, sub)

	s.mu.Lock()
	if s.MaxEntries > 0 && len(s.entries) >= s.MaxEntries {
		s.mu.Unlock()
		game.Close()
		return nil, ErrStoreFull
	}
	s.entries[e.ID] = e
	s.mu.Unlock()

	s.metrics.SessionOpened()
	slog.Debug("session created", "component", "sessions", "session", e.ID)
	return e, nil
}

// Get returns the entry for id and marks it as seen.
func (s *Store) Get(id string) *Entry {
	s.mu.Lock()
	e := s.entries[id]
	s.mu.Unlock()
	if e != nil {
		e.touch(time.Now())
	}
	return e
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if ok {
		s.release(e, "session ended")
	}
}

func (s *Store) List() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}
	return list
}

// Sweep drops entries not seen within the TTL as of now.
func (s *Store) Sweep(now time.Time) int {
	var stale []*Entry
	s.mu.Lock()
	for id, e := range s.entries {
		if now.Sub(e.LastSeen()) > s.ttl {
			stale = append(stale, e)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range stale {
		s.release(e, "session expired")
	}
	if len(stale) > 0 {
		slog.Info("swept stale sessions", "component", "sessions", "count", len(stale))
	}
	return len(stale)
}

// Close stops the sweeper and ends every session.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	all := make([]*Entry, 0, len(s.entries))
	for id, e := range s.entries {
		all = append(all, e)
		delete(s.entries, id)
	}
	s.mu.Unlock()
	for _, e := range all {
		s.release(e, "server shutting down")
	}
}

func (s *Store) release(e *Entry, reason string) {
	e.Game.Close()
	e.Hub.CloseAll(reason)
	s.metrics.SessionClosed()
}

// forward pushes broadcaster traffic to the entry's WebSocket clients until
// the game's bus closes.
func (s *Store) forward(e *Entry, sub chan broadcast.Message) {
	for msg := range sub {
		switch msg.Event {
		case broadcast.EventState:
			e.Hub.Broadcast(wshub.ServerMessage{Type: wshub.TypeState, State: s.view(e)})
		case broadcast.EventCue:
			e.Hub.Broadcast(wshub.ServerMessage{Type: wshub.TypeCue, Cue: msg.Data})
		}
	}
}

func (s *Store) view(e *Entry) any {
	snap := e.Game.Snapshot()
	if s.View == nil {
		return snap
	}
	return s.View(e, snap)
}

func (s *Store) sweepStale() {
	interval := 5 * time.Minute
	if s.ttl < interval {
		interval = s.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
