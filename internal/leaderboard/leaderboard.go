package leaderboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// MaxEntries is the number of ranked entries kept.
const MaxEntries = 10

type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Level int    `json:"level"`
}

// Store persists a leaderboard as one keyed record, overwritten wholesale.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Record appends e, sorts by score descending and keeps the top MaxEntries.
// Equal scores keep their insertion order. The input slice is not modified.
func Record(entries []Entry, e Entry) []Entry {
	out := make([]Entry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, e)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// Board is the in-memory leaderboard backed by a Store. The store is read once in
// NewBoard; writes happen on a background goroutine so Add never blocks on I/O.
type Board struct {
	mu      sync.Mutex
	entries []Entry
	store   Store
	logger  *slog.Logger

	dirty  chan struct{}
	done   chan struct{}
	closed bool
}

func NewBoard(ctx context.Context, store Store, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Board{
		store:  store,
		logger: logger.With("component", "leaderboard"),
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	entries, err := store.Load(ctx)
	if err != nil {
		b.logger.Warn("loading leaderboard failed, starting empty", "err", err)
		entries = nil
	}
	b.entries = normalize(entries)

	go b.writer()
	return b
}

// normalize enforces ordering and size on data read back from storage.
func normalize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = Record(out, e)
	}
	return out
}

// Entries returns a copy of the current ranking.
func (b *Board) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Add records a finished game and schedules persistence.
func (b *Board) Add(e Entry) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = Record(b.entries, e)
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)

	if !b.closed {
		select {
		case b.dirty <- struct{}{}:
		default:
			// a save is already pending and will pick up this entry
		}
	}
	return out
}

func (b *Board) writer() {
	defer close(b.done)
	for range b.dirty {
		entries := b.Entries()
		if err := b.store.Save(context.Background(), entries); err != nil {
			b.logger.Error("saving leaderboard failed", "err", err)
		}
	}
}

// Close flushes pending writes and stops the writer.
func (b *Board) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.dirty)
	b.mu.Unlock()
	<-b.done
}

// MemoryStore keeps the record in memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	saves   int
	LoadErr error
}

func (m *MemoryStore) Load(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]Entry, len(entries))
	copy(m.entries, entries)
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
