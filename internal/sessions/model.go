package sessions

import (
	"sync"
	"time"

	"savethebirds/internal/broadcast"
	"savethebirds/internal/gamedata"
	"savethebirds/internal/wshub"
)

// Entry is one browser's game together with its fan-out plumbing.
type Entry struct {
	ID          string
	Game        *gamedata.Game
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	CreatedAt   time.Time

	mu       sync.Mutex
	lastSeen time.Time
	lang     string
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *Entry) LastSeen() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

// Lang is the language last requested by the owning browser.
func (e *Entry) Lang() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lang
}

func (e *Entry) SetLang(lang string) {
	e.mu.Lock()
	e.lang = lang
	e.mu.Unlock()
}
