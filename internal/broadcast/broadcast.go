package broadcast

import (
	"sync"

	"savethebirds/internal/events"
)

const (
	EventState = "state"
	EventCue   = "cue"
)

type Message struct {
	Event string
	Data  string
}

// Broadcaster is the single reader of a game's bus. It copies every event to
// each subscriber and closes them all once the bus is closed.
type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan Message]bool
	closed  bool
	done    chan struct{}
}

func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[chan Message]bool),
		done:    make(chan struct{}),
	}
	go b.run(bus)
	return b
}

func (b *Broadcaster) run(bus *events.Bus) {
	defer b.shutdown()
	changes, cues := bus.Changes, bus.Cues
	for changes != nil || cues != nil {
		select {
		case ev, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			b.Broadcast(EventState, ev.State)
		case ev, ok := <-cues:
			if !ok {
				cues = nil
				continue
			}
			b.Broadcast(EventCue, string(ev.Cue))
		}
	}
}

func (b *Broadcaster) shutdown() {
	b.Mu.Lock()
	b.closed = true
	for ch := range b.Clients {
		close(ch)
		delete(b.Clients, ch)
	}
	b.Mu.Unlock()
	close(b.done)
}

// Done is closed after the bus has drained and every subscriber was released.
func (b *Broadcaster) Done() <-chan struct{} {
	return b.done
}

// Subscribe returns a buffered channel of messages. After shutdown the
// channel comes back already closed.
func (b *Broadcaster) Subscribe() chan Message {
	ch := make(chan Message, 10)
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.Clients[ch] = true
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Message) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if b.Clients[ch] {
		delete(b.Clients, ch)
		close(ch)
	}
}

func (b *Broadcaster) Count() int {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	return len(b.Clients)
}

func (b *Broadcaster) Broadcast(event string, data string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
			// skip clients with full data channels
		}
	}
}
