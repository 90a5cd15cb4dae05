package events

type Cue string

const (
	CueAmbient     = Cue("ambient")
	CueBirdFreed   = Cue("bird_freed")
	CueWrongAnswer = Cue("wrong_answer")
	CueLevelUp     = Cue("level_up")
)

type CueEvent struct {
	Cue Cue
}

// ChangeEvent announces that the game state moved on. Subscribers read the
// current snapshot from the game.
type ChangeEvent struct {
	State      string
	Generation uint64
}

type Bus struct {
	Changes chan ChangeEvent
	Cues    chan CueEvent
}

func NewBus() *Bus {
	return &Bus{
		Changes: make(chan ChangeEvent, 10),
		Cues:    make(chan CueEvent, 10),
	}
}

// PublishChange never blocks; a full bus drops the event.
func (b *Bus) PublishChange(ev ChangeEvent) bool {
	select {
	case b.Changes <- ev:
		return true
	default:
		return false
	}
}

// PublishCue never blocks; cues are fire-and-forget.
func (b *Bus) PublishCue(c Cue) bool {
	select {
	case b.Cues <- CueEvent{Cue: c}:
		return true
	default:
		return false
	}
}

// Close ends both streams. Nothing may publish after Close.
func (b *Bus) Close() {
	close(b.Changes)
	close(b.Cues)
}
