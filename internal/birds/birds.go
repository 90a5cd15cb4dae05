package birds

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Symbols are the birds that can appear in a cage.
var Symbols = []string{"🦜", "🕊️", "🦢", "🦉", "🐧", "🐦", "🐥", "🦅", "🦆", "🦩", "🐔", "🦚"}

const (
	// Freed birds fly off from above the cage; positions are percentages of the play area.
	MinFreedX = 10
	MaxFreedX = 90
	MinFreedY = 5
	MaxFreedY = 70
)

type FreedBird struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Symbol string `json:"symbol"`
}

// Aviary hands out random cage contents and freed bird placements.
type Aviary struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAviary(seed int64) *Aviary {
	return &Aviary{rnd: rand.New(rand.NewSource(seed))}
}

func NewRandomAviary() *Aviary {
	return NewAviary(time.Now().UnixNano())
}

// Cage returns count randomly chosen bird symbols.
func (a *Aviary) Cage(count int) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	cage := make([]string, count)
	for i := range cage {
		cage[i] = Symbols[a.rnd.Intn(len(Symbols))]
	}
	return cage
}

func (a *Aviary) Free(symbol string) FreedBird {
	a.mu.Lock()
	defer a.mu.Unlock()
	return FreedBird{
		ID:     uuid.New().String(),
		X:      a.rnd.Intn(MaxFreedX-MinFreedX) + MinFreedX,
		Y:      a.rnd.Intn(MaxFreedY-MinFreedY) + MinFreedY,
		Symbol: symbol,
	}
}

// Pop removes the last bird from the cage. It returns the remaining cage, the popped
// symbol and false if the cage was empty. The input slice is not modified.
func Pop(cage []string) ([]string, string, bool) {
	if len(cage) == 0 {
		return cage, "", false
	}
	last := cage[len(cage)-1]
	rest := make([]string, len(cage)-1)
	copy(rest, cage)
	return rest, last, true
}

func IsSymbol(s string) bool {
	for _, sym := range Symbols {
		if sym == s {
			return true
		}
	}
	return false
}
