package problems

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Operator string

const (
	Add      = Operator("+")
	Subtract = Operator("-")
	Multiply = Operator("×")
)

type Problem struct {
	A        int      `json:"a"`
	B        int      `json:"b"`
	Operator Operator `json:"operator"`
}

// Answer returns the expected result for the problem.
func (p Problem) Answer() int {
	switch p.Operator {
	case Subtract:
		return p.A - p.B
	case Multiply:
		return p.A * p.B
	default:
		return p.A + p.B
	}
}

func (p Problem) String() string {
	return fmt.Sprintf("%d %s %d", p.A, p.Operator, p.B)
}

// Check reports whether input parses to the expected result. Malformed input never matches.
func (p Problem) Check(input string) bool {
	v, ok := ParseAnswer(input)
	return ok && v == p.Answer()
}

// ParseAnswer accepts only a whole base-10 integer after trimming spaces, so
// "10abc" and "10.0" are rejected rather than read as 10.
func ParseAnswer(input string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Generator produces problems for a level. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

func NewRandomGenerator() *Generator {
	return NewGenerator(time.Now().UnixNano())
}

func (g *Generator) Generate(level int) Problem {
	g.mu.Lock()
	defer g.mu.Unlock()
	if level < 1 {
		level = 1
	}

	var p Problem
	switch {
	case level <= 2:
		p.Operator = g.pick(Add, Subtract)
		p.A = g.between(1, 10)
		p.B = g.between(1, 10)
	case level <= 4:
		p.Operator = g.pick(Add, Subtract)
		p.A = g.between(5, 24)
		p.B = g.between(5, 24)
	case level <= 6:
		p.Operator = g.pick(Add, Subtract, Multiply)
		if p.Operator == Multiply {
			p.A = g.between(2, 10)
			p.B = g.between(2, 10)
		} else {
			p.A = g.between(20, 69)
			p.B = g.between(20, 69)
		}
	default:
		p.Operator = g.pick(Add, Subtract, Multiply)
		if p.Operator == Multiply {
			p.A = g.between(2, level+6)
			p.B = g.between(2, 11)
		} else {
			p.A = g.between(20, 20+10*level-1)
			p.B = g.between(20, 20+10*level-1)
		}
	}

	// Keep subtraction results non-negative.
	if p.Operator == Subtract && p.A < p.B {
		p.A, p.B = p.B, p.A
	}
	return p
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return g.rnd.Intn(hi-lo+1) + lo
}

func (g *Generator) pick(ops ...Operator) Operator {
	return ops[g.rnd.Intn(len(ops))]
}
