package problems

import "testing"

func TestProblem_Answer(t *testing.T) {
	cases := []struct {
		p    Problem
		want int
	}{
		{Problem{A: 7, B: 3, Operator: Add}, 10},
		{Problem{A: 7, B: 3, Operator: Subtract}, 4},
		{Problem{A: 7, B: 3, Operator: Multiply}, 21},
	}
	for _, tc := range cases {
		if got := tc.p.Answer(); got != tc.want {
			t.Errorf("%s = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestProblem_Check(t *testing.T) {
	p := Problem{A: 7, B: 3, Operator: Add}

	if !p.Check("10") {
		t.Error("Check(\"10\") should be true")
	}
	if !p.Check(" 10 ") {
		t.Error("Check should ignore surrounding whitespace")
	}
	for _, in := range []string{"", "abc", "9", "10.0", "1e1"} {
		if p.Check(in) {
			t.Errorf("Check(%q) should be false", in)
		}
	}
}

func TestParseAnswer_Strict(t *testing.T) {
	if v, ok := ParseAnswer(" -3 "); !ok || v != -3 {
		t.Errorf("ParseAnswer(\" -3 \") = %d, %v", v, ok)
	}
	for _, in := range []string{"10abc", "10.0", "1e1", "", "ten"} {
		if _, ok := ParseAnswer(in); ok {
			t.Errorf("ParseAnswer(%q) should fail", in)
		}
	}
}

func TestGenerate_LowTiers(t *testing.T) {
	g := NewGenerator(1)
	for level := 1; level <= 4; level++ {
		lo, hi := 1, 10
		if level >= 3 {
			lo, hi = 5, 24
		}
		for i := 0; i < 500; i++ {
			p := g.Generate(level)
			if p.Operator == Multiply {
				t.Fatalf("level %d: unexpected operator %q", level, p.Operator)
			}
			if p.A < lo || p.A > hi || p.B < lo || p.B > hi {
				t.Fatalf("level %d: operands out of range: %s", level, p)
			}
			if p.Operator == Subtract && p.A < p.B {
				t.Fatalf("level %d: negative subtraction: %s", level, p)
			}
		}
	}
}

func TestGenerate_MidTier(t *testing.T) {
	g := NewGenerator(2)
	seen := map[Operator]bool{}
	for i := 0; i < 1000; i++ {
		level := 5 + i%2
		p := g.Generate(level)
		seen[p.Operator] = true
		switch p.Operator {
		case Multiply:
			if p.A < 2 || p.A > 10 || p.B < 2 || p.B > 10 {
				t.Fatalf("multiply operands out of range: %s", p)
			}
		default:
			if p.A < 20 || p.A > 69 || p.B < 20 || p.B > 69 {
				t.Fatalf("operands out of range: %s", p)
			}
			if p.Operator == Subtract && p.A < p.B {
				t.Fatalf("negative subtraction: %s", p)
			}
		}
	}
	if len(seen) != 3 {
		t.Errorf("expected all three operators, saw %v", seen)
	}
}

func TestGenerate_HighTier(t *testing.T) {
	g := NewGenerator(3)
	for _, level := range []int{7, 8, 12, 20} {
		for i := 0; i < 500; i++ {
			p := g.Generate(level)
			switch p.Operator {
			case Multiply:
				if p.A < 2 || p.A > level+6 || p.B < 2 || p.B > 11 {
					t.Fatalf("level %d: multiply operands out of range: %s", level, p)
				}
			default:
				if p.A < 20 || p.A >= 20+10*level || p.B < 20 || p.B >= 20+10*level {
					t.Fatalf("level %d: operands out of range: %s", level, p)
				}
				if p.Operator == Subtract && p.A < p.B {
					t.Fatalf("level %d: negative subtraction: %s", level, p)
				}
			}
			if p.Answer() < 0 {
				t.Fatalf("level %d: negative answer for %s", level, p)
			}
		}
	}
}

func TestGenerate_ClampsLevel(t *testing.T) {
	g := NewGenerator(4)
	for i := 0; i < 100; i++ {
		p := g.Generate(0)
		if p.A < 1 || p.A > 10 || p.B < 1 || p.B > 10 {
			t.Fatalf("level 0 should behave like level 1, got %s", p)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)
	for i := 0; i < 50; i++ {
		if pa, pb := a.Generate(7), b.Generate(7); pa != pb {
			t.Fatalf("same seed diverged at %d: %s vs %s", i, pa, pb)
		}
	}
}
