package emotion

import "testing"

func TestHeuristicNegativeKeyword(t *testing.T) {
	s, d, c, label := Heuristic("I'm so tired and angry today")
	if label != "negative" {
		t.Fatalf("label=%s, want negative", label)
	}
	if s != 0.2 || d != 0.6 || c != 1.1 {
		t.Fatalf("(S,D,C)=(%.2f,%.2f,%.2f), want (0.2,0.6,1.1)", s, d, c)
	}
}

func TestHeuristicNeutralPositive(t *testing.T) {
	s, d, c, label := Heuristic("What a lovely afternoon")
	if label != "neutral-positive" {
		t.Fatalf("label=%s, want neutral-positive", label)
	}
	if s != 0.6 || d != 0.1 || c != 0.9 {
		t.Fatalf("(S,D,C)=(%.2f,%.2f,%.2f), want (0.6,0.1,0.9)", s, d, c)
	}
}

func TestClampBounds(t *testing.T) {
	s, d, c := Clamp(-1, 2, 5)
	if s != 0 || d != 1 || c != 1.5 {
		t.Fatalf("clamp=(%.2f,%.2f,%.2f), want (0,1,1.5)", s, d, c)
	}
	s, d, c = Clamp(0.5, 0.5, 0.1)
	if c != 0.5 {
		t.Fatalf("c=%.2f, want 0.5 (clamped to lower bound)", c)
	}
}
