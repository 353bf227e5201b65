package hormones

import (
	"math"
	"testing"

	"jarvis/internal/domain"
)

func assertNear(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: got %v, want %v (tol %v)", msg, got, want, tol)
	}
}

func TestNewIsAtBaseline(t *testing.T) {
	s := New(domain.HormoneVector{})
	if s.H != Baseline {
		t.Fatalf("H=%v, want baseline %v", s.H, Baseline)
	}
	if len(s.History) != 1 {
		t.Fatalf("history length=%d, want 1", len(s.History))
	}
}

func TestSoftClampStaysInOpenUnitInterval(t *testing.T) {
	s := New(domain.HormoneVector{})
	for i := 0; i < 50; i++ {
		s.Update(1.0, 0.0, 1.5, 1.0)
	}
	for i, v := range s.H {
		if v <= 0 || v >= 1 {
			t.Fatalf("H[%d]=%v out of (0,1)", i, v)
		}
	}
}

func TestZeroDeltaTNoDecayStillAppliesStimulus(t *testing.T) {
	s := New(domain.HormoneVector{})
	before := s.H
	after := s.Update(1.0, 0.0, 1.0, 0.0)
	if after == before {
		t.Fatalf("expected hormone vector to change with delta_t=0 due to stimulus/interaction")
	}
}

func TestPositiveSignalRaisesDopamine(t *testing.T) {
	s := New(domain.HormoneVector{})
	s.Update(1.0, 0.0, 1.0, 1.0)
	if s.H[domain.Dopamine] <= Baseline[domain.Dopamine] {
		t.Fatalf("Dopamine=%v, want > baseline %v under positive stimulus", s.H[domain.Dopamine], Baseline[domain.Dopamine])
	}
}

func TestSustainedStressRaisesCortisol(t *testing.T) {
	s := New(domain.HormoneVector{})
	for i := 0; i < 20; i++ {
		s.Update(0.0, 0.8, 1.2, 1.0)
	}
	if s.H[domain.Cortisol] <= Baseline[domain.Cortisol] {
		t.Fatalf("Cortisol=%v, want > baseline %v after sustained stress", s.H[domain.Cortisol], Baseline[domain.Cortisol])
	}
}

func TestResetRestoresBaseline(t *testing.T) {
	s := New(domain.HormoneVector{})
	s.Update(1.0, 0.0, 1.0, 1.0)
	s.Reset()
	if s.H != Baseline || s.HPrev != Baseline {
		t.Fatalf("reset did not restore baseline: H=%v HPrev=%v", s.H, s.HPrev)
	}
	if len(s.History) != 1 {
		t.Fatalf("history length after reset=%d, want 1", len(s.History))
	}
}
