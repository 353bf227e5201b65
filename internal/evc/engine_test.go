package evc

import (
	"testing"

	"jarvis/internal/domain"
)

func TestTrustInitialValue(t *testing.T) {
	e := New("Jarvis", domain.HormoneVector{})
	if e.Trust != TrustInitial {
		t.Fatalf("trust=%v, want %v", e.Trust, TrustInitial)
	}
}

func TestTrustStaysWithinBounds(t *testing.T) {
	e := New("Jarvis", domain.HormoneVector{})
	for i := 0; i < 100; i++ {
		e.ProcessTurn(1, 0, 1, 1, "hi")
	}
	if e.Trust < TrustMin || e.Trust > TrustMax {
		t.Fatalf("trust=%v out of [%v,%v]", e.Trust, TrustMin, TrustMax)
	}
}

func TestTrustMonotonicIncreaseUnderPureSupport(t *testing.T) {
	e := New("Jarvis", domain.HormoneVector{})
	prev := e.Trust
	for i := 0; i < 10; i++ {
		e.ProcessTurn(1, 0, 1, 1, "hi")
		if e.Trust <= prev {
			t.Fatalf("trust did not strictly increase: %v -> %v under S=1,D=0", prev, e.Trust)
		}
		prev = e.Trust
	}
}

func TestTurnLogGrowsOnePerTurn(t *testing.T) {
	e := New("Jarvis", domain.HormoneVector{})
	e.ProcessTurn(0.5, 0.1, 1, 1, "a")
	e.ProcessTurn(0.5, 0.1, 1, 1, "b")
	if len(e.TurnLog) != 2 {
		t.Fatalf("turn log length=%d, want 2", len(e.TurnLog))
	}
	if e.TurnLog[1].Turn != 2 {
		t.Fatalf("second entry turn=%d, want 2", e.TurnLog[1].Turn)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	e := New("Jarvis", domain.HormoneVector{})
	e.ProcessTurn(0.7, 0.2, 1, 1, "hi")
	snap := e.GetFullState()

	restored := New("Jarvis", domain.HormoneVector{})
	restored.LoadState(snap)

	if restored.Turn != e.Turn {
		t.Fatalf("restored turn=%d, want %d", restored.Turn, e.Turn)
	}
	if restored.Trust != e.Trust {
		t.Fatalf("restored trust=%v, want %v", restored.Trust, e.Trust)
	}
	if restored.Hormones.H != e.Hormones.H {
		t.Fatalf("restored H=%v, want %v", restored.Hormones.H, e.Hormones.H)
	}
	if len(restored.TurnLog) != 0 {
		t.Fatalf("restored turn log should start empty, got %d entries", len(restored.TurnLog))
	}
}

func TestResetRestoresInitialTrust(t *testing.T) {
	e := New("Jarvis", domain.HormoneVector{})
	e.ProcessTurn(1, 0, 1, 1, "hi")
	e.Reset()
	if e.Trust != TrustInitial || e.Turn != 0 {
		t.Fatalf("reset did not restore initial state: trust=%v turn=%d", e.Trust, e.Turn)
	}
}
