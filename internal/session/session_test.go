package session

import (
	"testing"
	"time"
)

func TestGetOrCreateIsLazy(t *testing.T) {
	m := NewManager(nil, 0)
	if m.Count() != 0 {
		t.Fatalf("count=%d, want 0", m.Count())
	}
	s1 := m.GetOrCreate("abc")
	s2 := m.GetOrCreate("abc")
	if s1 != s2 {
		t.Fatalf("expected same session instance on repeated get_or_create")
	}
	if m.Count() != 1 {
		t.Fatalf("count=%d, want 1", m.Count())
	}
}

func TestResetReportsExistence(t *testing.T) {
	m := NewManager(nil, 0)
	if m.Reset("missing") {
		t.Fatalf("reset of missing session reported existed=true")
	}
	m.GetOrCreate("abc")
	if !m.Reset("abc") {
		t.Fatalf("reset of existing session reported existed=false")
	}
	if m.Count() != 0 {
		t.Fatalf("count=%d after reset, want 0", m.Count())
	}
}

func TestReapIdleEvictsOnlyStale(t *testing.T) {
	m := NewManager(nil, 10*time.Millisecond)
	m.GetOrCreate("stale")
	time.Sleep(20 * time.Millisecond)
	m.GetOrCreate("fresh")

	n := m.ReapIdle(time.Now())
	if n != 1 {
		t.Fatalf("reaped=%d, want 1", n)
	}
	if m.Count() != 1 {
		t.Fatalf("count=%d after reap, want 1", m.Count())
	}
}

func TestSerializeUnknownSession(t *testing.T) {
	m := NewManager(nil, 0)
	_, ok := m.Serialize("nope")
	if ok {
		t.Fatalf("serialize of unknown session reported ok=true")
	}
}
