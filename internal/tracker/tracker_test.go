package tracker

import "testing"

func TestTrendRequiresSevenRecords(t *testing.T) {
	tr := New()
	for i := 0; i < 6; i++ {
		tr.RecordTurn(0.6, 0.1, 0.9, 1, "neutral-positive", "hi")
	}
	if got := tr.Trend(); got != "insufficient-data" {
		t.Fatalf("trend=%s, want insufficient-data with 6 records", got)
	}
	tr.RecordTurn(0.6, 0.1, 0.9, 1, "neutral-positive", "hi")
	if got := tr.Trend(); got == "insufficient-data" {
		t.Fatalf("trend still insufficient-data with 7 records")
	}
}

func TestTrendImprovingUnderSustainedSupport(t *testing.T) {
	tr := New()
	for i := 0; i < 10; i++ {
		tr.RecordTurn(0.1, 0.8, 0.9, 1, "negative", "bad day")
	}
	for i := 0; i < 5; i++ {
		tr.RecordTurn(0.9, 0.0, 0.9, 1, "neutral-positive", "feeling better")
	}
	if got := tr.Trend(); got != "improving" {
		t.Fatalf("trend=%s, want improving", got)
	}
}

func TestHistoryCapEviction(t *testing.T) {
	tr := New()
	for i := 0; i < HistoryCap+10; i++ {
		tr.RecordTurn(0.5, 0.1, 1.0, 1, "neutral-positive", "hi")
	}
	if len(tr.History) != HistoryCap {
		t.Fatalf("history length=%d, want %d", len(tr.History), HistoryCap)
	}
}

func TestStatsDefaultWhenEmpty(t *testing.T) {
	tr := New()
	stats := tr.GetEmotionStats()
	if stats.AvgS != 0.5 || stats.AvgD != 0.2 || stats.AvgC != 1.0 || stats.Turns != 0 {
		t.Fatalf("empty stats=%+v, want defaults", stats)
	}
}

func TestStateRoundTrip(t *testing.T) {
	tr := New()
	tr.RecordTurn(0.7, 0.1, 1.0, 1, "neutral-positive", "hi")
	state := tr.GetState()

	restored := New()
	restored.LoadState(state)
	if restored.Engine.Turn != tr.Engine.Turn {
		t.Fatalf("restored turn=%d, want %d", restored.Engine.Turn, tr.Engine.Turn)
	}
	if len(restored.History) != len(tr.History) {
		t.Fatalf("restored history length=%d, want %d", len(restored.History), len(tr.History))
	}
}
