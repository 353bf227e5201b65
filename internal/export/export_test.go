package export

import (
	"strings"
	"testing"

	"jarvis/internal/domain"
)

func sampleTurn() domain.TurnResult {
	hormones := domain.HormoneVector{}
	emotions := domain.EmotionVector{}
	for i := range hormones {
		hormones[i] = 0.1 * float64(i+1)
	}
	for i := range emotions {
		emotions[i] = 0.05 * float64(i+1)
	}
	return domain.TurnResult{
		Turn:            1,
		Message:         "hello there",
		DeltaT:          1.0,
		Input:           domain.Signal{S: 0.6, D: 0.1, C: 1.0},
		Hormones:        hormones.ToMap(),
		HormoneDelta:    hormones.ToMap(),
		Emotions:        emotions.ToMap(),
		DominantEmotion: "Joy",
		DominantScore:   0.42,
		Trust:           0.5,
	}
}

func TestWriteCSVHeaderOrder(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, []domain.TurnResult{sampleTurn()}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	header := strings.Split(lines[0], ",")
	prev := -1
	for _, want := range []string{"turn", "message", "delta_t", "S", "D", "C", "trust", "dominant_emotion", "dominant_score", "h_dopamine", "e_joy", "dh_dopamine"} {
		idx := -1
		for i, col := range header {
			if col == want {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("header missing %q: %s", want, lines[0])
		}
		if idx <= prev {
			t.Fatalf("header column %q out of order: %s", want, lines[0])
		}
		prev = idx
	}
}

func TestWriteTXTContainsLabels(t *testing.T) {
	var b strings.Builder
	if err := WriteTXT(&b, []domain.TurnResult{sampleTurn()}); err != nil {
		t.Fatalf("WriteTXT: %v", err)
	}
	out := b.String()
	for _, label := range []string{"Message:", "Delta_t:", "Signals:", "Dominant:", "Trust:", "Hormones:", "Emotions:", "H Delta:"} {
		if !strings.Contains(out, label) {
			t.Fatalf("output missing label %q", label)
		}
	}
}
