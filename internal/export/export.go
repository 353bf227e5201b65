// Package export renders a session's turn log as CSV or plain text,
// the two download formats the HTTP surface exposes.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"jarvis/internal/domain"
)

// WriteCSV writes the header row and one row per turn: turn, message,
// delta_t, S, D, C, trust, dominant_emotion, dominant_score, then the
// 8 hormone levels, 8 emotion scores, and 8 hormone deltas, each
// suffixed with the lowercased fixed-order name.
func WriteCSV(w io.Writer, turns []domain.TurnResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"turn", "message", "delta_t", "S", "D", "C", "trust", "dominant_emotion", "dominant_score"}
	for _, name := range domain.HormoneNames {
		header = append(header, "h_"+strings.ToLower(name))
	}
	for _, name := range domain.EmotionNames {
		header = append(header, "e_"+strings.ToLower(name))
	}
	for _, name := range domain.HormoneNames {
		header = append(header, "dh_"+strings.ToLower(name))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, t := range turns {
		row := []string{
			fmt.Sprintf("%d", t.Turn),
			t.Message,
			fmt.Sprintf("%.4f", t.DeltaT),
			fmt.Sprintf("%.4f", t.Input.S),
			fmt.Sprintf("%.4f", t.Input.D),
			fmt.Sprintf("%.4f", t.Input.C),
			fmt.Sprintf("%.4f", t.Trust),
			t.DominantEmotion,
			fmt.Sprintf("%.4f", t.DominantScore),
		}
		for _, name := range domain.HormoneNames {
			row = append(row, fmt.Sprintf("%.4f", t.Hormones[name]))
		}
		for _, name := range domain.EmotionNames {
			row = append(row, fmt.Sprintf("%.4f", t.Emotions[name]))
		}
		for _, name := range domain.HormoneNames {
			row = append(row, fmt.Sprintf("%.4f", t.HormoneDelta[name]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTXT writes one labeled block per turn in the fixed label order:
// Message, Delta_t, Signals, Emotion, Dominant, Trust, Hormones,
// Emotions, H Delta.
func WriteTXT(w io.Writer, turns []domain.TurnResult) error {
	for _, t := range turns {
		fmt.Fprintf(w, "=== Turn %d ===\n", t.Turn)
		fmt.Fprintf(w, "Message: %s\n", t.Message)
		fmt.Fprintf(w, "Delta_t: %.3f\n", t.DeltaT)
		fmt.Fprintf(w, "Signals: S=%.3f D=%.3f C=%.3f\n", t.Input.S, t.Input.D, t.Input.C)
		fmt.Fprintf(w, "Emotion: %s\n", formatEmotionBlend(t))
		fmt.Fprintf(w, "Dominant: %s (%.3f)\n", t.DominantEmotion, t.DominantScore)
		fmt.Fprintf(w, "Trust: %.4f\n", t.Trust)
		fmt.Fprintf(w, "Hormones: %s\n", formatVector(domain.HormoneNames[:], t.Hormones))
		fmt.Fprintf(w, "Emotions: %s\n", formatVector(domain.EmotionNames[:], t.Emotions))
		fmt.Fprintf(w, "H Delta: %s\n\n", formatVector(domain.HormoneNames[:], t.HormoneDelta))
	}
	return nil
}

func formatVector(names []string, values map[string]float64) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.3f", name, values[name])
	}
	return strings.Join(parts, " ")
}

func formatEmotionBlend(t domain.TurnResult) string {
	if t.EmotionBlend != "" {
		return t.EmotionBlend
	}
	return t.DominantEmotion
}
