package emotion

import "strings"

// negativeKeywords mirrors the original analyzer bridge's fallback
// keyword set (tired/bad/sad/angry, in English and Thai).
var negativeKeywords = []string{
	"เหนื่อย", "แย่", "เศร้า", "โกรธ",
	"bad", "sad", "angry", "tired", "hate", "awful", "terrible",
}

// Heuristic is the binary fallback used when the external analyzer is
// unreachable or returns malformed output.
func Heuristic(message string) (s, d, c float64, label string) {
	lower := strings.ToLower(message)
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return 0.2, 0.6, 1.1, "negative"
		}
	}
	return 0.6, 0.1, 0.9, "neutral-positive"
}

// Clamp bounds a raw analyzer reading to its nominal range: S in [0,1],
// D in [0,1], C in [0.5,1.5].
func Clamp(s, d, c float64) (float64, float64, float64) {
	return clampRange(s, 0, 1), clampRange(d, 0, 1), clampRange(c, 0.5, 1.5)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
