// Package emotion implements the Emotion Mapper (C2) — the linear
// hormone-to-emotion projection with ReLU and L1 normalization — plus the
// analyzer client and heuristic fallback that derive the (S, D, C) signal
// triple driving the hormone system.
package emotion

import (
	"fmt"
	"sort"

	"jarvis/internal/domain"
)

// Mapper is the stateful C2 projection, holding an append-only emotion
// history parallel to the hormone system's.
type Mapper struct {
	History []domain.EmotionVector
}

func NewMapper() *Mapper {
	return &Mapper{}
}

// Compute projects H into an emotion distribution: E_raw = W*H, ReLU,
// L1-normalize, falling back to a uniform distribution when every raw
// score is non-positive.
func (m *Mapper) Compute(h domain.HormoneVector) domain.EmotionVector {
	var raw domain.EmotionVector
	for i := 0; i < domain.EmotionCount; i++ {
		var sum float64
		for j := 0; j < domain.HormoneCount; j++ {
			sum += Weights[i][j] * h[j]
		}
		if sum < 0 {
			sum = 0
		}
		raw[i] = sum
	}

	var total float64
	for _, v := range raw {
		total += v
	}

	var e domain.EmotionVector
	if total > 0 {
		for i := range e {
			e[i] = raw[i] / total
		}
	} else {
		for i := range e {
			e[i] = 1.0 / float64(domain.EmotionCount)
		}
	}

	m.History = append(m.History, e)
	return e
}

// Dominant returns the index and score of the largest emotion entry,
// ties broken by lowest index.
func Dominant(e domain.EmotionVector) (int, float64) {
	best, bestScore := 0, e[0]
	for i := 1; i < domain.EmotionCount; i++ {
		if e[i] > bestScore {
			best, bestScore = i, e[i]
		}
	}
	return best, bestScore
}

// TopN returns the n largest entries sorted descending, ties broken by
// lowest index.
func TopN(e domain.EmotionVector, n int) []domain.EmotionScore {
	scores := make([]domain.EmotionScore, domain.EmotionCount)
	for i := 0; i < domain.EmotionCount; i++ {
		scores[i] = domain.EmotionScore{Name: domain.EmotionNames[i], Score: e[i]}
	}
	idx := make([]int, domain.EmotionCount)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]].Score > scores[idx[b]].Score
	})
	if n > domain.EmotionCount {
		n = domain.EmotionCount
	}
	out := make([]domain.EmotionScore, n)
	for i := 0; i < n; i++ {
		out[i] = scores[idx[i]]
	}
	return out
}

// Label formats the top-3 emotions as "Name1(0.dd) + Name2(0.dd) +
// Name3(0.dd)".
func Label(e domain.EmotionVector) string {
	top := TopN(e, 3)
	out := ""
	for i, t := range top {
		if i > 0 {
			out += " + "
		}
		out += formatEntry(t)
	}
	return out
}

func formatEntry(s domain.EmotionScore) string {
	return fmt.Sprintf("%s(%.2f)", s.Name, s.Score)
}
