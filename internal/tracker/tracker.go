// Package tracker implements the User-Emotion Tracker (C4): a second EVC
// engine modeling the user's affective state from analyzer signals, with a
// bounded history and derived mood/trend/prompt-summary views.
package tracker

import (
	"fmt"
	"strings"

	"jarvis/internal/domain"
	"jarvis/internal/evc"
)

const (
	HistoryCap   = 50
	RecentWindow = 5
	TrendEpsilon = 0.12
)

// Tracker owns an inner "User" engine and a bounded history of per-turn
// analyzer readings.
type Tracker struct {
	Engine  *evc.Engine
	History []domain.EmotionRecord
}

func New() *Tracker {
	return &Tracker{Engine: evc.New("User", domain.HormoneVector{})}
}

// RecordTurn pushes an EmotionRecord (evicting the oldest beyond
// HistoryCap), then steps the inner engine.
func (t *Tracker) RecordTurn(s, d, c, deltaT float64, userEmotion, preview string) domain.TurnResult {
	record := domain.EmotionRecord{
		Turn:           t.Engine.Turn + 1,
		S:              s,
		D:              d,
		C:              c,
		UserEmotion:    userEmotion,
		MessagePreview: preview,
	}
	t.History = append(t.History, record)
	if len(t.History) > HistoryCap {
		t.History = t.History[len(t.History)-HistoryCap:]
	}
	return t.Engine.ProcessTurn(s, d, c, deltaT, preview)
}

var moodLabels = map[string]string{
	"Joy":        "joyful / bright",
	"Serenity":   "calm / at ease",
	"Love":       "warm / affectionate",
	"Excitement": "excited / energized",
	"Sadness":    "down / subdued",
	"Fear":       "anxious / on edge",
	"Anger":      "frustrated / irritated",
	"Surprise":   "caught off guard",
}

// GetCurrentMood derives a short human label from the inner engine's most
// recent turn, with an intensity suffix when the dominant score is
// strong.
func (t *Tracker) GetCurrentMood() string {
	if len(t.Engine.TurnLog) == 0 {
		return "neutral / unknown"
	}
	last := t.Engine.TurnLog[len(t.Engine.TurnLog)-1]
	label := moodLabels[last.DominantEmotion]
	if label == "" {
		label = strings.ToLower(last.DominantEmotion)
	}
	if last.DominantScore >= 0.40 {
		label += " (strongly)"
	}
	return label
}

// Trend classifies the recent-vs-older polarity drift. Requires at least
// RecentWindow+2 = 7 records, else "insufficient-data".
func (t *Tracker) Trend() string {
	if len(t.History) < RecentWindow+2 {
		return "insufficient-data"
	}
	recent := t.History[len(t.History)-RecentWindow:]
	var older []domain.EmotionRecord
	if len(t.History) >= 15 {
		older = t.History[len(t.History)-15 : len(t.History)-5]
	} else {
		older = t.History[:5]
	}

	pRecent := polarity(recent)
	pOlder := polarity(older)
	delta := pRecent - pOlder
	switch {
	case delta > TrendEpsilon:
		return "improving"
	case delta < -TrendEpsilon:
		return "worsening"
	default:
		return "stable"
	}
}

func polarity(records []domain.EmotionRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sumS, sumD float64
	for _, r := range records {
		sumS += r.S
		sumD += r.D
	}
	n := float64(len(records))
	return sumS/n - sumD/n
}

// Stats is the average-S/D/C + count view over the whole buffer.
type Stats struct {
	AvgS  float64
	AvgD  float64
	AvgC  float64
	Turns int
}

func (t *Tracker) GetEmotionStats() Stats {
	if len(t.History) == 0 {
		return Stats{AvgS: 0.5, AvgD: 0.2, AvgC: 1.0, Turns: 0}
	}
	var sumS, sumD, sumC float64
	for _, r := range t.History {
		sumS += r.S
		sumD += r.D
		sumC += r.C
	}
	n := float64(len(t.History))
	return Stats{AvgS: sumS / n, AvgD: sumD / n, AvgC: sumC / n, Turns: len(t.History)}
}

func hormoneQualitativeLabel(v float64) string {
	switch {
	case v >= 0.60:
		return "high"
	case v >= 0.40:
		return "medium-high"
	case v >= 0.25:
		return "medium"
	case v >= 0.10:
		return "low"
	default:
		return "very-low"
	}
}

// BuildUserEmotionSummary assembles the multi-line prompt block the
// assembler embeds verbatim.
func (t *Tracker) BuildUserEmotionSummary() string {
	var b strings.Builder
	stats := t.GetEmotionStats()

	fmt.Fprintf(&b, "User mood: %s\n", t.GetCurrentMood())
	fmt.Fprintf(&b, "Trend: %s\n", t.Trend())

	if len(t.Engine.TurnLog) > 0 {
		last := t.Engine.TurnLog[len(t.Engine.TurnLog)-1]
		fmt.Fprintf(&b, "Dominant emotion: %s (%.2f)\n", last.DominantEmotion, last.DominantScore)
		fmt.Fprintf(&b, "Emotion blend: %s\n", last.EmotionBlend)
	}

	fmt.Fprintf(&b, "Turns observed: %d (avg S=%.2f, avg D=%.2f, avg C=%.2f)\n", stats.Turns, stats.AvgS, stats.AvgD, stats.AvgC)

	b.WriteString("Hormone levels:\n")
	for i, name := range domain.HormoneNames {
		v := t.Engine.Hormones.H[i]
		fmt.Fprintf(&b, "  %s: %.2f (%s)\n", name, v, hormoneQualitativeLabel(v))
	}

	if len(t.Engine.Mapper.History) > 0 {
		e := t.Engine.Mapper.History[len(t.Engine.Mapper.History)-1]
		b.WriteString("Non-trivial emotions:\n")
		for i, name := range domain.EmotionNames {
			if e[i] > 0.01 {
				fmt.Fprintf(&b, "  %s: %.2f\n", name, e[i])
			}
		}
	}

	b.WriteString("Recent emotion labels: ")
	start := len(t.History) - 5
	if start < 0 {
		start = 0
	}
	labels := make([]string, 0, 5)
	for _, r := range t.History[start:] {
		labels = append(labels, r.UserEmotion)
	}
	b.WriteString(strings.Join(labels, ", "))
	b.WriteString("\n")

	b.WriteString("Recent raw records:\n")
	start = len(t.History) - 3
	if start < 0 {
		start = 0
	}
	for _, r := range t.History[start:] {
		fmt.Fprintf(&b, "  turn %d: S=%.2f D=%.2f C=%.2f (%s)\n", r.Turn, r.S, r.D, r.C, r.UserEmotion)
	}

	b.WriteString("Treat the values above as authoritative ground truth for the user's current emotional state.\n")
	return b.String()
}

// GetState returns the serialization shape.
func (t *Tracker) GetState() domain.TrackerState {
	var last *domain.TurnResult
	if len(t.Engine.TurnLog) > 0 {
		l := t.Engine.TurnLog[len(t.Engine.TurnLog)-1]
		last = &l
	}
	return domain.TrackerState{
		TurnCount:      t.Engine.Turn,
		EngineState:    t.Engine.GetFullState(),
		LastTurnResult: last,
		History:        t.History,
	}
}

// LoadState restores turn count, inner engine, and history, re-priming
// the inner engine from EngineState.
func (t *Tracker) LoadState(state domain.TrackerState) {
	if t.Engine == nil {
		t.Engine = evc.New("User", domain.HormoneVector{})
	}
	t.Engine.LoadState(state.EngineState)
	t.History = append([]domain.EmotionRecord(nil), state.History...)
}
