// Package evc implements the EVC Engine (C3): the per-turn pipeline that
// steps the hormone system and emotion mapper, maintains an exponential
// memory trace, and updates a soft-saturating trust scalar.
package evc

import (
	"math"

	"jarvis/internal/domain"
	"jarvis/internal/emotion"
	"jarvis/internal/hormones"
)

const (
	MemoryBeta = 0.90

	TrustInitial = 0.5
	TrustGamma   = 0.06
	TrustLambda  = 0.05
	TrustMin     = 0.05
	TrustMax     = 0.95
	TrustUpExp   = 1.2
	TrustDownExp = 0.8
)

// Engine is the C3 state machine: a hormone system, an emotion mapper, a
// memory trace, a trust scalar, and the turn counter/log.
type Engine struct {
	Name     string
	Hormones *hormones.System
	Mapper   *emotion.Mapper
	Memory   domain.HormoneVector
	Trust    float64
	Turn     int
	TurnLog  []domain.TurnResult
}

// New creates an engine at its initial state. name labels this instance
// (e.g. "Jarvis" for the bot engine, "User" for the tracker's inner
// engine).
func New(name string, sensitivity domain.HormoneVector) *Engine {
	return &Engine{
		Name:     name,
		Hormones: hormones.New(sensitivity),
		Mapper:   emotion.NewMapper(),
		Memory:   hormones.Baseline,
		Trust:    TrustInitial,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ProcessTurn runs the full turn-processing algorithm and appends the
// resulting record to TurnLog.
func (e *Engine) ProcessTurn(s, d, c, deltaT float64, message string) domain.TurnResult {
	e.Turn++

	h := e.Hormones.Update(s, d, c, deltaT)
	dh := e.Hormones.Delta()

	emo := e.Mapper.Compute(h)
	dominantIdx, dominantScore := emotion.Dominant(emo)
	top3 := emotion.TopN(emo, 3)
	blend := emotion.Label(emo)

	for i := 0; i < domain.HormoneCount; i++ {
		e.Memory[i] = MemoryBeta*e.Memory[i] + (1-MemoryBeta)*h[i]
	}

	roomUp := math.Max(TrustMax-e.Trust, 0)
	roomDown := math.Max(e.Trust-TrustMin, 0)
	deltaUp := TrustGamma * s * math.Pow(roomUp, TrustUpExp)
	deltaDown := TrustLambda * d * math.Pow(roomDown, TrustDownExp)
	e.Trust = clamp(e.Trust+deltaUp-deltaDown, TrustMin, TrustMax)

	outputIntensity := e.Trust * dominantScore

	result := domain.TurnResult{
		Turn:            e.Turn,
		Message:         message,
		DeltaT:          deltaT,
		Input:           domain.Signal{S: s, D: d, C: c},
		Hormones:        h.ToMap(),
		HormoneDelta:    dh.ToMap(),
		Emotions:        emo.ToMap(),
		DominantEmotion: domain.EmotionNames[dominantIdx],
		DominantScore:   dominantScore,
		Top3Emotions:    top3,
		EmotionBlend:    blend,
		Memory:          e.Memory.ToMap(),
		Trust:           e.Trust,
		OutputIntensity: outputIntensity,
	}
	e.TurnLog = append(e.TurnLog, result)
	return result
}

// GetFullState returns the persistence snapshot.
func (e *Engine) GetFullState() domain.EVCState {
	return domain.EVCState{
		Turn:     e.Turn,
		Hormones: e.Hormones.H[:],
		Memory:   e.Memory[:],
		Trust:    e.Trust,
		Name:     e.Name,
	}
}

// LoadState restores turn/hormones/memory/trust from a snapshot and sets
// HPrev = H. History and TurnLog are not reconstructed: History restarts
// from a single entry holding the restored H, and TurnLog starts empty.
func (e *Engine) LoadState(state domain.EVCState) {
	e.Turn = state.Turn
	e.Trust = state.Trust
	if state.Name != "" {
		e.Name = state.Name
	}
	var h, mem domain.HormoneVector
	copy(h[:], state.Hormones)
	copy(mem[:], state.Memory)
	if h == (domain.HormoneVector{}) {
		h = hormones.Baseline
	}
	e.Hormones.H = h
	e.Hormones.HPrev = h
	e.Hormones.History = e.Hormones.History[:0]
	e.Hormones.History = append(e.Hormones.History, h)
	e.Memory = mem
	e.TurnLog = nil
}

// Reset restores the engine to its initial state.
func (e *Engine) Reset() {
	e.Hormones.Reset()
	e.Mapper.History = nil
	e.Memory = hormones.Baseline
	e.Trust = TrustInitial
	e.Turn = 0
	e.TurnLog = nil
}
