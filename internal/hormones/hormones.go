// Package hormones implements the Hormone System (C1): stimulus injection,
// dynamic half-life decay, cross-interaction, and soft clamping over the
// fixed 8-dimensional hormone vector.
package hormones

import (
	"math"

	"jarvis/internal/domain"
)

const (
	InteractionStrength = 0.15
	RecoveryRate        = 0.10
	NegativityBias      = 1.5
	StimulusGain        = 0.60
	SoftClampSharpness  = 2.8

	HalfLifeMinFactor = 0.65
	HalfLifeMaxFactor = 2.00
)

var Baseline = domain.HormoneVector{0.50, 0.60, 0.40, 0.30, 0.30, 0.20, 0.50, 0.30}

var HalfLifeTurns = domain.HormoneVector{0.4, 6.0, 0.8, 4.0, 15.0, 0.5, 6.0, 0.5}

var PPos = domain.HormoneVector{0.80, 0.50, 0.60, 0.40, -0.30, 0.10, 0.30, 0.10}
var PNeg = domain.HormoneVector{0.60, 0.50, 0.40, 0.20, -0.80, -0.60, 0.40, -0.50}

var HalfLifeStressSens = domain.HormoneVector{-0.15, -0.10, -0.20, 0.05, 0.65, 0.45, -0.05, 0.35}
var HalfLifeActivationSens = domain.HormoneVector{0.25, 0.20, 0.20, 0.20, 0.70, 0.40, 0.20, 0.35}

// Sensitivity is the per-hormone personality gain K applied to stimulus.
// DefaultSensitivity is neutral (all 1.0).
var DefaultSensitivity = domain.HormoneVector{1, 1, 1, 1, 1, 1, 1, 1}

// System is the stateful C1 hormone vector for one actor (bot or user).
type System struct {
	H       domain.HormoneVector
	HPrev   domain.HormoneVector
	K       domain.HormoneVector
	History []domain.HormoneVector
}

// New creates a hormone system at baseline with the given sensitivity
// vector. A zero-value Sensitivity substitutes DefaultSensitivity.
func New(sensitivity domain.HormoneVector) *System {
	if sensitivity == (domain.HormoneVector{}) {
		sensitivity = DefaultSensitivity
	}
	s := &System{
		H:     Baseline,
		HPrev: Baseline,
		K:     sensitivity,
	}
	s.History = append(s.History, Baseline)
	return s
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

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Update runs the six-step algorithm and returns the new
// hormone vector. delta_t must be >= 0; the caller is responsible for
// clamping S, D, C and delta_t before calling.
func (s *System) Update(S, D, C, deltaT float64) domain.HormoneVector {
	s.HPrev = s.H

	dEff := D * NegativityBias
	var stimulus domain.HormoneVector
	for i := 0; i < domain.HormoneCount; i++ {
		stimulus[i] = PPos[i]*S*C - PNeg[i]*dEff*C
	}

	stress := clamp(D*C, 0, 1.5)
	var decay domain.HormoneVector
	for i := 0; i < domain.HormoneCount; i++ {
		activation := math.Abs(s.H[i] - Baseline[i])
		factor := clamp(1+HalfLifeStressSens[i]*stress+HalfLifeActivationSens[i]*activation, HalfLifeMinFactor, HalfLifeMaxFactor)
		lambda := math.Ln2 / (HalfLifeTurns[i] * factor)
		decay[i] = math.Exp(-lambda * deltaT)
	}

	var next domain.HormoneVector
	for i := 0; i < domain.HormoneCount; i++ {
		next[i] = s.H[i]*decay[i] + StimulusGain*(s.K[i]*stimulus[i]) + RecoveryRate*(Baseline[i]-s.H[i])
	}

	var interacted domain.HormoneVector
	for i := 0; i < domain.HormoneCount; i++ {
		var cross float64
		for j := 0; j < domain.HormoneCount; j++ {
			cross += Interaction[i][j] * next[j]
		}
		interacted[i] = next[i] + InteractionStrength*cross
	}

	for i := 0; i < domain.HormoneCount; i++ {
		interacted[i] = sigmoid((interacted[i] - 0.5) * SoftClampSharpness)
	}

	s.H = interacted
	s.History = append(s.History, s.H)
	return s.H
}

// Reset restores H, HPrev, and History to a single baseline entry.
func (s *System) Reset() {
	s.H = Baseline
	s.HPrev = Baseline
	s.History = s.History[:0]
	s.History = append(s.History, Baseline)
}

// Delta returns H - HPrev.
func (s *System) Delta() domain.HormoneVector {
	var d domain.HormoneVector
	for i := 0; i < domain.HormoneCount; i++ {
		d[i] = s.H[i] - s.HPrev[i]
	}
	return d
}
