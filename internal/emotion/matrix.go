package emotion

import "jarvis/internal/domain"

// Weights is W_MATRIX, the hormone-to-emotion projection. Row order is
// domain.EmotionNames order (Joy, Serenity, Love, Excitement, Sadness,
// Fear, Anger, Surprise); column order is domain.HormoneNames order
// (Dopamine, Serotonin, Oxytocin, Endorphin, Cortisol, Adrenaline, GABA,
// Norepinephrine). Open question resolution and reasoning: DESIGN.md,
// "Open question: W_MATRIX / H_INTERACT". Negative entries only suppress
// a raw score before the mapper's ReLU step; they never contribute a
// negative final probability.
var Weights = [domain.EmotionCount][domain.HormoneCount]float64{
	// Joy: Dopamine + Endorphin
	{0.9, 0.1, 0.1, 0.8, 0, 0, 0.1, 0},
	// Serenity: Serotonin + GABA + Oxytocin
	{0, 0.7, 0.4, 0.1, -0.2, 0, 0.6, 0},
	// Love: Oxytocin + Serotonin
	{0.1, 0.4, 0.9, 0.2, 0, 0, 0.1, 0},
	// Excitement: Dopamine + Norepinephrine + Adrenaline
	{0.6, 0, 0, 0.1, 0, 0.5, 0, 0.6},
	// Sadness: low Dopamine/Serotonin, driven by Cortisol
	{-0.3, -0.3, 0, 0, 0.7, 0, 0, 0},
	// Fear: Cortisol + Adrenaline - Oxytocin
	{0, 0, -0.3, 0, 0.6, 0.7, 0, 0.2},
	// Anger: Adrenaline + Norepinephrine - GABA
	{0, 0, 0, 0, 0.2, 0.6, -0.4, 0.5},
	// Surprise: Norepinephrine + Adrenaline
	{0, 0, 0, 0, 0, 0.5, 0, 0.7},
}
