package hormones

import "jarvis/internal/domain"

// Interaction is H_INTERACT, the hormone-to-hormone cross-interaction
// matrix applied as Interaction * H, scaled by InteractionStrength. Open
// question resolution and reasoning: DESIGN.md, "Open question: W_MATRIX /
// H_INTERACT". Row/column order is domain.HormoneNames order: Dopamine,
// Serotonin, Oxytocin, Endorphin, Cortisol, Adrenaline, GABA,
// Norepinephrine.
var Interaction = [domain.HormoneCount][domain.HormoneCount]float64{
	// Dopamine: suppressed by Cortisol
	{0, 0, 0, 0, -0.20, 0, 0, 0},
	// Serotonin: dampened by Cortisol and Adrenaline
	{0, 0, 0, 0, -0.35, -0.15, 0, 0},
	// Oxytocin
	{0, 0, 0, 0, 0, 0, 0, 0},
	// Endorphin
	{0, 0, 0, 0, 0, 0, 0, 0},
	// Cortisol: suppressed by Oxytocin, potentiated by Adrenaline
	{0, 0, -0.30, 0, 0, 0.25, 0, 0},
	// Adrenaline: inhibited by GABA
	{0, 0, 0, 0, 0, 0, -0.30, 0},
	// GABA
	{0, 0, 0, 0, 0, 0, 0, 0},
	// Norepinephrine: inhibited by GABA, potentiated by Adrenaline
	{0, 0, 0, 0, 0, 0.30, -0.25, 0},
}
