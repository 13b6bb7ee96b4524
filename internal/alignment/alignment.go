// Package alignment holds the moral alignment model shared by captains and crews:
// the law/good/integrity triplet, ethic axis convictions, and outlook weights.
// Everything here is a pure function of its inputs.
package alignment

// Triplet is a continuous alignment in [-1, 1] on each axis.
type Triplet struct {
	Law       float32 `json:"law" yaml:"law"`
	Good      float32 `json:"good" yaml:"good"`
	Integrity float32 `json:"integrity" yaml:"integrity"`
}

// FromFloats builds a triplet, clamping each axis to [-1, 1].
func FromFloats(law, good, integrity float32) Triplet {
	return Triplet{
		Law:       clamp(law, -1, 1),
		Good:      clamp(good, -1, 1),
		Integrity: clamp(integrity, -1, 1),
	}
}

// Vector returns the triplet as (law, good, integrity).
func (t Triplet) Vector() [3]float32 {
	return [3]float32{t.Law, t.Good, t.Integrity}
}

// Chaos maps law -1..1 to chaos 1..0.
func Chaos(t Triplet) float32 {
	return Saturate(0.5 * (1 - t.Law))
}

// Lawfulness maps law -1..1 to lawfulness 0..1.
func Lawfulness(t Triplet) float32 {
	return Saturate(0.5 * (1 + t.Law))
}

// IntegrityNormalized maps integrity -1..1 to 0..1.
func IntegrityNormalized(t Triplet) float32 {
	return Saturate(0.5 * (1 + t.Integrity))
}

// RiskTolerance derives a captain's appetite for risk from alignment.
// Chaotic captains take more risk, lawful ones less; low integrity adds a little.
func RiskTolerance(t Triplet) float32 {
	const base = 0.5
	lawModifier := -t.Law * 0.3
	integrityModifier := -t.Integrity * 0.1
	return clamp(base+lawModifier+integrityModifier, 0.1, 0.9)
}

// Saturate clamps v to [0, 1].
func Saturate(v float32) float32 {
	return clamp(v, 0, 1)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
