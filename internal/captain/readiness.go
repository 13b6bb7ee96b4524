package captain

import (
	"strings"

	"github.com/talgya/fleetcommand/internal/alignment"
)

// ReadinessFlags is the set of readiness checks that failed.
type ReadinessFlags uint8

const (
	CheckHull ReadinessFlags = 1 << iota
	CheckMorale
	CheckFuel
	CheckAmmo
	CheckThreat
)

const totalChecks = 5

// Has reports whether every flag in f is set.
func (r ReadinessFlags) Has(f ReadinessFlags) bool { return r&f == f }

func (r ReadinessFlags) String() string {
	if r == 0 {
		return "none"
	}
	names := []string{"hull", "morale", "fuel", "ammo", "threat"}
	var parts []string
	for i, n := range names {
		if r&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

// Readiness holds a ship's go/no-go thresholds and the last evaluation result.
type Readiness struct {
	MinHullRatio   float32 `json:"min_hull_ratio"`
	MinMorale      float32 `json:"min_morale"`
	MinFuelRatio   float32 `json:"min_fuel_ratio"`
	MinAmmoRatio   float32 `json:"min_ammo_ratio"`
	MaxThreatLevel float32 `json:"max_threat_level"`

	FailedChecks     ReadinessFlags `json:"failed_checks"`
	CurrentReadiness float32        `json:"current_readiness"` // passed / 5
}

// Readiness presets.
var (
	StrictReadiness = Readiness{
		MinHullRatio: 0.8, MinMorale: 0.3, MinFuelRatio: 0.7, MinAmmoRatio: 0.6, MaxThreatLevel: 0.3,
	}
	StandardReadiness = Readiness{
		MinHullRatio: 0.5, MinMorale: 0, MinFuelRatio: 0.4, MinAmmoRatio: 0.3, MaxThreatLevel: 0.5,
	}
	RelaxedReadiness = Readiness{
		MinHullRatio: 0.3, MinMorale: -0.5, MinFuelRatio: 0.2, MinAmmoRatio: 0.1, MaxThreatLevel: 0.8,
	}
)

// Vitals are the raw ship and crew ratios readiness is judged on.
// They are written by resource collaborators and read here.
type Vitals struct {
	Hull   float32 `json:"hull"`   // 0.0–1.0
	Morale float32 `json:"morale"` // -1.0–1.0
	Fuel   float32 `json:"fuel"`   // 0.0–1.0
	Ammo   float32 `json:"ammo"`   // 0.0–1.0
	Threat float32 `json:"threat"` // 0.0–1.0
}

// Thresholds returns the effective floors and threat ceiling after scaling by tolerance.
// Higher tolerance lowers the floors and raises the ceiling.
func (r *Readiness) Thresholds(riskTolerance float32) (hull, morale, fuel, ammo, threat float32) {
	relax := riskTolerance * 0.5
	return relaxFloor(r.MinHullRatio, relax),
		relaxFloor(r.MinMorale, relax),
		relaxFloor(r.MinFuelRatio, relax),
		relaxFloor(r.MinAmmoRatio, relax),
		alignment.Lerp(r.MaxThreatLevel, 1, relax)
}

// relaxFloor is base*(1-relax) for non-negative floors. Negative floors (morale)
// move further down by the same fraction so a floor never tightens.
func relaxFloor(base, relax float32) float32 {
	if base < 0 {
		return base * (1 + relax)
	}
	return base * (1 - relax)
}

// Evaluate recomputes readiness and confidence from vitals. It writes only the
// derived fields of r and s and is idempotent for the same inputs.
func Evaluate(r *Readiness, v Vitals, s *State) {
	hull, morale, fuel, ammo, threat := r.Thresholds(s.RiskTolerance)

	var failed ReadinessFlags
	passed := 0
	check := func(ok bool, flag ReadinessFlags) {
		if ok {
			passed++
		} else {
			failed |= flag
		}
	}
	check(v.Hull >= hull, CheckHull)
	check(v.Morale >= morale, CheckMorale)
	check(v.Fuel >= fuel, CheckFuel)
	check(v.Ammo >= ammo, CheckAmmo)
	check(v.Threat <= threat, CheckThreat)

	r.FailedChecks = failed
	r.CurrentReadiness = float32(passed) / totalChecks
	s.IsReady = failed == 0
	s.Confidence = r.CurrentReadiness*0.6 + s.SuccessRatio()*0.4
}

// UpdateRiskTolerance derives the captain's risk tolerance from alignment.
func UpdateRiskTolerance(s *State, a alignment.Triplet) {
	s.RiskTolerance = alignment.RiskTolerance(a)
}
