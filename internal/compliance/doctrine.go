// Package compliance measures how far a crew member has drifted from the
// doctrines they are affiliated with and turns that drift into breaches
// (mutiny, desertion, independence) or, for spies, into suspicion.
package compliance

import (
	"errors"

	"github.com/talgya/fleetcommand/internal/alignment"
	"github.com/talgya/fleetcommand/internal/entity"
)

// ErrUnknownDoctrine is returned when a doctrine name is not in the catalog.
var ErrUnknownDoctrine = errors.New("unknown doctrine")

// Window is the accepted alignment box of a doctrine.
type Window struct {
	LawMin       float32 `json:"law_min" yaml:"law_min"`
	LawMax       float32 `json:"law_max" yaml:"law_max"`
	GoodMin      float32 `json:"good_min" yaml:"good_min"`
	GoodMax      float32 `json:"good_max" yaml:"good_max"`
	IntegrityMin float32 `json:"integrity_min" yaml:"integrity_min"`
	IntegrityMax float32 `json:"integrity_max" yaml:"integrity_max"`
}

// OpenWindow accepts every alignment.
func OpenWindow() Window {
	return Window{LawMin: -1, LawMax: 1, GoodMin: -1, GoodMax: 1, IntegrityMin: -1, IntegrityMax: 1}
}

// Deviation is the summed distance of a outside the box, per axis.
func (w Window) Deviation(a alignment.Triplet) float32 {
	return outside(a.Law, w.LawMin, w.LawMax) +
		outside(a.Good, w.GoodMin, w.GoodMax) +
		outside(a.Integrity, w.IntegrityMin, w.IntegrityMax)
}

func outside(v, lo, hi float32) float32 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}

// AxisExpectation is the accepted range of one ethic axis.
type AxisExpectation struct {
	Axis alignment.AxisID `json:"axis"`
	Min  float32          `json:"min"`
	Max  float32          `json:"max"`
}

// OutlookExpectation is a minimum weight a member must hold on an outlook.
type OutlookExpectation struct {
	Outlook       alignment.OutlookID `json:"outlook"`
	MinimumWeight float32             `json:"minimum_weight"`
}

// Doctrine is the profile an affiliation target holds members to.
type Doctrine struct {
	Name                 string               `json:"name"`
	Window               Window               `json:"window"`
	AxisTolerance        float32              `json:"axis_tolerance"`
	OutlookTolerance     float32              `json:"outlook_tolerance"`
	ChaosMutinyThreshold float32              `json:"chaos_mutiny_threshold"`
	LawfulContractFloor  float32              `json:"lawful_contract_floor"`
	SuspicionGain        float32              `json:"suspicion_gain"`
	Axes                 []AxisExpectation    `json:"axes,omitempty"`
	Outlooks             []OutlookExpectation `json:"outlooks,omitempty"`
}

// AxisDeviation sums, per expectation, the distance outside [Min, Max] less the
// tolerance. Axes the member has no value on read as 0.
func (d *Doctrine) AxisDeviation(axes alignment.Axes) float32 {
	var total float32
	for _, exp := range d.Axes {
		dev := outside(axes.Get(exp.Axis), exp.Min, exp.Max) - d.AxisTolerance
		if dev > 0 {
			total += dev
		}
	}
	return total
}

// OutlookDeviation sums the shortfall of each required outlook weight beyond
// the tolerance. Outlooks outside the member's top three read as weight 0.
func (d *Doctrine) OutlookDeviation(top *TopThree) float32 {
	var total float32
	for _, exp := range d.Outlooks {
		weight, _ := top.Get(exp.Outlook)
		if shortfall := exp.MinimumWeight - weight; shortfall > d.OutlookTolerance {
			total += shortfall - d.OutlookTolerance
		}
	}
	return total
}

// DoctrineSource resolves the doctrine held by an affiliation target.
type DoctrineSource interface {
	Doctrine(target entity.Handle) (*Doctrine, bool)
}
