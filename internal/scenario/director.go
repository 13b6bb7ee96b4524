package scenario

import (
	"math/rand"
	"slices"

	"github.com/talgya/fleetcommand/internal/alignment"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/simtime"
	"github.com/talgya/fleetcommand/internal/world"
)

// Per-tick resource rates.
const (
	fuelBurn     = 0.0006
	ammoBurn     = 0.0012 // combat orders only
	dockedRepair = 0.0015
	dockedRefuel = 0.002
	moraleDrift  = 0.002
	ticksPerHex  = 12
)

var missionOrders = []captain.OrderType{
	captain.OrderMoveTo,
	captain.OrderPatrol,
	captain.OrderEscort,
	captain.OrderIntercept,
	captain.OrderBlockade,
	captain.OrderHaul,
	captain.OrderSurvey,
	captain.OrderRescue,
}

func isCombat(t captain.OrderType) bool {
	return t >= captain.OrderAttack && t <= captain.OrderBlockade
}

// Activity is what the director did this tick.
type Activity struct {
	Issued     []entity.Handle // ships handed a new order
	Arrived    []entity.Handle // ships whose order completed
	Casualties []Casualty
	Released   []entity.Handle // detainees put ashore
	Recruited  []entity.Handle // replacement crew
}

// Casualty is a crew member lost aboard a ship.
type Casualty struct {
	Ship   entity.Handle
	Member entity.Handle
	Name   string
}

// Director stands in for fleet planning and the resource systems. It issues
// orders to idle ships, moves executing ships toward their destination,
// drifts vitals, and marks orders complete on arrival. It writes only orders,
// ship positions, vitals, crew alignment and rosters.
type Director struct {
	rng     *rand.Rand
	sector  *sector.Sector
	spawner *Spawner

	IssueChance    float32 // per idle ship per tick
	OrderTimeout   uint64  // ticks; 0 = none
	CasualtyChance float32 // per damage event
	CrewTarget     int     // roster size replacements top up to
}

// NewDirector creates a director for s. Replacement crew are drawn from spawner.
func NewDirector(seed int64, s *sector.Sector, spawner *Spawner) *Director {
	d := &Director{
		rng:            rand.New(rand.NewSource(seed + 500)),
		sector:         s,
		spawner:        spawner,
		IssueChance:    0.01,
		OrderTimeout:   3 * simtime.TicksPerSimDay,
		CasualtyChance: 0.25,
	}
	if spawner != nil {
		d.CrewTarget = spawner.cfg.CrewPerShip
	}
	return d
}

// Tick runs one minute of fleet activity. Ships are visited in creation order
// so a seeded run is reproducible.
func (d *Director) Tick(clock simtime.Clock, w *world.World) Activity {
	var act Activity
	for _, ship := range w.Ships {
		order, ok := w.Orders.Get(ship)
		if !ok {
			continue
		}
		info, _ := w.ShipInfo.Get(ship)
		vitals, _ := w.Vitals.Get(ship)
		if info == nil || vitals == nil {
			continue
		}

		switch {
		case order.Idle():
			d.dock(vitals)
			if d.rng.Float32() < d.IssueChance {
				d.issue(clock.Tick, order, info)
				act.Issued = append(act.Issued, ship)
			}
		case order.Status == captain.StatusExecuting:
			if d.travel(clock.Tick, order, info, vitals) {
				order.Status = captain.StatusCompleted
				resupply(vitals)
				act.Arrived = append(act.Arrived, ship)
				act.Released = append(act.Released, disembark(w, ship)...)
				act.Recruited = append(act.Recruited, d.replenish(clock.Tick, w, ship)...)
				break
			}
			if lost, ok := d.damage(w, ship, vitals); ok {
				act.Casualties = append(act.Casualties, lost)
			}
		default:
			// Waiting on readiness or on the pipeline; the ship holds position.
			d.dock(vitals)
		}

		d.driftMorale(vitals)
		d.driftCrew(w, ship, vitals)
	}
	return act
}

func (d *Director) issue(tick uint64, o *captain.Order, info *world.Ship) {
	t := missionOrders[d.rng.Intn(len(missionOrders))]
	coords := d.sector.Coords()
	dest := info.Position
	if len(coords) > 0 {
		dest = coords[d.rng.Intn(len(coords))]
	}
	info.Destination = dest

	var timeout uint64
	if d.OrderTimeout > 0 {
		timeout = tick + d.OrderTimeout
	}
	o.Issue(t, entity.Null, uint8(1+d.rng.Intn(5)), tick, timeout)
}

// travel advances one hex every ticksPerHex ticks and burns consumables.
// It reports whether the ship is at its destination.
func (d *Director) travel(tick uint64, o *captain.Order, info *world.Ship, v *captain.Vitals) bool {
	if info.Position == info.Destination {
		return true
	}
	v.Fuel = max(0, v.Fuel-fuelBurn)
	if isCombat(o.Type) {
		v.Ammo = max(0, v.Ammo-ammoBurn)
	}
	if v.Fuel > 0 && (tick-o.IssuedTick)%ticksPerHex == 0 {
		info.Position = sector.Step(info.Position, info.Destination)
	}
	return info.Position == info.Destination
}

// damage rolls hull damage against the local threat. A hit may cost a crew member.
func (d *Director) damage(w *world.World, ship entity.Handle, v *captain.Vitals) (Casualty, bool) {
	if d.rng.Float32() >= v.Threat*0.02 {
		return Casualty{}, false
	}
	v.Hull = max(0, v.Hull-(0.02+d.rng.Float32()*0.08))
	v.Morale = max(-1, v.Morale-0.05)

	if d.rng.Float32() >= d.CasualtyChance {
		return Casualty{}, false
	}
	roster, ok := w.Rosters.Get(ship)
	if !ok || len(*roster) == 0 {
		return Casualty{}, false
	}
	h := (*roster)[d.rng.Intn(len(*roster))]
	c := Casualty{Ship: ship, Member: h}
	if m, ok := w.Members.Get(h); ok {
		c.Name = m.Name
	}
	w.RemoveCrew(h)
	return c, true
}

// disembark puts every detained crew member of ship ashore.
func disembark(w *world.World, ship entity.Handle) []entity.Handle {
	roster, ok := w.Rosters.Get(ship)
	if !ok {
		return nil
	}
	var out []entity.Handle
	for _, h := range slices.Clone(*roster) {
		if w.InCustody(h) && w.RemoveCrew(h) {
			out = append(out, h)
		}
	}
	return out
}

func (d *Director) replenish(tick uint64, w *world.World, ship entity.Handle) []entity.Handle {
	if d.spawner == nil {
		return nil
	}
	roster, ok := w.Rosters.Get(ship)
	if !ok {
		return nil
	}
	var out []entity.Handle
	for n := len(*roster); n < d.CrewTarget; n++ {
		out = append(out, d.spawner.Recruit(w, ship, tick))
	}
	return out
}

func (d *Director) dock(v *captain.Vitals) {
	v.Hull = min(1, v.Hull+dockedRepair)
	v.Fuel = min(1, v.Fuel+dockedRefuel)
	v.Ammo = min(1, v.Ammo+dockedRefuel)
}

func resupply(v *captain.Vitals) {
	v.Fuel = 1
	v.Ammo = 1
	v.Hull = min(1, v.Hull+0.3)
	v.Morale = min(1, v.Morale+0.2)
}

// driftMorale pulls morale toward the ship's condition.
func (d *Director) driftMorale(v *captain.Vitals) {
	target := (v.Hull+v.Fuel)/2*1.4 - 0.6
	switch {
	case v.Morale < target:
		v.Morale = min(target, v.Morale+moraleDrift)
	case v.Morale > target:
		v.Morale = max(target, v.Morale-moraleDrift)
	}
}

// driftCrew nudges crew alignment. Low morale erodes law, good morale restores it.
func (d *Director) driftCrew(w *world.World, ship entity.Handle, v *captain.Vitals) {
	roster, ok := w.Rosters.Get(ship)
	if !ok {
		return
	}
	for _, h := range *roster {
		a, ok := w.Alignments.Get(h)
		if !ok {
			continue
		}
		step := float32(d.rng.NormFloat64())*0.002 + v.Morale*0.0005
		*a = alignment.FromFloats(a.Law+step, a.Good, a.Integrity)
	}
}
