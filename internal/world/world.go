// Package world holds every entity of the fleet simulation in generation-checked
// component stores: ships, their authority seats, crew members, and the
// factions whose doctrines crews are held to.
package world

import (
	"slices"

	"github.com/talgya/fleetcommand/internal/alignment"
	"github.com/talgya/fleetcommand/internal/authority"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/crew"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/sector"
)

// Ship is the identity record of a ship.
type Ship struct {
	Name        string        `json:"name"`
	Faction     entity.Handle `json:"faction"`
	Position    sector.Coord  `json:"position"`
	Destination sector.Coord  `json:"destination"`
}

// Member is the identity record of a crew member.
type Member struct {
	Name string        `json:"name"`
	Ship entity.Handle `json:"ship"`
}

// Faction is a doctrine holder.
type Faction struct {
	Name string `json:"name"`
}

// World is the complete entity state.
type World struct {
	Arena *entity.Arena

	Ships    []entity.Handle // creation order
	Factions []entity.Handle

	// Ship components.
	ShipInfo    *entity.Dense[Ship]
	Orders      *entity.Dense[captain.Order]
	Captains    *entity.Dense[captain.State]
	Readiness   *entity.Dense[captain.Readiness]
	Vitals      *entity.Dense[captain.Vitals]
	Escalations *entity.Sparse[*captain.EscalationLog]
	Bodies      *entity.Dense[authority.Body]
	SeatLists   *entity.Dense[[]entity.Handle]
	Rosters     *entity.Dense[[]entity.Handle]

	// Seat components.
	Seats     *entity.Dense[authority.Seat]
	Occupants *entity.Dense[authority.Occupant]

	// Crew components.
	Members        *entity.Dense[Member]
	CrewStats      *entity.Dense[crew.Stats]
	CrewCapacities *entity.Sparse[crew.Capacities]
	Alignments     *entity.Dense[alignment.Triplet]
	Axes           *entity.Dense[alignment.Axes]
	Outlooks       *entity.Dense[[]alignment.Outlook]
	Affiliations   *entity.Dense[[]compliance.Affiliation]
	Breaches       *entity.Sparse[*compliance.BreachLog]
	Suspicion      *entity.Sparse[float32]
	Spies          *entity.Sparse[struct{}]
	Contracts      *entity.Sparse[compliance.Contract]
	Custody        *entity.Sparse[crew.Custody]

	// Faction components.
	FactionInfo *entity.Dense[Faction]
	Doctrines   *entity.Sparse[*compliance.Doctrine]

	EscalationCapacity int
	BreachCapacity     int
}

// New creates an empty world.
func New(escalationCapacity, breachCapacity int) *World {
	return &World{
		Arena:          entity.NewArena(),
		ShipInfo:       entity.NewDense[Ship](),
		Orders:         entity.NewDense[captain.Order](),
		Captains:       entity.NewDense[captain.State](),
		Readiness:      entity.NewDense[captain.Readiness](),
		Vitals:         entity.NewDense[captain.Vitals](),
		Escalations:    entity.NewSparse[*captain.EscalationLog](),
		Bodies:         entity.NewDense[authority.Body](),
		SeatLists:      entity.NewDense[[]entity.Handle](),
		Rosters:        entity.NewDense[[]entity.Handle](),
		Seats:          entity.NewDense[authority.Seat](),
		Occupants:      entity.NewDense[authority.Occupant](),
		Members:        entity.NewDense[Member](),
		CrewStats:      entity.NewDense[crew.Stats](),
		CrewCapacities: entity.NewSparse[crew.Capacities](),
		Alignments:     entity.NewDense[alignment.Triplet](),
		Axes:           entity.NewDense[alignment.Axes](),
		Outlooks:       entity.NewDense[[]alignment.Outlook](),
		Affiliations:   entity.NewDense[[]compliance.Affiliation](),
		Breaches:       entity.NewSparse[*compliance.BreachLog](),
		Suspicion:      entity.NewSparse[float32](),
		Spies:          entity.NewSparse[struct{}](),
		Contracts:      entity.NewSparse[compliance.Contract](),
		Custody:        entity.NewSparse[crew.Custody](),
		FactionInfo:    entity.NewDense[Faction](),
		Doctrines:      entity.NewSparse[*compliance.Doctrine](),

		EscalationCapacity: escalationCapacity,
		BreachCapacity:     breachCapacity,
	}
}

// AddFaction creates a doctrine holder. A nil doctrine leaves it without a profile.
func (w *World) AddFaction(name string, d *compliance.Doctrine) entity.Handle {
	h := w.Arena.Create()
	w.FactionInfo.Set(h, Faction{Name: name})
	if d != nil {
		w.Doctrines.Set(h, d)
	}
	w.Factions = append(w.Factions, h)
	return h
}

// AddShip creates a ship with an idle order, a default captain, the given
// readiness thresholds and full vitals, and its standard seat hierarchy.
func (w *World) AddShip(tick uint64, info Ship, preset captain.Readiness, autonomy captain.Autonomy) entity.Handle {
	h := w.Arena.Create()
	w.ShipInfo.Set(h, info)

	state := captain.DefaultState()
	state.Autonomy = autonomy
	w.Orders.Set(h, captain.Order{})
	w.Captains.Set(h, state)
	w.Readiness.Set(h, preset)
	w.Vitals.Set(h, captain.Vitals{Hull: 1, Morale: 0.5, Fuel: 1, Ammo: 1})
	w.Escalations.Set(h, captain.NewEscalationLog(h, w.EscalationCapacity))
	w.Rosters.Set(h, nil)

	order, _ := w.Orders.Get(h)
	body, records := authority.Bootstrap(tick, h, w.Arena.Create, order)
	seats := make([]entity.Handle, 0, len(records))
	for _, r := range records {
		w.Seats.Set(r.Handle, r.Seat)
		w.Occupants.Set(r.Handle, r.Occupant)
		seats = append(seats, r.Handle)
	}
	w.Bodies.Set(h, body)
	w.SeatLists.Set(h, seats)

	w.Ships = append(w.Ships, h)
	return h
}

// CrewSpec is everything needed to enlist a crew member.
type CrewSpec struct {
	Name         string
	Stats        crew.Stats
	Capacities   *crew.Capacities
	Alignment    alignment.Triplet
	Axes         alignment.Axes
	Outlooks     []alignment.Outlook
	Affiliations []compliance.Affiliation
	Spy          bool
	Contract     *compliance.Contract
}

// AddCrew enlists a crew member aboard ship.
func (w *World) AddCrew(ship entity.Handle, spec CrewSpec) entity.Handle {
	h := w.Arena.Create()
	w.Members.Set(h, Member{Name: spec.Name, Ship: ship})
	w.CrewStats.Set(h, spec.Stats)
	if spec.Capacities != nil {
		w.CrewCapacities.Set(h, *spec.Capacities)
	}
	w.Alignments.Set(h, spec.Alignment)
	w.Axes.Set(h, spec.Axes)
	w.Outlooks.Set(h, spec.Outlooks)
	w.Affiliations.Set(h, spec.Affiliations)
	w.Breaches.Set(h, compliance.NewBreachLog(w.BreachCapacity))
	if spec.Spy {
		w.Spies.Set(h, struct{}{})
	}
	if spec.Contract != nil {
		w.Contracts.Set(h, *spec.Contract)
	}

	if roster, ok := w.Rosters.Get(ship); ok {
		*roster = append(*roster, h)
	}
	return h
}

// RemoveCrew destroys a crew member. Seats they held keep the stale handle
// until relief notices it no longer exists.
func (w *World) RemoveCrew(h entity.Handle) bool {
	m, ok := w.Members.Get(h)
	if !ok {
		return false
	}
	if roster, ok := w.Rosters.Get(m.Ship); ok {
		*roster = slices.DeleteFunc(*roster, func(c entity.Handle) bool { return c == h })
	}
	w.Members.Remove(h)
	w.CrewStats.Remove(h)
	w.CrewCapacities.Remove(h)
	w.Alignments.Remove(h)
	w.Axes.Remove(h)
	w.Outlooks.Remove(h)
	w.Affiliations.Remove(h)
	w.Breaches.Remove(h)
	w.Suspicion.Remove(h)
	w.Spies.Remove(h)
	w.Contracts.Remove(h)
	w.Custody.Remove(h)
	return w.Arena.Destroy(h)
}

// Command returns the succession view of ship.
func (w *World) Command(ship entity.Handle) (*authority.Command, bool) {
	if !w.ShipInfo.Has(ship) {
		return nil, false
	}
	cmd := &authority.Command{Ship: ship}
	if b, ok := w.Bodies.Get(ship); ok {
		cmd.Body = *b
	}
	if s, ok := w.SeatLists.Get(ship); ok {
		cmd.Seats = *s
	}
	if r, ok := w.Rosters.Get(ship); ok {
		cmd.Crew = *r
	}
	return cmd, true
}

// ExecutiveOccupant returns who sits in ship's executive seat.
func (w *World) ExecutiveOccupant(ship entity.Handle) (entity.Handle, bool) {
	b, ok := w.Bodies.Get(ship)
	if !ok {
		return entity.Null, false
	}
	occ, ok := w.Occupants.Get(b.ExecutiveSeat)
	if !ok || occ.Vacant() {
		return entity.Null, false
	}
	return occ.Entity, true
}

// Escalation finds an escalation by ID across every ship.
func (w *World) Escalation(match func(captain.Escalation) bool) (entity.Handle, *captain.EscalationLog, bool) {
	for _, ship := range w.Ships {
		log, ok := w.Escalations.Get(ship)
		if !ok {
			continue
		}
		for _, e := range log.Entries {
			if match(e) {
				return ship, log, true
			}
		}
	}
	return entity.Null, nil, false
}
