package world

import (
	"github.com/talgya/fleetcommand/internal/authority"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/crew"
	"github.com/talgya/fleetcommand/internal/entity"
)

// World serves the read and write contracts of the core systems.
var (
	_ authority.Lookup          = (*World)(nil)
	_ authority.Custodian       = (*World)(nil)
	_ compliance.DoctrineSource = (*World)(nil)
)

func (w *World) Seat(h entity.Handle) (*authority.Seat, bool) {
	return w.Seats.Get(h)
}

func (w *World) Occupant(h entity.Handle) (*authority.Occupant, bool) {
	return w.Occupants.Get(h)
}

// Exists reports whether h is a live entity.
func (w *World) Exists(h entity.Handle) bool {
	return w.Arena.Alive(h)
}

func (w *World) InCustody(h entity.Handle) bool {
	return w.Custody.Has(h)
}

func (w *World) Stats(h entity.Handle) (crew.Stats, bool) {
	s, ok := w.CrewStats.Get(h)
	if !ok {
		return crew.Stats{}, false
	}
	return *s, true
}

func (w *World) Capacities(h entity.Handle) (crew.Capacities, bool) {
	return w.CrewCapacities.Get(h)
}

func (w *World) Order(ship entity.Handle) (*captain.Order, bool) {
	return w.Orders.Get(ship)
}

// MutinySeverity is the worst mutiny breach h holds this tick.
func (w *World) MutinySeverity(h entity.Handle) (float32, bool) {
	log, ok := w.Breaches.Get(h)
	if !ok {
		return 0, false
	}
	b, ok := log.Worst(compliance.BreachMutiny)
	return b.Severity, ok
}

func (w *World) Detain(h entity.Handle, c crew.Custody) {
	w.Custody.Set(h, c)
}

func (w *World) Doctrine(target entity.Handle) (*compliance.Doctrine, bool) {
	return w.Doctrines.Get(target)
}
