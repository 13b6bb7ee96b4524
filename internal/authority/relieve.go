package authority

import (
	"fmt"

	"github.com/talgya/fleetcommand/internal/crew"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/simtime"
)

// ReliefReason is why an occupant lost their seat.
type ReliefReason uint8

const (
	ReliefMissing ReliefReason = iota + 1 // occupant no longer exists
	ReliefCustody                         // occupant already detained
	ReliefMutiny                          // occupant detained for mutiny
)

func (r ReliefReason) String() string {
	switch r {
	case ReliefMissing:
		return "missing"
	case ReliefCustody:
		return "custody"
	case ReliefMutiny:
		return "mutiny"
	}
	return fmt.Sprintf("relief(%d)", r)
}

// Custodian is the world state relief reads and writes.
type Custodian interface {
	Occupant(h entity.Handle) (*Occupant, bool)
	Exists(h entity.Handle) bool
	InCustody(h entity.Handle) bool
	// MutinySeverity is the worst current mutiny breach of h, if any.
	MutinySeverity(h entity.Handle) (float32, bool)
	Detain(h entity.Handle, c crew.Custody)
}

// Relief is one seat vacated by Relieve.
type Relief struct {
	Ship     entity.Handle `json:"ship"`
	Seat     entity.Handle `json:"seat"`
	Occupant entity.Handle `json:"occupant"`
	Reason   ReliefReason  `json:"reason"`
}

// Relieve vacates seats whose occupant is gone, detained, or mutinying at or
// above threshold; mutineers are detained. Orders stay bound to the seat.
// Relieve does nothing unless the clock is recording.
func Relieve(clock simtime.Clock, cmd *Command, w Custodian, threshold float32) []Relief {
	if !clock.Recording() {
		return nil
	}

	var out []Relief
	for _, sh := range cmd.Seats {
		occ, ok := w.Occupant(sh)
		if !ok || occ.Vacant() {
			continue
		}

		var reason ReliefReason
		switch {
		case !w.Exists(occ.Entity):
			reason = ReliefMissing
		case w.InCustody(occ.Entity):
			reason = ReliefCustody
		default:
			if sev, ok := w.MutinySeverity(occ.Entity); ok && sev >= threshold {
				w.Detain(occ.Entity, crew.Custody{Reason: crew.CustodyMutiny, SinceTick: clock.Tick})
				reason = ReliefMutiny
			}
		}
		if reason == 0 {
			continue
		}

		out = append(out, Relief{Ship: cmd.Ship, Seat: sh, Occupant: occ.Entity, Reason: reason})
		*occ = Occupant{AssignedTick: occ.AssignedTick, LastChangedTick: clock.Tick}
	}
	return out
}
