package authority

import (
	"math"

	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/crew"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/simtime"
)

const tieEpsilon = 1e-4

// Lookup is the world state succession reads and writes. Fill writes only
// through the Occupant and Order pointers of the command it is given.
type Lookup interface {
	Seat(h entity.Handle) (*Seat, bool)
	Occupant(h entity.Handle) (*Occupant, bool)
	Exists(h entity.Handle) bool
	InCustody(h entity.Handle) bool
	Stats(h entity.Handle) (crew.Stats, bool)
	Capacities(h entity.Handle) (crew.Capacities, bool)
	Order(ship entity.Handle) (*captain.Order, bool)
}

// Assignment is one seat filled by Fill.
type Assignment struct {
	Ship       entity.Handle `json:"ship"`
	Seat       entity.Handle `json:"seat"`
	Role       string        `json:"role"`
	Occupant   entity.Handle `json:"occupant"`
	Score      float32       `json:"score"`
	BoundOrder bool          `json:"bound_order"`
}

// Fill assigns the best available crew member to every vacant seat of cmd,
// in seat order. A crew member takes at most one seat, and filled seats are
// never reassigned. Equal scores go to the lower entity index. Fill does
// nothing unless the clock is recording.
func Fill(clock simtime.Clock, cmd *Command, w Lookup) []Assignment {
	if !clock.Recording() || len(cmd.Seats) == 0 || len(cmd.Crew) == 0 {
		return nil
	}

	used := make(map[entity.Handle]struct{}, len(cmd.Seats))
	vacant := 0
	for _, sh := range cmd.Seats {
		occ, ok := w.Occupant(sh)
		if !ok {
			continue
		}
		if occ.Vacant() {
			vacant++
			continue
		}
		used[occ.Entity] = struct{}{}
	}
	if vacant == 0 {
		return nil
	}

	var out []Assignment
	for _, sh := range cmd.Seats {
		occ, ok := w.Occupant(sh)
		if !ok || !occ.Vacant() {
			continue
		}
		seat, ok := w.Seat(sh)
		if !ok {
			continue
		}

		best := entity.Null
		bestScore := float32(math.Inf(-1))
		for _, c := range cmd.Crew {
			if c.IsNull() || !w.Exists(c) || w.InCustody(c) {
				continue
			}
			if _, taken := used[c]; taken {
				continue
			}
			score := candidateScore(seat.RoleID, c, w)
			if best.IsNull() || score > bestScore ||
				(abs(score-bestScore) < tieEpsilon && c.Index < best.Index) {
				best = c
				bestScore = score
			}
		}
		if best.IsNull() {
			continue
		}

		*occ = Occupant{
			Entity:          best,
			AssignedTick:    clock.Tick,
			LastChangedTick: clock.Tick,
		}
		used[best] = struct{}{}

		a := Assignment{Ship: cmd.Ship, Seat: sh, Role: seat.RoleID, Occupant: best, Score: bestScore}
		if isExecutive(cmd, sh, seat) {
			if o, ok := w.Order(cmd.Ship); ok && o.IssuingAuthority.IsNull() {
				o.IssuingAuthority = sh
				a.BoundOrder = true
			}
		}
		out = append(out, a)
	}
	return out
}

func candidateScore(role string, c entity.Handle, w Lookup) float32 {
	stats, ok := w.Stats(c)
	if !ok {
		return 0
	}
	var caps *crew.Capacities
	if v, ok := w.Capacities(c); ok {
		caps = &v
	}
	return Score(role, stats, caps)
}

func isExecutive(cmd *Command, sh entity.Handle, seat *Seat) bool {
	if !cmd.Body.ExecutiveSeat.IsNull() {
		return cmd.Body.ExecutiveSeat == sh
	}
	return seat.Executive
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
