package scenario

import (
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/simtime"
	"github.com/talgya/fleetcommand/internal/world"
)

// ShipEscalation is an escalation together with the ship that raised it.
type ShipEscalation struct {
	Ship entity.Handle
	captain.Escalation
}

// Response is what higher command did this tick.
type Response struct {
	Acknowledged []ShipEscalation
	Aborted      []ShipEscalation // AbortMission requests raised
}

// AutoAcknowledger plays higher command. It acknowledges any request that has
// waited at least Delay ticks and pulls ships out whose hull has fallen below
// EvacuationHull while executing.
type AutoAcknowledger struct {
	Delay          uint64
	EvacuationHull float32
}

// NewAutoAcknowledger returns an acknowledger with the given delay.
func NewAutoAcknowledger(delay uint64) *AutoAcknowledger {
	return &AutoAcknowledger{Delay: delay, EvacuationHull: 0.15}
}

// Tick answers pending escalations. Evacuations are acknowledged first.
func (a *AutoAcknowledger) Tick(clock simtime.Clock, w *world.World) Response {
	var resp Response
	for _, ship := range w.Ships {
		log, ok := w.Escalations.Get(ship)
		if !ok {
			continue
		}

		if order, ok := w.Orders.Get(ship); ok && order.Status == captain.StatusExecuting {
			if v, ok := w.Vitals.Get(ship); ok && v.Hull < a.EvacuationHull {
				if e, ok := log.Raise(captain.EscalationAbortMission, captain.ReasonHullCritical, clock.Tick); ok {
					resp.Aborted = append(resp.Aborted, ShipEscalation{Ship: ship, Escalation: e})
				}
			}
		}

		for _, pass := range []bool{true, false} {
			for _, e := range log.Entries {
				if e.Acknowledged || (e.Priority == 0) != pass {
					continue
				}
				if clock.Tick < e.RequestTick+a.Delay {
					continue
				}
				log.Acknowledge(e.ID)
				e.Acknowledged = true
				resp.Acknowledged = append(resp.Acknowledged, ShipEscalation{Ship: ship, Escalation: e})
			}
		}
	}
	return resp
}
