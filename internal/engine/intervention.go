package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/sector"
)

// Intervention errors callers branch on.
var (
	ErrEscalationNotFound = errors.New("escalation not found")
	ErrShipNotFound       = errors.New("ship not found")
	ErrOrderInProgress    = errors.New("ship already has an order in progress")
)

// AcknowledgeEscalation marks an escalation acknowledged on behalf of higher
// command. The owning ship consumes it on its next escalation pass.
func (s *Simulation) AcknowledgeEscalation(id uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ship, log, ok := s.World.Escalation(func(e captain.Escalation) bool { return e.ID == id })
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrEscalationNotFound, id)
	}
	var kind captain.EscalationType
	for _, e := range log.Entries {
		if e.ID == id {
			kind = e.Type
		}
	}
	log.Acknowledge(id)

	desc := fmt.Sprintf("Command acknowledges %s request from %s", kind, s.shipName(ship))
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    CategoryCommand,
		Meta: map[string]any{
			"ship": ship.String(),
			"id":   id.String(),
			"type": kind.String(),
		},
	})

	slog.Info("escalation acknowledged", "ship", s.shipName(ship), "type", kind, "id", id)
	return desc, nil
}

// IssueOrder hands an idle ship a new order toward dest. The order keeps the
// ship's bound issuing authority and enters the pipeline at Received.
func (s *Simulation) IssueOrder(index uint32, t captain.OrderType, dest sector.Coord, priority uint8, timeoutTicks uint64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ship, ok := s.shipByIndex(index)
	if !ok {
		return "", fmt.Errorf("%w: index %d", ErrShipNotFound, index)
	}
	if !s.Sector.InBounds(dest) {
		return "", fmt.Errorf("destination %d,%d is outside the sector", dest.Q, dest.R)
	}
	o, ok := s.World.Orders.Get(ship)
	if !ok {
		return "", fmt.Errorf("%w: index %d", ErrShipNotFound, index)
	}
	if !o.Idle() {
		return "", fmt.Errorf("%w: %s is %s", ErrOrderInProgress, s.shipName(ship), o.Status)
	}

	var timeout uint64
	if timeoutTicks > 0 {
		timeout = s.LastTick + timeoutTicks
	}
	o.Issue(t, entity.Null, priority, s.LastTick, timeout)
	if info, ok := s.World.ShipInfo.Get(ship); ok {
		info.Destination = dest
	}

	desc := fmt.Sprintf("Command orders %s to %s toward %d,%d", s.shipName(ship), t, dest.Q, dest.R)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    CategoryCommand,
		Meta: map[string]any{
			"ship":     ship.String(),
			"order":    t.String(),
			"priority": priority,
		},
	})

	slog.Info("order issued", "ship", s.shipName(ship), "order", t, "q", dest.Q, "r", dest.R)
	return desc, nil
}
