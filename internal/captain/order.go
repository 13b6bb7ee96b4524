// Package captain holds the per-ship command model: the order pipeline,
// readiness evaluation, and escalation to higher authority.
package captain

import (
	"fmt"

	"github.com/talgya/fleetcommand/internal/entity"
)

// OrderType is the directive a captain is carrying out.
type OrderType uint8

const (
	OrderNone OrderType = 0

	// Movement
	OrderMoveTo  OrderType = 1
	OrderPatrol  OrderType = 2
	OrderEscort  OrderType = 3
	OrderRetreat OrderType = 4

	// Combat
	OrderAttack    OrderType = 10
	OrderDefend    OrderType = 11
	OrderIntercept OrderType = 12
	OrderBlockade  OrderType = 13

	// Economic
	OrderMine     OrderType = 20
	OrderHaul     OrderType = 21
	OrderTrade    OrderType = 22
	OrderResupply OrderType = 23

	// Support
	OrderRepair    OrderType = 30
	OrderRescue    OrderType = 31
	OrderConstruct OrderType = 32
	OrderSurvey    OrderType = 33

	// Special
	OrderStandby   OrderType = 40
	OrderDisengage OrderType = 41
	OrderNegotiate OrderType = 42
)

var orderTypeNames = map[OrderType]string{
	OrderNone:      "none",
	OrderMoveTo:    "move_to",
	OrderPatrol:    "patrol",
	OrderEscort:    "escort",
	OrderRetreat:   "retreat",
	OrderAttack:    "attack",
	OrderDefend:    "defend",
	OrderIntercept: "intercept",
	OrderBlockade:  "blockade",
	OrderMine:      "mine",
	OrderHaul:      "haul",
	OrderTrade:     "trade",
	OrderResupply:  "resupply",
	OrderRepair:    "repair",
	OrderRescue:    "rescue",
	OrderConstruct: "construct",
	OrderSurvey:    "survey",
	OrderStandby:   "standby",
	OrderDisengage: "disengage",
	OrderNegotiate: "negotiate",
}

func (t OrderType) String() string {
	if n, ok := orderTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("order(%d)", t)
}

// ParseOrderType resolves an order type name. "none" is not issuable.
func ParseOrderType(s string) (OrderType, error) {
	for t, n := range orderTypeNames {
		if n == s && t != OrderNone {
			return t, nil
		}
	}
	return OrderNone, fmt.Errorf("unknown order type %q", s)
}

// OrderStatus is the pipeline state of an order.
type OrderStatus uint8

const (
	StatusNone OrderStatus = iota
	StatusReceived
	StatusValidating
	StatusPreFlight
	StatusExecuting
	StatusCompleted
	StatusFailed
	StatusCancelled
	StatusEscalated
)

var statusNames = [...]string{
	"none", "received", "validating", "preflight", "executing",
	"completed", "failed", "cancelled", "escalated",
}

func (s OrderStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

// Terminal reports whether s ends an order's lifecycle.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusEscalated:
		return true
	}
	return false
}

// Order is a ship's current directive. It is never destroyed, only reset.
// IssuingAuthority always names an authority seat, never the crew member sitting in it.
type Order struct {
	Type               OrderType     `json:"type"`
	Status             OrderStatus   `json:"status"`
	Priority           uint8         `json:"priority"`
	Target             entity.Handle `json:"target"`
	IssuedTick         uint64        `json:"issued_tick"`
	TimeoutTick        uint64        `json:"timeout_tick"` // 0 = no timeout
	LastEvaluationTick uint64        `json:"last_evaluation_tick"`
	IssuingAuthority   entity.Handle `json:"issuing_authority"`
}

// NewOrder returns an order entering the pipeline at Received.
func NewOrder(t OrderType, target entity.Handle, priority uint8, tick uint64, authority entity.Handle) Order {
	return Order{
		Type:             t,
		Status:           StatusReceived,
		Priority:         priority,
		Target:           target,
		IssuedTick:       tick,
		IssuingAuthority: authority,
	}
}

// Idle reports whether the order slot can take a new directive.
func (o *Order) Idle() bool {
	return o.Type == OrderNone && o.Status == StatusNone
}

// Issue replaces the order's directive while keeping its bound authority.
func (o *Order) Issue(t OrderType, target entity.Handle, priority uint8, tick, timeout uint64) {
	authority := o.IssuingAuthority
	*o = NewOrder(t, target, priority, tick, authority)
	o.TimeoutTick = timeout
}

func (o *Order) reset() {
	o.Type = OrderNone
	o.Status = StatusNone
}
