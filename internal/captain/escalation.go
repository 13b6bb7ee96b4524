package captain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/fleetcommand/internal/entity"
)

// EscalationType is what a captain asks higher authority for.
type EscalationType uint8

const (
	EscalationNone EscalationType = iota
	EscalationReinforcement
	EscalationResupply
	EscalationRepair
	EscalationEvacuation
	EscalationNewOrders
	EscalationAbortMission
)

var escalationTypeNames = [...]string{
	"none", "reinforcement", "resupply", "repair", "evacuation", "new_orders", "abort_mission",
}

func (t EscalationType) String() string {
	if int(t) < len(escalationTypeNames) {
		return escalationTypeNames[t]
	}
	return fmt.Sprintf("escalation(%d)", t)
}

// EscalationReason is why the request was raised.
type EscalationReason uint8

const (
	ReasonNone EscalationReason = iota
	ReasonThreatLevelExceeded
	ReasonResourcesDepleted
	ReasonHullCritical
	ReasonMoraleCritical
	ReasonObjectiveUnreachable
	ReasonOrderTimeout
	ReasonEnemyReinforcements
	ReasonAllyInDistress
)

var reasonNames = [...]string{
	"none", "threat_level_exceeded", "resources_depleted", "hull_critical", "morale_critical",
	"objective_unreachable", "order_timeout", "enemy_reinforcements", "ally_in_distress",
}

func (r EscalationReason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", r)
}

// Priority returns the urgency of an escalation type. Lower is more urgent.
func (t EscalationType) Priority() uint8 {
	if t == EscalationEvacuation {
		return 0
	}
	return 5
}

// Escalation is one request for higher authority.
type Escalation struct {
	ID           uuid.UUID        `json:"id"`
	Type         EscalationType   `json:"type"`
	Reason       EscalationReason `json:"reason"`
	Priority     uint8            `json:"priority"`
	RequestTick  uint64           `json:"request_tick"`
	Acknowledged bool             `json:"acknowledged"`
}

// DefaultEscalationCapacity bounds a ship's escalation log.
const DefaultEscalationCapacity = 8

var escalationNamespace = uuid.MustParse("6f2d1c1e-3b0a-4c59-9d62-0e1f7a5c8b44")

// EscalationLog is a ship's bounded request log. At most one unacknowledged
// entry of each type exists at a time. When full, the oldest entry is dropped.
type EscalationLog struct {
	Owner    entity.Handle `json:"owner"`
	Entries  []Escalation  `json:"entries"`
	Capacity int           `json:"capacity"`
	seq      uint64
}

// NewEscalationLog returns an empty log for owner. A capacity below 1 uses the default.
func NewEscalationLog(owner entity.Handle, capacity int) *EscalationLog {
	if capacity < 1 {
		capacity = DefaultEscalationCapacity
	}
	return &EscalationLog{Owner: owner, Capacity: capacity}
}

// Raise appends a request unless one of the same type is still unacknowledged.
// IDs are derived from the owner and a per-log sequence so replays yield the same IDs.
func (l *EscalationLog) Raise(t EscalationType, reason EscalationReason, tick uint64) (Escalation, bool) {
	for _, e := range l.Entries {
		if e.Type == t && !e.Acknowledged {
			return Escalation{}, false
		}
	}

	l.seq++
	e := Escalation{
		ID:          uuid.NewSHA1(escalationNamespace, fmt.Appendf(nil, "%s/%d", l.Owner, l.seq)),
		Type:        t,
		Reason:      reason,
		Priority:    t.Priority(),
		RequestTick: tick,
	}
	if len(l.Entries) >= l.Capacity {
		l.Entries = append(l.Entries[:0], l.Entries[len(l.Entries)-l.Capacity+1:]...)
	}
	l.Entries = append(l.Entries, e)
	return e, true
}

// Acknowledge marks the entry with id acknowledged.
func (l *EscalationLog) Acknowledge(id uuid.UUID) bool {
	for i := range l.Entries {
		if l.Entries[i].ID == id {
			l.Entries[i].Acknowledged = true
			return true
		}
	}
	return false
}

// Pending counts unacknowledged entries.
func (l *EscalationLog) Pending() int {
	n := 0
	for _, e := range l.Entries {
		if !e.Acknowledged {
			n++
		}
	}
	return n
}

// Process consumes acknowledged entries exactly once. An acknowledged
// AbortMission cancels the order. Consumed entries are returned newest first.
func (l *EscalationLog) Process(o *Order) []Escalation {
	var consumed []Escalation
	for i := len(l.Entries) - 1; i >= 0; i-- {
		e := l.Entries[i]
		if !e.Acknowledged {
			continue
		}
		if e.Type == EscalationAbortMission {
			o.Status = StatusCancelled
		}
		consumed = append(consumed, e)
		l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
	}
	return consumed
}

// CheckEscalation raises the requests an executing captain needs from the
// failed readiness checks. Strict captains never escalate, and only
// Operational or higher call for reinforcement.
func CheckEscalation(l *EscalationLog, o *Order, s *State, r *Readiness, tick uint64) []Escalation {
	if o.Status != StatusExecuting || s.Autonomy == AutonomyStrict {
		return nil
	}

	var raised []Escalation
	raise := func(t EscalationType, reason EscalationReason) {
		if e, ok := l.Raise(t, reason, tick); ok {
			raised = append(raised, e)
		}
	}
	if r.FailedChecks.Has(CheckHull) && r.CurrentReadiness < 0.3 {
		raise(EscalationRepair, ReasonHullCritical)
	}
	if r.FailedChecks.Has(CheckFuel) {
		raise(EscalationResupply, ReasonResourcesDepleted)
	}
	if r.FailedChecks.Has(CheckThreat) && s.Autonomy >= AutonomyOperational {
		raise(EscalationReinforcement, ReasonThreatLevelExceeded)
	}
	return raised
}
