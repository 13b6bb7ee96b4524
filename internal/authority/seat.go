// Package authority models who holds command aboard a ship. A seat is a stable
// identity that orders bind to; the occupant is mutable state of the seat, so
// replacing the person in a seat never invalidates orders issued from it.
package authority

import "github.com/talgya/fleetcommand/internal/entity"

// Domain is a bitset of areas a seat has say over.
type Domain uint16

const (
	DomainGovernance Domain = 1 << iota
	DomainCombat
	DomainLogistics
	DomainSensors
	DomainFlightOps
	DomainCommunications
	DomainMovement
	DomainConstruction
	DomainWork
	DomainSecurity
)

// Rights is a bitset of what a seat may do within its domains.
type Rights uint8

const (
	RightRecommend Rights = 1 << iota
	RightIssue
	RightVeto
	RightOverride
)

// DelegateRights are granted to every subordinate seat.
const DelegateRights = RightRecommend | RightIssue

// ExecutiveRights are granted to the executive seat.
const ExecutiveRights = RightRecommend | RightIssue | RightVeto | RightOverride

// Seat is the stable identity of a command position.
type Seat struct {
	RoleID    string        `json:"role_id"`
	Body      entity.Handle `json:"body"` // owning ship
	Domains   Domain        `json:"domains"`
	Rights    Rights        `json:"rights"`
	Executive bool          `json:"executive"`
}

// Occupant is who currently sits in a seat. Entity is Null when vacant.
type Occupant struct {
	Entity          entity.Handle `json:"entity"`
	AssignedTick    uint64        `json:"assigned_tick"`
	LastChangedTick uint64        `json:"last_changed_tick"`
	IsActing        bool          `json:"is_acting"`
}

// Vacant reports whether nobody holds the seat.
func (o *Occupant) Vacant() bool {
	return o.Entity.IsNull()
}

// BodyMode is how a ship's authority body decides.
type BodyMode uint8

const (
	ModeSingleExecutive BodyMode = iota
	ModeCouncil
)

// Body is a ship's authority structure.
type Body struct {
	Mode          BodyMode      `json:"mode"`
	ExecutiveSeat entity.Handle `json:"executive_seat"`
	CreatedTick   uint64        `json:"created_tick"`
}

// Command is the per-ship view succession works on. Seats are in fill order,
// captain first.
type Command struct {
	Ship  entity.Handle
	Body  Body
	Seats []entity.Handle
	Crew  []entity.Handle
}
