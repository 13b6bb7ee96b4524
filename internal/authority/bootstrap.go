package authority

import (
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/entity"
)

// SeatRecord is a newly created seat and its (vacant) occupant.
type SeatRecord struct {
	Handle   entity.Handle
	Seat     Seat
	Occupant Occupant
}

type seatTemplate struct {
	role    string
	domains Domain
}

var standardSeats = []seatTemplate{
	{RoleCaptain, DomainGovernance | DomainSensors | DomainLogistics | DomainFlightOps | DomainCombat},
	{RoleXO, DomainGovernance},
	{RoleShipmaster, DomainGovernance},
	{RoleFleetAdmiral, DomainGovernance | DomainCombat | DomainLogistics | DomainSensors | DomainFlightOps | DomainCommunications},
	{RoleNavigationOfficer, DomainMovement | DomainSensors},
	{RoleWeaponsOfficer, DomainCombat},
	{RoleSensorsOfficer, DomainSensors},
	{RoleCommunicationsOfficer, DomainCommunications | DomainSensors},
	{RoleLogisticsOfficer, DomainLogistics},
	{RoleChiefEngineer, DomainConstruction | DomainLogistics | DomainWork},
	{RoleSecurityOfficer, DomainSecurity | DomainCombat},
	{RoleMarineCommander, DomainSecurity | DomainCombat},
	{RoleMarineSergeant, DomainSecurity | DomainCombat},
	{RoleFlightCommander, DomainFlightOps},
	{RoleFlightDirector, DomainFlightOps | DomainCommunications},
	{RoleHangarDeckOfficer, DomainFlightOps},
}

// StandardSeatCount is the number of seats Bootstrap creates.
var StandardSeatCount = len(standardSeats)

// Bootstrap creates the standard seat hierarchy for ship, captain first. The
// captain seat is the executive seat; every other seat is a delegate. An
// order with no bound authority is bound to the captain seat.
func Bootstrap(tick uint64, ship entity.Handle, create func() entity.Handle, order *captain.Order) (Body, []SeatRecord) {
	records := make([]SeatRecord, 0, len(standardSeats))
	for i, tmpl := range standardSeats {
		seat := Seat{
			RoleID:  tmpl.role,
			Body:    ship,
			Domains: tmpl.domains,
			Rights:  DelegateRights,
		}
		if i == 0 {
			seat.Rights = ExecutiveRights
			seat.Executive = true
		}
		records = append(records, SeatRecord{
			Handle:   create(),
			Seat:     seat,
			Occupant: Occupant{LastChangedTick: tick},
		})
	}

	body := Body{
		Mode:          ModeSingleExecutive,
		ExecutiveSeat: records[0].Handle,
		CreatedTick:   tick,
	}
	if order != nil && order.IssuingAuthority.IsNull() {
		order.IssuingAuthority = body.ExecutiveSeat
	}
	return body, records
}
