package authority

import "github.com/talgya/fleetcommand/internal/crew"

// Standard ship roles, in bootstrap order.
const (
	RoleCaptain               = "ship.captain"
	RoleXO                    = "ship.xo"
	RoleShipmaster            = "ship.shipmaster"
	RoleFleetAdmiral          = "ship.fleet_admiral"
	RoleNavigationOfficer     = "ship.navigation_officer"
	RoleWeaponsOfficer        = "ship.weapons_officer"
	RoleSensorsOfficer        = "ship.sensors_officer"
	RoleCommunicationsOfficer = "ship.communications_officer"
	RoleLogisticsOfficer      = "ship.logistics_officer"
	RoleChiefEngineer         = "ship.chief_engineer"
	RoleSecurityOfficer       = "ship.security_officer"
	RoleMarineCommander       = "ship.marine_commander"
	RoleMarineSergeant        = "ship.marine_sergeant"
	RoleFlightCommander       = "ship.flight_commander"
	RoleFlightDirector        = "ship.flight_director"
	RoleHangarDeckOfficer     = "ship.hangar_deck_officer"
)

// weights is a role's coefficient per stat axis.
type weights struct {
	command, tactics, logistics, diplomacy, engineering, resolve float32
}

func (w weights) apply(s crew.Stats) float32 {
	return w.command*s.Command +
		w.tactics*s.Tactics +
		w.logistics*s.Logistics +
		w.diplomacy*s.Diplomacy +
		w.engineering*s.Engineering +
		w.resolve*s.Resolve
}

var roleWeights = map[string]weights{
	RoleCaptain:               {command: 2.25, tactics: 0.5, resolve: 1.5},
	RoleXO:                    {command: 1.5, tactics: 1.25, resolve: 1},
	RoleShipmaster:            {command: 1, logistics: 1.75, resolve: 1},
	RoleFleetAdmiral:          {command: 2.4, tactics: 1.5, logistics: 1, diplomacy: 1.25},
	RoleNavigationOfficer:     {command: 0.75, tactics: 1.2, engineering: 1, resolve: 0.5},
	RoleWeaponsOfficer:        {command: 0.5, tactics: 2, resolve: 0.25},
	RoleSensorsOfficer:        {tactics: 1.25, diplomacy: 0.5, engineering: 1.25},
	RoleCommunicationsOfficer: {command: 0.75, tactics: 0.5, diplomacy: 1.6},
	RoleLogisticsOfficer:      {command: 0.25, logistics: 2, resolve: 0.5},
	RoleChiefEngineer:         {logistics: 1.25, engineering: 2, resolve: 0.5},
	RoleSecurityOfficer:       {command: 1.25, tactics: 1, resolve: 1.5},
	RoleMarineCommander:       {command: 0.75, tactics: 1.5, resolve: 1.25},
	RoleMarineSergeant:        {command: 0.5, tactics: 1.25, resolve: 1.5},
	RoleFlightCommander:       {command: 1, tactics: 1.25, logistics: 0.75},
	RoleFlightDirector:        {tactics: 1, logistics: 1.2, diplomacy: 0.5},
	RoleHangarDeckOfficer:     {command: 1, tactics: 1.25, logistics: 0.75},
}

// Known reports whether role has its own weight vector.
func Known(role string) bool {
	_, ok := roleWeights[role]
	return ok
}

// Score rates a candidate for role. Unknown roles take the most capable
// generalist. A sensors officer's score scales with sight when caps is set.
func Score(role string, s crew.Stats, caps *crew.Capacities) float32 {
	w, ok := roleWeights[role]
	if !ok {
		return s.Sum()
	}
	score := w.apply(s)
	if role == RoleSensorsOfficer && caps != nil && score > 0 {
		score *= clamp(caps.Sight, 0.5, 1.5)
	}
	return score
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
