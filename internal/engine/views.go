package engine

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/fleetcommand/internal/alignment"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/simtime"
)

// Status is the fleet-wide overview.
type Status struct {
	Tick           uint64             `json:"tick"`
	Time           string             `json:"time"`
	Stats          SimStats           `json:"stats"`
	Captains       captain.Summary    `json:"captains"`
	Compliance     compliance.Summary `json:"compliance"`
	QueuedTickets  int                `json:"queued_tickets"`
	TicketsDropped int                `json:"tickets_dropped"`
}

// ShipView is one ship as reported outside the simulation.
type ShipView struct {
	Index              uint32         `json:"index"`
	Handle             string         `json:"handle"`
	Name               string         `json:"name"`
	Faction            string         `json:"faction"`
	Position           sector.Coord   `json:"position"`
	Destination        sector.Coord   `json:"destination"`
	Order              string         `json:"order"`
	Status             string         `json:"status"`
	Priority           uint8          `json:"priority"`
	IssuingAuthority   string         `json:"issuing_authority"`
	Autonomy           string         `json:"autonomy"`
	Ready              bool           `json:"ready"`
	Readiness          float32        `json:"readiness"`
	FailedChecks       string         `json:"failed_checks"`
	Confidence         float32        `json:"confidence"`
	RiskTolerance      float32        `json:"risk_tolerance"`
	Successes          uint32         `json:"successes"`
	Failures           uint32         `json:"failures"`
	Vitals             captain.Vitals `json:"vitals"`
	Crew               int            `json:"crew"`
	Captain            string         `json:"captain"`
	PendingEscalations int            `json:"pending_escalations"`
}

// SeatView is one authority seat and who holds it.
type SeatView struct {
	Ship            string `json:"ship"`
	ShipName        string `json:"ship_name"`
	Seat            string `json:"seat"`
	Role            string `json:"role"`
	Executive       bool   `json:"executive"`
	Occupant        string `json:"occupant"`
	OccupantName    string `json:"occupant_name"`
	Acting          bool   `json:"acting"`
	AssignedTick    uint64 `json:"assigned_tick"`
	LastChangedTick uint64 `json:"last_changed_tick"`
}

// EscalationView is one escalation request.
type EscalationView struct {
	ID           uuid.UUID `json:"id"`
	Ship         string    `json:"ship"`
	ShipName     string    `json:"ship_name"`
	Type         string    `json:"type"`
	Reason       string    `json:"reason"`
	Priority     uint8     `json:"priority"`
	RequestTick  uint64    `json:"request_tick"`
	Acknowledged bool      `json:"acknowledged"`
}

// CrewView is one crew member.
type CrewView struct {
	Handle    string              `json:"handle"`
	Name      string              `json:"name"`
	Ship      string              `json:"ship"`
	Alignment alignment.Triplet   `json:"alignment"`
	Spy       bool                `json:"spy"`
	Suspicion float32             `json:"suspicion"`
	Detained  bool                `json:"detained"`
	Breaches  []compliance.Breach `json:"breaches,omitempty"`
}

// TicketView is a compliance ticket with names resolved.
type TicketView struct {
	Tick            uint64  `json:"tick"`
	Source          string  `json:"source"`
	SourceName      string  `json:"source_name"`
	ShipName        string  `json:"ship_name"`
	Affiliation     string  `json:"affiliation"`
	AffiliationName string  `json:"affiliation_name"`
	Type            string  `json:"type"`
	Severity        float32 `json:"severity"`
}

// ShipDetail is a ship with its seats, escalations and crew.
type ShipDetail struct {
	ShipView
	Seats       []SeatView       `json:"seats"`
	Escalations []EscalationView `json:"escalations"`
	Roster      []CrewView       `json:"roster"`
}

// ComplianceReport is the compliance picture across the fleet.
type ComplianceReport struct {
	Summary compliance.Summary `json:"summary"`
	Metrics map[string]float64 `json:"metrics"`
	Alerts  []CrewView         `json:"alerts"`
	Queued  []TicketView       `json:"queued"`
}

// Snapshot is the fleet state handed to persistence.
type Snapshot struct {
	Tick        uint64
	Ships       []ShipView
	Seats       []SeatView
	Escalations []EscalationView
	Suspicion   []CrewView
	Tickets     []TicketView
	Events      []Event

	ticketMark uint64
	eventMark  uint64
}

// Status returns the fleet overview.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Tick:           s.LastTick,
		Time:           simtime.Format(s.LastTick),
		Stats:          s.Stats,
		Captains:       s.captainSummary(),
		Compliance:     s.complianceSummary(),
		QueuedTickets:  s.Tickets.Len(),
		TicketsDropped: s.Tickets.Dropped(),
	}
}

// Ships returns every ship in creation order.
func (s *Simulation) Ships() []ShipView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ShipView, 0, len(s.World.Ships))
	for _, ship := range s.World.Ships {
		out = append(out, s.shipView(ship))
	}
	return out
}

// Ship returns the ship whose handle index is index.
func (s *Simulation) Ship(index uint32) (ShipDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ship, ok := s.shipByIndex(index)
	if !ok {
		return ShipDetail{}, false
	}

	d := ShipDetail{
		ShipView:    s.shipView(ship),
		Seats:       s.seatViews(ship),
		Escalations: s.escalationViews(ship, false),
	}
	if roster, ok := s.World.Rosters.Get(ship); ok {
		for _, h := range *roster {
			d.Roster = append(d.Roster, s.crewView(h))
		}
	}
	return d, true
}

// Escalations returns escalations across the fleet, pending ones only if asked.
func (s *Simulation) Escalations(pendingOnly bool) []EscalationView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []EscalationView
	for _, ship := range s.World.Ships {
		out = append(out, s.escalationViews(ship, pendingOnly)...)
	}
	return out
}

// Compliance returns the compliance report. Alerts are members at or above
// the alert threshold, most suspicious first; queued lists at most limit
// tickets, newest last.
func (s *Simulation) Compliance(limit int) ComplianceReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := s.complianceSummary()
	r := ComplianceReport{Summary: summary, Metrics: summary.Metrics()}
	s.World.Suspicion.Each(func(h entity.Handle, v float32) {
		if v >= s.Options.AlertThreshold {
			r.Alerts = append(r.Alerts, s.crewView(h))
		}
	})
	slices.SortStableFunc(r.Alerts, func(a, b CrewView) int {
		return cmp.Compare(b.Suspicion, a.Suspicion)
	})

	queued := s.Tickets.Peek()
	if limit > 0 && len(queued) > limit {
		queued = queued[len(queued)-limit:]
	}
	for _, t := range queued {
		r.Queued = append(r.Queued, s.ticketView(t))
	}
	return r
}

// RecentEvents returns up to limit events, newest last.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.Events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return slices.Clone(events)
}

// Snapshot captures the fleet for persistence. It carries the queued tickets
// and the events emitted since the last saved snapshot, and consumes neither:
// call MarkSaved once the snapshot is stored.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.World

	snap := Snapshot{Tick: s.LastTick, ticketMark: s.Tickets.Mark(), eventMark: s.eventSeq}
	for _, ship := range w.Ships {
		snap.Ships = append(snap.Ships, s.shipView(ship))
		snap.Seats = append(snap.Seats, s.seatViews(ship)...)
		snap.Escalations = append(snap.Escalations, s.escalationViews(ship, false)...)
	}
	w.Suspicion.Each(func(h entity.Handle, _ float32) {
		if w.Members.Has(h) {
			snap.Suspicion = append(snap.Suspicion, s.crewView(h))
		}
	})
	for _, t := range s.Tickets.Peek() {
		snap.Tickets = append(snap.Tickets, s.ticketView(t))
	}
	for _, e := range s.Events {
		if e.Seq > s.savedSeq {
			snap.Events = append(snap.Events, e)
		}
	}
	return snap
}

// MarkSaved releases the tickets and events carried by snap so later
// snapshots leave them out. Anything queued after snap was taken is kept.
func (s *Simulation) MarkSaved(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tickets.Release(snap.ticketMark)
	if snap.eventMark > s.savedSeq {
		s.savedSeq = snap.eventMark
	}
}

func (s *Simulation) shipByIndex(index uint32) (entity.Handle, bool) {
	for _, ship := range s.World.Ships {
		if ship.Index == index {
			return ship, true
		}
	}
	return entity.Null, false
}

func (s *Simulation) shipView(ship entity.Handle) ShipView {
	w := s.World
	v := ShipView{Index: ship.Index, Handle: ship.String(), Name: s.shipName(ship)}
	if info, ok := w.ShipInfo.Get(ship); ok {
		v.Faction = s.factionName(info.Faction)
		v.Position = info.Position
		v.Destination = info.Destination
	}
	if o, ok := w.Orders.Get(ship); ok {
		v.Order = o.Type.String()
		v.Status = o.Status.String()
		v.Priority = o.Priority
		v.IssuingAuthority = o.IssuingAuthority.String()
	}
	if st, ok := w.Captains.Get(ship); ok {
		v.Autonomy = st.Autonomy.String()
		v.Ready = st.IsReady
		v.Confidence = st.Confidence
		v.RiskTolerance = st.RiskTolerance
		v.Successes = st.SuccessCount
		v.Failures = st.FailureCount
	}
	if r, ok := w.Readiness.Get(ship); ok {
		v.Readiness = r.CurrentReadiness
		v.FailedChecks = r.FailedChecks.String()
	}
	if vit, ok := w.Vitals.Get(ship); ok {
		v.Vitals = *vit
	}
	if roster, ok := w.Rosters.Get(ship); ok {
		v.Crew = len(*roster)
	}
	if exec, ok := w.ExecutiveOccupant(ship); ok {
		v.Captain = s.memberName(exec)
	}
	if log, ok := w.Escalations.Get(ship); ok {
		v.PendingEscalations = log.Pending()
	}
	return v
}

func (s *Simulation) seatViews(ship entity.Handle) []SeatView {
	w := s.World
	seats, ok := w.SeatLists.Get(ship)
	if !ok {
		return nil
	}
	out := make([]SeatView, 0, len(*seats))
	for _, sh := range *seats {
		seat, ok := w.Seat(sh)
		if !ok {
			continue
		}
		v := SeatView{
			Ship:      ship.String(),
			ShipName:  s.shipName(ship),
			Seat:      sh.String(),
			Role:      seat.RoleID,
			Executive: seat.Executive,
		}
		if occ, ok := w.Occupant(sh); ok {
			v.AssignedTick = occ.AssignedTick
			v.LastChangedTick = occ.LastChangedTick
			v.Acting = occ.IsActing
			if !occ.Vacant() {
				v.Occupant = occ.Entity.String()
				v.OccupantName = s.memberName(occ.Entity)
			}
		}
		out = append(out, v)
	}
	return out
}

func (s *Simulation) escalationViews(ship entity.Handle, pendingOnly bool) []EscalationView {
	log, ok := s.World.Escalations.Get(ship)
	if !ok {
		return nil
	}
	var out []EscalationView
	for _, e := range log.Entries {
		if pendingOnly && e.Acknowledged {
			continue
		}
		out = append(out, EscalationView{
			ID:           e.ID,
			Ship:         ship.String(),
			ShipName:     s.shipName(ship),
			Type:         e.Type.String(),
			Reason:       e.Reason.String(),
			Priority:     e.Priority,
			RequestTick:  e.RequestTick,
			Acknowledged: e.Acknowledged,
		})
	}
	return out
}

func (s *Simulation) crewView(h entity.Handle) CrewView {
	w := s.World
	v := CrewView{
		Handle:   h.String(),
		Name:     s.memberName(h),
		Spy:      w.Spies.Has(h),
		Detained: w.InCustody(h),
	}
	if m, ok := w.Members.Get(h); ok {
		v.Ship = s.shipName(m.Ship)
	}
	if a, ok := w.Alignments.Get(h); ok {
		v.Alignment = *a
	}
	v.Suspicion, _ = w.Suspicion.Get(h)
	if log, ok := w.Breaches.Get(h); ok && len(log.Breaches) > 0 {
		v.Breaches = slices.Clone(log.Breaches)
	}
	return v
}

func (s *Simulation) ticketView(t compliance.Ticket) TicketView {
	v := TicketView{
		Tick:            t.Tick,
		Source:          t.Source.String(),
		SourceName:      s.memberName(t.Source),
		Affiliation:     t.Affiliation.String(),
		AffiliationName: s.factionName(t.Affiliation),
		Type:            t.Type.String(),
		Severity:        t.Severity,
	}
	if m, ok := s.World.Members.Get(t.Source); ok {
		v.ShipName = s.shipName(m.Ship)
	}
	return v
}
