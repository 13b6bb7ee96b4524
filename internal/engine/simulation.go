// Simulation ties together the fleet systems and runs them each tick.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/talgya/fleetcommand/internal/authority"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/scenario"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/simtime"
	"github.com/talgya/fleetcommand/internal/world"
)

// Event categories.
const (
	CategoryOrder      = "order"
	CategoryEscalation = "escalation"
	CategoryCompliance = "compliance"
	CategorySuccession = "succession"
	CategoryCrew       = "crew"
	CategoryCommand    = "command" // operator interventions
)

const maxEvents = 1000

// Options tune the simulation systems.
type Options struct {
	SuccessionWorkers int     // goroutines filling seats; 1 runs inline
	CustodyThreshold  float32 // mutiny severity that lands an occupant in custody
	AlertThreshold    float32 // suspicion reported as an alert
	TicketCapacity    int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		SuccessionWorkers: runtime.NumCPU(),
		CustodyThreshold:  0.6,
		AlertThreshold:    compliance.DefaultAlertThreshold,
		TicketCapacity:    compliance.DefaultTicketCapacity,
	}
}

// Simulation holds the complete fleet state and wires systems together.
type Simulation struct {
	World     *world.World
	Sector    *sector.Sector
	Threat    *sector.ThreatField
	Evaluator *compliance.Evaluator
	Tickets   *compliance.TicketQueue

	// External collaborators. Either may be nil.
	Director     *scenario.Director
	Acknowledger *scenario.AutoAcknowledger

	Events   []Event // Recent events, newest last
	LastTick uint64  // Most recent tick processed
	Stats    SimStats
	Options  Options

	mu       sync.RWMutex
	eventSeq uint64
	savedSeq uint64
	tracer   trace.Tracer
}

// Event is a notable occurrence in the fleet.
type Event struct {
	Seq         uint64         `json:"seq"`
	Tick        uint64         `json:"tick"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// SimStats tracks aggregate fleet statistics. Gauges are refreshed at the end
// of every tick; counters accumulate from the start of the run.
type SimStats struct {
	Ships     int `json:"ships"`
	Crew      int `json:"crew"`
	Ready     int `json:"ready"`
	Executing int `json:"executing"`
	Detained  int `json:"detained"`
	Vacant    int `json:"vacant_seats"`

	OrdersCompleted     int `json:"orders_completed"`
	OrdersFailed        int `json:"orders_failed"`
	OrdersCancelled     int `json:"orders_cancelled"`
	EscalationsRaised   int `json:"escalations_raised"`
	EscalationsConsumed int `json:"escalations_consumed"`
	BreachesDropped     int `json:"breaches_dropped"`
	SeatsFilled         int `json:"seats_filled"`
	SeatsVacated        int `json:"seats_vacated"`
	Casualties          int `json:"casualties"`
}

// NewSimulation creates a Simulation over a populated world.
func NewSimulation(w *world.World, s *sector.Sector, opts Options) *Simulation {
	if opts.SuccessionWorkers < 1 {
		opts.SuccessionWorkers = 1
	}
	sim := &Simulation{
		World:     w,
		Sector:    s,
		Threat:    sector.NewThreatField(s),
		Evaluator: &compliance.Evaluator{Doctrines: w},
		Tickets:   compliance.NewTicketQueue(opts.TicketCapacity),
		Options:   opts,
		tracer:    otel.Tracer("github.com/talgya/fleetcommand/internal/engine"),
	}
	sim.updateStats()
	return sim
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastTick
}

// EmitEvent appends an event, keeping the most recent maxEvents.
// Callers hold the write lock.
func (s *Simulation) EmitEvent(e Event) {
	s.eventSeq++
	e.Seq = s.eventSeq
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// TickMinute runs every tick (1 sim-minute). A paused clock is a no-op.
// Outside recording mode the collaborators, relief and succession are skipped
// so that recorded state is never re-derived.
func (s *Simulation) TickMinute(clock simtime.Clock) {
	if clock.Paused {
		return
	}
	ctx, span := s.tracer.Start(context.Background(), "fleetsim.tick",
		trace.WithAttributes(
			attribute.Int64("fleetsim.tick", int64(clock.Tick)),
			attribute.String("fleetsim.mode", clock.Mode.String()),
		))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastTick = clock.Tick
	span.SetAttributes(attribute.Int("fleetsim.ships", len(s.World.Ships)))

	if clock.Recording() {
		s.pass(ctx, "collaborators", func() { s.runCollaborators(clock) })
	}
	s.pass(ctx, "readiness", func() { s.evaluateReadiness(clock) })
	s.pass(ctx, "orders", func() { s.advanceOrders(clock) })
	s.pass(ctx, "escalation", func() { s.processEscalations(clock) })
	s.pass(ctx, "compliance", func() { s.evaluateCompliance(clock) })
	if clock.Recording() {
		s.pass(ctx, "relief", func() { s.relieveSeats(clock) })
		s.pass(ctx, "succession", func() { s.fillSeats(clock) })
	}
	s.updateStats()
}

func (s *Simulation) pass(ctx context.Context, name string, fn func()) {
	_, span := s.tracer.Start(ctx, "fleetsim."+name)
	defer span.End()
	fn()
}

func (s *Simulation) runCollaborators(clock simtime.Clock) {
	w := s.World
	if s.Director != nil {
		act := s.Director.Tick(clock, w)
		for _, c := range act.Casualties {
			s.Stats.Casualties++
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("%s was lost aboard %s", c.Name, s.shipName(c.Ship)),
				Category:    CategoryCrew,
				Meta:        map[string]any{"ship": c.Ship.String(), "member": c.Member.String()},
			})
		}
		for _, ship := range act.Arrived {
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("%s reached its destination", s.shipName(ship)),
				Category:    CategoryOrder,
				Meta:        map[string]any{"ship": ship.String()},
			})
		}
		if n := len(act.Released); n > 0 {
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("%d detainees handed over to port authorities", n),
				Category:    CategoryCrew,
			})
		}
		if n := len(act.Recruited); n > 0 {
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("%d replacement crew enlisted", n),
				Category:    CategoryCrew,
			})
		}
	}

	if s.Acknowledger != nil {
		resp := s.Acknowledger.Tick(clock, w)
		for _, e := range resp.Aborted {
			s.Stats.EscalationsRaised++
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("Command orders %s to abort its mission", s.shipName(e.Ship)),
				Category:    CategoryEscalation,
				Meta:        map[string]any{"ship": e.Ship.String(), "id": e.ID.String()},
			})
		}
	}
}

// evaluateReadiness samples threat at each ship's position, derives risk
// tolerance from whoever holds the executive seat, and re-evaluates readiness.
// A vacant executive seat keeps the previous tolerance.
func (s *Simulation) evaluateReadiness(clock simtime.Clock) {
	w := s.World
	for _, ship := range w.Ships {
		r, ok := w.Readiness.Get(ship)
		if !ok {
			continue
		}
		v, ok := w.Vitals.Get(ship)
		if !ok {
			continue
		}
		st, ok := w.Captains.Get(ship)
		if !ok {
			continue
		}

		if info, ok := w.ShipInfo.Get(ship); ok {
			v.Threat = s.Threat.Sample(info.Position, clock.Tick)
		}
		if exec, ok := w.ExecutiveOccupant(ship); ok {
			if a, ok := w.Alignments.Get(exec); ok {
				captain.UpdateRiskTolerance(st, *a)
			}
		}
		captain.Evaluate(r, *v, st)
	}
}

func (s *Simulation) advanceOrders(clock simtime.Clock) {
	w := s.World
	for _, ship := range w.Ships {
		o, ok := w.Orders.Get(ship)
		if !ok {
			continue
		}
		st, ok := w.Captains.Get(ship)
		if !ok {
			continue
		}

		kind := o.Type
		from, to := captain.Advance(o, st, clock.Tick)
		if from == to {
			continue
		}

		var desc string
		switch {
		case to == captain.StatusExecuting:
			desc = fmt.Sprintf("%s begins %s", s.shipName(ship), kind)
		case to == captain.StatusFailed:
			s.Stats.OrdersFailed++
			desc = fmt.Sprintf("%s ran out of time on %s", s.shipName(ship), kind)
		case from == captain.StatusCompleted:
			s.Stats.OrdersCompleted++
			desc = fmt.Sprintf("%s completed %s", s.shipName(ship), kind)
		case from == captain.StatusCancelled:
			s.Stats.OrdersCancelled++
			desc = fmt.Sprintf("%s stood down from %s", s.shipName(ship), kind)
		default:
			continue
		}
		s.EmitEvent(Event{
			Tick:        clock.Tick,
			Description: desc,
			Category:    CategoryOrder,
			Meta: map[string]any{
				"ship":  ship.String(),
				"order": kind.String(),
				"from":  from.String(),
				"to":    to.String(),
			},
		})
	}
}

func (s *Simulation) processEscalations(clock simtime.Clock) {
	w := s.World
	for _, ship := range w.Ships {
		log, ok := w.Escalations.Get(ship)
		if !ok {
			continue
		}
		o, ok := w.Orders.Get(ship)
		if !ok {
			continue
		}
		st, ok := w.Captains.Get(ship)
		if !ok {
			continue
		}
		r, ok := w.Readiness.Get(ship)
		if !ok {
			continue
		}

		for _, e := range captain.CheckEscalation(log, o, st, r, clock.Tick) {
			s.Stats.EscalationsRaised++
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("%s requests %s (%s)", s.shipName(ship), e.Type, e.Reason),
				Category:    CategoryEscalation,
				Meta:        map[string]any{"ship": ship.String(), "id": e.ID.String(), "priority": e.Priority},
			})
		}
		s.Stats.EscalationsConsumed += len(log.Process(o))
	}
}

func (s *Simulation) evaluateCompliance(clock simtime.Clock) {
	w := s.World
	w.Members.Each(func(h entity.Handle, m *world.Member) {
		log, ok := w.Breaches.Get(h)
		if !ok {
			return
		}

		subj := compliance.Subject{Entity: h, Spy: w.Spies.Has(h)}
		if a, ok := w.Alignments.Get(h); ok {
			subj.Alignment = *a
		}
		if axes, ok := w.Axes.Get(h); ok {
			subj.Axes = *axes
		}
		if o, ok := w.Outlooks.Get(h); ok {
			subj.Outlooks = *o
		}
		if affs, ok := w.Affiliations.Get(h); ok {
			subj.Affiliations = *affs
		}
		if c, ok := w.Contracts.Get(h); ok {
			subj.Contract = &c
		}
		subj.Suspicion, subj.HasSuspicion = w.Suspicion.Get(h)

		before := breachMask(log)
		res := s.Evaluator.Evaluate(clock.Tick, &subj, log)
		if res.HasSuspicion {
			w.Suspicion.Set(h, res.Suspicion)
		}
		s.Tickets.Push(res.Tickets...)
		s.Stats.BreachesDropped += res.Dropped

		for _, b := range log.Breaches {
			if before&(1<<b.Type) != 0 {
				continue
			}
			before |= 1 << b.Type
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("%s aboard %s shows signs of %s against %s", m.Name, s.shipName(m.Ship), b.Type, s.factionName(b.Affiliation)),
				Category:    CategoryCompliance,
				Meta:        map[string]any{"member": h.String(), "severity": b.Severity},
			})
		}
		if subj.Spy && subj.Suspicion < s.Options.AlertThreshold && res.Suspicion >= s.Options.AlertThreshold {
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: fmt.Sprintf("Security flags %s aboard %s as a suspected agent", m.Name, s.shipName(m.Ship)),
				Category:    CategoryCompliance,
				Meta:        map[string]any{"member": h.String(), "suspicion": res.Suspicion},
			})
		}
	})
}

func breachMask(l *compliance.BreachLog) uint8 {
	var m uint8
	for _, b := range l.Breaches {
		m |= 1 << b.Type
	}
	return m
}

func (s *Simulation) relieveSeats(clock simtime.Clock) {
	w := s.World
	for _, ship := range w.Ships {
		cmd, ok := w.Command(ship)
		if !ok {
			continue
		}
		for _, r := range authority.Relieve(clock, cmd, w, s.Options.CustodyThreshold) {
			s.Stats.SeatsVacated++
			role := ""
			if seat, ok := w.Seat(r.Seat); ok {
				role = seat.RoleID
			}
			desc := fmt.Sprintf("%s on %s is vacant (%s)", role, s.shipName(ship), r.Reason)
			if r.Reason == authority.ReliefMutiny {
				desc = fmt.Sprintf("%s relieved of %s on %s and taken into custody", s.memberName(r.Occupant), role, s.shipName(ship))
			}
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: desc,
				Category:    CategorySuccession,
				Meta:        map[string]any{"ship": ship.String(), "seat": r.Seat.String(), "reason": r.Reason.String()},
			})
		}
	}
}

// fillSeats runs succession for every ship. Ships are independent, so they
// are spread across workers; each ship's seats are filled in order by a single
// worker. Assignments are reported in ship order.
func (s *Simulation) fillSeats(clock simtime.Clock) {
	w := s.World
	cmds := make([]*authority.Command, len(w.Ships))
	for i, ship := range w.Ships {
		cmds[i], _ = w.Command(ship)
	}

	results := make([][]authority.Assignment, len(cmds))
	workers := min(s.Options.SuccessionWorkers, len(cmds))
	if workers <= 1 {
		for i, cmd := range cmds {
			if cmd != nil {
				results[i] = authority.Fill(clock, cmd, w)
			}
		}
	} else {
		var wg sync.WaitGroup
		for k := 0; k < workers; k++ {
			wg.Add(1)
			go func(k int) {
				defer wg.Done()
				for i := k; i < len(cmds); i += workers {
					if cmds[i] != nil {
						results[i] = authority.Fill(clock, cmds[i], w)
					}
				}
			}(k)
		}
		wg.Wait()
	}

	for i, assigned := range results {
		for _, a := range assigned {
			s.Stats.SeatsFilled++
			desc := fmt.Sprintf("%s takes the %s seat on %s", s.memberName(a.Occupant), a.Role, s.shipName(w.Ships[i]))
			if a.BoundOrder {
				desc = fmt.Sprintf("%s assumes command of %s", s.memberName(a.Occupant), s.shipName(w.Ships[i]))
			}
			s.EmitEvent(Event{
				Tick:        clock.Tick,
				Description: desc,
				Category:    CategorySuccession,
				Meta: map[string]any{
					"ship":  a.Ship.String(),
					"seat":  a.Seat.String(),
					"role":  a.Role,
					"score": a.Score,
				},
			})
		}
	}
}

// TickHour runs every sim-hour: captain and compliance telemetry.
func (s *Simulation) TickHour(clock simtime.Clock) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs := s.captainSummary()
	slog.Info("captain telemetry",
		"time", simtime.Format(clock.Tick),
		"captains", cs.Captains,
		"ready", cs.Ready,
		"executing", cs.Executing,
		"pending_escalations", cs.PendingEscalations,
		"avg_confidence", fmt.Sprintf("%.3f", cs.AvgConfidence),
	)

	metrics := s.complianceSummary().Metrics()
	attrs := make([]any, 0, 2+2*len(metricOrder))
	attrs = append(attrs, "time", simtime.Format(clock.Tick))
	for _, name := range metricOrder {
		attrs = append(attrs, name, fmt.Sprintf("%.3f", metrics[name]))
	}
	slog.Info("compliance telemetry", attrs...)
}

var metricOrder = []string{
	compliance.MetricBreaches,
	compliance.MetricMutiny,
	compliance.MetricDesertion,
	compliance.MetricIndependence,
	compliance.MetricSeverityAvg,
	compliance.MetricSuspicionMean,
	compliance.MetricSpySuspicion,
	compliance.MetricSuspicionMax,
	compliance.MetricSuspicionAlerts,
}

// TickDay runs every sim-day: statistics, daily summary.
func (s *Simulation) TickDay(clock simtime.Clock) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Count events by category.
	eventCounts := make(map[string]int)
	for _, e := range s.Events {
		eventCounts[e.Category]++
	}

	slog.Info("daily report",
		"tick", humanize.Comma(int64(clock.Tick)),
		"time", simtime.Format(clock.Tick),
		"ships", s.Stats.Ships,
		"crew", humanize.Comma(int64(s.Stats.Crew)),
		"ready", s.Stats.Ready,
		"executing", s.Stats.Executing,
		"detained", s.Stats.Detained,
		"vacant_seats", s.Stats.Vacant,
		"orders_completed", humanize.Comma(int64(s.Stats.OrdersCompleted)),
		"orders_failed", humanize.Comma(int64(s.Stats.OrdersFailed)),
		"casualties", s.Stats.Casualties,
		"queued_tickets", humanize.Comma(int64(s.Tickets.Len())),
		"events_order", eventCounts[CategoryOrder],
		"events_escalation", eventCounts[CategoryEscalation],
		"events_compliance", eventCounts[CategoryCompliance],
		"events_succession", eventCounts[CategorySuccession],
	)

	// Log recent notable events.
	recentStart := 0
	if len(s.Events) > 20 {
		recentStart = len(s.Events) - 20
	}
	for _, e := range s.Events[recentStart:] {
		if e.Category == CategorySuccession || e.Category == CategoryCompliance || e.Category == CategoryCommand {
			slog.Info("event", "category", e.Category, "description", e.Description)
		}
	}
}

// TickWeek runs every sim-week.
func (s *Simulation) TickWeek(clock simtime.Clock) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slog.Info("weekly summary",
		"tick", humanize.Comma(int64(clock.Tick)),
		"time", simtime.Format(clock.Tick),
		"events_total", humanize.Comma(int64(s.eventSeq)),
		"seats_filled", humanize.Comma(int64(s.Stats.SeatsFilled)),
		"seats_vacated", humanize.Comma(int64(s.Stats.SeatsVacated)),
		"escalations_raised", humanize.Comma(int64(s.Stats.EscalationsRaised)),
		"tickets_dropped", s.Tickets.Dropped(),
	)
}

func (s *Simulation) updateStats() {
	w := s.World
	s.Stats.Ships = len(w.Ships)
	s.Stats.Crew = w.Members.Len()
	s.Stats.Detained = w.Custody.Len()
	s.Stats.Ready, s.Stats.Executing, s.Stats.Vacant = 0, 0, 0
	for _, ship := range w.Ships {
		if st, ok := w.Captains.Get(ship); ok && st.IsReady {
			s.Stats.Ready++
		}
		if o, ok := w.Orders.Get(ship); ok && o.Status == captain.StatusExecuting {
			s.Stats.Executing++
		}
		if seats, ok := w.SeatLists.Get(ship); ok {
			for _, sh := range *seats {
				if occ, ok := w.Occupants.Get(sh); ok && occ.Vacant() {
					s.Stats.Vacant++
				}
			}
		}
	}
}

func (s *Simulation) captainSummary() captain.Summary {
	w := s.World
	views := make([]captain.Captain, 0, len(w.Ships))
	for _, ship := range w.Ships {
		o, ok := w.Orders.Get(ship)
		if !ok {
			continue
		}
		st, ok := w.Captains.Get(ship)
		if !ok {
			continue
		}
		log, _ := w.Escalations.Get(ship)
		views = append(views, captain.Captain{Order: o, State: st, Log: log})
	}
	return captain.Summarize(views)
}

func (s *Simulation) complianceSummary() compliance.Summary {
	w := s.World
	members := make([]compliance.Member, 0, w.Members.Len())
	w.Members.Each(func(h entity.Handle, _ *world.Member) {
		m := compliance.Member{Spy: w.Spies.Has(h)}
		m.Breaches, _ = w.Breaches.Get(h)
		m.Suspicion, m.HasSuspicion = w.Suspicion.Get(h)
		members = append(members, m)
	})
	return compliance.Summarize(members, s.Options.AlertThreshold)
}

func (s *Simulation) shipName(h entity.Handle) string {
	if info, ok := s.World.ShipInfo.Get(h); ok {
		return info.Name
	}
	return h.String()
}

func (s *Simulation) memberName(h entity.Handle) string {
	if m, ok := s.World.Members.Get(h); ok {
		return m.Name
	}
	return h.String()
}

func (s *Simulation) factionName(h entity.Handle) string {
	if f, ok := s.World.FactionInfo.Get(h); ok {
		return f.Name
	}
	return h.String()
}
