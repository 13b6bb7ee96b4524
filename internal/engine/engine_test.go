package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/fleetcommand/internal/authority"
	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/crew"
	"github.com/talgya/fleetcommand/internal/entity"
	"github.com/talgya/fleetcommand/internal/scenario"
	"github.com/talgya/fleetcommand/internal/sector"
	"github.com/talgya/fleetcommand/internal/simtime"
	"github.com/talgya/fleetcommand/internal/world"
)

func newTestSim(t *testing.T, workers int) *Simulation {
	t.Helper()
	sec := sector.Generate(sector.GenConfig{Radius: 4, Seed: 3})
	w := world.New(0, 0)
	cfg := scenario.SpawnConfig{Seed: 3, Ships: 3, CrewPerShip: 20, SpyChance: 0.1, ContractChance: 0.1}
	scenario.NewSpawner(cfg, sec).Populate(w, compliance.DefaultCatalog().Build())

	opts := DefaultOptions()
	opts.SuccessionWorkers = workers
	return NewSimulation(w, sec, opts)
}

func record(tick uint64) simtime.Clock {
	return simtime.Clock{Tick: tick}
}

func TestTickFillsSeatsAndBindsOrders(t *testing.T) {
	sim := newTestSim(t, 4)
	sim.TickMinute(record(1))

	w := sim.World
	for _, ship := range w.Ships {
		exec, ok := w.ExecutiveOccupant(ship)
		if !ok {
			t.Fatalf("ship %v has no captain after succession", ship)
		}
		if !w.Exists(exec) {
			t.Errorf("captain %v does not exist", exec)
		}
		body, _ := w.Bodies.Get(ship)
		o, _ := w.Order(ship)
		if o.IssuingAuthority != body.ExecutiveSeat {
			t.Errorf("order authority = %v, want executive seat %v", o.IssuingAuthority, body.ExecutiveSeat)
		}
	}
	// Twenty crew for sixteen seats: every seat is taken.
	if want := 3 * authority.StandardSeatCount; sim.Stats.SeatsFilled != want {
		t.Errorf("seats filled = %d, want %d", sim.Stats.SeatsFilled, want)
	}
	if len(sim.RecentEvents(0)) == 0 {
		t.Error("succession emitted no events")
	}
}

func TestTickGating(t *testing.T) {
	tests := []struct {
		name  string
		clock simtime.Clock
	}{
		{name: "paused", clock: simtime.Clock{Tick: 1, Paused: true}},
		{name: "playback", clock: simtime.Clock{Tick: 1, Mode: simtime.ModePlayback}},
		{name: "catch-up", clock: simtime.Clock{Tick: 1, Mode: simtime.ModeCatchUp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSim(t, 1)
			sim.TickMinute(tt.clock)

			if sim.Stats.SeatsFilled != 0 {
				t.Errorf("seats filled = %d, want 0", sim.Stats.SeatsFilled)
			}
			for _, ship := range sim.World.Ships {
				if _, ok := sim.World.ExecutiveOccupant(ship); ok {
					t.Errorf("ship %v got a captain outside recording", ship)
				}
			}
			if tt.clock.Paused && sim.LastTick != 0 {
				t.Errorf("paused tick moved LastTick to %d", sim.LastTick)
			}
		})
	}
}

func TestParallelSuccessionMatchesInline(t *testing.T) {
	inline := newTestSim(t, 1)
	parallel := newTestSim(t, 8)
	inline.TickMinute(record(1))
	parallel.TickMinute(record(1))

	for i, ship := range inline.World.Ships {
		a := inline.seatViews(ship)
		b := parallel.seatViews(parallel.World.Ships[i])
		if len(a) != len(b) {
			t.Fatalf("ship %d seat count differs", i)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Errorf("ship %d seat %d: inline %+v, parallel %+v", i, j, a[j], b[j])
			}
		}
	}
}

func TestDetainedCaptainIsReplaced(t *testing.T) {
	sim := newTestSim(t, 2)
	sim.TickMinute(record(1))

	w := sim.World
	ship := w.Ships[0]
	old, _ := w.ExecutiveOccupant(ship)
	w.Detain(old, crew.Custody{Reason: crew.CustodyOrder, SinceTick: 1})

	sim.TickMinute(record(2))

	next, ok := w.ExecutiveOccupant(ship)
	if !ok || next == old {
		t.Fatalf("executive = %v (ok=%v), want someone other than %v", next, ok, old)
	}
	body, _ := w.Bodies.Get(ship)
	o, _ := w.Order(ship)
	if o.IssuingAuthority != body.ExecutiveSeat {
		t.Error("order authority moved off the executive seat")
	}
	occ, _ := w.Occupant(body.ExecutiveSeat)
	if occ.LastChangedTick != 2 {
		t.Errorf("LastChangedTick = %d, want 2", occ.LastChangedTick)
	}
}

func TestAcknowledgeEscalation(t *testing.T) {
	sim := newTestSim(t, 1)
	ship := sim.World.Ships[0]
	log, _ := sim.World.Escalations.Get(ship)
	e, _ := log.Raise(captain.EscalationResupply, captain.ReasonResourcesDepleted, 0)

	if _, err := sim.AcknowledgeEscalation(uuid.New()); !errors.Is(err, ErrEscalationNotFound) {
		t.Fatalf("unknown id err = %v, want ErrEscalationNotFound", err)
	}
	if _, err := sim.AcknowledgeEscalation(e.ID); err != nil {
		t.Fatalf("AcknowledgeEscalation: %v", err)
	}
	if got := sim.Escalations(true); len(got) != 0 {
		t.Errorf("pending after ack = %d, want 0", len(got))
	}

	sim.TickMinute(record(1))
	if len(log.Entries) != 0 {
		t.Errorf("entries after processing = %d, want 0", len(log.Entries))
	}
	if sim.Stats.EscalationsConsumed != 1 {
		t.Errorf("consumed = %d, want 1", sim.Stats.EscalationsConsumed)
	}
}

func TestIssueOrder(t *testing.T) {
	sim := newTestSim(t, 1)
	ship := sim.World.Ships[1]
	prev, _ := sim.World.Orders.Get(ship)
	prev.Target = sim.World.Ships[0]

	if _, err := sim.IssueOrder(ship.Index, captain.OrderPatrol, sector.Coord{Q: 1}, 3, 100); err != nil {
		t.Fatalf("IssueOrder: %v", err)
	}
	o, _ := sim.World.Order(ship)
	if o.Type != captain.OrderPatrol || o.Status != captain.StatusReceived {
		t.Errorf("order = %v/%v", o.Type, o.Status)
	}
	if o.Target != entity.Null {
		t.Errorf("new order kept the previous target %v", o.Target)
	}

	tests := []struct {
		name  string
		index uint32
		dest  sector.Coord
		want  error
	}{
		{name: "busy", index: ship.Index, dest: sector.Coord{}, want: ErrOrderInProgress},
		{name: "unknown ship", index: 9999, dest: sector.Coord{}, want: ErrShipNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.IssueOrder(tt.index, captain.OrderMoveTo, tt.dest, 1, 0)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := sim.IssueOrder(sim.World.Ships[2].Index, captain.OrderMoveTo, sector.Coord{Q: 50}, 1, 0); err == nil {
		t.Error("out-of-sector destination accepted")
	}
}

func TestSnapshotReleasedOnlyWhenSaved(t *testing.T) {
	sim := newTestSim(t, 1)
	sim.TickMinute(record(1))
	sim.Tickets.Push(compliance.Ticket{Tick: 1, Type: compliance.BreachDesertion, Severity: 0.5})

	first := sim.Snapshot()
	if len(first.Ships) != 3 || len(first.Seats) == 0 {
		t.Fatalf("snapshot ships=%d seats=%d", len(first.Ships), len(first.Seats))
	}
	if len(first.Events) == 0 || len(first.Tickets) == 0 {
		t.Fatalf("snapshot events=%d tickets=%d", len(first.Events), len(first.Tickets))
	}

	// Not saved yet: a retry carries the same tickets and events.
	retry := sim.Snapshot()
	if len(retry.Events) != len(first.Events) || len(retry.Tickets) != len(first.Tickets) {
		t.Fatalf("retry snapshot events=%d tickets=%d, want %d and %d",
			len(retry.Events), len(retry.Tickets), len(first.Events), len(first.Tickets))
	}

	// A ticket and an event arriving between snapshot and save survive the release.
	sim.Tickets.Push(compliance.Ticket{Tick: 2, Type: compliance.BreachMutiny, Severity: 0.9})
	sim.EmitEvent(Event{Tick: 2, Description: "late"})
	sim.MarkSaved(retry)

	next := sim.Snapshot()
	if len(next.Tickets) != 1 || next.Tickets[0].Type != compliance.BreachMutiny.String() {
		t.Errorf("after save tickets = %+v, want the late mutiny only", next.Tickets)
	}
	if len(next.Events) != 1 || next.Events[0].Description != "late" {
		t.Errorf("after save events = %+v, want the late event only", next.Events)
	}

	sim.MarkSaved(next)
	if last := sim.Snapshot(); len(last.Tickets) != 0 || len(last.Events) != 0 {
		t.Errorf("third snapshot repeated %d events, %d tickets", len(last.Events), len(last.Tickets))
	}
}

func TestEventsAreBounded(t *testing.T) {
	sim := newTestSim(t, 1)
	for i := 0; i < maxEvents+50; i++ {
		sim.EmitEvent(Event{Description: "x"})
	}
	if len(sim.Events) != maxEvents {
		t.Fatalf("events = %d, want %d", len(sim.Events), maxEvents)
	}
	if sim.Events[len(sim.Events)-1].Seq != uint64(maxEvents+50) {
		t.Errorf("newest seq = %d", sim.Events[len(sim.Events)-1].Seq)
	}
}

func TestEngineAdvance(t *testing.T) {
	eng := NewEngine()
	var ticks, hours, days int
	eng.OnTick = func(simtime.Clock) { ticks++ }
	eng.OnHour = func(simtime.Clock) { hours++ }
	eng.OnDay = func(simtime.Clock) { days++ }

	eng.Advance(150)
	if ticks != 150 || hours != 2 || days != 0 {
		t.Errorf("ticks=%d hours=%d days=%d", ticks, hours, days)
	}

	eng.SetPaused(true)
	eng.Advance(60)
	if eng.Tick != 150 {
		t.Errorf("paused engine advanced to %d", eng.Tick)
	}
	if hours != 2 {
		t.Errorf("paused engine fired hourly callbacks")
	}
	if c := eng.Clock(); !c.Paused || c.Recording() {
		t.Errorf("clock = %+v, want paused", c)
	}
}

func TestDayWithCollaborators(t *testing.T) {
	sim := newTestSim(t, 4)
	spawner := scenario.NewSpawner(scenario.SpawnConfig{Seed: 3, CrewPerShip: 20}, sim.Sector)
	sim.Director = scenario.NewDirector(3, sim.Sector, spawner)
	sim.Director.IssueChance = 0.05
	sim.Acknowledger = scenario.NewAutoAcknowledger(30)

	eng := NewEngine()
	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = sim.TickDay
	eng.Advance(simtime.TicksPerSimDay)

	if got := sim.CurrentTick(); got != simtime.TicksPerSimDay {
		t.Fatalf("tick = %d", got)
	}
	st := sim.Status()
	if st.Stats.Ships != 3 {
		t.Errorf("ships = %d", st.Stats.Ships)
	}
	if st.Captains.Captains != 3 {
		t.Errorf("captain summary covers %d ships", st.Captains.Captains)
	}
	for _, v := range sim.Ships() {
		if v.Vitals.Threat < 0 || v.Vitals.Threat > 1 {
			t.Errorf("%s threat = %v", v.Name, v.Vitals.Threat)
		}
	}
}
