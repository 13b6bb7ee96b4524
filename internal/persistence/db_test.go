package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/fleetcommand/internal/engine"
	"github.com/talgya/fleetcommand/internal/sector"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "fleet.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testSnapshot(tick uint64) engine.Snapshot {
	return engine.Snapshot{
		Tick: tick,
		Ships: []engine.ShipView{
			{Index: 1, Handle: "1v1", Name: "Resolute", Faction: "Concord", Position: sector.Coord{Q: 2, R: -1}, Order: "patrol", Status: "executing", Autonomy: "standard", Ready: true, Readiness: 0.8, Captain: "Ines Varo", Crew: 20},
			{Index: 2, Handle: "2v1", Name: "Kestrel", Faction: "Concord", Order: "none", Status: "completed", Autonomy: "restricted", Crew: 18},
		},
		Seats: []engine.SeatView{
			{Ship: "1v1", ShipName: "Resolute", Seat: "3v1", Role: "captain", Executive: true, Occupant: "5v1", OccupantName: "Ines Varo", AssignedTick: 1, LastChangedTick: 1},
			{Ship: "1v1", ShipName: "Resolute", Seat: "4v1", Role: "first-officer", LastChangedTick: 1},
			{Ship: "2v1", ShipName: "Kestrel", Seat: "9v1", Role: "captain", Executive: true, LastChangedTick: 1},
		},
		Escalations: []engine.EscalationView{
			{ID: uuid.New(), Ship: "1v1", ShipName: "Resolute", Type: "resupply", Reason: "resources-depleted", Priority: 2, RequestTick: tick},
			{ID: uuid.New(), Ship: "2v1", ShipName: "Kestrel", Type: "abort-mission", Reason: "hull-critical", Priority: 0, RequestTick: tick, Acknowledged: true},
		},
		Suspicion: []engine.CrewView{
			{Handle: "5v1", Name: "Ines Varo", Ship: "Resolute", Suspicion: 0.1},
			{Handle: "6v1", Name: "Oren Pike", Ship: "Resolute", Suspicion: 0.7, Spy: true},
		},
		Tickets: []engine.TicketView{
			{Tick: tick, Source: "6v1", SourceName: "Oren Pike", ShipName: "Resolute", Affiliation: "1v1", AffiliationName: "Concord", Type: "sabotage", Severity: 0.6},
		},
		Events: []engine.Event{
			{Seq: 1, Tick: tick, Description: "Ines Varo takes command of Resolute", Category: engine.CategorySuccession, Meta: map[string]any{"ship": "1v1"}},
		},
	}
}

func TestSaveFleetStateReplacesFleetTables(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveFleetState(testSnapshot(10)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := db.SaveFleetState(testSnapshot(20)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	ships, err := db.ShipRows()
	if err != nil {
		t.Fatalf("ShipRows: %v", err)
	}
	if len(ships) != 2 {
		t.Fatalf("ships = %d, want 2", len(ships))
	}
	if ships[0].Name != "Resolute" || ships[0].PosQ != 2 || ships[0].PosR != -1 || !ships[0].Ready {
		t.Errorf("ship row = %+v", ships[0])
	}

	seats, err := db.SeatRows("")
	if err != nil {
		t.Fatalf("SeatRows: %v", err)
	}
	if len(seats) != 3 {
		t.Errorf("seats = %d, want 3", len(seats))
	}
	seats, _ = db.SeatRows("Resolute")
	if len(seats) != 2 || seats[0].OccupantName != "Ines Varo" {
		t.Errorf("Resolute seats = %+v", seats)
	}

	pending, err := db.PendingEscalations()
	if err != nil {
		t.Fatalf("PendingEscalations: %v", err)
	}
	if len(pending) != 1 || pending[0].ShipName != "Resolute" {
		t.Fatalf("pending = %+v, want only the unacknowledged resupply", pending)
	}

	top, err := db.TopSuspicion(1)
	if err != nil {
		t.Fatalf("TopSuspicion: %v", err)
	}
	if len(top) != 1 || top[0].Name != "Oren Pike" || !top[0].Spy {
		t.Errorf("top suspicion = %+v", top)
	}
}

func TestTicketsAndEventsAppend(t *testing.T) {
	db := openTestDB(t)
	db.SaveFleetState(testSnapshot(10))
	db.SaveFleetState(testSnapshot(20))

	tickets, err := db.RecentTickets(10)
	if err != nil {
		t.Fatalf("RecentTickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("tickets = %d, want 2", len(tickets))
	}
	if tickets[0].Tick != 20 {
		t.Errorf("newest ticket tick = %d, want 20", tickets[0].Tick)
	}

	events, err := db.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 1 || events[0].Tick != 20 || events[0].Category != engine.CategorySuccession {
		t.Errorf("events = %+v", events)
	}
}

func TestFailedSaveWritesNothing(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveFleetState(testSnapshot(10)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := db.conn.Exec("DROP TABLE compliance_tickets"); err != nil {
		t.Fatal(err)
	}

	snap := testSnapshot(20)
	snap.Ships = snap.Ships[:1]
	if err := db.SaveFleetState(snap); err == nil {
		t.Fatal("save without a tickets table succeeded")
	}

	ships, _ := db.ShipRows()
	events, _ := db.RecentEvents(10)
	last, _ := db.GetMeta(MetaLastTick)
	if len(ships) != 2 || len(events) != 1 || last != "10" {
		t.Fatalf("after failed save: ships=%d events=%d last_tick=%s, want 2, 1, 10", len(ships), len(events), last)
	}

	if err := db.migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SaveFleetState(snap); err != nil {
		t.Fatalf("retry: %v", err)
	}

	tickets, err := db.RecentTickets(10)
	if err != nil {
		t.Fatalf("RecentTickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Tick != 20 {
		t.Errorf("tickets after retry = %+v, want the tick 20 ticket", tickets)
	}
	ships, _ = db.ShipRows()
	events, _ = db.RecentEvents(10)
	last, _ = db.GetMeta(MetaLastTick)
	if len(ships) != 1 || len(events) != 2 || last != "20" {
		t.Errorf("after retry: ships=%d events=%d last_tick=%s, want 1, 2, 20", len(ships), len(events), last)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetMeta(MetaSeed); err == nil {
		t.Error("missing key returned no error")
	}

	db.SaveMeta(MetaSeed, "42")
	db.SaveMeta(MetaSeed, "43")
	got, err := db.GetMeta(MetaSeed)
	if err != nil || got != "43" {
		t.Errorf("GetMeta = %q, %v; want 43", got, err)
	}

	db.SaveFleetState(testSnapshot(77))
	if tick, _ := db.GetMeta(MetaLastTick); tick != "77" {
		t.Errorf("last tick = %q, want 77", tick)
	}
}
