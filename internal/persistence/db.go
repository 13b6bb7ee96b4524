// Package persistence provides SQLite-based fleet state storage. It is a
// write-side sink for snapshots and the source the report command reads.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/fleetcommand/internal/engine"
)

// Metadata keys.
const (
	MetaRunID    = "run_id"
	MetaSeed     = "seed"
	MetaLastTick = "last_tick"
)

// DB wraps a SQLite connection for fleet state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ships (
		idx INTEGER PRIMARY KEY,
		handle TEXT NOT NULL,
		name TEXT NOT NULL,
		faction TEXT NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		order_type TEXT NOT NULL,
		order_status TEXT NOT NULL,
		autonomy TEXT NOT NULL,
		ready INTEGER NOT NULL,
		readiness REAL NOT NULL,
		confidence REAL NOT NULL,
		risk_tolerance REAL NOT NULL,
		captain TEXT NOT NULL,
		crew INTEGER NOT NULL,
		vitals_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS seats (
		seat TEXT PRIMARY KEY,
		ship TEXT NOT NULL,
		ship_name TEXT NOT NULL,
		role TEXT NOT NULL,
		executive INTEGER NOT NULL,
		occupant TEXT NOT NULL,
		occupant_name TEXT NOT NULL,
		assigned_tick INTEGER NOT NULL,
		last_changed_tick INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS escalations (
		id TEXT PRIMARY KEY,
		ship TEXT NOT NULL,
		ship_name TEXT NOT NULL,
		type TEXT NOT NULL,
		reason TEXT NOT NULL,
		priority INTEGER NOT NULL,
		request_tick INTEGER NOT NULL,
		acknowledged INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS compliance_tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		source TEXT NOT NULL,
		source_name TEXT NOT NULL,
		ship_name TEXT NOT NULL,
		affiliation TEXT NOT NULL,
		affiliation_name TEXT NOT NULL,
		type TEXT NOT NULL,
		severity REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suspicion (
		member TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ship_name TEXT NOT NULL,
		value REAL NOT NULL,
		spy INTEGER NOT NULL,
		detained INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		meta_json TEXT
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_tickets_tick ON compliance_tickets(tick);
	CREATE INDEX IF NOT EXISTS idx_seats_ship ON seats(ship);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// ShipRow is a saved ship.
type ShipRow struct {
	Index         uint32  `db:"idx"`
	Handle        string  `db:"handle"`
	Name          string  `db:"name"`
	Faction       string  `db:"faction"`
	PosQ          int     `db:"pos_q"`
	PosR          int     `db:"pos_r"`
	OrderType     string  `db:"order_type"`
	OrderStatus   string  `db:"order_status"`
	Autonomy      string  `db:"autonomy"`
	Ready         bool    `db:"ready"`
	Readiness     float32 `db:"readiness"`
	Confidence    float32 `db:"confidence"`
	RiskTolerance float32 `db:"risk_tolerance"`
	Captain       string  `db:"captain"`
	Crew          int     `db:"crew"`
	VitalsJSON    string  `db:"vitals_json"`
}

// SeatRow is a saved authority seat.
type SeatRow struct {
	Seat            string `db:"seat"`
	Ship            string `db:"ship"`
	ShipName        string `db:"ship_name"`
	Role            string `db:"role"`
	Executive       bool   `db:"executive"`
	Occupant        string `db:"occupant"`
	OccupantName    string `db:"occupant_name"`
	AssignedTick    uint64 `db:"assigned_tick"`
	LastChangedTick uint64 `db:"last_changed_tick"`
}

// EscalationRow is a saved escalation.
type EscalationRow struct {
	ID           string `db:"id"`
	Ship         string `db:"ship"`
	ShipName     string `db:"ship_name"`
	Type         string `db:"type"`
	Reason       string `db:"reason"`
	Priority     uint8  `db:"priority"`
	RequestTick  uint64 `db:"request_tick"`
	Acknowledged bool   `db:"acknowledged"`
}

// TicketRow is a saved compliance ticket.
type TicketRow struct {
	ID              int64   `db:"id"`
	Tick            uint64  `db:"tick"`
	Source          string  `db:"source"`
	SourceName      string  `db:"source_name"`
	ShipName        string  `db:"ship_name"`
	Affiliation     string  `db:"affiliation"`
	AffiliationName string  `db:"affiliation_name"`
	Type            string  `db:"type"`
	Severity        float32 `db:"severity"`
}

// SuspicionRow is a saved suspicion score.
type SuspicionRow struct {
	Member   string  `db:"member"`
	Name     string  `db:"name"`
	ShipName string  `db:"ship_name"`
	Value    float32 `db:"value"`
	Spy      bool    `db:"spy"`
	Detained bool    `db:"detained"`
}

func saveShips(tx *sqlx.Tx, ships []engine.ShipView) error {
	if _, err := tx.Exec("DELETE FROM ships"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO ships
		(idx, handle, name, faction, pos_q, pos_r, order_type, order_status, autonomy,
		 ready, readiness, confidence, risk_tolerance, captain, crew, vitals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range ships {
		vitalsJSON, _ := json.Marshal(s.Vitals)
		_, err := stmt.Exec(
			s.Index, s.Handle, s.Name, s.Faction, s.Position.Q, s.Position.R,
			s.Order, s.Status, s.Autonomy, s.Ready, s.Readiness, s.Confidence,
			s.RiskTolerance, s.Captain, s.Crew, string(vitalsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert ship %d: %w", s.Index, err)
		}
	}
	return nil
}

func saveSeats(tx *sqlx.Tx, seats []engine.SeatView) error {
	if _, err := tx.Exec("DELETE FROM seats"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO seats
		(seat, ship, ship_name, role, executive, occupant, occupant_name, assigned_tick, last_changed_tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range seats {
		_, err := stmt.Exec(
			s.Seat, s.Ship, s.ShipName, s.Role, s.Executive,
			s.Occupant, s.OccupantName, s.AssignedTick, s.LastChangedTick,
		)
		if err != nil {
			return fmt.Errorf("insert seat %d: %w", i, err)
		}
	}
	return nil
}

func saveEscalations(tx *sqlx.Tx, escalations []engine.EscalationView) error {
	if _, err := tx.Exec("DELETE FROM escalations"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO escalations
		(id, ship, ship_name, type, reason, priority, request_tick, acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range escalations {
		_, err := stmt.Exec(
			e.ID.String(), e.Ship, e.ShipName, e.Type, e.Reason,
			e.Priority, e.RequestTick, e.Acknowledged,
		)
		if err != nil {
			return fmt.Errorf("insert escalation %s: %w", e.ID, err)
		}
	}
	return nil
}

func saveSuspicion(tx *sqlx.Tx, members []engine.CrewView) error {
	if _, err := tx.Exec("DELETE FROM suspicion"); err != nil {
		return err
	}

	for _, m := range members {
		_, err := tx.Exec(
			"INSERT INTO suspicion (member, name, ship_name, value, spy, detained) VALUES (?, ?, ?, ?, ?, ?)",
			m.Handle, m.Name, m.Ship, m.Suspicion, m.Spy, m.Detained,
		)
		if err != nil {
			return fmt.Errorf("insert suspicion %s: %w", m.Handle, err)
		}
	}
	return nil
}

// saveTickets appends compliance tickets.
func saveTickets(tx *sqlx.Tx, tickets []engine.TicketView) error {
	if len(tickets) == 0 {
		return nil
	}

	stmt, err := tx.Preparex(`INSERT INTO compliance_tickets
		(tick, source, source_name, ship_name, affiliation, affiliation_name, type, severity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tickets {
		_, err := stmt.Exec(
			t.Tick, t.Source, t.SourceName, t.ShipName,
			t.Affiliation, t.AffiliationName, t.Type, t.Severity,
		)
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
	}
	return nil
}

// saveEvents appends events.
func saveEvents(tx *sqlx.Tx, events []engine.Event) error {
	for _, e := range events {
		var meta []byte
		if len(e.Meta) > 0 {
			meta, _ = json.Marshal(e.Meta)
		}
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category, meta_json) VALUES (?, ?, ?, ?)",
			e.Tick, e.Description, e.Category, string(meta),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveFleetState saves a snapshot in one transaction: fleet tables are
// replaced, tickets and events are appended. On error nothing is written.
func (db *DB) SaveFleetState(snap engine.Snapshot) error {
	slog.Info("saving fleet state",
		"ships", len(snap.Ships),
		"seats", len(snap.Seats),
		"tickets", len(snap.Tickets),
		"events", len(snap.Events),
	)

	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := saveShips(tx, snap.Ships); err != nil {
		return fmt.Errorf("save ships: %w", err)
	}
	if err := saveSeats(tx, snap.Seats); err != nil {
		return fmt.Errorf("save seats: %w", err)
	}
	if err := saveEscalations(tx, snap.Escalations); err != nil {
		return fmt.Errorf("save escalations: %w", err)
	}
	if err := saveSuspicion(tx, snap.Suspicion); err != nil {
		return fmt.Errorf("save suspicion: %w", err)
	}
	if err := saveTickets(tx, snap.Tickets); err != nil {
		return fmt.Errorf("save tickets: %w", err)
	}
	if err := saveEvents(tx, snap.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	_, err = tx.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		MetaLastTick, strconv.FormatUint(snap.Tick, 10),
	)
	if err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	slog.Info("fleet state saved")
	return nil
}

// ShipRows returns every saved ship ordered by index.
func (db *DB) ShipRows() ([]ShipRow, error) {
	var rows []ShipRow
	err := db.conn.Select(&rows, "SELECT * FROM ships ORDER BY idx")
	return rows, err
}

// SeatRows returns the saved seats of the ship named shipName, or of every
// ship when shipName is empty.
func (db *DB) SeatRows(shipName string) ([]SeatRow, error) {
	var rows []SeatRow
	var err error
	if shipName == "" {
		err = db.conn.Select(&rows, "SELECT * FROM seats ORDER BY ship_name, rowid")
	} else {
		err = db.conn.Select(&rows, "SELECT * FROM seats WHERE ship_name = ? ORDER BY rowid", shipName)
	}
	return rows, err
}

// PendingEscalations returns saved escalations not yet acknowledged, most urgent first.
func (db *DB) PendingEscalations() ([]EscalationRow, error) {
	var rows []EscalationRow
	err := db.conn.Select(&rows,
		"SELECT * FROM escalations WHERE acknowledged = 0 ORDER BY priority, request_tick",
	)
	return rows, err
}

// RecentTickets returns the most recent N compliance tickets, newest first.
func (db *DB) RecentTickets(limit int) ([]TicketRow, error) {
	var rows []TicketRow
	err := db.conn.Select(&rows,
		"SELECT * FROM compliance_tickets ORDER BY tick DESC, id DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// TopSuspicion returns the N highest saved suspicion scores.
func (db *DB) TopSuspicion(limit int) ([]SuspicionRow, error) {
	var rows []SuspicionRow
	err := db.conn.Select(&rows,
		"SELECT * FROM suspicion ORDER BY value DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
