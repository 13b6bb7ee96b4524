package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/compliance"
	"github.com/talgya/fleetcommand/internal/config"
	"github.com/talgya/fleetcommand/internal/persistence"
	"github.com/talgya/fleetcommand/internal/simtime"
)

func reportCmd() *cobra.Command {
	var (
		dbPath string
		ship   string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the last saved fleet state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dbPath = cfg.DBPath
			}
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return renderReport(cmd.OutOrStdout(), db, ship, limit)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (overrides FLEETSIM_DB)")
	cmd.Flags().StringVar(&ship, "ship", "", "only show seats of this ship")
	cmd.Flags().IntVar(&limit, "limit", 20, "tickets and suspicion rows to show")
	return cmd
}

func renderReport(out io.Writer, db *persistence.DB, ship string, limit int) error {
	runID, _ := db.GetMeta(persistence.MetaRunID)
	seed, _ := db.GetMeta(persistence.MetaSeed)
	last, _ := db.GetMeta(persistence.MetaLastTick)
	tick, _ := strconv.ParseUint(last, 10, 64)
	fmt.Fprintf(out, "Run %s (seed %s) saved at %s, tick %s\n\n", runID, seed, simtime.Format(tick), humanize.Comma(int64(tick)))

	ships, err := db.ShipRows()
	if err != nil {
		return fmt.Errorf("load ships: %w", err)
	}
	tw := newTable(out, "Ships")
	tw.AppendHeader(table.Row{"#", "Name", "Faction", "Order", "Status", "Autonomy", "Ready", "Readiness", "Hull", "Morale", "Captain", "Crew"})
	for _, s := range ships {
		var v captain.Vitals
		_ = json.Unmarshal([]byte(s.VitalsJSON), &v)
		tw.AppendRow(table.Row{
			s.Index, s.Name, s.Faction, s.OrderType, s.OrderStatus, s.Autonomy,
			yesNo(s.Ready), fmt.Sprintf("%.2f", s.Readiness),
			fmt.Sprintf("%.2f", v.Hull), fmt.Sprintf("%+.2f", v.Morale),
			orDash(s.Captain), s.Crew,
		})
	}
	tw.Render()

	seats, err := db.SeatRows(ship)
	if err != nil {
		return fmt.Errorf("load seats: %w", err)
	}
	tw = newTable(out, "Seats")
	tw.AppendHeader(table.Row{"Ship", "Role", "Exec", "Occupant", "Assigned", "Changed"})
	for _, s := range seats {
		tw.AppendRow(table.Row{s.ShipName, s.Role, yesNo(s.Executive), orDash(s.OccupantName), s.AssignedTick, s.LastChangedTick})
	}
	tw.Render()

	escalations, err := db.PendingEscalations()
	if err != nil {
		return fmt.Errorf("load escalations: %w", err)
	}
	tw = newTable(out, "Pending escalations")
	tw.AppendHeader(table.Row{"Ship", "Type", "Reason", "Priority", "Raised"})
	for _, e := range escalations {
		tw.AppendRow(table.Row{e.ShipName, e.Type, e.Reason, e.Priority, simtime.Format(e.RequestTick)})
	}
	tw.Render()

	tickets, err := db.RecentTickets(limit)
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	tw = newTable(out, "Compliance tickets")
	tw.AppendHeader(table.Row{"Tick", "Member", "Ship", "Affiliation", "Breach", "Severity"})
	for _, t := range tickets {
		tw.AppendRow(table.Row{
			t.Tick, t.SourceName, t.ShipName, t.AffiliationName,
			breachColor(t.Type).Sprint(t.Type), fmt.Sprintf("%.3f", t.Severity),
		})
	}
	tw.Render()

	suspects, err := db.TopSuspicion(limit)
	if err != nil {
		return fmt.Errorf("load suspicion: %w", err)
	}
	tw = newTable(out, "Suspicion")
	tw.AppendHeader(table.Row{"Member", "Ship", "Suspicion", "Spy", "Detained"})
	for _, s := range suspects {
		tw.AppendRow(table.Row{s.Name, s.ShipName, fmt.Sprintf("%.3f", s.Value), yesNo(s.Spy), yesNo(s.Detained)})
	}
	tw.Render()
	return nil
}

func newTable(out io.Writer, title string) table.Writer {
	fmt.Fprintln(out)
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetTitle(title)
	tw.SetStyle(table.StyleLight)
	return tw
}

// breachColor colours a breach type name by how serious it is.
func breachColor(name string) *color.Color {
	switch name {
	case compliance.BreachMutiny.String():
		return color.New(color.FgRed, color.Bold)
	case compliance.BreachDesertion.String():
		return color.New(color.FgYellow)
	case compliance.BreachIndependence.String():
		return color.New(color.FgMagenta)
	}
	return color.New(color.Reset)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
