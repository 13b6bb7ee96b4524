package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/talgya/fleetcommand/internal/compliance"
)

func doctrinesCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "doctrines",
		Short: "Validate and list the doctrine catalog",
		Long: `Doctrines loads the doctrine catalog given by --catalog (or the built-in
one), validates it, and prints each doctrine's window and thresholds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(path)
			if err != nil {
				return err
			}
			renderDoctrines(cmd.OutOrStdout(), catalog.Build())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "catalog", "", "doctrine catalog YAML (default: built-in)")
	return cmd
}

func renderDoctrines(out io.Writer, doctrines []*compliance.Doctrine) {
	tw := newTable(out, "Doctrines")
	tw.AppendHeader(table.Row{"Name", "Law", "Good", "Integrity", "Axis tol", "Outlook tol", "Mutiny", "Contract floor", "Gain", "Axes", "Outlooks"})
	for _, d := range doctrines {
		w := d.Window
		var axes, outlooks []string
		for _, a := range d.Axes {
			axes = append(axes, fmt.Sprintf("%s %s", a.Axis, span(a.Min, a.Max)))
		}
		for _, o := range d.Outlooks {
			outlooks = append(outlooks, fmt.Sprintf("%s>=%.2f", o.Outlook, o.MinimumWeight))
		}
		tw.AppendRow(table.Row{
			d.Name,
			span(w.LawMin, w.LawMax), span(w.GoodMin, w.GoodMax), span(w.IntegrityMin, w.IntegrityMax),
			fmt.Sprintf("%.2f", d.AxisTolerance), fmt.Sprintf("%.2f", d.OutlookTolerance),
			fmt.Sprintf("%.2f", d.ChaosMutinyThreshold), fmt.Sprintf("%.2f", d.LawfulContractFloor),
			fmt.Sprintf("%.2f", d.SuspicionGain),
			orDash(strings.Join(axes, ", ")), orDash(strings.Join(outlooks, ", ")),
		})
	}
	tw.Render()
}

func span(lo, hi float32) string {
	return fmt.Sprintf("[%+.2f, %+.2f]", lo, hi)
}
