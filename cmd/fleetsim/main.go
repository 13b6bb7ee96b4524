// Command fleetsim runs the fleet command-authority simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/fleetcommand/internal/compliance"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "fleetsim",
		Short: "Fleet command-authority simulation",
		Long: `fleetsim runs ships under captains who carry orders through a
readiness-gated pipeline, escalate to higher command when they cannot proceed,
and hand their seats on when relieved. Crews are held to their faction's
doctrine and breaches surface as compliance tickets.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(runCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(doctrinesCmd())
	return root
}

// loadCatalog reads the doctrine catalog at path, or the built-in one.
func loadCatalog(path string) (*compliance.Catalog, error) {
	if path == "" {
		return compliance.DefaultCatalog(), nil
	}
	c, err := compliance.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}
