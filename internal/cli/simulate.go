package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"terralink/internal/app"
)

var (
	simulateSteps int
	simulateSeed  int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Stream simulated readings for the demo farm and raise alerts live",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateSteps < 0 {
			return errors.New("--steps must not be negative")
		}
		return getApp().Simulate(cmd.Context(), app.SimulateOptions{
			Steps: simulateSteps,
			Seed:  simulateSeed,
		})
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateSteps, "steps", 0, "Stop after this many readings (defaults to config, 0 runs until interrupted)")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "Random seed for a reproducible run (defaults to config)")
}
