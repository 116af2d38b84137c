package cli

import (
	"github.com/spf13/cobra"

	"terralink/internal/app"
)

var farmPNGPath string

var farmCmd = &cobra.Command{
	Use:   "farm <farm-id>",
	Short: "Show one farm's latest readings, advice and alerts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Farm(cmd.Context(), app.FarmOptions{
			FarmID:  args[0],
			PNGPath: farmPNGPath,
		})
	},
}

func init() {
	farmCmd.Flags().StringVar(&farmPNGPath, "png", "", "Path to write the soil moisture and temperature chart")
}
