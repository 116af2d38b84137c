package cli

import (
	"github.com/spf13/cobra"
)

var farmsCmd = &cobra.Command{
	Use:   "farms",
	Short: "List farms with region, crop and current status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Farms(cmd.Context())
	},
}
