package cli

import (
	"github.com/spf13/cobra"

	"terralink/internal/app"
)

var (
	detectFarm string
	detectJSON bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run alert detection over the dataset and list the alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Detect(cmd.Context(), app.DetectOptions{
			FarmID: detectFarm,
			JSON:   detectJSON,
		})
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectFarm, "farm", "", "Only list alerts for this farm id")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print alerts as JSON")
}
