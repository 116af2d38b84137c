package cli

import (
	"github.com/spf13/cobra"

	"terralink/internal/app"
)

var (
	exportPNGPath  string
	exportCSVPath  string
	exportXLSXPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export alerts as CSV/XLSX and daily aggregates as a PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Export(cmd.Context(), app.ExportOptions{
			PNGPath:  exportPNGPath,
			CSVPath:  exportCSVPath,
			XLSXPath: exportXLSXPath,
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write the daily aggregate chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write alerts as CSV")
	exportCmd.Flags().StringVar(&exportXLSXPath, "xlsx", "", "Path to write alerts as an Excel workbook")
}
