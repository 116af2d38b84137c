package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"terralink/internal/app"
	"terralink/internal/config"
	"terralink/internal/logging"
)

var (
	cfgFile     string
	logLevel    string
	datasetPath string
	appHandle   *app.App
)

var rootCmd = &cobra.Command{
	Use:   "terralink",
	Short: "Farm sensor alert detection for smallholder plots",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if datasetPath != "" {
			cfg.Dataset.Path = datasetPath
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		appHandle.Out = cmd.OutOrStdout()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Override dataset path defined in config")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(farmCmd)
	rootCmd.AddCommand(farmsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
