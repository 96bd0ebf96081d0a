package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gclog-analysis/pkg/config"
	"github.com/gclog-analysis/pkg/telemetry"
	"github.com/gclog-analysis/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gclog-analyzer",
	Short: "A G1 GC log humongous allocation analyzer",
	Long: `gclog-analyzer scans G1 garbage collector logs for humongous object
allocations, groups them into power-of-two region size buckets and reports
allocation size percentiles.

Logs are read from local files or remote object storage, and finished
analyses can be persisted as run history.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		// Logging goes to stderr so stdout stays clean for rendered reports
		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewStderrLogger(logLevel)

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("Failed to initialize telemetry: %v", err)
			return nil
		}
		telemetryShutdown = shutdown

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ./config.yaml)")

	binName := BinName()
	rootCmd.Example = `  # Analyze a local GC log
  ` + binName + ` analyze -i ./gc.log

  # Emit JSON instead of the table
  ` + binName + ` analyze -i ./gc.log --format json

  # Fetch the log from configured object storage first
  ` + binName + ` analyze --remote logs/prod/gc.log

  # Persist the run and list past runs
  ` + binName + ` analyze -i ./gc.log --save
  ` + binName + ` history --limit 20`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
