package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"machinehub/statusboard/pkg/cli"
	"machinehub/statusboard/pkg/config"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "statusboard",
	Short: "Statusboard - device heartbeats answered with MHPL templates",
	Long: `Statusboard records machine heartbeats and replies to each one with a message
rendered from an MHPL template.

MHPL templates are plain text with embedded function calls such as
#alives(), #devices(), #report(name) and arithmetic helpers like #plus(a,b).
Templates come from the device's own return message or from the template file.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig reads the configuration named by --config, applies flag
// overrides and publishes it as the global configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	config.SetConfig(cfg)
	return cfg, nil
}
