package main

import (
	"github.com/spf13/cobra"

	"github.com/NicolasHaas/badgeboard/pkg/config"
	"github.com/NicolasHaas/badgeboard/pkg/logging"
	"github.com/NicolasHaas/badgeboard/pkg/version"
)

var (
	jsonOut  bool
	cfgFile  string
	logLevel string

	// cfg is loaded before any command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "badgectl",
	Short: "Command-line client for a badgeboard server",
	Long: `badgectl logs in to a badgeboard server, browses and awards badges,
manages accounts and follows awards as they happen.

Configuration is read from config.yaml and BADGEBOARD_* environment
variables; see "badgectl config show".

Examples:
  badgectl login alice
  badgectl badges list
  badgectl award 42 7
  badgectl watch --metrics-addr 127.0.0.1:9100`,
	Version:           version.Full(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search ., $XDG_CONFIG_HOME/badgeboard, ~/.config/badgeboard)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: "+logging.LevelNames())
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		if err := logging.Validate(logLevel); err != nil {
			return err
		}
		c.Log.Level = logLevel
	}
	if err := logging.Setup(c.LoggingOptions()); err != nil {
		return err
	}
	cfg = c
	return nil
}
