// Package cli implements the sourcewatch command-line client for the
// watchdog daemon's REST API.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/sourcewatch/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking the
// SOURCEWATCH_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SOURCEWATCH_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the sourcewatch CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sourcewatch",
		Short: "Capture-source watchdog client",
		Long:  "sourcewatch inspects and configures a running capture-source watchdog daemon.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.Options{Level: flagLogLevel, Format: flagLogFormat})
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "daemon URL (or SOURCEWATCH_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newStatusCmd(),
		newAttemptsCmd(),
		newConfigCmd(),
	)

	return root
}
