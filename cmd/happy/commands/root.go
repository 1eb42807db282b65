// Package commands provides the CLI commands for happy.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shayne/happy/internal/config"
	"github.com/shayne/happy/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
)

// cfg is loaded once before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "happy",
	Short: "happy - remote control bridge for the codex CLI",
	Long: `happy bridges a codex coding-agent session to a remote operator:
approval requests raised by codex surface on a session channel, and
operator decisions flow back to unblock the agent.

Run 'happy codex' to launch codex as an MCP server behind the bridge.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars still win inside config.Load.
		_ = godotenv.Load()

		workDir, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg, err = config.Load(workDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel == "" {
			logLevel = cfg.LogLevel
		}
		var out io.Writer = io.Discard
		if printLogs {
			out = os.Stderr
		}
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Output: out,
			Pretty: printLogs,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("happy %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(codexCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
