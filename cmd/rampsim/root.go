package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rickgao/rampsim/internal/pipeline"
)

// Process exit codes.
const (
	exitOK                 = 0
	exitStepFailure        = 1
	exitConfigError        = 2
	exitNoop               = 3
	exitStateInconsistency = 4
)

var (
	configPath string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "rampsim [command]",
	Short:         "Simulated crypto exchange data loader",
	Long:          `Generate accounts, funding, orders, trades and daily fiat on/off-ramp transactions and append them to a Postgres or ClickHouse warehouse, resuming from a checkpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return configError(err)
		}
		level, err := parseLevel(logLevel)
		if err != nil {
			return configError(err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/rampsim.local.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before the config (missing file is ignored)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

// exitError carries the process exit code for a command outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func configError(err error) error {
	return &exitError{code: exitConfigError, err: err}
}

func noop() error {
	return &exitError{code: exitNoop}
}

// stepFailure maps a loader error to its exit code.
func stepFailure(err error) error {
	if kind, ok := pipeline.KindOf(err); ok && kind == pipeline.KindStateInconsistency {
		return &exitError{code: exitStateInconsistency, err: err}
	}
	return &exitError{code: exitStepFailure, err: err}
}

func execute() int {
	err := rootCmd.Execute()
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if !errors.As(err, &ee) {
		// Flag and argument errors from cobra.
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitConfigError
	}
	if ee.err != nil {
		slog.Error("rampsim failed", "exit_code", ee.code, "error", ee.err)
	}
	return ee.code
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
