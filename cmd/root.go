// =============================================================================
// Sales Report Bot - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reportbot)
//   ├── serveCmd   (reportbot serve)    Telegram bot
//   ├── consoleCmd (reportbot console)  terminal dialogue
//   ├── busCmd     (reportbot bus)      NATS transport
//   ├── catalogCmd (reportbot catalog)  validate and print the catalog
//   └── versionCmd (reportbot version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Reads config.yaml (or --config) through viper
//   2. Decodes and validates it into config.MainConfig
//   3. Installs the slog default logger
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-report-bot/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// v is the configuration registry shared by all commands.
var v = config.NewViper()

// mainConfig is populated by initConfig before any subcommand runs.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "reportbot",
	Short: "Daily sales report bot for dairy sales representatives",
	Long: `reportbot walks a sales representative through the product catalog,
collecting morning, evening and exchange quantities for every product, and
delivers a text summary and an Excel workbook when the last product is done.

Example Usage:
  reportbot serve                      # Run the Telegram bot (token from TOKEN)
  reportbot console                    # Fill a report in the terminal
  reportbot bus --nats-url nats://...  # Serve the dialogue over NATS
  reportbot catalog --catalog ./c.yaml # Validate a catalog file`,

	SilenceUsage:      true,
	PersistentPreRunE: initConfig,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI until it finishes or the process receives SIGINT or
// SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to the configuration file (default is ./config.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.String("catalog", "", "Catalog file (.yaml, .csv or .xlsx); built-in catalog when empty")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")

	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("catalog.file", flags.Lookup("catalog"))
	_ = v.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
}

// initConfig loads the configuration and sets up logging.
func initConfig(_ *cobra.Command, _ []string) error {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	mainConfig = cfg

	if err := setupLogging(cfg.Log); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", "path", used)
	}
	return nil
}

// setupLogging installs the default slog logger.
func setupLogging(lc config.LogConfig) error {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch lc.Format {
	case "console":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// bindFlag binds a command flag to a configuration key.
func bindFlag(cmd *cobra.Command, key, flag string) {
	_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
}
