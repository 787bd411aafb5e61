package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/optics-dcs/miz-import/internal/config"
	"github.com/optics-dcs/miz-import/internal/logging"
	"github.com/optics-dcs/miz-import/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "miz_import"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.Default()

	// Metrics records parse and import measurements
	Metrics *metrics.Recorder

	SessionStartTime time.Time = time.Now()

	configDir string
	logLevel  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               AppName,
		Short:             "Import flights from DCS mission archives into a planning database",
		Version:           fmt.Sprintf("%s (built %s)", CurrentVersion, BuildDate),
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if SlogManager != nil {
				if err := SlogManager.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "closing logs: %v\n", err)
				}
			}
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing "+config.FileName)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newInspectCmd(),
		newTreeCmd(),
		newStageCmd(),
		newCommitCmd(),
		newImportCmd(),
		newPackageCmd(),
		newSeedAirframesCmd(),
		newSeedWaypointTypesCmd(),
		newPruneSessionsCmd(),
		newBackupCmd(),
	)
	return root
}

// setup loads the config and starts logging and metrics before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	level := config.GetString("logLevel")
	if logLevel != "" {
		level = logLevel
	}

	var sinks []io.Writer
	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		w, err := logging.OpenGraylog(graylogCfg.Address)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			sinks = append(sinks, w)
		}
	}

	var file io.Writer
	if logsDir := config.GetString("logsDir"); logsDir != "" {
		file = logging.OpenLogFile(logging.LogFilePath(logsDir, AppName, SessionStartTime))
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(file, level, sinks...)
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)

	rec, err := metrics.New()
	if err != nil {
		Logger.Warn("Metrics disabled", "error", err)
	}
	Metrics = rec

	Logger.Debug("Starting up", "version", CurrentVersion, "command", cmd.Name())
	return nil
}

// dbLogger is the zerolog logger handed to the database manager, at the configured level.
func dbLogger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(config.GetString("logLevel"))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Str("component", "database").Logger()
}
