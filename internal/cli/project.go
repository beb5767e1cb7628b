package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/signature-opensource/cksetup/internal/config"
	"github.com/signature-opensource/cksetup/internal/db"
	"github.com/signature-opensource/cksetup/internal/files/filesystem"
	"github.com/signature-opensource/cksetup/internal/logging"
	"github.com/signature-opensource/cksetup/internal/services"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Environment variables holding the connection string, highest priority first.
const (
	EnvConnectionString = "CKSETUP_CONNECTION_STRING"
	EnvDatabaseURL      = "DATABASE_URL"
)

// setupFlagValues holds the flags shared by plan and apply.
type setupFlagValues struct {
	connection string
	strict     bool
	timeout    time.Duration
}

func addSetupFlags(cmd *cobra.Command, flags *setupFlagValues) {
	cmd.Flags().StringVar(&flags.connection, "connection", "",
		"PostgreSQL connection string.\n"+
			"Precedence: --connection > $"+EnvConnectionString+" > $"+EnvDatabaseURL+" > cksetup.yaml\n"+
			"Example: postgresql://user@localhost:5432/app")
	cmd.Flags().BoolVar(&flags.strict, "strict", false,
		"Fail when an item cannot reach its desired version instead of warning")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", cksetup.DefaultTimeout,
		"Maximum duration of the whole run (overrides cksetup.yaml)\n"+
			"Examples: 30s, 5m, 1h30m")
}

// resolveConnectionString applies flag and environment precedence. An empty
// result defers to the connection of cksetup.yaml.
func resolveConnectionString(flag string) string {
	if flag != "" {
		return flag
	}
	if cs := os.Getenv(EnvConnectionString); cs != "" {
		return cs
	}
	return os.Getenv(EnvDatabaseURL)
}

// buildRequest loads .env files and the project configuration, then merges
// the command line flags.
func buildRequest(cmd *cobra.Command, projectPath string, flags setupFlagValues) (services.Request, error) {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(projectPath, ".env"))

	cfg, err := config.Load(projectPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		return services.Request{}, fmt.Errorf("%s not found in %s: %w", config.ConfigFileName, projectPath, cksetup.ErrInvalidConfig)
	}
	if err != nil {
		return services.Request{}, err
	}
	if err := cfg.Validate(); err != nil {
		return services.Request{}, fmt.Errorf("%s: %w", config.ConfigFileName, err)
	}

	req := services.Request{
		ProjectPath: projectPath,
		Config:      cfg,
		Connection:  resolveConnectionString(flags.connection),
		Strict:      flags.strict,
	}
	if cmd.Flags().Changed("timeout") {
		if flags.timeout <= 0 {
			return services.Request{}, fmt.Errorf("--timeout must be positive: %w", cksetup.ErrInvalidConfig)
		}
		req.Timeout = flags.timeout
	}
	return req, nil
}

func newSetupService(verbose bool) *services.SetupService {
	logger := logging.NewConsoleLogger(verbose)
	connector := func(cs string) cksetup.Connector { return db.NewConnector(cs, logger) }
	return services.NewSetupService(filesystem.NewOS(), connector, logger)
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
