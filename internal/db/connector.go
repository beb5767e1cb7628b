package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/signature-opensource/cksetup/internal/retry"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// Connection pool configuration.
const (
	// DefaultMaxConns covers one executor connection plus the version store.
	DefaultMaxConns = 4

	DefaultMinConns = 1

	DefaultMaxConnIdleTime = 30 * time.Minute
)

// Connector connects to PostgreSQL with a connection string, retrying
// transient failures.
type Connector struct {
	connString string
	logger     cksetup.Logger
	retrier    *retry.Retrier
}

// NewConnector creates a connector. The connection string is validated
// when connecting.
//
// Panics if logger is nil.
func NewConnector(connString string, logger cksetup.Logger) *Connector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	r := retry.New(retry.DefaultPolicy(), retry.IsTransientConnectError).
		OnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("Connection attempt failed (%v), retry %d in %s", err, attempt, delay.Round(time.Millisecond))
		})
	return &Connector{connString: connString, logger: logger, retrier: r}
}

// Connect opens a pool and checks it with a ping.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.connString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", cksetup.ErrInvalidConfig)
	}
	c.configure(cfg)
	target := describe(cfg.ConnConfig.Config)

	var pool *pgxpool.Pool
	err = c.retrier.Do(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, wrapConnectionError(err, target)
	}

	c.logger.Verbose("Connected to %s", target)
	return pool, nil
}

func (c *Connector) configure(cfg *pgxpool.Config) {
	cfg.MaxConns = DefaultMaxConns
	cfg.MinConns = DefaultMinConns
	cfg.MaxConnIdleTime = DefaultMaxConnIdleTime
	if cfg.ConnConfig.RuntimeParams == nil {
		cfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = cksetup.ApplicationName
	}
	cfg.ConnConfig.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		c.logger.Info("%s: %s", n.Severity, n.Message)
	}
}

func describe(cfg pgconn.Config) string {
	return fmt.Sprintf("%s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)
}

// wrapConnectionError names the target and a hint for common causes.
func wrapConnectionError(err error, target string) error {
	msg := strings.ToLower(err.Error())
	var hint string
	switch {
	case strings.Contains(msg, "connection refused"):
		hint = "is PostgreSQL running and listening on that host and port?"
	case strings.Contains(msg, "no such host"):
		hint = "check the host name"
	case strings.Contains(msg, "password authentication failed"):
		hint = "check the user and password"
	case strings.Contains(msg, "does not exist"):
		hint = "the database must exist before setup runs"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		hint = "the server did not answer in time"
	}
	if hint != "" {
		return fmt.Errorf("%w: %s (%s): %w", cksetup.ErrConnectionFailed, target, hint, err)
	}
	return fmt.Errorf("%w: %s: %w", cksetup.ErrConnectionFailed, target, err)
}

var _ cksetup.Connector = (*Connector)(nil)
