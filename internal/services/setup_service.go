package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signature-opensource/cksetup/internal/config"
	"github.com/signature-opensource/cksetup/internal/db"
	"github.com/signature-opensource/cksetup/internal/files/filesystem"
	"github.com/signature-opensource/cksetup/internal/files/scanner"
	"github.com/signature-opensource/cksetup/internal/handlers"
	"github.com/signature-opensource/cksetup/internal/registry"
	"github.com/signature-opensource/cksetup/internal/setup"
	"github.com/signature-opensource/cksetup/internal/state"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// ConnectorFactory creates a connector for a connection string.
type ConnectorFactory func(connString string) cksetup.Connector

// Request describes one setup run.
type Request struct {
	// ProjectPath is the directory source paths are resolved against.
	ProjectPath string

	// Config is the loaded and validated project configuration.
	Config *config.ProjectConfig

	// Connection overrides the configured connection string.
	Connection string

	// Strict forces strict mode regardless of configuration.
	Strict bool

	// Timeout overrides the configured timeout when positive.
	Timeout time.Duration
}

func (r Request) connection() string {
	if r.Connection != "" {
		return r.Connection
	}
	return r.Config.Connection
}

// Project is the discovered state of a project: its items and the frozen
// registry built from its sources.
type Project struct {
	Items    []*cksetup.SetupItem
	Registry *registry.Registry
	Scan     scanner.Result
}

// ApplyResult reports a completed apply.
type ApplyResult struct {
	Plan *setup.Plan
	Run  setup.RunResult
}

// SetupService plans and applies setup runs.
// Thread-Safety: safe for concurrent Plan and Apply calls.
type SetupService struct {
	fs        filesystem.Provider
	connector ConnectorFactory
	logger    cksetup.Logger
	hosted    []cksetup.ScriptHandler
}

// NewSetupService creates a service. Hosted handlers serve script types other
// than sql and take precedence over the built-in sql handler.
//
// Panics if fs, connector or logger is nil.
func NewSetupService(fs filesystem.Provider, connector ConnectorFactory, logger cksetup.Logger, hosted ...cksetup.ScriptHandler) *SetupService {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if connector == nil {
		panic("connector cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SetupService{fs: fs, connector: connector, logger: logger, hosted: hosted}
}

// Discover scans the configured sources into a frozen registry.
func (s *SetupService) Discover(req Request) (*Project, error) {
	if req.Config == nil {
		panic("config cannot be nil")
	}
	items, err := req.Config.SetupItems()
	if err != nil {
		return nil, err
	}

	sources := make([]scanner.Source, 0, len(req.Config.Sources))
	for _, sc := range req.Config.Sources {
		sources = append(sources, scanner.Source{
			ScriptSource: cksetup.ScriptSource{Name: sc.Name, Index: sc.Index},
			Path:         config.SourcePath(req.ProjectPath, sc),
		})
	}

	b := registry.NewBuilder()
	result, err := scanner.New(s.fs, s.logger, req.Config.ScriptTypes()...).Scan(b, sources...)
	if err != nil {
		return nil, err
	}
	return &Project{Items: items, Registry: b.Build(), Scan: result}, nil
}

// Plan computes the plan of a run without executing anything. Installed
// versions are read from the database when a connection is configured;
// otherwise every item is a fresh install.
func (s *SetupService) Plan(ctx context.Context, req Request) (*setup.Plan, error) {
	ctx, cancel, err := s.withTimeout(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cancel()

	project, err := s.Discover(req)
	if err != nil {
		return nil, err
	}

	var stateProvider cksetup.VersionStateProvider = state.NewMemoryStore()
	var conn cksetup.DBConnection
	if cs := req.connection(); cs != "" {
		adapter, closeFn, err := s.connect(ctx, cs)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		conn = adapter
		stateProvider = db.NewVersionStore(adapter)
	} else {
		s.logger.Verbose("No connection configured, planning a fresh install")
	}

	set, err := s.handlerSet(req.Config.ScriptTypes(), conn)
	if err != nil {
		return nil, err
	}
	return setup.NewPlanner(project.Registry, set, stateProvider, s.logger, s.plannerOptions(req)).Plan(ctx, project.Items)
}

// Apply plans then executes a run against the configured database, journaling
// every script and recording reached versions.
func (s *SetupService) Apply(ctx context.Context, req Request) (*ApplyResult, error) {
	cs := req.connection()
	if cs == "" {
		return nil, fmt.Errorf("apply requires a connection string: %w", cksetup.ErrInvalidConfig)
	}

	ctx, cancel, err := s.withTimeout(ctx, req)
	if err != nil {
		return nil, err
	}
	defer cancel()

	project, err := s.Discover(req)
	if err != nil {
		return nil, err
	}

	conn, closeFn, err := s.connect(ctx, cs)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	store := db.NewVersionStore(conn)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	set, err := s.handlerSet(req.Config.ScriptTypes(), conn)
	if err != nil {
		return nil, err
	}
	plan, err := setup.NewPlanner(project.Registry, set, store, s.logger, s.plannerOptions(req)).Plan(ctx, project.Items)
	if err != nil {
		return nil, err
	}

	if plan.IsEmpty() {
		s.logger.Info("Nothing to run")
	}
	run, err := setup.NewRunner(s.logger, setup.RunnerOptions{Journal: store, Recorder: store}).Run(ctx, plan)
	if err != nil {
		return &ApplyResult{Plan: plan, Run: run}, err
	}
	s.logger.Info("Setup %s completed: %d script(s) in %d step(s), %d version(s) recorded",
		run.RunID, run.Scripts, run.Steps, len(run.Recorded))
	return &ApplyResult{Plan: plan, Run: run}, nil
}

func (s *SetupService) plannerOptions(req Request) setup.PlannerOptions {
	return setup.PlannerOptions{Strict: req.Strict || req.Config.Strict}
}

func (s *SetupService) withTimeout(ctx context.Context, req Request) (context.Context, context.CancelFunc, error) {
	if req.Config == nil {
		panic("config cannot be nil")
	}
	timeout := req.Timeout
	if timeout <= 0 {
		var err error
		if timeout, err = req.Config.TimeoutDuration(); err != nil {
			return nil, nil, err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, cancel, nil
}

func (s *SetupService) connect(ctx context.Context, connString string) (cksetup.DBConnection, func(), error) {
	pool, err := s.connector(connString).Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	adapter := db.NewPoolAdapter(pool)
	return adapter, adapter.Close, nil
}

// handlerSet builds the handlers of the enabled script types. Without a
// connection the sql handler is replaced by one that refuses to execute.
func (s *SetupService) handlerSet(scriptTypes []string, conn cksetup.DBConnection) (*handlers.Set, error) {
	hosted := make(map[string]cksetup.ScriptHandler, len(s.hosted))
	for _, h := range s.hosted {
		hosted[h.ScriptType()] = h
	}

	set, err := handlers.NewSet()
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, t := range scriptTypes {
		var h cksetup.ScriptHandler
		switch {
		case hosted[t] != nil:
			h = hosted[t]
		case t == handlers.SQLScriptType && conn != nil:
			h = handlers.NewSQLHandler(conn, s.logger)
		case t == handlers.SQLScriptType:
			h = handlers.NewFuncHandler(t, refuseExecution)
		default:
			errs = append(errs, fmt.Errorf("script type %q has no handler: %w", t, cksetup.ErrMissingExecutor))
			continue
		}
		if err := set.Add(h); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}

func refuseExecution(_ context.Context, item *cksetup.SetupItem, script *cksetup.Script) error {
	return fmt.Errorf("%s: cannot run %s without a connection", item.FullName, script)
}
