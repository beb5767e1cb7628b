package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/signature-opensource/cksetup/internal/config"
	"github.com/signature-opensource/cksetup/internal/files/filesystem"
	"github.com/signature-opensource/cksetup/internal/handlers"
	"github.com/signature-opensource/cksetup/internal/testutil"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingConnector struct{ err error }

func (c failingConnector) Connect(context.Context) (*pgxpool.Pool, error) { return nil, c.err }

func connectorFailing(err error, used *[]string) ConnectorFactory {
	return func(cs string) cksetup.Connector {
		*used = append(*used, cs)
		return failingConnector{err: err}
	}
}

func noConnector(t *testing.T) ConnectorFactory {
	return func(string) cksetup.Connector {
		t.Fatal("unexpected connection")
		return nil
	}
}

func projectFS() *filesystem.Memory {
	return filesystem.NewMemory().
		AddFile("proj/sql/CK.tUser.1.0.0.sql", "create table tUser();").
		AddFile("proj/sql/CK.tUser.1.0.0.to.1.1.0.sql", "alter table tUser add c int;").
		AddFile("proj/sql/CK.tUser.sql", "grant select on tUser to public;").
		AddFile("proj/sql/README.md", "docs").
		AddFile("proj/sql/CK.tUser.1.0.0.to.1.0.0.sql", "").
		AddFile("proj/patch/CK.tUser.1.0.0.sql", "create table tUser(id int);").
		AddFile("proj/ps/CK.vUser.Settle.ps1", "Write-Host")
}

func projectConfig() *config.ProjectConfig {
	return &config.ProjectConfig{
		Sources: []config.SourceConfig{
			{Name: "base", Path: "sql"},
			{Name: "patch", Path: "patch", Index: 5},
		},
		Items: []config.ItemConfig{
			{Name: "CK.DB", Children: []config.ItemConfig{
				{Name: "CK.tUser", Version: "1.1.0"},
			}},
		},
	}
}

func TestSetupService_PlanFreshInstallWithoutConnection(t *testing.T) {
	logger := &testutil.RecordingLogger{}
	svc := NewSetupService(projectFS(), noConnector(t), logger)

	plan, err := svc.Plan(context.Background(), Request{ProjectPath: "proj", Config: projectConfig()})
	require.NoError(t, err)

	require.Len(t, plan.Steps, 1)
	step := plan.Steps[0]
	assert.Equal(t, "CK.tUser", step.Item.FullName)
	require.Len(t, step.Vector.Scripts, 3)
	assert.Equal(t, "patch", step.Vector.Scripts[0].Source().Name)
	assert.Equal(t, "CK.tUser.1.0.0.to.1.1.0.sql", step.Vector.Scripts[1].Name().Origin)
	assert.Equal(t, "CK.tUser.sql", step.Vector.Scripts[2].Name().Origin)

	st, ok := plan.State("CK.tUser")
	require.True(t, ok)
	assert.Nil(t, st.Installed)
	assert.Equal(t, cksetup.NewVersion(1, 1, 0), st.Reached)
	assert.True(t, logger.HasWarning("CK.tUser.1.0.0.to.1.0.0.sql"))
}

func TestSetupService_Discover(t *testing.T) {
	svc := NewSetupService(projectFS(), noConnector(t), &testutil.RecordingLogger{})

	project, err := svc.Discover(Request{ProjectPath: "proj", Config: projectConfig()})
	require.NoError(t, err)

	assert.Equal(t, 6, project.Scan.Discovered)
	assert.Equal(t, 4, project.Scan.Registered)
	assert.Equal(t, 1, project.Scan.Rejected)
	assert.Equal(t, 1, project.Scan.Skipped)
	assert.Equal(t, []string{"CK.tUser"}, project.Registry.Targets())
	require.Len(t, project.Items, 1)
	assert.Equal(t, "CK.DB", project.Items[0].FullName)
}

func TestSetupService_HostedHandler(t *testing.T) {
	cfg := projectConfig()
	cfg.Sources = append(cfg.Sources, config.SourceConfig{Name: "ps", Path: "ps"})
	cfg.Handlers = []string{"sql", "ps1"}
	cfg.Items = append(cfg.Items, config.ItemConfig{Name: "CK.vUser"})

	ps := handlers.NewFuncHandler("ps1", func(context.Context, *cksetup.SetupItem, *cksetup.Script) error { return nil })
	svc := NewSetupService(projectFS(), noConnector(t), &testutil.RecordingLogger{}, ps)

	plan, err := svc.Plan(context.Background(), Request{ProjectPath: "proj", Config: cfg})
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "CK.vUser", plan.Steps[1].Item.FullName)
	assert.Equal(t, cksetup.PhaseSettle, plan.Steps[1].Phase)
	assert.Equal(t, "ps1", plan.Steps[1].Handler.ScriptType())
}

func TestSetupService_UnhostedScriptType(t *testing.T) {
	cfg := projectConfig()
	cfg.Handlers = []string{"sql", "ps1"}
	svc := NewSetupService(projectFS(), noConnector(t), &testutil.RecordingLogger{})

	_, err := svc.Plan(context.Background(), Request{ProjectPath: "proj", Config: cfg})
	assert.True(t, errors.Is(err, cksetup.ErrMissingExecutor))
	assert.ErrorContains(t, err, `"ps1"`)
}

func TestSetupService_StrictRefusesPartial(t *testing.T) {
	cfg := projectConfig()
	cfg.Items[0].Children[0].Version = "2.0.0"
	svc := NewSetupService(projectFS(), noConnector(t), &testutil.RecordingLogger{})

	plan, err := svc.Plan(context.Background(), Request{ProjectPath: "proj", Config: cfg})
	require.NoError(t, err)
	assert.Len(t, plan.PartialItems(), 1)

	_, err = svc.Plan(context.Background(), Request{ProjectPath: "proj", Config: cfg, Strict: true})
	assert.True(t, errors.Is(err, cksetup.ErrPartialMigration))
}

func TestSetupService_ApplyRequiresConnection(t *testing.T) {
	svc := NewSetupService(projectFS(), noConnector(t), &testutil.RecordingLogger{})

	_, err := svc.Apply(context.Background(), Request{ProjectPath: "proj", Config: projectConfig()})
	assert.True(t, errors.Is(err, cksetup.ErrInvalidConfig))
}

func TestSetupService_ConnectionPrecedence(t *testing.T) {
	connErr := errors.New("connection refused")
	tests := []struct {
		name       string
		configured string
		override   string
		want       string
	}{
		{"configured", "postgres://cfg", "", "postgres://cfg"},
		{"override wins", "postgres://cfg", "postgres://flag", "postgres://flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var used []string
			cfg := projectConfig()
			cfg.Connection = tt.configured
			svc := NewSetupService(projectFS(), connectorFailing(connErr, &used), &testutil.RecordingLogger{})

			_, err := svc.Apply(context.Background(), Request{ProjectPath: "proj", Config: cfg, Connection: tt.override})
			assert.ErrorIs(t, err, connErr)
			assert.Equal(t, []string{tt.want}, used)
		})
	}
}

func TestSetupService_InvalidTimeout(t *testing.T) {
	cfg := projectConfig()
	cfg.Timeout = "never"
	svc := NewSetupService(projectFS(), noConnector(t), &testutil.RecordingLogger{})

	_, err := svc.Plan(context.Background(), Request{ProjectPath: "proj", Config: cfg})
	assert.True(t, errors.Is(err, cksetup.ErrInvalidConfig))
}

func TestNewSetupService_PanicsOnNilDependencies(t *testing.T) {
	fs := filesystem.NewMemory()
	factory := noConnector(t)
	logger := &testutil.RecordingLogger{}

	assert.Panics(t, func() { NewSetupService(nil, factory, logger) })
	assert.Panics(t, func() { NewSetupService(fs, nil, logger) })
	assert.Panics(t, func() { NewSetupService(fs, factory, nil) })
}
