package cksetup_test

import (
	"errors"
	"testing"

	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupStep_Executable(t *testing.T) {
	assert.Equal(t, cksetup.StepInstall, cksetup.StepNone.Executable())
	assert.Equal(t, cksetup.StepInit, cksetup.StepInit.Executable())
	assert.Equal(t, cksetup.StepInstall, cksetup.StepInstall.Executable())
	assert.Equal(t, cksetup.StepSettle, cksetup.StepSettle.Executable())
	assert.False(t, cksetup.SetupStep(42).IsValid())
	assert.Equal(t, "Unknown(42)", cksetup.SetupStep(42).String())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "Init", cksetup.PhaseInit.String())
	assert.Equal(t, "InitContent", cksetup.PhaseInitContent.String())
	assert.Equal(t, "InstallContent", cksetup.PhaseInstallContent.String())
	assert.Equal(t, "Settle", cksetup.PhaseSettle.String())
}

func TestParsedName_Classification(t *testing.T) {
	tests := []struct {
		name                                        string
		parsed                                      cksetup.ParsedName
		upgrade, downgrade, fullInstall, noVersion bool
	}{
		{"unconditional", cksetup.ParsedName{TargetFullName: "A"}, false, false, false, true},
		{"full install", cksetup.ParsedName{TargetFullName: "A", Version: cksetup.NewVersion(1, 0, 0)}, false, false, true, false},
		{"upgrade", cksetup.ParsedName{TargetFullName: "A", FromVersion: cksetup.NewVersion(1, 0, 0), Version: cksetup.NewVersion(1, 1, 0)}, true, false, false, false},
		{"downgrade", cksetup.ParsedName{TargetFullName: "A", FromVersion: cksetup.NewVersion(2, 0, 0), Version: cksetup.NewVersion(1, 1, 0)}, false, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.upgrade, tt.parsed.IsUpgradeScript())
			assert.Equal(t, tt.downgrade, tt.parsed.IsDowngradeScript())
			assert.Equal(t, tt.fullInstall, tt.parsed.IsFullInstall())
			assert.Equal(t, tt.noVersion, tt.parsed.IsUnconditional())
		})
	}
}

func TestParsedName_PhaseOfStepNone(t *testing.T) {
	n := cksetup.ParsedName{TargetFullName: "A", Step: cksetup.StepNone, IsContent: true}
	assert.Equal(t, cksetup.PhaseInstallContent, n.Phase())
}

func TestNewScript(t *testing.T) {
	source := cksetup.ScriptSource{Name: "Base", Index: 1}
	name := cksetup.ParsedName{TargetFullName: "A", Origin: "./sql/A.1.0.0.sql", Version: cksetup.NewVersion(1, 0, 0)}

	s := cksetup.NewScript(name, "sql", source, cksetup.StaticContent("select 1;"))

	assert.Equal(t, cksetup.ScriptID("base", "sql/a.1.0.0.sql"), s.ID())
	assert.Equal(t, "sql", s.ScriptType())
	assert.Equal(t, source, s.Source())
	assert.Equal(t, "Base:./sql/A.1.0.0.sql", s.String())
	content, err := s.LoadContent()
	require.NoError(t, err)
	assert.Equal(t, "select 1;", content)

	assert.Panics(t, func() { cksetup.NewScript(name, "sql", source, nil) })
}

func TestScript_LoadContentError(t *testing.T) {
	boom := errors.New("boom")
	s := cksetup.NewScript(cksetup.ParsedName{TargetFullName: "A"}, "sql", cksetup.ScriptSource{Name: "x"},
		cksetup.ContentLoaderFunc(func() (string, error) { return "", boom }))

	_, err := s.LoadContent()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "x:A", s.String())
}

func TestScriptID_Deterministic(t *testing.T) {
	a := cksetup.ScriptID("base", "A.sql")
	assert.Equal(t, a, cksetup.ScriptID("BASE", "./a.SQL"))
	assert.NotEqual(t, a, cksetup.ScriptID("other", "A.sql"))
	assert.Equal(t, uint8(5), uint8(a.Version()))
}

func TestSetupItem_Walk(t *testing.T) {
	root := &cksetup.SetupItem{
		FullName: "db",
		Children: []*cksetup.SetupItem{
			{FullName: "schema", Children: []*cksetup.SetupItem{{FullName: "table"}}},
			{FullName: "view"},
		},
	}

	var visited []string
	root.Walk(func(i *cksetup.SetupItem) { visited = append(visited, i.FullName) })

	assert.Equal(t, []string{"db", "schema", "table", "view"}, visited)
}
