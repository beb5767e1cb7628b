package scanner

import (
	"errors"
	"testing"

	"github.com/signature-opensource/cksetup/internal/files/filesystem"
	"github.com/signature-opensource/cksetup/internal/registry"
	"github.com/signature-opensource/cksetup/internal/testutil"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source(name, dir string, index int) Source {
	return Source{ScriptSource: cksetup.ScriptSource{Name: name, Index: index}, Path: dir}
}

func TestScan_RegistersScripts(t *testing.T) {
	fs := filesystem.NewMemory().
		AddFile("base/CK.tUser.1.0.0.sql", "create table tUser();").
		AddFile("base/nested/CK.tUser.1.0.0.to.1.1.0.SQL", "alter table tUser;").
		AddFile("base/CK.tUser.Settle.sql", "analyze;").
		AddFile("base/CK.tUser.1.0.0.ps1", "Write-Host").
		AddFile("base/readme.md", "docs").
		AddFile("base/.hidden.sql", "").
		AddFile("base/broken.1.0.0.to.1.0.0.sql", "")
	logger := &testutil.RecordingLogger{}
	b := registry.NewBuilder()

	result, err := New(fs, logger, "sql").Scan(b, source("base", "base", 0))
	require.NoError(t, err)

	assert.Equal(t, Result{Discovered: 7, Registered: 3, Rejected: 1, Skipped: 3}, result)
	assert.True(t, logger.HasWarning("base:broken.1.0.0.to.1.0.0.sql"))

	reg := b.Build()
	set, err := reg.Lookup("CK.tUser")
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, []string{"sql"}, set.ScriptTypes())

	vector := set.GetScriptVector("sql", cksetup.PhaseInstall, nil, cksetup.NewVersion(1, 1, 0))
	assert.Equal(t, []string{"CK.tUser.1.0.0.sql", "nested/CK.tUser.1.0.0.to.1.1.0.SQL"}, testutil.Names(vector.Scripts))

	content, err := vector.Scripts[1].LoadContent()
	require.NoError(t, err)
	assert.Equal(t, "alter table tUser;", content)
	assert.Equal(t, cksetup.ScriptID("base", "nested/CK.tUser.1.0.0.to.1.1.0.SQL"), vector.Scripts[1].ID())
}

func TestScan_HigherIndexOverrides(t *testing.T) {
	fs := filesystem.NewMemory().
		AddFile("base/CK.tUser.1.0.0.sql", "base").
		AddFile("patch/CK.tUser.1.0.0.sql", "patch")
	b := registry.NewBuilder()

	result, err := New(fs, &testutil.RecordingLogger{}, "sql").Scan(b,
		source("patch", "patch", 10),
		source("base", "base", 0),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Registered)
	assert.Equal(t, 1, result.Rejected)

	set, _ := b.Build().Find("CK.tUser")
	vector := set.GetScriptVector("sql", cksetup.PhaseInstall, nil, cksetup.NewVersion(1, 0, 0))
	require.Len(t, vector.Scripts, 1)
	content, err := vector.Scripts[0].LoadContent()
	require.NoError(t, err)
	assert.Equal(t, "patch", content)
}

func TestScan_MultipleTypes(t *testing.T) {
	fs := filesystem.NewMemory().
		AddFile("s/A.1.0.0.sql", "").
		AddFile("s/A.1.0.0.PS1", "")
	b := registry.NewBuilder()

	result, err := New(fs, &testutil.RecordingLogger{}, "sql", "PS1").Scan(b, source("s", "s", 0))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Registered)

	set, _ := b.Build().Find("A")
	assert.Equal(t, []string{"ps1", "sql"}, set.ScriptTypes())
}

func TestScan_Errors(t *testing.T) {
	fs := filesystem.NewMemory().AddFile("s/A.sql", "")

	_, err := New(fs, &testutil.RecordingLogger{}, "sql").Scan(registry.NewBuilder(), source("s", "missing", 0))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "source s")

	_, err = New(fs, &testutil.RecordingLogger{}, "sql").Scan(registry.NewBuilder(), source("s", "s", 0), source("s", "s", 1))
	assert.True(t, errors.Is(err, cksetup.ErrInvalidConfig))

	frozen := registry.NewBuilder()
	frozen.Build()
	_, err = New(fs, &testutil.RecordingLogger{}, "sql").Scan(frozen, source("s", "s", 0))
	assert.True(t, errors.Is(err, cksetup.ErrRegistryFrozen))
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { New(nil, &testutil.RecordingLogger{}) })
	assert.Panics(t, func() { New(filesystem.NewMemory(), nil) })
}
