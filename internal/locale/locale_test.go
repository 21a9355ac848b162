package locale_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/stormstats/internal/locale"
	"github.com/vytor/stormstats/internal/replay"
)

var _ replay.Localizer = (*locale.Tables)(nil)

func TestDefault_KnownNames(t *testing.T) {
	tables, err := locale.Default()
	require.NoError(t, err)

	assert.Equal(t, "발라", tables.Hero("Valla"))
	assert.Equal(t, "아누브아락", tables.Hero("Anub'arak"))
	assert.Equal(t, "저주받은 골짜기", tables.Map("Cursed Hollow"))
	assert.Equal(t, "D.Va", tables.Hero("D.Va"))
}

func TestLookup_PassesThroughUnknown(t *testing.T) {
	tables, err := locale.Default()
	require.NoError(t, err)

	for _, name := range []string{"", "NotAHero", "valla", "Unknown Map", replay.UnknownHero} {
		assert.Equal(t, name, tables.Hero(name))
		assert.Equal(t, name, tables.Map(name))
	}
}

func TestLookup_Idempotent(t *testing.T) {
	tables, err := locale.Default()
	require.NoError(t, err)

	for _, name := range []string{"Valla", "Cursed Hollow", "D.Va", "E.T.C.", "missing", "발라"} {
		once := tables.Hero(name)
		assert.Equal(t, once, tables.Hero(once), name)
		onceMap := tables.Map(name)
		assert.Equal(t, onceMap, tables.Map(onceMap), name)
	}
}

func TestParse_RejectsUnstableTable(t *testing.T) {
	_, err := locale.Parse([]byte("heroes:\n  A: B\n  B: C\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not stable")

	_, err = locale.Parse([]byte("maps:\n  A: \"\"\n"))
	assert.Error(t, err)

	_, err = locale.Parse([]byte("heroes: [oops"))
	assert.Error(t, err)
}

func TestNew_CopiesInput(t *testing.T) {
	heroes := map[string]string{"Valla": "Demon Hunter"}
	tables, err := locale.New(heroes, nil)
	require.NoError(t, err)

	heroes["Valla"] = "changed"
	assert.Equal(t, "Demon Hunter", tables.Hero("Valla"))
	assert.Equal(t, "Cursed Hollow", tables.Map("Cursed Hollow"))
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heroes:\n  Valla: Valla the Demon Hunter\nmaps:\n  Sky Temple: Temple of the Sky\n"), 0o644))

	tables, err := locale.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Valla the Demon Hunter", tables.Hero("Valla"))
	assert.Equal(t, "Temple of the Sky", tables.Map("Sky Temple"))

	_, err = locale.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tables, err = locale.Load("")
	require.NoError(t, err)
	assert.Equal(t, "발라", tables.Hero("Valla"))
}
