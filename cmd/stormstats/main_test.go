package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/stormstats/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLocaleCmd(t *testing.T) {
	out, err := execute(t, "locale", "Rehgar")
	require.NoError(t, err)
	assert.Equal(t, "레가르", strings.TrimSpace(out))

	out, err = execute(t, "locale", "--map", "Cursed Hollow")
	require.NoError(t, err)
	assert.NotEqual(t, "Cursed Hollow", strings.TrimSpace(out))

	out, err = execute(t, "locale", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, "Nobody", strings.TrimSpace(out))
}

func TestLocaleCmdCustomTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heroes:\n  Valla: Valla-X\nmaps: {}\n"), 0o644))

	out, err := execute(t, "--locale", path, "locale", "Valla")
	require.NoError(t, err)
	assert.Equal(t, "Valla-X", strings.TrimSpace(out))
}

func TestAnalyzeCmdReportsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 2048), 0o644))

	out, err := execute(t, "--decoder", "/nonexistent/stormdecode", "analyze", "--compact", path)

	assert.ErrorIs(t, err, errFailed)
	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, ".StormReplay")
}

func TestHeaderCmdMissingDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.StormReplay")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 2048), 0o644))

	_, err := execute(t, "--decoder", "/nonexistent/stormdecode", "header", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read header")
}

func TestRequiresArgument(t *testing.T) {
	_, err := execute(t, "analyze")
	assert.Error(t, err)
}

func TestFlagDefaultsFollowConfig(t *testing.T) {
	t.Setenv("DECODER_PATH", "/opt/storm/stormdecode")
	t.Setenv("DECODER_TIMEOUT", "15s")
	t.Setenv("LOCALE_FILE", "/etc/stormstats/tables.yaml")

	flags := newRootCmd().PersistentFlags()

	assert.Equal(t, "/opt/storm/stormdecode", flags.Lookup("decoder").DefValue)
	assert.Equal(t, "15s", flags.Lookup("timeout").DefValue)
	assert.Equal(t, "/etc/stormstats/tables.yaml", flags.Lookup("locale").DefValue)
}
