package replay_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/stormstats/internal/replay"
	"github.com/vytor/stormstats/internal/testutil"
)

func TestValidateFile_Sizes(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		wantKind replay.Kind
	}{
		{name: "one below minimum", size: 999, wantKind: replay.KindTooSmall},
		{name: "exactly minimum", size: 1000},
		{name: "two megabytes", size: 2 << 20},
		{name: "exactly maximum", size: replay.MaxFileSize},
		{name: "one above maximum", size: replay.MaxFileSize + 1, wantKind: replay.KindTooLarge},
		{name: "empty file", size: 0, wantKind: replay.KindTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteReplay(t, "match.StormReplay", tt.size)

			size, err := replay.ValidateFile(path)
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.size, size)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, replay.KindOf(err))
			assert.True(t, replay.IsValidation(err))
		})
	}
}

func TestValidateFile_Extension(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		valid bool
	}{
		{name: "canonical case", file: "game.StormReplay", valid: true},
		{name: "upper case", file: "game.STORMREPLAY", valid: true},
		{name: "lower case", file: "game.stormreplay", valid: true},
		{name: "other extension", file: "game.SC2Replay"},
		{name: "no extension", file: "StormReplay"},
		{name: "suffix inside name", file: "game.StormReplay.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteReplay(t, tt.file, 4096)

			_, err := replay.ValidateFile(path)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, replay.KindInvalidFormat, replay.KindOf(err))
			assert.Contains(t, err.Error(), "invalid file format")
		})
	}
}

func TestValidateFile_Missing(t *testing.T) {
	_, err := replay.ValidateFile(filepath.Join(t.TempDir(), "gone.StormReplay"))
	assert.Equal(t, replay.KindNotFound, replay.KindOf(err))
}

func TestValidateFile_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dir.StormReplay")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := replay.ValidateFile(dir)
	assert.Equal(t, replay.KindNotFound, replay.KindOf(err))
}

func TestValidateFile_MissingBeatsExtension(t *testing.T) {
	_, err := replay.ValidateFile(filepath.Join(t.TempDir(), "gone.txt"))
	assert.Equal(t, replay.KindNotFound, replay.KindOf(err))
}
