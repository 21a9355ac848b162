package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/stormstats/internal/replay"
)

// FakeDecoder is a scripted replay.Decoder. Full decodes pop outcomes from
// Attempts in order; raw reads are answered by Raw keyed on the first
// requested section. Every call is recorded.
type FakeDecoder struct {
	mu sync.Mutex

	Header    *replay.Header
	HeaderErr error
	Attempts  []replay.Outcome
	Raw       map[replay.Section]replay.Outcome

	HeaderCalls int
	DecodeCalls []replay.Options
}

// NewFakeDecoder returns a decoder with a valid header and no scripted outcomes.
func NewFakeDecoder() *FakeDecoder {
	return &FakeDecoder{
		Header: &replay.Header{Build: 91418, Version: "2.55.3.91418"},
		Raw:    make(map[replay.Section]replay.Outcome),
	}
}

func (f *FakeDecoder) DecodeHeader(ctx context.Context, path string) (*replay.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HeaderCalls++
	return f.Header, f.HeaderErr
}

func (f *FakeDecoder) Decode(ctx context.Context, path string, opts replay.Options) replay.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DecodeCalls = append(f.DecodeCalls, opts)

	if len(opts.Sections) > 0 {
		if out, ok := f.Raw[opts.Sections[0]]; ok {
			return out
		}
		return replay.Exception(fmt.Sprintf("no raw outcome scripted for %s", opts.Sections[0]))
	}
	if len(f.Attempts) == 0 {
		return replay.Exception("no decode outcome scripted")
	}
	out := f.Attempts[0]
	f.Attempts = f.Attempts[1:]
	return out
}

// FullDecodes returns the options of every full (non-raw) decode call.
func (f *FakeDecoder) FullDecodes() []replay.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []replay.Options
	for _, o := range f.DecodeCalls {
		if len(o.Sections) == 0 {
			out = append(out, o)
		}
	}
	return out
}

// Calls returns the total number of decoder invocations of any kind.
func (f *FakeDecoder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.HeaderCalls + len(f.DecodeCalls)
}

// WriteReplay creates a file of exactly size bytes named name inside a
// temporary directory and returns its path.
func WriteReplay(t *testing.T, name string, size int64) string {
	t.Helper()
	path := t.TempDir() + string(os.PathSeparator) + name
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

// ErrFake is a generic error for scripted failures.
var ErrFake = errors.New("fake failure")

// Int64 returns a pointer to v, for score values.
func Int64(v int64) *int64 {
	return &v
}

// Match builds a typical decoded match.
func Match() *replay.DecodedMatch {
	return &replay.DecodedMatch{
		Map:     "Cursed Hollow",
		Mode:    "StormLeague",
		Length:  1234,
		Winner:  0,
		Version: "2.55.3.91418",
		Region:  "EU",
	}
}

// TenPlayers builds five players per team with distinct toon handles and
// native stats.
func TenPlayers() []replay.DecodedPlayer {
	players := make([]replay.DecodedPlayer, 10)
	for i := range players {
		team := 0
		if i >= 5 {
			team = 1
		}
		players[i] = replay.DecodedPlayer{
			Name:       fmt.Sprintf("player%d", i+1),
			Hero:       "Valla",
			Team:       team,
			ToonHandle: fmt.Sprintf("2-Hero-1-%d", 1000+i),
			BattleTag:  fmt.Sprintf("player%d#%d", i+1, 1100+i),
			HeroLevel:  10 + i,
			Stats: map[string]int64{
				"SoloKill":   int64(i),
				"Deaths":     1,
				"Assists":    2,
				"HeroDamage": int64(10000 + i),
				"Level":      18,
			},
		}
	}
	return players
}
