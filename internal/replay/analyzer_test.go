package replay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/replay"
	"github.com/vytor/stormstats/internal/testutil"
)

type tableLocalizer map[string]string

func (l tableLocalizer) Hero(name string) string { return l.lookup(name) }
func (l tableLocalizer) Map(name string) string  { return l.lookup(name) }

func (l tableLocalizer) lookup(name string) string {
	if v, ok := l[name]; ok {
		return v
	}
	return name
}

// trackerFor builds PlayerInit events with ids in reverse slot order and a
// Score event whose SoloKill and ExperienceContribution are keyed by those ids.
func trackerFor(players []replay.DecodedPlayer) []replay.TrackerEvent {
	n := len(players)
	events := make([]replay.TrackerEvent, 0, n+1)
	kills := make([]*int64, n)
	xp := make([]*int64, n)
	for i, p := range players {
		id := n - i
		events = append(events, replay.TrackerEvent{
			Kind:         replay.TrackerPlayerInit,
			IntFields:    []int64{int64(id)},
			StringFields: []string{"User", p.ToonHandle},
		})
		kills[id-1] = testutil.Int64(int64(100 + i))
		xp[id-1] = testutil.Int64(int64(1000 * i))
	}
	return append(events, replay.TrackerEvent{
		Kind: replay.TrackerScore,
		Scores: []replay.ScoreEntry{
			{Name: "SoloKill", Values: kills},
			{Name: "ExperienceContribution", Values: xp},
		},
	})
}

func TestAnalyze_EndToEnd(t *testing.T) {
	players := testutil.TenPlayers()
	match := testutil.Match()
	match.Date = time.Date(2024, 4, 30, 21, 15, 0, 0, time.UTC)

	dec := testutil.NewFakeDecoder()
	dec.Attempts = []replay.Outcome{replay.Ok(match, players)}
	dec.Raw[replay.SectionTrackerEvents] = replay.OkSections(&replay.Sections{TrackerEvents: trackerFor(players)})

	loc := tableLocalizer{"Valla": "발라", "Cursed Hollow": "저주받은 골짜기"}
	path := testutil.WriteReplay(t, "final.StormReplay", 2<<20)
	a := replay.NewAnalyzer(dec, loc, replay.WithClock(fixedClock))

	res := a.Analyze(context.Background(), path)

	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)
	require.Len(t, res.Teams.Blue, 5)
	require.Len(t, res.Teams.Red, 5)
	assert.Equal(t, 10, res.Statistics.PlayerCount)

	wantKills := 0
	for i := range players {
		wantKills += 100 + i
	}
	assert.Equal(t, wantKills, res.Statistics.TotalKills)
	assert.Equal(t, 10, res.Statistics.TotalDeaths)
	assert.Equal(t, 20, res.Statistics.TotalAssists)
	assert.Equal(t, float64(18), res.Statistics.AverageLevel)

	// highest experience sorts first; player5 and player10 carry the most
	assert.Equal(t, "player5", res.Teams.Blue[0].Name)
	assert.Equal(t, 104, res.Teams.Blue[0].Stats.SoloKill)
	assert.Equal(t, "player10", res.Teams.Red[0].Name)
	assert.Equal(t, 109, res.Teams.Red[0].Stats.SoloKill)
	assert.Equal(t, "발라", res.Teams.Red[0].Hero)

	want := &models.Metadata{
		MapName:      "저주받은 골짜기",
		GameMode:     "StormLeague",
		GameDuration: 1234,
		Date:         match.Date,
		Winner:       "blue",
		GameVersion:  "2.55.3.91418",
		Region:       "EU",
		FileSize:     2 << 20,
		AnalysisDate: analysisTime,
	}
	if diff := cmp.Diff(want, res.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_TrackerUnavailable(t *testing.T) {
	players := testutil.TenPlayers()
	dec := testutil.NewFakeDecoder()
	dec.Attempts = []replay.Outcome{replay.Ok(testutil.Match(), players)}
	dec.Raw[replay.SectionTrackerEvents] = replay.Failed(replay.StatusFailure)

	res, err := run(t, dec)

	require.NoError(t, err)
	assert.Equal(t, 45, res.Statistics.TotalKills, "native SoloKill 0..9")
	assert.Len(t, dec.DecodeCalls, 2)
}

func TestAnalyze_WrongExtensionNeverDecodes(t *testing.T) {
	dec := testutil.NewFakeDecoder()
	path := testutil.WriteReplay(t, "notes.txt", 4096)
	a := replay.NewAnalyzer(dec, nil)

	res := a.Analyze(context.Background(), path)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid file format")
	assert.Nil(t, res.Metadata)
	assert.Nil(t, res.Teams)
	assert.Nil(t, res.Statistics)
	assert.Zero(t, dec.Calls())
}

func TestAnalyze_GameVersionFallsBackToHeader(t *testing.T) {
	tests := []struct {
		name   string
		header *replay.Header
		want   string
	}{
		{name: "header version", header: &replay.Header{Build: 80000, Version: "2.50.0.80000"}, want: "2.50.0.80000"},
		{name: "header build only", header: &replay.Header{Build: 80000}, want: "80000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := testutil.Match()
			match.Version = ""
			dec := testutil.NewFakeDecoder()
			dec.Header = tt.header
			dec.Attempts = []replay.Outcome{replay.Ok(match, testutil.TenPlayers())}

			res, err := run(t, dec)

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Metadata.GameVersion)
		})
	}
}

func TestWinnerLabel(t *testing.T) {
	assert.Equal(t, "blue", replay.WinnerLabel(0))
	assert.Equal(t, "red", replay.WinnerLabel(1))
	assert.Equal(t, "unknown", replay.WinnerLabel(-1))
	assert.Equal(t, "unknown", replay.WinnerLabel(2))
}

func TestFailure(t *testing.T) {
	res := replay.Failure(&replay.Error{Kind: replay.KindDecodeException, Message: "analysis failed: x", Detail: "x"})
	assert.Equal(t, models.AnalysisResult{Error: "analysis failed: x", Detail: "x"}, res)

	res = replay.Failure(errors.New("disk full"))
	assert.False(t, res.Success)
	assert.Equal(t, "analysis failed: disk full", res.Error)
}

func TestAnalyzer_ConcurrentUse(t *testing.T) {
	path := testutil.WriteReplay(t, "shared.StormReplay", 4096)
	dec := &staticDecoder{match: testutil.Match(), players: testutil.TenPlayers()}
	a := replay.NewAnalyzer(dec, nil)

	done := make(chan models.AnalysisResult, 8)
	for i := 0; i < cap(done); i++ {
		go func() { done <- a.Analyze(context.Background(), path) }()
	}
	for i := 0; i < cap(done); i++ {
		res := <-done
		assert.True(t, res.Success)
		assert.Equal(t, 10, res.Statistics.PlayerCount)
	}
}

// staticDecoder answers every full decode with the same result.
type staticDecoder struct {
	match   *replay.DecodedMatch
	players []replay.DecodedPlayer
}

func (d *staticDecoder) DecodeHeader(ctx context.Context, path string) (*replay.Header, error) {
	return &replay.Header{Build: 1}, nil
}

func (d *staticDecoder) Decode(ctx context.Context, path string, opts replay.Options) replay.Outcome {
	if len(opts.Sections) > 0 {
		return replay.OkSections(&replay.Sections{})
	}
	players := make([]replay.DecodedPlayer, len(d.players))
	copy(players, d.players)
	return replay.Ok(d.match, players)
}
