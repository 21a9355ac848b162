package decoder_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vytor/stormstats/internal/decoder"
	"github.com/vytor/stormstats/internal/replay"
)

// The test binary doubles as the decoder: when fakeModeEnv is set it acts
// out the requested mode instead of running tests.
const (
	fakeModeEnv = "STORMSTATS_FAKE_DECODER"
	fakeArgsEnv = "STORMSTATS_FAKE_DECODER_ARGS"
)

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeModeEnv); mode != "" {
		os.Exit(fakeDecoder(mode, os.Args[1:]))
	}
	goleak.VerifyTestMain(m)
}

const headerOut = `{"m_version":{"m_major":2,"m_minor":55,"m_revision":3,"m_build":91418,"m_baseBuild":91418},"m_elapsedGameLoops":27000}`

const decodeOut = `{
  "status": 1,
  "match": {"map": "Cursed Hollow", "mode": "StormLeague", "length": 1234, "winner": 1,
            "version": "2.55.3.91418", "region": "EU", "date": "2024-04-30T21:15:00Z"},
  "players": [
    {"name": "alice", "hero": "Valla", "team": 0, "toonHandle": "2-Hero-1-100", "tag": 1234,
     "heroLevel": 50, "gameStats": {"SoloKill": 7, "Deaths": 2, "HeroDamage": 45000.0}},
    {"name": "bob", "hero": "Muradin", "team": 1, "toonHandle": "2-Hero-1-200", "heroLevel": 12}
  ]
}`

const rawOut = `{
  "details": {
    "m_title": "Towers of Doom",
    "m_timeUTC": 133589709000000000,
    "m_playerList": [
      {"m_name": "alice", "m_toon": {"m_region": 2, "m_programId": "Hero", "m_realm": 1, "m_id": 100},
       "m_hero": "Valla", "m_teamId": 0, "m_result": 2},
      {"m_name": "bob", "m_toon": {"m_region": 2, "m_programId": "Hero", "m_realm": 1, "m_id": 200},
       "m_hero": "Muradin", "m_teamId": 1, "m_result": 1}
    ]
  },
  "initdata": {"m_syncLobbyState": {"m_lobbyState": {"m_slots": [
    {"m_toonHandle": "2-Hero-1-100", "m_teamId": 0, "m_userId": 0},
    {"m_toonHandle": "", "m_teamId": 0, "m_userId": null},
    {"m_toonHandle": "2-Hero-1-200", "m_teamId": 1, "m_userId": 1}
  ]}}},
  "trackerevents": [
    {"_event": "NNet.Replay.Tracker.SStatGameEvent", "m_eventName": "PlayerInit",
     "m_intData": [{"m_key": "PlayerID", "m_value": 1}, {"m_key": "Team", "m_value": 1}],
     "m_stringData": [{"m_key": "Controller", "m_value": "User"}, {"m_key": "ToonHandle", "m_value": "2-Hero-1-100"}]},
    {"_event": "NNet.Replay.Tracker.SStatGameEvent", "m_eventName": "EndOfGameTalentChoices"},
    {"_event": "NNet.Replay.Tracker.SUnitBornEvent"},
    {"_event": "NNet.Replay.Tracker.SScoreResultEvent", "m_instanceList": [
      {"m_name": "SoloKill", "m_values": [[{"m_value": 7, "m_time": 27000}], [], [{"m_value": 3, "m_time": 27000}]]}
    ]}
  ]
}`

func fakeDecoder(mode string, args []string) int {
	if path := os.Getenv(fakeArgsEnv); path != "" {
		_ = os.WriteFile(path, []byte(strings.Join(args, " ")), 0o644)
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: decoder <cmd>")
		return 2
	}

	switch mode {
	case "ok":
		switch args[0] {
		case "header":
			fmt.Print(headerOut)
		case "decode":
			fmt.Print(decodeOut)
		case "raw":
			fmt.Print(rawOut)
		}
		return 0
	case "status":
		fmt.Print(`{"status": -1}`)
		return 0
	case "null":
		fmt.Print("null")
		return 0
	case "no-status":
		if args[0] == "header" {
			fmt.Print(headerOut)
			return 0
		}
		fmt.Print(`{"match": {"map": "Cursed Hollow"}, "players": [{"name": "alice", "team": 0}]}`)
		return 0
	case "ok-no-match":
		fmt.Print(`{"status": 1, "players": []}`)
		return 0
	case "crash":
		fmt.Fprintln(os.Stderr, "Error: unverifiedBuild 91418")
		return 1
	case "garbage":
		fmt.Print("not json")
		return 0
	case "hang":
		time.Sleep(10 * time.Second)
		return 0
	}
	return 3
}

func newProcess(t *testing.T, mode string, opts ...decoder.Option) (*decoder.Process, string) {
	t.Helper()
	t.Setenv(fakeModeEnv, mode)
	argsFile := t.TempDir() + "/args"
	t.Setenv(fakeArgsEnv, argsFile)
	exe, err := os.Executable()
	require.NoError(t, err)
	return decoder.NewProcess(exe, opts...), argsFile
}

func readArgs(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestProcess_DecodeHeader(t *testing.T) {
	p, args := newProcess(t, "ok")

	h, err := p.DecodeHeader(context.Background(), "/replays/a.StormReplay")

	require.NoError(t, err)
	assert.Equal(t, &replay.Header{Build: 91418, Version: "2.55.3.91418", ElapsedGameLoops: 27000}, h)
	assert.Equal(t, "header /replays/a.StormReplay", readArgs(t, args))
}

func TestProcess_DecodeFull(t *testing.T) {
	p, args := newProcess(t, "ok")

	out := p.Decode(context.Background(), "/replays/a.StormReplay", replay.Options{
		Stats:                 true,
		LegacyTalentKeys:      true,
		OverrideVerifiedBuild: true,
		IgnoreErrors:          true,
	})

	require.Equal(t, replay.OutcomeOK, out.Kind, out.Message)
	assert.Equal(t, "decode --stats --legacy-talent-keys --override-verified-build --ignore-errors /replays/a.StormReplay", readArgs(t, args))

	require.NotNil(t, out.Match)
	assert.Equal(t, "Cursed Hollow", out.Match.Map)
	assert.Equal(t, 1, out.Match.Winner)
	assert.Equal(t, time.Date(2024, 4, 30, 21, 15, 0, 0, time.UTC), out.Match.Date)

	require.Len(t, out.Players, 2)
	assert.Equal(t, "alice#1234", out.Players[0].BattleTag)
	assert.Equal(t, int64(45000), out.Players[0].Stats["HeroDamage"])
	assert.Equal(t, "", out.Players[1].BattleTag)
	assert.Empty(t, out.Players[1].Stats)
}

func TestProcess_DecodeStatus(t *testing.T) {
	p, _ := newProcess(t, "status")

	out := p.Decode(context.Background(), "x.StormReplay", replay.Options{Stats: true})

	assert.Equal(t, replay.OutcomeStatus, out.Kind)
	assert.Equal(t, replay.StatusDuplicate, out.Status)
}

func TestProcess_DecodeWithoutMatch(t *testing.T) {
	p, _ := newProcess(t, "ok-no-match")

	out := p.Decode(context.Background(), "x.StormReplay", replay.Options{})

	assert.Equal(t, replay.OutcomeOK, out.Kind)
	assert.Nil(t, out.Match)
}

func TestProcess_DecodeWithoutStatus(t *testing.T) {
	for _, mode := range []string{"no-status", "null"} {
		t.Run(mode, func(t *testing.T) {
			p, _ := newProcess(t, mode)

			out := p.Decode(context.Background(), "x.StormReplay", replay.Options{Stats: true})

			assert.Equal(t, replay.OutcomeOK, out.Kind)
			assert.Nil(t, out.Match)
			assert.Empty(t, out.Players)
		})
	}
}

func TestProcess_MissingStatusIsShapeFailure(t *testing.T) {
	p, _ := newProcess(t, "no-status")
	path := t.TempDir() + "/game.StormReplay"
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	_, err := replay.NewAnalyzer(p, nil).Run(context.Background(), path)

	assert.Equal(t, replay.KindResultShapeInvalid, replay.KindOf(err))
}

func TestProcess_Failures(t *testing.T) {
	tests := []struct {
		mode    string
		opts    []decoder.Option
		message string
	}{
		{mode: "crash", message: "Error: unverifiedBuild 91418"},
		{mode: "garbage", message: "parse decode output"},
		{mode: "hang", opts: []decoder.Option{decoder.WithTimeout(200 * time.Millisecond)}, message: "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			p, _ := newProcess(t, tt.mode, tt.opts...)

			out := p.Decode(context.Background(), "x.StormReplay", replay.Options{})

			assert.Equal(t, replay.OutcomeException, out.Kind)
			assert.Contains(t, out.Message, tt.message)
		})
	}
}

func TestProcess_HeaderFailure(t *testing.T) {
	p, _ := newProcess(t, "crash")

	h, err := p.DecodeHeader(context.Background(), "x.StormReplay")

	assert.Nil(t, h)
	assert.ErrorContains(t, err, "unverifiedBuild")
}

func TestProcess_EmptyHeader(t *testing.T) {
	p, _ := newProcess(t, "null")

	h, err := p.DecodeHeader(context.Background(), "x.StormReplay")

	assert.Nil(t, h)
	assert.ErrorContains(t, err, "no build or version")
}

func TestProcess_EmptyHeaderStopsAnalysis(t *testing.T) {
	p, _ := newProcess(t, "null")
	path := t.TempDir() + "/game.StormReplay"
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	_, err := replay.NewAnalyzer(p, nil).Run(context.Background(), path)

	assert.Equal(t, replay.KindHeaderUnreadable, replay.KindOf(err))
}

func TestProcess_RawSections(t *testing.T) {
	p, args := newProcess(t, "ok")

	out := p.Decode(context.Background(), "x.StormReplay", replay.Options{
		Sections: []replay.Section{replay.SectionDetails, replay.SectionInitData, replay.SectionTrackerEvents},
	})

	require.Equal(t, replay.OutcomeOK, out.Kind, out.Message)
	assert.Equal(t, "raw --section details --section initdata --section trackerevents x.StormReplay", readArgs(t, args))
	require.NotNil(t, out.Sections)

	d := out.Sections.Details
	require.NotNil(t, d)
	assert.Equal(t, "Towers of Doom", d.Title)
	assert.Equal(t, 2024, d.Timestamp.Year())
	require.Len(t, d.Players, 2)
	assert.Equal(t, "2-Hero-1-200", d.Players[1].ToonHandle)
	assert.Equal(t, 1, d.Players[1].Result)

	require.NotNil(t, out.Sections.InitData)
	assert.Equal(t, []replay.LobbySlot{
		{ToonHandle: "2-Hero-1-100", Team: 0, UserID: 0},
		{ToonHandle: "2-Hero-1-200", Team: 1, UserID: 1},
	}, out.Sections.InitData.Slots)

	events := out.Sections.TrackerEvents
	require.Len(t, events, 2)
	assert.Equal(t, replay.TrackerPlayerInit, events[0].Kind)
	assert.Equal(t, []int64{1, 1}, events[0].IntFields)
	assert.Equal(t, []string{"User", "2-Hero-1-100"}, events[0].StringFields)

	data := replay.ExtractTracker(events)
	assert.Equal(t, map[string]int{"2-Hero-1-100": 1}, data.PlayerIDs)
	assert.Equal(t, map[int]map[string]int64{1: {"SoloKill": 7}, 3: {"SoloKill": 3}}, data.Scores)
}

func TestProcess_MissingBinary(t *testing.T) {
	p := decoder.NewProcess("/nonexistent/stormdecode")

	assert.Error(t, p.Check())
	out := p.Decode(context.Background(), "x.StormReplay", replay.Options{})
	assert.Equal(t, replay.OutcomeException, out.Kind)
}
