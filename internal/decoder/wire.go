package decoder

import (
	"fmt"
	"strings"
	"time"

	"github.com/vytor/stormstats/internal/replay"
)

// Output shapes of the decoder binary. Raw sections use heroprotocol field
// names; nothing here is exported past this package.

type versionJSON struct {
	Major     int `json:"m_major"`
	Minor     int `json:"m_minor"`
	Revision  int `json:"m_revision"`
	Build     int `json:"m_build"`
	BaseBuild int `json:"m_baseBuild"`
}

type headerJSON struct {
	Version          versionJSON `json:"m_version"`
	ElapsedGameLoops int         `json:"m_elapsedGameLoops"`
	DataBuildNum     int         `json:"m_dataBuildNum"`
}

func (h headerJSON) toHeader() *replay.Header {
	build := h.Version.Build
	if build == 0 {
		build = h.DataBuildNum
	}
	var version string
	if h.Version.Major != 0 || build != 0 {
		version = fmt.Sprintf("%d.%d.%d.%d", h.Version.Major, h.Version.Minor, h.Version.Revision, build)
	}
	return &replay.Header{
		Build:            build,
		Version:          version,
		ElapsedGameLoops: h.ElapsedGameLoops,
	}
}

type decodeJSON struct {
	Status  *int         `json:"status"`
	Match   *matchJSON   `json:"match"`
	Players []playerJSON `json:"players"`
}

type matchJSON struct {
	Map     string `json:"map"`
	Mode    string `json:"mode"`
	Length  int    `json:"length"`
	Winner  *int   `json:"winner"`
	Version string `json:"version"`
	Region  string `json:"region"`
	Date    string `json:"date"`
}

func (m *matchJSON) toMatch() *replay.DecodedMatch {
	winner := -1
	if m.Winner != nil {
		winner = *m.Winner
	}
	var date time.Time
	if m.Date != "" {
		if t, err := time.Parse(time.RFC3339, m.Date); err == nil {
			date = t.UTC()
		}
	}
	return &replay.DecodedMatch{
		Map:     m.Map,
		Mode:    m.Mode,
		Length:  m.Length,
		Winner:  winner,
		Version: m.Version,
		Region:  m.Region,
		Date:    date,
	}
}

type playerJSON struct {
	Name       string             `json:"name"`
	Hero       string             `json:"hero"`
	Team       int                `json:"team"`
	ToonHandle string             `json:"toonHandle"`
	Tag        int                `json:"tag"`
	HeroLevel  int                `json:"heroLevel"`
	GameStats  map[string]float64 `json:"gameStats"`
}

func (d decodeJSON) toPlayers() []replay.DecodedPlayer {
	players := make([]replay.DecodedPlayer, 0, len(d.Players))
	for _, p := range d.Players {
		var battleTag string
		if p.Name != "" && p.Tag != 0 {
			battleTag = fmt.Sprintf("%s#%d", p.Name, p.Tag)
		}
		stats := make(map[string]int64, len(p.GameStats))
		for k, v := range p.GameStats {
			stats[k] = int64(v)
		}
		players = append(players, replay.DecodedPlayer{
			Name:       p.Name,
			Hero:       p.Hero,
			Team:       p.Team,
			ToonHandle: p.ToonHandle,
			BattleTag:  battleTag,
			HeroLevel:  p.HeroLevel,
			Stats:      stats,
		})
	}
	return players
}

type rawJSON struct {
	Details       *detailsJSON       `json:"details"`
	InitData      *initDataJSON      `json:"initdata"`
	TrackerEvents []trackerEventJSON `json:"trackerevents"`
}

func (r rawJSON) toSections() *replay.Sections {
	s := &replay.Sections{}
	if r.Details != nil {
		s.Details = r.Details.toDetails()
	}
	if r.InitData != nil {
		s.InitData = r.InitData.toInitData()
	}
	for _, ev := range r.TrackerEvents {
		if te, ok := ev.toEvent(); ok {
			s.TrackerEvents = append(s.TrackerEvents, te)
		}
	}
	return s
}

type toonJSON struct {
	Region    int    `json:"m_region"`
	ProgramID string `json:"m_programId"`
	Realm     int    `json:"m_realm"`
	ID        int64  `json:"m_id"`
}

// handle renders the toon as region-program-realm-id, the form used by
// lobby slots and tracker events.
func (t toonJSON) handle() string {
	if t.ID == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%s-%d-%d", t.Region, t.ProgramID, t.Realm, t.ID)
}

type detailsJSON struct {
	Title      string              `json:"m_title"`
	TimeUTC    int64               `json:"m_timeUTC"`
	PlayerList []detailsPlayerJSON `json:"m_playerList"`
}

type detailsPlayerJSON struct {
	Name   string   `json:"m_name"`
	Toon   toonJSON `json:"m_toon"`
	Hero   string   `json:"m_hero"`
	TeamID int      `json:"m_teamId"`
	Result int      `json:"m_result"`
}

// fileTimeEpoch is 1970-01-01 expressed in 100ns ticks since 1601-01-01.
const fileTimeEpoch = 116444736000000000

func fileTimeToTime(ft int64) time.Time {
	if ft <= fileTimeEpoch {
		return time.Time{}
	}
	ticks := ft - fileTimeEpoch
	return time.Unix(ticks/1e7, (ticks%1e7)*100).UTC()
}

func (d *detailsJSON) toDetails() *replay.Details {
	out := &replay.Details{
		Title:     strings.TrimSpace(d.Title),
		Timestamp: fileTimeToTime(d.TimeUTC),
	}
	for _, p := range d.PlayerList {
		out.Players = append(out.Players, replay.DetailsPlayer{
			Name:       p.Name,
			ToonHandle: p.Toon.handle(),
			Hero:       p.Hero,
			Team:       p.TeamID,
			Result:     p.Result,
		})
	}
	return out
}

type initDataJSON struct {
	SyncLobbyState struct {
		LobbyState struct {
			Slots []slotJSON `json:"m_slots"`
		} `json:"m_lobbyState"`
	} `json:"m_syncLobbyState"`
}

type slotJSON struct {
	ToonHandle string `json:"m_toonHandle"`
	TeamID     int    `json:"m_teamId"`
	UserID     *int   `json:"m_userId"`
}

func (d *initDataJSON) toInitData() *replay.InitData {
	out := &replay.InitData{}
	for _, s := range d.SyncLobbyState.LobbyState.Slots {
		// observers and empty slots have no user
		if s.UserID == nil || s.ToonHandle == "" {
			continue
		}
		out.Slots = append(out.Slots, replay.LobbySlot{
			ToonHandle: s.ToonHandle,
			Team:       s.TeamID,
			UserID:     *s.UserID,
		})
	}
	return out
}

const (
	statGameEvent    = "NNet.Replay.Tracker.SStatGameEvent"
	scoreResultEvent = "NNet.Replay.Tracker.SScoreResultEvent"
)

type trackerEventJSON struct {
	Event        string          `json:"_event"`
	EventName    string          `json:"m_eventName"`
	IntData      []keyIntJSON    `json:"m_intData"`
	StringData   []keyStringJSON `json:"m_stringData"`
	InstanceList []instanceJSON  `json:"m_instanceList"`
}

type keyIntJSON struct {
	Key   string `json:"m_key"`
	Value int64  `json:"m_value"`
}

type keyStringJSON struct {
	Key   string `json:"m_key"`
	Value string `json:"m_value"`
}

type instanceJSON struct {
	Name   string             `json:"m_name"`
	Values [][]scoreValueJSON `json:"m_values"`
}

type scoreValueJSON struct {
	Value int64 `json:"m_value"`
	Time  int64 `json:"m_time"`
}

func (e trackerEventJSON) toEvent() (replay.TrackerEvent, bool) {
	switch {
	case e.Event == statGameEvent && e.EventName == string(replay.TrackerPlayerInit):
		ev := replay.TrackerEvent{Kind: replay.TrackerPlayerInit}
		for _, d := range e.IntData {
			ev.IntFields = append(ev.IntFields, d.Value)
		}
		for _, d := range e.StringData {
			ev.StringFields = append(ev.StringFields, d.Value)
		}
		return ev, true

	case e.Event == scoreResultEvent:
		ev := replay.TrackerEvent{Kind: replay.TrackerScore}
		for _, inst := range e.InstanceList {
			entry := replay.ScoreEntry{Name: inst.Name, Values: make([]*int64, len(inst.Values))}
			for i, vals := range inst.Values {
				if len(vals) == 0 {
					continue
				}
				v := vals[0].Value
				entry.Values[i] = &v
			}
			ev.Scores = append(ev.Scores, entry)
		}
		return ev, true
	}
	return replay.TrackerEvent{}, false
}
