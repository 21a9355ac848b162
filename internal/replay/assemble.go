package replay

import (
	"errors"
	"strconv"

	"github.com/vytor/stormstats/internal/models"
)

const (
	WinnerBlue    = "blue"
	WinnerRed     = "red"
	WinnerUnknown = "unknown"
)

func (a *Analyzer) assemble(dec *decoded, header *Header, size int64, blue, red []models.PlayerStat) *models.AnalysisResult {
	now := a.now().UTC()
	match := dec.Match

	localize := func(team []models.PlayerStat) {
		for i := range team {
			team[i].Hero = a.localizer.Hero(team[i].Hero)
		}
	}
	localize(blue)
	localize(red)

	date := match.Date.UTC()
	if match.Date.IsZero() {
		date = now
	}

	return &models.AnalysisResult{
		Success: true,
		Metadata: &models.Metadata{
			MapName:      a.localizer.Map(match.Map),
			GameMode:     match.Mode,
			GameDuration: match.Length,
			Date:         date,
			Winner:       WinnerLabel(match.Winner),
			GameVersion:  gameVersion(match, header),
			Region:       match.Region,
			FileSize:     size,
			AnalysisDate: now,
		},
		Teams: &models.Teams{
			Blue: blue,
			Red:  red,
		},
		Statistics: Aggregate(blue, red),
	}
}

// WinnerLabel converts a winning team flag to its display label.
func WinnerLabel(team int) string {
	switch team {
	case 0:
		return WinnerBlue
	case 1:
		return WinnerRed
	default:
		return WinnerUnknown
	}
}

func gameVersion(match *DecodedMatch, header *Header) string {
	if match.Version != "" {
		return match.Version
	}
	if header == nil {
		return ""
	}
	if header.Version != "" {
		return header.Version
	}
	if header.Build > 0 {
		return strconv.Itoa(header.Build)
	}
	return ""
}

// Aggregate sums the headline stats across both teams.
func Aggregate(teams ...[]models.PlayerStat) *models.Statistics {
	stats := &models.Statistics{}
	levels := 0
	for _, team := range teams {
		for _, p := range team {
			stats.TotalKills += p.Stats.SoloKill
			stats.TotalDeaths += p.Stats.Deaths
			stats.TotalAssists += p.Stats.Assists
			stats.TotalHeroDamage += p.Stats.HeroDamage
			stats.TotalSiegeDamage += p.Stats.SiegeDamage
			stats.TotalHealing += p.Stats.Healing
			levels += p.Stats.Level
			stats.PlayerCount++
		}
	}
	if stats.PlayerCount > 0 {
		stats.AverageLevel = round2(float64(levels) / float64(stats.PlayerCount))
	}
	return stats
}

// Failure builds the failed result for err. Pipeline errors keep their
// user-facing message and detail; anything else is reported as-is.
func Failure(err error) models.AnalysisResult {
	var e *Error
	if errors.As(err, &e) {
		return models.AnalysisResult{Success: false, Error: e.Message, Detail: e.Detail}
	}
	return models.AnalysisResult{Success: false, Error: "analysis failed: " + err.Error()}
}
