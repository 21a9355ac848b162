package testutil

import (
	"fmt"
	"time"

	"github.com/vytor/stormstats/internal/models"
)

// SampleResult builds a successful 5v5 analysis result. Player names are
// blue1..blue5 and red1..red5 with battle tags name#1000.
func SampleResult(mapName string, date time.Time) models.AnalysisResult {
	team := func(prefix string, flag int) []models.PlayerStat {
		out := make([]models.PlayerStat, 5)
		for i := range out {
			name := fmt.Sprintf("%s%d", prefix, i+1)
			out[i] = models.PlayerStat{
				Name:      name,
				Hero:      "Valla",
				BattleTag: name + "#1000",
				Team:      flag,
				HeroLevel: 20,
				Stats: models.Stats{
					SoloKill:               5 - i,
					Deaths:                 2,
					Assists:                8,
					HeroDamage:             30000 - 1000*i,
					ExperienceContribution: 10000 - 500*i,
					Level:                  20,
					KDA:                    6.5 - float64(i)/2,
				},
			}
		}
		return out
	}

	blue, red := team("blue", 0), team("red", 1)
	return models.AnalysisResult{
		Success: true,
		Metadata: &models.Metadata{
			MapName:      mapName,
			GameMode:     "StormLeague",
			GameDuration: 1200,
			Date:         date,
			Winner:       "blue",
			GameVersion:  "2.55.3.91418",
			Region:       "EU",
			FileSize:     2 << 20,
			AnalysisDate: date.Add(time.Hour),
		},
		Teams: &models.Teams{Blue: blue, Red: red},
		Statistics: &models.Statistics{
			TotalKills:      30,
			TotalDeaths:     20,
			TotalAssists:    80,
			TotalHeroDamage: 280000,
			AverageLevel:    20,
			PlayerCount:     10,
		},
	}
}
