package replay

import (
	"sort"

	"github.com/vytor/stormstats/internal/models"
)

// RankTeams splits players into blue (team 0) and red (team 1) and orders
// each side for display: experience contribution, then kill score, then
// total damage, all descending. Full ties keep slot order. This is a display
// heuristic; replays carry no authoritative rank.
func RankTeams(players []models.PlayerStat) (blue, red []models.PlayerStat) {
	blue = make([]models.PlayerStat, 0, len(players)/2)
	red = make([]models.PlayerStat, 0, len(players)/2)
	for _, p := range players {
		// team flags are validated to 0 or 1 before reconciliation
		if p.Team == 1 {
			red = append(red, p)
		} else {
			blue = append(blue, p)
		}
	}
	sortTeam(blue)
	sortTeam(red)
	return blue, red
}

func sortTeam(team []models.PlayerStat) {
	sort.SliceStable(team, func(i, j int) bool {
		return rankBefore(team[i].Stats, team[j].Stats)
	})
}

func rankBefore(a, b models.Stats) bool {
	if a.ExperienceContribution != b.ExperienceContribution {
		return a.ExperienceContribution > b.ExperienceContribution
	}
	if a.KillScore() != b.KillScore() {
		return a.KillScore() > b.KillScore()
	}
	return a.TotalDamage() > b.TotalDamage()
}
