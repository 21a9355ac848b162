package replay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/replay"
)

func player(name string, team int, s models.Stats) models.PlayerStat {
	return models.PlayerStat{Name: name, Team: team, Stats: s}
}

func names(ps []models.PlayerStat) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestRankTeams_Cascade(t *testing.T) {
	players := []models.PlayerStat{
		player("low-xp", 0, models.Stats{ExperienceContribution: 100, SoloKill: 20}),
		player("high-xp", 0, models.Stats{ExperienceContribution: 900}),
		player("tie-low-damage", 0, models.Stats{ExperienceContribution: 500, SoloKill: 3, HeroDamage: 100}),
		player("tie-more-kills", 0, models.Stats{ExperienceContribution: 500, SoloKill: 2, Assists: 5, Deaths: 1}),
		player("tie-high-damage", 0, models.Stats{ExperienceContribution: 500, SoloKill: 3, SiegeDamage: 200}),
		player("red-b", 1, models.Stats{ExperienceContribution: 10}),
		player("red-a", 1, models.Stats{ExperienceContribution: 20}),
	}

	blue, red := replay.RankTeams(players)

	assert.Equal(t, []string{"high-xp", "tie-more-kills", "tie-high-damage", "tie-low-damage", "low-xp"}, names(blue))
	assert.Equal(t, []string{"red-a", "red-b"}, names(red))
}

func TestRankTeams_FullTiesKeepSlotOrder(t *testing.T) {
	same := models.Stats{ExperienceContribution: 1, SoloKill: 1, HeroDamage: 1}
	players := []models.PlayerStat{
		player("first", 1, same),
		player("second", 1, same),
		player("third", 1, same),
	}

	blue, red := replay.RankTeams(players)

	assert.NotNil(t, blue)
	assert.Empty(t, blue)
	assert.Equal(t, []string{"first", "second", "third"}, names(red))
}

func TestRankTeams_Empty(t *testing.T) {
	blue, red := replay.RankTeams(nil)
	assert.NotNil(t, blue)
	assert.NotNil(t, red)
}
