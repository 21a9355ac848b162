package replay

import (
	"context"
	"math"

	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
)

// DefaultLevel is used when neither source reports a team level.
const DefaultLevel = 20

type statField struct {
	name string
	def  int
	set  func(*models.Stats, int)
}

// statFields lists every canonical stat in output order.
var statFields = []statField{
	{"SoloKill", 0, func(s *models.Stats, v int) { s.SoloKill = v }},
	{"Deaths", 0, func(s *models.Stats, v int) { s.Deaths = v }},
	{"Assists", 0, func(s *models.Stats, v int) { s.Assists = v }},
	{"Takedowns", 0, func(s *models.Stats, v int) { s.Takedowns = v }},
	{"HeroDamage", 0, func(s *models.Stats, v int) { s.HeroDamage = v }},
	{"SiegeDamage", 0, func(s *models.Stats, v int) { s.SiegeDamage = v }},
	{"StructureDamage", 0, func(s *models.Stats, v int) { s.StructureDamage = v }},
	{"MinionDamage", 0, func(s *models.Stats, v int) { s.MinionDamage = v }},
	{"Healing", 0, func(s *models.Stats, v int) { s.Healing = v }},
	{"SelfHealing", 0, func(s *models.Stats, v int) { s.SelfHealing = v }},
	{"DamageTaken", 0, func(s *models.Stats, v int) { s.DamageTaken = v }},
	{"ExperienceContribution", 0, func(s *models.Stats, v int) { s.ExperienceContribution = v }},
	{"MercCampCaptures", 0, func(s *models.Stats, v int) { s.MercCampCaptures = v }},
	{"TimeSpentDead", 0, func(s *models.Stats, v int) { s.TimeSpentDead = v }},
	{"Level", DefaultLevel, func(s *models.Stats, v int) { s.Level = v }},
}

// Reconcile merges decoder-native stats with tracker scores into one
// canonical record per player, preserving player order. Hero names are left
// untranslated. It never fails; missing data degrades to defaults.
func Reconcile(ctx context.Context, players []DecodedPlayer, tracker TrackerData) []models.PlayerStat {
	log := logger.FromContext(ctx)

	out := make([]models.PlayerStat, 0, len(players))
	positional := 0
	for i, p := range players {
		id, correlated := resolveTrackerID(p, i, tracker)
		if !correlated {
			positional++
		}
		score := tracker.Scores[id]

		var stats models.Stats
		for _, f := range statFields {
			f.set(&stats, pickStat(f, score, p.Stats))
		}
		stats.KDA = KDA(stats.SoloKill, stats.Deaths, stats.Assists)

		out = append(out, models.PlayerStat{
			Name:      p.Name,
			Hero:      p.Hero,
			BattleTag: p.BattleTag,
			Team:      p.Team,
			HeroLevel: p.HeroLevel,
			Stats:     stats,
		})
	}

	switch {
	case tracker.Empty():
		log.Debug("no tracker data, %d player(s) use decoder stats only", len(players))
	case positional > 0:
		// Slot order is assumed to match tracker ids here; a reordered
		// PlayerInit stream would silently attribute stats to the wrong player.
		log.Warn("no tracker correlation for %d player(s), using slot position", positional)
	}
	return out
}

// resolveTrackerID returns the player's tracker id and whether it came from a
// PlayerInit correlation rather than the slot position.
func resolveTrackerID(p DecodedPlayer, index int, tracker TrackerData) (int, bool) {
	if id, ok := tracker.PlayerIDs[p.ToonHandle]; ok && p.ToonHandle != "" {
		if len(tracker.Scores[id]) > 0 {
			return id, true
		}
	}
	return index + 1, false
}

func pickStat(f statField, score map[string]int64, native map[string]int64) int {
	if v, ok := score[f.name]; ok {
		return int(v)
	}
	if v, ok := native[f.name]; ok {
		return int(v)
	}
	return f.def
}

// KDA is (kills + assists) / deaths rounded to two decimals, or
// kills + assists when there are no deaths.
func KDA(kills, deaths, assists int) float64 {
	if deaths > 0 {
		return round2(float64(kills+assists) / float64(deaths))
	}
	return float64(kills + assists)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
