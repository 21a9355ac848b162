package repository

import "github.com/vytor/stormstats/internal/models"

// PlayerRow is one player line as stored, with its display rank within the
// team (1-based).
type PlayerRow struct {
	Rank   int
	Player models.PlayerStat
}

// PlayerRows flattens a result's teams in display order, blue first.
func PlayerRows(result models.AnalysisResult) []PlayerRow {
	if result.Teams == nil {
		return nil
	}
	rows := make([]PlayerRow, 0, len(result.Teams.Blue)+len(result.Teams.Red))
	for i, p := range result.Teams.Blue {
		rows = append(rows, PlayerRow{Rank: i + 1, Player: p})
	}
	for i, p := range result.Teams.Red {
		rows = append(rows, PlayerRow{Rank: i + 1, Player: p})
	}
	return rows
}

// Won reports whether a player on team won a match with the given winner label.
func Won(winner string, team int) bool {
	return (winner == "blue" && team == 0) || (winner == "red" && team == 1)
}

// NormalizeFilter applies paging defaults and bounds.
func NormalizeFilter(f models.ReplayFilter) models.ReplayFilter {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.OrderDir != "ASC" {
		f.OrderDir = "DESC"
	}
	return f
}
