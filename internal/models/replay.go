package models

import "time"

// Replay analysis statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Replay is a stored upload and, once analyzed, its result.
type Replay struct {
	ID           int64           `json:"id"`
	OriginalName string          `json:"original_name"`
	FileSize     int64           `json:"file_size"`
	Status       string          `json:"status"`
	MapName      string          `json:"map_name"`
	GameMode     string          `json:"game_mode"`
	GameDuration int             `json:"game_duration"`
	PlayedAt     *time.Time      `json:"played_at,omitempty"`
	Winner       string          `json:"winner"`
	GameVersion  string          `json:"game_version"`
	Region       string          `json:"region"`
	Error        string          `json:"error,omitempty"`
	Result       *AnalysisResult `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	AnalyzedAt   *time.Time      `json:"analyzed_at,omitempty"`
}

type ReplayFilter struct {
	Status   string
	MapName  string
	GameMode string
	Limit    int
	Offset   int
	OrderDir string
}

// PlayerRecord is one stored player line joined with its replay, used for
// per-player history.
type PlayerRecord struct {
	ReplayID  int64     `json:"replay_id"`
	MapName   string    `json:"map_name"`
	PlayedAt  time.Time `json:"played_at"`
	Won       bool      `json:"won"`
	Name      string    `json:"name"`
	BattleTag string    `json:"battle_tag"`
	Hero      string    `json:"hero"`
	Team      int       `json:"team"`
	Rank      int       `json:"rank"`
	Stats     Stats     `json:"stats"`
}
