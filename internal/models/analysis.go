package models

import "time"

// AnalysisResult is the terminal output of one replay analysis. On failure
// only Success, Error and Detail are set.
type AnalysisResult struct {
	Success    bool        `json:"success"`
	Metadata   *Metadata   `json:"metadata,omitempty"`
	Teams      *Teams      `json:"teams,omitempty"`
	Statistics *Statistics `json:"statistics,omitempty"`
	Error      string      `json:"error,omitempty"`
	Detail     string      `json:"detail,omitempty"`
}

type Metadata struct {
	MapName      string    `json:"mapName"`
	GameMode     string    `json:"gameMode"`
	GameDuration int       `json:"gameDuration"`
	Date         time.Time `json:"date"`
	Winner       string    `json:"winner"`
	GameVersion  string    `json:"gameVersion"`
	Region       string    `json:"region"`
	FileSize     int64     `json:"fileSize"`
	AnalysisDate time.Time `json:"analysisDate"`
}

type Teams struct {
	Blue []PlayerStat `json:"blue"`
	Red  []PlayerStat `json:"red"`
}

type Statistics struct {
	TotalKills       int     `json:"totalKills"`
	TotalDeaths      int     `json:"totalDeaths"`
	TotalAssists     int     `json:"totalAssists"`
	TotalHeroDamage  int     `json:"totalHeroDamage"`
	TotalSiegeDamage int     `json:"totalSiegeDamage"`
	TotalHealing     int     `json:"totalHealing"`
	AverageLevel     float64 `json:"averageLevel"`
	PlayerCount      int     `json:"playerCount"`
}

// PlayerStat is the canonical, display-ready record of one player.
type PlayerStat struct {
	Name      string `json:"name"`
	Hero      string `json:"hero"`
	BattleTag string `json:"battleTag"`
	Team      int    `json:"team"`
	HeroLevel int    `json:"heroLevel"`
	Stats     Stats  `json:"stats"`
}

type Stats struct {
	SoloKill               int     `json:"SoloKill"`
	Deaths                 int     `json:"Deaths"`
	Assists                int     `json:"Assists"`
	Takedowns              int     `json:"Takedowns"`
	HeroDamage             int     `json:"HeroDamage"`
	SiegeDamage            int     `json:"SiegeDamage"`
	StructureDamage        int     `json:"StructureDamage"`
	MinionDamage           int     `json:"MinionDamage"`
	Healing                int     `json:"Healing"`
	SelfHealing            int     `json:"SelfHealing"`
	DamageTaken            int     `json:"DamageTaken"`
	ExperienceContribution int     `json:"ExperienceContribution"`
	MercCampCaptures       int     `json:"MercCampCaptures"`
	TimeSpentDead          int     `json:"TimeSpentDead"`
	Level                  int     `json:"Level"`
	KDA                    float64 `json:"KDA"`
}

// KillScore is kills plus assists minus deaths.
func (s Stats) KillScore() int {
	return s.SoloKill + s.Assists - s.Deaths
}

// TotalDamage is hero damage plus siege damage.
func (s Stats) TotalDamage() int {
	return s.HeroDamage + s.SiegeDamage
}
