package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var replayColumns = []string{
	"id", "original_name", "file_size", "status", "map_name", "game_mode", "game_duration",
	"played_at", "winner", "game_version", "region", "error", "result_json", "created_at", "analyzed_at",
}

type replayRepository struct {
	db *sql.DB
}

// NewReplayRepository creates a new ReplayRepository implementation
func NewReplayRepository(db *sql.DB) repository.ReplayRepository {
	return &replayRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReplay(row scanner) (*models.Replay, error) {
	var (
		rp         models.Replay
		playedAt   sql.NullTime
		analyzedAt sql.NullTime
		resultJSON sql.NullString
	)
	if err := row.Scan(&rp.ID, &rp.OriginalName, &rp.FileSize, &rp.Status, &rp.MapName, &rp.GameMode,
		&rp.GameDuration, &playedAt, &rp.Winner, &rp.GameVersion, &rp.Region, &rp.Error, &resultJSON,
		&rp.CreatedAt, &analyzedAt); err != nil {
		return nil, err
	}
	if playedAt.Valid {
		t := playedAt.Time.UTC()
		rp.PlayedAt = &t
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time.UTC()
		rp.AnalyzedAt = &t
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var res models.AnalysisResult
		if err := json.Unmarshal([]byte(resultJSON.String), &res); err != nil {
			return nil, fmt.Errorf("decode stored result for replay %d: %w", rp.ID, err)
		}
		rp.Result = &res
	}
	return &rp, nil
}

func (r *replayRepository) Create(ctx context.Context, rp models.Replay) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	log.Debug("creating replay: name=%s, size=%d", rp.OriginalName, rp.FileSize)

	status := rp.Status
	if status == "" {
		status = models.StatusPending
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO replays (original_name, file_size, status, created_at)
VALUES (?, ?, ?, ?)
`, rp.OriginalName, rp.FileSize, status, time.Now().UTC())
	if err != nil {
		log.Error("failed to create replay: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Debug("replay created: id=%d", id)
	return id, nil
}

func (r *replayRepository) Get(ctx context.Context, id int64) (*models.Replay, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	log.Debug("getting replay: id=%d", id)

	query, args, err := sqlBuilder.Select(replayColumns...).From("replays").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	rp, err := scanReplay(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("replay not found: id=%d", id)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get replay: %v", err)
		return nil, err
	}
	return rp, nil
}

func applyFilter(q squirrel.SelectBuilder, f models.ReplayFilter) squirrel.SelectBuilder {
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.MapName != "" {
		q = q.Where(squirrel.Eq{"map_name": f.MapName})
	}
	if f.GameMode != "" {
		q = q.Where(squirrel.Eq{"game_mode": f.GameMode})
	}
	return q
}

func (r *replayRepository) List(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	filter = repository.NormalizeFilter(filter)
	log.Debug("listing replays: status=%s, map=%s, mode=%s, limit=%d, offset=%d",
		filter.Status, filter.MapName, filter.GameMode, filter.Limit, filter.Offset)

	query := applyFilter(sqlBuilder.Select(replayColumns...).From("replays"), filter).
		OrderBy("created_at "+filter.OrderDir, "id "+filter.OrderDir).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list replays: %v", err)
		return nil, err
	}
	defer rows.Close()

	var replays []models.Replay
	for rows.Next() {
		rp, err := scanReplay(rows)
		if err != nil {
			log.Error("failed to scan replay row: %v", err)
			return nil, err
		}
		replays = append(replays, *rp)
	}
	log.Debug("found %d replays", len(replays))
	return replays, rows.Err()
}

func (r *replayRepository) Count(ctx context.Context, filter models.ReplayFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")

	sqlStr, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("replays"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count replays: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *replayRepository) UpdateStatus(ctx context.Context, id int64, status string, errMsg string) error {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	log.Debug("updating replay status: id=%d, status=%s", id, status)

	update := sqlBuilder.Update("replays").
		Set("status", status).
		Set("error", errMsg).
		Where(squirrel.Eq{"id": id})
	if status == models.StatusFailed || status == models.StatusCompleted {
		update = update.Set("analyzed_at", time.Now().UTC())
	}
	sqlStr, args, err := update.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to update replay status: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *replayRepository) SaveResult(ctx context.Context, id int64, result models.AnalysisResult) error {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	if !result.Success || result.Metadata == nil {
		return fmt.Errorf("save result for replay %d: result is not a success", id)
	}
	log.Debug("saving result: id=%d, map=%s", id, result.Metadata.MapName)

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	md := result.Metadata

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE replays SET
    status = ?, map_name = ?, game_mode = ?, game_duration = ?, played_at = ?, winner = ?,
    game_version = ?, region = ?, error = '', result_json = ?, analyzed_at = ?
WHERE id = ?
`, models.StatusCompleted, md.MapName, md.GameMode, md.GameDuration, md.Date.UTC(), md.Winner,
			md.GameVersion, md.Region, string(payload), md.AnalysisDate.UTC(), id)
		if err != nil {
			log.Error("failed to update replay: %v", err)
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return repository.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM replay_players WHERE replay_id = ?`, id); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO replay_players (
    replay_id, team, rank, name, battle_tag, hero, hero_level,
    solo_kill, deaths, assists, takedowns, hero_damage, siege_damage, structure_damage,
    minion_damage, healing, self_healing, damage_taken, experience_contribution,
    merc_camp_captures, time_spent_dead, level, kda
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range repository.PlayerRows(result) {
			p, s := row.Player, row.Player.Stats
			if _, err := stmt.ExecContext(ctx, id, p.Team, row.Rank, p.Name, p.BattleTag, p.Hero, p.HeroLevel,
				s.SoloKill, s.Deaths, s.Assists, s.Takedowns, s.HeroDamage, s.SiegeDamage, s.StructureDamage,
				s.MinionDamage, s.Healing, s.SelfHealing, s.DamageTaken, s.ExperienceContribution,
				s.MercCampCaptures, s.TimeSpentDead, s.Level, s.KDA); err != nil {
				log.Error("failed to insert player %s: %v", p.Name, err)
				return err
			}
		}
		return nil
	})
}

func (r *replayRepository) PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	log.Debug("player history: battle_tag=%s, limit=%d", battleTag, limit)

	sqlStr, args, err := sqlBuilder.Select(
		"r.id", "r.map_name", "r.played_at", "r.winner",
		"p.name", "p.battle_tag", "p.hero", "p.team", "p.rank",
		"p.solo_kill", "p.deaths", "p.assists", "p.takedowns", "p.hero_damage", "p.siege_damage",
		"p.structure_damage", "p.minion_damage", "p.healing", "p.self_healing", "p.damage_taken",
		"p.experience_contribution", "p.merc_camp_captures", "p.time_spent_dead", "p.level", "p.kda",
	).
		From("replay_players p").
		Join("replays r ON r.id = p.replay_id").
		Where(squirrel.Eq{"p.battle_tag": battleTag, "r.status": models.StatusCompleted}).
		OrderBy("r.played_at DESC", "r.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query player history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.PlayerRecord
	for rows.Next() {
		var (
			rec      models.PlayerRecord
			playedAt sql.NullTime
			winner   string
			s        = &rec.Stats
		)
		if err := rows.Scan(&rec.ReplayID, &rec.MapName, &playedAt, &winner,
			&rec.Name, &rec.BattleTag, &rec.Hero, &rec.Team, &rec.Rank,
			&s.SoloKill, &s.Deaths, &s.Assists, &s.Takedowns, &s.HeroDamage, &s.SiegeDamage,
			&s.StructureDamage, &s.MinionDamage, &s.Healing, &s.SelfHealing, &s.DamageTaken,
			&s.ExperienceContribution, &s.MercCampCaptures, &s.TimeSpentDead, &s.Level, &s.KDA); err != nil {
			log.Error("failed to scan player row: %v", err)
			return nil, err
		}
		if playedAt.Valid {
			rec.PlayedAt = playedAt.Time.UTC()
		}
		rec.Won = repository.Won(winner, rec.Team)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *replayRepository) FailInterrupted(ctx context.Context, reason string) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")

	res, err := r.db.ExecContext(ctx, `
UPDATE replays SET status = ?, error = ?, analyzed_at = ?
WHERE status IN (?, ?)
`, models.StatusFailed, reason, time.Now().UTC(), models.StatusPending, models.StatusProcessing)
	if err != nil {
		log.Error("failed to mark interrupted replays: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if n > 0 {
		log.Info("marked %d interrupted replay(s) as failed", n)
	}
	return n, err
}

func (r *replayRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
