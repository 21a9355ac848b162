package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var replayColumns = []string{
	"id", "original_name", "file_size", "status", "map_name", "game_mode", "game_duration",
	"played_at", "winner", "game_version", "region", "error", "result_json", "created_at", "analyzed_at",
}

// ReplayRepository stores replays in Postgres.
type ReplayRepository struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL, verifies the connection and ensures the
// schema exists.
func Open(ctx context.Context, databaseURL string) (*ReplayRepository, error) {
	log := logger.Default().WithPrefix("postgres")

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info("postgres ready")
	return &ReplayRepository{pool: pool}, nil
}

// Close closes the connection pool.
func (r *ReplayRepository) Close() {
	r.pool.Close()
}

func scanReplay(row pgx.Row) (*models.Replay, error) {
	var (
		rp         models.Replay
		resultJSON []byte
	)
	if err := row.Scan(&rp.ID, &rp.OriginalName, &rp.FileSize, &rp.Status, &rp.MapName, &rp.GameMode,
		&rp.GameDuration, &rp.PlayedAt, &rp.Winner, &rp.GameVersion, &rp.Region, &rp.Error, &resultJSON,
		&rp.CreatedAt, &rp.AnalyzedAt); err != nil {
		return nil, err
	}
	if len(resultJSON) > 0 {
		var res models.AnalysisResult
		if err := json.Unmarshal(resultJSON, &res); err != nil {
			return nil, fmt.Errorf("decode stored result for replay %d: %w", rp.ID, err)
		}
		rp.Result = &res
	}
	return &rp, nil
}

func (r *ReplayRepository) Create(ctx context.Context, rp models.Replay) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")

	status := rp.Status
	if status == "" {
		status = models.StatusPending
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO replays (original_name, file_size, status)
VALUES ($1, $2, $3)
RETURNING id
`, rp.OriginalName, rp.FileSize, status).Scan(&id)
	if err != nil {
		log.Error("failed to create replay: %v", err)
		return 0, err
	}
	log.Debug("replay created: id=%d", id)
	return id, nil
}

func (r *ReplayRepository) Get(ctx context.Context, id int64) (*models.Replay, error) {
	query, args, err := sqlBuilder.Select(replayColumns...).From("replays").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	rp, err := scanReplay(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return rp, err
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

func (r *ReplayRepository) List(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, error) {
	filter = repository.NormalizeFilter(filter)
	query, args, err := applyFilter(sqlBuilder.Select(replayColumns...).From("replays"), filter).
		OrderBy("created_at "+filter.OrderDir, "id "+filter.OrderDir).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replays []models.Replay
	for rows.Next() {
		rp, err := scanReplay(rows)
		if err != nil {
			return nil, err
		}
		replays = append(replays, *rp)
	}
	return replays, rows.Err()
}

func (r *ReplayRepository) Count(ctx context.Context, filter models.ReplayFilter) (int, error) {
	query, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("replays"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *ReplayRepository) UpdateStatus(ctx context.Context, id int64, status string, errMsg string) error {
	update := sqlBuilder.Update("replays").
		Set("status", status).
		Set("error", errMsg).
		Where(squirrel.Eq{"id": id})
	if status == models.StatusFailed || status == models.StatusCompleted {
		update = update.Set("analyzed_at", time.Now().UTC())
	}
	query, args, err := update.ToSql()
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ReplayRepository) SaveResult(ctx context.Context, id int64, result models.AnalysisResult) error {
	log := logger.FromContext(ctx).WithPrefix("replay_repo")
	if !result.Success || result.Metadata == nil {
		return fmt.Errorf("save result for replay %d: result is not a success", id)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	md := result.Metadata

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE replays SET
    status = $1, map_name = $2, game_mode = $3, game_duration = $4, played_at = $5, winner = $6,
    game_version = $7, region = $8, error = '', result_json = $9, analyzed_at = $10
WHERE id = $11
`, models.StatusCompleted, md.MapName, md.GameMode, md.GameDuration, md.Date.UTC(), md.Winner,
			md.GameVersion, md.Region, payload, md.AnalysisDate.UTC(), id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM replay_players WHERE replay_id = $1`, id)
		for _, row := range repository.PlayerRows(result) {
			p, s := row.Player, row.Player.Stats
			batch.Queue(`
INSERT INTO replay_players (
    replay_id, team, rank, name, battle_tag, hero, hero_level,
    solo_kill, deaths, assists, takedowns, hero_damage, siege_damage, structure_damage,
    minion_damage, healing, self_healing, damage_taken, experience_contribution,
    merc_camp_captures, time_spent_dead, level, kda
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
`, id, p.Team, row.Rank, p.Name, p.BattleTag, p.Hero, p.HeroLevel,
				s.SoloKill, s.Deaths, s.Assists, s.Takedowns, s.HeroDamage, s.SiegeDamage, s.StructureDamage,
				s.MinionDamage, s.Healing, s.SelfHealing, s.DamageTaken, s.ExperienceContribution,
				s.MercCampCaptures, s.TimeSpentDead, s.Level, s.KDA)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			log.Error("failed to store players for replay %d: %v", id, err)
			return err
		}
		return nil
	})
}

func (r *ReplayRepository) PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query, args, err := sqlBuilder.Select(
		"r.id", "r.map_name", "r.played_at", "r.winner",
		"p.name", "p.battle_tag", "p.hero", "p.team", "p.rank",
		"p.solo_kill", "p.deaths", "p.assists", "p.takedowns", "p.hero_damage", "p.siege_damage",
		"p.structure_damage", "p.minion_damage", "p.healing", "p.self_healing", "p.damage_taken",
		"p.experience_contribution", "p.merc_camp_captures", "p.time_spent_dead", "p.level", "p.kda",
	).
		From("replay_players p").
		Join("replays r ON r.id = p.replay_id").
		Where(squirrel.Eq{"p.battle_tag": battleTag, "r.status": models.StatusCompleted}).
		OrderBy("r.played_at DESC NULLS LAST", "r.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PlayerRecord
	for rows.Next() {
		var (
			rec      models.PlayerRecord
			playedAt *time.Time
			winner   string
			s        = &rec.Stats
		)
		if err := rows.Scan(&rec.ReplayID, &rec.MapName, &playedAt, &winner,
			&rec.Name, &rec.BattleTag, &rec.Hero, &rec.Team, &rec.Rank,
			&s.SoloKill, &s.Deaths, &s.Assists, &s.Takedowns, &s.HeroDamage, &s.SiegeDamage,
			&s.StructureDamage, &s.MinionDamage, &s.Healing, &s.SelfHealing, &s.DamageTaken,
			&s.ExperienceContribution, &s.MercCampCaptures, &s.TimeSpentDead, &s.Level, &s.KDA); err != nil {
			return nil, err
		}
		if playedAt != nil {
			rec.PlayedAt = playedAt.UTC()
		}
		rec.Won = repository.Won(winner, rec.Team)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *ReplayRepository) FailInterrupted(ctx context.Context, reason string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE replays SET status = $1, error = $2, analyzed_at = now()
WHERE status IN ($3, $4)
`, models.StatusFailed, reason, models.StatusPending, models.StatusProcessing)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ReplayRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var _ repository.ReplayRepository = (*ReplayRepository)(nil)
