package repository

import (
	"context"
	"errors"

	"github.com/vytor/stormstats/internal/models"
)

// ErrNotFound is returned when a replay does not exist.
var ErrNotFound = errors.New("not found")

// ReplayRepository handles replay data access
type ReplayRepository interface {
	Create(ctx context.Context, replay models.Replay) (int64, error)
	Get(ctx context.Context, id int64) (*models.Replay, error)
	List(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, error)
	Count(ctx context.Context, filter models.ReplayFilter) (int, error)
	UpdateStatus(ctx context.Context, id int64, status string, errMsg string) error
	SaveResult(ctx context.Context, id int64, result models.AnalysisResult) error
	PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error)
	// FailInterrupted marks replays left pending or processing by a previous
	// run as failed, returning how many were changed.
	FailInterrupted(ctx context.Context, reason string) (int64, error)
	Ping(ctx context.Context) error
}
