package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/stormstats/internal/errors"
	"github.com/vytor/stormstats/internal/jobs"
	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/replay"
	"github.com/vytor/stormstats/internal/repository"
)

// Upload is a replay file already written to the upload directory.
type Upload struct {
	Name string
	Path string
}

// ReplayService handles stored replay business logic
type ReplayService interface {
	Analyze(ctx context.Context, path string) (*models.AnalysisResult, error)
	// Submit stores a pending replay and queues its analysis. The service
	// takes ownership of the upload file.
	Submit(ctx context.Context, upload Upload) (*models.Replay, error)
	Process(ctx context.Context, replayID int64, path string) error
	GetReplay(ctx context.Context, id int64) (*models.Replay, error)
	ListReplays(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, int, error)
	PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error)
}

type replayService struct {
	replayRepo repository.ReplayRepository
	jobQueue   jobs.JobQueue
	analysis   AnalysisService
}

// NewReplayService creates a new ReplayService
func NewReplayService(replayRepo repository.ReplayRepository, jobQueue jobs.JobQueue, analysis AnalysisService) ReplayService {
	return &replayService{
		replayRepo: replayRepo,
		jobQueue:   jobQueue,
		analysis:   analysis,
	}
}

func (s *replayService) Analyze(ctx context.Context, path string) (*models.AnalysisResult, error) {
	return s.analysis.Analyze(ctx, path)
}

func (s *replayService) Process(ctx context.Context, replayID int64, path string) error {
	return s.analysis.ProcessReplay(ctx, replayID, path)
}

func (s *replayService) Submit(ctx context.Context, upload Upload) (*models.Replay, error) {
	log := logger.FromContext(ctx)

	size, err := replay.ValidateFile(upload.Path)
	if err != nil {
		removeUpload(log, upload.Path)
		log.Info("upload rejected: name=%s, err=%v", upload.Name, err)
		return nil, errors.FromReplay(err)
	}

	rp := models.Replay{
		OriginalName: upload.Name,
		FileSize:     size,
		Status:       models.StatusPending,
	}
	id, err := s.replayRepo.Create(ctx, rp)
	if err != nil {
		removeUpload(log, upload.Path)
		log.Error("failed to create replay: %v", err)
		return nil, errors.NewInternalError(err)
	}
	rp.ID = id

	if err := s.jobQueue.EnqueueAnalysis(id, upload.Path); err != nil {
		removeUpload(log, upload.Path)
		log.Warn("failed to queue replay %d: %v", id, err)
		if uerr := s.replayRepo.UpdateStatus(ctx, id, models.StatusFailed, "analysis queue unavailable"); uerr != nil {
			log.Error("failed to mark replay %d failed: %v", id, uerr)
		}
		return nil, errors.NewUnavailableError("analysis queue is full, try again later", err)
	}

	log.Info("replay %d queued for analysis (%d pending)", id, s.jobQueue.Pending())
	return &rp, nil
}

func (s *replayService) GetReplay(ctx context.Context, id int64) (*models.Replay, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting replay: id=%d", id)

	rp, err := s.replayRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("replay", id)
		}
		log.Error("failed to get replay: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return rp, nil
}

func (s *replayService) ListReplays(ctx context.Context, filter models.ReplayFilter) ([]models.Replay, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing replays: status=%s, map=%s", filter.Status, filter.MapName)

	replays, err := s.replayRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list replays: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.replayRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count replays: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return replays, total, nil
}

func (s *replayService) PlayerHistory(ctx context.Context, battleTag string, limit int) ([]models.PlayerRecord, error) {
	log := logger.FromContext(ctx)
	if battleTag == "" {
		return nil, errors.NewValidationError("battleTag", "cannot be empty")
	}

	records, err := s.replayRepo.PlayerHistory(ctx, battleTag, limit)
	if err != nil {
		log.Error("failed to load history for %s: %v", battleTag, err)
		return nil, errors.NewInternalError(err)
	}
	return records, nil
}
