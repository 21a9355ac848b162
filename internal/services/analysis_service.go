package services

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/vytor/stormstats/internal/errors"
	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
	"github.com/vytor/stormstats/internal/replay"
	"github.com/vytor/stormstats/internal/repository"
)

// Analyzer runs the replay pipeline on a file. *replay.Analyzer satisfies it.
type Analyzer interface {
	Run(ctx context.Context, path string) (*models.AnalysisResult, error)
}

// AnalysisService handles replay analysis business logic
type AnalysisService interface {
	// Analyze runs the pipeline synchronously and stores nothing. The caller
	// keeps ownership of the file.
	Analyze(ctx context.Context, path string) (*models.AnalysisResult, error)
	// ProcessReplay analyzes a stored replay's upload and records the result
	// or the failure. The upload is removed on every path.
	ProcessReplay(ctx context.Context, replayID int64, path string) error
}

type analysisService struct {
	analyzer   Analyzer
	replayRepo repository.ReplayRepository
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(analyzer Analyzer, replayRepo repository.ReplayRepository) AnalysisService {
	return &analysisService{
		analyzer:   analyzer,
		replayRepo: replayRepo,
	}
}

func (s *analysisService) Analyze(ctx context.Context, path string) (*models.AnalysisResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("analyzing replay: path=%s", path)

	result, err := s.analyzer.Run(ctx, path)
	if err != nil {
		appErr := errors.FromReplay(err)
		if appErr.Code == errors.ErrCodeInternal {
			log.Error("analysis failed: %v", err)
		} else {
			log.Info("replay rejected: %v", err)
		}
		return nil, appErr
	}
	return result, nil
}

func (s *analysisService) ProcessReplay(ctx context.Context, replayID int64, path string) error {
	log := logger.FromContext(ctx)
	defer removeUpload(log, path)

	// status writes must land even when a shutdown cancels the analysis
	storeCtx := context.WithoutCancel(ctx)

	if err := s.replayRepo.UpdateStatus(storeCtx, replayID, models.StatusProcessing, ""); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("replay", replayID)
		}
		log.Error("failed to mark replay %d processing: %v", replayID, err)
		return errors.NewInternalError(err)
	}

	result, err := s.analyzer.Run(ctx, path)
	if err != nil {
		failure := replay.Failure(err)
		log.Warn("replay %d failed analysis: %v", replayID, err)
		if uerr := s.replayRepo.UpdateStatus(storeCtx, replayID, models.StatusFailed, failure.Error); uerr != nil {
			log.Error("failed to mark replay %d failed: %v", replayID, uerr)
			return errors.NewInternalError(uerr)
		}
		return nil
	}

	if err := s.replayRepo.SaveResult(storeCtx, replayID, *result); err != nil {
		log.Error("failed to store result for replay %d: %v", replayID, err)
		if uerr := s.replayRepo.UpdateStatus(storeCtx, replayID, models.StatusFailed, "analysis result could not be stored"); uerr != nil {
			log.Error("failed to mark replay %d failed: %v", replayID, uerr)
		}
		return errors.NewInternalError(err)
	}

	log.WithFields(map[string]any{
		"map":    result.Metadata.MapName,
		"winner": result.Metadata.Winner,
	}).Info("replay %d analyzed", replayID)
	return nil
}

func removeUpload(log *logger.Logger, path string) {
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to remove upload %s: %v", path, err)
	}
}
