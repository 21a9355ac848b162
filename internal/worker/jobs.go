package worker

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/vytor/stormstats/internal/logger"
)

// AnalyzeReplayJob analyzes a stored upload. It owns the file at Path.
type AnalyzeReplayJob struct {
	AnalysisService AnalysisServiceInterface
	ReplayID        int64
	Path            string
}

func (j *AnalyzeReplayJob) Name() string { return "analyze_replay" }

func (j *AnalyzeReplayJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("replay_id", j.ReplayID)
	return j.AnalysisService.ProcessReplay(logger.NewContext(ctx, log), j.ReplayID, j.Path)
}

// Discard removes the upload of a job that will never run.
func (j *AnalyzeReplayJob) Discard() {
	if err := os.Remove(j.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Default().WithPrefix("worker").Warn("failed to remove discarded upload %s: %v", j.Path, err)
	}
}
