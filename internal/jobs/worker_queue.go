package jobs

import (
	"github.com/vytor/stormstats/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	analysisPool    *worker.Pool
	analysisService worker.AnalysisServiceInterface
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(analysisPool *worker.Pool, analysisService worker.AnalysisServiceInterface) JobQueue {
	return &WorkerQueue{
		analysisPool:    analysisPool,
		analysisService: analysisService,
	}
}

func (q *WorkerQueue) EnqueueAnalysis(replayID int64, path string) error {
	return q.analysisPool.Submit(&worker.AnalyzeReplayJob{
		AnalysisService: q.analysisService,
		ReplayID:        replayID,
		Path:            path,
	})
}

func (q *WorkerQueue) Pending() int {
	return q.analysisPool.QueueSize()
}
