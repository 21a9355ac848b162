package worker

import "context"

// AnalysisServiceInterface is what AnalyzeReplayJob needs from the analysis
// service. Defined here to keep worker free of a services import.
type AnalysisServiceInterface interface {
	ProcessReplay(ctx context.Context, replayID int64, path string) error
}
