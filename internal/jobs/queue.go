package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueAnalysis queues analysis of the upload at path for replay
	// replayID. On success the queued job owns the file.
	EnqueueAnalysis(replayID int64, path string) error
	// Pending returns the number of jobs waiting to run.
	Pending() int
}
