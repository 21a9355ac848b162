package decoder

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/replay"
)

// Limiter bounds how many decoder calls run at once. Callers block until a
// slot frees up or their context ends.
type Limiter struct {
	next   replay.Decoder
	sem    *semaphore.Weighted
	size   int64
	active atomic.Int64
	log    *logger.Logger
}

// NewLimiter wraps next so at most size calls are in flight.
func NewLimiter(next replay.Decoder, size int) *Limiter {
	if size <= 0 {
		size = 2
	}
	log := logger.Default().WithPrefix("decoder-limiter")
	log.Info("decoder concurrency limited to %d", size)
	return &Limiter{
		next: next,
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
		log:  log,
	}
}

func (l *Limiter) acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		l.log.Warn("gave up waiting for a decoder slot: %v", err)
		return err
	}
	l.active.Add(1)
	return nil
}

func (l *Limiter) release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

func (l *Limiter) DecodeHeader(ctx context.Context, path string) (*replay.Header, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.next.DecodeHeader(ctx, path)
}

func (l *Limiter) Decode(ctx context.Context, path string, opts replay.Options) replay.Outcome {
	if err := l.acquire(ctx); err != nil {
		return replay.Exception(fmt.Sprintf("decoder unavailable: %v", err))
	}
	defer l.release()
	return l.next.Decode(ctx, path, opts)
}

// Available returns how many decoder slots are currently idle.
func (l *Limiter) Available() int {
	return int(l.size - l.active.Load())
}
