package decoder_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/stormstats/internal/decoder"
	"github.com/vytor/stormstats/internal/replay"
)

// slowDecoder records the peak number of concurrent calls.
type slowDecoder struct {
	delay   time.Duration
	current atomic.Int64
	peak    atomic.Int64
}

func (d *slowDecoder) enter() {
	n := d.current.Add(1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(d.delay)
	d.current.Add(-1)
}

func (d *slowDecoder) DecodeHeader(ctx context.Context, path string) (*replay.Header, error) {
	d.enter()
	return &replay.Header{Build: 1}, nil
}

func (d *slowDecoder) Decode(ctx context.Context, path string, opts replay.Options) replay.Outcome {
	d.enter()
	return replay.Ok(&replay.DecodedMatch{}, nil)
}

func TestLimiter_BoundsConcurrency(t *testing.T) {
	slow := &slowDecoder{delay: 20 * time.Millisecond}
	lim := decoder.NewLimiter(slow, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = lim.DecodeHeader(context.Background(), "x")
				return
			}
			lim.Decode(context.Background(), "x", replay.Options{})
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, slow.peak.Load(), int64(2))
	assert.Equal(t, 2, lim.Available())
}

func TestLimiter_ContextCancelled(t *testing.T) {
	slow := &slowDecoder{delay: 200 * time.Millisecond}
	lim := decoder.NewLimiter(slow, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		lim.Decode(context.Background(), "x", replay.Options{})
	}()
	require.Eventually(t, func() bool { return lim.Available() == 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	out := lim.Decode(ctx, "x", replay.Options{})
	assert.Equal(t, replay.OutcomeException, out.Kind)
	assert.Contains(t, out.Message, "decoder unavailable")

	_, err := lim.DecodeHeader(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	<-done
	assert.Equal(t, 1, lim.Available())
}
