package api

import (
	"context"

	"github.com/vytor/stormstats/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DecoderChecker reports whether the replay decoder can be invoked.
type DecoderChecker interface {
	Check() error
}

type Server struct {
	ReplayService services.ReplayService
	DB            Pinger
	Decoder       DecoderChecker
	// UploadDir receives uploads while they are analyzed or queued.
	UploadDir string
}
