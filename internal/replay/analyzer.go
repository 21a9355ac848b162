package replay

import (
	"context"
	"time"

	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/models"
)

// Localizer maps internal identifiers to display names. Misses return the
// input unchanged.
type Localizer interface {
	Hero(name string) string
	Map(name string) string
}

type identity struct{}

func (identity) Hero(name string) string { return name }
func (identity) Map(name string) string  { return name }

// Analyzer runs the replay pipeline for one file per call. It holds no
// per-call state and is safe for concurrent use.
type Analyzer struct {
	decoder   Decoder
	localizer Localizer
	now       func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the clock used for the analysis timestamp.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an Analyzer. A nil localizer passes names through.
func NewAnalyzer(dec Decoder, loc Localizer, opts ...Option) *Analyzer {
	if loc == nil {
		loc = identity{}
	}
	a := &Analyzer{
		decoder:   dec,
		localizer: loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes the replay at path. Errors are *Error values. The file is
// never modified or removed.
func (a *Analyzer) Run(ctx context.Context, path string) (*models.AnalysisResult, error) {
	log := logger.FromContext(ctx).WithPrefix("analyzer")
	ctx = logger.NewContext(ctx, log)
	start := a.now()

	size, err := ValidateFile(path)
	if err != nil {
		log.Info("rejected %s: %v", path, err)
		return nil, err
	}

	header, err := a.precheck(ctx, path)
	if err != nil {
		log.Warn("header precheck failed for %s: %v", path, err)
		return nil, err
	}

	dec, err := a.decode(ctx, path)
	if err != nil {
		return nil, err
	}

	tracker := a.readTracker(ctx, path)
	players := Reconcile(ctx, dec.Players, tracker)
	blue, red := RankTeams(players)

	result := a.assemble(dec, header, size, blue, red)
	log.WithFields(map[string]any{
		"attempts": dec.Attempts,
		"degraded": dec.Degraded,
		"players":  len(players),
	}).Info("analyzed %s in %v", path, a.now().Sub(start))
	return result, nil
}

// Analyze is Run with failures folded into the result.
func (a *Analyzer) Analyze(ctx context.Context, path string) models.AnalysisResult {
	result, err := a.Run(ctx, path)
	if err != nil {
		return Failure(err)
	}
	return *result
}

func (a *Analyzer) precheck(ctx context.Context, path string) (header *Header, err error) {
	defer func() {
		if r := recover(); r != nil {
			header = nil
			err = &Error{Kind: KindHeaderUnreadable, Message: "replay header could not be read", Detail: panicMessage(r)}
		}
	}()

	header, err = a.decoder.DecodeHeader(ctx, path)
	if err != nil {
		return nil, &Error{
			Kind:    KindHeaderUnreadable,
			Message: "replay header could not be read",
			Detail:  err.Error(),
			Err:     err,
		}
	}
	if header.Empty() {
		return nil, &Error{Kind: KindHeaderUnreadable, Message: "replay header could not be read", Detail: "empty header"}
	}
	return header, nil
}
