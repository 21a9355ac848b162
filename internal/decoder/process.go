package decoder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/stormstats/internal/logger"
	"github.com/vytor/stormstats/internal/replay"
)

// DefaultTimeout bounds a single decoder invocation.
const DefaultTimeout = 60 * time.Second

// maxStderr caps how much decoder stderr is kept for error messages.
const maxStderr = 4096

// Process drives an external replay decoder binary. Each call starts a new
// process, so a Process is safe for concurrent use; wrap it in a Limiter to
// bound how many run at once.
type Process struct {
	path    string
	args    []string
	timeout time.Duration
	log     *logger.Logger
}

// Option configures a Process.
type Option func(*Process)

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Process) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithArgs prepends fixed arguments to every invocation.
func WithArgs(args ...string) Option {
	return func(p *Process) {
		p.args = append([]string(nil), args...)
	}
}

// NewProcess creates a decoder driver for the binary at path.
func NewProcess(path string, opts ...Option) *Process {
	if path == "" {
		path = "stormdecode"
	}
	p := &Process{
		path:    path,
		timeout: DefaultTimeout,
		log:     logger.Default().WithPrefix("decoder"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Check verifies that the decoder binary can be found.
func (p *Process) Check() error {
	if _, err := exec.LookPath(p.path); err != nil {
		return fmt.Errorf("decoder binary %q: %w", p.path, err)
	}
	return nil
}

func (p *Process) DecodeHeader(ctx context.Context, path string) (*replay.Header, error) {
	out, err := p.run(ctx, "header", path)
	if err != nil {
		return nil, err
	}
	var h headerJSON
	if err := json.Unmarshal(out, &h); err != nil {
		return nil, fmt.Errorf("parse header output: %w", err)
	}
	header := h.toHeader()
	if header.Empty() {
		return nil, fmt.Errorf("header output has no build or version")
	}
	return header, nil
}

func (p *Process) Decode(ctx context.Context, path string, opts replay.Options) replay.Outcome {
	if len(opts.Sections) > 0 {
		return p.readSections(ctx, path, opts.Sections)
	}

	out, err := p.run(ctx, decodeArgs(opts, path)...)
	if err != nil {
		return replay.Exception(err.Error())
	}
	var res decodeJSON
	if err := json.Unmarshal(out, &res); err != nil {
		return replay.Exception(fmt.Sprintf("parse decode output: %v", err))
	}
	if res.Status == nil {
		// no verdict at all: hand the caller an empty result to reject as a shape problem
		return replay.Ok(nil, nil)
	}
	if status := replay.Status(*res.Status); status != replay.StatusOK {
		return replay.Failed(status)
	}
	if res.Match == nil {
		// an OK status without a match is a shape problem for the caller
		return replay.Ok(nil, res.toPlayers())
	}
	return replay.Ok(res.Match.toMatch(), res.toPlayers())
}

func (p *Process) readSections(ctx context.Context, path string, sections []replay.Section) replay.Outcome {
	args := []string{"raw"}
	for _, s := range sections {
		args = append(args, "--section", string(s))
	}
	args = append(args, path)

	out, err := p.run(ctx, args...)
	if err != nil {
		return replay.Exception(err.Error())
	}
	var raw rawJSON
	if err := json.Unmarshal(out, &raw); err != nil {
		return replay.Exception(fmt.Sprintf("parse raw output: %v", err))
	}
	return replay.OkSections(raw.toSections())
}

func decodeArgs(opts replay.Options, path string) []string {
	args := []string{"decode"}
	if opts.Stats {
		args = append(args, "--stats")
	}
	if opts.LegacyTalentKeys {
		args = append(args, "--legacy-talent-keys")
	}
	if opts.OverrideVerifiedBuild {
		args = append(args, "--override-verified-build")
	}
	if opts.Recovery {
		args = append(args, "--recover")
	}
	if opts.IgnoreErrors {
		args = append(args, "--ignore-errors")
	}
	return append(args, path)
}

// run executes the decoder and returns its stdout. A non-zero exit is
// reported with the decoder's stderr as the message.
func (p *Process) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	argv := append(append([]string(nil), p.args...), args...)
	log := p.log.WithField("cmd", args[0])
	start := time.Now()

	cmd := exec.CommandContext(ctx, p.path, argv...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		log.Error("failed to start decoder %s: %v", p.path, err)
		return nil, fmt.Errorf("start decoder: %w", err)
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, io.LimitReader(stderr, maxStderr))
		_, _ = io.Copy(io.Discard, stderr)
		return err
	})
	readErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("decoder timed out after %v", p.timeout)
			return nil, fmt.Errorf("decoder timed out after %v", p.timeout)
		}
		return nil, ctx.Err()
	}
	if waitErr != nil {
		msg := strings.TrimSpace(errBuf.String())
		if msg == "" {
			msg = waitErr.Error()
		}
		log.Debug("decoder exited with error in %v: %s", time.Since(start), msg)
		return nil, errors.New(msg)
	}
	if readErr != nil {
		return nil, fmt.Errorf("read decoder output: %w", readErr)
	}

	log.Debug("decoder finished in %v (%d bytes)", time.Since(start), outBuf.Len())
	return outBuf.Bytes(), nil
}
