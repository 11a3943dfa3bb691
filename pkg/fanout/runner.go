package fanout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/multiquery/pkg/adapter"
	"github.com/leapstack-labs/multiquery/pkg/core"
)

// Resolver maps a target to a fresh, unconnected adapter.
// *adapter.Registry satisfies it.
type Resolver interface {
	Resolve(t core.Target, logger *slog.Logger) (adapter.Adapter, error)
}

// Emitter receives every normalized row. Implementations must be safe for
// concurrent use.
type Emitter interface {
	Emit(row *core.Row) error
}

// State is a per-target lifecycle stage, used in log records.
type State string

// Target lifecycle.
const (
	StateResolving  State = "resolving"
	StateConnecting State = "connecting"
	StateStreaming  State = "streaming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Runner fans one query out to many targets.
type Runner struct {
	resolver       Resolver
	emitter        Emitter
	logger         *slog.Logger
	maxConcurrency int
	timeout        time.Duration
}

// New creates a Runner. A nil logger discards log output.
func New(resolver Resolver, emitter Emitter, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Runner{resolver: resolver, emitter: emitter, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session is a connected target.
type Session struct {
	Target  core.Target
	Adapter adapter.Adapter
}

// Run executes query on every target and streams rows to the emitter. It
// returns nil only when every target completed.
func (r *Runner) Run(ctx context.Context, query string, targets []core.Target) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sessions, release, err := r.Connect(ctx, targets)
	if err != nil {
		return err
	}
	defer release()

	started := time.Now()
	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}
	for _, s := range sessions {
		g.Go(func() error {
			return r.stream(ctx, s, query)
		})
	}
	err = g.Wait()

	r.logger.Debug("fan-out finished",
		slog.Int("targets", len(sessions)),
		slog.Duration("elapsed", time.Since(started)),
		slog.Bool("ok", err == nil))
	return err
}

// Connect resolves every target, then connects them concurrently. Resolution
// failures are reported before any connection is attempted. On failure all
// sessions opened so far are closed. The returned release func closes every
// session and is safe to call more than once.
func (r *Runner) Connect(ctx context.Context, targets []core.Target) ([]*Session, func(), error) {
	if len(targets) == 0 {
		return nil, func() {}, errors.New("no connection targets configured")
	}

	sessions := make([]*Session, len(targets))
	for i, t := range targets {
		r.transition(t, StateResolving)
		a, err := r.resolver.Resolve(t, r.logger.With(slog.String("target", t.Name)))
		if err != nil {
			r.fail(t, err)
			return nil, func() {}, err
		}
		sessions[i] = &Session{Target: t, Adapter: a}
	}

	var (
		mu     sync.Mutex
		opened []*Session
	)
	release := func() {
		mu.Lock()
		toClose := opened
		opened = nil
		mu.Unlock()
		for _, s := range toClose {
			if err := s.Adapter.Close(); err != nil {
				r.logger.Warn("failed to close connection",
					slog.String("target", s.Target.Name), slog.Any("error", err))
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}
	for _, s := range sessions {
		g.Go(func() error {
			r.transition(s.Target, StateConnecting)
			if err := s.Adapter.Connect(gctx, s.Target.AdapterConfig()); err != nil {
				_ = s.Adapter.Close()
				err = core.NewTargetError(s.Target.Name, core.ErrConnectFailed, err)
				r.fail(s.Target, err)
				return err
			}
			mu.Lock()
			opened = append(opened, s)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		release()
		return nil, func() {}, err
	}
	return sessions, release, nil
}

// PingResult is the connect-only outcome for one target.
type PingResult struct {
	Target  core.Target
	Latency time.Duration
	Err     error
}

// OK reports whether the target connected.
func (p PingResult) OK() bool {
	return p.Err == nil
}

// Ping connects to every target independently and closes each connection
// immediately. Unlike Connect, one failure does not abort the others.
func (r *Runner) Ping(ctx context.Context, targets []core.Target) []PingResult {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	results := make([]PingResult, len(targets))
	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}
	for i, t := range targets {
		results[i].Target = t
		g.Go(func() error {
			results[i].Latency, results[i].Err = r.ping(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) ping(ctx context.Context, t core.Target) (time.Duration, error) {
	a, err := r.resolver.Resolve(t, r.logger.With(slog.String("target", t.Name)))
	if err != nil {
		return 0, err
	}
	defer func() { _ = a.Close() }()

	start := time.Now()
	if err := a.Connect(ctx, t.AdapterConfig()); err != nil {
		return 0, core.NewTargetError(t.Name, core.ErrConnectFailed, err)
	}
	return time.Since(start), nil
}

// emitError marks failures raised by the emitter rather than the backend.
type emitError struct{ err error }

func (e *emitError) Error() string { return e.err.Error() }
func (e *emitError) Unwrap() error { return e.err }

func (r *Runner) stream(ctx context.Context, s *Session, query string) error {
	r.transition(s.Target, StateStreaming)

	var rows int64
	err := s.Adapter.Stream(ctx, query, func(row *core.Row) error {
		if err := r.emitter.Emit(row); err != nil {
			return &emitError{err: err}
		}
		rows++
		return nil
	})
	if err != nil {
		err = classify(s.Target.Name, err)
		r.fail(s.Target, err)
		return err
	}

	r.logger.Info("target completed",
		slog.String("target", s.Target.Name),
		slog.String("state", string(StateCompleted)),
		slog.Int64("rows", rows))
	return nil
}

// classify attributes a stream failure to the target with its error kind.
func classify(target string, err error) error {
	var te *core.TargetError
	if errors.As(err, &te) {
		return err
	}
	var ee *emitError
	switch {
	case errors.As(err, &ee):
		return core.NewTargetError(target, core.ErrIO, ee.err)
	case errors.Is(err, core.ErrUndecodableColumn):
		return core.NewTargetError(target, core.ErrUndecodableColumn, err)
	default:
		return core.NewTargetError(target, core.ErrQueryFailed, err)
	}
}

func (r *Runner) transition(t core.Target, s State) {
	r.logger.Debug("target state",
		slog.String("target", t.Name),
		slog.String("dialect", t.Dialect.String()),
		slog.String("state", string(s)))
}

func (r *Runner) fail(t core.Target, err error) {
	r.logger.Error("target failed",
		slog.String("target", t.Name),
		slog.String("state", string(StateFailed)),
		slog.Any("error", err))
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {}
}

