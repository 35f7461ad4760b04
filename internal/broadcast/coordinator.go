// Package broadcast attaches proof of work to built blocks and submits them
// to the ledger, allowing at most one submission per account chain position.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

// DefaultTimeout bounds a single broadcast, work generation included.
const DefaultTimeout = 2 * time.Minute

// Submitter publishes a built block and returns its hash.
type Submitter interface {
	Process(ctx context.Context, block *nano.StateBlock) (nano.Hash, error)
}

// WorkSource computes proof of work remotely.
type WorkSource interface {
	GenerateWork(ctx context.Context, root nano.Hash) (nano.Work, error)
}

// Worker computes and checks proof of work locally.
type Worker interface {
	Generate(ctx context.Context, root nano.Hash) (nano.Work, error)
	Validate(work nano.Work, root nano.Hash) bool
}

// State is the progress of one broadcast.
type State int

const (
	StateIdle State = iota
	StateProofOfWorkPending
	StateSubmitting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProofOfWorkPending:
		return "pow_pending"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Operation is a snapshot of an in-flight broadcast.
type Operation struct {
	ID      uuid.UUID
	Root    nano.Hash
	Intent  nano.Intent
	State   State
	Started time.Time
	Expires time.Time
}

type operation struct {
	Operation
	cancel context.CancelFunc
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	submitter Submitter
	worker    Worker
	remote    WorkSource
	timeout   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	inflight map[nano.Hash]*operation

	outcomes *prometheus.CounterVec
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkSource tries src before the local worker.
func WithWorkSource(src WorkSource) Option {
	return func(c *Coordinator) {
		c.remote = src
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces time.Now for expiry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a Coordinator. Metrics are registered with reg when
// it is not nil.
func NewCoordinator(submitter Submitter, worker Worker, reg prometheus.Registerer, opts ...Option) *Coordinator {
	c := &Coordinator{
		submitter: submitter,
		worker:    worker,
		timeout:   DefaultTimeout,
		now:       time.Now,
		inflight:  make(map[nano.Hash]*operation),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanowallet",
			Subsystem: "broadcast",
			Name:      "outcomes_total",
			Help:      "Block broadcasts by outcome.",
		}, []string{"outcome"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if reg != nil {
		reg.MustRegister(c.outcomes)
	}
	return c
}

// Handle attaches work to a built block and submits it. A second call for the
// same chain position while the first is in flight fails immediately with
// nano.ErrDuplicateInFlight. The key is released on every outcome; nothing is
// retried.
func (c *Coordinator) Handle(ctx context.Context, block *nano.StateBlock) (nano.Hash, error) {
	if !block.VerifySignature() {
		return nano.Hash{}, fmt.Errorf("%w: block is not signed", nano.ErrBuild)
	}
	root, err := block.WorkRoot()
	if err != nil {
		return nano.Hash{}, fmt.Errorf("%w: %w", nano.ErrBuild, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op, err := c.acquire(root, block.Intent, cancel)
	if err != nil {
		c.outcomes.WithLabelValues("duplicate").Inc()
		return nano.Hash{}, err
	}
	defer c.release(op)

	logger := log.With().Str("op", op.ID.String()).Str("root", root.String()).Str("intent", block.Intent.String()).Logger()
	logger.Debug().Msg("Broadcast started")

	c.setState(op, StateProofOfWorkPending)
	work, err := c.work(ctx, block, root)
	if err != nil {
		c.setState(op, StateFailed)
		c.outcomes.WithLabelValues(outcome(err)).Inc()
		logger.Error().Err(err).Msg("Proof of work failed")
		return nano.Hash{}, err
	}
	block.Work = work.String()

	c.setState(op, StateSubmitting)
	hash, err := c.submitter.Process(ctx, block)
	if err != nil {
		c.setState(op, StateFailed)
		c.outcomes.WithLabelValues(outcome(err)).Inc()
		logger.Error().Err(err).Msg("Broadcast failed")
		return nano.Hash{}, err
	}

	c.setState(op, StateDone)
	c.outcomes.WithLabelValues("done").Inc()
	logger.Info().Str("hash", hash.String()).Msg("Block published")
	return hash, nil
}

// work returns the block's own work when it is already valid, then tries the
// remote source and finally the local worker.
func (c *Coordinator) work(ctx context.Context, block *nano.StateBlock, root nano.Hash) (nano.Work, error) {
	if block.Work != "" {
		if w, err := nano.ParseWork(block.Work); err == nil && c.worker.Validate(w, root) {
			return w, nil
		}
	}

	if c.remote != nil {
		w, err := c.remote.GenerateWork(ctx, root)
		switch {
		case err == nil && c.worker.Validate(w, root):
			return w, nil
		case err == nil:
			log.Warn().Str("root", root.String()).Str("work", w.String()).Msg("Remote work below threshold, generating locally")
		case ctx.Err() != nil:
			return nano.Work{}, fmt.Errorf("%w: %w", nano.ErrProofOfWork, ctx.Err())
		default:
			log.Warn().Err(err).Str("root", root.String()).Msg("Remote work failed, generating locally")
		}
	}

	w, err := c.worker.Generate(ctx, root)
	if err != nil {
		if errors.Is(err, nano.ErrProofOfWork) {
			return nano.Work{}, err
		}
		return nano.Work{}, fmt.Errorf("%w: %w", nano.ErrProofOfWork, err)
	}
	return w, nil
}

func (c *Coordinator) acquire(root nano.Hash, intent nano.Intent, cancel context.CancelFunc) (*operation, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.inflight[root]; ok {
		if now.Before(existing.Expires) {
			return nil, fmt.Errorf("%w: %s", nano.ErrDuplicateInFlight, root)
		}
		existing.cancel()
		log.Warn().Str("op", existing.ID.String()).Str("root", root.String()).Msg("Evicted expired broadcast")
	}

	op := &operation{
		Operation: Operation{
			ID:      uuid.New(),
			Root:    root,
			Intent:  intent,
			State:   StateIdle,
			Started: now,
			Expires: now.Add(c.timeout),
		},
		cancel: cancel,
	}
	c.inflight[root] = op
	return op, nil
}

// release drops op's key unless it was already evicted and reused.
func (c *Coordinator) release(op *operation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.inflight[op.Root]; ok && cur.ID == op.ID {
		delete(c.inflight, op.Root)
	}
}

func (c *Coordinator) setState(op *operation, s State) {
	c.mu.Lock()
	op.State = s
	c.mu.Unlock()
}

// Sweep cancels and evicts broadcasts past their expiry and returns how many
// were removed.
func (c *Coordinator) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for root, op := range c.inflight {
		if now.Before(op.Expires) {
			continue
		}
		op.cancel()
		delete(c.inflight, root)
		n++
		log.Warn().Str("op", op.ID.String()).Str("root", root.String()).Str("state", op.State.String()).Msg("Swept expired broadcast")
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// InFlight returns the number of broadcasts in progress.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Operations returns a snapshot of the broadcasts in progress.
func (c *Coordinator) Operations() []Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := make([]Operation, 0, len(c.inflight))
	for _, op := range c.inflight {
		ops = append(ops, op.Operation)
	}
	return ops
}

func outcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, nano.ErrProofOfWork):
		return "pow_failed"
	case errors.Is(err, nano.ErrFork):
		return "fork"
	case errors.Is(err, nano.ErrOldBlock):
		return "old_block"
	case errors.Is(err, nano.ErrNetwork):
		return "network"
	}
	return "error"
}
