package broadcast

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

const (
	testSeedHex   = "3E8ABFC17DC5DE84B18935BB40FEB67FB409724B902E028736120AED3092DAEF"
	testRep       = "xrb_36p4xfxn365i9h7oxta6tdmu53zndrm45r3x9ag9naa3mxnnpn3p6tjfqzqm"
	testThreshold = uint64(0xfff0000000000000)
)

var blockHash = nano.Hash{0xAB}

func builtChange(t *testing.T) *nano.StateBlock {
	t.Helper()
	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)
	kp, err := nano.DeriveKeyPair(seed, 0)
	require.NoError(t, err)

	var previous nano.Hash
	_, err = rand.Read(previous[:])
	require.NoError(t, err)

	b := nano.NewChange(kp.Address(), previous.String(), testRep, uint256.NewInt(10))
	require.NoError(t, b.Build(&kp))
	return b
}

// fakeSubmitter blocks until release is closed when it is not nil.
type fakeSubmitter struct {
	release chan struct{}
	err     error
	calls   atomic.Int32
	started chan struct{}
}

func (s *fakeSubmitter) Process(ctx context.Context, _ *nano.StateBlock) (nano.Hash, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nano.Hash{}, ctx.Err()
		}
	}
	if s.err != nil {
		return nano.Hash{}, s.err
	}
	return blockHash, nil
}

type fakeWorkSource struct {
	work  nano.Work
	err   error
	calls atomic.Int32
}

func (s *fakeWorkSource) GenerateWork(context.Context, nano.Hash) (nano.Work, error) {
	s.calls.Add(1)
	return s.work, s.err
}

func newWorker() *nano.Worker {
	return nano.NewWorker(nil, nano.WithThreads(2), nano.WithThreshold(testThreshold))
}

func TestHandlePublishes(t *testing.T) {
	sub := &fakeSubmitter{}
	reg := prometheus.NewRegistry()
	c := NewCoordinator(sub, newWorker(), reg)
	block := builtChange(t)

	hash, err := c.Handle(t.Context(), block)
	require.NoError(t, err)
	assert.Equal(t, blockHash, hash)

	work, err := nano.ParseWork(block.Work)
	require.NoError(t, err)
	root, err := block.WorkRoot()
	require.NoError(t, err)
	assert.True(t, nano.ValidateWorkThreshold(work, root, testThreshold))
	assert.True(t, block.VerifySignature(), "work must not affect the signature")

	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("done")))
}

func TestHandleRejectsUnsignedBlock(t *testing.T) {
	sub := &fakeSubmitter{}
	c := NewCoordinator(sub, newWorker(), nil)

	block := builtChange(t)
	block.Signature = ""
	_, err := c.Handle(t.Context(), block)
	require.ErrorIs(t, err, nano.ErrBuild)
	assert.Equal(t, int32(0), sub.calls.Load())
}

func TestHandleDuplicateInFlight(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{}), started: make(chan struct{}, 1)}
	c := NewCoordinator(sub, newWorker(), nil)
	block := builtChange(t)
	dup := *block

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = c.Handle(context.Background(), block)
	}()
	<-sub.started
	assert.Equal(t, 1, c.InFlight())

	_, err := c.Handle(t.Context(), &dup)
	require.ErrorIs(t, err, nano.ErrDuplicateInFlight)

	close(sub.release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, int32(1), sub.calls.Load())
	assert.Equal(t, 0, c.InFlight())

	// the key is free again
	sub.started = nil
	_, err = c.Handle(t.Context(), &dup)
	assert.NoError(t, err)
}

func TestHandleConcurrentDuplicates(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{})}
	c := NewCoordinator(sub, newWorker(), nil)
	block := builtChange(t)

	const callers = 8
	var wg sync.WaitGroup
	var dups atomic.Int32
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		b := *block
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Handle(context.Background(), &b)
			if errors.Is(err, nano.ErrDuplicateInFlight) {
				dups.Add(1)
			}
			results <- err
		}()
	}

	require.Eventually(t, func() bool {
		return dups.Load() == callers-1
	}, 5*time.Second, time.Millisecond)
	close(sub.release)
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int32(1), sub.calls.Load())
}

func TestHandleReleasesKeyOnFailure(t *testing.T) {
	sub := &fakeSubmitter{err: nano.ErrFork}
	c := NewCoordinator(sub, newWorker(), nil)
	block := builtChange(t)

	_, err := c.Handle(t.Context(), block)
	require.ErrorIs(t, err, nano.ErrFork)
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("fork")))

	// no automatic retry
	assert.Equal(t, int32(1), sub.calls.Load())
}

func TestHandleUsesValidRemoteWork(t *testing.T) {
	block := builtChange(t)
	root, err := block.WorkRoot()
	require.NoError(t, err)
	work, err := nano.GenerateWorkThreshold(t.Context(), root, testThreshold, rand.Reader)
	require.NoError(t, err)

	remote := &fakeWorkSource{work: work}
	c := NewCoordinator(&fakeSubmitter{}, newWorker(), nil, WithWorkSource(remote))

	_, err = c.Handle(t.Context(), block)
	require.NoError(t, err)
	assert.Equal(t, work.String(), block.Work)
	assert.Equal(t, int32(1), remote.calls.Load())
}

func TestHandleFallsBackToLocalWork(t *testing.T) {
	tests := []struct {
		name   string
		remote *fakeWorkSource
	}{
		{"remote error", &fakeWorkSource{err: nano.ErrNetwork}},
		{"remote work invalid", &fakeWorkSource{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := builtChange(t)
			c := NewCoordinator(&fakeSubmitter{}, newWorker(), nil, WithWorkSource(tt.remote))

			_, err := c.Handle(t.Context(), block)
			require.NoError(t, err)

			root, err := block.WorkRoot()
			require.NoError(t, err)
			work, err := nano.ParseWork(block.Work)
			require.NoError(t, err)
			assert.True(t, nano.ValidateWorkThreshold(work, root, testThreshold))
		})
	}
}

func TestHandleKeepsExistingValidWork(t *testing.T) {
	block := builtChange(t)
	root, err := block.WorkRoot()
	require.NoError(t, err)
	work, err := nano.GenerateWorkThreshold(t.Context(), root, testThreshold, rand.Reader)
	require.NoError(t, err)
	block.Work = work.String()

	remote := &fakeWorkSource{err: errors.New("must not be called")}
	c := NewCoordinator(&fakeSubmitter{}, newWorker(), nil, WithWorkSource(remote))
	_, err = c.Handle(t.Context(), block)
	require.NoError(t, err)
	assert.Equal(t, work.String(), block.Work)
	assert.Equal(t, int32(0), remote.calls.Load())
}

func TestHandleTimeout(t *testing.T) {
	sub := &fakeSubmitter{release: make(chan struct{})}
	c := NewCoordinator(sub, newWorker(), nil, WithTimeout(50*time.Millisecond))

	_, err := c.Handle(t.Context(), builtChange(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, c.InFlight())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("timeout")))
}

func TestHandleCancelledDuringWork(t *testing.T) {
	// an unreachable threshold keeps the worker busy until cancelled
	worker := nano.NewWorker(nil, nano.WithThreads(1), nano.WithThreshold(^uint64(0)))
	c := NewCoordinator(&fakeSubmitter{}, worker, nil)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Handle(ctx, builtChange(t))
	require.ErrorIs(t, err, nano.ErrProofOfWork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, c.InFlight())
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSweepEvictsExpired(t *testing.T) {
	clock := &manualClock{now: time.Now()}
	sub := &fakeSubmitter{release: make(chan struct{}), started: make(chan struct{}, 1)}
	c := NewCoordinator(sub, newWorker(), nil, WithClock(clock.Now))
	block := builtChange(t)
	dup := *block

	done := make(chan error, 1)
	go func() {
		_, err := c.Handle(context.Background(), block)
		done <- err
	}()
	<-sub.started

	assert.Equal(t, 0, c.Sweep())
	ops := c.Operations()
	require.Len(t, ops, 1)
	assert.Equal(t, StateSubmitting, ops[0].State)

	clock.Advance(DefaultTimeout)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.InFlight())

	// eviction cancels the stuck call
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("evicted broadcast did not stop")
	}

	close(sub.release)
	sub.started = nil
	_, err := c.Handle(t.Context(), &dup)
	assert.NoError(t, err)
}

func TestExpiredEntryIsReplaced(t *testing.T) {
	clock := &manualClock{now: time.Now()}
	sub := &fakeSubmitter{release: make(chan struct{}), started: make(chan struct{}, 2)}
	c := NewCoordinator(sub, newWorker(), nil, WithClock(clock.Now))
	block := builtChange(t)
	dup := *block

	first := make(chan error, 1)
	go func() {
		_, err := c.Handle(context.Background(), block)
		first <- err
	}()
	<-sub.started

	clock.Advance(DefaultTimeout + time.Second)
	second := make(chan error, 1)
	go func() {
		_, err := c.Handle(context.Background(), &dup)
		second <- err
	}()

	// the stale call is cancelled and must not release the new key
	assert.ErrorIs(t, <-first, context.Canceled)
	<-sub.started
	assert.Equal(t, 1, c.InFlight())

	close(sub.release)
	assert.NoError(t, <-second)
	assert.Equal(t, 0, c.InFlight())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pow_pending", StateProofOfWorkPending.String())
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "failed", StateFailed.String())
}
