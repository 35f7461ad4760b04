package nano

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one solution in ~4096 hashes keeps generation fast in tests
const testThreshold uint64 = 0xfff0000000000000

func randomRoot(t *testing.T) Hash {
	t.Helper()
	var h Hash
	_, err := rand.Read(h[:])
	require.NoError(t, err)
	return h
}

func TestGenerateWorkValidates(t *testing.T) {
	for i := 0; i < 5; i++ {
		root := randomRoot(t)
		work, err := GenerateWorkThreshold(t.Context(), root, testThreshold, rand.Reader)
		require.NoError(t, err)
		assert.True(t, ValidateWorkThreshold(work, root, testThreshold))
		assert.Greater(t, WorkValue(work, root), testThreshold)
	}
}

func TestValidateWorkRejectsZero(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.False(t, ValidateWork(Work{}, randomRoot(t)))
	}
}

func TestValidateWorkByteOrder(t *testing.T) {
	root := randomRoot(t)
	work, err := GenerateWorkThreshold(t.Context(), root, testThreshold, rand.Reader)
	require.NoError(t, err)

	parsed, err := ParseWork(work.String())
	require.NoError(t, err)
	assert.Equal(t, work, parsed)
	assert.Len(t, work.String(), 16)

	// the same bytes in the other order are almost never valid
	var reversed Work
	for i := range work {
		reversed[i] = work[7-i]
	}
	if reversed != work {
		assert.NotEqual(t, WorkValue(work, root), WorkValue(reversed, root))
	}
}

func TestGenerateWorkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := GenerateWork(ctx, randomRoot(t))
	assert.ErrorIs(t, err, ErrProofOfWork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateWorkDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	// an unreachable threshold only returns through the context
	_, err := GenerateWorkThreshold(ctx, randomRoot(t), ^uint64(0), rand.Reader)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateWorkRandomSourceFailure(t *testing.T) {
	_, err := GenerateWorkThreshold(t.Context(), randomRoot(t), ^uint64(0), bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrProofOfWork)
}

func TestWorkerGenerate(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := NewWorker(reg, WithThreads(4), WithThreshold(testThreshold))
	assert.Equal(t, testThreshold, w.Threshold())

	root := randomRoot(t)
	work, err := w.Generate(t.Context(), root)
	require.NoError(t, err)
	assert.True(t, w.Validate(work, root))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestWorkerGenerateCancelled(t *testing.T) {
	w := NewWorker(nil, WithThreads(2), WithThreshold(^uint64(0)))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := w.Generate(ctx, randomRoot(t))
	assert.ErrorIs(t, err, ErrProofOfWork)
}

func TestParseWorkInvalid(t *testing.T) {
	_, err := ParseWork("xyz")
	assert.ErrorIs(t, err, ErrProofOfWork)
	_, err = ParseWork("zzzzzzzzzzzzzzzz")
	assert.ErrorIs(t, err, ErrProofOfWork)
}
