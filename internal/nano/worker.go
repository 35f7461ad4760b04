package nano

import (
	"context"
	"crypto/rand"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Worker runs proof-of-work searches on its own goroutines, never on the
// caller's.
type Worker struct {
	threads   int
	threshold uint64

	solved    prometheus.Counter
	cancelled prometheus.Counter
	duration  prometheus.Histogram
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithThreads sets the number of parallel searches. Defaults to GOMAXPROCS.
func WithThreads(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.threads = n
		}
	}
}

// WithThreshold overrides WorkThreshold.
func WithThreshold(threshold uint64) WorkerOption {
	return func(w *Worker) {
		w.threshold = threshold
	}
}

// NewWorker creates a Worker. Metrics are registered with reg when it is not
// nil.
func NewWorker(reg prometheus.Registerer, opts ...WorkerOption) *Worker {
	w := &Worker{
		threads:   runtime.GOMAXPROCS(0),
		threshold: WorkThreshold,
		solved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nanowallet",
			Subsystem: "pow",
			Name:      "solved_total",
			Help:      "Proof-of-work searches that found a solution.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nanowallet",
			Subsystem: "pow",
			Name:      "cancelled_total",
			Help:      "Proof-of-work searches abandoned before a solution was found.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nanowallet",
			Subsystem: "pow",
			Name:      "generate_seconds",
			Help:      "Time spent generating proof of work.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if reg != nil {
		reg.MustRegister(w.solved, w.cancelled, w.duration)
	}
	return w
}

// Threshold returns the difficulty the worker searches for.
func (w *Worker) Threshold() uint64 {
	return w.threshold
}

// Validate checks work against the worker's threshold.
func (w *Worker) Validate(work Work, root Hash) bool {
	return ValidateWorkThreshold(work, root, w.threshold)
}

// Generate searches for work on root. The first solution wins and the other
// searches are cancelled. Cancelling ctx stops every search.
func (w *Worker) Generate(ctx context.Context, root Hash) (Work, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		work Work
		err  error
	}
	results := make(chan result, w.threads)
	for i := 0; i < w.threads; i++ {
		go func() {
			work, err := GenerateWorkThreshold(ctx, root, w.threshold, rand.Reader)
			results <- result{work: work, err: err}
		}()
	}

	var err error
	for i := 0; i < w.threads; i++ {
		r := <-results
		if r.err == nil {
			cancel()
			w.solved.Inc()
			w.duration.Observe(time.Since(start).Seconds())
			log.Debug().Str("root", root.String()).Str("work", r.work.String()).Dur("took", time.Since(start)).Msg("Generated proof of work")
			return r.work, nil
		}
		err = r.err
	}

	w.cancelled.Inc()
	return Work{}, err
}
