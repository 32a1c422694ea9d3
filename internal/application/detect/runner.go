package detect

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/xpid/pkg/types/interaction"

	"github.com/turtacn/xpid/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/xpid/internal/infrastructure/monitoring/prometheus"
)

// RunOptions carries batch-level parameters.
type RunOptions struct {
	FileOptions
	// Jobs bounds concurrent file processing; values below 1 mean 1.
	Jobs int
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Path     string
	Hits     []interaction.Hit
	Err      error
	Duration time.Duration
}

// Summary aggregates a finished run.
type Summary struct {
	RunID    string
	Files    int
	Failed   int
	Hits     int
	Duration time.Duration
}

// Runner executes a batch over many input files with a semaphore-bounded
// worker pool. Results are delivered to the sink in input order so output
// files are reproducible regardless of scheduling; one file's failure is
// reported in its FileResult and never aborts the rest of the batch.
type Runner struct {
	svc     *Service
	metrics *prometheus.BatchMetrics
	log     logging.Logger
}

// NewRunner wires a Runner. metrics may be nil when no collector is
// configured.
func NewRunner(svc *Service, metrics *prometheus.BatchMetrics, log logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{svc: svc, metrics: metrics, log: log.Named("batch")}
}

// Run processes paths and streams ordered results into sink. A sink error
// is fatal to the run (the output file is broken); per-file errors are
// not. Cancelling ctx stops dispatching new files and fails the pending
// ones with the context error.
func (r *Runner) Run(ctx context.Context, paths []string, opts RunOptions, sink func(FileResult) error) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), Files: len(paths)}
	start := time.Now()
	log := r.log.With(logging.String("run_id", sum.RunID))
	log.Info("batch started",
		logging.Int("files", len(paths)),
		logging.Int("jobs", opts.Jobs),
		logging.String("hydrogen_mode", opts.Mode.String()))

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]FileResult, len(paths))
	completed := make(chan int)
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup

	go func() {
		for i, path := range paths {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				// Fail the remaining files without starting them.
				for j := i; j < len(paths); j++ {
					results[j] = FileResult{Path: paths[j], Err: ctx.Err()}
					completed <- j
				}
				return
			}
			wg.Add(1)
			go func(idx int, path string) {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = r.processOne(ctx, path, opts.FileOptions)
				completed <- idx
			}(i, path)
		}
	}()

	// Deliver in input order, releasing each result as soon as its turn
	// comes so the run never buffers more than the out-of-order window.
	done := make([]bool, len(paths))
	next := 0
	var sinkErr error
	for range paths {
		idx := <-completed
		done[idx] = true
		for next < len(paths) && done[next] {
			res := results[next]
			results[next].Hits = nil
			next++
			if res.Err != nil {
				sum.Failed++
				log.Warn("file failed",
					logging.String("path", res.Path),
					logging.Err(res.Err))
			} else {
				sum.Hits += len(res.Hits)
			}
			if sinkErr == nil {
				if err := sink(res); err != nil {
					sinkErr = err
				}
			}
		}
	}
	wg.Wait()

	sum.Duration = time.Since(start)
	log.Info("batch finished",
		logging.Int("failed", sum.Failed),
		logging.Int("hits", sum.Hits),
		logging.Duration("elapsed", sum.Duration))
	return sum, sinkErr
}

// processOne runs the pipeline for a single file, recording metrics.
func (r *Runner) processOne(ctx context.Context, path string, opts FileOptions) FileResult {
	if r.metrics != nil {
		r.metrics.ActiveWorkers.WithLabelValues().Inc()
		defer r.metrics.ActiveWorkers.WithLabelValues().Dec()
		defer prometheus.NewTimer(r.metrics.FileDuration.WithLabelValues()).ObserveDuration()
	}

	start := time.Now()
	hits, err := r.svc.ProcessFile(ctx, path, opts)
	res := FileResult{Path: path, Hits: hits, Err: err, Duration: time.Since(start)}

	if r.metrics != nil {
		status := prometheus.StatusOK
		if err != nil {
			status = prometheus.StatusFailed
		}
		r.metrics.FilesProcessedTotal.WithLabelValues(status).Inc()
		for _, h := range hits {
			if h.IsPlevin == 1 {
				r.metrics.HitsTotal.WithLabelValues(prometheus.CriterionPlevin).Inc()
			}
			if h.IsHudson == 1 {
				r.metrics.HitsTotal.WithLabelValues(prometheus.CriterionHudson).Inc()
			}
		}
	}
	return res
}
