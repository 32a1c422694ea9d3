package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/xpid/internal/infrastructure/monitoring/logging"
)

// File processing outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Criterion labels for the hit counter.
const (
	CriterionPlevin = "plevin"
	CriterionHudson = "hudson"
)

// BatchMetrics holds the instruments recorded by a detection batch.
type BatchMetrics struct {
	// FilesProcessedTotal counts finished input files by outcome status.
	FilesProcessedTotal CounterVec
	// HitsTotal counts reported interactions by satisfied criterion; a
	// hit satisfying both criteria increments both labels.
	HitsTotal CounterVec
	// FileDuration observes per-file wall time in seconds.
	FileDuration HistogramVec
	// ActiveWorkers tracks currently running batch workers.
	ActiveWorkers GaugeVec
}

// fileDurationBuckets suit structure processing times: sub-second small
// files up to minutes for large multi-model entries.
var fileDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// NewBatchMetrics registers the batch instruments on the collector.
func NewBatchMetrics(collector MetricsCollector) *BatchMetrics {
	return &BatchMetrics{
		FilesProcessedTotal: collector.RegisterCounter(
			"files_processed_total", "Input structure files processed", "status"),
		HitsTotal: collector.RegisterCounter(
			"hits_total", "Detected interactions by criterion", "criterion"),
		FileDuration: collector.RegisterHistogram(
			"file_duration_seconds", "Per-file processing duration", fileDurationBuckets),
		ActiveWorkers: collector.RegisterGauge(
			"active_workers", "Currently running batch workers"),
	}
}

// Serve exposes the collector's /metrics endpoint on addr until ctx is
// cancelled. It returns immediately, running the listener in the
// background; listen failures are logged, not fatal, since metrics are an
// optional facility of a batch run.
func Serve(ctx context.Context, addr string, collector MetricsCollector, log logging.Logger) {
	if log == nil {
		log = logging.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info("metrics endpoint listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics endpoint failed", logging.Err(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
