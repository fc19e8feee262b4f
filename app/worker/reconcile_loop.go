package worker

import (
	"context"
	"time"

	businessflow "github.com/amirphl/mailwright/business_flow"
	"go.uber.org/zap"
)

// ReconcileLoop runs the job reconciler on a fixed interval
type ReconcileLoop struct {
	reconciler businessflow.JobReconciler
	interval   time.Duration
	logger     *zap.Logger
}

// NewReconcileLoop creates a reconcile loop; a non-positive interval means one minute
func NewReconcileLoop(reconciler businessflow.JobReconciler, interval time.Duration, logger *zap.Logger) *ReconcileLoop {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileLoop{reconciler: reconciler, interval: interval, logger: logger}
}

// Start launches the loop in a background goroutine and returns a stop function
func (l *ReconcileLoop) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		l.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.RunOnce(ctx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// RunOnce executes a single reconcile pass
func (l *ReconcileLoop) RunOnce(ctx context.Context) {
	report, err := l.reconciler.Reconcile(ctx)
	reconciledTotal.WithLabelValues("timed_out").Add(float64(report.TimedOut))
	reconciledTotal.WithLabelValues("redispatched").Add(float64(report.Redispatched))
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Error("Reconcile pass failed", zap.Error(err))
		}
		return
	}
	if report.TimedOut > 0 || report.Redispatched > 0 {
		l.logger.Info("Reconcile pass repaired jobs",
			zap.Int("timed_out", report.TimedOut),
			zap.Int("redispatched", report.Redispatched),
		)
	}
}
