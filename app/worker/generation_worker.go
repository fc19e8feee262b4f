// Package worker runs generation jobs pulled from the dispatcher queue
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/amirphl/mailwright/app/queue"
	businessflow "github.com/amirphl/mailwright/business_flow"
	"github.com/amirphl/mailwright/models"
	"go.uber.org/zap"
)

// Config sizes the worker pool
type Config struct {
	Concurrency    int
	DequeueTimeout time.Duration
	HardTimeLimit  time.Duration
	// RetryBackoff is the pause after a failed dequeue
	RetryBackoff time.Duration
}

// Pool is a fixed set of goroutines pulling job ids from the queue. Jobs are
// claimed through the job store, so any number of pools may share one queue.
type Pool struct {
	consumer  queue.Consumer
	processor businessflow.GenerationProcessor
	cfg       Config
	logger    *zap.Logger

	wg sync.WaitGroup
}

// NewPool creates a worker pool
func NewPool(consumer queue.Consumer, processor businessflow.GenerationProcessor, cfg Config, logger *zap.Logger) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		consumer:  consumer,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start launches the workers and returns a stop function. Stop ends dequeueing
// and blocks until the jobs already taken have been written back.
func (p *Pool) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	p.logger.Info("Starting generation workers",
		zap.Int("concurrency", p.cfg.Concurrency),
		zap.Duration("hard_time_limit", p.cfg.HardTimeLimit),
	)
	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go func(slot int) {
			defer p.wg.Done()
			p.run(ctx, p.logger.With(zap.Int("slot", slot)))
		}(i)
	}

	return func() {
		cancel()
		p.wg.Wait()
		p.logger.Info("Generation workers stopped")
	}
}

func (p *Pool) run(ctx context.Context, log *zap.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		msg, err := p.consumer.Dequeue(ctx, p.cfg.DequeueTimeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrQueueClosed) {
				return
			}
			log.Warn("Dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.cfg.RetryBackoff):
			}
			continue
		}
		if msg == nil {
			continue
		}

		p.Handle(ctx, *msg)
	}
}

// Handle executes one queue message. The job keeps running after ctx is
// cancelled, bounded only by the hard time limit.
func (p *Pool) Handle(ctx context.Context, msg queue.Message) {
	jobCtx := context.WithoutCancel(ctx)
	if p.cfg.HardTimeLimit > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, p.cfg.HardTimeLimit)
		defer cancel()
	}

	log := p.logger.With(
		zap.String("job_id", msg.JobID.String()),
		zap.String("job_type", msg.JobType),
		zap.String("message_id", msg.MessageID),
	)

	jobsInFlight.Inc()
	started := time.Now()
	defer func() {
		jobsInFlight.Dec()
		jobDuration.WithLabelValues(msg.JobType).Observe(time.Since(started).Seconds())
		if r := recover(); r != nil {
			jobsProcessedTotal.WithLabelValues(msg.JobType, "panic").Inc()
			log.Error("Worker recovered from panic", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	result, err := p.processor.Process(jobCtx, msg.JobID)
	if err != nil {
		if businessflow.IsJobNotFound(err) {
			log.Warn("Dropping message for unknown job")
			jobsProcessedTotal.WithLabelValues(msg.JobType, "unknown").Inc()
			return
		}
		// the job stays in its current status; the reconciler picks it up
		log.Error("Job store unavailable while processing job", zap.Error(err))
		jobsProcessedTotal.WithLabelValues(msg.JobType, "error").Inc()
		return
	}

	jobType := result.JobType.String()
	jobsProcessedTotal.WithLabelValues(jobType, outcomeLabel(result.Status.String(), result.Discarded, result.Skipped)).Inc()
	if result.TokensUsed > 0 {
		jobTokensTotal.WithLabelValues(jobType).Add(float64(result.TokensUsed))
	}
	if result.Status == models.JobStatusFailed && !result.Discarded {
		jobFailuresTotal.WithLabelValues(jobType, businessflow.FailureCause(result.Cause)).Inc()
	}
	log.Debug("Message handled",
		zap.String("status", result.Status.String()),
		zap.Bool("redelivery", msg.Redelivery),
		zap.Duration("elapsed", time.Since(started)),
	)
}
