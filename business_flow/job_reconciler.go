package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/mailwright/app/queue"
	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/repository"
	"github.com/amirphl/mailwright/utils"
	"go.uber.org/zap"
)

// ReconcilerConfig bounds how long a job may sit in a non-terminal status
type ReconcilerConfig struct {
	HardTimeLimit     time.Duration
	ReconcileInterval time.Duration
	StalePendingAge   time.Duration
	Batch             int
}

// ReconcileReport counts the jobs touched by one reconcile pass
type ReconcileReport struct {
	TimedOut     int
	Redispatched int
}

// JobReconciler repairs jobs abandoned by a crashed worker or a lost enqueue
type JobReconciler interface {
	Reconcile(ctx context.Context) (ReconcileReport, error)
}

// JobReconcilerImpl implements JobReconciler
type JobReconcilerImpl struct {
	jobRepo    repository.GenerationJobRepository
	dispatcher queue.Dispatcher
	cfg        ReconcilerConfig
	logger     *zap.Logger
}

// NewJobReconciler creates a new job reconciler
func NewJobReconciler(
	jobRepo repository.GenerationJobRepository,
	dispatcher queue.Dispatcher,
	cfg ReconcilerConfig,
	logger *zap.Logger,
) JobReconciler {
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	return &JobReconcilerImpl{
		jobRepo:    jobRepo,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Reconcile fails processing jobs that outlived the hard time limit and re-enqueues
// pending jobs nobody picked up. Re-enqueueing is safe because only one worker
// can move a job out of pending.
func (r *JobReconcilerImpl) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	now := utils.UTCNow()

	stale, err := r.jobRepo.ListStaleProcessing(ctx, now.Add(-(r.cfg.HardTimeLimit + r.cfg.ReconcileInterval)), r.cfg.Batch)
	if err != nil {
		return report, err
	}
	for _, job := range stale {
		failed, err := r.jobRepo.MarkFailed(ctx, job.ID, ErrTimeLimit.Error(), now)
		if err != nil {
			return report, fmt.Errorf("failed to time out job %s: %w", job.UUID, err)
		}
		if failed {
			report.TimedOut++
			r.logger.Warn("Timed out abandoned job",
				zap.String("job_id", job.UUID.String()),
				zap.String("job_type", job.JobType.String()),
				zap.Uint("campaign_id", job.CampaignID),
				zap.Timep("started_at", job.StartedAt),
			)
		}
	}

	if r.cfg.StalePendingAge <= 0 || r.dispatcher == nil {
		return report, nil
	}

	pending, err := r.jobRepo.ListStalePending(ctx, now.Add(-r.cfg.StalePendingAge), r.cfg.Batch)
	if err != nil {
		return report, err
	}
	for _, job := range pending {
		if err := r.redispatch(ctx, job, now); err != nil {
			return report, err
		}
		report.Redispatched++
	}

	return report, nil
}

// redispatch re-enqueues the job and restarts its stale clock, so one message
// per StalePendingAge is the most a backlog ever gets.
func (r *JobReconcilerImpl) redispatch(ctx context.Context, job *models.GenerationJob, now time.Time) error {
	msg := queue.NewMessage(job.UUID, job.JobType.String())
	msg.Redelivery = true
	if err := r.dispatcher.Dispatch(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDispatchFailed, job.UUID, err)
	}
	if _, err := r.jobRepo.MarkRedispatched(ctx, job.ID, now); err != nil {
		return fmt.Errorf("failed to record re-dispatch of job %s: %w", job.UUID, err)
	}

	r.logger.Info("Re-dispatched stale pending job",
		zap.String("job_id", job.UUID.String()),
		zap.String("job_type", job.JobType.String()),
		zap.Time("created_at", job.CreatedAt),
	)
	return nil
}
