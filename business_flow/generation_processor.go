package businessflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/mailwright/app/prompts"
	"github.com/amirphl/mailwright/app/services"
	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/repository"
	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SamplingConfig holds the model parameters chosen per job family
type SamplingConfig struct {
	MaxTokens              int
	SubjectLineMaxTokens   int
	DefaultTemperature     float64
	SubjectLineTemperature float64
}

// For returns the temperature and output ceiling used for payload. Subject lines
// always use their fixed temperature; the other families honour the job's options.
func (c SamplingConfig) For(payload models.JobPayload) (float64, int) {
	switch p := payload.(type) {
	case *models.InitialGenerationPayload:
		return p.GenerationOptions.TemperatureOr(c.DefaultTemperature), c.MaxTokens
	case *models.RefinementPayload:
		if p.GenerationOptions != nil {
			return p.GenerationOptions.TemperatureOr(c.DefaultTemperature), c.MaxTokens
		}
		return c.DefaultTemperature, c.MaxTokens
	case *models.SubjectLinePayload:
		return c.SubjectLineTemperature, c.SubjectLineMaxTokens
	default:
		return c.DefaultTemperature, c.MaxTokens
	}
}

// ProcessResult describes what one worker execution did to a job
type ProcessResult struct {
	JobID      uuid.UUID
	JobType    models.JobType
	Status     models.JobStatus
	TokensUsed int
	// Recovered marks a completed job whose output was stored as a raw variant
	Recovered bool
	// Discarded marks a result dropped because the job left processing first
	Discarded bool
	// Skipped marks a delivery for a job that was no longer pending
	Skipped bool
	// Cause is the error behind a failed status
	Cause error
}

// GenerationProcessor executes generation jobs on the worker side
type GenerationProcessor interface {
	// Process runs one job to a terminal state. Job-level failures are written to
	// the job and reported through the result; only store errors are returned.
	Process(ctx context.Context, jobID uuid.UUID) (*ProcessResult, error)
}

// GenerationProcessorImpl implements GenerationProcessor
type GenerationProcessorImpl struct {
	jobRepo       repository.GenerationJobRepository
	generator     services.TextGenerator
	prompts       *prompts.Builder
	parser        *ResponseParser
	sampling      SamplingConfig
	softTimeLimit time.Duration
	logger        *zap.Logger
}

// NewGenerationProcessor creates a new generation processor
func NewGenerationProcessor(
	jobRepo repository.GenerationJobRepository,
	generator services.TextGenerator,
	promptBuilder *prompts.Builder,
	parser *ResponseParser,
	sampling SamplingConfig,
	softTimeLimit time.Duration,
	logger *zap.Logger,
) GenerationProcessor {
	return &GenerationProcessorImpl{
		jobRepo:       jobRepo,
		generator:     generator,
		prompts:       promptBuilder,
		parser:        parser,
		sampling:      sampling,
		softTimeLimit: softTimeLimit,
		logger:        logger,
	}
}

// Process claims a pending job, calls the model and stores the outcome
func (p *GenerationProcessorImpl) Process(ctx context.Context, jobID uuid.UUID) (result *ProcessResult, err error) {
	job, err := p.jobRepo.ByUUID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	log := p.logger.With(
		zap.String("job_id", jobID.String()),
		zap.String("job_type", job.JobType.String()),
		zap.Uint("campaign_id", job.CampaignID),
	)
	result = &ProcessResult{JobID: jobID, JobType: job.JobType, Status: job.Status}

	if job.Status != models.JobStatusPending {
		log.Info("Skipping job that is no longer pending", zap.String("status", job.Status.String()))
		result.Skipped = true
		return result, nil
	}

	claimed, err := p.jobRepo.MarkProcessing(ctx, job.ID, utils.UTCNow())
	if err != nil {
		return nil, fmt.Errorf("failed to claim job %s: %w", jobID, err)
	}
	if !claimed {
		log.Info("Job was claimed or cancelled before processing started")
		result.Skipped = true
		result.Status = p.currentStatus(ctx, job.ID, job.Status)
		return result, nil
	}
	result.Status = models.JobStatusProcessing

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while processing job", zap.Any("panic", r), zap.Stack("stack"))
			result.Cause = fmt.Errorf("internal error: %v", r)
			result, err = p.fail(ctx, job, result, log, result.Cause.Error())
		}
	}()

	outcome, generated, failure := p.generate(ctx, job, log)
	if failure != nil {
		if generated != nil {
			result.TokensUsed = generated.TotalTokens()
		}
		result.Cause = failure
		return p.fail(ctx, job, result, log, failure.Error())
	}

	completion := repository.JobCompletion{
		Content:         outcome.Content,
		AIModel:         generated.Model,
		TokensUsed:      generated.TotalTokens(),
		ConfidenceScore: outcome.Content.MeanConfidence(),
		CompletedAt:     utils.UTCNow(),
	}
	if completion.AIModel == "" {
		completion.AIModel = p.generator.Model()
	}
	result.TokensUsed = completion.TokensUsed
	result.Recovered = outcome.Recovered

	completed, err := p.jobRepo.MarkCompleted(context.WithoutCancel(ctx), job.ID, completion)
	if err != nil {
		return nil, fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	if !completed {
		result.Discarded = true
		result.Status = p.currentStatus(ctx, job.ID, models.JobStatusProcessing)
		log.Warn("Discarding result of job that left processing", zap.String("status", result.Status.String()))
		return result, nil
	}

	result.Status = models.JobStatusCompleted
	log.Info("Job completed",
		zap.Int("variants", len(outcome.Content.Variants)),
		zap.Int("tokens_used", completion.TokensUsed),
		zap.Float64("confidence_score", completion.ConfidenceScore),
		zap.Bool("raw_output", outcome.Recovered),
	)
	return result, nil
}

// generate builds the prompts, calls the model under the soft time limit and parses
// the answer. The returned error is the job's failure cause.
func (p *GenerationProcessorImpl) generate(ctx context.Context, job *models.GenerationJob, log *zap.Logger) (*ParseOutcome, *services.GenerationResult, error) {
	payload, err := job.Payload()
	if err != nil {
		return nil, nil, err
	}

	pair, err := p.prompts.Build(payload)
	if err != nil {
		return nil, nil, err
	}

	temperature, maxTokens := p.sampling.For(payload)

	callCtx := ctx
	if p.softTimeLimit > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.softTimeLimit)
		defer cancel()
	}

	started := time.Now()
	generated, err := p.generator.Generate(callCtx, services.GenerationRequest{
		SystemPrompt: pair.System,
		TaskPrompt:   pair.Task,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, ErrTimeLimit
		}
		log.Warn("Text generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, nil, NewUpstreamFailure(err)
	}

	log.Debug("Text generation finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("input_tokens", generated.InputTokens),
		zap.Int("output_tokens", generated.OutputTokens),
	)

	outcome, err := p.parser.Parse(job.JobType, generated.Text)
	if err != nil {
		return nil, generated, err
	}
	if outcome.Recovered {
		log.Warn("Model output had no usable variants, stored as raw variant")
	}
	return outcome, generated, nil
}

// fail writes message to the job. A job cancelled meanwhile keeps its status.
func (p *GenerationProcessorImpl) fail(ctx context.Context, job *models.GenerationJob, result *ProcessResult, log *zap.Logger, message string) (*ProcessResult, error) {
	failed, err := p.jobRepo.MarkFailed(context.WithoutCancel(ctx), job.ID, message, utils.UTCNow())
	if err != nil {
		return nil, fmt.Errorf("failed to record failure of job %s: %w", job.UUID, err)
	}
	if !failed {
		result.Discarded = true
		result.Status = p.currentStatus(ctx, job.ID, result.Status)
		log.Warn("Discarding failure of job that left processing",
			zap.String("status", result.Status.String()),
			zap.String("error_message", message),
		)
		return result, nil
	}

	result.Status = models.JobStatusFailed
	log.Warn("Job failed", zap.String("error_message", message))
	return result, nil
}

func (p *GenerationProcessorImpl) currentStatus(ctx context.Context, id uint, fallback models.JobStatus) models.JobStatus {
	job, err := p.jobRepo.ByID(context.WithoutCancel(ctx), id)
	if err != nil || job == nil {
		return fallback
	}
	return job.Status
}
