package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amirphl/mailwright/app/dto"
	"github.com/amirphl/mailwright/app/prompts"
	"github.com/amirphl/mailwright/app/queue"
	"github.com/amirphl/mailwright/config"
	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/repository"
	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationFlow handles the API side of the generation job pipeline
type GenerationFlow interface {
	CreateGenerationJob(ctx context.Context, req *dto.CreateGenerationJobRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error)
	RefineTemplate(ctx context.Context, req *dto.RefineTemplateRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error)
	OptimizeTemplate(ctx context.Context, req *dto.OptimizeTemplateRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error)
	GenerateSubjectLines(ctx context.Context, req *dto.SubjectLineVariantsRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error)
	GetGenerationJob(ctx context.Context, req *dto.GetGenerationJobRequest) (*dto.GenerationJobResponse, error)
	ListGenerationJobs(ctx context.Context, req *dto.ListGenerationJobsRequest) (*dto.ListGenerationJobsResponse, error)
	CancelGenerationJob(ctx context.Context, req *dto.GetGenerationJobRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error)
	CreateTemplateFromVariant(ctx context.Context, req *dto.CreateTemplateFromVariantRequest, metadata *ClientMetadata) (*dto.TemplateResponse, error)
	ExportVariants(ctx context.Context, req *dto.GetGenerationJobRequest) (*dto.VariantExport, error)
}

// GenerationFlowImpl implements the generation business flow
type GenerationFlowImpl struct {
	assembler    ContextAssembler
	campaignRepo repository.CampaignRepository
	templateRepo repository.EmailTemplateRepository
	jobRepo      repository.GenerationJobRepository
	auditRepo    repository.AuditLogRepository
	tx           repository.Transactor
	dispatcher   queue.Dispatcher
	sampling     SamplingConfig
	cfg          config.GenerationConfig
	logger       *zap.Logger
}

// NewGenerationFlow creates a new generation flow instance
func NewGenerationFlow(
	assembler ContextAssembler,
	campaignRepo repository.CampaignRepository,
	templateRepo repository.EmailTemplateRepository,
	jobRepo repository.GenerationJobRepository,
	auditRepo repository.AuditLogRepository,
	tx repository.Transactor,
	dispatcher queue.Dispatcher,
	sampling SamplingConfig,
	cfg config.GenerationConfig,
	logger *zap.Logger,
) GenerationFlow {
	return &GenerationFlowImpl{
		assembler:    assembler,
		campaignRepo: campaignRepo,
		templateRepo: templateRepo,
		jobRepo:      jobRepo,
		auditRepo:    auditRepo,
		tx:           tx,
		dispatcher:   dispatcher,
		sampling:     sampling,
		cfg:          cfg,
		logger:       logger,
	}
}

// pendingJob is everything needed to insert and dispatch a new job
type pendingJob struct {
	campaign   *models.Campaign
	template   *models.EmailTemplate
	userID     uint
	jobType    models.JobType
	userPrompt string
	context    models.JSONDocument
	estimate   int
}

// CreateGenerationJob creates an initial_generation (or revision / ab_variant) job
func (f *GenerationFlowImpl) CreateGenerationJob(ctx context.Context, req *dto.CreateGenerationJobRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error) {
	jobType := models.JobTypeInitialGeneration
	if req.JobType != "" {
		jobType = models.JobType(req.JobType)
	}
	if !jobType.IsGenerationFamily() {
		return nil, NewBusinessErrorf("INVALID_JOB_TYPE", "Job type %q cannot be created from a prompt", ErrInvalidJobType, req.JobType)
	}

	campaign, err := f.assembler.Campaign(ctx, req.CampaignID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	jobContext, err := f.assembler.GenerationContext(ctx, campaign, toGenerationOptions(req.GenerationOptions), req.UserPrompt, req.ContextOverride)
	if err != nil {
		return nil, NewBusinessError("CONTEXT_ASSEMBLY_FAILED", "Failed to assemble generation context", err)
	}

	return f.submit(ctx, pendingJob{
		campaign:   campaign,
		userID:     req.UserID,
		jobType:    jobType,
		userPrompt: req.UserPrompt,
		context:    jobContext,
		estimate:   f.cfg.EstimateGenerate,
	}, metadata)
}

// RefineTemplate creates a refinement job for an existing template of the campaign
func (f *GenerationFlowImpl) RefineTemplate(ctx context.Context, req *dto.RefineTemplateRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error) {
	campaign, err := f.assembler.Campaign(ctx, req.CampaignID, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	template, err := f.assembler.Template(ctx, req.TemplateID, campaign)
	if err != nil {
		return nil, err
	}

	var options *models.GenerationOptions
	if req.GenerationOptions != nil {
		opts := toGenerationOptions(req.GenerationOptions)
		options = &opts
	}

	jobContext, err := f.assembler.RefinementContext(ctx, campaign, template, req.RefinementInstructions, req.SectionsToChange, options)
	if err != nil {
		return nil, NewBusinessError("CONTEXT_ASSEMBLY_FAILED", "Failed to assemble refinement context", err)
	}

	return f.submit(ctx, pendingJob{
		campaign:   campaign,
		template:   template,
		userID:     req.UserID,
		jobType:    models.JobTypeRefinement,
		userPrompt: req.RefinementInstructions,
		context:    jobContext,
		estimate:   f.cfg.EstimateRefine,
	}, metadata)
}

// OptimizeTemplate creates an optimization job for an existing template of the campaign
func (f *GenerationFlowImpl) OptimizeTemplate(ctx context.Context, req *dto.OptimizeTemplateRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error) {
	goals := make([]string, 0, len(req.OptimizationGoals))
	for _, g := range req.OptimizationGoals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	if len(goals) == 0 {
		return nil, NewBusinessError("OPTIMIZATION_GOALS_REQUIRED", "At least one optimization goal is required", ErrOptimizationGoalEmpty)
	}

	campaign, err := f.assembler.Campaign(ctx, req.CampaignID, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	template, err := f.assembler.Template(ctx, req.TemplateID, campaign)
	if err != nil {
		return nil, err
	}

	jobContext, err := f.assembler.OptimizationContext(ctx, campaign, template, goals)
	if err != nil {
		return nil, NewBusinessError("CONTEXT_ASSEMBLY_FAILED", "Failed to assemble optimization context", err)
	}

	return f.submit(ctx, pendingJob{
		campaign:   campaign,
		template:   template,
		userID:     req.UserID,
		jobType:    models.JobTypeOptimization,
		userPrompt: "Optimize email for: " + strings.Join(goals, ", "),
		context:    jobContext,
		estimate:   f.cfg.EstimateOptimize,
	}, metadata)
}

// GenerateSubjectLines creates a subject_line_test job from a template or raw content
func (f *GenerationFlowImpl) GenerateSubjectLines(ctx context.Context, req *dto.SubjectLineVariantsRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error) {
	hasTemplate := req.TemplateID != nil && strings.TrimSpace(*req.TemplateID) != ""
	hasContent := req.EmailContent != nil && strings.TrimSpace(*req.EmailContent) != ""
	if !hasTemplate && !hasContent {
		return nil, NewBusinessError("EMAIL_CONTENT_REQUIRED", "Either template_id or email_content is required", ErrEmailContentRequired)
	}

	campaign, err := f.assembler.Campaign(ctx, req.CampaignID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	var (
		template *models.EmailTemplate
		content  string
	)
	if hasTemplate {
		template, err = f.assembler.Template(ctx, *req.TemplateID, campaign)
		if err != nil {
			return nil, err
		}
		content = template.HTMLContent
	} else {
		content = *req.EmailContent
	}

	count := req.Count
	if count <= 0 {
		count = f.cfg.DefaultSubjectLineSize
	}

	jobContext, err := f.assembler.SubjectLineContext(ctx, campaign, content, count, req.Style)
	if err != nil {
		return nil, NewBusinessError("CONTEXT_ASSEMBLY_FAILED", "Failed to assemble subject line context", err)
	}

	return f.submit(ctx, pendingJob{
		campaign:   campaign,
		template:   template,
		userID:     req.UserID,
		jobType:    models.JobTypeSubjectLineTest,
		userPrompt: fmt.Sprintf("Generate %d subject line variants", count),
		context:    jobContext,
		estimate:   f.cfg.EstimateSubjectLines,
	}, metadata)
}

// submit inserts the job and hands it to the dispatcher. The caller gets the
// pending job back even when the enqueue fails; the reconciler re-dispatches it.
func (f *GenerationFlowImpl) submit(ctx context.Context, p pendingJob, metadata *ClientMetadata) (*dto.GenerationJobResponse, error) {
	job := &models.GenerationJob{
		UUID:           uuid.New(),
		CampaignID:     p.campaign.ID,
		OrganizationID: p.campaign.OrganizationID,
		JobType:        p.jobType,
		Status:         models.JobStatusPending,
		UserPrompt:     p.userPrompt,
		Context:        p.context,
		CreatedAt:      utils.UTCNow(),
	}
	if p.userID != 0 {
		job.CreatedBy = utils.ToPtr(p.userID)
	}

	err := f.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := f.jobRepo.Save(txCtx, job); err != nil {
			return err
		}
		if p.jobType == models.JobTypeInitialGeneration && p.campaign.Status != models.CampaignStatusGenerating {
			if err := f.campaignRepo.UpdateStatus(txCtx, p.campaign.ID, models.CampaignStatusGenerating); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Generation job creation failed: %s", err.Error())
		_ = f.createAuditLog(ctx, p.userID, p.campaign.OrganizationID, models.AuditActionJobCreationFailed, errMsg, false, &errMsg, nil, metadata)
		return nil, NewBusinessError("JOB_CREATION_FAILED", "Failed to create generation job", err)
	}
	if p.jobType == models.JobTypeInitialGeneration {
		p.campaign.Status = models.CampaignStatusGenerating
	}

	msg := fmt.Sprintf("Generation job created: %s (%s)", job.UUID.String(), job.JobType)
	details := map[string]any{
		"job_id":      job.UUID.String(),
		"job_type":    job.JobType,
		"campaign_id": p.campaign.UUID.String(),
	}
	if p.template != nil {
		details["source_template_id"] = p.template.UUID.String()
	}
	_ = f.createAuditLog(ctx, p.userID, p.campaign.OrganizationID, models.AuditActionJobCreated, msg, true, nil, details, metadata)

	f.dispatch(ctx, job)

	// template_id stays empty until a variant is materialized; the source
	// template travels in the payload.
	resp := ToGenerationJobResponse(job, p.campaign.UUID.String(), nil)
	resp.EstimatedCompletionSeconds = utils.ToPtr(p.estimate)
	return &resp, nil
}

// dispatch enqueues the job id. Failures are logged; the job stays pending.
func (f *GenerationFlowImpl) dispatch(ctx context.Context, job *models.GenerationJob) {
	if f.dispatcher == nil {
		return
	}
	if err := f.dispatcher.Dispatch(ctx, queue.NewMessage(job.UUID, job.JobType.String())); err != nil {
		f.logger.Error("Failed to dispatch generation job",
			zap.String("job_id", job.UUID.String()),
			zap.String("job_type", job.JobType.String()),
			zap.Error(err),
		)
		return
	}
	f.logger.Debug("Dispatched generation job",
		zap.String("job_id", job.UUID.String()),
		zap.String("job_type", job.JobType.String()),
	)
}

// GetGenerationJob returns one job of a campaign owned by the caller's organization
func (f *GenerationFlowImpl) GetGenerationJob(ctx context.Context, req *dto.GetGenerationJobRequest) (*dto.GenerationJobResponse, error) {
	campaign, job, err := f.loadJob(ctx, req)
	if err != nil {
		return nil, err
	}

	templateUUID, err := f.templateUUID(ctx, job)
	if err != nil {
		return nil, err
	}
	resp := ToGenerationJobResponse(job, campaign.UUID.String(), templateUUID)
	return &resp, nil
}

// ListGenerationJobs lists a campaign's jobs newest first
func (f *GenerationFlowImpl) ListGenerationJobs(ctx context.Context, req *dto.ListGenerationJobsRequest) (*dto.ListGenerationJobsResponse, error) {
	campaign, err := f.assembler.Campaign(ctx, req.CampaignID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage < 1 {
		perPage = f.cfg.DefaultPerPage
	}
	if f.cfg.MaxPerPage > 0 && perPage > f.cfg.MaxPerPage {
		perPage = f.cfg.MaxPerPage
	}

	total, err := f.jobRepo.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("LIST_JOBS_FAILED", "Failed to count generation jobs", err)
	}
	jobs, err := f.jobRepo.ListByCampaign(ctx, campaign.ID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, NewBusinessError("LIST_JOBS_FAILED", "Failed to list generation jobs", err)
	}

	resp := &dto.ListGenerationJobsResponse{
		Jobs:    make([]dto.GenerationJobResponse, 0, len(jobs)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   utils.TotalPages(total, perPage),
	}
	for _, job := range jobs {
		templateUUID, err := f.templateUUID(ctx, job)
		if err != nil {
			return nil, err
		}
		resp.Jobs = append(resp.Jobs, ToGenerationJobResponse(job, campaign.UUID.String(), templateUUID))
	}
	return resp, nil
}

// CancelGenerationJob cancels a pending or processing job. An in-flight model call
// is not interrupted; its result is discarded when it arrives.
func (f *GenerationFlowImpl) CancelGenerationJob(ctx context.Context, req *dto.GetGenerationJobRequest, metadata *ClientMetadata) (*dto.GenerationJobResponse, error) {
	campaign, job, err := f.loadJob(ctx, req)
	if err != nil {
		return nil, err
	}

	if !job.IsCancellable() {
		return nil, NewInvalidStateError(job.Status, models.JobStatusCancelled)
	}

	cancelled, err := f.jobRepo.Cancel(ctx, job.ID, utils.UTCNow())
	if err != nil {
		return nil, NewBusinessError("JOB_CANCEL_FAILED", "Failed to cancel generation job", err)
	}

	current, err := f.jobRepo.ByID(ctx, job.ID)
	if err != nil {
		return nil, NewBusinessError("JOB_CANCEL_FAILED", "Failed to reload generation job", err)
	}
	if current == nil {
		return nil, ErrJobNotFound
	}
	if !cancelled {
		return nil, NewInvalidStateError(current.Status, models.JobStatusCancelled)
	}

	msg := fmt.Sprintf("Generation job cancelled: %s (was %s)", job.UUID.String(), job.Status)
	_ = f.createAuditLog(ctx, req.UserID, campaign.OrganizationID, models.AuditActionJobCancelled, msg, true, nil, map[string]any{
		"job_id":          job.UUID.String(),
		"previous_status": job.Status,
	}, metadata)

	templateUUID, err := f.templateUUID(ctx, current)
	if err != nil {
		return nil, err
	}
	resp := ToGenerationJobResponse(current, campaign.UUID.String(), templateUUID)
	return &resp, nil
}

// CreateTemplateFromVariant materializes one variant of a completed job as the next
// template version of the campaign. The new template is never made current.
func (f *GenerationFlowImpl) CreateTemplateFromVariant(ctx context.Context, req *dto.CreateTemplateFromVariantRequest, metadata *ClientMetadata) (*dto.TemplateResponse, error) {
	if req.VariantID < 1 {
		return nil, NewBusinessError("INVALID_VARIANT_ID", "Invalid variant id", ErrInvalidVariantID)
	}

	campaign, job, err := f.loadJob(ctx, &dto.GetGenerationJobRequest{
		CampaignID:     req.CampaignID,
		JobID:          req.JobID,
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusCompleted {
		return nil, ErrJobNotCompleted
	}
	variant, ok := job.GeneratedContent.FindVariant(req.VariantID)
	if !ok {
		return nil, ErrVariantNotFound
	}

	template := &models.EmailTemplate{
		UUID:             uuid.New(),
		CampaignID:       campaign.ID,
		OrganizationID:   campaign.OrganizationID,
		IsCurrent:        false,
		SubjectLine:      variant.SubjectLine,
		PreviewText:      variant.PreviewText,
		HTMLContent:      variant.HTMLContent,
		PlainTextContent: variant.PlainTextContent,
		GeneratedBy:      models.GeneratedByAI,
		AIModelUsed:      job.AIModel,
		GenerationPrompt: utils.ToPtr(job.UserPrompt),
		AIMetadata:       f.provenance(job, variant),
		Status:           models.TemplateStatusDraft,
		CreatedAt:        utils.UTCNow(),
	}
	if req.UserID != 0 {
		template.CreatedBy = utils.ToPtr(req.UserID)
	}

	err = f.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		latest, err := f.templateRepo.MaxVersion(txCtx, campaign.ID)
		if err != nil {
			return err
		}
		template.Version = latest + 1

		if err := f.templateRepo.Save(txCtx, template); err != nil {
			return err
		}
		return f.jobRepo.SetTemplate(txCtx, job.ID, template.ID)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Template materialization failed: %s", err.Error())
		_ = f.createAuditLog(ctx, req.UserID, campaign.OrganizationID, models.AuditActionTemplateMaterialized, errMsg, false, &errMsg, nil, metadata)
		return nil, NewBusinessError("TEMPLATE_CREATION_FAILED", "Failed to create template from variant", err)
	}

	msg := fmt.Sprintf("Template %s v%d created from job %s variant %d", template.UUID.String(), template.Version, job.UUID.String(), variant.VariantID)
	_ = f.createAuditLog(ctx, req.UserID, campaign.OrganizationID, models.AuditActionTemplateMaterialized, msg, true, nil, map[string]any{
		"template_id": template.UUID.String(),
		"job_id":      job.UUID.String(),
		"variant_id":  variant.VariantID,
		"version":     template.Version,
	}, metadata)

	resp := ToTemplateResponse(template, campaign.UUID.String(), job.UUID.String(), variant.VariantID)
	return &resp, nil
}

// ExportVariants renders a completed job's variants as an xlsx workbook
func (f *GenerationFlowImpl) ExportVariants(ctx context.Context, req *dto.GetGenerationJobRequest) (*dto.VariantExport, error) {
	campaign, job, err := f.loadJob(ctx, req)
	if err != nil {
		return nil, err
	}
	return BuildVariantWorkbook(job, campaign.UUID.String())
}

// provenance is the ai_metadata stored on a materialized template
func (f *GenerationFlowImpl) provenance(job *models.GenerationJob, variant *models.Variant) models.JSONDocument {
	meta := models.JSONDocument{
		"job_id":           job.UUID.String(),
		"job_type":         job.JobType.String(),
		"variant_id":       variant.VariantID,
		"confidence_score": variant.ConfidenceScore,
	}
	if variant.Reasoning != nil {
		meta["reasoning"] = *variant.Reasoning
	}
	if job.TokensUsed != nil {
		meta["tokens_used"] = *job.TokensUsed
	}
	if payload, err := job.Payload(); err == nil {
		temperature, _ := f.sampling.For(payload)
		meta["temperature"] = temperature
	}
	return meta
}

// loadJob resolves the campaign within the organization and then the job within the campaign
func (f *GenerationFlowImpl) loadJob(ctx context.Context, req *dto.GetGenerationJobRequest) (*models.Campaign, *models.GenerationJob, error) {
	campaign, err := f.assembler.Campaign(ctx, req.CampaignID, req.OrganizationID)
	if err != nil {
		return nil, nil, err
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, nil, NewBusinessError("INVALID_JOB_ID", "Invalid job id", ErrInvalidIdentifier)
	}

	job, err := f.jobRepo.ByUUIDForCampaign(ctx, jobID, campaign.ID)
	if err != nil {
		return nil, nil, NewBusinessError("JOB_LOOKUP_FAILED", "Failed to load generation job", err)
	}
	if job == nil {
		return nil, nil, ErrJobNotFound
	}
	return campaign, job, nil
}

func (f *GenerationFlowImpl) templateUUID(ctx context.Context, job *models.GenerationJob) (*string, error) {
	if job.TemplateID == nil {
		return nil, nil
	}
	template, err := f.templateRepo.ByID(ctx, *job.TemplateID)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "Failed to load job template", err)
	}
	if template == nil {
		return nil, nil
	}
	return utils.ToPtr(template.UUID.String()), nil
}

// createAuditLog creates an audit log entry for a generation operation
func (f *GenerationFlowImpl) createAuditLog(ctx context.Context, userID, organizationID uint, action, description string, success bool, errorMsg *string, details map[string]any, metadata *ClientMetadata) error {
	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}
	if userID != 0 {
		audit.UserID = utils.ToPtr(userID)
	}
	if organizationID != 0 {
		audit.OrganizationID = utils.ToPtr(organizationID)
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			audit.Metadata = raw
		}
	}

	// Extract request ID from context if available
	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}
	if audit.RequestID == nil && metadata != nil && metadata.RequestID != "" {
		audit.RequestID = utils.ToPtr(metadata.RequestID)
	}

	if err := f.auditRepo.Save(ctx, audit); err != nil {
		f.logger.Warn("Failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}

	return nil
}

// NewPromptBuilder returns the prompt builder configured for the generation constants
func NewPromptBuilder(cfg config.GenerationConfig) *prompts.Builder {
	return prompts.NewBuilder(cfg.SubjectLineContentCap)
}

// NewConfiguredResponseParser returns a parser using the configured fallback scores
func NewConfiguredResponseParser(cfg config.GenerationConfig) *ResponseParser {
	return NewResponseParser(ConfidenceDefaults{
		Generation:  cfg.GenerationConfidence,
		Refinement:  cfg.RefinementConfidence,
		SubjectLine: cfg.SubjectLineConfidence,
		RawFallback: cfg.RawFallbackConfidence,
	})
}
