package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/amirphl/mailwright/app/dto"
	"github.com/amirphl/mailwright/app/middleware"
	businessflow "github.com/amirphl/mailwright/business_flow"
	"github.com/amirphl/mailwright/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GenerationHandlerInterface defines the contract for generation handlers
type GenerationHandlerInterface interface {
	CreateGenerationJob(c fiber.Ctx) error
	ListGenerationJobs(c fiber.Ctx) error
	GetGenerationJob(c fiber.Ctx) error
	CancelGenerationJob(c fiber.Ctx) error
	CreateTemplateFromVariant(c fiber.Ctx) error
	ExportVariants(c fiber.Ctx) error
	RefineTemplate(c fiber.Ctx) error
	OptimizeTemplate(c fiber.Ctx) error
	GenerateSubjectLines(c fiber.Ctx) error
}

// GenerationHandler handles AI generation HTTP requests
type GenerationHandler struct {
	generationFlow businessflow.GenerationFlow
	validator      *validator.Validate
	logger         *zap.Logger
	requestTimeout time.Duration
}

func (h *GenerationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.NewErrorResponse(message, errorCode, details))
}

func (h *GenerationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(generationFlow businessflow.GenerationFlow, logger *zap.Logger) *GenerationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationHandler{
		generationFlow: generationFlow,
		validator:      validator.New(),
		logger:         logger,
		requestTimeout: utils.DefaultRequestTimeout,
	}
}

// CreateGenerationJob queues an email generation job for a campaign
// @Summary Generate Email Content
// @Description Queue an AI job that generates one or more email variants for the campaign
// @Tags Generation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param request body dto.CreateGenerationJobRequest true "Generation instructions"
// @Success 202 {object} dto.APIResponse{data=dto.GenerationJobResponse} "Job accepted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{campaign_id}/generate [post]
func (h *GenerationHandler) CreateGenerationJob(c fiber.Ctx) error {
	var req dto.CreateGenerationJobRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validate(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return h.authenticationRequired(c)
	}
	req.CampaignID = c.Params("campaign_id")
	req.UserID = identity.UserID
	req.OrganizationID = identity.OrganizationID

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.CreateGenerationJob(ctx, &req, h.metadata(c))
	if err != nil {
		return h.flowError(c, err, "Generation job creation failed", "JOB_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusAccepted, "Generation job queued", result)
}

// ListGenerationJobs lists the generation jobs of a campaign, newest first
// @Summary List Generation Jobs
// @Tags Generation
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListGenerationJobsResponse} "Jobs retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{campaign_id}/generate [get]
func (h *GenerationHandler) ListGenerationJobs(c fiber.Ctx) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return h.authenticationRequired(c)
	}

	req := dto.ListGenerationJobsRequest{
		CampaignID:     c.Params("campaign_id"),
		UserID:         identity.UserID,
		OrganizationID: identity.OrganizationID,
	}
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "page must be an integer", "INVALID_PAGE", nil)
		}
		req.Page = page
	}
	if v := c.Query("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "per_page must be an integer", "INVALID_PER_PAGE", nil)
		}
		req.PerPage = perPage
	}
	if errs := h.validate(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.ListGenerationJobs(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Failed to list generation jobs", "JOB_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Generation jobs retrieved successfully", result)
}

// GetGenerationJob returns one generation job
// @Summary Get Generation Job
// @Tags Generation
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param job_id path string true "Job UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GenerationJobResponse} "Job retrieved"
// @Failure 404 {object} dto.APIResponse "Campaign or job not found"
// @Router /api/v1/campaigns/{campaign_id}/generate/{job_id} [get]
func (h *GenerationHandler) GetGenerationJob(c fiber.Ctx) error {
	req, ok := h.jobRequest(c)
	if !ok {
		return h.authenticationRequired(c)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.GetGenerationJob(ctx, req)
	if err != nil {
		return h.flowError(c, err, "Failed to get generation job", "JOB_LOOKUP_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Generation job retrieved successfully", result)
}

// CancelGenerationJob cancels a pending or processing job
// @Summary Cancel Generation Job
// @Tags Generation
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param job_id path string true "Job UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GenerationJobResponse} "Job cancelled"
// @Failure 400 {object} dto.APIResponse "Job already finished"
// @Failure 404 {object} dto.APIResponse "Campaign or job not found"
// @Router /api/v1/campaigns/{campaign_id}/generate/{job_id}/cancel [post]
func (h *GenerationHandler) CancelGenerationJob(c fiber.Ctx) error {
	req, ok := h.jobRequest(c)
	if !ok {
		return h.authenticationRequired(c)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.CancelGenerationJob(ctx, req, h.metadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to cancel generation job", "JOB_CANCEL_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Generation job cancelled", result)
}

// CreateTemplateFromVariant saves a generated variant as the campaign's next template version
// @Summary Create Template From Variant
// @Tags Generation
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param job_id path string true "Job UUID"
// @Param variant_id query int true "Variant number"
// @Success 201 {object} dto.APIResponse{data=dto.TemplateResponse} "Template created"
// @Failure 400 {object} dto.APIResponse "Invalid variant id"
// @Failure 404 {object} dto.APIResponse "Campaign, job or variant not found, or job not completed"
// @Router /api/v1/campaigns/{campaign_id}/generate/{job_id}/create-template [post]
func (h *GenerationHandler) CreateTemplateFromVariant(c fiber.Ctx) error {
	jobReq, ok := h.jobRequest(c)
	if !ok {
		return h.authenticationRequired(c)
	}

	variantID, err := strconv.Atoi(c.Query("variant_id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "variant_id must be an integer", "INVALID_VARIANT_ID", nil)
	}

	req := dto.CreateTemplateFromVariantRequest{
		CampaignID:     jobReq.CampaignID,
		JobID:          jobReq.JobID,
		UserID:         jobReq.UserID,
		OrganizationID: jobReq.OrganizationID,
		VariantID:      variantID,
	}
	if errs := h.validate(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.CreateTemplateFromVariant(ctx, &req, h.metadata(c))
	if err != nil {
		return h.flowError(c, err, "Failed to create template", "TEMPLATE_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Template created successfully", result)
}

// ExportVariants downloads the variants of a completed job as an Excel workbook
// @Summary Export Variants
// @Tags Generation
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param job_id path string true "Job UUID"
// @Success 200 {file} file "xlsx workbook"
// @Failure 404 {object} dto.APIResponse "Campaign or job not found, or job not completed"
// @Router /api/v1/campaigns/{campaign_id}/generate/{job_id}/export [get]
func (h *GenerationHandler) ExportVariants(c fiber.Ctx) error {
	req, ok := h.jobRequest(c)
	if !ok {
		return h.authenticationRequired(c)
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	export, err := h.generationFlow.ExportVariants(ctx, req)
	if err != nil {
		return h.flowError(c, err, "Failed to generate Excel", "DOWNLOAD_FAILED")
	}

	c.Set("Content-Type", xlsxContentType)
	c.Set("Content-Disposition", "attachment; filename="+export.Filename)
	return c.Send(export.Content)
}

// RefineTemplate queues a refinement of an existing template
// @Summary Refine Template
// @Tags Generation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param template_id path string true "Template UUID"
// @Param request body dto.RefineTemplateRequest true "Refinement instructions"
// @Success 202 {object} dto.APIResponse{data=dto.GenerationJobResponse} "Job accepted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Campaign or template not found"
// @Router /api/v1/campaigns/{campaign_id}/templates/{template_id}/refine [post]
func (h *GenerationHandler) RefineTemplate(c fiber.Ctx) error {
	var req dto.RefineTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validate(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return h.authenticationRequired(c)
	}
	req.CampaignID = c.Params("campaign_id")
	req.TemplateID = c.Params("template_id")
	req.UserID = identity.UserID
	req.OrganizationID = identity.OrganizationID

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.RefineTemplate(ctx, &req, h.metadata(c))
	if err != nil {
		return h.flowError(c, err, "Refinement job creation failed", "JOB_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusAccepted, "Refinement job queued", result)
}

// OptimizeTemplate queues an optimization of an existing template
// @Summary Optimize Template
// @Tags Generation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param template_id path string true "Template UUID"
// @Param request body dto.OptimizeTemplateRequest true "Optimization goals"
// @Success 202 {object} dto.APIResponse{data=dto.GenerationJobResponse} "Job accepted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Campaign or template not found"
// @Router /api/v1/campaigns/{campaign_id}/templates/{template_id}/optimize [post]
func (h *GenerationHandler) OptimizeTemplate(c fiber.Ctx) error {
	var req dto.OptimizeTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validate(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return h.authenticationRequired(c)
	}
	req.CampaignID = c.Params("campaign_id")
	req.TemplateID = c.Params("template_id")
	req.UserID = identity.UserID
	req.OrganizationID = identity.OrganizationID

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.OptimizeTemplate(ctx, &req, h.metadata(c))
	if err != nil {
		return h.flowError(c, err, "Optimization job creation failed", "JOB_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusAccepted, "Optimization job queued", result)
}

// GenerateSubjectLines queues a subject line test
// @Summary Generate Subject Lines
// @Tags Generation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param campaign_id path string true "Campaign UUID"
// @Param request body dto.SubjectLineVariantsRequest true "Subject line source and count"
// @Success 202 {object} dto.APIResponse{data=dto.GenerationJobResponse} "Job accepted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Campaign or template not found"
// @Router /api/v1/campaigns/{campaign_id}/subject-lines [post]
func (h *GenerationHandler) GenerateSubjectLines(c fiber.Ctx) error {
	var req dto.SubjectLineVariantsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if errs := h.validate(&req); errs != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errs)
	}

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return h.authenticationRequired(c)
	}
	req.CampaignID = c.Params("campaign_id")
	req.UserID = identity.UserID
	req.OrganizationID = identity.OrganizationID

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.generationFlow.GenerateSubjectLines(ctx, &req, h.metadata(c))
	if err != nil {
		return h.flowError(c, err, "Subject line job creation failed", "JOB_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusAccepted, "Subject line job queued", result)
}

// jobRequest builds the job address from path params and the caller identity
func (h *GenerationHandler) jobRequest(c fiber.Ctx) (*dto.GetGenerationJobRequest, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return nil, false
	}
	return &dto.GetGenerationJobRequest{
		CampaignID:     c.Params("campaign_id"),
		JobID:          c.Params("job_id"),
		UserID:         identity.UserID,
		OrganizationID: identity.OrganizationID,
	}, true
}

func (h *GenerationHandler) authenticationRequired(c fiber.Ctx) error {
	return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
}

// validate returns the readable validation messages, or nil
func (h *GenerationHandler) validate(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors []string
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			validationErrors = append(validationErrors, getValidationErrorMessage(fe))
		}
		return validationErrors
	}
	return []string{err.Error()}
}

// flowError maps business errors onto the API error taxonomy
func (h *GenerationHandler) flowError(c fiber.Ctx, err error, message, code string) error {
	if ise, ok := businessflow.AsInvalidState(err); ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Cannot cancel job with status "+ise.Current.String(), "INVALID_JOB_STATE", fiber.Map{
			"current_status":   ise.Current,
			"attempted_status": ise.Attempted,
		})
	}

	switch {
	case businessflow.IsCampaignNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	case businessflow.IsTemplateNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
	case businessflow.IsJobNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Generation job not found", "JOB_NOT_FOUND", nil)
	case businessflow.IsJobNotCompleted(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Generation job is not completed", "JOB_NOT_COMPLETED", nil)
	case businessflow.IsVariantNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Variant not found", "VARIANT_NOT_FOUND", nil)
	case businessflow.IsValidation(err):
		bizCode := businessflow.BusinessCode(err)
		if bizCode == "" {
			bizCode = "VALIDATION_ERROR"
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, validationMessage(err), bizCode, nil)
	}

	h.logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Path()),
		zap.String("request_id", requestID(c)),
	)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}

func validationMessage(err error) string {
	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return err.Error()
}

func (h *GenerationHandler) metadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))
	metadata.AddAdditional("endpoint", c.Path())
	return metadata
}

func requestID(c fiber.Ctx) string {
	if id := requestid.FromContext(c); id != "" {
		return id
	}
	return c.Get("X-Request-ID")
}

// createRequestContext detaches the flow from the fasthttp request and carries the
// request-scoped values used by audit logging
func (h *GenerationHandler) createRequestContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, c.Path())
	ctx = context.WithValue(ctx, utils.TimeoutKey, h.requestTimeout)

	return ctx, cancel
}
