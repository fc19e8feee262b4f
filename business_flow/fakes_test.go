package businessflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amirphl/mailwright/app/queue"
	"github.com/amirphl/mailwright/config"
	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/repository"
	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNotImplemented = errors.New("not implemented in fake")

type fakeTransactor struct {
	calls int
	err   error
}

func (t *fakeTransactor) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

// fakeCampaignRepo stores campaigns by id
type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[uint]*models.Campaign
	nextID    uint
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[uint]*models.Campaign{}}
}

func (r *fakeCampaignRepo) add(c *models.Campaign) *models.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}
	r.campaigns[c.ID] = c
	return c
}

func (r *fakeCampaignRepo) copyOf(c *models.Campaign) *models.Campaign {
	cp := *c
	cp.Objectives = append([]models.CampaignObjective(nil), c.Objectives...)
	return &cp
}

func (r *fakeCampaignRepo) ByID(_ context.Context, id uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, nil
	}
	return r.copyOf(c), nil
}

func (r *fakeCampaignRepo) ByUUIDForOrganization(_ context.Context, id uuid.UUID, organizationID uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.campaigns {
		if c.UUID == id && c.OrganizationID == organizationID {
			return r.copyOf(c), nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) UpdateStatus(_ context.Context, id uint, status models.CampaignStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return errors.New("campaign not found")
	}
	c.Status = status
	return nil
}

func (r *fakeCampaignRepo) ByFilter(context.Context, models.CampaignFilter, string, int, int) ([]*models.Campaign, error) {
	return nil, errNotImplemented
}
func (r *fakeCampaignRepo) Save(_ context.Context, c *models.Campaign) error {
	r.add(c)
	return nil
}
func (r *fakeCampaignRepo) Count(context.Context, models.CampaignFilter) (int64, error) {
	return 0, errNotImplemented
}

// fakeProfileRepo stores one profile per organization
type fakeProfileRepo struct {
	profiles map[uint]*models.CompanyProfile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uint]*models.CompanyProfile{}}
}

func (r *fakeProfileRepo) ByOrganizationID(_ context.Context, organizationID uint) (*models.CompanyProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[organizationID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProfileRepo) ByID(context.Context, uint) (*models.CompanyProfile, error) {
	return nil, errNotImplemented
}
func (r *fakeProfileRepo) ByFilter(context.Context, models.CompanyProfileFilter, string, int, int) ([]*models.CompanyProfile, error) {
	return nil, errNotImplemented
}
func (r *fakeProfileRepo) Save(_ context.Context, p *models.CompanyProfile) error {
	r.profiles[p.OrganizationID] = p
	return nil
}
func (r *fakeProfileRepo) Count(context.Context, models.CompanyProfileFilter) (int64, error) {
	return 0, errNotImplemented
}

// fakeTemplateRepo stores templates by id
type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[uint]*models.EmailTemplate
	nextID    uint
	saveErr   error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[uint]*models.EmailTemplate{}}
}

func (r *fakeTemplateRepo) Save(_ context.Context, t *models.EmailTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, existing := range r.templates {
		if existing.CampaignID == t.CampaignID && existing.Version == t.Version {
			return errors.New("duplicate key value violates unique constraint uk_email_templates_campaign_version")
		}
	}
	r.nextID++
	t.ID = r.nextID
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) ByID(_ context.Context, id uint) (*models.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) ByUUIDForCampaign(_ context.Context, id uuid.UUID, campaignID uint) (*models.EmailTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.UUID == id && t.CampaignID == campaignID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) MaxVersion(_ context.Context, campaignID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := 0
	for _, t := range r.templates {
		if t.CampaignID == campaignID && t.Version > latest {
			latest = t.Version
		}
	}
	return latest, nil
}

func (r *fakeTemplateRepo) ByFilter(context.Context, models.EmailTemplateFilter, string, int, int) ([]*models.EmailTemplate, error) {
	return nil, errNotImplemented
}
func (r *fakeTemplateRepo) Count(_ context.Context, filter models.EmailTemplateFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.templates {
		if filter.CampaignID == nil || t.CampaignID == *filter.CampaignID {
			n++
		}
	}
	return n, nil
}

// fakeJobRepo mirrors the conditional transitions of the gorm job store
type fakeJobRepo struct {
	mu      sync.Mutex
	jobs    map[uint]*models.GenerationJob
	nextID  uint
	saveErr error
	// beforeComplete runs inside MarkCompleted before the status check
	beforeComplete func(id uint)
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uint]*models.GenerationJob{}}
}

func (r *fakeJobRepo) copyOf(j *models.GenerationJob) *models.GenerationJob {
	cp := *j
	cp.Context = j.Context.Clone()
	if j.GeneratedContent != nil {
		content := *j.GeneratedContent
		content.Variants = append([]models.Variant(nil), j.GeneratedContent.Variants...)
		cp.GeneratedContent = &content
	}
	return &cp
}

func (r *fakeJobRepo) Save(_ context.Context, j *models.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	j.ID = r.nextID
	if j.UUID == uuid.Nil {
		j.UUID = uuid.New()
	}
	if j.Status == "" {
		j.Status = models.JobStatusPending
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	r.jobs[j.ID] = r.copyOf(j)
	return nil
}

func (r *fakeJobRepo) get(id uint) *models.GenerationJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil
	}
	return r.copyOf(j)
}

func (r *fakeJobRepo) ByID(_ context.Context, id uint) (*models.GenerationJob, error) {
	return r.get(id), nil
}

func (r *fakeJobRepo) ByUUID(_ context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.UUID == id {
			return r.copyOf(j), nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) ByUUIDForCampaign(_ context.Context, id uuid.UUID, campaignID uint) (*models.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.UUID == id && j.CampaignID == campaignID {
			return r.copyOf(j), nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) byCampaign(campaignID uint) []*models.GenerationJob {
	var out []*models.GenerationJob
	for _, j := range r.jobs {
		if j.CampaignID == campaignID {
			out = append(out, r.copyOf(j))
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

func (r *fakeJobRepo) ListByCampaign(_ context.Context, campaignID uint, limit, offset int) ([]*models.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.byCampaign(campaignID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeJobRepo) CountByCampaign(_ context.Context, campaignID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byCampaign(campaignID))), nil
}

func (r *fakeJobRepo) transition(id uint, from []models.JobStatus, apply func(j *models.GenerationJob)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return false
	}
	for _, s := range from {
		if j.Status == s {
			apply(j)
			return true
		}
	}
	return false
}

func (r *fakeJobRepo) MarkProcessing(_ context.Context, id uint, startedAt time.Time) (bool, error) {
	return r.transition(id, []models.JobStatus{models.JobStatusPending}, func(j *models.GenerationJob) {
		j.Status = models.JobStatusProcessing
		j.StartedAt = &startedAt
	}), nil
}

func (r *fakeJobRepo) MarkCompleted(_ context.Context, id uint, c repository.JobCompletion) (bool, error) {
	if r.beforeComplete != nil {
		r.beforeComplete(id)
	}
	return r.transition(id, []models.JobStatus{models.JobStatusProcessing}, func(j *models.GenerationJob) {
		content := c.Content
		model := c.AIModel
		tokens := c.TokensUsed
		score := c.ConfidenceScore
		completedAt := c.CompletedAt
		j.Status = models.JobStatusCompleted
		j.GeneratedContent = &content
		j.AIModel = &model
		j.TokensUsed = &tokens
		j.ConfidenceScore = &score
		j.CompletedAt = &completedAt
	}), nil
}

func (r *fakeJobRepo) MarkFailed(_ context.Context, id uint, message string, failedAt time.Time) (bool, error) {
	return r.transition(id, []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing}, func(j *models.GenerationJob) {
		j.Status = models.JobStatusFailed
		j.ErrorMessage = &message
		if j.StartedAt == nil {
			j.StartedAt = &failedAt
		}
		j.CompletedAt = &failedAt
	}), nil
}

func (r *fakeJobRepo) Cancel(_ context.Context, id uint, cancelledAt time.Time) (bool, error) {
	return r.transition(id, []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing}, func(j *models.GenerationJob) {
		j.Status = models.JobStatusCancelled
		if j.StartedAt == nil {
			j.StartedAt = &cancelledAt
		}
		j.CompletedAt = &cancelledAt
	}), nil
}

func (r *fakeJobRepo) SetTemplate(_ context.Context, id uint, templateID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	j.TemplateID = &templateID
	return nil
}

func (r *fakeJobRepo) ListStaleProcessing(_ context.Context, startedBefore time.Time, limit int) ([]*models.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GenerationJob
	for _, j := range r.jobs {
		if j.Status == models.JobStatusProcessing && j.StartedAt != nil && j.StartedAt.Before(startedBefore) && len(out) < limit {
			out = append(out, r.copyOf(j))
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListStalePending(_ context.Context, idleSince time.Time, limit int) ([]*models.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GenerationJob
	for _, j := range r.jobs {
		touched := j.CreatedAt
		if j.UpdatedAt != nil {
			touched = *j.UpdatedAt
		}
		if j.Status == models.JobStatusPending && touched.Before(idleSince) && len(out) < limit {
			out = append(out, r.copyOf(j))
		}
	}
	return out, nil
}

func (r *fakeJobRepo) MarkRedispatched(_ context.Context, id uint, dispatchedAt time.Time) (bool, error) {
	return r.transition(id, []models.JobStatus{models.JobStatusPending}, func(j *models.GenerationJob) {
		j.UpdatedAt = &dispatchedAt
	}), nil
}

func (r *fakeJobRepo) ByFilter(context.Context, models.GenerationJobFilter, string, int, int) ([]*models.GenerationJob, error) {
	return nil, errNotImplemented
}
func (r *fakeJobRepo) Count(context.Context, models.GenerationJobFilter) (int64, error) {
	return 0, errNotImplemented
}

// fakeAuditRepo records audit entries
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *fakeAuditRepo) Save(_ context.Context, a *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func (r *fakeAuditRepo) ByID(context.Context, uint) (*models.AuditLog, error) {
	return nil, errNotImplemented
}
func (r *fakeAuditRepo) ByFilter(context.Context, models.AuditLogFilter, string, int, int) ([]*models.AuditLog, error) {
	return nil, errNotImplemented
}
func (r *fakeAuditRepo) Count(context.Context, models.AuditLogFilter) (int64, error) {
	return 0, errNotImplemented
}

// failingDispatcher always fails to enqueue
type failingDispatcher struct{}

func (failingDispatcher) Dispatch(context.Context, queue.Message) error {
	return errors.New("redis: connection refused")
}

// pipeline wires the flow and processor over the same fakes
type pipeline struct {
	campaigns *fakeCampaignRepo
	profiles  *fakeProfileRepo
	templates *fakeTemplateRepo
	jobs      *fakeJobRepo
	audits    *fakeAuditRepo
	tx        *fakeTransactor
	queue     *queue.MemoryQueue
	flow      GenerationFlow
	logger    *zap.Logger
}

func testSampling() SamplingConfig {
	return SamplingConfig{
		MaxTokens:              4000,
		SubjectLineMaxTokens:   2000,
		DefaultTemperature:     0.7,
		SubjectLineTemperature: 0.8,
	}
}

func testGenerationConfig() config.GenerationConfig {
	return config.DefaultGenerationConfig()
}

func newPipeline() *pipeline {
	p := &pipeline{
		campaigns: newFakeCampaignRepo(),
		profiles:  newFakeProfileRepo(),
		templates: newFakeTemplateRepo(),
		jobs:      newFakeJobRepo(),
		audits:    &fakeAuditRepo{},
		tx:        &fakeTransactor{},
		queue:     queue.NewMemoryQueue(64),
		logger:    zap.NewNop(),
	}
	p.flow = p.newFlow(p.queue)
	return p
}

func (p *pipeline) newFlow(dispatcher queue.Dispatcher) GenerationFlow {
	return NewGenerationFlow(
		NewContextAssembler(p.campaigns, p.profiles, p.templates),
		p.campaigns,
		p.templates,
		p.jobs,
		p.audits,
		p.tx,
		dispatcher,
		testSampling(),
		testGenerationConfig(),
		p.logger,
	)
}

// completionWith builds a completion carrying n variants
func completionWith(n int) repository.JobCompletion {
	content := models.GeneratedContent{}
	for i := 1; i <= n; i++ {
		content.Variants = append(content.Variants, models.Variant{
			VariantID:        i,
			SubjectLine:      fmt.Sprintf("Subject %d", i),
			PreviewText:      utils.ToPtr(fmt.Sprintf("Preview %d", i)),
			HTMLContent:      fmt.Sprintf("<p>Body %d</p>", i),
			PlainTextContent: fmt.Sprintf("Body %d", i),
			ConfidenceScore:  0.8,
			Reasoning:        utils.ToPtr(fmt.Sprintf("reason %d", i)),
		})
	}
	return repository.JobCompletion{
		Content:         content,
		AIModel:         "test-model",
		TokensUsed:      1200,
		ConfidenceScore: content.MeanConfidence(),
		CompletedAt:     time.Now().UTC(),
	}
}
