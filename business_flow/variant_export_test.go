package businessflow

import (
	"bytes"
	"testing"

	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func completedJob(content models.GeneratedContent) *models.GenerationJob {
	return &models.GenerationJob{
		ID:               1,
		UUID:             uuid.New(),
		JobType:          models.JobTypeOptimization,
		Status:           models.JobStatusCompleted,
		GeneratedContent: &content,
		AIModel:          utils.ToPtr("test-model"),
		TokensUsed:       utils.ToPtr(900),
		ConfidenceScore:  utils.ToPtr(0.88),
		CompletedAt:      utils.ToPtr(utils.UTCNow()),
	}
}

func TestBuildVariantWorkbook(t *testing.T) {
	job := completedJob(models.GeneratedContent{
		Variants: []models.Variant{{
			VariantID:        1,
			SubjectLine:      "Get Started Today",
			HTMLContent:      "<p>Hi</p>",
			PlainTextContent: "Hi",
			ConfidenceScore:  0.88,
		}},
		Changes: []models.OptimizationChange{
			{Section: "CTA", Change: "Stronger button copy", ExpectedImpact: "More clicks"},
		},
	})
	campaignUUID := uuid.NewString()

	export, err := BuildVariantWorkbook(job, campaignUUID)
	require.NoError(t, err)
	assert.Equal(t, "generation_"+job.UUID.String()+"_variants.xlsx", export.Filename)

	xl, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.Equal(t, []string{"variants", "changes", "job"}, xl.GetSheetList())

	rows, err := xl.GetRows("variants")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "subject_line", rows[0][1])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Get Started Today", rows[1][1])

	changes, err := xl.GetRows("changes")
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, []string{"CTA", "Stronger button copy", "More clicks"}, changes[1])

	meta, err := xl.GetRows("job")
	require.NoError(t, err)
	require.Len(t, meta, 7)
	assert.Equal(t, []string{"campaign_id", campaignUUID}, meta[1])
	assert.Equal(t, []string{"job_type", "optimization"}, meta[2])
}

func TestBuildVariantWorkbook_WithoutChanges(t *testing.T) {
	job := completedJob(completionWith(2).Content)

	export, err := BuildVariantWorkbook(job, uuid.NewString())
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.Equal(t, []string{"variants", "job"}, xl.GetSheetList())
	rows, err := xl.GetRows("variants")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Preview 2", rows[2][2])
}

func TestBuildVariantWorkbook_NotCompleted(t *testing.T) {
	for _, status := range []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing, models.JobStatusFailed, models.JobStatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			job := &models.GenerationJob{UUID: uuid.New(), Status: status}
			_, err := BuildVariantWorkbook(job, uuid.NewString())
			assert.True(t, IsJobNotCompleted(err))
		})
	}
}
