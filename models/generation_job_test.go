package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from JobStatus
		to   JobStatus
		want bool
	}{
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusPending, JobStatusCancelled, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusProcessing, JobStatusCancelled, true},
		{JobStatusProcessing, JobStatusPending, false},
		{JobStatusCompleted, JobStatusCancelled, false},
		{JobStatusFailed, JobStatusProcessing, false},
		{JobStatusCancelled, JobStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusProcessing.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
}

func TestJobStatus_ScanValue(t *testing.T) {
	var s JobStatus
	require.NoError(t, s.Scan([]byte("processing")))
	assert.Equal(t, JobStatusProcessing, s)

	_, err := JobStatus("bogus").Value()
	assert.Error(t, err)

	v, err := JobStatusCompleted.Value()
	require.NoError(t, err)
	assert.Equal(t, "completed", v)
}

func TestJobType_Valid(t *testing.T) {
	for _, jt := range []JobType{
		JobTypeInitialGeneration, JobTypeRevision, JobTypeRefinement,
		JobTypeABVariant, JobTypeSubjectLineTest, JobTypeOptimization,
	} {
		assert.True(t, jt.Valid(), jt)
	}
	assert.False(t, JobType("translation").Valid())
	assert.True(t, JobTypeRevision.IsGenerationFamily())
	assert.False(t, JobTypeRefinement.IsGenerationFamily())
}

func TestGeneratedContent_MeanConfidenceAndFind(t *testing.T) {
	content := &GeneratedContent{Variants: []Variant{
		{VariantID: 1, SubjectLine: "a", ConfidenceScore: 0.9},
		{VariantID: 2, SubjectLine: "b", ConfidenceScore: 0.7},
		{VariantID: 3, SubjectLine: "c", ConfidenceScore: 0.5},
	}}

	assert.InDelta(t, 0.7, content.MeanConfidence(), 1e-9)

	v, ok := content.FindVariant(2)
	require.True(t, ok)
	assert.Equal(t, "b", v.SubjectLine)

	_, ok = content.FindVariant(4)
	assert.False(t, ok)

	var empty *GeneratedContent
	assert.Zero(t, empty.MeanConfidence())
}

func TestGeneratedContent_Scan(t *testing.T) {
	var g GeneratedContent
	require.NoError(t, g.Scan(`{"variants":[{"variant_id":1,"subject_line":"Hi","confidence_score":0.8}]}`))
	require.Len(t, g.Variants, 1)
	assert.Equal(t, "Hi", g.Variants[0].SubjectLine)

	assert.Error(t, g.Scan(42))
}

func TestGenerationOptions_WithDefaults(t *testing.T) {
	opts := GenerationOptions{}.WithDefaults()

	assert.Equal(t, ToneProfessional, opts.Tone)
	assert.Equal(t, EmailLengthMedium, opts.Length)
	assert.Equal(t, PersonalizationHigh, opts.PersonalizationLevel)
	assert.Equal(t, 1, opts.VariantsCount)
	require.NotNil(t, opts.IncludeCTA)
	assert.True(t, *opts.IncludeCTA)
	require.NotNil(t, opts.Temperature)
	assert.Equal(t, 0.7, *opts.Temperature)

	temp := 0.2
	custom := GenerationOptions{Tone: ToneCasual, Temperature: &temp, VariantsCount: 3}.WithDefaults()
	assert.Equal(t, ToneCasual, custom.Tone)
	assert.Equal(t, 0.2, *custom.Temperature)
	assert.Equal(t, 3, custom.VariantsCount)
}

func TestWordCountForLength(t *testing.T) {
	assert.Equal(t, "100-150", WordCountForLength(EmailLengthShort))
	assert.Equal(t, "200-300", WordCountForLength(EmailLengthMedium))
	assert.Equal(t, "400-500", WordCountForLength(EmailLengthLong))
	assert.Equal(t, "200-300", WordCountForLength("huge"))
}
