package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeInitialGenerationPayload(t *testing.T) {
	temp := 0.4
	voice := "Warm and direct"
	payload := &InitialGenerationPayload{
		Campaign: CampaignSnapshot{
			ID:          "c-1",
			Name:        "Spring launch",
			PrimaryGoal: "conversion",
			Objectives: []ObjectiveSnapshot{
				{ObjectiveType: "primary", Description: "Book demos", KPIName: "conversion", TargetValue: 5.0, Priority: 1},
			},
		},
		GenerationOptions: GenerationOptions{Tone: ToneFriendly, VariantsCount: 3, Temperature: &temp},
		UserPrompt:        "Announce the new scheduling feature to clinics",
		CompanyProfile: &CompanyProfileSnapshot{
			BrandVoice:      &voice,
			BrandGuidelines: map[string]any{"forbidden_words": []any{"cheap", "free"}},
		},
	}

	doc, err := EncodeJobPayload(payload, map[string]any{
		"additional_context": "Emphasize security",
		"user_prompt":        "Overridden prompt text",
	})
	require.NoError(t, err)
	assert.Equal(t, "Overridden prompt text", doc["user_prompt"])
	assert.Equal(t, "Emphasize security", doc["additional_context"])

	// Round trip through the database representation.
	raw, err := doc.Value()
	require.NoError(t, err)
	var stored JSONDocument
	require.NoError(t, stored.Scan(raw))

	decoded, err := DecodeJobPayload(JobTypeInitialGeneration, stored)
	require.NoError(t, err)
	got, ok := decoded.(*InitialGenerationPayload)
	require.True(t, ok)

	assert.Equal(t, "Spring launch", got.Campaign.Name)
	require.Len(t, got.Campaign.Objectives, 1)
	assert.Equal(t, 5.0, got.Campaign.Objectives[0].TargetValue)
	assert.Equal(t, 1, got.Campaign.Objectives[0].Priority)
	assert.Equal(t, ToneFriendly, got.GenerationOptions.Tone)
	assert.Equal(t, 3, got.GenerationOptions.VariantsCount)
	require.NotNil(t, got.GenerationOptions.Temperature)
	assert.Equal(t, 0.4, *got.GenerationOptions.Temperature)
	assert.Equal(t, "Overridden prompt text", got.UserPrompt)
	assert.Equal(t, []string{"cheap", "free"}, got.CompanyProfile.ForbiddenWords())
	assert.Equal(t, "Emphasize security", got.Extras["additional_context"])
}

func TestDecodeJobPayload_Families(t *testing.T) {
	tests := []struct {
		jobType JobType
		want    JobType
	}{
		{JobTypeInitialGeneration, JobTypeInitialGeneration},
		{JobTypeRevision, JobTypeInitialGeneration},
		{JobTypeABVariant, JobTypeInitialGeneration},
		{JobTypeRefinement, JobTypeRefinement},
		{JobTypeSubjectLineTest, JobTypeSubjectLineTest},
		{JobTypeOptimization, JobTypeOptimization},
	}

	for _, tt := range tests {
		t.Run(string(tt.jobType), func(t *testing.T) {
			payload, err := DecodeJobPayload(tt.jobType, JSONDocument{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.Family())
		})
	}

	_, err := DecodeJobPayload("translation", JSONDocument{})
	assert.Error(t, err)
}

func TestDecodeSubjectLinePayload(t *testing.T) {
	var doc JSONDocument
	require.NoError(t, json.Unmarshal([]byte(`{
		"email_content": "<p>Hello</p>",
		"campaign_context": {"primary_goal": "awareness", "target_audience_description": "CFOs"},
		"count": 7,
		"style": "curiosity"
	}`), &doc))

	payload, err := DecodeJobPayload(JobTypeSubjectLineTest, doc)
	require.NoError(t, err)
	got := payload.(*SubjectLinePayload)

	assert.Equal(t, 7, got.Count)
	require.NotNil(t, got.EmailContent)
	assert.Equal(t, "<p>Hello</p>", *got.EmailContent)
	require.NotNil(t, got.CampaignContext)
	assert.Equal(t, "awareness", got.CampaignContext.PrimaryGoal)
	assert.Equal(t, "CFOs", *got.CampaignContext.TargetAudienceDescription)
	assert.Equal(t, "curiosity", *got.Style)
	assert.Empty(t, got.Extras)
}

func TestDecodeJobPayload_BadShape(t *testing.T) {
	_, err := DecodeJobPayload(JobTypeRefinement, JSONDocument{"original_template": "not an object"})
	assert.Error(t, err)
}

func TestJSONDocument_CloneIsDeep(t *testing.T) {
	doc := JSONDocument{"campaign": map[string]any{"name": "A"}, "tags": []any{"x"}}
	clone := doc.Clone()

	clone["campaign"].(map[string]any)["name"] = "B"
	clone["tags"].([]any)[0] = "y"

	assert.Equal(t, "A", doc["campaign"].(map[string]any)["name"])
	assert.Equal(t, "x", doc["tags"].([]any)[0])
}
