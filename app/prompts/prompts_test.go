package prompts

import (
	"strings"
	"testing"

	"github.com/amirphl/mailwright/models"
	"github.com/amirphl/mailwright/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *models.CompanyProfileSnapshot {
	return &models.CompanyProfileSnapshot{
		CompanyName:            "Acme",
		BrandVoice:             utils.ToPtr("Confident"),
		ValuePropositions:      []string{"fast", "secure"},
		CompetitiveAdvantages:  []string{"SOC2"},
		ComplianceRequirements: []string{"CAN-SPAM"},
		TargetAudience:         map[string]any{"role": "CTO"},
		BrandGuidelines:        map[string]any{"forbidden_words": []any{"guarantee", "free"}},
	}
}

func TestSystemPrompt(t *testing.T) {
	t.Run("WithoutProfile", func(t *testing.T) {
		p := SystemPrompt(nil)
		assert.Contains(t, p, "expert email marketing copywriter")
		assert.NotContains(t, p, "Company Context")
	})

	t.Run("WithProfile", func(t *testing.T) {
		p := SystemPrompt(testProfile())
		assert.Contains(t, p, "- Brand Voice: Confident")
		assert.Contains(t, p, "- Value Propositions: fast, secure")
		assert.Contains(t, p, "- Target Audience: role: CTO")
		assert.Contains(t, p, "- Compliance Requirements: CAN-SPAM")
		assert.Contains(t, p, "- Forbidden Words/Phrases: guarantee, free")
	})

	t.Run("DefaultBrandVoice", func(t *testing.T) {
		p := SystemPrompt(&models.CompanyProfileSnapshot{})
		assert.Contains(t, p, "Professional and trustworthy")
		assert.NotContains(t, p, "Compliance Requirements")
		assert.NotContains(t, p, "Forbidden Words")
	})
}

func TestGenerationPrompt(t *testing.T) {
	payload := &models.InitialGenerationPayload{
		Campaign: models.CampaignSnapshot{
			Name:        "Spring launch",
			PrimaryGoal: "conversion",
			Objectives: []models.ObjectiveSnapshot{
				{Description: "Book demos", KPIName: "conversion", TargetValue: 5},
			},
		},
		UserPrompt: "Announce the new dashboard",
	}

	t.Run("SingleVariantDefaults", func(t *testing.T) {
		p := GenerationPrompt(payload)
		assert.Contains(t, p, "USER INSTRUCTIONS:\nAnnounce the new dashboard")
		assert.Contains(t, p, "- Campaign Name: Spring launch")
		assert.Contains(t, p, "  * Book demos (KPI: conversion, Target: 5)")
		assert.Contains(t, p, "- Tone: professional")
		assert.Contains(t, p, "- Length: medium (~200-300 words)")
		assert.Contains(t, p, "- Include CTA: true")
		assert.Contains(t, p, "- Success Criteria: Not specified")
		assert.NotContains(t, p, "different variants")
		assert.Contains(t, p, `"variants": [`)
	})

	t.Run("VariantDifferentiation", func(t *testing.T) {
		withVariants := *payload
		withVariants.GenerationOptions = models.GenerationOptions{VariantsCount: 3, Length: models.EmailLengthShort}
		p := GenerationPrompt(&withVariants)
		assert.Contains(t, p, "Generate 3 different variants")
		assert.Contains(t, p, "Variant 2: Start with a compelling question or statistic")
		assert.NotContains(t, p, "Additional variants")
		assert.Contains(t, p, "~100-150 words")

		withVariants.GenerationOptions.VariantsCount = 5
		assert.Contains(t, GenerationPrompt(&withVariants), "Additional variants")
	})

	t.Run("AdditionalContextIsSorted", func(t *testing.T) {
		withExtras := *payload
		withExtras.Extras = map[string]any{"z_note": "last", "additional_context": "Emphasize security"}
		p := GenerationPrompt(&withExtras)
		require.Contains(t, p, "ADDITIONAL CONTEXT:")
		assert.Less(t, strings.Index(p, "additional_context"), strings.Index(p, "z_note"))
	})
}

func TestRefinementPrompt(t *testing.T) {
	payload := &models.RefinementPayload{
		OriginalTemplate: models.TemplateSnapshot{
			SubjectLine:      "Hello",
			HTMLContent:      "<p>Hi</p>",
			PlainTextContent: "Hi",
		},
		RefinementInstructions: "Make it more urgent please",
	}

	p := RefinementPrompt(payload)
	assert.Contains(t, p, "REFINEMENT INSTRUCTIONS:\nMake it more urgent please")
	assert.Contains(t, p, "Subject: Hello")
	assert.Contains(t, p, "Preview Text: N/A")
	assert.Contains(t, p, `"changes_made"`)
	assert.NotContains(t, p, "SECTIONS TO MODIFY")

	payload.SectionsToChange = []string{"opening", "cta"}
	payload.GenerationOptions = &models.GenerationOptions{Tone: models.ToneUrgent}
	p = RefinementPrompt(payload)
	assert.Contains(t, p, "Focus your changes on: opening, cta")
	assert.Contains(t, p, "- Tone: urgent")
}

func TestSubjectLinePrompt(t *testing.T) {
	long := strings.Repeat("a", 1500)
	payload := &models.SubjectLinePayload{
		EmailContent: &long,
		CampaignContext: &models.SubjectLineCampaignContext{
			PrimaryGoal: "awareness",
		},
		Count: 7,
		Style: utils.ToPtr("question"),
	}

	p := SubjectLinePrompt(payload, DefaultSubjectLineContentLimit)
	assert.True(t, strings.HasPrefix(p, "Generate 7 compelling email subject lines with a question approach.\n\n"))
	assert.Contains(t, p, strings.Repeat("a", 1000)+"...")
	assert.NotContains(t, p, strings.Repeat("a", 1001))
	assert.Contains(t, p, "- Goal: awareness")
	assert.Contains(t, p, "GENERATE 7 VARIANTS")
	assert.Contains(t, p, "6+ Additional creative approaches")

	payload.Count = 5
	assert.NotContains(t, SubjectLinePrompt(payload, 10), "6+ Additional")
}

func TestOptimizationPrompt(t *testing.T) {
	payload := &models.OptimizationPayload{
		OriginalTemplate:  models.TemplateSnapshot{SubjectLine: "Hi", HTMLContent: "<p>Body</p>"},
		OptimizationGoals: []string{"increase_clicks", "boost_trust_signals"},
	}

	p := OptimizationPrompt(payload)
	assert.Contains(t, p, "achieve these goals: increase_clicks, boost_trust_signals")
	assert.Contains(t, p, "- Improve click-through rate with stronger CTAs and more compelling copy")
	assert.Contains(t, p, "- Boost Trust Signals")
	assert.Contains(t, p, `"optimized_content"`)
}

func TestGoalDescription(t *testing.T) {
	assert.Equal(t, "Include testimonials or trust signals", GoalDescription("add_social_proof"))
	assert.Equal(t, "Shorter Subject", GoalDescription("shorter_subject"))
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(0)

	pair, err := b.Build(&models.SubjectLinePayload{EmailContent: utils.ToPtr("Body"), CompanyProfile: testProfile()})
	require.NoError(t, err)
	assert.Contains(t, pair.System, "Company Context")
	assert.Contains(t, pair.Task, "Generate 5 compelling email subject lines.")

	pair, err = b.Build(&models.OptimizationPayload{OptimizationGoals: []string{"personalize"}})
	require.NoError(t, err)
	assert.NotContains(t, pair.System, "Company Context")
	assert.Contains(t, pair.Task, "Increase personalization and relevance")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 4))
	assert.Equal(t, "hi", Truncate("hi", 0))
}
