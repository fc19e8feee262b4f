package businessflow

import (
	"testing"

	"github.com/amirphl/mailwright/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParser() *ResponseParser {
	return NewResponseParser(ConfidenceDefaults{
		Generation:  0.7,
		Refinement:  0.85,
		SubjectLine: 0.8,
		RawFallback: 0.7,
	})
}

const threeVariants = `{
  "variants": [
    {"variant_id": 1, "subject_line": "Cut review time", "preview_text": "See how", "html_content": "<p>A</p>", "plain_text_content": "A", "confidence_score": 0.9, "reasoning": "benefit"},
    {"variant_id": 2, "subject_line": "Still waiting on FDA?", "html_content": "<p>B</p>", "plain_text_content": "B", "confidence_score": 0.8},
    {"variant_id": 3, "subject_line": "Teams like yours ship faster", "html_content": "<p>C</p>", "plain_text_content": "C"}
  ]
}`

func TestResponseParser_StrictJSON(t *testing.T) {
	out, err := testParser().Parse(models.JobTypeInitialGeneration, threeVariants)
	require.NoError(t, err)
	assert.False(t, out.Recovered)

	require.Len(t, out.Content.Variants, 3)
	for i, v := range out.Content.Variants {
		assert.Equal(t, i+1, v.VariantID)
		assert.NotEmpty(t, v.SubjectLine)
		assert.GreaterOrEqual(t, v.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, v.ConfidenceScore, 1.0)
	}
	assert.Equal(t, "See how", *out.Content.Variants[0].PreviewText)
	assert.Nil(t, out.Content.Variants[1].PreviewText)
	assert.Equal(t, 0.7, out.Content.Variants[2].ConfidenceScore)
	assert.InDelta(t, 0.8, out.Content.MeanConfidence(), 1e-9)
}

func TestResponseParser_FencedBlock(t *testing.T) {
	raw := "Here are your emails:\n\n```json\n" + threeVariants + "\n```\n\nLet me know if you need changes."

	out, err := testParser().Parse(models.JobTypeABVariant, raw)
	require.NoError(t, err)
	assert.False(t, out.Recovered)
	assert.Len(t, out.Content.Variants, 3)

	t.Run("unlabelled fence", func(t *testing.T) {
		raw := "```\n{\"subject_line\": \"Hi\", \"html_content\": \"<p>x</p>\", \"plain_text_content\": \"x\"}\n```"
		out, err := testParser().Parse(models.JobTypeRevision, raw)
		require.NoError(t, err)
		require.Len(t, out.Content.Variants, 1)
		assert.Equal(t, "Hi", out.Content.Variants[0].SubjectLine)
	})
}

func TestResponseParser_RawFallback(t *testing.T) {
	raw := "  Dear reader,\nour platform cuts documentation time by 60%.  "

	for _, jobType := range []models.JobType{
		models.JobTypeInitialGeneration,
		models.JobTypeRefinement,
		models.JobTypeOptimization,
	} {
		t.Run(string(jobType), func(t *testing.T) {
			out, err := testParser().Parse(jobType, raw)
			require.NoError(t, err)
			assert.True(t, out.Recovered)

			require.Len(t, out.Content.Variants, 1)
			v := out.Content.Variants[0]
			assert.Equal(t, 1, v.VariantID)
			assert.Equal(t, "Generated Email", v.SubjectLine)
			assert.Equal(t, "Dear reader,\nour platform cuts documentation time by 60%.", v.HTMLContent)
			assert.Equal(t, v.HTMLContent, v.PlainTextContent)
			assert.Equal(t, 0.7, v.ConfidenceScore)
			require.NotNil(t, v.Reasoning)
			assert.Equal(t, "Raw AI output", *v.Reasoning)
		})
	}

	t.Run("subject lines fail", func(t *testing.T) {
		_, err := testParser().Parse(models.JobTypeSubjectLineTest, raw)
		require.Error(t, err)
		assert.True(t, IsParseFailure(err))
	})

	t.Run("top-level array is not an object", func(t *testing.T) {
		out, err := testParser().Parse(models.JobTypeInitialGeneration, `[{"subject_line": "x"}]`)
		require.NoError(t, err)
		assert.True(t, out.Recovered)
	})
}

func TestResponseParser_RefinementFlatObject(t *testing.T) {
	raw := `{
	  "subject_line": "Last chance: 60% faster submissions",
	  "preview_text": "Offer ends Friday",
	  "html_content": "<p>Refined</p>",
	  "plain_text_content": "Refined",
	  "changes_made": "Added urgency to the opening"
	}`

	out, err := testParser().Parse(models.JobTypeRefinement, raw)
	require.NoError(t, err)

	require.Len(t, out.Content.Variants, 1)
	v := out.Content.Variants[0]
	assert.Equal(t, 1, v.VariantID)
	assert.Equal(t, 0.85, v.ConfidenceScore)
	require.NotNil(t, v.Reasoning)
	assert.Equal(t, "Added urgency to the opening", *v.Reasoning)
}

func TestResponseParser_Optimization(t *testing.T) {
	raw := `{
	  "optimized_content": {
	    "subject_line": "Get started today",
	    "html_content": "<p>Optimized</p>",
	    "plain_text_content": "Optimized"
	  },
	  "changes": [
	    {"section": "CTA", "change": "Stronger button copy", "expected_impact": "More clicks"},
	    "Shortened the intro"
	  ],
	  "confidence_score": "0.88"
	}`

	out, err := testParser().Parse(models.JobTypeOptimization, raw)
	require.NoError(t, err)

	require.Len(t, out.Content.Variants, 1)
	v := out.Content.Variants[0]
	assert.Equal(t, "Get started today", v.SubjectLine)
	assert.InDelta(t, 0.88, v.ConfidenceScore, 1e-9)
	require.NotNil(t, v.Reasoning)
	assert.Equal(t, "CTA: Stronger button copy; Shortened the intro", *v.Reasoning)

	require.Len(t, out.Content.Changes, 2)
	assert.Equal(t, "More clicks", out.Content.Changes[0].ExpectedImpact)
	assert.Equal(t, "Shortened the intro", out.Content.Changes[1].Change)

	t.Run("without score", func(t *testing.T) {
		out, err := testParser().Parse(models.JobTypeOptimization, `{"optimized_content": {"subject_line": "x", "html_content": "<p>x</p>"}}`)
		require.NoError(t, err)
		assert.Equal(t, 0.85, out.Content.Variants[0].ConfidenceScore)
		assert.Nil(t, out.Content.Variants[0].Reasoning)
	})
}

func TestResponseParser_SubjectLines(t *testing.T) {
	raw := `{"variants": [
	  {"variant_id": 1, "subject_line": "60% faster FDA submissions", "confidence_score": 0.94},
	  {"variant_id": 2, "subject_line": "   "},
	  {"variant_id": 3, "subject_line": "Is your team still copy-pasting?"}
	]}`

	out, err := testParser().Parse(models.JobTypeSubjectLineTest, raw)
	require.NoError(t, err)

	require.Len(t, out.Content.Variants, 2)
	assert.Equal(t, 1, out.Content.Variants[0].VariantID)
	assert.Equal(t, 3, out.Content.Variants[1].VariantID)
	assert.Equal(t, 0.8, out.Content.Variants[1].ConfidenceScore)
	assert.Empty(t, out.Content.Variants[1].HTMLContent)

	t.Run("no usable lines", func(t *testing.T) {
		_, err := testParser().Parse(models.JobTypeSubjectLineTest, `{"variants": [{"subject_line": ""}]}`)
		require.Error(t, err)
		assert.True(t, IsParseFailure(err))
	})

	t.Run("missing variants key", func(t *testing.T) {
		_, err := testParser().Parse(models.JobTypeSubjectLineTest, `{"subject_lines": ["a", "b"]}`)
		require.Error(t, err)
		assert.True(t, IsParseFailure(err))
	})
}

func TestResponseParser_Normalization(t *testing.T) {
	t.Run("clamps scores", func(t *testing.T) {
		raw := `{"variants": [
		  {"variant_id": 1, "subject_line": "a", "html_content": "<p>a</p>", "confidence_score": 1.4},
		  {"variant_id": 2, "subject_line": "b", "html_content": "<p>b</p>", "confidence_score": -0.2}
		]}`
		out, err := testParser().Parse(models.JobTypeInitialGeneration, raw)
		require.NoError(t, err)
		assert.Equal(t, 1.0, out.Content.Variants[0].ConfidenceScore)
		assert.Equal(t, 0.0, out.Content.Variants[1].ConfidenceScore)
	})

	t.Run("renumbers duplicate ids", func(t *testing.T) {
		raw := `{"variants": [
		  {"variant_id": 1, "subject_line": "a", "html_content": "<p>a</p>"},
		  {"variant_id": 1, "subject_line": "b", "html_content": "<p>b</p>"},
		  {"subject_line": "c", "html_content": "<p>c</p>"}
		]}`
		out, err := testParser().Parse(models.JobTypeInitialGeneration, raw)
		require.NoError(t, err)
		for i, v := range out.Content.Variants {
			assert.Equal(t, i+1, v.VariantID)
		}
	})

	t.Run("keeps distinct ids", func(t *testing.T) {
		raw := `{"variants": [
		  {"variant_id": 4, "subject_line": "a", "html_content": "<p>a</p>"},
		  {"variant_id": 2, "subject_line": "b", "html_content": "<p>b</p>"}
		]}`
		out, err := testParser().Parse(models.JobTypeInitialGeneration, raw)
		require.NoError(t, err)
		assert.Equal(t, 4, out.Content.Variants[0].VariantID)
		assert.Equal(t, 2, out.Content.Variants[1].VariantID)
	})

	t.Run("renders missing html", func(t *testing.T) {
		raw := `{"variants": [{"subject_line": "a", "plain_text_content": "Hello there\n\nSecond paragraph"}]}`
		out, err := testParser().Parse(models.JobTypeInitialGeneration, raw)
		require.NoError(t, err)
		assert.Contains(t, out.Content.Variants[0].HTMLContent, "<p>Hello there</p>")
		assert.Contains(t, out.Content.Variants[0].HTMLContent, "<p>Second paragraph</p>")
	})
}

func TestResponseParser_SchemaDriftFallsBackToRaw(t *testing.T) {
	tests := []struct {
		name    string
		jobType models.JobType
		raw     string
	}{
		{"no variants or subject", models.JobTypeInitialGeneration, `{"message": "I cannot help with that"}`},
		{"variants not a list", models.JobTypeInitialGeneration, `{"variants": "one"}`},
		{"variant not an object", models.JobTypeRevision, `{"variants": ["subject"]}`},
		{"empty variants", models.JobTypeABVariant, `{"variants": []}`},
		{"refinement without content", models.JobTypeRefinement, `{"notes": "looks fine"}`},
		{"optimization without content", models.JobTypeOptimization, `{"changes": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := testParser().Parse(tt.jobType, "  "+tt.raw+"\n")
			require.NoError(t, err)
			assert.True(t, out.Recovered)
			require.Len(t, out.Content.Variants, 1)

			v := out.Content.Variants[0]
			assert.Equal(t, 1, v.VariantID)
			assert.Equal(t, tt.raw, v.PlainTextContent)
			assert.Equal(t, tt.raw, v.HTMLContent)
			assert.Equal(t, 0.7, v.ConfidenceScore)
			require.NotNil(t, v.Reasoning)
			assert.Equal(t, "Raw AI output", *v.Reasoning)
		})
	}

	t.Run("subject lines still fail", func(t *testing.T) {
		_, err := testParser().Parse(models.JobTypeSubjectLineTest, `{"variants": "one"}`)
		require.Error(t, err)
		assert.True(t, IsParseFailure(err))
	})
}
