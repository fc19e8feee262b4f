// Package prompts builds the system and task prompts sent to the text generation model
package prompts

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/amirphl/mailwright/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSubjectLineContentLimit is how much source email a subject-line prompt quotes
const DefaultSubjectLineContentLimit = 1000

// Pair is what the worker sends to the model for one job
type Pair struct {
	System string
	Task   string
}

// Builder turns a decoded job payload into prompts. It performs no I/O.
type Builder struct {
	subjectLineContentLimit int
}

// NewBuilder creates a prompt builder; a non-positive limit falls back to the default
func NewBuilder(subjectLineContentLimit int) *Builder {
	if subjectLineContentLimit <= 0 {
		subjectLineContentLimit = DefaultSubjectLineContentLimit
	}
	return &Builder{subjectLineContentLimit: subjectLineContentLimit}
}

// Build returns the prompt pair for a payload of any job family
func (b *Builder) Build(payload models.JobPayload) (Pair, error) {
	switch p := payload.(type) {
	case *models.InitialGenerationPayload:
		return Pair{System: SystemPrompt(p.CompanyProfile), Task: GenerationPrompt(p)}, nil
	case *models.RefinementPayload:
		return Pair{System: SystemPrompt(p.CompanyProfile), Task: RefinementPrompt(p)}, nil
	case *models.SubjectLinePayload:
		return Pair{System: SystemPrompt(p.CompanyProfile), Task: SubjectLinePrompt(p, b.subjectLineContentLimit)}, nil
	case *models.OptimizationPayload:
		return Pair{System: SystemPrompt(p.CompanyProfile), Task: OptimizationPrompt(p)}, nil
	default:
		return Pair{}, fmt.Errorf("no prompt for payload %T", payload)
	}
}

const basePersona = `You are an expert email marketing copywriter specializing in B2B campaigns.
Your goal is to create compelling, professional email content that drives engagement and conversions.

Key principles:
- Write clear, benefit-driven copy
- Use active voice and strong verbs
- Create compelling subject lines that improve open rates
- Include clear calls-to-action
- Personalize content based on audience
- Follow email best practices (avoid spam triggers, keep mobile-friendly)
- Respect brand voice and compliance requirements`

// SystemPrompt is the persona plus brand constraints when a company profile exists
func SystemPrompt(profile *models.CompanyProfileSnapshot) string {
	if profile == nil {
		return basePersona
	}

	var sb strings.Builder
	sb.WriteString(basePersona)
	sb.WriteString("\n\nCompany Context:")
	fmt.Fprintf(&sb, "\n- Brand Voice: %s", orDefault(profile.BrandVoice, "Professional and trustworthy"))
	fmt.Fprintf(&sb, "\n- Value Propositions: %s", strings.Join(profile.ValuePropositions, ", "))
	fmt.Fprintf(&sb, "\n- Target Audience: %s", formatMap(profile.TargetAudience))
	fmt.Fprintf(&sb, "\n- Competitive Advantages: %s", strings.Join(profile.CompetitiveAdvantages, ", "))
	if len(profile.ComplianceRequirements) > 0 {
		fmt.Fprintf(&sb, "\n- Compliance Requirements: %s", strings.Join(profile.ComplianceRequirements, ", "))
	}
	if words := profile.ForbiddenWords(); len(words) > 0 {
		fmt.Fprintf(&sb, "\n- Forbidden Words/Phrases: %s", strings.Join(words, ", "))
	}
	return sb.String()
}

// GenerationPrompt is the task prompt for initial_generation, revision and ab_variant jobs
func GenerationPrompt(p *models.InitialGenerationPayload) string {
	opts := p.GenerationOptions.WithDefaults()
	c := p.Campaign

	var sb strings.Builder
	sb.WriteString("Generate a professional email campaign with the following requirements:\n\n")
	sb.WriteString("USER INSTRUCTIONS:\n")
	sb.WriteString(p.UserPrompt)
	sb.WriteString("\n\nCAMPAIGN DETAILS:")
	fmt.Fprintf(&sb, "\n- Campaign Name: %s", c.Name)
	fmt.Fprintf(&sb, "\n- Primary Goal: %s", c.PrimaryGoal)
	fmt.Fprintf(&sb, "\n- Target Audience: %s", orDefault(c.TargetAudienceDescription, "Not specified"))
	fmt.Fprintf(&sb, "\n- Success Criteria: %s", orDefault(c.SuccessCriteria, "Not specified"))

	if len(c.Objectives) > 0 {
		sb.WriteString("\n- Campaign Objectives:")
		for _, obj := range c.Objectives {
			fmt.Fprintf(&sb, "\n  * %s (KPI: %s, Target: %v)", obj.Description, obj.KPIName, obj.TargetValue)
		}
	}

	sb.WriteString("\n\nGENERATION REQUIREMENTS:")
	fmt.Fprintf(&sb, "\n- Tone: %s", opts.Tone)
	fmt.Fprintf(&sb, "\n- Length: %s (~%s words)", opts.Length, models.WordCountForLength(opts.Length))
	fmt.Fprintf(&sb, "\n- Personalization Level: %s", opts.PersonalizationLevel)
	fmt.Fprintf(&sb, "\n- Include CTA: %t", *opts.IncludeCTA)
	if opts.CTAText != nil && *opts.CTAText != "" {
		fmt.Fprintf(&sb, "\n- CTA Text: %s", *opts.CTAText)
	}
	if len(opts.FocusAreas) > 0 {
		fmt.Fprintf(&sb, "\n- Focus Areas: %s", strings.Join(opts.FocusAreas, ", "))
	}
	if !*opts.IncludePreviewText {
		sb.WriteString("\n- Preview Text: leave preview_text empty")
	}

	if opts.VariantsCount > 1 {
		fmt.Fprintf(&sb, "\n\nGenerate %d different variants with varying approaches:", opts.VariantsCount)
		sb.WriteString("\n- Variant 1: Lead with the main benefit")
		sb.WriteString("\n- Variant 2: Start with a compelling question or statistic")
		sb.WriteString("\n- Variant 3: Use social proof or case study approach")
		if opts.VariantsCount > 3 {
			sb.WriteString("\n- Additional variants: Try different angles and messaging")
		}
	}

	writeAdditionalContext(&sb, p.Extras)

	sb.WriteString(generationOutputFormat)
	return sb.String()
}

const generationOutputFormat = `

OUTPUT FORMAT:
For each variant, provide:
1. Subject Line (compelling, under 50 characters)
2. Preview Text / Preheader (complementary to subject, under 100 characters)
3. HTML Email Content (properly structured with header, body, CTA, footer)
4. Plain Text Version (formatted for readability)
5. Confidence Score (0-1, how confident you are this will perform well)
6. Brief Reasoning (why this approach should work)

Return the response as a single JSON object with this structure:
{
  "variants": [
    {
      "variant_id": 1,
      "subject_line": "...",
      "preview_text": "...",
      "html_content": "...",
      "plain_text_content": "...",
      "confidence_score": 0.92,
      "reasoning": "..."
    }
  ]
}

HTML Content Guidelines:
- Use semantic HTML with proper structure
- Include responsive design (mobile-friendly)
- Use inline CSS for email client compatibility
- Include proper alt text for images
- Ensure CTA button is prominent and clickable
- Include unsubscribe link in footer
- Keep total width to 600px max for email clients

Plain Text Guidelines:
- Well-formatted with proper line breaks
- Include all links as full URLs
- Maintain clear hierarchy
- Easy to scan and read`

// RefinementPrompt is the task prompt for refinement jobs
func RefinementPrompt(p *models.RefinementPayload) string {
	t := p.OriginalTemplate

	var sb strings.Builder
	sb.WriteString("Refine the following email content based on these instructions:\n\n")
	sb.WriteString("REFINEMENT INSTRUCTIONS:\n")
	sb.WriteString(p.RefinementInstructions)
	sb.WriteString("\n\nORIGINAL EMAIL:")
	fmt.Fprintf(&sb, "\nSubject: %s", t.SubjectLine)
	fmt.Fprintf(&sb, "\nPreview Text: %s", orDefault(t.PreviewText, "N/A"))
	fmt.Fprintf(&sb, "\n\nHTML Content:\n%s", t.HTMLContent)
	fmt.Fprintf(&sb, "\n\nPlain Text Content:\n%s", t.PlainTextContent)

	if len(p.SectionsToChange) > 0 {
		sb.WriteString("\n\nSECTIONS TO MODIFY:")
		fmt.Fprintf(&sb, "\nFocus your changes on: %s", strings.Join(p.SectionsToChange, ", "))
		sb.WriteString("\nKeep other sections unchanged unless necessary for flow.")
	}

	if p.GenerationOptions != nil {
		opts := p.GenerationOptions
		var lines []string
		if opts.Tone != "" {
			lines = append(lines, fmt.Sprintf("- Tone: %s", opts.Tone))
		}
		if opts.Length != "" {
			lines = append(lines, fmt.Sprintf("- Length: %s (~%s words)", opts.Length, models.WordCountForLength(opts.Length)))
		}
		if opts.CTAText != nil && *opts.CTAText != "" {
			lines = append(lines, fmt.Sprintf("- CTA Text: %s", *opts.CTAText))
		}
		if len(lines) > 0 {
			sb.WriteString("\n\nSTYLE REQUIREMENTS:\n")
			sb.WriteString(strings.Join(lines, "\n"))
		}
	}

	writeAdditionalContext(&sb, p.Extras)

	sb.WriteString(`

OUTPUT FORMAT:
Return the refined email as a single JSON object:
{
  "subject_line": "...",
  "preview_text": "...",
  "html_content": "...",
  "plain_text_content": "...",
  "changes_made": "Brief description of what was changed and why",
  "confidence_score": 0.95
}

Maintain the same email structure and formatting standards.`)
	return sb.String()
}

// SubjectLinePrompt is the task prompt for subject_line_test jobs. The source email is
// cut to contentLimit characters.
func SubjectLinePrompt(p *models.SubjectLinePayload, contentLimit int) string {
	count := p.Count
	if count <= 0 {
		count = 5
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d compelling email subject lines", count)
	if p.Style != nil && *p.Style != "" {
		fmt.Fprintf(&sb, " with a %s approach", *p.Style)
	}
	sb.WriteString(".\n\n")

	if p.EmailContent != nil && *p.EmailContent != "" {
		sb.WriteString("EMAIL CONTENT:\n")
		sb.WriteString(Truncate(*p.EmailContent, contentLimit))
		sb.WriteString("...\n\nGenerate subject lines that accurately represent this email content.")
	}

	if cc := p.CampaignContext; cc != nil {
		sb.WriteString("\n\nCAMPAIGN CONTEXT:")
		if cc.Name != "" {
			fmt.Fprintf(&sb, "\n- Campaign: %s", cc.Name)
		}
		fmt.Fprintf(&sb, "\n- Goal: %s", cc.PrimaryGoal)
		fmt.Fprintf(&sb, "\n- Target Audience: %s", orDefault(cc.TargetAudienceDescription, "Not specified"))
	}

	writeAdditionalContext(&sb, p.Extras)

	sb.WriteString(`

SUBJECT LINE BEST PRACTICES:
- Keep under 50 characters (ideal: 30-40)
- Front-load important information
- Create curiosity or urgency
- Be specific and clear
- Avoid spam trigger words
- Use personalization when appropriate
- A/B test different approaches
`)
	fmt.Fprintf(&sb, "\nGENERATE %d VARIANTS WITH DIFFERENT APPROACHES:", count)
	sb.WriteString(`
1. Benefit-focused: Lead with the main value proposition
2. Question-based: Engage with a compelling question
3. Urgency/Scarcity: Create time-sensitive motivation
4. Social proof: Reference success or popularity
5. Curiosity: Tease valuable information`)
	if count > 5 {
		sb.WriteString("\n6+ Additional creative approaches")
	}

	sb.WriteString(`

OUTPUT FORMAT:
Return a single JSON object:
{
  "variants": [
    {
      "variant_id": 1,
      "subject_line": "...",
      "preview_text": "...",
      "confidence_score": 0.92,
      "reasoning": "Why this should work"
    }
  ]
}`)
	return sb.String()
}

var goalDescriptions = map[string]string{
	"increase_clicks":  "Improve click-through rate with stronger CTAs and more compelling copy",
	"improve_clarity":  "Make the message clearer and easier to understand",
	"strengthen_cta":   "Make the call-to-action more prominent and persuasive",
	"add_urgency":      "Create time-sensitive motivation to act",
	"personalize":      "Increase personalization and relevance",
	"improve_mobile":   "Optimize for mobile reading experience",
	"reduce_length":    "Make more concise without losing key information",
	"add_social_proof": "Include testimonials or trust signals",
}

// GoalDescription explains an optimization goal; unknown goals are title-cased
func GoalDescription(goal string) string {
	if desc, ok := goalDescriptions[goal]; ok {
		return desc
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(goal, "_", " "))
}

// OptimizationPrompt is the task prompt for optimization jobs
func OptimizationPrompt(p *models.OptimizationPayload) string {
	t := p.OriginalTemplate

	var sb strings.Builder
	fmt.Fprintf(&sb, "Optimize the following email to achieve these goals: %s\n\n", strings.Join(p.OptimizationGoals, ", "))
	sb.WriteString("CURRENT EMAIL:")
	fmt.Fprintf(&sb, "\nSubject: %s", t.SubjectLine)
	fmt.Fprintf(&sb, "\nPreview Text: %s", orDefault(t.PreviewText, "N/A"))
	fmt.Fprintf(&sb, "\n\nContent:\n%s", t.HTMLContent)
	sb.WriteString("\n\nOPTIMIZATION GOALS:")
	for _, goal := range p.OptimizationGoals {
		fmt.Fprintf(&sb, "\n- %s", GoalDescription(goal))
	}

	writeAdditionalContext(&sb, p.Extras)

	sb.WriteString(`

Provide:
1. Optimized email content
2. Specific changes made and why
3. Expected impact on each goal
4. Confidence score

OUTPUT FORMAT:
Return a single JSON object:
{
  "optimized_content": {
    "subject_line": "...",
    "preview_text": "...",
    "html_content": "...",
    "plain_text_content": "..."
  },
  "changes": [
    {
      "section": "CTA",
      "change": "Strengthened button copy from 'Learn More' to 'Get Started Today'",
      "expected_impact": "Should increase clicks by creating more action-oriented language"
    }
  ],
  "confidence_score": 0.88
}`)
	return sb.String()
}

// Truncate cuts s to at most limit runes
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func writeAdditionalContext(sb *strings.Builder, extras map[string]any) {
	if len(extras) == 0 {
		return
	}
	keys := make([]string, 0, len(extras))
	for k := range extras {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	sb.WriteString("\n\nADDITIONAL CONTEXT:")
	for _, k := range keys {
		fmt.Fprintf(sb, "\n- %s: %s", k, formatValue(extras[k]))
	}
}

func formatMap(m map[string]any) string {
	if len(m) == 0 {
		return "Not specified"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, formatValue(m[k])))
	}
	return strings.Join(parts, "; ")
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any, map[string]any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
