// Package services provides external service integrations: the text generation client and JWT tokens
package services

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"sync"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// ErrEmptyCompletion is returned when the model answers without any choice
var ErrEmptyCompletion = errors.New("text generation returned no choices")

// GenerationRequest is one call to the text generation model
type GenerationRequest struct {
	SystemPrompt string
	TaskPrompt   string
	Temperature  float64
	MaxTokens    int
}

// GenerationResult is the raw model answer with its accounting
type GenerationResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// TotalTokens is input plus output tokens
func (r *GenerationResult) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// TextGenerator calls a third-party language model
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
	Model() string
}

// OpenAITextGenerator implements TextGenerator over any OpenAI-compatible chat completions endpoint
type OpenAITextGenerator struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAITextGenerator creates a chat completions client
func NewOpenAITextGenerator(apiKey, baseURL, model string, logger *zap.Logger) (TextGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("text generation api key missing")
	}
	if model == "" {
		return nil, errors.New("text generation model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// failures are terminal for the job, so the client must not retry on its own
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAITextGenerator{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger.Named("text_generator"),
	}, nil
}

// Model returns the configured model identifier
func (g *OpenAITextGenerator) Model() string {
	return g.model
}

// Generate sends the system and task prompts and returns the first choice
func (g *OpenAITextGenerator) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.TaskPrompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	model := resp.Model
	if model == "" {
		model = g.model
	}

	result := &GenerationResult{
		Text:         resp.Choices[0].Message.Content,
		Model:        model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}

	g.logger.Debug("Text generation completed",
		zap.String("model", result.Model),
		zap.Int("input_tokens", result.InputTokens),
		zap.Int("output_tokens", result.OutputTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return result, nil
}

// MockTextGenerator answers without calling any model. Responses are consumed in
// order; when they run out a well-formed single-variant document is returned.
type MockTextGenerator struct {
	mu        sync.Mutex
	model     string
	Responses []string
	Err       error
	Requests  []GenerationRequest
}

// NewMockTextGenerator creates a generator for local runs and tests
func NewMockTextGenerator(model string, responses ...string) *MockTextGenerator {
	if model == "" {
		model = "mock-model"
	}
	return &MockTextGenerator{model: model, Responses: responses}
}

// Model returns the mock model identifier
func (m *MockTextGenerator) Model() string {
	return m.model
}

// Generate records the request and replays the next canned response
func (m *MockTextGenerator) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	var text string
	if len(m.Responses) > 0 {
		text = m.Responses[0]
		m.Responses = m.Responses[1:]
	} else {
		text = mockDocument(req)
	}

	return &GenerationResult{
		Text:         text,
		Model:        m.model,
		InputTokens:  len(strings.Fields(req.SystemPrompt)) + len(strings.Fields(req.TaskPrompt)),
		OutputTokens: len(strings.Fields(text)),
	}, nil
}

func mockDocument(req GenerationRequest) string {
	headline := strings.TrimSpace(strings.SplitN(req.TaskPrompt, "\n", 2)[0])
	if r := []rune(headline); len(r) > 40 {
		headline = string(r[:40])
	}
	doc := map[string]any{
		"variants": []map[string]any{{
			"variant_id":         1,
			"subject_line":       headline,
			"preview_text":       "Generated locally",
			"html_content":       "<p>" + html.EscapeString(headline) + "</p>",
			"plain_text_content": headline,
			"confidence_score":   0.75,
			"reasoning":          "mock response",
		}},
	}
	raw, _ := json.Marshal(doc)
	return string(raw)
}
