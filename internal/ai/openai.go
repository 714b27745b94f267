package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"mathqc/internal/config"
	"mathqc/internal/model"
)

// OpenAIAnalyzer assesses questions via the OpenAI chat completions API
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyzer creates an analyzer from the given AI config
func NewOpenAIAnalyzer(cfg *config.AIConfig) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

func (a *OpenAIAnalyzer) Name() string { return "openai" }

// Analyze assesses a single question
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, q *model.Question) (*Assessment, error) {
	response, err := a.complete(ctx, buildAssessmentPrompt(q))
	if err != nil {
		return nil, err
	}
	return parseAssessment(response)
}

// AnalyzeBatch assesses a batch of questions in one round-trip
func (a *OpenAIAnalyzer) AnalyzeBatch(ctx context.Context, qs []model.Question) (map[string]*Assessment, error) {
	response, err := a.complete(ctx, buildBatchPrompt(qs))
	if err != nil {
		return nil, err
	}
	return parseBatchAssessment(response)
}

func (a *OpenAIAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// FromConfig builds the configured analyzer, or nil when no API key is set
// and the caller should run deterministic-only.
func FromConfig(cfg *config.AIConfig) Analyzer {
	if !cfg.IsEnabled() {
		return nil
	}
	if cfg.Provider == config.ProviderOpenAI {
		return NewOpenAIAnalyzer(cfg)
	}
	return NewGeminiAnalyzer(cfg)
}

var _ Analyzer = (*GeminiAnalyzer)(nil)
var _ Analyzer = (*OpenAIAnalyzer)(nil)
