package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mathqc/internal/config"
	"mathqc/internal/model"
)

// GeminiAnalyzer assesses questions via the Gemini generateContent API
type GeminiAnalyzer struct {
	config *config.AIConfig
	client *http.Client
}

// NewGeminiAnalyzer creates an analyzer from the given AI config
func NewGeminiAnalyzer(cfg *config.AIConfig) *GeminiAnalyzer {
	return &GeminiAnalyzer{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

func (a *GeminiAnalyzer) Name() string { return "gemini" }

// Analyze assesses a single question
func (a *GeminiAnalyzer) Analyze(ctx context.Context, q *model.Question) (*Assessment, error) {
	response, err := a.callGemini(ctx, buildAssessmentPrompt(q))
	if err != nil {
		return nil, err
	}
	return parseAssessment(response)
}

// AnalyzeBatch assesses a batch of questions in one round-trip
func (a *GeminiAnalyzer) AnalyzeBatch(ctx context.Context, qs []model.Question) (map[string]*Assessment, error) {
	response, err := a.callGemini(ctx, buildBatchPrompt(qs))
	if err != nil {
		return nil, err
	}
	return parseBatchAssessment(response)
}

// callGemini makes a request to the Gemini API
func (a *GeminiAnalyzer) callGemini(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{{"text": prompt}},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", a.config.ModelEndpoint(), a.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
