// Package ai wraps the opaque text-analysis call. The engine treats the
// analyzer as a fallible, slow, non-deterministic collaborator; everything
// that must hold without it lives in the deterministic packages.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"mathqc/internal/model"
)

// Assessment is the analyzer's verdict for one question
type Assessment struct {
	Score               float64                   `json:"score"` // 0..100
	Issues              []model.Issue             `json:"issues"`
	CommonCoreAlignment model.CommonCoreAlignment `json:"commonCoreAlignment"`
}

// Analyzer is the opaque AI call: question in, structured issues out.
// Implementations may fail or time out; callers guard them with a breaker.
type Analyzer interface {
	Name() string
	// Analyze assesses a single question
	Analyze(ctx context.Context, q *model.Question) (*Assessment, error)
	// AnalyzeBatch assesses up to a handful of questions in one round-trip,
	// keyed by question id
	AnalyzeBatch(ctx context.Context, qs []model.Question) (map[string]*Assessment, error)
}

// Neutral returns the placeholder assessment used when the analyzer is
// bypassed or unavailable: full marks, no findings.
func Neutral() *Assessment {
	return &Assessment{Score: 100}
}

// assessmentPayload is the JSON shape the prompts ask the model to return
type assessmentPayload struct {
	Score  float64 `json:"score"`
	Issues []struct {
		Kind             string  `json:"kind"`
		Category         string  `json:"category"`
		Severity         string  `json:"severity"`
		Confidence       float64 `json:"confidence"`
		Description      string  `json:"description"`
		CurrentValue     string  `json:"currentValue"`
		SuggestedFix     string  `json:"suggestedFix"`
		Explanation      string  `json:"explanation"`
		ProductionImpact string  `json:"productionImpact"`
		TargetField      string  `json:"targetField"`
	} `json:"issues"`
	CommonCoreAlignment model.CommonCoreAlignment `json:"commonCoreAlignment"`
}

func (p *assessmentPayload) toAssessment() *Assessment {
	out := &Assessment{
		Score:               clamp(p.Score, 0, 100),
		CommonCoreAlignment: p.CommonCoreAlignment,
	}
	for _, raw := range p.Issues {
		out.Issues = append(out.Issues, model.Issue{
			ID:               uuid.NewString(),
			Kind:             model.IssueKind(raw.Kind),
			Category:         model.IssueCategory(raw.Category),
			Severity:         model.Severity(raw.Severity),
			Confidence:       clamp(raw.Confidence, 0, 1),
			Description:      raw.Description,
			CurrentValue:     raw.CurrentValue,
			SuggestedFix:     raw.SuggestedFix,
			Explanation:      raw.Explanation,
			ValidationMethod: model.MethodAI,
			ProductionImpact: model.ProductionImpact(raw.ProductionImpact),
			TargetField:      model.TargetField(raw.TargetField),
		})
	}
	return out
}

func parseAssessment(raw string) (*Assessment, error) {
	var payload assessmentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parsing assessment response: %w", err)
	}
	return payload.toAssessment(), nil
}

func parseBatchAssessment(raw string) (map[string]*Assessment, error) {
	var payload struct {
		Assessments map[string]assessmentPayload `json:"assessments"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("parsing batch assessment response: %w", err)
	}
	out := make(map[string]*Assessment, len(payload.Assessments))
	for id := range payload.Assessments {
		p := payload.Assessments[id]
		out[id] = p.toAssessment()
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
