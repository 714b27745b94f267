// Package service wires the deterministic checkers, the rule engine, and the
// AI analyzer into the verification operations the transport layer exposes.
package service

import (
	"context"

	"github.com/google/uuid"

	"mathqc/internal/ai"
	"mathqc/internal/breaker"
	"mathqc/internal/model"
	"mathqc/internal/rules"
	"mathqc/internal/validate"
)

// mathValidationPenalty is subtracted from the AI score when the
// deterministic math validation does not fully pass.
const mathValidationPenalty = 30

// ruleScoreWeight scales how much lost rule-engine points drag the final score
const ruleScoreWeight = 0.3

// VerifierService orchestrates question verification: deterministic math
// validation, rule aggregation, and the breaker-guarded AI assessment,
// merged into one score and issue list.
type VerifierService struct {
	validator *validate.Validator
	engine    *rules.Engine
	analyzer  ai.Analyzer // nil runs deterministic-only
	aiBreaker *breaker.Breaker
}

// NewVerifierService creates the orchestrator. It owns its breaker
// instances; nothing here is package-level state.
func NewVerifierService(validator *validate.Validator, engine *rules.Engine, analyzer ai.Analyzer, breakerCfg breaker.Config) *VerifierService {
	return &VerifierService{
		validator: validator,
		engine:    engine,
		analyzer:  analyzer,
		aiBreaker: breaker.New("ai-analyzer", breakerCfg),
	}
}

// AIBreaker exposes the analyzer breaker for health reporting
func (s *VerifierService) AIBreaker() *breaker.Breaker { return s.aiBreaker }

// ValidateQuestion runs the deterministic-only path: math validation and
// rules, with a neutral AI placeholder. Used when AI is intentionally
// bypassed.
func (s *VerifierService) ValidateQuestion(q *model.Question) *model.VerificationResult {
	return s.combine(q, ai.Neutral(), true)
}

// VerifyQuestion runs the full orchestrated path. The AI assessment is
// guarded by the circuit breaker; when the breaker is open or the call
// fails, the result degrades to the deterministic verdict and is marked
// AIUnavailable.
func (s *VerifierService) VerifyQuestion(ctx context.Context, q *model.Question) (*model.VerificationResult, error) {
	if s.analyzer == nil {
		return s.ValidateQuestion(q), nil
	}
	primary := func(ctx context.Context) (*model.VerificationResult, error) {
		assessment, err := s.analyzer.Analyze(ctx, q)
		if err != nil {
			return nil, err
		}
		return s.combine(q, assessment, false), nil
	}
	fallback := func(context.Context) (*model.VerificationResult, error) {
		return s.combine(q, ai.Neutral(), true), nil
	}
	return breaker.Call(ctx, s.aiBreaker, primary, fallback)
}

// combine merges the three verdicts:
//
//	score = clamp(aiScore - mathPenalty - 0.3*(100 - ruleScore), 0, 100)
//
// The issue list is the union of rule issues, AI issues, and one synthesized
// critical issue per computational error from the math validation.
func (s *VerifierService) combine(q *model.Question, assessment *ai.Assessment, aiUnavailable bool) *model.VerificationResult {
	math := s.validator.Validate(q)
	report := s.engine.Run(q)

	mathPenalty := 0.0
	if !math.Valid() {
		mathPenalty = mathValidationPenalty
	}
	rulePenalty := 100 - report.Score

	result := &model.VerificationResult{
		QuestionID:             q.ID,
		Score:                  clamp(assessment.Score-mathPenalty-ruleScoreWeight*rulePenalty, 0, 100),
		MathematicalValidation: math,
		CommonCoreAlignment:    assessment.CommonCoreAlignment,
		AIUnavailable:          aiUnavailable,
	}

	result.Issues = append(result.Issues, report.Issues...)
	result.Issues = append(result.Issues, assessment.Issues...)
	for _, msg := range math.ComputationalErrors {
		result.Issues = append(result.Issues, model.Issue{
			ID:               uuid.NewString(),
			Kind:             model.IssueKindError,
			Category:         model.CategoryMathematicalAccuracy,
			Severity:         model.SeverityCritical,
			Confidence:       1,
			Description:      "computational error: " + msg,
			ValidationMethod: model.MethodDeterministicMath,
			ProductionImpact: model.ImpactBlocksGrading,
		})
	}
	return result
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
