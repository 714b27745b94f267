package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathqc/internal/ai"
	"mathqc/internal/breaker"
	"mathqc/internal/model"
	"mathqc/internal/rules"
	"mathqc/internal/validate"
)

// stubAnalyzer lets tests script the AI stage and count calls
type stubAnalyzer struct {
	assessment *ai.Assessment
	batch      map[string]*ai.Assessment
	err        error
	calls      int
	batchCalls int
}

func (s *stubAnalyzer) Name() string { return "stub" }

func (s *stubAnalyzer) Analyze(context.Context, *model.Question) (*ai.Assessment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.assessment, nil
}

func (s *stubAnalyzer) AnalyzeBatch(context.Context, []model.Question) (map[string]*ai.Assessment, error) {
	s.batchCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func newVerifier(analyzer ai.Analyzer, cfg breaker.Config) *VerifierService {
	return NewVerifierService(
		validate.NewValidator(validate.PolicyDefaultGrade2),
		rules.NewEngine(validate.PolicyDefaultGrade2),
		analyzer,
		cfg,
	)
}

func cleanQuestion() *model.Question {
	return &model.Question{
		ID:            "q1",
		Grade:         2,
		Domain:        "OA",
		Standard:      "2.OA.2",
		QuestionText:  "Leo has 8 marbles and finds 5 more. How many marbles does he have now?",
		CorrectAnswer: "13",
		Explanation:   "Add the marbles: 8 + 5 = 13.",
		Choices:       []string{"10", "13", "16", "40"},
		AnswerKey:     model.AnswerKeyB,
	}
}

func TestValidateQuestion_DeterministicOnly(t *testing.T) {
	s := newVerifier(nil, breaker.DefaultConfig())

	result := s.ValidateQuestion(cleanQuestion())
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.AIUnavailable)
	assert.True(t, result.MathematicalValidation.Valid())
	assert.Empty(t, result.Issues)
}

func TestVerifyQuestion_NilAnalyzerDegrades(t *testing.T) {
	s := newVerifier(nil, breaker.DefaultConfig())

	result, err := s.VerifyQuestion(context.Background(), cleanQuestion())
	require.NoError(t, err)
	assert.True(t, result.AIUnavailable)
	assert.Equal(t, 100.0, result.Score)
}

func TestVerifyQuestion_UsesAIScore(t *testing.T) {
	stub := &stubAnalyzer{assessment: &ai.Assessment{Score: 90}}
	s := newVerifier(stub, breaker.DefaultConfig())

	result, err := s.VerifyQuestion(context.Background(), cleanQuestion())
	require.NoError(t, err)
	assert.False(t, result.AIUnavailable)
	assert.Equal(t, 90.0, result.Score)
	assert.Equal(t, 1, stub.calls)
}

func TestVerifyQuestion_MathFailurePenalty(t *testing.T) {
	stub := &stubAnalyzer{assessment: &ai.Assessment{Score: 100}}
	s := newVerifier(stub, breaker.DefaultConfig())

	q := cleanQuestion()
	q.Explanation = "Add the marbles: 8 + 5 = 14. The answer is 13."

	result, err := s.VerifyQuestion(context.Background(), q)
	require.NoError(t, err)

	// One arithmetic error: math penalty 30 plus 0.3 of the 20 rule points
	assert.Equal(t, 64.0, result.Score)
	assert.False(t, result.MathematicalValidation.Valid())

	var synthesized []model.Issue
	for _, issue := range result.Issues {
		if issue.ValidationMethod == model.MethodDeterministicMath {
			synthesized = append(synthesized, issue)
		}
	}
	require.Len(t, synthesized, 1)
	assert.Equal(t, model.SeverityCritical, synthesized[0].Severity)
	assert.Equal(t, model.ImpactBlocksGrading, synthesized[0].ProductionImpact)
}

func TestVerifyQuestion_ScoreClampedAtZero(t *testing.T) {
	stub := &stubAnalyzer{assessment: &ai.Assessment{Score: 10}}
	s := newVerifier(stub, breaker.DefaultConfig())

	q := cleanQuestion()
	q.Explanation = "Add: 8 + 5 = 14 and 2 + 2 = 5 and 3 - 1 = 7."

	result, err := s.VerifyQuestion(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Score)
}

func TestVerifyQuestion_FallbackOnAnalyzerError(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("model overloaded")}
	s := newVerifier(stub, breaker.DefaultConfig())

	result, err := s.VerifyQuestion(context.Background(), cleanQuestion())
	require.NoError(t, err)
	assert.True(t, result.AIUnavailable)
	assert.Equal(t, 100.0, result.Score)
}

func TestVerifyQuestion_BreakerStopsCallingAnalyzer(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("model overloaded")}
	s := newVerifier(stub, breaker.Config{MaxFailures: 2, ResetTimeout: time.Minute})

	for i := 0; i < 5; i++ {
		result, err := s.VerifyQuestion(context.Background(), cleanQuestion())
		require.NoError(t, err)
		assert.True(t, result.AIUnavailable)
	}

	// The breaker opened after two failures; later calls never reach the stub
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, breaker.StateOpen, s.AIBreaker().State())
}
