package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathqc/internal/ai"
	"mathqc/internal/breaker"
	"mathqc/internal/model"
)

func TestVerifyBatch_RejectsEmptyAndOversized(t *testing.T) {
	s := newVerifier(nil, breaker.DefaultConfig())

	_, err := s.VerifyBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBatchEmpty)

	big := make([]model.Question, MaxBatchSize+1)
	for i := range big {
		big[i] = *cleanQuestion()
		big[i].ID = fmt.Sprintf("q%d", i)
	}
	_, err = s.VerifyBatch(context.Background(), big)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestVerifyBatch_AcceptsFullBatch(t *testing.T) {
	s := newVerifier(nil, breaker.DefaultConfig())

	full := make([]model.Question, MaxBatchSize)
	for i := range full {
		full[i] = *cleanQuestion()
		full[i].ID = fmt.Sprintf("q%d", i)
	}

	out, err := s.VerifyBatch(context.Background(), full)
	require.NoError(t, err)
	assert.Len(t, out.Results, MaxBatchSize)
	assert.Equal(t, 100.0, out.Summary.AverageScore)
}

func TestVerifyBatch_SingleAICallForWholeBatch(t *testing.T) {
	q1 := cleanQuestion()
	q2 := cleanQuestion()
	q2.ID = "q2"

	stub := &stubAnalyzer{batch: map[string]*ai.Assessment{
		"q1": {Score: 95},
		"q2": {Score: 85},
	}}
	s := newVerifier(stub, breaker.DefaultConfig())

	out, err := s.VerifyBatch(context.Background(), []model.Question{*q1, *q2})
	require.NoError(t, err)

	assert.Equal(t, 1, stub.batchCalls)
	assert.Equal(t, 0, stub.calls)
	require.Len(t, out.Results, 2)
	assert.Equal(t, 95.0, out.Results[0].Score)
	assert.Equal(t, 85.0, out.Results[1].Score)
	assert.Equal(t, 90.0, out.Summary.AverageScore)
}

func TestVerifyBatch_MissingAssessmentDegradesThatQuestionOnly(t *testing.T) {
	q1 := cleanQuestion()
	q2 := cleanQuestion()
	q2.ID = "q2"

	stub := &stubAnalyzer{batch: map[string]*ai.Assessment{
		"q1": {Score: 95},
	}}
	s := newVerifier(stub, breaker.DefaultConfig())

	out, err := s.VerifyBatch(context.Background(), []model.Question{*q1, *q2})
	require.NoError(t, err)

	assert.False(t, out.Results[0].AIUnavailable)
	assert.True(t, out.Results[1].AIUnavailable)
	assert.Equal(t, 100.0, out.Results[1].Score)
}

func TestVerifyBatch_AnalyzerFailureDegradesWholeBatch(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("model overloaded")}
	s := newVerifier(stub, breaker.DefaultConfig())

	out, err := s.VerifyBatch(context.Background(), []model.Question{*cleanQuestion()})
	require.NoError(t, err)
	assert.True(t, out.Results[0].AIUnavailable)
	assert.Equal(t, 100.0, out.Results[0].Score)
}

func TestVerifyBatch_SummaryFindsCommonPatterns(t *testing.T) {
	q1 := cleanQuestion()
	q1.Explanation = "Add the marbles: 8 + 5 = 14. The answer is 13."
	q2 := cleanQuestion()
	q2.ID = "q2"
	q2.Explanation = "Add the marbles: 8 + 5 = 12. The answer is 13."

	s := newVerifier(nil, breaker.DefaultConfig())
	out, err := s.VerifyBatch(context.Background(), []model.Question{*q1, *q2})
	require.NoError(t, err)

	require.NotEmpty(t, out.Summary.CommonPatterns)
	assert.Contains(t, out.Summary.CommonPatterns[0], "mathematical_accuracy issues in 2 questions")
	assert.NotEmpty(t, out.Summary.Recommendations)
	assert.Greater(t, out.Summary.TotalIssues, 0)
}

func TestVerifyBatch_CleanBatchRecommendation(t *testing.T) {
	s := newVerifier(nil, breaker.DefaultConfig())
	out, err := s.VerifyBatch(context.Background(), []model.Question{*cleanQuestion()})
	require.NoError(t, err)

	assert.Equal(t, 100.0, out.Summary.AverageScore)
	assert.Equal(t, []string{"Batch looks production ready."}, out.Summary.Recommendations)
}
