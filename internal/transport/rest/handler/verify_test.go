package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathqc/internal/breaker"
	"mathqc/internal/model"
	"mathqc/internal/repository"
	"mathqc/internal/rules"
	"mathqc/internal/service"
	"mathqc/internal/validate"
)

func testHandler(t *testing.T) (*VerifyHandler, repository.QuestionRepo) {
	t.Helper()
	repo := repository.NewMemoryQuestionRepo()
	verifier := service.NewVerifierService(
		validate.NewValidator(validate.PolicyDefaultGrade2),
		rules.NewEngine(validate.PolicyDefaultGrade2),
		nil,
		breaker.DefaultConfig(),
	)
	h := NewVerifyHandler(verifier, service.NewDedupeService(0, 0),
		service.NewDistractorService(validate.PolicyDefaultGrade2, 1), repo, nil)
	return h, repo
}

func seedQuestion(t *testing.T, repo repository.QuestionRepo) *model.Question {
	t.Helper()
	q := &model.Question{
		Grade:         2,
		Domain:        "OA",
		Standard:      "2.OA.2",
		QuestionText:  "Leo has 8 marbles and finds 5 more. How many marbles does he have now?",
		CorrectAnswer: "13",
		Explanation:   "Add the marbles: 8 + 5 = 13.",
		Choices:       []string{"10", "13", "16", "40"},
		AnswerKey:     model.AnswerKeyB,
	}
	require.NoError(t, repo.Create(context.Background(), q))
	return q
}

func withQuestionID(r *http.Request, id string) *http.Request {
	return mux.SetURLVars(r, map[string]string{"questionId": id})
}

func TestVerifyHandler_Validate(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)

	req := withQuestionID(httptest.NewRequest(http.MethodPost, "/v1/questions/x/validate", nil), q.ID)
	rec := httptest.NewRecorder()
	h.Validate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result model.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.AIUnavailable)
}

func TestVerifyHandler_ValidateUnknownQuestion(t *testing.T) {
	h, _ := testHandler(t)

	req := withQuestionID(httptest.NewRequest(http.MethodPost, "/v1/questions/x/validate", nil), "missing")
	rec := httptest.NewRecorder()
	h.Validate(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyHandler_VerifyBatchInline(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)

	body, _ := json.Marshal(VerifyBatchRequest{Questions: []model.Question{*q}})
	req := httptest.NewRequest(http.MethodPost, "/v1/questions/verify-batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.VerifyBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out model.BatchVerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, 100.0, out.Summary.AverageScore)
}

func TestVerifyHandler_VerifyBatchByIDs(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)

	body, _ := json.Marshal(VerifyBatchRequest{IDs: []string{q.ID}})
	req := httptest.NewRequest(http.MethodPost, "/v1/questions/verify-batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.VerifyBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyHandler_VerifyBatchEmpty(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/questions/verify-batch", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.VerifyBatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyHandler_Duplicates(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)
	dup := *q
	dup.ID = "copy"

	body, _ := json.Marshal(DuplicatesRequest{Questions: []model.Question{*q, dup}, Remove: true})
	req := httptest.NewRequest(http.MethodPost, "/v1/questions/duplicates", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Duplicates(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Result model.DuplicateDetectionResult `json:"result"`
		Stats  model.DeduplicationStats       `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Result.TotalDuplicates)
	assert.Equal(t, 2, out.Stats.Processed)
}

func TestVerifyHandler_ApplyFixesPersists(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)

	result := model.VerificationResult{
		QuestionID: q.ID,
		Issues: []model.Issue{{
			ID:           "i1",
			TargetField:  model.TargetExplanation,
			SuggestedFix: "Add the marbles: 8 + 5 = 13, so Leo has 13 marbles.",
		}},
	}
	body, _ := json.Marshal(ApplyFixesRequest{
		Result:     result,
		Selections: []model.FixSelection{{IssueID: "i1"}},
		Persist:    true,
	})
	req := withQuestionID(httptest.NewRequest(http.MethodPost, "/v1/questions/x/fixes", bytes.NewReader(body)), q.ID)
	rec := httptest.NewRecorder()
	h.ApplyFixes(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	stored, err := repo.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Add the marbles: 8 + 5 = 13, so Leo has 13 marbles.", stored.Explanation)
}

func TestVerifyHandler_ApplyFixesRejectsEmptySelection(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)

	req := withQuestionID(httptest.NewRequest(http.MethodPost, "/v1/questions/x/fixes", bytes.NewReader([]byte(`{}`))), q.ID)
	rec := httptest.NewRecorder()
	h.ApplyFixes(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyHandler_DistractorsApply(t *testing.T) {
	h, repo := testHandler(t)
	q := seedQuestion(t, repo)

	body := bytes.NewReader([]byte(`{"apply":true}`))
	req := withQuestionID(httptest.NewRequest(http.MethodPost, "/v1/questions/x/distractors", body), q.ID)
	rec := httptest.NewRecorder()
	h.Distractors(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out service.DistractorImprovement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, out.Improved)

	stored, err := repo.GetByID(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Choices, stored.Choices)
	assert.Equal(t, out.AnswerKey, stored.AnswerKey)
}
