package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathqc/internal/breaker"
	"mathqc/internal/model"
	"mathqc/internal/repository"
	"mathqc/internal/rules"
	"mathqc/internal/service"
	"mathqc/internal/validate"
)

func testRouter() http.Handler {
	verifier := service.NewVerifierService(
		validate.NewValidator(validate.PolicyDefaultGrade2),
		rules.NewEngine(validate.PolicyDefaultGrade2),
		nil,
		breaker.DefaultConfig(),
	)
	return NewRouter(&Container{
		AuthService:       service.NewAuthService("editor", "secret", "test-signing-key"),
		VerifierService:   verifier,
		DedupeService:     service.NewDedupeService(0, 0),
		DistractorService: service.NewDistractorService(validate.PolicyDefaultGrade2, 1),
		QuestionRepo:      repository.NewMemoryQuestionRepo(),
	})
}

func TestRouter_HealthReportsBreakerState(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "closed", body["aiBreaker"])
}

func TestRouter_QuestionRoutesRequireAuth(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/questions", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LoginThenCreateQuestion(t *testing.T) {
	router := testRouter()

	login, _ := json.Marshal(model.LoginRequest{Username: "editor", Password: "secret"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(login)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	question, _ := json.Marshal(model.Question{
		Grade:         2,
		Domain:        "OA",
		Standard:      "2.OA.2",
		QuestionText:  "Leo has 8 marbles and finds 5 more. How many marbles does he have now?",
		CorrectAnswer: "13",
		Explanation:   "Add the marbles: 8 + 5 = 13.",
		Choices:       []string{"10", "13", "16", "40"},
		AnswerKey:     model.AnswerKeyB,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/questions", bytes.NewReader(question))
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
}

func TestRouter_BadLogin(t *testing.T) {
	router := testRouter()

	login, _ := json.Marshal(model.LoginRequest{Username: "editor", Password: "wrong"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(login)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
