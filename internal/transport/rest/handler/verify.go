package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"mathqc/internal/cache"
	"mathqc/internal/model"
	"mathqc/internal/repository"
	"mathqc/internal/service"
)

// VerifyHandler handles question verification endpoints
type VerifyHandler struct {
	verifier    *service.VerifierService
	dedupe      *service.DedupeService
	distractors *service.DistractorService
	repo        repository.QuestionRepo
	results     cache.VerificationCache // nil disables result caching
}

// NewVerifyHandler creates a new verification handler
func NewVerifyHandler(
	verifier *service.VerifierService,
	dedupe *service.DedupeService,
	distractors *service.DistractorService,
	repo repository.QuestionRepo,
	results cache.VerificationCache,
) *VerifyHandler {
	return &VerifyHandler{
		verifier:    verifier,
		dedupe:      dedupe,
		distractors: distractors,
		repo:        repo,
		results:     results,
	}
}

func (h *VerifyHandler) loadQuestion(w http.ResponseWriter, r *http.Request) *model.Question {
	id := mux.Vars(r)["questionId"]

	q, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return nil
	}
	return q
}

// Validate handles POST /v1/questions/{questionId}/validate
// It runs only the deterministic checks, never the AI stage.
func (h *VerifyHandler) Validate(w http.ResponseWriter, r *http.Request) {
	q := h.loadQuestion(w, r)
	if q == nil {
		return
	}
	writeJSON(w, http.StatusOK, h.verifier.ValidateQuestion(q))
}

// Verify handles POST /v1/questions/{questionId}/verify
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := h.loadQuestion(w, r)
	if q == nil {
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	if h.results != nil && !refresh {
		if cached, err := h.results.Get(r.Context(), q); err == nil && !cached.AIUnavailable {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result, err := h.verifier.VerifyQuestion(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Degraded results are not worth caching; the AI may be back shortly
	if h.results != nil && !result.AIUnavailable {
		_ = h.results.Set(r.Context(), q, result)
	}

	writeJSON(w, http.StatusOK, result)
}

// VerifyBatchRequest is the request body for batch verification. Questions
// may be supplied inline or referenced by id.
type VerifyBatchRequest struct {
	Questions []model.Question `json:"questions"`
	IDs       []string         `json:"ids"`
}

// VerifyBatch handles POST /v1/questions/verify-batch
func (h *VerifyHandler) VerifyBatch(w http.ResponseWriter, r *http.Request) {
	var req VerifyBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions := req.Questions
	if len(questions) == 0 && len(req.IDs) > 0 {
		loaded, err := h.repo.GetByIDs(r.Context(), req.IDs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, q := range loaded {
			questions = append(questions, *q)
		}
	}

	out, err := h.verifier.VerifyBatch(r.Context(), questions)
	if err != nil {
		if errors.Is(err, service.ErrBatchEmpty) || errors.Is(err, service.ErrBatchTooLarge) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// DuplicatesRequest is the request body for duplicate detection
type DuplicatesRequest struct {
	Questions []model.Question     `json:"questions"`
	Options   *model.DetectOptions `json:"options"`
	// Remove also returns the keep/remove partition statistics
	Remove bool `json:"remove"`
}

// Duplicates handles POST /v1/questions/duplicates
func (h *VerifyHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	var req DuplicatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := model.DefaultDetectOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	if req.Remove {
		result, stats, err := h.dedupe.RemoveDuplicates(r.Context(), req.Questions, opts)
		if err != nil {
			writeDedupeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"result": result, "stats": stats})
		return
	}

	result, err := h.dedupe.DetectDuplicates(r.Context(), req.Questions, opts)
	if err != nil {
		writeDedupeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeDedupeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrDeduplicationTimeout) {
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// ApplyFixesRequest is the request body for applying approved fixes. The
// client sends back the verification result it received, so fixes resolve
// against those exact issues without re-verifying.
type ApplyFixesRequest struct {
	Result     model.VerificationResult `json:"result"`
	Selections []model.FixSelection     `json:"selections"`
	// Persist writes the fixed question back to the question bank
	Persist bool `json:"persist"`
}

// ApplyFixes handles POST /v1/questions/{questionId}/fixes
func (h *VerifyHandler) ApplyFixes(w http.ResponseWriter, r *http.Request) {
	q := h.loadQuestion(w, r)
	if q == nil {
		return
	}

	var req ApplyFixesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Selections) == 0 {
		writeError(w, http.StatusBadRequest, "no fixes selected")
		return
	}

	fixed, err := service.ApplyFixes(q, &req.Result, req.Selections)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Persist {
		if err := h.repo.Update(r.Context(), fixed); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if h.results != nil {
			_ = h.results.Delete(r.Context(), q)
		}
	}

	writeJSON(w, http.StatusOK, fixed)
}

// DistractorsRequest is the request body for distractor improvement
type DistractorsRequest struct {
	// Apply writes the improved choices back to the question bank
	Apply bool `json:"apply"`
}

// Distractors handles POST /v1/questions/{questionId}/distractors
func (h *VerifyHandler) Distractors(w http.ResponseWriter, r *http.Request) {
	q := h.loadQuestion(w, r)
	if q == nil {
		return
	}

	var req DistractorsRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	out := h.distractors.ImproveDistractors(q)

	if req.Apply && out.Improved {
		old := *q
		q.Choices = out.Choices
		q.AnswerKey = out.AnswerKey
		if err := h.repo.Update(r.Context(), q); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if h.results != nil {
			_ = h.results.Delete(r.Context(), &old)
		}
	}

	writeJSON(w, http.StatusOK, out)
}
