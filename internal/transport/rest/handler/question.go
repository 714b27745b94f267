package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"mathqc/internal/model"
	"mathqc/internal/repository"
)

// QuestionHandler handles question-bank CRUD endpoints
type QuestionHandler struct {
	repo repository.QuestionRepo
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(repo repository.QuestionRepo) *QuestionHandler {
	return &QuestionHandler{repo: repo}
}

// Create handles POST /v1/questions
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var q model.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if q.QuestionText == "" || q.CorrectAnswer == "" {
		writeError(w, http.StatusBadRequest, "questionText and correctAnswer are required")
		return
	}

	if err := h.repo.Create(r.Context(), &q); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

// Get handles GET /v1/questions/{questionId}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]

	q, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// List handles GET /v1/questions with optional grade and domain filters
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		questions []*model.Question
		err       error
	)

	switch {
	case r.URL.Query().Get("grade") != "":
		grade, convErr := strconv.Atoi(r.URL.Query().Get("grade"))
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "grade must be an integer")
			return
		}
		questions, err = h.repo.GetByGrade(r.Context(), grade)
	case r.URL.Query().Get("domain") != "":
		questions, err = h.repo.GetByDomain(r.Context(), r.URL.Query().Get("domain"))
	default:
		questions, err = h.repo.GetAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// Update handles PUT /v1/questions/{questionId}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]

	var q model.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q.ID = id

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	if err := h.repo.Update(r.Context(), &q); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// Delete handles DELETE /v1/questions/{questionId}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionId"]

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
