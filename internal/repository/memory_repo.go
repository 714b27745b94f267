package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"mathqc/internal/model"
)

// memoryQuestionRepo backs the repo interface with a map. Used by tests and
// by local runs without a Mongo instance.
type memoryQuestionRepo struct {
	mu        sync.RWMutex
	questions map[string]model.Question
	order     []string
}

func NewMemoryQuestionRepo() QuestionRepo {
	return &memoryQuestionRepo{questions: make(map[string]model.Question)}
}

func (r *memoryQuestionRepo) Create(_ context.Context, question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if _, exists := r.questions[question.ID]; !exists {
		r.order = append(r.order, question.ID)
	}
	r.questions[question.ID] = *question
	return nil
}

func (r *memoryQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *memoryQuestionRepo) Update(_ context.Context, question *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.questions[question.ID]; !exists {
		r.order = append(r.order, question.ID)
	}
	r.questions[question.ID] = *question
	return nil
}

func (r *memoryQuestionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.questions, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryQuestionRepo) GetByIDs(_ context.Context, ids []string) ([]*model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Question
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			copied := q
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryQuestionRepo) GetByGrade(_ context.Context, grade int) ([]*model.Question, error) {
	return r.filter(func(q model.Question) bool { return q.Grade == grade }), nil
}

func (r *memoryQuestionRepo) GetByDomain(_ context.Context, domain string) ([]*model.Question, error) {
	return r.filter(func(q model.Question) bool { return q.Domain == domain }), nil
}

func (r *memoryQuestionRepo) GetAll(_ context.Context) ([]*model.Question, error) {
	return r.filter(func(model.Question) bool { return true }), nil
}

// filter walks questions in insertion order
func (r *memoryQuestionRepo) filter(keep func(model.Question) bool) []*model.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Question
	for _, id := range r.order {
		if q, ok := r.questions[id]; ok && keep(q) {
			copied := q
			out = append(out, &copied)
		}
	}
	return out
}
