package service

import (
	"context"
	"errors"
	"time"

	"mathqc/internal/dedupe"
	"mathqc/internal/model"
)

// DefaultDedupeTimeout is the hard deadline for a duplicate-removal run
const DefaultDedupeTimeout = 120 * time.Second

// ErrDeduplicationTimeout marks a duplicate-removal run that exceeded its
// deadline. The caller should advise re-submission; the engine does not
// retry on its own.
var ErrDeduplicationTimeout = errors.New("duplicate removal exceeded its deadline")

// DedupeService runs the duplicate-removal pipeline with a hard deadline
type DedupeService struct {
	timeout time.Duration
	// threshold is the configured similarity threshold applied when the
	// caller's options leave it unset
	threshold float64
}

// NewDedupeService creates the service; zero timeout and threshold use the
// detector defaults
func NewDedupeService(timeout time.Duration, threshold float64) *DedupeService {
	if timeout <= 0 {
		timeout = DefaultDedupeTimeout
	}
	return &DedupeService{timeout: timeout, threshold: threshold}
}

// DetectDuplicates runs detection over a batch without mutating anything
func (s *DedupeService) DetectDuplicates(ctx context.Context, questions []model.Question, opts model.DetectOptions) (*model.DuplicateDetectionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if ctx.Err() != nil {
		return nil, ErrDeduplicationTimeout
	}

	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = s.threshold
	}

	type outcome struct {
		result *model.DuplicateDetectionResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := dedupe.Detect(questions, opts)
		done <- outcome{result, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ErrDeduplicationTimeout
	}
}

// RemoveDuplicates runs detection and summarizes the keep/remove partition
func (s *DedupeService) RemoveDuplicates(ctx context.Context, questions []model.Question, opts model.DetectOptions) (*model.DuplicateDetectionResult, *model.DeduplicationStats, error) {
	result, err := s.DetectDuplicates(ctx, questions, opts)
	if err != nil {
		return nil, nil, err
	}

	stats := &model.DeduplicationStats{
		Processed:     len(questions),
		Removed:       result.TotalDuplicates,
		KeptByGrade:   make(map[int]int),
		KeptByDomain:  make(map[string]int),
		RemovalReason: make(map[string]int),
	}
	for _, q := range result.KeptQuestions {
		stats.KeptByGrade[q.Grade]++
		stats.KeptByDomain[q.Domain]++
	}
	for _, g := range result.Groups {
		stats.RemovalReason[string(g.MatchType)] += len(g.Questions) - 1
	}
	return result, stats, nil
}
