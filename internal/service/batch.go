package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"mathqc/internal/ai"
	"mathqc/internal/breaker"
	"mathqc/internal/model"
)

// MaxBatchSize caps verifyBatch; larger batches are rejected, not truncated
const MaxBatchSize = 20

var (
	// ErrBatchEmpty rejects a batch with no questions
	ErrBatchEmpty = errors.New("batch contains no questions")
	// ErrBatchTooLarge rejects a batch above MaxBatchSize
	ErrBatchTooLarge = fmt.Errorf("batch exceeds the maximum of %d questions", MaxBatchSize)
)

// VerifyBatch verifies up to MaxBatchSize questions with a single AI
// round-trip for the whole batch. Oversized and empty batches fail fast.
func (s *VerifierService) VerifyBatch(ctx context.Context, questions []model.Question) (*model.BatchVerificationResult, error) {
	if len(questions) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(questions) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	assessments, aiUnavailable := s.assessBatch(ctx, questions)

	out := &model.BatchVerificationResult{}
	for i := range questions {
		assessment := assessments[questions[i].ID]
		degraded := aiUnavailable
		if assessment == nil {
			// The model skipped this id; fall back to neutral for it alone
			assessment = ai.Neutral()
			degraded = true
		}
		out.Results = append(out.Results, s.combine(&questions[i], assessment, degraded))
	}
	out.Summary = summarize(out.Results)
	return out, nil
}

// assessBatch runs the one-per-batch AI call through the breaker. The
// fallback is an empty assessment map, which degrades every question to the
// deterministic path.
func (s *VerifierService) assessBatch(ctx context.Context, questions []model.Question) (map[string]*ai.Assessment, bool) {
	if s.analyzer == nil {
		return nil, true
	}
	type outcome struct {
		assessments map[string]*ai.Assessment
		degraded    bool
	}
	result, _ := breaker.Call(ctx, s.aiBreaker,
		func(ctx context.Context) (outcome, error) {
			assessments, err := s.analyzer.AnalyzeBatch(ctx, questions)
			if err != nil {
				return outcome{}, err
			}
			return outcome{assessments: assessments}, nil
		},
		func(context.Context) (outcome, error) {
			return outcome{degraded: true}, nil
		},
	)
	return result.assessments, result.degraded
}

func summarize(results []*model.VerificationResult) model.BatchSummary {
	summary := model.BatchSummary{}
	categoryCounts := make(map[model.IssueCategory]int)

	total := 0.0
	for _, r := range results {
		total += r.Score
		summary.TotalIssues += len(r.Issues)
		seen := make(map[model.IssueCategory]bool)
		for _, issue := range r.Issues {
			if !seen[issue.Category] {
				seen[issue.Category] = true
				categoryCounts[issue.Category]++
			}
		}
	}
	summary.AverageScore = total / float64(len(results))

	// Categories touching more than one question are batch-wide patterns
	type pattern struct {
		category model.IssueCategory
		count    int
	}
	var patterns []pattern
	for category, count := range categoryCounts {
		if count >= 2 {
			patterns = append(patterns, pattern{category, count})
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].count != patterns[j].count {
			return patterns[i].count > patterns[j].count
		}
		return patterns[i].category < patterns[j].category
	})
	for _, p := range patterns {
		summary.CommonPatterns = append(summary.CommonPatterns,
			fmt.Sprintf("%s issues in %d questions", p.category, p.count))
	}

	summary.Recommendations = recommend(categoryCounts, summary.AverageScore)
	return summary
}

func recommend(categoryCounts map[model.IssueCategory]int, averageScore float64) []string {
	var recs []string
	if categoryCounts[model.CategoryMathematicalAccuracy] > 0 {
		recs = append(recs, "Recheck the arithmetic in the flagged questions before publishing.")
	}
	if categoryCounts[model.CategoryGradeAppropriateness] > 0 {
		recs = append(recs, "Reduce the numbers in flagged questions to fit the grade-level ceilings.")
	}
	if categoryCounts[model.CategoryClarity] > 0 {
		recs = append(recs, "Review flagged questions for truncated or inconsistent text.")
	}
	if len(recs) == 0 && averageScore >= 90 {
		recs = append(recs, "Batch looks production ready.")
	}
	return recs
}
