package dedupe

import (
	"fmt"

	"mathqc/internal/model"
)

// Detect partitions a batch of questions into duplicate groups.
//
// The scan is a single left-to-right pass: each not-yet-grouped question
// seeds a candidate group and is compared against every later ungrouped
// question. A question judged a duplicate joins the current group and can
// never seed or join another, so grouping is first-seen-wins, not a
// transitive closure. The result therefore depends on input ordering; this
// is a deliberate behavior, not an accident.
func Detect(questions []model.Question, opts model.DetectOptions) (*model.DuplicateDetectionResult, error) {
	if opts.SimilarityThreshold != 0 && (opts.SimilarityThreshold < 0.5 || opts.SimilarityThreshold > 1) {
		return nil, fmt.Errorf("similarity threshold %.2f outside [0.5, 1]", opts.SimilarityThreshold)
	}
	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = model.DefaultDetectOptions().SimilarityThreshold
	}

	result := &model.DuplicateDetectionResult{}
	grouped := make([]bool, len(questions))

	for i := range questions {
		if grouped[i] {
			continue
		}
		group := model.DuplicateGroup{
			MatchType: model.MatchExact,
			Score:     1,
			Questions: []model.Question{questions[i]},
		}
		for j := i + 1; j < len(questions); j++ {
			if grouped[j] {
				continue
			}
			score, matched := compare(&questions[i], &questions[j], opts, threshold)
			if !matched {
				continue
			}
			grouped[j] = true
			group.Questions = append(group.Questions, questions[j])
			// The group keeps its weakest pairwise score
			if score < group.Score {
				group.Score = score
			}
			if score < 1 {
				group.MatchType = model.MatchSimilar
			}
		}
		if len(group.Questions) >= 2 {
			grouped[i] = true
			result.Groups = append(result.Groups, group)
			result.TotalDuplicates += len(group.Questions) - 1
			result.KeptQuestions = append(result.KeptQuestions, group.Questions[0])
			result.RemovedQuestions = append(result.RemovedQuestions, group.Questions[1:]...)
		} else {
			result.KeptQuestions = append(result.KeptQuestions, questions[i])
		}
	}

	result.UniqueQuestions = len(questions) - result.TotalDuplicates
	return result, nil
}

// compare runs the pairwise duplicate test: exact match first, then the
// weighted content-similarity comparator.
func compare(a, b *model.Question, opts model.DetectOptions, threshold float64) (float64, bool) {
	if opts.ExactMatch && exactEqual(a, b, opts.IgnoreWhitespace) {
		return 1, true
	}
	if opts.ContentSimilarity {
		score := contentSimilarity(a, b, opts.IgnoreWhitespace)
		if score >= threshold {
			return score, true
		}
	}
	return 0, false
}
