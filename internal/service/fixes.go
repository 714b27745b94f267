package service

import (
	"errors"
	"fmt"

	"mathqc/internal/model"
)

// ErrNoFixTarget rejects applying a fix for an issue without a target field
var ErrNoFixTarget = errors.New("issue has no fixable target field")

// ApplyFixes applies user-approved fixes onto a copy of the question.
//
// The caller threads in the VerificationResult it already holds; fixes are
// resolved against that result's issues by id. Verification is never re-run
// here, so a non-deterministic AI pass cannot invalidate the selection.
// Dispatch is on the issue's typed TargetField, never on description text.
func ApplyFixes(q *model.Question, result *model.VerificationResult, selections []model.FixSelection) (*model.Question, error) {
	byID := make(map[string]*model.Issue, len(result.Issues))
	for i := range result.Issues {
		byID[result.Issues[i].ID] = &result.Issues[i]
	}

	updated := *q
	updated.Choices = append([]string(nil), q.Choices...)

	for _, sel := range selections {
		issue, ok := byID[sel.IssueID]
		if !ok {
			return nil, fmt.Errorf("issue %q is not part of the supplied verification result", sel.IssueID)
		}
		value := sel.Override
		if value == "" {
			value = issue.SuggestedFix
		}
		if value == "" {
			return nil, fmt.Errorf("issue %q carries no suggested fix and no override was given", sel.IssueID)
		}

		switch issue.TargetField {
		case model.TargetQuestionText:
			updated.QuestionText = value
		case model.TargetCorrectAnswer:
			updated.CorrectAnswer = value
		case model.TargetExplanation:
			updated.Explanation = value
		case model.TargetChoices:
			applyChoiceFix(&updated, issue, value)
		default:
			return nil, fmt.Errorf("issue %q: %w", sel.IssueID, ErrNoFixTarget)
		}
	}
	return &updated, nil
}

// applyChoiceFix replaces the faulty choice in place when the issue names
// one, and appends the value otherwise (the missing-correct-answer case).
func applyChoiceFix(q *model.Question, issue *model.Issue, value string) {
	for i, choice := range q.Choices {
		if choice == issue.CurrentValue {
			q.Choices[i] = value
			return
		}
	}
	for _, choice := range q.Choices {
		if choice == value {
			return
		}
	}
	q.Choices = append(q.Choices, value)
}
