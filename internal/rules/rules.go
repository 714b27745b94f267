package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"mathqc/internal/model"
	"mathqc/internal/validate"
)

// builtinRules returns the deterministic rule set in run order. The range
// checker comes from the engine so the rule path and the validator share one
// configured policy.
func builtinRules(ranges validate.RangeChecker) []Rule {
	return []Rule{
		{Name: "arithmetic", Check: checkArithmetic},
		{Name: "grade-limits", Check: checkGradeLimits(ranges)},
		{Name: "answer-explanation", Check: checkAnswerExplanation},
		{Name: "truncation", Check: checkTruncation},
		{Name: "choice-format", Check: checkChoiceFormat},
		{Name: "duplicate-choices", Check: checkDuplicateChoices},
		{Name: "correct-answer-present", Check: checkCorrectAnswerPresent},
		{Name: "prefix-corruption", Check: checkPrefixCorruption},
		{Name: "standard-alignment", Check: checkStandardAlignment},
		{Name: "question-length", Check: checkQuestionLength},
		{Name: "trivial-distractors", Check: checkTrivialDistractors},
	}
}

func checkArithmetic(q *model.Question) []model.Issue {
	combined := strings.Join(append([]string{q.QuestionText, q.Explanation}, q.Choices...), " ")
	var issues []model.Issue
	for _, msg := range validate.CheckArithmetic(combined) {
		issues = append(issues, model.Issue{
			Kind:             model.IssueKindError,
			Category:         model.CategoryMathematicalAccuracy,
			Severity:         model.SeverityCritical,
			Confidence:       1,
			Description:      "arithmetic statement does not compute: " + msg,
			ProductionImpact: model.ImpactBlocksGrading,
		})
	}
	return issues
}

func checkGradeLimits(ranges validate.RangeChecker) func(q *model.Question) []model.Issue {
	return func(q *model.Question) []model.Issue {
		texts := append([]string{q.QuestionText, q.Explanation}, q.Choices...)
		var issues []model.Issue
		for _, msg := range ranges.Check(q.Grade, texts...) {
			issues = append(issues, model.Issue{
				Kind:             model.IssueKindError,
				Category:         model.CategoryGradeAppropriateness,
				Severity:         model.SeverityMajor,
				Confidence:       1,
				Description:      msg,
				ProductionImpact: model.ImpactConfusesStudents,
			})
		}
		return issues
	}
}

func checkAnswerExplanation(q *model.Question) []model.Issue {
	if validate.AnswerExplanationConsistent(q.CorrectAnswer, q.Explanation) {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindError,
		Category:         model.CategoryMathematicalAccuracy,
		Severity:         model.SeverityMajor,
		Confidence:       0.9,
		Description:      fmt.Sprintf("correct answer %q is not supported by the explanation", q.CorrectAnswer),
		CurrentValue:     q.Explanation,
		ProductionImpact: model.ImpactConfusesStudents,
		TargetField:      model.TargetExplanation,
	}}
}

var (
	ellipsisPattern = regexp.MustCompile(`\.{3,}|…`)
	markerPattern   = regexp.MustCompile(`(?i)\[(truncated|cut off)\]`)
)

// truncationSignals reports the independent truncation signals found in text
func truncationSignals(text string) []string {
	var signals []string
	if ellipsisPattern.MatchString(text) {
		signals = append(signals, "contains an ellipsis")
	}
	if markerPattern.MatchString(text) {
		signals = append(signals, "contains a truncation marker")
	}
	trimmed := strings.TrimSpace(text)
	for _, op := range []string{"+", "-", "−", "×", "*", "÷", "/", "="} {
		if strings.HasSuffix(trimmed, op) {
			signals = append(signals, "ends in a dangling operator")
			break
		}
	}
	return signals
}

func checkTruncation(q *model.Question) []model.Issue {
	fields := []struct {
		name   string
		text   string
		target model.TargetField
	}{
		{"question text", q.QuestionText, model.TargetQuestionText},
		{"explanation", q.Explanation, model.TargetExplanation},
		{"choices", strings.Join(q.Choices, " "), model.TargetChoices},
	}
	var issues []model.Issue
	for _, f := range fields {
		for _, signal := range truncationSignals(f.text) {
			issues = append(issues, model.Issue{
				Kind:             model.IssueKindError,
				Category:         model.CategoryClarity,
				Severity:         model.SeverityMajor,
				Confidence:       0.9,
				Description:      fmt.Sprintf("%s looks truncated: %s", f.name, signal),
				CurrentValue:     f.text,
				ProductionImpact: model.ImpactConfusesStudents,
				TargetField:      f.target,
			})
		}
	}
	return issues
}

func checkChoiceFormat(q *model.Question) []model.Issue {
	if validate.CheckChoices(q.Choices, q.CorrectAnswer).FormatConsistent {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindWarning,
		Category:         model.CategoryClarity,
		Severity:         model.SeverityMinor,
		Confidence:       0.8,
		Description:      "answer choices mix numeric and textual formats",
		CurrentValue:     strings.Join(q.Choices, " | "),
		ProductionImpact: model.ImpactMinorClarity,
	}}
}

func checkDuplicateChoices(q *model.Question) []model.Issue {
	if !validate.CheckChoices(q.Choices, q.CorrectAnswer).HasDuplicates {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindError,
		Category:         model.CategoryClarity,
		Severity:         model.SeverityMajor,
		Confidence:       1,
		Description:      "answer choices contain duplicates",
		CurrentValue:     strings.Join(q.Choices, " | "),
		ProductionImpact: model.ImpactConfusesStudents,
	}}
}

func checkCorrectAnswerPresent(q *model.Question) []model.Issue {
	if validate.CheckChoices(q.Choices, q.CorrectAnswer).CorrectAnswerPresent {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindError,
		Category:         model.CategoryMathematicalAccuracy,
		Severity:         model.SeverityCritical,
		Confidence:       1,
		Description:      fmt.Sprintf("correct answer %q is not among the choices", q.CorrectAnswer),
		CurrentValue:     strings.Join(q.Choices, " | "),
		SuggestedFix:     q.CorrectAnswer,
		ProductionImpact: model.ImpactBlocksGrading,
		TargetField:      model.TargetChoices,
	}}
}

func checkPrefixCorruption(q *model.Question) []model.Issue {
	check := validate.CheckChoices(q.Choices, q.CorrectAnswer)
	var issues []model.Issue
	for _, choice := range check.CorruptedChoices {
		issues = append(issues, model.Issue{
			Kind:             model.IssueKindError,
			Category:         model.CategoryClarity,
			Severity:         model.SeverityMajor,
			Confidence:       1,
			Description:      fmt.Sprintf("choice %q carries a doubled label prefix", choice),
			CurrentValue:     choice,
			SuggestedFix:     validate.CleanChoiceLabel(choice),
			ProductionImpact: model.ImpactConfusesStudents,
			TargetField:      model.TargetChoices,
		})
	}
	return issues
}

// checkStandardAlignment verifies the declared standard matches the
// question's grade and domain, and that the domain is valid for the grade.
func checkStandardAlignment(q *model.Question) []model.Issue {
	parts := strings.Split(q.Standard, ".")
	aligned := false
	if len(parts) >= 2 {
		grade, err := strconv.Atoi(parts[0])
		aligned = err == nil && grade == q.Grade && parts[1] == q.Domain
	}
	if aligned && model.DomainValidForGrade(q.Grade, q.Domain) {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindError,
		Category:         model.CategoryCommonCore,
		Severity:         model.SeverityMajor,
		Confidence:       1,
		Description:      fmt.Sprintf("standard %q does not align with grade %d domain %s", q.Standard, q.Grade, q.Domain),
		CurrentValue:     q.Standard,
		ProductionImpact: model.ImpactMinorClarity,
	}}
}

const maxQuestionWords = 30

var wordPattern = regexp.MustCompile(`\b\w+\b`)

func checkQuestionLength(q *model.Question) []model.Issue {
	words := len(wordPattern.FindAllString(q.QuestionText, -1))
	if words <= maxQuestionWords {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindWarning,
		Category:         model.CategoryClarity,
		Severity:         model.SeverityMinor,
		Confidence:       0.8,
		Description:      fmt.Sprintf("question text runs %d words; aim for %d or fewer", words, maxQuestionWords),
		CurrentValue:     q.QuestionText,
		ProductionImpact: model.ImpactMinorClarity,
		TargetField:      model.TargetQuestionText,
	}}
}

// checkTrivialDistractors flags choice sets whose numeric values sit so close
// together that elimination is trivial.
func checkTrivialDistractors(q *model.Question) []model.Issue {
	var values []int
	for _, choice := range q.Choices {
		nums := validate.ExtractIntegers(choice)
		if len(nums) > 0 {
			values = append(values, nums[0])
		}
	}
	if len(values) < 3 {
		return nil
	}
	sort.Ints(values)
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] > 2 {
			return nil
		}
	}
	if values[len(values)-1]-values[0] > 6 {
		return nil
	}
	return []model.Issue{{
		Kind:             model.IssueKindWarning,
		Category:         model.CategoryPedagogical,
		Severity:         model.SeverityMinor,
		Confidence:       0.7,
		Description:      "distractors are consecutive values; consider error-pattern distractors",
		CurrentValue:     strings.Join(q.Choices, " | "),
		ProductionImpact: model.ImpactMinorClarity,
		TargetField:      model.TargetChoices,
	}}
}
