package validate

import (
	"strings"

	"mathqc/internal/model"
)

// Validator composes the deterministic sub-checks into one verdict
type Validator struct {
	ranges RangeChecker
}

// NewValidator creates a validator with the given range policy
func NewValidator(policy RangePolicy) *Validator {
	return &Validator{ranges: RangeChecker{Policy: policy}}
}

// Validate runs every deterministic check over the question and produces the
// math verdict. A panicking sub-check counts as failed for that sub-check
// only; it never aborts the others.
func (v *Validator) Validate(q *model.Question) model.MathematicalValidation {
	out := model.MathematicalValidation{}

	combined := strings.Join(append([]string{q.QuestionText, q.Explanation}, q.Choices...), " ")

	arithmeticErrs, ok := guard(func() []string { return CheckArithmetic(combined) })
	if !ok {
		arithmeticErrs = []string{"arithmetic check failed to run"}
	}
	out.ArithmeticOK = len(arithmeticErrs) == 0
	out.ComputationalErrors = append(out.ComputationalErrors, arithmeticErrs...)

	rangeErrs, ok := guard(func() []string {
		return v.ranges.Check(q.Grade, append([]string{q.QuestionText, q.Explanation}, q.Choices...)...)
	})
	if !ok {
		rangeErrs = []string{"grade range check failed to run"}
	}
	out.GradeAppropriate = len(rangeErrs) == 0

	consistent, ok := guard(func() bool {
		return AnswerExplanationConsistent(q.CorrectAnswer, q.Explanation)
	})
	out.AnswerExplanationConsistent = ok && consistent

	return out
}

// AnswerExplanationConsistent passes when the answer's normalized text
// appears in the explanation, or any numeric token of the answer also
// appears among the explanation's numeric tokens.
func AnswerExplanationConsistent(correctAnswer, explanation string) bool {
	answer := normalizeChoice(correctAnswer)
	if answer != "" && strings.Contains(normalizeChoice(explanation), answer) {
		return true
	}
	explanationNums := make(map[int]bool)
	for _, n := range ExtractIntegers(explanation) {
		explanationNums[n] = true
	}
	for _, n := range ExtractIntegers(correctAnswer) {
		if explanationNums[n] {
			return true
		}
	}
	return false
}

// guard runs f and converts a panic into a conservative failure
func guard[T any](f func() T) (out T, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return f(), true
}
