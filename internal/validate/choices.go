package validate

import (
	"regexp"
	"strings"
)

// ChoiceSetCheck is the verdict over a question's answer choices
type ChoiceSetCheck struct {
	HasDuplicates        bool
	CorrectAnswerPresent bool
	FormatConsistent     bool
	// CorruptedChoices lists choices carrying a doubled label prefix, e.g. "A: A: 12"
	CorruptedChoices []string
}

// OK reports whether every choice invariant holds
func (c ChoiceSetCheck) OK() bool {
	return !c.HasDuplicates && c.CorrectAnswerPresent && c.FormatConsistent &&
		len(c.CorruptedChoices) == 0
}

var (
	doubledPrefixPattern = regexp.MustCompile(`^[A-D][:.]\s*[A-D][:.]\s*`)
	digitPattern         = regexp.MustCompile(`\d`)
	letterPattern        = regexp.MustCompile(`[a-zA-Z]`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// normalizeChoice lowercases and collapses whitespace for duplicate comparison
func normalizeChoice(s string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// CheckChoices evaluates the four choice-set invariants. All four are pure
// functions of the inputs; one failing never hides another.
func CheckChoices(choices []string, correctAnswer string) ChoiceSetCheck {
	check := ChoiceSetCheck{FormatConsistent: true}

	seen := make(map[string]bool, len(choices))
	for _, c := range choices {
		norm := normalizeChoice(c)
		if seen[norm] {
			check.HasDuplicates = true
		}
		seen[norm] = true
	}

	for _, c := range choices {
		if c == correctAnswer {
			check.CorrectAnswerPresent = true
			break
		}
	}

	withDigits, withLetters := 0, 0
	for _, c := range choices {
		if digitPattern.MatchString(c) {
			withDigits++
		}
		if letterPattern.MatchString(c) {
			withLetters++
		}
	}
	if (withDigits > 0 && withDigits < len(choices)) ||
		(withLetters > 0 && withLetters < len(choices)) {
		check.FormatConsistent = false
	}

	for _, c := range choices {
		if doubledPrefixPattern.MatchString(strings.TrimSpace(c)) {
			check.CorruptedChoices = append(check.CorruptedChoices, c)
		}
	}

	return check
}

var labelPrefixPattern = regexp.MustCompile(`^[A-D][:.]?\s*([A-D][:.]?\s*)?`)

// CleanChoiceLabel strips leading answer-key label prefixes, doubled or not,
// from a choice string.
func CleanChoiceLabel(choice string) string {
	return strings.TrimSpace(labelPrefixPattern.ReplaceAllString(strings.TrimSpace(choice), ""))
}
