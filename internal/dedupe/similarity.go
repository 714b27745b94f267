// Package dedupe partitions question batches into duplicate groups using
// exact-match and weighted content-similarity comparators.
package dedupe

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"mathqc/internal/model"
)

// Field weights for the content-similarity blend
const (
	weightQuestionText  = 0.4
	weightCorrectAnswer = 0.2
	weightExplanation   = 0.2
	weightChoices       = 0.2
)

// String similarity blend
const (
	weightJaccard     = 0.7
	weightLengthRatio = 0.3
)

// numericMismatchPenalty shrinks the score when two texts carry different
// arithmetic content, so questions differing only in their numbers do not
// group as duplicates.
const numericMismatchPenalty = 0.7

var whitespacePattern = regexp.MustCompile(`\s+`)

func normalize(s string, collapseWhitespace bool) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if collapseWhitespace {
		s = whitespacePattern.ReplaceAllString(s, " ")
	}
	return s
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// jaccard computes word-set overlap between two normalized strings
func jaccard(a, b string) float64 {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	intersection := 0
	for w := range sa {
		if sb[w] {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func lengthRatio(a, b string) float64 {
	la, lb := float64(len(a)), float64(len(b))
	if la == 0 && lb == 0 {
		return 1
	}
	return math.Min(la, lb) / math.Max(la, lb)
}

// stringSimilarity blends word Jaccard with a length ratio
func stringSimilarity(a, b string) float64 {
	return weightJaccard*jaccard(a, b) + weightLengthRatio*lengthRatio(a, b)
}

// choicesSimilarity averages per-position string similarity. Unequal-length
// choice lists score 0; they are never partially compared.
func choicesSimilarity(a, b []string, collapseWhitespace bool) float64 {
	if len(a) != len(b) {
		return 0
	}
	if len(a) == 0 {
		return 1
	}
	total := 0.0
	for i := range a {
		total += stringSimilarity(normalize(a[i], collapseWhitespace), normalize(b[i], collapseWhitespace))
	}
	return total / float64(len(a))
}

// Patterns capturing the numeric substance of a text: simple binary
// arithmetic, decimals, fractions, currency, and unit quantities.
var numericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s*[+\-−×*÷/]\s*\d+`),
	regexp.MustCompile(`\d+\.\d+`),
	regexp.MustCompile(`\d+/\d+`),
	regexp.MustCompile(`\$\d+(?:\.\d+)?`),
	regexp.MustCompile(`\d+\s+[a-z]+`),
	regexp.MustCompile(`\b\d+\b`),
}

// numericSignature extracts the sorted numeric substrings of a text. Two
// texts with different signatures talk about different quantities no matter
// how similar their prose reads.
func numericSignature(text string) []string {
	text = normalize(text, true)
	seen := make(map[string]bool)
	for _, p := range numericPatterns {
		for _, m := range p.FindAllString(text, -1) {
			seen[whitespacePattern.ReplaceAllString(m, "")] = true
		}
	}
	sig := make([]string, 0, len(seen))
	for m := range seen {
		sig = append(sig, m)
	}
	sort.Strings(sig)
	return sig
}

func signaturesDiffer(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// contentSimilarity computes the weighted similarity of two questions,
// applying the numeric-mismatch penalty when their arithmetic differs.
func contentSimilarity(a, b *model.Question, collapseWhitespace bool) float64 {
	score := weightQuestionText*stringSimilarity(normalize(a.QuestionText, collapseWhitespace), normalize(b.QuestionText, collapseWhitespace)) +
		weightCorrectAnswer*stringSimilarity(normalize(a.CorrectAnswer, collapseWhitespace), normalize(b.CorrectAnswer, collapseWhitespace)) +
		weightExplanation*stringSimilarity(normalize(a.Explanation, collapseWhitespace), normalize(b.Explanation, collapseWhitespace)) +
		weightChoices*choicesSimilarity(a.Choices, b.Choices, collapseWhitespace)

	if signaturesDiffer(numericSignature(a.QuestionText), numericSignature(b.QuestionText)) {
		score *= numericMismatchPenalty
	}
	return score
}

// exactEqual reports whether two questions are equal on all four normalized
// content fields.
func exactEqual(a, b *model.Question, collapseWhitespace bool) bool {
	if normalize(a.QuestionText, collapseWhitespace) != normalize(b.QuestionText, collapseWhitespace) ||
		normalize(a.CorrectAnswer, collapseWhitespace) != normalize(b.CorrectAnswer, collapseWhitespace) ||
		normalize(a.Explanation, collapseWhitespace) != normalize(b.Explanation, collapseWhitespace) ||
		len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if normalize(a.Choices[i], collapseWhitespace) != normalize(b.Choices[i], collapseWhitespace) {
			return false
		}
	}
	return true
}
