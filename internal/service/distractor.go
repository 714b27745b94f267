package service

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"mathqc/internal/model"
	"mathqc/internal/validate"
)

// Operation is the arithmetic operation inferred from question wording
type Operation string

const (
	OpAddition       Operation = "addition"
	OpSubtraction    Operation = "subtraction"
	OpMultiplication Operation = "multiplication"
	OpDivision       Operation = "division"
	OpUnclear        Operation = "operation_unclear"
	OpDivByZero      Operation = "division_by_zero"
)

var operationKeywords = []struct {
	op    Operation
	words []string
}{
	{OpAddition, []string{"add", "adds", "plus", "total", "together", "sum", "altogether", "combined", "more"}},
	{OpSubtraction, []string{"subtract", "minus", "left", "remaining", "difference", "fewer", "less", "need", "needs"}},
	{OpMultiplication, []string{"multiply", "times", "each", "per", "groups of", "needed"}},
	{OpDivision, []string{"divide", "split", "equally", "share", "groups", "evenly", "among", "brew", "make"}},
}

// DetectOperation infers the operation a word problem asks for and computes
// the expected result. Detection is keyword-based; prose that matches no
// vocabulary returns OpUnclear.
func DetectOperation(questionText string, numbers []int) (int, Operation) {
	if len(numbers) < 2 {
		return 0, OpUnclear
	}
	lower := strings.ToLower(questionText)

	// Comparison phrasing wins before the plain keyword scan; "more" alone
	// would otherwise read as addition.
	if strings.Contains(lower, "how many more") ||
		(strings.Contains(lower, "how many") && strings.Contains(lower, "need")) {
		hi, lo := numbers[0], numbers[1]
		for _, n := range numbers {
			if n > hi {
				hi = n
			}
			if n < lo {
				lo = n
			}
		}
		return hi - lo, OpSubtraction
	}

	for _, entry := range operationKeywords {
		matched := false
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		switch entry.op {
		case OpAddition:
			total := 0
			for _, n := range numbers {
				total += n
			}
			return total, OpAddition
		case OpSubtraction:
			return numbers[0] - numbers[1], OpSubtraction
		case OpMultiplication:
			return numbers[0] * numbers[1], OpMultiplication
		case OpDivision:
			if numbers[1] == 0 {
				return 0, OpDivByZero
			}
			return numbers[0] / numbers[1], OpDivision
		}
	}
	return 0, OpUnclear
}

// DistractorImprovement is the outcome of a distractor-generation run
type DistractorImprovement struct {
	Improved  bool            `json:"improved"`
	Choices   []string        `json:"choices"`
	AnswerKey model.AnswerKey `json:"answerKey"`
	Message   string          `json:"message"`
}

// DistractorService generates error-pattern distractors for a question
type DistractorService struct {
	ranges validate.RangeChecker
	rng    *rand.Rand
}

// NewDistractorService creates the service with its own randomness source
func NewDistractorService(policy validate.RangePolicy, seed int64) *DistractorService {
	return &DistractorService{
		ranges: validate.RangeChecker{Policy: policy},
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// ImproveDistractors replaces a question's distractors with ones derived
// from common student error patterns: wrong operation, off-by-one, using a
// single operand. The correct answer keeps its position key after shuffle.
// When no numeric distractors can be derived the original choices stand.
func (s *DistractorService) ImproveDistractors(q *model.Question) *DistractorImprovement {
	numbers := validate.ExtractIntegers(q.QuestionText)
	answerNums := validate.ExtractIntegers(q.CorrectAnswer)
	if len(answerNums) == 0 {
		return &DistractorImprovement{
			Improved:  false,
			Choices:   q.Choices,
			AnswerKey: q.AnswerKey,
			Message:   "correct answer has no numeric value - keeping original choices",
		}
	}
	correct := answerNums[0]
	limit, bounded := s.ranges.Ceiling(q.Grade)

	inRange := func(v int) bool {
		return v > 0 && v != correct && (!bounded || v <= limit)
	}

	candidates := make(map[int]bool)
	var priority []int
	addCandidate := func(v int, prioritized bool) {
		if !inRange(v) || candidates[v] {
			return
		}
		candidates[v] = true
		if prioritized {
			priority = append(priority, v)
		}
	}

	if len(numbers) >= 2 {
		a, b := numbers[0], numbers[1]
		_, op := DetectOperation(q.QuestionText, numbers)

		// Wrong-operation results are the most instructive distractors
		addCandidate(a+b, op != OpAddition)
		addCandidate(abs(a-b), op != OpSubtraction)
		addCandidate(a*b, op != OpMultiplication)
		if b != 0 {
			addCandidate(a/b, op != OpDivision)
		}

		switch op {
		case OpAddition, OpSubtraction, OpDivision:
			addCandidate(correct+1, false)
			addCandidate(correct-1, false)
			addCandidate(a, false)
			addCandidate(b, false)
		case OpMultiplication:
			addCandidate(correct+a, false)
			addCandidate(correct-a, false)
			addCandidate(a, false)
		}
		addCandidate(correct+2, false)
		addCandidate(correct-2, false)
		addCandidate(correct*2, false)
		if correct > 2 {
			addCandidate(correct/2, false)
		}
	}

	// Top up with nearby values when error patterns were not enough
	offsets := []int{-5, -3, -2, 2, 3, 5, 7}
	for attempts := 0; len(candidates) < 3 && attempts < 50; attempts++ {
		addCandidate(correct+offsets[s.rng.Intn(len(offsets))], false)
	}
	if len(candidates) < 3 {
		return &DistractorImprovement{
			Improved:  false,
			Choices:   q.Choices,
			AnswerKey: q.AnswerKey,
			Message:   "could not derive enough distractors - keeping original choices",
		}
	}

	distractors := pickDistractors(candidates, priority)
	unit := unitSuffix(q.CorrectAnswer)

	choices := []string{fmt.Sprintf("%d%s", correct, unit)}
	for _, d := range distractors {
		choices = append(choices, fmt.Sprintf("%d%s", d, unit))
	}
	s.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	answerKey := q.AnswerKey
	correctText := fmt.Sprintf("%d%s", correct, unit)
	for i, c := range choices {
		if c == correctText {
			answerKey = model.AnswerKeys[i]
			break
		}
	}

	return &DistractorImprovement{
		Improved:  true,
		Choices:   choices,
		AnswerKey: answerKey,
		Message:   "generated distractors from common error patterns",
	}
}

// pickDistractors takes three candidates, wrong-operation results first
func pickDistractors(candidates map[int]bool, priority []int) []int {
	picked := make([]int, 0, 3)
	taken := make(map[int]bool)
	for _, v := range priority {
		if len(picked) == 3 {
			break
		}
		picked = append(picked, v)
		taken[v] = true
	}
	rest := make([]int, 0, len(candidates))
	for v := range candidates {
		if !taken[v] {
			rest = append(rest, v)
		}
	}
	sort.Ints(rest)
	for _, v := range rest {
		if len(picked) == 3 {
			break
		}
		picked = append(picked, v)
	}
	return picked
}

var unitStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "of": true, "in": true,
}

// unitSuffix carries the answer's unit word onto generated choices,
// e.g. "12 grams" keeps " grams".
func unitSuffix(correctAnswer string) string {
	for _, word := range strings.Fields(correctAnswer) {
		w := strings.ToLower(strings.Trim(word, ".,!?"))
		if len(w) > 2 && !unitStopwords[w] && !containsDigit(w) {
			return " " + w
		}
	}
	return ""
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
