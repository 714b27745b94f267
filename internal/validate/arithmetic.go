// Package validate holds the deterministic math checks: arithmetic
// verification, grade-level number ranges, choice-set invariants, and the
// validator that composes them into a single verdict.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Tolerance absorbs non-integer formatting noise when comparing a stated
// result against the computed one.
const Tolerance = 0.001

const number = `(\d+(?:\.\d+)?)`

// One pattern per operator; matches are scanned non-overlapping left to
// right. Only the canonical "a op b = c" shape is recognized; anything else
// (multi-step expressions, embedded fractions) is skipped, not flagged.
var arithmeticPatterns = []struct {
	op string
	re *regexp.Regexp
	f  func(a, b float64) float64
}{
	{"+", regexp.MustCompile(number + `\s*\+\s*` + number + `\s*=\s*` + number), func(a, b float64) float64 { return a + b }},
	{"-", regexp.MustCompile(number + `\s*[-−]\s*` + number + `\s*=\s*` + number), func(a, b float64) float64 { return a - b }},
	{"×", regexp.MustCompile(number + `\s*[×*]\s*` + number + `\s*=\s*` + number), func(a, b float64) float64 { return a * b }},
	{"÷", regexp.MustCompile(number + `\s*[÷/]\s*` + number + `\s*=\s*` + number), func(a, b float64) float64 { return a / b }},
}

// CheckArithmetic scans text for "a op b = c" statements and returns one
// human-readable error per mismatch or division by zero. Text with no
// recognizable statement yields no errors.
func CheckArithmetic(text string) []string {
	var errs []string
	for _, p := range arithmeticPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			a, errA := strconv.ParseFloat(m[1], 64)
			b, errB := strconv.ParseFloat(m[2], 64)
			stated, errC := strconv.ParseFloat(m[3], 64)
			if errA != nil || errB != nil || errC != nil {
				continue
			}
			if p.op == "÷" && b == 0 {
				errs = append(errs, fmt.Sprintf("division by zero in %q", m[0]))
				continue
			}
			expected := p.f(a, b)
			if math.Abs(expected-stated) > Tolerance {
				errs = append(errs, fmt.Sprintf("%q is incorrect: %s %s %s = %s",
					m[0], m[1], p.op, m[2], formatNumber(expected)))
			}
		}
	}
	return errs
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
