package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GradeCeilings maps each grade to the largest number a question at that
// grade may mention. Grade 6 is unbounded.
var GradeCeilings = map[int]int{
	1: 20,
	2: 100,
	3: 1000,
	4: 10000,
	5: 100000,
}

// RangePolicy decides the ceiling for grades outside 1-6
type RangePolicy int

const (
	// PolicyDefaultGrade2 applies the grade-2 ceiling to unknown grades
	PolicyDefaultGrade2 RangePolicy = iota
	// PolicyUnbounded lets unknown grades pass unchecked
	PolicyUnbounded
)

// RangeChecker flags numbers above the grade-level ceiling
type RangeChecker struct {
	Policy RangePolicy
}

var integerPattern = regexp.MustCompile(`\b\d+\b`)

// ExtractIntegers returns every integer-like token in text, in order
func ExtractIntegers(text string) []int {
	var out []int
	for _, tok := range integerPattern.FindAllString(text, -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			// Longer than an int; certainly above any ceiling
			out = append(out, int(^uint(0)>>1))
			continue
		}
		out = append(out, n)
	}
	return out
}

// Ceiling returns the number ceiling for a grade, or (0, false) when the
// grade is unbounded.
func (c RangeChecker) Ceiling(grade int) (int, bool) {
	if limit, ok := GradeCeilings[grade]; ok {
		return limit, true
	}
	if grade == 6 {
		return 0, false
	}
	if c.Policy == PolicyUnbounded {
		return 0, false
	}
	return GradeCeilings[2], true
}

// Check flags every number in the texts that exceeds the grade ceiling.
// A question with no numeric content trivially passes.
func (c RangeChecker) Check(grade int, texts ...string) []string {
	limit, bounded := c.Ceiling(grade)
	if !bounded {
		return nil
	}
	var errs []string
	for _, n := range ExtractIntegers(strings.Join(texts, " ")) {
		if n > limit {
			errs = append(errs, fmt.Sprintf("number %d exceeds the grade %d limit of %d", n, grade, limit))
		}
	}
	return errs
}
