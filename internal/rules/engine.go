// Package rules runs the named deterministic quality rules over a question
// and aggregates their findings into one score and issue list.
package rules

import (
	"fmt"

	"github.com/google/uuid"

	"mathqc/internal/model"
	"mathqc/internal/validate"
)

// Score penalties. The aggregate starts at 100 and is clamped to [0,100].
const (
	errorPenalty   = 20
	warningPenalty = 10
	crashPenalty   = 5
)

// Rule is one named quality check. Check returns the rule's findings; the
// engine assigns issue ids and aggregates.
type Rule struct {
	Name  string
	Check func(q *model.Question) []model.Issue
}

// Report is the aggregated outcome of one engine run
type Report struct {
	Score        float64       `json:"score"` // 0..100
	Issues       []model.Issue `json:"issues"`
	ErrorCount   int           `json:"errorCount"`
	WarningCount int           `json:"warningCount"`
	// CrashedRules lists rules that failed to run; each costs a small
	// fixed penalty and surfaces as a minor internal issue.
	CrashedRules []string `json:"crashedRules,omitempty"`
}

// Engine holds the registered rule list. Rules run in registration order;
// each can be disabled independently.
type Engine struct {
	rules    []Rule
	disabled map[string]bool
}

// NewEngine creates an engine with the built-in rules registered. The range
// policy must match the one given to the validator, so both stages judge
// grade ceilings the same way.
func NewEngine(policy validate.RangePolicy) *Engine {
	e := &Engine{disabled: make(map[string]bool)}
	for _, r := range builtinRules(validate.RangeChecker{Policy: policy}) {
		e.Register(r)
	}
	return e
}

// NewEmptyEngine creates an engine with no rules
func NewEmptyEngine() *Engine {
	return &Engine{disabled: make(map[string]bool)}
}

// Register appends a rule to the run order
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// SetEnabled enables or disables a rule by name
func (e *Engine) SetEnabled(name string, enabled bool) {
	e.disabled[name] = !enabled
}

// RuleNames returns the registered rule names in run order
func (e *Engine) RuleNames() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	return names
}

// Run executes every enabled rule. A rule that panics is captured as a
// minor internal issue for that rule only and costs a fixed penalty; it
// never aborts the run.
func (e *Engine) Run(q *model.Question) Report {
	report := Report{}
	penalty := 0.0

	for _, rule := range e.rules {
		if e.disabled[rule.Name] {
			continue
		}
		issues, crashed := runRule(rule, q)
		if crashed {
			report.CrashedRules = append(report.CrashedRules, rule.Name)
			penalty += crashPenalty
			report.Issues = append(report.Issues, model.Issue{
				ID:               uuid.NewString(),
				Kind:             model.IssueKindWarning,
				Category:         model.CategoryClarity,
				Severity:         model.SeverityMinor,
				Confidence:       1,
				Description:      fmt.Sprintf("rule %q failed to run", rule.Name),
				ValidationMethod: model.MethodRule,
			})
			continue
		}
		for _, issue := range issues {
			issue.ID = uuid.NewString()
			issue.ValidationMethod = model.MethodRule
			switch issue.Kind {
			case model.IssueKindError:
				report.ErrorCount++
				penalty += errorPenalty
			case model.IssueKindWarning:
				report.WarningCount++
				penalty += warningPenalty
			}
			report.Issues = append(report.Issues, issue)
		}
	}

	report.Score = clamp(100-penalty, 0, 100)
	return report
}

func runRule(rule Rule, q *model.Question) (issues []model.Issue, crashed bool) {
	defer func() {
		if recover() != nil {
			issues = nil
			crashed = true
		}
	}()
	return rule.Check(q), false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
