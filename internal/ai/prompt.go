package ai

import (
	"fmt"
	"strings"

	"mathqc/internal/model"
)

const systemPrompt = `You are a grade-school math content reviewer. You check questions for mathematical accuracy, grade appropriateness, clarity, accessibility, pedagogy, and Common Core alignment. Return ONLY valid JSON; any text outside JSON is an error.`

const assessmentSchema = `{
  "score": 0 to 100,
  "issues": [{
    "kind": "error" or "warning" or "improvement",
    "category": "mathematical_accuracy" | "grade_appropriateness" | "clarity" | "accessibility" | "pedagogical" | "common_core",
    "severity": "critical" | "major" | "minor",
    "confidence": 0.0 to 1.0,
    "description": "what is wrong",
    "currentValue": "the current field value at fault",
    "suggestedFix": "replacement value, when one exists",
    "explanation": "why this matters for students",
    "productionImpact": "blocks_grading" | "confuses_students" | "minor_clarity",
    "targetField": "questionText" | "correctAnswer" | "explanation" | "choices" | ""
  }],
  "commonCoreAlignment": {"aligned": true/false, "standardMatch": "...", "alignmentComment": "..."}
}`

func formatQuestion(q *model.Question) string {
	return fmt.Sprintf(`Grade: %d
Domain: %s
Standard: %s
Question: %s
Choices: %s
Answer Key: %s
Correct Answer: %s
Explanation: %s`,
		q.Grade, q.Domain, q.Standard, q.QuestionText,
		strings.Join(q.Choices, " | "), q.AnswerKey, q.CorrectAnswer, q.Explanation)
}

func buildAssessmentPrompt(q *model.Question) string {
	return fmt.Sprintf(`Review this question. Return ONLY valid JSON matching this schema:
%s

%s

Score the overall quality 0-100. Report every defect as an issue. Only set
suggestedFix when you are confident in the replacement value.`,
		assessmentSchema, formatQuestion(q))
}

func buildBatchPrompt(qs []model.Question) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Review these %d questions. Return ONLY valid JSON:
{"assessments": {"<question id>": %s}}

One assessment per question id.
`, len(qs), assessmentSchema)
	for i := range qs {
		fmt.Fprintf(&sb, "\n--- Question id %q ---\n%s\n", qs[i].ID, formatQuestion(&qs[i]))
	}
	return sb.String()
}
