package model

// IssueKind classifies how serious a finding is in kind, not degree
type IssueKind string

const (
	IssueKindError       IssueKind = "error"
	IssueKindWarning     IssueKind = "warning"
	IssueKindImprovement IssueKind = "improvement"
)

// IssueCategory is the fixed quality taxonomy
type IssueCategory string

const (
	CategoryMathematicalAccuracy IssueCategory = "mathematical_accuracy"
	CategoryGradeAppropriateness IssueCategory = "grade_appropriateness"
	CategoryClarity              IssueCategory = "clarity"
	CategoryAccessibility        IssueCategory = "accessibility"
	CategoryPedagogical          IssueCategory = "pedagogical"
	CategoryCommonCore           IssueCategory = "common_core"
)

// Severity grades an issue within its kind
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ValidationMethod records which stage produced an issue
type ValidationMethod string

const (
	MethodDeterministicMath ValidationMethod = "deterministic-math"
	MethodRule              ValidationMethod = "rule"
	MethodAI                ValidationMethod = "ai"
	MethodHybrid            ValidationMethod = "hybrid"
)

// ProductionImpact estimates what the defect does to students if shipped
type ProductionImpact string

const (
	ImpactBlocksGrading    ProductionImpact = "blocks_grading"
	ImpactConfusesStudents ProductionImpact = "confuses_students"
	ImpactMinorClarity     ProductionImpact = "minor_clarity"
)

// TargetField names the question field a fix overwrites. Fix application
// dispatches on this tag, never on issue description text.
type TargetField string

const (
	TargetNone          TargetField = ""
	TargetQuestionText  TargetField = "questionText"
	TargetCorrectAnswer TargetField = "correctAnswer"
	TargetExplanation   TargetField = "explanation"
	TargetChoices       TargetField = "choices"
)

// Issue is a single quality finding. Issues are created by exactly one stage
// and never mutated afterwards; results aggregate them by value.
type Issue struct {
	ID               string           `json:"id"`
	Kind             IssueKind        `json:"kind"`
	Category         IssueCategory    `json:"category"`
	Severity         Severity         `json:"severity"`
	Confidence       float64          `json:"confidence"` // 0..1
	Description      string           `json:"description"`
	CurrentValue     string           `json:"currentValue,omitempty"`
	SuggestedFix     string           `json:"suggestedFix,omitempty"`
	Explanation      string           `json:"explanation,omitempty"`
	ValidationMethod ValidationMethod `json:"validationMethod"`
	ProductionImpact ProductionImpact `json:"productionImpact,omitempty"`
	TargetField      TargetField      `json:"targetField,omitempty"`
}

// MathematicalValidation is the deterministic math verdict for one question.
// Immutable once computed.
type MathematicalValidation struct {
	ArithmeticOK                bool     `json:"arithmeticOk"`
	GradeAppropriate            bool     `json:"gradeAppropriate"`
	AnswerExplanationConsistent bool     `json:"answerExplanationConsistent"`
	ComputationalErrors         []string `json:"computationalErrors"`
}

// Valid reports whether every deterministic math check passed
func (v MathematicalValidation) Valid() bool {
	return v.ArithmeticOK && v.GradeAppropriate && v.AnswerExplanationConsistent &&
		len(v.ComputationalErrors) == 0
}

// CommonCoreAlignment is the AI's judgement of standard alignment
type CommonCoreAlignment struct {
	Aligned          bool   `json:"aligned"`
	StandardMatch    string `json:"standardMatch,omitempty"`
	AlignmentComment string `json:"alignmentComment,omitempty"`
}

// VerificationResult is the merged verdict for one question. Created fresh
// per verification call; the core never persists it.
type VerificationResult struct {
	QuestionID             string                 `json:"questionId"`
	Score                  float64                `json:"score"` // 0..100
	Issues                 []Issue                `json:"issues"`
	MathematicalValidation MathematicalValidation `json:"mathematicalValidation"`
	CommonCoreAlignment    CommonCoreAlignment    `json:"commonCoreAlignment"`
	// AIUnavailable marks a degraded result produced without the AI stage
	AIUnavailable bool `json:"aiUnavailable,omitempty"`
}

// BatchSummary aggregates a batch verification run
type BatchSummary struct {
	AverageScore    float64  `json:"averageScore"`
	TotalIssues     int      `json:"totalIssues"`
	CommonPatterns  []string `json:"commonPatterns"`
	Recommendations []string `json:"recommendations"`
}

// BatchVerificationResult pairs per-question results with the batch summary
type BatchVerificationResult struct {
	Results []*VerificationResult `json:"results"`
	Summary BatchSummary          `json:"summary"`
}

// FixSelection is one user-approved fix to apply. Issue identity comes from
// the VerificationResult the caller already holds.
type FixSelection struct {
	IssueID string `json:"issueId"`
	// Override replaces the issue's suggested value when non-empty
	Override string `json:"override,omitempty"`
}
