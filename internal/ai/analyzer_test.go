package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mathqc/internal/model"
)

func TestParseAssessment(t *testing.T) {
	raw := `{
		"score": 72,
		"issues": [{
			"kind": "warning",
			"category": "clarity",
			"severity": "minor",
			"confidence": 0.8,
			"description": "wording is ambiguous",
			"targetField": "questionText"
		}],
		"commonCoreAlignment": {"aligned": true, "standardMatch": "2.OA.2"}
	}`
	a, err := parseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, 72.0, a.Score)
	require.Len(t, a.Issues, 1)
	assert.NotEmpty(t, a.Issues[0].ID)
	assert.Equal(t, model.MethodAI, a.Issues[0].ValidationMethod)
	assert.Equal(t, model.TargetQuestionText, a.Issues[0].TargetField)
	assert.True(t, a.CommonCoreAlignment.Aligned)
}

func TestParseAssessment_ClampsScore(t *testing.T) {
	a, err := parseAssessment(`{"score": 250, "issues": []}`)
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.Score)

	a, err = parseAssessment(`{"score": -5, "issues": []}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.Score)
}

func TestParseAssessment_Malformed(t *testing.T) {
	_, err := parseAssessment("the model apologizes and explains itself")
	assert.Error(t, err)
}

func TestParseBatchAssessment(t *testing.T) {
	raw := `{"assessments": {
		"q1": {"score": 90, "issues": []},
		"q2": {"score": 55, "issues": [{"kind": "error", "category": "mathematical_accuracy", "severity": "critical", "confidence": 1, "description": "wrong sum"}]}
	}}`
	out, err := parseBatchAssessment(raw)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 90.0, out["q1"].Score)
	require.Len(t, out["q2"].Issues, 1)
	assert.Equal(t, model.IssueKindError, out["q2"].Issues[0].Kind)
}

func TestNeutral(t *testing.T) {
	n := Neutral()
	assert.Equal(t, 100.0, n.Score)
	assert.Empty(t, n.Issues)
}

func TestBuildPrompts(t *testing.T) {
	q := model.Question{
		ID: "q1", Grade: 2, Domain: "OA", Standard: "2.OA.2",
		QuestionText: "8 + 5 = ?", CorrectAnswer: "13",
		Choices: []string{"12", "13"}, AnswerKey: model.AnswerKeyB,
	}
	single := buildAssessmentPrompt(&q)
	assert.Contains(t, single, "8 + 5 = ?")
	assert.Contains(t, single, `"score"`)

	batch := buildBatchPrompt([]model.Question{q, q})
	assert.Contains(t, batch, `"assessments"`)
	assert.Contains(t, batch, `"q1"`)
}
