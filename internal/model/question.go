package model

// AnswerKey is the label of the correct choice
type AnswerKey string

const (
	AnswerKeyA AnswerKey = "A"
	AnswerKeyB AnswerKey = "B"
	AnswerKeyC AnswerKey = "C"
	AnswerKeyD AnswerKey = "D"
)

// AnswerKeys lists the valid choice labels in order
var AnswerKeys = []AnswerKey{AnswerKeyA, AnswerKeyB, AnswerKeyC, AnswerKeyD}

// Question is a grade-school math question as stored in the question bank.
// The engine only reads it; stored questions change only through ApplyFixes.
type Question struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Grade         int       `json:"grade" bson:"grade"`       // 1-6
	Domain        string    `json:"domain" bson:"domain"`     // e.g. "OA", "NBT"
	Standard      string    `json:"standard" bson:"standard"` // e.g. "3.OA.7"
	QuestionText  string    `json:"questionText" bson:"questionText"`
	CorrectAnswer string    `json:"correctAnswer" bson:"correctAnswer"`
	Explanation   string    `json:"explanation" bson:"explanation"`
	Choices       []string  `json:"choices" bson:"choices"` // 2-4 entries
	AnswerKey     AnswerKey `json:"answerKey" bson:"answerKey"`
	Theme         string    `json:"theme,omitempty" bson:"theme,omitempty"`
}

// ValidDomains maps each grade to the Common Core domains allowed at that grade
var ValidDomains = map[int][]string{
	1: {"OA", "NBT", "MD", "G"},
	2: {"OA", "NBT", "MD", "G"},
	3: {"OA", "NBT", "NF", "MD", "G"},
	4: {"OA", "NBT", "NF", "MD", "G"},
	5: {"OA", "NBT", "NF", "MD", "G"},
	6: {"RP", "EE", "G", "SP", "NS"},
}

// DomainValidForGrade reports whether a Common Core domain is allowed at a grade
func DomainValidForGrade(grade int, domain string) bool {
	for _, d := range ValidDomains[grade] {
		if d == domain {
			return true
		}
	}
	return false
}
