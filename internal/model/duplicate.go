package model

// MatchType describes how a duplicate group was matched
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchSimilar MatchType = "similar"
	MatchContent MatchType = "content_match"
)

// DetectOptions controls the duplicate detector
type DetectOptions struct {
	ExactMatch          bool    `json:"exactMatch"`
	ContentSimilarity   bool    `json:"contentSimilarity"`
	IgnoreWhitespace    bool    `json:"ignoreWhitespace"`
	SimilarityThreshold float64 `json:"similarityThreshold"` // 0.5..1
}

// DefaultDetectOptions enables both comparators with an 0.85 threshold
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		ExactMatch:          true,
		ContentSimilarity:   true,
		IgnoreWhitespace:    true,
		SimilarityThreshold: 0.85,
	}
}

// DuplicateGroup is a cluster of two or more equivalent questions.
// The first member is the kept one, by convention.
type DuplicateGroup struct {
	MatchType MatchType  `json:"matchType"`
	Score     float64    `json:"score"` // 0..1
	Questions []Question `json:"questions"`
}

// DuplicateDetectionResult is the outcome of one detection run over a batch
type DuplicateDetectionResult struct {
	Groups           []DuplicateGroup `json:"groups"`
	TotalDuplicates  int              `json:"totalDuplicates"`
	UniqueQuestions  int              `json:"uniqueQuestions"`
	KeptQuestions    []Question       `json:"keptQuestions"`
	RemovedQuestions []Question       `json:"removedQuestions"`
}

// DeduplicationStats summarizes a duplicate-removal pipeline run
type DeduplicationStats struct {
	Processed     int            `json:"processed"`
	Removed       int            `json:"removed"`
	KeptByGrade   map[int]int    `json:"keptByGrade"`
	KeptByDomain  map[string]int `json:"keptByDomain"`
	RemovalReason map[string]int `json:"removalReason"` // matchType -> count
}
