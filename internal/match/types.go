package match

// DefaultThreshold is the minimum similarity a query needs to be answered from the
// knowledge base.
const DefaultThreshold = 0.6

// Entry is one question/answer pair of a knowledge base.
//
// Question is expected to be normalized (lowercase, trimmed) by whoever loads it.
type Entry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Result is a scored entry.
type Result struct {
	Entry      Entry
	Confidence float64
}
