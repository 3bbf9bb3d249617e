package domain

import "fmt"

// quiz question ids used by the scorer; the full catalog lives in config
const (
	QuestionGenres   = "genres"   // multi-select, favorite genres
	QuestionMood     = "mood"     // single-select, tonight's mood
	QuestionSize     = "size"     // single-select, movie vs series commitment
	QuestionRecency  = "recency"  // single-select, freshness preference
	QuestionMaturity = "maturity" // single-select, rating ceiling
)

// QuizQuestion describes one question of the static quiz catalog
type QuizQuestion struct {
	ID          string   `yaml:"id" json:"id"`
	Prompt      string   `yaml:"prompt" json:"prompt"`
	MultiSelect bool     `yaml:"multi_select" json:"multi_select"`
	Options     []string `yaml:"options" json:"options"`
}

// QuizAnswer holds the user's selection for one question. Single-select
// questions carry exactly one value.
type QuizAnswer struct {
	QuestionID string   `json:"question_id"`
	Values     []string `json:"values"`
}

// First returns the first selected value or empty string
func (a QuizAnswer) First() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

// Answers is the full set of quiz answers keyed by question for lookup
type Answers []QuizAnswer

// Get returns the answer for the given question id, ok=false when absent
func (aa Answers) Get(questionID string) (QuizAnswer, bool) {
	for _, a := range aa {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return QuizAnswer{}, false
}

// Validate checks every answer against the question catalog: referenced
// questions must exist, single-select questions must hold exactly one value
func (aa Answers) Validate(catalog []QuizQuestion) error {
	byID := make(map[string]QuizQuestion, len(catalog))
	for _, q := range catalog {
		byID[q.ID] = q
	}
	for _, a := range aa {
		q, ok := byID[a.QuestionID]
		if !ok {
			return fmt.Errorf("unknown question %q", a.QuestionID)
		}
		if !q.MultiSelect && len(a.Values) != 1 {
			return fmt.Errorf("question %q requires exactly one value, got %d", a.QuestionID, len(a.Values))
		}
		if len(a.Values) == 0 {
			return fmt.Errorf("question %q has no selected values", a.QuestionID)
		}
	}
	return nil
}
