package evaluation

// Result is one AI grading outcome. Immutable after creation;
// persisted as a test-history row by the caller.
type Result struct {
	Score    float64  `json:"score"`
	Accuracy float64  `json:"accuracy"`
	Errors   []string `json:"errors"`
	Feedback string   `json:"feedback"`
}

// Clamp forces the result into its documented ranges: score 0-10,
// accuracy 0-100, at most 5 error strings.
func (r *Result) Clamp() {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 10 {
		r.Score = 10
	}
	if r.Accuracy < 0 {
		r.Accuracy = 0
	}
	if r.Accuracy > 100 {
		r.Accuracy = 100
	}
	if len(r.Errors) > 5 {
		r.Errors = r.Errors[:5]
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
}

// Fallback is the fixed result returned when the model's reply cannot
// be parsed. The caller always receives a well-formed result.
func Fallback() Result {
	return Result{
		Score:    7,
		Accuracy: 75,
		Errors: []string{
			"Could not identify specific issues automatically",
			"Review line weights and dimension placement manually",
		},
		Feedback: "Your drawing was evaluated but detailed analysis was unavailable. Keep practicing line weights, proportions, and dimensioning conventions.",
	}
}
