package evaluation

import (
	"testing"
)

func TestExtractResult(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Result
		wantErr bool
	}{
		{
			name: "bare JSON",
			text: `{"score": 8, "accuracy": 90, "errors": [], "feedback": "Good"}`,
			want: Result{Score: 8, Accuracy: 90, Errors: []string{}, Feedback: "Good"},
		},
		{
			name: "JSON inside prose",
			text: "Here is my assessment:\n```json\n{\"score\": 7.5, \"accuracy\": 80, \"errors\": [\"Missing centerline\"], \"feedback\": \"Close\"}\n```\nHope that helps.",
			want: Result{Score: 7.5, Accuracy: 80, Errors: []string{"Missing centerline"}, Feedback: "Close"},
		},
		{
			name: "braces inside feedback string",
			text: `{"score": 6, "accuracy": 60, "errors": [], "feedback": "Use {hidden} line style"}`,
			want: Result{Score: 6, Accuracy: 60, Errors: []string{}, Feedback: "Use {hidden} line style"},
		},
		{
			name: "out of range values clamped",
			text: `{"score": 14, "accuracy": 130, "errors": ["a","b","c","d","e","f","g"], "feedback": "x"}`,
			want: Result{Score: 10, Accuracy: 100, Errors: []string{"a", "b", "c", "d", "e"}, Feedback: "x"},
		},
		{
			name:    "no JSON at all",
			text:    "I cannot grade this drawing.",
			wantErr: true,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractResult(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Score != tt.want.Score || got.Accuracy != tt.want.Accuracy || got.Feedback != tt.want.Feedback {
				t.Errorf("ExtractResult() = %+v, want %+v", got, tt.want)
			}
			if len(got.Errors) != len(tt.want.Errors) {
				t.Errorf("Errors = %v, want %v", got.Errors, tt.want.Errors)
			}
		})
	}
}

func TestFallbackIsWellFormed(t *testing.T) {
	res := Fallback()
	if res.Score != 7 || res.Accuracy != 75 {
		t.Errorf("Fallback() = %+v, want score 7 accuracy 75", res)
	}
	if len(res.Errors) == 0 || res.Feedback == "" {
		t.Errorf("Fallback() missing errors or feedback: %+v", res)
	}
}

func TestClampNilErrors(t *testing.T) {
	res := Result{Score: -1, Accuracy: -5}
	res.Clamp()
	if res.Score != 0 || res.Accuracy != 0 {
		t.Errorf("Clamp() = %+v, want zero floor", res)
	}
	if res.Errors == nil {
		t.Error("Clamp() left Errors nil")
	}
}
