package practice

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestExportSummary(t *testing.T) {
	item := HistoryItem{
		ID:              "3f6f5e0a-0000-0000-0000-000000000000",
		UserIdentifier:  "student@example.com",
		DrawingType:     "isometric",
		DurationSeconds: 900,
		Score:           8.5,
		Accuracy:        88,
		Errors:          []string{"Hidden lines missing"},
		Feedback:        "Almost there",
		CreatedAt:       time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	data, filename, err := ExportSummary(item)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(filename, "test-result-isometric-") || !strings.HasSuffix(filename, ".json") {
		t.Errorf("filename = %q", filename)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if out["drawing_type"] != "isometric" {
		t.Errorf("drawing_type = %v", out["drawing_type"])
	}
	if out["score"] != 8.5 {
		t.Errorf("score = %v", out["score"])
	}
	if _, ok := out["feedback"]; !ok {
		t.Error("feedback missing from export")
	}
}
