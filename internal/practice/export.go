package practice

import (
	"encoding/json"
	"fmt"
)

// Summary is the downloadable JSON artifact for one test result.
type Summary struct {
	Date            string   `json:"date"`
	DrawingType     string   `json:"drawing_type"`
	DurationSeconds int      `json:"duration_seconds"`
	Score           float64  `json:"score"`
	Accuracy        float64  `json:"accuracy"`
	Errors          []string `json:"errors"`
	Feedback        string   `json:"feedback"`
}

// ExportSummary renders a history item as a downloadable JSON file
// and suggests a filename.
func ExportSummary(item HistoryItem) ([]byte, string, error) {
	summary := Summary{
		Date:            item.CreatedAt.Format("2006-01-02 15:04"),
		DrawingType:     item.DrawingType,
		DurationSeconds: item.DurationSeconds,
		Score:           item.Score,
		Accuracy:        item.Accuracy,
		Errors:          item.Errors,
		Feedback:        item.Feedback,
	}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("test-result-%s-%s.json", item.DrawingType, item.CreatedAt.Format("20060102-150405"))
	return data, name, nil
}
