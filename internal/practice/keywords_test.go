package practice

import (
	"reflect"
	"testing"

	"drawlab/internal/content"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		errs     []string
		feedback string
		want     []string
	}{
		{
			name: "mixed case with stop words",
			errs: []string{"The Line Weight Is Wrong And The Proportions Are Off"},
			want: []string{"line", "weight", "wrong", "proportions"},
		},
		{
			name:     "feedback contributes after errors",
			errs:     []string{"Missing hidden lines"},
			feedback: "Work on your dimensioning technique",
			want:     []string{"missing", "hidden", "lines", "work", "dimensioning", "technique"},
		},
		{
			name: "duplicates kept once in first-seen order",
			errs: []string{"Dimension lines overlap", "Dimension arrows missing"},
			want: []string{"dimension", "lines", "overlap", "arrows", "missing"},
		},
		{
			name: "short tokens dropped",
			errs: []string{"Top cut is off by 2mm"},
			want: []string{},
		},
		{
			name:     "empty input",
			errs:     nil,
			feedback: "",
			want:     []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.errs, tt.feedback)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsCap(t *testing.T) {
	var errs []string
	for _, w := range []string{
		"alpha", "bravo", "charlie", "delta", "echoes", "foxtrot", "golf1",
		"hotel", "india", "juliet", "kilo1", "lima1", "mike1", "november",
		"oscar", "papa1", "quebec", "romeo", "sierra", "tango", "uniform",
		"victor", "whiskey",
	} {
		errs = append(errs, w)
	}
	got := ExtractKeywords(errs, "")
	if len(got) != 20 {
		t.Fatalf("len = %d, want cap of 20", len(got))
	}
}

func TestRankVideos(t *testing.T) {
	videos := []content.Item{
		{Title: "Dimensioning Basics"},
		{Title: "Line Weight Tips"},
		{Title: "Random Sketching"},
		{Title: "Line Types and Weight Conventions"},
	}
	keywords := []string{"line", "weight"}

	got := RankVideos(videos, keywords)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Two-hit titles first, original order preserved among ties.
	if got[0].Title != "Line Weight Tips" {
		t.Errorf("got[0] = %q", got[0].Title)
	}
	if got[1].Title != "Line Types and Weight Conventions" {
		t.Errorf("got[1] = %q", got[1].Title)
	}
	if got[2].Title != "Dimensioning Basics" {
		t.Errorf("got[2] = %q", got[2].Title)
	}
}

func TestRankVideosNoKeywords(t *testing.T) {
	videos := []content.Item{
		{Title: "First"},
		{Title: "Second"},
	}
	got := RankVideos(videos, nil)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "First" || got[1].Title != "Second" {
		t.Errorf("order changed without keywords: %v", got)
	}
}
