package attendance

import (
	"errors"
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-08-31", false},
		{"2026-02-29", true},
		{"31-08-2026", true},
		{"2026-8-31", true},
		{"", true},
		{"not a date", true},
	}
	for _, tt := range tests {
		d, err := ParseDay(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrBadDay) {
				t.Errorf("ParseDay(%q) err = %v, want ErrBadDay", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDay(%q) = %v", tt.in, err)
			continue
		}
		if d.Year() != 2026 || d.Month() != time.August || d.Day() != 31 {
			t.Errorf("ParseDay(%q) = %v", tt.in, d)
		}
	}
}
