package dates

import (
	"testing"
	"time"
)

func TestParseISO(t *testing.T) {
	// Fixed reference time for deterministic tests
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "date only",
			input: "2025-09-01",
			want:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2025-09-01T08:30:00Z",
			want:  time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "not a date",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCompactDuration(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"+1d adds 1 day", "+1d", time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)},
		{"+2w adds 2 weeks", "+2w", time.Date(2025, 6, 29, 12, 0, 0, 0, time.UTC)},
		{"+3m adds 3 months", "+3m", time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)},
		{"+1y adds 1 year", "+1y", time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)},
		{"no sign means positive", "3d", time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)},
		{"-1d subtracts 1 day", "-1d", time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, now)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNaturalLanguage(t *testing.T) {
	// Fixed reference time: Wednesday, January 15, 2025
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{"tomorrow", "tomorrow", 2025, time.January, 16},
		{"next friday", "next friday", 2025, time.January, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, now)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("Parse(%q) = %v, want %d-%02d-%02d", tt.input, got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestValid(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	if !Valid("2025-12-01", now) {
		t.Error("Valid(2025-12-01) = false, want true")
	}
	if Valid("purple elephant", now) {
		t.Error("Valid(purple elephant) = true, want false")
	}
}
