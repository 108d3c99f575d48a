package interval

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2025, time.June, 10, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"b inside a", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"a inside b", at(10, 30), at(11, 0), at(10, 0), at(12, 0), true},
		{"touching endpoints do not overlap", at(10, 0), at(11, 0), at(11, 0), at(12, 0), false},
		{"touching endpoints reversed", at(11, 0), at(12, 0), at(10, 0), at(11, 0), false},
		{"disjoint", at(10, 0), at(11, 0), at(14, 0), at(15, 0), false},
		{"one minute overlap", at(10, 0), at(11, 1), at(11, 0), at(12, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got != Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd) {
				t.Error("Overlaps() is not symmetric")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(at(10, 0), at(11, 0)); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}
	if err := Validate(at(11, 0), at(10, 0)); err != ErrInvalidInterval {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
	if err := Validate(at(10, 0), at(10, 0)); err != ErrInvalidInterval {
		t.Errorf("zero-length interval must be invalid, got %v", err)
	}
}

func TestNormalizeToUTC(t *testing.T) {
	wall := func(y int, mo time.Month, d, h, m int) time.Time {
		return time.Date(y, mo, d, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		zone string
		in   time.Time
		want time.Time
	}{
		{
			name: "winter standard time",
			zone: "Europe/Warsaw",
			in:   wall(2025, time.January, 15, 13, 0),
			want: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "summer DST time",
			zone: "Europe/Warsaw",
			in:   wall(2025, time.July, 15, 13, 0),
			want: time.Date(2025, time.July, 15, 11, 0, 0, 0, time.UTC),
		},
		{
			name: "ambiguous fall-back hour resolves to standard offset",
			zone: "Europe/Warsaw",
			in:   wall(2025, time.October, 26, 2, 30),
			want: time.Date(2025, time.October, 26, 1, 30, 0, 0, time.UTC),
		},
		{
			name: "nonexistent spring-forward hour resolves to standard offset",
			zone: "Europe/Warsaw",
			in:   wall(2025, time.March, 30, 2, 30),
			want: time.Date(2025, time.March, 30, 1, 30, 0, 0, time.UTC),
		},
		{
			name: "utc passthrough",
			zone: "UTC",
			in:   wall(2025, time.June, 1, 9, 15),
			want: time.Date(2025, time.June, 1, 9, 15, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeToUTC(tt.in, tt.zone)
			if err != nil {
				t.Fatalf("NormalizeToUTC() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NormalizeToUTC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeToUTC_UnknownZone(t *testing.T) {
	_, err := NormalizeToUTC(at(10, 0), "Not/AZone")
	if err == nil {
		t.Error("expected error for unknown zone id")
	}
}

func TestNormalizeToUTC_Deterministic(t *testing.T) {
	in := time.Date(2025, time.October, 26, 2, 30, 0, 0, time.UTC)
	first, err := NormalizeToUTC(in, "Europe/Warsaw")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := NormalizeToUTC(in, "Europe/Warsaw")
		if err != nil {
			t.Fatal(err)
		}
		if !again.Equal(first) {
			t.Fatalf("normalization not deterministic: %v vs %v", again, first)
		}
	}
}
