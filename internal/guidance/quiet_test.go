package guidance

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 30, 0, 0, time.UTC)
}

func TestIsQuiet_NonWrappingWindow(t *testing.T) {
	window := QuietHoursWindow{Enabled: true, StartHour: 9, EndHour: 17}

	tests := []struct {
		hour  int
		quiet bool
	}{
		{0, false},
		{8, false},
		{9, true},  // start boundary inclusive
		{12, true},
		{16, true},
		{17, false}, // end boundary exclusive
		{23, false},
	}
	for _, tt := range tests {
		if got := IsQuiet(at(tt.hour), window); got != tt.quiet {
			t.Errorf("hour %d: expected quiet=%v, got %v", tt.hour, tt.quiet, got)
		}
	}
}

func TestIsQuiet_WrappingWindow(t *testing.T) {
	window := QuietHoursWindow{Enabled: true, StartHour: 22, EndHour: 6}

	tests := []struct {
		hour  int
		quiet bool
	}{
		{21, false},
		{22, true},
		{23, true},
		{0, true},
		{5, true},
		{6, false},
		{12, false},
	}
	for _, tt := range tests {
		if got := IsQuiet(at(tt.hour), window); got != tt.quiet {
			t.Errorf("hour %d: expected quiet=%v, got %v", tt.hour, tt.quiet, got)
		}
	}
}

func TestIsQuiet_ZeroWidthWindowNeverQuiet(t *testing.T) {
	window := QuietHoursWindow{Enabled: true, StartHour: 8, EndHour: 8}
	for hour := 0; hour < 24; hour++ {
		if IsQuiet(at(hour), window) {
			t.Errorf("hour %d: zero-width window should never be quiet", hour)
		}
	}
}

func TestIsQuiet_DisabledWindow(t *testing.T) {
	window := QuietHoursWindow{Enabled: false, StartHour: 0, EndHour: 23}
	if IsQuiet(at(3), window) {
		t.Error("disabled window should never be quiet")
	}
}

func TestIsQuiet_DependsOnlyOnLocalHour(t *testing.T) {
	window := QuietHoursWindow{Enabled: true, StartHour: 22, EndHour: 6}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// The same local wall-clock hour must evaluate identically on both
	// sides of a DST transition even though its UTC offset differs.
	winter := time.Date(2025, 1, 15, 23, 0, 0, 0, ny)
	summer := time.Date(2025, 7, 15, 23, 0, 0, 0, ny)
	if !IsQuiet(winter, window) || !IsQuiet(summer, window) {
		t.Error("23:00 local should be quiet in both January and July")
	}
}
