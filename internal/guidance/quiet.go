package guidance

import "time"

// QuietHoursWindow is a configured local wall-clock window during which
// non-exempt notifications must not fire. Hours are in [0,23]. When
// StartHour > EndHour the window wraps midnight (22→6 covers 22:00–05:59).
type QuietHoursWindow struct {
	Enabled   bool `json:"enabled"`
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
}

// IsQuiet reports whether the local wall-clock hour of instant falls inside
// the window. The evaluation is defined purely on the local hour, so DST
// shifts cannot affect it. A zero-width window (start == end) is never
// quiet: the half-open interval collapses to empty.
func IsQuiet(instant time.Time, window QuietHoursWindow) bool {
	if !window.Enabled {
		return false
	}
	h := instant.Hour()
	if window.StartHour == window.EndHour {
		return false
	}
	if window.StartHour < window.EndHour {
		return window.StartHour <= h && h < window.EndHour
	}
	// Wraps midnight.
	return h >= window.StartHour || h < window.EndHour
}
