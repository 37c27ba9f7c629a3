package guidance

import (
	"time"
)

// ResolveTrigger converts a declarative trigger into a concrete future
// instant relative to now. The boolean result is false when the trigger is
// malformed (unknown kind, negative interval, missing event); callers treat
// that as "do not schedule".
//
// Interval and event-relative triggers use absolute-instant arithmetic,
// which is unaffected by local-clock discontinuities: adding five minutes at
// 23:59 rolls into the next calendar day, and adding an hour across a DST
// transition lands exactly one hour later. Only the fixed-time-of-day kind
// uses calendar construction and therefore needs explicit DST handling.
func ResolveTrigger(trigger Trigger, now time.Time) (time.Time, bool) {
	switch trigger.Kind {
	case TriggerImmediate:
		return now, true

	case TriggerInterval:
		if trigger.Seconds < 0 {
			return time.Time{}, false
		}
		return now.Add(time.Duration(trigger.Seconds) * time.Second), true

	case TriggerEventRelative:
		if trigger.Event == nil {
			return time.Time{}, false
		}
		return trigger.Event.Add(time.Duration(trigger.OffsetMinutes) * time.Minute), true

	case TriggerFixedTimeOfDay:
		if trigger.Hour < 0 || trigger.Hour > 23 || trigger.Minute < 0 || trigger.Minute > 59 {
			return time.Time{}, false
		}
		return nextLocalOccurrence(now, trigger.Hour, trigger.Minute), true

	case TriggerRecurring:
		if trigger.EveryMinutes <= 0 {
			return time.Time{}, false
		}
		return now.Add(time.Duration(trigger.EveryMinutes) * time.Minute), true
	}

	return time.Time{}, false
}

// nextLocalOccurrence returns the next instant at or after now whose local
// wall clock reads hour:minute in now's location.
//
// On a spring-forward day the requested wall time may not exist; the result
// is then the first valid instant after the skipped gap. On a fall-back day
// the wall time occurs twice; the first occurrence is chosen so resolution
// stays deterministic.
func nextLocalOccurrence(now time.Time, hour, minute int) time.Time {
	loc := now.Location()
	year, month, day := now.Date()

	candidate := localWallClock(year, month, day, hour, minute, loc)
	if candidate.Before(now) {
		next := now.AddDate(0, 0, 1)
		year, month, day = next.Date()
		candidate = localWallClock(year, month, day, hour, minute, loc)
	}
	return candidate
}

// localWallClock builds the instant for a nominal local wall-clock time,
// resolving DST gaps and ambiguities.
func localWallClock(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)

	if candidate.Hour() != hour || candidate.Minute() != minute {
		// The nominal time fell inside a DST gap and normalization pushed
		// the result past it. Walk back minute by minute to the first
		// instant after the transition; one minute earlier than that reads
		// a wall clock before the nominal time.
		nominal := hour*60 + minute
		for i := 0; i < 181; i++ {
			prev := candidate.Add(-time.Minute)
			if prev.Day() != candidate.Day() || prev.Hour()*60+prev.Minute() < nominal {
				break
			}
			candidate = prev
		}
		return candidate
	}

	// On fall-back days the wall time repeats; prefer the first occurrence.
	if earlier := candidate.Add(-time.Hour); earlier.Day() == candidate.Day() &&
		earlier.Hour() == hour && earlier.Minute() == minute {
		return earlier
	}
	return candidate
}

// DayKey returns the local calendar-day key for an instant, used to scope
// daily-limit counters. The key is derived from the instant's own location
// so "per day" matches what the user sees.
func DayKey(instant time.Time) string {
	return instant.Format("2006-01-02")
}
