package guidance

import (
	"testing"
	"time"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestResolveTrigger_Immediate(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerImmediate}, now)
	if !ok || !fireAt.Equal(now) {
		t.Fatalf("expected %v, got %v (ok=%v)", now, fireAt, ok)
	}
}

func TestResolveTrigger_Interval(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerInterval, Seconds: 900}, now)
	if !ok || !fireAt.Equal(now.Add(15*time.Minute)) {
		t.Fatalf("expected now+15m, got %v (ok=%v)", fireAt, ok)
	}

	if _, ok := ResolveTrigger(Trigger{Kind: TriggerInterval, Seconds: -1}, now); ok {
		t.Error("negative interval should not resolve")
	}
}

func TestResolveTrigger_IntervalMidnightCrossing(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, 6, 1, 23, 59, 0, 0, ny)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerInterval, Seconds: 300}, now)
	if !ok {
		t.Fatal("expected resolution")
	}
	if fireAt.Hour() != 0 || fireAt.Minute() != 4 || fireAt.Day() != 2 {
		t.Fatalf("expected 00:04 on June 2, got %v", fireAt)
	}
	// The daily-limit day key must follow the fire instant into the next day.
	if DayKey(fireAt) != "2025-06-02" {
		t.Errorf("expected day key 2025-06-02, got %s", DayKey(fireAt))
	}
	if DayKey(now) != "2025-06-01" {
		t.Errorf("expected request-day key 2025-06-01, got %s", DayKey(now))
	}
}

func TestResolveTrigger_EventRelative(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	goal := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerEventRelative, OffsetMinutes: -30, Event: &goal}, now)
	if !ok || !fireAt.Equal(goal.Add(-30*time.Minute)) {
		t.Fatalf("expected goal-30m, got %v (ok=%v)", fireAt, ok)
	}

	if _, ok := ResolveTrigger(Trigger{Kind: TriggerEventRelative, OffsetMinutes: -30}, now); ok {
		t.Error("missing event instant should not resolve")
	}
}

func TestResolveTrigger_FixedTimeOfDay_SameDay(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, ny)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerFixedTimeOfDay, Hour: 18, Minute: 30}, now)
	if !ok {
		t.Fatal("expected resolution")
	}
	if fireAt.Day() != 1 || fireAt.Hour() != 18 || fireAt.Minute() != 30 {
		t.Fatalf("expected 18:30 same day, got %v", fireAt)
	}
}

func TestResolveTrigger_FixedTimeOfDay_RollsToNextDay(t *testing.T) {
	ny := newYork(t)
	now := time.Date(2025, 6, 1, 19, 0, 0, 0, ny)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerFixedTimeOfDay, Hour: 18, Minute: 30}, now)
	if !ok {
		t.Fatal("expected resolution")
	}
	if fireAt.Day() != 2 || fireAt.Hour() != 18 || fireAt.Minute() != 30 {
		t.Fatalf("expected 18:30 next day, got %v", fireAt)
	}
}

func TestResolveTrigger_FixedTimeOfDay_SpringForwardGap(t *testing.T) {
	ny := newYork(t)
	// 2025-03-09: clocks jump from 02:00 to 03:00 in America/New_York, so
	// 02:30 does not exist that day.
	now := time.Date(2025, 3, 9, 0, 30, 0, 0, ny)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerFixedTimeOfDay, Hour: 2, Minute: 30}, now)
	if !ok {
		t.Fatal("gap must resolve, not fail")
	}
	if fireAt.Day() != 9 {
		t.Fatalf("expected resolution on March 9, got %v", fireAt)
	}
	// First valid instant at or after the nominal time is the gap end.
	if fireAt.Hour() != 3 || fireAt.Minute() != 0 {
		t.Fatalf("expected 03:00 (first instant after the gap), got %v", fireAt)
	}
	// The result must be a real instant: round-tripping preserves it.
	if !fireAt.Equal(time.Date(2025, 3, 9, 3, 0, 0, 0, ny)) {
		t.Fatalf("expected a real instant at 03:00, got %v", fireAt)
	}
}

func TestResolveTrigger_FixedTimeOfDay_FallBackFirstOccurrence(t *testing.T) {
	ny := newYork(t)
	// 2025-11-02: clocks fall back from 02:00 EDT to 01:00 EST, so 01:30
	// occurs twice. The first occurrence is still on EDT (UTC-4).
	now := time.Date(2025, 11, 2, 0, 15, 0, 0, ny)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerFixedTimeOfDay, Hour: 1, Minute: 30}, now)
	if !ok {
		t.Fatal("expected resolution")
	}
	if fireAt.Hour() != 1 || fireAt.Minute() != 30 {
		t.Fatalf("expected 01:30 local, got %v", fireAt)
	}
	_, offset := fireAt.Zone()
	if offset != -4*3600 {
		t.Fatalf("expected first occurrence (EDT, UTC-4), got offset %d", offset)
	}
}

func TestResolveTrigger_FixedTimeOfDay_InvalidInputs(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, trigger := range []Trigger{
		{Kind: TriggerFixedTimeOfDay, Hour: 24, Minute: 0},
		{Kind: TriggerFixedTimeOfDay, Hour: -1, Minute: 0},
		{Kind: TriggerFixedTimeOfDay, Hour: 10, Minute: 60},
	} {
		if _, ok := ResolveTrigger(trigger, now); ok {
			t.Errorf("trigger %+v should not resolve", trigger)
		}
	}
}

func TestResolveTrigger_Recurring(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerRecurring, EveryMinutes: 120}, now)
	if !ok || !fireAt.Equal(now.Add(2*time.Hour)) {
		t.Fatalf("expected now+2h, got %v (ok=%v)", fireAt, ok)
	}

	if _, ok := ResolveTrigger(Trigger{Kind: TriggerRecurring, EveryMinutes: 0}, now); ok {
		t.Error("zero recurrence should not resolve")
	}
}

func TestResolveTrigger_UnknownKind(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if _, ok := ResolveTrigger(Trigger{Kind: "someday"}, now); ok {
		t.Error("unknown trigger kind should not resolve")
	}
}

func TestResolveTrigger_IntervalAcrossSpringForward(t *testing.T) {
	ny := newYork(t)
	// 01:30 EST, one hour before the spring-forward jump.
	now := time.Date(2025, 3, 9, 1, 30, 0, 0, ny)

	fireAt, ok := ResolveTrigger(Trigger{Kind: TriggerInterval, Seconds: 3600}, now)
	if !ok {
		t.Fatal("expected resolution")
	}
	// Absolute arithmetic: exactly one elapsed hour, which reads 03:30
	// local because the clock skipped an hour.
	if fireAt.Sub(now) != time.Hour {
		t.Fatalf("expected exactly 1h elapsed, got %v", fireAt.Sub(now))
	}
	if fireAt.Hour() != 3 || fireAt.Minute() != 30 {
		t.Fatalf("expected 03:30 local, got %v", fireAt)
	}
}
