package guidance

import (
	"time"
)

// ActivityType identifies the tracked behavior a guidance notification
// pertains to.
type ActivityType string

const (
	ActivityFasting      ActivityType = "fasting"
	ActivityHydration    ActivityType = "hydration"
	ActivityWeight       ActivityType = "weight"
	ActivitySleep        ActivityType = "sleep"
	ActivityMood         ActivityType = "mood"
	ActivityMilestone    ActivityType = "milestone"
	ActivityDidYouKnow   ActivityType = "did_you_know"
	ActivityGoalReminder ActivityType = "goal_reminder"
)

// ActivityTypes lists every supported activity type. Order is stable and is
// used for rule seeding and per-type lock allocation.
var ActivityTypes = []ActivityType{
	ActivityFasting,
	ActivityHydration,
	ActivityWeight,
	ActivitySleep,
	ActivityMood,
	ActivityMilestone,
	ActivityDidYouKnow,
	ActivityGoalReminder,
}

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	for _, known := range ActivityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TriggerKind enumerates the declarative trigger variants a rule or caller
// may request.
type TriggerKind string

const (
	TriggerImmediate      TriggerKind = "immediate"
	TriggerInterval       TriggerKind = "interval"        // fire now + Seconds
	TriggerEventRelative  TriggerKind = "event_relative"  // fire Event + OffsetMinutes
	TriggerFixedTimeOfDay TriggerKind = "fixed_time"      // next local HH:MM at or after now
	TriggerRecurring      TriggerKind = "recurring"       // fire now + EveryMinutes
)

// Trigger is a declarative description of when a notification should fire.
// Only the fields relevant to Kind are consulted.
type Trigger struct {
	Kind          TriggerKind `json:"kind"`
	Seconds       int         `json:"seconds,omitempty"`
	OffsetMinutes int         `json:"offset_minutes,omitempty"` // negative = before Event
	Event         *time.Time  `json:"event,omitempty"`
	Hour          int         `json:"hour,omitempty"`
	Minute        int         `json:"minute,omitempty"`
	EveryMinutes  int         `json:"every_minutes,omitempty"`
}

// Context is the snapshot of user state passed into a single scheduling
// decision. It is created fresh per call and never mutated or persisted.
type Context struct {
	CurrentStreak int        `json:"current_streak"`
	RecentPattern string     `json:"recent_pattern,omitempty"` // opaque, payload templating only
	TimeOfDay     time.Time  `json:"time_of_day"`              // "now" for this decision, injectable
	DataValue     float64    `json:"data_value"`
	GoalProgress  float64    `json:"goal_progress"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}

// Now returns the decision instant: the injected TimeOfDay when set,
// otherwise the wall clock.
func (c Context) Now() time.Time {
	if !c.TimeOfDay.IsZero() {
		return c.TimeOfDay
	}
	return time.Now()
}

// Rule is the per-activity-type notification configuration. Rules are plain
// data; all mutable runtime state lives in the throttle and daily-limit
// trackers, keyed by Activity.
type Rule struct {
	Activity        ActivityType `json:"activity"`
	Enabled         bool         `json:"enabled"`
	AllowQuietHours bool         `json:"allow_quiet_hours"`
	ThrottleMinutes int          `json:"throttle_minutes"`
	MaxPerDay       int          `json:"max_per_day"`
	Trigger         Trigger      `json:"trigger"`
}

// Payload is the user-facing content handed to the delivery primitive. The
// scheduler treats it as opaque beyond construction.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Request captures one scheduling attempt as it moves through the pipeline.
type Request struct {
	Activity    ActivityType
	Trigger     Trigger
	Context     Context
	FireInstant time.Time // zero until the trigger resolves
	Payload     Payload
}
