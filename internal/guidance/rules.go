package guidance

import (
	"fmt"
	"sync"
	"time"
)

// streakMilestones are the streak lengths worth celebrating. The milestone
// rule is applicable only when the current streak sits exactly on one of
// these, or when the tracked goal has just been reached.
var streakMilestones = map[int]bool{
	3: true, 7: true, 14: true, 30: true, 60: true, 100: true, 365: true,
}

// applicability holds the per-activity gating predicates evaluated before
// the generic pipeline. Rules are plain data; this is the only
// activity-specific logic.
var applicability = map[ActivityType]func(Context) bool{
	ActivityFasting:    func(Context) bool { return true },
	ActivitySleep:      func(Context) bool { return true },
	ActivityDidYouKnow: func(Context) bool { return true },

	// No point nagging about water once the hydration goal is met.
	ActivityHydration: func(c Context) bool { return c.GoalProgress < 1.0 },

	// Weight nudges only when there has been no weigh-in for ~a day.
	ActivityWeight: func(c Context) bool {
		return c.LastActivity == nil || c.Now().Sub(*c.LastActivity) >= 20*time.Hour
	},

	// At most one mood check-in prompt per half day of silence.
	ActivityMood: func(c Context) bool {
		return c.LastActivity == nil || c.Now().Sub(*c.LastActivity) >= 12*time.Hour
	},

	ActivityMilestone: func(c Context) bool {
		return c.GoalProgress >= 1.0 || streakMilestones[c.CurrentStreak]
	},

	// Goal reminders need a goal in progress.
	ActivityGoalReminder: func(c Context) bool {
		return c.GoalProgress > 0 && c.GoalProgress < 1.0
	},
}

// IsApplicable runs the activity-specific predicate for activity against
// ctx. Unknown activities are never applicable.
func IsApplicable(activity ActivityType, ctx Context) bool {
	pred, ok := applicability[activity]
	if !ok {
		return false
	}
	return pred(ctx)
}

// DefaultRules returns the built-in rule configuration, used to seed the
// settings store on first run. Sleep is the only type exempt from quiet
// hours: a wind-down reminder is useless outside of them.
func DefaultRules() map[ActivityType]Rule {
	return map[ActivityType]Rule{
		ActivityFasting: {
			Activity: ActivityFasting, Enabled: true,
			ThrottleMinutes: 60, MaxPerDay: 6,
			Trigger: Trigger{Kind: TriggerImmediate},
		},
		ActivityHydration: {
			Activity: ActivityHydration, Enabled: true,
			ThrottleMinutes: 120, MaxPerDay: 5,
			Trigger: Trigger{Kind: TriggerRecurring, EveryMinutes: 120},
		},
		ActivityWeight: {
			Activity: ActivityWeight, Enabled: true,
			ThrottleMinutes: 720, MaxPerDay: 1,
			Trigger: Trigger{Kind: TriggerFixedTimeOfDay, Hour: 8, Minute: 0},
		},
		ActivitySleep: {
			Activity: ActivitySleep, Enabled: true, AllowQuietHours: true,
			ThrottleMinutes: 720, MaxPerDay: 1,
			Trigger: Trigger{Kind: TriggerFixedTimeOfDay, Hour: 21, Minute: 30},
		},
		ActivityMood: {
			Activity: ActivityMood, Enabled: true,
			ThrottleMinutes: 360, MaxPerDay: 2,
			Trigger: Trigger{Kind: TriggerImmediate},
		},
		ActivityMilestone: {
			Activity: ActivityMilestone, Enabled: true,
			ThrottleMinutes: 60, MaxPerDay: 3,
			Trigger: Trigger{Kind: TriggerImmediate},
		},
		ActivityDidYouKnow: {
			Activity: ActivityDidYouKnow, Enabled: true,
			ThrottleMinutes: 1440, MaxPerDay: 1,
			Trigger: Trigger{Kind: TriggerFixedTimeOfDay, Hour: 10, Minute: 0},
		},
		ActivityGoalReminder: {
			Activity: ActivityGoalReminder, Enabled: true,
			ThrottleMinutes: 240, MaxPerDay: 2,
			Trigger: Trigger{Kind: TriggerFixedTimeOfDay, Hour: 18, Minute: 0},
		},
	}
}

// BuildPayload derives user-facing title and body from the rule's activity
// and the behavioral context. Content is opaque to the rest of the pipeline.
func BuildPayload(activity ActivityType, ctx Context) Payload {
	switch activity {
	case ActivityFasting:
		return Payload{
			Title: "Fasting update",
			Body:  fmt.Sprintf("You're %.0f%% of the way through your fast. Keep going!", ctx.GoalProgress*100),
		}
	case ActivityHydration:
		return Payload{
			Title: "Time to hydrate",
			Body:  fmt.Sprintf("You've logged %.0f oz so far today. A glass of water now keeps you on track.", ctx.DataValue),
		}
	case ActivityWeight:
		return Payload{
			Title: "Morning weigh-in",
			Body:  "Step on the scale to keep your trend line honest.",
		}
	case ActivitySleep:
		return Payload{
			Title: "Wind-down time",
			Body:  "Heading to bed on schedule protects tomorrow's fast.",
		}
	case ActivityMood:
		return Payload{
			Title: "Mood check-in",
			Body:  "How are you feeling? A ten-second check-in keeps your log complete.",
		}
	case ActivityMilestone:
		if ctx.CurrentStreak > 0 && streakMilestones[ctx.CurrentStreak] {
			return Payload{
				Title: "Milestone reached!",
				Body:  fmt.Sprintf("That's a %d-day streak. Outstanding consistency.", ctx.CurrentStreak),
			}
		}
		return Payload{
			Title: "Goal complete!",
			Body:  "You hit today's target. Take a moment to enjoy it.",
		}
	case ActivityDidYouKnow:
		return Payload{
			Title: "Did you know?",
			Body:  "Most of the metabolic shift in a fast happens after hour 12.",
		}
	case ActivityGoalReminder:
		return Payload{
			Title: "Almost there",
			Body:  fmt.Sprintf("You're at %.0f%% of today's goal.", ctx.GoalProgress*100),
		}
	}
	return Payload{Title: "Fast LIFe", Body: "You have a new update."}
}

// RuleSet holds the live rule configuration. Reads during a scheduling
// decision see a consistent snapshot; updates replace a whole rule, never a
// partial in-place mutation.
type RuleSet struct {
	mu    sync.RWMutex
	rules map[ActivityType]Rule
}

// NewRuleSet builds a RuleSet from an initial rule map. Missing activities
// fall back to defaults so every known type always has a rule.
func NewRuleSet(initial map[ActivityType]Rule) *RuleSet {
	rules := DefaultRules()
	for activity, rule := range initial {
		if activity.Valid() {
			rules[activity] = rule
		}
	}
	return &RuleSet{rules: rules}
}

// Get returns a copy of the rule for activity.
func (rs *RuleSet) Get(activity ActivityType) (Rule, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	rule, ok := rs.rules[activity]
	return rule, ok
}

// All returns a copy of every rule, keyed by activity.
func (rs *RuleSet) All() map[ActivityType]Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make(map[ActivityType]Rule, len(rs.rules))
	for activity, rule := range rs.rules {
		out[activity] = rule
	}
	return out
}

// Replace swaps in a whole new rule for its activity atomically.
func (rs *RuleSet) Replace(rule Rule) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rules[rule.Activity] = rule
}
