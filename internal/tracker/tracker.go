// Package tracker holds the persisted rate-limiting state behind guidance
// scheduling: the per-type last-fired timestamp (throttle) and the per-type,
// per-local-day fired counters (daily limit).
package tracker

import (
	"context"
	"log"
	"time"

	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// Store is the persistence boundary for tracker state. Implementations are
// simple key-value stores; keys follow the layouts
// "throttle.lastFired.<type>" and "dailyCount.<type>.<dayKey>".
type Store interface {
	GetLastFired(ctx context.Context, activity guidance.ActivityType) (time.Time, bool, error)
	SetLastFired(ctx context.Context, activity guidance.ActivityType, firedAt time.Time) error
	GetDailyCount(ctx context.Context, activity guidance.ActivityType, dayKey string) (int, error)
	IncrDailyCount(ctx context.Context, activity guidance.ActivityType, dayKey string) error
}

// Throttle answers whether enough time has elapsed since the last
// notification of a given type.
type Throttle struct {
	store Store
}

// NewThrottle creates a throttle tracker over store.
func NewThrottle(store Store) *Throttle {
	return &Throttle{store: store}
}

// CanFire reports whether a notification of the given type may fire at now
// under a minMinutes spacing. The boundary is inclusive: exactly minMinutes
// elapsed allows delivery. A missing or unreadable record allows delivery;
// over-throttling is worse for this use case than an occasional double
// notification, so store failures degrade open.
func (t *Throttle) CanFire(ctx context.Context, activity guidance.ActivityType, now time.Time, minMinutes int) bool {
	if minMinutes <= 0 {
		return true
	}
	lastFired, found, err := t.store.GetLastFired(ctx, activity)
	if err != nil {
		log.Printf("throttle: reading last-fired for %s failed, allowing: %v", activity, err)
		return true
	}
	if !found {
		return true
	}
	return now.Sub(lastFired) >= time.Duration(minMinutes)*time.Minute
}

// RecordFired persists firedAt as the new last-fired instant for the type.
// Entries are monotonic per type: an instant earlier than the stored one is
// ignored rather than written.
func (t *Throttle) RecordFired(ctx context.Context, activity guidance.ActivityType, firedAt time.Time) error {
	existing, found, err := t.store.GetLastFired(ctx, activity)
	if err == nil && found && existing.After(firedAt) {
		return nil
	}
	return t.store.SetLastFired(ctx, activity, firedAt)
}

// DailyLimit answers whether the configured max-per-day has been reached for
// a given type on the local calendar day of the fire instant.
type DailyLimit struct {
	store Store
}

// NewDailyLimit creates a daily-limit tracker over store.
func NewDailyLimit(store Store) *DailyLimit {
	return &DailyLimit{store: store}
}

// CanFireToday reports whether the count for (activity, local day of now) is
// still below maxPerDay. An unreadable count reads as zero, which also
// degrades open.
func (d *DailyLimit) CanFireToday(ctx context.Context, activity guidance.ActivityType, now time.Time, maxPerDay int) bool {
	if maxPerDay <= 0 {
		return false
	}
	count, err := d.store.GetDailyCount(ctx, activity, guidance.DayKey(now))
	if err != nil {
		log.Printf("dailylimit: reading count for %s failed, treating as zero: %v", activity, err)
		return true
	}
	return count < maxPerDay
}

// RecordFired increments the counter for the local calendar day of firedAt.
// The day key is computed from the fire instant, not the decision instant,
// so a request resolved just before midnight that fires after it counts
// against the next day.
func (d *DailyLimit) RecordFired(ctx context.Context, activity guidance.ActivityType, firedAt time.Time) error {
	return d.store.IncrDailyCount(ctx, activity, guidance.DayKey(firedAt))
}
