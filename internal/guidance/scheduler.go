package guidance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RichMarin19/fast-life-sub000/internal/monitoring"
)

// Drop reasons, used for logging and the dropped-total metric.
const (
	DropUnknownActivity = "unknown_activity"
	DropDisabled        = "rule_disabled"
	DropNotApplicable   = "not_applicable"
	DropUnresolved      = "trigger_unresolved"
	DropQuietHours      = "quiet_hours"
	DropThrottled       = "throttled"
	DropDailyLimit      = "daily_limit"
	DropDeliveryFailed  = "delivery_failed"
)

// ThrottleTracker answers and records minimum-spacing state per activity
// type. Implemented by tracker.Throttle.
type ThrottleTracker interface {
	CanFire(ctx context.Context, activity ActivityType, now time.Time, minMinutes int) bool
	RecordFired(ctx context.Context, activity ActivityType, firedAt time.Time) error
}

// DailyLimitTracker answers and records per-local-day counters per activity
// type. Implemented by tracker.DailyLimit.
type DailyLimitTracker interface {
	CanFireToday(ctx context.Context, activity ActivityType, now time.Time, maxPerDay int) bool
	RecordFired(ctx context.Context, activity ActivityType, firedAt time.Time) error
}

// Deliverer is the platform's local-notification primitive. Submit hands
// over a future fire time and payload; the platform owns actual delivery and
// may coalesce or delay. Cancellation is best-effort.
type Deliverer interface {
	Submit(ctx context.Context, fireAt time.Time, payload Payload, identifier string) error
	Cancel(ctx context.Context, identifier string) error
	CancelAll(ctx context.Context, activity ActivityType) error
}

// RuleStore persists rule and quiet-hours configuration across restarts.
// Implemented by settings.Store; a nil store keeps everything in memory.
type RuleStore interface {
	SaveRule(ctx context.Context, rule Rule) error
	SaveQuietHours(ctx context.Context, window QuietHoursWindow) error
}

// Scheduler runs each scheduling request through the precedence pipeline:
// rule applicability, trigger resolution, quiet hours, throttle, daily
// limit, delivery. The stage order is the correctness contract; failure at
// any stage is terminal for that request and side-effect free.
type Scheduler struct {
	rules    *RuleSet
	throttle ThrottleTracker
	daily    DailyLimitTracker
	deliver  Deliverer
	store    RuleStore
	metrics  *monitoring.Metrics
	logger   *zap.Logger

	windowMu sync.RWMutex
	window   QuietHoursWindow

	// typeLocks serializes the read-filter-write sequence per activity type
	// so two concurrent requests of the same type cannot both pass the
	// throttle check before either records. Different types proceed
	// independently.
	typeLocks map[ActivityType]*sync.Mutex
}

// NewScheduler wires a scheduler from its collaborators. store may be nil
// for in-memory operation.
func NewScheduler(
	rules *RuleSet,
	window QuietHoursWindow,
	throttle ThrottleTracker,
	daily DailyLimitTracker,
	deliver Deliverer,
	store RuleStore,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Scheduler {
	typeLocks := make(map[ActivityType]*sync.Mutex, len(ActivityTypes))
	for _, activity := range ActivityTypes {
		typeLocks[activity] = &sync.Mutex{}
	}
	return &Scheduler{
		rules:     rules,
		window:    window,
		throttle:  throttle,
		daily:     daily,
		deliver:   deliver,
		store:     store,
		metrics:   metrics,
		logger:    logger,
		typeLocks: typeLocks,
	}
}

// QuietHours returns the current quiet-hours window.
func (s *Scheduler) QuietHours() QuietHoursWindow {
	s.windowMu.RLock()
	defer s.windowMu.RUnlock()
	return s.window
}

// SetQuietHours replaces the quiet-hours window and persists it.
func (s *Scheduler) SetQuietHours(ctx context.Context, window QuietHoursWindow) {
	s.windowMu.Lock()
	s.window = window
	s.windowMu.Unlock()

	if s.store != nil {
		if err := s.store.SaveQuietHours(ctx, window); err != nil {
			s.logger.Warn("Failed to persist quiet hours", zap.Error(err))
		}
	}
}

// Rules exposes the live rule set.
func (s *Scheduler) Rules() *RuleSet {
	return s.rules
}

// UpdateRule atomically replaces the rule for its activity type and persists
// it. Disabling a rule cancels anything the delivery layer still holds for
// that type; the cancel is best-effort by contract.
func (s *Scheduler) UpdateRule(ctx context.Context, rule Rule) error {
	if !rule.Activity.Valid() {
		return fmt.Errorf("unknown activity type %q", rule.Activity)
	}
	if rule.MaxPerDay < 1 {
		return fmt.Errorf("max_per_day must be at least 1")
	}
	if rule.ThrottleMinutes < 0 {
		return fmt.Errorf("throttle_minutes must not be negative")
	}

	s.rules.Replace(rule)
	s.metrics.RecordRuleUpdate(string(rule.Activity))

	if s.store != nil {
		if err := s.store.SaveRule(ctx, rule); err != nil {
			return fmt.Errorf("failed to persist rule: %w", err)
		}
	}

	if !rule.Enabled {
		if err := s.deliver.CancelAll(ctx, rule.Activity); err != nil {
			s.logger.Warn("Failed to cancel pending notifications for disabled rule",
				zap.String("activity", string(rule.Activity)),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ScheduleGuidance runs one scheduling decision. It is fire-and-forget: the
// outcome is either a submission to the delivery layer or a silent drop, and
// neither is surfaced to the caller as an error.
func (s *Scheduler) ScheduleGuidance(ctx context.Context, activity ActivityType, trigger Trigger, bctx Context) {
	start := time.Now()
	defer func() {
		s.metrics.RecordDecisionDuration(string(activity), time.Since(start).Seconds())
	}()

	lock, ok := s.typeLocks[activity]
	if !ok {
		s.drop(activity, DropUnknownActivity, time.Time{})
		return
	}
	lock.Lock()
	defer lock.Unlock()

	rule, ok := s.rules.Get(activity)
	if !ok || !rule.Enabled {
		s.drop(activity, DropDisabled, time.Time{})
		return
	}
	if !IsApplicable(activity, bctx) {
		s.drop(activity, DropNotApplicable, time.Time{})
		return
	}

	now := bctx.Now()
	fireAt, resolved := ResolveTrigger(trigger, now)
	if !resolved {
		s.drop(activity, DropUnresolved, time.Time{})
		return
	}

	// Quiet hours is evaluated strictly before throttle and daily limit; a
	// quiet-hours block stands regardless of what the trackers would say.
	if IsQuiet(fireAt, s.QuietHours()) && !rule.AllowQuietHours {
		s.drop(activity, DropQuietHours, fireAt)
		return
	}
	if !s.throttle.CanFire(ctx, activity, now, rule.ThrottleMinutes) {
		s.drop(activity, DropThrottled, fireAt)
		return
	}
	if !s.daily.CanFireToday(ctx, activity, fireAt, rule.MaxPerDay) {
		s.drop(activity, DropDailyLimit, fireAt)
		return
	}

	payload := BuildPayload(activity, bctx)
	identifier := deliveryIdentifier(activity, fireAt)

	if err := s.deliver.Submit(ctx, fireAt, payload, identifier); err != nil {
		// Not retried here: a recurring trigger will produce another attempt.
		s.metrics.RecordDeliveryFailure(string(activity))
		s.drop(activity, DropDeliveryFailed, fireAt)
		return
	}

	// Bookkeeping uses the scheduled fire instant, not decision time, so the
	// trackers line up with when the user will actually see the
	// notification.
	if err := s.throttle.RecordFired(ctx, activity, fireAt); err != nil {
		s.logger.Warn("Failed to record throttle state",
			zap.String("activity", string(activity)), zap.Error(err))
	}
	if err := s.daily.RecordFired(ctx, activity, fireAt); err != nil {
		s.logger.Warn("Failed to record daily-limit state",
			zap.String("activity", string(activity)), zap.Error(err))
	}

	s.metrics.RecordScheduled(string(activity))
	s.logger.Info("Guidance notification scheduled",
		zap.String("activity", string(activity)),
		zap.Time("fire_at", fireAt),
		zap.String("identifier", identifier),
	)
}

func (s *Scheduler) drop(activity ActivityType, reason string, fireAt time.Time) {
	s.metrics.RecordDropped(string(activity), reason)
	fields := []zap.Field{
		zap.String("activity", string(activity)),
		zap.String("reason", reason),
	}
	if !fireAt.IsZero() {
		fields = append(fields, zap.Time("fire_at", fireAt))
	}
	s.logger.Warn("Guidance request dropped", fields...)
}

// deliveryIdentifier is stable per (activity, logical occurrence): two
// requests of the same type resolving to the same local minute replace each
// other in the delivery layer instead of stacking.
func deliveryIdentifier(activity ActivityType, fireAt time.Time) string {
	return fmt.Sprintf("%s:%s", activity, fireAt.Format("2006-01-02T15:04"))
}
