// Package periodic drives the recurring scheduling attempts that no
// external event produces: hydration nudges through the day, the daily
// educational fact, the evening goal reminder.
package periodic

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/RichMarin19/fast-life-sub000/internal/config"
	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// ContextProvider supplies the behavioral snapshot for a periodic check.
// The host wires it to whatever holds current tracker state; the zero
// Context is a safe fallback.
type ContextProvider func(activity guidance.ActivityType) guidance.Context

// Checker manages all cron tasks.
type Checker struct {
	Cron      *cron.Cron
	Scheduler *guidance.Scheduler
	Provider  ContextProvider
	Logger    *zap.Logger
	Ctx       context.Context
}

// NewChecker creates a new Checker.
func NewChecker(ctx context.Context, scheduler *guidance.Scheduler, provider ContextProvider, logger *zap.Logger) *Checker {
	if provider == nil {
		provider = func(guidance.ActivityType) guidance.Context { return guidance.Context{} }
	}
	return &Checker{
		Cron:      cron.New(cron.WithSeconds()),
		Scheduler: scheduler,
		Provider:  provider,
		Logger:    logger,
		Ctx:       ctx,
	}
}

// RegisterAll registers the recurring checks from config.
func (c *Checker) RegisterAll(cfg config.PeriodicConfig) error {
	if _, err := c.Cron.AddFunc(cfg.HydrationCron, func() {
		c.attempt(guidance.ActivityHydration)
	}); err != nil {
		return fmt.Errorf("register hydration check: %w", err)
	}
	if _, err := c.Cron.AddFunc(cfg.DidYouKnowCron, func() {
		c.attempt(guidance.ActivityDidYouKnow)
	}); err != nil {
		return fmt.Errorf("register did-you-know check: %w", err)
	}
	if _, err := c.Cron.AddFunc(cfg.GoalReminderCron, func() {
		c.attempt(guidance.ActivityGoalReminder)
	}); err != nil {
		return fmt.Errorf("register goal-reminder check: %w", err)
	}
	return nil
}

// Start starts the cron checker.
func (c *Checker) Start() {
	c.Cron.Start()
	c.Logger.Info("Periodic checker started")
}

// Stop stops the cron checker gracefully.
func (c *Checker) Stop() {
	c.Cron.Stop()
	c.Logger.Info("Periodic checker stopped")
}

// attempt issues one immediate scheduling attempt; the pipeline decides
// whether anything actually fires.
func (c *Checker) attempt(activity guidance.ActivityType) {
	bctx := c.Provider(activity)
	c.Scheduler.ScheduleGuidance(c.Ctx, activity, guidance.Trigger{Kind: guidance.TriggerImmediate}, bctx)
}
