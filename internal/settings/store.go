// Package settings persists user-editable guidance configuration: the
// per-activity notification rules and the quiet-hours window.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/RichMarin19/fast-life-sub000/internal/database"
	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// Store reads and writes guidance settings in PostgreSQL, with a Redis
// read-through cache for the rule map. The cache is an optimization only: a
// nil or unreachable Redis falls straight through to the database.
type Store struct {
	db    *database.PostgresDB
	redis *database.RedisClient
}

// NewStore creates a settings store. redis may be nil.
func NewStore(db *database.PostgresDB, redis *database.RedisClient) *Store {
	return &Store{db: db, redis: redis}
}

// LoadRules returns the persisted rule map. Activities with no stored row
// are absent; callers merge with guidance.DefaultRules.
func (s *Store) LoadRules(ctx context.Context) (map[guidance.ActivityType]guidance.Rule, error) {
	if s.redis != nil {
		if raw, err := s.redis.GetCachedRules(ctx); err == nil {
			var cached map[guidance.ActivityType]guidance.Rule
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			log.Printf("settings: discarding unreadable rules cache")
		}
	}

	query := `
		SELECT activity, enabled, allow_quiet_hours, throttle_minutes, max_per_day,
		       trigger_kind, trigger_seconds, trigger_offset_minutes,
		       trigger_hour, trigger_minute, trigger_every_minutes
		FROM guidance_rules
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	defer rows.Close()

	rules := make(map[guidance.ActivityType]guidance.Rule)
	for rows.Next() {
		var rule guidance.Rule
		var kind string
		err := rows.Scan(
			&rule.Activity, &rule.Enabled, &rule.AllowQuietHours,
			&rule.ThrottleMinutes, &rule.MaxPerDay,
			&kind, &rule.Trigger.Seconds, &rule.Trigger.OffsetMinutes,
			&rule.Trigger.Hour, &rule.Trigger.Minute, &rule.Trigger.EveryMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.Trigger.Kind = guidance.TriggerKind(kind)
		rules[rule.Activity] = rule
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.CacheRules(ctx, rules); err != nil {
			log.Printf("settings: failed to cache rules: %v", err)
		}
	}

	return rules, nil
}

// SaveRule upserts one rule row and invalidates the cache.
func (s *Store) SaveRule(ctx context.Context, rule guidance.Rule) error {
	query := `
		INSERT INTO guidance_rules (
			activity, enabled, allow_quiet_hours, throttle_minutes, max_per_day,
			trigger_kind, trigger_seconds, trigger_offset_minutes,
			trigger_hour, trigger_minute, trigger_every_minutes, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (activity) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			allow_quiet_hours = EXCLUDED.allow_quiet_hours,
			throttle_minutes = EXCLUDED.throttle_minutes,
			max_per_day = EXCLUDED.max_per_day,
			trigger_kind = EXCLUDED.trigger_kind,
			trigger_seconds = EXCLUDED.trigger_seconds,
			trigger_offset_minutes = EXCLUDED.trigger_offset_minutes,
			trigger_hour = EXCLUDED.trigger_hour,
			trigger_minute = EXCLUDED.trigger_minute,
			trigger_every_minutes = EXCLUDED.trigger_every_minutes,
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query,
		rule.Activity, rule.Enabled, rule.AllowQuietHours,
		rule.ThrottleMinutes, rule.MaxPerDay,
		string(rule.Trigger.Kind), rule.Trigger.Seconds, rule.Trigger.OffsetMinutes,
		rule.Trigger.Hour, rule.Trigger.Minute, rule.Trigger.EveryMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule for %s: %w", rule.Activity, err)
	}

	if s.redis != nil {
		if err := s.redis.InvalidateRules(ctx); err != nil {
			log.Printf("settings: failed to invalidate rules cache: %v", err)
		}
	}
	return nil
}

// SeedDefaults inserts default rules for any activity with no stored row.
// Existing rows are left untouched.
func (s *Store) SeedDefaults(ctx context.Context) error {
	stored, err := s.LoadRules(ctx)
	if err != nil {
		return err
	}
	for activity, rule := range guidance.DefaultRules() {
		if _, ok := stored[activity]; ok {
			continue
		}
		if err := s.SaveRule(ctx, rule); err != nil {
			return err
		}
	}
	return nil
}

// LoadQuietHours returns the persisted quiet-hours window. found is false
// when the user has never saved one.
func (s *Store) LoadQuietHours(ctx context.Context) (guidance.QuietHoursWindow, bool, error) {
	var window guidance.QuietHoursWindow
	query := `SELECT enabled, start_hour, end_hour FROM quiet_hours WHERE id = 1`
	err := s.db.QueryRowContext(ctx, query).Scan(&window.Enabled, &window.StartHour, &window.EndHour)
	if err == sql.ErrNoRows {
		return guidance.QuietHoursWindow{}, false, nil
	}
	if err != nil {
		return guidance.QuietHoursWindow{}, false, fmt.Errorf("failed to load quiet hours: %w", err)
	}
	return window, true, nil
}

// SaveQuietHours upserts the singleton quiet-hours row.
func (s *Store) SaveQuietHours(ctx context.Context, window guidance.QuietHoursWindow) error {
	query := `
		INSERT INTO quiet_hours (id, enabled, start_hour, end_hour, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			start_hour = EXCLUDED.start_hour,
			end_hour = EXCLUDED.end_hour,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, window.Enabled, window.StartHour, window.EndHour); err != nil {
		return fmt.Errorf("failed to save quiet hours: %w", err)
	}
	return nil
}
