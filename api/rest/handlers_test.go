package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
	"github.com/RichMarin19/fast-life-sub000/internal/monitoring"
	"github.com/RichMarin19/fast-life-sub000/internal/tracker"
)

var testMetrics = monitoring.NewMetrics()

type recordingDeliverer struct {
	submitted int
}

func (d *recordingDeliverer) Submit(context.Context, time.Time, guidance.Payload, string) error {
	d.submitted++
	return nil
}
func (d *recordingDeliverer) Cancel(context.Context, string) error { return nil }
func (d *recordingDeliverer) CancelAll(context.Context, guidance.ActivityType) error {
	return nil
}

func newTestHandler() (*Handler, *recordingDeliverer) {
	store := tracker.NewMemoryStore()
	deliverer := &recordingDeliverer{}
	scheduler := guidance.NewScheduler(
		guidance.NewRuleSet(nil),
		guidance.QuietHoursWindow{Enabled: true, StartHour: 21, EndHour: 7},
		tracker.NewThrottle(store),
		tracker.NewDailyLimit(store),
		deliverer,
		nil,
		testMetrics,
		zap.NewNop(),
	)
	return NewHandler(scheduler, testMetrics, zap.NewNop()), deliverer
}

func doRequest(t *testing.T, handler *Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.SetupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestScheduleGuidanceEndpoint_Accepted(t *testing.T) {
	handler, deliverer := newTestHandler()

	rec := doRequest(t, handler, "POST", "/api/v1/guidance", ScheduleGuidanceRequest{
		Activity: "fasting",
		Trigger:  guidance.Trigger{Kind: guidance.TriggerImmediate},
		Context: guidance.Context{
			TimeOfDay: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		},
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if deliverer.submitted != 1 {
		t.Errorf("expected 1 submission, got %d", deliverer.submitted)
	}
}

func TestScheduleGuidanceEndpoint_DroppedRequestStillAccepted(t *testing.T) {
	handler, deliverer := newTestHandler()

	// 23:00 is inside the 21:00–07:00 quiet window; the pipeline drops the
	// request but the HTTP contract is still 202.
	rec := doRequest(t, handler, "POST", "/api/v1/guidance", ScheduleGuidanceRequest{
		Activity: "fasting",
		Trigger:  guidance.Trigger{Kind: guidance.TriggerImmediate},
		Context: guidance.Context{
			TimeOfDay: time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC),
		},
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if deliverer.submitted != 0 {
		t.Errorf("quiet-hours request must not reach delivery, got %d submissions", deliverer.submitted)
	}
}

func TestScheduleGuidanceEndpoint_RejectsBadInput(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "POST", "/api/v1/guidance", ScheduleGuidanceRequest{
		Activity: "juggling",
		Trigger:  guidance.Trigger{Kind: guidance.TriggerImmediate},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown activity: expected 400, got %d", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/v1/guidance", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	handler.SetupRoutes().ServeHTTP(raw, req)
	if raw.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", raw.Code)
	}
}

func TestListRulesEndpoint(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "GET", "/api/v1/rules", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rules []guidance.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rules); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rules) != len(guidance.ActivityTypes) {
		t.Errorf("expected %d rules, got %d", len(guidance.ActivityTypes), len(rules))
	}
}

func TestUpdateRuleEndpoint(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "PUT", "/api/v1/rules/hydration", UpdateRuleRequest{
		Enabled:         true,
		ThrottleMinutes: 240,
		MaxPerDay:       3,
		Trigger:         guidance.Trigger{Kind: guidance.TriggerRecurring, EveryMinutes: 240},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rule guidance.Rule
	if err := json.Unmarshal(rec.Body.Bytes(), &rule); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rule.Activity != guidance.ActivityHydration || rule.ThrottleMinutes != 240 {
		t.Errorf("unexpected rule in response: %+v", rule)
	}
}

func TestUpdateRuleEndpoint_UnknownActivity(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "PUT", "/api/v1/rules/juggling", UpdateRuleRequest{
		Enabled: true, MaxPerDay: 1,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateRuleEndpoint_RejectsInvalidLimits(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "PUT", "/api/v1/rules/hydration", UpdateRuleRequest{
		Enabled: true, MaxPerDay: 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("max_per_day=0: expected 400, got %d", rec.Code)
	}
}

func TestQuietHoursEndpoints_RoundTrip(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "PUT", "/api/v1/quiet-hours", UpdateQuietHoursRequest{
		Enabled: true, StartHour: 22, EndHour: 6,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, "GET", "/api/v1/quiet-hours", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	var window guidance.QuietHoursWindow
	if err := json.Unmarshal(rec.Body.Bytes(), &window); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !window.Enabled || window.StartHour != 22 || window.EndHour != 6 {
		t.Errorf("unexpected window after round trip: %+v", window)
	}
}

func TestQuietHoursEndpoint_RejectsOutOfRangeHours(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "PUT", "/api/v1/quiet-hours", UpdateQuietHoursRequest{
		Enabled: true, StartHour: 25, EndHour: 6,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestHandler()

	rec := doRequest(t, handler, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("unexpected health payload: %v", health)
	}
}
