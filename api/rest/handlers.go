package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
	"github.com/RichMarin19/fast-life-sub000/internal/monitoring"
)

// Handler holds dependencies for REST API handlers
type Handler struct {
	scheduler *guidance.Scheduler
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	validator *validator.Validate
}

// NewHandler creates a new REST API handler
func NewHandler(
	scheduler *guidance.Scheduler,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		scheduler: scheduler,
		metrics:   metrics,
		logger:    logger,
		validator: validator.New(),
	}
}

// ScheduleGuidanceRequest represents the request body for a scheduling attempt
type ScheduleGuidanceRequest struct {
	Activity string           `json:"activity" validate:"required,oneof=fasting hydration weight sleep mood milestone did_you_know goal_reminder"`
	Trigger  guidance.Trigger `json:"trigger" validate:"required"`
	Context  guidance.Context `json:"context"`
}

// UpdateRuleRequest represents the request body for replacing a rule
type UpdateRuleRequest struct {
	Enabled         bool             `json:"enabled"`
	AllowQuietHours bool             `json:"allow_quiet_hours"`
	ThrottleMinutes int              `json:"throttle_minutes" validate:"gte=0"`
	MaxPerDay       int              `json:"max_per_day" validate:"gte=1"`
	Trigger         guidance.Trigger `json:"trigger"`
}

// UpdateQuietHoursRequest represents the request body for the quiet-hours window
type UpdateQuietHoursRequest struct {
	Enabled   bool `json:"enabled"`
	StartHour int  `json:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int  `json:"end_hour" validate:"gte=0,lte=23"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ScheduleGuidance handles POST /api/v1/guidance. The scheduling decision
// is fire-and-forget: a well-formed request is always accepted, whether the
// pipeline delivers or drops it.
func (h *Handler) ScheduleGuidance(w http.ResponseWriter, r *http.Request) {
	h.metrics.IncrementActiveConnections()
	defer h.metrics.DecrementActiveConnections()

	var req ScheduleGuidanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", zap.Error(err))
		h.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Error("Request validation failed", zap.Error(err))
		h.writeErrorResponse(w, fmt.Sprintf("Validation error: %v", err), http.StatusBadRequest)
		return
	}

	h.scheduler.ScheduleGuidance(r.Context(), guidance.ActivityType(req.Activity), req.Trigger, req.Context)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// ListRules handles GET /api/v1/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.scheduler.Rules().All()

	// Stable order for clients
	out := make([]guidance.Rule, 0, len(rules))
	for _, activity := range guidance.ActivityTypes {
		if rule, ok := rules[activity]; ok {
			out = append(out, rule)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// UpdateRule handles PUT /api/v1/rules/{activity}
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	activity := guidance.ActivityType(vars["activity"])
	if !activity.Valid() {
		h.writeErrorResponse(w, "Unknown activity type", http.StatusNotFound)
		return
	}

	var req UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.writeErrorResponse(w, fmt.Sprintf("Validation error: %v", err), http.StatusBadRequest)
		return
	}

	rule := guidance.Rule{
		Activity:        activity,
		Enabled:         req.Enabled,
		AllowQuietHours: req.AllowQuietHours,
		ThrottleMinutes: req.ThrottleMinutes,
		MaxPerDay:       req.MaxPerDay,
		Trigger:         req.Trigger,
	}

	if err := h.scheduler.UpdateRule(r.Context(), rule); err != nil {
		h.logger.Error("Failed to update rule", zap.Error(err), zap.String("activity", string(activity)))
		h.writeErrorResponse(w, "Failed to update rule", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Rule updated", zap.String("activity", string(activity)), zap.Bool("enabled", rule.Enabled))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rule)
}

// GetQuietHours handles GET /api/v1/quiet-hours
func (h *Handler) GetQuietHours(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.scheduler.QuietHours())
}

// UpdateQuietHours handles PUT /api/v1/quiet-hours
func (h *Handler) UpdateQuietHours(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuietHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.writeErrorResponse(w, fmt.Sprintf("Validation error: %v", err), http.StatusBadRequest)
		return
	}

	window := guidance.QuietHoursWindow{
		Enabled:   req.Enabled,
		StartHour: req.StartHour,
		EndHour:   req.EndHour,
	}
	h.scheduler.SetQuietHours(r.Context(), window)

	h.logger.Info("Quiet hours updated",
		zap.Int("start_hour", window.StartHour),
		zap.Int("end_hour", window.EndHour),
		zap.Bool("enabled", window.Enabled),
	)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(window)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "guidance-engine",
		"version":   "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// Metrics handles GET /metrics (Prometheus metrics)
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.Handler().ServeHTTP(w, r)
}

// writeErrorResponse writes an error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// SetupRoutes sets up all REST API routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/guidance", h.ScheduleGuidance).Methods("POST")
	api.HandleFunc("/rules", h.ListRules).Methods("GET")
	api.HandleFunc("/rules/{activity}", h.UpdateRule).Methods("PUT")
	api.HandleFunc("/quiet-hours", h.GetQuietHours).Methods("GET")
	api.HandleFunc("/quiet-hours", h.UpdateQuietHours).Methods("PUT")

	// Health and metrics
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/metrics", h.Metrics).Methods("GET")

	// Add middleware
	router.Use(h.loggingMiddleware)

	return router
}

// loggingMiddleware logs HTTP requests
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response recorder to capture status code
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.statusCode),
			zap.Duration("duration", duration),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// responseRecorder wraps http.ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
