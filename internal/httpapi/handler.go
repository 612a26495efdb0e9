// Package httpapi exposes the dashboard, alert, digest and pipeline operations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pulseboard/social-listener/internal/aggregation"
	"github.com/pulseboard/social-listener/internal/database"
	"github.com/pulseboard/social-listener/internal/models"
	"github.com/sirupsen/logrus"
)

// maxPostIDs caps a single drill-down request
const maxPostIDs = 50

// Service is the set of operations served over HTTP
type Service interface {
	GetDashboardData(ctx context.Context) (*models.DashboardData, error)
	GetActiveAlerts(ctx context.Context) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string) error
	GetPostsByIDs(ctx context.Context, ids []string) ([]models.PostSummary, error)
	GetLatestDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error)
	RunPipeline(ctx context.Context) (*models.PipelineResult, error)
	RunDigest(ctx context.Context, digestType models.DigestType) (*models.Digest, error)
	GetMetrics() string
}

// Handler serves the API routes
type Handler struct {
	service    Service
	cronSecret string
	now        func() time.Time
}

// NewHandler creates a handler. An empty cronSecret disables trigger authorization.
func NewHandler(service Service, cronSecret string) *Handler {
	return &Handler{
		service:    service,
		cronSecret: cronSecret,
		now:        time.Now,
	}
}

// Router builds the route table
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests)

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.HandleFunc("/status", h.status).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", h.dashboard).Methods(http.MethodGet)
	api.HandleFunc("/alerts", h.listAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", h.acknowledgeAlert).Methods(http.MethodPost)
	api.HandleFunc("/posts", h.posts).Methods(http.MethodGet)
	api.HandleFunc("/digests", h.latestDigest).Methods(http.MethodGet)
	api.HandleFunc("/digests/generate", h.generateDigest).Methods(http.MethodPost)
	api.HandleFunc("/pipeline/run", h.runPipeline).Methods(http.MethodGet, http.MethodPost)

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.service.GetMetrics()))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.GetDashboardData(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.GetActiveAlerts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	now := h.now()
	summaries := make([]models.AlertSummary, 0, len(alerts))
	for _, a := range alerts {
		summaries = append(summaries, aggregation.SummarizeAlert(a, now))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"alerts":  summaries,
	})
}

type acknowledgeRequest struct {
	AlertID string `json:"alertId"`
}

func (h *Handler) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var req acknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.AlertID) == "" {
		writeFailure(w, http.StatusBadRequest, "alertId required")
		return
	}

	if err := h.service.AcknowledgeAlert(r.Context(), req.AlertID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) posts(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Query().Get("ids")
	if param == "" {
		writeFailure(w, http.StatusBadRequest, "ids query parameter required (comma-separated UUIDs)")
		return
	}

	ids := make([]string, 0)
	for _, id := range strings.Split(param, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
		if len(ids) == maxPostIDs {
			break
		}
	}
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, []models.PostSummary{})
		return
	}

	posts, err := h.service.GetPostsByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type digestResponse struct {
	ID          string            `json:"id"`
	Type        models.DigestType `json:"type"`
	KeyInsights []string          `json:"key_insights"`
	Content     string            `json:"content"`
	Summary     string            `json:"summary"`
	CreatedAt   string            `json:"created_at"`
}

func (h *Handler) latestDigest(w http.ResponseWriter, r *http.Request) {
	digestType, ok := digestTypeParam(r)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "type must be daily or weekly")
		return
	}

	digest, err := h.service.GetLatestDigest(r.Context(), digestType)
	if err != nil {
		writeError(w, err)
		return
	}
	if digest == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	created := digest.GeneratedAt
	if created.IsZero() {
		created = digest.PeriodEnd
	}
	insights := digest.KeyInsights
	if insights == nil {
		insights = []string{}
	}

	writeJSON(w, http.StatusOK, digestResponse{
		ID:          digest.ID,
		Type:        digest.Type,
		KeyInsights: insights,
		Content:     digest.Content,
		Summary:     digest.Summary,
		CreatedAt:   aggregation.ISOTime(created, h.now()),
	})
}

func (h *Handler) generateDigest(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret != "" && r.Header.Get("Authorization") != "Bearer "+h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	digestType, ok := digestTypeParam(r)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "type must be daily or weekly")
		return
	}

	digest, err := h.service.RunDigest(r.Context(), digestType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"digestId": digest.ID,
		"type":     digestType,
	})
}

type pipelineResponse struct {
	Success bool `json:"success"`
	*models.PipelineResult
}

// runPipeline rejects only a wrong Authorization header; requests without one
// are allowed so the dashboard can trigger a refresh.
func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request) {
	if auth, sent := r.Header["Authorization"]; h.cronSecret != "" && sent && auth[0] != "Bearer "+h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	result, err := h.service.RunPipeline(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pipelineResponse{Success: true, PipelineResult: result})
}

// digestTypeParam reads ?type, defaulting to daily
func digestTypeParam(r *http.Request) (models.DigestType, bool) {
	value := r.URL.Query().Get("type")
	if value == "" {
		return models.DigestDaily, true
	}
	return models.ParseDigestType(value)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeError maps service errors to status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logrus.Errorf("Request failed: %v", err)
	}
	writeFailure(w, status, err.Error())
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("Handled request")
	})
}
