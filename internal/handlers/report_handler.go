// Package handlers holds the thin HTTP controllers: parse query parameters,
// call the report service, map error classes to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ronitphilip/zoom-backend/internal/logging"
	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/reports"
	"github.com/ronitphilip/zoom-backend/internal/repository"
	"github.com/ronitphilip/zoom-backend/internal/zoom"
)

type ReportHandler struct {
	service *reports.Service
}

func NewReportHandler(service *reports.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

func parseRequest(r *http.Request) reports.Request {
	q := r.URL.Query()
	req := reports.Request{
		Window: models.Window{
			From: q.Get("from"),
			To:   q.Get("to"),
		},
		Grouping:      q.Get("grouping"),
		NextPageToken: q.Get("next_page_token"),
		Channel:       q.Get("channel"),
		Filter: repository.EngagementFilter{
			QueueID:   q.Get("queue_id"),
			QueueName: q.Get("queue_name"),
			FlowID:    q.Get("flow_id"),
			FlowName:  q.Get("flow_name"),
			AgentName: q.Get("agent_name"),
			Direction: q.Get("direction"),
		},
	}
	req.IntervalMinutes, _ = strconv.Atoi(q.Get("interval"))
	req.Count, _ = strconv.Atoi(q.Get("count"))
	req.Page, _ = strconv.Atoi(q.Get("page"))
	return req
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reports.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, zoom.ErrUpstreamAuth):
		return http.StatusUnauthorized
	case errors.Is(err, zoom.ErrUpstreamRequest):
		return http.StatusBadGateway
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.Default().WithContext(r.Context()).Error("Request failed",
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *ReportHandler) QueueReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.QueueReport(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) FlowReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.FlowReport(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) AbandonedReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.AbandonedReport(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) AgentAbandonedReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.AgentAbandonedReport(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) Engagements(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.EngagementListing(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) EngagementDetails(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.EngagementDetails(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) AgentsReport(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.AgentsReport(r.Context(), parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) AgentSummary(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(r.URL.Query().Get("team_id"))
	if err != nil || teamID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "team_id is required"})
		return
	}
	res, err := h.service.AgentSummary(r.Context(), teamID, parseRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReportHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
