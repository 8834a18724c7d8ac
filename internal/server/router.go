package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ronitphilip/zoom-backend/internal/handlers"
	"github.com/ronitphilip/zoom-backend/internal/middleware"
)

// NewRouter constructs a ServeMux with the report API routes registered.
// The directory handler is optional; without an upstream client the route is
// simply not registered.
func NewRouter(rh *handlers.ReportHandler, th *handlers.TeamHandler, dh *handlers.DirectoryHandler) http.Handler {
	mux := http.NewServeMux()

	// Aggregate reports
	mux.HandleFunc("GET /api/v1/reports/queue", rh.QueueReport)
	mux.HandleFunc("GET /api/v1/reports/flow", rh.FlowReport)

	// Detail listings
	mux.HandleFunc("GET /api/v1/reports/abandoned", rh.AbandonedReport)
	mux.HandleFunc("GET /api/v1/reports/agent-abandoned", rh.AgentAbandonedReport)
	mux.HandleFunc("GET /api/v1/reports/engagements", rh.Engagements)
	mux.HandleFunc("GET /api/v1/reports/engagement-details", rh.EngagementDetails)

	// Agent reports
	mux.HandleFunc("GET /api/v1/reports/agents", rh.AgentsReport)
	mux.HandleFunc("GET /api/v1/reports/agent-summary", rh.AgentSummary)

	// Agent directory (upstream passthrough)
	if dh != nil {
		mux.HandleFunc("GET /api/v1/agents/directory", dh.ListAgents)
	}

	// Team management
	mux.HandleFunc("GET /api/v1/teams", th.List)
	mux.HandleFunc("POST /api/v1/teams", th.Create)
	mux.HandleFunc("PUT /api/v1/teams/{id}", th.Update)
	mux.HandleFunc("DELETE /api/v1/teams/{id}", th.Delete)

	// Health check and metrics (public)
	mux.HandleFunc("GET /healthz", rh.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
