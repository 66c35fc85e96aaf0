package http

import (
	"encoding/json"
	"net/http"
	"time"

	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
)

// apiView is the JSON shape of a dashboard view.
type apiView struct {
	State    dashboard.State     `json:"state"`
	Snapshot *dashboard.Snapshot `json:"snapshot"`
	Error    string              `json:"error,omitempty"`
}

func toAPIView(v dashboard.View) apiView {
	return apiView{State: v.State, Snapshot: v.Snapshot, Error: dashboard.ErrorCode(v.Err)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAPIView(s.currentView(r.Context())))
}

// handleRefresh forces a re-read of storage. htmx callers get the rendered
// partial, everyone else the JSON view.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.Invalidate()
	v := s.currentView(r.Context())
	if v.State == dashboard.StateFailed {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Dashboard refresh failed",
			applog.FieldOperation, applog.OpRefresh,
			applog.FieldError, v.Err)
	}

	if r.Header.Get("HX-Request") != "true" {
		writeJSON(w, http.StatusOK, toAPIView(v))
		return
	}
	body, err := s.renderPartial(v)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	resp := NewHTMXResponse().BodyHTML(body)
	if v.Snapshot != nil {
		resp.TriggerDashboardRefreshed(v.Snapshot.Generation, v.State.String())
	}
	if v.State == dashboard.StateFailed {
		resp.TriggerErrorNotification(dashboard.ErrorMessage(v.Err))
	}
	resp.Write(w)
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Refresh rate limited")
	if r.Header.Get("HX-Request") == "true" {
		ErrorResponse(http.StatusTooManyRequests, "Muitas atualizações. Tente novamente em instantes.").Write(w)
		return
	}
	writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate_limited"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"uptime":              time.Since(s.started).Round(time.Second).String(),
		"suspicious_requests": s.detector.SuspiciousCount(),
	})
}

// handleReady reports 503 until a snapshot has been published and while the
// store is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.storage != nil {
		if err := s.storage.Ping(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Storage ping failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "storage_unavailable",
			})
			return
		}
	}
	if !s.dash.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"state":  s.dash.View().State,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"generation": s.dash.Generation(),
	})
}
