package http

import (
	"bytes"
	"net/http"

	"gofinances/internal/dashboard"
	applog "gofinances/internal/log"
)

// dashboardData is what the templates render.
type dashboardData struct {
	Greeting     dashboard.Greeting
	Loading      bool
	Failed       bool
	ErrorMessage string
	Snapshot     *dashboard.Snapshot
	TotalClass   string
}

func newDashboardData(greeting dashboard.Greeting, v dashboard.View) dashboardData {
	d := dashboardData{
		Greeting: greeting,
		Loading:  v.State == dashboard.StateLoading,
		Failed:   v.State == dashboard.StateFailed,
		Snapshot: v.Snapshot,
	}
	if v.Snapshot != nil {
		if v.Snapshot.Totals.Total < 0 {
			d.TotalClass = "negative"
		}
	}
	if d.Failed {
		d.ErrorMessage = dashboard.ErrorMessage(v.Err)
	}
	return d
}

func (s *Server) render(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errTemplatesUnavailable
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) renderPartial(v dashboard.View) ([]byte, error) {
	return s.render("dashboard", newDashboardData(s.dash.Greeting(), v))
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template render failed",
		applog.FieldOperation, applog.OpRender,
		applog.FieldError, err)
	ErrorResponse(http.StatusInternalServerError, "Erro ao renderizar o painel.").Write(w)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	body, err := s.render("dashboard_page", newDashboardData(s.dash.Greeting(), s.currentView(r.Context())))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	body, err := s.renderPartial(s.currentView(r.Context()))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}
