package apihttp

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"energy-audit/internal/access"
	analyticsapp "energy-audit/internal/analytics/application"
	"energy-audit/internal/observability/metrics"
	"energy-audit/internal/reporting"
	"energy-audit/internal/reporting/export"
)

func (h *Handler) handleProjectKPIs(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboards.ProjectKPIs(r.Context(), identityOf(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toKPIs(view.KPIs))
}

func (h *Handler) handleProjectExport(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "proyecto", func() (reporting.FormattedReport, error) {
		view, err := h.dashboards.ProjectKPIs(r.Context(), identityOf(r), r.PathValue("id"))
		if err != nil {
			return reporting.FormattedReport{}, err
		}
		return h.assembler.Project(view.Project, view.KPIs), nil
	})
}

func (h *Handler) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.dashboards.Workspace(r.Context(), identityOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{
		ProjectCount:     ws.ProjectCount,
		InExecutionCount: ws.InExecutionCount,
		Recent:           toProjects(ws.Recent),
	})
}

func strategicFilter(r *http.Request) analyticsapp.Filter {
	return analyticsapp.Filter{
		ProjectID: r.URL.Query().Get("project"),
		LeadID:    r.URL.Query().Get("lead"),
	}
}

func (h *Handler) handleStrategic(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboards.Strategic(r.Context(), identityOf(r), strategicFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStrategic(dash))
}

func (h *Handler) handleStrategicExport(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "dashboard_estrategico", func() (reporting.FormattedReport, error) {
		dash, err := h.dashboards.Strategic(r.Context(), identityOf(r), strategicFilter(r))
		if err != nil {
			return reporting.FormattedReport{}, err
		}
		return h.assembler.Dashboard(dash.ScopeLabel, dash.Report), nil
	})
}

func (h *Handler) handleNational(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboards.National(r.Context(), identityOf(r), r.URL.Query().Get("organization"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNational(dash))
}

func (h *Handler) handleNationalExport(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "dashboard_nacional", func() (reporting.FormattedReport, error) {
		dash, err := h.dashboards.National(r.Context(), identityOf(r), r.URL.Query().Get("organization"))
		if err != nil {
			return reporting.FormattedReport{}, err
		}
		if dash.Detail != nil {
			return h.assembler.Dashboard(dash.Detail.ScopeLabel, dash.Detail.Report), nil
		}
		return h.assembler.National(*dash.Summary), nil
	})
}

func (h *Handler) handlePublicSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboards.Public(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublic(summary))
}

// export renders the report in the format named by the path extension.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, name string, build func() (reporting.FormattedReport, error)) {
	start := time.Now()
	format, ok := export.ParseFormat(strings.TrimPrefix(path.Ext(r.URL.Path), "."))
	if !ok {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	report, err := build()
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, access.ErrPermissionDenied) {
			result = metrics.ResultDenied
		}
		metrics.ObserveReportExport(string(format), result, time.Since(start))
		writeError(w, r, err)
		return
	}
	data, err := export.Render(format, report)
	if err != nil {
		metrics.ObserveReportExport(string(format), metrics.ResultError, time.Since(start))
		writeError(w, r, err)
		return
	}
	metrics.ObserveReportExport(string(format), metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+name+"."+string(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
