package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sgc/internal/adapters/export"
	"sgc/internal/application/projections"
	"sgc/internal/domain/report"
)

// reportOptionsFor applies the weekdays toggle (?weekdays=1|0) over the configured options.
func reportOptionsFor(r *http.Request) report.Options {
	opts := reportOptions
	if v := r.URL.Query().Get("weekdays"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.WeekdaysOnly = b
		}
	}
	return opts
}

func monthlyReport(r *http.Request) (projections.MonthlyReportResult, report.Options, error) {
	opts := reportOptionsFor(r)
	q := r.URL.Query()
	result, err := projections.QueryMonthlyReport(r.Context(),
		projections.MonthlyReportQuery{Month: q.Get("month"), Search: strings.TrimSpace(q.Get("q"))},
		projections.MonthlyReportDeps{
			MemberStore:     stores.MemberStore,
			AttendanceStore: stores.AttendanceStore,
			Options:         opts,
		})
	return result, opts, err
}

// handleReports handles GET /admin/reports.
func handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, opts, err := monthlyReport(r)
	if errors.Is(err, report.ErrInvalidMonth) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	renderTemplate(w, r, "reports.html", map[string]any{
		"Result":       result,
		"WeekdaysOnly": opts.WeekdaysOnly,
	})
}

// handleReportExport handles GET /admin/reports/export and streams the month as xlsx.
func handleReportExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, _, err := monthlyReport(r)
	if errors.Is(err, report.ErrInvalidMonth) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if result.Month == "" {
		http.Error(w, "no attendance has been recorded yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteMonthly(&buf, result.Report); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(result.Month)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}
