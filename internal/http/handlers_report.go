package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gestionale/internal/amqp"
	"gestionale/internal/export"
	"gestionale/internal/observability/metrics"
)

func (s *Server) handleReportOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	filter, err := parseOverviewFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topLimit, err := parseTopLimit(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ov, err := s.deps.Reports.Overview(r.Context(), filter, topLimit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleReportExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	year := 0
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 3000 {
			writeError(w, http.StatusBadRequest, "invalid year "+strconv.Quote(v))
			return
		}
		year = y
	}

	rep, err := s.deps.Reports.Expenses(r.Context(), year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type exportRequest struct {
	Format string `json:"format"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

type exportResponse struct {
	Status string `json:"status"`
	Format string `json:"format"`
	Year   int    `json:"year,omitempty"`
	Month  int    `json:"month,omitempty"`
}

// handleReportExport serves exports two ways: GET builds the document inline
// and streams it back; POST queues a task for the report worker instead.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleReportDownload(w, r)
		return
	case http.MethodPost:
	default:
		methodNotAllowed(w, "GET, POST")
		return
	}
	if s.deps.Publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "export queue unavailable")
		return
	}

	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Format == "" {
		req.Format = "pdf"
	}
	if req.Format != "pdf" && req.Format != "xlsx" {
		writeError(w, http.StatusUnprocessableEntity, "format must be pdf or xlsx")
		return
	}
	if req.Month != 0 && (req.Month < 1 || req.Month > 12) {
		writeError(w, http.StatusUnprocessableEntity, "month must be between 1 and 12")
		return
	}
	if req.Month != 0 && req.Year == 0 {
		writeError(w, http.StatusUnprocessableEntity, "month filter requires a year")
		return
	}

	msg := amqp.NewReportExportMessage(req.Format, req.Year, req.Month)
	if err := s.deps.Publisher.PublishTask(r.Context(), msg); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, exportResponse{
		Status: "queued",
		Format: req.Format,
		Year:   req.Year,
		Month:  req.Month,
	})
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	format := strings.TrimSpace(query.Get("format"))
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		writeError(w, http.StatusUnprocessableEntity, "format must be pdf or xlsx")
		return
	}
	filter, err := parseOverviewFilter(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ov, err := s.deps.Reports.Overview(r.Context(), filter, 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	started := time.Now()
	var data []byte
	if format == "xlsx" {
		data, err = export.BuildOverviewXLSX(ov, filter.Year, filter.Month)
	} else {
		data, err = export.BuildOverviewPDF(ov, filter.Year, filter.Month)
	}
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		writeDomainError(w, r, err)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))

	contentType := "application/pdf"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="overview.`+format+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
