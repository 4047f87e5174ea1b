package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gestionale/internal/core"
	"gestionale/internal/report"
)

const dateLayout = "2006-01-02"

// decodeJSON parses a JSON request body into dst, rejecting unknown fields
// and trailing garbage. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// pathID extracts the numeric ID and trailing action from a path like
// /api/invoices/42/pay given the /api/invoices/ prefix.
func pathID(path, prefix string) (int64, string, error) {
	rest := strings.TrimPrefix(path, prefix)
	idPart, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid id %q", idPart)
	}
	return id, action, nil
}

// parseOverviewFilter reads the report filter from query parameters:
// status, year, month, client_id, from, to. All are optional.
func parseOverviewFilter(query url.Values) (report.InvoiceFilter, error) {
	var f report.InvoiceFilter

	if v := strings.TrimSpace(query.Get("status")); v != "" && v != "all" {
		status := core.InvoiceStatus(v)
		if !status.Valid() {
			return f, fmt.Errorf("unknown status %q", v)
		}
		f.Status = status
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 3000 {
			return f, fmt.Errorf("invalid year %q", v)
		}
		f.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return f, fmt.Errorf("invalid month %q", v)
		}
		f.Month = m
	}
	if v := strings.TrimSpace(query.Get("client_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("invalid client_id %q", v)
		}
		f.ClientID = id
	}
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.DateFrom = t
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		f.DateTo = t
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateTo.Before(f.DateFrom) {
		return f, fmt.Errorf("to date precedes from date")
	}
	return f, nil
}

// parseTopLimit reads the optional top-client limit query parameter.
// Zero means the service default.
func parseTopLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 100 {
		return 0, fmt.Errorf("invalid limit %q", v)
	}
	return n, nil
}

// parseOptionalDate parses a YYYY-MM-DD string; empty means the zero time.
func parseOptionalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
