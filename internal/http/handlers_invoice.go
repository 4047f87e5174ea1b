package http

import (
	"net/http"
	"time"

	"gestionale/internal/core"
)

type invoiceRequest struct {
	ClientID  int64  `json:"client_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
}

type invoiceResponse struct {
	ID          int64   `json:"id"`
	ClientID    int64   `json:"client_id"`
	ClientName  string  `json:"client_name,omitempty"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	IssueDate   string  `json:"issue_date"`
	DueDate     string  `json:"due_date,omitempty"`
	PaidDate    string  `json:"paid_date,omitempty"`
	ExternalRef string  `json:"external_ref,omitempty"`
}

func toInvoiceResponse(inv core.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          inv.ID,
		ClientID:    inv.ClientID,
		ClientName:  inv.ClientName,
		Amount:      inv.Amount,
		Status:      string(inv.Status),
		IssueDate:   formatOptionalDate(inv.IssueDate),
		DueDate:     formatOptionalDate(inv.DueDate),
		PaidDate:    formatOptionalDate(inv.PaidDate),
		ExternalRef: inv.ExternalRef,
	}
}

func (s *Server) handleInvoices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		invoices, err := s.deps.Invoices.List(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		out := make([]invoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			out = append(out, toInvoiceResponse(inv))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req invoiceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		inv, err := invoiceFromRequest(req)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		id, err := s.deps.Invoices.Create(r.Context(), inv)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		created, err := s.deps.Invoices.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toInvoiceResponse(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func invoiceFromRequest(req invoiceRequest) (core.Invoice, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Invoice{}, err
	}
	issueDate, err := parseOptionalDate(req.IssueDate)
	if err != nil {
		return core.Invoice{}, err
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return core.Invoice{}, err
	}
	status := core.InvoiceStatus(req.Status)
	if req.Status == "" {
		status = core.StatusDraft
	}
	return core.Invoice{
		ClientID:  req.ClientID,
		Amount:    amount,
		Status:    status,
		IssueDate: issueDate,
		DueDate:   dueDate,
	}, nil
}

func (s *Server) handleInvoiceByID(w http.ResponseWriter, r *http.Request) {
	id, action, err := pathID(r.URL.Path, "/api/invoices/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			inv, err := s.deps.Invoices.Get(r.Context(), id)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
		case http.MethodDelete:
			if err := s.deps.Invoices.Delete(r.Context(), id); err != nil {
				writeDomainError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w, "GET, DELETE")
		}

	case "pay":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		s.handleInvoicePay(w, r, id)

	case "status":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		s.handleInvoiceStatus(w, r, id)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleInvoicePay(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		PaidDate string `json:"paid_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paidDate, err := parseOptionalDate(req.PaidDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if paidDate.IsZero() {
		now := time.Now().UTC()
		paidDate = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}
	if err := s.deps.Invoices.MarkPaid(r.Context(), id, paidDate); err != nil {
		writeDomainError(w, r, err)
		return
	}
	inv, err := s.deps.Invoices.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (s *Server) handleInvoiceStatus(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Invoices.UpdateStatus(r.Context(), id, core.InvoiceStatus(req.Status)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	inv, err := s.deps.Invoices.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}
