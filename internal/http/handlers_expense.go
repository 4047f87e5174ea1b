package http

import (
	"net/http"

	"gestionale/internal/core"
)

type expenseRequest struct {
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Category     string `json:"category"`
	Date         string `json:"date"`
	HasVAT       bool   `json:"has_vat"`
	IsRecurring  bool   `json:"is_recurring"`
	RecurringDay int    `json:"recurring_day"`
}

type expenseResponse struct {
	ID           int64   `json:"id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category"`
	Date         string  `json:"date"`
	HasVAT       bool    `json:"has_vat"`
	IsRecurring  bool    `json:"is_recurring"`
	RecurringDay int     `json:"recurring_day,omitempty"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     string(e.Category),
		Date:         formatOptionalDate(e.Date),
		HasVAT:       e.HasVAT,
		IsRecurring:  e.IsRecurring,
		RecurringDay: e.RecurringDay,
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		expenses, err := s.deps.Expenses.List(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		out := make([]expenseResponse, 0, len(expenses))
		for _, e := range expenses {
			out = append(out, toExpenseResponse(e))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		amount, err := core.ParseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		id, err := s.deps.Expenses.Create(r.Context(), core.Expense{
			Description:  req.Description,
			Amount:       amount,
			Category:     core.ExpenseCategory(req.Category),
			Date:         date,
			HasVAT:       req.HasVAT,
			IsRecurring:  req.IsRecurring,
			RecurringDay: req.RecurringDay,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		created, err := s.deps.Expenses.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toExpenseResponse(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id, action, err := pathID(r.URL.Path, "/api/expenses/")
	if err != nil || action != "" {
		writeError(w, http.StatusBadRequest, "invalid expense path")
		return
	}

	switch r.Method {
	case http.MethodGet:
		e, err := s.deps.Expenses.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toExpenseResponse(e))
	case http.MethodDelete:
		if err := s.deps.Expenses.Delete(r.Context(), id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}
