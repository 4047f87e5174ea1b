package report

import (
	"time"

	"gestionale/internal/core"
)

// InvoiceFilter is a conjunction of optional predicates over invoices.
// Zero values mean "no restriction"; active predicates combine with AND, so
// the order they are considered in never changes the result.
type InvoiceFilter struct {
	Status   core.InvoiceStatus // "" or "all" matches every status
	DateFrom time.Time          // inclusive lower bound on issue date
	DateTo   time.Time          // inclusive upper bound on issue date
	Year     int                // issue date year
	Month    int                // issue date month (1-12)
	ClientID int64              // exact client match
}

// Matches reports whether a single invoice satisfies every active predicate.
func (f InvoiceFilter) Matches(inv core.Invoice) bool {
	if f.Status != "" && f.Status != "all" && inv.Status != f.Status {
		return false
	}
	if !f.DateFrom.IsZero() && inv.IssueDate.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && inv.IssueDate.After(f.DateTo) {
		return false
	}
	if f.Year != 0 && inv.IssueDate.Year() != f.Year {
		return false
	}
	if f.Month != 0 && int(inv.IssueDate.Month()) != f.Month {
		return false
	}
	if f.ClientID != 0 && inv.ClientID != f.ClientID {
		return false
	}
	return true
}

// Apply returns the invoices satisfying the filter, preserving input order.
// The input slice is never modified.
func (f InvoiceFilter) Apply(invoices []core.Invoice) []core.Invoice {
	if f.IsZero() {
		out := make([]core.Invoice, len(invoices))
		copy(out, invoices)
		return out
	}
	out := make([]core.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out
}

// IsZero reports whether no predicate is active.
func (f InvoiceFilter) IsZero() bool {
	return (f.Status == "" || f.Status == "all") &&
		f.DateFrom.IsZero() && f.DateTo.IsZero() &&
		f.Year == 0 && f.Month == 0 && f.ClientID == 0
}
