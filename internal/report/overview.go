package report

import "gestionale/internal/core"

// Overview is the full report produced for one filter: revenue and VAT
// figures over the filtered invoices, the annualized expense summary, and
// every grouped breakdown the dashboard consumes.
//
// YearTotals is the one deliberate exception to the filter: it is always
// computed over the complete invoice set so the UI can show all years for
// reference next to a filtered view.
type Overview struct {
	InvoiceCount int     `json:"invoice_count"`
	Revenue      float64 `json:"revenue"`       // gross, filtered set
	RevenuePaid  float64 `json:"revenue_paid"`  // gross, paid invoices in the filtered set
	RevenueNet   float64 `json:"revenue_net"`   // Revenue with VAT stripped
	VATCollected float64 `json:"vat_collected"` // VAT portion of RevenuePaid
	NetProfit    float64 `json:"net_profit"`    // paid net revenue minus expenses before VAT

	Expenses ExpenseSummary `json:"expenses"`

	Monthly         []MonthBucket              `json:"monthly"`
	YearTotals      []YearBucket               `json:"year_totals"`
	Clients         []ClientBucket             `json:"clients"`
	StrongestMonths []MonthBucket              `json:"strongest_months"`
	TopClients      []ClientBucket             `json:"top_clients"`
	StatusCounts    map[core.InvoiceStatus]int `json:"status_counts"`
}

// DefaultTopClientsLimit is used when the caller does not choose one of the
// supported limits (5/10/20).
const DefaultTopClientsLimit = 5

// Build assembles the complete overview. invoices and expenses are immutable
// snapshots of the full data set; the filter is applied internally so the
// year breakdown can keep using the unfiltered invoices.
func Build(invoices []core.Invoice, expenses []core.Expense, f InvoiceFilter, ratePercent float64, topLimit int) Overview {
	if topLimit <= 0 {
		topLimit = DefaultTopClientsLimit
	}
	filtered := f.Apply(invoices)

	var revenue, revenuePaid float64
	for _, inv := range filtered {
		revenue += inv.Amount
		if inv.Status == core.StatusPaid {
			revenuePaid += inv.Amount
		}
	}

	// VAT stripping happens on the aggregated sums, not per line. With one
	// tenant-wide rate the two are numerically equivalent.
	expenseSummary := SummarizeExpenses(expenses, ratePercent, f.Year)

	return Overview{
		InvoiceCount:    len(filtered),
		Revenue:         revenue,
		RevenuePaid:     revenuePaid,
		RevenueNet:      StripVAT(revenue, ratePercent),
		VATCollected:    VATPortion(revenuePaid, ratePercent),
		NetProfit:       StripVAT(revenuePaid, ratePercent) - expenseSummary.BeforeVAT,
		Expenses:        expenseSummary,
		Monthly:         MonthlyBreakdown(filtered),
		YearTotals:      YearBreakdown(invoices),
		Clients:         ClientBreakdown(filtered),
		StrongestMonths: StrongestMonths(filtered),
		TopClients:      TopClients(filtered, topLimit),
		StatusCounts:    StatusDistribution(filtered),
	}
}
