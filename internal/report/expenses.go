package report

import "gestionale/internal/core"

// ExpenseSummary aggregates a set of expenses on an annualized basis.
// All monetary fields keep full float64 precision.
type ExpenseSummary struct {
	Total          float64 `json:"total"`
	WithVAT        float64 `json:"with_vat"`
	WithoutVAT     float64 `json:"without_vat"`
	VATRecoverable float64 `json:"vat_recoverable"`
	BeforeVAT      float64 `json:"before_vat"`
	RecurringCount int     `json:"recurring_count"`
	OneTimeCount   int     `json:"one_time_count"`
}

// AnnualizedAmount normalizes an expense to a yearly figure: a recurring
// expense is a fixed monthly charge and contributes amount*12 regardless of
// how many months of data exist; a one-time expense contributes its amount
// exactly once.
func AnnualizedAmount(e core.Expense) float64 {
	if e.IsRecurring {
		return e.Amount * 12
	}
	return e.Amount
}

// SummarizeExpenses computes the annualized expense summary for the given VAT
// rate. When year is non-zero only expenses dated in that year are considered.
//
// VAT recovery applies to the aggregated with-VAT sum rather than per line,
// which is equivalent under the single tenant-wide rate.
func SummarizeExpenses(expenses []core.Expense, ratePercent float64, year int) ExpenseSummary {
	var s ExpenseSummary
	for _, e := range expenses {
		if year != 0 && e.Date.Year() != year {
			continue
		}
		amount := AnnualizedAmount(e)
		s.Total += amount
		if e.HasVAT {
			s.WithVAT += amount
		}
		if e.IsRecurring {
			s.RecurringCount++
		} else {
			s.OneTimeCount++
		}
	}
	s.WithoutVAT = s.Total - s.WithVAT
	s.VATRecoverable = VATPortion(s.WithVAT, ratePercent)
	s.BeforeVAT = StripVAT(s.WithVAT, ratePercent) + s.WithoutVAT
	return s
}

// CategoryBreakdown sums annualized expense amounts per category over the
// given year (0 = all years). Categories with no expenses are omitted.
func CategoryBreakdown(expenses []core.Expense, year int) map[core.ExpenseCategory]float64 {
	out := make(map[core.ExpenseCategory]float64)
	for _, e := range expenses {
		if year != 0 && e.Date.Year() != year {
			continue
		}
		out[e.Category] += AnnualizedAmount(e)
	}
	return out
}
