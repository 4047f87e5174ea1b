package report

import (
	"sort"

	"gestionale/internal/core"
)

type (
	// Bucket holds count/total/paid figures for one grouping key.
	Bucket struct {
		Count     int     `json:"count"`
		Total     float64 `json:"total"`
		PaidTotal float64 `json:"paid_total"`
	}

	MonthBucket struct {
		Month int `json:"month"` // 1-12
		Bucket
	}

	YearBucket struct {
		Year int `json:"year"`
		Bucket
	}

	ClientBucket struct {
		ClientID   int64  `json:"client_id"`
		ClientName string `json:"client_name"`
		Bucket
	}
)

func (b *Bucket) add(inv core.Invoice) {
	b.Count++
	b.Total += inv.Amount
	if inv.Status == core.StatusPaid {
		b.PaidTotal += inv.Amount
	}
}

// MonthlyBreakdown groups invoices by issue month into twelve fixed calendar
// buckets (January through December), independent of year. Months with no
// invoices are present with zero values, so the twelve totals always sum to
// the total of the input set.
func MonthlyBreakdown(invoices []core.Invoice) []MonthBucket {
	out := make([]MonthBucket, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, inv := range invoices {
		m := int(inv.IssueDate.Month())
		if m < 1 || m > 12 {
			continue
		}
		out[m-1].add(inv)
	}
	return out
}

// YearBreakdown groups invoices by issue year, sorted ascending. Callers pass
// the full unfiltered invoice set here: year totals intentionally ignore any
// active filter so they can serve as an all-years reference.
func YearBreakdown(invoices []core.Invoice) []YearBucket {
	byYear := make(map[int]*YearBucket)
	for _, inv := range invoices {
		y := inv.IssueDate.Year()
		b, ok := byYear[y]
		if !ok {
			b = &YearBucket{Year: y}
			byYear[y] = b
		}
		b.add(inv)
	}
	out := make([]YearBucket, 0, len(byYear))
	for _, b := range byYear {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ClientBreakdown groups invoices per client, sorted descending by total.
// Clients with no matching invoices never appear. The sort is stable, so ties
// keep the order clients first appeared in the input.
func ClientBreakdown(invoices []core.Invoice) []ClientBucket {
	index := make(map[int64]int)
	var out []ClientBucket
	for _, inv := range invoices {
		i, ok := index[inv.ClientID]
		if !ok {
			i = len(out)
			index[inv.ClientID] = i
			out = append(out, ClientBucket{ClientID: inv.ClientID, ClientName: inv.ClientName})
		}
		out[i].add(inv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// StrongestMonths returns the up-to-three months with the highest totals,
// descending. Only months with a total of exactly zero are excluded;
// negative totals (credit notes outweighing revenue) still rank.
func StrongestMonths(invoices []core.Invoice) []MonthBucket {
	months := MonthlyBreakdown(invoices)
	out := make([]MonthBucket, 0, 12)
	for _, m := range months {
		if m.Total != 0 {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// TopClients ranks clients by paid revenue only, truncated to limit. Ranking
// is stable: increasing the limit extends the list without reordering the
// existing prefix. A non-positive limit yields an empty result.
func TopClients(invoices []core.Invoice, limit int) []ClientBucket {
	if limit <= 0 {
		return nil
	}
	paid := make([]core.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status == core.StatusPaid {
			paid = append(paid, inv)
		}
	}
	ranked := ClientBreakdown(paid)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// StatusDistribution counts invoices per known status. Statuses with zero
// occurrences are omitted, and unknown status values are dropped entirely:
// they still count toward gross totals elsewhere but never appear in a named
// bucket.
func StatusDistribution(invoices []core.Invoice) map[core.InvoiceStatus]int {
	out := make(map[core.InvoiceStatus]int)
	for _, inv := range invoices {
		if !inv.Status.Valid() {
			continue
		}
		out[inv.Status]++
	}
	return out
}

// PaidInPeriod sums the amounts of paid invoices whose paid date falls in the
// given year (and month, when non-zero). Paid invoices missing a paid date
// are excluded here by policy: the row is not counted toward any period until
// the date is backfilled, though it still appears in status counts and gross
// totals.
func PaidInPeriod(invoices []core.Invoice, year, month int) float64 {
	var total float64
	for _, inv := range invoices {
		if inv.Status != core.StatusPaid || inv.PaidDate.IsZero() {
			continue
		}
		if year != 0 && inv.PaidDate.Year() != year {
			continue
		}
		if month != 0 && int(inv.PaidDate.Month()) != month {
			continue
		}
		total += inv.Amount
	}
	return total
}
