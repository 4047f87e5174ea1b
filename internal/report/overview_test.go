package report

import (
	"testing"

	"gestionale/internal/core"
)

func TestBuildOverview(t *testing.T) {
	invoices := []core.Invoice{
		{ID: 1, ClientID: 1, ClientName: "Alfa", Amount: 1000, Status: core.StatusPaid, IssueDate: core.NewDate(2024, 2, 1), PaidDate: core.NewDate(2024, 2, 10)},
		{ID: 2, ClientID: 2, ClientName: "Beta", Amount: 500, Status: core.StatusSent, IssueDate: core.NewDate(2024, 4, 1)},
	}
	expenses := []core.Expense{
		{Amount: 100, HasVAT: true, Date: core.NewDate(2024, 1, 1), Category: core.CategoryOffice},
	}

	ov := Build(invoices, expenses, InvoiceFilter{}, 18, 0)

	if ov.InvoiceCount != 2 {
		t.Errorf("InvoiceCount = %d, want 2", ov.InvoiceCount)
	}
	if ov.Revenue != 1500 {
		t.Errorf("Revenue = %v, want 1500", ov.Revenue)
	}
	if ov.RevenuePaid != 1000 {
		t.Errorf("RevenuePaid = %v, want 1000", ov.RevenuePaid)
	}
	// 1000 gross at 18% leaves 847.46 net.
	if !almostEqual(StripVAT(ov.RevenuePaid, 18), 847.46) {
		t.Errorf("net of paid revenue = %v, want ~847.46", StripVAT(ov.RevenuePaid, 18))
	}
	if !almostEqual(ov.VATCollected, 152.54) {
		t.Errorf("VATCollected = %v, want ~152.54", ov.VATCollected)
	}
	wantProfit := StripVAT(1000, 18) - StripVAT(100, 18)
	if !almostEqual(ov.NetProfit, wantProfit) {
		t.Errorf("NetProfit = %v, want %v", ov.NetProfit, wantProfit)
	}
	if len(ov.Monthly) != 12 {
		t.Errorf("Monthly has %d buckets, want 12", len(ov.Monthly))
	}
	if len(ov.TopClients) != 1 || ov.TopClients[0].ClientID != 1 {
		t.Errorf("TopClients = %+v, want single paid client 1", ov.TopClients)
	}
	if ov.StatusCounts[core.StatusPaid] != 1 || ov.StatusCounts[core.StatusSent] != 1 {
		t.Errorf("StatusCounts = %v", ov.StatusCounts)
	}
}

func TestBuildAppliesFilter(t *testing.T) {
	invoices := sampleInvoices()

	ov := Build(invoices, nil, InvoiceFilter{Year: 2024, Status: core.StatusPaid}, 18, 0)

	if ov.InvoiceCount != 1 {
		t.Fatalf("InvoiceCount = %d, want 1", ov.InvoiceCount)
	}
	if ov.Revenue != 1000 {
		t.Errorf("Revenue = %v, want 1000", ov.Revenue)
	}
	// Monthly buckets reflect the filtered rows only.
	if ov.Monthly[2].Total != 1000 {
		t.Errorf("march total = %v, want 1000", ov.Monthly[2].Total)
	}
	// Year totals keep covering the whole set.
	if len(ov.YearTotals) != 2 {
		t.Errorf("YearTotals has %d entries, want 2", len(ov.YearTotals))
	}
}

func TestBuildDefaultTopClientsLimit(t *testing.T) {
	ov := Build(sampleInvoices(), nil, InvoiceFilter{}, 18, 0)
	if len(ov.TopClients) > DefaultTopClientsLimit {
		t.Errorf("TopClients has %d entries, default limit is %d", len(ov.TopClients), DefaultTopClientsLimit)
	}
}

func TestBuildEmptyDataSet(t *testing.T) {
	ov := Build(nil, nil, InvoiceFilter{}, 18, 0)
	if ov.InvoiceCount != 0 || ov.Revenue != 0 || ov.NetProfit != 0 {
		t.Errorf("empty data set should yield zero figures, got %+v", ov)
	}
	if len(ov.Monthly) != 12 {
		t.Errorf("Monthly has %d buckets, want 12 even with no data", len(ov.Monthly))
	}
	if len(ov.YearTotals) != 0 {
		t.Errorf("YearTotals should be empty, got %d entries", len(ov.YearTotals))
	}
}
