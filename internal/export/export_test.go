package export

import (
	"bytes"
	"testing"

	"gestionale/internal/core"
	"gestionale/internal/report"
)

func sampleOverview() report.Overview {
	invoices := []core.Invoice{
		{ID: 1, ClientID: 1, ClientName: "Alfa", Amount: 1000, Status: core.StatusPaid, IssueDate: core.NewDate(2024, 2, 1), PaidDate: core.NewDate(2024, 2, 10)},
		{ID: 2, ClientID: 2, ClientName: "Beta", Amount: 500, Status: core.StatusSent, IssueDate: core.NewDate(2024, 4, 1)},
	}
	expenses := []core.Expense{
		{Amount: 100, HasVAT: true, Date: core.NewDate(2024, 1, 1), Category: core.CategoryOffice},
	}
	return report.Build(invoices, expenses, report.InvoiceFilter{Year: 2024}, 18, 5)
}

func TestBuildOverviewPDF(t *testing.T) {
	data, err := BuildOverviewPDF(sampleOverview(), 2024, 0)
	if err != nil {
		t.Fatalf("BuildOverviewPDF() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("BuildOverviewPDF() returned empty document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with PDF header: %q", data[:8])
	}
}

func TestBuildOverviewXLSX(t *testing.T) {
	data, err := BuildOverviewXLSX(sampleOverview(), 2024, 0)
	if err != nil {
		t.Fatalf("BuildOverviewXLSX() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("BuildOverviewXLSX() returned empty document")
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("output does not start with zip header: %q", data[:4])
	}
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		year, month int
		want        string
	}{
		{0, 0, "All time"},
		{2024, 0, "2024"},
		{2024, 3, "2024-03"},
	}
	for _, tt := range tests {
		if got := periodLabel(tt.year, tt.month); got != tt.want {
			t.Errorf("periodLabel(%d, %d) = %q, want %q", tt.year, tt.month, got, tt.want)
		}
	}
}
