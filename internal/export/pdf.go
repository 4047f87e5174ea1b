// Package export renders report overviews as PDF and XLSX documents.
// Rounding to whole cents happens here, at the display boundary.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"gestionale/internal/core"
	"gestionale/internal/report"
)

func periodLabel(year, month int) string {
	switch {
	case year == 0:
		return "All time"
	case month == 0:
		return fmt.Sprintf("%d", year)
	default:
		return fmt.Sprintf("%d-%02d", year, month)
	}
}

// BuildOverviewPDF renders a financial overview for one period.
func BuildOverviewPDF(ov report.Overview, year, month int) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Financial Overview")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", periodLabel(year, month)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Invoices: %d", ov.InvoiceCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Revenue (gross): %s", core.FormatEuros(ov.Revenue)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Revenue (paid): %s", core.FormatEuros(ov.RevenuePaid)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("VAT collected: %s", core.FormatEuros(ov.VATCollected)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Expenses (annualized): %s", core.FormatEuros(ov.Expenses.Total)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Net profit: %s", core.FormatEuros(ov.NetProfit)))
	pdf.Ln(8)

	// Monthly table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Invoices", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Paid", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, m := range ov.Monthly {
		pdf.CellFormat(30, 6, time.Month(m.Month).String()[:3], "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", m.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, core.FormatEuros(m.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, core.FormatEuros(m.PaidTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if len(ov.TopClients) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(90, 6, "Client", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Invoices", "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, "Paid total", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, c := range ov.TopClients {
			pdf.CellFormat(90, 6, c.ClientName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, fmt.Sprintf("%d", c.Count), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 6, core.FormatEuros(c.Total), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
