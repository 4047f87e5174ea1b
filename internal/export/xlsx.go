package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"gestionale/internal/report"
)

// BuildOverviewXLSX renders a financial overview workbook with a summary
// sheet, a monthly sheet and a clients sheet.
func BuildOverviewXLSX(ov report.Overview, year, month int) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	monthlySheet := "monthly"
	clientsSheet := "clients"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(monthlySheet)
	f.NewSheet(clientsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Financial Overview")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", periodLabel(year, month))
	_ = f.SetCellValue(summarySheet, "A4", "Invoices")
	_ = f.SetCellValue(summarySheet, "B4", ov.InvoiceCount)
	_ = f.SetCellValue(summarySheet, "A5", "Revenue (gross)")
	_ = f.SetCellValue(summarySheet, "B5", ov.Revenue)
	_ = f.SetCellValue(summarySheet, "A6", "Revenue (paid)")
	_ = f.SetCellValue(summarySheet, "B6", ov.RevenuePaid)
	_ = f.SetCellValue(summarySheet, "A7", "Revenue (net)")
	_ = f.SetCellValue(summarySheet, "B7", ov.RevenueNet)
	_ = f.SetCellValue(summarySheet, "A8", "VAT collected")
	_ = f.SetCellValue(summarySheet, "B8", ov.VATCollected)
	_ = f.SetCellValue(summarySheet, "A9", "Expenses (annualized)")
	_ = f.SetCellValue(summarySheet, "B9", ov.Expenses.Total)
	_ = f.SetCellValue(summarySheet, "A10", "VAT recoverable")
	_ = f.SetCellValue(summarySheet, "B10", ov.Expenses.VATRecoverable)
	_ = f.SetCellValue(summarySheet, "A11", "Net profit")
	_ = f.SetCellValue(summarySheet, "B11", ov.NetProfit)

	_ = f.SetCellValue(monthlySheet, "A1", "Month")
	_ = f.SetCellValue(monthlySheet, "B1", "Invoices")
	_ = f.SetCellValue(monthlySheet, "C1", "Total")
	_ = f.SetCellValue(monthlySheet, "D1", "Paid")
	for i, m := range ov.Monthly {
		row := i + 2
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("A%d", row), time.Month(m.Month).String())
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("B%d", row), m.Count)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("C%d", row), m.Total)
		_ = f.SetCellValue(monthlySheet, fmt.Sprintf("D%d", row), m.PaidTotal)
	}

	_ = f.SetCellValue(clientsSheet, "A1", "Client")
	_ = f.SetCellValue(clientsSheet, "B1", "Invoices")
	_ = f.SetCellValue(clientsSheet, "C1", "Total")
	for i, c := range ov.Clients {
		row := i + 2
		_ = f.SetCellValue(clientsSheet, fmt.Sprintf("A%d", row), c.ClientName)
		_ = f.SetCellValue(clientsSheet, fmt.Sprintf("B%d", row), c.Count)
		_ = f.SetCellValue(clientsSheet, fmt.Sprintf("C%d", row), c.Total)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
