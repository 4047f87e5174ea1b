package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gestionale/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), core.DefaultVATRate)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateClient(t *testing.T, repo *SQLiteRepository, name string) int64 {
	t.Helper()
	id, err := repo.CreateClient(context.Background(), core.Client{Name: name})
	if err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}
	return id
}

func TestClientRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateClient(ctx, core.Client{Name: "Rossi SRL", Email: "info@rossi.it"})
	if err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}

	got, err := repo.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if got.Name != "Rossi SRL" || got.Email != "info@rossi.it" {
		t.Errorf("GetClient() = %+v", got)
	}

	clients, err := repo.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients() error = %v", err)
	}
	if len(clients) != 1 {
		t.Errorf("ListClients() returned %d clients, want 1", len(clients))
	}

	if err := repo.DeleteClient(ctx, id); err != nil {
		t.Fatalf("DeleteClient() error = %v", err)
	}
	if _, err := repo.GetClient(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetClient() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteClient(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteClient() error = %v, want ErrNotFound", err)
	}
}

func TestInvoiceRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustCreateClient(t, repo, "Bianchi")

	id, err := repo.CreateInvoice(ctx, core.Invoice{
		ClientID:  clientID,
		Amount:    1180.50,
		Status:    core.StatusSent,
		IssueDate: core.NewDate(2024, 3, 10),
		DueDate:   core.NewDate(2024, 4, 10),
	})
	if err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}

	got, err := repo.GetInvoice(ctx, id)
	if err != nil {
		t.Fatalf("GetInvoice() error = %v", err)
	}
	if got.ClientName != "Bianchi" {
		t.Errorf("ClientName = %q, want Bianchi", got.ClientName)
	}
	if got.Amount != 1180.50 {
		t.Errorf("Amount = %v, want 1180.50", got.Amount)
	}
	if !got.IssueDate.Equal(core.NewDate(2024, 3, 10)) {
		t.Errorf("IssueDate = %v", got.IssueDate)
	}
	if !got.PaidDate.IsZero() {
		t.Errorf("PaidDate = %v, want zero", got.PaidDate)
	}

	paidOn := core.NewDate(2024, 3, 20)
	if err := repo.MarkInvoicePaid(ctx, id, paidOn); err != nil {
		t.Fatalf("MarkInvoicePaid() error = %v", err)
	}
	got, _ = repo.GetInvoice(ctx, id)
	if got.Status != core.StatusPaid {
		t.Errorf("Status = %v, want paid", got.Status)
	}
	if !got.PaidDate.Equal(paidOn) {
		t.Errorf("PaidDate = %v, want %v", got.PaidDate, paidOn)
	}

	if err := repo.SetInvoiceExternalRef(ctx, id, "ledger:42"); err != nil {
		t.Fatalf("SetInvoiceExternalRef() error = %v", err)
	}
	got, _ = repo.GetInvoice(ctx, id)
	if got.ExternalRef != "ledger:42" {
		t.Errorf("ExternalRef = %q, want ledger:42", got.ExternalRef)
	}

	if err := repo.DeleteInvoice(ctx, id); err != nil {
		t.Fatalf("DeleteInvoice() error = %v", err)
	}
	if _, err := repo.GetInvoice(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInvoice() after delete error = %v, want ErrNotFound", err)
	}
}

func TestListInvoicesOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustCreateClient(t, repo, "Verdi")

	dates := []time.Time{
		core.NewDate(2024, 1, 1),
		core.NewDate(2024, 6, 1),
		core.NewDate(2024, 3, 1),
	}
	for _, d := range dates {
		if _, err := repo.CreateInvoice(ctx, core.Invoice{
			ClientID: clientID, Amount: 100, Status: core.StatusSent, IssueDate: d,
		}); err != nil {
			t.Fatalf("CreateInvoice() error = %v", err)
		}
	}

	invoices, err := repo.ListInvoices(ctx)
	if err != nil {
		t.Fatalf("ListInvoices() error = %v", err)
	}
	if len(invoices) != 3 {
		t.Fatalf("ListInvoices() returned %d, want 3", len(invoices))
	}
	for i := 1; i < len(invoices); i++ {
		if invoices[i-1].IssueDate.Before(invoices[i].IssueDate) {
			t.Errorf("invoices not ordered newest first at %d", i)
		}
	}
}

func TestMarkOverdueInvoices(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	clientID := mustCreateClient(t, repo, "Neri")

	pastDue, _ := repo.CreateInvoice(ctx, core.Invoice{
		ClientID: clientID, Amount: 100, Status: core.StatusSent,
		IssueDate: core.NewDate(2024, 1, 1), DueDate: core.NewDate(2024, 2, 1),
	})
	notDue, _ := repo.CreateInvoice(ctx, core.Invoice{
		ClientID: clientID, Amount: 100, Status: core.StatusSent,
		IssueDate: core.NewDate(2024, 1, 1), DueDate: core.NewDate(2024, 12, 1),
	})
	noDueDate, _ := repo.CreateInvoice(ctx, core.Invoice{
		ClientID: clientID, Amount: 100, Status: core.StatusSent,
		IssueDate: core.NewDate(2024, 1, 1),
	})
	alreadyPaid, _ := repo.CreateInvoice(ctx, core.Invoice{
		ClientID: clientID, Amount: 100, Status: core.StatusPaid,
		IssueDate: core.NewDate(2024, 1, 1), DueDate: core.NewDate(2024, 2, 1),
		PaidDate: core.NewDate(2024, 1, 20),
	})

	n, err := repo.MarkOverdueInvoices(ctx, core.NewDate(2024, 6, 15))
	if err != nil {
		t.Fatalf("MarkOverdueInvoices() error = %v", err)
	}
	if n != 1 {
		t.Errorf("MarkOverdueInvoices() = %d, want 1", n)
	}

	wantStatus := map[int64]core.InvoiceStatus{
		pastDue:     core.StatusOverdue,
		notDue:      core.StatusSent,
		noDueDate:   core.StatusSent,
		alreadyPaid: core.StatusPaid,
	}
	for id, want := range wantStatus {
		inv, err := repo.GetInvoice(ctx, id)
		if err != nil {
			t.Fatalf("GetInvoice(%d) error = %v", id, err)
		}
		if inv.Status != want {
			t.Errorf("invoice %d status = %v, want %v", id, inv.Status, want)
		}
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateExpense(ctx, core.Expense{
		Description:  "office rent",
		Amount:       850,
		Category:     core.CategoryRent,
		Date:         core.NewDate(2024, 1, 1),
		HasVAT:       true,
		IsRecurring:  true,
		RecurringDay: 1,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	got, err := repo.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Description != "office rent" || got.Amount != 850 || got.Category != core.CategoryRent {
		t.Errorf("GetExpense() = %+v", got)
	}
	if !got.HasVAT || !got.IsRecurring || got.RecurringDay != 1 {
		t.Errorf("flags not preserved: %+v", got)
	}

	expenses, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("ListExpenses() returned %d, want 1", len(expenses))
	}

	if err := repo.DeleteExpense(ctx, id); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if _, err := repo.GetExpense(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExpense() after delete error = %v, want ErrNotFound", err)
	}
}

func TestVATRateSetting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rate, err := repo.GetVATRate(ctx)
	if err != nil {
		t.Fatalf("GetVATRate() error = %v", err)
	}
	if rate != core.DefaultVATRate {
		t.Errorf("default VAT rate = %v, want %v", rate, core.DefaultVATRate)
	}

	if err := repo.SetVATRate(ctx, 22); err != nil {
		t.Fatalf("SetVATRate() error = %v", err)
	}
	rate, err = repo.GetVATRate(ctx)
	if err != nil {
		t.Fatalf("GetVATRate() after set error = %v", err)
	}
	if rate != 22 {
		t.Errorf("GetVATRate() = %v, want 22", rate)
	}
}

func TestVATRateConfiguredDefault(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), 22)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	// The configured rate applies until one is stored explicitly.
	rate, err := repo.GetVATRate(ctx)
	if err != nil {
		t.Fatalf("GetVATRate() error = %v", err)
	}
	if rate != 22 {
		t.Errorf("configured default VAT rate = %v, want 22", rate)
	}

	if err := repo.SetVATRate(ctx, 10); err != nil {
		t.Fatalf("SetVATRate() error = %v", err)
	}
	rate, _ = repo.GetVATRate(ctx)
	if rate != 10 {
		t.Errorf("stored VAT rate = %v, want 10 (stored value wins over config)", rate)
	}
}
