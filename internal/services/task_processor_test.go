package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gestionale/internal/amqp"
	"gestionale/internal/core"
)

func TestTaskProcessorExportPDF(t *testing.T) {
	store := newFakeStore()
	store.invoices = []core.Invoice{
		{ID: 1, ClientID: 1, ClientName: "Alfa", Amount: 1000, Status: core.StatusPaid,
			IssueDate: core.NewDate(2024, 2, 1), PaidDate: core.NewDate(2024, 2, 10)},
	}
	dir := t.TempDir()
	p := NewTaskProcessor(store, newTestReportService(store), nil, dir, 0)

	msg := amqp.NewReportExportMessage("pdf", 2024, 2)
	if err := p.HandleTask(context.Background(), msg); err != nil {
		t.Fatalf("HandleTask() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("export dir has %d files, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "overview_2024-02_") || !strings.HasSuffix(name, ".pdf") {
		t.Errorf("export file name = %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("export file is not a PDF")
	}
}

func TestTaskProcessorExportXLSX(t *testing.T) {
	store := newFakeStore()
	dir := t.TempDir()
	p := NewTaskProcessor(store, newTestReportService(store), nil, dir, 0)

	if err := p.HandleTask(context.Background(), amqp.NewReportExportMessage("xlsx", 2024, 0)); err != nil {
		t.Fatalf("HandleTask() error = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".xlsx") {
		t.Errorf("expected one .xlsx file, got %v", entries)
	}
}

func TestTaskProcessorUnknownKindDropped(t *testing.T) {
	store := newFakeStore()
	p := NewTaskProcessor(store, newTestReportService(store), nil, t.TempDir(), 0)

	msg := &amqp.TaskMessage{Kind: "mystery"}
	if err := p.HandleTask(context.Background(), msg); err != nil {
		t.Errorf("unknown kind should be dropped without error, got %v", err)
	}
}

func TestTaskProcessorInvoiceSync(t *testing.T) {
	store := newFakeStore()
	store.invoices = []core.Invoice{
		{ID: 7, ClientID: 1, ClientName: "Alfa", Amount: 500, Status: core.StatusPaid,
			IssueDate: core.NewDate(2024, 1, 1), PaidDate: core.NewDate(2024, 1, 15)},
	}
	mirror := &fakeLedger{}
	p := NewTaskProcessor(store, newTestReportService(store), mirror, t.TempDir(), 0)

	if err := p.HandleTask(context.Background(), amqp.NewInvoiceSyncMessage(7)); err != nil {
		t.Fatalf("HandleTask() error = %v", err)
	}
	if len(mirror.appended) != 1 || mirror.appended[0].ID != 7 {
		t.Errorf("ledger appended = %+v, want invoice 7", mirror.appended)
	}
	if store.externalRefs[7] == "" {
		t.Error("external ref not stored back on the invoice")
	}
}

func TestTaskProcessorInvoiceSyncLedgerFailureRequeues(t *testing.T) {
	store := newFakeStore()
	store.invoices = []core.Invoice{
		{ID: 7, ClientID: 1, Amount: 500, Status: core.StatusSent, IssueDate: core.NewDate(2024, 1, 1)},
	}
	mirror := &fakeLedger{failWith: errors.New("quota exceeded")}
	p := NewTaskProcessor(store, newTestReportService(store), mirror, t.TempDir(), 0)

	if err := p.HandleTask(context.Background(), amqp.NewInvoiceSyncMessage(7)); err == nil {
		t.Error("ledger failure should return an error so the task is requeued")
	}
}

func TestTaskProcessorLedgerFailureBacksOff(t *testing.T) {
	store := newFakeStore()
	store.invoices = []core.Invoice{
		{ID: 7, ClientID: 1, Amount: 500, Status: core.StatusSent, IssueDate: core.NewDate(2024, 1, 1)},
	}
	mirror := &fakeLedger{failWith: errors.New("quota exceeded")}
	delay := 30 * time.Millisecond
	p := NewTaskProcessor(store, newTestReportService(store), mirror, t.TempDir(), delay)

	started := time.Now()
	if err := p.HandleTask(context.Background(), amqp.NewInvoiceSyncMessage(7)); err == nil {
		t.Fatal("ledger failure should return an error so the task is requeued")
	}
	if elapsed := time.Since(started); elapsed < delay {
		t.Errorf("requeue happened after %v, want at least %v of backoff", elapsed, delay)
	}

	// A cancelled context skips the wait.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	started = time.Now()
	if err := p.HandleTask(ctx, amqp.NewInvoiceSyncMessage(7)); err == nil {
		t.Fatal("ledger failure should still return an error")
	}
	if elapsed := time.Since(started); elapsed >= delay {
		t.Errorf("cancelled context waited %v, want an immediate return", elapsed)
	}
}

func TestTaskProcessorInvoiceSyncMissingInvoiceDropped(t *testing.T) {
	store := newFakeStore()
	mirror := &fakeLedger{}
	p := NewTaskProcessor(store, newTestReportService(store), mirror, t.TempDir(), 0)

	if err := p.HandleTask(context.Background(), amqp.NewInvoiceSyncMessage(999)); err != nil {
		t.Errorf("missing invoice should be dropped without error, got %v", err)
	}
	if len(mirror.appended) != 0 {
		t.Error("nothing should reach the ledger for a missing invoice")
	}
}

func TestOverdueProcessorMarksInvoices(t *testing.T) {
	store := newFakeStore()
	store.overdueMarked = 3
	reports := newTestReportService(store)
	p := NewOverdueProcessor(store, reports, nil)

	n, err := p.ProcessOverdue(context.Background(), time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ProcessOverdue() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ProcessOverdue() = %d, want 3", n)
	}
}

func TestOverdueProcessorSchedulesMonthlyExportOnce(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	p := NewOverdueProcessor(store, newTestReportService(store), publisher)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := p.ProcessOverdue(ctx, now.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("ProcessOverdue() error = %v", err)
		}
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d export tasks, want 1 per month", len(publisher.published))
	}
	msg := publisher.published[0]
	if msg.Kind != amqp.KindReportExport || msg.Year != 2024 || msg.Month != 5 {
		t.Errorf("export task = %+v, want May 2024 export", msg)
	}

	// Next month queues the next export.
	if _, err := p.ProcessOverdue(ctx, time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("ProcessOverdue() error = %v", err)
	}
	if len(publisher.published) != 2 {
		t.Errorf("published %d export tasks after month rollover, want 2", len(publisher.published))
	}
	if publisher.published[1].Month != 6 {
		t.Errorf("second export month = %d, want 6", publisher.published[1].Month)
	}
}
