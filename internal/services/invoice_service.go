package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gestionale/internal/amqp"
	"gestionale/internal/core"
)

// InvoiceStore is the storage surface invoice operations need.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv core.Invoice) (int64, error)
	GetInvoice(ctx context.Context, id int64) (core.Invoice, error)
	ListInvoices(ctx context.Context) ([]core.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id int64, status core.InvoiceStatus) error
	MarkInvoicePaid(ctx context.Context, id int64, paidDate time.Time) error
	DeleteInvoice(ctx context.Context, id int64) error
}

// TaskPublisher publishes work items for the report worker.
type TaskPublisher interface {
	PublishTask(ctx context.Context, msg *amqp.TaskMessage) error
}

// InvoiceService orchestrates invoice writes: SQLite first, then a
// best-effort ledger sync message, then cache invalidation.
type InvoiceService struct {
	store     InvoiceStore
	reports   *ReportService
	publisher TaskPublisher
}

func NewInvoiceService(store InvoiceStore, reports *ReportService, publisher TaskPublisher) *InvoiceService {
	return &InvoiceService{
		store:     store,
		reports:   reports,
		publisher: publisher,
	}
}

// Create validates and saves an invoice, then queues a ledger sync. A failed
// publish never fails the request; the invoice is already durable.
func (s *InvoiceService) Create(ctx context.Context, inv core.Invoice) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateInvoice(ctx, inv)
	if err != nil {
		return 0, fmt.Errorf("create invoice: %w", err)
	}

	s.publishSync(ctx, id)
	s.reports.Invalidate(ctx)
	return id, nil
}

func (s *InvoiceService) Get(ctx context.Context, id int64) (core.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context) ([]core.Invoice, error) {
	return s.store.ListInvoices(ctx)
}

// MarkPaid flips an invoice to paid with the given payment date.
func (s *InvoiceService) MarkPaid(ctx context.Context, id int64, paidDate time.Time) error {
	if paidDate.IsZero() {
		return core.ErrInvalidDate
	}
	if err := s.store.MarkInvoicePaid(ctx, id, paidDate); err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}

	s.publishSync(ctx, id)
	s.reports.Invalidate(ctx)
	return nil
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, id int64, status core.InvoiceStatus) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}
	if err := s.store.UpdateInvoiceStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}

	s.publishSync(ctx, id)
	s.reports.Invalidate(ctx)
	return nil
}

func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	s.reports.Invalidate(ctx)
	return nil
}

func (s *InvoiceService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTask(ctx, amqp.NewInvoiceSyncMessage(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish invoice sync message",
			"id", id, "error", err)
	}
}
