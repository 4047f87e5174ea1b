package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gestionale/internal/amqp"
	"gestionale/internal/observability/metrics"
)

// OverdueStore flips sent invoices past their due date to overdue.
type OverdueStore interface {
	MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int64, error)
}

// OverdueProcessor periodically marks overdue invoices and, on the first run
// of each month, queues an export of the previous month's report.
type OverdueProcessor struct {
	store     OverdueStore
	reports   *ReportService
	publisher TaskPublisher

	lastExportedMonth time.Time
}

func NewOverdueProcessor(store OverdueStore, reports *ReportService, publisher TaskPublisher) *OverdueProcessor {
	return &OverdueProcessor{
		store:     store,
		reports:   reports,
		publisher: publisher,
	}
}

// ProcessOverdue runs one marking pass and returns the number of invoices
// flipped to overdue.
func (p *OverdueProcessor) ProcessOverdue(ctx context.Context, now time.Time) (int64, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	n, err := p.store.MarkOverdueInvoices(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}

	if n > 0 {
		metrics.AddOverdueMarked(n)
		if p.reports != nil {
			p.reports.Invalidate(ctx)
		}
		slog.InfoContext(ctx, "Marked invoices overdue",
			"count", n,
			"as_of", now.Format("2006-01-02"))
	}

	p.maybeScheduleMonthlyExport(ctx, now)
	return n, nil
}

// maybeScheduleMonthlyExport queues one PDF export of the closed month. The
// guard keeps it to a single publish per month per process.
func (p *OverdueProcessor) maybeScheduleMonthlyExport(ctx context.Context, now time.Time) {
	if p.publisher == nil {
		return
	}

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !p.lastExportedMonth.IsZero() && !currentMonth.After(p.lastExportedMonth) {
		return
	}

	prev := currentMonth.AddDate(0, -1, 0)
	msg := amqp.NewReportExportMessage("pdf", prev.Year(), int(prev.Month()))
	if err := p.publisher.PublishTask(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to queue monthly export",
			"year", prev.Year(), "month", int(prev.Month()), "error", err)
		return
	}

	p.lastExportedMonth = currentMonth
	slog.InfoContext(ctx, "Queued monthly report export",
		"year", prev.Year(), "month", int(prev.Month()))
}

// Run processes on a fixed interval until the context is cancelled.
func (p *OverdueProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Immediate first pass so a restart never waits a full interval.
	if _, err := p.ProcessOverdue(ctx, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "Overdue processing failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessOverdue(ctx, time.Now().UTC()); err != nil {
				slog.ErrorContext(ctx, "Overdue processing failed", "error", err)
			}
		}
	}
}
