package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gestionale/internal/amqp"
	"gestionale/internal/core"
	"gestionale/internal/export"
	"gestionale/internal/ledger"
	"gestionale/internal/observability/metrics"
	"gestionale/internal/report"
)

// TaskStore is the storage surface the report worker needs.
type TaskStore interface {
	GetInvoice(ctx context.Context, id int64) (core.Invoice, error)
	SetInvoiceExternalRef(ctx context.Context, id int64, ref string) error
}

// TaskProcessor handles queued work items: report exports and invoice
// ledger mirroring. Returned errors cause a requeue, so everything here
// must be safe to retry.
type TaskProcessor struct {
	store     TaskStore
	reports   *ReportService
	ledger    ledger.Writer
	exportDir string

	// retryDelay is waited out before a failed ledger sync is requeued, so a
	// struggling ledger is not hammered with immediate redeliveries.
	retryDelay time.Duration
}

func NewTaskProcessor(store TaskStore, reports *ReportService, ledgerWriter ledger.Writer, exportDir string, retryDelay time.Duration) *TaskProcessor {
	return &TaskProcessor{
		store:      store,
		reports:    reports,
		ledger:     ledgerWriter,
		exportDir:  exportDir,
		retryDelay: retryDelay,
	}
}

// HandleTask dispatches one queued message.
func (p *TaskProcessor) HandleTask(ctx context.Context, msg *amqp.TaskMessage) error {
	switch msg.Kind {
	case amqp.KindReportExport:
		return p.handleExport(ctx, msg)
	case amqp.KindInvoiceSync:
		return p.handleInvoiceSync(ctx, msg)
	default:
		// Unknown kinds are dropped, not requeued: retrying cannot help.
		slog.WarnContext(ctx, "Dropping task with unknown kind", "kind", msg.Kind)
		return nil
	}
}

func (p *TaskProcessor) handleExport(ctx context.Context, msg *amqp.TaskMessage) error {
	started := time.Now()

	ov, err := p.reports.Overview(ctx, report.InvoiceFilter{Year: msg.Year, Month: msg.Month}, 0)
	if err != nil {
		metrics.ObserveExport(msg.Format, metrics.ResultError, time.Since(started))
		return fmt.Errorf("build overview: %w", err)
	}

	var data []byte
	switch msg.Format {
	case "xlsx":
		data, err = export.BuildOverviewXLSX(ov, msg.Year, msg.Month)
	case "pdf", "":
		data, err = export.BuildOverviewPDF(ov, msg.Year, msg.Month)
	default:
		slog.WarnContext(ctx, "Dropping export with unknown format", "format", msg.Format)
		return nil
	}
	if err != nil {
		metrics.ObserveExport(msg.Format, metrics.ResultError, time.Since(started))
		return fmt.Errorf("render %s export: %w", msg.Format, err)
	}

	path, err := p.writeExport(msg, data)
	if err != nil {
		metrics.ObserveExport(msg.Format, metrics.ResultError, time.Since(started))
		return err
	}

	metrics.ObserveExport(msg.Format, metrics.ResultSuccess, time.Since(started))
	slog.InfoContext(ctx, "Report export written",
		"path", path,
		"format", msg.Format,
		"year", msg.Year,
		"month", msg.Month)
	return nil
}

func (p *TaskProcessor) writeExport(msg *amqp.TaskMessage, data []byte) (string, error) {
	if err := os.MkdirAll(p.exportDir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	format := msg.Format
	if format == "" {
		format = "pdf"
	}
	name := fmt.Sprintf("overview_%s_%s.%s",
		exportPeriodSlug(msg.Year, msg.Month),
		time.Now().UTC().Format("20060102T150405"),
		format)
	path := filepath.Join(p.exportDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

func exportPeriodSlug(year, month int) string {
	switch {
	case year == 0:
		return "all"
	case month == 0:
		return fmt.Sprintf("%d", year)
	default:
		return fmt.Sprintf("%d-%02d", year, month)
	}
}

func (p *TaskProcessor) handleInvoiceSync(ctx context.Context, msg *amqp.TaskMessage) error {
	if p.ledger == nil {
		slog.WarnContext(ctx, "Ledger mirror not configured, dropping sync task", "invoice_id", msg.InvoiceID)
		return nil
	}

	inv, err := p.store.GetInvoice(ctx, msg.InvoiceID)
	if err != nil {
		// Deleted between publish and processing; nothing to mirror.
		slog.WarnContext(ctx, "Invoice not found for ledger sync, dropping",
			"invoice_id", msg.InvoiceID, "error", err)
		return nil
	}

	ref, err := p.ledger.AppendInvoice(ctx, inv)
	if err != nil {
		metrics.IncLedgerSync(metrics.ResultError)
		p.waitRetry(ctx)
		return fmt.Errorf("append invoice to ledger: %w", err)
	}

	if err := p.store.SetInvoiceExternalRef(ctx, inv.ID, ref); err != nil {
		metrics.IncLedgerSync(metrics.ResultError)
		return fmt.Errorf("store external ref: %w", err)
	}

	metrics.IncLedgerSync(metrics.ResultSuccess)
	slog.InfoContext(ctx, "Invoice mirrored to ledger",
		"invoice_id", inv.ID,
		"external_ref", ref)
	return nil
}

func (p *TaskProcessor) waitRetry(ctx context.Context) {
	if p.retryDelay <= 0 {
		return
	}
	select {
	case <-time.After(p.retryDelay):
	case <-ctx.Done():
	}
}
