// Package services orchestrates the domain operations across storage, the
// report engine, AMQP and the external ledger.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gestionale/internal/cache"
	"gestionale/internal/core"
	"gestionale/internal/observability/metrics"
	"gestionale/internal/report"
)

// ReportStore is the snapshot source for report building.
type ReportStore interface {
	ListInvoices(ctx context.Context) ([]core.Invoice, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	GetVATRate(ctx context.Context) (float64, error)
}

// ReportService builds report overviews from storage snapshots and caches
// them per filter. The cache is an optimization only; every write path calls
// Invalidate so a stale overview never outlives a data change.
type ReportService struct {
	store ReportStore
	cache *cache.LRUCache[report.Overview]
}

func NewReportService(store ReportStore, maxEntries int, ttl time.Duration) *ReportService {
	return &ReportService{
		store: store,
		cache: cache.NewLRUCache[report.Overview](maxEntries, ttl),
	}
}

// Cache exposes the underlying cache for cleanup registration.
func (s *ReportService) Cache() *cache.LRUCache[report.Overview] {
	return s.cache
}

func cacheKey(f report.InvoiceFilter, topLimit int) string {
	return fmt.Sprintf("%s|%d|%d|%d|%d|%d|%d",
		f.Status, f.Year, f.Month, f.ClientID,
		f.DateFrom.Unix(), f.DateTo.Unix(), topLimit)
}

// Overview returns the full report for one filter, from cache when possible.
func (s *ReportService) Overview(ctx context.Context, f report.InvoiceFilter, topLimit int) (report.Overview, error) {
	key := cacheKey(f, topLimit)
	if ov, ok := s.cache.Get(key); ok {
		metrics.IncReportCacheEvent(metrics.CacheHit)
		return ov, nil
	}
	metrics.IncReportCacheEvent(metrics.CacheMiss)

	started := time.Now()
	ov, err := s.build(ctx, f, topLimit)
	if err != nil {
		metrics.ObserveReportBuild(metrics.ResultError, time.Since(started))
		return report.Overview{}, err
	}
	metrics.ObserveReportBuild(metrics.ResultSuccess, time.Since(started))

	s.cache.Set(key, ov)
	return ov, nil
}

func (s *ReportService) build(ctx context.Context, f report.InvoiceFilter, topLimit int) (report.Overview, error) {
	var (
		invoices []core.Invoice
		expenses []core.Expense
		rate     float64
	)

	// The three snapshot reads are independent, fetch them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if invoices, err = s.store.ListInvoices(gctx); err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if expenses, err = s.store.ListExpenses(gctx); err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rate, err = s.store.GetVATRate(gctx); err != nil {
			return fmt.Errorf("get vat rate: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Overview{}, err
	}

	return report.Build(invoices, expenses, f, rate, topLimit), nil
}

// ExpenseReport is the expense-focused report: the annualized summary plus
// per-category totals for one year (0 = all years).
type ExpenseReport struct {
	Year       int                              `json:"year,omitempty"`
	Summary    report.ExpenseSummary            `json:"summary"`
	ByCategory map[core.ExpenseCategory]float64 `json:"by_category"`
}

// Expenses builds the expense report. Cheap enough to skip the cache.
func (s *ReportService) Expenses(ctx context.Context, year int) (ExpenseReport, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("list expenses: %w", err)
	}
	rate, err := s.store.GetVATRate(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("get vat rate: %w", err)
	}
	return ExpenseReport{
		Year:       year,
		Summary:    report.SummarizeExpenses(expenses, rate, year),
		ByCategory: report.CategoryBreakdown(expenses, year),
	}, nil
}

// Invalidate drops every cached overview. Called after any data change.
func (s *ReportService) Invalidate(ctx context.Context) {
	s.cache.Clear()
	metrics.IncReportCacheEvent(metrics.CacheInvalidate)
	slog.DebugContext(ctx, "Report cache invalidated")
}
