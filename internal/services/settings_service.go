package services

import (
	"context"
	"fmt"

	"gestionale/internal/core"
)

// SettingsStore reads and writes tenant settings.
type SettingsStore interface {
	GetVATRate(ctx context.Context) (float64, error)
	SetVATRate(ctx context.Context, rate float64) error
}

// SettingsService exposes the tenant-wide VAT rate. Changing it invalidates
// every cached report.
type SettingsService struct {
	store   SettingsStore
	reports *ReportService
}

func NewSettingsService(store SettingsStore, reports *ReportService) *SettingsService {
	return &SettingsService{store: store, reports: reports}
}

func (s *SettingsService) VATRate(ctx context.Context) (float64, error) {
	return s.store.GetVATRate(ctx)
}

func (s *SettingsService) SetVATRate(ctx context.Context, rate float64) error {
	if rate < 0 || rate > 100 {
		return fmt.Errorf("%w: rate must be between 0 and 100", core.ErrInvalidAmount)
	}
	if err := s.store.SetVATRate(ctx, rate); err != nil {
		return fmt.Errorf("set vat rate: %w", err)
	}

	s.reports.Invalidate(ctx)
	return nil
}
