package services

import (
	"context"
	"fmt"

	"gestionale/internal/core"
)

// ClientStore is the storage surface client operations need.
type ClientStore interface {
	CreateClient(ctx context.Context, c core.Client) (int64, error)
	GetClient(ctx context.Context, id int64) (core.Client, error)
	ListClients(ctx context.Context) ([]core.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

type ClientService struct {
	store   ClientStore
	reports *ReportService
}

func NewClientService(store ClientStore, reports *ReportService) *ClientService {
	return &ClientService{store: store, reports: reports}
}

func (s *ClientService) Create(ctx context.Context, c core.Client) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateClient(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}

	s.reports.Invalidate(ctx)
	return id, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (core.Client, error) {
	return s.store.GetClient(ctx, id)
}

func (s *ClientService) List(ctx context.Context) ([]core.Client, error) {
	return s.store.ListClients(ctx)
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.reports.Invalidate(ctx)
	return nil
}
