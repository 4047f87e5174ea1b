package services

import (
	"context"
	"fmt"

	"gestionale/internal/core"
)

// ExpenseStore is the storage surface expense operations need.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
}

// ExpenseService handles expense CRUD and keeps the report cache honest.
type ExpenseService struct {
	store   ExpenseStore
	reports *ReportService
}

func NewExpenseService(store ExpenseStore, reports *ReportService) *ExpenseService {
	return &ExpenseService{store: store, reports: reports}
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	s.reports.Invalidate(ctx)
	return id, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.reports.Invalidate(ctx)
	return nil
}
