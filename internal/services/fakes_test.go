package services

import (
	"context"
	"errors"
	"time"

	"gestionale/internal/amqp"
	"gestionale/internal/core"
)

// fakeStore backs every service interface in tests.
type fakeStore struct {
	invoices []core.Invoice
	expenses []core.Expense
	clients  []core.Client
	vatRate  float64

	listInvoiceCalls int
	nextID           int64
	statusUpdates    map[int64]core.InvoiceStatus
	externalRefs     map[int64]string
	overdueMarked    int64
	failList         bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vatRate:       18,
		nextID:        100,
		statusUpdates: make(map[int64]core.InvoiceStatus),
		externalRefs:  make(map[int64]string),
	}
}

func (f *fakeStore) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	f.listInvoiceCalls++
	if f.failList {
		return nil, errors.New("store unavailable")
	}
	return f.invoices, nil
}

func (f *fakeStore) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return f.expenses, nil
}

func (f *fakeStore) GetVATRate(ctx context.Context) (float64, error) {
	return f.vatRate, nil
}

func (f *fakeStore) SetVATRate(ctx context.Context, rate float64) error {
	f.vatRate = rate
	return nil
}

func (f *fakeStore) CreateInvoice(ctx context.Context, inv core.Invoice) (int64, error) {
	f.nextID++
	inv.ID = f.nextID
	f.invoices = append(f.invoices, inv)
	return inv.ID, nil
}

func (f *fakeStore) GetInvoice(ctx context.Context, id int64) (core.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return core.Invoice{}, errors.New("not found")
}

func (f *fakeStore) UpdateInvoiceStatus(ctx context.Context, id int64, status core.InvoiceStatus) error {
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeStore) MarkInvoicePaid(ctx context.Context, id int64, paidDate time.Time) error {
	f.statusUpdates[id] = core.StatusPaid
	return nil
}

func (f *fakeStore) DeleteInvoice(ctx context.Context, id int64) error {
	for i, inv := range f.invoices {
		if inv.ID == id {
			f.invoices = append(f.invoices[:i], f.invoices[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) SetInvoiceExternalRef(ctx context.Context, id int64, ref string) error {
	f.externalRefs[id] = ref
	return nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	f.nextID++
	e.ID = f.nextID
	f.expenses = append(f.expenses, e)
	return e.ID, nil
}

func (f *fakeStore) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	for _, e := range f.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, errors.New("not found")
}

func (f *fakeStore) DeleteExpense(ctx context.Context, id int64) error {
	for i, e := range f.expenses {
		if e.ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) CreateClient(ctx context.Context, c core.Client) (int64, error) {
	f.nextID++
	c.ID = f.nextID
	f.clients = append(f.clients, c)
	return c.ID, nil
}

func (f *fakeStore) GetClient(ctx context.Context, id int64) (core.Client, error) {
	for _, c := range f.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Client{}, errors.New("not found")
}

func (f *fakeStore) ListClients(ctx context.Context) ([]core.Client, error) {
	return f.clients, nil
}

func (f *fakeStore) DeleteClient(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeStore) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int64, error) {
	return f.overdueMarked, nil
}

// fakePublisher records published tasks.
type fakePublisher struct {
	published []*amqp.TaskMessage
	failWith  error
}

func (p *fakePublisher) PublishTask(ctx context.Context, msg *amqp.TaskMessage) error {
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, msg)
	return nil
}

// fakeLedger mirrors invoices into memory.
type fakeLedger struct {
	appended []core.Invoice
	failWith error
}

func (l *fakeLedger) AppendInvoice(ctx context.Context, inv core.Invoice) (string, error) {
	if l.failWith != nil {
		return "", l.failWith
	}
	l.appended = append(l.appended, inv)
	return "Invoices!A2:F2", nil
}
