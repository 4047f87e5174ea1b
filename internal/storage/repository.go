// Package storage persists clients, invoices, expenses and settings in
// SQLite. Deletes are soft: rows keep their history and every query filters
// on deleted_at IS NULL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gestionale/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or has been deleted.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB

	// defaultVATRate is served until a rate is stored in settings.
	defaultVATRate float64
}

func NewSQLiteRepository(dbPath string, defaultVATRate float64) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, defaultVATRate: defaultVATRate}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- clients ---

func (r *SQLiteRepository) CreateClient(ctx context.Context, c core.Client) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (name, email) VALUES (?, ?)`,
		c.Name, c.Email)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("client insert id: %w", err)
	}

	slog.InfoContext(ctx, "Client created", "id", id, "name", c.Name)
	return id, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id int64) (core.Client, error) {
	var c core.Client
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email FROM clients WHERE id = ? AND deleted_at IS NULL`,
		id).Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email FROM clients WHERE deleted_at IS NULL ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []core.Client
	for rows.Next() {
		var c core.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *SQLiteRepository) DeleteClient(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return requireAffected(res)
}

// --- invoices ---

const invoiceColumns = `i.id, i.client_id, c.name, i.amount, i.status, i.issue_date, i.due_date, i.paid_date, i.external_ref`

func (r *SQLiteRepository) CreateInvoice(ctx context.Context, inv core.Invoice) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (client_id, amount, status, issue_date, due_date, paid_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ClientID, inv.Amount, string(inv.Status),
		inv.IssueDate.Format(dateLayout), nullDate(inv.DueDate), nullDate(inv.PaidDate))
	if err != nil {
		return 0, fmt.Errorf("create invoice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("invoice insert id: %w", err)
	}

	slog.InfoContext(ctx, "Invoice created",
		"id", id,
		"client_id", inv.ClientID,
		"amount", inv.Amount,
		"status", inv.Status)
	return id, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id int64) (core.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+`
		 FROM invoices i JOIN clients c ON c.id = i.client_id
		 WHERE i.id = ? AND i.deleted_at IS NULL`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListInvoices returns every live invoice with its client name, newest issue
// date first. Report filtering happens in memory on this snapshot.
func (r *SQLiteRepository) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+`
		 FROM invoices i JOIN clients c ON c.id = i.client_id
		 WHERE i.deleted_at IS NULL
		 ORDER BY i.issue_date DESC, i.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *SQLiteRepository) UpdateInvoiceStatus(ctx context.Context, id int64, status core.InvoiceStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE id = ? AND deleted_at IS NULL`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) MarkInvoicePaid(ctx context.Context, id int64, paidDate time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, paid_date = ? WHERE id = ? AND deleted_at IS NULL`,
		string(core.StatusPaid), paidDate.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) SetInvoiceExternalRef(ctx context.Context, id int64, ref string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET external_ref = ? WHERE id = ? AND deleted_at IS NULL`,
		ref, id)
	if err != nil {
		return fmt.Errorf("set invoice external ref: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireAffected(res)
}

// MarkOverdueInvoices flips sent invoices past their due date to overdue and
// returns how many rows changed.
func (r *SQLiteRepository) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?
		 WHERE status = ? AND due_date IS NOT NULL AND due_date < ? AND deleted_at IS NULL`,
		string(core.StatusOverdue), string(core.StatusSent), asOf.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("overdue rows affected: %w", err)
	}
	return n, nil
}

// --- expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (description, amount, category, expense_date, has_vat, is_recurring, recurring_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Description, e.Amount, string(e.Category),
		e.Date.Format(dateLayout), boolToInt(e.HasVAT), boolToInt(e.IsRecurring), e.RecurringDay)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", id,
		"description", e.Description,
		"amount", e.Amount,
		"recurring", e.IsRecurring)
	return id, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var (
		e                   core.Expense
		category, date      string
		hasVAT, isRecurring int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount, category, expense_date, has_vat, is_recurring, recurring_day
		 FROM expenses WHERE id = ? AND deleted_at IS NULL`, id).
		Scan(&e.ID, &e.Description, &e.Amount, &category, &date, &hasVAT, &isRecurring, &e.RecurringDay)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}

	e.Category = core.ExpenseCategory(category)
	e.HasVAT = hasVAT != 0
	e.IsRecurring = isRecurring != 0
	if e.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, category, expense_date, has_vat, is_recurring, recurring_day
		 FROM expenses WHERE deleted_at IS NULL
		 ORDER BY expense_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e                   core.Expense
			category, date      string
			hasVAT, isRecurring int
		)
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &category, &date, &hasVAT, &isRecurring, &e.RecurringDay); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.ExpenseCategory(category)
		e.HasVAT = hasVAT != 0
		e.IsRecurring = isRecurring != 0
		if e.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
			return nil, fmt.Errorf("parse expense date: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res)
}

// --- settings ---

func (r *SQLiteRepository) GetVATRate(ctx context.Context) (float64, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'vat_rate'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaultVATRate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get vat rate: %w", err)
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse vat rate %q: %w", value, err)
	}
	return rate, nil
}

func (r *SQLiteRepository) SetVATRate(ctx context.Context, rate float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ('vat_rate', ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		strconv.FormatFloat(rate, 'f', -1, 64))
	if err != nil {
		return fmt.Errorf("set vat rate: %w", err)
	}

	slog.InfoContext(ctx, "VAT rate updated", "rate", rate)
	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (core.Invoice, error) {
	var (
		inv               core.Invoice
		status, issueDate string
		dueDate, paidDate sql.NullString
	)
	if err := row.Scan(&inv.ID, &inv.ClientID, &inv.ClientName, &inv.Amount,
		&status, &issueDate, &dueDate, &paidDate, &inv.ExternalRef); err != nil {
		return core.Invoice{}, err
	}

	inv.Status = core.InvoiceStatus(status)
	var err error
	if inv.IssueDate, err = time.ParseInLocation(dateLayout, issueDate, time.UTC); err != nil {
		return core.Invoice{}, fmt.Errorf("parse issue date: %w", err)
	}
	if dueDate.Valid && dueDate.String != "" {
		if inv.DueDate, err = time.ParseInLocation(dateLayout, dueDate.String, time.UTC); err != nil {
			return core.Invoice{}, fmt.Errorf("parse due date: %w", err)
		}
	}
	if paidDate.Valid && paidDate.String != "" {
		if inv.PaidDate, err = time.ParseInLocation(dateLayout, paidDate.String, time.UTC); err != nil {
			return core.Invoice{}, fmt.Errorf("parse paid date: %w", err)
		}
	}
	return inv, nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
