package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusSent      InvoiceStatus = "sent"
	StatusPaid      InvoiceStatus = "paid"
	StatusOverdue   InvoiceStatus = "overdue"
	StatusCancelled InvoiceStatus = "cancelled"
)

const (
	CategorySupplier     ExpenseCategory = "supplier"
	CategoryEquipment    ExpenseCategory = "equipment"
	CategoryRent         ExpenseCategory = "rent"
	CategoryMarketing    ExpenseCategory = "marketing"
	CategoryOffice       ExpenseCategory = "office"
	CategoryTravel       ExpenseCategory = "travel"
	CategorySoftware     ExpenseCategory = "software"
	CategoryProfessional ExpenseCategory = "professional"
	CategoryOther        ExpenseCategory = "other"
)

// DefaultVATRate is the tenant-wide VAT percentage used when no rate has been configured.
const DefaultVATRate = 18.0

type (
	InvoiceStatus   string
	ExpenseCategory string

	// Client is referenced by invoices for grouping; it carries no behavior of its own.
	Client struct {
		ID    int64
		Name  string
		Email string
	}

	// Invoice is a billing document. Amount is the gross, VAT-inclusive total.
	// DueDate and PaidDate are optional; a zero time means "not set".
	// ExternalRef links to the document mirrored into the external accounting ledger.
	Invoice struct {
		ID          int64
		ClientID    int64
		ClientName  string
		Amount      float64
		Status      InvoiceStatus
		IssueDate   time.Time
		DueDate     time.Time
		PaidDate    time.Time
		ExternalRef string
	}

	// Expense is a cost entry. Recurring expenses represent a fixed monthly charge;
	// RecurringDay (1-31) is the day of month the charge lands on, 0 when not set.
	Expense struct {
		ID           int64
		Description  string
		Amount       float64
		Category     ExpenseCategory
		Date         time.Time
		HasVAT       bool
		IsRecurring  bool
		RecurringDay int
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidStatus     = errors.New("invalid invoice status")
	ErrInvalidCategory   = errors.New("invalid expense category")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyClientName   = errors.New("empty client name")
	ErrMissingClient     = errors.New("missing client reference")
	ErrInvalidRecurrence = errors.New("recurring day must be between 1 and 31")
)

// Valid reports whether s is one of the known invoice statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether c is one of the closed set of expense categories.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategorySupplier, CategoryEquipment, CategoryRent, CategoryMarketing,
		CategoryOffice, CategoryTravel, CategorySoftware, CategoryProfessional, CategoryOther:
		return true
	}
	return false
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyClientName
	}
	if len(c.Name) > 200 {
		return errors.New("client name too long (max 200 characters)")
	}
	return nil
}

func (i Invoice) Validate() error {
	if i.ClientID <= 0 {
		return ErrMissingClient
	}
	if i.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	if i.IssueDate.IsZero() {
		return ErrInvalidDate
	}
	if !i.DueDate.IsZero() && i.DueDate.Before(i.IssueDate) {
		return errors.New("due date must not precede issue date")
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.IsRecurring && (e.RecurringDay < 1 || e.RecurringDay > 31) {
		return ErrInvalidRecurrence
	}
	if !e.IsRecurring && e.RecurringDay != 0 {
		return errors.New("recurring day set on a one-time expense")
	}
	return nil
}

// NewDate builds a UTC date with no time component, the canonical form for
// issue, due, paid and expense dates.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
