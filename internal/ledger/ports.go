// Package ledger defines the outbound port for mirroring invoices into the
// external accounting ledger.
package ledger

import (
	"context"

	"gestionale/internal/core"
)

// Writer appends one invoice to the external ledger and returns an opaque
// row reference, stored back on the invoice as ExternalRef.
type Writer interface {
	AppendInvoice(ctx context.Context, inv core.Invoice) (rowRef string, err error)
}
