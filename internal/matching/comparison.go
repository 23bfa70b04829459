package matching

import (
	"time"

	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// Comparison is one invoice/purchase-order pair under review. The extracted
// documents are stored so a human can correct them between extraction and
// reconciliation; match summaries are computed on demand and never persisted.
type Comparison struct {
	ID                 string             `json:"id"`
	Invoice            reconcile.Document `json:"invoice"`
	PO                 reconcile.Document `json:"po"`
	InvoiceFile        string             `json:"invoice_file"`
	POFile             string             `json:"po_file"`
	InvoiceContentType string             `json:"invoice_content_type"`
	POContentType      string             `json:"po_content_type"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// MatchReport is the response shape for the summary endpoint: the engine's
// partition plus the derived three-way status.
type MatchReport struct {
	Summary reconcile.MatchSummary `json:"summary"`
	Status  reconcile.Status       `json:"status"`
}
