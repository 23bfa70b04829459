package extraction

import (
	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// FileInput is one uploaded document file.
type FileInput struct {
	Filename    string
	Data        []byte
	ContentType string
}

// DocumentPair is the structured result of extracting an invoice and its
// purchase order in a single model call.
type DocumentPair struct {
	Invoice reconcile.Document `json:"invoice_data"`
	PO      reconcile.Document `json:"po_data"`
}

// Extractor defines the interface for document extraction operations
type Extractor interface {
	// ExtractPair analyzes an invoice and a purchase order and extracts
	// their headers and line items
	ExtractPair(invoice, po FileInput) (*DocumentPair, error)
	// SummarizeMismatch generates a short natural-language summary of the
	// discrepancies between the two documents
	SummarizeMismatch(invoice, po reconcile.Document, summary reconcile.MatchSummary) (string, error)
	// Close closes the extractor and releases resources
	Close() error
}
