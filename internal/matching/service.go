package matching

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/anjanakv868/Smart-Match/internal/extraction"
	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// Document sides addressable through the service.
const (
	SideInvoice = "invoice"
	SidePO      = "po"
)

// fullMatchNarrative is returned without calling the model when there is
// nothing to explain.
const fullMatchNarrative = "Everything looks good! No discrepancies found."

// IDGenerator generates unique IDs for comparisons
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles comparison operations
type Service struct {
	db          DB
	extractor   extraction.Extractor
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, extractor extraction.Extractor, storage Storage) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor extraction.Extractor, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "document"
	}

	return base + ext
}

// CreateComparison stores the uploaded pair, extracts both documents with the
// model, and saves the comparison for review
func (s *Service) CreateComparison(invoice, po extraction.FileInput) (*Comparison, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	invoicePath, err := s.storage.Save(fmt.Sprintf("%s_invoice_%s", id, sanitizeFilename(invoice.Filename)), invoice.Data)
	if err != nil {
		return nil, fmt.Errorf("saving invoice file: %w", err)
	}

	poPath, err := s.storage.Save(fmt.Sprintf("%s_po_%s", id, sanitizeFilename(po.Filename)), po.Data)
	if err != nil {
		s.storage.Delete(invoicePath)
		return nil, fmt.Errorf("saving purchase order file: %w", err)
	}

	pair, err := s.extractor.ExtractPair(invoice, po)
	if err != nil {
		slog.Error("Failed to extract document pair",
			"invoice", invoice.Filename,
			"po", po.Filename,
			"error", err,
		)
		// Clean up the saved files since extraction failed
		s.storage.Delete(invoicePath)
		s.storage.Delete(poPath)
		return nil, fmt.Errorf("extracting documents: %w", err)
	}

	comparison := &Comparison{
		ID:                 id,
		Invoice:            pair.Invoice,
		PO:                 pair.PO,
		InvoiceFile:        invoicePath,
		POFile:             poPath,
		InvoiceContentType: invoice.ContentType,
		POContentType:      po.ContentType,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.db.SaveComparison(comparison); err != nil {
		s.storage.Delete(invoicePath)
		s.storage.Delete(poPath)
		return nil, fmt.Errorf("saving comparison to database: %w", err)
	}

	return comparison, nil
}

// GetComparison retrieves a comparison by ID
func (s *Service) GetComparison(id string) (*Comparison, error) {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return nil, fmt.Errorf("getting comparison: %w", err)
	}
	return comparison, nil
}

// ListComparisons returns all comparisons
func (s *Service) ListComparisons() ([]*Comparison, error) {
	comparisons, err := s.db.ListComparisons()
	if err != nil {
		return nil, fmt.Errorf("listing comparisons: %w", err)
	}
	return comparisons, nil
}

// DeleteComparison removes a comparison and its stored files
func (s *Service) DeleteComparison(id string) error {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return fmt.Errorf("getting comparison for deletion: %w", err)
	}

	for _, path := range []string{comparison.InvoiceFile, comparison.POFile} {
		if err := s.storage.Delete(path); err != nil {
			// Log but continue with database deletion
			slog.Warn("Failed to delete file", "filename", path, "error", err)
		}
	}

	if err := s.db.DeleteComparison(id); err != nil {
		return fmt.Errorf("deleting comparison from database: %w", err)
	}
	return nil
}

// UpdateDocument replaces one side of a comparison with a human-corrected
// document value
func (s *Service) UpdateDocument(id, side string, doc reconcile.Document) (*Comparison, error) {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return nil, fmt.Errorf("getting comparison: %w", err)
	}

	switch side {
	case SideInvoice:
		comparison.Invoice = doc
	case SidePO:
		comparison.PO = doc
	default:
		return nil, fmt.Errorf("unknown document side: %q", side)
	}

	comparison.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveComparison(comparison); err != nil {
		return nil, fmt.Errorf("saving comparison: %w", err)
	}

	return comparison, nil
}

// Summarize reconciles the comparison's current documents. The report is
// computed fresh on every call and never stored.
func (s *Service) Summarize(id string) (*MatchReport, error) {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return nil, fmt.Errorf("getting comparison: %w", err)
	}

	summary := reconcile.Reconcile(comparison.Invoice, comparison.PO)

	return &MatchReport{
		Summary: summary,
		Status:  summary.Status(),
	}, nil
}

// Narrative produces a natural-language description of the comparison's
// discrepancies. A clean full match short-circuits without a model call.
func (s *Service) Narrative(id string) (string, error) {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return "", fmt.Errorf("getting comparison: %w", err)
	}

	summary := reconcile.Reconcile(comparison.Invoice, comparison.PO)
	if summary.Status() == reconcile.StatusFullMatch {
		return fullMatchNarrative, nil
	}

	narrative, err := s.extractor.SummarizeMismatch(comparison.Invoice, comparison.PO, summary)
	if err != nil {
		return "", fmt.Errorf("generating narrative: %w", err)
	}

	return narrative, nil
}

// GetDocumentFile retrieves the stored source file for one side of a comparison
func (s *Service) GetDocumentFile(id, side string) ([]byte, string, error) {
	comparison, err := s.db.GetComparison(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting comparison: %w", err)
	}

	var path, contentType string
	switch side {
	case SideInvoice:
		path, contentType = comparison.InvoiceFile, comparison.InvoiceContentType
	case SidePO:
		path, contentType = comparison.POFile, comparison.POContentType
	default:
		return nil, "", fmt.Errorf("unknown document side: %q", side)
	}

	data, err := s.storage.Get(path)
	if err != nil {
		return nil, "", fmt.Errorf("getting document file: %w", err)
	}

	return data, contentType, nil
}
