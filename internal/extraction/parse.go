package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// parseAnalysisJSON parses the combined {invoice_data, po_data} JSON response
// from the model. Each document is decoded separately so a bad field is
// reported with the document side it came from.
func parseAnalysisJSON(text string) (*DocumentPair, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var raw struct {
		Invoice json.RawMessage `json:"invoice_data"`
		PO      json.RawMessage `json:"po_data"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	pair := DocumentPair{
		Invoice: reconcile.Document{Items: []reconcile.LineItem{}},
		PO:      reconcile.Document{Items: []reconcile.LineItem{}},
	}
	if len(raw.Invoice) > 0 {
		if err := json.Unmarshal(raw.Invoice, &pair.Invoice); err != nil {
			return nil, fmt.Errorf("invoice: %w", err)
		}
	}
	if len(raw.PO) > 0 {
		if err := json.Unmarshal(raw.PO, &pair.PO); err != nil {
			return nil, fmt.Errorf("purchase order: %w", err)
		}
	}

	return &pair, nil
}
