package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LineItem is one row of a document: a purchased or invoiced good or service.
// Values are never mutated by the engine; a human correction produces a new value.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"` // currency units, 2-decimal semantics
}

// Document is one parsed document: header fields plus its ordered line items.
type Document struct {
	Identifier string     `json:"identifier"` // invoice number or PO number
	Date       string     `json:"date"`       // free-form, not parsed
	Vendor     string     `json:"vendor"`
	Items      []LineItem `json:"items"`
	Total      float64    `json:"total"`
}

// UnmarshalJSON decodes a line item, accepting quantity and price either as
// JSON numbers or as numeric strings (extraction output is not always typed
// consistently). Anything else fails fast naming the item, rather than being
// silently coerced to zero: a zeroed price could hide a real discrepancy.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Description string          `json:"description"`
		Quantity    json.RawMessage `json:"quantity"`
		Price       json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	li.Description = raw.Description

	quantity, err := coerceNumber(raw.Quantity)
	if err != nil {
		return fmt.Errorf("item %q: quantity %w", raw.Description, err)
	}
	li.Quantity = quantity

	price, err := coerceNumber(raw.Price)
	if err != nil {
		return fmt.Errorf("item %q: price %w", raw.Description, err)
	}
	li.Price = price

	return nil
}

// UnmarshalJSON decodes a document. The identifier is read from "identifier",
// "invoice_no" or "po_no" (the extraction JSON contract uses the latter two).
// Missing vendor/total/items default to empty string, zero and an empty list.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Identifier string          `json:"identifier"`
		InvoiceNo  string          `json:"invoice_no"`
		PONo       string          `json:"po_no"`
		Date       string          `json:"date"`
		Vendor     string          `json:"vendor"`
		Items      []LineItem      `json:"items"`
		Total      json.RawMessage `json:"total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Identifier = raw.Identifier
	if d.Identifier == "" {
		d.Identifier = raw.InvoiceNo
	}
	if d.Identifier == "" {
		d.Identifier = raw.PONo
	}
	d.Date = raw.Date
	d.Vendor = raw.Vendor
	d.Items = raw.Items
	if d.Items == nil {
		d.Items = []LineItem{}
	}

	total, err := coerceNumber(raw.Total)
	if err != nil {
		return fmt.Errorf("total %w", err)
	}
	d.Total = total

	return nil
}

// coerceNumber converts a raw JSON value to a float64. Accepts numbers,
// numeric strings and null/absent values (which default to zero).
func coerceNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("is not numeric: %q", s)
		}
		return n, nil
	}

	return 0, fmt.Errorf("is not numeric: %s", string(raw))
}
