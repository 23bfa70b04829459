package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/anjanakv868/Smart-Match/internal/reconcile"
)

// textExtractionPrompt is used when embedded PDF text is available for both
// documents.
const textExtractionPrompt = `You are an expert accounts payable specialist. Your task is to analyze the following text content from an invoice and a purchase order and extract key information.

From the INVOICE text, extract:
- Invoice Number
- Date
- Vendor Name
- A list of all line items. Each item should have a 'description', 'quantity', and 'price'.
- Total Amount

From the PURCHASE ORDER text, extract:
- PO Number
- Date
- Vendor Name
- A list of all ordered items. Each item should have a 'description', 'quantity', and 'price'.
- Total Amount

Return your findings ONLY as a single, minified JSON object. The JSON structure must be:
{
  "invoice_data": {
    "invoice_no": "...", "date": "...", "vendor": "...",
    "items": [{"description": "...", "quantity": 1, "price": 0.00}],
    "total": 0.00
  },
  "po_data": {
    "po_no": "...", "date": "...", "vendor": "...",
    "items": [{"description": "...", "quantity": 1, "price": 0.00}],
    "total": 0.00
  }
}
Do not use markdown code blocks.`

// imageExtractionPrompt is the fallback when text extraction fails and the
// documents are sent as page images. The first image is the invoice, the
// second is the purchase order.
const imageExtractionPrompt = `You are an expert accounts payable specialist. Your task is to extract key information from the provided document images. The first image is an INVOICE, the second is a PURCHASE ORDER.

From the INVOICE image, extract:
- Invoice Number
- Date
- Vendor Name
- A list of all line items. Each item should have a 'description', 'quantity', and 'price'.
- Total Amount

From the PURCHASE ORDER image, extract:
- PO Number
- Date
- Vendor Name
- A list of all ordered items. Each item should have a 'description', 'quantity', and 'price'.
- Total Amount

Return your findings ONLY as a single, minified JSON object. The JSON structure must be:
{
  "invoice_data": {
    "invoice_no": "...", "date": "...", "vendor": "...",
    "items": [{"description": "...", "quantity": 1, "price": 0.00}],
    "total": 0.00
  },
  "po_data": {
    "po_no": "...", "date": "...", "vendor": "...",
    "items": [{"description": "...", "quantity": 1, "price": 0.00}],
    "total": 0.00
  }
}
Do not use markdown code blocks.`

const mismatchSummaryTemplate = `You are an accounts payable specialist providing a summary of the discrepancies between an invoice and a purchase order. Based on the following data, provide a brief, easy-to-understand summary of the key mismatches. Focus on the vendor, total amount, and any line item issues.

**Invoice Data:**
%s

**Purchase Order Data:**
%s

**Mismatch Details:**
%s

**Example Summary:**
"There are a few issues with this invoice. The vendor name doesn't match the purchase order, and the total amount is off by $50. Additionally, one of the line items has a price discrepancy, and another item was on the invoice but not on the original PO."`

// mismatchSummaryPrompt renders the narrative prompt with the two documents
// and the computed match summary as indented JSON.
func mismatchSummaryPrompt(invoice, po reconcile.Document, summary reconcile.MatchSummary) (string, error) {
	invoiceJSON, err := json.MarshalIndent(invoice, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling invoice: %w", err)
	}
	poJSON, err := json.MarshalIndent(po, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling purchase order: %w", err)
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling match summary: %w", err)
	}

	return fmt.Sprintf(mismatchSummaryTemplate, invoiceJSON, poJSON, summaryJSON), nil
}
