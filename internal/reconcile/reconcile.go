package reconcile

import "math"

// amountTolerance is the absolute difference under which two currency amounts
// are considered equal, absorbing rounding noise from extraction. Strictly
// less-than: a difference of exactly 0.01 is not a match.
const amountTolerance = 0.01

// DiscrepancyPair holds two items judged to be the same thing by description
// similarity but disagreeing on quantity or price.
type DiscrepancyPair struct {
	Invoice LineItem `json:"invoice"`
	PO      LineItem `json:"po"`
}

// MatchSummary is the result of reconciling an invoice against a purchase
// order. Every invoice item appears in exactly one of MatchingItems, a
// DiscrepancyItems pairing, or InvoiceOnlyItems; every PO item is either
// claimed by exactly one pairing or listed in POOnlyItems.
type MatchSummary struct {
	VendorMatch      bool              `json:"vendor_match"`
	TotalMatch       bool              `json:"total_match"`
	MatchingItems    []LineItem        `json:"matching_items"`
	DiscrepancyItems []DiscrepancyPair `json:"discrepancy_items"`
	InvoiceOnlyItems []LineItem        `json:"invoice_only_items"`
	POOnlyItems      []LineItem        `json:"po_only_items"`
}

// Reconcile aligns an invoice against a purchase order and reports header
// agreement plus a partition of the line items into matched, discrepant and
// orphaned buckets. It is a pure function: a full mismatch is a valid result,
// not an error, and identical inputs always produce identical output.
//
// Alignment is greedy first-match: invoice items are walked in order, and each
// claims the first still-available PO item whose description similarity
// exceeds the threshold. Ties go to PO-list order, not to the highest score.
// This is a deliberate simplicity tradeoff over optimal assignment for the
// small item counts involved.
func Reconcile(invoice, po Document) MatchSummary {
	summary := MatchSummary{
		VendorMatch:      invoice.Vendor == po.Vendor,
		TotalMatch:       amountsEqual(invoice.Total, po.Total),
		MatchingItems:    []LineItem{},
		DiscrepancyItems: []DiscrepancyPair{},
		InvoiceOnlyItems: []LineItem{},
		POOnlyItems:      []LineItem{},
	}

	// Explicit available-index set over PO items; each PO item is claimed
	// at most once.
	available := make([]bool, len(po.Items))
	for i := range available {
		available[i] = true
	}

	for _, invItem := range invoice.Items {
		claimed := -1
		for i, poItem := range po.Items {
			if !available[i] {
				continue
			}
			if similarity(invItem.Description, poItem.Description) > matchThreshold {
				claimed = i
				break
			}
		}

		if claimed == -1 {
			summary.InvoiceOnlyItems = append(summary.InvoiceOnlyItems, invItem)
			continue
		}

		poItem := po.Items[claimed]
		available[claimed] = false

		if invItem.Quantity == poItem.Quantity && amountsEqual(invItem.Price, poItem.Price) {
			summary.MatchingItems = append(summary.MatchingItems, invItem)
		} else {
			summary.DiscrepancyItems = append(summary.DiscrepancyItems, DiscrepancyPair{
				Invoice: invItem,
				PO:      poItem,
			})
		}
	}

	for i, poItem := range po.Items {
		if available[i] {
			summary.POOnlyItems = append(summary.POOnlyItems, poItem)
		}
	}

	return summary
}

// amountsEqual compares two currency amounts with the absolute tolerance.
func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < amountTolerance
}
