package reconcile

// Status is the three-way classification of a match summary. It is derived
// from the summary, never stored.
type Status string

const (
	// StatusFullMatch: headers agree and every item on both sides paired
	// cleanly.
	StatusFullMatch Status = "full_match"
	// StatusPartialMatch: headers agree but there are line item
	// discrepancies or orphans.
	StatusPartialMatch Status = "partial_match"
	// StatusMismatch: vendor or total disagree.
	StatusMismatch Status = "mismatch"
)

// Status classifies the summary. Vendor and total agreement are required for
// anything better than a mismatch.
func (s MatchSummary) Status() Status {
	if !s.VendorMatch || !s.TotalMatch {
		return StatusMismatch
	}
	if len(s.DiscrepancyItems) == 0 && len(s.InvoiceOnlyItems) == 0 && len(s.POOnlyItems) == 0 {
		return StatusFullMatch
	}
	return StatusPartialMatch
}
