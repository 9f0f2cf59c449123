package model

// BackfillProgress summarizes one backfill invocation. Attempted always equals
// Succeeded + Failed. Remaining counts eligible items the invocation did not
// attempt because of the per-run processing cap; the durable state across runs
// is simply the presence or absence of each item's embedding.
type BackfillProgress struct {
	RunID         string `json:"run_id"`
	TotalEligible int    `json:"total_eligible"`
	Attempted     int    `json:"attempted"`
	Succeeded     int    `json:"succeeded"`
	Failed        int    `json:"failed"`
	Remaining     int    `json:"remaining"`
	ContinueHint  string `json:"continue_hint,omitempty"`
}

// Complete reports whether no eligible work is left after this invocation.
func (p BackfillProgress) Complete() bool {
	return p.Remaining == 0
}
