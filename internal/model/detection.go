package model

// DetectionCandidate is a raw, provider-origin detection. It is untrusted:
// ItemRef may reference an id that does not exist in the catalog, and
// Confidence may fall outside [0,1]. Field names follow the wire schema the
// vision provider is asked to produce.
type DetectionCandidate struct {
	ItemRef    string  `json:"foodId"`
	Label      string  `json:"nameJp"`
	Quantity   float64 `json:"weightGrams"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
}

// ValidatedDetection has the same shape as DetectionCandidate but carries the
// invariants that ItemRef is a member of the run's catalog snapshot, Confidence
// is within [0,1], and Quantity is non-negative. Only the detect validator
// constructs these.
type ValidatedDetection struct {
	ItemRef    string  `json:"foodId"`
	Label      string  `json:"nameJp"`
	Quantity   float64 `json:"weightGrams"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes,omitempty"`
}
