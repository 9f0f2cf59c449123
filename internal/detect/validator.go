// Package detect turns a meal image into validated catalog detections. The
// vision provider's output is untrusted: it may invent plausible-looking
// catalog ids or report confidences outside [0,1], so every candidate is
// checked against the run's catalog snapshot before being returned.
package detect

import (
	"go.uber.org/zap"

	"github.com/mealscope/enrich-cli/internal/model"
)

// Validate sanitizes raw provider detections against the trusted catalog id
// set. Candidates whose ItemRef is not in the set are dropped (hallucinated
// reference); candidates with a negative Quantity are dropped (malformed, not
// meaningfully clampable); out-of-range Confidence is clamped into [0,1]
// rather than dropped. Returns the kept detections and the dropped count so
// callers can detect provider drift.
func Validate(raw []model.DetectionCandidate, trusted map[string]struct{}) ([]model.ValidatedDetection, int) {
	kept := make([]model.ValidatedDetection, 0, len(raw))
	dropped := 0

	for _, c := range raw {
		if _, ok := trusted[c.ItemRef]; !ok {
			zap.L().Debug("detect: dropping unknown item ref",
				zap.String("item_ref", c.ItemRef),
				zap.String("label", c.Label),
			)
			dropped++
			continue
		}
		if c.Quantity < 0 {
			zap.L().Debug("detect: dropping negative quantity",
				zap.String("item_ref", c.ItemRef),
				zap.Float64("quantity", c.Quantity),
			)
			dropped++
			continue
		}

		kept = append(kept, model.ValidatedDetection{
			ItemRef:    c.ItemRef,
			Label:      c.Label,
			Quantity:   c.Quantity,
			Confidence: clampConfidence(c.Confidence),
			Notes:      c.Notes,
		})
	}

	if dropped > 0 {
		zap.L().Warn("detect: dropped invalid detections",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(kept)),
		)
	}

	return kept, dropped
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
