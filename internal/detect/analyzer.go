package detect

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mealscope/enrich-cli/internal/catalog"
	"github.com/mealscope/enrich-cli/internal/config"
	"github.com/mealscope/enrich-cli/internal/model"
	"github.com/mealscope/enrich-cli/internal/provider"
	"github.com/mealscope/enrich-cli/internal/resilience"
	"github.com/mealscope/enrich-cli/internal/store"
)

// DetectionsSchema is the output shape every detection extraction must
// satisfy. Confidence bounds are deliberately absent: slightly out-of-range
// values are expected from providers and clamped by the validator instead of
// failing the whole response.
var DetectionsSchema = json.RawMessage(`{
	"type": "object",
	"required": ["detections"],
	"properties": {
		"detections": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["foodId", "nameJp", "weightGrams", "confidence"],
				"properties": {
					"foodId": {"type": "string"},
					"nameJp": {"type": "string"},
					"weightGrams": {"type": "number"},
					"confidence": {"type": "number"},
					"notes": {"type": ["string", "null"]}
				}
			}
		}
	}
}`)

// Result is the outcome of one image analysis.
type Result struct {
	Detections []model.ValidatedDetection `json:"detections"`
	Dropped    int                        `json:"dropped"`
}

// Analyzer orchestrates the detection flow: catalog snapshot, prompt, vision
// call, validation.
type Analyzer struct {
	store     store.Store
	extractor provider.Extractor
	pageSize  int
	maxItems  int
	retryCfg  resilience.RetryConfig
}

// NewAnalyzer builds an analyzer against the given store and extractor.
func NewAnalyzer(st store.Store, extractor provider.Extractor, cfg *config.Config) *Analyzer {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("provider", "extract")

	return &Analyzer{
		store:     st,
		extractor: extractor,
		pageSize:  cfg.Catalog.PageSize,
		maxItems:  cfg.Catalog.MaxPromptItems,
		retryCfg:  retryCfg,
	}
}

// Analyze detects catalog items in a meal image. The snapshot captured here
// is both the prompt source and the trusted id set the raw detections are
// validated against.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	snap, err := catalog.Load(ctx, a.store, catalog.FetchOptions{
		PageSize: a.pageSize,
		MaxItems: a.maxItems,
	})
	if err != nil {
		return nil, eris.Wrap(err, "detect: load catalog snapshot")
	}
	if snap.Len() == 0 {
		return nil, eris.New("detect: catalog snapshot is empty")
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := catalog.BuildDetectionPrompt(snap)
	zap.L().Debug("detect: prompt built",
		zap.Int("catalog_items", snap.Len()),
		zap.Int("prompt_len", len(prompt)),
	)

	raw, err := resilience.DoVal(ctx, a.retryCfg, func(ctx context.Context) (json.RawMessage, error) {
		return a.extractor.Extract(ctx, provider.ExtractionRequest{
			System:       catalog.DetectionSystemPrompt,
			Prompt:       prompt,
			Image:        image,
			MIMEType:     mimeType,
			OutputSchema: DetectionsSchema,
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "detect: extract")
	}

	var payload struct {
		Detections []model.DetectionCandidate `json:"detections"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, eris.Wrap(err, "detect: decode detections")
	}

	kept, dropped := Validate(payload.Detections, snap.IDSet())

	zap.L().Info("detect: analysis complete",
		zap.Int("raw", len(payload.Detections)),
		zap.Int("kept", len(kept)),
		zap.Int("dropped", dropped),
	)

	return &Result{Detections: kept, Dropped: dropped}, nil
}
