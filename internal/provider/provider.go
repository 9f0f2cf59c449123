// Package provider abstracts the structured-output backends used for
// enrichment: text embedding and vision-based structured extraction. The
// active backend for each operation is resolved once per run from
// configuration; credential and backend-name problems surface at construction
// time, never mid-batch.
package provider

import (
	"context"
	"encoding/json"
)

// Backend names accepted by the registry.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

// Embedder produces a vector embedding for a text input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor performs a vision+text structured-extraction call. The returned
// JSON is guaranteed to satisfy the request's output schema; a structural
// mismatch is reported as a provider error, never passed through.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (json.RawMessage, error)
}

// ExtractionRequest carries the inputs for one structured-extraction call.
type ExtractionRequest struct {
	System       string
	Prompt       string
	Image        []byte
	MIMEType     string
	OutputSchema json.RawMessage
	MaxTokens    int64
}
