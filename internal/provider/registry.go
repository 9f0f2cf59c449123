package provider

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/mealscope/enrich-cli/internal/config"
)

// Valid backends per operation axis. Embedding is currently served by OpenAI
// only; detection can go to either backend.
var (
	embeddingBackends = []string{BackendOpenAI}
	detectionBackends = []string{BackendOpenAI, BackendAnthropic}
)

// NewEmbedder resolves the configured embedding backend. Fails fast on an
// unknown backend name or a missing credential.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.Provider.Embedding {
	case BackendOpenAI:
		if cfg.OpenAI.Key == "" {
			return nil, eris.New("provider: openai credential missing, set ENRICH_OPENAI_KEY")
		}
		return newOpenAI(cfg.OpenAI), nil
	default:
		return nil, eris.Errorf("provider: unsupported embedding backend %q, valid backends: %s",
			cfg.Provider.Embedding, strings.Join(embeddingBackends, ", "))
	}
}

// NewExtractor resolves the configured detection backend. Fails fast on an
// unknown backend name or a missing credential.
func NewExtractor(cfg *config.Config) (Extractor, error) {
	switch cfg.Provider.Detection {
	case BackendOpenAI:
		if cfg.OpenAI.Key == "" {
			return nil, eris.New("provider: openai credential missing, set ENRICH_OPENAI_KEY")
		}
		return newOpenAI(cfg.OpenAI), nil
	case BackendAnthropic:
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("provider: anthropic credential missing, set ENRICH_ANTHROPIC_KEY")
		}
		return newAnthropic(cfg.Anthropic), nil
	default:
		return nil, eris.Errorf("provider: unsupported detection backend %q, valid backends: %s",
			cfg.Provider.Detection, strings.Join(detectionBackends, ", "))
	}
}
