package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealscope/enrich-cli/internal/config"
)

func TestNewEmbedderOpenAI(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{Embedding: BackendOpenAI},
		OpenAI:   config.OpenAIConfig{Key: "sk-test", EmbedModel: "text-embedding-3-small"},
	}

	emb, err := NewEmbedder(cfg)

	require.NoError(t, err)
	assert.NotNil(t, emb)
}

func TestNewEmbedderMissingCredential(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{Embedding: BackendOpenAI},
	}

	_, err := NewEmbedder(cfg)

	require.Error(t, err)
	assert.ErrorContains(t, err, "ENRICH_OPENAI_KEY")
}

func TestNewEmbedderUnsupportedBackend(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{Embedding: "bedrock"},
	}

	_, err := NewEmbedder(cfg)

	require.Error(t, err)
	assert.ErrorContains(t, err, "bedrock")
	assert.ErrorContains(t, err, "openai")
}

func TestNewExtractorAnthropic(t *testing.T) {
	cfg := &config.Config{
		Provider:  config.ProviderConfig{Detection: BackendAnthropic},
		Anthropic: config.AnthropicConfig{Key: "ak-test", VisionModel: "claude-haiku-4-5-20251001"},
	}

	ext, err := NewExtractor(cfg)

	require.NoError(t, err)
	assert.NotNil(t, ext)
}

func TestNewExtractorMissingAnthropicCredential(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{Detection: BackendAnthropic},
	}

	_, err := NewExtractor(cfg)

	require.Error(t, err)
	assert.ErrorContains(t, err, "ENRICH_ANTHROPIC_KEY")
}

func TestNewExtractorUnsupportedBackendListsValid(t *testing.T) {
	cfg := &config.Config{
		Provider: config.ProviderConfig{Detection: "gemini"},
	}

	_, err := NewExtractor(cfg)

	require.Error(t, err)
	assert.ErrorContains(t, err, "openai, anthropic")
}

func TestBackendsAreIndependent(t *testing.T) {
	// Embedding via OpenAI while detection goes to Anthropic.
	cfg := &config.Config{
		Provider:  config.ProviderConfig{Embedding: BackendOpenAI, Detection: BackendAnthropic},
		OpenAI:    config.OpenAIConfig{Key: "sk-test"},
		Anthropic: config.AnthropicConfig{Key: "ak-test"},
	}

	emb, err := NewEmbedder(cfg)
	require.NoError(t, err)
	ext, err := NewExtractor(cfg)
	require.NoError(t, err)

	assert.NotNil(t, emb)
	assert.NotNil(t, ext)
}
