package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/mealscope/enrich-cli/internal/config"
)

// anthropicBackend serves the detection axis only; Anthropic has no embedding
// endpoint.
type anthropicBackend struct {
	client      sdk.Client
	visionModel string
}

func newAnthropic(cfg config.AnthropicConfig) *anthropicBackend {
	return &anthropicBackend{
		client:      sdk.NewClient(option.WithAPIKey(cfg.Key)),
		visionModel: cfg.VisionModel,
	}
}

func (b *anthropicBackend) Extract(ctx context.Context, req ExtractionRequest) (json.RawMessage, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultExtractMaxTokens
	}

	msg, err := b.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(b.visionModel),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(0),
		System: []sdk.TextBlockParam{
			{Text: req.System},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlockBase64(req.MIMEType, base64.StdEncoding.EncodeToString(req.Image)),
				sdk.NewTextBlock(req.Prompt),
			),
		},
	})
	if err != nil {
		return nil, eris.Wrap(classifyAPIError(err), "anthropic: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return DecodeStructured(text.String(), req.OutputSchema)
}
