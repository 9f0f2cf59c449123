package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rotisserie/eris"

	"github.com/mealscope/enrich-cli/internal/config"
)

// openAIBackend serves both operation axes: embeddings and vision structured
// extraction.
type openAIBackend struct {
	client      openai.Client
	embedModel  string
	visionModel string
}

func newOpenAI(cfg config.OpenAIConfig) *openAIBackend {
	return &openAIBackend{
		client:      openai.NewClient(option.WithAPIKey(cfg.Key)),
		embedModel:  cfg.EmbedModel,
		visionModel: cfg.VisionModel,
	}
}

func (b *openAIBackend) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := b.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(b.embedModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
	})
	if err != nil {
		return nil, eris.Wrap(classifyAPIError(err), "openai: create embedding")
	}
	if len(resp.Data) == 0 {
		return nil, eris.New("openai: empty embedding response")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

func (b *openAIBackend) Extract(ctx context.Context, req ExtractionRequest) (json.RawMessage, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", req.MIMEType, base64.StdEncoding.EncodeToString(req.Image))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultExtractMaxTokens
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(b.visionModel),
		MaxCompletionTokens: openai.Int(maxTokens),
		Temperature:         openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(parts),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, eris.Wrap(classifyAPIError(err), "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: empty chat response")
	}

	return DecodeStructured(resp.Choices[0].Message.Content, req.OutputSchema)
}
