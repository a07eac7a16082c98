package agents

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

type openAIBackend struct {
	client *openai.Client
	cfg    Config
}

func newOpenAI(cfg *Config) *openAIBackend {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.TimeoutDuration()}

	return &openAIBackend{
		client: openai.NewClientWithConfig(oc),
		cfg:    *cfg,
	}
}

func (b *openAIBackend) complete(ctx context.Context, req request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		user.Content = req.Text
	} else {
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Text}}
		for _, img := range req.Images {
			url := img.URL
			if len(img.Data) > 0 {
				var err error
				if url, err = dataURI(img); err != nil {
					return "", fmt.Errorf("encode image: %w", err)
				}
			}
			if url == "" {
				return "", fmt.Errorf("%w: %s", ErrMissingImage, img.Key)
			}
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: url, Detail: openai.ImageURLDetailHigh},
			})
		}
		user.MultiContent = parts
	}
	messages = append(messages, user)

	cr := openai.ChatCompletionRequest{
		Model:     b.cfg.Model,
		Messages:  messages,
		MaxTokens: b.cfg.MaxTokens,
	}
	// go-openai drops a zero temperature through omitempty.
	cr.Temperature = max(float32(b.cfg.temperature()), math.SmallestNonzeroFloat32)
	if b.cfg.TopP != nil {
		cr.TopP = float32(*b.cfg.TopP)
	}
	if req.JSON {
		cr.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, cr)
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIError(err error) error {
	if pe, ok := classifyContextError(ProviderOpenAI, err); ok {
		return pe
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := ClassifyHTTPError(ProviderOpenAI, apiErr.HTTPStatusCode, apiErr.Message, err)
		if apiErr.Code == "content_policy_violation" {
			pe.Type = ErrorTypeContentPolicy
		}
		return pe
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return ClassifyHTTPError(ProviderOpenAI, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return unknownError(ProviderOpenAI, err)
}
