package agents

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicBackend struct {
	client anthropic.Client
	cfg    Config
}

func newAnthropic(cfg *Config) *anthropicBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.TimeoutDuration()}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &anthropicBackend{
		client: anthropic.NewClient(opts...),
		cfg:    *cfg,
	}
}

// complete sends images before the instruction text, which is the order the
// Messages API recommends for vision prompts.
func (b *anthropicBackend) complete(ctx context.Context, req request) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)
	for _, img := range req.Images {
		if len(img.Data) == 0 {
			return "", fmt.Errorf("%w: %s", ErrMissingImage, img.Key)
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			mimeType(img),
			base64.StdEncoding.EncodeToString(img.Data),
		))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Text))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.cfg.Model),
		MaxTokens:   int64(b.cfg.MaxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(b.cfg.temperature()),
	}
	if b.cfg.TopK > 0 {
		params.TopK = anthropic.Int(int64(b.cfg.TopK))
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", anthropicError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch c := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}

func anthropicError(err error) error {
	if pe, ok := classifyContextError(ProviderAnthropic, err); ok {
		return pe
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return ClassifyHTTPError(ProviderAnthropic, apiErr.StatusCode, http.StatusText(apiErr.StatusCode), err)
	}

	return unknownError(ProviderAnthropic, err)
}
