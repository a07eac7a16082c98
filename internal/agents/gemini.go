package agents

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

type geminiBackend struct {
	client *genai.Client
	cfg    Config
}

func newGemini(ctx context.Context, cfg *Config) (*geminiBackend, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.TimeoutDuration()},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &geminiBackend{client: client, cfg: *cfg}, nil
}

func (b *geminiBackend) complete(ctx context.Context, req request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Text)}
	for _, img := range req.Images {
		switch {
		case len(img.Data) > 0:
			parts = append(parts, genai.NewPartFromBytes(img.Data, mimeType(img)))
		case img.URL != "":
			parts = append(parts, genai.NewPartFromURI(img.URL, mimeType(img)))
		default:
			return "", fmt.Errorf("%w: %s", ErrMissingImage, img.Key)
		}
	}

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(b.cfg.temperature())),
		MaxOutputTokens: int32(min(b.cfg.MaxTokens, math.MaxInt32)),
	}
	if b.cfg.TopP != nil {
		gc.TopP = genai.Ptr(float32(*b.cfg.TopP))
	}
	if b.cfg.TopK > 0 {
		gc.TopK = genai.Ptr(float32(min(b.cfg.TopK, 40)))
	}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := b.client.Models.GenerateContent(ctx, b.cfg.Model, contents, gc)
	if err != nil {
		return "", geminiError(err)
	}
	return resp.Text(), nil
}

func geminiError(err error) error {
	if pe, ok := classifyContextError(ProviderGemini, err); ok {
		return pe
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		pe := ClassifyHTTPError(ProviderGemini, apiErr.Code, apiErr.Message, err)
		if strings.Contains(strings.ToLower(apiErr.Message), "safety") {
			pe.Type = ErrorTypeContentPolicy
		}
		return pe
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		message := gErr.Message
		if message == "" && len(gErr.Errors) > 0 {
			message = gErr.Errors[0].Message
		}
		return ClassifyHTTPError(ProviderGemini, gErr.Code, message, err)
	}

	return unknownError(ProviderGemini, err)
}
