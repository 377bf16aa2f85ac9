package llmclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself; recovery from failures is the
// caller's concern.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

// Generate runs one text (or text+image) generation call and returns the
// raw model text.
func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.ImageB64 != "" {
		data, err := DecodeImagePayload(req.ImageB64)
		if err != nil {
			return "", fmt.Errorf("decode image payload: %w", err)
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: data},
		})
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: parts}}, cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// TestConnection probes the model with a trivial prompt; used by /health.
func (g *GeminiClient) TestConnection(ctx context.Context) (string, error) {
	out, err := g.Generate(ctx, Request{
		Prompt:      "Reply with the single word: online",
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DecodeImagePayload accepts a raw base64 string or a data URL
// ("data:image/png;base64,....") and returns the image bytes.
func DecodeImagePayload(s string) ([]byte, error) {
	if idx := strings.Index(s, "base64,"); idx >= 0 {
		s = s[idx+len("base64,"):]
	}
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// Frontends sometimes send the URL-safe alphabet.
		return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return data, nil
}
