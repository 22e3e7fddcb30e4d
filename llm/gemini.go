package llm

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider backs completions with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	cfg := &genai.ClientConfig{}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.JSONResponse {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func (g *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := g.CompleteWithMeta(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (g *GeminiProvider) CompleteWithMeta(ctx context.Context, req Request) (Response, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), g.generateConfig(req))
	if err != nil {
		return Response{}, err
	}

	out := Response{Content: CleanModelOutput(resp.Text())}
	if resp.UsageMetadata != nil {
		out.Usage = &Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func (g *GeminiProvider) SupportsStreaming() bool { return true }

func (g *GeminiProvider) StreamComplete(ctx context.Context, req Request) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(req.Prompt), g.generateConfig(req)) {
			if err != nil {
				log.Printf("gemini stream aborted: %v", err)
				return
			}
			if text := resp.Text(); text != "" {
				select {
				case out <- text:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
