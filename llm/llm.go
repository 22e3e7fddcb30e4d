package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is the uniform completion request shared by all backends.
type Request struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	// JSONResponse asks the backend for a structured JSON body where supported.
	JSONResponse bool
}

// Usage reports token accounting when the backend exposes it.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// Response is a completion plus optional usage metadata.
type Response struct {
	Content string `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
}

// Provider is a single text-generation backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
	CompleteWithMeta(ctx context.Context, req Request) (Response, error)
	SupportsStreaming() bool
	StreamComplete(ctx context.Context, req Request) (<-chan string, error)
}

// Gateway tries backends in a fixed priority order. On any error it records
// the failure and moves to the next backend; only when every backend has
// failed does the caller see an error, and that error names each backend's
// failure reason.
type Gateway struct {
	providers []Provider
}

func NewGateway(providers ...Provider) *Gateway {
	return &Gateway{providers: providers}
}

// Providers returns the configured backend list in priority order.
func (g *Gateway) Providers() []Provider {
	return g.providers
}

func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := g.CompleteWithMeta(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (g *Gateway) CompleteWithMeta(ctx context.Context, req Request) (Response, error) {
	if len(g.providers) == 0 {
		return Response{}, fmt.Errorf("no llm providers configured")
	}

	var failures []string
	for _, p := range g.providers {
		resp, err := p.CompleteWithMeta(ctx, req)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		return resp, nil
	}
	return Response{}, fmt.Errorf("all %d llm providers failed: %s", len(g.providers), strings.Join(failures, "; "))
}

// StreamComplete yields the completion as a sequence of text chunks. Backends
// without streaming support are used as a single-shot fallback producing one
// chunk equal to the full response.
func (g *Gateway) StreamComplete(ctx context.Context, req Request) (<-chan string, error) {
	if len(g.providers) == 0 {
		return nil, fmt.Errorf("no llm providers configured")
	}

	var failures []string
	for _, p := range g.providers {
		if p.SupportsStreaming() {
			ch, err := p.StreamComplete(ctx, req)
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
				continue
			}
			return ch, nil
		}

		content, err := p.Complete(ctx, req)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		out := make(chan string, 1)
		out <- content
		close(out)
		return out, nil
	}
	return nil, fmt.Errorf("all %d llm providers failed: %s", len(g.providers), strings.Join(failures, "; "))
}

// CleanModelOutput strips markdown code fences the models like to wrap JSON in.
func CleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
