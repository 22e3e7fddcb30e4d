package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// OpenAIProvider backs completions with the OpenAI chat completions API.
type OpenAIProvider struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

func NewOpenAI(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		model:      model,
		url:        "https://api.openai.com/v1/chat/completions",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.CompleteWithMeta(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (o *OpenAIProvider) CompleteWithMeta(ctx context.Context, req Request) (Response, error) {
	var messages []openAIMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	body := openAIRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONResponse {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request data: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewBuffer(payload))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("API error: %s", string(raw))
	}

	var responseData struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &responseData); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(responseData.Choices) == 0 {
		return Response{}, fmt.Errorf("unexpected response format")
	}

	return Response{
		Content: CleanModelOutput(responseData.Choices[0].Message.Content),
		Usage: &Usage{
			PromptTokens:     responseData.Usage.PromptTokens,
			CompletionTokens: responseData.Usage.CompletionTokens,
		},
	}, nil
}

func (o *OpenAIProvider) SupportsStreaming() bool { return false }

func (o *OpenAIProvider) StreamComplete(ctx context.Context, req Request) (<-chan string, error) {
	return nil, fmt.Errorf("openai provider does not stream")
}
