package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeProvider struct {
	name      string
	content   string
	err       error
	streaming bool
	calls     int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, req Request) (string, error) {
	f.calls++
	return f.content, f.err
}

func (f *fakeProvider) CompleteWithMeta(ctx context.Context, req Request) (Response, error) {
	f.calls++
	if f.err != nil {
		return Response{}, f.err
	}
	return Response{Content: f.content}, nil
}

func (f *fakeProvider) SupportsStreaming() bool { return f.streaming }

func (f *fakeProvider) StreamComplete(ctx context.Context, req Request) (<-chan string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan string, 2)
	out <- f.content[:len(f.content)/2]
	out <- f.content[len(f.content)/2:]
	close(out)
	return out, nil
}

func TestGatewayFallbackChain(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fmt.Errorf("quota exceeded")}
	secondary := &fakeProvider{name: "secondary", content: "hello"}
	gw := NewGateway(primary, secondary)

	got, err := gw.Complete(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Expected fallback to succeed, got %v", err)
	}
	if got != "hello" {
		t.Errorf("Expected secondary content, got %q", got)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("Expected both providers tried once, got %d/%d", primary.calls, secondary.calls)
	}
}

func TestGatewayAllProvidersFail(t *testing.T) {
	gw := NewGateway(
		&fakeProvider{name: "alpha", err: fmt.Errorf("down")},
		&fakeProvider{name: "beta", err: fmt.Errorf("also down")},
	)

	_, err := gw.Complete(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatalf("Expected error when every provider fails")
	}
	// The error names each backend and its failure
	for _, want := range []string{"alpha: down", "beta: also down", "all 2 llm providers failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error missing %q: %v", want, err)
		}
	}
}

func TestGatewayNoProviders(t *testing.T) {
	gw := NewGateway()
	if _, err := gw.Complete(context.Background(), Request{}); err == nil {
		t.Errorf("Expected error with no providers configured")
	}
	if _, err := gw.StreamComplete(context.Background(), Request{}); err == nil {
		t.Errorf("Expected streaming error with no providers configured")
	}
}

func TestGatewayStreamFallsBackToSingleChunk(t *testing.T) {
	// A non-streaming provider still serves StreamComplete as one chunk
	gw := NewGateway(&fakeProvider{name: "plain", content: "full response"})

	ch, err := gw.StreamComplete(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Expected single-chunk fallback, got %v", err)
	}

	var chunks []string
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	if len(chunks) != 1 || chunks[0] != "full response" {
		t.Errorf("Expected one full chunk, got %v", chunks)
	}
}

func TestGatewayStreamPrefersStreamingProvider(t *testing.T) {
	gw := NewGateway(&fakeProvider{name: "streamer", content: "streamed out", streaming: true})

	ch, err := gw.StreamComplete(context.Background(), Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Expected stream to start, got %v", err)
	}

	var sb strings.Builder
	for chunk := range ch {
		sb.WriteString(chunk)
	}
	if sb.String() != "streamed out" {
		t.Errorf("Expected reassembled stream, got %q", sb.String())
	}
}

func TestCleanModelOutput(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"plain text":              "plain text",
	}
	for in, want := range cases {
		if got := CleanModelOutput(in); got != want {
			t.Errorf("CleanModelOutput(%q) = %q, want %q", in, got, want)
		}
	}
}
