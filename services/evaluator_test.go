package services

import (
	"context"
	"fmt"
	"testing"

	"pitchhub/llm"
	"pitchhub/models"
)

// stubProvider returns a fixed payload or error for evaluator tests.
type stubProvider struct {
	name    string
	payload string
	err     error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	return s.payload, s.err
}

func (s *stubProvider) CompleteWithMeta(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: s.payload}, s.err
}

func (s *stubProvider) SupportsStreaming() bool { return false }

func (s *stubProvider) StreamComplete(ctx context.Context, req llm.Request) (<-chan string, error) {
	return nil, fmt.Errorf("not supported")
}

func testObjection() models.GeneratedObjection {
	return models.GeneratedObjection{
		ID:             "obj-1",
		Category:       models.CategoryPrice,
		Severity:       models.SeverityModerate,
		CoreContent:    "Your price is too high.",
		IdealResponses: []string{"Reframe around value."},
		CommonMistakes: []string{"Discounting immediately."},
	}
}

func TestScoreFromSignals(t *testing.T) {
	// All-false signals score exactly zero
	if got := scoreFromSignals(rubricVerdict{}); got != 0 {
		t.Errorf("Expected 0 for zero verdict, got %d", got)
	}

	// All five positive signals reach exactly 100
	allPositive := rubricVerdict{
		Acknowledged: true, EmpathyShown: true, AddressedDirectly: true,
		ProvidedValue: true, AskedFollowUp: true,
	}
	if got := scoreFromSignals(allPositive); got != 100 {
		t.Errorf("Expected 100 for all positive signals, got %d", got)
	}

	// Negative signals clamp at zero rather than going below
	allNegative := rubricVerdict{Dismissive: true, Argumentative: true, IgnoredConcern: true}
	if got := scoreFromSignals(allNegative); got != 0 {
		t.Errorf("Expected clamp to 0, got %d", got)
	}

	// Mixed signals subtract
	mixed := rubricVerdict{Acknowledged: true, AddressedDirectly: true, Dismissive: true}
	if got := scoreFromSignals(mixed); got != 30 {
		t.Errorf("Expected 30 for mixed verdict, got %d", got)
	}
}

func TestEvaluateObjectionHandlingParsesVerdict(t *testing.T) {
	payload := `{"acknowledged": true, "empathyShown": true, "addressedDirectly": true, "providedValue": false, "askedFollowUp": true, "dismissive": false, "argumentative": false, "ignoredConcern": false, "techniques": ["reframe"], "feedback": "Solid handling.", "improvements": ["Quantify the value"]}`
	gateway := llm.NewGateway(&stubProvider{name: "stub", payload: payload})

	eval := EvaluateObjectionHandling(context.Background(), gateway, testObjection(), "I understand, let me reframe that", "")
	if eval.Score != 75 {
		t.Errorf("Expected score 75, got %d", eval.Score)
	}
	if !eval.Acknowledged || !eval.EmpathyShown || !eval.AddressedDirectly || !eval.AskedFollowUp {
		t.Errorf("Signals not mapped from verdict: %+v", eval)
	}
	if eval.Feedback != "Solid handling." {
		t.Errorf("Expected model feedback, got %q", eval.Feedback)
	}
}

func TestEvaluateObjectionHandlingFallsBackOnError(t *testing.T) {
	gateway := llm.NewGateway(&stubProvider{name: "stub", err: fmt.Errorf("backend down")})

	eval := EvaluateObjectionHandling(context.Background(), gateway, testObjection(), "some response", "")
	if eval.Score != 0 {
		t.Errorf("Expected zero score on backend failure, got %d", eval.Score)
	}
	if eval.Feedback != fallbackEvaluationFeedback {
		t.Errorf("Expected fallback feedback, got %q", eval.Feedback)
	}
}

func TestEvaluateObjectionHandlingFallsBackOnGarbage(t *testing.T) {
	gateway := llm.NewGateway(&stubProvider{name: "stub", payload: "sorry, I can't produce JSON today"})

	eval := EvaluateObjectionHandling(context.Background(), gateway, testObjection(), "some response", "")
	if eval.Score != 0 {
		t.Errorf("Expected zero score on unparseable verdict, got %d", eval.Score)
	}
	if eval.Feedback != fallbackEvaluationFeedback {
		t.Errorf("Expected fallback feedback, got %q", eval.Feedback)
	}
}

func TestEvaluateObjectionHandlingNilGateway(t *testing.T) {
	eval := EvaluateObjectionHandling(context.Background(), nil, testObjection(), "some response", "")
	if eval.Score != 0 {
		t.Errorf("Expected zero score with no gateway, got %d", eval.Score)
	}
}

func TestParseRubricVerdictStripsFences(t *testing.T) {
	raw := "```json\n{\"acknowledged\": true}\n```"
	v, ok := parseRubricVerdict(raw)
	if !ok {
		t.Fatalf("Expected fenced JSON to parse")
	}
	if !v.Acknowledged {
		t.Errorf("Expected acknowledged=true after fence stripping")
	}
}

func TestDetectTechniques(t *testing.T) {
	found := detectTechniques("I understand the concern. Others felt the same way, and they found the ROI justified it. Would that work for you?")
	want := map[string]bool{"acknowledge-and-ask": true, "feel-felt-found": true, "value-quantification": true, "trial-close": true}
	for _, name := range found {
		if !want[name] {
			t.Errorf("Unexpected technique %s", name)
		}
		delete(want, name)
	}
	for missing := range want {
		t.Errorf("Expected technique %s to be detected", missing)
	}
}

func TestMergeTechniques(t *testing.T) {
	merged := mergeTechniques([]string{"Reframe", "trial-close"}, []string{"reframe", "social-proof"})
	if len(merged) != 3 {
		t.Errorf("Expected 3 unique techniques, got %v", merged)
	}
	if merged[0] != "Reframe" {
		t.Errorf("Expected first-seen order preserved, got %v", merged)
	}
}
