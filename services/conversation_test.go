package services

import "testing"

func TestNextPhaseThresholds(t *testing.T) {
	// Turn thresholds move the conversation along under neutral sentiment
	if got := NextPhase(PhaseOpening, 5, "neutral"); got != PhaseDiscovery {
		t.Errorf("Expected discovery after turn 4, got %s", got)
	}
	if got := NextPhase(PhaseOpening, 4, "neutral"); got != PhaseOpening {
		t.Errorf("Expected opening to hold at turn 4, got %s", got)
	}
	if got := NextPhase(PhaseDiscovery, 9, "neutral"); got != PhasePresenting {
		t.Errorf("Expected presenting after turn 8, got %s", got)
	}
	if got := NextPhase(PhasePresenting, 13, "neutral"); got != PhaseNegotiating {
		t.Errorf("Expected negotiating after turn 12, got %s", got)
	}
	if got := NextPhase(PhaseNegotiating, 17, "neutral"); got != PhaseClosing {
		t.Errorf("Expected closing after turn 16, got %s", got)
	}
}

func TestNextPhaseSentiment(t *testing.T) {
	// Negative sentiment holds the phase even past the threshold
	if got := NextPhase(PhaseOpening, 10, "negative"); got != PhaseOpening {
		t.Errorf("Expected negative sentiment to hold phase, got %s", got)
	}

	// Positive sentiment past the warm-up advances one step
	if got := NextPhase(PhaseDiscovery, 3, "positive"); got != PhasePresenting {
		t.Errorf("Expected positive sentiment to advance, got %s", got)
	}

	// But not during the first two turns
	if got := NextPhase(PhaseOpening, 2, "positive"); got != PhaseOpening {
		t.Errorf("Expected no advance on early positive turns, got %s", got)
	}

	// Positive momentum from closing ends the conversation naturally
	if got := NextPhase(PhaseClosing, 20, "positive"); got != PhaseEnded {
		t.Errorf("Expected closing to advance to ended on positive sentiment, got %s", got)
	}
}

func TestNextPhaseMonotonic(t *testing.T) {
	// Walking a full session forward never revisits an earlier phase
	phase := PhaseOpening
	for turn := 1; turn <= 30; turn++ {
		next := NextPhase(phase, turn, "neutral")
		if PhaseIndex(next) < PhaseIndex(phase) {
			t.Fatalf("Phase regressed from %s to %s at turn %d", phase, next, turn)
		}
		phase = next
	}
	if phase != PhaseClosing {
		t.Errorf("Expected a long neutral session to reach closing, got %s", phase)
	}
}

func TestNextPhaseEndedTerminal(t *testing.T) {
	if got := NextPhase(PhaseEnded, 50, "positive"); got != PhaseEnded {
		t.Errorf("Expected ended to be terminal, got %s", got)
	}
}

func TestDetectSentiment(t *testing.T) {
	if got := DetectSentiment("That sounds great, thanks for explaining!"); got != "positive" {
		t.Errorf("Expected positive, got %s", got)
	}
	if got := DetectSentiment("This is too expensive and I'm worried about the rollout"); got != "negative" {
		t.Errorf("Expected negative, got %s", got)
	}
	if got := DetectSentiment("We have around fifty employees"); got != "neutral" {
		t.Errorf("Expected neutral, got %s", got)
	}
	// Ties resolve to neutral
	if got := DetectSentiment("Great product, but the price is a concern... still interesting, though the cost is a problem"); got != "neutral" {
		t.Errorf("Expected tie to resolve neutral, got %s", got)
	}
}

func TestDetectIntent(t *testing.T) {
	if got := DetectIntent("What does the pricing look like for 50 seats?"); got != "pricing_discussion" {
		t.Errorf("Expected pricing_discussion, got %s", got)
	}
	if got := DetectIntent("How does onboarding usually go?"); got != "question" {
		t.Errorf("Expected question, got %s", got)
	}
	if got := DetectIntent("Let's sign the deal this week"); got != "commitment_seeking" {
		t.Errorf("Expected commitment_seeking, got %s", got)
	}
	if got := DetectIntent("I understand where you're coming from"); got != "acknowledgement" {
		t.Errorf("Expected acknowledgement, got %s", got)
	}
	if got := DetectIntent("We ship on Fridays"); got != "statement" {
		t.Errorf("Expected statement, got %s", got)
	}
}
