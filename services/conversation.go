package services

import "strings"

// Conversation phases, in progression order.
const (
	PhaseOpening     = "opening"
	PhaseDiscovery   = "discovery"
	PhasePresenting  = "presenting"
	PhaseNegotiating = "negotiating"
	PhaseClosing     = "closing"
	PhaseEnded       = "ended"
)

var phaseOrder = []string{
	PhaseOpening,
	PhaseDiscovery,
	PhasePresenting,
	PhaseNegotiating,
	PhaseClosing,
	PhaseEnded,
}

// PhaseIndex returns a phase's position in the progression, -1 if unknown.
func PhaseIndex(phase string) int {
	for i, p := range phaseOrder {
		if p == phase {
			return i
		}
	}
	return -1
}

// advancePhase moves one step along the progression. Ended is terminal.
func advancePhase(current string) string {
	idx := PhaseIndex(current)
	if idx < 0 || idx >= len(phaseOrder)-1 {
		return current
	}
	return phaseOrder[idx+1]
}

// NextPhase derives the conversation phase after a turn. Negative sentiment
// holds the current phase; positive sentiment past the warm-up advances one
// step; otherwise turn-count thresholds move the session along. The rule is
// monotonic: no phase is revisited once left.
func NextPhase(current string, turnNumber int, sentiment string) string {
	if current == PhaseEnded {
		return PhaseEnded
	}
	if sentiment == "negative" {
		return current
	}
	if sentiment == "positive" && turnNumber > 2 {
		return advancePhase(current)
	}

	switch {
	case current == PhaseOpening && turnNumber > 4:
		return PhaseDiscovery
	case current == PhaseDiscovery && turnNumber > 8:
		return PhasePresenting
	case current == PhasePresenting && turnNumber > 12:
		return PhaseNegotiating
	case current == PhaseNegotiating && turnNumber > 16:
		return PhaseClosing
	}
	return current
}

var positiveWords = []string{
	"great", "thanks", "thank you", "perfect", "sounds good", "interesting",
	"love", "helpful", "makes sense", "appreciate", "excellent",
}

var negativeWords = []string{
	"expensive", "no way", "not interested", "waste", "frustrated", "annoyed",
	"disappointed", "problem", "concern", "worried", "can't afford", "too much",
}

// DetectSentiment classifies a message with a keyword scan. Cheap and
// deterministic; good enough to steer the phase machine.
func DetectSentiment(message string) string {
	lowered := strings.ToLower(message)

	count := func(words []string) int {
		n := 0
		for _, w := range words {
			if strings.Contains(lowered, w) {
				n++
			}
		}
		return n
	}

	positive := count(positiveWords)
	negative := count(negativeWords)

	switch {
	case negative > positive:
		return "negative"
	case positive > negative:
		return "positive"
	default:
		return "neutral"
	}
}

// DetectIntent tags a trainee message with a rough intent label.
func DetectIntent(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "price") || strings.Contains(lowered, "cost") || strings.Contains(lowered, "discount"):
		return "pricing_discussion"
	case strings.HasSuffix(strings.TrimSpace(lowered), "?"):
		return "question"
	case strings.Contains(lowered, "agree") || strings.Contains(lowered, "deal") || strings.Contains(lowered, "sign"):
		return "commitment_seeking"
	case strings.Contains(lowered, "understand") || strings.Contains(lowered, "hear you") || strings.Contains(lowered, "i see"):
		return "acknowledgement"
	default:
		return "statement"
	}
}
