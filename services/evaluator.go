package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"pitchhub/llm"
	"pitchhub/models"
)

// rubricVerdict is the structured verdict requested from the model. Eight
// boolean signals drive the score; the rest is free-text coaching.
type rubricVerdict struct {
	Acknowledged      bool     `json:"acknowledged"`
	EmpathyShown      bool     `json:"empathyShown"`
	AddressedDirectly bool     `json:"addressedDirectly"`
	ProvidedValue     bool     `json:"providedValue"`
	AskedFollowUp     bool     `json:"askedFollowUp"`
	Dismissive        bool     `json:"dismissive"`
	Argumentative     bool     `json:"argumentative"`
	IgnoredConcern    bool     `json:"ignoredConcern"`
	Techniques        []string `json:"techniques"`
	Feedback          string   `json:"feedback"`
	Improvements      []string `json:"improvements"`
}

// scoreFromSignals applies the additive rubric and clamps to [0,100].
// All-false signals score exactly 0; the five positive signals sum to 100.
func scoreFromSignals(v rubricVerdict) int {
	score := 0
	if v.Acknowledged {
		score += 20
	}
	if v.EmpathyShown {
		score += 20
	}
	if v.AddressedDirectly {
		score += 25
	}
	if v.ProvidedValue {
		score += 25
	}
	if v.AskedFollowUp {
		score += 10
	}
	if v.Dismissive {
		score -= 15
	}
	if v.Argumentative {
		score -= 20
	}
	if v.IgnoredConcern {
		score -= 25
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func buildRubricPrompt(objection models.GeneratedObjection, response, conversationContext string) string {
	return fmt.Sprintf(
		`Act as a sales coach. A simulated client raised this objection and the trainee responded. Evaluate the response in STRICT JSON format.

Objection (%s, %s): "%s"

Ideal responses for reference:
%s

Common mistakes for reference:
%s

Recent conversation:
%s

Trainee response: "%s"

Required Output Format:
{
  "acknowledged": true/false,
  "empathyShown": true/false,
  "addressedDirectly": true/false,
  "providedValue": true/false,
  "askedFollowUp": true/false,
  "dismissive": true/false,
  "argumentative": true/false,
  "ignoredConcern": true/false,
  "techniques": ["technique names used"],
  "feedback": "two sentences of coaching feedback",
  "improvements": ["specific improvement suggestions"]
}

Provide ONLY the JSON output without any additional text.`,
		objection.Category, objection.Severity, objection.CoreContent,
		bulletList(objection.IdealResponses),
		bulletList(objection.CommonMistakes),
		conversationContext,
		response,
	)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseRubricVerdict is the explicit parse branch: ok is false on any
// malformed payload, and the caller falls back to the zero verdict.
func parseRubricVerdict(raw string) (rubricVerdict, bool) {
	cleaned := llm.CleanModelOutput(raw)
	if cleaned == "" || !strings.HasPrefix(cleaned, "{") {
		return rubricVerdict{}, false
	}
	var v rubricVerdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return rubricVerdict{}, false
	}
	return v, true
}

// techniquePatterns maps named objection-handling techniques to the keywords
// that suggest them.
var techniquePatterns = map[string][]string{
	"feel-felt-found":      {"felt the same", "others felt", "they found", "feel that way"},
	"acknowledge-and-ask":  {"i understand", "fair point", "good question", "help me understand"},
	"reframe":              {"another way to look", "think of it as", "what this really means", "total cost"},
	"social-proof":         {"customers like you", "similar companies", "case study", "reference"},
	"value-quantification": {"roi", "saves you", "pays for itself", "per month you"},
	"trial-close":          {"would that work", "how does that sound", "shall we", "does that address"},
}

// detectTechniques runs the keyword scan over the trainee response.
func detectTechniques(response string) []string {
	lowered := strings.ToLower(response)
	var found []string
	for name, patterns := range techniquePatterns {
		for _, p := range patterns {
			if strings.Contains(lowered, p) {
				found = append(found, name)
				break
			}
		}
	}
	return found
}

// mergeTechniques combines model-reported and detected techniques without
// duplicates, preserving first-seen order.
func mergeTechniques(reported, detected []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, t := range append(append([]string(nil), reported...), detected...) {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	return merged
}

const fallbackEvaluationFeedback = "The response could not be scored in detail. Focus on acknowledging the concern, addressing it directly, and ending with a question."

// EvaluateObjectionHandling scores a trainee's response to a raised objection
// through the LLM rubric. Any model failure or unparseable verdict degrades
// to the zero-signal evaluation (score 0) rather than an error.
func EvaluateObjectionHandling(ctx context.Context, gateway *llm.Gateway, objection models.GeneratedObjection, response, conversationContext string) models.ObjectionHandlingEvaluation {
	var verdict rubricVerdict
	parsed := false

	if gateway != nil {
		raw, err := gateway.Complete(ctx, llm.Request{
			Prompt:       buildRubricPrompt(objection, response, conversationContext),
			SystemPrompt: "You are a rigorous sales-training evaluator. Respond with strict JSON only.",
			MaxTokens:    512,
			Temperature:  0.2,
			JSONResponse: true,
		})
		if err != nil {
			log.Printf("objection evaluation fell back to default: %v", err)
		} else {
			verdict, parsed = parseRubricVerdict(raw)
		}
	}

	evaluation := models.ObjectionHandlingEvaluation{
		Score:             scoreFromSignals(verdict),
		Acknowledged:      verdict.Acknowledged,
		EmpathyShown:      verdict.EmpathyShown,
		AddressedDirectly: verdict.AddressedDirectly,
		ProvidedValue:     verdict.ProvidedValue,
		AskedFollowUp:     verdict.AskedFollowUp,
		Techniques:        mergeTechniques(verdict.Techniques, detectTechniques(response)),
		Feedback:          verdict.Feedback,
		Improvements:      verdict.Improvements,
	}
	if !parsed {
		evaluation.Feedback = fallbackEvaluationFeedback
	}
	return evaluation
}
