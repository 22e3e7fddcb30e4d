package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pitchhub/db"
	"pitchhub/llm"
	"pitchhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

var empathyKeywords = []string{
	"i understand", "i hear you", "that makes sense", "i appreciate",
	"fair point", "i can see", "i know how", "that must be",
}

var activeListeningKeywords = []string{
	"so you're saying", "if i understood", "to recap", "you mentioned",
	"going back to what you said", "let me make sure", "in other words",
}

// computeConversationMetrics derives the deterministic counters from the
// transcript: trainee talk share, response length, questions and the empathy
// and active-listening keyword counts.
func computeConversationMetrics(turns []models.ConversationTurn) models.ConversationMetrics {
	var metrics models.ConversationMetrics

	traineeWords := 0
	totalWords := 0
	traineeTurns := 0
	for _, turn := range turns {
		words := len(strings.Fields(turn.Message))
		totalWords += words
		if turn.Speaker != models.SpeakerTrainee {
			continue
		}
		traineeTurns++
		traineeWords += words
		lowered := strings.ToLower(turn.Message)
		metrics.QuestionsAsked += strings.Count(turn.Message, "?")
		for _, kw := range empathyKeywords {
			if strings.Contains(lowered, kw) {
				metrics.EmpathyStatements++
			}
		}
		for _, kw := range activeListeningKeywords {
			if strings.Contains(lowered, kw) {
				metrics.ActiveListeningIndicators++
			}
		}
	}

	if totalWords > 0 {
		metrics.TalkTimeRatio = float64(traineeWords) / float64(totalWords)
	}
	if traineeTurns > 0 {
		metrics.AverageResponseLength = float64(traineeWords) / float64(traineeTurns)
	}
	return metrics
}

// gradeForScore maps an overall score to a letter grade.
func gradeForScore(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// skillReport is the structured analysis requested from the model.
type skillReport struct {
	Skills           map[string]models.SkillEvaluation `json:"skills"`
	Summary          string                            `json:"summary"`
	Highlights       []string                          `json:"highlights"`
	ImprovementAreas []string                          `json:"improvementAreas"`
	Recommendations  []string                          `json:"recommendations"`
}

func buildAnalysisPrompt(session *models.Session, metrics models.ConversationMetrics) string {
	return fmt.Sprintf(
		`Act as an expert sales trainer. Analyze this completed roleplay session and produce a skill report in STRICT JSON format.

Scenario: %s (difficulty: %s)
Client persona: %s, %s personality
Outcome: %s
Objections raised: %d, resolved: %d

Conversation metrics (computed, for reference):
- Trainee talk-time ratio: %.2f
- Average trainee response length: %.1f words
- Questions asked: %d
- Empathy statements: %d
- Active listening indicators: %d

Full transcript:
%s

Score each skill 0-100 with reasoning, transcript evidence quotes and actionable tips.

Required Output Format:
{
  "skills": {
    "rapportBuilding": {"score": 0, "reasoning": "", "evidence": [], "tips": []},
    "discoveryQuestioning": {"score": 0, "reasoning": "", "evidence": [], "tips": []},
    "valueCommunication": {"score": 0, "reasoning": "", "evidence": [], "tips": []},
    "objectionHandling": {"score": 0, "reasoning": "", "evidence": [], "tips": []},
    "closingTechnique": {"score": 0, "reasoning": "", "evidence": [], "tips": []},
    "activeListening": {"score": 0, "reasoning": "", "evidence": [], "tips": []}
  },
  "summary": "three sentence overall assessment",
  "highlights": ["what went well"],
  "improvementAreas": ["what to work on"],
  "recommendations": ["concrete practice suggestions"]
}

Provide ONLY the JSON output without any additional text.`,
		session.ScenarioType, session.DifficultyLevel,
		session.ClientPersona.Name, session.ClientPersona.Personality,
		session.Outcome,
		session.Metrics.TotalObjections, session.Metrics.ResolvedObjections,
		metrics.TalkTimeRatio, metrics.AverageResponseLength,
		metrics.QuestionsAsked, metrics.EmpathyStatements, metrics.ActiveListeningIndicators,
		FormatTranscript(session.ConversationTurns),
	)
}

// FormatTranscript renders the whole conversation for analysis prompts.
func FormatTranscript(turns []models.ConversationTurn) string {
	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(fmt.Sprintf("[%d] %s: %s\n", turn.TurnNumber, turn.Speaker, turn.Message))
	}
	return sb.String()
}

func parseSkillReport(raw string) (skillReport, bool) {
	cleaned := llm.CleanModelOutput(raw)
	if cleaned == "" || !strings.HasPrefix(cleaned, "{") {
		return skillReport{}, false
	}
	var report skillReport
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return skillReport{}, false
	}
	if len(report.Skills) == 0 {
		return skillReport{}, false
	}
	return report, true
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// fallbackSkillReport derives a report from the computed metrics and the
// session's objection record when the model is unavailable. Coarse but never
// empty: every skill gets a score and at least one tip.
func fallbackSkillReport(session *models.Session, metrics models.ConversationMetrics) skillReport {
	base := session.Metrics.PreliminaryScore
	if base == 0 {
		base = 50
	}

	objectionScore := base
	if session.Metrics.TotalObjections > 0 {
		objectionScore = clampScore(int(100 * float64(session.Metrics.ResolvedObjections) / float64(session.Metrics.TotalObjections)))
	}

	discovery := clampScore(base - 10 + metrics.QuestionsAsked*5)
	listening := clampScore(base - 10 + metrics.ActiveListeningIndicators*10)
	rapport := clampScore(base - 5 + metrics.EmpathyStatements*5)

	// A balanced conversation has the trainee talking roughly half the time.
	value := base
	if metrics.TalkTimeRatio > 0.7 || metrics.TalkTimeRatio < 0.3 {
		value = clampScore(base - 10)
	}

	skills := map[string]models.SkillEvaluation{
		models.SkillRapportBuilding: {
			Score:     rapport,
			Reasoning: fmt.Sprintf("Derived from %d empathy statements across the conversation.", metrics.EmpathyStatements),
			Tips:      []string{"Open with a genuine personal connection before business talk."},
		},
		models.SkillDiscoveryQuestioning: {
			Score:     discovery,
			Reasoning: fmt.Sprintf("You asked %d questions during the session.", metrics.QuestionsAsked),
			Tips:      []string{"Ask open-ended questions about the client's current situation."},
		},
		models.SkillValueCommunication: {
			Score:     value,
			Reasoning: fmt.Sprintf("Talk-time ratio was %.0f%%; value lands best in a balanced dialogue.", metrics.TalkTimeRatio*100),
			Tips:      []string{"Tie every feature you mention to a concrete outcome for the client."},
		},
		models.SkillObjectionHandling: {
			Score:     objectionScore,
			Reasoning: fmt.Sprintf("You resolved %d of %d objections raised.", session.Metrics.ResolvedObjections, session.Metrics.TotalObjections),
			Tips:      []string{"Acknowledge each concern before answering it."},
		},
		models.SkillClosingTechnique: {
			Score:     base,
			Reasoning: fmt.Sprintf("Session ended with outcome %q.", session.Outcome),
			Tips:      []string{"End every conversation with a concrete proposed next step."},
		},
		models.SkillActiveListening: {
			Score:     listening,
			Reasoning: fmt.Sprintf("Detected %d active-listening markers, such as paraphrasing the client.", metrics.ActiveListeningIndicators),
			Tips:      []string{"Paraphrase the client's points back to them before responding."},
		},
	}

	return skillReport{
		Skills:  skills,
		Summary: "Automated analysis was unavailable for this session, so scores are derived from conversation metrics. Review the per-skill tips and replay the scenario.",
		ImprovementAreas: []string{
			"Re-run the scenario to get a full AI-reviewed report.",
		},
		Recommendations: []string{
			"Practice the same scenario again and compare your objection resolution rate.",
		},
	}
}

// overallFromSkills averages the six skill scores, weighting objection
// handling double since it is the core of the drill.
func overallFromSkills(skills map[string]models.SkillEvaluation) int {
	sum := 0
	weight := 0
	for name, skill := range skills {
		w := 1
		if name == models.SkillObjectionHandling {
			w = 2
		}
		sum += clampScore(skill.Score) * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

// AnalyzeSimulation produces the end-of-session skill report. Reports are
// keyed by session id: calling again returns the stored report instead of
// re-running the analysis.
func AnalyzeSimulation(ctx context.Context, gateway *llm.Gateway, sessionID string) (*models.EvaluationResult, error) {
	session, err := db.FindSessionByID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if existing, err := db.FindReportBySessionID(ctx, sessionID); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		log.Printf("report lookup failed, recomputing: %v", err)
	}

	metrics := computeConversationMetrics(session.ConversationTurns)

	var report skillReport
	parsed := false
	if gateway != nil {
		raw, err := gateway.Complete(ctx, llm.Request{
			Prompt:       buildAnalysisPrompt(session, metrics),
			SystemPrompt: "You are an expert sales trainer. Respond with strict JSON only.",
			MaxTokens:    2048,
			Temperature:  0.3,
			JSONResponse: true,
		})
		if err != nil {
			log.Printf("session analysis fell back to metric-derived report: %v", err)
		} else {
			report, parsed = parseSkillReport(raw)
		}
	}
	if !parsed {
		report = fallbackSkillReport(session, metrics)
	}

	for _, name := range models.SkillNames {
		if _, ok := report.Skills[name]; !ok {
			report.Skills[name] = models.SkillEvaluation{
				Reasoning: "Not enough conversation signal to assess this skill.",
			}
		}
	}

	overall := overallFromSkills(report.Skills)
	now := time.Now()
	result := &models.EvaluationResult{
		SessionID:        sessionID,
		OverallScore:     overall,
		Grade:            gradeForScore(overall),
		Summary:          report.Summary,
		Skills:           report.Skills,
		Metrics:          metrics,
		Highlights:       report.Highlights,
		ImprovementAreas: report.ImprovementAreas,
		Recommendations:  report.Recommendations,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := db.UpsertReport(ctx, result); err != nil {
		log.Printf("failed to persist analysis report: %v", err)
	}
	if err := db.UpdateSession(ctx, sessionID, bson.M{"metrics.aiScore": overall}); err != nil {
		log.Printf("failed to store ai score on session: %v", err)
	}
	return result, nil
}
