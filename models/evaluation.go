package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectionHandlingEvaluation scores one trainee response to a raised
// objection. Immutable once derived.
type ObjectionHandlingEvaluation struct {
	Score             int      `json:"score" bson:"score"`
	Acknowledged      bool     `json:"acknowledged" bson:"acknowledged"`
	EmpathyShown      bool     `json:"empathyShown" bson:"empathyShown"`
	AddressedDirectly bool     `json:"addressedDirectly" bson:"addressedDirectly"`
	ProvidedValue     bool     `json:"providedValue" bson:"providedValue"`
	AskedFollowUp     bool     `json:"askedFollowUp" bson:"askedFollowUp"`
	Techniques        []string `json:"techniques" bson:"techniques"`
	Feedback          string   `json:"feedback" bson:"feedback"`
	Improvements      []string `json:"improvements" bson:"improvements"`
}

// Client next actions after an objection response
const (
	ActionAccept   = "accept"
	ActionSoften   = "soften"
	ActionMaintain = "maintain"
	ActionEscalate = "escalate"
)

// ClientReaction maps an evaluation plus persona archetype to the client's
// next disposition. Ephemeral, computed per trainee turn.
type ClientReaction struct {
	NewSentiment      string `json:"newSentiment"`
	ObjectionResolved bool   `json:"objectionResolved"`
	NextAction        string `json:"nextAction"`
	ResponseGuidance  string `json:"responseGuidance"`
}

// SkillEvaluation is one named skill in the end-of-session report.
type SkillEvaluation struct {
	Score     int      `json:"score" bson:"score"`
	Reasoning string   `json:"reasoning" bson:"reasoning"`
	Evidence  []string `json:"evidence" bson:"evidence"`
	Tips      []string `json:"tips" bson:"tips"`
}

// ConversationMetrics are deterministic counters derived from the transcript.
type ConversationMetrics struct {
	TalkTimeRatio             float64 `json:"talkTimeRatio" bson:"talkTimeRatio"`
	AverageResponseLength     float64 `json:"averageResponseLength" bson:"averageResponseLength"`
	QuestionsAsked            int     `json:"questionsAsked" bson:"questionsAsked"`
	EmpathyStatements         int     `json:"empathyStatements" bson:"empathyStatements"`
	ActiveListeningIndicators int     `json:"activeListeningIndicators" bson:"activeListeningIndicators"`
}

// Skill names used in the end-of-session report
const (
	SkillRapportBuilding      = "rapportBuilding"
	SkillDiscoveryQuestioning = "discoveryQuestioning"
	SkillValueCommunication   = "valueCommunication"
	SkillObjectionHandling    = "objectionHandling"
	SkillClosingTechnique     = "closingTechnique"
	SkillActiveListening      = "activeListening"
)

// SkillNames lists the six report skills in display order.
var SkillNames = []string{
	SkillRapportBuilding,
	SkillDiscoveryQuestioning,
	SkillValueCommunication,
	SkillObjectionHandling,
	SkillClosingTechnique,
	SkillActiveListening,
}

// EvaluationResult is the end-of-session multi-skill report, upserted by
// session id.
type EvaluationResult struct {
	ID               primitive.ObjectID         `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID        string                     `json:"sessionId" bson:"sessionId"`
	OverallScore     int                        `json:"overallScore" bson:"overallScore"`
	Grade            string                     `json:"grade" bson:"grade"`
	Summary          string                     `json:"summary" bson:"summary"`
	Skills           map[string]SkillEvaluation `json:"skills" bson:"skills"`
	Metrics          ConversationMetrics        `json:"conversationMetrics" bson:"conversationMetrics"`
	Highlights       []string                   `json:"highlights" bson:"highlights"`
	ImprovementAreas []string                   `json:"improvementAreas" bson:"improvementAreas"`
	Recommendations  []string                   `json:"recommendations" bson:"recommendations"`
	CreatedAt        time.Time                  `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt" bson:"updatedAt"`
}
