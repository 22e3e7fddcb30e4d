package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Speakers
const (
	SpeakerTrainee = "trainee"
	SpeakerClient  = "client"
)

// Sentiments
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Session statuses
const (
	StatusCreated    = "created"
	StatusReady      = "ready"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Session outcomes
const (
	OutcomeDealClosed        = "deal_closed"
	OutcomeFollowUpScheduled = "follow_up_scheduled"
	OutcomeClientInterested  = "client_interested"
	OutcomeClientUndecided   = "client_undecided"
	OutcomeClientDeclined    = "client_declined"
)

// ConversationTurn is one message from either side, numbered sequentially
// starting with the client's opening line at turn 0.
type ConversationTurn struct {
	Speaker        string    `json:"speaker" bson:"speaker"`
	Message        string    `json:"message" bson:"message"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	Sentiment      string    `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
	DetectedIntent string    `json:"detectedIntent,omitempty" bson:"detectedIntent,omitempty"`
	TurnNumber     int       `json:"turnNumber" bson:"turnNumber"`
}

// SessionMetrics is the JSON blob persisted on the session record.
type SessionMetrics struct {
	TurnCount          int `json:"turnCount" bson:"turnCount"`
	TotalObjections    int `json:"totalObjections" bson:"totalObjections"`
	ResolvedObjections int `json:"resolvedObjections" bson:"resolvedObjections"`
	PreliminaryScore   int `json:"preliminaryScore" bson:"preliminaryScore"`
	AIScore            int `json:"aiScore" bson:"aiScore"`
}

// Session is a persisted simulation session. Conversation turns are embedded
// in the document and appended with $push.
type Session struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TraineeID         string             `json:"traineeId" bson:"traineeId"`
	ScenarioType      string             `json:"scenarioType" bson:"scenarioType"`
	DifficultyLevel   string             `json:"difficultyLevel" bson:"difficultyLevel"`
	Status            string             `json:"status" bson:"status"`
	ClientPersona     ClientPersona      `json:"clientPersona" bson:"clientPersona"`
	ConversationTurns []ConversationTurn `json:"conversationTurns" bson:"conversationTurns"`
	StartedAt         time.Time          `json:"startedAt" bson:"startedAt"`
	CompletedAt       time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	DurationSeconds   int                `json:"durationSeconds" bson:"durationSeconds"`
	Outcome           string             `json:"outcome,omitempty" bson:"outcome,omitempty"`
	Metrics           SessionMetrics     `json:"metrics" bson:"metrics"`
}
