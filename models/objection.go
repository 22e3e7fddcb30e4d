package models

// Objection categories (closed taxonomy)
const (
	CategoryPrice          = "price"
	CategoryBudget         = "budget"
	CategoryTiming         = "timing"
	CategoryTrust          = "trust"
	CategoryCompetition    = "competition"
	CategoryFeatureQuality = "feature_quality"
	CategoryAuthority      = "authority"
)

// Objection severities
const (
	SeveritySoft     = "soft"
	SeverityModerate = "moderate"
	SeverityStrong   = "strong"
)

// GeneratedObjection is a scripted client pushback, sourced from the catalog
// collection or from the built-in defaults. Read-only once produced.
type GeneratedObjection struct {
	ID                string   `json:"id" bson:"id"`
	ScenarioType      string   `json:"scenarioType" bson:"scenarioType"`
	Category          string   `json:"category" bson:"category"`
	Severity          string   `json:"severity" bson:"severity"`
	CoreContent       string   `json:"coreContent" bson:"coreContent"`
	Variations        []string `json:"variations" bson:"variations"`
	TriggerConditions []string `json:"triggerConditions" bson:"triggerConditions"`
	IdealResponses    []string `json:"idealResponses" bson:"idealResponses"`
	CommonMistakes    []string `json:"commonMistakes" bson:"commonMistakes"`
}

// RaisedObjection is a ledger entry: an objection that was surfaced to the
// trainee at a given turn. Each evaluated trainee attempt overwrites the
// response and evaluation; once Resolved is set the entry is final.
type RaisedObjection struct {
	Objection       GeneratedObjection           `json:"objection" bson:"objection"`
	RaisedAtTurn    int                          `json:"raisedAtTurn" bson:"raisedAtTurn"`
	TraineeResponse string                       `json:"traineeResponse,omitempty" bson:"traineeResponse,omitempty"`
	Evaluation      *ObjectionHandlingEvaluation `json:"evaluation,omitempty" bson:"evaluation,omitempty"`
	Resolved        bool                         `json:"resolved" bson:"resolved"`
}

// Injection timings
const (
	TimingImmediate = "immediate"
	TimingDeferred  = "deferred"
)

// ObjectionDecision is the outcome of one pass through the injection policy.
type ObjectionDecision struct {
	ShouldInject bool                `json:"shouldInject"`
	Objection    *GeneratedObjection `json:"objection,omitempty"`
	Reason       string              `json:"reason"`
	Timing       string              `json:"timing"`
}
