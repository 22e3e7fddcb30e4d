package models

// Personality archetypes for the simulated client
const (
	PersonalityFriendly   = "friendly"
	PersonalitySkeptical  = "skeptical"
	PersonalityDemanding  = "demanding"
	PersonalityIndecisive = "indecisive"
	PersonalityAnalytical = "analytical"
)

// ClientPersona is the simulated client's stable character profile for a
// session. Created once at session start and never mutated afterwards.
type ClientPersona struct {
	Name           string   `json:"name" bson:"name"`
	Background     string   `json:"background" bson:"background"`
	Personality    string   `json:"personality" bson:"personality"`
	Budget         string   `json:"budget" bson:"budget"`
	Motivations    []string `json:"motivations" bson:"motivations"`
	Objections     []string `json:"objections" bson:"objections"`
	HiddenConcerns []string `json:"hiddenConcerns" bson:"hiddenConcerns"`
}

// PersonaConfig carries optional per-session overrides. Zero-valued fields
// leave the generated persona untouched.
type PersonaConfig struct {
	Name           string   `json:"name"`
	Background     string   `json:"background"`
	Personality    string   `json:"personality"`
	Budget         string   `json:"budget"`
	Motivations    []string `json:"motivations"`
	Objections     []string `json:"objections"`
	HiddenConcerns []string `json:"hiddenConcerns"`
}
