package services

import (
	"fmt"
	"math/rand"
	"strings"

	"pitchhub/models"
)

// Scenario types
const (
	ScenarioPriceNegotiation = "price_negotiation"
	ScenarioColdCall         = "cold_call"
	ScenarioProductDemo      = "product_demo"
	ScenarioContractRenewal  = "contract_renewal"
	ScenarioUpsell           = "upsell"
)

// Difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// difficultyArchetype maps difficulty to the default personality archetype.
var difficultyArchetype = map[string]string{
	DifficultyEasy:   models.PersonalityFriendly,
	DifficultyMedium: models.PersonalityAnalytical,
	DifficultyHard:   models.PersonalityDemanding,
}

// scenarioArchetypeOverride wins over the difficulty default when present.
var scenarioArchetypeOverride = map[string]map[string]string{
	ScenarioColdCall: {
		DifficultyMedium: models.PersonalitySkeptical,
		DifficultyHard:   models.PersonalitySkeptical,
	},
	ScenarioContractRenewal: {
		DifficultyMedium: models.PersonalityIndecisive,
	},
}

var personaNames = []string{
	"Jordan Blake", "Priya Raman", "Marcus Webb", "Elena Vasquez",
	"Sam Okafor", "Dana Kowalski", "Ravi Mehta", "Grace Lindqvist",
}

var scenarioBackgrounds = map[string][]string{
	ScenarioPriceNegotiation: {
		"Operations director at a mid-size logistics firm comparing two vendor quotes",
		"Procurement lead for a retail chain under pressure to cut vendor spend",
	},
	ScenarioColdCall: {
		"Busy founder of a 20-person startup who did not expect this call",
		"IT manager fielding the third vendor call this week",
	},
	ScenarioProductDemo: {
		"Team lead evaluating tools for a quarterly rollout",
		"Analyst assembling a shortlist for an internal committee",
	},
	ScenarioContractRenewal: {
		"Long-time customer whose usage dropped last quarter",
		"Finance manager reviewing every renewal line item this year",
	},
	ScenarioUpsell: {
		"Happy customer on the starter plan with a growing team",
		"Power user who has hit the limits of the current tier",
	},
}

var difficultyBudgets = map[string][]string{
	DifficultyEasy:   {"$10,000–$15,000 per year, some flexibility", "around $1,200 per month, negotiable"},
	DifficultyMedium: {"$8,000 per year, approved by finance", "$700 per month, capped this quarter"},
	DifficultyHard:   {"$5,000 per year, already committed elsewhere", "under $500 per month, non-negotiable"},
}

var personalityMotivations = map[string][]string{
	models.PersonalityFriendly:   {"Wants a tool the team will actually enjoy", "Values a vendor relationship over raw features"},
	models.PersonalitySkeptical:  {"Burned by a vendor that overpromised last year", "Needs proof before budget conversations"},
	models.PersonalityDemanding:  {"Expects enterprise-grade service at a discount", "Measures vendors on response time alone"},
	models.PersonalityIndecisive: {"Afraid of championing the wrong choice internally", "Wants consensus before committing"},
	models.PersonalityAnalytical: {"Builds a comparison spreadsheet for every purchase", "Wants quantified ROI before signing"},
}

var scenarioObjections = map[string][]string{
	ScenarioPriceNegotiation: {"Your competitor quoted 30% less", "This is above the budget we set"},
	ScenarioColdCall:         {"We already have a solution in place", "I don't take vendor calls"},
	ScenarioProductDemo:      {"The interface looks complicated", "Migration sounds painful"},
	ScenarioContractRenewal:  {"We barely used it last quarter", "The renewal price went up again"},
	ScenarioUpsell:           {"The current plan works fine for us", "More seats means more budget approvals"},
}

var personalityHiddenConcerns = map[string][]string{
	models.PersonalityFriendly:   {"Worried about looking naive in front of the CFO"},
	models.PersonalitySkeptical:  {"Secretly under pressure to find a replacement fast"},
	models.PersonalityDemanding:  {"Their own boss is squeezing the department budget"},
	models.PersonalityIndecisive: {"A previous purchase they championed failed publicly"},
	models.PersonalityAnalytical: {"Doesn't fully trust their own usage projections"},
}

// GeneratePersona builds a deterministic client persona from scenario type and
// difficulty. It never fails: unknown inputs fall back to generic templates,
// and the custom config shallow-overrides generated fields.
func GeneratePersona(scenarioType, difficulty string, custom *models.PersonaConfig, rng *rand.Rand) models.ClientPersona {
	personality, ok := difficultyArchetype[difficulty]
	if !ok {
		personality = models.PersonalityFriendly
	}
	if overrides, ok := scenarioArchetypeOverride[scenarioType]; ok {
		if p, ok := overrides[difficulty]; ok {
			personality = p
		}
	}

	backgrounds := scenarioBackgrounds[scenarioType]
	if len(backgrounds) == 0 {
		backgrounds = []string{"Decision maker at a mid-size company evaluating a purchase"}
	}
	budgets := difficultyBudgets[difficulty]
	if len(budgets) == 0 {
		budgets = []string{"budget not yet disclosed"}
	}
	objections := scenarioObjections[scenarioType]
	if len(objections) == 0 {
		objections = []string{"I'm not sure this is worth the cost"}
	}

	persona := models.ClientPersona{
		Name:           personaNames[rng.Intn(len(personaNames))],
		Background:     backgrounds[rng.Intn(len(backgrounds))],
		Personality:    personality,
		Budget:         budgets[rng.Intn(len(budgets))],
		Motivations:    append([]string(nil), personalityMotivations[personality]...),
		Objections:     append([]string(nil), objections...),
		HiddenConcerns: append([]string(nil), personalityHiddenConcerns[personality]...),
	}

	if custom != nil {
		applyPersonaOverrides(&persona, custom)
	}
	return persona
}

func applyPersonaOverrides(persona *models.ClientPersona, custom *models.PersonaConfig) {
	if custom.Name != "" {
		persona.Name = custom.Name
	}
	if custom.Background != "" {
		persona.Background = custom.Background
	}
	if custom.Personality != "" {
		persona.Personality = custom.Personality
	}
	if custom.Budget != "" {
		persona.Budget = custom.Budget
	}
	if len(custom.Motivations) > 0 {
		persona.Motivations = custom.Motivations
	}
	if len(custom.Objections) > 0 {
		persona.Objections = custom.Objections
	}
	if len(custom.HiddenConcerns) > 0 {
		persona.HiddenConcerns = custom.HiddenConcerns
	}
}

var scenarioGreetings = map[string][]string{
	ScenarioPriceNegotiation: {
		"Thanks for making time. Before we go further, I'll be upfront: the pricing you sent is the main thing we need to talk about.",
		"Good to see you again. We've reviewed the proposal and I have some real concerns about the numbers.",
	},
	ScenarioColdCall: {
		"Hello? Sorry, who is this? I have about two minutes before my next meeting.",
		"This is %s. I wasn't expecting a call — what is this regarding?",
	},
	ScenarioProductDemo: {
		"Hi, thanks for setting this up. I've got the team's requirements list here, so show me what you've got.",
		"Morning. I'll be honest, we're looking at three tools this week, so make this one count.",
	},
	ScenarioContractRenewal: {
		"Hi. So, our renewal is coming up and I'll be honest — we've been debating whether to continue at all.",
		"Thanks for reaching out before the renewal date. There are a few things bothering us.",
	},
	ScenarioUpsell: {
		"Hey, good to hear from you. Things are going fine with the product, so I'm curious what this call is about.",
		"Hi there. We're pretty happy on our current plan, just so you know where we stand.",
	},
}

// GenerateInitialMessage produces the client's opening line for turn 0.
// Template-driven, no model call.
func GenerateInitialMessage(persona models.ClientPersona, scenarioType string, rng *rand.Rand) string {
	greetings := scenarioGreetings[scenarioType]
	if len(greetings) == 0 {
		greetings = []string{"Hello, I'm %s. Let's hear what you're offering."}
	}

	greeting := greetings[rng.Intn(len(greetings))]
	if strings.Contains(greeting, "%s") {
		greeting = fmt.Sprintf(greeting, persona.Name)
	}

	switch persona.Personality {
	case models.PersonalityDemanding:
		greeting += " And please, no scripted pitch — I don't have patience for it today."
	case models.PersonalityAnalytical:
		greeting += " I'd appreciate specifics and numbers rather than generalities."
	case models.PersonalityIndecisive:
		greeting += " Though honestly, I'm still not sure we should even be having this conversation."
	}
	return greeting
}

// ScenarioTips returns static coaching tips surfaced when a session starts.
func ScenarioTips(scenarioType string) []string {
	switch scenarioType {
	case ScenarioPriceNegotiation:
		return []string{
			"Anchor on value delivered before discussing discounts.",
			"Ask what the comparison quote actually includes.",
		}
	case ScenarioColdCall:
		return []string{
			"Earn the next thirty seconds, not the sale.",
			"Lead with a relevant trigger, not your product name.",
		}
	case ScenarioProductDemo:
		return []string{
			"Demo their workflow, not your feature list.",
			"Check in with a question after each capability you show.",
		}
	case ScenarioContractRenewal:
		return []string{
			"Quantify the value delivered since the last renewal.",
			"Surface usage concerns yourself before the client does.",
		}
	case ScenarioUpsell:
		return []string{
			"Tie the upgrade to a pain the client already voiced.",
			"Let usage data make the argument for you.",
		}
	default:
		return []string{"Listen more than you talk, and ask open questions."}
	}
}

// EstimatedDurationMinutes is the expected session length per difficulty.
func EstimatedDurationMinutes(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 10
	case DifficultyMedium:
		return 15
	case DifficultyHard:
		return 20
	default:
		return 15
	}
}
