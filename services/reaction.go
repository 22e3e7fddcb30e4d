package services

import (
	"math/rand"

	"pitchhub/models"
)

// DetermineClientReaction maps an objection-handling evaluation plus the
// persona archetype to the client's next disposition. The score bands give a
// base reaction; the personality pass then bends it in character.
func DetermineClientReaction(evaluation models.ObjectionHandlingEvaluation, persona models.ClientPersona, rng *rand.Rand) models.ClientReaction {
	reaction := baseReaction(evaluation, persona)
	applyPersonalityPass(&reaction, persona, rng)
	reaction.ResponseGuidance = responseGuidance(reaction.NextAction)
	return reaction
}

func baseReaction(evaluation models.ObjectionHandlingEvaluation, persona models.ClientPersona) models.ClientReaction {
	switch {
	case evaluation.Score >= 80:
		return models.ClientReaction{
			NewSentiment:      models.SentimentPositive,
			ObjectionResolved: true,
			NextAction:        models.ActionAccept,
		}
	case evaluation.Score >= 60:
		return models.ClientReaction{
			NewSentiment:      models.SentimentNeutral,
			ObjectionResolved: evaluation.EmpathyShown && evaluation.AddressedDirectly,
			NextAction:        models.ActionSoften,
		}
	case evaluation.Score >= 40:
		return models.ClientReaction{
			NewSentiment:      models.SentimentNeutral,
			ObjectionResolved: false,
			NextAction:        models.ActionMaintain,
		}
	default:
		next := models.ActionMaintain
		if persona.Personality == models.PersonalityDemanding {
			next = models.ActionEscalate
		}
		return models.ClientReaction{
			NewSentiment:      models.SentimentNegative,
			ObjectionResolved: false,
			NextAction:        next,
		}
	}
}

// applyPersonalityPass adjusts the base reaction in character. Probabilistic
// bends draw from the injected rng so tests can pin them.
func applyPersonalityPass(reaction *models.ClientReaction, persona models.ClientPersona, rng *rand.Rand) {
	switch persona.Personality {
	case models.PersonalityFriendly:
		if reaction.NextAction == models.ActionMaintain {
			reaction.NextAction = models.ActionSoften
		}
	case models.PersonalitySkeptical:
		if reaction.NextAction == models.ActionAccept {
			reaction.NextAction = models.ActionSoften
		}
	case models.PersonalityDemanding:
		if reaction.NextAction == models.ActionMaintain && rng.Float64() < 0.5 {
			reaction.NextAction = models.ActionEscalate
			reaction.NewSentiment = models.SentimentNegative
		}
	case models.PersonalityIndecisive:
		if reaction.NextAction == models.ActionAccept && rng.Float64() < 0.3 {
			reaction.ObjectionResolved = false
		}
	case models.PersonalityAnalytical:
		if reaction.NextAction == models.ActionSoften && !reaction.ObjectionResolved {
			reaction.NextAction = models.ActionMaintain
		}
	}
}

func responseGuidance(nextAction string) string {
	switch nextAction {
	case models.ActionAccept:
		return "The client is satisfied. Accept the point warmly and move the conversation forward."
	case models.ActionSoften:
		return "The client is partially convinced. Stay hesitant but acknowledge the good points made."
	case models.ActionMaintain:
		return "The client is unconvinced. Restate the concern firmly but politely."
	case models.ActionEscalate:
		return "The client is frustrated. Push back harder and question whether this is going anywhere."
	default:
		return "Continue the conversation naturally in character."
	}
}
