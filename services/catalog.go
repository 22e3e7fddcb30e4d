package services

import (
	"context"
	"log"

	"pitchhub/db"
	"pitchhub/models"

	"github.com/google/uuid"
)

// objectionPoolSize caps the pool generated for a session.
var objectionPoolSize = map[string]int{
	DifficultyEasy:   2,
	DifficultyMedium: 3,
	DifficultyHard:   5,
}

// difficultySeverity maps difficulty to the severity of default objections.
var difficultySeverity = map[string]string{
	DifficultyEasy:   models.SeveritySoft,
	DifficultyMedium: models.SeverityModerate,
	DifficultyHard:   models.SeverityStrong,
}

type objectionTemplate struct {
	category       string
	coreContent    string
	variations     []string
	triggers       []string
	idealResponses []string
	commonMistakes []string
}

// defaultObjectionTemplates back the catalog when the collection is empty or
// unreachable. Ordered by how early in a conversation they tend to surface.
var defaultObjectionTemplates = map[string][]objectionTemplate{
	ScenarioPriceNegotiation: {
		{
			category:       models.CategoryPrice,
			coreContent:    "Your price is significantly higher than the quote we have from your competitor.",
			variations:     []string{"We've seen the same thing for 30% less.", "Honestly, the number you sent made us wince."},
			triggers:       []string{"pricing discussed", "proposal reviewed"},
			idealResponses: []string{"Acknowledge the gap, then unpack what each quote includes.", "Reframe around total cost of ownership."},
			commonMistakes: []string{"Dropping the price immediately", "Criticizing the competitor"},
		},
		{
			category:       models.CategoryBudget,
			coreContent:    "This simply isn't in the budget we approved for this year.",
			variations:     []string{"Finance signed off on a much smaller number.", "We'd have to go back to the board for this."},
			triggers:       []string{"budget mentioned"},
			idealResponses: []string{"Explore phased rollout options that fit the approved number.", "Ask what outcome would justify reopening the budget."},
			commonMistakes: []string{"Treating the budget as fixed forever", "Pushing for a decision anyway"},
		},
		{
			category:       models.CategoryTiming,
			coreContent:    "Even if the price worked, this is the wrong quarter for us to take this on.",
			variations:     []string{"Come back after our fiscal year closes.", "We're mid-reorg; nothing new gets signed."},
			triggers:       []string{"timeline discussed"},
			idealResponses: []string{"Quantify the cost of waiting a quarter.", "Offer a start date aligned to their calendar."},
			commonMistakes: []string{"Creating false urgency", "Accepting the delay without a next step"},
		},
		{
			category:       models.CategoryTrust,
			coreContent:    "We've been burned before by vendors who promised exactly what you're promising.",
			variations:     []string{"Your references all say the same rehearsed things.", "How do I know the discount doesn't mean corners were cut?"},
			triggers:       []string{"guarantees requested"},
			idealResponses: []string{"Offer a reference in their industry and a pilot with exit terms.", "Name a deal you walked away from and why."},
			commonMistakes: []string{"Over-promising again", "Getting defensive"},
		},
		{
			category:       models.CategoryCompetition,
			coreContent:    "The competitor is throwing in onboarding and support for free.",
			variations:     []string{"Their bundle makes your quote look thin.", "Why shouldn't we just take their offer?"},
			triggers:       []string{"competitor named"},
			idealResponses: []string{"Compare bundles line by line on outcomes, not items.", "Ask which parts of the bundle they'd actually use."},
			commonMistakes: []string{"Matching the freebies reflexively", "Dismissing the competitor's offer"},
		},
	},
	ScenarioColdCall: {
		{
			category:       models.CategoryTiming,
			coreContent:    "You've caught me at a terrible time; I have back-to-back meetings all day.",
			variations:     []string{"I really only have a minute.", "Can you just email me something?"},
			triggers:       []string{"call opened"},
			idealResponses: []string{"Respect the constraint and ask for a scheduled slot.", "Deliver one relevant sentence, then propose a follow-up."},
			commonMistakes: []string{"Launching into the pitch anyway", "Asking 'is now a bad time?' and ignoring the answer"},
		},
		{
			category:       models.CategoryTrust,
			coreContent:    "I don't buy anything from people who call me out of the blue.",
			variations:     []string{"How did you even get this number?", "This feels like every other sales call."},
			triggers:       []string{"skepticism voiced"},
			idealResponses: []string{"Name the specific trigger that prompted the call.", "Offer proof relevant to their company, not a generic pitch."},
			commonMistakes: []string{"Reading from a script", "Ignoring the discomfort"},
		},
		{
			category:       models.CategoryCompetition,
			coreContent:    "We already use a competitor's product and switching would be a nightmare.",
			variations:     []string{"We just renewed with them.", "Migration alone would kill this idea."},
			triggers:       []string{"incumbent mentioned"},
			idealResponses: []string{"Ask what they'd change about the incumbent if they could.", "Position for the renewal window, not today."},
			commonMistakes: []string{"Trash-talking the incumbent", "Underselling switching costs"},
		},
		{
			category:       models.CategoryAuthority,
			coreContent:    "This isn't my decision anyway; procurement owns vendor selection.",
			variations:     []string{"You'd have to talk to someone else.", "I just use the tools, I don't pick them."},
			triggers:       []string{"decision process probed"},
			idealResponses: []string{"Ask for an introduction while keeping them engaged as a champion.", "Learn the decision process before pushing."},
			commonMistakes: []string{"Dismissing the contact as unimportant", "Asking for the boss immediately"},
		},
		{
			category:       models.CategoryFeatureQuality,
			coreContent:    "Products like yours always look great in the demo and fall apart in production.",
			variations:     []string{"Everyone claims 99.9% uptime.", "The demo environment is never the real thing."},
			triggers:       []string{"capabilities claimed"},
			idealResponses: []string{"Offer production references and real SLAs.", "Invite them to test against their own data."},
			commonMistakes: []string{"Piling on more claims", "Offering a canned demo as proof"},
		},
	},
	ScenarioProductDemo: {
		{
			category:       models.CategoryFeatureQuality,
			coreContent:    "The interface looks more complicated than what my team uses today.",
			variations:     []string{"My least technical people will hate this.", "That's a lot of menus for a simple task."},
			triggers:       []string{"UI shown"},
			idealResponses: []string{"Show the shortest path through their actual workflow.", "Acknowledge the learning curve and quantify ramp time."},
			commonMistakes: []string{"Showing more features to compensate", "Calling it intuitive instead of proving it"},
		},
		{
			category:       models.CategoryTiming,
			coreContent:    "Migrating our data and retraining the team would eat a whole quarter.",
			variations:     []string{"We can't freeze work for a migration.", "Who does the import, us or you?"},
			triggers:       []string{"migration discussed"},
			idealResponses: []string{"Walk through the migration plan with owner and timeline.", "Offer a parallel-run period."},
			commonMistakes: []string{"Hand-waving the migration", "Promising an unrealistic timeline"},
		},
		{
			category:       models.CategoryPrice,
			coreContent:    "For this price I'd expect all of those add-ons to be included.",
			variations:     []string{"The per-seat math gets ugly at our size.", "Why is the good stuff always an add-on?"},
			triggers:       []string{"pricing shown"},
			idealResponses: []string{"Map add-ons to the requirements they actually named.", "Show the bundle price for their real usage."},
			commonMistakes: []string{"Apologizing for the pricing model", "Hiding the total cost"},
		},
		{
			category:       models.CategoryTrust,
			coreContent:    "Demos are always perfect; how does this behave with our messy real data?",
			variations:     []string{"Seed data proves nothing.", "Show me an edge case failing gracefully."},
			triggers:       []string{"demo data questioned"},
			idealResponses: []string{"Offer a sandbox loaded with their sample data.", "Show error handling honestly."},
			commonMistakes: []string{"Staying on the happy path", "Dismissing the concern as rare"},
		},
		{
			category:       models.CategoryCompetition,
			coreContent:    "The tool we saw yesterday does this same thing with fewer clicks.",
			variations:     []string{"Their version of this screen was cleaner.", "What do you do that they don't?"},
			triggers:       []string{"comparison raised"},
			idealResponses: []string{"Differentiate on their stated priorities, not click counts.", "Ask which workflow mattered most in yesterday's demo."},
			commonMistakes: []string{"Click-count arguments", "Guessing at the competitor's weaknesses"},
		},
	},
	ScenarioContractRenewal: {
		{
			category:       models.CategoryPrice,
			coreContent:    "The renewal quote is higher than last year and we used the product less.",
			variations:     []string{"Usage went down, price went up. Explain that.", "A price increase this year is a non-starter."},
			triggers:       []string{"renewal quote sent"},
			idealResponses: []string{"Tie the increase to delivered improvements and offer right-sizing.", "Lead with a usage review, not a defense of the number."},
			commonMistakes: []string{"Blaming company-wide pricing policy", "Conceding a discount before understanding usage"},
		},
		{
			category:       models.CategoryFeatureQuality,
			coreContent:    "Half the features we pay for never get used by anyone on the team.",
			variations:     []string{"We're paying for shelf-ware.", "The team only uses two screens."},
			triggers:       []string{"usage reviewed"},
			idealResponses: []string{"Propose a plan matched to observed usage plus enablement for the rest.", "Ask which outcomes the unused features were bought for."},
			commonMistakes: []string{"Selling more features as the fix", "Disputing their usage numbers"},
		},
		{
			category:       models.CategoryCompetition,
			coreContent:    "A competitor has been courting us with an aggressive switch-over package.",
			variations:     []string{"They'll do the migration for free.", "Their offer expires before our renewal date."},
			triggers:       []string{"competitor offer mentioned"},
			idealResponses: []string{"Quantify switching costs honestly and restate delivered value.", "Ask what the competitor pitch got right about their needs."},
			commonMistakes: []string{"Panicking into a discount", "Claiming switching is impossible"},
		},
		{
			category:       models.CategoryAuthority,
			coreContent:    "Finance now reviews every renewal and they only look at the invoice total.",
			variations:     []string{"I like the product but I don't sign the check anymore.", "You'll need a business case finance will read."},
			triggers:       []string{"approval process changed"},
			idealResponses: []string{"Arm the champion with a one-page value summary.", "Offer to present to finance directly."},
			commonMistakes: []string{"Leaning only on the champion's goodwill", "Sending a feature list as the business case"},
		},
		{
			category:       models.CategoryTiming,
			coreContent:    "Let's just do a short extension and decide properly next quarter.",
			variations:     []string{"Three months, same terms, then we talk.", "We need breathing room before a multi-year deal."},
			triggers:       []string{"extension floated"},
			idealResponses: []string{"Agree to a bridge only with a concrete evaluation plan attached.", "Surface what would make next quarter's decision easier."},
			commonMistakes: []string{"Refusing any flexibility", "Granting the extension with no commitments"},
		},
	},
	ScenarioUpsell: {
		{
			category:       models.CategoryBudget,
			coreContent:    "The current plan fits our budget; an upgrade means a new approval cycle.",
			variations:     []string{"Any increase goes to committee.", "We just closed this year's budget."},
			triggers:       []string{"upgrade proposed"},
			idealResponses: []string{"Size the upgrade against the cost it removes.", "Time the proposal to their budget calendar."},
			commonMistakes: []string{"Ignoring the approval friction", "Discounting before value is established"},
		},
		{
			category:       models.CategoryFeatureQuality,
			coreContent:    "We don't feel any pain on the current tier, so why upgrade?",
			variations:     []string{"What we have works.", "Sell me on a problem I actually have."},
			triggers:       []string{"satisfaction stated"},
			idealResponses: []string{"Surface the limits they'll hit from their own growth data.", "Anchor on a goal they've stated, not a feature."},
			commonMistakes: []string{"Feature-dumping the higher tier", "Manufacturing pain"},
		},
		{
			category:       models.CategoryTiming,
			coreContent:    "Maybe next year, once the new hires have settled in.",
			variations:     []string{"This quarter is about stabilizing.", "Ask me again after onboarding season."},
			triggers:       []string{"deferral suggested"},
			idealResponses: []string{"Connect the upgrade to making onboarding easier now.", "Propose a trial of the higher tier during the busy period."},
			commonMistakes: []string{"Pushing against a reasonable delay", "Leaving without a dated follow-up"},
		},
		{
			category:       models.CategoryTrust,
			coreContent:    "Last time we upgraded a vendor plan, the promised benefits never showed up.",
			variations:     []string{"Upgrades always sound better than they land.", "Who measures whether this pays off?"},
			triggers:       []string{"past upgrade mentioned"},
			idealResponses: []string{"Define success metrics and a review date before the upgrade.", "Offer a rollback path."},
			commonMistakes: []string{"Promising without a measurement plan", "Dismissing the previous experience"},
		},
		{
			category:       models.CategoryPrice,
			coreContent:    "The per-seat jump between tiers feels designed to squeeze growing teams.",
			variations:     []string{"Growth shouldn't be punished.", "The math stops working at our headcount."},
			triggers:       []string{"tier pricing discussed"},
			idealResponses: []string{"Show the unit economics at their projected size.", "Explore annual commitment pricing."},
			commonMistakes: []string{"Defending the pricing page", "Conceding the framing"},
		},
	},
}

// DefaultObjectionsFor materializes the built-in templates for a scenario,
// stamped with fresh ids and a difficulty-appropriate severity.
func DefaultObjectionsFor(scenarioType, difficulty string) []models.GeneratedObjection {
	templates := defaultObjectionTemplates[scenarioType]
	if len(templates) == 0 {
		templates = defaultObjectionTemplates[ScenarioPriceNegotiation]
	}

	severity, ok := difficultySeverity[difficulty]
	if !ok {
		severity = models.SeverityModerate
	}

	objections := make([]models.GeneratedObjection, 0, len(templates))
	for _, t := range templates {
		objections = append(objections, models.GeneratedObjection{
			ID:                uuid.NewString(),
			ScenarioType:      scenarioType,
			Category:          t.category,
			Severity:          severity,
			CoreContent:       t.coreContent,
			Variations:        append([]string(nil), t.variations...),
			TriggerConditions: append([]string(nil), t.triggers...),
			IdealResponses:    append([]string(nil), t.idealResponses...),
			CommonMistakes:    append([]string(nil), t.commonMistakes...),
		})
	}
	return objections
}

// GenerateObjections builds the session's objection pool: catalog entries for
// the scenario when available, built-in defaults otherwise, capped by
// difficulty. Total: catalog failures degrade to defaults, never to an error.
func GenerateObjections(ctx context.Context, scenarioType, difficulty string) []models.GeneratedObjection {
	var pool []models.GeneratedObjection

	if db.ObjectionCollection != nil {
		templates, err := db.FindObjectionTemplates(ctx, scenarioType)
		if err != nil {
			log.Printf("objection catalog lookup failed, using defaults: %v", err)
		} else {
			pool = templates
		}
	}
	if len(pool) == 0 {
		pool = DefaultObjectionsFor(scenarioType, difficulty)
	}

	for i := range pool {
		if pool[i].ID == "" {
			pool[i].ID = uuid.NewString()
		}
	}

	limit, ok := objectionPoolSize[difficulty]
	if !ok {
		limit = objectionPoolSize[DifficultyMedium]
	}
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// AllDefaultObjections returns the built-in templates for every scenario,
// used to seed the catalog collection.
func AllDefaultObjections() []models.GeneratedObjection {
	scenarios := []string{
		ScenarioPriceNegotiation,
		ScenarioColdCall,
		ScenarioProductDemo,
		ScenarioContractRenewal,
		ScenarioUpsell,
	}
	var all []models.GeneratedObjection
	for _, s := range scenarios {
		all = append(all, DefaultObjectionsFor(s, DifficultyMedium)...)
	}
	return all
}
