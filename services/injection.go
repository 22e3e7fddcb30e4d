package services

import (
	"fmt"
	"math/rand"
	"strings"

	"pitchhub/models"
)

// maxUnresolvedObjections caps how many raised objections may be open at once.
const maxUnresolvedObjections = 2

// injectionCooldown is the minimum turn gap between raised objections.
var injectionCooldown = map[string]int{
	DifficultyEasy:   4,
	DifficultyMedium: 3,
	DifficultyHard:   2,
}

// baseInjectionProbability per difficulty.
var baseInjectionProbability = map[string]float64{
	DifficultyEasy:   0.10,
	DifficultyMedium: 0.20,
	DifficultyHard:   0.35,
}

// InjectionContext is everything the policy looks at for one decision.
type InjectionContext struct {
	Phase              string
	Difficulty         string
	CurrentTurn        int
	LastObjectionTurn  int // -1 when nothing has been raised yet
	UnresolvedCount    int
	Pending            []models.GeneratedObjection
	LastTraineeMessage string
}

// MinGap returns the cooldown for a difficulty.
func MinGap(difficulty string) int {
	if gap, ok := injectionCooldown[difficulty]; ok {
		return gap
	}
	return injectionCooldown[DifficultyMedium]
}

// ShouldInjectObjection decides, for one trainee turn, whether to surface a
// pending objection. Total: every path yields a decision, never an error.
func ShouldInjectObjection(ctx InjectionContext, rng *rand.Rand) models.ObjectionDecision {
	if ctx.Phase == PhaseOpening || ctx.Phase == PhaseEnded {
		return models.ObjectionDecision{
			Reason: fmt.Sprintf("no injection during %s phase", ctx.Phase),
			Timing: models.TimingDeferred,
		}
	}

	if ctx.UnresolvedCount >= maxUnresolvedObjections {
		return models.ObjectionDecision{
			Reason: fmt.Sprintf("%d objections already unresolved", ctx.UnresolvedCount),
			Timing: models.TimingDeferred,
		}
	}

	if ctx.LastObjectionTurn >= 0 && ctx.CurrentTurn-ctx.LastObjectionTurn < MinGap(ctx.Difficulty) {
		return models.ObjectionDecision{
			Reason: "cooldown since last objection not elapsed",
			Timing: models.TimingDeferred,
		}
	}

	if len(ctx.Pending) == 0 {
		return models.ObjectionDecision{
			Reason: "objection pool exhausted",
			Timing: models.TimingDeferred,
		}
	}

	p := injectionProbability(ctx)
	if rng.Float64() >= p {
		return models.ObjectionDecision{
			Reason: fmt.Sprintf("probabilistic draw declined (p=%.2f)", p),
			Timing: models.TimingDeferred,
		}
	}

	selected := selectObjection(ctx, rng)
	return models.ObjectionDecision{
		ShouldInject: true,
		Objection:    &selected,
		Reason:       fmt.Sprintf("injecting %s objection (p=%.2f)", selected.Category, p),
		Timing:       models.TimingImmediate,
	}
}

// injectionProbability computes the clamped draw threshold for the context.
func injectionProbability(ctx InjectionContext) float64 {
	p, ok := baseInjectionProbability[ctx.Difficulty]
	if !ok {
		p = baseInjectionProbability[DifficultyMedium]
	}
	if ctx.Phase == PhaseNegotiating {
		p += 0.15
	}
	p -= 0.10 * float64(ctx.UnresolvedCount)

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// selectObjection scores each pending objection and picks the best, first
// entry winning ties.
func selectObjection(ctx InjectionContext, rng *rand.Rand) models.GeneratedObjection {
	lastMessage := strings.ToLower(ctx.LastTraineeMessage)

	best := 0
	bestScore := -1.0
	for i, obj := range ctx.Pending {
		score := 50.0
		if ctx.Phase == PhaseNegotiating && (obj.Category == models.CategoryPrice || obj.Category == models.CategoryBudget) {
			score += 20
		}
		if ctx.Phase == PhasePresenting && obj.Category == models.CategoryFeatureQuality {
			score += 15
		}
		if strings.Contains(lastMessage, "price") {
			score += 10
		}
		score += rng.Float64() * 10

		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return ctx.Pending[best]
}
