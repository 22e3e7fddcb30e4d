package services

import (
	"math/rand"
	"testing"

	"pitchhub/models"
)

func testPool() []models.GeneratedObjection {
	return []models.GeneratedObjection{
		{ID: "obj-timing", Category: models.CategoryTiming, CoreContent: "Bad quarter for this."},
		{ID: "obj-price", Category: models.CategoryPrice, CoreContent: "Too expensive."},
		{ID: "obj-feature", Category: models.CategoryFeatureQuality, CoreContent: "Looks complicated."},
	}
}

func TestInjectionGates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Never inject during the opening phase
	d := ShouldInjectObjection(InjectionContext{
		Phase: PhaseOpening, Difficulty: DifficultyHard, CurrentTurn: 3,
		LastObjectionTurn: -1, Pending: testPool(),
	}, rng)
	if d.ShouldInject {
		t.Errorf("Expected no injection during opening phase")
	}

	// Never inject once the session has ended
	d = ShouldInjectObjection(InjectionContext{
		Phase: PhaseEnded, Difficulty: DifficultyHard, CurrentTurn: 30,
		LastObjectionTurn: -1, Pending: testPool(),
	}, rng)
	if d.ShouldInject {
		t.Errorf("Expected no injection during ended phase")
	}

	// Unresolved cap blocks injection
	d = ShouldInjectObjection(InjectionContext{
		Phase: PhaseNegotiating, Difficulty: DifficultyHard, CurrentTurn: 10,
		LastObjectionTurn: -1, UnresolvedCount: 2, Pending: testPool(),
	}, rng)
	if d.ShouldInject {
		t.Errorf("Expected no injection with 2 unresolved objections")
	}

	// Cooldown blocks injection: hard requires a gap of 2 turns
	d = ShouldInjectObjection(InjectionContext{
		Phase: PhaseNegotiating, Difficulty: DifficultyHard, CurrentTurn: 10,
		LastObjectionTurn: 9, Pending: testPool(),
	}, rng)
	if d.ShouldInject {
		t.Errorf("Expected no injection inside the cooldown window")
	}

	// Empty pool blocks injection
	d = ShouldInjectObjection(InjectionContext{
		Phase: PhaseNegotiating, Difficulty: DifficultyHard, CurrentTurn: 10,
		LastObjectionTurn: -1, Pending: nil,
	}, rng)
	if d.ShouldInject {
		t.Errorf("Expected no injection with empty pool")
	}
	if d.Reason == "" {
		t.Errorf("Expected a reason on every declined decision")
	}
}

func TestInjectionProbability(t *testing.T) {
	// Negotiating boosts the base, each unresolved objection suppresses it
	p := injectionProbability(InjectionContext{Phase: PhaseNegotiating, Difficulty: DifficultyHard})
	if p != 0.5 {
		t.Errorf("Expected p=0.5 for hard negotiating, got %.2f", p)
	}

	p = injectionProbability(InjectionContext{Phase: PhaseDiscovery, Difficulty: DifficultyEasy, UnresolvedCount: 1})
	if p != 0 {
		t.Errorf("Expected p clamped to 0, got %.2f", p)
	}

	// Unknown difficulty uses the medium base
	p = injectionProbability(InjectionContext{Phase: PhaseDiscovery, Difficulty: "unknown"})
	if p != 0.20 {
		t.Errorf("Expected medium base for unknown difficulty, got %.2f", p)
	}
}

func TestSelectObjectionPrefersPriceWhileNegotiating(t *testing.T) {
	// Price gets +20 in negotiating, more than the max jitter of 10, so it
	// must win over timing regardless of the draw.
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		selected := selectObjection(InjectionContext{
			Phase:   PhaseNegotiating,
			Pending: testPool(),
		}, rng)
		if selected.Category != models.CategoryPrice {
			t.Errorf("Seed %d: expected price objection while negotiating, got %s", seed, selected.Category)
		}
	}
}

func TestSelectObjectionPrefersFeatureWhilePresenting(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		selected := selectObjection(InjectionContext{
			Phase:   PhasePresenting,
			Pending: testPool(),
		}, rng)
		if selected.Category != models.CategoryFeatureQuality {
			t.Errorf("Seed %d: expected feature objection while presenting, got %s", seed, selected.Category)
		}
	}
}

func TestInjectionEventuallyFires(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	fired := false
	for i := 0; i < 200; i++ {
		d := ShouldInjectObjection(InjectionContext{
			Phase: PhaseNegotiating, Difficulty: DifficultyHard, CurrentTurn: 10,
			LastObjectionTurn: -1, Pending: testPool(),
		}, rng)
		if d.ShouldInject {
			fired = true
			if d.Objection == nil {
				t.Fatalf("Injecting decision carries no objection")
			}
			if d.Timing != models.TimingImmediate {
				t.Errorf("Expected immediate timing on injection, got %s", d.Timing)
			}
			break
		}
	}
	if !fired {
		t.Errorf("Expected at least one injection in 200 draws at p=0.5")
	}
}

func TestMinGap(t *testing.T) {
	if MinGap(DifficultyEasy) != 4 || MinGap(DifficultyMedium) != 3 || MinGap(DifficultyHard) != 2 {
		t.Errorf("Unexpected cooldown values: %d/%d/%d", MinGap(DifficultyEasy), MinGap(DifficultyMedium), MinGap(DifficultyHard))
	}
	if MinGap("unknown") != 3 {
		t.Errorf("Expected medium cooldown for unknown difficulty, got %d", MinGap("unknown"))
	}
}
