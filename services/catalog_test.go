package services

import (
	"context"
	"testing"

	"pitchhub/models"
)

func TestGenerateObjectionsPoolSizes(t *testing.T) {
	ctx := context.Background()

	// No database wired in tests, so the built-in defaults are used
	easy := GenerateObjections(ctx, ScenarioPriceNegotiation, DifficultyEasy)
	if len(easy) != 2 {
		t.Errorf("Expected 2 objections for easy, got %d", len(easy))
	}

	medium := GenerateObjections(ctx, ScenarioPriceNegotiation, DifficultyMedium)
	if len(medium) != 3 {
		t.Errorf("Expected 3 objections for medium, got %d", len(medium))
	}

	hard := GenerateObjections(ctx, ScenarioPriceNegotiation, DifficultyHard)
	if len(hard) != 5 {
		t.Errorf("Expected 5 objections for hard, got %d", len(hard))
	}
}

func TestGenerateObjectionsSeverityAndIDs(t *testing.T) {
	ctx := context.Background()

	pool := GenerateObjections(ctx, ScenarioColdCall, DifficultyHard)
	seen := make(map[string]bool)
	for _, obj := range pool {
		if obj.ID == "" {
			t.Errorf("Objection missing id: %+v", obj)
		}
		if seen[obj.ID] {
			t.Errorf("Duplicate objection id %s", obj.ID)
		}
		seen[obj.ID] = true
		if obj.Severity != models.SeverityStrong {
			t.Errorf("Expected strong severity on hard, got %s", obj.Severity)
		}
		if obj.ScenarioType != ScenarioColdCall {
			t.Errorf("Expected scenario type %s, got %s", ScenarioColdCall, obj.ScenarioType)
		}
	}
}

func TestGenerateObjectionsUnknownScenario(t *testing.T) {
	ctx := context.Background()

	// An unknown scenario still yields a usable pool from generic templates
	pool := GenerateObjections(ctx, "unknown_scenario", DifficultyMedium)
	if len(pool) == 0 {
		t.Errorf("Expected fallback objections for unknown scenario, got none")
	}
	for _, obj := range pool {
		if obj.CoreContent == "" {
			t.Errorf("Objection missing core content: %+v", obj)
		}
	}
}

func TestAllDefaultObjections(t *testing.T) {
	all := AllDefaultObjections()
	if len(all) == 0 {
		t.Fatalf("Expected seeded templates, got none")
	}

	scenarios := make(map[string]int)
	for _, obj := range all {
		scenarios[obj.ScenarioType]++
	}
	for _, s := range []string{ScenarioPriceNegotiation, ScenarioColdCall, ScenarioProductDemo, ScenarioContractRenewal, ScenarioUpsell} {
		if scenarios[s] == 0 {
			t.Errorf("Expected default objections for scenario %s", s)
		}
	}
}
