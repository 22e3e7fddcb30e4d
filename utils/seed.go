package utils

import (
	"context"
	"log"
	"time"

	"pitchhub/db"
	"pitchhub/services"
)

// SeedObjectionCatalog populates the objection template collection on first
// boot. Runs only when the collection is empty so redeploys keep operator
// edits to the catalog.
func SeedObjectionCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	count, err := db.CountObjectionTemplates(ctx)
	if err != nil {
		log.Printf("Skipping objection catalog seed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Objection catalog already seeded (%d templates)", count)
		return
	}

	templates := services.AllDefaultObjections()
	if err := db.InsertObjectionTemplates(ctx, templates); err != nil {
		log.Printf("Failed to seed objection catalog: %v", err)
		return
	}
	log.Printf("Seeded objection catalog with %d templates", len(templates))
}
