package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/gta-invest/propertymap/internal/business/analytics"
	"github.com/gta-invest/propertymap/internal/platform/config"
	firestoreclient "github.com/gta-invest/propertymap/internal/platform/firestore"
	"github.com/gta-invest/propertymap/internal/platform/fixture"
	"github.com/gta-invest/propertymap/internal/repository"
	"github.com/gta-invest/propertymap/pkg/util"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print what would be written without touching Firestore")
	flag.Parse()

	ctx := context.Background()

	_ = godotenv.Load(".env.local", ".env")

	props := fixture.Properties()
	for i := range props {
		props[i] = util.CleanProperty(props[i])
	}
	scores := fixture.LocationScores()
	for i := range scores {
		scores[i] = util.CleanLocationScore(scores[i])
	}
	snapshot := analytics.Summarize(props, scores)

	fmt.Println("Seeding Firestore from the bundled fixture")
	fmt.Println("========================================")
	fmt.Printf("Properties:      %d\n", len(props))
	fmt.Printf("Location scores: %d\n", len(scores))
	fmt.Printf("Average price:   %.0f\n", snapshot.AveragePrice)

	if *dryRun {
		fmt.Println("\n[DRY-RUN] Nothing written. Run without -dry-run to seed.")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateFirestore(); err != nil {
		log.Fatalf("Firestore config: %v", err)
	}

	client, credsSource, err := firestoreclient.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()
	log.Printf("Connected to Firestore project %s using %s credentials", cfg.FirebaseProjectID, credsSource)

	fmt.Println("\n[1/3] Writing properties...")
	if err := repository.NewPropertyRepository(client).BatchUpsert(ctx, props); err != nil {
		log.Fatalf("Failed to seed properties: %v", err)
	}
	fmt.Println("\n[2/3] Writing location scores...")
	if err := repository.NewLocationScoreRepository(client).BatchUpsert(ctx, scores); err != nil {
		log.Fatalf("Failed to seed location scores: %v", err)
	}
	fmt.Println("\n[3/3] Writing dashboard snapshot...")
	if _, err := repository.NewSnapshotRepository(client).SaveSnapshot(ctx, snapshot); err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("Seed completed successfully!")
}
