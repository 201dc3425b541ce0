package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"

	"github.com/gta-invest/propertymap/internal/platform/config"
	firestoreclient "github.com/gta-invest/propertymap/internal/platform/firestore"
	"github.com/gta-invest/propertymap/pkg/model"
	"github.com/gta-invest/propertymap/pkg/util"
)

const updateBatchSize = 100

type updateItem struct {
	ref     *firestore.DocumentRef
	updates []firestore.Update
	label   string
}

func main() {
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing to Firestore")
	collection := flag.String("collection", "all", "Collection to normalize (properties, location_scores or all)")
	flag.Parse()

	ctx := context.Background()

	_ = godotenv.Load(".env.local", ".env")

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

	mode := "LIVE"
	if *dryRun {
		mode = "DRY-RUN"
	}
	fmt.Printf("\n=== Address Normalization [%s] ===\n", mode)

	var items []updateItem
	switch *collection {
	case firestoreclient.PropertiesCollection:
		items, err = scanProperties(ctx, client)
	case firestoreclient.LocationScoresCollection:
		items, err = scanLocationScores(ctx, client)
	case "all":
		items, err = scanProperties(ctx, client)
		if err == nil {
			var more []updateItem
			more, err = scanLocationScores(ctx, client)
			items = append(items, more...)
		}
	default:
		log.Fatalf("unknown collection %q", *collection)
	}
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	fmt.Printf("Need cleanup: %d\n", len(items))
	for i, item := range items {
		if i == 5 {
			fmt.Printf("  ... and %d more\n", len(items)-5)
			break
		}
		fmt.Printf("  %s\n", item.label)
	}
	if len(items) == 0 || *dryRun {
		if *dryRun && len(items) > 0 {
			fmt.Printf("\n[DRY-RUN] Would update %d documents. Run without -dry-run to apply changes.\n", len(items))
		}
		return
	}

	if err := apply(ctx, client, items); err != nil {
		log.Fatalf("Failed to apply updates: %v", err)
	}
	fmt.Println("Normalization completed!")
}

func scanProperties(ctx context.Context, client *firestore.Client) ([]updateItem, error) {
	docs, err := client.Collection(firestoreclient.PropertiesCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("get properties: %w", err)
	}
	fmt.Printf("Scanned %d property documents\n", len(docs))

	var out []updateItem
	for _, doc := range docs {
		var p model.Property
		if err := doc.DataTo(&p); err != nil {
			log.Printf("Warning: failed to parse doc %s: %v", doc.Ref.ID, err)
			continue
		}
		cleaned := util.CleanProperty(p)
		if cleaned == p {
			continue
		}
		out = append(out, updateItem{
			ref: doc.Ref,
			updates: []firestore.Update{
				{Path: "address", Value: cleaned.Address},
				{Path: "city", Value: cleaned.City},
				{Path: "state", Value: cleaned.State},
				{Path: "zipCode", Value: cleaned.ZipCode},
			},
			label: fmt.Sprintf("property %s: %q -> %q", doc.Ref.ID, p.Address, cleaned.Address),
		})
	}
	return out, nil
}

func scanLocationScores(ctx context.Context, client *firestore.Client) ([]updateItem, error) {
	docs, err := client.Collection(firestoreclient.LocationScoresCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("get location scores: %w", err)
	}
	fmt.Printf("Scanned %d location score documents\n", len(docs))

	var out []updateItem
	for _, doc := range docs {
		var s model.LocationScore
		if err := doc.DataTo(&s); err != nil {
			log.Printf("Warning: failed to parse doc %s: %v", doc.Ref.ID, err)
			continue
		}
		if !util.NeedsCleanup(s.Address) {
			continue
		}
		cleaned := util.CleanLocationScore(s)
		out = append(out, updateItem{
			ref:     doc.Ref,
			updates: []firestore.Update{{Path: "address", Value: cleaned.Address}},
			label:   fmt.Sprintf("location score %s: %q -> %q", doc.Ref.ID, s.Address, cleaned.Address),
		})
	}
	return out, nil
}

func apply(ctx context.Context, client *firestore.Client, items []updateItem) error {
	updated := 0
	for i := 0; i < len(items); i += updateBatchSize {
		end := min(i+updateBatchSize, len(items))
		batch := client.Batch()
		for _, item := range items[i:end] {
			batch.Update(item.ref, item.updates)
			updated++
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		fmt.Printf("  Progress: %d/%d documents cleaned\n", updated, len(items))
	}
	return nil
}
