package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"google.golang.org/api/iterator"

	"github.com/gta-invest/propertymap/internal/platform/config"
	firestoreclient "github.com/gta-invest/propertymap/internal/platform/firestore"
)

func main() {
	docID := flag.String("doc", "", "Document id to print from -collection (defaults to the first document)")
	collection := flag.String("collection", firestoreclient.PropertiesCollection, "Collection to sample")
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
	fmt.Printf("Project %s (%s credentials)\n\n", cfg.FirebaseProjectID, credsSource)

	for _, name := range []string{
		firestoreclient.PropertiesCollection,
		firestoreclient.LocationScoresCollection,
		firestoreclient.StatsCollection,
		firestoreclient.StateCollection,
	} {
		refs, err := client.Collection(name).DocumentRefs(ctx).GetAll()
		if err != nil {
			log.Fatalf("Failed to list %s: %v", name, err)
		}
		fmt.Printf("%-16s %d documents\n", name, len(refs))
	}

	var data map[string]any
	if *docID != "" {
		doc, err := client.Collection(*collection).Doc(*docID).Get(ctx)
		if err != nil {
			log.Fatalf("Failed to get document: %v", err)
		}
		data = doc.Data()
	} else {
		iter := client.Collection(*collection).Limit(1).Documents(ctx)
		defer iter.Stop()
		doc, err := iter.Next()
		if err == iterator.Done {
			fmt.Printf("\n%s is empty\n", *collection)
			return
		}
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *collection, err)
		}
		*docID = doc.Ref.ID
		data = doc.Data()
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal: %v", err)
	}
	fmt.Printf("\n%s/%s:\n%s\n", *collection, *docID, jsonData)
}
