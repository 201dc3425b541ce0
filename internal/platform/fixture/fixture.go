// Package fixture serves the bundled property and location-score data used
// when the API or the document store is unreachable.
package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gta-invest/propertymap/pkg/model"
)

//go:embed data/properties.json
var propertiesJSON []byte

//go:embed data/location_scores.json
var locationScoresJSON []byte

var (
	once       sync.Once
	properties []model.Property
	scores     []model.LocationScore
	loadErr    error
)

func load() {
	if err := json.Unmarshal(propertiesJSON, &properties); err != nil {
		loadErr = fmt.Errorf("decode fixture properties: %w", err)
		return
	}
	if err := json.Unmarshal(locationScoresJSON, &scores); err != nil {
		loadErr = fmt.Errorf("decode fixture location scores: %w", err)
	}
}

// Properties returns a copy of the bundled properties.
func Properties() []model.Property {
	once.Do(load)
	if loadErr != nil {
		panic(loadErr)
	}
	out := make([]model.Property, len(properties))
	copy(out, properties)
	return out
}

// LocationScores returns a copy of the bundled location scores.
func LocationScores() []model.LocationScore {
	once.Do(load)
	if loadErr != nil {
		panic(loadErr)
	}
	out := make([]model.LocationScore, len(scores))
	copy(out, scores)
	return out
}

// Property looks up a bundled property by id.
func Property(id int64) (model.Property, bool) {
	for _, p := range Properties() {
		if p.ID == id {
			return p, true
		}
	}
	return model.Property{}, false
}

// LocationScore looks up a bundled location score by id.
func LocationScore(id int64) (model.LocationScore, bool) {
	for _, s := range LocationScores() {
		if s.ID == id {
			return s, true
		}
	}
	return model.LocationScore{}, false
}
