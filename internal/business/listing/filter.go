// Package listing derives the map/list view of properties: the multi-field
// filter driven by the filter dialog, the single-metric filters of the
// /filter endpoints and viewport bounds.
package listing

import (
	"time"

	"github.com/gta-invest/propertymap/pkg/model"
)

// AllCities is the city wildcard.
const AllCities = "All"

// DefaultSqftMax is the top of the filter dialog's square footage slider.
// A SqftMax at or above it means no upper bound.
const DefaultSqftMax = 10000

// FilterSpec is the state of the filter dialog.
type FilterSpec struct {
	Bedrooms     int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms    float64 `json:"bathrooms" validate:"gte=0"`
	SqftMin      int     `json:"sqftMin" validate:"gte=0"`
	SqftMax      int     `json:"sqftMax" validate:"gte=0"`
	YearBuiltMin int     `json:"yearBuiltMin"`
	YearBuiltMax int     `json:"yearBuiltMax"`
	ShowActive   bool    `json:"showActive"`
	ShowPending  bool    `json:"showPending"`
	City         string  `json:"city"`
}

// DefaultFilterSpec returns the filter the web client starts with.
func DefaultFilterSpec(now time.Time) FilterSpec {
	return FilterSpec{
		Bedrooms:     0,
		Bathrooms:    0,
		SqftMin:      0,
		SqftMax:      DefaultSqftMax,
		YearBuiltMin: 1900,
		YearBuiltMax: now.Year(),
		ShowActive:   true,
		ShowPending:  true,
		City:         "Toronto",
	}
}

// WithDefaultCity applies a saved default city. "All" keeps the current city.
func (s FilterSpec) WithDefaultCity(city string) FilterSpec {
	if city != "" && city != AllCities {
		s.City = city
	}
	return s
}

// Matches reports whether p passes every clause of s.
func (s FilterSpec) Matches(p model.Property) bool {
	if p.Bedrooms < s.Bedrooms || p.Bathrooms < s.Bathrooms {
		return false
	}
	if p.SquareFeet < s.SqftMin {
		return false
	}
	if s.SqftMax < DefaultSqftMax && p.SquareFeet > s.SqftMax {
		return false
	}
	if p.YearBuilt < s.YearBuiltMin || p.YearBuilt > s.YearBuiltMax {
		return false
	}
	statusOK := (s.ShowActive && p.Status == model.StatusActive) ||
		(s.ShowPending && p.Status == model.StatusPending)
	if !statusOK {
		return false
	}
	return s.City == AllCities || p.City == s.City
}

// Filter returns the properties matching spec in input order.
// The result is never nil; with both status toggles off it is empty.
func Filter(properties []model.Property, spec FilterSpec) []model.Property {
	out := make([]model.Property, 0, len(properties))
	if !spec.ShowActive && !spec.ShowPending {
		return out
	}
	for _, p := range properties {
		if spec.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// InBounds returns the properties inside the viewport.
func InBounds(properties []model.Property, b model.Bounds) []model.Property {
	out := make([]model.Property, 0)
	for _, p := range properties {
		if b.Contains(p.Latitude, p.Longitude) {
			out = append(out, p)
		}
	}
	return out
}

// ScoresInBounds returns the location scores inside the viewport.
func ScoresInBounds(scores []model.LocationScore, b model.Bounds) []model.LocationScore {
	out := make([]model.LocationScore, 0)
	for _, s := range scores {
		if b.Contains(s.Latitude, s.Longitude) {
			out = append(out, s)
		}
	}
	return out
}

// CapRateFromExpenses is annual rent minus yearly expenses over list price, in percent.
// Missing rent, expenses or price yield 0.
func CapRateFromExpenses(p model.Property) float64 {
	if p.MonthlyRent == 0 || p.YearlyExpenses == 0 || p.ListPrice == 0 {
		return 0
	}
	noi := p.MonthlyRent*12 - p.YearlyExpenses
	return noi / p.ListPrice * 100
}
