package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gta-invest/propertymap/pkg/model"
)

// OtherGTA is the catch-all bucket for cities outside the fixed list.
const OtherGTA = "Other GTA"

// ComparisonCities are the buckets of the city comparison chart, in display order.
var ComparisonCities = []string{"Toronto", "Mississauga", "Brampton", "Vaughan", "Markham", "Oakville", OtherGTA}

// torontoKeywords fold Toronto neighbourhood scores into the single Toronto bucket.
var torontoKeywords = []string{"Toronto", "Downtown", "Midtown", "East Toronto", "West Toronto"}

// Denominator selects what cap rate and appreciation sums are divided by.
type Denominator int

const (
	// DenominatorPropertyCount divides location-score sums by the number of
	// properties listed in the city.
	DenominatorPropertyCount Denominator = iota
	// DenominatorScoreCount divides by the number of location scores matched to the city.
	DenominatorScoreCount
)

// CityMetricDenominator is the denominator used by CityMetrics. Score sums are
// averaged over the city's property count, so cities with many listings and few
// scored neighbourhoods report diluted rates.
const CityMetricDenominator = DenominatorPropertyCount

// CityMetric is one row of the city comparison chart.
type CityMetric struct {
	Name          string  `json:"name"`
	CapRate       float64 `json:"capRate"`
	Appreciation  float64 `json:"appreciation"`
	AvgPrice      float64 `json:"avgPrice"`
	PropertyCount int     `json:"propertyCount"`
	ScoreCount    int     `json:"scoreCount"`
}

// Value returns the named chart metric.
func (m CityMetric) Value(metric string) (float64, error) {
	switch metric {
	case "capRate":
		return m.CapRate, nil
	case "appreciation":
		return m.Appreciation, nil
	case "avgPrice":
		return m.AvgPrice, nil
	case "propertyCount":
		return float64(m.PropertyCount), nil
	}
	return 0, fmt.Errorf("unknown city metric %q", metric)
}

// CityOf maps a property city to its comparison bucket by exact match.
func CityOf(city string) string {
	for _, c := range ComparisonCities[:len(ComparisonCities)-1] {
		if city == c {
			return c
		}
	}
	return OtherGTA
}

// ScoreCityOf maps a location-score address to its comparison bucket by substring match.
func ScoreCityOf(address string) string {
	for _, kw := range torontoKeywords {
		if strings.Contains(address, kw) {
			return "Toronto"
		}
	}
	for _, c := range ComparisonCities[1 : len(ComparisonCities)-1] {
		if strings.Contains(address, c) {
			return c
		}
	}
	return OtherGTA
}

type cityTotals struct {
	properties   int
	scores       int
	price        float64
	capRate      float64
	appreciation float64
}

// CityMetrics joins properties (by city) and location scores (by address keywords)
// into per-city averages, using CityMetricDenominator.
func CityMetrics(properties []model.Property, scores []model.LocationScore) []CityMetric {
	return CityMetricsWith(properties, scores, CityMetricDenominator)
}

// CityMetricsWith is CityMetrics with an explicit denominator for the score averages.
// Rows come back in ComparisonCities order; every denominator is floored at 1.
func CityMetricsWith(properties []model.Property, scores []model.LocationScore, denom Denominator) []CityMetric {
	totals := make(map[string]*cityTotals, len(ComparisonCities))
	for _, c := range ComparisonCities {
		totals[c] = &cityTotals{}
	}
	for _, p := range properties {
		t := totals[CityOf(p.City)]
		t.properties++
		t.price += p.ListPrice
	}
	for _, s := range scores {
		t := totals[ScoreCityOf(s.Address)]
		t.scores++
		t.capRate += s.CapRate
		t.appreciation += s.Appreciation
	}

	rows := make([]CityMetric, 0, len(ComparisonCities))
	for _, c := range ComparisonCities {
		t := totals[c]
		propDen := float64(max(t.properties, 1))
		scoreDen := propDen
		if denom == DenominatorScoreCount {
			scoreDen = float64(max(t.scores, 1))
		}
		rows = append(rows, CityMetric{
			Name:          c,
			CapRate:       t.capRate / scoreDen,
			Appreciation:  t.appreciation / scoreDen,
			AvgPrice:      t.price / propDen,
			PropertyCount: t.properties,
			ScoreCount:    t.scores,
		})
	}
	return rows
}

// SortCityMetrics returns a copy of rows ordered by metric, highest first.
// Ties keep their input order.
func SortCityMetrics(rows []CityMetric, metric string) ([]CityMetric, error) {
	if _, err := (CityMetric{}).Value(metric); err != nil {
		return nil, err
	}
	out := make([]CityMetric, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Value(metric)
		b, _ := out[j].Value(metric)
		return a > b
	})
	return out, nil
}
