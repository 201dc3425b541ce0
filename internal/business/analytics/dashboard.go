package analytics

import (
	"sort"
	"strings"

	"github.com/gta-invest/propertymap/pkg/model"
)

// NamedCount is one slice of a breakdown chart.
type NamedCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// LocationMetric is one neighbourhood of the investment metrics chart.
type LocationMetric struct {
	Name             string  `json:"name"`
	OverallScore     float64 `json:"overallScore"`
	PerformanceScore float64 `json:"performanceScore"`
	RiskScore        float64 `json:"riskScore"`
	DemandScore      float64 `json:"demandScore"`
	SupplyScore      float64 `json:"supplyScore"`
	CapRate          float64 `json:"capRate"`
	Appreciation     float64 `json:"appreciation"`
}

// DashboardOptions selects the city filter and the comparison sort metric.
type DashboardOptions struct {
	City   string // "All" or empty disables the location filter
	Metric string // capRate, appreciation, avgPrice or propertyCount
}

// Dashboard holds every dataset of the investment dashboard.
type Dashboard struct {
	TotalProperties     int              `json:"totalProperties"`
	AveragePrice        float64          `json:"averagePrice"`
	AverageCapRate      float64          `json:"averageCapRate"`
	AverageAppreciation float64          `json:"averageAppreciation"`
	CityBreakdown       []NamedCount     `json:"cityBreakdown"`
	BedroomBreakdown    []NamedCount     `json:"bedroomBreakdown"`
	PriceRanges         []BucketCount    `json:"priceRanges"`
	ScoreRanges         []BucketCount    `json:"scoreRanges"`
	InvestmentMetrics   []LocationMetric `json:"investmentMetrics"`
	CityComparison      []CityMetric     `json:"cityComparison"`
}

// BuildDashboard derives the dashboard from the full property and score collections.
func BuildDashboard(properties []model.Property, scores []model.LocationScore, opts DashboardOptions) (Dashboard, error) {
	if opts.Metric == "" {
		opts.Metric = "capRate"
	}
	comparison, err := SortCityMetrics(CityMetrics(properties, scores), opts.Metric)
	if err != nil {
		return Dashboard{}, err
	}

	var totalPrice float64
	for _, p := range properties {
		totalPrice += p.ListPrice
	}

	return Dashboard{
		TotalProperties:     len(properties),
		AveragePrice:        safeDiv(totalPrice, float64(len(properties))),
		AverageCapRate:      meanNonZero(scores, func(s model.LocationScore) float64 { return s.CapRate }),
		AverageAppreciation: meanNonZero(scores, func(s model.LocationScore) float64 { return s.Appreciation }),
		CityBreakdown:       CityBreakdown(properties),
		BedroomBreakdown:    BedroomBreakdown(properties),
		PriceRanges:         PriceBucketCounts(properties),
		ScoreRanges:         ScoreBucketCounts(scores),
		InvestmentMetrics:   LocationMetrics(scores, opts.City),
		CityComparison:      comparison,
	}, nil
}

// meanNonZero averages field over the scores where it is non-zero; missing
// metrics are stored as 0 and must not drag the average down.
func meanNonZero(scores []model.LocationScore, field func(model.LocationScore) float64) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if v := field(s); v != 0 {
			sum += v
			n++
		}
	}
	return safeDiv(sum, float64(n))
}

// CityBreakdown counts properties per city, most listings first, ties by name.
func CityBreakdown(properties []model.Property) []NamedCount {
	counts := GroupAndCount(properties, func(p model.Property) string {
		if p.City == "" {
			return "Unknown"
		}
		return p.City
	})
	out := make([]NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, NamedCount{Name: name, Value: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BedroomBreakdown counts properties per bedroom count, ascending.
func BedroomBreakdown(properties []model.Property) []NamedCount {
	counts := GroupAndCount(properties, func(p model.Property) int { return p.Bedrooms })
	beds := make([]int, 0, len(counts))
	for b := range counts {
		beds = append(beds, b)
	}
	sort.Ints(beds)
	out := make([]NamedCount, 0, len(beds))
	for _, b := range beds {
		out = append(out, NamedCount{Name: BedroomLabel(b), Value: counts[b]})
	}
	return out
}

// LocationMetrics lists one entry per distinct score address, in first-seen order,
// keeping the last record for a repeated address. A city other than "All" keeps
// only addresses containing it.
func LocationMetrics(scores []model.LocationScore, city string) []LocationMetric {
	index := make(map[string]int)
	out := make([]LocationMetric, 0, len(scores))
	for _, s := range scores {
		m := LocationMetric{
			Name:             s.Address,
			OverallScore:     s.OverallScore,
			PerformanceScore: s.PerformanceScore,
			RiskScore:        s.RiskScore,
			DemandScore:      s.DemandScore,
			SupplyScore:      s.SupplyScore,
			CapRate:          s.CapRate,
			Appreciation:     s.Appreciation,
		}
		if i, ok := index[s.Address]; ok {
			out[i] = m
			continue
		}
		index[s.Address] = len(out)
		out = append(out, m)
	}
	if city == "" || city == "All" {
		return out
	}
	filtered := out[:0:0]
	for _, m := range out {
		if strings.Contains(m.Name, city) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// Summarize reduces the collections into the persisted dashboard snapshot.
func Summarize(properties []model.Property, scores []model.LocationScore) model.DashboardSnapshot {
	var active, pending int
	var totalPrice float64
	byCity := make(map[string]int)
	for _, p := range properties {
		switch p.Status {
		case model.StatusActive:
			active++
		case model.StatusPending:
			pending++
		}
		totalPrice += p.ListPrice
		byCity[p.City]++
	}

	buckets := make(map[string]int, len(PriceBuckets))
	for _, b := range PriceBucketCounts(properties) {
		buckets[b.Name] = b.Count
	}

	return model.DashboardSnapshot{
		TotalProperties:     len(properties),
		ActiveProperties:    active,
		PendingProperties:   pending,
		AveragePrice:        safeDiv(totalPrice, float64(len(properties))),
		AverageCapRate:      meanNonZero(scores, func(s model.LocationScore) float64 { return s.CapRate }),
		AverageAppreciation: meanNonZero(scores, func(s model.LocationScore) float64 { return s.Appreciation }),
		ByCity:              byCity,
		PriceBuckets:        buckets,
	}
}
