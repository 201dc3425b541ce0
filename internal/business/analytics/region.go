package analytics

import (
	"strings"

	"github.com/gta-invest/propertymap/pkg/model"
)

// Region is a fixed GTA region bucket.
type Region string

const (
	RegionDowntownToronto Region = "Downtown Toronto"
	RegionTorontoMidtown  Region = "Toronto Midtown"
	RegionTorontoEast     Region = "Toronto East"
	RegionTorontoWest     Region = "Toronto West"
	RegionMississauga     Region = "Mississauga"
	RegionBrampton        Region = "Brampton"
	RegionVaughan         Region = "Vaughan"
	RegionMarkham         Region = "Markham"
	RegionRichmondHill    Region = "Richmond Hill"
	RegionOakville        Region = "Oakville"
	RegionOtherGTA        Region = "Other GTA"
	// RegionUnclassified is returned for a blank address.
	RegionUnclassified Region = "Unclassified"
)

// Regions lists the eleven region buckets in classification priority order.
var Regions = []Region{
	RegionDowntownToronto,
	RegionTorontoMidtown,
	RegionTorontoEast,
	RegionTorontoWest,
	RegionMississauga,
	RegionBrampton,
	RegionVaughan,
	RegionMarkham,
	RegionRichmondHill,
	RegionOakville,
	RegionOtherGTA,
}

var regionKeywords = []struct {
	region   Region
	keywords []string
}{
	{RegionDowntownToronto, []string{"Downtown", "Financial", "Entertainment", "King", "Queen", "Bay"}},
	{RegionTorontoMidtown, []string{"Midtown", "Yonge", "Eglinton", "St Clair"}},
	{RegionTorontoEast, []string{"East", "Beaches", "Leslieville", "Danforth"}},
	{RegionTorontoWest, []string{"West", "High Park", "Junction", "Liberty"}},
	{RegionMississauga, []string{"Mississauga"}},
	{RegionBrampton, []string{"Brampton"}},
	{RegionVaughan, []string{"Vaughan"}},
	{RegionMarkham, []string{"Markham"}},
	{RegionRichmondHill, []string{"Richmond Hill"}},
	{RegionOakville, []string{"Oakville"}},
}

// RegionOf classifies a free-text address. Keyword sets are checked in priority
// order and the first match wins; a non-blank address matching nothing is Other GTA.
// Matching is case-sensitive substring matching.
func RegionOf(address string) Region {
	if strings.TrimSpace(address) == "" {
		return RegionUnclassified
	}
	for _, rk := range regionKeywords {
		for _, kw := range rk.keywords {
			if strings.Contains(address, kw) {
				return rk.region
			}
		}
	}
	return RegionOtherGTA
}

// bucket folds Unclassified into Other GTA for the region table.
func (r Region) bucket() Region {
	if r == RegionUnclassified {
		return RegionOtherGTA
	}
	return r
}

// RegionAverage is one row of the GTA metrics table.
type RegionAverage struct {
	Region           Region  `json:"region"`
	Count            int     `json:"count"`
	OverallScore     float64 `json:"overallScore"`
	PerformanceScore float64 `json:"performanceScore"`
	RiskScore        float64 `json:"riskScore"`
	DemandScore      float64 `json:"demandScore"`
	SupplyScore      float64 `json:"supplyScore"`
	CapRate          float64 `json:"capRate"`
	Appreciation     float64 `json:"appreciation"`
	AvgPrice         float64 `json:"avgPrice"`
}

// RegionAverages groups scores by region and averages every dimension.
// Only regions with members are returned, in Regions order.
func RegionAverages(scores []model.LocationScore) []RegionAverage {
	groups := make(map[Region][]model.LocationScore)
	for _, s := range scores {
		r := RegionOf(s.Address).bucket()
		groups[r] = append(groups[r], s)
	}

	out := make([]RegionAverage, 0, len(groups))
	for _, r := range Regions {
		members := groups[r]
		if len(members) == 0 {
			continue
		}
		avg := func(field func(model.LocationScore) float64) float64 {
			values := make([]float64, len(members))
			for i, m := range members {
				values[i] = field(m)
			}
			return Mean(values)
		}
		out = append(out, RegionAverage{
			Region:           r,
			Count:            len(members),
			OverallScore:     avg(func(s model.LocationScore) float64 { return s.OverallScore }),
			PerformanceScore: avg(func(s model.LocationScore) float64 { return s.PerformanceScore }),
			RiskScore:        avg(func(s model.LocationScore) float64 { return s.RiskScore }),
			DemandScore:      avg(func(s model.LocationScore) float64 { return s.DemandScore }),
			SupplyScore:      avg(func(s model.LocationScore) float64 { return s.SupplyScore }),
			CapRate:          avg(func(s model.LocationScore) float64 { return s.CapRate }),
			Appreciation:     avg(func(s model.LocationScore) float64 { return s.Appreciation }),
			AvgPrice:         avg(func(s model.LocationScore) float64 { return s.AverageHousePrice }),
		})
	}
	return out
}
