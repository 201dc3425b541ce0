package analytics

import (
	"fmt"

	"github.com/gta-invest/propertymap/pkg/model"
)

// Heatmap metrics selectable on the map.
const (
	MetricOverall     = "overall"
	MetricPerformance = "performance"
	MetricRisk        = "risk"
	MetricDemand      = "demand"
	MetricSupply      = "supply"
)

// HeatmapMetrics lists the selectable heatmap metrics.
var HeatmapMetrics = []string{MetricOverall, MetricPerformance, MetricRisk, MetricDemand, MetricSupply}

// ScoreFor returns the score dimension selected by a heatmap metric.
func ScoreFor(s model.LocationScore, metric string) (float64, error) {
	switch metric {
	case MetricOverall, "":
		return s.OverallScore, nil
	case MetricPerformance:
		return s.PerformanceScore, nil
	case MetricRisk:
		return s.RiskScore, nil
	case MetricDemand:
		return s.DemandScore, nil
	case MetricSupply:
		return s.SupplyScore, nil
	}
	return 0, fmt.Errorf("unknown heatmap metric %q", metric)
}

// HeatmapPoint is a single weighted point of the heat layer.
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"` // score/10 clamped to [0,1]
	Value     float64 `json:"value"`
	Metric    string  `json:"metric"`
}

// Heatmap converts location scores into heat layer points for metric.
func Heatmap(scores []model.LocationScore, metric string) ([]HeatmapPoint, error) {
	if metric == "" {
		metric = MetricOverall
	}
	points := make([]HeatmapPoint, 0, len(scores))
	for _, s := range scores {
		v, err := ScoreFor(s, metric)
		if err != nil {
			return nil, err
		}
		points = append(points, HeatmapPoint{
			Lat:       s.Latitude,
			Lng:       s.Longitude,
			Intensity: Intensity(v),
			Value:     v,
			Metric:    metric,
		})
	}
	return points, nil
}

// Intensity normalizes a 0-10 score to [0,1].
func Intensity(score float64) float64 {
	return min(max(score/10, 0), 1)
}

// WeightedOverallScore recomputes an overall score from its components with
// weights performance 3, risk 2, demand 2, supply 1. Components are truncated to
// integers and the result is integer-divided, matching the stored integer scores.
func WeightedOverallScore(s model.LocationScore) int {
	const (
		performanceWeight = 3
		riskWeight        = 2
		demandWeight      = 2
		supplyWeight      = 1
	)
	weighted := int(s.PerformanceScore)*performanceWeight +
		int(s.RiskScore)*riskWeight +
		int(s.DemandScore)*demandWeight +
		int(s.SupplyScore)*supplyWeight
	return weighted / (performanceWeight + riskWeight + demandWeight + supplyWeight)
}
