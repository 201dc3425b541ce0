package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gta-invest/propertymap/pkg/model"
)

// InvalidParamError reports a query parameter that could not be parsed.
type InvalidParamError struct {
	Param string
	Value string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Param)
}

// FilterProperties applies the single-criterion filter of GET /properties/filter.
// The first parameter present wins, in this order: city, status, minBedrooms,
// minBathrooms, minSqFt+maxSqFt, minPrice+maxPrice, zipCode, minYearBuilt,
// minCapRate, minAppreciation. With no parameter the input is returned as is.
func FilterProperties(properties []model.Property, q url.Values) ([]model.Property, error) {
	keep := func(pred func(model.Property) bool) []model.Property {
		out := make([]model.Property, 0)
		for _, p := range properties {
			if pred(p) {
				out = append(out, p)
			}
		}
		return out
	}

	switch {
	case q.Has("city"):
		city := q.Get("city")
		return keep(func(p model.Property) bool { return p.City == city }), nil
	case q.Has("status"):
		status := q.Get("status")
		return keep(func(p model.Property) bool { return p.Status == status }), nil
	case q.Has("minBedrooms"):
		v, err := intParam(q, "minBedrooms")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.Bedrooms >= v }), nil
	case q.Has("minBathrooms"):
		v, err := floatParam(q, "minBathrooms")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.Bathrooms >= v }), nil
	case q.Has("minSqFt") && q.Has("maxSqFt"):
		lo, err := intParam(q, "minSqFt")
		if err != nil {
			return nil, err
		}
		hi, err := intParam(q, "maxSqFt")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.SquareFeet >= lo && p.SquareFeet <= hi }), nil
	case q.Has("minPrice") && q.Has("maxPrice"):
		lo, err := floatParam(q, "minPrice")
		if err != nil {
			return nil, err
		}
		hi, err := floatParam(q, "maxPrice")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.ListPrice >= lo && p.ListPrice <= hi }), nil
	case q.Has("zipCode"):
		zip := q.Get("zipCode")
		return keep(func(p model.Property) bool { return p.ZipCode == zip }), nil
	case q.Has("minYearBuilt"):
		v, err := intParam(q, "minYearBuilt")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.YearBuilt >= v }), nil
	case q.Has("minCapRate"):
		v, err := floatParam(q, "minCapRate")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.CapRate >= v }), nil
	case q.Has("minAppreciation"):
		v, err := floatParam(q, "minAppreciation")
		if err != nil {
			return nil, err
		}
		return keep(func(p model.Property) bool { return p.AppreciationRate >= v }), nil
	}
	return properties, nil
}

// scoreFilters is the precedence order of GET /location-scores/filter.
var scoreFilters = []struct {
	param string
	field func(model.LocationScore) float64
}{
	{"minOverallScore", func(s model.LocationScore) float64 { return s.OverallScore }},
	{"minPerformanceScore", func(s model.LocationScore) float64 { return s.PerformanceScore }},
	{"minRiskScore", func(s model.LocationScore) float64 { return s.RiskScore }},
	{"minDemandScore", func(s model.LocationScore) float64 { return s.DemandScore }},
	{"minSupplyScore", func(s model.LocationScore) float64 { return s.SupplyScore }},
	{"minCapRate", func(s model.LocationScore) float64 { return s.CapRate }},
	{"minAppreciation", func(s model.LocationScore) float64 { return s.Appreciation }},
}

// FilterScores applies the single-criterion filter of GET /location-scores/filter.
func FilterScores(scores []model.LocationScore, q url.Values) ([]model.LocationScore, error) {
	for _, f := range scoreFilters {
		if !q.Has(f.param) {
			continue
		}
		threshold, err := floatParam(q, f.param)
		if err != nil {
			return nil, err
		}
		out := make([]model.LocationScore, 0)
		for _, s := range scores {
			if f.field(s) >= threshold {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return scores, nil
}

// MetricParam maps a metric name to its min-parameter, e.g. capRate -> minCapRate.
func MetricParam(metric string) string {
	if metric == "" {
		return ""
	}
	return "min" + strings.ToUpper(metric[:1]) + metric[1:]
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &InvalidParamError{Param: name, Value: raw}
	}
	return v, nil
}

func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &InvalidParamError{Param: name, Value: raw}
	}
	return v, nil
}

// ParseBounds reads southLat, northLat, westLng and eastLng; all four are required.
func ParseBounds(q url.Values) (model.Bounds, error) {
	var b model.Bounds
	fields := []struct {
		name string
		dst  *float64
	}{
		{"southLat", &b.SouthLat},
		{"northLat", &b.NorthLat},
		{"westLng", &b.WestLng},
		{"eastLng", &b.EastLng},
	}
	for _, f := range fields {
		v, err := floatParam(q, f.name)
		if err != nil {
			return model.Bounds{}, err
		}
		*f.dst = v
	}
	return b, nil
}
