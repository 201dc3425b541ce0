package analytics

import (
	"math"
	"testing"

	"github.com/gta-invest/propertymap/pkg/model"
)

func TestPriceBucketCountsScenario(t *testing.T) {
	props := []model.Property{{ListPrice: 400000}, {ListPrice: 600000}, {ListPrice: 1600000}}
	got := PriceBucketCounts(props)
	want := []BucketCount{
		{PriceUnder500k, 1},
		{Price500kTo750k, 1},
		{Price750kTo1M, 0},
		{Price1MTo1_5M, 0},
		{PriceOver1_5M, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPriceBucketOfBoundaries(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{0, PriceUnder500k},
		{499999.99, PriceUnder500k},
		{500000, Price500kTo750k},
		{749999, Price500kTo750k},
		{750000, Price750kTo1M},
		{1000000, Price1MTo1_5M},
		{1499999, Price1MTo1_5M},
		{1500000, PriceOver1_5M},
		{25000000, PriceOver1_5M},
	}
	for _, tt := range tests {
		if got := PriceBucketOf(tt.price); got != tt.want {
			t.Errorf("PriceBucketOf(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestBucketCountsSumToTotal(t *testing.T) {
	var props []model.Property
	var scores []model.LocationScore
	for i := 0; i < 200; i++ {
		props = append(props, model.Property{ListPrice: float64(i) * 12500})
		scores = append(scores, model.LocationScore{OverallScore: float64(i%21) / 2})
	}

	sum := 0
	for _, b := range PriceBucketCounts(props) {
		sum += b.Count
	}
	if sum != len(props) {
		t.Errorf("price buckets sum = %d, want %d", sum, len(props))
	}

	sum = 0
	for _, b := range ScoreBucketCounts(scores) {
		sum += b.Count
	}
	if sum != len(scores) {
		t.Errorf("score buckets sum = %d, want %d", sum, len(scores))
	}
}

func TestScoreBucketOf(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "0-2"},
		{2, "0-2"},
		{2.5, "3-4"},
		{3, "3-4"},
		{4, "3-4"},
		{5, "5-6"},
		{6, "5-6"},
		{7, "7-8"},
		{8, "7-8"},
		{8.1, "9-10"},
		{10, "9-10"},
	}
	for _, tt := range tests {
		if got := ScoreBucketOf(tt.score); got != tt.want {
			t.Errorf("ScoreBucketOf(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestGroupAndAverageEmptyGroupIsZero(t *testing.T) {
	props := []model.Property{
		{City: "Toronto", ListPrice: 600000},
		{City: "Toronto", ListPrice: 800000},
	}
	got := GroupAndAverageOver(props, []string{"Toronto", "Oakville"},
		func(p model.Property) string { return p.City },
		func(p model.Property) float64 { return p.ListPrice })

	if got["Toronto"] != 700000 {
		t.Errorf("Toronto average = %v, want 700000", got["Toronto"])
	}
	v, ok := got["Oakville"]
	if !ok {
		t.Fatalf("Oakville missing from result")
	}
	if v != 0 || math.IsNaN(v) {
		t.Errorf("Oakville average = %v, want 0", v)
	}
	if Mean(nil) != 0 {
		t.Errorf("Mean(nil) = %v, want 0", Mean(nil))
	}
}

func TestGroupAndCount(t *testing.T) {
	props := []model.Property{{Bedrooms: 1}, {Bedrooms: 2}, {Bedrooms: 2}}
	got := GroupAndCount(props, func(p model.Property) int { return p.Bedrooms })
	if got[1] != 1 || got[2] != 2 || len(got) != 2 {
		t.Errorf("GroupAndCount = %v, want map[1:1 2:2]", got)
	}
}

func TestCityMetricsFoldsTorontoNeighbourhoods(t *testing.T) {
	props := []model.Property{
		{City: "Toronto", ListPrice: 500000},
		{City: "Toronto", ListPrice: 700000},
		{City: "Toronto", ListPrice: 900000},
		{City: "Toronto", ListPrice: 1100000},
	}
	scores := []model.LocationScore{
		{Address: "Downtown Toronto", CapRate: 3, Appreciation: 5},
		{Address: "Downtown Toronto", CapRate: 4, Appreciation: 6},
		{Address: "Toronto", CapRate: 2, Appreciation: 4},
		{Address: "Toronto", CapRate: 1, Appreciation: 1},
	}

	rows := CityMetrics(props, scores)
	if len(rows) != len(ComparisonCities) {
		t.Fatalf("got %d rows, want %d", len(rows), len(ComparisonCities))
	}
	toronto := rows[0]
	if toronto.Name != "Toronto" {
		t.Fatalf("first row = %q, want Toronto", toronto.Name)
	}
	if toronto.ScoreCount != 4 {
		t.Errorf("Toronto ScoreCount = %d, want 4", toronto.ScoreCount)
	}
	if toronto.CapRate != 10.0/4 {
		t.Errorf("Toronto CapRate = %v, want 2.5", toronto.CapRate)
	}
	if toronto.Appreciation != 16.0/4 {
		t.Errorf("Toronto Appreciation = %v, want 4", toronto.Appreciation)
	}
	if toronto.AvgPrice != 800000 {
		t.Errorf("Toronto AvgPrice = %v, want 800000", toronto.AvgPrice)
	}
	for _, r := range rows[1:] {
		if r.CapRate != 0 || r.PropertyCount != 0 {
			t.Errorf("%s = %+v, want zero row", r.Name, r)
		}
	}
}

func TestCityMetricsDenominator(t *testing.T) {
	props := []model.Property{
		{City: "Mississauga", ListPrice: 800000},
		{City: "Mississauga", ListPrice: 800000},
		{City: "Mississauga", ListPrice: 800000},
		{City: "Mississauga", ListPrice: 800000},
	}
	scores := []model.LocationScore{{Address: "Mississauga City Centre", CapRate: 4}}

	byProps := CityMetricsWith(props, scores, DenominatorPropertyCount)[1]
	if byProps.CapRate != 1 {
		t.Errorf("property-count CapRate = %v, want 1", byProps.CapRate)
	}
	byScores := CityMetricsWith(props, scores, DenominatorScoreCount)[1]
	if byScores.CapRate != 4 {
		t.Errorf("score-count CapRate = %v, want 4", byScores.CapRate)
	}

	// No properties: sums are divided by 1, not 0.
	lone := CityMetrics(nil, []model.LocationScore{{Address: "Vaughan", CapRate: 3.5}})
	for _, r := range lone {
		if r.Name == "Vaughan" && r.CapRate != 3.5 {
			t.Errorf("Vaughan CapRate = %v, want 3.5", r.CapRate)
		}
	}
}

func TestCityOf(t *testing.T) {
	tests := map[string]string{
		"Toronto":       "Toronto",
		"Oakville":      "Oakville",
		"Richmond Hill": OtherGTA,
		"toronto":       OtherGTA,
		"":              OtherGTA,
	}
	for in, want := range tests {
		if got := CityOf(in); got != want {
			t.Errorf("CityOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortCityMetrics(t *testing.T) {
	rows := []CityMetric{
		{Name: "A", CapRate: 2, PropertyCount: 5},
		{Name: "B", CapRate: 4, PropertyCount: 5},
		{Name: "C", CapRate: 3, PropertyCount: 9},
	}
	got, err := SortCityMetrics(rows, "capRate")
	if err != nil {
		t.Fatalf("SortCityMetrics: %v", err)
	}
	if got[0].Name != "B" || got[1].Name != "C" || got[2].Name != "A" {
		t.Errorf("order = %s%s%s, want BCA", got[0].Name, got[1].Name, got[2].Name)
	}
	if rows[0].Name != "A" {
		t.Errorf("input was reordered")
	}

	got, _ = SortCityMetrics(rows, "propertyCount")
	if got[0].Name != "C" || got[1].Name != "A" || got[2].Name != "B" {
		t.Errorf("propertyCount order = %s%s%s, want CAB", got[0].Name, got[1].Name, got[2].Name)
	}

	if _, err := SortCityMetrics(rows, "irr"); err == nil {
		t.Errorf("expected error for unknown metric")
	}
}

func TestRegionOf(t *testing.T) {
	tests := []struct {
		address string
		want    Region
	}{
		{"Downtown Toronto", RegionDowntownToronto},
		{"King West", RegionDowntownToronto}, // King is checked before West
		{"Yonge and Eglinton", RegionTorontoMidtown},
		{"The Beaches", RegionTorontoEast},
		{"East York", RegionTorontoEast},
		{"High Park", RegionTorontoWest},
		{"Mississauga City Centre", RegionMississauga},
		{"Richmond Hill", RegionRichmondHill},
		{"Oakville Downtown", RegionDowntownToronto},
		{"Ajax", RegionOtherGTA},
		{"   ", RegionUnclassified},
		{"", RegionUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := RegionOf(tt.address); got != tt.want {
				t.Errorf("RegionOf(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestRegionAverages(t *testing.T) {
	scores := []model.LocationScore{
		{Address: "Mississauga", OverallScore: 6, CapRate: 4, AverageHousePrice: 900000},
		{Address: "Downtown Toronto", OverallScore: 8, CapRate: 3, AverageHousePrice: 1000000},
		{Address: "Financial District", OverallScore: 6, CapRate: 5, AverageHousePrice: 1200000},
		{Address: "", OverallScore: 2},
	}
	got := RegionAverages(scores)
	if len(got) != 3 {
		t.Fatalf("got %d regions, want 3: %+v", len(got), got)
	}
	if got[0].Region != RegionDowntownToronto || got[1].Region != RegionMississauga || got[2].Region != RegionOtherGTA {
		t.Errorf("region order = %v %v %v", got[0].Region, got[1].Region, got[2].Region)
	}
	if got[0].Count != 2 || got[0].OverallScore != 7 || got[0].CapRate != 4 || got[0].AvgPrice != 1100000 {
		t.Errorf("downtown = %+v", got[0])
	}
}

func TestHeatmap(t *testing.T) {
	scores := []model.LocationScore{
		{Latitude: 43.6, Longitude: -79.4, OverallScore: 7.5, RiskScore: 12},
		{Latitude: 43.7, Longitude: -79.5, OverallScore: -1, RiskScore: 4},
	}
	points, err := Heatmap(scores, "")
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if points[0].Intensity != 0.75 || points[1].Intensity != 0 {
		t.Errorf("overall intensities = %v, %v", points[0].Intensity, points[1].Intensity)
	}
	if points[0].Metric != MetricOverall {
		t.Errorf("metric = %q, want overall", points[0].Metric)
	}

	points, err = Heatmap(scores, MetricRisk)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if points[0].Intensity != 1 || points[0].Value != 12 || points[1].Intensity != 0.4 {
		t.Errorf("risk points = %+v", points)
	}

	if _, err := Heatmap(scores, "noise"); err == nil {
		t.Errorf("expected error for unknown metric")
	}
}

func TestWeightedOverallScore(t *testing.T) {
	s := model.LocationScore{PerformanceScore: 8, RiskScore: 6, DemandScore: 7, SupplyScore: 5}
	// (24 + 12 + 14 + 5) / 8 = 55 / 8 = 6
	if got := WeightedOverallScore(s); got != 6 {
		t.Errorf("WeightedOverallScore = %d, want 6", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	props := []model.Property{
		{City: "Toronto", Bedrooms: 2, ListPrice: 600000, Status: model.StatusActive},
		{City: "Toronto", Bedrooms: 1, ListPrice: 400000, Status: model.StatusPending},
		{City: "Oakville", Bedrooms: 2, ListPrice: 1600000, Status: model.StatusActive},
	}
	scores := []model.LocationScore{
		{Address: "Downtown Toronto", OverallScore: 8, CapRate: 3, Appreciation: 5},
		{Address: "Oakville", OverallScore: 6, CapRate: 0, Appreciation: 3},
		{Address: "Downtown Toronto", OverallScore: 9, CapRate: 4, Appreciation: 6},
	}

	d, err := BuildDashboard(props, scores, DashboardOptions{City: "Toronto"})
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}
	if d.TotalProperties != 3 {
		t.Errorf("TotalProperties = %d, want 3", d.TotalProperties)
	}
	if d.AveragePrice != 2600000.0/3 {
		t.Errorf("AveragePrice = %v", d.AveragePrice)
	}
	// zero cap rates are excluded from the average
	if d.AverageCapRate != 3.5 {
		t.Errorf("AverageCapRate = %v, want 3.5", d.AverageCapRate)
	}
	if d.CityBreakdown[0] != (NamedCount{"Toronto", 2}) {
		t.Errorf("CityBreakdown[0] = %+v", d.CityBreakdown[0])
	}
	if len(d.BedroomBreakdown) != 2 || d.BedroomBreakdown[0] != (NamedCount{"1 bedroom", 1}) || d.BedroomBreakdown[1] != (NamedCount{"2 bedrooms", 2}) {
		t.Errorf("BedroomBreakdown = %+v", d.BedroomBreakdown)
	}
	if len(d.InvestmentMetrics) != 1 || d.InvestmentMetrics[0].OverallScore != 9 {
		t.Errorf("InvestmentMetrics = %+v, want one deduplicated Downtown Toronto row", d.InvestmentMetrics)
	}
	if d.CityComparison[0].Name != "Toronto" {
		t.Errorf("CityComparison[0] = %q, want Toronto", d.CityComparison[0].Name)
	}

	if _, err := BuildDashboard(props, scores, DashboardOptions{Metric: "bogus"}); err == nil {
		t.Errorf("expected error for unknown metric")
	}
}

func TestSummarize(t *testing.T) {
	props := []model.Property{
		{City: "Toronto", ListPrice: 400000, Status: model.StatusActive},
		{City: "Toronto", ListPrice: 600000, Status: model.StatusPending},
		{City: "Brampton", ListPrice: 800000, Status: model.StatusSold},
	}
	snap := Summarize(props, nil)
	if snap.TotalProperties != 3 || snap.ActiveProperties != 1 || snap.PendingProperties != 1 {
		t.Errorf("counts = %+v", snap)
	}
	if snap.AveragePrice != 600000 {
		t.Errorf("AveragePrice = %v, want 600000", snap.AveragePrice)
	}
	if snap.ByCity["Toronto"] != 2 || snap.PriceBuckets[Price750kTo1M] != 1 {
		t.Errorf("ByCity = %v, PriceBuckets = %v", snap.ByCity, snap.PriceBuckets)
	}
	if snap.AverageCapRate != 0 {
		t.Errorf("AverageCapRate = %v, want 0 for no scores", snap.AverageCapRate)
	}
}
