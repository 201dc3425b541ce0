// Package analytics derives the dashboard datasets: grouped counts and averages,
// fixed price and score buckets, per-city investment metrics, the GTA region
// classifier and heatmap points. Every function is pure; an empty group averages to 0.
package analytics

import (
	"fmt"

	"github.com/gta-invest/propertymap/pkg/model"
)

// GroupAndCount counts items per key.
func GroupAndCount[T any, K comparable](items []T, keyFn func(T) K) map[K]int {
	counts := make(map[K]int)
	for _, item := range items {
		counts[keyFn(item)]++
	}
	return counts
}

// GroupAndAverage averages valueFn per key.
func GroupAndAverage[T any, K comparable](items []T, keyFn func(T) K, valueFn func(T) float64) map[K]float64 {
	return GroupAndAverageOver(items, nil, keyFn, valueFn)
}

// GroupAndAverageOver is GroupAndAverage with a fixed set of keys that always appear
// in the result. A key with no members averages to 0 rather than being omitted.
func GroupAndAverageOver[T any, K comparable](items []T, keys []K, keyFn func(T) K, valueFn func(T) float64) map[K]float64 {
	sums := make(map[K]float64, len(keys))
	counts := make(map[K]int, len(keys))
	for _, k := range keys {
		sums[k] = 0
		counts[k] = 0
	}
	for _, item := range items {
		k := keyFn(item)
		sums[k] += valueFn(item)
		counts[k]++
	}
	avgs := make(map[K]float64, len(sums))
	for k, sum := range sums {
		avgs[k] = safeDiv(sum, float64(counts[k]))
	}
	return avgs
}

// Mean is the arithmetic mean of values, 0 for none.
func Mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return safeDiv(sum, float64(len(values)))
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Price bucket labels in ascending order.
const (
	PriceUnder500k  = "<$500k"
	Price500kTo750k = "$500k-$750k"
	Price750kTo1M   = "$750k-$1M"
	Price1MTo1_5M   = "$1M-$1.5M"
	PriceOver1_5M   = ">$1.5M"
)

// PriceBuckets lists the price bucket labels in ascending order.
var PriceBuckets = []string{PriceUnder500k, Price500kTo750k, Price750kTo1M, Price1MTo1_5M, PriceOver1_5M}

var priceUpperBounds = []float64{500000, 750000, 1000000, 1500000}

// PriceBucketOf assigns a list price to exactly one bucket. Upper bounds are exclusive.
func PriceBucketOf(price float64) string {
	for i, upper := range priceUpperBounds {
		if price < upper {
			return PriceBuckets[i]
		}
	}
	return PriceOver1_5M
}

// Score bucket labels in ascending order.
var ScoreBuckets = []string{"0-2", "3-4", "5-6", "7-8", "9-10"}

var scoreUpperBounds = []float64{2, 4, 6, 8}

// ScoreBucketOf assigns a 0-10 score to a bucket. Upper bounds are inclusive, so
// integral scores land in their labelled range and fractional ones (2.5) in the next.
func ScoreBucketOf(score float64) string {
	for i, upper := range scoreUpperBounds {
		if score <= upper {
			return ScoreBuckets[i]
		}
	}
	return ScoreBuckets[len(ScoreBuckets)-1]
}

// BucketCount is one bar of a distribution chart.
type BucketCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PriceBucketCounts counts properties per price bucket. All five buckets are present.
func PriceBucketCounts(properties []model.Property) []BucketCount {
	counts := GroupAndCount(properties, func(p model.Property) string { return PriceBucketOf(p.ListPrice) })
	return orderedCounts(PriceBuckets, counts)
}

// ScoreBucketCounts counts location scores per overall-score bucket.
func ScoreBucketCounts(scores []model.LocationScore) []BucketCount {
	counts := GroupAndCount(scores, func(s model.LocationScore) string { return ScoreBucketOf(s.OverallScore) })
	return orderedCounts(ScoreBuckets, counts)
}

func orderedCounts(labels []string, counts map[string]int) []BucketCount {
	out := make([]BucketCount, 0, len(labels))
	for _, label := range labels {
		out = append(out, BucketCount{Name: label, Count: counts[label]})
	}
	return out
}

// BedroomLabel is the key used for the bedroom breakdown, e.g. "1 bedroom", "3 bedrooms".
func BedroomLabel(bedrooms int) string {
	if bedrooms == 1 {
		return "1 bedroom"
	}
	return fmt.Sprintf("%d bedrooms", bedrooms)
}
