package cli

import (
	"bytes"
	"fmt"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/gta-invest/propertymap/internal/business/analytics"
	"github.com/gta-invest/propertymap/internal/business/finance"
	"github.com/gta-invest/propertymap/internal/business/listing"
	"github.com/gta-invest/propertymap/pkg/model"
)

func score(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func countTable(header string, rows []analytics.NamedCount) md.TableSet {
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{header, "Count"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Name, strconv.Itoa(r.Value)})
	}
	return t
}

func bucketTable(header string, rows []analytics.BucketCount) md.TableSet {
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{header, "Count"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Name, strconv.Itoa(r.Count)})
	}
	return t
}

func cityTable(rows []analytics.CityMetric, currency string) md.TableSet {
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"City", "Cap Rate", "Appreciation", "Avg Price", "Listings"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Name,
			finance.Percent(r.CapRate),
			finance.Percent(r.Appreciation),
			finance.Money(r.AvgPrice, currency),
			strconv.Itoa(r.PropertyCount),
		})
	}
	return t
}

// DashboardMarkdown renders the dashboard aggregates.
func DashboardMarkdown(d analytics.Dashboard, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("GTA Investment Dashboard")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Properties"), md.Bold(strconv.Itoa(d.TotalProperties))},
		Rows: [][]string{
			{"Average Price", finance.Money(d.AveragePrice, currency)},
			{"Average Cap Rate", finance.Percent(d.AverageCapRate)},
			{"Average Appreciation", finance.Percent(d.AverageAppreciation)},
		},
	})

	if len(d.CityBreakdown) > 0 {
		doc.H2("Listings by City")
		doc.Table(countTable("City", d.CityBreakdown))
	}
	if len(d.BedroomBreakdown) > 0 {
		doc.H2("Listings by Bedrooms")
		doc.Table(countTable("Bedrooms", d.BedroomBreakdown))
	}
	doc.H2("Price Ranges")
	doc.Table(bucketTable("Price", d.PriceRanges))
	doc.H2("Score Ranges")
	doc.Table(bucketTable("Overall Score", d.ScoreRanges))

	if len(d.InvestmentMetrics) > 0 {
		doc.H2("Location Metrics")
		t := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Location", "Overall", "Performance", "Risk", "Cap Rate", "Appreciation"},
		}
		for _, m := range d.InvestmentMetrics {
			t.Rows = append(t.Rows, []string{
				m.Name, score(m.OverallScore), score(m.PerformanceScore), score(m.RiskScore),
				finance.Percent(m.CapRate), finance.Percent(m.Appreciation),
			})
		}
		doc.Table(t)
	}
	if len(d.CityComparison) > 0 {
		doc.H2("City Comparison")
		doc.Table(cityTable(d.CityComparison, currency))
	}
	return doc.String()
}

// CitiesMarkdown renders the city comparison sorted by metric.
func CitiesMarkdown(rows []analytics.CityMetric, metric, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("City Comparison by %s", metric))
	if len(rows) == 0 {
		doc.PlainText("No cities.")
		return doc.String()
	}
	doc.Table(cityTable(rows, currency))
	return doc.String()
}

// RegionsMarkdown renders per-region score averages.
func RegionsMarkdown(rows []analytics.RegionAverage, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Regional Averages")
	if len(rows) == 0 {
		doc.PlainText("No location scores.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
			md.AlignRight, md.AlignRight, md.AlignRight,
		},
		Header: []string{"Region", "Locations", "Overall", "Performance", "Risk", "Demand", "Supply", "Avg Price"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			string(r.Region), strconv.Itoa(r.Count),
			score(r.OverallScore), score(r.PerformanceScore), score(r.RiskScore),
			score(r.DemandScore), score(r.SupplyScore),
			finance.Money(r.AvgPrice, currency),
		})
	}
	doc.Table(t)
	return doc.String()
}

// FinancialsMarkdown renders the purchase analysis of one property.
func FinancialsMarkdown(p model.Property, r finance.Result, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Financials for %s, %s", p.Address, p.City))

	low, high := finance.OfferRange(p.ListPrice)
	doc.PlainText(fmt.Sprintf("List price %s. Suggested offer range %s to %s.",
		finance.Money(p.ListPrice, currency), finance.Money(low, currency), finance.Money(high, currency)))

	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Item", "Value"},
	}
	for _, l := range r.Summary(currency) {
		t.Rows = append(t.Rows, []string{l.Label, l.Value})
	}
	doc.Table(t)
	return doc.String()
}

// HeatmapMarkdown renders one row per location; points and scores share order.
func HeatmapMarkdown(scores []model.LocationScore, points []analytics.HeatmapPoint, metric string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Heatmap: %s score", metric))
	if len(points) == 0 {
		doc.PlainText("No location scores.")
		return doc.String()
	}
	t := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Location", "Lat", "Lng", "Score", "Intensity"},
	}
	for i, pt := range points {
		name := ""
		if i < len(scores) {
			name = scores[i].Address
		}
		t.Rows = append(t.Rows, []string{
			name,
			strconv.FormatFloat(pt.Lat, 'f', 4, 64),
			strconv.FormatFloat(pt.Lng, 'f', 4, 64),
			score(pt.Value),
			strconv.FormatFloat(pt.Intensity, 'f', 2, 64),
		})
	}
	doc.Table(t)
	return doc.String()
}

func listingTable(props []model.Property, currency string) md.TableSet {
	t := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight,
			md.AlignRight, md.AlignRight, md.AlignLeft,
		},
		Header: []string{"ID", "Address", "City", "Price", "Beds", "Baths", "Sqft", "Status"},
	}
	for _, p := range props {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(p.ID, 10), p.Address, p.City,
			finance.Money(p.ListPrice, currency),
			strconv.Itoa(p.Bedrooms),
			strconv.FormatFloat(p.Bathrooms, 'f', -1, 64),
			strconv.Itoa(p.SquareFeet),
			p.Status,
		})
	}
	return t
}

// SearchMarkdown renders the listings matching spec.
func SearchMarkdown(props []model.Property, spec listing.FilterSpec, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Listings in %s", spec.City))
	doc.PlainText(fmt.Sprintf("%d matching listings.", len(props)))
	if len(props) > 0 {
		doc.Table(listingTable(props, currency))
	}
	return doc.String()
}

// ScreenMarkdown renders the properties at or above a metric threshold.
func ScreenMarkdown(props []model.Property, metric string, threshold float64, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("%s of at least %s", metric, strconv.FormatFloat(threshold, 'f', -1, 64)))
	doc.PlainText(fmt.Sprintf("%d matching listings.", len(props)))
	if len(props) > 0 {
		doc.Table(listingTable(props, currency))
	}
	return doc.String()
}
