package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/gta-invest/propertymap/internal/business/analytics"
	"github.com/gta-invest/propertymap/internal/business/finance"
	"github.com/gta-invest/propertymap/internal/business/listing"
	"github.com/gta-invest/propertymap/pkg/model"
)

type dashboardCmd struct {
	env    *Env
	city   string
	metric string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display the investment dashboard" }
func (*dashboardCmd) Usage() string {
	return `propmap dashboard [-city <name>] [-metric <capRate|appreciation|avgPrice|propertyCount>]

  Displays listing totals, breakdowns, location metrics and the city comparison.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.city, "city", listing.AllCities, "Only show location metrics whose name contains this city")
	f.StringVar(&c.metric, "metric", "capRate", "City comparison sort metric")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ds, ok := c.env.load(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	dash, err := analytics.BuildDashboard(ds.Properties, ds.LocationScores, analytics.DashboardOptions{City: c.city, Metric: c.metric})
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.env.printMarkdown(DashboardMarkdown(dash, c.env.Currency))
	return subcommands.ExitSuccess
}

type citiesCmd struct {
	env    *Env
	metric string
}

func (*citiesCmd) Name() string     { return "cities" }
func (*citiesCmd) Synopsis() string { return "compare GTA cities" }
func (*citiesCmd) Usage() string {
	return `propmap cities [-metric <capRate|appreciation|avgPrice|propertyCount>]

  Displays per-city averages sorted by the chosen metric, highest first.
`
}

func (c *citiesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.metric, "metric", "capRate", "Sort metric")
}

func (c *citiesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ds, ok := c.env.load(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	rows, err := analytics.SortCityMetrics(analytics.CityMetrics(ds.Properties, ds.LocationScores), c.metric)
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.env.printMarkdown(CitiesMarkdown(rows, c.metric, c.env.Currency))
	return subcommands.ExitSuccess
}

type regionsCmd struct {
	env *Env
}

func (*regionsCmd) Name() string     { return "regions" }
func (*regionsCmd) Synopsis() string { return "average location scores by GTA region" }
func (*regionsCmd) Usage() string {
	return `propmap regions

  Groups location scores into GTA regions and averages every score.
`
}

func (c *regionsCmd) SetFlags(*flag.FlagSet) {}

func (c *regionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ds, ok := c.env.load(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	c.env.printMarkdown(RegionsMarkdown(analytics.RegionAverages(ds.LocationScores), c.env.Currency))
	return subcommands.ExitSuccess
}

type financialsCmd struct {
	env   *Env
	id    int64
	offer float64
	rehab float64
	down  float64
	rate  float64
	years int
	rent  float64
}

func (*financialsCmd) Name() string     { return "financials" }
func (*financialsCmd) Synopsis() string { return "evaluate the purchase of a property" }
func (*financialsCmd) Usage() string {
	return `propmap financials -id <property id> [-offer <price>] [-rehab <cost>] [-down <percent>] [-rate <percent>] [-years <n>] [-rent <monthly>]

  Computes mortgage, expenses, cash flow and returns. Unset flags use the
  property's list price and rent and the default assumptions.
`
}

func (c *financialsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Property id")
	f.Float64Var(&c.offer, "offer", -1, "Offer price (defaults to the list price)")
	f.Float64Var(&c.rehab, "rehab", finance.DefaultRehabCosts, "Rehab costs")
	f.Float64Var(&c.down, "down", finance.DefaultDownPaymentPercent, "Down payment percent")
	f.Float64Var(&c.rate, "rate", finance.DefaultInterestRate, "Annual interest rate percent")
	f.IntVar(&c.years, "years", finance.DefaultLoanTermYears, "Loan term in years")
	f.Float64Var(&c.rent, "rent", -1, "Monthly rent (defaults to the listing's rent)")
}

func (c *financialsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		fmt.Fprintln(c.env.Err, "Error: -id is required")
		return subcommands.ExitUsageError
	}
	p, err := c.env.Source.Property(ctx, c.id)
	if err != nil {
		return c.env.fail(err)
	}
	in := finance.InputsForProperty(p)
	if c.offer >= 0 {
		in.OfferPrice = c.offer
	}
	if c.rent >= 0 {
		in.MonthlyRent = c.rent
	}
	in.RehabCosts = c.rehab
	in.DownPaymentPercent = c.down
	in.InterestRate = c.rate
	in.LoanTermYears = c.years
	c.env.printMarkdown(FinancialsMarkdown(p, finance.Compute(in), c.env.Currency))
	return subcommands.ExitSuccess
}

type heatmapCmd struct {
	env    *Env
	metric string
}

func (*heatmapCmd) Name() string     { return "heatmap" }
func (*heatmapCmd) Synopsis() string { return "list heatmap points for a score" }
func (*heatmapCmd) Usage() string {
	return `propmap heatmap [-metric <overall|performance|risk|demand|supply>]

  Lists every location with its score and map intensity.
`
}

func (c *heatmapCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.metric, "metric", analytics.MetricOverall, "Score to map")
}

func (c *heatmapCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ds, ok := c.env.load(ctx)
	if !ok {
		return subcommands.ExitFailure
	}
	points, err := analytics.Heatmap(ds.LocationScores, c.metric)
	if err != nil {
		fmt.Fprintf(c.env.Err, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.env.printMarkdown(HeatmapMarkdown(ds.LocationScores, points, c.metric))
	return subcommands.ExitSuccess
}

type searchCmd struct {
	env     *Env
	city    string
	beds    int
	baths   float64
	sqftMin int
	sqftMax int
	yearMin int
	yearMax int
	active  bool
	pending bool
	bounds  string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "filter listings" }
func (*searchCmd) Usage() string {
	return `propmap search [-city <name|All>] [-beds <n>] [-baths <n>] [-sqft-min <n>] [-sqft-max <n>] [-year-min <y>] [-year-max <y>] [-active] [-pending] [-bounds <south,north,west,east>]

  Lists the listings matching every filter. With -bounds only listings inside
  the map box are searched.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	def := listing.DefaultFilterSpec(c.env.now())
	f.StringVar(&c.city, "city", def.City, "City, or All")
	f.IntVar(&c.beds, "beds", def.Bedrooms, "Minimum bedrooms")
	f.Float64Var(&c.baths, "baths", def.Bathrooms, "Minimum bathrooms")
	f.IntVar(&c.sqftMin, "sqft-min", def.SqftMin, "Minimum square feet")
	f.IntVar(&c.sqftMax, "sqft-max", def.SqftMax, "Maximum square feet")
	f.IntVar(&c.yearMin, "year-min", def.YearBuiltMin, "Earliest year built")
	f.IntVar(&c.yearMax, "year-max", def.YearBuiltMax, "Latest year built")
	f.BoolVar(&c.active, "active", def.ShowActive, "Include active listings")
	f.BoolVar(&c.pending, "pending", def.ShowPending, "Include pending listings")
	f.StringVar(&c.bounds, "bounds", "", "Map box as south,north,west,east")
}

func (c *searchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	spec := listing.FilterSpec{
		Bedrooms:     c.beds,
		Bathrooms:    c.baths,
		SqftMin:      c.sqftMin,
		SqftMax:      c.sqftMax,
		YearBuiltMin: c.yearMin,
		YearBuiltMax: c.yearMax,
		ShowActive:   c.active,
		ShowPending:  c.pending,
		City:         c.city,
	}

	var props []model.Property
	if c.bounds != "" {
		b, err := parseBounds(c.bounds)
		if err != nil {
			fmt.Fprintf(c.env.Err, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if props, err = c.env.Source.PropertiesInBounds(ctx, b); err != nil {
			return c.env.fail(err)
		}
	} else {
		ds, ok := c.env.load(ctx)
		if !ok {
			return subcommands.ExitFailure
		}
		props = ds.Properties
	}
	c.env.printMarkdown(SearchMarkdown(listing.Filter(props, spec), spec, c.env.Currency))
	return subcommands.ExitSuccess
}

// parseBounds reads "south,north,west,east".
func parseBounds(raw string) (model.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return model.Bounds{}, fmt.Errorf("bounds %q: want south,north,west,east", raw)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.Bounds{}, fmt.Errorf("bounds %q: %w", raw, err)
		}
		v[i] = f
	}
	return model.Bounds{SouthLat: v[0], NorthLat: v[1], WestLng: v[2], EastLng: v[3]}, nil
}

type screenCmd struct {
	env    *Env
	metric string
	min    float64
}

func (*screenCmd) Name() string     { return "screen" }
func (*screenCmd) Synopsis() string { return "list properties above a metric threshold" }
func (*screenCmd) Usage() string {
	return `propmap screen -metric <capRate|bedrooms|bathrooms|yearBuilt> -min <value>

  Asks the API for properties whose metric is at least the threshold.
`
}

func (c *screenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.metric, "metric", "capRate", "Metric to screen on")
	f.Float64Var(&c.min, "min", 0, "Minimum value")
}

func (c *screenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.metric == "" {
		fmt.Fprintln(c.env.Err, "Error: -metric is required")
		return subcommands.ExitUsageError
	}
	props, err := c.env.Source.PropertiesByMetric(ctx, c.metric, c.min)
	if err != nil {
		return c.env.fail(err)
	}
	c.env.printMarkdown(ScreenMarkdown(props, c.metric, c.min, c.env.Currency))
	return subcommands.ExitSuccess
}
