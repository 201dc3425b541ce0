// Package portfolio derives statistics and history reports from the user's
// owned properties.
package portfolio

import (
	"fmt"
	"math"

	"github.com/gta-invest/propertymap/pkg/model"
)

// Breakdown is one slice of a portfolio pie chart.
type Breakdown struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary is the headline portfolio statistics block.
type Summary struct {
	PropertyCount   int         `json:"propertyCount"`
	TotalValue      float64     `json:"totalValue"`
	TotalInvestment float64     `json:"totalInvestment"`
	TotalEquity     float64     `json:"totalEquity"`
	MonthlyCashFlow float64     `json:"monthlyCashFlow"`
	AverageCapRate  float64     `json:"averageCapRate"`
	CityBreakdown   []Breakdown `json:"cityBreakdown"`
	TypeBreakdown   []Breakdown `json:"typeBreakdown"`
}

// Summarize totals the portfolio. Breakdowns list keys in first-seen order.
func Summarize(items []model.PortfolioProperty) Summary {
	s := Summary{
		PropertyCount: len(items),
		CityBreakdown: []Breakdown{},
		TypeBreakdown: []Breakdown{},
	}
	var capSum float64
	var capCount int
	cities := newCounter()
	types := newCounter()
	for _, p := range items {
		s.TotalValue += p.CurrentValue
		s.TotalInvestment += p.PurchasePrice
		s.TotalEquity += p.CurrentValue - p.LoanBalance
		s.MonthlyCashFlow += p.MonthlyCashFlow
		if !math.IsNaN(p.CapRate) && !math.IsInf(p.CapRate, 0) {
			capSum += p.CapRate
			capCount++
		}
		city := p.City
		if city == "" {
			city = "Other"
		}
		cities.add(city)
		types.add(TypeLabel(p))
	}
	if capCount > 0 {
		s.AverageCapRate = capSum / float64(capCount)
	}
	s.CityBreakdown = cities.rows()
	s.TypeBreakdown = types.rows()
	return s
}

// TypeLabel is the property-type breakdown key, e.g. "2 bed Condo".
func TypeLabel(p model.PortfolioProperty) string {
	kind := p.PropertyType
	if kind == "" {
		kind = "Property"
	}
	return fmt.Sprintf("%d bed %s", p.Bedrooms, kind)
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) rows() []Breakdown {
	out := make([]Breakdown, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Breakdown{Name: k, Value: c.counts[k]})
	}
	return out
}
