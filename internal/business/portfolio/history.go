package portfolio

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
)

// HistoryKey is the durable state key of the history series.
const HistoryKey = "portfolioHistory"

// MonthLayout is the HistoryPoint.Date format.
const MonthLayout = "2006-01"

// Report time ranges.
const (
	RangeOneMonth    = "1month"
	RangeThreeMonths = "3months"
	RangeSixMonths   = "6months"
	RangeOneYear     = "1year"
	RangeAll         = "all"
)

// Cutoff returns the earliest instant included by a time range relative to now.
// RangeAll and the empty range return the zero time.
func Cutoff(timeRange string, now time.Time) (time.Time, error) {
	switch timeRange {
	case RangeOneMonth:
		return now.AddDate(0, -1, 0), nil
	case RangeThreeMonths:
		return now.AddDate(0, -3, 0), nil
	case RangeSixMonths:
		return now.AddDate(0, -6, 0), nil
	case RangeOneYear:
		return now.AddDate(-1, 0, 0), nil
	case RangeAll, "":
		return time.Time{}, nil
	}
	return time.Time{}, apperr.BadRequest(fmt.Sprintf("unknown time range %q", timeRange))
}

// FilterHistory keeps points whose month starts at or after the range cutoff.
// Points with an unparsable date are dropped.
func FilterHistory(history []model.HistoryPoint, timeRange string, now time.Time) ([]model.HistoryPoint, error) {
	cutoff, err := Cutoff(timeRange, now)
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryPoint, 0, len(history))
	for _, p := range history {
		month, err := time.Parse(MonthLayout, p.Date)
		if err != nil {
			continue
		}
		if !month.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

// PerformancePoint pairs total value and equity for one month.
type PerformancePoint struct {
	Name        string  `json:"name"`
	TotalValue  float64 `json:"totalValue"`
	TotalEquity float64 `json:"totalEquity"`
}

// CashFlowPoint is the monthly cash flow for one month.
type CashFlowPoint struct {
	Name            string  `json:"name"`
	MonthlyCashFlow float64 `json:"monthlyCashFlow"`
}

// EquityPoint is equity and equity share of value for one month.
type EquityPoint struct {
	Name          string  `json:"name"`
	Equity        float64 `json:"equity"`
	EquityPercent float64 `json:"equityPercent"`
}

// ReturnPoint is ROI and cap rate for one month.
type ReturnPoint struct {
	Name    string  `json:"name"`
	ROI     float64 `json:"roi"`
	CapRate float64 `json:"capRate"`
}

// Series holds the four report chart datasets.
type Series struct {
	Performance []PerformancePoint `json:"performance"`
	CashFlow    []CashFlowPoint    `json:"cashFlow"`
	Equity      []EquityPoint      `json:"equity"`
	ROI         []ReturnPoint      `json:"roi"`
}

// BuildSeries maps history points onto the report chart datasets.
func BuildSeries(points []model.HistoryPoint) Series {
	s := Series{
		Performance: make([]PerformancePoint, 0, len(points)),
		CashFlow:    make([]CashFlowPoint, 0, len(points)),
		Equity:      make([]EquityPoint, 0, len(points)),
		ROI:         make([]ReturnPoint, 0, len(points)),
	}
	for _, p := range points {
		s.Performance = append(s.Performance, PerformancePoint{p.Date, p.TotalValue, p.TotalEquity})
		s.CashFlow = append(s.CashFlow, CashFlowPoint{p.Date, p.MonthlyCashFlow})
		s.Equity = append(s.Equity, EquityPoint{p.Date, p.TotalEquity, percent(p.TotalEquity, p.TotalValue)})
		s.ROI = append(s.ROI, ReturnPoint{p.Date, p.ROI, p.CapRate})
	}
	return s
}

// Growth compares the first and last history points.
type Growth struct {
	ValueGrowth     float64 `json:"valueGrowth"`
	EquityGrowth    float64 `json:"equityGrowth"`
	CashFlowGrowth  float64 `json:"cashFlowGrowth"`
	CurrentValue    float64 `json:"currentValue"`
	CurrentEquity   float64 `json:"currentEquity"`
	CurrentCashFlow float64 `json:"currentCashFlow"`
}

// GrowthMetrics reports growth between the first and last points. It returns
// false when fewer than two points exist. Growth from a zero base is 0.
func GrowthMetrics(history []model.HistoryPoint) (Growth, bool) {
	if len(history) < 2 {
		return Growth{}, false
	}
	first, last := history[0], history[len(history)-1]
	return Growth{
		ValueGrowth:     percent(last.TotalValue-first.TotalValue, first.TotalValue),
		EquityGrowth:    percent(last.TotalEquity-first.TotalEquity, first.TotalEquity),
		CashFlowGrowth:  percent(last.MonthlyCashFlow-first.MonthlyCashFlow, first.MonthlyCashFlow),
		CurrentValue:    last.TotalValue,
		CurrentEquity:   last.TotalEquity,
		CurrentCashFlow: last.MonthlyCashFlow,
	}, true
}

// PointFor derives the history point of the given month from the current holdings.
func PointFor(items []model.PortfolioProperty, month time.Time) model.HistoryPoint {
	s := Summarize(items)
	annual := s.MonthlyCashFlow * 12
	return model.HistoryPoint{
		Date:            month.Format(MonthLayout),
		TotalValue:      s.TotalValue,
		TotalEquity:     s.TotalEquity,
		MonthlyCashFlow: s.MonthlyCashFlow,
		ROI:             percent(annual, s.TotalEquity),
		CapRate:         percent(annual, s.TotalValue),
	}
}

func percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// StateStore persists JSON-serialisable values by key.
type StateStore interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, value any) error
}

// History is the persisted monthly history series, kept sorted by month.
type History struct {
	mu    sync.Mutex
	store StateStore
}

// NewHistory returns the history series stored under HistoryKey.
func NewHistory(store StateStore) *History {
	return &History{store: store}
}

// List returns every stored point in month order.
func (h *History) List(ctx context.Context) ([]model.HistoryPoint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// Report filters the series by timeRange and builds its chart data.
func (h *History) Report(ctx context.Context, timeRange string, now time.Time) (Report, error) {
	all, err := h.List(ctx)
	if err != nil {
		return Report{}, err
	}
	points, err := FilterHistory(all, timeRange, now)
	if err != nil {
		return Report{}, err
	}
	growth, _ := GrowthMetrics(all)
	return Report{TimeRange: timeRange, Points: points, Series: BuildSeries(points), Growth: growth}, nil
}

// Report is the payload of the history report view.
type Report struct {
	TimeRange string               `json:"timeRange"`
	Points    []model.HistoryPoint `json:"points"`
	Series    Series               `json:"series"`
	Growth    Growth               `json:"growth"`
}

// RecordSnapshot stores the point for now's month derived from items,
// replacing any point already recorded for that month.
func (h *History) RecordSnapshot(ctx context.Context, items []model.PortfolioProperty, now time.Time) (model.HistoryPoint, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	points, err := h.load(ctx)
	if err != nil {
		return model.HistoryPoint{}, err
	}
	point := PointFor(items, now)
	replaced := false
	for i := range points {
		if points[i].Date == point.Date {
			points[i] = point
			replaced = true
			break
		}
	}
	if !replaced {
		points = append(points, point)
		sortByMonth(points)
	}
	if err := h.store.Save(ctx, HistoryKey, points); err != nil {
		return model.HistoryPoint{}, fmt.Errorf("save %s: %w", HistoryKey, err)
	}
	return point, nil
}

func (h *History) load(ctx context.Context) ([]model.HistoryPoint, error) {
	points := []model.HistoryPoint{}
	if _, err := h.store.Load(ctx, HistoryKey, &points); err != nil {
		return nil, fmt.Errorf("load %s: %w", HistoryKey, err)
	}
	if points == nil {
		points = []model.HistoryPoint{}
	}
	sortByMonth(points)
	return points, nil
}

func sortByMonth(points []model.HistoryPoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
}
