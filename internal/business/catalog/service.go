// Package catalog serves the property and location-score collections and the
// views derived from them. Derived views are cached per dataset revision.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gta-invest/propertymap/internal/business/analytics"
	"github.com/gta-invest/propertymap/internal/business/finance"
	"github.com/gta-invest/propertymap/internal/business/listing"
	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
	"github.com/gta-invest/propertymap/pkg/util"
)

// DefaultDatasetTTL bounds how long a loaded dataset is served before the
// stores are read again.
const DefaultDatasetTTL = time.Minute

type PropertyStore interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id int64) (model.Property, error)
	CreateProperty(ctx context.Context, p model.Property) (model.Property, error)
	UpdateProperty(ctx context.Context, p model.Property) (model.Property, error)
	DeleteProperty(ctx context.Context, id int64) error
}

type ScoreStore interface {
	ListLocationScores(ctx context.Context) ([]model.LocationScore, error)
	GetLocationScore(ctx context.Context, id int64) (model.LocationScore, error)
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap model.DashboardSnapshot) (model.DashboardSnapshot, error)
	GetSnapshot(ctx context.Context) (model.DashboardSnapshot, error)
}

type StructValidator interface {
	Struct(s any) error
}

type dataset struct {
	revision   int64
	loadedAt   time.Time
	properties []model.Property
	scores     []model.LocationScore
}

// Service coordinates the stores with the analytics packages.
type Service struct {
	properties PropertyStore
	scores     ScoreStore
	snapshots  SnapshotStore
	validator  StructValidator
	ttl        time.Duration
	now        func() time.Time

	loads    singleflight.Group
	mu       sync.Mutex
	revision int64
	data     *dataset
	views    map[string]any
}

func NewService(properties PropertyStore, scores ScoreStore, snapshots SnapshotStore, v StructValidator) *Service {
	return &Service{
		properties: properties,
		scores:     scores,
		snapshots:  snapshots,
		validator:  v,
		ttl:        DefaultDatasetTTL,
		now:        time.Now,
		views:      map[string]any{},
	}
}

// SetTTL changes the dataset lifetime; zero or negative reloads on every call.
func (s *Service) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

// Invalidate drops the loaded dataset and every cached view. A load already
// in flight is not adopted and later callers start a fresh one.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.revision++
	s.data = nil
	s.views = map[string]any{}
	s.mu.Unlock()
	s.loads.Forget("dataset")
}

// Revision identifies the current dataset. It changes on every reload and mutation.
func (s *Service) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// maxLoadAttempts bounds how often dataset reloads when mutations keep
// landing while a load is in flight.
const maxLoadAttempts = 3

type loadResult struct {
	data    *dataset
	current bool // no mutation happened while loading
}

func (s *Service) dataset(ctx context.Context) (*dataset, error) {
	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		if s.data != nil && s.now().Sub(s.data.loadedAt) < s.ttl {
			d := s.data
			s.mu.Unlock()
			return d, nil
		}
		s.mu.Unlock()

		v, err, _ := s.loads.Do("dataset", func() (any, error) {
			return s.load(ctx)
		})
		if err != nil {
			return nil, err
		}
		res := v.(loadResult)
		if res.current || attempt == maxLoadAttempts {
			return res.data, nil
		}
	}
}

// load reads both collections. The result is adopted as the cached dataset
// only if the revision did not move while the stores were read.
func (s *Service) load(ctx context.Context) (loadResult, error) {
	s.mu.Lock()
	start := s.revision
	s.mu.Unlock()

	var d dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		props, err := s.properties.ListProperties(gctx)
		d.properties = props
		return err
	})
	g.Go(func() error {
		scores, err := s.scores.ListLocationScores(gctx)
		d.scores = scores
		return err
	})
	if err := g.Wait(); err != nil {
		return loadResult{}, apperr.Unavailable("property data is unavailable", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d.loadedAt = s.now()
	if s.revision != start {
		return loadResult{data: &d}, nil
	}
	s.revision++
	d.revision = s.revision
	s.data = &d
	s.views = map[string]any{}
	return loadResult{data: &d, current: true}, nil
}

// view returns the cached value for key parts at the dataset revision, building it on a miss.
func view[T any](ctx context.Context, s *Service, build func(d *dataset) (T, error), parts ...string) (T, error) {
	var zero T
	d, err := s.dataset(ctx)
	if err != nil {
		return zero, err
	}
	key := util.HashKey(append([]string{strconv.FormatInt(d.revision, 10)}, parts...)...)

	s.mu.Lock()
	if v, ok := s.views[key]; ok {
		s.mu.Unlock()
		return v.(T), nil
	}
	s.mu.Unlock()

	v, err := build(d)
	if err != nil {
		return zero, err
	}
	s.mu.Lock()
	if s.data == d {
		s.views[key] = v
	}
	s.mu.Unlock()
	return v, nil
}

func (s *Service) Properties(ctx context.Context) ([]model.Property, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return append([]model.Property(nil), d.properties...), nil
}

func (s *Service) Property(ctx context.Context, id int64) (model.Property, error) {
	return s.properties.GetProperty(ctx, id)
}

func (s *Service) PropertiesInBounds(ctx context.Context, b model.Bounds) ([]model.Property, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return listing.InBounds(d.properties, b), nil
}

// FilterProperties applies the single-criterion query filter.
func (s *Service) FilterProperties(ctx context.Context, q url.Values) ([]model.Property, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := listing.FilterProperties(d.properties, q)
	if err != nil {
		return nil, badParam(err)
	}
	return out, nil
}

func (s *Service) CreateProperty(ctx context.Context, p model.Property) (model.Property, error) {
	p = util.CleanProperty(p)
	if err := s.validator.Struct(p); err != nil {
		return model.Property{}, err
	}
	created, err := s.properties.CreateProperty(ctx, p)
	if err != nil {
		return model.Property{}, err
	}
	s.Invalidate()
	return created, nil
}

func (s *Service) UpdateProperty(ctx context.Context, id int64, p model.Property) (model.Property, error) {
	p.ID = id
	p = util.CleanProperty(p)
	if err := s.validator.Struct(p); err != nil {
		return model.Property{}, err
	}
	updated, err := s.properties.UpdateProperty(ctx, p)
	if err != nil {
		return model.Property{}, err
	}
	s.Invalidate()
	return updated, nil
}

func (s *Service) DeleteProperty(ctx context.Context, id int64) error {
	if err := s.properties.DeleteProperty(ctx, id); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func (s *Service) LocationScores(ctx context.Context) ([]model.LocationScore, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return append([]model.LocationScore(nil), d.scores...), nil
}

func (s *Service) LocationScore(ctx context.Context, id int64) (model.LocationScore, error) {
	return s.scores.GetLocationScore(ctx, id)
}

func (s *Service) LocationScoresInBounds(ctx context.Context, b model.Bounds) ([]model.LocationScore, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return listing.ScoresInBounds(d.scores, b), nil
}

func (s *Service) FilterLocationScores(ctx context.Context, q url.Values) ([]model.LocationScore, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := listing.FilterScores(d.scores, q)
	if err != nil {
		return nil, badParam(err)
	}
	return out, nil
}

// Search runs the filter dialog spec over the catalog.
func (s *Service) Search(ctx context.Context, spec listing.FilterSpec) ([]model.Property, error) {
	if err := s.validator.Struct(spec); err != nil {
		return nil, err
	}
	return view(ctx, s, func(d *dataset) ([]model.Property, error) {
		return listing.Filter(d.properties, spec), nil
	}, "search", fmt.Sprintf("%+v", spec))
}

func (s *Service) Dashboard(ctx context.Context, opts analytics.DashboardOptions) (analytics.Dashboard, error) {
	return view(ctx, s, func(d *dataset) (analytics.Dashboard, error) {
		dash, err := analytics.BuildDashboard(d.properties, d.scores, opts)
		return dash, badParam(err)
	}, "dashboard", opts.City, opts.Metric)
}

// Cities returns the city comparison rows sorted by metric (capRate when empty).
func (s *Service) Cities(ctx context.Context, metric string) ([]analytics.CityMetric, error) {
	if metric == "" {
		metric = "capRate"
	}
	return view(ctx, s, func(d *dataset) ([]analytics.CityMetric, error) {
		rows, err := analytics.SortCityMetrics(analytics.CityMetrics(d.properties, d.scores), metric)
		return rows, badParam(err)
	}, "cities", metric)
}

func (s *Service) Regions(ctx context.Context) ([]analytics.RegionAverage, error) {
	return view(ctx, s, func(d *dataset) ([]analytics.RegionAverage, error) {
		return analytics.RegionAverages(d.scores), nil
	}, "regions")
}

func (s *Service) Heatmap(ctx context.Context, metric string) ([]analytics.HeatmapPoint, error) {
	return view(ctx, s, func(d *dataset) ([]analytics.HeatmapPoint, error) {
		points, err := analytics.Heatmap(d.scores, metric)
		return points, badParam(err)
	}, "heatmap", metric)
}

// RefreshSnapshot recomputes the dashboard snapshot from fresh data and stores it.
func (s *Service) RefreshSnapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	s.Invalidate()
	d, err := s.dataset(ctx)
	if err != nil {
		return model.DashboardSnapshot{}, err
	}
	return s.snapshots.SaveSnapshot(ctx, analytics.Summarize(d.properties, d.scores))
}

func (s *Service) Snapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	return s.snapshots.GetSnapshot(ctx)
}

// Financials is the evaluation of one property under a set of purchase inputs.
type Financials struct {
	PropertyID int64          `json:"propertyId"`
	OfferLow   float64        `json:"offerLow"`
	OfferHigh  float64        `json:"offerHigh"`
	Result     finance.Result `json:"result"`
	Summary    []finance.Line `json:"summary"`
}

// DefaultInputs returns the default purchase inputs for a property.
func (s *Service) DefaultInputs(ctx context.Context, id int64) (model.Property, finance.Inputs, error) {
	p, err := s.properties.GetProperty(ctx, id)
	if err != nil {
		return model.Property{}, finance.Inputs{}, err
	}
	return p, finance.InputsForProperty(p), nil
}

// Evaluate validates in and computes the financials of p. Amounts in the
// summary are formatted in currency.
func (s *Service) Evaluate(p model.Property, in finance.Inputs, currency string) (Financials, error) {
	if err := s.validator.Struct(in); err != nil {
		return Financials{}, err
	}
	low, high := finance.OfferRange(p.ListPrice)
	res := finance.Compute(in)
	return Financials{
		PropertyID: p.ID,
		OfferLow:   low,
		OfferHigh:  high,
		Result:     res,
		Summary:    res.Summary(currency),
	}, nil
}

// badParam turns query parsing failures into 400s and passes other errors through.
func badParam(err error) error {
	if err == nil {
		return nil
	}
	var invalid *listing.InvalidParamError
	if errors.As(err, &invalid) {
		return apperr.Wrap(apperr.KindBadRequest, invalid.Error(), err)
	}
	if _, ok := err.(*apperr.Error); ok {
		return err
	}
	return apperr.Wrap(apperr.KindBadRequest, err.Error(), err)
}
