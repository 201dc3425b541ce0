package propertyapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/internal/platform/fixture"
	"github.com/gta-invest/propertymap/pkg/model"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func respond(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(body))}
}

func refused(req *http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")
}

func TestPropertiesSuccess(t *testing.T) {
	var gotPath string
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		return respond(http.StatusOK, `[{"id":41,"address":"1 Bay St","city":"Toronto","listPrice":900000}]`), nil
	})
	c := New(rt, Config{BaseURL: "http://api.test/api"}, nil)

	got, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if gotPath != "/api/properties" {
		t.Errorf("path = %q", gotPath)
	}
	if len(got) != 1 || got[0].ID != 41 {
		t.Errorf("got %+v", got)
	}
}

func TestNetworkErrorFallsBackToFixture(t *testing.T) {
	c := New(roundTripperFunc(refused), Config{}, nil)

	props, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if len(props) != len(fixture.Properties()) {
		t.Errorf("got %d properties, want fixture's %d", len(props), len(fixture.Properties()))
	}

	scores, err := c.LocationScores(context.Background())
	if err != nil || len(scores) != len(fixture.LocationScores()) {
		t.Errorf("LocationScores = %d, %v", len(scores), err)
	}
}

func TestServerErrorFallsBackButBadRequestDoesNot(t *testing.T) {
	c := New(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusBadGateway, "upstream"), nil
	}), Config{}, nil)
	if _, err := c.Properties(context.Background()); err != nil {
		t.Errorf("502 should fall back, got %v", err)
	}

	c = New(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusBadRequest, `{"error":"invalid minCapRate"}`), nil
	}), Config{}, nil)
	_, err := c.PropertiesByMetric(context.Background(), "capRate", 3)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if !strings.Contains(err.Error(), "invalid minCapRate") {
		t.Errorf("message lost: %v", err)
	}
}

func TestNoFallbackSurfacesNetworkError(t *testing.T) {
	c := New(roundTripperFunc(refused), Config{NoFallback: true}, nil)
	if _, err := c.Properties(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestPropertyNotFoundUsesFixture(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, `{"error":"property not found"}`), nil
	})
	c := New(rt, Config{}, nil)

	p, err := c.Property(context.Background(), 2)
	if err != nil {
		t.Fatalf("Property(2): %v", err)
	}
	if p.Address != "12 York Street, Unit 5601" {
		t.Errorf("got %+v", p)
	}

	_, err = c.Property(context.Background(), 404404)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}

	// unreachable API and unknown id is still a NotFound
	c = New(roundTripperFunc(refused), Config{}, nil)
	if _, err := c.LocationScore(context.Background(), 404404); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestBoundsFallbackFilters(t *testing.T) {
	c := New(roundTripperFunc(refused), Config{}, nil)
	b := model.Bounds{SouthLat: 43.58, NorthLat: 43.70, WestLng: -79.50, EastLng: -79.30}
	props, err := c.PropertiesInBounds(context.Background(), b)
	if err != nil {
		t.Fatalf("PropertiesInBounds: %v", err)
	}
	if len(props) == 0 {
		t.Fatalf("no fixture properties in downtown box")
	}
	for _, p := range props {
		if !b.Contains(p.Latitude, p.Longitude) {
			t.Errorf("property %d outside bounds", p.ID)
		}
	}
}

func TestRetriesThenBreaker(t *testing.T) {
	var calls atomic.Int32
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return refused(req)
	})
	c := New(rt, Config{MaxRetries: 2, BreakerMax: 2, NoFallback: true}, nil)

	for i := 0; i < 2; i++ {
		c.Properties(context.Background())
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("calls = %d, want 4", got)
	}
	_, err := c.Properties(context.Background())
	if !errors.Is(err, ErrCircuitOpen) || !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("open breaker still called the API: %d calls", got)
	}
}

func TestBreakerHalfOpensAfterCooldown(t *testing.T) {
	var calls atomic.Int32
	var down atomic.Bool
	down.Store(true)
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		if down.Load() {
			return refused(req)
		}
		return respond(http.StatusOK, `[{"id":1,"address":"1 Bay St","city":"Toronto"}]`), nil
	})
	c := New(rt, Config{MaxRetries: 2, BreakerMax: 2, BreakerCooldown: time.Minute, NoFallback: true}, nil)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Properties(ctx)
	c.Properties(ctx)
	now = now.Add(30 * time.Second)
	if _, err := c.Properties(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v during cooldown, want ErrCircuitOpen", err)
	}

	// A failed trial sends one request and re-opens the breaker.
	now = now.Add(time.Minute)
	before := calls.Load()
	if _, err := c.Properties(ctx); err == nil || errors.Is(err, ErrCircuitOpen) {
		t.Errorf("trial err = %v, want a network error", err)
	}
	if got := calls.Load() - before; got != 1 {
		t.Errorf("trial calls = %d, want 1", got)
	}
	if _, err := c.Properties(ctx); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v after failed trial, want ErrCircuitOpen", err)
	}

	down.Store(false)
	now = now.Add(time.Minute)
	props, err := c.Properties(ctx)
	if err != nil || len(props) != 1 {
		t.Fatalf("Properties after recovery = %v, %v", props, err)
	}
	if got := c.consecutiveFailures.Load(); got != 0 {
		t.Errorf("consecutiveFailures = %d after success, want 0", got)
	}
	if _, err := c.Properties(ctx); err != nil {
		t.Errorf("closed breaker err = %v", err)
	}
}

func TestMutationsSendJSON(t *testing.T) {
	var method, contentType string
	var body []byte
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		method = req.Method
		contentType = req.Header.Get("Content-Type")
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
		}
		return respond(http.StatusCreated, `{"id":77,"address":"5 Main St","city":"Ajax"}`), nil
	})
	c := New(rt, Config{}, nil)

	got, err := c.CreateProperty(context.Background(), model.Property{Address: "5 Main St", City: "Ajax"})
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}
	if method != http.MethodPost || contentType != "application/json" || !bytes.Contains(body, []byte(`"address":"5 Main St"`)) {
		t.Errorf("request = %s %s %s", method, contentType, body)
	}
	if got.ID != 77 {
		t.Errorf("got %+v", got)
	}

	c = New(roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		method = req.Method
		return respond(http.StatusNoContent, ""), nil
	}), Config{}, nil)
	if err := c.DeleteProperty(context.Background(), 77); err != nil || method != http.MethodDelete {
		t.Errorf("DeleteProperty = %v (%s)", err, method)
	}
}

func TestLoad(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/properties":
			return respond(http.StatusOK, `[{"id":1},{"id":2}]`), nil
		case "/api/location-scores":
			return respond(http.StatusOK, `[{"id":9,"address":"Ajax"}]`), nil
		}
		return respond(http.StatusNotFound, ""), nil
	})
	ds, err := New(rt, Config{}, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.FromFixture || len(ds.Properties) != 2 || len(ds.LocationScores) != 1 {
		t.Errorf("dataset = %+v", ds)
	}
}

func TestLoadFallsBackJointly(t *testing.T) {
	// scores fail, properties succeed: both come from the fixture
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/api/properties" {
			return respond(http.StatusOK, `[{"id":1}]`), nil
		}
		return refused(req)
	})
	ds, err := New(rt, Config{}, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ds.FromFixture || len(ds.Properties) != len(fixture.Properties()) {
		t.Errorf("dataset = %d properties, fromFixture %v", len(ds.Properties), ds.FromFixture)
	}

	_, err = New(rt, Config{NoFallback: true}, nil).Load(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}
