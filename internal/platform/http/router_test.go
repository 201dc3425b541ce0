package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gta-invest/propertymap/internal/business/catalog"
	"github.com/gta-invest/propertymap/internal/business/collection"
	"github.com/gta-invest/propertymap/internal/business/portfolio"
	"github.com/gta-invest/propertymap/internal/business/preferences"
	"github.com/gta-invest/propertymap/internal/platform/fixture"
	"github.com/gta-invest/propertymap/internal/platform/validator"
	"github.com/gta-invest/propertymap/internal/repository"
	"github.com/gta-invest/propertymap/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	store := repository.NewMemoryCatalog(fixture.Properties(), fixture.LocationScores())
	state := repository.NewMemoryStateStore()
	v := validator.New()
	return NewRouter(Deps{
		Catalog:     catalog.NewService(store, store, store, v),
		Favorites:   collection.NewFavorites(state),
		Portfolio:   collection.NewPortfolio(state),
		History:     portfolio.NewHistory(state),
		Preferences: preferences.NewService(state, v),
		Validator:   v,
	}, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthzAndRequestID(t *testing.T) {
	h := newTestRouter(t, Options{})
	w := do(t, h, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Errorf("missing %s header", RequestIDHeader)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestPropertyReads(t *testing.T) {
	h := newTestRouter(t, Options{})

	tests := []struct {
		name   string
		path   string
		status int
		count  int
	}{
		{"all", "/api/properties", http.StatusOK, 12},
		{"city filter", "/api/properties/filter?city=Toronto", http.StatusOK, 5},
		{"bad filter", "/api/properties/filter?minBedrooms=lots", http.StatusBadRequest, -1},
		{"bounds", "/api/properties/bounds?southLat=43.6&northLat=43.7&westLng=-79.4&eastLng=-79.3", http.StatusOK, 4},
		{"bounds missing", "/api/properties/bounds?southLat=43.6", http.StatusBadRequest, -1},
		{"scores", "/api/location-scores", http.StatusOK, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.count >= 0 {
				if got := len(decode[[]json.RawMessage](t, w)); got != tt.count {
					t.Errorf("count = %d, want %d", got, tt.count)
				}
			}
		})
	}
}

func TestPropertyByID(t *testing.T) {
	h := newTestRouter(t, Options{})

	w := do(t, h, http.MethodGet, "/api/properties/2", "")
	if got := decode[model.Property](t, w); got.Address != "12 York Street, Unit 5601" {
		t.Errorf("property 2 = %+v", got)
	}
	if w := do(t, h, http.MethodGet, "/api/properties/404", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing id status = %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/api/properties/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", w.Code)
	}
	if body := decode[ErrorResponse](t, w); !strings.Contains(body.Error, "invalid id") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestPropertyLifecycle(t *testing.T) {
	h := newTestRouter(t, Options{})

	w := do(t, h, http.MethodPost, "/api/properties", `{"address":"5 Main St","city":"Ajax","squareFeet":1400,"listPrice":700000,"status":"Active"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decode[model.Property](t, w)
	if created.ID != 13 {
		t.Errorf("id = %d, want 13", created.ID)
	}

	w = do(t, h, http.MethodPut, "/api/properties/13", `{"address":"5 Main St","city":"Ajax","squareFeet":1400,"listPrice":650000,"status":"Pending"}`)
	if w.Code != http.StatusOK || decode[model.Property](t, w).ListPrice != 650000 {
		t.Errorf("update = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/api/properties", ""); len(decode[[]model.Property](t, w)) != 13 {
		t.Errorf("list did not see the created property")
	}

	if w := do(t, h, http.MethodDelete, "/api/properties/13", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/properties/13", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/api/properties", `{"city":"Ajax"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d", w.Code)
	}
	if body := decode[ErrorResponse](t, w); body.Details == nil {
		t.Errorf("validation details missing: %s", w.Body.String())
	}
	if w := do(t, h, http.MethodPost, "/api/properties", `{"city":`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", w.Code)
	}
}

func TestFinancials(t *testing.T) {
	h := newTestRouter(t, Options{})

	w := do(t, h, http.MethodGet, "/api/properties/2/financials?downPaymentPercent=25&interestRate=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	fin := decode[catalog.Financials](t, w)
	in := fin.Result.Inputs
	if in.DownPaymentPercent != 25 || in.InterestRate != 5 || in.OfferPrice != 1250000 || in.LoanTermYears != 30 {
		t.Errorf("inputs = %+v", in)
	}
	if !strings.HasPrefix(fin.Summary[0].Value, "$") {
		t.Errorf("summary = %+v", fin.Summary[0])
	}

	w = do(t, h, http.MethodPost, "/api/properties/2/financials", `{"offerPrice":1000000,"monthlyRent":4200}`)
	fin = decode[catalog.Financials](t, w)
	if fin.Result.Inputs.OfferPrice != 1000000 || fin.Result.Inputs.DownPaymentPercent != 20 {
		t.Errorf("inputs = %+v", fin.Result.Inputs)
	}

	if w := do(t, h, http.MethodGet, "/api/properties/2/financials?downPaymentPercent=150", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid input status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/properties/404/financials", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing property status = %d", w.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	h := newTestRouter(t, Options{})

	w := do(t, h, http.MethodGet, "/api/dashboard?metric=avgPrice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d: %s", w.Code, w.Body.String())
	}
	if dash := decode[map[string]any](t, w); dash["totalProperties"].(float64) != 12 {
		t.Errorf("totalProperties = %v", dash["totalProperties"])
	}
	if w := do(t, h, http.MethodGet, "/api/dashboard?metric=nope", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad metric status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/cities", ""); len(decode[[]json.RawMessage](t, w)) == 0 {
		t.Errorf("no city rows")
	}
	if w := do(t, h, http.MethodGet, "/api/regions", ""); w.Code != http.StatusOK {
		t.Errorf("regions status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/heatmap?metric=risk", ""); len(decode[[]json.RawMessage](t, w)) != 12 {
		t.Errorf("heatmap points = %s", w.Body.String())
	}

	if w := do(t, h, http.MethodGet, "/api/dashboard/snapshot", ""); w.Code != http.StatusNotFound {
		t.Errorf("snapshot before refresh = %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/dashboard/refresh", ""); w.Code != http.StatusOK {
		t.Errorf("refresh status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/dashboard/snapshot", ""); decode[model.DashboardSnapshot](t, w).TotalProperties != 12 {
		t.Errorf("snapshot = %s", w.Body.String())
	}
}

func TestSearchUsesDefaultsAndSettings(t *testing.T) {
	h := newTestRouter(t, Options{})

	type result struct {
		Items []model.Property `json:"items"`
		Total int              `json:"total"`
	}
	if got := decode[result](t, do(t, h, http.MethodPost, "/api/listings/search", "")); got.Total != 5 {
		t.Errorf("default search total = %d, want 5 Toronto listings", got.Total)
	}
	if got := decode[result](t, do(t, h, http.MethodPost, "/api/listings/search", `{"city":"All","bedrooms":3}`)); got.Total != 5 {
		t.Errorf("3+ bedroom search total = %d, want 5", got.Total)
	}

	settings := `{"theme":"dark","currency":"CAD","defaultCity":"Mississauga","dashboardView":"compact","autoRefreshMinutes":0}`
	if w := do(t, h, http.MethodPut, "/api/settings", settings); w.Code != http.StatusOK {
		t.Fatalf("save settings = %d %s", w.Code, w.Body.String())
	}
	got := decode[result](t, do(t, h, http.MethodPost, "/api/listings/search", ""))
	if got.Total != 1 || got.Items[0].City != "Mississauga" {
		t.Errorf("search after default city = %+v", got)
	}
}

func TestFavorites(t *testing.T) {
	h := newTestRouter(t, Options{})

	type toggled struct {
		Favorite bool `json:"favorite"`
	}
	if got := decode[toggled](t, do(t, h, http.MethodPost, "/api/favorites/2/toggle", "")); !got.Favorite {
		t.Errorf("first toggle should add")
	}
	if favs := decode[[]model.Property](t, do(t, h, http.MethodGet, "/api/favorites", "")); len(favs) != 1 || favs[0].City != "Toronto" {
		t.Errorf("favorites = %+v", favs)
	}
	if got := decode[toggled](t, do(t, h, http.MethodPost, "/api/favorites/2/toggle", "")); got.Favorite {
		t.Errorf("second toggle should remove")
	}
	if favs := decode[[]model.Property](t, do(t, h, http.MethodGet, "/api/favorites", "")); len(favs) != 0 {
		t.Errorf("favorites after toggle pair = %+v", favs)
	}

	do(t, h, http.MethodPost, "/api/favorites", `{"id":5}`)
	do(t, h, http.MethodPost, "/api/favorites", `{"id":5}`)
	if favs := decode[[]model.Property](t, do(t, h, http.MethodGet, "/api/favorites", "")); len(favs) != 1 {
		t.Errorf("duplicate add: %+v", favs)
	}
	if w := do(t, h, http.MethodPost, "/api/favorites/404/toggle", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown toggle status = %d", w.Code)
	}
}

func TestFavoriteBodiesAreValidated(t *testing.T) {
	h := newTestRouter(t, Options{})

	w := do(t, h, http.MethodPost, "/api/favorites", `{"address":"1 Bay St"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid favorite status = %d: %s", w.Code, w.Body.String())
	}
	if body := decode[ErrorResponse](t, w); body.Details == nil {
		t.Errorf("validation details missing: %s", w.Body.String())
	}
	if favs := decode[[]model.Property](t, do(t, h, http.MethodGet, "/api/favorites", "")); len(favs) != 0 {
		t.Errorf("invalid favorite was stored: %+v", favs)
	}
}

func TestConcurrentTogglesStoreFullProperties(t *testing.T) {
	h := newTestRouter(t, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(t, h, http.MethodPost, "/api/favorites/3/toggle", "")
		}()
	}
	wg.Wait()

	favs := decode[[]model.Property](t, do(t, h, http.MethodGet, "/api/favorites", ""))
	if len(favs) != 1 {
		t.Fatalf("favorites after odd toggles = %+v", favs)
	}
	if favs[0].Address == "" || favs[0].ListPrice == 0 {
		t.Errorf("favorite stored without its details: %+v", favs[0])
	}
}

func TestToggleClearsFavoriteDeletedFromCatalog(t *testing.T) {
	h := newTestRouter(t, Options{})

	w := do(t, h, http.MethodPost, "/api/properties", `{"address":"5 Main St","city":"Ajax","squareFeet":1400,"listPrice":700000,"status":"Active"}`)
	id := decode[model.Property](t, w).ID
	path := "/api/favorites/" + strconv.FormatInt(id, 10) + "/toggle"
	do(t, h, http.MethodPost, path, "")
	do(t, h, http.MethodDelete, "/api/properties/"+strconv.FormatInt(id, 10), "")

	w = do(t, h, http.MethodPost, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", w.Code, w.Body.String())
	}
	if favs := decode[[]model.Property](t, do(t, h, http.MethodGet, "/api/favorites", "")); len(favs) != 0 {
		t.Errorf("stale favorite kept: %+v", favs)
	}
	if w := do(t, h, http.MethodPost, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("toggle after clearing status = %d", w.Code)
	}
}

func TestPortfolioAndHistory(t *testing.T) {
	h := newTestRouter(t, Options{})

	if w := do(t, h, http.MethodPost, "/api/portfolio/sample", ""); w.Code != http.StatusOK {
		t.Fatalf("sample status = %d", w.Code)
	}
	summary := decode[portfolio.Summary](t, do(t, h, http.MethodGet, "/api/portfolio/summary", ""))
	if summary.TotalValue != 3220000 || summary.MonthlyCashFlow != 2600 {
		t.Errorf("summary = %+v", summary)
	}

	if w := do(t, h, http.MethodDelete, "/api/portfolio/1", ""); w.Code != http.StatusOK {
		t.Errorf("remove status = %d", w.Code)
	}
	if items := decode[[]model.PortfolioProperty](t, do(t, h, http.MethodGet, "/api/portfolio", "")); len(items) != 2 {
		t.Errorf("portfolio = %d items", len(items))
	}

	if w := do(t, h, http.MethodPost, "/api/portfolio/history/snapshot", ""); w.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", w.Code)
	}
	report := decode[portfolio.Report](t, do(t, h, http.MethodGet, "/api/portfolio/history?range=1year", ""))
	if len(report.Points) != 1 || report.Points[0].Date != time.Now().Format(portfolio.MonthLayout) {
		t.Errorf("report = %+v", report)
	}
	if w := do(t, h, http.MethodGet, "/api/portfolio/history?range=decade", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad range status = %d", w.Code)
	}
}

func TestSettingsAndReportConfigs(t *testing.T) {
	h := newTestRouter(t, Options{})

	if got := decode[model.Settings](t, do(t, h, http.MethodGet, "/api/settings", "")); got != model.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}
	if w := do(t, h, http.MethodPut, "/api/settings", `{"theme":"neon","currency":"CAD","defaultCity":"Toronto","dashboardView":"compact"}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d", w.Code)
	}

	w := do(t, h, http.MethodPost, "/api/reports/configs", `{"name":"Q3","reportType":"equity","timeRange":"6months"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("save config = %d %s", w.Code, w.Body.String())
	}
	cfg := decode[model.ReportConfig](t, w)
	if cfg.ID == "" {
		t.Errorf("config id not assigned")
	}
	if configs := decode[[]model.ReportConfig](t, do(t, h, http.MethodGet, "/api/reports/configs", "")); len(configs) != 1 {
		t.Errorf("configs = %+v", configs)
	}
	if w := do(t, h, http.MethodDelete, "/api/reports/configs/"+cfg.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/api/reports/configs/"+cfg.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", w.Code)
	}
}

func TestExportCSV(t *testing.T) {
	h := newTestRouter(t, Options{})
	w := do(t, h, http.MethodGet, "/api/properties/export", "")
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 13 || !strings.HasPrefix(lines[0], "id,address,city") {
		t.Errorf("csv = %d lines, header %q", len(lines), lines[0])
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})
	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request = %d, want 429", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, Options{Origins: []string{"http://localhost:3000"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/properties", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}
}
