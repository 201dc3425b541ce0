package model

import "time"

// Listing statuses used by the filter toggles.
const (
	StatusActive  = "Active"
	StatusPending = "Pending"
	StatusSold    = "Sold"
)

// Property is a listing as returned by GET /properties.
type Property struct {
	ID               int64     `json:"id" firestore:"id"`
	Address          string    `json:"address" firestore:"address" validate:"required"`
	City             string    `json:"city" firestore:"city" validate:"required"`
	State            string    `json:"state,omitempty" firestore:"state,omitempty"`
	ZipCode          string    `json:"zipCode,omitempty" firestore:"zipCode,omitempty"`
	Bedrooms         int       `json:"bedrooms" firestore:"bedrooms" validate:"gte=0"`
	Bathrooms        float64   `json:"bathrooms" firestore:"bathrooms" validate:"gte=0"`
	SquareFeet       int       `json:"squareFeet" firestore:"squareFeet" validate:"gt=0"`
	YearBuilt        int       `json:"yearBuilt" firestore:"yearBuilt"`
	ListPrice        float64   `json:"listPrice" firestore:"listPrice" validate:"gt=0"`
	Status           string    `json:"status" firestore:"status"`
	Latitude         float64   `json:"latitude" firestore:"latitude"`
	Longitude        float64   `json:"longitude" firestore:"longitude"`
	MonthlyRent      float64   `json:"monthlyRent,omitempty" firestore:"monthlyRent,omitempty" validate:"gte=0"`
	PropertyTax      float64   `json:"propertyTax,omitempty" firestore:"propertyTax,omitempty" validate:"gte=0"`
	CapRate          float64   `json:"capRate,omitempty" firestore:"capRate,omitempty"`
	AppreciationRate float64   `json:"appreciationRate,omitempty" firestore:"appreciationRate,omitempty"`
	CashOnCashReturn float64   `json:"cashOnCashReturn,omitempty" firestore:"cashOnCashReturn,omitempty"`
	YearlyExpenses   float64   `json:"yearlyExpenses,omitempty" firestore:"yearlyExpenses,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Description      string    `json:"description,omitempty" firestore:"description,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// Key returns the identifier used by keyed sets.
func (p Property) Key() int64 { return p.ID }

// LocationScore carries the neighbourhood-level investment scores.
// Scores are on a 0-10 scale; Address is the join key to Property.Address.
type LocationScore struct {
	ID                  int64   `json:"id" firestore:"id"`
	Address             string  `json:"address" firestore:"address"`
	Latitude            float64 `json:"latitude" firestore:"latitude"`
	Longitude           float64 `json:"longitude" firestore:"longitude"`
	OverallScore        float64 `json:"overallScore" firestore:"overallScore"`
	PerformanceScore    float64 `json:"performanceScore" firestore:"performanceScore"`
	RiskScore           float64 `json:"riskScore" firestore:"riskScore"`
	DemandScore         float64 `json:"demandScore" firestore:"demandScore"`
	SupplyScore         float64 `json:"supplyScore" firestore:"supplyScore"`
	CapRate             float64 `json:"capRate" firestore:"capRate"`
	Appreciation        float64 `json:"appreciation" firestore:"appreciation"`
	IRR                 float64 `json:"irr" firestore:"irr"`
	FiveYearTotalReturn float64 `json:"fiveYearTotalReturn" firestore:"fiveYearTotalReturn"`
	NeighborhoodChange  float64 `json:"neighborhoodChange" firestore:"neighborhoodChange"`
	AverageHousePrice   float64 `json:"averageHousePrice" firestore:"averageHousePrice"`
	PropertyTax         float64 `json:"propertyTax" firestore:"propertyTax"`
}

// Bounds is a lat/lng box as sent by the map viewport.
type Bounds struct {
	SouthLat float64 `json:"southLat" form:"southLat"`
	NorthLat float64 `json:"northLat" form:"northLat"`
	WestLng  float64 `json:"westLng" form:"westLng"`
	EastLng  float64 `json:"eastLng" form:"eastLng"`
}

// Contains reports whether the point lies inside the box, edges included.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.SouthLat && lat <= b.NorthLat && lng >= b.WestLng && lng <= b.EastLng
}

// PortfolioProperty is a property the user owns.
type PortfolioProperty struct {
	Property
	PurchasePrice   float64 `json:"purchasePrice" firestore:"purchasePrice" validate:"gte=0"`
	CurrentValue    float64 `json:"currentValue" firestore:"currentValue" validate:"gte=0"`
	LoanBalance     float64 `json:"loanBalance" firestore:"loanBalance" validate:"gte=0"`
	MonthlyExpenses float64 `json:"monthlyExpenses,omitempty" firestore:"monthlyExpenses,omitempty"`
	MonthlyCashFlow float64 `json:"monthlyCashFlow" firestore:"monthlyCashFlow"`
	PropertyType    string  `json:"propertyType,omitempty" firestore:"propertyType,omitempty"`
	PurchaseDate    string  `json:"purchaseDate,omitempty" firestore:"purchaseDate,omitempty"`
}

// HistoryPoint is one month of portfolio history.
type HistoryPoint struct {
	Date            string  `json:"date"` // YYYY-MM
	TotalValue      float64 `json:"totalValue"`
	TotalEquity     float64 `json:"totalEquity"`
	MonthlyCashFlow float64 `json:"monthlyCashFlow"`
	ROI             float64 `json:"roi"`
	CapRate         float64 `json:"capRate"`
}

// Settings is the persisted user preferences blob.
type Settings struct {
	Theme              string `json:"theme" validate:"oneof=light dark system"`
	Currency           string `json:"currency" validate:"oneof=CAD USD"`
	DefaultCity        string `json:"defaultCity" validate:"required"`
	ShowHeatmap        bool   `json:"showHeatmap"`
	ShowAllGTA         bool   `json:"showAllGTA"`
	DashboardView      string `json:"dashboardView" validate:"oneof=compact expanded"`
	NotifyNewListings  bool   `json:"notifyNewListings"`
	AutoRefreshMinutes int    `json:"autoRefreshMinutes" validate:"gte=0"`
}

// DefaultSettings mirrors the first-run preferences of the web client.
func DefaultSettings() Settings {
	return Settings{
		Theme:              "light",
		Currency:           "CAD",
		DefaultCity:        "Toronto",
		ShowHeatmap:        true,
		ShowAllGTA:         false,
		DashboardView:      "compact",
		NotifyNewListings:  true,
		AutoRefreshMinutes: 30,
	}
}

// ReportConfig is a saved report selection.
type ReportConfig struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"required"`
	ReportType string    `json:"reportType" validate:"oneof=performance cashFlow equity roi"`
	TimeRange  string    `json:"timeRange" validate:"oneof=1month 3months 6months 1year all"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DashboardSnapshot is a singleton document that pre-aggregates dashboard metrics.
type DashboardSnapshot struct {
	LastUpdated         time.Time      `json:"lastUpdated,omitempty" firestore:"lastUpdated,omitempty"`
	TotalProperties     int            `json:"totalProperties" firestore:"totalProperties"`
	ActiveProperties    int            `json:"activeProperties" firestore:"activeProperties"`
	PendingProperties   int            `json:"pendingProperties" firestore:"pendingProperties"`
	AveragePrice        float64        `json:"averagePrice" firestore:"averagePrice"`
	AverageCapRate      float64        `json:"averageCapRate" firestore:"averageCapRate"`
	AverageAppreciation float64        `json:"averageAppreciation" firestore:"averageAppreciation"`
	ByCity              map[string]int `json:"byCity,omitempty" firestore:"byCity,omitempty"`
	PriceBuckets        map[string]int `json:"priceBuckets,omitempty" firestore:"priceBuckets,omitempty"`
}
