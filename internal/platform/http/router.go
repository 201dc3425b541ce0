package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gta-invest/propertymap/internal/business/catalog"
	"github.com/gta-invest/propertymap/internal/business/collection"
	"github.com/gta-invest/propertymap/internal/business/portfolio"
	"github.com/gta-invest/propertymap/internal/business/preferences"
	"github.com/gta-invest/propertymap/internal/platform/logger"
)

// StructValidator validates request payloads by their tags.
type StructValidator interface {
	Struct(s any) error
}

// Deps are the services the handlers call.
type Deps struct {
	Catalog     *catalog.Service
	Favorites   *collection.Favorites
	Portfolio   *collection.Portfolio
	History     *portfolio.History
	Preferences *preferences.Service
	Validator   StructValidator
	Log         *logger.Logger
}

// Options configures the middleware chain.
type Options struct {
	Origins        []string
	RateLimitRPS   float64 // zero disables rate limiting
	RateLimitBurst int
}

// Router wires HTTP handlers.
type Router struct {
	catalog   *catalog.Service
	favorites *collection.Favorites
	portfolio *collection.Portfolio
	history   *portfolio.History
	prefs     *preferences.Service
	validator StructValidator
	log       *logger.Logger
	now       func() time.Time
}

func NewRouter(deps Deps, opts Options) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	r := &Router{
		catalog:   deps.Catalog,
		favorites: deps.Favorites,
		portfolio: deps.Portfolio,
		history:   deps.History,
		prefs:     deps.Preferences,
		validator: deps.Validator,
		log:       log,
		now:       time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log), corsMiddleware(opts.Origins))
	if opts.RateLimitRPS > 0 {
		router.Use(NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), max(opts.RateLimitBurst, 1), log).RateLimit())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/properties", r.listProperties)
		api.GET("/properties/export", r.exportProperties)
		api.GET("/properties/bounds", r.propertiesInBounds)
		api.GET("/properties/filter", r.filterProperties)
		api.GET("/properties/:id", r.getProperty)
		api.POST("/properties", r.createProperty)
		api.PUT("/properties/:id", r.updateProperty)
		api.DELETE("/properties/:id", r.deleteProperty)
		api.GET("/properties/:id/financials", r.getFinancials)
		api.POST("/properties/:id/financials", r.postFinancials)

		api.GET("/location-scores", r.listLocationScores)
		api.GET("/location-scores/bounds", r.locationScoresInBounds)
		api.GET("/location-scores/filter", r.filterLocationScores)
		api.GET("/location-scores/:id", r.getLocationScore)

		api.POST("/listings/search", r.searchListings)
		api.GET("/dashboard", r.getDashboard)
		api.POST("/dashboard/refresh", r.refreshDashboard)
		api.GET("/dashboard/snapshot", r.getDashboardSnapshot)
		api.GET("/cities", r.getCities)
		api.GET("/regions", r.getRegions)
		api.GET("/heatmap", r.getHeatmap)

		api.GET("/favorites", r.listFavorites)
		api.POST("/favorites", r.addFavorite)
		api.DELETE("/favorites/:id", r.removeFavorite)
		api.POST("/favorites/:id/toggle", r.toggleFavorite)

		api.GET("/portfolio", r.listPortfolio)
		api.POST("/portfolio", r.addPortfolioProperty)
		api.DELETE("/portfolio/:id", r.removePortfolioProperty)
		api.POST("/portfolio/sample", r.addSamplePortfolio)
		api.GET("/portfolio/summary", r.getPortfolioSummary)
		api.GET("/portfolio/history", r.getPortfolioHistory)
		api.POST("/portfolio/history/snapshot", r.recordPortfolioSnapshot)

		api.GET("/settings", r.getSettings)
		api.PUT("/settings", r.saveSettings)

		api.GET("/reports/configs", r.listReportConfigs)
		api.POST("/reports/configs", r.saveReportConfig)
		api.DELETE("/reports/configs/:id", r.deleteReportConfig)
	}

	return router
}

func (r *Router) exportProperties(c *gin.Context) {
	props, err := r.catalog.Properties(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=properties.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "address", "city", "zip", "bedrooms", "bathrooms", "sqft", "year_built", "list_price", "status", "cap_rate"}); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	for _, p := range props {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.Address,
			p.City,
			p.ZipCode,
			strconv.Itoa(p.Bedrooms),
			strconv.FormatFloat(p.Bathrooms, 'f', -1, 64),
			strconv.Itoa(p.SquareFeet),
			strconv.Itoa(p.YearBuilt),
			fmt.Sprintf("%.2f", p.ListPrice),
			p.Status,
			fmt.Sprintf("%.2f", p.CapRate),
		}
		if err := writer.Write(row); err != nil {
			return
		}
	}
}
