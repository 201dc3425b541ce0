package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gta-invest/propertymap/internal/business/analytics"
	"github.com/gta-invest/propertymap/internal/business/listing"
	"github.com/gta-invest/propertymap/internal/business/preferences"
)

// searchListings runs the filter dialog. Omitted fields keep the dialog
// defaults and the saved default city.
func (r *Router) searchListings(c *gin.Context) {
	ctx := c.Request.Context()
	spec := listing.DefaultFilterSpec(r.now())
	if settings, err := r.prefs.Settings(ctx); err == nil {
		spec.City = preferences.ApplyDefaultCity(settings, spec.City)
	} else {
		r.log.WithContext(ctx).StoreError("load settings", err)
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&spec); err != nil {
			r.respondError(c, invalidBody(err))
			return
		}
	}
	props, err := r.catalog.Search(ctx, spec)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filter": spec, "items": props, "total": len(props)})
}

func (r *Router) getDashboard(c *gin.Context) {
	opts := analytics.DashboardOptions{
		City:   c.DefaultQuery("city", listing.AllCities),
		Metric: c.Query("metric"),
	}
	dash, err := r.catalog.Dashboard(c.Request.Context(), opts)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (r *Router) refreshDashboard(c *gin.Context) {
	snap, err := r.catalog.RefreshSnapshot(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) getDashboardSnapshot(c *gin.Context) {
	snap, err := r.catalog.Snapshot(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) getCities(c *gin.Context) {
	rows, err := r.catalog.Cities(c.Request.Context(), c.Query("metric"))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (r *Router) getRegions(c *gin.Context) {
	rows, err := r.catalog.Regions(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (r *Router) getHeatmap(c *gin.Context) {
	points, err := r.catalog.Heatmap(c.Request.Context(), c.Query("metric"))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
