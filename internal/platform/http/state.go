package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gta-invest/propertymap/internal/business/collection"
	"github.com/gta-invest/propertymap/internal/business/portfolio"
	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
)

func (r *Router) listFavorites(c *gin.Context) {
	items, err := r.favorites.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// addFavorite accepts a full property, or just {"id": n} for a catalog property.
func (r *Router) addFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	var p model.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	if p.Address == "" {
		found, err := r.catalog.Property(ctx, p.ID)
		if err != nil {
			r.respondError(c, err)
			return
		}
		p = found
	}
	if err := r.validator.Struct(p); err != nil {
		r.respondError(c, err)
		return
	}
	added, err := r.favorites.Add(ctx, p)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "favorite": true})
}

func (r *Router) removeFavorite(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	removed, err := r.favorites.Remove(c.Request.Context(), id)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "favorite": false})
}

func (r *Router) toggleFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	item, err := r.catalog.Property(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		// Gone from the catalog: toggling can only clear a stale favorite.
		removed, rerr := r.favorites.Remove(ctx, id)
		if rerr != nil {
			r.respondError(c, rerr)
			return
		}
		if removed {
			c.JSON(http.StatusOK, gin.H{"favorite": false})
			return
		}
	}
	if err != nil {
		r.respondError(c, err)
		return
	}
	favorite, err := r.favorites.Toggle(ctx, item)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}

func (r *Router) listPortfolio(c *gin.Context) {
	items, err := r.portfolio.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *Router) addPortfolioProperty(c *gin.Context) {
	var p model.PortfolioProperty
	if err := c.ShouldBindJSON(&p); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	if err := r.validator.Struct(p); err != nil {
		r.respondError(c, err)
		return
	}
	added, err := r.portfolio.Add(c.Request.Context(), p)
	if err != nil {
		r.respondError(c, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"added": added})
}

func (r *Router) removePortfolioProperty(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	removed, err := r.portfolio.Remove(c.Request.Context(), id)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (r *Router) addSamplePortfolio(c *gin.Context) {
	added, err := r.portfolio.AddAll(c.Request.Context(), collection.SamplePortfolio())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (r *Router) getPortfolioSummary(c *gin.Context) {
	items, err := r.portfolio.List(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolio.Summarize(items))
}

func (r *Router) getPortfolioHistory(c *gin.Context) {
	report, err := r.history.Report(c.Request.Context(), c.DefaultQuery("range", portfolio.RangeAll), r.now())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) recordPortfolioSnapshot(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := r.portfolio.List(ctx)
	if err != nil {
		r.respondError(c, err)
		return
	}
	point, err := r.history.RecordSnapshot(ctx, items, r.now())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, point)
}

func (r *Router) getSettings(c *gin.Context) {
	settings, err := r.prefs.Settings(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (r *Router) saveSettings(c *gin.Context) {
	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	saved, err := r.prefs.SaveSettings(c.Request.Context(), settings)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (r *Router) listReportConfigs(c *gin.Context) {
	configs, err := r.prefs.ReportConfigs(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (r *Router) saveReportConfig(c *gin.Context) {
	var cfg model.ReportConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	saved, err := r.prefs.SaveReportConfig(c.Request.Context(), cfg)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (r *Router) deleteReportConfig(c *gin.Context) {
	if err := r.prefs.DeleteReportConfig(c.Request.Context(), c.Param("id")); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
