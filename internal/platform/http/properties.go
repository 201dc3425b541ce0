package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gta-invest/propertymap/internal/business/finance"
	"github.com/gta-invest/propertymap/internal/business/listing"
	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
)

func (r *Router) listProperties(c *gin.Context) {
	props, err := r.catalog.Properties(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (r *Router) getProperty(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	p, err := r.catalog.Property(c.Request.Context(), id)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (r *Router) propertiesInBounds(c *gin.Context) {
	b, err := listing.ParseBounds(c.Request.URL.Query())
	if err != nil {
		r.respondError(c, apperr.Wrap(apperr.KindBadRequest, err.Error(), err))
		return
	}
	props, err := r.catalog.PropertiesInBounds(c.Request.Context(), b)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (r *Router) filterProperties(c *gin.Context) {
	props, err := r.catalog.FilterProperties(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (r *Router) createProperty(c *gin.Context) {
	var p model.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	created, err := r.catalog.CreateProperty(c.Request.Context(), p)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (r *Router) updateProperty(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	var p model.Property
	if err := c.ShouldBindJSON(&p); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	updated, err := r.catalog.UpdateProperty(c.Request.Context(), id, p)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (r *Router) deleteProperty(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	if err := r.catalog.DeleteProperty(c.Request.Context(), id); err != nil {
		r.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getFinancials evaluates a property with its default inputs, overridden by
// any finance.Inputs field present in the query string.
func (r *Router) getFinancials(c *gin.Context) {
	r.financials(c, func(in *finance.Inputs) error {
		return c.ShouldBindQuery(in)
	})
}

// postFinancials evaluates a property with inputs from the JSON body laid over the defaults.
func (r *Router) postFinancials(c *gin.Context) {
	r.financials(c, func(in *finance.Inputs) error {
		return c.ShouldBindJSON(in)
	})
}

func (r *Router) financials(c *gin.Context, bind func(*finance.Inputs) error) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	p, in, err := r.catalog.DefaultInputs(ctx, id)
	if err != nil {
		r.respondError(c, err)
		return
	}
	if err := bind(&in); err != nil {
		r.respondError(c, invalidBody(err))
		return
	}
	fin, err := r.catalog.Evaluate(p, in, r.currency(c))
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fin)
}

// currency is the ?currency= override or the saved settings currency.
func (r *Router) currency(c *gin.Context) string {
	if code := c.Query("currency"); code != "" {
		return code
	}
	settings, err := r.prefs.Settings(c.Request.Context())
	if err != nil {
		r.log.WithContext(c.Request.Context()).StoreError("load settings", err)
		return finance.DefaultCurrency
	}
	return settings.Currency
}

func (r *Router) listLocationScores(c *gin.Context) {
	scores, err := r.catalog.LocationScores(c.Request.Context())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

func (r *Router) getLocationScore(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		r.respondError(c, err)
		return
	}
	s, err := r.catalog.LocationScore(c.Request.Context(), id)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (r *Router) locationScoresInBounds(c *gin.Context) {
	b, err := listing.ParseBounds(c.Request.URL.Query())
	if err != nil {
		r.respondError(c, apperr.Wrap(apperr.KindBadRequest, err.Error(), err))
		return
	}
	scores, err := r.catalog.LocationScoresInBounds(c.Request.Context(), b)
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

func (r *Router) filterLocationScores(c *gin.Context) {
	scores, err := r.catalog.FilterLocationScores(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		r.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

