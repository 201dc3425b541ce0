package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// respondError maps typed errors to their status. Untyped errors are 500s
// and their text is logged, not returned.
func (r *Router) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "internal error"}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		status = domainErr.HTTPStatus()
		body = ErrorResponse{Error: domainErr.Message, Details: domainErr.Details}
	}
	if status >= http.StatusInternalServerError {
		r.log.WithContext(c.Request.Context()).HTTPError(c.Request.Method, c.Request.URL.Path, status, err, c.ClientIP())
	}
	c.AbortWithStatusJSON(status, body)
}

func invalidBody(err error) error {
	return apperr.Wrap(apperr.KindBadRequest, "invalid body", err)
}

// idParam parses the :id path segment.
func idParam(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid id " + strconv.Quote(raw))
	}
	return id, nil
}
