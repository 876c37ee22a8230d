package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/liveclass-gateway/internal/application"
	"github.com/example/liveclass-gateway/internal/logging"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps application errors to HTTP statuses. Policy
// denials surface their reason verbatim; everything unexpected is logged
// and reported generically.
func writeServiceError(c *gin.Context, err error) {
	var denied *application.PolicyDeniedError
	switch {
	case errors.As(err, &denied):
		c.JSON(http.StatusBadRequest, errorResponse{Error: denied.Reason})
	case errors.Is(err, application.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, application.ErrUnauthorized):
		c.JSON(http.StatusForbidden, errorResponse{Error: "caller is not permitted to perform this action"})
	case errors.Is(err, application.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "class not found"})
	default:
		if logger := logging.FromContext(c.Request.Context()); logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"kind", application.ErrorKind(err), "error", err)
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
