package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/tokens"
	"github.com/Skotchmaster/inventory/internal/transport"
)

// httpError maps a service outcome to a client-facing error. Anything outside
// the known set becomes a bare 500 so storage details never leak.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateIdentity):
		return echo.NewHTTPError(http.StatusBadRequest, "identity already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity or password")
	case errors.Is(err, tokens.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		he = httpError(err)
	}
	if he.Internal != nil {
		logging.FromContext(c.Request().Context()).Error("request_failed", "status", he.Code, "error", he.Internal)
	}

	msg := fmt.Sprint(he.Message)

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, transport.ErrorResponse{Error: msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
