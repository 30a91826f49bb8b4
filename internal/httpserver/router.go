package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	authmw "github.com/Skotchmaster/inventory/internal/middleware/auth"
	"github.com/Skotchmaster/inventory/internal/middleware/csrf"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ProductHandler *ProductHTTP
	AuthMW         *authmw.Middleware

	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error

	CookieSecure bool

	// StrictDelete requires a token for DELETE; the ownerId query fallback is
	// only honoured when it is off.
	StrictDelete bool
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := d.Ready(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	// Only cookie-authenticated requests can be forged cross-site.
	csrfMW := csrf.Middleware(csrf.Config{
		Secure:            d.CookieSecure,
		EnforceSameOrigin: true,
		Enforce:           authmw.ViaCookie,
	})

	// Public routes treat a stale token as no token, so a client can always
	// log in again and lists never fail on auth.
	public := e.Group("", d.AuthMW.Optional, csrfMW)
	public.POST("/register", d.AuthHandler.Register)
	public.POST("/login", d.AuthHandler.Login)
	public.POST("/logout", d.AuthHandler.Logout)
	public.GET("/products/:ownerId/search", d.ProductHandler.SearchProducts)
	public.GET("/products/:ownerId", d.ProductHandler.ListProducts)

	products := e.Group("/products", d.AuthMW.Resolve, csrfMW)
	products.POST("", d.ProductHandler.CreateProduct)
	products.PUT("/:id", d.ProductHandler.UpdateProduct)
	products.PATCH("/:id", d.ProductHandler.UpdateProduct)
	if d.StrictDelete {
		products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.AuthMW.Require)
	} else {
		products.DELETE("/:id", d.ProductHandler.DeleteProduct)
	}
}
