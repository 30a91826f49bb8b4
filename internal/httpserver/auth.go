package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	authmw "github.com/Skotchmaster/inventory/internal/middleware/auth"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	acc, err := h.Svc.Register(ctx, req.Handle(), req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		ID:       acc.ID.String(),
		Identity: acc.Identity,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Handle(), req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(accessCookie(authmw.AccessCookie, res.Token, res.ExpiresAt, h.CookieSecure))

	resp := transport.LoginResponse{
		Token:    res.Token,
		ID:       res.Account.ID.String(),
		Identity: res.Account.Identity,
	}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt.Unix()
		resp.ExpiresAt = &exp
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout only drops the cookie; issued tokens stay valid until they expire.
func (h *AuthHTTP) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.logout")

	c.SetCookie(deleteCookie(authmw.AccessCookie, h.CookieSecure))

	l.Info("logout_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out"})
}
