package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

const (
	AccessCookie = "accessToken"
	principalKey = "principal"
)

type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

// Principal is the verified identity behind a request.
type Principal struct {
	AccountID uuid.UUID
	Identity  string
	ViaCookie bool
}

type Middleware struct {
	Verifier Verifier
}

func New(v Verifier) *Middleware {
	return &Middleware{Verifier: v}
}

// Resolve attaches a principal when the request carries a token, either as a
// bearer header or as the access cookie. Requests without a token pass
// through; a token that fails verification is rejected.
func (m *Middleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.resolve(c) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		return next(c)
	}
}

// Optional is Resolve for public routes: a token that fails verification is
// dropped and the request continues anonymously.
func (m *Middleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.resolve(c)
		return next(c)
	}
}

// Require rejects requests that reach it without a principal. It runs after
// Resolve.
func (m *Middleware) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := PrincipalFrom(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}
		return next(c)
	}
}

// resolve reports false only for a token that is present and invalid. A bad
// access cookie is cleared.
func (m *Middleware) resolve(c echo.Context) bool {
	token, viaCookie := tokenFrom(c)
	if token == "" {
		return true
	}

	claims, err := m.Verifier.Verify(token)
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "reason", "invalid token", "error", err)
		if viaCookie {
			c.SetCookie(&http.Cookie{Name: AccessCookie, Path: "/", MaxAge: -1, HttpOnly: true})
		}
		return false
	}

	id, _ := claims.AccountID()
	c.Set(principalKey, Principal{AccountID: id, Identity: claims.Identity, ViaCookie: viaCookie})
	return true
}

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// ViaCookie reports whether the request was authenticated by cookie, which is
// what makes it subject to CSRF checks.
func ViaCookie(c echo.Context) bool {
	p, ok := PrincipalFrom(c)
	return ok && p.ViaCookie
}

func tokenFrom(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, tok, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok), false
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return "", false
}
