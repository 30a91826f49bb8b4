package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/tokens"
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func captured(got *Principal, ok *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*got, *ok = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	iss := tokens.NewIssuer([]byte("secret"), 0)
	mw := New(iss)
	id := uuid.New()
	tok, _, err := iss.Issue(id, "alice")
	require.NoError(t, err)

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
		c, _ := newContext(req)

		var p Principal
		var ok bool
		require.NoError(t, mw.Resolve(captured(&p, &ok))(c))
		require.True(t, ok)
		assert.Equal(t, id, p.AccountID)
		assert.Equal(t, "alice", p.Identity)
		assert.False(t, p.ViaCookie)
		assert.False(t, ViaCookie(c))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tok})
		c, _ := newContext(req)

		var p Principal
		var ok bool
		require.NoError(t, mw.Resolve(captured(&p, &ok))(c))
		require.True(t, ok)
		assert.True(t, p.ViaCookie)
		assert.True(t, ViaCookie(c))
	})

	t.Run("anonymous passes", func(t *testing.T) {
		c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

		var p Principal
		var ok bool
		require.NoError(t, mw.Resolve(captured(&p, &ok))(c))
		assert.False(t, ok)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "garbage"})
		c, rec := newContext(req)

		err := mw.Resolve(func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError")
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), AccessCookie+"=")
	})
}

func TestOptionalDropsInvalidToken(t *testing.T) {
	t.Parallel()

	mw := New(tokens.NewIssuer([]byte("secret"), 0))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer stale.token.value")
	c, rec := newContext(req)

	var p Principal
	var ok bool
	require.NoError(t, mw.Optional(captured(&p, &ok))(c))
	assert.False(t, ok)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "garbage"})
	c, rec = newContext(req)
	require.NoError(t, mw.Optional(captured(&p, &ok))(c))
	assert.False(t, ok)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), AccessCookie+"=")
}

func TestRequire(t *testing.T) {
	t.Parallel()

	iss := tokens.NewIssuer([]byte("secret"), 0)
	mw := New(iss)
	handler := mw.Resolve(mw.Require(func(c echo.Context) error { return c.NoContent(http.StatusOK) }))

	c, _ := newContext(httptest.NewRequest(http.MethodDelete, "/products/x", nil))
	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	tok, _, err := iss.Issue(uuid.New(), "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/products/x", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	c, rec := newContext(req)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
