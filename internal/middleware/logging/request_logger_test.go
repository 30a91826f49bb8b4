package loggingmw

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/inventory/internal/logging"
)

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		rec = map[string]any{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
	}
	require.NotNil(t, rec)
	return rec
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))
	e.GET("/ok", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside")
		return c.NoContent(http.StatusOK)
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	e.ServeHTTP(httptest.NewRecorder(), req)

	rec := lastRecord(t, &buf)
	assert.Equal(t, "request completed", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.EqualValues(t, 200, rec["status"])
	assert.Equal(t, "rid-1", rec["request_id"])
	assert.Equal(t, "/ok", rec["path"])

	buf.Reset()
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	rec = lastRecord(t, &buf)
	assert.Equal(t, "WARN", rec["level"])
	assert.EqualValues(t, 404, rec["status"])
}
