package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	applogger "QuantSignal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Recover(applogger.Nop()))
	e.Use(Metrics(prometheus.NewRegistry()))
	e.Use(RequestLogging(applogger.Nop(), 0))
	e.GET("/ok/:symbol", func(c echo.Context) error { return c.String(http.StatusOK, c.Param("symbol")) })
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })
	e.GET("/fail", func(echo.Context) error { return errors.New("plain error") })
	e.GET("/teapot", func(echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })
	return e
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMiddlewareChain(t *testing.T) {
	e := newEcho()

	rec := serve(e, "/ok/BTC")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BTC", rec.Body.String())

	rec = serve(e, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")

	rec = serve(e, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(e, "/teapot")
	assert.Equal(t, http.StatusTeapot, rec.Code)

	serve(e, "/ok/ETH")
	assert.Equal(t, 2.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/ok/:symbol", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/teapot", http.MethodGet, "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{101: "1xx", 204: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 0: "5xx"}
	for code, want := range tests {
		assert.Equal(t, want, statusClass(code), code)
	}
}
