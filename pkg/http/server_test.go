package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeFunc func(e *echo.Echo)

func (f routeFunc) RegisterRoutes(e *echo.Echo) { f(e) }

type sample struct {
	Name  string `json:"name" validate:"required"`
	Limit int    `json:"limit" default:"10" validate:"lte=100"`
}

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	routes := routeFunc(func(e *echo.Echo) {
		e.POST("/sample", func(c echo.Context) error {
			req := &sample{}
			if verr := ReadAndValidateRequest(c, req); verr != nil {
				return BadRequestResponse(c, verr)
			}
			return SuccessResponse(c, req)
		})
		e.GET("/app-error", func(c echo.Context) error {
			return AppErrorResponse(c, UnprocessableError("nope").WithParam("why", "test"))
		})
		e.GET("/plain-error", func(c echo.Context) error {
			return AppErrorResponse(c, errors.New("boom"))
		})
	})
	opts = append([]ServerOption{WithMetrics(nil, nil, "")}, opts...)
	return NewServer(routes, opts...)
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_BodyLimit(t *testing.T) {
	s := newTestServer(t, WithBodyLimit("16B"))
	rec := serve(s, http.MethodPost, "/sample", `{"name":"a much longer payload than sixteen bytes"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestReadAndValidateRequest(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodPost, "/sample", `{"name":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ok struct {
		Data sample `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, 10, ok.Data.Limit)

	rec = serve(s, http.MethodPost, "/sample", `{"limit":500}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var bad struct {
		Data []ValidationError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bad))
	codes := make([]string, len(bad.Data))
	for i, v := range bad.Data {
		codes[i] = v.Code
	}
	assert.ElementsMatch(t, []string{"ERR_REQUIRED", "ERR_LTE"}, codes)
}

func TestAppErrorResponse(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/app-error", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_UNPROCESSABLE"`)
	assert.Contains(t, rec.Body.String(), `"why":"test"`)

	rec = serve(s, http.MethodGet, "/plain-error", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
