package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", StatusCategory(204))
	assert.Equal(t, "4xx", StatusCategory(404))
	assert.Equal(t, "5xx", StatusCategory(500))
	assert.Equal(t, "", StatusCategory(302))
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPMetrics("metrics-test")
	NewHTTPMetrics("metrics-test")

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/things/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", "GET", "/things/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(StatusCategoryCounter.WithLabelValues("metrics-test", "4xx", "GET", "/things/:id")))
}
