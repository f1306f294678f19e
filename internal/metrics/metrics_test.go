package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoute(t *testing.T) {
	t.Parallel()

	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/products/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/api/products/1", "/api/products/kaos-polos", "/api/products/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/api/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/api/products/:id", "404")))
}

func TestObserveOrder(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveOrder(OrderPlaced, 3)
	m.ObserveOrder(OrderPlaced, 2)
	m.ObserveOrder(OrderRequiresMoU, 30)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.orders.WithLabelValues(OrderPlaced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders.WithLabelValues(OrderRequiresMoU)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.unitsSold))
}

func TestNilMetrics_NoOps(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveOrder(OrderPlaced, 1)
	m.CacheLookup("product", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ExposesRegistry(t *testing.T) {
	t.Parallel()

	m := New()
	m.CacheLookup("categories", false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `konveksi_cache_lookups_total{family="categories",result="miss"} 1`)
}
