package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wefix.backend/pkg/logger"
)

func TestBodyRecorder_Write(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	w := bodyRecorder{
		ResponseWriter: c.Writer,
		body:           &bytes.Buffer{},
	}

	n, err := w.Write([]byte("ok"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "ok", w.body.String())
	require.Equal(t, "ok", rec.Body.String())
}

func TestRequestIDMiddleware_GeneratesAndUsesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generates request id when header missing", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/x", func(c *gin.Context) {
			id, ok := c.Get(RequestIDKey)
			require.True(t, ok)
			require.NotEmpty(t, id.(string))
			require.Equal(t, id, c.Request.Context().Value(logger.RequestIDKey))
			c.Status(http.StatusNoContent)
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})

	t.Run("uses provided request id header", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/x", func(c *gin.Context) {
			id, _ := c.Get(RequestIDKey)
			require.Equal(t, "req-123", id.(string))
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("replaces oversized header", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, string(bytes.Repeat([]byte("a"), 200)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})
}

func TestLoggerMiddleware_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?phone=%2B94712345678", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(origins []string) *gin.Engine {
		r := gin.New()
		r.Use(CORS(origins))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("allow list", func(t *testing.T) {
		r := newRouter([]string{"https://app.wefix.lk"})

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://app.wefix.lk")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, "https://app.wefix.lk", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		r := newRouter(nil)
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	})
}

func TestHTTPMetricsHandlerRecordsMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)

	router := gin.New()
	router.Use(metrics.Handler())
	router.POST("/verify", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/verify", nil))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodPost, "/verify", "400")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
	assert.NotZero(t, testutil.CollectAndCount(metrics.Duration))

	again, err := NewHTTPMetrics(HTTPMetricsOptions{Registerer: registry})
	require.NoError(t, err)
	assert.Same(t, metrics.Requests, again.Requests)
}

func TestHTTPMetricsHandlerNoopWhenNil(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var metrics *HTTPMetrics
	router := gin.New()
	router.Use(metrics.Handler())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
