package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceops/fleet-autoscaler/internal/logger"
)

func traceTestRouter(capture func(c *gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TraceID())
	router.GET("/ping", func(c *gin.Context) {
		capture(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestTraceID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	router := traceTestRouter(func(c *gin.Context) {
		seen = GetTraceID(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(TraceIDHeader))
}

func TestTraceID_ReusesInboundHeader(t *testing.T) {
	var seen string
	router := traceTestRouter(func(c *gin.Context) {
		seen = GetTraceID(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "caller-supplied")
	router.ServeHTTP(w, req)

	assert.Equal(t, "caller-supplied", seen)
	assert.Equal(t, "caller-supplied", w.Header().Get(TraceIDHeader))
}

func TestTraceID_ThreadsRequestContext(t *testing.T) {
	var fromContext string
	router := traceTestRouter(func(c *gin.Context) {
		fromContext = logger.TraceIDFromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "ctx-trace")
	router.ServeHTTP(w, req)

	assert.Equal(t, "ctx-trace", fromContext)
}

func TestGetTraceID_EmptyWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, GetTraceID(c))
}
