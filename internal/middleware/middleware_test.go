package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStructuredLoggingMiddleware_InjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(StructuredLoggingMiddleware(base))
	var fromRequest, fromGin *slog.Logger
	router.GET("/companies/:company_id/ping", func(c *gin.Context) {
		fromRequest = GetLoggerFromCtx(c.Request.Context())
		fromGin = GetLoggerFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/companies/c1/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.NotNil(t, fromRequest)
	assert.Same(t, fromRequest, fromGin)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"company_id":"c1"`)
}

func TestGetLoggerFromCtx_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetLoggerFromCtx(req.Context()))
}

func TestRequireActor(t *testing.T) {
	router := gin.New()
	router.Use(RequireActor())
	router.GET("/", func(c *gin.Context) {
		actorID, ok := GetActorIDFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, actorID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorHeader, "alice")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	rate := limiter.Rate{Period: time.Minute, Limit: 2}
	instance := limiter.New(memory.NewStore(), rate)

	router := gin.New()
	router.Use(RateLimit(instance))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(ActorHeader, "bob")
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorHeader, "carol")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are tracked per actor")
}
