package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korattejas/beautyden-nextjs-sub001/internal/session"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionRouter(t *testing.T) (*gin.Engine, *session.TokenManager) {
	t.Helper()
	tokens := session.NewTokenManager("0123456789abcdef0123456789abcdef", "test", time.Hour)
	r := gin.New()
	r.Use(RequestID(), Session(SessionConfig{
		Tokens:  tokens,
		Storage: session.NewMemoryStorage(time.Hour, time.Minute),
		Locker:  session.NewLocker(8),
		TTL:     time.Hour,
		Metrics: metrics.NewTestMetrics(),
	}))
	r.GET("/whoami", func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		require.True(t, ok)
		c.String(http.StatusOK, sess.ID())
	})
	return r, tokens
}

func TestSessionMintsTokenWhenMissing(t *testing.T) {
	r, tokens := newSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	token := w.Header().Get(HeaderSessionToken)
	require.NotEmpty(t, token)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestSessionReusesValidToken(t *testing.T) {
	r, tokens := newSessionRouter(t)
	id, token, err := tokens.Issue()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderSessionToken, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, id, w.Body.String())
	assert.Empty(t, w.Header().Get(HeaderSessionToken))
}

func TestSessionReplacesInvalidToken(t *testing.T) {
	r, _ := newSessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderSessionToken, "garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderSessionToken))
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestCORSPreflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://beautyden.in"}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://beautyden.in")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://beautyden.in", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderSessionToken)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryRendersInternalError(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestSessionLockWaitEndsWithRequest(t *testing.T) {
	tokens := session.NewTokenManager("0123456789abcdef0123456789abcdef", "test", time.Hour)
	locker := session.NewLocker(8)
	r := gin.New()
	r.Use(RequestID(), Session(SessionConfig{
		Tokens:  tokens,
		Storage: session.NewMemoryStorage(time.Hour, time.Minute),
		Locker:  locker,
		TTL:     time.Hour,
	}))
	r.POST("/cart/items", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	id, token, err := tokens.Issue()
	require.NoError(t, err)
	unlock, err := locker.Lock(context.Background(), id)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", nil).WithContext(ctx)
	req.Header.Set(HeaderSessionToken, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
