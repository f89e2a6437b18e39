package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RealIPKey)+"|"+c.GetString("request_id"))
	})
	return r
}

func get(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	return getFrom(r, "203.0.113.7:5555", headers)
}

func getFrom(r *gin.Engine, remote string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRealIP_IgnoresHeadersFromUntrustedPeer(t *testing.T) {
	r := newEngine(RealIP())

	assert.Equal(t, "203.0.113.7|", get(r, nil).Body.String())
	assert.Equal(t, "203.0.113.7|", get(r, map[string]string{"CF-Connecting-IP": "198.51.100.1"}).Body.String())
	assert.Equal(t, "203.0.113.7|", get(r, map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"}).Body.String())
}

func TestRealIP_TrustedProxy(t *testing.T) {
	r := newEngine(RealIP())
	require.NoError(t, TrustProxies(r, []string{"10.0.0.0/8"}, ""))

	w := getFrom(r, "10.0.0.5:4000", map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, "198.51.100.2|", w.Body.String())

	// same header from outside the trusted range is ignored
	w = get(r, map[string]string{"X-Forwarded-For": "198.51.100.2"})
	assert.Equal(t, "203.0.113.7|", w.Body.String())
}

func TestRealIP_TrustedPlatform(t *testing.T) {
	r := newEngine(RealIP())
	require.NoError(t, TrustProxies(r, nil, "cloudflare"))
	assert.Equal(t, gin.PlatformCloudflare, r.TrustedPlatform)

	w := get(r, map[string]string{"CF-Connecting-IP": "198.51.100.1"})
	assert.Equal(t, "198.51.100.1|", w.Body.String())
}

func TestTrustProxies_RejectsBadCIDR(t *testing.T) {
	r := newEngine()
	assert.Error(t, TrustProxies(r, []string{"not-an-ip"}, ""))
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	w := get(r, nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	const id = "6f1c1e3a-3b1a-4c55-9f63-3d3c3f0b9a10"
	w = get(r, map[string]string{RequestIDHeader: id})
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))

	w = get(r, map[string]string{RequestIDHeader: "<script>"})
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newEngine(RealIP(), RateLimit(rdb, 2, time.Minute, KeyByIP(), nil))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	w := get(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = get(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	// rotating X-Forwarded-For from the same peer does not open a new window
	for _, xff := range []string{"198.51.100.9", "198.51.100.10", "10.0.0.1"} {
		assert.Equal(t, http.StatusTooManyRequests, get(r, map[string]string{"X-Forwarded-For": xff}).Code)
	}

	// a different peer has its own window
	assert.Equal(t, http.StatusOK, getFrom(r, "198.51.100.9:1234", nil).Code)
}

func TestRateLimit_AllowPrivateIPBypasses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newEngine(RealIP(), RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, getFrom(r, "10.1.2.3:9100", nil).Code)
	}
}

func TestRateLimit_SpoofedPrivateHeaderDoesNotBypass(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newEngine(RealIP(), RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()))
	spoof := map[string]string{"X-Forwarded-For": "10.0.0.1", "CF-Connecting-IP": "127.0.0.1"}
	assert.Equal(t, http.StatusOK, get(r, spoof).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, spoof).Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := newEngine(RateLimit(rdb, 1, time.Minute, KeyByIP(), nil))
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newEngine(RequestIDMiddleware(), RequestLogger(logger))

	get(r, nil)
	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, e.Level)
	assert.Equal(t, 200, e.Data["status"])
	assert.NotEmpty(t, e.Data["request_id"])
}
