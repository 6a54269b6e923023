package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/template-marketplace/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_SessionBoundToken(t *testing.T) {
	_, rdb := newRedis(t)
	jwt := helpers.NewJWTManager("a", "r", time.Hour, time.Hour)
	ctx := context.Background()

	r := gin.New()
	r.GET("/me", Auth(rdb, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserID)+"/"+c.GetString(CtxUserRole))
	})

	tok, _, err := jwt.GenerateAccessToken("u1", "sid-1", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code, "no session stored yet")

	require.NoError(t, helpers.RedisSetJSON(ctx, rdb, helpers.KeySession("u1"), helpers.SessionRecord{SID: "sid-1", UserID: "u1"}, time.Minute))
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1/admin", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessCookie, Value: tok})
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	require.NoError(t, helpers.RedisSetJSON(ctx, rdb, helpers.KeySession("u1"), helpers.SessionRecord{SID: "sid-2", UserID: "u1"}, time.Minute))
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code, "rotated session rejects old token")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Hour, time.Hour)
	r := gin.New()
	r.GET("/", OptionalAuth(nil, jwt), func(c *gin.Context) { c.String(http.StatusOK, "uid="+c.GetString(CtxUserID)) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "uid=", w.Body.String())

	tok, _, _ := jwt.GenerateAccessToken("u9", "s", "user")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	assert.Equal(t, "uid=u9", do(r, req).Body.String())
}

func TestSelfOrAdmin(t *testing.T) {
	as := func(uid, role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(CtxUserID, uid)
			c.Set(CtxUserRole, role)
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	cases := []struct {
		uid, role string
		want      int
	}{
		{"u1", "user", http.StatusNoContent},
		{"u2", "user", http.StatusForbidden},
		{"u2", "admin", http.StatusNoContent},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/users/:id", as(tc.uid, tc.role), SelfOrAdmin("id"), ok)
		assert.Equal(t, tc.want, do(r, httptest.NewRequest(http.MethodGet, "/users/u1", nil)).Code)
	}

	r := gin.New()
	r.GET("/admin", as("u1", "seller"), AdminOnly(), ok)
	assert.Equal(t, http.StatusForbidden, do(r, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

func TestWhen(t *testing.T) {
	mw := func(c *gin.Context) {}
	assert.Nil(t, When(false, mw))
	assert.Len(t, When(true, mw, mw), 2)
}

func TestRateLimit_Redis(t *testing.T) {
	_, rdb := newRedis(t)
	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		return do(r, req)
	}
	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimit_LocalFallbackAndBypass(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/x", RateLimit(nil, 1, time.Hour, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/internal", RateLimit(nil, 1, time.Hour, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	public := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("CF-Connecting-IP", "198.51.100.4")
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, public("/x"))
	assert.Equal(t, http.StatusTooManyRequests, public("/x"))

	private := func() int {
		req := httptest.NewRequest(http.MethodGet, "/internal", nil)
		req.Header.Set("X-Real-IP", "10.0.0.5")
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, private())
	assert.Equal(t, http.StatusOK, private())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-trace-0001")
	assert.Equal(t, "upstream-trace-0001", do(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\nwith newline")
	assert.NotContains(t, do(r, req).Body.String(), "bad")
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "garbage, 10.0.0.1")
	req.Header.Set("X-Real-IP", "192.0.2.10")
	assert.Equal(t, "192.0.2.10", do(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 192.0.2.33 , 10.0.0.1")
	assert.Equal(t, "192.0.2.33", do(r, req).Body.String())
}
