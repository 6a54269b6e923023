package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/template-marketplace/pkg/helpers"
	"github.com/oksasatya/template-marketplace/pkg/response"
)

const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// accessToken prefers the Authorization header and falls back to the cookie.
func accessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil {
		return tok
	}
	return ""
}

// identify resolves the caller. With Redis configured the token's sid must
// match the stored session, so logout and revocation take effect at once.
func identify(c *gin.Context, rdb *redis.Client, jwt *helpers.JWTManager) (*helpers.Claims, string) {
	token := accessToken(c)
	if token == "" {
		return nil, "missing access token"
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil, "invalid access token"
	}
	if rdb != nil {
		var rec helpers.SessionRecord
		ok, err := helpers.RedisGetJSON(c.Request.Context(), rdb, helpers.KeySession(claims.UserID), &rec)
		if err != nil || !ok || rec.SID != claims.SessionID {
			return nil, "session expired"
		}
	}
	return claims, ""
}

// Auth rejects requests without a valid access token and live session.
// On success it sets userID and userRole in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, reason := identify(c, rdb, jwt)
		if claims == nil {
			response.Error[any](c, http.StatusUnauthorized, reason, nil)
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth attaches the caller identity when a valid token is sent and
// lets anonymous requests through untouched.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := identify(c, rdb, jwt); claims != nil {
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUserRole, claims.Role)
		}
		c.Next()
	}
}
