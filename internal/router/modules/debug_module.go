package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/template-marketplace/internal/interface/middleware"
	"github.com/oksasatya/template-marketplace/pkg/response"
)

type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar counters; private callers are not rate limited
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

// HealthHandler runs every check with a short timeout and answers 503 when
// any of them fails.
func HealthHandler(checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}
		if !healthy {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.APIResponse[map[string]string]{
				Success: false, Message: "unhealthy", Data: status,
			})
			return
		}
		response.Success(c, http.StatusOK, status, "ok", nil)
	}
}
