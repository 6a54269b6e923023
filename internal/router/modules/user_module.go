package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/template-marketplace/internal/interface/http"
	"github.com/oksasatya/template-marketplace/internal/interface/middleware"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
)

// Limits are requests per minute.
type Limits struct {
	Login    int
	Register int
	API      int
}

// UserModule serves /api/users.
//
// Public: POST /users, POST /users/login, POST /users/refresh, POST /users/logout
// Owner or admin when RequireAuth is set: GET/PUT/DELETE /users/:id, PATCH /users/:id/onboarding
// Admin when RequireAuth is set: GET /users
// Always authenticated: GET /users/search, POST /users/:id/avatar
type UserModule struct {
	Handler     *handlers.UserHandler
	JWT         *helpers.JWTManager
	Redis       *redis.Client
	Limits      Limits
	RequireAuth bool
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client, limits Limits, requireAuth bool) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb, Limits: limits, RequireAuth: requireAuth}
}

func chain(mws []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mws)+1)
	return append(append(out, mws...), h)
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := m.Redis
	auth := middleware.Auth(rdb, m.JWT)

	loginLimiter := middleware.RateLimit(rdb, m.Limits.Login, time.Minute, middleware.KeyByIPAndPath(), nil)
	registerLimiter := middleware.RateLimit(rdb, m.Limits.Register, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil)
	// search and uploads run after auth, so the caller id is known
	perUser := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByUserID(), nil)

	users := rg.Group("/users")
	users.Use(middleware.RateLimit(rdb, m.Limits.API, time.Minute, middleware.KeyByIP(), nil))

	users.POST("", registerLimiter, m.Handler.Register)
	users.POST("/login", loginLimiter, m.Handler.Login)
	users.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	users.POST("/logout", middleware.OptionalAuth(rdb, m.JWT), m.Handler.Logout)

	owner := middleware.When(m.RequireAuth, auth, middleware.SelfOrAdmin("id"))
	admin := middleware.When(m.RequireAuth, auth, middleware.AdminOnly())

	users.GET("", chain(admin, m.Handler.List)...)
	users.GET("/search", auth, perUser, m.Handler.Search)
	users.GET("/:id", chain(owner, m.Handler.Get)...)
	users.PUT("/:id", chain(owner, m.Handler.Update)...)
	users.PATCH("/:id/onboarding", chain(owner, m.Handler.SubmitOnboarding)...)
	users.DELETE("/:id", chain(owner, m.Handler.Delete)...)
	users.POST("/:id/avatar", auth, middleware.SelfOrAdmin("id"), perUser, m.Handler.UploadAvatar)
}
