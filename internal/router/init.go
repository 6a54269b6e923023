package router

import (
	"context"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/template-marketplace/config"
	userapp "github.com/oksasatya/template-marketplace/internal/application"
	"github.com/oksasatya/template-marketplace/internal/container"
	repo "github.com/oksasatya/template-marketplace/internal/domain/repository"
	meminfra "github.com/oksasatya/template-marketplace/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/template-marketplace/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/template-marketplace/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/template-marketplace/internal/interface/http"
	"github.com/oksasatya/template-marketplace/internal/router/modules"
	"github.com/oksasatya/template-marketplace/pkg/helpers"
)

// Deps is everything the HTTP layer needs. Checks feed /healthz.
type Deps struct {
	Cfg     *config.Config
	Logger  *logrus.Logger
	Redis   *redis.Client
	JWT     *helpers.JWTManager
	Service *userapp.Service
	Checks  map[string]modules.Check
}

// BuildDeps assembles the account service from the container. Without a
// MongoDB client the in-memory repository is used.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	checks := map[string]modules.Check{}

	var users repo.UserRepository
	if mc := container.GetMongo(); mc != nil {
		users = mongoinfra.NewUserRepository(mc.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
		checks["mongodb"] = func(ctx context.Context) error { return mc.Ping(ctx, nil) }
	} else {
		logger.Warn("no MongoDB client; using in-memory user store")
		users = meminfra.NewUserRepository()
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	svc := userapp.NewService(users, container.GetJWT(), rdb, logger, cfg)
	svc.GCS = container.GetGCS()
	svc.ES = container.GetES()
	if pub := container.GetRabbitPub(); pub != nil {
		svc.Emails = pub
	}
	if db := container.GetAuditDB(); db != nil {
		svc.Audit = pginfra.NewAuditRepository(db)
		checks["audit"] = db.PingContext
	}

	return Deps{Cfg: cfg, Logger: logger, Redis: rdb, JWT: container.GetJWT(), Service: svc, Checks: checks}
}

// Mount registers every module and the health probe.
func Mount(r *Registry, d Deps) {
	cfg := d.Cfg
	userHandler := handlers.NewUserHandler(d.Service, d.Logger, cfg.CookieDomain, cfg.CookieSecure, cfg.RequireAuth)
	authHandler := handlers.NewAuthHandler(d.Service, d.Logger)

	limits := modules.Limits{Login: cfg.LoginRateLimit, Register: cfg.RegisterRateLimit, API: cfg.APIRateLimit}
	r.Add(modules.NewUserModule(userHandler, d.JWT, d.Redis, limits, cfg.RequireAuth))
	r.Add(modules.NewAuthModule(authHandler, d.Redis))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
	r.Root(http.MethodGet, "/healthz", modules.HealthHandler(d.Checks))
}

// InitModules wires modules from the container. Call once at startup.
func InitModules(r *Registry) {
	Mount(r, BuildDeps())
}
