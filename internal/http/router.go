package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ricmelo/menuhub/internal/cache"
	"github.com/ricmelo/menuhub/internal/config"
	"github.com/ricmelo/menuhub/internal/guard"
	"github.com/ricmelo/menuhub/internal/http/handlers"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
	"github.com/ricmelo/menuhub/internal/observability"
	"github.com/ricmelo/menuhub/internal/repo/postgres"
	"github.com/ricmelo/menuhub/internal/session"
	"github.com/ricmelo/menuhub/internal/uploads"
)

// Deps carries everything the router wires together. Prom and Redis are
// optional; tests run without either.
type Deps struct {
	Log     *slog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Prom    *observability.Prom
	Uploads *uploads.Store
	Cfg     config.Config
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())

	if len(d.Cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	}

	r.Use(otelgin.Middleware("menuhub"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	if d.Cfg.MaxUploadBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxUploadBytes))
	}

	// health
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// uploaded logos and product images are served as-is
	if d.Uploads != nil {
		r.Static("/uploads", d.Uploads.Dir())
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom)
	sectionsRepo := postgres.NewSectionsRepo(d.Pool, d.Prom)
	productsRepo := postgres.NewProductsRepo(d.Pool, d.Prom)
	sessionsRepo := postgres.NewSessionsRepo(d.Pool, d.Prom)

	// session manager over the durable store, fronted by redis when present
	var sessionCache session.Cache
	if d.Redis != nil {
		sessionCache = session.NewRedisCache(d.Redis)
	}

	sessionMgr := session.NewManager(sessionsRepo, sessionCache, d.Cfg.SessionPepper, d.Cfg.SessionTTL())

	g := guard.New(sectionsRepo)

	menuCache := cache.New(30 * time.Second)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, sessionMgr, d.Cfg)

	if d.Prom != nil {
		authHandler.WithSessionCounters(d.Prom.SessionsIssued.Inc, d.Prom.SessionsDestroyed.Inc)
	}

	sectionsHandler := handlers.NewSectionsHandler(sectionsRepo, usersRepo, menuCache)
	productsHandler := handlers.NewProductsHandler(productsRepo, g, d.Uploads, menuCache)
	profileHandler := handlers.NewProfileHandler(usersRepo, d.Uploads, menuCache)
	accountHandler := handlers.NewAccountHandler(usersRepo, sessionMgr, menuCache)

	authMw := middlewares.NewAuthMiddleware(sessionMgr)
	authLimiter := middlewares.NewRateLimiter(d.Cfg.AuthRateLimit, d.Cfg.AuthRateWindow())
	limitByIP := authLimiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/auth/register", limitByIP, middlewares.RequireJSON(), authHandler.Register)
	r.POST("/auth/login", limitByIP, middlewares.RequireJSON(), authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)

	protected := r.Group("", authMw.RequireSession())
	protected.GET("/home", sectionsHandler.Home)
	protected.PUT("/profile", profileHandler.Update)
	protected.POST("/sections", middlewares.RequireJSON(), sectionsHandler.CreateSection)
	protected.POST("/sections/:id/products", productsHandler.CreateProduct)
	protected.DELETE("/account", accountHandler.Delete)

	return r
}
