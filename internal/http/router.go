// Package http assembles the gin engine: middleware chain, route groups and
// their guard ordering.
package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/galleryhub/galleryhub/internal/auth"
	"github.com/galleryhub/galleryhub/internal/cache"
	"github.com/galleryhub/galleryhub/internal/config"
	"github.com/galleryhub/galleryhub/internal/domain/user"
	"github.com/galleryhub/galleryhub/internal/http/handlers"
	"github.com/galleryhub/galleryhub/internal/http/middlewares"
	"github.com/galleryhub/galleryhub/internal/observability"
	"github.com/galleryhub/galleryhub/internal/uploads"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UserStore is the full user surface the router wires: gate lookups, auth
// endpoints and admin management. Both the postgres and memory repos satisfy
// it.
type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string) error
}

type Deps struct {
	Users    UserStore
	Content  handlers.ContentStore
	Settings handlers.SettingsStore
	Contact  handlers.ContactStore
	Queue    handlers.JobEnqueuer // nil when running without a database
	Uploads  *uploads.Service
	Cache    cache.Store

	JWT  *auth.Manager
	Demo *auth.DemoProvider

	Prom     *observability.Prom
	Registry *prometheus.Registry
	PingDB   handlers.PingFunc // nil when running without a database
	Tracing  bool
}

func NewRouter(cfg config.Config, log *slog.Logger, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	if deps.Tracing {
		r.Use(otelgin.Middleware("galleryhub-api"))
	}

	// operational endpoints
	health := handlers.NewHealthHandler(deps.PingDB)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// stored images are served straight from disk
	r.Static("/uploads", cfg.UploadDir)

	gate := middlewares.NewAuthMiddleware(deps.JWT, deps.Users, deps.Demo)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Users, deps.JWT, deps.Demo)
	usersHandler := handlers.NewUsersHandler(deps.Users)
	contentHandler := handlers.NewContentHandler(deps.Content, deps.Cache)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings, deps.Cache)
	contactHandler := handlers.NewContactHandler(deps.Contact, deps.Queue, log)
	uploadsHandler := handlers.NewUploadsHandler(deps.Uploads, deps.Prom)

	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	contactLimiter := middlewares.NewRateLimiter(5, time.Minute)
	uploadLimiter := middlewares.NewRateLimiter(30, time.Minute)

	api := r.Group("/api", middlewares.MaxBodyBytes(1<<20), middlewares.RequireJSON())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.GET("/profile", gate.RequireAuth(), authHandler.Profile)
		authGroup.PUT("/profile", gate.RequireAuth(), authHandler.UpdateProfile)
		authGroup.POST("/change-password", gate.RequireAuth(), authHandler.ChangePassword)
	}

	usersGroup := api.Group("/users", gate.RequireAuth(), middlewares.RequireAdmin())
	{
		usersGroup.GET("", usersHandler.List)
		usersGroup.PUT("/:id/role", usersHandler.UpdateRole)
		usersGroup.PUT("/:id/active", usersHandler.SetActive)
	}

	contentGroup := api.Group("/content")
	{
		contentGroup.GET("", gate.OptionalAuth(), contentHandler.List)
		contentGroup.GET("/:id", gate.OptionalAuth(), contentHandler.GetByID)
		contentGroup.GET("/slug/:slug", gate.OptionalAuth(), contentHandler.GetBySlug)
		contentGroup.POST("", gate.RequireAuth(), middlewares.RequireEditor(), contentHandler.Create)
		contentGroup.PUT("/:id", gate.RequireAuth(), middlewares.RequireEditor(), contentHandler.Update)
		contentGroup.DELETE("/:id", gate.RequireAuth(), middlewares.RequireAdmin(), contentHandler.Delete)
	}

	settingsGroup := api.Group("/settings")
	{
		settingsGroup.GET("/public", settingsHandler.ListPublic)
		settingsGroup.GET("", gate.RequireAuth(), middlewares.RequireEditor(), settingsHandler.List)
		settingsGroup.GET("/:key", gate.RequireAuth(), middlewares.RequireEditor(), settingsHandler.Get)
		settingsGroup.PUT("", gate.RequireAuth(), middlewares.RequireAdmin(), settingsHandler.PutBulk)
		settingsGroup.PUT("/:key", gate.RequireAuth(), middlewares.RequireAdmin(), settingsHandler.Put)
		settingsGroup.DELETE("/:key", gate.RequireAuth(), middlewares.RequireAdmin(), settingsHandler.Delete)
	}

	api.POST("/contact", contactLimiter.Middleware(middlewares.KeyByIP), contactHandler.Create)
	api.GET("/contact", gate.RequireAuth(), middlewares.RequireAdmin(), contactHandler.List)

	// multipart uploads bypass the JSON body middleware and carry a larger
	// body ceiling
	uploadGroup := r.Group("/api/upload",
		middlewares.MaxBodyBytes(cfg.MaxUploadBytes+(1<<20)),
		gate.RequireAuth(),
		uploadLimiter.Middleware(middlewares.KeyByUserOrIP),
	)
	{
		uploadGroup.POST("/image", middlewares.RequireEditor(), uploadsHandler.UploadImage)
		uploadGroup.POST("/gallery", middlewares.RequireEditor(), uploadsHandler.UploadGallery)
		uploadGroup.GET("/list", middlewares.RequireEditor(), uploadsHandler.List)
		uploadGroup.DELETE("/:filename", middlewares.RequireAdmin(), uploadsHandler.Delete)
	}

	return r
}
