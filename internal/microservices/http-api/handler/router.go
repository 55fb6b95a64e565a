package handler

import (
	"log/slog"
	"net/http"
	"time"

	"booklist/internal/microservices/http-api/middleware"
	"booklist/internal/microservices/http-api/service"
	"booklist/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services and settings the router wires into handlers.
type Deps struct {
	AuthService   service.AuthService
	UserService   service.UserService
	BookService   service.BookService
	ReviewService service.ReviewService
	LikeService   service.LikeService

	SessionTTL      time.Duration
	SecureCookies   bool
	LoginRatePerMin int
	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string
	// Built from LoginRatePerMin when nil. The caller owns Stop.
	LoginLimiter *middleware.KeyedRateLimiter
	Logger       *slog.Logger
}

// NewRouter builds the gin engine with every page route registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.LoginRatePerMin < 1 {
		deps.LoginRatePerMin = 10
	}

	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.Error("invalid trusted proxies, trusting none", "proxies", deps.TrustedProxies, "error", err)
		r.SetTrustedProxies(nil) //nolint:errcheck
	}
	r.HTMLRender = web.MustRenderer()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.NoCache())
	r.Use(middleware.SessionMiddleware(deps.AuthService, deps.Logger))

	if deps.LoginLimiter == nil {
		deps.LoginLimiter = middleware.NewKeyedRateLimiter(deps.LoginRatePerMin, time.Minute, deps.LoginRatePerMin)
	}
	throttle := middleware.LoginThrottle(deps.LoginLimiter, deps.Logger)

	root := r.Group("")
	root.GET("/", Home)
	root.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	root.GET("/metrics", gin.WrapH(promhttp.Handler()))

	NewAuthHandler(deps.AuthService, deps.SessionTTL, deps.SecureCookies).RegisterRoutes(root, throttle)
	NewUserHandler(deps.UserService, deps.LikeService, deps.ReviewService, deps.BookService).RegisterRoutes(root)
	NewBookHandler(deps.BookService, deps.ReviewService, deps.LikeService).RegisterRoutes(root)

	r.NoRoute(func(c *gin.Context) {
		notFound(c, "That page does not exist.")
	})
	return r
}
