package router

import (
	"time"

	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Auth     *handler.AuthHandler
	Customer *handler.CustomerHandler
	Invoice  *handler.InvoiceHandler
	Settings *handler.SettingsHandler
	System   *handler.SystemHandler
}

// Options configures the engine built by New
type Options struct {
	Logger        *zap.Logger
	HTTP          config.HTTPConfig
	Authenticator middleware.Authenticator
	// Telemetry holds tracing and metrics middlewares, applied after the
	// request ID is assigned
	Telemetry []gin.HandlerFunc
	Swagger   bool
}

// New builds the gin engine with the middleware stack and every API route.
//
// Middleware order:
//  1. RequestID - generate/propagate X-Request-ID
//  2. Telemetry - tracing and HTTP metrics
//  3. Recovery - catch panics
//  4. Logger - log requests
//  5. Secure - security headers
//  6. CORS - cross-origin requests
//  7. BodyLimit - request body size
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(opts.Telemetry...)
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(opts.HTTP)))
	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	if opts.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	jwt := middleware.JWTAuth(opts.Authenticator, log)
	authLimiter := middleware.NewRateLimiter(authBurst(opts.HTTP), authWindow(opts.HTTP))

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(authRoutes(h.Auth, jwt, middleware.RateLimit(authLimiter))).
		Register(customerRoutes(h.Customer, jwt)).
		Register(invoiceRoutes(h.Invoice, jwt)).
		Register(settingsRoutes(h.Settings, jwt)).
		Register(systemRoutes(h.System, jwt))
	r.Setup()

	engine.GET(r.BasePath()+"/ping", h.System.Ping)

	return engine
}

func authRoutes(h *handler.AuthHandler, jwt, limit gin.HandlerFunc) *DomainGroup {
	routes := NewDomainGroup("auth", "/auth")

	public := routes.Group("auth-public", "").Use(limit)
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	private := routes.Group("auth-private", "").Use(jwt)
	private.POST("/logout", h.Logout)
	private.GET("/profile", h.GetProfile)
	private.Update("/profile", h.UpdateProfile)
	private.POST("/change-password", h.ChangePassword)
	private.GET("/users", h.ListUsers)

	return routes
}

func customerRoutes(h *handler.CustomerHandler, jwt gin.HandlerFunc) *DomainGroup {
	routes := NewDomainGroup("customers", "/customers").Use(jwt)
	routes.GET("", h.List)
	routes.POST("", h.Create)
	routes.GET("/search", h.Search)
	routes.GET("/:id", h.GetByID)
	routes.Update("/:id", h.Update)
	routes.DELETE("/:id", h.Delete)
	routes.GET("/:id/stats", h.Stats)
	return routes
}

func invoiceRoutes(h *handler.InvoiceHandler, jwt gin.HandlerFunc) *DomainGroup {
	routes := NewDomainGroup("invoices", "/invoices").Use(jwt)
	routes.GET("", h.List)
	routes.POST("", h.Create)
	routes.GET("/dashboard", h.Dashboard)
	routes.GET("/export", h.Export)
	routes.GET("/:id", h.GetByID)
	routes.Update("/:id", h.Update)
	routes.DELETE("/:id", h.Delete)
	routes.POST("/:id/status", h.ChangeStatus)
	routes.GET("/:id/print", h.Print)
	routes.GET("/:id/pdf", h.PDF)
	routes.POST("/:id/items", h.AddItem)

	items := routes.Group("invoice-items", "/items")
	items.GET("/:itemId", h.GetItem)
	items.Update("/:itemId", h.UpdateItem)
	items.DELETE("/:itemId", h.DeleteItem)

	return routes
}

func settingsRoutes(h *handler.SettingsHandler, jwt gin.HandlerFunc) *DomainGroup {
	routes := NewDomainGroup("settings", "/settings")
	routes.GET("/public", h.Public)

	private := routes.Group("settings-private", "").Use(jwt)
	private.GET("", h.Get)

	admin := private.Group("settings-admin", "").Use(middleware.RequireAdmin())
	admin.PUT("", h.Update)
	admin.PATCH("", h.Patch)
	admin.POST("/logo", h.UploadLogo)

	return routes
}

func systemRoutes(h *handler.SystemHandler, jwt gin.HandlerFunc) *DomainGroup {
	routes := NewDomainGroup("system", "/system").Use(jwt)
	routes.GET("/info", h.GetSystemInfo)
	return routes
}

func authBurst(cfg config.HTTPConfig) int {
	if cfg.AuthRateLimitBurst > 0 {
		return cfg.AuthRateLimitBurst
	}
	return 10
}

func authWindow(cfg config.HTTPConfig) time.Duration {
	if cfg.AuthRateLimitWindow > 0 {
		return cfg.AuthRateLimitWindow
	}
	return time.Minute
}
