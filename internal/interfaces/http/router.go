package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mataroo/mataroo/internal/infrastructure/config"
	"github.com/mataroo/mataroo/internal/interfaces/http/handlers"
	"github.com/mataroo/mataroo/internal/interfaces/http/middleware"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// Router represents the local dashboard's HTTP router
type Router struct {
	engine           *gin.Engine
	dashboardHandler *handlers.DashboardHandler
	checkoutHandler  *handlers.CheckoutHandler
	settingsHandler  *handlers.SettingsHandler
	logger           logger.Interface
}

// NewRouter creates a new HTTP router
func NewRouter(
	dashboardHandler *handlers.DashboardHandler,
	checkoutHandler *handlers.CheckoutHandler,
	settingsHandler *handlers.SettingsHandler,
	log logger.Interface,
) *Router {
	return &Router{
		engine:           gin.New(),
		dashboardHandler: dashboardHandler,
		checkoutHandler:  checkoutHandler,
		settingsHandler:  settingsHandler,
		logger:           log,
	}
}

// SetupRoutes configures all routes
func (r *Router) SetupRoutes(cfg *config.Config) {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CustomLogger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.engine.GET("/health", healthCheck)

	r.setupDashboardRoutes()
	r.setupCheckoutRoutes()

	r.engine.GET("/settings", r.settingsHandler.OAuthReturn)
}

// setupDashboardRoutes configures the JSON API behind the dashboard cards
func (r *Router) setupDashboardRoutes() {
	dashboard := r.engine.Group("/dashboard")
	dashboard.Use(middleware.SecurityHeaders())
	{
		dashboard.GET("/subscription", r.dashboardHandler.GetSubscription)

		dashboard.GET("/connections", r.dashboardHandler.ListConnections)
		dashboard.POST("/connections/:platform/connect", r.dashboardHandler.Connect)
		dashboard.DELETE("/connections/:platform", r.dashboardHandler.Disconnect)

		dashboard.POST("/upgrade", r.dashboardHandler.StartUpgrade)
		dashboard.GET("/upgrade", r.dashboardHandler.GetUpgrade)
	}
}

// setupCheckoutRoutes configures the widget page and the events it posts back
func (r *Router) setupCheckoutRoutes() {
	checkout := r.engine.Group("/checkout/:order_id")
	{
		checkout.GET("", r.checkoutHandler.Page)
		checkout.POST("/complete", r.checkoutHandler.Complete)
		checkout.POST("/failed", r.checkoutHandler.Failed)
		checkout.POST("/dismiss", r.checkoutHandler.Dismiss)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
