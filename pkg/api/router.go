package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/cecvol/pkg/api/handlers"
	"github.com/urmzd/cecvol/pkg/device"
	"github.com/urmzd/cecvol/pkg/device/schema"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine     *gin.Engine
	controller device.Controller
	subscriber device.EventSubscriber
	validator  *schema.Validator
}

// NewRouter creates a new API router
func NewRouter(controller device.Controller, subscriber device.EventSubscriber, validator *schema.Validator) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:     engine,
		controller: controller,
		subscriber: subscriber,
		validator:  validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.controller)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Display
		tvHandler := handlers.NewTVHandler(r.controller, r.validator)
		tv := v1.Group("/tv")
		{
			tv.GET("/state", tvHandler.GetState)
			tv.POST("/state", tvHandler.SetState)
			tv.POST("/power", tvHandler.Power)
			tv.POST("/volume", tvHandler.Volume)
			tv.POST("/mute", tvHandler.Mute)
			tv.POST("/input", tvHandler.Input)
		}

		// Devices
		devicesHandler := handlers.NewDevicesHandler(r.controller)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.GET("/:id", devicesHandler.GetDevice)
		}

		// Discovery
		discoveryHandler := handlers.NewDiscoveryHandler(r.controller, r.subscriber)
		discovery := v1.Group("/discovery")
		{
			discovery.POST("/poll", discoveryHandler.Poll)
			discovery.GET("/events", discoveryHandler.Events)
		}

		// Raw bus
		busHandler := handlers.NewBusHandler(r.controller, r.subscriber)
		bus := v1.Group("/bus")
		{
			bus.POST("/raw", busHandler.Raw)
			bus.GET("/ws", busHandler.Watch)
		}
	}
}

// Handler returns the engine as an http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
