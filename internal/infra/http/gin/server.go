package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentbook/internal/infra/config"
	"rentbook/internal/infra/obs"
)

type PricingHTTP interface {
	ParsePrice(c *gin.Context)
	Quote(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Block(c *gin.Context)
}

type SelectionHTTP interface {
	Start(c *gin.Context)
	Get(c *gin.Context)
	Tap(c *gin.Context)
	Clear(c *gin.Context)
	Confirm(c *gin.Context)
	Close(c *gin.Context)
}

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Activate(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Pay(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	ListMine(c *gin.Context)
}

type Handlers struct {
	Pricing         PricingHTTP
	Availability    AvailabilityHTTP
	Selection       SelectionHTTP
	Listing         ListingHTTP
	Booking         BookingHTTP
	ActorMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter registers only the route groups whose handlers are set.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", UserIDHeader, UserRoleHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.ActorMiddleware != nil {
		router.Use(h.ActorMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Pricing != nil {
		api.GET("/pricing/parse", h.Pricing.ParsePrice)
		api.GET("/listings/:id/quote", h.Pricing.Quote)
	}
	if h.Availability != nil {
		api.GET("/listings/:id/calendar", h.Availability.Calendar)
		api.POST("/listings/:id/blocks", h.Availability.Block)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
		api.POST("/listings", h.Listing.Create)
		api.POST("/listings/:id/activate", h.Listing.Activate)
		api.POST("/listings/:id/photos", h.Listing.UploadPhoto)
	}
	if h.Selection != nil {
		selections := api.Group("/selections")
		selections.POST("", h.Selection.Start)
		selections.GET("/:id", h.Selection.Get)
		selections.POST("/:id/tap", h.Selection.Tap)
		selections.POST("/:id/clear", h.Selection.Clear)
		selections.POST("/:id/confirm", h.Selection.Confirm)
		selections.DELETE("/:id", h.Selection.Close)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/pay", h.Booking.Pay)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.GET("/me/bookings", h.Booking.ListMine)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
