package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"spotaway/internal/infra/config"
	"spotaway/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	Review         ReviewHTTP
	Upload         UploadHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	if h.Auth != nil {
		api.POST("/users", h.Auth.Register)
		api.POST("/session", h.Auth.Login)
		api.DELETE("/session", h.Auth.Logout)
		api.GET("/session", h.Auth.Me)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Search)
		api.GET("/listings/current", h.Listing.Mine)
		api.GET("/listings/:id", h.Listing.Detail)
		api.POST("/listings", h.Listing.Create)
		api.PUT("/listings/:id", h.Listing.Update)
		api.DELETE("/listings/:id", h.Listing.Delete)
		api.POST("/listings/:id/images", h.Listing.AttachImage)
		api.DELETE("/listing-images/:id", h.Listing.DeleteImage)
	}
	if h.Booking != nil {
		api.POST("/listings/:id/bookings", h.Booking.Create)
		api.GET("/listings/:id/availability", h.Booking.Availability)
		api.GET("/bookings/current", h.Booking.Mine)
	}
	if h.Review != nil {
		api.GET("/listings/:id/reviews", h.Review.ListForListing)
		api.POST("/listings/:id/reviews", h.Review.Create)
		api.GET("/reviews/current", h.Review.Mine)
		api.PUT("/reviews/:id", h.Review.Update)
		api.DELETE("/reviews/:id", h.Review.Delete)
		api.POST("/reviews/:id/images", h.Review.AttachImage)
		api.DELETE("/review-images/:id", h.Review.DeleteImage)
	}
	if h.Upload != nil {
		api.POST("/uploads", h.Upload.Upload)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
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
