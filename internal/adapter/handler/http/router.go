package http

import (
	"net/http"

	"github.com/bikelogic/garage-service/internal/config"
	"github.com/bikelogic/garage-service/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	secretConfigured bool,
	ownerID uuid.UUID,
	bikeHandler *BikeHandler,
	maintenanceHandler *MaintenanceHandler,
	wishlistHandler *WishlistHandler,
	stravaHandler *StravaHandler,
	aiHandler *AIHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthMiddleware(tokenService, secretConfigured, ownerID)

	// Bikes routes
	bikes := router.Group("/bikes")
	bikes.Use(auth)
	{
		bikes.POST("", bikeHandler.CreateBike)
		bikes.GET("", bikeHandler.ListBikes)
		bikes.GET("/:id", bikeHandler.GetBike)
		bikes.PUT("/:id", bikeHandler.UpdateBike)
		bikes.DELETE("/:id", bikeHandler.DeleteBike)
		bikes.GET("/:id/wear", bikeHandler.GetBikeWear)
		bikes.POST("/:id/maintenance", maintenanceHandler.CreateRecord)
		bikes.GET("/:id/maintenance", maintenanceHandler.ListRecords)
		bikes.GET("/:id/history", maintenanceHandler.ListHistory)
	}

	// Maintenance routes
	maintenance := router.Group("/maintenance")
	maintenance.Use(auth)
	{
		maintenance.PUT("/:id", maintenanceHandler.UpdateRecord)
		maintenance.DELETE("/:id", maintenanceHandler.DeleteRecord)
		maintenance.POST("/:id/replace", maintenanceHandler.ReplaceComponent)
	}

	history := router.Group("/history")
	history.Use(auth)
	{
		history.DELETE("/:id", maintenanceHandler.DeleteHistory)
	}

	// Wishlist routes
	wishlist := router.Group("/wishlist")
	wishlist.Use(auth)
	{
		wishlist.POST("", wishlistHandler.CreateItem)
		wishlist.GET("", wishlistHandler.ListItems)
		wishlist.PUT("/:id", wishlistHandler.UpdateItem)
		wishlist.DELETE("/:id", wishlistHandler.DeleteItem)
	}

	// Strava routes
	strava := router.Group("/strava")
	strava.Use(auth)
	{
		strava.GET("/auth-url", stravaHandler.AuthURL)
		strava.POST("/callback", stravaHandler.ExchangeCode)
		strava.GET("/status", stravaHandler.Status)
		strava.POST("/sync", stravaHandler.Sync)
		strava.DELETE("/token", stravaHandler.Disconnect)
	}

	// AI routes
	ai := router.Group("/ai")
	ai.Use(auth)
	{
		ai.POST("/extract", aiHandler.ExtractBike)
		ai.POST("/deals", aiHandler.SearchDeals)
		ai.POST("/vision", aiHandler.AnalyzePart)
	}

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
