package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/agroplan/agroplan-api/internal/clock"
	"github.com/agroplan/agroplan-api/internal/config"
	"github.com/agroplan/agroplan-api/internal/database"
	"github.com/agroplan/agroplan-api/internal/handlers"
	"github.com/agroplan/agroplan-api/internal/middleware"
	"github.com/agroplan/agroplan-api/internal/repository"
	"github.com/agroplan/agroplan-api/internal/services"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional redis client for notification fan-out
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	// Notification worker (fire-and-forget sink)
	notifier := services.NewNotificationService(database.GetDB(), redisClient, cfg.NotifyBuffer)
	notifier.Start()
	defer notifier.Stop()

	// Initialize services and handlers
	planningRepo := repository.NewPlanningRepository(database.GetDB())
	planningService := services.NewPlanningService(planningRepo, notifier, clock.System())
	planningHandler := handlers.NewPlanningHandler(planningService)
	fieldHandler := handlers.NewFieldHandler()
	vehicleHandler := handlers.NewVehicleHandler()
	productHandler := handlers.NewProductHandler()

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Agroplan API is running",
		})
	})

	// API routes (all protected)
	api := r.Group("/api")
	api.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		planning := api.Group("/planning")
		{
			planning.GET("", planningHandler.ListPlanning)
			planning.GET("/disabled", planningHandler.ListDisabledPlanning)
			planning.GET("/:id", planningHandler.GetPlanning)
			planning.POST("", planningHandler.CreatePlanning)
			planning.PATCH("/:id", planningHandler.UpdatePlanning)
			planning.DELETE("/:id", planningHandler.DeletePlanning)
			planning.PUT("/enable/:id", planningHandler.EnablePlanning)
		}

		fields := api.Group("/fields")
		{
			fields.GET("", fieldHandler.ListFields)
			fields.POST("", fieldHandler.CreateField)
			fields.GET("/:id", fieldHandler.GetField)
			fields.PATCH("/:id", fieldHandler.UpdateField)
			fields.DELETE("/:id", fieldHandler.DeleteField)
			fields.PUT("/enable/:id", fieldHandler.EnableField)
		}

		vehicles := api.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.ListVehicles)
			vehicles.POST("", vehicleHandler.CreateVehicle)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.PATCH("/:id", vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
			vehicles.PUT("/enable/:id", vehicleHandler.EnableVehicle)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/:id", productHandler.GetProduct)
			products.PATCH("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.PUT("/enable/:id", productHandler.EnableProduct)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
