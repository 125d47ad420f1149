package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cybernetics669/nadlan-website/internal/catalog"
	"github.com/cybernetics669/nadlan-website/internal/cleanup"
	"github.com/cybernetics669/nadlan-website/internal/config"
	"github.com/cybernetics669/nadlan-website/internal/database"
	"github.com/cybernetics669/nadlan-website/internal/forms"
	"github.com/cybernetics669/nadlan-website/internal/handlers"
	"github.com/cybernetics669/nadlan-website/internal/scheduler"
	"github.com/cybernetics669/nadlan-website/internal/upload"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	db           database.Store
	appConfig    *config.Config
	appScheduler *scheduler.Scheduler
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/app.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}
	applyEnvOverrides(appConfig)

	// Initialize database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "postgres" {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err = database.NewPostgresDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "nadlan_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "nadlan_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "nadlan_db"),
			pgCfg.SSLMode,
		)
	} else {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		db, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "nadlan_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "nadlan_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "nadlan_db"),
		)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Select storage backend from configuration
	saver := upload.New(&appConfig.Uploads)
	var sweeper *cleanup.Service
	if appConfig.Uploads.HasImageHost() {
		log.Println("Storage backend: remote image host")
	} else {
		log.Printf("Storage backend: local disk at %s", appConfig.Uploads.Dir)
		sweeper = cleanup.NewService(db, appConfig.Uploads.Dir, appConfig.Uploads.RoutePrefix())
	}

	// Nightly orphaned-upload sweep (local storage only)
	if sweeper != nil {
		appScheduler = scheduler.NewScheduler(sweeper, &appConfig.Sweep)
		if err := appScheduler.Start(); err != nil {
			log.Printf("Warning: Failed to start scheduler: %v", err)
		}
		defer appScheduler.Stop()
	}

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes
	r.GET("/health", healthCheck)
	r.GET("/api/home", getHome)
	r.GET("/api/properties", getProperties)
	r.GET("/api/properties/:slug", getProperty)
	r.POST("/api/leads", createLead)

	// Locally stored uploads are served by this process
	if !appConfig.Uploads.HasImageHost() {
		r.Static(appConfig.Uploads.RoutePrefix(), appConfig.Uploads.Dir)
	}

	// Admin API routes, gated by the shared-secret cookie
	adminHandler := handlers.NewAdminHandler(db, saver, sweeper,
		appConfig.Admin.Password, appConfig.Uploads.Subdir)

	r.POST("/api/admin/login", adminHandler.Login)

	admin := r.Group("/api/admin", handlers.RequireAdmin(appConfig.Admin.Password))
	{
		admin.POST("/upload", adminHandler.Upload)

		admin.GET("/properties", adminHandler.ListProperties)
		admin.POST("/properties", adminHandler.CreateProperty)
		admin.POST("/properties/:id", adminHandler.UpdateProperty)
		admin.POST("/properties/:id/delete", adminHandler.DeleteProperty)

		admin.GET("/stats", adminHandler.GetStats)
		admin.POST("/sweep/run", adminHandler.RunSweep)
	}
	log.Println("Admin API routes registered at /api/admin/*")

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

// getHome returns the landing page data: featured published listings and
// per-type category counts.
func getHome(c *gin.Context) {
	featured, err := db.Featured(6)
	if err != nil {
		log.Printf("[Home] Failed to load featured listings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	categories, err := db.CountByType()
	if err != nil {
		log.Printf("[Home] Failed to load category counts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"featured":   featured,
		"categories": categories,
	})
}

// getProperties executes a catalog query built from the request's filter
// parameters.
func getProperties(c *gin.Context) {
	filters := catalog.ResolveFilters(c.Request.URL.Query())

	start := time.Now()
	result, err := db.ListPublished(filters)
	duration := time.Since(start)

	if err != nil {
		log.Printf("[Catalog] Query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	// Log catalog query performance for monitoring
	log.Printf("[Catalog] duration_ms=%d total=%d page=%d sort=%q",
		duration.Milliseconds(), result.Total, result.Page, filters.Sort)

	c.JSON(http.StatusOK, result)
}

// getProperty returns a published listing by slug with its ordered images.
func getProperty(c *gin.Context) {
	slug := c.Param("slug")

	property, err := db.GetPublishedBySlug(slug)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		log.Printf("[Catalog] Failed to load property %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// createLead validates and stores a public inquiry.
func createLead(c *gin.Context) {
	var input forms.LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	lead, fieldErrs := input.Validate()
	if fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": fieldErrs})
		return
	}

	err := db.CreateLead(lead)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		log.Printf("[Leads] Failed to create lead: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

// applyEnvOverrides fills secrets and deploy-specific values from the
// environment when the config file leaves them empty.
func applyEnvOverrides(cfg *config.Config) {
	cfg.Admin.Password = getEnvOrConfig(cfg.Admin.Password, "ADMIN_PASSWORD", "admin")
	cfg.Uploads.Dir = getEnvOrConfig(cfg.Uploads.Dir, "UPLOAD_DIR", "public/uploads")
	cfg.Server.PublicBaseURL = getEnvOrConfig(cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL", "http://localhost:3000")
	cfg.Uploads.ImageHost.AccountID = getEnvOrConfig(cfg.Uploads.ImageHost.AccountID, "IMAGEHOST_ACCOUNT_ID", "")
	cfg.Uploads.ImageHost.APIToken = getEnvOrConfig(cfg.Uploads.ImageHost.APIToken, "IMAGEHOST_API_TOKEN", "")
}
