package main

import (
	"log"
	"os"

	"admissions-api/config"
	"admissions-api/controllers"
	"admissions-api/middleware"
	"admissions-api/models"
	"admissions-api/routes"
	"admissions-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database and schema
	config.InitDB()
	config.MigrateDB()

	// Initialize the payment gateway
	services.InitGateway()

	// Seed the super admin account on first boot
	seedSuperAdmin()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Setup routes
	routes.SetupRoutes(router)

	// Create upload directory if not exists
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create upload directory: %v", err)
	}

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// seedSuperAdmin creates the platform owner account from env config when
// no super admin exists yet.
func seedSuperAdmin() {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count)
	if count > 0 {
		return
	}

	hash, err := controllers.HashPassword(password)
	if err != nil {
		log.Printf("Warning: failed to seed super admin: %v", err)
		return
	}

	admin := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Super Admin",
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		log.Printf("Warning: failed to seed super admin: %v", err)
		return
	}
	log.Printf("Seeded super admin account %s", email)
}
