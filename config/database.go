package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"admissions-api/models"
)

var DB *gorm.DB

func InitDB() {
	var err error

	// Get database credentials from environment variables
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbDatabase := os.Getenv("DB_DATABASE")
	dbUsername := os.Getenv("DB_USERNAME")
	dbPassword := os.Getenv("DB_PASSWORD")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbUsername,
		dbPassword,
		dbHost,
		dbPort,
		dbDatabase,
	)

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	debugSQL := strings.ToLower(os.Getenv("DEBUG_SQL"))

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if environment == "production" && debugSQL != "true" {
		logLevel = logger.Warn
	}

	config := &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	}

	DB, err = gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")
}

// MigrateDB creates or updates the schema for every entity table.
func MigrateDB() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.University{},
		&models.Department{},
		&models.Course{},
		&models.Session{},
		&models.Lead{},
		&models.Application{},
		&models.Document{},
		&models.Question{},
		&models.TestConfig{},
		&models.TestAttempt{},
		&models.TestResult{},
		&models.Payment{},
		&models.StudentQuery{},
		&models.EmailLog{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}
