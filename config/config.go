package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/manmeddynamics7-hub/healtify/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.DailyGoal{},
		&models.DailyIntake{},
		&models.IntakeArchive{},
		&models.Alert{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
}

// BoundaryLocation returns the timezone in which the intake day rolls over.
// The boundary is an explicit deployment setting (INTAKE_TIMEZONE, IANA
// name), never inferred from the user; unset or invalid falls back to UTC.
func BoundaryLocation() *time.Location {
	name := os.Getenv("INTAKE_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid INTAKE_TIMEZONE %q, using UTC: %v", name, err)
		return time.UTC
	}
	return loc
}
