package database

import (
	"fmt"
	"log"

	"github.com/agroplan/agroplan-api/internal/models"
)

func Migrate() error {
	log.Println("Running database migrations...")
	err := DB.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Field{},
		&models.Vehicle{},
		&models.Product{},
		&models.PlanningRecord{},
		&models.PlanningField{},
		&models.PlanningProduct{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}
