package database

import (
	"fmt"

	"skillforge/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Course{},
		&models.Challenge{},
		&models.Project{},
		&models.CourseEnrollment{},
		&models.MentorAssignment{},
		&models.ProjectReview{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
