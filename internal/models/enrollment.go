package models

import "time"

// CourseEnrollment tracks a user's progress through a course.
// Progress is a 0-100 percentage; CompletedAt is set when it hits 100.
type CourseEnrollment struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index;not null"`
	CourseID    uint `gorm:"index;not null"`
	Progress    int  `gorm:"default:0"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Course Course `gorm:"constraint:OnDelete:CASCADE"`
}
