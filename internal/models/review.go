package models

import "time"

// Review outcomes.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// ProjectReview is a mentor's verdict on a submitted project.
type ProjectReview struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"index;not null"`
	MentorID  uint   `gorm:"index;not null"`
	Feedback  string `gorm:"type:text;not null"`
	Rating    *int
	Status    string `gorm:"size:50;not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Project Project `gorm:"constraint:OnDelete:CASCADE"`
	Mentor  User    `gorm:"foreignKey:MentorID;constraint:OnDelete:CASCADE"`
}
