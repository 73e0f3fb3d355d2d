package models

import "time"

// Project workflow states.
const (
	ProjectDraft     = "draft"
	ProjectSubmitted = "submitted"
	ProjectApproved  = "approved"
	ProjectRejected  = "rejected"
)

// ValidProjectStatus reports whether status is a known project state.
func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectDraft, ProjectSubmitted, ProjectApproved, ProjectRejected:
		return true
	}
	return false
}

// Project is a learner-owned piece of work, optionally linked to a
// challenge, moving draft -> submitted -> approved/rejected.
type Project struct {
	ID          uint     `gorm:"primaryKey"`
	UserID      uint     `gorm:"index;not null"`
	Title       string   `gorm:"size:255;not null"`
	Description string   `gorm:"type:text;not null"`
	Tags        []string `gorm:"serializer:json"`
	Images      []string `gorm:"serializer:json"`
	DemoURL     string   `gorm:"type:text"`
	RepoURL     string   `gorm:"type:text"`
	ChallengeID *uint    `gorm:"index"`
	Status      string   `gorm:"size:50;not null;default:draft"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User      User       `gorm:"constraint:OnDelete:CASCADE"`
	Challenge *Challenge `gorm:"constraint:OnDelete:SET NULL"`
}
