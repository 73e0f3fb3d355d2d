package models

import "time"

// MentorAssignment links a mentor to a learner they supervise.
type MentorAssignment struct {
	ID        uint `gorm:"primaryKey"`
	MentorID  uint `gorm:"index;not null"`
	LearnerID uint `gorm:"index;not null"`
	CreatedAt time.Time

	Mentor  User `gorm:"foreignKey:MentorID;constraint:OnDelete:CASCADE"`
	Learner User `gorm:"foreignKey:LearnerID;constraint:OnDelete:CASCADE"`
}
