package models

import "time"

// Challenge lifecycle states.
const (
	ChallengeUpcoming = "upcoming"
	ChallengeActive   = "active"
	ChallengeEnded    = "ended"
)

// ValidChallengeStatus reports whether status is a known challenge state.
func ValidChallengeStatus(status string) bool {
	return status == ChallengeUpcoming || status == ChallengeActive || status == ChallengeEnded
}

// Challenge is an innovation challenge learners submit projects against.
type Challenge struct {
	ID           uint   `gorm:"primaryKey"`
	Title        string `gorm:"size:255;not null"`
	Brief        string `gorm:"type:text;not null"`
	Description  string `gorm:"type:text"`
	Rewards      string `gorm:"type:text;not null"`
	Status       string `gorm:"size:50;not null;default:upcoming"`
	StartDate    *time.Time
	EndDate      *time.Time
	Participants int    `gorm:"default:0"`
	Thumbnail    string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
