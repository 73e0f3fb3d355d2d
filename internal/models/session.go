package models

import "time"

// Session is an opaque bearer token proving a prior login.
// A session is valid iff now < ExpiresAt and the user still exists.
// Expired rows are deleted lazily on first read past expiry.
type Session struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:255;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
