package util

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 72 {
		// bcrypt input limit
		return fmt.Errorf("password too long, max 72 characters")
	}
	return nil
}

// ValidateTitle checks a course/challenge/project title.
func ValidateTitle(title string) error {
	if len(strings.TrimSpace(title)) < 3 {
		return fmt.Errorf("title must be at least 3 characters long")
	}
	return nil
}

// ValidateBody checks a free-text field (brief, description, feedback).
func ValidateBody(text string, min int) error {
	if len(strings.TrimSpace(text)) < min {
		return fmt.Errorf("text must be at least %d characters long", min)
	}
	return nil
}
