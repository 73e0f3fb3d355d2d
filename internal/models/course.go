package models

import "time"

// Course difficulty levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ValidLevel reports whether level is a known course level.
func ValidLevel(level string) bool {
	return level == LevelBeginner || level == LevelIntermediate || level == LevelAdvanced
}

// CourseLesson is a single lesson inside a course module.
type CourseLesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// CourseModule groups lessons; stored as JSON on the course row.
type CourseModule struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Lessons []CourseLesson `json:"lessons"`
}

// Course is a catalog entry with its module/lesson outline.
type Course struct {
	ID          uint           `gorm:"primaryKey"`
	Title       string         `gorm:"size:255;not null"`
	Description string         `gorm:"type:text;not null"`
	Level       string         `gorm:"size:50;not null"`
	Duration    string         `gorm:"size:100"`
	Instructor  string         `gorm:"size:255"`
	Thumbnail   string         `gorm:"type:text"`
	Modules     []CourseModule `gorm:"serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
