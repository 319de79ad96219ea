package models

import (
	"strings"
	"time"
)

// Course represents a course offering such as "Digital Literacy 101"
type Course struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DurationWeeks int       `json:"duration_weeks"`
	Price         Money     `json:"price"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const (
	DefaultDurationWeeks = 6
	DefaultCurrency      = "GHS"
)

// WeekCurriculum is one week of a course's syllabus.
type WeekCurriculum struct {
	ID                 int64  `json:"id"`
	CourseID           int64  `json:"course_id"`
	WeekNumber         int    `json:"week_number"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Topics             string `json:"topics"`
	LearningObjectives string `json:"learning_objectives,omitempty"`
	MaterialsURL       string `json:"materials_url,omitempty"`
}

// TopicList splits Topics on newlines, skipping blank lines.
func (w WeekCurriculum) TopicList() []string {
	var out []string
	for _, line := range strings.Split(w.Topics, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
