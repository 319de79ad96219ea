package models

import "time"

const (
	DefaultWebinarMinutes    = 60
	DefaultRegistrationLimit = 50
)

// Webinar is a free introductory session with a registration cap.
type Webinar struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Date              time.Time `json:"date"`
	DurationMinutes   int       `json:"duration_minutes"`
	ZoomLink          string    `json:"zoom_link"`
	RegistrationLimit int       `json:"registration_limit"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// WebinarSummary is a webinar with its live registration figures.
type WebinarSummary struct {
	Webinar
	RegistrationCount int `json:"registration_count"`
	SpotsRemaining    int `json:"spots_remaining"`
}

// Summarize attaches registration figures computed from the registration count.
func (w Webinar) Summarize(registered int) WebinarSummary {
	return WebinarSummary{
		Webinar:           w,
		RegistrationCount: registered,
		SpotsRemaining:    SpotsRemaining(w.RegistrationLimit, registered),
	}
}

// WebinarRegistration links a registrant's email to one webinar.
type WebinarRegistration struct {
	ID            int64     `json:"id"`
	WebinarID     int64     `json:"webinar_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Attended      bool      `json:"attended"`
	EnrolledAfter bool      `json:"enrolled_after"`
	RegisteredAt  time.Time `json:"registered_at"`
}
