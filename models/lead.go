package models

import (
	"time"
)

// How a lead heard about the program.
const (
	HeardWebinar     = "webinar"
	HeardSocialMedia = "social_media"
	HeardFlyer       = "flyer"
	HeardRadio       = "radio"
	HeardReferral    = "referral"
	HeardOther       = "other"
)

// InterestForm represents an initial lead capture submission
type InterestForm struct {
	ID                    int64     `json:"id"`
	FullName              string    `json:"full_name"`
	Email                 string    `json:"email"`
	PhoneNumber           string    `json:"phone_number"`
	Age                   *int      `json:"age,omitempty"`
	InterestedCourseID    *int64    `json:"interested_course_id,omitempty"`
	PreferredCohortID     *int64    `json:"preferred_cohort_id,omitempty"`
	HowDidYouHear         string    `json:"how_did_you_hear,omitempty"`
	Message               string    `json:"message,omitempty"`
	Contacted             bool      `json:"contacted"`
	ConvertedToEnrollment bool      `json:"converted_to_enrollment"`
	CreatedAt             time.Time `json:"created_at"`
}

// ContactMessage is a general question submitted through the contact form.
type ContactMessage struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	IsResponded bool       `json:"is_responded"`
	Response    string     `json:"response,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LeadResponse is the structured response for API responses
type LeadResponse struct {
	InterestForm
	CourseTitle string `json:"course_title,omitempty"`
	CohortName  string `json:"cohort_name,omitempty"`
	CreatedDay  string `json:"created_day"`
}

// ToResponse converts InterestForm to LeadResponse with a formatted day
func (l *InterestForm) ToResponse(courseTitle, cohortName string) LeadResponse {
	return LeadResponse{
		InterestForm: *l,
		CourseTitle:  courseTitle,
		CohortName:   cohortName,
		CreatedDay:   l.CreatedAt.Format("2006-01-02"),
	}
}
