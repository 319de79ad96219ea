package models

import "time"

// CohortStatus is the scheduling state of a cohort.
type CohortStatus string

const (
	CohortPlanning   CohortStatus = "planning"
	CohortRecruiting CohortStatus = "recruiting"
	CohortActive     CohortStatus = "active"
	CohortCompleted  CohortStatus = "completed"
	CohortCancelled  CohortStatus = "cancelled"
)

const DefaultMaxStudents = 15

// Valid reports whether s is a known cohort status.
func (s CohortStatus) Valid() bool {
	switch s {
	case CohortPlanning, CohortRecruiting, CohortActive, CohortCompleted, CohortCancelled:
		return true
	}
	return false
}

// Open reports whether students may still enroll.
func (s CohortStatus) Open() bool {
	return s == CohortPlanning || s == CohortRecruiting
}

// OpenCohortStatuses are the statuses offered on the enrollment form.
var OpenCohortStatuses = []CohortStatus{CohortRecruiting, CohortPlanning}

// Cohort is one scheduled running of a Course with its own capacity.
type Cohort struct {
	ID          int64        `json:"id"`
	CourseID    int64        `json:"course_id"`
	Name        string       `json:"name"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
	Status      CohortStatus `json:"status"`
	MaxStudents int          `json:"max_students"`
	MeetingDay  string       `json:"meeting_day,omitempty"`
	MeetingTime string       `json:"meeting_time,omitempty"`
	ZoomLink    string       `json:"zoom_link,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CohortSummary is a cohort with its live capacity figures.
type CohortSummary struct {
	Cohort
	CourseTitle     string `json:"course_title,omitempty"`
	EnrollmentCount int    `json:"enrollment_count"`
	SpotsRemaining  int    `json:"spots_remaining"`
}

// Summarize attaches capacity figures computed from taken seats.
func (c Cohort) Summarize(taken int) CohortSummary {
	return CohortSummary{
		Cohort:          c,
		EnrollmentCount: taken,
		SpotsRemaining:  SpotsRemaining(c.MaxStudents, taken),
	}
}

// SpotsRemaining is capacity minus taken seats, never below zero.
func SpotsRemaining(capacity, taken int) int {
	return max(0, capacity-taken)
}
