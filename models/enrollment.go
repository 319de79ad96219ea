package models

import "time"

// EnrollmentStatus tracks a student's progress through a cohort.
type EnrollmentStatus string

const (
	StatusInterested          EnrollmentStatus = "interested"
	StatusAssessmentScheduled EnrollmentStatus = "assessment_scheduled"
	StatusPending             EnrollmentStatus = "pending"
	StatusEnrolled            EnrollmentStatus = "enrolled"
	StatusCompleted           EnrollmentStatus = "completed"
	StatusDropped             EnrollmentStatus = "dropped"
	StatusCancelled           EnrollmentStatus = "cancelled"
)

// CapacityStatuses are the statuses that occupy a seat in a cohort.
var CapacityStatuses = []EnrollmentStatus{StatusPending, StatusEnrolled}

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusInterested, StatusAssessmentScheduled, StatusPending, StatusEnrolled,
		StatusCompleted, StatusDropped, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s EnrollmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusDropped || s == StatusCancelled
}

// HoldsSeat reports whether an enrollment in this status counts toward capacity.
func (s EnrollmentStatus) HoldsSeat() bool {
	return s == StatusPending || s == StatusEnrolled
}

// GrantsMaterials reports whether the student may view cohort materials.
func (s EnrollmentStatus) GrantsMaterials() bool {
	return s == StatusEnrolled || s == StatusCompleted
}

// Enrollment is a student's membership record in a specific cohort.
type Enrollment struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"student_id"`
	CohortID  int64            `json:"cohort_id"`
	Status    EnrollmentStatus `json:"status"`

	AmountPaid    Money      `json:"amount_paid"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`

	AssessmentCallDate *time.Time `json:"assessment_call_date,omitempty"`
	AssessmentNotes    string     `json:"assessment_notes,omitempty"`

	AttendanceCount      int `json:"attendance_count"`
	AssignmentsCompleted int `json:"assignments_completed"`

	EnrolledAt time.Time `json:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsPaid reports whether the amount paid covers the course price.
func (e Enrollment) IsPaid(price Money) bool {
	return e.AmountPaid >= price
}

// EnrollmentResponse is the structured response for API responses
type EnrollmentResponse struct {
	Enrollment
	IsPaid      bool   `json:"is_paid"`
	CohortName  string `json:"cohort_name"`
	CourseTitle string `json:"course_title"`
	Price       Money  `json:"price"`
	Currency    string `json:"currency"`
}

// ToResponse joins an enrollment with its cohort and course for display.
func (e Enrollment) ToResponse(cohort Cohort, course Course) EnrollmentResponse {
	return EnrollmentResponse{
		Enrollment:  e,
		IsPaid:      e.IsPaid(course.Price),
		CohortName:  cohort.Name,
		CourseTitle: course.Title,
		Price:       course.Price,
		Currency:    course.Currency,
	}
}
