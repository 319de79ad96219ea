package models

import "time"

const (
	RoleLead       = "lead"
	RoleSupporting = "supporting"
	RoleAdmin      = "admin"
	RoleMarketing  = "marketing"
)

// InstructorProfile describes an instructor or facilitator.
type InstructorProfile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Role        string    `json:"role"`
	University  string    `json:"university,omitempty"`
	Major       string    `json:"major,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	MonthlyRate Money     `json:"monthly_rate"`
	IsActive    bool      `json:"is_active"`
	JoinedAt    time.Time `json:"joined_at"`
}

// CohortInstructor assigns an instructor to a cohort.
type CohortInstructor struct {
	ID           int64  `json:"id"`
	CohortID     int64  `json:"cohort_id"`
	InstructorID int64  `json:"instructor_id"`
	Role         string `json:"role"`
}

// Assignment is a weekly piece of coursework for a cohort.
type Assignment struct {
	ID          int64     `json:"id"`
	CohortID    int64     `json:"cohort_id"`
	WeekNumber  int       `json:"week_number"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	QuizletURL  string    `json:"quizlet_url,omitempty"`
	DueDate     time.Time `json:"due_date"`
}

// AssignmentSubmission tracks one student's work on an assignment.
type AssignmentSubmission struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignment_id"`
	StudentID    int64      `json:"student_id"`
	Completed    bool       `json:"completed"`
	Score        *int       `json:"score,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}
