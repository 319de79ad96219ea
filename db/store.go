package db

import (
	"context"
	"errors"
	"time"

	"risehub/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// Store is the full persistence surface the services depend on.
type Store interface {
	CourseRepository
	CohortRepository
	EnrollmentRepository
	WebinarRepository
	LeadRepository
	UserRepository
	StaffRepository
}

type CourseRepository interface {
	CreateCourse(ctx context.Context, c *models.Course) error
	UpdateCourse(ctx context.Context, c *models.Course) error
	GetCourse(ctx context.Context, id int64) (models.Course, error)
	ListCourses(ctx context.Context, activeOnly bool) ([]models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	CreateCurriculumWeek(ctx context.Context, w *models.WeekCurriculum) error
	ListCurriculum(ctx context.Context, courseID int64) ([]models.WeekCurriculum, error)
}

// CohortFilter narrows ListCohorts. Zero values mean "any".
type CohortFilter struct {
	CourseID int64
	Statuses []models.CohortStatus
	Limit    int
}

type CohortRepository interface {
	CreateCohort(ctx context.Context, c *models.Cohort) error
	UpdateCohort(ctx context.Context, c *models.Cohort) error
	GetCohort(ctx context.Context, id int64) (models.Cohort, error)
	// ListCohorts orders by start date, earliest first.
	ListCohorts(ctx context.Context, f CohortFilter) ([]models.Cohort, error)
	DeleteCohort(ctx context.Context, id int64) error

	// CountSeatHolders counts enrollments whose status holds a seat.
	CountSeatHolders(ctx context.Context, cohortID int64) (int, error)

	// WithCohortLock runs fn while holding an exclusive lock on the cohort,
	// so concurrent callers for the same cohort are serialized. The work in
	// fn commits only if fn returns nil.
	WithCohortLock(ctx context.Context, cohortID int64, fn func(tx CohortTx) error) error
}

// CohortTx is the view of one locked cohort inside WithCohortLock.
type CohortTx interface {
	Cohort() models.Cohort
	EnrollmentExists(ctx context.Context, studentID int64) (bool, error)
	CountSeatHolders(ctx context.Context) (int, error)
	InsertEnrollment(ctx context.Context, e *models.Enrollment) error
}

// EnrollmentFilter narrows ListEnrollments. Zero values mean "any".
type EnrollmentFilter struct {
	StudentID int64
	CohortID  int64
	Statuses  []models.EnrollmentStatus
}

type EnrollmentRepository interface {
	GetEnrollment(ctx context.Context, id int64) (models.Enrollment, error)
	FindEnrollment(ctx context.Context, studentID, cohortID int64) (models.Enrollment, error)
	// ListEnrollments orders newest first.
	ListEnrollments(ctx context.Context, f EnrollmentFilter) ([]models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, e *models.Enrollment) error
	// UpdateEnrollmentLocked reads the enrollment under a row lock, lets fn
	// change it and writes it back in the same transaction. Nothing is
	// written when fn fails.
	UpdateEnrollmentLocked(ctx context.Context, id int64, fn func(e *models.Enrollment) error) (models.Enrollment, error)
	// SetPaymentMethod writes only payment_method and updated_at, and only
	// on the student's own enrollment while it is not completed, dropped or
	// cancelled. Any other case is ErrNotFound.
	SetPaymentMethod(ctx context.Context, id, studentID int64, method string, at time.Time) (models.Enrollment, error)
}

// WebinarFilter narrows ListWebinars. Zero values mean "any".
type WebinarFilter struct {
	ActiveOnly bool
	From       *time.Time
	Limit      int
}

type WebinarRepository interface {
	CreateWebinar(ctx context.Context, w *models.Webinar) error
	UpdateWebinar(ctx context.Context, w *models.Webinar) error
	GetWebinar(ctx context.Context, id int64) (models.Webinar, error)
	// ListWebinars orders by date, earliest first.
	ListWebinars(ctx context.Context, f WebinarFilter) ([]models.Webinar, error)
	DeleteWebinar(ctx context.Context, id int64) error

	CountRegistrations(ctx context.Context, webinarID int64) (int, error)
	WithWebinarLock(ctx context.Context, webinarID int64, fn func(tx WebinarTx) error) error

	GetRegistration(ctx context.Context, id int64) (models.WebinarRegistration, error)
	// ListRegistrations orders newest first.
	ListRegistrations(ctx context.Context, webinarID int64) ([]models.WebinarRegistration, error)
	UpdateRegistration(ctx context.Context, r *models.WebinarRegistration) error
}

// WebinarTx is the view of one locked webinar inside WithWebinarLock.
type WebinarTx interface {
	Webinar() models.Webinar
	RegistrationExists(ctx context.Context, email string) (bool, error)
	CountRegistrations(ctx context.Context) (int, error)
	InsertRegistration(ctx context.Context, r *models.WebinarRegistration) error
}

// LeadFilter narrows ListInterestForms. Nil pointers mean "any".
type LeadFilter struct {
	Contacted     *bool
	Converted     *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

type LeadRepository interface {
	CreateInterestForm(ctx context.Context, f *models.InterestForm) error
	GetInterestForm(ctx context.Context, id int64) (models.InterestForm, error)
	UpdateInterestForm(ctx context.Context, f *models.InterestForm) error
	// ListInterestForms orders newest first.
	ListInterestForms(ctx context.Context, f LeadFilter) ([]models.InterestForm, error)

	CreateContactMessage(ctx context.Context, m *models.ContactMessage) error
	GetContactMessage(ctx context.Context, id int64) (models.ContactMessage, error)
	UpdateContactMessage(ctx context.Context, m *models.ContactMessage) error
	// ListContactMessages orders newest first; responded nil means all.
	ListContactMessages(ctx context.Context, responded *bool) ([]models.ContactMessage, error)
}

type UserRepository interface {
	// CreateStudent inserts the user and the profile atomically.
	CreateStudent(ctx context.Context, u *models.User, p *models.StudentProfile) error
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	GetStudentProfile(ctx context.Context, userID int64) (models.StudentProfile, error)
	// SaveStudentProfile inserts or replaces the profile for p.UserID.
	SaveStudentProfile(ctx context.Context, p *models.StudentProfile) error
}

type StaffRepository interface {
	CreateInstructor(ctx context.Context, i *models.InstructorProfile) error
	UpdateInstructor(ctx context.Context, i *models.InstructorProfile) error
	GetInstructor(ctx context.Context, id int64) (models.InstructorProfile, error)
	ListInstructors(ctx context.Context) ([]models.InstructorProfile, error)

	AddCohortInstructor(ctx context.Context, ci *models.CohortInstructor) error
	ListCohortInstructors(ctx context.Context, cohortID int64) ([]models.CohortInstructor, error)
	RemoveCohortInstructor(ctx context.Context, id int64) error

	CreateAssignment(ctx context.Context, a *models.Assignment) error
	UpdateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, id int64) (models.Assignment, error)
	// ListAssignments orders by week number.
	ListAssignments(ctx context.Context, cohortID int64) ([]models.Assignment, error)
	DeleteAssignment(ctx context.Context, id int64) error

	CreateSubmission(ctx context.Context, s *models.AssignmentSubmission) error
	UpdateSubmission(ctx context.Context, s *models.AssignmentSubmission) error
	GetSubmission(ctx context.Context, id int64) (models.AssignmentSubmission, error)
	ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error)
}
