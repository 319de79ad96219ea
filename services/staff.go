package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/logger"
	"risehub/models"
	"risehub/utils"
)

// StaffService keeps the instructor, assignment and roster bookkeeping.
type StaffService struct {
	store db.Store
	now   Clock
}

func NewStaffService(store db.Store, now Clock) *StaffService {
	return &StaffService{store: store, now: now}
}

// InstructorInput is the staff instructor form. UserID is ignored on update.
type InstructorInput struct {
	UserID      int64        `json:"user_id" validate:"required,gt=0"`
	Role        string       `json:"role" validate:"required,oneof=lead supporting admin marketing"`
	University  string       `json:"university" validate:"max=200"`
	Major       string       `json:"major" validate:"max=200"`
	Bio         string       `json:"bio"`
	MonthlyRate models.Money `json:"monthly_rate" validate:"gte=0"`
	IsActive    *bool        `json:"is_active"`
}

// CohortInstructorInput assigns an instructor to a cohort.
type CohortInstructorInput struct {
	InstructorID int64  `json:"instructor_id" validate:"required,gt=0"`
	Role         string `json:"role" validate:"required,oneof=lead supporting"`
}

// AssignmentInput is the staff assignment form.
type AssignmentInput struct {
	WeekNumber  int       `json:"week_number" validate:"required,gte=1"`
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description"`
	QuizletURL  string    `json:"quizlet_url" validate:"omitempty,url"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// SubmissionInput records a student's work on an assignment.
type SubmissionInput struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Completed bool   `json:"completed"`
	Score     *int   `json:"score" validate:"omitempty,gte=0,lte=100"`
	Notes     string `json:"notes"`
}

// GradeInput updates a submission. Nil fields are left unchanged.
type GradeInput struct {
	Completed *bool   `json:"completed"`
	Score     *int    `json:"score" validate:"omitempty,gte=0,lte=100"`
	Notes     *string `json:"notes"`
}

func (in InstructorInput) apply(i *models.InstructorProfile) {
	i.Role = in.Role
	i.University = strings.TrimSpace(in.University)
	i.Major = strings.TrimSpace(in.Major)
	i.Bio = utils.SanitizeHTML(in.Bio)
	i.MonthlyRate = in.MonthlyRate
	if in.IsActive != nil {
		i.IsActive = *in.IsActive
	}
}

func (s *StaffService) ListInstructors(ctx context.Context) ([]models.InstructorProfile, error) {
	out, err := s.store.ListInstructors(ctx)
	if err != nil {
		return nil, storeErr(err, "instructor")
	}
	return out, nil
}

// CreateInstructor fails with Conflict when the user already has a profile.
func (s *StaffService) CreateInstructor(ctx context.Context, in InstructorInput) (models.InstructorProfile, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.InstructorProfile{}, err
	}
	if _, err := s.store.GetUser(ctx, in.UserID); err != nil {
		return models.InstructorProfile{}, storeErr(err, "user")
	}

	i := models.InstructorProfile{UserID: in.UserID, IsActive: true, JoinedAt: s.now()}
	in.apply(&i)
	if err := s.store.CreateInstructor(ctx, &i); err != nil {
		return models.InstructorProfile{}, storeErr(err, "instructor")
	}
	logger.Info("Created instructor %d for user %d", i.ID, i.UserID)
	return i, nil
}

func (s *StaffService) UpdateInstructor(ctx context.Context, id int64, in InstructorInput) (models.InstructorProfile, error) {
	i, err := s.store.GetInstructor(ctx, id)
	if err != nil {
		return models.InstructorProfile{}, storeErr(err, "instructor")
	}
	in.UserID = i.UserID
	if err := utils.ValidateStruct(in); err != nil {
		return models.InstructorProfile{}, err
	}
	in.apply(&i)
	if err := s.store.UpdateInstructor(ctx, &i); err != nil {
		return models.InstructorProfile{}, storeErr(err, "instructor")
	}
	return i, nil
}

func (s *StaffService) CohortInstructors(ctx context.Context, cohortID int64) ([]models.CohortInstructor, error) {
	if _, err := s.store.GetCohort(ctx, cohortID); err != nil {
		return nil, storeErr(err, "cohort")
	}
	out, err := s.store.ListCohortInstructors(ctx, cohortID)
	if err != nil {
		return nil, storeErr(err, "cohort instructor")
	}
	return out, nil
}

// AddCohortInstructor fails with Conflict when the pair already exists.
func (s *StaffService) AddCohortInstructor(ctx context.Context, cohortID int64, in CohortInstructorInput) (models.CohortInstructor, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.CohortInstructor{}, err
	}
	if _, err := s.store.GetCohort(ctx, cohortID); err != nil {
		return models.CohortInstructor{}, storeErr(err, "cohort")
	}
	if _, err := s.store.GetInstructor(ctx, in.InstructorID); err != nil {
		return models.CohortInstructor{}, storeErr(err, "instructor")
	}

	ci := models.CohortInstructor{CohortID: cohortID, InstructorID: in.InstructorID, Role: in.Role}
	if err := s.store.AddCohortInstructor(ctx, &ci); err != nil {
		return models.CohortInstructor{}, storeErr(err, "cohort instructor")
	}
	return ci, nil
}

func (s *StaffService) RemoveCohortInstructor(ctx context.Context, id int64) error {
	if err := s.store.RemoveCohortInstructor(ctx, id); err != nil {
		return storeErr(err, "cohort instructor")
	}
	return nil
}

func (in AssignmentInput) apply(a *models.Assignment) {
	a.WeekNumber = in.WeekNumber
	a.Title = strings.TrimSpace(in.Title)
	a.Description = utils.SanitizeHTML(in.Description)
	a.QuizletURL = strings.TrimSpace(in.QuizletURL)
	a.DueDate = in.DueDate.UTC()
}

// Assignments lists a cohort's assignments by week.
func (s *StaffService) Assignments(ctx context.Context, cohortID int64) ([]models.Assignment, error) {
	if _, err := s.store.GetCohort(ctx, cohortID); err != nil {
		return nil, storeErr(err, "cohort")
	}
	out, err := s.store.ListAssignments(ctx, cohortID)
	if err != nil {
		return nil, storeErr(err, "assignment")
	}
	return out, nil
}

func (s *StaffService) GetAssignment(ctx context.Context, id int64) (models.Assignment, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, storeErr(err, "assignment")
	}
	return a, nil
}

// CreateAssignment fails with Conflict when the cohort already has one for that week.
func (s *StaffService) CreateAssignment(ctx context.Context, cohortID int64, in AssignmentInput) (models.Assignment, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Assignment{}, err
	}
	if _, err := s.store.GetCohort(ctx, cohortID); err != nil {
		return models.Assignment{}, storeErr(err, "cohort")
	}

	a := models.Assignment{CohortID: cohortID}
	in.apply(&a)
	if err := s.store.CreateAssignment(ctx, &a); err != nil {
		return models.Assignment{}, storeErr(err, "assignment")
	}
	return a, nil
}

func (s *StaffService) UpdateAssignment(ctx context.Context, id int64, in AssignmentInput) (models.Assignment, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Assignment{}, err
	}
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return models.Assignment{}, storeErr(err, "assignment")
	}
	in.apply(&a)
	if err := s.store.UpdateAssignment(ctx, &a); err != nil {
		return models.Assignment{}, storeErr(err, "assignment")
	}
	return a, nil
}

// DeleteAssignment removes the assignment and its submissions.
func (s *StaffService) DeleteAssignment(ctx context.Context, id int64) error {
	if err := s.store.DeleteAssignment(ctx, id); err != nil {
		return storeErr(err, "assignment")
	}
	return nil
}

func (s *StaffService) Submissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	if _, err := s.store.GetAssignment(ctx, assignmentID); err != nil {
		return nil, storeErr(err, "assignment")
	}
	out, err := s.store.ListSubmissions(ctx, assignmentID)
	if err != nil {
		return nil, storeErr(err, "submission")
	}
	return out, nil
}

// CreateSubmission records work for a student enrolled in the assignment's
// cohort. A score marks it graded.
func (s *StaffService) CreateSubmission(ctx context.Context, assignmentID int64, in SubmissionInput) (models.AssignmentSubmission, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.AssignmentSubmission{}, err
	}
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return models.AssignmentSubmission{}, storeErr(err, "assignment")
	}
	if _, err := s.store.FindEnrollment(ctx, in.StudentID, a.CohortID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.AssignmentSubmission{}, utils.Invalid("student_id", "student_id is not enrolled in this cohort")
		}
		return models.AssignmentSubmission{}, storeErr(err, "enrollment")
	}

	now := s.now()
	sub := models.AssignmentSubmission{
		AssignmentID: assignmentID,
		StudentID:    in.StudentID,
		Completed:    in.Completed,
		Score:        in.Score,
		Notes:        utils.StripHTML(in.Notes),
	}
	if sub.Completed {
		sub.SubmittedAt = timePtr(now)
	}
	if sub.Score != nil {
		sub.GradedAt = timePtr(now)
	}
	if err := s.store.CreateSubmission(ctx, &sub); err != nil {
		return models.AssignmentSubmission{}, storeErr(err, "submission")
	}
	return sub, nil
}

// GradeSubmission updates a submission. Setting a score stamps graded_at
// and the first completion stamps submitted_at.
func (s *StaffService) GradeSubmission(ctx context.Context, id int64, in GradeInput) (models.AssignmentSubmission, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.AssignmentSubmission{}, err
	}
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return models.AssignmentSubmission{}, storeErr(err, "submission")
	}

	now := s.now()
	if in.Completed != nil {
		sub.Completed = *in.Completed
		if sub.Completed && sub.SubmittedAt == nil {
			sub.SubmittedAt = timePtr(now)
		}
	}
	if in.Score != nil {
		score := *in.Score
		sub.Score = &score
		sub.GradedAt = timePtr(now)
	}
	if in.Notes != nil {
		sub.Notes = utils.StripHTML(*in.Notes)
	}

	if err := s.store.UpdateSubmission(ctx, &sub); err != nil {
		return models.AssignmentSubmission{}, storeErr(err, "submission")
	}
	return sub, nil
}

// ExportRoster renders every enrollment of a cohort as an XLSX workbook.
func (s *StaffService) ExportRoster(ctx context.Context, cohortID int64) ([]byte, error) {
	cohort, err := s.store.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, storeErr(err, "cohort")
	}
	course, err := s.store.GetCourse(ctx, cohort.CourseID)
	if err != nil {
		return nil, storeErr(err, "course")
	}
	taken, err := s.store.CountSeatHolders(ctx, cohortID)
	if err != nil {
		return nil, storeErr(err, "enrollment")
	}
	summary := cohort.Summarize(taken)
	summary.CourseTitle = course.Title

	enrollments, err := s.store.ListEnrollments(ctx, db.EnrollmentFilter{CohortID: cohortID})
	if err != nil {
		return nil, storeErr(err, "enrollment")
	}

	rows := make([]RosterRow, 0, len(enrollments))
	for _, e := range enrollments {
		student, err := s.store.GetUser(ctx, e.StudentID)
		if err != nil {
			return nil, storeErr(err, "user")
		}
		var phone string
		if p, err := s.store.GetStudentProfile(ctx, e.StudentID); err == nil {
			phone = p.PhoneNumber
		}
		rows = append(rows, RosterRow{Student: student, Phone: phone, Enrollment: e.ToResponse(cohort, course)})
	}

	out, err := WriteRosterSheet(summary, rows)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "failed to export roster", err)
	}
	logger.Info("Exported roster for cohort %d (%d rows)", cohortID, len(rows))
	return out, nil
}
