package services

import (
	"context"
	"errors"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/logger"
	"risehub/models"
)

// EnrollmentService owns the cohort capacity gate, the enrollment
// lifecycle and the student-facing enrollment pages.
type EnrollmentService struct {
	store  db.Store
	notify *Notifier
	events *EventBus
	now    Clock
}

func NewEnrollmentService(store db.Store, notify *Notifier, events *EventBus, now Clock) *EnrollmentService {
	return &EnrollmentService{store: store, notify: notify, events: events, now: now}
}

// Enroll places a student in a cohort with status pending and nothing paid.
//
// It fails with ErrDuplicateEnrollment when the student already has an
// enrollment in the cohort (in any status), with ErrCohortClosed when the
// cohort is past recruiting, and with ErrCohortFull when no seat is left,
// checked in that order. The checks and the insert happen under the cohort
// lock, so concurrent calls cannot overfill it.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, cohortID int64) (models.Enrollment, error) {
	var enrollment models.Enrollment

	err := s.store.WithCohortLock(ctx, cohortID, func(tx db.CohortTx) error {
		cohort := tx.Cohort()

		exists, err := tx.EnrollmentExists(ctx, studentID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateEnrollment
		}
		if !cohort.Status.Open() {
			return apperrors.ErrCohortClosed
		}

		taken, err := tx.CountSeatHolders(ctx)
		if err != nil {
			return err
		}
		if models.SpotsRemaining(cohort.MaxStudents, taken) <= 0 {
			return apperrors.ErrCohortFull
		}

		now := s.now()
		enrollment = models.Enrollment{
			StudentID:  studentID,
			CohortID:   cohortID,
			Status:     models.StatusPending,
			AmountPaid: 0,
			EnrolledAt: now,
			UpdatedAt:  now,
		}
		return tx.InsertEnrollment(ctx, &enrollment)
	})

	switch {
	case err == nil:
	case errors.Is(err, db.ErrConflict):
		// another request for the same student won the unique constraint
		return models.Enrollment{}, apperrors.ErrDuplicateEnrollment
	case errors.Is(err, db.ErrNotFound):
		return models.Enrollment{}, storeErr(err, "cohort")
	case apperrors.KindOf(err) != apperrors.Other:
		return models.Enrollment{}, err
	default:
		return models.Enrollment{}, apperrors.E(apperrors.Internal, "failed to enroll", err)
	}

	logger.Info("Student %d enrolled in cohort %d (enrollment %d)", studentID, cohortID, enrollment.ID)
	s.afterEnroll(ctx, enrollment)
	return enrollment, nil
}

// afterEnroll sends the confirmation and the domain event. Lookup failures
// only cost the email.
func (s *EnrollmentService) afterEnroll(ctx context.Context, e models.Enrollment) {
	s.events.Emit(EventEnrollmentCreated, entityKey("enrollment", e.ID), map[string]interface{}{
		"enrollment_id": e.ID,
		"student_id":    e.StudentID,
		"cohort_id":     e.CohortID,
		"status":        e.Status,
	})

	if s.notify == nil {
		return
	}
	student, err := s.store.GetUser(ctx, e.StudentID)
	if err != nil {
		logger.Warn("Skipping enrollment email for %d: %v", e.ID, err)
		return
	}
	cohort, course, err := s.cohortAndCourse(ctx, e.CohortID)
	if err != nil {
		logger.Warn("Skipping enrollment email for %d: %v", e.ID, err)
		return
	}
	s.notify.EnrollmentReceived(student, cohort, course)
}

// EnrollStudent is the student-facing entry point: it requires a complete
// profile before running the capacity gate.
func (s *EnrollmentService) EnrollStudent(ctx context.Context, studentID, cohortID int64) (models.Enrollment, error) {
	profile, err := s.store.GetStudentProfile(ctx, studentID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return models.Enrollment{}, storeErr(err, "profile")
	}
	if err != nil || !profile.Complete() {
		return models.Enrollment{}, apperrors.ErrProfileIncomplete
	}
	return s.Enroll(ctx, studentID, cohortID)
}

// SpotsRemaining recomputes the cohort's free seats from live enrollments.
func (s *EnrollmentService) SpotsRemaining(ctx context.Context, cohortID int64) (int, error) {
	cohort, err := s.store.GetCohort(ctx, cohortID)
	if err != nil {
		return 0, storeErr(err, "cohort")
	}
	taken, err := s.store.CountSeatHolders(ctx, cohortID)
	if err != nil {
		return 0, storeErr(err, "enrollment")
	}
	return models.SpotsRemaining(cohort.MaxStudents, taken), nil
}

// EnrollmentChoices lists the cohorts a student may pick on the enrollment form.
func (s *EnrollmentService) EnrollmentChoices(ctx context.Context) ([]models.CohortSummary, error) {
	cohorts, err := s.store.ListCohorts(ctx, db.CohortFilter{Statuses: models.OpenCohortStatuses})
	if err != nil {
		return nil, storeErr(err, "cohort")
	}
	return summarizeCohorts(ctx, s.store, cohorts)
}

// Dashboard returns the student's enrollments, newest first.
func (s *EnrollmentService) Dashboard(ctx context.Context, studentID int64) ([]models.EnrollmentResponse, error) {
	enrollments, err := s.store.ListEnrollments(ctx, db.EnrollmentFilter{StudentID: studentID})
	if err != nil {
		return nil, storeErr(err, "enrollment")
	}

	out := make([]models.EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		cohort, course, err := s.cohortAndCourse(ctx, e.CohortID)
		if err != nil {
			return nil, err
		}
		out = append(out, e.ToResponse(cohort, course))
	}
	return out, nil
}

// StudentEnrollment loads an enrollment owned by studentID. Someone
// else's enrollment reads as not found.
func (s *EnrollmentService) StudentEnrollment(ctx context.Context, studentID, enrollmentID int64) (models.EnrollmentResponse, error) {
	e, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return models.EnrollmentResponse{}, storeErr(err, "enrollment")
	}
	if e.StudentID != studentID {
		return models.EnrollmentResponse{}, apperrors.NewNotFoundError("enrollment not found")
	}
	cohort, course, err := s.cohortAndCourse(ctx, e.CohortID)
	if err != nil {
		return models.EnrollmentResponse{}, err
	}
	return e.ToResponse(cohort, course), nil
}

// RecordPaymentMethod stores the payment method the student says they will
// use. No money moves and the status does not change.
func (s *EnrollmentService) RecordPaymentMethod(ctx context.Context, studentID, enrollmentID int64, method string) (models.PaymentAcknowledgment, error) {
	resp, err := s.StudentEnrollment(ctx, studentID, enrollmentID)
	if err != nil {
		return models.PaymentAcknowledgment{}, err
	}

	if resp.Enrollment.Status.Terminal() {
		return models.PaymentAcknowledgment{}, apperrors.ErrInvalidTransition
	}
	// Only the method column is written, so a staff action committed since
	// the read above is kept.
	e, err := s.store.SetPaymentMethod(ctx, enrollmentID, studentID, method, s.now())
	if errors.Is(err, db.ErrNotFound) {
		return models.PaymentAcknowledgment{}, apperrors.ErrInvalidTransition
	}
	if err != nil {
		return models.PaymentAcknowledgment{}, storeErr(err, "enrollment")
	}

	due := resp.Price - e.AmountPaid
	if due < 0 {
		due = 0
	}
	return models.PaymentAcknowledgment{
		EnrollmentID:  e.ID,
		PaymentMethod: method,
		AmountDue:     due,
		Currency:      resp.Currency,
		IsPaid:        e.IsPaid(resp.Price),
		RecordedAt:    e.UpdatedAt,
	}, nil
}

// Receipt renders the payment acknowledgment PDF for a student's enrollment.
func (s *EnrollmentService) Receipt(ctx context.Context, studentID, enrollmentID int64, site SiteInfo) ([]byte, error) {
	resp, err := s.StudentEnrollment(ctx, studentID, enrollmentID)
	if err != nil {
		return nil, err
	}
	student, err := s.store.GetUser(ctx, studentID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	cohort, err := s.store.GetCohort(ctx, resp.CohortID)
	if err != nil {
		return nil, storeErr(err, "cohort")
	}

	pdf, err := RenderReceipt(ReceiptData{
		Site:       site,
		Student:    student,
		Enrollment: resp,
		Cohort:     cohort,
		IssuedAt:   s.now(),
	})
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "failed to render receipt", err)
	}
	return pdf, nil
}

func (s *EnrollmentService) cohortAndCourse(ctx context.Context, cohortID int64) (models.Cohort, models.Course, error) {
	cohort, err := s.store.GetCohort(ctx, cohortID)
	if err != nil {
		return models.Cohort{}, models.Course{}, storeErr(err, "cohort")
	}
	course, err := s.store.GetCourse(ctx, cohort.CourseID)
	if err != nil {
		return models.Cohort{}, models.Course{}, storeErr(err, "course")
	}
	return cohort, course, nil
}

// summarizeCohorts attaches live capacity figures and course titles.
func summarizeCohorts(ctx context.Context, store db.Store, cohorts []models.Cohort) ([]models.CohortSummary, error) {
	titles := map[int64]string{}
	out := make([]models.CohortSummary, 0, len(cohorts))
	for _, c := range cohorts {
		taken, err := store.CountSeatHolders(ctx, c.ID)
		if err != nil {
			return nil, storeErr(err, "enrollment")
		}
		summary := c.Summarize(taken)

		title, ok := titles[c.CourseID]
		if !ok {
			course, err := store.GetCourse(ctx, c.CourseID)
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return nil, storeErr(err, "course")
			}
			title = course.Title
			titles[c.CourseID] = title
		}
		summary.CourseTitle = title
		out = append(out, summary)
	}
	return out, nil
}
