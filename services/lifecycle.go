package services

import (
	"context"
	"fmt"
	"time"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/logger"
	"risehub/models"
)

// Action names a staff transition on an enrollment.
type Action string

const (
	ActionScheduleAssessment Action = "schedule_assessment"
	ActionMarkPending        Action = "mark_pending"
	ActionMarkEnrolled       Action = "mark_enrolled"
	ActionMarkPaid           Action = "mark_paid"
	ActionComplete           Action = "complete"
	ActionDrop               Action = "drop"
	ActionCancel             Action = "cancel"
	ActionRecordProgress     Action = "record_progress"
)

// Actions lists every transition in the order the backoffice shows them.
var Actions = []Action{
	ActionScheduleAssessment, ActionMarkPending, ActionMarkEnrolled, ActionMarkPaid,
	ActionComplete, ActionDrop, ActionCancel, ActionRecordProgress,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// allowedFrom lists the source statuses of each status-changing action.
// A nil entry means any non-terminal status.
var allowedFrom = map[Action][]models.EnrollmentStatus{
	ActionScheduleAssessment: {models.StatusInterested},
	ActionMarkPending:        {models.StatusInterested, models.StatusAssessmentScheduled},
	ActionMarkEnrolled:       {models.StatusInterested, models.StatusAssessmentScheduled, models.StatusPending},
	ActionComplete:           {models.StatusEnrolled},
	ActionMarkPaid:           nil,
	ActionDrop:               nil,
	ActionCancel:             nil,
}

// TransitionRequest carries an action and the arguments some actions take.
type TransitionRequest struct {
	Action             Action     `json:"action"`
	AssessmentCallDate *time.Time `json:"assessment_call_date,omitempty"`
	AssessmentNotes    string     `json:"assessment_notes,omitempty"`
	PaymentMethod      string     `json:"payment_method,omitempty"`
	Attendance         *int       `json:"attendance_count,omitempty"`
	Assignments        *int       `json:"assignments_completed,omitempty"`
}

// TransitionOutcome is the per-enrollment result of a batch transition.
type TransitionOutcome struct {
	EnrollmentID int64                   `json:"enrollment_id"`
	OK           bool                    `json:"ok"`
	Status       models.EnrollmentStatus `json:"status,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

func canLeave(status models.EnrollmentStatus, allowed []models.EnrollmentStatus) bool {
	if status.Terminal() {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, s := range allowed {
		if status == s {
			return true
		}
	}
	return false
}

// applyTransition mutates e according to req. price is the course price
// used by mark_paid.
func applyTransition(e *models.Enrollment, req TransitionRequest, price models.Money, now time.Time) error {
	if !req.Action.Valid() {
		return apperrors.E(apperrors.Invalid, fmt.Sprintf("unknown action %q", req.Action))
	}

	if req.Action == ActionRecordProgress {
		if e.Status == models.StatusDropped || e.Status == models.StatusCancelled {
			return apperrors.ErrInvalidTransition
		}
		if (req.Attendance != nil && *req.Attendance < 0) || (req.Assignments != nil && *req.Assignments < 0) {
			return apperrors.E(apperrors.Invalid, "progress counters cannot be negative")
		}
		if req.Attendance != nil {
			e.AttendanceCount = *req.Attendance
		}
		if req.Assignments != nil {
			e.AssignmentsCompleted = *req.Assignments
		}
		e.UpdatedAt = now
		return nil
	}

	if !canLeave(e.Status, allowedFrom[req.Action]) {
		return apperrors.ErrInvalidTransition
	}

	switch req.Action {
	case ActionScheduleAssessment:
		if req.AssessmentCallDate == nil {
			return apperrors.E(apperrors.Invalid, "assessment_call_date is required")
		}
		e.Status = models.StatusAssessmentScheduled
		when := req.AssessmentCallDate.UTC()
		e.AssessmentCallDate = &when
		if req.AssessmentNotes != "" {
			e.AssessmentNotes = req.AssessmentNotes
		}
	case ActionMarkPending:
		e.Status = models.StatusPending
	case ActionMarkEnrolled:
		e.Status = models.StatusEnrolled
	case ActionMarkPaid:
		// only the first payment is recorded; later calls leave the row alone
		if e.AmountPaid == 0 {
			e.AmountPaid = price
			e.PaymentDate = timePtr(now)
			if req.PaymentMethod != "" {
				e.PaymentMethod = req.PaymentMethod
			}
		}
	case ActionComplete:
		e.Status = models.StatusCompleted
	case ActionDrop:
		e.Status = models.StatusDropped
	case ActionCancel:
		e.Status = models.StatusCancelled
	}

	e.UpdatedAt = now
	return nil
}

// Transition applies one staff action to one enrollment.
func (s *EnrollmentService) Transition(ctx context.Context, enrollmentID int64, req TransitionRequest) (models.Enrollment, error) {
	e, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return models.Enrollment{}, storeErr(err, "enrollment")
	}

	var price models.Money
	if req.Action == ActionMarkPaid {
		_, course, err := s.cohortAndCourse(ctx, e.CohortID)
		if err != nil {
			return models.Enrollment{}, err
		}
		price = course.Price
	}

	var before models.EnrollmentStatus
	e, err = s.store.UpdateEnrollmentLocked(ctx, enrollmentID, func(locked *models.Enrollment) error {
		before = locked.Status
		return applyTransition(locked, req, price, s.now())
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.Other {
			return models.Enrollment{}, err
		}
		return models.Enrollment{}, storeErr(err, "enrollment")
	}

	if e.Status != before {
		logger.Info("Enrollment %d moved %s -> %s", e.ID, before, e.Status)
		s.events.Emit(EventEnrollmentStatus, entityKey("enrollment", e.ID), map[string]interface{}{
			"enrollment_id": e.ID,
			"from":          before,
			"to":            e.Status,
			"action":        req.Action,
		})
	}
	return e, nil
}

// TransitionBatch applies req to each enrollment independently and reports
// every outcome. One failure does not stop the rest.
func (s *EnrollmentService) TransitionBatch(ctx context.Context, ids []int64, req TransitionRequest) []TransitionOutcome {
	outcomes := make([]TransitionOutcome, 0, len(ids))
	for _, id := range ids {
		e, err := s.Transition(ctx, id, req)
		if err != nil {
			msg := apperrors.MessageOf(err)
			if msg == "" {
				msg = err.Error()
			}
			outcomes = append(outcomes, TransitionOutcome{EnrollmentID: id, Error: msg})
			continue
		}
		outcomes = append(outcomes, TransitionOutcome{EnrollmentID: id, OK: true, Status: e.Status})
	}
	return outcomes
}

// ListEnrollments is the staff enrollment list with cohort and course details.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, f db.EnrollmentFilter) ([]models.EnrollmentResponse, error) {
	enrollments, err := s.store.ListEnrollments(ctx, f)
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

// GetEnrollment is the staff view of one enrollment.
func (s *EnrollmentService) GetEnrollment(ctx context.Context, id int64) (models.EnrollmentResponse, error) {
	e, err := s.store.GetEnrollment(ctx, id)
	if err != nil {
		return models.EnrollmentResponse{}, storeErr(err, "enrollment")
	}
	cohort, course, err := s.cohortAndCourse(ctx, e.CohortID)
	if err != nil {
		return models.EnrollmentResponse{}, err
	}
	return e.ToResponse(cohort, course), nil
}
