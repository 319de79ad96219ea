package memdb

import (
	"context"
	"time"

	"risehub/db"
	"risehub/models"
)

func (s *Store) GetEnrollment(_ context.Context, id int64) (models.Enrollment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if e, ok := s.enrollments[id]; ok {
		return *e, nil
	}
	return models.Enrollment{}, db.ErrNotFound
}

func (s *Store) FindEnrollment(_ context.Context, studentID, cohortID int64) (models.Enrollment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if id, ok := s.enrollIndex[enrollmentKey{studentID, cohortID}]; ok {
		return *s.enrollments[id], nil
	}
	return models.Enrollment{}, db.ErrNotFound
}

func (s *Store) ListEnrollments(_ context.Context, f db.EnrollmentFilter) ([]models.Enrollment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.enrollments,
		func(e *models.Enrollment) bool {
			if f.StudentID != 0 && e.StudentID != f.StudentID {
				return false
			}
			if f.CohortID != 0 && e.CohortID != f.CohortID {
				return false
			}
			if len(f.Statuses) == 0 {
				return true
			}
			for _, st := range f.Statuses {
				if e.Status == st {
					return true
				}
			}
			return false
		},
		func(a, b *models.Enrollment) bool {
			if !a.EnrolledAt.Equal(b.EnrolledAt) {
				return a.EnrolledAt.After(b.EnrolledAt)
			}
			return a.ID > b.ID
		}), nil
}

func (s *Store) UpdateEnrollment(_ context.Context, e *models.Enrollment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.enrollments[e.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *e
	// student, cohort and enrolled_at are fixed once created
	cp.StudentID = old.StudentID
	cp.CohortID = old.CohortID
	cp.EnrolledAt = old.EnrolledAt
	s.enrollments[e.ID] = &cp
	return nil
}

// UpdateEnrollmentLocked runs fn on a copy while holding the write lock.
func (s *Store) UpdateEnrollmentLocked(_ context.Context, id int64, fn func(e *models.Enrollment) error) (models.Enrollment, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.enrollments[id]
	if !ok {
		return models.Enrollment{}, db.ErrNotFound
	}
	cp := *old
	if err := fn(&cp); err != nil {
		return models.Enrollment{}, err
	}
	cp.ID = old.ID
	cp.StudentID = old.StudentID
	cp.CohortID = old.CohortID
	cp.EnrolledAt = old.EnrolledAt
	s.enrollments[id] = &cp
	return cp, nil
}

func (s *Store) SetPaymentMethod(_ context.Context, id, studentID int64, method string, at time.Time) (models.Enrollment, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.enrollments[id]
	if !ok || e.StudentID != studentID || e.Status.Terminal() {
		return models.Enrollment{}, db.ErrNotFound
	}
	e.PaymentMethod = method
	e.UpdatedAt = at
	return *e, nil
}
