package memdb

import (
	"context"

	"risehub/db"
	"risehub/models"
)

func (s *Store) CreateCourse(_ context.Context, c *models.Course) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c.ID = s.nextID()
	cp := *c
	s.courses[c.ID] = &cp
	return nil
}

func (s *Store) UpdateCourse(_ context.Context, c *models.Course) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.courses[c.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *c
	cp.CreatedAt = old.CreatedAt
	s.courses[c.ID] = &cp
	return nil
}

func (s *Store) GetCourse(_ context.Context, id int64) (models.Course, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if c, ok := s.courses[id]; ok {
		return *c, nil
	}
	return models.Course{}, db.ErrNotFound
}

func (s *Store) ListCourses(_ context.Context, activeOnly bool) ([]models.Course, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.courses,
		func(c *models.Course) bool { return !activeOnly || c.IsActive },
		func(a, b *models.Course) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}), nil
}

func (s *Store) DeleteCourse(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.courses[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.courses, id)
	for wid, w := range s.curriculum {
		if w.CourseID == id {
			delete(s.curriculum, wid)
		}
	}
	for cid, c := range s.cohorts {
		if c.CourseID == id {
			s.deleteCohortLocked(cid)
		}
	}
	for _, f := range s.interests {
		if f.InterestedCourseID != nil && *f.InterestedCourseID == id {
			f.InterestedCourseID = nil
		}
	}
	return nil
}

func (s *Store) CreateCurriculumWeek(_ context.Context, w *models.WeekCurriculum) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.curriculum {
		if existing.CourseID == w.CourseID && existing.WeekNumber == w.WeekNumber {
			return db.ErrConflict
		}
	}
	w.ID = s.nextID()
	cp := *w
	s.curriculum[w.ID] = &cp
	return nil
}

func (s *Store) ListCurriculum(_ context.Context, courseID int64) ([]models.WeekCurriculum, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.curriculum,
		func(w *models.WeekCurriculum) bool { return w.CourseID == courseID },
		func(a, b *models.WeekCurriculum) bool { return a.WeekNumber < b.WeekNumber }), nil
}

func (s *Store) CreateCohort(_ context.Context, c *models.Cohort) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c.ID = s.nextID()
	cp := *c
	s.cohorts[c.ID] = &cp
	return nil
}

func (s *Store) UpdateCohort(_ context.Context, c *models.Cohort) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.cohorts[c.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *c
	cp.CreatedAt = old.CreatedAt
	s.cohorts[c.ID] = &cp
	return nil
}

func (s *Store) GetCohort(_ context.Context, id int64) (models.Cohort, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if c, ok := s.cohorts[id]; ok {
		return *c, nil
	}
	return models.Cohort{}, db.ErrNotFound
}

func (s *Store) ListCohorts(_ context.Context, f db.CohortFilter) ([]models.Cohort, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := values(s.cohorts,
		func(c *models.Cohort) bool {
			if f.CourseID != 0 && c.CourseID != f.CourseID {
				return false
			}
			if len(f.Statuses) == 0 {
				return true
			}
			for _, st := range f.Statuses {
				if c.Status == st {
					return true
				}
			}
			return false
		},
		func(a, b *models.Cohort) bool {
			if !a.StartDate.Equal(b.StartDate) {
				return a.StartDate.Before(b.StartDate)
			}
			return a.ID < b.ID
		})
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (s *Store) DeleteCohort(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.cohorts[id]; !ok {
		return db.ErrNotFound
	}
	s.deleteCohortLocked(id)
	return nil
}

// deleteCohortLocked removes a cohort and everything hanging off it.
func (s *Store) deleteCohortLocked(id int64) {
	delete(s.cohorts, id)
	for eid, e := range s.enrollments {
		if e.CohortID == id {
			delete(s.enrollIndex, enrollmentKey{e.StudentID, e.CohortID})
			delete(s.enrollments, eid)
		}
	}
	for cid, ci := range s.cohortInstructors {
		if ci.CohortID == id {
			delete(s.cohortInstructors, cid)
		}
	}
	for aid, a := range s.assignments {
		if a.CohortID == id {
			s.deleteAssignmentLocked(aid)
		}
	}
	for _, f := range s.interests {
		if f.PreferredCohortID != nil && *f.PreferredCohortID == id {
			f.PreferredCohortID = nil
		}
	}
}

func (s *Store) countSeatHoldersLocked(cohortID int64) int {
	n := 0
	for _, e := range s.enrollments {
		if e.CohortID == cohortID && e.Status.HoldsSeat() {
			n++
		}
	}
	return n
}

func (s *Store) CountSeatHolders(_ context.Context, cohortID int64) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.countSeatHoldersLocked(cohortID), nil
}

// WithCohortLock holds the store's write lock for the whole of fn. fn must
// only touch the store through tx. Enrollments inserted through tx are
// removed again if fn fails.
func (s *Store) WithCohortLock(_ context.Context, cohortID int64, fn func(tx db.CohortTx) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c, ok := s.cohorts[cohortID]
	if !ok {
		return db.ErrNotFound
	}

	tx := &cohortTx{store: s, cohort: *c}
	if err := fn(tx); err != nil {
		for _, id := range tx.inserted {
			e := s.enrollments[id]
			delete(s.enrollIndex, enrollmentKey{e.StudentID, e.CohortID})
			delete(s.enrollments, id)
		}
		return err
	}
	return nil
}

type cohortTx struct {
	store    *Store
	cohort   models.Cohort
	inserted []int64
}

func (t *cohortTx) Cohort() models.Cohort { return t.cohort }

func (t *cohortTx) EnrollmentExists(_ context.Context, studentID int64) (bool, error) {
	_, ok := t.store.enrollIndex[enrollmentKey{studentID, t.cohort.ID}]
	return ok, nil
}

func (t *cohortTx) CountSeatHolders(_ context.Context) (int, error) {
	return t.store.countSeatHoldersLocked(t.cohort.ID), nil
}

func (t *cohortTx) InsertEnrollment(_ context.Context, e *models.Enrollment) error {
	key := enrollmentKey{e.StudentID, e.CohortID}
	if _, ok := t.store.enrollIndex[key]; ok {
		return db.ErrConflict
	}
	e.ID = t.store.nextID()
	cp := *e
	t.store.enrollments[e.ID] = &cp
	t.store.enrollIndex[key] = e.ID
	t.inserted = append(t.inserted, e.ID)
	return nil
}
