package memdb

import (
	"context"

	"risehub/db"
	"risehub/models"
)

func (s *Store) CreateInstructor(_ context.Context, i *models.InstructorProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.instructors {
		if existing.UserID == i.UserID {
			return db.ErrConflict
		}
	}
	i.ID = s.nextID()
	cp := *i
	s.instructors[i.ID] = &cp
	return nil
}

func (s *Store) UpdateInstructor(_ context.Context, i *models.InstructorProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.instructors[i.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *i
	cp.UserID = old.UserID
	cp.JoinedAt = old.JoinedAt
	s.instructors[i.ID] = &cp
	return nil
}

func (s *Store) GetInstructor(_ context.Context, id int64) (models.InstructorProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if i, ok := s.instructors[id]; ok {
		return *i, nil
	}
	return models.InstructorProfile{}, db.ErrNotFound
}

func (s *Store) ListInstructors(_ context.Context) ([]models.InstructorProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.instructors, nil, func(a, b *models.InstructorProfile) bool {
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	}), nil
}

func (s *Store) AddCohortInstructor(_ context.Context, ci *models.CohortInstructor) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.cohortInstructors {
		if existing.CohortID == ci.CohortID && existing.InstructorID == ci.InstructorID {
			return db.ErrConflict
		}
	}
	ci.ID = s.nextID()
	cp := *ci
	s.cohortInstructors[ci.ID] = &cp
	return nil
}

func (s *Store) ListCohortInstructors(_ context.Context, cohortID int64) ([]models.CohortInstructor, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.cohortInstructors,
		func(ci *models.CohortInstructor) bool { return ci.CohortID == cohortID },
		func(a, b *models.CohortInstructor) bool { return a.ID < b.ID }), nil
}

func (s *Store) RemoveCohortInstructor(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.cohortInstructors[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.cohortInstructors, id)
	return nil
}

func (s *Store) CreateAssignment(_ context.Context, a *models.Assignment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.assignments {
		if existing.CohortID == a.CohortID && existing.WeekNumber == a.WeekNumber {
			return db.ErrConflict
		}
	}
	a.ID = s.nextID()
	cp := *a
	s.assignments[a.ID] = &cp
	return nil
}

func (s *Store) UpdateAssignment(_ context.Context, a *models.Assignment) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.assignments[a.ID]
	if !ok {
		return db.ErrNotFound
	}
	for id, existing := range s.assignments {
		if id != a.ID && existing.CohortID == old.CohortID && existing.WeekNumber == a.WeekNumber {
			return db.ErrConflict
		}
	}
	cp := *a
	cp.CohortID = old.CohortID
	s.assignments[a.ID] = &cp
	return nil
}

func (s *Store) GetAssignment(_ context.Context, id int64) (models.Assignment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if a, ok := s.assignments[id]; ok {
		return *a, nil
	}
	return models.Assignment{}, db.ErrNotFound
}

func (s *Store) ListAssignments(_ context.Context, cohortID int64) ([]models.Assignment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.assignments,
		func(a *models.Assignment) bool { return a.CohortID == cohortID },
		func(a, b *models.Assignment) bool { return a.WeekNumber < b.WeekNumber }), nil
}

func (s *Store) DeleteAssignment(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.assignments[id]; !ok {
		return db.ErrNotFound
	}
	s.deleteAssignmentLocked(id)
	return nil
}

func (s *Store) deleteAssignmentLocked(id int64) {
	delete(s.assignments, id)
	for sid, sub := range s.submissions {
		if sub.AssignmentID == id {
			delete(s.submissions, sid)
		}
	}
}

func (s *Store) CreateSubmission(_ context.Context, sub *models.AssignmentSubmission) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.submissions {
		if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
			return db.ErrConflict
		}
	}
	sub.ID = s.nextID()
	cp := *sub
	s.submissions[sub.ID] = &cp
	return nil
}

func (s *Store) UpdateSubmission(_ context.Context, sub *models.AssignmentSubmission) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.submissions[sub.ID]
	if !ok {
		return db.ErrNotFound
	}
	old.Completed = sub.Completed
	old.Score = sub.Score
	old.Notes = sub.Notes
	old.SubmittedAt = sub.SubmittedAt
	old.GradedAt = sub.GradedAt
	return nil
}

func (s *Store) GetSubmission(_ context.Context, id int64) (models.AssignmentSubmission, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if sub, ok := s.submissions[id]; ok {
		return *sub, nil
	}
	return models.AssignmentSubmission{}, db.ErrNotFound
}

func (s *Store) ListSubmissions(_ context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.submissions,
		func(sub *models.AssignmentSubmission) bool { return sub.AssignmentID == assignmentID },
		func(a, b *models.AssignmentSubmission) bool { return a.ID < b.ID }), nil
}
