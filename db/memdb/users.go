package memdb

import (
	"context"
	"strings"

	"risehub/db"
	"risehub/models"
)

// insertUserLocked enforces the unique username and email columns.
func (s *Store) insertUserLocked(u *models.User) error {
	for _, existing := range s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return db.ErrConflict
		}
	}
	u.ID = s.nextID()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) CreateStudent(_ context.Context, u *models.User, p *models.StudentProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.insertUserLocked(u); err != nil {
		return err
	}
	p.UserID = u.ID
	cp := *p
	s.profiles[u.ID] = &cp
	return nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.insertUserLocked(u)
}

func (s *Store) GetUser(_ context.Context, id int64) (models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return models.User{}, db.ErrNotFound
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return models.User{}, db.ErrNotFound
}

func (s *Store) GetStudentProfile(_ context.Context, userID int64) (models.StudentProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if p, ok := s.profiles[userID]; ok {
		return *p, nil
	}
	return models.StudentProfile{}, db.ErrNotFound
}

func (s *Store) SaveStudentProfile(_ context.Context, p *models.StudentProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[p.UserID]; !ok {
		return db.ErrNotFound
	}
	if old, ok := s.profiles[p.UserID]; ok {
		p.CreatedAt = old.CreatedAt
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}
