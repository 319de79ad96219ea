package memdb

import (
	"context"

	"risehub/db"
	"risehub/models"
)

func (s *Store) CreateInterestForm(_ context.Context, f *models.InterestForm) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	f.ID = s.nextID()
	cp := *f
	s.interests[f.ID] = &cp
	return nil
}

func (s *Store) GetInterestForm(_ context.Context, id int64) (models.InterestForm, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if f, ok := s.interests[id]; ok {
		return *f, nil
	}
	return models.InterestForm{}, db.ErrNotFound
}

func (s *Store) UpdateInterestForm(_ context.Context, f *models.InterestForm) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.interests[f.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *f
	cp.CreatedAt = old.CreatedAt
	s.interests[f.ID] = &cp
	return nil
}

func (s *Store) ListInterestForms(_ context.Context, lf db.LeadFilter) ([]models.InterestForm, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.interests,
		func(f *models.InterestForm) bool {
			if lf.Contacted != nil && f.Contacted != *lf.Contacted {
				return false
			}
			if lf.Converted != nil && f.ConvertedToEnrollment != *lf.Converted {
				return false
			}
			if lf.CreatedAfter != nil && f.CreatedAt.Before(*lf.CreatedAfter) {
				return false
			}
			return lf.CreatedBefore == nil || !f.CreatedAt.After(*lf.CreatedBefore)
		},
		func(a, b *models.InterestForm) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}), nil
}

func (s *Store) CreateContactMessage(_ context.Context, m *models.ContactMessage) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m.ID = s.nextID()
	cp := *m
	s.contacts[m.ID] = &cp
	return nil
}

func (s *Store) GetContactMessage(_ context.Context, id int64) (models.ContactMessage, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if m, ok := s.contacts[id]; ok {
		return *m, nil
	}
	return models.ContactMessage{}, db.ErrNotFound
}

func (s *Store) UpdateContactMessage(_ context.Context, m *models.ContactMessage) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.contacts[m.ID]
	if !ok {
		return db.ErrNotFound
	}
	old.IsResponded = m.IsResponded
	old.Response = m.Response
	old.RespondedAt = m.RespondedAt
	return nil
}

func (s *Store) ListContactMessages(_ context.Context, responded *bool) ([]models.ContactMessage, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.contacts,
		func(m *models.ContactMessage) bool { return responded == nil || m.IsResponded == *responded },
		func(a, b *models.ContactMessage) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}), nil
}
