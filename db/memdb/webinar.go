package memdb

import (
	"context"

	"risehub/db"
	"risehub/models"
)

func (s *Store) CreateWebinar(_ context.Context, w *models.Webinar) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	w.ID = s.nextID()
	cp := *w
	s.webinars[w.ID] = &cp
	return nil
}

func (s *Store) UpdateWebinar(_ context.Context, w *models.Webinar) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.webinars[w.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *w
	cp.CreatedAt = old.CreatedAt
	s.webinars[w.ID] = &cp
	return nil
}

func (s *Store) GetWebinar(_ context.Context, id int64) (models.Webinar, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if w, ok := s.webinars[id]; ok {
		return *w, nil
	}
	return models.Webinar{}, db.ErrNotFound
}

func (s *Store) ListWebinars(_ context.Context, f db.WebinarFilter) ([]models.Webinar, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := values(s.webinars,
		func(w *models.Webinar) bool {
			if f.ActiveOnly && !w.IsActive {
				return false
			}
			return f.From == nil || !w.Date.Before(*f.From)
		},
		func(a, b *models.Webinar) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			return a.ID < b.ID
		})
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (s *Store) DeleteWebinar(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.webinars[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.webinars, id)
	for rid, r := range s.registrations {
		if r.WebinarID == id {
			delete(s.regIndex, regKey(r.WebinarID, r.Email))
			delete(s.registrations, rid)
		}
	}
	return nil
}

func (s *Store) countRegistrationsLocked(webinarID int64) int {
	n := 0
	for _, r := range s.registrations {
		if r.WebinarID == webinarID {
			n++
		}
	}
	return n
}

func (s *Store) CountRegistrations(_ context.Context, webinarID int64) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.countRegistrationsLocked(webinarID), nil
}

// WithWebinarLock holds the store's write lock for the whole of fn. fn must
// only touch the store through tx.
func (s *Store) WithWebinarLock(_ context.Context, webinarID int64, fn func(tx db.WebinarTx) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	w, ok := s.webinars[webinarID]
	if !ok {
		return db.ErrNotFound
	}

	tx := &webinarTx{store: s, webinar: *w}
	if err := fn(tx); err != nil {
		for _, id := range tx.inserted {
			r := s.registrations[id]
			delete(s.regIndex, regKey(r.WebinarID, r.Email))
			delete(s.registrations, id)
		}
		return err
	}
	return nil
}

type webinarTx struct {
	store    *Store
	webinar  models.Webinar
	inserted []int64
}

func (t *webinarTx) Webinar() models.Webinar { return t.webinar }

func (t *webinarTx) RegistrationExists(_ context.Context, email string) (bool, error) {
	_, ok := t.store.regIndex[regKey(t.webinar.ID, email)]
	return ok, nil
}

func (t *webinarTx) CountRegistrations(_ context.Context) (int, error) {
	return t.store.countRegistrationsLocked(t.webinar.ID), nil
}

func (t *webinarTx) InsertRegistration(_ context.Context, r *models.WebinarRegistration) error {
	key := regKey(r.WebinarID, r.Email)
	if _, ok := t.store.regIndex[key]; ok {
		return db.ErrConflict
	}
	r.ID = t.store.nextID()
	cp := *r
	t.store.registrations[r.ID] = &cp
	t.store.regIndex[key] = r.ID
	t.inserted = append(t.inserted, r.ID)
	return nil
}

func (s *Store) GetRegistration(_ context.Context, id int64) (models.WebinarRegistration, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if r, ok := s.registrations[id]; ok {
		return *r, nil
	}
	return models.WebinarRegistration{}, db.ErrNotFound
}

func (s *Store) ListRegistrations(_ context.Context, webinarID int64) ([]models.WebinarRegistration, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return values(s.registrations,
		func(r *models.WebinarRegistration) bool { return r.WebinarID == webinarID },
		func(a, b *models.WebinarRegistration) bool {
			if !a.RegisteredAt.Equal(b.RegisteredAt) {
				return a.RegisteredAt.After(b.RegisteredAt)
			}
			return a.ID > b.ID
		}), nil
}

func (s *Store) UpdateRegistration(_ context.Context, r *models.WebinarRegistration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	old, ok := s.registrations[r.ID]
	if !ok {
		return db.ErrNotFound
	}
	old.FullName = r.FullName
	old.Phone = r.Phone
	old.Attended = r.Attended
	old.EnrolledAfter = r.EnrolledAfter
	return nil
}
