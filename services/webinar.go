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

// WebinarService runs the webinar registration gate and the staff webinar pages.
type WebinarService struct {
	store  db.Store
	notify *Notifier
	events *EventBus
	now    Clock
}

func NewWebinarService(store db.Store, notify *Notifier, events *EventBus, now Clock) *WebinarService {
	return &WebinarService{store: store, notify: notify, events: events, now: now}
}

// RegistrationInput is the public webinar sign-up form.
type RegistrationInput struct {
	FullName string `json:"full_name" validate:"required,notblank,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

// WebinarInput is the staff create/update form.
type WebinarInput struct {
	Title             string    `json:"title" validate:"required,notblank,max=200"`
	Description       string    `json:"description"`
	Date              time.Time `json:"date" validate:"required"`
	DurationMinutes   int       `json:"duration_minutes" validate:"gte=0"`
	ZoomLink          string    `json:"zoom_link" validate:"omitempty,url"`
	RegistrationLimit *int      `json:"registration_limit" validate:"omitempty,gte=0"`
	IsActive          *bool     `json:"is_active"`
}

// RegistrationUpdate carries the staff follow-up flags on a registration.
type RegistrationUpdate struct {
	Attended      *bool `json:"attended"`
	EnrolledAfter *bool `json:"enrolled_after"`
}

// Register signs an email up for a webinar.
//
// The email is trimmed and lowercased, so addresses differing only in case
// count as the same registrant. An inactive webinar reads as not found.
// It fails with ErrAlreadyRegistered before ErrWebinarFull.
func (s *WebinarService) Register(ctx context.Context, webinarID int64, in RegistrationInput) (models.WebinarRegistration, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if err := utils.ValidateStruct(in); err != nil {
		return models.WebinarRegistration{}, err
	}

	var (
		reg     models.WebinarRegistration
		webinar models.Webinar
	)
	err := s.store.WithWebinarLock(ctx, webinarID, func(tx db.WebinarTx) error {
		webinar = tx.Webinar()
		if !webinar.IsActive {
			return apperrors.NewNotFoundError("webinar not found")
		}

		exists, err := tx.RegistrationExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrAlreadyRegistered
		}

		registered, err := tx.CountRegistrations(ctx)
		if err != nil {
			return err
		}
		if models.SpotsRemaining(webinar.RegistrationLimit, registered) <= 0 {
			return apperrors.ErrWebinarFull
		}

		reg = models.WebinarRegistration{
			WebinarID:    webinarID,
			FullName:     in.FullName,
			Email:        in.Email,
			Phone:        in.Phone,
			RegisteredAt: s.now(),
		}
		return tx.InsertRegistration(ctx, &reg)
	})

	switch {
	case err == nil:
	case errors.Is(err, db.ErrConflict):
		return models.WebinarRegistration{}, apperrors.ErrAlreadyRegistered
	case errors.Is(err, db.ErrNotFound):
		return models.WebinarRegistration{}, storeErr(err, "webinar")
	case apperrors.KindOf(err) != apperrors.Other:
		return models.WebinarRegistration{}, err
	default:
		return models.WebinarRegistration{}, apperrors.E(apperrors.Internal, "failed to register", err)
	}

	logger.Info("Registered %s for webinar %d", reg.Email, webinarID)
	s.events.Emit(EventWebinarRegistered, entityKey("webinar", webinarID), map[string]interface{}{
		"registration_id": reg.ID,
		"webinar_id":      webinarID,
		"email":           reg.Email,
	})
	s.notify.WebinarRegistered(reg, webinar)
	return reg, nil
}

// SpotsRemaining recomputes the webinar's free seats from live registrations.
func (s *WebinarService) SpotsRemaining(ctx context.Context, webinarID int64) (int, error) {
	w, err := s.store.GetWebinar(ctx, webinarID)
	if err != nil {
		return 0, storeErr(err, "webinar")
	}
	registered, err := s.store.CountRegistrations(ctx, webinarID)
	if err != nil {
		return 0, storeErr(err, "registration")
	}
	return models.SpotsRemaining(w.RegistrationLimit, registered), nil
}

// Upcoming lists active webinars that have not started yet, soonest first.
// limit <= 0 means all of them.
func (s *WebinarService) Upcoming(ctx context.Context, limit int) ([]models.WebinarSummary, error) {
	now := s.now()
	webinars, err := s.store.ListWebinars(ctx, db.WebinarFilter{ActiveOnly: true, From: &now, Limit: limit})
	if err != nil {
		return nil, storeErr(err, "webinar")
	}
	return s.summarize(ctx, webinars)
}

// List is the staff webinar list, including inactive and past ones.
func (s *WebinarService) List(ctx context.Context) ([]models.WebinarSummary, error) {
	webinars, err := s.store.ListWebinars(ctx, db.WebinarFilter{})
	if err != nil {
		return nil, storeErr(err, "webinar")
	}
	return s.summarize(ctx, webinars)
}

func (s *WebinarService) Get(ctx context.Context, id int64) (models.WebinarSummary, error) {
	w, err := s.store.GetWebinar(ctx, id)
	if err != nil {
		return models.WebinarSummary{}, storeErr(err, "webinar")
	}
	out, err := s.summarize(ctx, []models.Webinar{w})
	if err != nil {
		return models.WebinarSummary{}, err
	}
	return out[0], nil
}

func (s *WebinarService) summarize(ctx context.Context, webinars []models.Webinar) ([]models.WebinarSummary, error) {
	out := make([]models.WebinarSummary, 0, len(webinars))
	for _, w := range webinars {
		registered, err := s.store.CountRegistrations(ctx, w.ID)
		if err != nil {
			return nil, storeErr(err, "registration")
		}
		out = append(out, w.Summarize(registered))
	}
	return out, nil
}

func (in WebinarInput) apply(w *models.Webinar) {
	w.Title = strings.TrimSpace(in.Title)
	w.Description = utils.SanitizeHTML(in.Description)
	w.Date = in.Date.UTC()
	w.DurationMinutes = in.DurationMinutes
	if w.DurationMinutes == 0 {
		w.DurationMinutes = models.DefaultWebinarMinutes
	}
	w.ZoomLink = strings.TrimSpace(in.ZoomLink)
	if in.RegistrationLimit != nil {
		w.RegistrationLimit = *in.RegistrationLimit
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
}

func (s *WebinarService) Create(ctx context.Context, in WebinarInput) (models.Webinar, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Webinar{}, err
	}
	w := models.Webinar{
		RegistrationLimit: models.DefaultRegistrationLimit,
		IsActive:          true,
		CreatedAt:         s.now(),
	}
	in.apply(&w)
	if err := s.store.CreateWebinar(ctx, &w); err != nil {
		return models.Webinar{}, storeErr(err, "webinar")
	}
	logger.Info("Created webinar %d (%s)", w.ID, w.Title)
	return w, nil
}

func (s *WebinarService) Update(ctx context.Context, id int64, in WebinarInput) (models.Webinar, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Webinar{}, err
	}
	w, err := s.store.GetWebinar(ctx, id)
	if err != nil {
		return models.Webinar{}, storeErr(err, "webinar")
	}
	in.apply(&w)
	if err := s.store.UpdateWebinar(ctx, &w); err != nil {
		return models.Webinar{}, storeErr(err, "webinar")
	}
	return w, nil
}

// Delete removes the webinar and its registrations.
func (s *WebinarService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteWebinar(ctx, id); err != nil {
		return storeErr(err, "webinar")
	}
	logger.Info("Deleted webinar %d", id)
	return nil
}

// Registrations lists a webinar's registrants, newest first.
func (s *WebinarService) Registrations(ctx context.Context, webinarID int64) ([]models.WebinarRegistration, error) {
	if _, err := s.store.GetWebinar(ctx, webinarID); err != nil {
		return nil, storeErr(err, "webinar")
	}
	regs, err := s.store.ListRegistrations(ctx, webinarID)
	if err != nil {
		return nil, storeErr(err, "registration")
	}
	return regs, nil
}

// UpdateRegistration sets the attended and enrolled-after flags.
func (s *WebinarService) UpdateRegistration(ctx context.Context, id int64, in RegistrationUpdate) (models.WebinarRegistration, error) {
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return models.WebinarRegistration{}, storeErr(err, "registration")
	}
	if in.Attended != nil {
		reg.Attended = *in.Attended
	}
	if in.EnrolledAfter != nil {
		reg.EnrolledAfter = *in.EnrolledAfter
	}
	if err := s.store.UpdateRegistration(ctx, &reg); err != nil {
		return models.WebinarRegistration{}, storeErr(err, "registration")
	}
	return reg, nil
}
