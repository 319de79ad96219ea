package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/logger"
	"risehub/models"
	"risehub/utils"
)

// LeadService captures interest forms and contact messages and serves the
// staff lead triage pages.
type LeadService struct {
	store  db.Store
	notify *Notifier
	events *EventBus
	now    Clock
}

func NewLeadService(store db.Store, notify *Notifier, events *EventBus, now Clock) *LeadService {
	return &LeadService{store: store, notify: notify, events: events, now: now}
}

// InterestInput is the public interest form.
type InterestInput struct {
	FullName           string `json:"full_name" validate:"required,notblank,max=200"`
	Email              string `json:"email" validate:"required,email,max=254"`
	PhoneNumber        string `json:"phone_number" validate:"required,phone"`
	Age                *int   `json:"age" validate:"omitempty,gte=1,lte=120"`
	InterestedCourseID int64  `json:"interested_course_id" validate:"required,gt=0"`
	PreferredCohortID  *int64 `json:"preferred_cohort_id" validate:"omitempty,gt=0"`
	HowDidYouHear      string `json:"how_did_you_hear" validate:"omitempty,oneof=webinar social_media flyer radio referral other"`
	Message            string `json:"message" validate:"max=2000"`
}

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject" validate:"required,notblank,max=200"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

// ImportResult reports what a lead sheet upload did.
type ImportResult struct {
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Failed   []ImportRowFailure `json:"failed,omitempty"`
}

// ImportRowFailure is a sheet row that could not be imported.
type ImportRowFailure struct {
	Row   int    `json:"row,omitempty"`
	Email string `json:"email"`
	Error string `json:"error"`
}

// SubmitInterest records a lead. The course must exist, and a preferred
// cohort, when given, must belong to that course.
func (s *LeadService) SubmitInterest(ctx context.Context, in InterestInput) (models.InterestForm, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := utils.ValidateStruct(in); err != nil {
		return models.InterestForm{}, err
	}

	course, err := s.store.GetCourse(ctx, in.InterestedCourseID)
	if errors.Is(err, db.ErrNotFound) {
		return models.InterestForm{}, utils.Invalid("interested_course_id", "interested_course_id must be an existing course")
	}
	if err != nil {
		return models.InterestForm{}, storeErr(err, "course")
	}

	if in.PreferredCohortID != nil {
		cohort, err := s.store.GetCohort(ctx, *in.PreferredCohortID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return models.InterestForm{}, storeErr(err, "cohort")
		}
		if err != nil || cohort.CourseID != course.ID {
			return models.InterestForm{}, utils.Invalid("preferred_cohort_id", "preferred_cohort_id must be a cohort of the selected course")
		}
	}

	courseID := course.ID
	form := models.InterestForm{
		FullName:           in.FullName,
		Email:              in.Email,
		PhoneNumber:        in.PhoneNumber,
		Age:                in.Age,
		InterestedCourseID: &courseID,
		PreferredCohortID:  in.PreferredCohortID,
		HowDidYouHear:      in.HowDidYouHear,
		Message:            utils.StripHTML(in.Message),
		CreatedAt:          s.now(),
	}
	if err := s.store.CreateInterestForm(ctx, &form); err != nil {
		return models.InterestForm{}, storeErr(err, "interest form")
	}

	logger.Info("New interest form %d from %s for course %d", form.ID, form.Email, courseID)
	s.events.Emit(EventLeadCreated, entityKey("lead", form.ID), map[string]interface{}{
		"lead_id":   form.ID,
		"email":     form.Email,
		"course_id": courseID,
	})
	s.notify.InterestReceived(form, course.Title)
	return form, nil
}

// SubmitContact records a contact message with markup stripped from the
// subject and body.
func (s *LeadService) SubmitContact(ctx context.Context, in ContactInput) (models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = utils.StripHTML(in.Subject)
	in.Message = utils.StripHTML(in.Message)
	if err := utils.ValidateStruct(in); err != nil {
		return models.ContactMessage{}, err
	}

	msg := models.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateContactMessage(ctx, &msg); err != nil {
		return models.ContactMessage{}, storeErr(err, "contact message")
	}

	logger.Info("New contact message %d from %s", msg.ID, msg.Email)
	s.notify.ContactReceived(msg)
	return msg, nil
}

// ListLeads returns leads newest first with course and cohort names.
func (s *LeadService) ListLeads(ctx context.Context, f db.LeadFilter) ([]models.LeadResponse, error) {
	forms, err := s.store.ListInterestForms(ctx, f)
	if err != nil {
		return nil, storeErr(err, "interest form")
	}
	courseTitles, cohortNames, err := s.lookups(ctx)
	if err != nil {
		return nil, err
	}
	return utils.ConvertLeadsToResponse(forms, courseTitles, cohortNames), nil
}

func (s *LeadService) lookups(ctx context.Context) (map[int64]string, map[int64]string, error) {
	courses, err := s.store.ListCourses(ctx, false)
	if err != nil {
		return nil, nil, storeErr(err, "course")
	}
	cohorts, err := s.store.ListCohorts(ctx, db.CohortFilter{})
	if err != nil {
		return nil, nil, storeErr(err, "cohort")
	}

	courseTitles := make(map[int64]string, len(courses))
	for _, c := range courses {
		courseTitles[c.ID] = c.Title
	}
	cohortNames := make(map[int64]string, len(cohorts))
	for _, c := range cohorts {
		cohortNames[c.ID] = c.Name
	}
	return courseTitles, cohortNames, nil
}

// MarkContacted flags a lead as reached by staff.
func (s *LeadService) MarkContacted(ctx context.Context, id int64) (models.InterestForm, error) {
	return s.updateLead(ctx, id, func(f *models.InterestForm) { f.Contacted = true })
}

// MarkConverted flags a lead as having become an enrollment.
func (s *LeadService) MarkConverted(ctx context.Context, id int64) (models.InterestForm, error) {
	return s.updateLead(ctx, id, func(f *models.InterestForm) { f.ConvertedToEnrollment = true })
}

func (s *LeadService) updateLead(ctx context.Context, id int64, mutate func(*models.InterestForm)) (models.InterestForm, error) {
	form, err := s.store.GetInterestForm(ctx, id)
	if err != nil {
		return models.InterestForm{}, storeErr(err, "interest form")
	}
	mutate(&form)
	if err := s.store.UpdateInterestForm(ctx, &form); err != nil {
		return models.InterestForm{}, storeErr(err, "interest form")
	}
	return form, nil
}

// ListContacts returns contact messages newest first. responded nil means all.
func (s *LeadService) ListContacts(ctx context.Context, responded *bool) ([]models.ContactMessage, error) {
	msgs, err := s.store.ListContactMessages(ctx, responded)
	if err != nil {
		return nil, storeErr(err, "contact message")
	}
	return msgs, nil
}

// MarkResponded closes a contact message. A non-empty response is stored
// and mailed to the sender.
func (s *LeadService) MarkResponded(ctx context.Context, id int64, response string) (models.ContactMessage, error) {
	msg, err := s.store.GetContactMessage(ctx, id)
	if err != nil {
		return models.ContactMessage{}, storeErr(err, "contact message")
	}

	msg.IsResponded = true
	msg.RespondedAt = timePtr(s.now())
	if response = strings.TrimSpace(response); response != "" {
		msg.Response = utils.StripHTML(response)
	}
	if err := s.store.UpdateContactMessage(ctx, &msg); err != nil {
		return models.ContactMessage{}, storeErr(err, "contact message")
	}

	s.notify.ContactResponded(msg)
	return msg, nil
}

// ExportLeads renders the filtered leads as an XLSX workbook.
func (s *LeadService) ExportLeads(ctx context.Context, f db.LeadFilter) ([]byte, error) {
	leads, err := s.ListLeads(ctx, f)
	if err != nil {
		return nil, err
	}
	out, err := WriteLeadSheet(leads)
	if err != nil {
		return nil, apperrors.E(apperrors.Internal, "failed to export leads", err)
	}
	logger.Info("Exported %d leads", len(leads))
	return out, nil
}

// ImportLeads loads leads from an XLSX sheet. Rows repeating an email and
// phone pair, within the sheet or already on file, are skipped. Invalid rows
// are reported and do not stop the rest.
func (s *LeadService) ImportLeads(ctx context.Context, r io.Reader) (ImportResult, error) {
	rows, err := ParseLeadSheet(r)
	if err != nil {
		return ImportResult{}, apperrors.E(apperrors.Invalid, "Error parsing Excel: "+err.Error(), err)
	}

	courses, err := s.store.ListCourses(ctx, false)
	if err != nil {
		return ImportResult{}, storeErr(err, "course")
	}
	courseByTitle := make(map[string]int64, len(courses))
	for _, c := range courses {
		courseByTitle[strings.ToLower(c.Title)] = c.ID
	}

	existing, err := s.store.ListInterestForms(ctx, db.LeadFilter{})
	if err != nil {
		return ImportResult{}, storeErr(err, "interest form")
	}

	var (
		result ImportResult
		forms  []models.InterestForm
	)
	for _, row := range rows {
		form, err := s.leadFromRow(row, courseByTitle)
		if err != nil {
			result.Failed = append(result.Failed, ImportRowFailure{Row: row.Row, Email: row.Email, Error: err.Error()})
			continue
		}
		forms = append(forms, form)
	}

	// existing leads go first so the dedupe keeps them and drops the new copy
	combined := append(append([]models.InterestForm{}, existing...), forms...)
	unique := utils.DeduplicateInterestForms(combined)
	result.Skipped = len(combined) - len(unique)

	for i := range unique {
		if unique[i].ID != 0 {
			continue
		}
		form := unique[i]
		if err := s.store.CreateInterestForm(ctx, &form); err != nil {
			result.Failed = append(result.Failed, ImportRowFailure{Email: form.Email, Error: apperrors.MessageOf(storeErr(err, "interest form"))})
			continue
		}
		result.Imported++
	}

	logger.Info("Lead import completed: %d imported, %d skipped, %d failed", result.Imported, result.Skipped, len(result.Failed))
	return result, nil
}

func (s *LeadService) leadFromRow(row LeadRow, courseByTitle map[string]int64) (models.InterestForm, error) {
	if row.FullName == "" {
		return models.InterestForm{}, fmt.Errorf("name is required")
	}
	if err := utils.ValidateEmail(row.Email); err != nil {
		return models.InterestForm{}, err
	}
	if err := utils.ValidatePhone(row.PhoneNumber); err != nil {
		return models.InterestForm{}, err
	}

	form := models.InterestForm{
		FullName:      row.FullName,
		Email:         row.Email,
		PhoneNumber:   row.PhoneNumber,
		HowDidYouHear: strings.ToLower(row.HowDidYouHear),
		Message:       utils.StripHTML(row.Message),
		CreatedAt:     s.now(),
	}
	switch form.HowDidYouHear {
	case "", models.HeardWebinar, models.HeardSocialMedia, models.HeardFlyer, models.HeardRadio, models.HeardReferral, models.HeardOther:
	default:
		form.HowDidYouHear = models.HeardOther
	}

	if row.Age != "" {
		age, err := strconv.Atoi(row.Age)
		if err != nil || age < 1 {
			return models.InterestForm{}, fmt.Errorf("invalid age %q", row.Age)
		}
		form.Age = &age
	}
	if row.CourseTitle != "" {
		id, ok := courseByTitle[strings.ToLower(row.CourseTitle)]
		if !ok {
			return models.InterestForm{}, fmt.Errorf("unknown course %q", row.CourseTitle)
		}
		form.InterestedCourseID = &id
	}
	return form, nil
}
