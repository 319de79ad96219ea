package db

import (
	"context"
	"database/sql"

	"risehub/models"
)

const interestColumns = `id, full_name, email, phone_number, age, interested_course_id, preferred_cohort_id,
	how_did_you_hear, message, contacted, converted_to_enrollment, created_at`

func scanInterestForm(row rowScanner) (models.InterestForm, error) {
	var f models.InterestForm
	var age, courseID, cohortID sql.NullInt64

	err := row.Scan(&f.ID, &f.FullName, &f.Email, &f.PhoneNumber, &age, &courseID, &cohortID,
		&f.HowDidYouHear, &f.Message, &f.Contacted, &f.ConvertedToEnrollment, &f.CreatedAt)
	if err != nil {
		return f, err
	}

	f.Age = intPtr(age)
	f.InterestedCourseID = int64Ptr(courseID)
	f.PreferredCohortID = int64Ptr(cohortID)
	return f, nil
}

func (s *PostgresStore) CreateInterestForm(ctx context.Context, f *models.InterestForm) error {
	query := `
		INSERT INTO interest_forms (
			full_name, email, phone_number, age, interested_course_id, preferred_cohort_id,
			how_did_you_hear, message, contacted, converted_to_enrollment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		f.FullName, f.Email, f.PhoneNumber, f.Age, f.InterestedCourseID, f.PreferredCohortID,
		f.HowDidYouHear, f.Message, f.Contacted, f.ConvertedToEnrollment, f.CreatedAt,
	).Scan(&f.ID)
	return mapErr(err)
}

func (s *PostgresStore) GetInterestForm(ctx context.Context, id int64) (models.InterestForm, error) {
	f, err := scanInterestForm(s.db.QueryRowContext(ctx, `SELECT `+interestColumns+` FROM interest_forms WHERE id = $1`, id))
	return f, mapErr(err)
}

func (s *PostgresStore) UpdateInterestForm(ctx context.Context, f *models.InterestForm) error {
	query := `UPDATE interest_forms SET full_name = $1, email = $2, phone_number = $3, age = $4,
		interested_course_id = $5, preferred_cohort_id = $6, how_did_you_hear = $7, message = $8,
		contacted = $9, converted_to_enrollment = $10 WHERE id = $11`
	return mustAffect(s.db.ExecContext(ctx, query,
		f.FullName, f.Email, f.PhoneNumber, f.Age, f.InterestedCourseID, f.PreferredCohortID,
		f.HowDidYouHear, f.Message, f.Contacted, f.ConvertedToEnrollment, f.ID))
}

func (s *PostgresStore) ListInterestForms(ctx context.Context, lf LeadFilter) ([]models.InterestForm, error) {
	var w whereBuilder
	if lf.Contacted != nil {
		w.add("contacted = ?", *lf.Contacted)
	}
	if lf.Converted != nil {
		w.add("converted_to_enrollment = ?", *lf.Converted)
	}
	if lf.CreatedAfter != nil {
		w.add("created_at >= ?", *lf.CreatedAfter)
	}
	if lf.CreatedBefore != nil {
		w.add("created_at <= ?", *lf.CreatedBefore)
	}

	query := `SELECT ` + interestColumns + ` FROM interest_forms` + w.String() + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	forms := []models.InterestForm{}
	for rows.Next() {
		f, err := scanInterestForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

const contactColumns = `id, name, email, phone, subject, message, is_responded, response, responded_at, created_at`

func scanContactMessage(row rowScanner) (models.ContactMessage, error) {
	var m models.ContactMessage
	var respondedAt sql.NullTime

	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message,
		&m.IsResponded, &m.Response, &respondedAt, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.RespondedAt = timePtr(respondedAt)
	return m, nil
}

func (s *PostgresStore) CreateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	query := `INSERT INTO contact_messages (name, email, phone, subject, message, is_responded, response, responded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		m.Name, m.Email, m.Phone, m.Subject, m.Message, m.IsResponded, m.Response, m.RespondedAt, m.CreatedAt,
	).Scan(&m.ID)
	return mapErr(err)
}

func (s *PostgresStore) GetContactMessage(ctx context.Context, id int64) (models.ContactMessage, error) {
	m, err := scanContactMessage(s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id))
	return m, mapErr(err)
}

func (s *PostgresStore) UpdateContactMessage(ctx context.Context, m *models.ContactMessage) error {
	query := `UPDATE contact_messages SET is_responded = $1, response = $2, responded_at = $3 WHERE id = $4`
	return mustAffect(s.db.ExecContext(ctx, query, m.IsResponded, m.Response, m.RespondedAt, m.ID))
}

func (s *PostgresStore) ListContactMessages(ctx context.Context, responded *bool) ([]models.ContactMessage, error) {
	var w whereBuilder
	if responded != nil {
		w.add("is_responded = ?", *responded)
	}

	query := `SELECT ` + contactColumns + ` FROM contact_messages` + w.String() + ` ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
