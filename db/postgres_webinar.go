package db

import (
	"context"
	"database/sql"

	"risehub/models"
)

const webinarColumns = `id, title, description, date, duration_minutes, zoom_link, registration_limit, is_active, created_at`

func scanWebinar(row rowScanner) (models.Webinar, error) {
	var w models.Webinar
	err := row.Scan(&w.ID, &w.Title, &w.Description, &w.Date, &w.DurationMinutes, &w.ZoomLink,
		&w.RegistrationLimit, &w.IsActive, &w.CreatedAt)
	return w, err
}

func (s *PostgresStore) CreateWebinar(ctx context.Context, w *models.Webinar) error {
	query := `INSERT INTO webinars (title, description, date, duration_minutes, zoom_link, registration_limit, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		w.Title, w.Description, w.Date, w.DurationMinutes, w.ZoomLink, w.RegistrationLimit, w.IsActive, w.CreatedAt,
	).Scan(&w.ID)
	return mapErr(err)
}

func (s *PostgresStore) UpdateWebinar(ctx context.Context, w *models.Webinar) error {
	query := `UPDATE webinars SET title = $1, description = $2, date = $3, duration_minutes = $4,
		zoom_link = $5, registration_limit = $6, is_active = $7 WHERE id = $8`
	return mustAffect(s.db.ExecContext(ctx, query,
		w.Title, w.Description, w.Date, w.DurationMinutes, w.ZoomLink, w.RegistrationLimit, w.IsActive, w.ID))
}

func (s *PostgresStore) GetWebinar(ctx context.Context, id int64) (models.Webinar, error) {
	w, err := scanWebinar(s.db.QueryRowContext(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE id = $1`, id))
	return w, mapErr(err)
}

func (s *PostgresStore) ListWebinars(ctx context.Context, f WebinarFilter) ([]models.Webinar, error) {
	var w whereBuilder
	if f.ActiveOnly {
		w.add("is_active = ?", true)
	}
	if f.From != nil {
		w.add("date >= ?", *f.From)
	}

	query := `SELECT ` + webinarColumns + ` FROM webinars` + w.String() + ` ORDER BY date ASC, id ASC`
	args := w.args
	if f.Limit > 0 {
		query += ` LIMIT ` + w.next()
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	webinars := []models.Webinar{}
	for rows.Next() {
		wb, err := scanWebinar(rows)
		if err != nil {
			return nil, err
		}
		webinars = append(webinars, wb)
	}
	return webinars, rows.Err()
}

func (s *PostgresStore) DeleteWebinar(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM webinars WHERE id = $1`, id))
}

const countRegistrations = `SELECT COUNT(*) FROM webinar_registrations WHERE webinar_id = $1`

func (s *PostgresStore) CountRegistrations(ctx context.Context, webinarID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, countRegistrations, webinarID).Scan(&n)
	return n, mapErr(err)
}

// WithWebinarLock serializes registrations for one webinar on its row lock.
func (s *PostgresStore) WithWebinarLock(ctx context.Context, webinarID int64, fn func(tx WebinarTx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		w, err := scanWebinar(tx.QueryRowContext(ctx, `SELECT `+webinarColumns+` FROM webinars WHERE id = $1 FOR UPDATE`, webinarID))
		if err != nil {
			return mapErr(err)
		}
		return fn(&pgWebinarTx{tx: tx, webinar: w})
	})
}

type pgWebinarTx struct {
	tx      *sql.Tx
	webinar models.Webinar
}

func (t *pgWebinarTx) Webinar() models.Webinar { return t.webinar }

func (t *pgWebinarTx) RegistrationExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM webinar_registrations WHERE webinar_id = $1 AND email = $2)`,
		t.webinar.ID, email).Scan(&exists)
	return exists, mapErr(err)
}

func (t *pgWebinarTx) CountRegistrations(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, countRegistrations, t.webinar.ID).Scan(&n)
	return n, mapErr(err)
}

func (t *pgWebinarTx) InsertRegistration(ctx context.Context, r *models.WebinarRegistration) error {
	query := `INSERT INTO webinar_registrations (webinar_id, full_name, email, phone, attended, enrolled_after, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := t.tx.QueryRowContext(ctx, query,
		r.WebinarID, r.FullName, r.Email, r.Phone, r.Attended, r.EnrolledAfter, r.RegisteredAt,
	).Scan(&r.ID)
	return mapErr(err)
}

const registrationColumns = `id, webinar_id, full_name, email, phone, attended, enrolled_after, registered_at`

func scanRegistration(row rowScanner) (models.WebinarRegistration, error) {
	var r models.WebinarRegistration
	err := row.Scan(&r.ID, &r.WebinarID, &r.FullName, &r.Email, &r.Phone, &r.Attended, &r.EnrolledAfter, &r.RegisteredAt)
	return r, err
}

func (s *PostgresStore) GetRegistration(ctx context.Context, id int64) (models.WebinarRegistration, error) {
	r, err := scanRegistration(s.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM webinar_registrations WHERE id = $1`, id))
	return r, mapErr(err)
}

func (s *PostgresStore) ListRegistrations(ctx context.Context, webinarID int64) ([]models.WebinarRegistration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM webinar_registrations WHERE webinar_id = $1 ORDER BY registered_at DESC, id DESC`,
		webinarID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	regs := []models.WebinarRegistration{}
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func (s *PostgresStore) UpdateRegistration(ctx context.Context, r *models.WebinarRegistration) error {
	query := `UPDATE webinar_registrations SET full_name = $1, phone = $2, attended = $3, enrolled_after = $4 WHERE id = $5`
	return mustAffect(s.db.ExecContext(ctx, query, r.FullName, r.Phone, r.Attended, r.EnrolledAfter, r.ID))
}
