package db

import (
	"context"
	"database/sql"

	"risehub/models"
)

const courseColumns = `id, title, description, duration_weeks, price, currency, is_active, created_at, updated_at`

func scanCourse(row rowScanner) (models.Course, error) {
	var c models.Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.DurationWeeks, &c.Price, &c.Currency, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *PostgresStore) CreateCourse(ctx context.Context, c *models.Course) error {
	query := `INSERT INTO courses (title, description, duration_weeks, price, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		c.Title, c.Description, c.DurationWeeks, c.Price, c.Currency, c.IsActive, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return mapErr(err)
}

func (s *PostgresStore) UpdateCourse(ctx context.Context, c *models.Course) error {
	query := `UPDATE courses SET title = $1, description = $2, duration_weeks = $3, price = $4,
		currency = $5, is_active = $6, updated_at = $7 WHERE id = $8`
	return mustAffect(s.db.ExecContext(ctx, query,
		c.Title, c.Description, c.DurationWeeks, c.Price, c.Currency, c.IsActive, c.UpdatedAt, c.ID))
}

func (s *PostgresStore) GetCourse(ctx context.Context, id int64) (models.Course, error) {
	c, err := scanCourse(s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	return c, mapErr(err)
}

func (s *PostgresStore) ListCourses(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *PostgresStore) DeleteCourse(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id))
}

func (s *PostgresStore) CreateCurriculumWeek(ctx context.Context, w *models.WeekCurriculum) error {
	query := `INSERT INTO week_curriculum (course_id, week_number, title, description, topics, learning_objectives, materials_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		w.CourseID, w.WeekNumber, w.Title, w.Description, w.Topics, w.LearningObjectives, w.MaterialsURL,
	).Scan(&w.ID)
	return mapErr(err)
}

func (s *PostgresStore) ListCurriculum(ctx context.Context, courseID int64) ([]models.WeekCurriculum, error) {
	query := `SELECT id, course_id, week_number, title, description, topics, learning_objectives, materials_url
		FROM week_curriculum WHERE course_id = $1 ORDER BY week_number ASC`
	rows, err := s.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	weeks := []models.WeekCurriculum{}
	for rows.Next() {
		var w models.WeekCurriculum
		if err := rows.Scan(&w.ID, &w.CourseID, &w.WeekNumber, &w.Title, &w.Description, &w.Topics, &w.LearningObjectives, &w.MaterialsURL); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

const cohortColumns = `id, course_id, name, start_date, end_date, status, max_students, meeting_day, meeting_time, zoom_link, created_at`

func scanCohort(row rowScanner) (models.Cohort, error) {
	var c models.Cohort
	err := row.Scan(&c.ID, &c.CourseID, &c.Name, &c.StartDate, &c.EndDate, &c.Status, &c.MaxStudents,
		&c.MeetingDay, &c.MeetingTime, &c.ZoomLink, &c.CreatedAt)
	return c, err
}

func (s *PostgresStore) CreateCohort(ctx context.Context, c *models.Cohort) error {
	query := `INSERT INTO cohorts (course_id, name, start_date, end_date, status, max_students, meeting_day, meeting_time, zoom_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		c.CourseID, c.Name, c.StartDate, c.EndDate, c.Status, c.MaxStudents, c.MeetingDay, c.MeetingTime, c.ZoomLink, c.CreatedAt,
	).Scan(&c.ID)
	return mapErr(err)
}

func (s *PostgresStore) UpdateCohort(ctx context.Context, c *models.Cohort) error {
	query := `UPDATE cohorts SET course_id = $1, name = $2, start_date = $3, end_date = $4, status = $5,
		max_students = $6, meeting_day = $7, meeting_time = $8, zoom_link = $9 WHERE id = $10`
	return mustAffect(s.db.ExecContext(ctx, query,
		c.CourseID, c.Name, c.StartDate, c.EndDate, c.Status, c.MaxStudents, c.MeetingDay, c.MeetingTime, c.ZoomLink, c.ID))
}

func (s *PostgresStore) GetCohort(ctx context.Context, id int64) (models.Cohort, error) {
	c, err := scanCohort(s.db.QueryRowContext(ctx, `SELECT `+cohortColumns+` FROM cohorts WHERE id = $1`, id))
	return c, mapErr(err)
}

func (s *PostgresStore) ListCohorts(ctx context.Context, f CohortFilter) ([]models.Cohort, error) {
	var w whereBuilder
	if f.CourseID != 0 {
		w.add("course_id = ?", f.CourseID)
	}
	statuses := make([]interface{}, len(f.Statuses))
	for i, st := range f.Statuses {
		statuses[i] = string(st)
	}
	w.in("status", statuses)

	query := `SELECT ` + cohortColumns + ` FROM cohorts` + w.String() + ` ORDER BY start_date ASC, id ASC`
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

	cohorts := []models.Cohort{}
	for rows.Next() {
		c, err := scanCohort(rows)
		if err != nil {
			return nil, err
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, rows.Err()
}

func (s *PostgresStore) DeleteCohort(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM cohorts WHERE id = $1`, id))
}

const countSeatHolders = `SELECT COUNT(*) FROM enrollments WHERE cohort_id = $1 AND status IN ('pending', 'enrolled')`

func (s *PostgresStore) CountSeatHolders(ctx context.Context, cohortID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, countSeatHolders, cohortID).Scan(&n)
	return n, mapErr(err)
}

// WithCohortLock takes a row lock on the cohort with SELECT ... FOR UPDATE.
// Concurrent enrollments into the same cohort queue on that lock, so the
// capacity count each one sees includes every seat committed before it.
func (s *PostgresStore) WithCohortLock(ctx context.Context, cohortID int64, fn func(tx CohortTx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := scanCohort(tx.QueryRowContext(ctx, `SELECT `+cohortColumns+` FROM cohorts WHERE id = $1 FOR UPDATE`, cohortID))
		if err != nil {
			return mapErr(err)
		}
		return fn(&pgCohortTx{tx: tx, cohort: c})
	})
}

type pgCohortTx struct {
	tx     *sql.Tx
	cohort models.Cohort
}

func (t *pgCohortTx) Cohort() models.Cohort { return t.cohort }

func (t *pgCohortTx) EnrollmentExists(ctx context.Context, studentID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND cohort_id = $2)`,
		studentID, t.cohort.ID).Scan(&exists)
	return exists, mapErr(err)
}

func (t *pgCohortTx) CountSeatHolders(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, countSeatHolders, t.cohort.ID).Scan(&n)
	return n, mapErr(err)
}

func (t *pgCohortTx) InsertEnrollment(ctx context.Context, e *models.Enrollment) error {
	return insertEnrollment(ctx, t.tx, e)
}
