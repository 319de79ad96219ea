package db

import (
	"context"
	"database/sql"
	"time"

	"risehub/models"
)

const enrollmentColumns = `id, student_id, cohort_id, status, amount_paid, payment_method, payment_date,
	assessment_call_date, assessment_notes, attendance_count, assignments_completed, enrolled_at, updated_at`

// scanEnrollment reads a single enrollment row from query results
func scanEnrollment(row rowScanner) (models.Enrollment, error) {
	var e models.Enrollment
	var paymentDate, assessmentDate sql.NullTime

	err := row.Scan(
		&e.ID, &e.StudentID, &e.CohortID, &e.Status, &e.AmountPaid, &e.PaymentMethod, &paymentDate,
		&assessmentDate, &e.AssessmentNotes, &e.AttendanceCount, &e.AssignmentsCompleted, &e.EnrolledAt, &e.UpdatedAt,
	)
	if err != nil {
		return e, err
	}

	e.PaymentDate = timePtr(paymentDate)
	e.AssessmentCallDate = timePtr(assessmentDate)
	return e, nil
}

func insertEnrollment(ctx context.Context, tx *sql.Tx, e *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			student_id, cohort_id, status, amount_paid, payment_method, payment_date,
			assessment_call_date, assessment_notes, attendance_count, assignments_completed,
			enrolled_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := tx.QueryRowContext(ctx, query,
		e.StudentID, e.CohortID, e.Status, e.AmountPaid, e.PaymentMethod, e.PaymentDate,
		e.AssessmentCallDate, e.AssessmentNotes, e.AttendanceCount, e.AssignmentsCompleted,
		e.EnrolledAt, e.UpdatedAt,
	).Scan(&e.ID)
	return mapErr(err)
}

func (s *PostgresStore) GetEnrollment(ctx context.Context, id int64) (models.Enrollment, error) {
	e, err := scanEnrollment(s.db.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id))
	return e, mapErr(err)
}

func (s *PostgresStore) FindEnrollment(ctx context.Context, studentID, cohortID int64) (models.Enrollment, error) {
	e, err := scanEnrollment(s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 AND cohort_id = $2`, studentID, cohortID))
	return e, mapErr(err)
}

func (s *PostgresStore) ListEnrollments(ctx context.Context, f EnrollmentFilter) ([]models.Enrollment, error) {
	var w whereBuilder
	if f.StudentID != 0 {
		w.add("student_id = ?", f.StudentID)
	}
	if f.CohortID != 0 {
		w.add("cohort_id = ?", f.CohortID)
	}
	statuses := make([]interface{}, len(f.Statuses))
	for i, st := range f.Statuses {
		statuses[i] = string(st)
	}
	w.in("status", statuses)

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments` + w.String() + ` ORDER BY enrolled_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

const updateEnrollment = `UPDATE enrollments SET status = $1, amount_paid = $2, payment_method = $3, payment_date = $4,
	assessment_call_date = $5, assessment_notes = $6, attendance_count = $7, assignments_completed = $8,
	updated_at = $9 WHERE id = $10`

func updateEnrollmentArgs(e *models.Enrollment) []interface{} {
	return []interface{}{
		e.Status, e.AmountPaid, e.PaymentMethod, e.PaymentDate,
		e.AssessmentCallDate, e.AssessmentNotes, e.AttendanceCount, e.AssignmentsCompleted,
		e.UpdatedAt, e.ID,
	}
}

func (s *PostgresStore) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	return mustAffect(s.db.ExecContext(ctx, updateEnrollment, updateEnrollmentArgs(e)...))
}

// UpdateEnrollmentLocked holds SELECT ... FOR UPDATE on the enrollment row
// until the rewritten row commits.
func (s *PostgresStore) UpdateEnrollmentLocked(ctx context.Context, id int64, fn func(e *models.Enrollment) error) (models.Enrollment, error) {
	var e models.Enrollment
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		e, err = scanEnrollment(tx.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr(err)
		}
		if err := fn(&e); err != nil {
			return err
		}
		return mustAffect(tx.ExecContext(ctx, updateEnrollment, updateEnrollmentArgs(&e)...))
	})
	if err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

func (s *PostgresStore) SetPaymentMethod(ctx context.Context, id, studentID int64, method string, at time.Time) (models.Enrollment, error) {
	query := `UPDATE enrollments SET payment_method = $1, updated_at = $2
		WHERE id = $3 AND student_id = $4 AND status NOT IN ('completed', 'dropped', 'cancelled')
		RETURNING ` + enrollmentColumns
	e, err := scanEnrollment(s.db.QueryRowContext(ctx, query, method, at, id, studentID))
	if err != nil {
		return models.Enrollment{}, mapErr(err)
	}
	return e, nil
}
