package db

import (
	"context"
	"database/sql"

	"risehub/models"
)

const instructorColumns = `id, user_id, role, university, major, bio, monthly_rate, is_active, joined_at`

func scanInstructor(row rowScanner) (models.InstructorProfile, error) {
	var i models.InstructorProfile
	err := row.Scan(&i.ID, &i.UserID, &i.Role, &i.University, &i.Major, &i.Bio, &i.MonthlyRate, &i.IsActive, &i.JoinedAt)
	return i, err
}

func (s *PostgresStore) CreateInstructor(ctx context.Context, i *models.InstructorProfile) error {
	query := `INSERT INTO instructor_profiles (user_id, role, university, major, bio, monthly_rate, is_active, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		i.UserID, i.Role, i.University, i.Major, i.Bio, i.MonthlyRate, i.IsActive, i.JoinedAt,
	).Scan(&i.ID)
	return mapErr(err)
}

func (s *PostgresStore) UpdateInstructor(ctx context.Context, i *models.InstructorProfile) error {
	query := `UPDATE instructor_profiles SET role = $1, university = $2, major = $3, bio = $4,
		monthly_rate = $5, is_active = $6 WHERE id = $7`
	return mustAffect(s.db.ExecContext(ctx, query, i.Role, i.University, i.Major, i.Bio, i.MonthlyRate, i.IsActive, i.ID))
}

func (s *PostgresStore) GetInstructor(ctx context.Context, id int64) (models.InstructorProfile, error) {
	i, err := scanInstructor(s.db.QueryRowContext(ctx, `SELECT `+instructorColumns+` FROM instructor_profiles WHERE id = $1`, id))
	return i, mapErr(err)
}

func (s *PostgresStore) ListInstructors(ctx context.Context) ([]models.InstructorProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+instructorColumns+` FROM instructor_profiles ORDER BY joined_at ASC, id ASC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	list := []models.InstructorProfile{}
	for rows.Next() {
		i, err := scanInstructor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

func (s *PostgresStore) AddCohortInstructor(ctx context.Context, ci *models.CohortInstructor) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO cohort_instructors (cohort_id, instructor_id, role) VALUES ($1, $2, $3) RETURNING id`,
		ci.CohortID, ci.InstructorID, ci.Role,
	).Scan(&ci.ID)
	return mapErr(err)
}

func (s *PostgresStore) ListCohortInstructors(ctx context.Context, cohortID int64) ([]models.CohortInstructor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, cohort_id, instructor_id, role FROM cohort_instructors WHERE cohort_id = $1 ORDER BY id ASC`, cohortID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	list := []models.CohortInstructor{}
	for rows.Next() {
		var ci models.CohortInstructor
		if err := rows.Scan(&ci.ID, &ci.CohortID, &ci.InstructorID, &ci.Role); err != nil {
			return nil, err
		}
		list = append(list, ci)
	}
	return list, rows.Err()
}

func (s *PostgresStore) RemoveCohortInstructor(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM cohort_instructors WHERE id = $1`, id))
}

const assignmentColumns = `id, cohort_id, week_number, title, description, quizlet_url, due_date`

func scanAssignment(row rowScanner) (models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.CohortID, &a.WeekNumber, &a.Title, &a.Description, &a.QuizletURL, &a.DueDate)
	return a, err
}

func (s *PostgresStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	query := `INSERT INTO assignments (cohort_id, week_number, title, description, quizlet_url, due_date)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		a.CohortID, a.WeekNumber, a.Title, a.Description, a.QuizletURL, a.DueDate,
	).Scan(&a.ID)
	return mapErr(err)
}

func (s *PostgresStore) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	query := `UPDATE assignments SET week_number = $1, title = $2, description = $3, quizlet_url = $4, due_date = $5 WHERE id = $6`
	return mustAffect(s.db.ExecContext(ctx, query, a.WeekNumber, a.Title, a.Description, a.QuizletURL, a.DueDate, a.ID))
}

func (s *PostgresStore) GetAssignment(ctx context.Context, id int64) (models.Assignment, error) {
	a, err := scanAssignment(s.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id))
	return a, mapErr(err)
}

func (s *PostgresStore) ListAssignments(ctx context.Context, cohortID int64) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE cohort_id = $1 ORDER BY week_number ASC`, cohortID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	list := []models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (s *PostgresStore) DeleteAssignment(ctx context.Context, id int64) error {
	return mustAffect(s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id))
}

const submissionColumns = `id, assignment_id, student_id, completed, score, notes, submitted_at, graded_at`

func scanSubmission(row rowScanner) (models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	var score sql.NullInt64
	var submittedAt, gradedAt sql.NullTime

	if err := row.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.Completed, &score, &sub.Notes, &submittedAt, &gradedAt); err != nil {
		return sub, err
	}
	sub.Score = intPtr(score)
	sub.SubmittedAt = timePtr(submittedAt)
	sub.GradedAt = timePtr(gradedAt)
	return sub, nil
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *models.AssignmentSubmission) error {
	query := `INSERT INTO assignment_submissions (assignment_id, student_id, completed, score, notes, submitted_at, graded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		sub.AssignmentID, sub.StudentID, sub.Completed, sub.Score, sub.Notes, sub.SubmittedAt, sub.GradedAt,
	).Scan(&sub.ID)
	return mapErr(err)
}

func (s *PostgresStore) UpdateSubmission(ctx context.Context, sub *models.AssignmentSubmission) error {
	query := `UPDATE assignment_submissions SET completed = $1, score = $2, notes = $3, submitted_at = $4, graded_at = $5 WHERE id = $6`
	return mustAffect(s.db.ExecContext(ctx, query, sub.Completed, sub.Score, sub.Notes, sub.SubmittedAt, sub.GradedAt, sub.ID))
}

func (s *PostgresStore) GetSubmission(ctx context.Context, id int64) (models.AssignmentSubmission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM assignment_submissions WHERE id = $1`, id))
	return sub, mapErr(err)
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM assignment_submissions WHERE assignment_id = $1 ORDER BY id ASC`, assignmentID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	list := []models.AssignmentSubmission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}
