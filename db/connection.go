package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDB opens the PostgreSQL pool, checks it and creates missing tables.
func InitDB(ctx context.Context, connStr string) error {
	var err error

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxIdleTime(5 * time.Minute)

	// Test the connection
	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(ctx, DB); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

// tableDDL is ordered so every table is created after the tables it references.
var tableDDL = []struct {
	name string
	ddl  string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"student_profiles", `
	CREATE TABLE IF NOT EXISTS student_profiles (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		phone_number TEXT NOT NULL DEFAULT '',
		date_of_birth DATE,
		address TEXT NOT NULL DEFAULT '',
		emergency_contact_name TEXT NOT NULL DEFAULT '',
		emergency_contact_phone TEXT NOT NULL DEFAULT '',
		tech_skill_level TEXT NOT NULL DEFAULT 'beginner',
		owns_smartphone BOOLEAN NOT NULL DEFAULT FALSE,
		owns_computer BOOLEAN NOT NULL DEFAULT FALSE,
		device_type TEXT NOT NULL DEFAULT '',
		preferred_contact TEXT NOT NULL DEFAULT 'phone',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"courses", `
	CREATE TABLE IF NOT EXISTS courses (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration_weeks INTEGER NOT NULL DEFAULT 6,
		price BIGINT NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL DEFAULT 'GHS',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"week_curriculum", `
	CREATE TABLE IF NOT EXISTS week_curriculum (
		id BIGSERIAL PRIMARY KEY,
		course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		week_number INTEGER NOT NULL CHECK (week_number >= 1),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		topics TEXT NOT NULL DEFAULT '',
		learning_objectives TEXT NOT NULL DEFAULT '',
		materials_url TEXT NOT NULL DEFAULT '',
		UNIQUE (course_id, week_number)
	);`},
	{"cohorts", `
	CREATE TABLE IF NOT EXISTS cohorts (
		id BIGSERIAL PRIMARY KEY,
		course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'planning',
		max_students INTEGER NOT NULL DEFAULT 15 CHECK (max_students >= 0),
		meeting_day TEXT NOT NULL DEFAULT '',
		meeting_time TEXT NOT NULL DEFAULT '',
		zoom_link TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"enrollments", `
	CREATE TABLE IF NOT EXISTS enrollments (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cohort_id BIGINT NOT NULL REFERENCES cohorts(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'interested',
		amount_paid BIGINT NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL DEFAULT '',
		payment_date TIMESTAMPTZ,
		assessment_call_date TIMESTAMPTZ,
		assessment_notes TEXT NOT NULL DEFAULT '',
		attendance_count INTEGER NOT NULL DEFAULT 0,
		assignments_completed INTEGER NOT NULL DEFAULT 0,
		enrolled_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT enrollments_student_cohort_key UNIQUE (student_id, cohort_id)
	);`},
	{"webinars", `
	CREATE TABLE IF NOT EXISTS webinars (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date TIMESTAMPTZ NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 60,
		zoom_link TEXT NOT NULL DEFAULT '',
		registration_limit INTEGER NOT NULL DEFAULT 50 CHECK (registration_limit >= 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"webinar_registrations", `
	CREATE TABLE IF NOT EXISTS webinar_registrations (
		id BIGSERIAL PRIMARY KEY,
		webinar_id BIGINT NOT NULL REFERENCES webinars(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		attended BOOLEAN NOT NULL DEFAULT FALSE,
		enrolled_after BOOLEAN NOT NULL DEFAULT FALSE,
		registered_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT webinar_registrations_webinar_email_key UNIQUE (webinar_id, email)
	);`},
	{"interest_forms", `
	CREATE TABLE IF NOT EXISTS interest_forms (
		id BIGSERIAL PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		age INTEGER CHECK (age >= 1),
		interested_course_id BIGINT REFERENCES courses(id) ON DELETE SET NULL,
		preferred_cohort_id BIGINT REFERENCES cohorts(id) ON DELETE SET NULL,
		how_did_you_hear TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		contacted BOOLEAN NOT NULL DEFAULT FALSE,
		converted_to_enrollment BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"contact_messages", `
	CREATE TABLE IF NOT EXISTS contact_messages (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		is_responded BOOLEAN NOT NULL DEFAULT FALSE,
		response TEXT NOT NULL DEFAULT '',
		responded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"instructor_profiles", `
	CREATE TABLE IF NOT EXISTS instructor_profiles (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		university TEXT NOT NULL DEFAULT '',
		major TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		monthly_rate BIGINT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`},
	{"cohort_instructors", `
	CREATE TABLE IF NOT EXISTS cohort_instructors (
		id BIGSERIAL PRIMARY KEY,
		cohort_id BIGINT NOT NULL REFERENCES cohorts(id) ON DELETE CASCADE,
		instructor_id BIGINT NOT NULL REFERENCES instructor_profiles(id) ON DELETE CASCADE,
		role TEXT NOT NULL DEFAULT 'supporting',
		UNIQUE (cohort_id, instructor_id)
	);`},
	{"assignments", `
	CREATE TABLE IF NOT EXISTS assignments (
		id BIGSERIAL PRIMARY KEY,
		cohort_id BIGINT NOT NULL REFERENCES cohorts(id) ON DELETE CASCADE,
		week_number INTEGER NOT NULL CHECK (week_number >= 1),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quizlet_url TEXT NOT NULL DEFAULT '',
		due_date TIMESTAMPTZ NOT NULL,
		UNIQUE (cohort_id, week_number)
	);`},
	{"assignment_submissions", `
	CREATE TABLE IF NOT EXISTS assignment_submissions (
		id BIGSERIAL PRIMARY KEY,
		assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		score INTEGER CHECK (score BETWEEN 0 AND 100),
		notes TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ,
		graded_at TIMESTAMPTZ,
		UNIQUE (assignment_id, student_id)
	);`},
}

var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_enrollments_cohort_status ON enrollments (cohort_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_cohorts_status_start ON cohorts (status, start_date)`,
	`CREATE INDEX IF NOT EXISTS idx_webinars_active_date ON webinars (is_active, date)`,
	`CREATE INDEX IF NOT EXISTS idx_interest_forms_created ON interest_forms (created_at)`,
}

func createTables(ctx context.Context, conn *sql.DB) error {
	for _, t := range tableDDL {
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("error creating %s table: %w", t.name, err)
		}
	}
	for _, idx := range indexDDL {
		if _, err := conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("error creating index: %w", err)
		}
	}
	return nil
}
