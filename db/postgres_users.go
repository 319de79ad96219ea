package db

import (
	"context"
	"database/sql"

	"risehub/models"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, is_staff, created_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	return u, err
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertUser(ctx context.Context, q queryer, u *models.User) error {
	query := `INSERT INTO users (username, first_name, last_name, email, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsStaff, u.CreatedAt,
	).Scan(&u.ID)
	return mapErr(err)
}

func upsertProfile(ctx context.Context, q queryer, p *models.StudentProfile) error {
	query := `
		INSERT INTO student_profiles (
			user_id, phone_number, date_of_birth, address, emergency_contact_name, emergency_contact_phone,
			tech_skill_level, owns_smartphone, owns_computer, device_type, preferred_contact, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			phone_number = EXCLUDED.phone_number,
			date_of_birth = EXCLUDED.date_of_birth,
			address = EXCLUDED.address,
			emergency_contact_name = EXCLUDED.emergency_contact_name,
			emergency_contact_phone = EXCLUDED.emergency_contact_phone,
			tech_skill_level = EXCLUDED.tech_skill_level,
			owns_smartphone = EXCLUDED.owns_smartphone,
			owns_computer = EXCLUDED.owns_computer,
			device_type = EXCLUDED.device_type,
			preferred_contact = EXCLUDED.preferred_contact,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	err := q.QueryRowContext(ctx, query,
		p.UserID, p.PhoneNumber, p.DateOfBirth, p.Address, p.EmergencyContactName, p.EmergencyContactPhone,
		p.TechSkillLevel, p.OwnsSmartphone, p.OwnsComputer, p.DeviceType, p.PreferredContact, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) CreateStudent(ctx context.Context, u *models.User, p *models.StudentProfile) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		p.UserID = u.ID
		return upsertProfile(ctx, tx, p)
	})
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	return insertUser(ctx, s.db, u)
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr(err)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	return u, mapErr(err)
}

func (s *PostgresStore) GetStudentProfile(ctx context.Context, userID int64) (models.StudentProfile, error) {
	query := `SELECT user_id, phone_number, date_of_birth, address, emergency_contact_name, emergency_contact_phone,
		tech_skill_level, owns_smartphone, owns_computer, device_type, preferred_contact, created_at, updated_at
		FROM student_profiles WHERE user_id = $1`

	var p models.StudentProfile
	var dob sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.PhoneNumber, &dob, &p.Address, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.TechSkillLevel, &p.OwnsSmartphone, &p.OwnsComputer, &p.DeviceType, &p.PreferredContact, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, mapErr(err)
	}
	p.DateOfBirth = timePtr(dob)
	return p, nil
}

func (s *PostgresStore) SaveStudentProfile(ctx context.Context, p *models.StudentProfile) error {
	return upsertProfile(ctx, s.db, p)
}
