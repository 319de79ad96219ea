package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a site account; staff users can reach the backoffice.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// PasswordCost is the bcrypt cost used for new password hashes.
var PasswordCost = bcrypt.DefaultCost

// SetPassword stores the bcrypt hash of pwd.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword returns nil when pwd matches the stored hash.
func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

const (
	SkillBeginner     = "beginner"
	SkillBasic        = "basic"
	SkillIntermediate = "intermediate"

	ContactPhone    = "phone"
	ContactEmail    = "email"
	ContactWhatsApp = "whatsapp"
)

// StudentProfile extends a user with contact and device details.
type StudentProfile struct {
	UserID                int64      `json:"user_id"`
	PhoneNumber           string     `json:"phone_number"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty"`
	Address               string     `json:"address,omitempty"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty"`
	TechSkillLevel        string     `json:"tech_skill_level"`
	OwnsSmartphone        bool       `json:"owns_smartphone"`
	OwnsComputer          bool       `json:"owns_computer"`
	DeviceType            string     `json:"device_type,omitempty"`
	PreferredContact      string     `json:"preferred_contact"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Complete reports whether the profile has what enrollment requires.
func (p StudentProfile) Complete() bool {
	return strings.TrimSpace(p.PhoneNumber) != ""
}
