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

// AccountService handles sign-up, sign-in and student profiles.
type AccountService struct {
	store db.Store
	now   Clock
}

func NewAccountService(store db.Store, now Clock) *AccountService {
	return &AccountService{store: store, now: now}
}

// RegisterInput is the student sign-up form.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=150,alphanum"`
	FirstName       string `json:"first_name" validate:"required,notblank,max=150"`
	LastName        string `json:"last_name" validate:"required,notblank,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// ProfileInput is the student profile form.
type ProfileInput struct {
	PhoneNumber           string     `json:"phone_number" validate:"required,phone"`
	DateOfBirth           *time.Time `json:"date_of_birth"`
	Address               string     `json:"address" validate:"max=500"`
	EmergencyContactName  string     `json:"emergency_contact_name" validate:"max=200"`
	EmergencyContactPhone string     `json:"emergency_contact_phone" validate:"omitempty,phone"`
	TechSkillLevel        string     `json:"tech_skill_level" validate:"omitempty,oneof=beginner basic intermediate"`
	OwnsSmartphone        bool       `json:"owns_smartphone"`
	OwnsComputer          bool       `json:"owns_computer"`
	DeviceType            string     `json:"device_type" validate:"max=100"`
	PreferredContact      string     `json:"preferred_contact" validate:"omitempty,oneof=phone email whatsapp"`
}

var errBadCredentials = apperrors.NewUnauthorizedError("Invalid username or password.")

// Register creates a student account together with its profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := utils.ValidateStruct(in); err != nil {
		return models.User{}, err
	}

	now := s.now()
	user := models.User{
		Username:  in.Username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		CreatedAt: now,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return models.User{}, apperrors.E(apperrors.Internal, "failed to hash password", err)
	}

	profile := newProfile(now)
	profile.PhoneNumber = in.PhoneNumber

	if err := s.store.CreateStudent(ctx, &user, &profile); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return models.User{}, apperrors.E(apperrors.Conflict, "That username or email is already taken.", err)
		}
		return models.User{}, storeErr(err, "user")
	}

	logger.Info("Registered student %d (%s)", user.ID, user.Username)
	return user, nil
}

// CreateStaff creates a backoffice account without a student profile.
func (s *AccountService) CreateStaff(ctx context.Context, username, email, password string) (models.User, error) {
	user := models.User{
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		IsStaff:   true,
		CreatedAt: s.now(),
	}
	if user.Username == "" {
		return models.User{}, utils.Invalid("username", "username is required")
	}
	if user.Email == "" {
		return models.User{}, utils.Invalid("email", "email is required")
	}
	if len(password) < 8 {
		return models.User{}, utils.Invalid("password", "password must be at least 8 characters in length")
	}
	if err := user.SetPassword(password); err != nil {
		return models.User{}, apperrors.E(apperrors.Internal, "failed to hash password", err)
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return models.User{}, apperrors.E(apperrors.Conflict, "That username or email is already taken.", err)
		}
		return models.User{}, storeErr(err, "user")
	}
	logger.Info("Created staff user %d (%s)", user.ID, user.Username)
	return user, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, errBadCredentials
	}
	if err != nil {
		return models.User{}, storeErr(err, "user")
	}
	if err := user.CheckPassword(password); err != nil {
		logger.Debug("Failed sign-in for %s", user.Username)
		return models.User{}, errBadCredentials
	}
	return user, nil
}

// User loads an account by id.
func (s *AccountService) User(ctx context.Context, id int64) (models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, "user")
	}
	return u, nil
}

// Profile returns the student's profile, creating an empty one on first use.
func (s *AccountService) Profile(ctx context.Context, userID int64) (models.StudentProfile, error) {
	p, err := s.store.GetStudentProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.StudentProfile{}, storeErr(err, "profile")
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return models.StudentProfile{}, storeErr(err, "user")
	}

	p = newProfile(s.now())
	p.UserID = userID
	if err := s.store.SaveStudentProfile(ctx, &p); err != nil {
		return models.StudentProfile{}, storeErr(err, "profile")
	}
	return p, nil
}

// UpdateProfile replaces the editable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (models.StudentProfile, error) {
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.EmergencyContactPhone = strings.TrimSpace(in.EmergencyContactPhone)
	if err := utils.ValidateStruct(in); err != nil {
		return models.StudentProfile{}, err
	}

	p, err := s.Profile(ctx, userID)
	if err != nil {
		return models.StudentProfile{}, err
	}

	p.PhoneNumber = in.PhoneNumber
	p.DateOfBirth = in.DateOfBirth
	p.Address = utils.StripHTML(in.Address)
	p.EmergencyContactName = strings.TrimSpace(in.EmergencyContactName)
	p.EmergencyContactPhone = in.EmergencyContactPhone
	if in.TechSkillLevel != "" {
		p.TechSkillLevel = in.TechSkillLevel
	}
	p.OwnsSmartphone = in.OwnsSmartphone
	p.OwnsComputer = in.OwnsComputer
	p.DeviceType = strings.TrimSpace(in.DeviceType)
	if in.PreferredContact != "" {
		p.PreferredContact = in.PreferredContact
	}
	p.UpdatedAt = s.now()

	if err := s.store.SaveStudentProfile(ctx, &p); err != nil {
		return models.StudentProfile{}, storeErr(err, "profile")
	}
	return p, nil
}

func newProfile(now time.Time) models.StudentProfile {
	return models.StudentProfile{
		TechSkillLevel:   models.SkillBeginner,
		PreferredContact: models.ContactPhone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
