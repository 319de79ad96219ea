package errors

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Error is an application error carrying a Kind and a message safe to show users.
type Error struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	WrappedErr error  `json:"wrapped_err,omitempty"`
}

// Error renders e as JSON.
func (e *Error) Error() string {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(e)
	return buf.String()
}

func (e *Error) Unwrap() error {
	return e.WrappedErr
}

// Kind classifies an Error independently of any transport.
type Kind uint8

const (
	Other Kind = iota
	Internal
	// Conflict covers duplicate entities and exhausted capacity.
	Conflict
	Invalid
	NotFound
	Unauthorized
	Forbidden
	// PreconditionFailed means a prior step, such as the profile, is missing.
	PreconditionFailed
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "unclassified error"
	case Internal:
		return "internal error"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid input"
	case NotFound:
		return "entity not found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case PreconditionFailed:
		return "precondition failed"
	default:
		return "unknown error kind"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// E builds an *Error from any mix of Kind, message string and wrapped error.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.WrappedErr = arg
		case string:
			e.Message = arg
		}
	}
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == Other && e.WrappedErr != nil {
			return KindOf(e.WrappedErr)
		}
		return e.Kind
	}
	return Other
}

// MessageOf returns the user-facing message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ""
}

func NewNotFoundError(msg string) error {
	return E(NotFound, msg)
}

func NewUnauthorizedError(msg string) error {
	return E(Unauthorized, msg)
}

func NewForbiddenError(msg string) error {
	return E(Forbidden, msg)
}

// Rejections returned by the enrollment and registration gates. They are
// compared by identity, so callers use Is(err, ErrCohortFull) and so on.
var (
	ErrDuplicateEnrollment = E(Conflict, "You are already enrolled in this cohort.")
	ErrCohortFull          = E(Conflict, "Sorry, this cohort is full. Please select another start date.")
	ErrCohortClosed        = E(Conflict, "This cohort is not open for enrollment.")
	ErrAlreadyRegistered   = E(Conflict, "You are already registered for this webinar. Check your email for the Zoom link.")
	ErrWebinarFull         = E(Conflict, "Sorry, this webinar is fully booked. Please check for other upcoming webinars.")
	ErrProfileIncomplete   = E(PreconditionFailed, "Please complete your profile before enrolling.")
	ErrInvalidTransition   = E(Conflict, "This enrollment cannot move to the requested status.")
)

var (
	As = errors.As
	Is = errors.Is
)
