package services

import (
	"errors"
	"time"

	"risehub/db"
	apperrors "risehub/errors"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// storeErr maps a repository error onto an application error kind.
func storeErr(err error, entity string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return apperrors.E(apperrors.NotFound, entity+" not found", err)
	case errors.Is(err, db.ErrConflict):
		return apperrors.E(apperrors.Conflict, entity+" already exists", err)
	default:
		return apperrors.E(apperrors.Internal, "failed to access "+entity, err)
	}
}

func boolPtr(v bool) *bool { return &v }

func timePtr(t time.Time) *time.Time { return &t }
