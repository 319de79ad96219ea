package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	apperrors "risehub/errors"
	"risehub/http/response"
	"risehub/logger"
	"risehub/models"
)

const (
	SessionName = "risehub-session"

	userIDKey = "user_id"
)

// UserLoader resolves the signed-in user id stored in the session cookie.
type UserLoader interface {
	User(ctx context.Context, id int64) (models.User, error)
}

// Sessions keeps the signed-in user in a cookie session.
type Sessions struct {
	store sessions.Store
	users UserLoader
}

// NewSessions builds a cookie session store. In production (secure=true)
// cookies are Secure and SameSite=None; locally over plain http use
// secure=false so the browser accepts them.
func NewSessions(key []byte, secure bool, users UserLoader) (*Sessions, error) {
	if len(key) == 0 {
		return nil, errors.New("session key is empty; set SESSION_KEY to 32+ random characters")
	}
	if len(key) < 32 {
		logger.Warn("Session key is short (%d chars); 32+ recommended", len(key))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 14,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	return &Sessions{store: store, users: users}, nil
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user put in the request context by LoadUser.
func CurrentUser(r *http.Request) (models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(models.User)
	return u, ok
}

// WithUser returns a copy of r carrying u as the current user.
func WithUser(r *http.Request, u models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadUser injects the signed-in user into the request context. A session
// pointing at a user that no longer exists is treated as signed out.
func (s *Sessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := s.store.Get(r, SessionName)

		if id, ok := sess.Values[userIDKey].(int64); ok && id > 0 {
			u, err := s.users.User(r.Context(), id)
			switch {
			case err == nil:
				r = WithUser(r, u)
			case apperrors.KindOf(err) != apperrors.NotFound:
				logger.Warn("Failed to load session user %d: %v", id, err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn stores u in the session cookie.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, u models.User) error {
	sess, _ := s.store.Get(r, SessionName)
	sess.Values[userIDKey] = u.ID
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, SessionName)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

var (
	errSignInRequired = apperrors.NewUnauthorizedError("Please sign in to continue.")
	errStaffOnly      = apperrors.NewForbiddenError("Staff access required.")
)

// RequireUser rejects requests without a signed-in user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			response.Error(w, errSignInRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff rejects anonymous requests with 401 and non-staff users with 403.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			response.Error(w, errSignInRequired)
			return
		}
		if !u.IsStaff {
			response.Error(w, errStaffOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}
