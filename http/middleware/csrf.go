package middleware

import (
	"crypto/sha256"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"

	apperrors "risehub/errors"
	"risehub/http/response"
	"risehub/logger"
)

const (
	CSRFCookieName = "risehub-csrf"
	CSRFHeader     = "X-CSRF-Token"
)

var errCSRF = apperrors.NewForbiddenError("Invalid or missing CSRF token. Reload the page and try again.")

// CSRF rejects unsafe requests that do not echo the token handed out by
// CSRFToken in the X-CSRF-Token header. An Origin header, when sent, must be
// this host or one of trustedOrigins; over HTTPS (secure=true) a request
// without Origin needs a matching Referer.
func CSRF(secret []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	key := sha256.Sum256(append([]byte("risehub-csrf:"), secret...))

	sameSite := csrf.SameSiteLaxMode
	if secure {
		sameSite = csrf.SameSiteNoneMode
	}

	protect := csrf.Protect(key[:],
		csrf.CookieName(CSRFCookieName),
		csrf.RequestHeader(CSRFHeader),
		csrf.Path("/"),
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(sameSite),
		csrf.TrustedOrigins(originHosts(trustedOrigins)),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("CSRF check failed for %s %s: %v", r.Method, r.URL.Path, csrf.FailureReason(r))
			response.Error(w, errCSRF)
		})),
	)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// CSRFToken returns the masked token for the current request.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

// originHosts turns "https://app.example" into "app.example".
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
