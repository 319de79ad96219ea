package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risehub/logger"
	"risehub/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestEnableCORS(t *testing.T) {
	h := EnableCORS([]string{"https://risehub.site"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://risehub.site")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://risehub.site", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/enroll", nil)
	req.Header.Set("Origin", "https://risehub.site")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNewSessionsRequiresKey(t *testing.T) {
	_, err := NewSessions(nil, false, nil)
	assert.Error(t, err)

	s, err := NewSessions([]byte("0123456789abcdef0123456789abcdef"), true, nil)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestRequireStaff(t *testing.T) {
	h := RequireStaff(okHandler)
	tests := []struct {
		name   string
		user   *models.User
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"student", &models.User{ID: 1, Username: "ama"}, http.StatusForbidden},
		{"staff", &models.User{ID: 2, Username: "admin", IsStaff: true}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/courses", nil)
			if tc.user != nil {
				req = WithUser(req, *tc.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetDefault(logger.New(logger.Config{Level: logger.DEBUG, JSON: true, Output: &buf}))
	t.Cleanup(func() { logger.SetDefault(prev) })

	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/interest", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/interest", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
}

func TestCSRFTrustsCORSOriginHosts(t *testing.T) {
	assert.Equal(t, []string{"risehub.site", "admin.risehub.site:8443"},
		originHosts([]string{"https://risehub.site", "https://admin.risehub.site:8443", "not a url"}))

	h := CSRF([]byte("secret"), false, []string{"https://risehub.site"})(okHandler)
	// Trusted or not, an unsafe request without a token is refused.
	for _, origin := range []string{"https://risehub.site", "https://evil.example", ""} {
		req := httptest.NewRequest(http.MethodPost, "/enroll", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, origin)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
