package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "risehub/errors"
	"risehub/http/middleware"
	"risehub/http/response"
	"risehub/models"
	"risehub/services"
	"risehub/utils"
)

// Handler serves every route. Each field is one service.
type Handler struct {
	Accounts    *services.AccountService
	Catalog     *services.CatalogService
	Enrollments *services.EnrollmentService
	Webinars    *services.WebinarService
	Leads       *services.LeadService
	Staff       *services.StaffService

	Sessions *middleware.Sessions
	Site     services.SiteInfo
}

// idParam parses a positive int64 URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.Invalid(name, "invalid "+name)
	}
	return id, nil
}

// queryID parses an optional positive int64 query parameter; absent means 0.
func queryID(r *http.Request, name string) (int64, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(str, 10, 64)
	if err != nil || id <= 0 {
		return 0, utils.Invalid(name, "invalid "+name)
	}
	return id, nil
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v interface{}) error {
	if err := utils.DecodeJSONRequest(r, v); err != nil {
		return apperrors.E(apperrors.Invalid, err.Error(), err)
	}
	return nil
}

// currentUser returns the signed-in user. Routes using it sit behind
// RequireUser or RequireStaff.
func currentUser(r *http.Request) models.User {
	u, _ := middleware.CurrentUser(r)
	return u
}

func ok(w http.ResponseWriter, message string, data interface{}) {
	response.SuccessResponse(w, http.StatusOK, message, data)
}

func created(w http.ResponseWriter, message string, data interface{}) {
	response.SuccessResponse(w, http.StatusCreated, message, data)
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ok(w, "ok", nil)
}

// CSRFToken hands the client the token to send back in X-CSRF-Token on
// every POST, PUT, PATCH and DELETE.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := middleware.CSRFToken(r)
	w.Header().Set(middleware.CSRFHeader, token)
	ok(w, "", map[string]string{"token": token})
}
