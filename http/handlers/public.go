package handlers

import (
	"fmt"
	"net/http"

	"risehub/http/response"
	"risehub/services"
)

// Home lists active courses, the next open cohorts and upcoming webinars.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.Catalog.Home(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", page)
}

// CourseDetail shows one active course with its syllabus and open cohorts.
func (h *Handler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	detail, err := h.Catalog.CourseDetail(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", detail)
}

// UpcomingWebinars lists upcoming active webinars.
func (h *Handler) UpcomingWebinars(w http.ResponseWriter, r *http.Request) {
	list, err := h.Webinars.Upcoming(r.Context(), 0)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d webinars", len(list)), list)
}

// RegisterWebinar signs a visitor up for a webinar.
func (h *Handler) RegisterWebinar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.RegistrationInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}

	reg, err := h.Webinars.Register(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Registration successful! Check your email for the Zoom link.", reg)
}

// SubmitInterest records an interest form lead.
func (h *Handler) SubmitInterest(w http.ResponseWriter, r *http.Request) {
	var in services.InterestInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	form, err := h.Leads.SubmitInterest(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Thank you! We will contact you within 24 hours.", form)
}

// SubmitContact records a contact form message.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in services.ContactInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	msg, err := h.Leads.SubmitContact(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Thank you for your message. We will respond soon.", msg)
}
