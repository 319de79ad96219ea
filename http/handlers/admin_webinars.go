package handlers

import (
	"fmt"
	"net/http"

	"risehub/http/response"
	"risehub/services"
)

// ListWebinars lists every webinar with registration counts.
func (h *Handler) ListWebinars(w http.ResponseWriter, r *http.Request) {
	list, err := h.Webinars.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d webinars", len(list)), list)
}

func (h *Handler) GetWebinar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	s, err := h.Webinars.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", s)
}

func (h *Handler) CreateWebinar(w http.ResponseWriter, r *http.Request) {
	var in services.WebinarInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	wb, err := h.Webinars.Create(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Webinar created successfully", wb)
}

func (h *Handler) UpdateWebinar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.WebinarInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	wb, err := h.Webinars.Update(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Webinar updated successfully", wb)
}

func (h *Handler) DeleteWebinar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Webinars.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Webinar deleted", nil)
}

func (h *Handler) WebinarRegistrations(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	regs, err := h.Webinars.Registrations(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d registrations", len(regs)), regs)
}

// UpdateRegistration sets the attended and enrolled-after flags.
func (h *Handler) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.RegistrationUpdate
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	reg, err := h.Webinars.UpdateRegistration(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Registration updated", reg)
}
