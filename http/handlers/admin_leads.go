package handlers

import (
	"fmt"
	"net/http"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/http/response"
	"risehub/logger"
	"risehub/utils"
)

type respondRequest struct {
	Response string `json:"response" validate:"required,notblank,max=5000"`
}

// leadFilter reads ?contacted=, ?converted=, ?created_after= and ?created_before=.
func leadFilter(r *http.Request) (db.LeadFilter, error) {
	var f db.LeadFilter
	var err error
	if f.Contacted, err = utils.ParseBoolParam(r, "contacted"); err != nil {
		return f, utils.Invalid("contacted", err.Error())
	}
	if f.Converted, err = utils.ParseBoolParam(r, "converted"); err != nil {
		return f, utils.Invalid("converted", err.Error())
	}
	times, err := utils.ParseTimeFilters(r)
	if err != nil {
		return f, apperrors.E(apperrors.Invalid, err.Error(), err)
	}
	f.CreatedAfter = times.CreatedAfter
	f.CreatedBefore = times.CreatedBefore
	return f, nil
}

// GetLeads lists interest form leads, newest first.
func (h *Handler) GetLeads(w http.ResponseWriter, r *http.Request) {
	f, err := leadFilter(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	leads, err := h.Leads.ListLeads(r.Context(), f)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d leads", len(leads)), leads)
}

// ExportLeads downloads the filtered leads as XLSX.
func (h *Handler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	f, err := leadFilter(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	data, err := h.Leads.ExportLeads(r.Context(), f)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Attachment(w, xlsxContentType, "leads.xlsx", data)
}

// UploadLeads imports leads from an XLSX file in the "file" form field.
func (h *Handler) UploadLeads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, utils.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Debug("Error getting form file: %v", err)
		response.Error(w, utils.Invalid("file", "Invalid file"))
		return
	}
	defer file.Close()

	logger.Info("Processing lead upload: %s", header.Filename)

	result, err := h.Leads.ImportLeads(r.Context(), file)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Successfully uploaded %d leads", result.Imported), result)
}

func (h *Handler) MarkLeadContacted(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	lead, err := h.Leads.MarkContacted(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Lead marked as contacted", lead)
}

func (h *Handler) MarkLeadConverted(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	lead, err := h.Leads.MarkConverted(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Lead marked as converted", lead)
}

// ListContacts lists contact messages; ?responded= narrows them.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	responded, err := utils.ParseBoolParam(r, "responded")
	if err != nil {
		response.Error(w, utils.Invalid("responded", err.Error()))
		return
	}
	msgs, err := h.Leads.ListContacts(r.Context(), responded)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d messages", len(msgs)), msgs)
}

// RespondContact records a reply and mails it to the sender.
func (h *Handler) RespondContact(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in respondRequest
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	if err := utils.ValidateStruct(in); err != nil {
		response.Error(w, err)
		return
	}
	msg, err := h.Leads.MarkResponded(r.Context(), id, in.Response)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Response sent", msg)
}
