package handlers

import (
	"fmt"
	"net/http"

	"risehub/http/response"
	"risehub/models"
	"risehub/services"
	"risehub/utils"
)

type enrollRequest struct {
	CohortID int64 `json:"cohort_id" validate:"required,gt=0"`
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=mobile_money bank_transfer cash"`
}

// paymentPage is what the student sees before stating a payment method.
type paymentPage struct {
	Enrollment models.EnrollmentResponse `json:"enrollment"`
	AmountDue  models.Money              `json:"amount_due"`
	Methods    []string                  `json:"payment_methods"`
}

var paymentMethods = []string{models.PaymentMobileMoney, models.PaymentBankTransfer, models.PaymentCash}

// Dashboard lists the student's enrollments.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	list, err := h.Enrollments.Dashboard(r.Context(), currentUser(r).ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d enrollments", len(list)), list)
}

// Profile returns the signed-in student's profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Accounts.Profile(r.Context(), currentUser(r).ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", p)
}

// UpdateProfile replaces the signed-in student's profile fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	p, err := h.Accounts.UpdateProfile(r.Context(), currentUser(r).ID, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Profile updated successfully!", p)
}

// EnrollmentChoices lists the cohorts open for enrollment.
func (h *Handler) EnrollmentChoices(w http.ResponseWriter, r *http.Request) {
	list, err := h.Enrollments.EnrollmentChoices(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", list)
}

// Enroll takes a seat in a cohort for the signed-in student.
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var in enrollRequest
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	if err := utils.ValidateStruct(in); err != nil {
		response.Error(w, err)
		return
	}

	e, err := h.Enrollments.EnrollStudent(r.Context(), currentUser(r).ID, in.CohortID)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Enrollment successful! Please complete payment.", e)
}

// PaymentPage shows what is due on one of the student's enrollments.
func (h *Handler) PaymentPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	e, err := h.Enrollments.StudentEnrollment(r.Context(), currentUser(r).ID, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	due := e.Price - e.AmountPaid
	if due < 0 {
		due = 0
	}
	ok(w, "", paymentPage{Enrollment: e, AmountDue: due, Methods: paymentMethods})
}

// RecordPayment stores the payment method the student intends to use.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in paymentRequest
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	if err := utils.ValidateStruct(in); err != nil {
		response.Error(w, err)
		return
	}

	ack, err := h.Enrollments.RecordPaymentMethod(r.Context(), currentUser(r).ID, id, in.PaymentMethod)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Payment method recorded. Our team will confirm your payment.", ack)
}

// Receipt downloads the payment acknowledgment PDF.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	pdf, err := h.Enrollments.Receipt(r.Context(), currentUser(r).ID, id, h.Site)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Attachment(w, "application/pdf", fmt.Sprintf("enrollment-%d.pdf", id), pdf)
}

// Materials shows a cohort's syllabus and assignments to its students.
func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	m, err := h.Catalog.Materials(r.Context(), currentUser(r).ID, id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", m)
}
