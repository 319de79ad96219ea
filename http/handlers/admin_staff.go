package handlers

import (
	"fmt"
	"net/http"

	"risehub/http/response"
	"risehub/services"
)

func (h *Handler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	list, err := h.Staff.ListInstructors(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d instructors", len(list)), list)
}

func (h *Handler) CreateInstructor(w http.ResponseWriter, r *http.Request) {
	var in services.InstructorInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	i, err := h.Staff.CreateInstructor(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Instructor created", i)
}

func (h *Handler) UpdateInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.InstructorInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	i, err := h.Staff.UpdateInstructor(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Instructor updated", i)
}

func (h *Handler) CohortInstructors(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	list, err := h.Staff.CohortInstructors(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", list)
}

func (h *Handler) AddCohortInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.CohortInstructorInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	ci, err := h.Staff.AddCohortInstructor(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Instructor assigned", ci)
}

func (h *Handler) RemoveCohortInstructor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Staff.RemoveCohortInstructor(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Instructor removed", nil)
}

func (h *Handler) Assignments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	list, err := h.Staff.Assignments(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", list)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.AssignmentInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.Staff.CreateAssignment(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Assignment created", a)
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.Staff.GetAssignment(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", a)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.AssignmentInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.Staff.UpdateAssignment(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Assignment updated", a)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Staff.DeleteAssignment(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Assignment deleted", nil)
}

func (h *Handler) Submissions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	list, err := h.Staff.Submissions(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", list)
}

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.SubmissionInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	s, err := h.Staff.CreateSubmission(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Submission recorded", s)
}

// GradeSubmission updates completion, score and notes of a submission.
func (h *Handler) GradeSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.GradeInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	s, err := h.Staff.GradeSubmission(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Submission updated", s)
}
