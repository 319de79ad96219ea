package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"risehub/db"
	"risehub/http/response"
	"risehub/models"
	"risehub/services"
	"risehub/utils"
)

// batchRequest applies one action to many enrollments.
type batchRequest struct {
	IDs []int64 `json:"ids"`
	services.TransitionRequest
}

// batchResult reports how a batch action went, enrollment by enrollment.
type batchResult struct {
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
	Outcomes  []services.TransitionOutcome `json:"outcomes"`
}

// ListEnrollments filters by ?cohort_id=, ?student_id= and a
// comma-separated ?status=.
func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	var f db.EnrollmentFilter
	var err error
	if f.CohortID, err = queryID(r, "cohort_id"); err != nil {
		response.Error(w, err)
		return
	}
	if f.StudentID, err = queryID(r, "student_id"); err != nil {
		response.Error(w, err)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.EnrollmentStatus(strings.TrimSpace(s))
			if !status.Valid() {
				response.Error(w, utils.Invalid("status", "invalid status "+string(status)))
				return
			}
			f.Statuses = append(f.Statuses, status)
		}
	}

	list, err := h.Enrollments.ListEnrollments(r.Context(), f)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d enrollments", len(list)), list)
}

func (h *Handler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	e, err := h.Enrollments.GetEnrollment(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", e)
}

// TransitionEnrollment applies one action to one enrollment.
func (h *Handler) TransitionEnrollment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.TransitionRequest
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}

	e, err := h.Enrollments.Transition(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Enrollment %d is now %s", e.ID, e.Status), e)
}

// BatchAction applies the {action} in the path to every id in the body.
// One enrollment failing does not stop the rest.
func (h *Handler) BatchAction(w http.ResponseWriter, r *http.Request) {
	var in batchRequest
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	in.Action = services.Action(chi.URLParam(r, "action"))
	if !in.Action.Valid() {
		response.Error(w, utils.Invalid("action", "unknown action "+string(in.Action)))
		return
	}
	if len(in.IDs) == 0 {
		response.Error(w, utils.Invalid("ids", "ids must list at least one enrollment"))
		return
	}

	outcomes := h.Enrollments.TransitionBatch(r.Context(), in.IDs, in.TransitionRequest)
	res := batchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	ok(w, fmt.Sprintf("%d updated, %d failed", res.Succeeded, res.Failed), res)
}
