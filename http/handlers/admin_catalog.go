package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"risehub/db"
	"risehub/http/response"
	"risehub/models"
	"risehub/services"
	"risehub/utils"
)

// ListCourses lists every course, active or not.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListCourses(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d courses", len(list)), list)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.Catalog.GetCourse(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Course retrieved", c)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var in services.CourseInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.Catalog.CreateCourse(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Course created successfully", c)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.CourseInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.Catalog.UpdateCourse(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Course updated successfully", c)
}

// DeleteCourse removes a course with its syllabus and cohorts.
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Catalog.DeleteCourse(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Course deleted", nil)
}

func (h *Handler) Curriculum(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	weeks, err := h.Catalog.Curriculum(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", weeks)
}

func (h *Handler) AddCurriculumWeek(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.CurriculumInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	week, err := h.Catalog.AddCurriculumWeek(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Curriculum week added", week)
}

// ListCohorts filters by ?course_id= and a comma-separated ?status=.
func (h *Handler) ListCohorts(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "course_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	f := db.CohortFilter{CourseID: courseID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := models.CohortStatus(strings.TrimSpace(s))
			if !status.Valid() {
				response.Error(w, utils.Invalid("status", "invalid status "+string(status)))
				return
			}
			f.Statuses = append(f.Statuses, status)
		}
	}

	list, err := h.Catalog.ListCohorts(r.Context(), f)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, fmt.Sprintf("Retrieved %d cohorts", len(list)), list)
}

func (h *Handler) GetCohort(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.Catalog.GetCohort(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "", c)
}

func (h *Handler) CreateCohort(w http.ResponseWriter, r *http.Request) {
	var in services.CohortInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.Catalog.CreateCohort(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	created(w, "Cohort created successfully", c)
}

func (h *Handler) UpdateCohort(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	var in services.CohortInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}
	c, err := h.Catalog.UpdateCohort(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Cohort updated successfully", c)
}

func (h *Handler) DeleteCohort(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Catalog.DeleteCohort(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	ok(w, "Cohort deleted", nil)
}

// ExportRoster downloads a cohort's students as XLSX.
func (h *Handler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}
	data, err := h.Staff.ExportRoster(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Attachment(w, xlsxContentType, fmt.Sprintf("cohort-%d-roster.xlsx", id), data)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
