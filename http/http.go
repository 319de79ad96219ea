package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"risehub/http/handlers"
	"risehub/http/middleware"
)

// Options carries the browser-facing security settings of the router.
type Options struct {
	CORSOrigins []string
	// CSRFSecret seeds the CSRF token key; the session key is a fine source.
	CSRFSecret []byte
	// Secure marks cookies Secure and enforces the Origin check.
	Secure bool
}

// NewRouter configures all HTTP routes and middleware.
func NewRouter(h *handlers.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.EnableCORS(opts.CORSOrigins))
	r.Use(middleware.CSRF(opts.CSRFSecret, opts.Secure, opts.CORSOrigins))
	r.Use(h.Sessions.LoadUser)

	r.Get("/healthz", h.Healthz)
	r.Get("/csrf", h.CSRFToken)

	// Public pages and forms
	r.Get("/", h.Home)
	r.Get("/courses/{id}", h.CourseDetail)
	r.Get("/webinars", h.UpcomingWebinars)
	r.Post("/webinars/{id}/register", h.RegisterWebinar)
	r.Post("/interest", h.SubmitInterest)
	r.Post("/contact", h.SubmitContact)

	// Accounts
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	// Student area
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/profile", h.Profile)
		r.Put("/profile", h.UpdateProfile)
		r.Get("/enroll", h.EnrollmentChoices)
		r.Post("/enroll", h.Enroll)
		r.Get("/enrollments/{id}/payment", h.PaymentPage)
		r.Post("/enrollments/{id}/payment", h.RecordPayment)
		r.Get("/enrollments/{id}/receipt.pdf", h.Receipt)
		r.Get("/cohorts/{id}/materials", h.Materials)
	})

	r.Mount("/admin", adminRoutes(h))
	return r
}

// adminRoutes is the staff backoffice.
func adminRoutes(h *handlers.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireStaff)

	// Course Management
	r.Get("/courses", h.ListCourses)
	r.Post("/courses", h.CreateCourse)
	r.Get("/courses/{id}", h.GetCourse)
	r.Put("/courses/{id}", h.UpdateCourse)
	r.Delete("/courses/{id}", h.DeleteCourse)
	r.Get("/courses/{id}/curriculum", h.Curriculum)
	r.Post("/courses/{id}/curriculum", h.AddCurriculumWeek)

	// Cohorts
	r.Get("/cohorts", h.ListCohorts)
	r.Post("/cohorts", h.CreateCohort)
	r.Get("/cohorts/{id}", h.GetCohort)
	r.Put("/cohorts/{id}", h.UpdateCohort)
	r.Delete("/cohorts/{id}", h.DeleteCohort)
	r.Get("/cohorts/{id}/roster.xlsx", h.ExportRoster)
	r.Get("/cohorts/{id}/instructors", h.CohortInstructors)
	r.Post("/cohorts/{id}/instructors", h.AddCohortInstructor)
	r.Delete("/cohort-instructors/{id}", h.RemoveCohortInstructor)
	r.Get("/cohorts/{id}/assignments", h.Assignments)
	r.Post("/cohorts/{id}/assignments", h.CreateAssignment)

	// Enrollments
	r.Get("/enrollments", h.ListEnrollments)
	r.Get("/enrollments/{id}", h.GetEnrollment)
	r.Post("/enrollments/{id}/transition", h.TransitionEnrollment)
	r.Post("/enrollments/actions/{action}", h.BatchAction)

	// Webinars
	r.Get("/webinars", h.ListWebinars)
	r.Post("/webinars", h.CreateWebinar)
	r.Get("/webinars/{id}", h.GetWebinar)
	r.Put("/webinars/{id}", h.UpdateWebinar)
	r.Delete("/webinars/{id}", h.DeleteWebinar)
	r.Get("/webinars/{id}/registrations", h.WebinarRegistrations)
	r.Patch("/registrations/{id}", h.UpdateRegistration)

	// Lead Management
	r.Get("/leads", h.GetLeads)
	r.Get("/leads/export.xlsx", h.ExportLeads)
	r.Post("/leads/import", h.UploadLeads)
	r.Post("/leads/{id}/contacted", h.MarkLeadContacted)
	r.Post("/leads/{id}/converted", h.MarkLeadConverted)
	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts/{id}/respond", h.RespondContact)

	// Instructors and grading
	r.Get("/instructors", h.ListInstructors)
	r.Post("/instructors", h.CreateInstructor)
	r.Put("/instructors/{id}", h.UpdateInstructor)
	r.Get("/assignments/{id}", h.GetAssignment)
	r.Put("/assignments/{id}", h.UpdateAssignment)
	r.Delete("/assignments/{id}", h.DeleteAssignment)
	r.Get("/assignments/{id}/submissions", h.Submissions)
	r.Post("/assignments/{id}/submissions", h.CreateSubmission)
	r.Patch("/submissions/{id}", h.GradeSubmission)

	return r
}
