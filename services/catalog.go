package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/logger"
	"risehub/models"
	"risehub/utils"
)

const (
	homeCohortLimit  = 3
	homeWebinarLimit = 2
)

// CatalogService serves the public course pages, cohort materials and the
// staff course and cohort bookkeeping.
type CatalogService struct {
	store    db.Store
	webinars *WebinarService
	now      Clock
}

func NewCatalogService(store db.Store, webinars *WebinarService, now Clock) *CatalogService {
	return &CatalogService{store: store, webinars: webinars, now: now}
}

// HomePage is the landing page content.
type HomePage struct {
	Courses  []models.Course         `json:"courses"`
	Cohorts  []models.CohortSummary  `json:"upcoming_cohorts"`
	Webinars []models.WebinarSummary `json:"upcoming_webinars"`
}

// CourseDetail is a course with its syllabus and the cohorts still open.
type CourseDetail struct {
	Course     models.Course           `json:"course"`
	Curriculum []models.WeekCurriculum `json:"curriculum"`
	Cohorts    []models.CohortSummary  `json:"cohorts"`
}

// CohortMaterials is what an enrolled student sees for their cohort.
type CohortMaterials struct {
	Cohort      models.Cohort           `json:"cohort"`
	Course      models.Course           `json:"course"`
	Curriculum  []models.WeekCurriculum `json:"curriculum"`
	Assignments []models.Assignment     `json:"assignments"`
}

func (s *CatalogService) Home(ctx context.Context) (HomePage, error) {
	courses, err := s.store.ListCourses(ctx, true)
	if err != nil {
		return HomePage{}, storeErr(err, "course")
	}

	cohorts, err := s.store.ListCohorts(ctx, db.CohortFilter{Statuses: models.OpenCohortStatuses, Limit: homeCohortLimit})
	if err != nil {
		return HomePage{}, storeErr(err, "cohort")
	}
	cohortSummaries, err := summarizeCohorts(ctx, s.store, cohorts)
	if err != nil {
		return HomePage{}, err
	}

	webinars, err := s.webinars.Upcoming(ctx, homeWebinarLimit)
	if err != nil {
		return HomePage{}, err
	}

	return HomePage{Courses: courses, Cohorts: cohortSummaries, Webinars: webinars}, nil
}

// CourseDetail shows an active course. Inactive courses read as not found.
func (s *CatalogService) CourseDetail(ctx context.Context, courseID int64) (CourseDetail, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return CourseDetail{}, storeErr(err, "course")
	}
	if !course.IsActive {
		return CourseDetail{}, apperrors.NewNotFoundError("course not found")
	}

	weeks, err := s.store.ListCurriculum(ctx, courseID)
	if err != nil {
		return CourseDetail{}, storeErr(err, "curriculum")
	}
	cohorts, err := s.store.ListCohorts(ctx, db.CohortFilter{CourseID: courseID, Statuses: models.OpenCohortStatuses})
	if err != nil {
		return CourseDetail{}, storeErr(err, "cohort")
	}
	summaries, err := summarizeCohorts(ctx, s.store, cohorts)
	if err != nil {
		return CourseDetail{}, err
	}

	return CourseDetail{Course: course, Curriculum: weeks, Cohorts: summaries}, nil
}

// Materials returns the syllabus and assignments of a cohort to a student
// who is enrolled in it or has completed it. Anyone else gets not found.
func (s *CatalogService) Materials(ctx context.Context, studentID, cohortID int64) (CohortMaterials, error) {
	e, err := s.store.FindEnrollment(ctx, studentID, cohortID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return CohortMaterials{}, storeErr(err, "enrollment")
	}
	if err != nil || !e.Status.GrantsMaterials() {
		return CohortMaterials{}, apperrors.NewNotFoundError("cohort not found")
	}

	cohort, err := s.store.GetCohort(ctx, cohortID)
	if err != nil {
		return CohortMaterials{}, storeErr(err, "cohort")
	}
	course, err := s.store.GetCourse(ctx, cohort.CourseID)
	if err != nil {
		return CohortMaterials{}, storeErr(err, "course")
	}
	weeks, err := s.store.ListCurriculum(ctx, course.ID)
	if err != nil {
		return CohortMaterials{}, storeErr(err, "curriculum")
	}
	assignments, err := s.store.ListAssignments(ctx, cohortID)
	if err != nil {
		return CohortMaterials{}, storeErr(err, "assignment")
	}

	return CohortMaterials{Cohort: cohort, Course: course, Curriculum: weeks, Assignments: assignments}, nil
}

// CourseInput is the staff course form.
type CourseInput struct {
	Title         string       `json:"title" validate:"required,notblank,max=200"`
	Description   string       `json:"description"`
	DurationWeeks int          `json:"duration_weeks" validate:"gte=0,lte=104"`
	Price         models.Money `json:"price" validate:"gte=0"`
	Currency      string       `json:"currency" validate:"omitempty,len=3,alpha"`
	IsActive      *bool        `json:"is_active"`
}

func (in CourseInput) apply(c *models.Course) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = utils.SanitizeHTML(in.Description)
	c.DurationWeeks = in.DurationWeeks
	if c.DurationWeeks == 0 {
		c.DurationWeeks = models.DefaultDurationWeeks
	}
	c.Price = in.Price
	c.Currency = strings.ToUpper(in.Currency)
	if c.Currency == "" {
		c.Currency = models.DefaultCurrency
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

// ListCourses is the staff list, inactive courses included.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.store.ListCourses(ctx, false)
	if err != nil {
		return nil, storeErr(err, "course")
	}
	return courses, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id int64) (models.Course, error) {
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return models.Course{}, storeErr(err, "course")
	}
	return c, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, in CourseInput) (models.Course, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Course{}, err
	}
	now := s.now()
	c := models.Course{IsActive: true, CreatedAt: now, UpdatedAt: now}
	in.apply(&c)
	if err := s.store.CreateCourse(ctx, &c); err != nil {
		return models.Course{}, storeErr(err, "course")
	}
	logger.Info("Created course %d (%s)", c.ID, c.Title)
	return c, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id int64, in CourseInput) (models.Course, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Course{}, err
	}
	c, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return models.Course{}, storeErr(err, "course")
	}
	in.apply(&c)
	c.UpdatedAt = s.now()
	if err := s.store.UpdateCourse(ctx, &c); err != nil {
		return models.Course{}, storeErr(err, "course")
	}
	return c, nil
}

// DeleteCourse removes the course with its cohorts and curriculum.
func (s *CatalogService) DeleteCourse(ctx context.Context, id int64) error {
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		return storeErr(err, "course")
	}
	logger.Info("Deleted course %d", id)
	return nil
}

// CurriculumInput is one week of a course syllabus.
type CurriculumInput struct {
	WeekNumber         int    `json:"week_number" validate:"required,gte=1"`
	Title              string `json:"title" validate:"required,notblank,max=200"`
	Description        string `json:"description"`
	Topics             string `json:"topics"`
	LearningObjectives string `json:"learning_objectives"`
	MaterialsURL       string `json:"materials_url" validate:"omitempty,url"`
}

func (s *CatalogService) Curriculum(ctx context.Context, courseID int64) ([]models.WeekCurriculum, error) {
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, storeErr(err, "course")
	}
	weeks, err := s.store.ListCurriculum(ctx, courseID)
	if err != nil {
		return nil, storeErr(err, "curriculum")
	}
	return weeks, nil
}

// AddCurriculumWeek fails with Conflict when the week already exists.
func (s *CatalogService) AddCurriculumWeek(ctx context.Context, courseID int64, in CurriculumInput) (models.WeekCurriculum, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.WeekCurriculum{}, err
	}
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return models.WeekCurriculum{}, storeErr(err, "course")
	}
	w := models.WeekCurriculum{
		CourseID:           courseID,
		WeekNumber:         in.WeekNumber,
		Title:              strings.TrimSpace(in.Title),
		Description:        utils.SanitizeHTML(in.Description),
		Topics:             utils.StripHTML(in.Topics),
		LearningObjectives: utils.StripHTML(in.LearningObjectives),
		MaterialsURL:       strings.TrimSpace(in.MaterialsURL),
	}
	if err := s.store.CreateCurriculumWeek(ctx, &w); err != nil {
		return models.WeekCurriculum{}, storeErr(err, "curriculum week")
	}
	return w, nil
}

// CohortInput is the staff cohort form.
type CohortInput struct {
	CourseID    int64               `json:"course_id" validate:"required,gt=0"`
	Name        string              `json:"name" validate:"required,notblank,max=100"`
	StartDate   time.Time           `json:"start_date" validate:"required"`
	EndDate     time.Time           `json:"end_date" validate:"required,gtefield=StartDate"`
	Status      models.CohortStatus `json:"status" validate:"omitempty,oneof=planning recruiting active completed cancelled"`
	MaxStudents *int                `json:"max_students" validate:"omitempty,gte=0"`
	MeetingDay  string              `json:"meeting_day" validate:"max=20"`
	MeetingTime string              `json:"meeting_time" validate:"max=20"`
	ZoomLink    string              `json:"zoom_link" validate:"omitempty,url"`
}

func (in CohortInput) apply(c *models.Cohort) {
	c.CourseID = in.CourseID
	c.Name = strings.TrimSpace(in.Name)
	c.StartDate = in.StartDate.UTC()
	c.EndDate = in.EndDate.UTC()
	if in.Status != "" {
		c.Status = in.Status
	}
	if in.MaxStudents != nil {
		c.MaxStudents = *in.MaxStudents
	}
	c.MeetingDay = strings.TrimSpace(in.MeetingDay)
	c.MeetingTime = strings.TrimSpace(in.MeetingTime)
	c.ZoomLink = strings.TrimSpace(in.ZoomLink)
}

// ListCohorts is the staff list with live enrollment counts.
func (s *CatalogService) ListCohorts(ctx context.Context, f db.CohortFilter) ([]models.CohortSummary, error) {
	cohorts, err := s.store.ListCohorts(ctx, f)
	if err != nil {
		return nil, storeErr(err, "cohort")
	}
	return summarizeCohorts(ctx, s.store, cohorts)
}

func (s *CatalogService) GetCohort(ctx context.Context, id int64) (models.CohortSummary, error) {
	c, err := s.store.GetCohort(ctx, id)
	if err != nil {
		return models.CohortSummary{}, storeErr(err, "cohort")
	}
	out, err := summarizeCohorts(ctx, s.store, []models.Cohort{c})
	if err != nil {
		return models.CohortSummary{}, err
	}
	return out[0], nil
}

func (s *CatalogService) CreateCohort(ctx context.Context, in CohortInput) (models.Cohort, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Cohort{}, err
	}
	if _, err := s.store.GetCourse(ctx, in.CourseID); err != nil {
		return models.Cohort{}, storeErr(err, "course")
	}
	c := models.Cohort{
		Status:      models.CohortPlanning,
		MaxStudents: models.DefaultMaxStudents,
		CreatedAt:   s.now(),
	}
	in.apply(&c)
	if err := s.store.CreateCohort(ctx, &c); err != nil {
		return models.Cohort{}, storeErr(err, "cohort")
	}
	logger.Info("Created cohort %d (%s) for course %d", c.ID, c.Name, c.CourseID)
	return c, nil
}

// UpdateCohort may lower max_students below the seats already taken; the
// cohort then reports zero spots until enrollments leave.
func (s *CatalogService) UpdateCohort(ctx context.Context, id int64, in CohortInput) (models.Cohort, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return models.Cohort{}, err
	}
	c, err := s.store.GetCohort(ctx, id)
	if err != nil {
		return models.Cohort{}, storeErr(err, "cohort")
	}
	if in.CourseID != c.CourseID {
		if _, err := s.store.GetCourse(ctx, in.CourseID); err != nil {
			return models.Cohort{}, storeErr(err, "course")
		}
	}
	in.apply(&c)
	if err := s.store.UpdateCohort(ctx, &c); err != nil {
		return models.Cohort{}, storeErr(err, "cohort")
	}
	return c, nil
}

// DeleteCohort removes the cohort with its enrollments, assignments and
// instructor assignments.
func (s *CatalogService) DeleteCohort(ctx context.Context, id int64) error {
	if err := s.store.DeleteCohort(ctx, id); err != nil {
		return storeErr(err, "cohort")
	}
	logger.Info("Deleted cohort %d", id)
	return nil
}
