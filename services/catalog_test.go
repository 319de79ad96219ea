package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/models"
)

func TestHomeLimitsCohortsAndWebinars(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := f.course(t, "Digital Literacy 101", 50000)
	hidden := f.course(t, "Retired", 0)
	hidden.IsActive = false
	require.NoError(t, f.store.UpdateCourse(ctx, &hidden))

	var open []models.Cohort
	for i := 0; i < 4; i++ {
		open = append(open, f.cohort(t, course.ID, 15, models.CohortRecruiting))
	}
	f.cohort(t, course.ID, 15, models.CohortActive)

	f.webinar(t, 50, fixedNow.Add(-time.Hour), true)
	first := f.webinar(t, 50, fixedNow.Add(time.Hour), true)
	second := f.webinar(t, 50, fixedNow.Add(2*time.Hour), true)
	f.webinar(t, 50, fixedNow.Add(3*time.Hour), true)

	home, err := f.catalog.Home(ctx)
	require.NoError(t, err)

	require.Len(t, home.Courses, 1)
	assert.Equal(t, course.ID, home.Courses[0].ID)

	require.Len(t, home.Cohorts, 3)
	for i, c := range home.Cohorts {
		assert.Equal(t, open[i].ID, c.ID)
		assert.Equal(t, 15, c.SpotsRemaining)
		assert.Equal(t, "Digital Literacy 101", c.CourseTitle)
	}

	require.Len(t, home.Webinars, 2)
	assert.Equal(t, first.ID, home.Webinars[0].ID)
	assert.Equal(t, second.ID, home.Webinars[1].ID)
}

func TestCourseDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Digital Literacy 101", 50000)
	f.cohort(t, course.ID, 15, models.CohortPlanning)
	f.cohort(t, course.ID, 15, models.CohortCompleted)

	_, err := f.catalog.AddCurriculumWeek(ctx, course.ID, CurriculumInput{WeekNumber: 2, Title: "Email", Topics: "Sign up\nSend\n"})
	require.NoError(t, err)
	_, err = f.catalog.AddCurriculumWeek(ctx, course.ID, CurriculumInput{WeekNumber: 1, Title: "Phones"})
	require.NoError(t, err)
	_, err = f.catalog.AddCurriculumWeek(ctx, course.ID, CurriculumInput{WeekNumber: 1, Title: "Again"})
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))

	detail, err := f.catalog.CourseDetail(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Curriculum, 2)
	assert.Equal(t, 1, detail.Curriculum[0].WeekNumber)
	assert.Equal(t, []string{"Sign up", "Send"}, detail.Curriculum[1].TopicList())
	assert.Len(t, detail.Cohorts, 1)

	course.IsActive = false
	require.NoError(t, f.store.UpdateCourse(ctx, &course))
	_, err = f.catalog.CourseDetail(ctx, course.ID)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestMaterialsRequireEnrolledOrCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 15, models.CohortRecruiting)
	_, err := f.staff.CreateAssignment(ctx, cohort.ID, AssignmentInput{WeekNumber: 1, Title: "Quiz", DueDate: fixedNow.AddDate(0, 0, 14)})
	require.NoError(t, err)

	tests := []struct {
		status models.EnrollmentStatus
		ok     bool
	}{
		{models.StatusPending, false},
		{models.StatusEnrolled, true},
		{models.StatusCompleted, true},
		{models.StatusDropped, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			s := f.student(t, "student_"+string(tc.status))
			f.enrolledIn(t, s.ID, cohort.ID, tc.status)

			m, err := f.catalog.Materials(ctx, s.ID, cohort.ID)
			if !tc.ok {
				assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cohort.ID, m.Cohort.ID)
			assert.Len(t, m.Assignments, 1)
		})
	}

	stranger := f.student(t, "stranger")
	_, err = f.catalog.Materials(ctx, stranger.ID, cohort.ID)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestStaffCourseAndCohortCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course, err := f.catalog.CreateCourse(ctx, CourseInput{Title: "Digital Literacy 101", Price: 50000})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCurrency, course.Currency)
	assert.Equal(t, models.DefaultDurationWeeks, course.DurationWeeks)
	assert.True(t, course.IsActive)

	_, err = f.catalog.CreateCourse(ctx, CourseInput{Title: "", Price: -1})
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))

	_, err = f.catalog.CreateCohort(ctx, CohortInput{CourseID: 999, Name: "X", StartDate: fixedNow, EndDate: fixedNow})
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))

	_, err = f.catalog.CreateCohort(ctx, CohortInput{CourseID: course.ID, Name: "Backwards", StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 0, -1)})
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))

	cohort, err := f.catalog.CreateCohort(ctx, CohortInput{
		CourseID:  course.ID,
		Name:      "March 2026",
		StartDate: fixedNow.AddDate(0, 0, 7),
		EndDate:   fixedNow.AddDate(0, 0, 49),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CohortPlanning, cohort.Status)
	assert.Equal(t, models.DefaultMaxStudents, cohort.MaxStudents)

	two := 2
	cohort, err = f.catalog.UpdateCohort(ctx, cohort.ID, CohortInput{
		CourseID:    course.ID,
		Name:        "March 2026",
		StartDate:   cohort.StartDate,
		EndDate:     cohort.EndDate,
		Status:      models.CohortRecruiting,
		MaxStudents: &two,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cohort.MaxStudents)

	a := f.student(t, "ama")
	_, err = f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)

	list, err := f.catalog.ListCohorts(ctx, db.CohortFilter{CourseID: course.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].EnrollmentCount)
	assert.Equal(t, 1, list[0].SpotsRemaining)

	require.NoError(t, f.catalog.DeleteCourse(ctx, course.ID))
	_, err = f.catalog.GetCohort(ctx, cohort.ID)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}
