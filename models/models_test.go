package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpotsRemainingFloorsAtZero(t *testing.T) {
	assert.Equal(t, 5, SpotsRemaining(5, 0))
	assert.Equal(t, 1, SpotsRemaining(5, 4))
	assert.Equal(t, 0, SpotsRemaining(5, 5))
	assert.Equal(t, 0, SpotsRemaining(5, 9))
	assert.Equal(t, 0, SpotsRemaining(0, 0))
}

func TestCohortSummarize(t *testing.T) {
	s := Cohort{MaxStudents: 3}.Summarize(2)
	assert.Equal(t, 2, s.EnrollmentCount)
	assert.Equal(t, 1, s.SpotsRemaining)

	w := Webinar{RegistrationLimit: 0}.Summarize(0)
	assert.Equal(t, 0, w.SpotsRemaining)
}

func TestEnrollmentIsPaid(t *testing.T) {
	price := Money(45000)
	assert.False(t, Enrollment{AmountPaid: 0}.IsPaid(price))
	assert.False(t, Enrollment{AmountPaid: 44999}.IsPaid(price))
	assert.True(t, Enrollment{AmountPaid: 45000}.IsPaid(price))
	assert.True(t, Enrollment{AmountPaid: 50000}.IsPaid(price))
}

func TestEnrollmentStatusPredicates(t *testing.T) {
	for _, s := range []EnrollmentStatus{StatusPending, StatusEnrolled} {
		assert.True(t, s.HoldsSeat(), s)
	}
	for _, s := range []EnrollmentStatus{StatusInterested, StatusAssessmentScheduled, StatusCompleted, StatusDropped, StatusCancelled} {
		assert.False(t, s.HoldsSeat(), s)
	}
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusDropped.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusCompleted.GrantsMaterials())
	assert.False(t, StatusPending.GrantsMaterials())
	assert.False(t, EnrollmentStatus("paid").Valid())
}

func TestCohortStatusOpen(t *testing.T) {
	assert.True(t, CohortPlanning.Open())
	assert.True(t, CohortRecruiting.Open())
	assert.False(t, CohortActive.Open())
	assert.False(t, CohortStatus("archived").Valid())
}

func TestTopicList(t *testing.T) {
	w := WeekCurriculum{Topics: "Email basics\n\n  Safe browsing \n"}
	assert.Equal(t, []string{"Email basics", "Safe browsing"}, w.TopicList())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ama Mensah", User{FirstName: "Ama", LastName: "Mensah"}.FullName())
	assert.Equal(t, "ama", User{Username: "ama"}.FullName())
}
