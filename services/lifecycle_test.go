package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risehub/db"
	"risehub/db/memdb"
	apperrors "risehub/errors"
	"risehub/models"
)

func TestApplyTransitionTable(t *testing.T) {
	when := fixedNow.Add(48 * time.Hour)

	tests := []struct {
		name    string
		from    models.EnrollmentStatus
		req     TransitionRequest
		want    models.EnrollmentStatus
		wantErr error
	}{
		{"schedule from interested", models.StatusInterested, TransitionRequest{Action: ActionScheduleAssessment, AssessmentCallDate: &when}, models.StatusAssessmentScheduled, nil},
		{"schedule from pending", models.StatusPending, TransitionRequest{Action: ActionScheduleAssessment, AssessmentCallDate: &when}, "", apperrors.ErrInvalidTransition},
		{"pending from assessment", models.StatusAssessmentScheduled, TransitionRequest{Action: ActionMarkPending}, models.StatusPending, nil},
		{"pending from enrolled", models.StatusEnrolled, TransitionRequest{Action: ActionMarkPending}, "", apperrors.ErrInvalidTransition},
		{"enrolled from interested", models.StatusInterested, TransitionRequest{Action: ActionMarkEnrolled}, models.StatusEnrolled, nil},
		{"enrolled from pending", models.StatusPending, TransitionRequest{Action: ActionMarkEnrolled}, models.StatusEnrolled, nil},
		{"enrolled from completed", models.StatusCompleted, TransitionRequest{Action: ActionMarkEnrolled}, "", apperrors.ErrInvalidTransition},
		{"complete from enrolled", models.StatusEnrolled, TransitionRequest{Action: ActionComplete}, models.StatusCompleted, nil},
		{"complete from pending", models.StatusPending, TransitionRequest{Action: ActionComplete}, "", apperrors.ErrInvalidTransition},
		{"drop from pending", models.StatusPending, TransitionRequest{Action: ActionDrop}, models.StatusDropped, nil},
		{"drop from interested", models.StatusInterested, TransitionRequest{Action: ActionDrop}, models.StatusDropped, nil},
		{"drop from cancelled", models.StatusCancelled, TransitionRequest{Action: ActionDrop}, "", apperrors.ErrInvalidTransition},
		{"cancel from enrolled", models.StatusEnrolled, TransitionRequest{Action: ActionCancel}, models.StatusCancelled, nil},
		{"cancel from completed", models.StatusCompleted, TransitionRequest{Action: ActionCancel}, "", apperrors.ErrInvalidTransition},
		{"paid from dropped", models.StatusDropped, TransitionRequest{Action: ActionMarkPaid}, "", apperrors.ErrInvalidTransition},
		{"progress on completed", models.StatusCompleted, TransitionRequest{Action: ActionRecordProgress}, models.StatusCompleted, nil},
		{"progress on dropped", models.StatusDropped, TransitionRequest{Action: ActionRecordProgress}, "", apperrors.ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := models.Enrollment{Status: tc.from}
			err := applyTransition(&e, tc.req, 1000, fixedNow)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.from, e.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.Status)
			assert.Equal(t, fixedNow, e.UpdatedAt)
		})
	}
}

func TestApplyTransitionValidatesArguments(t *testing.T) {
	e := models.Enrollment{Status: models.StatusInterested}
	err := applyTransition(&e, TransitionRequest{Action: ActionScheduleAssessment}, 0, fixedNow)
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))

	err = applyTransition(&e, TransitionRequest{Action: "promote"}, 0, fixedNow)
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))

	negative := -1
	err = applyTransition(&e, TransitionRequest{Action: ActionRecordProgress, Attendance: &negative}, 0, fixedNow)
	assert.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
}

func TestMarkPaidRecordsFirstPaymentOnly(t *testing.T) {
	e := models.Enrollment{Status: models.StatusPending}

	require.NoError(t, applyTransition(&e, TransitionRequest{Action: ActionMarkPaid, PaymentMethod: models.PaymentCash}, 50000, fixedNow))
	assert.Equal(t, models.Money(50000), e.AmountPaid)
	require.NotNil(t, e.PaymentDate)
	assert.Equal(t, fixedNow, *e.PaymentDate)
	assert.Equal(t, models.PaymentCash, e.PaymentMethod)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.True(t, e.IsPaid(50000))

	later := fixedNow.Add(time.Hour)
	require.NoError(t, applyTransition(&e, TransitionRequest{Action: ActionMarkPaid, PaymentMethod: models.PaymentBankTransfer}, 90000, later))
	assert.Equal(t, models.Money(50000), e.AmountPaid)
	assert.Equal(t, fixedNow, *e.PaymentDate)
	assert.Equal(t, models.PaymentCash, e.PaymentMethod)
}

func TestRecordProgressSetsCounters(t *testing.T) {
	e := models.Enrollment{Status: models.StatusEnrolled, AttendanceCount: 1, AssignmentsCompleted: 2}
	attended := 4

	require.NoError(t, applyTransition(&e, TransitionRequest{Action: ActionRecordProgress, Attendance: &attended}, 0, fixedNow))
	assert.Equal(t, 4, e.AttendanceCount)
	assert.Equal(t, 2, e.AssignmentsCompleted)
}

func TestTransitionPersistsAndEmitsStatusChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 2, models.CohortRecruiting)
	a := f.student(t, "ama")

	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)

	updated, err := f.enroll.Transition(ctx, e.ID, TransitionRequest{Action: ActionMarkEnrolled})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnrolled, updated.Status)

	stored, err := f.store.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnrolled, stored.Status)

	f.flush()
	events := f.pub.Events(EventEnrollmentStatus)
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusPending, events[0].Data["from"])
	assert.Equal(t, models.StatusEnrolled, events[0].Data["to"])
}

func TestDroppingFreesASeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 1, models.CohortRecruiting)
	a := f.student(t, "ama")
	b := f.student(t, "kofi")

	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)
	_, err = f.enroll.Enroll(ctx, b.ID, cohort.ID)
	require.ErrorIs(t, err, apperrors.ErrCohortFull)

	_, err = f.enroll.Transition(ctx, e.ID, TransitionRequest{Action: ActionDrop})
	require.NoError(t, err)

	_, err = f.enroll.Enroll(ctx, b.ID, cohort.ID)
	assert.NoError(t, err)
}

func TestTransitionBatchReportsEachOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")
	b := f.student(t, "kofi")

	ea, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)
	eb := f.enrolledIn(t, b.ID, cohort.ID, models.StatusCompleted)

	outcomes := f.enroll.TransitionBatch(ctx, []int64{ea.ID, eb.ID, 424242}, TransitionRequest{Action: ActionMarkEnrolled})
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].OK)
	assert.Equal(t, models.StatusEnrolled, outcomes[0].Status)

	assert.False(t, outcomes[1].OK)
	assert.Equal(t, apperrors.MessageOf(apperrors.ErrInvalidTransition), outcomes[1].Error)

	assert.False(t, outcomes[2].OK)
	assert.Equal(t, "enrollment not found", outcomes[2].Error)
}

func TestListEnrollmentsFiltersByCohort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	c1 := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	c2 := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")

	_, err := f.enroll.Enroll(ctx, a.ID, c1.ID)
	require.NoError(t, err)
	_, err = f.enroll.Enroll(ctx, a.ID, c2.ID)
	require.NoError(t, err)

	list, err := f.enroll.ListEnrollments(ctx, db.EnrollmentFilter{CohortID: c2.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c2.Name, list[0].CohortName)
}

// interleavingStore runs between once, right after the first enrollment
// read, so another writer can commit in the gap before the caller writes.
type interleavingStore struct {
	*memdb.Store
	once    sync.Once
	between func()
}

func (s *interleavingStore) GetEnrollment(ctx context.Context, id int64) (models.Enrollment, error) {
	e, err := s.Store.GetEnrollment(ctx, id)
	s.once.Do(s.between)
	return e, err
}

func TestPaymentMethodDoesNotUndoConcurrentStaffAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Data Analysis", 150000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	ama := f.student(t, "ama")
	e := f.enrolledIn(t, ama.ID, cohort.ID, models.StatusPending)

	racing := &interleavingStore{Store: f.store, between: func() {
		_, err := f.enroll.Transition(ctx, e.ID, TransitionRequest{Action: ActionMarkPaid})
		require.NoError(t, err)
		_, err = f.enroll.Transition(ctx, e.ID, TransitionRequest{Action: ActionMarkEnrolled})
		require.NoError(t, err)
	}}
	student := NewEnrollmentService(racing, f.notify, f.events, fixedClock)

	ack, err := student.RecordPaymentMethod(ctx, ama.ID, e.ID, models.PaymentMobileMoney)
	require.NoError(t, err)
	assert.True(t, ack.IsPaid)
	assert.Equal(t, models.Money(0), ack.AmountDue)

	got, err := f.store.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnrolled, got.Status)
	assert.Equal(t, course.Price, got.AmountPaid)
	assert.NotNil(t, got.PaymentDate)
	assert.Equal(t, models.PaymentMobileMoney, got.PaymentMethod)
	f.flush()
}

func TestTransitionKeepsConcurrentPaymentMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Data Analysis", 150000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	ama := f.student(t, "ama")
	e := f.enrolledIn(t, ama.ID, cohort.ID, models.StatusPending)

	racing := &interleavingStore{Store: f.store, between: func() {
		_, err := f.enroll.RecordPaymentMethod(ctx, ama.ID, e.ID, models.PaymentBankTransfer)
		require.NoError(t, err)
	}}
	staff := NewEnrollmentService(racing, f.notify, f.events, fixedClock)

	got, err := staff.Transition(ctx, e.ID, TransitionRequest{Action: ActionMarkEnrolled})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnrolled, got.Status)
	assert.Equal(t, models.PaymentBankTransfer, got.PaymentMethod)

	stored, err := f.store.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentBankTransfer, stored.PaymentMethod)
	f.flush()
}

func TestTransitionSeesStatusCommittedAfterRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Data Analysis", 150000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	ama := f.student(t, "ama")
	e := f.enrolledIn(t, ama.ID, cohort.ID, models.StatusPending)

	racing := &interleavingStore{Store: f.store, between: func() {
		_, err := f.enroll.Transition(ctx, e.ID, TransitionRequest{Action: ActionCancel})
		require.NoError(t, err)
	}}
	staff := NewEnrollmentService(racing, f.notify, f.events, fixedClock)

	// The row is cancelled by the time the lock is taken.
	_, err := staff.Transition(ctx, e.ID, TransitionRequest{Action: ActionMarkEnrolled})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	stored, err := f.store.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	f.flush()
}
