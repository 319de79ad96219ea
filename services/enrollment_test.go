package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "risehub/errors"
	"risehub/models"
)

func TestEnrollSingleSeatScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := f.course(t, "Digital Literacy 101", 50000)
	cohort := f.cohort(t, course.ID, 1, models.CohortRecruiting)
	a := f.student(t, "ama")
	b := f.student(t, "kofi")

	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.Equal(t, models.Money(0), e.AmountPaid)
	assert.Equal(t, fixedNow, e.EnrolledAt)

	_, err = f.enroll.Enroll(ctx, b.ID, cohort.ID)
	assert.ErrorIs(t, err, apperrors.ErrCohortFull)

	_, err = f.enroll.Enroll(ctx, a.ID, cohort.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)

	spots, err := f.enroll.SpotsRemaining(ctx, cohort.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, spots)
}

func TestEnrollFillsExactlyMaxStudents(t *testing.T) {
	for _, n := range []int{0, 1, 3, 15} {
		t.Run(fmt.Sprintf("max_%d", n), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			course := f.course(t, "Course", 1000)
			cohort := f.cohort(t, course.ID, n, models.CohortPlanning)

			for i := 0; i < n; i++ {
				s := f.student(t, fmt.Sprintf("student%d", i))
				_, err := f.enroll.Enroll(ctx, s.ID, cohort.ID)
				require.NoError(t, err, "enrollment %d of %d", i+1, n)
			}

			extra := f.student(t, "latecomer")
			_, err := f.enroll.Enroll(ctx, extra.ID, cohort.ID)
			assert.ErrorIs(t, err, apperrors.ErrCohortFull)

			taken, err := f.store.CountSeatHolders(ctx, cohort.ID)
			require.NoError(t, err)
			assert.Equal(t, n, taken)
		})
	}
}

func TestEnrollConcurrentNeverOverfills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const seats, applicants = 10, 40
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, seats, models.CohortRecruiting)

	students := make([]models.User, applicants)
	for i := range students {
		students[i] = f.student(t, fmt.Sprintf("applicant%d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for _, s := range students {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.enroll.Enroll(ctx, id, cohort.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperrors.Is(err, apperrors.ErrCohortFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(s.ID)
	}
	wg.Wait()
	f.flush()

	assert.Equal(t, seats, succeeded)
	assert.Equal(t, applicants-seats, full)

	taken, err := f.store.CountSeatHolders(ctx, cohort.ID)
	require.NoError(t, err)
	assert.Equal(t, seats, taken)
}

func TestEnrollDuplicateWinsOverFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 1, models.CohortRecruiting)
	a := f.student(t, "ama")

	_, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)

	// cohort is now full, but the repeat is reported as a duplicate
	_, err = f.enroll.Enroll(ctx, a.ID, cohort.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
}

func TestEnrollDuplicateEvenAfterDropping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")

	f.enrolledIn(t, a.ID, cohort.ID, models.StatusDropped)

	_, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
}

func TestEnrollRejectsClosedAndMissingCohorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	a := f.student(t, "ama")

	for _, status := range []models.CohortStatus{models.CohortActive, models.CohortCompleted, models.CohortCancelled} {
		cohort := f.cohort(t, course.ID, 10, status)
		_, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
		assert.ErrorIs(t, err, apperrors.ErrCohortClosed, string(status))
	}

	_, err := f.enroll.Enroll(ctx, a.ID, 9999)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestSpotsRemainingCountsOnlySeatHolders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)

	statuses := []models.EnrollmentStatus{
		models.StatusPending, models.StatusEnrolled, models.StatusInterested,
		models.StatusCompleted, models.StatusDropped, models.StatusCancelled,
	}
	for i, st := range statuses {
		s := f.student(t, fmt.Sprintf("s%d", i))
		f.enrolledIn(t, s.ID, cohort.ID, st)
	}

	spots, err := f.enroll.SpotsRemaining(ctx, cohort.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, spots)
}

func TestEnrollStudentRequiresCompleteProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)

	noProfile := models.User{Username: "noprofile", Email: "np@example.com"}
	require.NoError(t, f.store.CreateUser(ctx, &noProfile))
	_, err := f.enroll.EnrollStudent(ctx, noProfile.ID, cohort.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfileIncomplete)

	blank := f.student(t, "blank")
	p, err := f.store.GetStudentProfile(ctx, blank.ID)
	require.NoError(t, err)
	p.PhoneNumber = "  "
	require.NoError(t, f.store.SaveStudentProfile(ctx, &p))
	_, err = f.enroll.EnrollStudent(ctx, blank.ID, cohort.ID)
	assert.ErrorIs(t, err, apperrors.ErrProfileIncomplete)

	ok := f.student(t, "ready")
	e, err := f.enroll.EnrollStudent(ctx, ok.ID, cohort.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, e.Status)
}

func TestEnrollNotifiesAndEmitsEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Digital Literacy 101", 50000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")

	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)
	f.flush()

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ama@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, cohort.Name)
	assert.Contains(t, sent[0].Body, "Digital Literacy 101")
	assert.Contains(t, sent[0].Body, "500.00")

	events := f.pub.Events(EventEnrollmentCreated)
	require.Len(t, events, 1)
	assert.Equal(t, entityKey("enrollment", e.ID), events[0].Key)
	assert.NotEmpty(t, events[0].EventID)
}

func TestEnrollSucceedsWhenMailFails(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errMailDown
	f.pub.err = errMailDown
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")

	_, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)
	f.flush()
	assert.Empty(t, f.mailer.Sent())
}

func TestDashboardReportsIsPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paidCourse := f.course(t, "Paid", 50000)
	freeCourse := f.course(t, "Free", 0)
	c1 := f.cohort(t, paidCourse.ID, 5, models.CohortRecruiting)
	c2 := f.cohort(t, freeCourse.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")

	e1, err := f.enroll.Enroll(ctx, a.ID, c1.ID)
	require.NoError(t, err)
	_, err = f.enroll.Enroll(ctx, a.ID, c2.ID)
	require.NoError(t, err)

	dash, err := f.enroll.Dashboard(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, dash, 2)
	byCourse := map[string]models.EnrollmentResponse{}
	for _, d := range dash {
		byCourse[d.CourseTitle] = d
	}
	assert.False(t, byCourse["Paid"].IsPaid)
	assert.True(t, byCourse["Free"].IsPaid)

	_, err = f.enroll.Transition(ctx, e1.ID, TransitionRequest{Action: ActionMarkPaid, PaymentMethod: models.PaymentMobileMoney})
	require.NoError(t, err)

	resp, err := f.enroll.StudentEnrollment(ctx, a.ID, e1.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsPaid)
	assert.Equal(t, models.Money(50000), resp.AmountPaid)
}

func TestStudentEnrollmentHidesOtherStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")
	b := f.student(t, "kofi")

	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)

	_, err = f.enroll.StudentEnrollment(ctx, b.ID, e.ID)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))

	_, err = f.enroll.RecordPaymentMethod(ctx, b.ID, e.ID, models.PaymentCash)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestRecordPaymentMethodOnlyStoresIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 75000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")

	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)

	ack, err := f.enroll.RecordPaymentMethod(ctx, a.ID, e.ID, models.PaymentBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, models.Money(75000), ack.AmountDue)
	assert.Equal(t, "GHS", ack.Currency)
	assert.False(t, ack.IsPaid)

	stored, err := f.store.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentBankTransfer, stored.PaymentMethod)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, models.Money(0), stored.AmountPaid)
}

func TestRecordPaymentMethodRejectsTerminalEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")
	e := f.enrolledIn(t, a.ID, cohort.ID, models.StatusCancelled)

	_, err := f.enroll.RecordPaymentMethod(ctx, a.ID, e.ID, models.PaymentCash)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestReceiptRendersPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	cohort := f.cohort(t, course.ID, 5, models.CohortRecruiting)
	a := f.student(t, "ama")
	e, err := f.enroll.Enroll(ctx, a.ID, cohort.ID)
	require.NoError(t, err)

	pdf, err := f.enroll.Receipt(ctx, a.ID, e.ID, SiteInfo{Name: "Rise Hub", SupportEmail: "hello@risehub.test"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestEnrollmentChoicesListOpenCohorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Course", 1000)
	open := f.cohort(t, course.ID, 2, models.CohortRecruiting)
	planning := f.cohort(t, course.ID, 2, models.CohortPlanning)
	f.cohort(t, course.ID, 2, models.CohortActive)

	a := f.student(t, "ama")
	_, err := f.enroll.Enroll(ctx, a.ID, open.ID)
	require.NoError(t, err)

	choices, err := f.enroll.EnrollmentChoices(ctx)
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, open.ID, choices[0].ID)
	assert.Equal(t, 1, choices[0].SpotsRemaining)
	assert.Equal(t, "Course", choices[0].CourseTitle)
	assert.Equal(t, planning.ID, choices[1].ID)
	assert.Equal(t, 2, choices[1].SpotsRemaining)
}
