package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "risehub/errors"
	"risehub/models"
)

func registration(email string) RegistrationInput {
	return RegistrationInput{FullName: "Ama Mensah", Email: email, Phone: "024 412 3456"}
}

func TestRegisterForWebinar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.webinar(t, 50, fixedNow.Add(72*time.Hour), true)

	reg, err := f.webinars.Register(ctx, w.ID, registration("  Ama@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "ama@example.com", reg.Email)
	assert.Equal(t, fixedNow, reg.RegisteredAt)

	f.flush()
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ama@example.com", sent[0].To)
	assert.Contains(t, sent[0].Body, "https://zoom.us/j/123")
	assert.Len(t, f.pub.Events(EventWebinarRegistered), 1)

	spots, err := f.webinars.SpotsRemaining(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 49, spots)
}

func TestRegisterTwiceIsRejectedCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.webinar(t, 50, fixedNow.Add(time.Hour), true)

	_, err := f.webinars.Register(ctx, w.ID, registration("ama@example.com"))
	require.NoError(t, err)

	_, err = f.webinars.Register(ctx, w.ID, registration("AMA@example.COM"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
}

func TestSameEmailMayJoinTwoWebinars(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w1 := f.webinar(t, 50, fixedNow.Add(time.Hour), true)
	w2 := f.webinar(t, 50, fixedNow.Add(2*time.Hour), true)

	_, err := f.webinars.Register(ctx, w1.ID, registration("ama@example.com"))
	require.NoError(t, err)
	_, err = f.webinars.Register(ctx, w2.ID, registration("ama@example.com"))
	assert.NoError(t, err)
}

func TestRegisterZeroLimitIsFull(t *testing.T) {
	f := newFixture(t)
	w := f.webinar(t, 0, fixedNow.Add(time.Hour), true)

	_, err := f.webinars.Register(context.Background(), w.ID, registration("ama@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrWebinarFull)
}

func TestRegisterAlreadyRegisteredBeforeFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.webinar(t, 1, fixedNow.Add(time.Hour), true)

	_, err := f.webinars.Register(ctx, w.ID, registration("ama@example.com"))
	require.NoError(t, err)

	_, err = f.webinars.Register(ctx, w.ID, registration("ama@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
	_, err = f.webinars.Register(ctx, w.ID, registration("kofi@example.com"))
	assert.ErrorIs(t, err, apperrors.ErrWebinarFull)
}

func TestRegisterInactiveOrMissingWebinar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := f.webinar(t, 50, fixedNow.Add(time.Hour), false)

	_, err := f.webinars.Register(ctx, inactive.ID, registration("ama@example.com"))
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))

	_, err = f.webinars.Register(ctx, 31337, registration("ama@example.com"))
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
}

func TestRegisterValidatesInput(t *testing.T) {
	f := newFixture(t)
	w := f.webinar(t, 50, fixedNow.Add(time.Hour), true)

	_, err := f.webinars.Register(context.Background(), w.ID, RegistrationInput{FullName: " ", Email: "not-an-email"})
	require.Equal(t, apperrors.Invalid, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "full_name")
	assert.Contains(t, err.Error(), "email")
}

func TestRegisterConcurrentNeverOverfills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const limit = 5
	w := f.webinar(t, limit, fixedNow.Add(time.Hour), true)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.webinars.Register(ctx, w.ID, registration(fmt.Sprintf("guest%d@example.com", i)))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	f.flush()

	assert.Equal(t, limit, ok)
	count, err := f.store.CountRegistrations(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, count)
}

func TestUpcomingSkipsPastAndInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.webinar(t, 50, fixedNow.Add(-time.Hour), true)
	f.webinar(t, 50, fixedNow.Add(time.Hour), false)
	later := f.webinar(t, 50, fixedNow.Add(48*time.Hour), true)
	sooner := f.webinar(t, 50, fixedNow.Add(24*time.Hour), true)

	upcoming, err := f.webinars.Upcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, sooner.ID, upcoming[0].ID)
	assert.Equal(t, later.ID, upcoming[1].ID)
	assert.Equal(t, 50, upcoming[0].SpotsRemaining)

	all, err := f.webinars.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStaffWebinarCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.webinars.Create(ctx, WebinarInput{
		Title:       "Digital Skills Taster",
		Description: `<p>Free</p><script>alert(1)</script>`,
		Date:        fixedNow.Add(24 * time.Hour),
		ZoomLink:    "https://zoom.us/j/999",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRegistrationLimit, w.RegistrationLimit)
	assert.Equal(t, models.DefaultWebinarMinutes, w.DurationMinutes)
	assert.True(t, w.IsActive)
	assert.NotContains(t, w.Description, "script")

	limit := 3
	w, err = f.webinars.Update(ctx, w.ID, WebinarInput{Title: "Renamed", Date: w.Date, RegistrationLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", w.Title)
	assert.Equal(t, 3, w.RegistrationLimit)

	reg, err := f.webinars.Register(ctx, w.ID, registration("ama@example.com"))
	require.NoError(t, err)

	attended := true
	reg, err = f.webinars.UpdateRegistration(ctx, reg.ID, RegistrationUpdate{Attended: &attended})
	require.NoError(t, err)
	assert.True(t, reg.Attended)
	assert.False(t, reg.EnrolledAfter)

	regs, err := f.webinars.Registrations(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.True(t, regs[0].Attended)

	summary, err := f.webinars.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RegistrationCount)
	assert.Equal(t, 2, summary.SpotsRemaining)

	require.NoError(t, f.webinars.Delete(ctx, w.ID))
	_, err = f.webinars.Get(ctx, w.ID)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))
	_, err = f.store.GetRegistration(ctx, reg.ID)
	assert.Error(t, err)
}
