package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risehub/db"
	apperrors "risehub/errors"
	"risehub/models"
)

// postgresStore connects to DB_TEST_URL and skips the test when it is unset.
// Rows are namespaced by a per-run prefix and removed on cleanup.
func postgresStore(t *testing.T) (*db.PostgresStore, string) {
	t.Helper()
	url := os.Getenv("DB_TEST_URL")
	if url == "" {
		t.Skip("DB_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.InitDB(ctx, url))

	prefix := fmt.Sprintf("it%d_", time.Now().UnixNano())
	t.Cleanup(func() {
		_, err := db.DB.Exec(`DELETE FROM users WHERE username LIKE $1`, prefix+"%")
		assert.NoError(t, err)
		assert.NoError(t, db.DB.Close())
	})
	return db.NewPostgresStore(db.DB), prefix
}

func quietNotifier() (*Notifier, *EventBus) {
	return NewNotifier(&recordingMailer{}, SiteInfo{Name: "Rise Hub"}),
		NewEventBus(&recordingPublisher{}, "enrollment.events", fixedClock)
}

func TestPostgresEnrollConcurrentNeverOverfills(t *testing.T) {
	store, prefix := postgresStore(t)
	ctx := context.Background()

	const seats, applicants = 5, 25
	course := models.Course{Title: prefix + "course", DurationWeeks: models.DefaultDurationWeeks, Price: 1000, Currency: models.DefaultCurrency, IsActive: true}
	require.NoError(t, store.CreateCourse(ctx, &course))
	t.Cleanup(func() { assert.NoError(t, store.DeleteCourse(context.Background(), course.ID)) })

	cohort := models.Cohort{
		CourseID:    course.ID,
		Name:        prefix + "cohort",
		StartDate:   fixedNow.AddDate(0, 0, 7),
		EndDate:     fixedNow.AddDate(0, 0, 49),
		Status:      models.CohortRecruiting,
		MaxStudents: seats,
		CreatedAt:   fixedNow,
	}
	require.NoError(t, store.CreateCohort(ctx, &cohort))

	ids := make([]int64, applicants)
	for i := range ids {
		u := models.User{Username: fmt.Sprintf("%sstudent%d", prefix, i), Email: fmt.Sprintf("%sstudent%d@example.com", prefix, i), CreatedAt: fixedNow}
		require.NoError(t, store.CreateStudent(ctx, &u, &models.StudentProfile{PhoneNumber: "+233244123456"}))
		ids[i] = u.ID
	}

	notify, events := quietNotifier()
	enroll := NewEnrollmentService(store, notify, events, fixedClock)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := enroll.Enroll(ctx, id, cohort.ID)
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
		}(id)
	}
	wg.Wait()
	notify.Wait()
	events.Wait()

	assert.Equal(t, seats, succeeded)
	assert.Equal(t, applicants-seats, full)

	taken, err := store.CountSeatHolders(ctx, cohort.ID)
	require.NoError(t, err)
	assert.Equal(t, seats, taken)
}

func TestPostgresRegisterConcurrentNeverOverfills(t *testing.T) {
	store, prefix := postgresStore(t)
	ctx := context.Background()

	const limit, visitors = 3, 15
	w := models.Webinar{
		Title:             prefix + "webinar",
		Date:              fixedNow.Add(72 * time.Hour),
		DurationMinutes:   models.DefaultWebinarMinutes,
		ZoomLink:          "https://zoom.us/j/123",
		RegistrationLimit: limit,
		IsActive:          true,
		CreatedAt:         fixedNow,
	}
	require.NoError(t, store.CreateWebinar(ctx, &w))
	t.Cleanup(func() { assert.NoError(t, store.DeleteWebinar(context.Background(), w.ID)) })

	notify, events := quietNotifier()
	webinars := NewWebinarService(store, notify, events, fixedClock)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for i := 0; i < visitors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := webinars.Register(ctx, w.ID, RegistrationInput{
				FullName: fmt.Sprintf("Visitor %d", i),
				Email:    fmt.Sprintf("%svisitor%d@example.com", prefix, i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperrors.Is(err, apperrors.ErrWebinarFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	notify.Wait()
	events.Wait()

	assert.Equal(t, limit, succeeded)
	assert.Equal(t, visitors-limit, full)

	n, err := store.CountRegistrations(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, limit, n)
}
