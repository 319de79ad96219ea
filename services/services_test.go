package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"risehub/db/memdb"
	"risehub/models"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestMain(m *testing.M) {
	models.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *recordingMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.sent...)
}

type publishedMessage struct {
	Topic string
	Key   string
	Value interface{}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []publishedMessage
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, publishedMessage{Topic: topic, Key: key, Value: value})
	return nil
}

func (p *recordingPublisher) Events(name string) []DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []DomainEvent
	for _, m := range p.msgs {
		if evt, ok := m.Value.(DomainEvent); ok && evt.Event == name {
			out = append(out, evt)
		}
	}
	return out
}

type fixture struct {
	store  *memdb.Store
	mailer *recordingMailer
	pub    *recordingPublisher
	notify *Notifier
	events *EventBus

	enroll   *EnrollmentService
	webinars *WebinarService
	catalog  *CatalogService
	leads    *LeadService
	accounts *AccountService
	staff    *StaffService

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memdb.New(),
		mailer: &recordingMailer{},
		pub:    &recordingPublisher{},
	}
	f.notify = NewNotifier(f.mailer, SiteInfo{Name: "Rise Hub", SupportEmail: "hello@risehub.test"})
	f.events = NewEventBus(f.pub, "enrollment.events", fixedClock)

	f.enroll = NewEnrollmentService(f.store, f.notify, f.events, fixedClock)
	f.webinars = NewWebinarService(f.store, f.notify, f.events, fixedClock)
	f.catalog = NewCatalogService(f.store, f.webinars, fixedClock)
	f.leads = NewLeadService(f.store, f.notify, f.events, fixedClock)
	f.accounts = NewAccountService(f.store, fixedClock)
	f.staff = NewStaffService(f.store, fixedClock)
	return f
}

// flush waits for background mail and events.
func (f *fixture) flush() {
	f.notify.Wait()
	f.events.Wait()
}

func (f *fixture) course(t *testing.T, title string, price models.Money) models.Course {
	t.Helper()
	c := models.Course{
		Title:         title,
		DurationWeeks: models.DefaultDurationWeeks,
		Price:         price,
		Currency:      models.DefaultCurrency,
		IsActive:      true,
		CreatedAt:     fixedNow,
		UpdatedAt:     fixedNow,
	}
	require.NoError(t, f.store.CreateCourse(context.Background(), &c))
	return c
}

func (f *fixture) cohort(t *testing.T, courseID int64, maxStudents int, status models.CohortStatus) models.Cohort {
	t.Helper()
	f.seq++
	c := models.Cohort{
		CourseID:    courseID,
		Name:        fmt.Sprintf("Cohort %d", f.seq),
		StartDate:   fixedNow.AddDate(0, 0, 7*f.seq),
		EndDate:     fixedNow.AddDate(0, 0, 7*f.seq+42),
		Status:      status,
		MaxStudents: maxStudents,
		CreatedAt:   fixedNow,
	}
	require.NoError(t, f.store.CreateCohort(context.Background(), &c))
	return c
}

func (f *fixture) student(t *testing.T, username string) models.User {
	t.Helper()
	u := models.User{
		Username:  username,
		FirstName: username,
		LastName:  "Mensah",
		Email:     username + "@example.com",
		CreatedAt: fixedNow,
	}
	p := models.StudentProfile{PhoneNumber: "+233244123456", CreatedAt: fixedNow, UpdatedAt: fixedNow}
	require.NoError(t, f.store.CreateStudent(context.Background(), &u, &p))
	return u
}

func (f *fixture) webinar(t *testing.T, limit int, date time.Time, active bool) models.Webinar {
	t.Helper()
	w := models.Webinar{
		Title:             "Intro to Digital Skills",
		Date:              date,
		DurationMinutes:   models.DefaultWebinarMinutes,
		ZoomLink:          "https://zoom.us/j/123",
		RegistrationLimit: limit,
		IsActive:          active,
		CreatedAt:         fixedNow,
	}
	require.NoError(t, f.store.CreateWebinar(context.Background(), &w))
	return w
}

// enrolledIn enrolls the student and moves the enrollment to status.
func (f *fixture) enrolledIn(t *testing.T, studentID, cohortID int64, status models.EnrollmentStatus) models.Enrollment {
	t.Helper()
	ctx := context.Background()
	e, err := f.enroll.Enroll(ctx, studentID, cohortID)
	require.NoError(t, err)
	e.Status = status
	require.NoError(t, f.store.UpdateEnrollment(ctx, &e))
	return e
}

var errMailDown = errors.New("smtp unavailable")
