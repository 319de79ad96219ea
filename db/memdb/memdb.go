// Package memdb is an in-memory db.Store guarded by a single mutex. It backs
// the service and handler tests.
package memdb

import (
	"sort"
	"strings"
	"sync"

	"risehub/db"
	"risehub/models"
)

type enrollmentKey struct{ student, cohort int64 }

type registrationKey struct {
	webinar int64
	email   string
}

// Store keeps every table in maps keyed by primary key.
type Store struct {
	mutex sync.RWMutex
	seq   int64

	courses     map[int64]*models.Course
	curriculum  map[int64]*models.WeekCurriculum
	cohorts     map[int64]*models.Cohort
	enrollments map[int64]*models.Enrollment
	enrollIndex map[enrollmentKey]int64

	webinars      map[int64]*models.Webinar
	registrations map[int64]*models.WebinarRegistration
	regIndex      map[registrationKey]int64

	interests map[int64]*models.InterestForm
	contacts  map[int64]*models.ContactMessage

	users    map[int64]*models.User
	profiles map[int64]*models.StudentProfile

	instructors       map[int64]*models.InstructorProfile
	cohortInstructors map[int64]*models.CohortInstructor
	assignments       map[int64]*models.Assignment
	submissions       map[int64]*models.AssignmentSubmission
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		courses:           map[int64]*models.Course{},
		curriculum:        map[int64]*models.WeekCurriculum{},
		cohorts:           map[int64]*models.Cohort{},
		enrollments:       map[int64]*models.Enrollment{},
		enrollIndex:       map[enrollmentKey]int64{},
		webinars:          map[int64]*models.Webinar{},
		registrations:     map[int64]*models.WebinarRegistration{},
		regIndex:          map[registrationKey]int64{},
		interests:         map[int64]*models.InterestForm{},
		contacts:          map[int64]*models.ContactMessage{},
		users:             map[int64]*models.User{},
		profiles:          map[int64]*models.StudentProfile{},
		instructors:       map[int64]*models.InstructorProfile{},
		cohortInstructors: map[int64]*models.CohortInstructor{},
		assignments:       map[int64]*models.Assignment{},
		submissions:       map[int64]*models.AssignmentSubmission{},
	}
}

// nextID must be called with the write lock held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func regKey(webinarID int64, email string) registrationKey {
	return registrationKey{webinar: webinarID, email: strings.ToLower(strings.TrimSpace(email))}
}

// values copies the map entries into a slice sorted by less.
func values[T any](m map[int64]*T, keep func(*T) bool, less func(a, b *T) bool) []T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })

	list := make([]T, len(out))
	for i, v := range out {
		list[i] = *v
	}
	return list
}
