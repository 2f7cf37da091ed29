// Package inmem provides map backed repositories with the same semantics as
// the PostgreSQL ones. It is used by tests and by ingestion dry runs.
package inmem

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/educareway/internal/app/models"
)

// Store holds every table. Repositories created from the same store see each
// other's rows, so parent lookups behave like foreign keys.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*models.User
	courses   map[uuid.UUID]*models.Course
	semesters map[uuid.UUID]*models.Semester
	subjects  map[uuid.UUID]*models.Subject
	resources map[uuid.UUID]*models.Resource

	// clock increments on every write so ordering by creation time is stable
	clock time.Time

	Users     *UserRepository
	Courses   *CourseRepository
	Semesters *SemesterRepository
	Subjects  *SubjectRepository
	Resources *ResourceRepository
}

// New creates an empty store
func New() *Store {
	s := &Store{
		users:     make(map[uuid.UUID]*models.User),
		courses:   make(map[uuid.UUID]*models.Course),
		semesters: make(map[uuid.UUID]*models.Semester),
		subjects:  make(map[uuid.UUID]*models.Subject),
		resources: make(map[uuid.UUID]*models.Resource),
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Users = &UserRepository{s: s}
	s.Courses = &CourseRepository{s: s}
	s.Semesters = &SemesterRepository{s: s}
	s.Subjects = &SubjectRepository{s: s}
	s.Resources = &ResourceRepository{s: s}
	return s
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Counts reports the number of rows per table, active or not
func (s *Store) Counts() (users, courses, semesters, subjects, resources int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), len(s.courses), len(s.semesters), len(s.subjects), len(s.resources)
}

func strPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sameFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return name(items[i]) < name(items[j]) })
}
