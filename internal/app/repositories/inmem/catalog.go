package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/pkg/apperrors"
)

// CourseRepository is the in-memory courses table
type CourseRepository struct {
	s *Store
}

func copyCourse(c *models.Course) *models.Course {
	cp := *c
	cp.Description = strPtr(c.Description)
	cp.ImageURL = strPtr(c.ImageURL)
	cp.Semesters = nil
	return &cp
}

func (r *CourseRepository) conflict(course *models.Course) bool {
	for _, c := range r.s.courses {
		if c.ID != course.ID && (c.Code == course.Code || c.Name == course.Name) {
			return true
		}
	}
	return false
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(course) {
		return apperrors.ErrCourseAlreadyExists
	}
	course.ID = uuid.New()
	course.CreatedAt = r.s.tick()
	course.UpdatedAt = course.CreatedAt
	r.s.courses[course.ID] = copyCourse(course)
	return nil
}

func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.courses {
		if c.Code != course.Code {
			continue
		}
		course.ID = c.ID
		course.CreatedAt = c.CreatedAt
		if course.ImageURL == nil {
			course.ImageURL = strPtr(c.ImageURL)
		}
		course.UpdatedAt = r.s.tick()
		r.s.courses[c.ID] = copyCourse(course)
		return nil
	}
	if r.conflict(course) {
		return apperrors.ErrCourseAlreadyExists
	}
	course.ID = uuid.New()
	course.CreatedAt = r.s.tick()
	course.UpdatedAt = course.CreatedAt
	r.s.courses[course.ID] = copyCourse(course)
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.courses[id]; ok {
		return copyCourse(c), nil
	}
	return nil, apperrors.ErrCourseNotFound
}

func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.courses {
		if c.Code == code {
			return copyCourse(c), nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

func (r *CourseRepository) ListActive(ctx context.Context) ([]*models.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	courses := []*models.Course{}
	for _, c := range r.s.courses {
		if c.IsActive {
			courses = append(courses, copyCourse(c))
		}
	}
	sortByName(courses, func(c *models.Course) string { return c.Name })
	return courses, nil
}

func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if r.conflict(course) {
		return apperrors.ErrCourseAlreadyExists
	}
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = r.s.tick()
	r.s.courses[course.ID] = copyCourse(course)
	return nil
}

func (r *CourseRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	c.IsActive = active
	c.UpdatedAt = r.s.tick()
	return nil
}

// SemesterRepository is the in-memory semesters table
type SemesterRepository struct {
	s *Store
}

func copySemester(s *models.Semester) *models.Semester {
	cp := *s
	cp.Course = nil
	cp.Subjects = nil
	return &cp
}

func (r *SemesterRepository) duplicate(sem *models.Semester) *models.Semester {
	for _, s := range r.s.semesters {
		if s.CourseID == sem.CourseID && s.SemesterNumber == sem.SemesterNumber {
			return s
		}
	}
	return nil
}

func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[semester.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if r.duplicate(semester) != nil {
		return apperrors.ErrSemesterAlreadyExists
	}
	semester.ID = uuid.New()
	semester.CreatedAt = r.s.tick()
	semester.UpdatedAt = semester.CreatedAt
	r.s.semesters[semester.ID] = copySemester(semester)
	return nil
}

func (r *SemesterRepository) Upsert(ctx context.Context, semester *models.Semester) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[semester.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	if existing := r.duplicate(semester); existing != nil {
		semester.ID = existing.ID
		semester.CreatedAt = existing.CreatedAt
	} else {
		semester.ID = uuid.New()
		semester.CreatedAt = r.s.tick()
	}
	semester.UpdatedAt = r.s.tick()
	r.s.semesters[semester.ID] = copySemester(semester)
	return nil
}

func (r *SemesterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s, ok := r.s.semesters[id]; ok {
		return copySemester(s), nil
	}
	return nil, apperrors.ErrSemesterNotFound
}

func (r *SemesterRepository) ListActiveByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]*models.Semester, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[uuid.UUID]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	semesters := []*models.Semester{}
	for _, s := range r.s.semesters {
		if s.IsActive && wanted[s.CourseID] {
			semesters = append(semesters, copySemester(s))
		}
	}
	sort.SliceStable(semesters, func(i, j int) bool { return semesters[i].SemesterNumber < semesters[j].SemesterNumber })
	return semesters, nil
}

func (r *SemesterRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.semesters[id]
	if !ok {
		return apperrors.ErrSemesterNotFound
	}
	s.IsActive = active
	s.UpdatedAt = r.s.tick()
	return nil
}

// SubjectRepository is the in-memory subjects table
type SubjectRepository struct {
	s *Store
}

func copySubject(s *models.Subject) *models.Subject {
	cp := *s
	cp.Description = strPtr(s.Description)
	cp.ImageURL = strPtr(s.ImageURL)
	cp.Semester = nil
	cp.Resources = nil
	return &cp
}

func (r *SubjectRepository) byCode(code string) *models.Subject {
	for _, s := range r.s.subjects {
		if s.Code == code {
			return s
		}
	}
	return nil
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.semesters[subject.SemesterID]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	if r.byCode(subject.Code) != nil {
		return apperrors.ErrSubjectAlreadyExists
	}
	subject.ID = uuid.New()
	subject.CreatedAt = r.s.tick()
	subject.UpdatedAt = subject.CreatedAt
	r.s.subjects[subject.ID] = copySubject(subject)
	return nil
}

func (r *SubjectRepository) Upsert(ctx context.Context, subject *models.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.semesters[subject.SemesterID]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	if existing := r.byCode(subject.Code); existing != nil {
		subject.ID = existing.ID
		subject.CreatedAt = existing.CreatedAt
		if subject.ImageURL == nil {
			subject.ImageURL = strPtr(existing.ImageURL)
		}
	} else {
		subject.ID = uuid.New()
		subject.CreatedAt = r.s.tick()
	}
	subject.UpdatedAt = r.s.tick()
	r.s.subjects[subject.ID] = copySubject(subject)
	return nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s, ok := r.s.subjects[id]; ok {
		return copySubject(s), nil
	}
	return nil, apperrors.ErrSubjectNotFound
}

func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*models.Subject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s := r.byCode(code); s != nil {
		return copySubject(s), nil
	}
	return nil, apperrors.ErrSubjectNotFound
}

func (r *SubjectRepository) ListActiveBySemesters(ctx context.Context, semesterIDs []uuid.UUID) ([]*models.Subject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[uuid.UUID]bool, len(semesterIDs))
	for _, id := range semesterIDs {
		wanted[id] = true
	}
	subjects := []*models.Subject{}
	for _, s := range r.s.subjects {
		if s.IsActive && wanted[s.SemesterID] {
			subjects = append(subjects, copySubject(s))
		}
	}
	sortByName(subjects, func(s *models.Subject) string { return s.Name })
	return subjects, nil
}

func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.subjects[subject.ID]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	if _, ok := r.s.semesters[subject.SemesterID]; !ok {
		return apperrors.ErrSemesterNotFound
	}
	if other := r.byCode(subject.Code); other != nil && other.ID != subject.ID {
		return apperrors.ErrSubjectAlreadyExists
	}
	subject.CreatedAt = existing.CreatedAt
	subject.UpdatedAt = r.s.tick()
	r.s.subjects[subject.ID] = copySubject(subject)
	return nil
}

func (r *SubjectRepository) UpdateImageByCode(ctx context.Context, code, imageURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s := r.byCode(code)
	if s == nil {
		return apperrors.ErrSubjectNotFound
	}
	s.ImageURL = &imageURL
	s.UpdatedAt = r.s.tick()
	return nil
}

func (r *SubjectRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.subjects[id]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	s.IsActive = active
	s.UpdatedAt = r.s.tick()
	return nil
}
