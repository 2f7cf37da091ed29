// Package seed applies the declarative course catalog.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/helpers"
)

// Result counts what a run wrote
type Result struct {
	Courses       int `json:"courses"`
	Semesters     int `json:"semesters"`
	Subjects      int `json:"subjects"`
	VideosCreated int `json:"videosCreated"`
	VideosSkipped int `json:"videosSkipped"`
}

// Seeder upserts a catalog through the repositories
type Seeder struct {
	courses   repositories.ICourseRepository
	semesters repositories.ISemesterRepository
	subjects  repositories.ISubjectRepository
	resources repositories.IResourceRepository
	logger    zerolog.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(
	courses repositories.ICourseRepository,
	semesters repositories.ISemesterRepository,
	subjects repositories.ISubjectRepository,
	resources repositories.IResourceRepository,
	logger zerolog.Logger,
) *Seeder {
	return &Seeder{
		courses:   courses,
		semesters: semesters,
		subjects:  subjects,
		resources: resources,
		logger:    logger,
	}
}

// Run upserts every course, semester and subject and adds the videos not yet
// linked to their subject. Nothing is deleted.
func (s *Seeder) Run(ctx context.Context, catalog *Catalog) (*Result, error) {
	result := &Result{}

	for _, cs := range catalog.Courses {
		total := cs.TotalSemesters
		if total <= 0 {
			total = models.DefaultTotalSemesters
		}
		course := &models.Course{
			Name:           cs.Name,
			Code:           cs.Code,
			Description:    helpers.NilIfEmpty(cs.Description),
			ImageURL:       helpers.NilIfEmpty(cs.ImageURL),
			TotalSemesters: total,
			IsActive:       true,
		}
		if err := s.courses.Upsert(ctx, course); err != nil {
			return result, fmt.Errorf("course %s: %w", cs.Code, err)
		}
		result.Courses++

		for _, ss := range cs.Semesters {
			name := ss.Name
			if name == "" {
				name = fmt.Sprintf("Semester %d", ss.Number)
			}
			semester := &models.Semester{
				CourseID:       course.ID,
				SemesterNumber: ss.Number,
				Name:           name,
				IsActive:       true,
			}
			if err := s.semesters.Upsert(ctx, semester); err != nil {
				return result, fmt.Errorf("course %s semester %d: %w", cs.Code, ss.Number, err)
			}
			result.Semesters++

			for _, sub := range ss.Subjects {
				if err := s.seedSubject(ctx, semester.ID, sub, result); err != nil {
					return result, err
				}
			}
		}
	}

	s.logger.Info().
		Int("courses", result.Courses).
		Int("semesters", result.Semesters).
		Int("subjects", result.Subjects).
		Int("videosCreated", result.VideosCreated).
		Int("videosSkipped", result.VideosSkipped).
		Msg("Catalog seeded")
	return result, nil
}

func (s *Seeder) seedSubject(ctx context.Context, semesterID uuid.UUID, spec SubjectSpec, result *Result) error {
	subject := &models.Subject{
		SemesterID:  semesterID,
		Name:        spec.Name,
		Code:        spec.Code,
		Description: helpers.NilIfEmpty(spec.Description),
		ImageURL:    helpers.NilIfEmpty(spec.ImageURL),
		IsActive:    true,
	}
	if err := s.subjects.Upsert(ctx, subject); err != nil {
		return fmt.Errorf("subject %s: %w", spec.Code, err)
	}
	result.Subjects++

	for _, v := range spec.Videos {
		exists, err := s.resources.ExistsByURL(ctx, subject.ID, v.URL)
		if err != nil {
			return fmt.Errorf("subject %s video %s: %w", spec.Code, v.URL, err)
		}
		if exists {
			result.VideosSkipped++
			continue
		}

		url := v.URL
		video := &models.Resource{
			SubjectID:   subject.ID,
			Title:       v.Title,
			Category:    models.CategoryVideo,
			MediaKind:   models.MediaVideoURL,
			ExternalURL: &url,
			UnitNumber:  v.UnitNumber,
			Description: helpers.NilIfEmpty(v.Description),
			IsActive:    true,
		}
		if err := s.resources.Create(ctx, video); err != nil {
			return fmt.Errorf("subject %s video %s: %w", spec.Code, v.URL, err)
		}
		result.VideosCreated++
	}
	return nil
}
