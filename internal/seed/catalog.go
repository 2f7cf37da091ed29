package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yigit/educareway/internal/pkg/validation"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the declarative description of courses, semesters, subjects and video links
type Catalog struct {
	Courses []CourseSpec `yaml:"courses"`
}

// CourseSpec is keyed by Code
type CourseSpec struct {
	Code           string         `yaml:"code"`
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description"`
	ImageURL       string         `yaml:"image_url"`
	TotalSemesters int            `yaml:"total_semesters"`
	Semesters      []SemesterSpec `yaml:"semesters"`
}

// SemesterSpec is keyed by (course, Number)
type SemesterSpec struct {
	Number   int           `yaml:"number"`
	Name     string        `yaml:"name"`
	Subjects []SubjectSpec `yaml:"subjects"`
}

// SubjectSpec is keyed by Code
type SubjectSpec struct {
	Code        string      `yaml:"code"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	ImageURL    string      `yaml:"image_url"`
	Videos      []VideoSpec `yaml:"videos"`
}

// VideoSpec is keyed by (subject, URL)
type VideoSpec struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	UnitNumber  *int   `yaml:"unit_number"`
}

// DefaultCatalog returns the catalog compiled into the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file. An empty path selects the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	catalog := &Catalog{}
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate checks codes, semester ranges and URLs, and that natural keys are unique
func (c *Catalog) Validate() error {
	var errs []error
	courseCodes := map[string]bool{}
	subjectCodes := map[string]bool{}

	for _, course := range c.Courses {
		if !validation.IsValidCatalogCode(course.Code) {
			errs = append(errs, fmt.Errorf("course %q: invalid code", course.Code))
		}
		if strings.TrimSpace(course.Name) == "" {
			errs = append(errs, fmt.Errorf("course %q: name is required", course.Code))
		}
		if courseCodes[course.Code] {
			errs = append(errs, fmt.Errorf("course %q: duplicate code", course.Code))
		}
		courseCodes[course.Code] = true

		numbers := map[int]bool{}
		for _, sem := range course.Semesters {
			if sem.Number < 1 || (course.TotalSemesters > 0 && sem.Number > course.TotalSemesters) {
				errs = append(errs, fmt.Errorf("course %q: semester %d out of range", course.Code, sem.Number))
			}
			if numbers[sem.Number] {
				errs = append(errs, fmt.Errorf("course %q: duplicate semester %d", course.Code, sem.Number))
			}
			numbers[sem.Number] = true

			for _, subject := range sem.Subjects {
				if !validation.IsValidCatalogCode(subject.Code) {
					errs = append(errs, fmt.Errorf("subject %q: invalid code", subject.Code))
				}
				if strings.TrimSpace(subject.Name) == "" {
					errs = append(errs, fmt.Errorf("subject %q: name is required", subject.Code))
				}
				if subjectCodes[subject.Code] {
					errs = append(errs, fmt.Errorf("subject %q: duplicate code", subject.Code))
				}
				subjectCodes[subject.Code] = true

				for _, video := range subject.Videos {
					if strings.TrimSpace(video.Title) == "" {
						errs = append(errs, fmt.Errorf("subject %q: video title is required", subject.Code))
					}
					if !validation.IsHTTPURL(video.URL) {
						errs = append(errs, fmt.Errorf("subject %q: invalid video url %q", subject.Code, video.URL))
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}
