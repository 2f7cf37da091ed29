// Package ingest bulk loads note files from a directory tree. Each top level
// folder holds the files of one subject.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/pkg/apperrors"
	"github.com/yigit/educareway/internal/pkg/filestorage"
)

// File outcomes
const (
	StatusUploaded    = "uploaded"
	StatusWouldUpload = "would-upload"
	StatusSkipped     = "skipped"
	StatusFailed      = "failed"
)

// Options configures a run
type Options struct {
	// Root holds one folder per subject
	Root string
	// Mapping overrides the subject code of a folder. Unmapped folders use
	// their upper cased name.
	Mapping map[string]string
	// DryRun reports what would be uploaded without writing
	DryRun bool
}

// FileResult is the outcome of a single file
type FileResult struct {
	Path        string `json:"path"`
	SubjectCode string `json:"subjectCode"`
	Title       string `json:"title"`
	UnitNumber  *int   `json:"unitNumber,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

// Report summarises a run
type Report struct {
	Processed int          `json:"processed"`
	Uploaded  int          `json:"uploaded"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Folders   []string     `json:"skippedFolders,omitempty"`
	Files     []FileResult `json:"files"`
}

func (r *Report) add(fr FileResult) {
	r.Processed++
	switch fr.Status {
	case StatusUploaded, StatusWouldUpload:
		r.Uploaded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
	r.Files = append(r.Files, fr)
}

// Ingester stores note files as resources
type Ingester struct {
	subjects  repositories.ISubjectRepository
	resources repositories.IResourceRepository
	reader    filestorage.UploadReader
	logger    zerolog.Logger
}

// NewIngester creates a new Ingester
func NewIngester(
	subjects repositories.ISubjectRepository,
	resources repositories.IResourceRepository,
	reader filestorage.UploadReader,
	logger zerolog.Logger,
) *Ingester {
	return &Ingester{
		subjects:  subjects,
		resources: resources,
		reader:    reader,
		logger:    logger,
	}
}

// ParseMapping reads CODE=FOLDER pairs
func ParseMapping(pairs []string) (map[string]string, error) {
	mapping := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		code, folder, ok := strings.Cut(pair, "=")
		code, folder = strings.TrimSpace(code), strings.TrimSpace(folder)
		if !ok || code == "" || folder == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected CODE=FOLDER", pair)
		}
		mapping[folder] = strings.ToUpper(code)
	}
	return mapping, nil
}

func (o Options) subjectCode(folder string) string {
	if code, ok := o.Mapping[folder]; ok {
		return code
	}
	return strings.ToUpper(folder)
}

// Run walks opts.Root. Files already stored for their subject under the same
// file name are skipped, so a run can be repeated safely. A missing subject
// skips its folder; per file failures are reported and do not stop the run.
func (i *Ingester) Run(ctx context.Context, opts Options) (*Report, error) {
	entries, err := os.ReadDir(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes directory: %w", err)
	}

	report := &Report{Files: []FileResult{}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		folder := entry.Name()
		code := opts.subjectCode(folder)
		subject, err := i.subjects.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, apperrors.ErrSubjectNotFound) {
				i.logger.Warn().Str("folder", folder).Str("subjectCode", code).Msg("Subject not found, skipping folder")
				report.Folders = append(report.Folders, folder)
				continue
			}
			return report, fmt.Errorf("subject %s: %w", code, err)
		}
		if !subject.IsActive {
			i.logger.Warn().Str("folder", folder).Str("subjectCode", code).Msg("Subject is inactive, skipping folder")
			report.Folders = append(report.Folders, folder)
			continue
		}

		files, err := collectFiles(filepath.Join(opts.Root, folder))
		if err != nil {
			return report, err
		}
		i.logger.Info().Str("folder", folder).Str("subjectCode", code).Int("files", len(files)).Msg("Processing subject folder")

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			rel, err := filepath.Rel(opts.Root, path)
			if err != nil {
				rel = path
			}
			fr, err := i.ingestFile(ctx, subject, path, rel, opts.DryRun)
			if err != nil {
				return report, err
			}
			report.add(fr)
		}
	}

	i.logger.Info().
		Int("processed", report.Processed).
		Int("uploaded", report.Uploaded).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Bool("dryRun", opts.DryRun).
		Msg("Notes ingestion finished")
	return report, nil
}

// collectFiles returns the note files below dir in lexical order
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsNoteFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// ingestFile returns an error only for repository failures; file problems are
// reported in the result.
func (i *Ingester) ingestFile(ctx context.Context, subject *models.Subject, path, rel string, dryRun bool) (FileResult, error) {
	fileName := filepath.Base(path)
	unit := ExtractUnitNumber(rel)
	fr := FileResult{
		Path:        rel,
		SubjectCode: subject.Code,
		Title:       GenerateTitle(fileName),
		UnitNumber:  unit,
	}

	exists, err := i.resources.ExistsByFileName(ctx, subject.ID, fileName)
	if err != nil {
		return fr, fmt.Errorf("checking %s: %w", rel, err)
	}
	if exists {
		fr.Status = StatusSkipped
		fr.Reason = "already exists"
		return fr, nil
	}

	info, err := i.reader.ReadLocalFile(path)
	if err != nil {
		i.logger.Warn().Err(err).Str("path", rel).Msg("Rejected note file")
		fr.Status = StatusFailed
		fr.Reason = err.Error()
		return fr, nil
	}

	if dryRun {
		fr.Status = StatusWouldUpload
		return fr, nil
	}

	name, mime, size := info.Filename, info.MimeType, info.FileSize
	description := Description(unit)
	res := &models.Resource{
		SubjectID:   subject.ID,
		Title:       fr.Title,
		Category:    models.CategoryNotes,
		MediaKind:   models.MediaKind(info.Kind),
		FileData:    info.Data,
		FileName:    &name,
		FileSize:    &size,
		MimeType:    &mime,
		UnitNumber:  unit,
		Description: &description,
		IsActive:    true,
	}
	if err := i.resources.Create(ctx, res); err != nil {
		return fr, fmt.Errorf("storing %s: %w", rel, err)
	}

	i.logger.Info().Str("path", rel).Str("title", fr.Title).Int64("size", size).Msg("Uploaded note")
	fr.Status = StatusUploaded
	return fr, nil
}
