package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories/inmem"
	"github.com/yigit/educareway/internal/pkg/filestorage"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func newFixture(t *testing.T) (*inmem.Store, *Ingester, string) {
	t.Helper()
	ctx := context.Background()
	store := inmem.New()

	course := &models.Course{Name: "Master of Computer Applications", Code: "MCA", TotalSemesters: 3, IsActive: true}
	require.NoError(t, store.Courses.Create(ctx, course))
	sem := &models.Semester{CourseID: course.ID, SemesterNumber: 1, Name: "Semester 1", IsActive: true}
	require.NoError(t, store.Semesters.Create(ctx, sem))
	for _, code := range []string{"CN", "OS"} {
		require.NoError(t, store.Subjects.Create(ctx, &models.Subject{SemesterID: sem.ID, Name: code, Code: code, IsActive: true}))
	}

	root := t.TempDir()
	writeFile(t, root, "CN/UNIT 1/_$Chap-1_intro_to_networks.pdf", pdfBytes)
	writeFile(t, root, "CN/M2_transport.pdf", pdfBytes)
	writeFile(t, root, "CN/readme.txt", []byte("ignored"))
	writeFile(t, root, "CN/broken.pdf", []byte("not really a pdf"))
	writeFile(t, root, "os/process management.pdf", pdfBytes)
	writeFile(t, root, "XYZ/orphan.pdf", pdfBytes)
	writeFile(t, root, "loose.pdf", pdfBytes)

	ingester := NewIngester(store.Subjects, store.Resources, filestorage.NewMemoryReader(filestorage.DefaultMaxUploadSize), zerolog.Nop())
	return store, ingester, root
}

func TestIngestDryRunWritesNothing(t *testing.T) {
	store, ingester, root := newFixture(t)

	report, err := ingester.Run(context.Background(), Options{Root: root, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 3, report.Uploaded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"XYZ"}, report.Folders)

	_, _, _, _, resources := store.Counts()
	assert.Zero(t, resources)
	for _, f := range report.Files {
		if f.Status != StatusFailed {
			assert.Equal(t, StatusWouldUpload, f.Status)
		}
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	store, ingester, root := newFixture(t)
	ctx := context.Background()

	first, err := ingester.Run(ctx, Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Uploaded)
	assert.Equal(t, 1, first.Failed)
	assert.Zero(t, first.Skipped)

	second, err := ingester.Run(ctx, Options{Root: root})
	require.NoError(t, err)
	assert.Zero(t, second.Uploaded)
	assert.Equal(t, 3, second.Skipped)

	_, _, _, _, resources := store.Counts()
	assert.Equal(t, 3, resources)
}

func TestIngestStoresNotes(t *testing.T) {
	store, ingester, root := newFixture(t)
	ctx := context.Background()

	_, err := ingester.Run(ctx, Options{Root: root})
	require.NoError(t, err)

	cn, err := store.Subjects.GetByCode(ctx, "CN")
	require.NoError(t, err)
	list, err := store.Resources.ListBySubject(ctx, cn.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)

	first := list[0]
	assert.Equal(t, "Intro To Networks", first.Title)
	assert.Equal(t, models.CategoryNotes, first.Category)
	assert.Equal(t, models.MediaKind(filestorage.KindPDF), first.MediaKind)
	require.NotNil(t, first.UnitNumber)
	assert.Equal(t, 1, *first.UnitNumber)
	require.NotNil(t, first.Description)
	assert.Equal(t, "Unit 1 material", *first.Description)
	require.NotNil(t, first.FileName)
	assert.Equal(t, "_$Chap-1_intro_to_networks.pdf", *first.FileName)

	assert.Equal(t, "Transport", list[1].Title)
	require.NotNil(t, list[1].UnitNumber)
	assert.Equal(t, 2, *list[1].UnitNumber)

	full, err := store.Resources.GetWithFile(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, full.FileData)
}

func TestIngestSkipsInactiveSubject(t *testing.T) {
	store, ingester, root := newFixture(t)
	ctx := context.Background()

	osSubject, err := store.Subjects.GetByCode(ctx, "OS")
	require.NoError(t, err)
	require.NoError(t, store.Subjects.SetActive(ctx, osSubject.ID, false))

	report, err := ingester.Run(ctx, Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Uploaded)
	assert.Equal(t, []string{"XYZ", "os"}, report.Folders)

	list, err := store.Resources.ListBySubject(ctx, osSubject.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngestMapping(t *testing.T) {
	store, ingester, root := newFixture(t)
	ctx := context.Background()
	writeFile(t, root, "Operating Systems/deadlocks.pdf", pdfBytes)

	mapping, err := ParseMapping([]string{"OS=Operating Systems"})
	require.NoError(t, err)

	report, err := ingester.Run(ctx, Options{Root: root, Mapping: mapping})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Uploaded)

	osSubject, err := store.Subjects.GetByCode(ctx, "OS")
	require.NoError(t, err)
	list, err := store.Resources.ListBySubject(ctx, osSubject.ID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestParseMappingRejectsMalformedPairs(t *testing.T) {
	_, err := ParseMapping([]string{"CN"})
	assert.Error(t, err)
	_, err = ParseMapping([]string{"=folder"})
	assert.Error(t, err)

	mapping, err := ParseMapping([]string{"cn = Networks"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Networks": "CN"}, mapping)
}

func TestIngestMissingRoot(t *testing.T) {
	_, ingester, root := newFixture(t)
	_, err := ingester.Run(context.Background(), Options{Root: filepath.Join(root, "missing")})
	assert.Error(t, err)
}
