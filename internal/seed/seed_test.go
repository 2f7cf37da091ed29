package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/app/models"
	"github.com/yigit/educareway/internal/app/repositories/inmem"
)

func newSeeder(store *inmem.Store) *Seeder {
	return NewSeeder(store.Courses, store.Semesters, store.Subjects, store.Resources, zerolog.Nop())
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	codes := make([]string, 0, len(catalog.Courses))
	for _, c := range catalog.Courses {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"MCA", "BTECH", "BTECH-INT"}, codes)

	mca := catalog.Courses[0]
	require.Len(t, mca.Semesters, 3)

	var subjects []string
	for _, sem := range mca.Semesters {
		for _, sub := range sem.Subjects {
			subjects = append(subjects, sub.Code)
		}
	}
	assert.Equal(t, []string{
		"DSA", "CN", "OS", "DBMS", "WT", "JAVA",
		"PYTHON", "SE", "MAD", "STATS", "AWD",
		"AI", "ML", "CLOUD", "CYBER", "ASP",
	}, subjects)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	seeder := newSeeder(store)
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	first, err := seeder.Run(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Courses)
	assert.Equal(t, 3, first.Semesters)
	assert.Equal(t, 16, first.Subjects)
	assert.Equal(t, 17, first.VideosCreated)
	assert.Zero(t, first.VideosSkipped)

	_, courses, semesters, subjects, resources := store.Counts()

	second, err := seeder.Run(ctx, catalog)
	require.NoError(t, err)
	assert.Zero(t, second.VideosCreated)
	assert.Equal(t, 17, second.VideosSkipped)

	_, courses2, semesters2, subjects2, resources2 := store.Counts()
	assert.Equal(t, []int{courses, semesters, subjects, resources}, []int{courses2, semesters2, subjects2, resources2})
	assert.Equal(t, []int{3, 3, 16, 17}, []int{courses2, semesters2, subjects2, resources2})
}

func TestSeededVideosAreListed(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	_, err = newSeeder(store).Run(ctx, catalog)
	require.NoError(t, err)

	cn, err := store.Subjects.GetByCode(ctx, "CN")
	require.NoError(t, err)

	video := models.CategoryVideo
	videos, err := store.Resources.ListBySubject(ctx, cn.ID, &video)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	for _, v := range videos {
		assert.Equal(t, models.MediaVideoURL, v.MediaKind)
		require.NotNil(t, v.ExternalURL)
		assert.Empty(t, v.FileData)
	}
}

func TestSeedDefaultsMissingSemesterData(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	catalog, err := ParseCatalog([]byte(`
courses:
  - code: MSC
    name: Master of Science
    semesters:
      - number: 2
`))
	require.NoError(t, err)

	_, err = newSeeder(store).Run(ctx, catalog)
	require.NoError(t, err)

	course, err := store.Courses.GetByCode(ctx, "MSC")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTotalSemesters, course.TotalSemesters)

	semesters, err := store.Semesters.ListActiveByCourses(ctx, []uuid.UUID{course.ID})
	require.NoError(t, err)
	require.Len(t, semesters, 1)
	assert.Equal(t, "Semester 2", semesters[0].Name)
}

func TestCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "lower case code",
			yaml: "courses:\n  - code: mca\n    name: MCA\n",
			want: "invalid code",
		},
		{
			name: "duplicate subject",
			yaml: "courses:\n  - code: MCA\n    name: MCA\n    semesters:\n      - number: 1\n        subjects:\n          - {code: DSA, name: A}\n          - {code: DSA, name: B}\n",
			want: "duplicate code",
		},
		{
			name: "semester out of range",
			yaml: "courses:\n  - code: MCA\n    name: MCA\n    total_semesters: 2\n    semesters:\n      - number: 3\n",
			want: "out of range",
		},
		{
			name: "bad video url",
			yaml: "courses:\n  - code: MCA\n    name: MCA\n    semesters:\n      - number: 1\n        subjects:\n          - code: DSA\n            name: DSA\n            videos:\n              - {title: Intro, url: not-a-url}\n",
			want: "invalid video url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("courses:\n  - code: MBA\n    name: Master of Business Administration\n"), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.Courses, 1)
	assert.Equal(t, "MBA", catalog.Courses[0].Code)

	catalog, err = LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, catalog.Courses, 3)
}
