package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/educareway/internal/app/models"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so every repository can
// run inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdatePushToken(ctx context.Context, id uuid.UUID, token *string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleType) error

	// Push tokens
	GetPushTokens(ctx context.Context, ids []uuid.UUID) ([]string, error)
	GetAllPushTokens(ctx context.Context) ([]string, error)
}

// ICourseRepository defines the interface for course database operations
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Upsert(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	GetByCode(ctx context.Context, code string) (*models.Course, error)
	ListActive(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ISemesterRepository defines the interface for semester database operations
type ISemesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	Upsert(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Semester, error)
	ListActiveByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]*models.Semester, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ISubjectRepository defines the interface for subject database operations
type ISubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	Upsert(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	GetByCode(ctx context.Context, code string) (*models.Subject, error)
	ListActiveBySemesters(ctx context.Context, semesterIDs []uuid.UUID) ([]*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	UpdateImageByCode(ctx context.Context, code, imageURL string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// IResourceRepository defines the interface for study resource database operations
type IResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	GetWithFile(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID, category *models.ResourceCategory) ([]*models.Resource, error)
	Update(ctx context.Context, resource *models.Resource) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ExistsByFileName(ctx context.Context, subjectID uuid.UUID, fileName string) (bool, error)
	ExistsByURL(ctx context.Context, subjectID uuid.UUID, url string) (bool, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	CourseRepository   *CourseRepository
	SemesterRepository *SemesterRepository
	SubjectRepository  *SubjectRepository
	ResourceRepository *ResourceRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db Querier) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(db),
		CourseRepository:   NewCourseRepository(db),
		SemesterRepository: NewSemesterRepository(db),
		SubjectRepository:  NewSubjectRepository(db),
		ResourceRepository: NewResourceRepository(db),
	}
}

// statementBuilder returns a squirrel builder using postgres placeholders
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
