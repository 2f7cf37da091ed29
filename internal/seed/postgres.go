package seed

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/repositories"
	"github.com/yigit/educareway/internal/db"
)

// RunInTransaction applies catalog atomically: either every row is written or none.
func RunInTransaction(ctx context.Context, database *db.PostgresDB, catalog *Catalog, lgr zerolog.Logger) (*Result, error) {
	var result *Result
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repos := repositories.NewRepositories(tx)
		seeder := NewSeeder(repos.CourseRepository, repos.SemesterRepository, repos.SubjectRepository, repos.ResourceRepository, lgr)
		var err error
		result, err = seeder.Run(ctx, catalog)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
