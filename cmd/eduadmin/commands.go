package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	appMigrations "github.com/yigit/educareway/internal/app/migrations"
	appServices "github.com/yigit/educareway/internal/app/services"
	"github.com/yigit/educareway/internal/bootstrap"
	"github.com/yigit/educareway/internal/config"
	"github.com/yigit/educareway/internal/db"
	"github.com/yigit/educareway/internal/ingest"
	"github.com/yigit/educareway/internal/pkg/filestorage"
	"github.com/yigit/educareway/internal/pkg/push"
	"github.com/yigit/educareway/internal/pkg/validation"
	"github.com/yigit/educareway/internal/seed"
)

// runtime is what a database backed command receives
type runtime struct {
	cfg    *config.Config
	db     *db.PostgresDB
	stores bootstrap.Stores
	logger zerolog.Logger
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "eduadmin",
		Usage:     "operator tasks for the EduCareWay API",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"EDUCAREWAY_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			ingestCommand(),
			makeAdminCommand(),
			listUsersCommand(),
			setSubjectImageCommand(),
			notifyCommand(),
			devTokenCommand(),
		},
	}
}

// withDatabase loads the configuration, connects and hands the repositories to fn
func withDatabase(c *cli.Context, fn func(ctx context.Context, rt *runtime) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}

	ctx := c.Context
	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(ctx, &runtime{
		cfg:    cfg,
		db:     database,
		stores: bootstrap.PostgresStores(database.Pool),
		logger: lgr,
	})
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending SQL migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "status", Usage: "list pending migrations without applying them"},
		},
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				if !c.Bool("status") {
					return bootstrap.RunMigrations(ctx, rt.cfg, rt.db, rt.logger)
				}
				pending, err := appMigrations.NewMigrator(rt.db.Pool, rt.logger).Pending(ctx, rt.cfg.Database.MigrationsDir)
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(c.App.Writer, "database is up to date")
					return nil
				}
				for _, m := range pending {
					fmt.Fprintf(c.App.Writer, "pending %s_%s\n", m.Version, m.Name)
				}
				return nil
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "upsert courses, semesters, subjects and videos from a catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "catalog", Usage: "YAML catalog file, the built in catalog when empty"},
		},
		Action: func(c *cli.Context) error {
			catalog, err := seed.LoadCatalog(c.String("catalog"))
			if err != nil {
				return err
			}
			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				result, err := seed.RunInTransaction(ctx, rt.db, catalog, rt.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "courses=%d semesters=%d subjects=%d videos created=%d skipped=%d\n",
					result.Courses, result.Semesters, result.Subjects, result.VideosCreated, result.VideosSkipped)
				return nil
			})
		},
	}
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest-notes",
		Usage: "upload note files, one folder per subject",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "root directory holding the subject folders", Required: true},
			&cli.StringSliceFlag{Name: "map", Usage: "CODE=FOLDER when a folder is not named after its subject code"},
			&cli.BoolFlag{Name: "dry-run", Usage: "report what would be uploaded without writing"},
			&cli.BoolFlag{Name: "json", Usage: "print the full report as JSON"},
		},
		Action: func(c *cli.Context) error {
			mapping, err := ingest.ParseMapping(c.StringSlice("map"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			opts := ingest.Options{Root: c.String("dir"), Mapping: mapping, DryRun: c.Bool("dry-run")}

			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				reader := filestorage.NewMemoryReader(rt.cfg.Server.MaxUploadSize)
				report, err := ingest.NewIngester(rt.stores.Subjects, rt.stores.Resources, reader, rt.logger).Run(ctx, opts)
				if err != nil {
					return err
				}
				return printReport(c.App.Writer, report, c.Bool("json"))
			})
		},
	}
}

func printReport(w io.Writer, report *ingest.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range report.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Status, f.SubjectCode, f.Path, f.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, folder := range report.Folders {
		fmt.Fprintf(w, "skipped folder %s\n", folder)
	}
	fmt.Fprintf(w, "processed=%d uploaded=%d skipped=%d failed=%d\n",
		report.Processed, report.Uploaded, report.Skipped, report.Failed)
	return nil
}

func makeAdminCommand() *cli.Command {
	return &cli.Command{
		Name:      "make-admin",
		Usage:     "grant the admin role to a registered user",
		ArgsUsage: "<email>",
		Action: func(c *cli.Context) error {
			email := strings.TrimSpace(c.Args().First())
			if c.NArg() != 1 || !validation.CompiledPatterns.Email.MatchString(email) {
				return cli.Exit("make-admin takes exactly one email address", 2)
			}
			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				user, err := appServices.NewUserService(rt.stores.Users, rt.logger).MakeAdmin(ctx, email)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s (%s) is now %s\n", user.Email, user.ID, user.Role)
				return nil
			})
		},
	}
}

func listUsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-users",
		Usage: "print every registered user",
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				users, err := appServices.NewUserService(rt.stores.Users, rt.logger).ListUsers(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "EMAIL\tNAME\tROLE\tSTUDENT ID\tCREATED")
				for _, u := range users {
					studentID := "-"
					if u.StudentID != nil {
						studentID = *u.StudentID
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.Email, u.Name, u.Role, studentID, u.CreatedAt.Format("2006-01-02"))
				}
				return tw.Flush()
			})
		},
	}
}

func setSubjectImageCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-subject-image",
		Usage:     "point a subject at a new image",
		ArgsUsage: "<CODE> <URL>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("set-subject-image takes a subject code and an image URL", 2)
			}
			code, imageURL := strings.ToUpper(strings.TrimSpace(c.Args().Get(0))), strings.TrimSpace(c.Args().Get(1))
			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				subjects := appServices.NewSubjectService(rt.stores.Courses, rt.stores.Semesters, rt.stores.Subjects, rt.stores.Resources, rt.logger)
				if err := subjects.SetImageByCode(ctx, code, imageURL); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s image set to %s\n", code, imageURL)
				return nil
			})
		},
	}
}

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "broadcast a push notification to every registered device",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "body", Required: true},
			&cli.StringSliceFlag{Name: "data", Usage: "KEY=VALUE pairs added to the message data"},
		},
		Action: func(c *cli.Context) error {
			data := make(map[string]string)
			for _, pair := range c.StringSlice("data") {
				k, v, ok := strings.Cut(pair, "=")
				if !ok || strings.TrimSpace(k) == "" {
					return cli.Exit(fmt.Sprintf("invalid data pair %q, expected KEY=VALUE", pair), 2)
				}
				data[strings.TrimSpace(k)] = v
			}
			data["type"] = "broadcast"

			return withDatabase(c, func(ctx context.Context, rt *runtime) error {
				providers, err := bootstrap.NewProviders(ctx, rt.cfg, rt.logger)
				if err != nil {
					return err
				}
				svc := bootstrap.NewNotificationService(rt.cfg, rt.stores.Users, providers.Messenger, rt.logger)
				batches, err := svc.SendToAll(ctx, push.Notification{Title: c.String("title"), Body: c.String("body"), Data: data})
				if err != nil {
					return err
				}
				sent, failed := 0, 0
				for _, b := range batches {
					if b == nil {
						continue
					}
					sent += b.SuccessCount
					failed += b.FailureCount
				}
				fmt.Fprintf(c.App.Writer, "batches=%d sent=%d failed=%d\n", len(batches), sent, failed)
				return nil
			})
		},
	}
}

// devTokenCommand prints a token accepted by the API when Firebase is disabled
func devTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "dev-token",
		Usage: "issue a local identity token for development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uid", Required: true},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "name"},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
			if err != nil {
				return err
			}
			if cfg.Firebase.Enabled {
				return cli.Exit("dev-token is only accepted while firebase is disabled", 2)
			}
			token, err := bootstrap.NewDevVerifier(cfg).Issue(c.String("uid"), c.String("email"), c.String("name"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
