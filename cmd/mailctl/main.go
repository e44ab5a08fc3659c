// cmd/mailctl/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/unclebandit/mailtrack-backend/internal/config"
	"github.com/unclebandit/mailtrack-backend/internal/db"
	"github.com/unclebandit/mailtrack-backend/internal/logger"
	"github.com/unclebandit/mailtrack-backend/internal/repository"
	"github.com/unclebandit/mailtrack-backend/internal/service"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mailctl",
		Usage: "administer the mail tracking database",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations",
				Action: withDB(migrate),
			},
			{
				Name:  "seed",
				Usage: "create default settings, then run optional SQL seed files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "sql", Usage: "SQL file to execute after the defaults"},
				},
				Action: withDB(seed),
			},
			{
				Name:  "staff",
				Usage: "manage staff accounts",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "create a staff account",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Required: true},
							&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"MAILCTL_PASSWORD"}},
						},
						Action: withDB(addStaff),
					},
				},
			},
			{
				Name:  "sessions",
				Usage: "manage staff sessions",
				Subcommands: []*cli.Command{
					{
						Name:   "prune",
						Usage:  "delete expired sessions",
						Action: withDB(pruneSessions),
					},
				},
			},
		},
	}
}

type env struct {
	cfg *config.Config
	db  *sql.DB
	log logger.Logger
}

func withDB(fn func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.StringSlice("env-file")...)
		if err != nil {
			return err
		}
		lggr, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer lggr.Sync()

		conn, err := db.Open(c.Context, cfg.Database.DSN())
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(c, &env{cfg: cfg, db: conn, log: lggr.Named("mailctl")})
	}
}

func migrate(c *cli.Context, e *env) error {
	if err := db.Migrate(c.Context, e.db); err != nil {
		return err
	}
	e.log.Infow("Migrations applied")
	return nil
}

func seed(c *cli.Context, e *env) error {
	svc := &service.SettingService{SettingRepo: &repository.SettingRepository{DB: e.db}}
	if err := svc.Seed(c.Context); err != nil {
		return err
	}
	e.log.Infow("Default settings ensured", "count", len(service.DefaultSettings))

	for _, file := range c.StringSlice("sql") {
		if err := execFile(c.Context, e.db, file); err != nil {
			return err
		}
		e.log.Infow("Seed file applied", "file", file)
	}
	return nil
}

func execFile(ctx context.Context, conn *sql.DB, file string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if _, err := conn.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute %s: %w", file, err)
	}
	return nil
}

func addStaff(c *cli.Context, e *env) error {
	svc := &service.AuthService{
		StaffRepo:   &repository.StaffRepository{DB: e.db},
		SessionRepo: &repository.SessionRepository{DB: e.db},
	}
	staff, err := svc.CreateStaff(c.Context, service.Credentials{
		Email:    c.String("email"),
		Password: c.String("password"),
	})
	if err != nil {
		return err
	}
	e.log.Infow("Staff created", "id", staff.ID, "email", staff.Email)
	return nil
}

func pruneSessions(c *cli.Context, e *env) error {
	svc := &service.AuthService{SessionRepo: &repository.SessionRepository{DB: e.db}}
	n, err := svc.PruneSessions(c.Context)
	if err != nil {
		return err
	}
	e.log.Infow("Expired sessions deleted", "count", n)
	return nil
}
