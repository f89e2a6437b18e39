package main

import (
	"context"
	"errors"
	"flag"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	pginfra "github.com/oksasatya/go-user-registration/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	name := flag.String("name", "Demo User", "display name")
	email := flag.String("email", "demo@example.com", "login email")
	password := flag.String("password", "Password123!", "plain password")
	active := flag.Bool("active", true, "activate immediately instead of waiting for the worker")
	flag.Parse()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	in, err := validation.CreateUser(entity.CreateUserInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		if appErr, ok := apperror.As(err); ok {
			logger.WithField("fields", appErr.Fields).Fatal("invalid seed user")
		}
		logger.WithError(err).Fatal("invalid seed user")
	}

	hash, err := helpers.NewBcryptHasher(0).Hash(in.Password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}
	in.Password = hash

	users := pginfra.NewUserRepository(pool)
	u, err := users.CreateInTransaction(ctx, in)
	switch {
	case errors.Is(err, apperror.ErrEmailAlreadyExists):
		u, err = users.FindByEmail(ctx, in.Email)
		if err != nil {
			logger.WithError(err).Fatal("failed to load existing seed user")
		}
		logger.WithField("id", u.ID).Info("seed user already present")
	case err != nil:
		logger.WithError(err).Fatal("failed to seed user")
	default:
		logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email}).Info("seeded user")
	}

	if *active {
		if err := users.UpdateStatus(ctx, u.ID, true); err != nil {
			logger.WithError(err).Fatal("failed to activate seed user")
		}
		logger.WithField("id", u.ID).Info("seed user active")
	}
}
