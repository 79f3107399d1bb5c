// Command seed creates the admin account.  Existing ADMIN rows are replaced
// in the same transaction, so a failed run keeps the previous admin.
package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/course-stream/internal/app"
	"github.com/iliyamo/course-stream/internal/config"
	"github.com/iliyamo/course-stream/internal/database"
	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/repository"
)

func main() {
	cfg := config.Load()
	log := app.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	email := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrator(db, log)
	if err != nil {
		log.Fatal("init migrator", zap.Error(err))
	}
	if err := m.Run(ctx); err != nil {
		log.Fatal("run migrations", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	id, n, err := users.ReplaceRole(ctx, email, password, model.RoleAdmin, cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		log.Fatal("email already belongs to a non-admin account", zap.String("email", email))
	}
	if err != nil {
		log.Fatal("replace admin", zap.Error(err))
	}
	log.Info("admin seeded", zap.String("id", id), zap.String("email", email), zap.Int64("replaced", n))
}
