package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/course-stream/internal/app"
	"github.com/iliyamo/course-stream/internal/config"
	"github.com/iliyamo/course-stream/internal/database"
	"github.com/iliyamo/course-stream/internal/handler"
	"github.com/iliyamo/course-stream/internal/middleware"
	"github.com/iliyamo/course-stream/internal/queue"
	"github.com/iliyamo/course-stream/internal/repository"
	"github.com/iliyamo/course-stream/internal/router"
	"github.com/iliyamo/course-stream/internal/service"
	"github.com/iliyamo/course-stream/internal/stream"
)

func main() {
	cfg := config.Load()
	log := app.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrationsAuto {
		m, err := database.NewMigrator(db, log)
		if err != nil {
			log.Fatal("init migrator", zap.Error(err))
		}
		if err := m.Run(ctx); err != nil {
			log.Fatal("run migrations", zap.Error(err))
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable, rate limiting and module cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	issuer, err := stream.NewIssuer(cfg.Stream)
	if err != nil {
		log.Fatal("init grant issuer", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	courses := repository.NewCourseRepo(db)
	enrollments := repository.NewEnrollmentRepo(db)
	modules := repository.NewCachedModuleRepo(repository.NewModuleRepo(db), rdb, config.LoadModuleCacheConfig(), log)
	authz := service.NewEnrollmentAuthorizer(modules, enrollments, courses)

	auditCfg := config.LoadAuditConfig()
	var sink queue.Sink = queue.Discard{}
	if auditCfg.Enabled {
		pub := queue.NewPublisher(auditCfg.URL, log)
		defer pub.Close()
		sink = pub
	}
	audit := queue.NewDispatcher(sink, 1024, 5*time.Second, log)
	if auditCfg.Consumer {
		consumer := queue.NewConsumer(auditCfg.URL, auditCfg.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	loginLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig("login", 10, time.Minute, "ip"), rdb, log)
	viewLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig("view", 30, time.Minute, "user"), rdb, log)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTL(), log), loginLimit)
	router.RegisterStudent(e, handler.NewStudentHandler(authz, issuer, audit, courses, users, log), cfg.JWTSecret, viewLimit)
	router.RegisterAdmin(e, handler.NewAdminHandler(enrollments, users, log), cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("stream_host", issuer.Host()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	// handlers are done; deliver what they queued
	if err := audit.Close(shutdownCtx); err != nil {
		log.Error("audit drain", zap.Error(err))
	}
}
