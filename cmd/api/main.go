package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Suhailakram0318/AI-call/internal/auth"
	"github.com/Suhailakram0318/AI-call/internal/bland"
	"github.com/Suhailakram0318/AI-call/internal/config"
	"github.com/Suhailakram0318/AI-call/internal/gemini"
	"github.com/Suhailakram0318/AI-call/internal/httpapi"
	"github.com/Suhailakram0318/AI-call/internal/pipeline"
	"github.com/Suhailakram0318/AI-call/internal/records"
	"github.com/Suhailakram0318/AI-call/internal/reminder"
	"github.com/Suhailakram0318/AI-call/internal/reporting"
	"github.com/Suhailakram0318/AI-call/pkg/logger"
	"github.com/Suhailakram0318/AI-call/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var authManager *auth.Manager
	if cfg.Auth.JWTSecret != "" {
		authManager, err = auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Warn("JWT_SECRET unset, API endpoints are unauthenticated")
	}

	var store records.Store = records.NewMemoryStore()
	if dsn := cfg.PostgresDSN(); dsn != "" {
		db, err := utils.OpenPostgres(rootCtx, "pgx", dsn, utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		store = records.NewPostgresStore(db)
	} else {
		log.Warn("DB_HOST unset, call records are in-memory only")
	}

	var rdb *redis.Client
	var cache *records.StatusCache
	if addr := cfg.RedisAddr(); addr != "" {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: addr})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cache = records.NewStatusCache(rdb, 0)
	}

	sched := reminder.NewScheduler(cfg.Dialer.ReminderWorkers, log)
	defer sched.Stop()

	var mailer reminder.Mailer
	if cfg.SMTP.Host != "" {
		mailer = reminder.NewSMTPMailer(cfg.SMTP)
	} else {
		log.Warn("SMTP_SERVER unset, reminder emails are disabled")
		mailer = reminder.NopMailer{}
	}
	reminders := reminder.NewService(sched, mailer, cfg.Reminder, log)

	dialer := bland.NewClient(cfg.Bland, log)
	poller := bland.NewPoller(dialer, cfg.Dialer.PollInterval, cfg.Dialer.PollTimeout, log)
	analyzer := gemini.NewClient(cfg.Gemini, log)

	p := pipeline.New(pipeline.Deps{
		Dialer:    dialer,
		Getter:    dialer,
		Poller:    poller,
		Analyzer:  analyzer,
		Reminders: reminders,
		Store:     store,
		Cache:     cache,
		Log:       log,
	})
	p.BulkDelay = cfg.Dialer.BulkCallDelay
	p.MaxConcurrent = cfg.Dialer.MaxConcurrentCalls
	p.RDB = rdb

	h := httpapi.Handlers{
		Calls:   p,
		Store:   store,
		Reports: reporting.NewService(store),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h, authManager)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
