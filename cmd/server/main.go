package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-chat-auth/internal/avatar"
	"go-chat-auth/internal/chat"
	"go-chat-auth/internal/config"
	"go-chat-auth/internal/db"
	"go-chat-auth/internal/logger"
	"go-chat-auth/internal/metrics"
	myMiddleware "go-chat-auth/internal/middleware"
	"go-chat-auth/internal/ratelimit"
	"go-chat-auth/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.AppMode)
	if err != nil {
		_, _ = os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.DotEnvLoaded {
		log.Info("no .env file found, using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. User store
	var store user.Store
	if cfg.DatabaseURL != "" {
		database, err := db.NewDatabase(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		log.Info("connected to postgres")

		if err := db.AutoMigrate(ctx, database.Pool); err != nil {
			return err
		}
		store = user.NewRepository(database.Pool)
	} else {
		log.Warn("DATABASE_URL not set, users are kept in memory")
		store = user.NewMemoryStore()
	}

	// 2. Login limiter
	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		limiter = ratelimit.NewLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
	} else {
		log.Warn("REDIS_ADDR not set, login attempts are not rate limited")
	}

	// 3. Features
	reg, metricsHandler := metrics.NewRegistry()
	m := metrics.New(reg)

	avatars := avatar.NewAssigner(&http.Client{}, cfg.AvatarSourceURL, cfg.AvatarTimeout)
	userService := user.NewService(store, user.NewBcryptHasher(cfg.BcryptCost), avatars, log.Named("user"))
	userHandler := user.NewHandler(userService, log.Named("user"))

	hub := chat.NewHub(log.Named("hub"), m)
	chatHandler := chat.NewHandler(hub, log.Named("ws"))

	// 4. Routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(myMiddleware.ProxyHeaders(cfg.TrustProxy))
	r.Use(myMiddleware.RequestLogger(log.Named("http"), m))
	r.Use(middleware.Recoverer)

	r.Post("/signup", userHandler.Signup)
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(myMiddleware.LoginRateLimit(limiter, log.Named("ratelimit")))
		}
		r.Post("/login", userHandler.Login)
	})
	r.Get("/profile/picture/{username}", userHandler.ProfilePicture)
	r.Get("/ws", chatHandler.ServeWs)
	r.Handle("/metrics", metricsHandler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if hubErr := hub.Shutdown(shutdownTimeout); hubErr != nil {
			log.Warn("hub did not drain in time", zap.Error(hubErr))
		}
		return err
	})

	return g.Wait()
}
