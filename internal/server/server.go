package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campushub/backend/config"
	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/db"
	"github.com/campushub/backend/internal/handlers"
	"github.com/campushub/backend/internal/mq"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/services"
	"github.com/campushub/backend/internal/storage"
	"github.com/campushub/backend/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	articleRepo := store.NewArticleRepository(dbConn)
	lessonRepo := store.NewLessonRepository(dbConn)

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	codec := auth.NewTokenCodec([]byte(jwtSecret), nil)
	sessions := auth.NewSessionManager(codec, auth.DefaultSessionTTL, cfg.IsProduction())
	gate := auth.NewAuthenticator(codec, userRepo)

	queue, notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userService := services.NewUserService(userRepo, hasher)
	passwordService := services.NewPasswordService(
		userRepo,
		hasher,
		codec,
		notifier,
		services.DefaultResetTTL,
		cfg.Notify.ResetBaseURL,
	)
	articleService := services.NewArticleService(articleRepo)
	lessonService := services.NewLessonService(lessonRepo)

	uploads, err := buildUploads(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(userService, passwordService, sessions)
	userHandler := handlers.NewUserHandler(userService)
	articleHandler := handlers.NewArticleHandler(articleService, uploads)
	lessonHandler := handlers.NewLessonHandler(lessonService, uploads)
	fileHandler := handlers.NewFileHandler(uploads)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, authHandler, gate)
		handlers.UserRouter(r, userHandler, gate)
		handlers.ArticleRouter(r, articleHandler, gate)
		handlers.LessonRouter(r, lessonHandler, gate)
		handlers.FileRouter(r, fileHandler, gate)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
	}, nil
}

func buildNotifier(ctx context.Context, cfg config.Config) (*mq.MQ, notify.Notifier, error) {
	var backend mq.Backend
	var err error

	switch cfg.MQ.Backend {
	case "rabbitmq":
		backend, err = mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
	case "pubsub":
		backend, err = mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
	case "":
		return nil, notify.NewLogNotifier(), nil
	default:
		return nil, nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	queue := mq.New(backend)
	return queue, notify.NewMQNotifier(queue, cfg.Notify.Channel, cfg.Notify.FromAddress), nil
}

func buildUploads(ctx context.Context, cfg config.Config) (*handlers.UploadHelper, error) {
	var backend storage.ObjectStorage
	var err error

	switch cfg.Storage.Backend {
	case "minio":
		backend, err = storage.NewMinioClient(cfg.Storage.Minio)
	case "gcs":
		backend, err = storage.NewGCSClient(ctx, cfg.Storage.GCS)
	case "":
		return handlers.NewUploadHelper(nil), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	objectStore := storage.NewStorage(backend)
	if err := objectStore.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return handlers.NewUploadHelper(objectStore), nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	return s.httpServer.Close()
}
