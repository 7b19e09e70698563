package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/config"
	"github.com/assignment-evaluator/backend/internal/delivery/httpd"
	"github.com/assignment-evaluator/backend/internal/repository"
	"github.com/assignment-evaluator/backend/internal/service"
	"github.com/assignment-evaluator/backend/internal/service/integration"
)

type App struct {
	server    *http.Server
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	publisher integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	// Блобы: два бакета на одном подключении.
	minioRepo, err := repository.NewMinIORepository(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.Storage.Region,
		cfg.MinIO.UseSSL,
		cfg.MinIO.Timeout,
		[]string{cfg.Storage.AssignmentsBucket, cfg.Storage.SubmissionsBucket},
		log,
	)
	if err != nil {
		return nil, err
	}

	// Репозитории
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	pinger := repository.NewPostgresRepository(db, log)

	// Брокер событий опционален: без него lifecycle-события просто не шлются.
	var publisher integration.EventPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = integration.NewEventPublisher(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.RoutingKey,
			cfg.RabbitMQ.QueueName,
			log,
		)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable; lifecycle events disabled")
			publisher = nil
		}
	}

	// Сервисы
	submissionService := service.NewSubmissionService(
		submissionRepo,
		assignmentRepo,
		minioRepo,
		cfg.Storage.SubmissionsBucket,
		cfg.Policy,
		publisher,
		log,
	)

	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		submissionRepo,
		minioRepo,
		cfg.Storage.AssignmentsBucket,
		cfg.Storage.SubmissionsBucket,
		log,
	)

	dashboardService := service.NewDashboardService(assignmentRepo, submissionRepo, log)
	authService := service.NewAuthService(userRepo, log)

	// Обработчики
	handler := httpd.NewHandler(
		submissionService,
		assignmentService,
		dashboardService,
		authService,
		pinger,
		cfg.Server.MaxUploadSize,
		log,
	)

	// Роутер и middleware
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:    server,
		logger:    log,
		config:    cfg,
		db:        db,
		publisher: publisher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting assignment evaluator on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down assignment evaluator...")

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return a.server.Shutdown(ctx)
}
