package httpd

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/service"
)

// Pinger — проба живости БД для readiness-эндпоинта.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	submissionService service.SubmissionService
	assignmentService service.AssignmentService
	dashboardService  service.DashboardService
	authService       service.AuthService
	pinger            Pinger
	maxUploadSize     int64
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewHandler(
	submissionService service.SubmissionService,
	assignmentService service.AssignmentService,
	dashboardService service.DashboardService,
	authService service.AuthService,
	pinger Pinger,
	maxUploadSize int64,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		submissionService: submissionService,
		assignmentService: assignmentService,
		dashboardService:  dashboardService,
		authService:       authService,
		pinger:            pinger,
		maxUploadSize:     maxUploadSize,
		validate:          validator.New(),
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	// Health check
	router.Get("/health", h.HealthCheck)
	router.Get("/ready", h.ReadyCheck)

	router.Post("/login", h.Login)

	router.Route("/student/{student_id}", func(r chi.Router) {
		r.Get("/info", h.StudentInfo)
		r.Get("/profile", h.StudentInfo)
		r.Get("/dashboard", h.StudentDashboard)
		r.Get("/assignments", h.StudentAssignments)
		r.Get("/results", h.StudentResults)

		r.Post("/submissions", h.CreateSubmission)
		r.Route("/submission/{submission_id}", func(r chi.Router) {
			r.Put("/", h.ReplaceSubmissionFile)
			r.Delete("/", h.DeleteSubmission)
		})
	})

	router.Route("/teacher", func(r chi.Router) {
		r.Post("/submission/{submission_id}/evaluate", h.EvaluateSubmission)

		r.Route("/{teacher_id}", func(r chi.Router) {
			r.Get("/info", h.TeacherInfo)
			r.Get("/profile", h.TeacherInfo)
			r.Get("/dashboard", h.TeacherDashboard)
			r.Get("/submissions", h.TeacherSubmissions)
			r.Get("/assignment-list", h.TeacherAssignments)

			r.Post("/assignments", h.CreateAssignment)
			r.Route("/assignment/{assignment_id}", func(r chi.Router) {
				r.Put("/", h.UpdateAssignment)
				r.Delete("/", h.DeleteAssignment)
			})
		})
	})

	router.Get("/assignment/{assignment_id}", h.GetAssignment)
	router.Get("/submission/{submission_id}", h.GetSubmission)
}

// handleServiceError переводит таксономию сервисных ошибок в HTTP-статусы.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var storageErr *service.StorageError
	var persistenceErr *service.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.As(err, &storageErr):
		h.logger.Error().Err(err).Msg("Storage error")
		writeError(w, http.StatusInternalServerError, "Failed to store file")
	case errors.As(err, &persistenceErr):
		h.logger.Error().Err(err).Msg("Database error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		h.logger.Error().Err(err).Msg("Unhandled service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
