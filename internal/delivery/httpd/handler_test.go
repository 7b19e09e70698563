package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
	"github.com/assignment-evaluator/backend/internal/service"
)

// Фейки сервисов: фиксированные ответы, без БД и хранилища.

type stubSubmissionService struct {
	createErr   error
	evaluateErr error
	deleteErr   error
}

func (s *stubSubmissionService) Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.CreateSubmissionResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.CreateSubmissionResponse{SubmissionID: 7, FileURL: "http://blob.local/submissions/key"}, nil
}

func (s *stubSubmissionService) ReplaceFile(ctx context.Context, req *models.ReplaceSubmissionFileRequest) (*models.ReplaceSubmissionFileResponse, error) {
	return &models.ReplaceSubmissionFileResponse{FileURL: "http://blob.local/submissions/new"}, nil
}

func (s *stubSubmissionService) Delete(ctx context.Context, studentID string, submissionID int64) error {
	return s.deleteErr
}

func (s *stubSubmissionService) Evaluate(ctx context.Context, submissionID int64, marks int, feedback string) error {
	return s.evaluateErr
}

func (s *stubSubmissionService) GetDetails(ctx context.Context, submissionID int64) (*models.SubmissionWithDetails, error) {
	return &models.SubmissionWithDetails{}, nil
}

type stubAssignmentService struct{}

func (s *stubAssignmentService) Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.CreateAssignmentResponse, error) {
	return &models.CreateAssignmentResponse{AssignmentID: 3}, nil
}

func (s *stubAssignmentService) Update(ctx context.Context, req *models.UpdateAssignmentRequest) error {
	return nil
}

func (s *stubAssignmentService) Delete(ctx context.Context, teacherID string, assignmentID int64) error {
	return nil
}

func (s *stubAssignmentService) GetByID(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	return &models.Assignment{ID: assignmentID, Title: "Lab"}, nil
}

type stubDashboardService struct{}

func (s *stubDashboardService) StudentDashboard(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	return &models.StudentDashboard{StudentID: studentID}, nil
}

func (s *stubDashboardService) StudentAssignments(ctx context.Context, studentID string) ([]models.AssignmentWithStatus, error) {
	return nil, nil
}

func (s *stubDashboardService) StudentResults(ctx context.Context, studentID string) ([]models.SubmissionResult, error) {
	return nil, nil
}

func (s *stubDashboardService) TeacherDashboard(ctx context.Context, teacherID string) (*models.TeacherDashboard, error) {
	return &models.TeacherDashboard{TeacherID: teacherID}, nil
}

func (s *stubDashboardService) TeacherSubmissions(ctx context.Context, teacherID string) ([]models.SubmissionWithDetails, error) {
	return nil, nil
}

func (s *stubDashboardService) TeacherAssignments(ctx context.Context, teacherID string) ([]models.AssignmentRef, error) {
	return nil, nil
}

type stubAuthService struct {
	loginErr error
}

func (s *stubAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &models.LoginResponse{Role: req.Role, ID: req.ID, Name: "Alice"}, nil
}

func (s *stubAuthService) GetStudentProfile(ctx context.Context, studentID string) (*models.Student, error) {
	return &models.Student{ID: studentID}, nil
}

func (s *stubAuthService) GetTeacherProfile(ctx context.Context, teacherID string) (*models.Teacher, error) {
	return &models.Teacher{ID: teacherID}, nil
}

func newTestRouter(subs *stubSubmissionService, auth *stubAuthService) chi.Router {
	handler := NewHandler(
		subs,
		&stubAssignmentService{},
		&stubDashboardService{},
		auth,
		nil,
		32<<20,
		zerolog.Nop(),
	)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(fileContent)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return envelope
}

func TestCreateSubmissionRoute(t *testing.T) {
	router := newTestRouter(&stubSubmissionService{}, &stubAuthService{})

	body, contentType := multipartBody(t, map[string]string{"assignment_id": "3"}, "file", "hw.pdf", []byte("content"))
	req := httptest.NewRequest(http.MethodPost, "/student/s1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Errorf("success = %v", envelope["success"])
	}
	if envelope["submission_id"] != float64(7) {
		t.Errorf("submission_id = %v", envelope["submission_id"])
	}
}

func TestCreateSubmissionRouteRejectsBadAssignmentID(t *testing.T) {
	router := newTestRouter(&stubSubmissionService{}, &stubAuthService{})

	body, contentType := multipartBody(t, map[string]string{"assignment_id": "abc"}, "file", "hw.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/student/s1/submissions", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != false {
		t.Errorf("success = %v, want false", envelope["success"])
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "file", Reason: "empty"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("submission 9: %w", service.ErrNotFound), http.StatusNotFound},
		{"storage", &service.StorageError{Op: "upload", Err: fmt.Errorf("down")}, http.StatusInternalServerError},
		{"persistence", &service.PersistenceError{Op: "insert", Err: fmt.Errorf("down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubSubmissionService{deleteErr: tt.serviceErr}, &stubAuthService{})

			req := httptest.NewRequest(http.MethodDelete, "/student/s1/submission/9", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestEvaluateRouteValidation(t *testing.T) {
	router := newTestRouter(&stubSubmissionService{}, &stubAuthService{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"marks": 85, "feedback": "ok"}`, http.StatusOK},
		{"zero marks valid", `{"marks": 0}`, http.StatusOK},
		{"missing marks", `{"feedback": "ok"}`, http.StatusBadRequest},
		{"negative marks", `{"marks": -1}`, http.StatusBadRequest},
		{"not json", `marks=85`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/teacher/submission/5/evaluate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestLoginRoute(t *testing.T) {
	router := newTestRouter(&stubSubmissionService{}, &stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"id":"s1","password":"secret","role":"student"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["name"] != "Alice" {
		t.Errorf("name = %v", envelope["name"])
	}
}

func TestLoginRouteUnauthorized(t *testing.T) {
	router := newTestRouter(&stubSubmissionService{}, &stubAuthService{loginErr: service.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"id":"s1","password":"bad","role":"student"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(&stubSubmissionService{}, &stubAuthService{})

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
