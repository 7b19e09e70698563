package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
	"github.com/assignment-evaluator/backend/internal/repository"
)

// ErrInvalidCredentials: логин не прошёл; не уточняем, что именно не так.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetStudentProfile(ctx context.Context, studentID string) (*models.Student, error)
	GetTeacherProfile(ctx context.Context, teacherID string) (*models.Teacher, error)
}

type authService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

func NewAuthService(users repository.UserRepository, logger zerolog.Logger) AuthService {
	return &authService{
		users:  users,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req.ID == "" || req.Password == "" {
		return nil, &ValidationError{Field: "id", Reason: "id and password are required"}
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, &ValidationError{Field: "role", Reason: "must be student or teacher"}
	}

	switch role {
	case models.RoleStudent:
		student, err := s.users.AuthenticateStudent(ctx, req.ID, req.Password)
		if err != nil {
			return nil, &PersistenceError{Op: "authenticate student", Err: err}
		}
		if student == nil {
			return nil, ErrInvalidCredentials
		}
		s.logger.Info().Str("student_id", student.ID).Msg("Student logged in")
		return &models.LoginResponse{Role: string(role), ID: student.ID, Name: student.Name}, nil

	case models.RoleTeacher:
		teacher, err := s.users.AuthenticateTeacher(ctx, req.ID, req.Password)
		if err != nil {
			return nil, &PersistenceError{Op: "authenticate teacher", Err: err}
		}
		if teacher == nil {
			return nil, ErrInvalidCredentials
		}
		s.logger.Info().Str("teacher_id", teacher.ID).Msg("Teacher logged in")
		return &models.LoginResponse{Role: string(role), ID: teacher.ID, Name: teacher.Name}, nil
	}

	return nil, ErrInvalidCredentials
}

func (s *authService) GetStudentProfile(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.users.GetStudent(ctx, studentID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch student", Err: err}
	}
	if student == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	return student, nil
}

func (s *authService) GetTeacherProfile(ctx context.Context, teacherID string) (*models.Teacher, error) {
	teacher, err := s.users.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch teacher", Err: err}
	}
	if teacher == nil {
		return nil, fmt.Errorf("teacher %s: %w", teacherID, ErrNotFound)
	}
	return teacher, nil
}
