package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
	"github.com/assignment-evaluator/backend/internal/repository"
)

const recentSubmissionsLimit = 20

type DashboardService interface {
	StudentDashboard(ctx context.Context, studentID string) (*models.StudentDashboard, error)
	StudentAssignments(ctx context.Context, studentID string) ([]models.AssignmentWithStatus, error)
	StudentResults(ctx context.Context, studentID string) ([]models.SubmissionResult, error)
	TeacherDashboard(ctx context.Context, teacherID string) (*models.TeacherDashboard, error)
	TeacherSubmissions(ctx context.Context, teacherID string) ([]models.SubmissionWithDetails, error)
	TeacherAssignments(ctx context.Context, teacherID string) ([]models.AssignmentRef, error)
}

type dashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

func NewDashboardService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		assignments: assignments,
		submissions: submissions,
		logger:      logger,
	}
}

func (s *dashboardService) StudentDashboard(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	counts, err := s.assignments.CountsForStudent(ctx, studentID)
	if err != nil {
		return nil, &PersistenceError{Op: "count student assignments", Err: err}
	}

	assignments, err := s.assignments.ListWithStatusForStudent(ctx, studentID)
	if err != nil {
		return nil, &PersistenceError{Op: "list student assignments", Err: err}
	}

	return &models.StudentDashboard{
		StudentID:   studentID,
		Counts:      *counts,
		Assignments: assignments,
	}, nil
}

func (s *dashboardService) StudentAssignments(ctx context.Context, studentID string) ([]models.AssignmentWithStatus, error) {
	assignments, err := s.assignments.ListWithStatusForStudent(ctx, studentID)
	if err != nil {
		return nil, &PersistenceError{Op: "list student assignments", Err: err}
	}
	return assignments, nil
}

func (s *dashboardService) StudentResults(ctx context.Context, studentID string) ([]models.SubmissionResult, error) {
	results, err := s.submissions.ResultsForStudent(ctx, studentID)
	if err != nil {
		return nil, &PersistenceError{Op: "list student results", Err: err}
	}
	return results, nil
}

func (s *dashboardService) TeacherDashboard(ctx context.Context, teacherID string) (*models.TeacherDashboard, error) {
	counts, err := s.submissions.CountsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, &PersistenceError{Op: "count teacher submissions", Err: err}
	}

	recent, err := s.submissions.ListForTeacher(ctx, teacherID, recentSubmissionsLimit)
	if err != nil {
		return nil, &PersistenceError{Op: "list teacher submissions", Err: err}
	}

	return &models.TeacherDashboard{
		TeacherID:         teacherID,
		Counts:            *counts,
		RecentSubmissions: recent,
	}, nil
}

func (s *dashboardService) TeacherSubmissions(ctx context.Context, teacherID string) ([]models.SubmissionWithDetails, error) {
	submissions, err := s.submissions.ListForTeacher(ctx, teacherID, 0)
	if err != nil {
		return nil, &PersistenceError{Op: "list teacher submissions", Err: err}
	}
	return submissions, nil
}

func (s *dashboardService) TeacherAssignments(ctx context.Context, teacherID string) ([]models.AssignmentRef, error) {
	refs, err := s.assignments.ListRefsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, &PersistenceError{Op: "list teacher assignments", Err: err}
	}
	return refs, nil
}
