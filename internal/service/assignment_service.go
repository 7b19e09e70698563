package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
	"github.com/assignment-evaluator/backend/internal/repository"
)

type AssignmentService interface {
	Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.CreateAssignmentResponse, error)
	Update(ctx context.Context, req *models.UpdateAssignmentRequest) error
	Delete(ctx context.Context, teacherID string, assignmentID int64) error
	GetByID(ctx context.Context, assignmentID int64) (*models.Assignment, error)
}

type assignmentService struct {
	assignments       repository.AssignmentRepository
	submissions       repository.SubmissionRepository
	blobs             repository.BlobStore
	assignmentsBucket string
	submissionsBucket string
	logger            zerolog.Logger
}

func NewAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	blobs repository.BlobStore,
	assignmentsBucket, submissionsBucket string,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments:       assignments,
		submissions:       submissions,
		blobs:             blobs,
		assignmentsBucket: assignmentsBucket,
		submissionsBucket: submissionsBucket,
		logger:            logger,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.CreateAssignmentResponse, error) {
	if req.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if req.Deadline.IsZero() {
		return nil, &ValidationError{Field: "deadline", Reason: "must be a valid timestamp"}
	}
	if req.MaxMarks < 1 {
		return nil, &ValidationError{Field: "max_marks", Reason: "must be at least 1"}
	}

	// Файл задания опционален; порядок тот же — сначала блоб, потом строка.
	var fileURL string
	if len(req.FileContent) > 0 {
		key := storageKey(req.FileName)
		url, err := s.blobs.Upload(ctx, s.assignmentsBucket, key, bytes.NewReader(req.FileContent), int64(len(req.FileContent)), req.ContentType)
		if err != nil {
			return nil, &StorageError{Op: "upload assignment file", Err: err}
		}
		fileURL = url
	}

	assignment := &models.Assignment{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Deadline:    req.Deadline,
		MaxMarks:    req.MaxMarks,
		TeacherID:   req.TeacherID,
		FileURL:     fileURL,
		CreatedAt:   time.Now().UTC(),
	}

	id, err := s.assignments.Create(ctx, assignment)
	if err != nil {
		if fileURL != "" {
			if outcome := s.removeBlob(ctx, s.assignmentsBucket, fileURL); outcome.Failed() {
				s.logger.Error().Err(outcome.Err).
					Str("bucket", outcome.Bucket).
					Str("key", outcome.Key).
					Msg("Orphaned blob after failed insert")
			}
		}
		return nil, &PersistenceError{Op: "insert assignment", Err: err}
	}

	s.logger.Info().
		Int64("assignment_id", id).
		Str("teacher_id", req.TeacherID).
		Str("title", req.Title).
		Msg("Assignment created")

	return &models.CreateAssignmentResponse{
		AssignmentID: id,
		FileURL:      fileURL,
	}, nil
}

// Update: title обязателен при каждом вызове, остальные поля меняются
// только если переданы. Новый файл вытесняет старый.
func (s *assignmentService) Update(ctx context.Context, req *models.UpdateAssignmentRequest) error {
	if req.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if req.MaxMarks != nil && *req.MaxMarks < 1 {
		return &ValidationError{Field: "max_marks", Reason: "must be at least 1"}
	}

	current, err := s.assignments.GetForTeacher(ctx, req.AssignmentID, req.TeacherID)
	if err != nil {
		return &PersistenceError{Op: "fetch assignment", Err: err}
	}
	if current == nil {
		return fmt.Errorf("assignment %d: %w", req.AssignmentID, ErrNotFound)
	}

	current.Title = req.Title
	if req.Subject != nil {
		current.Subject = *req.Subject
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Deadline != nil {
		current.Deadline = *req.Deadline
	}
	if req.MaxMarks != nil {
		current.MaxMarks = *req.MaxMarks
	}

	oldFileURL := ""
	if len(req.FileContent) > 0 {
		key := storageKey(req.FileName)
		url, err := s.blobs.Upload(ctx, s.assignmentsBucket, key, bytes.NewReader(req.FileContent), int64(len(req.FileContent)), req.ContentType)
		if err != nil {
			return &StorageError{Op: "upload assignment file", Err: err}
		}
		oldFileURL = current.FileURL
		current.FileURL = url
	}

	updated, err := s.assignments.Update(ctx, current)
	if err != nil {
		if len(req.FileContent) > 0 {
			if outcome := s.removeBlob(ctx, s.assignmentsBucket, current.FileURL); outcome.Failed() {
				s.logger.Error().Err(outcome.Err).
					Str("bucket", outcome.Bucket).
					Str("key", outcome.Key).
					Msg("Orphaned blob after failed update")
			}
		}
		return &PersistenceError{Op: "update assignment", Err: err}
	}
	if !updated {
		return fmt.Errorf("assignment %d: %w", req.AssignmentID, ErrNotFound)
	}

	if oldFileURL != "" {
		if outcome := s.removeBlob(ctx, s.assignmentsBucket, oldFileURL); outcome.Failed() {
			s.logger.Warn().Err(outcome.Err).
				Str("bucket", outcome.Bucket).
				Str("key", outcome.Key).
				Msg("Failed to remove previous assignment file")
		}
	}

	s.logger.Info().
		Int64("assignment_id", req.AssignmentID).
		Str("teacher_id", req.TeacherID).
		Msg("Assignment updated")

	return nil
}

// Delete каскадом сносит сдачи и их файлы. Сначала fetch, ограниченный
// парой (assignment_id, teacher_id): чужой преподаватель не доберётся
// ни до строк, ни до блобов — вызов молча затрагивает ноль строк.
func (s *assignmentService) Delete(ctx context.Context, teacherID string, assignmentID int64) error {
	assignment, err := s.assignments.GetForTeacher(ctx, assignmentID, teacherID)
	if err != nil {
		return &PersistenceError{Op: "fetch assignment", Err: err}
	}
	if assignment == nil {
		s.logger.Info().
			Int64("assignment_id", assignmentID).
			Str("teacher_id", teacherID).
			Msg("Assignment delete affected no rows")
		return nil
	}

	urls, err := s.submissions.FileURLsByAssignment(ctx, assignmentID)
	if err != nil {
		return &PersistenceError{Op: "list submission files", Err: err}
	}

	// Каждый блоб удаляется независимо; частичный провал не прерывает каскад.
	for _, u := range urls {
		if outcome := s.removeBlob(ctx, s.submissionsBucket, u); outcome.Failed() {
			s.logger.Warn().Err(outcome.Err).
				Str("bucket", outcome.Bucket).
				Str("key", outcome.Key).
				Msg("Failed to remove submission file during cascade")
		}
	}

	if assignment.FileURL != "" {
		if outcome := s.removeBlob(ctx, s.assignmentsBucket, assignment.FileURL); outcome.Failed() {
			s.logger.Warn().Err(outcome.Err).
				Str("bucket", outcome.Bucket).
				Str("key", outcome.Key).
				Msg("Failed to remove assignment file during cascade")
		}
	}

	removed, err := s.submissions.DeleteByAssignment(ctx, assignmentID)
	if err != nil {
		return &PersistenceError{Op: "delete submissions", Err: err}
	}

	if _, err := s.assignments.Delete(ctx, assignmentID, teacherID); err != nil {
		return &PersistenceError{Op: "delete assignment", Err: err}
	}

	s.logger.Info().
		Int64("assignment_id", assignmentID).
		Str("teacher_id", teacherID).
		Int64("submissions_removed", removed).
		Msg("Assignment deleted")

	return nil
}

func (s *assignmentService) GetByID(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch assignment", Err: err}
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
	}

	return assignment, nil
}

func (s *assignmentService) removeBlob(ctx context.Context, bucket, fileURL string) CleanupOutcome {
	key := repository.ObjectKeyFromURL(fileURL)
	if key == "" {
		return CleanupOutcome{Bucket: bucket}
	}

	err := s.blobs.Remove(ctx, bucket, key)
	return CleanupOutcome{Bucket: bucket, Key: key, Err: err}
}
