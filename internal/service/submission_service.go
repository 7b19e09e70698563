package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/config"
	"github.com/assignment-evaluator/backend/internal/models"
	"github.com/assignment-evaluator/backend/internal/repository"
	"github.com/assignment-evaluator/backend/internal/service/integration"
)

type SubmissionService interface {
	Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.CreateSubmissionResponse, error)
	ReplaceFile(ctx context.Context, req *models.ReplaceSubmissionFileRequest) (*models.ReplaceSubmissionFileResponse, error)
	Delete(ctx context.Context, studentID string, submissionID int64) error
	Evaluate(ctx context.Context, submissionID int64, marks int, feedback string) error
	GetDetails(ctx context.Context, submissionID int64) (*models.SubmissionWithDetails, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	blobs       repository.BlobStore
	bucket      string
	policy      config.PolicyConfig
	publisher   integration.EventPublisher
	logger      zerolog.Logger
}

func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	blobs repository.BlobStore,
	bucket string,
	policy config.PolicyConfig,
	publisher integration.EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		blobs:       blobs,
		bucket:      bucket,
		policy:      policy,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create: сначала блоб, потом строка. Если строка не записалась —
// best-effort компенсация только что загруженного блоба.
func (s *submissionService) Create(ctx context.Context, req *models.CreateSubmissionRequest) (*models.CreateSubmissionResponse, error) {
	if req.AssignmentID <= 0 {
		return nil, &ValidationError{Field: "assignment_id", Reason: "must be a positive integer"}
	}
	if len(req.FileContent) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "file is required and must not be empty"}
	}

	exists, err := s.assignments.Exists(ctx, req.AssignmentID)
	if err != nil {
		return nil, &PersistenceError{Op: "check assignment", Err: err}
	}
	if !exists {
		return nil, fmt.Errorf("assignment %d: %w", req.AssignmentID, ErrNotFound)
	}

	if s.policy.DuplicateSubmissions == "reject" {
		already, err := s.submissions.ExistsForAssignmentAndStudent(ctx, req.AssignmentID, req.StudentID)
		if err != nil {
			return nil, &PersistenceError{Op: "check duplicate submission", Err: err}
		}
		if already {
			return nil, &ValidationError{Field: "assignment_id", Reason: "submission already exists for this assignment"}
		}
	}

	key := storageKey(req.FileName)
	fileURL, err := s.blobs.Upload(ctx, s.bucket, key, bytes.NewReader(req.FileContent), int64(len(req.FileContent)), req.ContentType)
	if err != nil {
		return nil, &StorageError{Op: "upload submission file", Err: err}
	}

	submission := &models.Submission{
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		FileURL:      fileURL,
		Comments:     req.Comments,
		SubmittedAt:  time.Now().UTC(),
	}

	id, err := s.submissions.Create(ctx, submission)
	if err != nil {
		outcome := s.removeBlob(ctx, fileURL)
		if outcome.Failed() {
			// Блоб осиротел; строки нет, клиент получит ошибку.
			s.logger.Error().Err(outcome.Err).
				Str("bucket", outcome.Bucket).
				Str("key", outcome.Key).
				Msg("Orphaned blob after failed insert")
		}
		return nil, &PersistenceError{Op: "insert submission", Err: err}
	}

	s.logger.Info().
		Int64("submission_id", id).
		Int64("assignment_id", req.AssignmentID).
		Str("student_id", req.StudentID).
		Msg("Submission created")

	s.publishCreated(ctx, &models.SubmissionCreatedEvent{
		SubmissionID: id,
		AssignmentID: req.AssignmentID,
		StudentID:    req.StudentID,
		FileURL:      fileURL,
		Timestamp:    time.Now().Unix(),
	})

	return &models.CreateSubmissionResponse{
		SubmissionID: id,
		FileURL:      fileURL,
	}, nil
}

// ReplaceFile грузит новый блоб до изменения строки: при отказе хранилища
// старое состояние не тронуто. Старый блоб удаляется best-effort уже после
// UPDATE.
func (s *submissionService) ReplaceFile(ctx context.Context, req *models.ReplaceSubmissionFileRequest) (*models.ReplaceSubmissionFileResponse, error) {
	if len(req.FileContent) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "file is required and must not be empty"}
	}

	existing, err := s.submissions.GetForStudent(ctx, req.SubmissionID, req.StudentID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch submission", Err: err}
	}
	if existing == nil {
		return nil, fmt.Errorf("submission %d: %w", req.SubmissionID, ErrNotFound)
	}

	key := storageKey(req.FileName)
	newURL, err := s.blobs.Upload(ctx, s.bucket, key, bytes.NewReader(req.FileContent), int64(len(req.FileContent)), req.ContentType)
	if err != nil {
		return nil, &StorageError{Op: "upload replacement file", Err: err}
	}

	submittedAt := time.Now().UTC()
	updated, err := s.submissions.UpdateFile(ctx, req.SubmissionID, req.StudentID, newURL, submittedAt, s.policy.ResetMarksOnReplace)
	if err != nil {
		outcome := s.removeBlob(ctx, newURL)
		if outcome.Failed() {
			s.logger.Error().Err(outcome.Err).
				Str("bucket", outcome.Bucket).
				Str("key", outcome.Key).
				Msg("Orphaned blob after failed update")
		}
		return nil, &PersistenceError{Op: "update submission file", Err: err}
	}
	if !updated {
		// Строку удалили между fetch и update.
		outcome := s.removeBlob(ctx, newURL)
		if outcome.Failed() {
			s.logger.Error().Err(outcome.Err).
				Str("bucket", outcome.Bucket).
				Str("key", outcome.Key).
				Msg("Orphaned blob after concurrent delete")
		}
		return nil, fmt.Errorf("submission %d: %w", req.SubmissionID, ErrNotFound)
	}

	if outcome := s.removeBlob(ctx, existing.FileURL); outcome.Failed() {
		s.logger.Warn().Err(outcome.Err).
			Str("bucket", outcome.Bucket).
			Str("key", outcome.Key).
			Msg("Failed to remove previous submission file")
	}

	s.logger.Info().
		Int64("submission_id", req.SubmissionID).
		Str("student_id", req.StudentID).
		Msg("Submission file replaced")

	return &models.ReplaceSubmissionFileResponse{
		FileURL:     newURL,
		SubmittedAt: submittedAt,
	}, nil
}

func (s *submissionService) Delete(ctx context.Context, studentID string, submissionID int64) error {
	existing, err := s.submissions.GetForStudent(ctx, submissionID, studentID)
	if err != nil {
		return &PersistenceError{Op: "fetch submission", Err: err}
	}
	if existing == nil {
		return fmt.Errorf("submission %d: %w", submissionID, ErrNotFound)
	}

	if outcome := s.removeBlob(ctx, existing.FileURL); outcome.Failed() {
		s.logger.Warn().Err(outcome.Err).
			Str("bucket", outcome.Bucket).
			Str("key", outcome.Key).
			Msg("Failed to remove submission file")
	}

	if err := s.submissions.Delete(ctx, submissionID, studentID); err != nil {
		return &PersistenceError{Op: "delete submission", Err: err}
	}

	s.logger.Info().
		Int64("submission_id", submissionID).
		Str("student_id", studentID).
		Msg("Submission deleted")

	return nil
}

// Evaluate перезаписывает оценку: повторное оценивание заменяет
// marks и feedback целиком.
func (s *submissionService) Evaluate(ctx context.Context, submissionID int64, marks int, feedback string) error {
	if marks < 0 {
		return &ValidationError{Field: "marks", Reason: "must be a non-negative integer"}
	}

	updated, err := s.submissions.SetEvaluation(ctx, submissionID, marks, feedback)
	if err != nil {
		return &PersistenceError{Op: "set evaluation", Err: err}
	}
	if !updated {
		return fmt.Errorf("submission %d: %w", submissionID, ErrNotFound)
	}

	s.logger.Info().
		Int64("submission_id", submissionID).
		Int("marks", marks).
		Msg("Submission evaluated")

	if s.publisher != nil {
		event := &models.SubmissionEvaluatedEvent{
			SubmissionID: submissionID,
			Marks:        marks,
			Timestamp:    time.Now().Unix(),
		}
		if err := s.publisher.PublishSubmissionEvaluated(ctx, event); err != nil {
			s.logger.Warn().Err(err).
				Int64("submission_id", submissionID).
				Msg("Failed to publish submission.evaluated event")
		}
	}

	return nil
}

func (s *submissionService) GetDetails(ctx context.Context, submissionID int64) (*models.SubmissionWithDetails, error) {
	details, err := s.submissions.GetDetails(ctx, submissionID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch submission details", Err: err}
	}
	if details == nil {
		return nil, fmt.Errorf("submission %d: %w", submissionID, ErrNotFound)
	}

	return details, nil
}

func (s *submissionService) removeBlob(ctx context.Context, fileURL string) CleanupOutcome {
	key := repository.ObjectKeyFromURL(fileURL)
	if key == "" {
		return CleanupOutcome{Bucket: s.bucket}
	}

	err := s.blobs.Remove(ctx, s.bucket, key)
	return CleanupOutcome{Bucket: s.bucket, Key: key, Err: err}
}

func (s *submissionService) publishCreated(ctx context.Context, event *models.SubmissionCreatedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSubmissionCreated(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Int64("submission_id", event.SubmissionID).
			Msg("Failed to publish submission.created event")
	}
}
