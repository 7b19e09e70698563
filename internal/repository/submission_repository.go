package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) (int64, error)
	GetForStudent(ctx context.Context, id int64, studentID string) (*models.Submission, error)
	GetDetails(ctx context.Context, id int64) (*models.SubmissionWithDetails, error)
	UpdateFile(ctx context.Context, id int64, studentID, fileURL string, submittedAt time.Time, resetMarks bool) (bool, error)
	SetEvaluation(ctx context.Context, id int64, marks int, feedback string) (bool, error)
	Delete(ctx context.Context, id int64, studentID string) error
	DeleteByAssignment(ctx context.Context, assignmentID int64) (int64, error)
	FileURLsByAssignment(ctx context.Context, assignmentID int64) ([]string, error)
	ExistsForAssignmentAndStudent(ctx context.Context, assignmentID int64, studentID string) (bool, error)
	ListForTeacher(ctx context.Context, teacherID string, limit int) ([]models.SubmissionWithDetails, error)
	ResultsForStudent(ctx context.Context, studentID string) ([]models.SubmissionResult, error)
	CountsForTeacher(ctx context.Context, teacherID string) (*models.TeacherCounts, error)
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) (int64, error) {
	query := `
		INSERT INTO submissions (assignment_id, student_id, file_url, comments, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING submission_id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		submission.AssignmentID,
		submission.StudentID,
		submission.FileURL,
		submission.Comments,
		submission.SubmittedAt,
	).Scan(&id)

	return id, err
}

func (r *submissionRepository) GetForStudent(ctx context.Context, id int64, studentID string) (*models.Submission, error) {
	query := `
		SELECT submission_id, assignment_id, student_id, file_url, comments, marks, feedback, submitted_at
		FROM submissions
		WHERE submission_id = $1 AND student_id = $2
	`

	submission := &models.Submission{}
	err := r.db.QueryRowContext(ctx, query, id, studentID).Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.StudentID,
		&submission.FileURL,
		&submission.Comments,
		&submission.Marks,
		&submission.Feedback,
		&submission.SubmittedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return submission, err
}

func (r *submissionRepository) GetDetails(ctx context.Context, id int64) (*models.SubmissionWithDetails, error) {
	query := fmt.Sprintf(`
		SELECT s.submission_id, s.assignment_id, s.student_id, s.file_url, s.comments,
		       s.marks, s.feedback, s.submitted_at,
		       st.name AS student_name, a.title AS assignment_title, a.deadline,
		       %s AS status
		FROM submissions s
		JOIN assignments a ON a.assignment_id = s.assignment_id
		LEFT JOIN students st ON st.student_id = s.student_id
		WHERE s.submission_id = $1
	`, models.StatusCaseExpr("s.submission_id", "s.marks"))

	details := &models.SubmissionWithDetails{}
	var studentName sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&details.ID,
		&details.AssignmentID,
		&details.StudentID,
		&details.FileURL,
		&details.Comments,
		&details.Marks,
		&details.Feedback,
		&details.SubmittedAt,
		&studentName,
		&details.AssignmentTitle,
		&details.AssignmentDeadline,
		&details.ComputedStatus,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	details.StudentName = studentName.String
	if details.StudentName == "" {
		details.StudentName = details.StudentID
	}

	return details, nil
}

// UpdateFile меняет файл и время сдачи одним запросом, ограниченным парой
// (submission_id, student_id). resetMarks добивает оценку в том же запросе,
// чтобы не было окна между двумя UPDATE.
func (r *submissionRepository) UpdateFile(ctx context.Context, id int64, studentID, fileURL string, submittedAt time.Time, resetMarks bool) (bool, error) {
	query := `
		UPDATE submissions
		SET file_url = $1, submitted_at = $2
		WHERE submission_id = $3 AND student_id = $4
	`
	if resetMarks {
		query = `
			UPDATE submissions
			SET file_url = $1, submitted_at = $2, marks = NULL, feedback = ''
			WHERE submission_id = $3 AND student_id = $4
		`
	}

	result, err := r.db.ExecContext(ctx, query, fileURL, submittedAt, id, studentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// SetEvaluation перезаписывает оценку; повторное оценивание — это
// перезапись, а не добавление.
func (r *submissionRepository) SetEvaluation(ctx context.Context, id int64, marks int, feedback string) (bool, error) {
	query := `
		UPDATE submissions
		SET marks = $1, feedback = $2
		WHERE submission_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, marks, feedback, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *submissionRepository) Delete(ctx context.Context, id int64, studentID string) error {
	query := `DELETE FROM submissions WHERE submission_id = $1 AND student_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, studentID)
	return err
}

func (r *submissionRepository) DeleteByAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	query := `DELETE FROM submissions WHERE assignment_id = $1`

	result, err := r.db.ExecContext(ctx, query, assignmentID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *submissionRepository) FileURLsByAssignment(ctx context.Context, assignmentID int64) ([]string, error) {
	query := `SELECT file_url FROM submissions WHERE assignment_id = $1`

	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

func (r *submissionRepository) ExistsForAssignmentAndStudent(ctx context.Context, assignmentID int64, studentID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM submissions WHERE assignment_id = $1 AND student_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, assignmentID, studentID).Scan(&exists)
	return exists, err
}

func (r *submissionRepository) ListForTeacher(ctx context.Context, teacherID string, limit int) ([]models.SubmissionWithDetails, error) {
	query := fmt.Sprintf(`
		SELECT s.submission_id, s.assignment_id, s.student_id, s.file_url, s.comments,
		       s.marks, s.feedback, s.submitted_at,
		       st.name AS student_name, a.title AS assignment_title, a.deadline,
		       %s AS status
		FROM submissions s
		JOIN assignments a ON a.assignment_id = s.assignment_id
		LEFT JOIN students st ON st.student_id = s.student_id
		WHERE a.teacher_id = $1
		ORDER BY s.submitted_at DESC NULLS LAST
	`, models.StatusCaseExpr("s.submission_id", "s.marks"))

	args := []interface{}{teacherID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []models.SubmissionWithDetails
	for rows.Next() {
		var s models.SubmissionWithDetails
		var studentName sql.NullString
		err := rows.Scan(
			&s.ID,
			&s.AssignmentID,
			&s.StudentID,
			&s.FileURL,
			&s.Comments,
			&s.Marks,
			&s.Feedback,
			&s.SubmittedAt,
			&studentName,
			&s.AssignmentTitle,
			&s.AssignmentDeadline,
			&s.ComputedStatus,
		)
		if err != nil {
			return nil, err
		}
		s.StudentName = studentName.String
		if s.StudentName == "" {
			s.StudentName = s.StudentID
		}
		submissions = append(submissions, s)
	}

	return submissions, rows.Err()
}

func (r *submissionRepository) ResultsForStudent(ctx context.Context, studentID string) ([]models.SubmissionResult, error) {
	query := `
		SELECT s.submission_id, s.assignment_id, a.title, a.subject, s.submitted_at, s.marks, s.feedback
		FROM submissions s
		JOIN assignments a ON a.assignment_id = s.assignment_id
		WHERE s.student_id = $1 AND s.marks IS NOT NULL
		ORDER BY s.submitted_at DESC NULLS LAST
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SubmissionResult
	for rows.Next() {
		var res models.SubmissionResult
		err := rows.Scan(
			&res.SubmissionID,
			&res.AssignmentID,
			&res.AssignmentTitle,
			&res.Subject,
			&res.SubmittedAt,
			&res.Marks,
			&res.Feedback,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func (r *submissionRepository) CountsForTeacher(ctx context.Context, teacherID string) (*models.TeacherCounts, error) {
	counts := &models.TeacherCounts{}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE teacher_id = $1`, teacherID,
	).Scan(&counts.TotalAssignments)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			COUNT(*) AS received,
			COUNT(CASE WHEN s.marks IS NULL THEN 1 END) AS pending,
			COUNT(CASE WHEN s.marks IS NOT NULL THEN 1 END) AS evaluated
		FROM submissions s
		JOIN assignments a ON a.assignment_id = s.assignment_id
		WHERE a.teacher_id = $1
	`

	err = r.db.QueryRowContext(ctx, query, teacherID).Scan(
		&counts.SubmissionsReceived,
		&counts.PendingEvaluation,
		&counts.EvaluatedCount,
	)

	return counts, err
}
