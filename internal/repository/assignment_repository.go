package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	GetForTeacher(ctx context.Context, id int64, teacherID string) (*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) (bool, error)
	Delete(ctx context.Context, id int64, teacherID string) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListRefsForTeacher(ctx context.Context, teacherID string) ([]models.AssignmentRef, error)
	ListWithStatusForStudent(ctx context.Context, studentID string) ([]models.AssignmentWithStatus, error)
	CountsForStudent(ctx context.Context, studentID string) (*models.StudentCounts, error)
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (int64, error) {
	query := `
		INSERT INTO assignments (title, subject, description, deadline, max_marks, teacher_id, file_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING assignment_id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		assignment.Title,
		assignment.Subject,
		assignment.Description,
		assignment.Deadline,
		assignment.MaxMarks,
		assignment.TeacherID,
		assignment.FileURL,
		assignment.CreatedAt,
	).Scan(&id)

	return id, err
}

func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := `
		SELECT assignment_id, title, subject, description, deadline, max_marks, teacher_id, file_url, created_at
		FROM assignments
		WHERE assignment_id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *assignmentRepository) GetForTeacher(ctx context.Context, id int64, teacherID string) (*models.Assignment, error) {
	query := `
		SELECT assignment_id, title, subject, description, deadline, max_marks, teacher_id, file_url, created_at
		FROM assignments
		WHERE assignment_id = $1 AND teacher_id = $2
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, teacherID))
}

func (r *assignmentRepository) scanOne(row *sql.Row) (*models.Assignment, error) {
	assignment := &models.Assignment{}
	err := row.Scan(
		&assignment.ID,
		&assignment.Title,
		&assignment.Subject,
		&assignment.Description,
		&assignment.Deadline,
		&assignment.MaxMarks,
		&assignment.TeacherID,
		&assignment.FileURL,
		&assignment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return assignment, err
}

// Update перезаписывает изменяемые поля; запрос ограничен парой
// (assignment_id, teacher_id), чтобы чужой преподаватель ничего не задел.
func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) (bool, error) {
	query := `
		UPDATE assignments
		SET title = $1, subject = $2, description = $3, deadline = $4, max_marks = $5, file_url = $6
		WHERE assignment_id = $7 AND teacher_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		assignment.Title,
		assignment.Subject,
		assignment.Description,
		assignment.Deadline,
		assignment.MaxMarks,
		assignment.FileURL,
		assignment.ID,
		assignment.TeacherID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *assignmentRepository) Delete(ctx context.Context, id int64, teacherID string) (bool, error) {
	query := `DELETE FROM assignments WHERE assignment_id = $1 AND teacher_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, teacherID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *assignmentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM assignments WHERE assignment_id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *assignmentRepository) ListRefsForTeacher(ctx context.Context, teacherID string) ([]models.AssignmentRef, error) {
	query := `SELECT assignment_id, title FROM assignments WHERE teacher_id = $1 ORDER BY title`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.AssignmentRef
	for rows.Next() {
		var ref models.AssignmentRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func (r *assignmentRepository) ListWithStatusForStudent(ctx context.Context, studentID string) ([]models.AssignmentWithStatus, error) {
	query := fmt.Sprintf(`
		SELECT
			a.assignment_id,
			a.title,
			a.subject,
			a.deadline,
			s.submitted_at,
			%s AS submission_status
		FROM assignments a
		LEFT JOIN submissions s
			ON a.assignment_id = s.assignment_id AND s.student_id = $1
		ORDER BY a.deadline ASC
	`, models.StatusCaseExpr("s.submission_id", "s.marks"))

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.AssignmentWithStatus
	for rows.Next() {
		var a models.AssignmentWithStatus
		if err := rows.Scan(&a.ID, &a.Title, &a.Subject, &a.Deadline, &a.SubmittedAt, &a.Status); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) CountsForStudent(ctx context.Context, studentID string) (*models.StudentCounts, error) {
	// Один запрос на все счётчики; колонки статуса в БД нет.
	query := `
		SELECT
			COUNT(a.assignment_id) AS total,
			COUNT(s.submission_id) AS submitted,
			COUNT(CASE WHEN s.marks IS NOT NULL THEN 1 END) AS evaluated,
			COUNT(a.assignment_id) - COUNT(s.submission_id) AS pending
		FROM assignments a
		LEFT JOIN submissions s
			ON a.assignment_id = s.assignment_id AND s.student_id = $1
	`

	counts := &models.StudentCounts{}
	err := r.db.QueryRowContext(ctx, query, studentID).Scan(
		&counts.Total,
		&counts.Submitted,
		&counts.Evaluated,
		&counts.Pending,
	)

	return counts, err
}
