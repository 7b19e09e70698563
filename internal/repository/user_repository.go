package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/assignment-evaluator/backend/internal/models"
)

type UserRepository interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	AuthenticateStudent(ctx context.Context, id, password string) (*models.Student, error)
	AuthenticateTeacher(ctx context.Context, id, password string) (*models.Teacher, error)
}

type userRepository struct {
	*PostgresRepository
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

// Запросы фиксированы по ролям: никакой подстановки имён таблиц или
// колонок из входных данных.

func (r *userRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT student_id, name, email FROM students WHERE student_id = $1`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&student.ID, &student.Name, &student.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return student, err
}

func (r *userRepository) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT teacher_id, name, email FROM teachers WHERE teacher_id = $1`

	teacher := &models.Teacher{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&teacher.ID, &teacher.Name, &teacher.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return teacher, err
}

func (r *userRepository) AuthenticateStudent(ctx context.Context, id, password string) (*models.Student, error) {
	query := `SELECT student_id, name, email FROM students WHERE student_id = $1 AND password = $2`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id, password).Scan(&student.ID, &student.Name, &student.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return student, err
}

func (r *userRepository) AuthenticateTeacher(ctx context.Context, id, password string) (*models.Teacher, error) {
	query := `SELECT teacher_id, name, email FROM teachers WHERE teacher_id = $1 AND password = $2`

	teacher := &models.Teacher{}
	err := r.db.QueryRowContext(ctx, query, id, password).Scan(&teacher.ID, &teacher.Name, &teacher.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return teacher, err
}
