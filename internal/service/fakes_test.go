package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/assignment-evaluator/backend/internal/models"
)

// Фейки репозиториев для сервисных тестов: всё в памяти, без SQL.

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte // "bucket/key" -> content
	uploads int
	failUp  bool
	failRm  bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUp {
		return "", errors.New("upload refused")
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.objects[bucket+"/"+key] = content
	f.uploads++
	return fmt.Sprintf("http://blob.local/%s/%s", bucket, key), nil
}

func (f *fakeBlobStore) Remove(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRm {
		return errors.New("remove refused")
	}
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeBlobStore) has(bucket, urlOrKey string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := urlOrKey
	if i := strings.LastIndex(urlOrKey, "/"); i >= 0 {
		key = urlOrKey[i+1:]
	}
	_, ok := f.objects[bucket+"/"+key]
	return ok
}

type fakeSubmissionRepo struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]*models.Submission
	failInsert bool
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{nextID: 1, rows: make(map[int64]*models.Submission)}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, s *models.Submission) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return 0, errors.New("insert refused")
	}
	id := f.nextID
	f.nextID++
	cp := *s
	cp.ID = id
	f.rows[id] = &cp
	return id, nil
}

func (f *fakeSubmissionRepo) GetForStudent(ctx context.Context, id int64, studentID string) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.StudentID != studentID {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeSubmissionRepo) GetDetails(ctx context.Context, id int64) (*models.SubmissionWithDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &models.SubmissionWithDetails{
		Submission:     *row,
		StudentName:    row.StudentID,
		ComputedStatus: models.ResolveStatus(true, row.Marks),
	}, nil
}

func (f *fakeSubmissionRepo) UpdateFile(ctx context.Context, id int64, studentID, fileURL string, submittedAt time.Time, resetMarks bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.StudentID != studentID {
		return false, nil
	}
	row.FileURL = fileURL
	row.SubmittedAt = submittedAt
	if resetMarks {
		row.Marks = nil
		row.Feedback = ""
	}
	return true, nil
}

func (f *fakeSubmissionRepo) SetEvaluation(ctx context.Context, id int64, marks int, feedback string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	m := marks
	row.Marks = &m
	row.Feedback = feedback
	return true, nil
}

func (f *fakeSubmissionRepo) Delete(ctx context.Context, id int64, studentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if ok && row.StudentID == studentID {
		delete(f.rows, id)
	}
	return nil
}

func (f *fakeSubmissionRepo) DeleteByAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, row := range f.rows {
		if row.AssignmentID == assignmentID {
			delete(f.rows, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeSubmissionRepo) FileURLsByAssignment(ctx context.Context, assignmentID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var urls []string
	for _, row := range f.rows {
		if row.AssignmentID == assignmentID {
			urls = append(urls, row.FileURL)
		}
	}
	return urls, nil
}

func (f *fakeSubmissionRepo) ExistsForAssignmentAndStudent(ctx context.Context, assignmentID int64, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.AssignmentID == assignmentID && row.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissionRepo) ListForTeacher(ctx context.Context, teacherID string, limit int) ([]models.SubmissionWithDetails, error) {
	return nil, nil
}

func (f *fakeSubmissionRepo) ResultsForStudent(ctx context.Context, studentID string) ([]models.SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []models.SubmissionResult
	for _, row := range f.rows {
		if row.StudentID == studentID && row.Marks != nil {
			results = append(results, models.SubmissionResult{
				SubmissionID: row.ID,
				AssignmentID: row.AssignmentID,
				SubmittedAt:  row.SubmittedAt,
				Marks:        *row.Marks,
				Feedback:     row.Feedback,
			})
		}
	}
	return results, nil
}

func (f *fakeSubmissionRepo) CountsForTeacher(ctx context.Context, teacherID string) (*models.TeacherCounts, error) {
	return &models.TeacherCounts{}, nil
}

func (f *fakeSubmissionRepo) get(id int64) *models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil
	}
	cp := *row
	return &cp
}

func (f *fakeSubmissionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeAssignmentRepo struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[int64]*models.Assignment
	failInsert bool
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{nextID: 1, rows: make(map[int64]*models.Assignment)}
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, a *models.Assignment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return 0, errors.New("insert refused")
	}
	id := f.nextID
	f.nextID++
	cp := *a
	cp.ID = id
	f.rows[id] = &cp
	return id, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeAssignmentRepo) GetForTeacher(ctx context.Context, id int64, teacherID string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.TeacherID != teacherID {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, a *models.Assignment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[a.ID]
	if !ok || row.TeacherID != a.TeacherID {
		return false, nil
	}
	cp := *a
	f.rows[a.ID] = &cp
	return true, nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id int64, teacherID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.TeacherID != teacherID {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func (f *fakeAssignmentRepo) Exists(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeAssignmentRepo) ListRefsForTeacher(ctx context.Context, teacherID string) ([]models.AssignmentRef, error) {
	return nil, nil
}

func (f *fakeAssignmentRepo) ListWithStatusForStudent(ctx context.Context, studentID string) ([]models.AssignmentWithStatus, error) {
	return nil, nil
}

func (f *fakeAssignmentRepo) CountsForStudent(ctx context.Context, studentID string) (*models.StudentCounts, error) {
	return &models.StudentCounts{}, nil
}

func (f *fakeAssignmentRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeEventPublisher struct {
	mu        sync.Mutex
	created   []*models.SubmissionCreatedEvent
	evaluated []*models.SubmissionEvaluatedEvent
	fail      bool
}

func (f *fakeEventPublisher) PublishSubmissionCreated(ctx context.Context, e *models.SubmissionCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEventPublisher) PublishSubmissionEvaluated(ctx context.Context, e *models.SubmissionEvaluatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.evaluated = append(f.evaluated, e)
	return nil
}

func (f *fakeEventPublisher) Close() error { return nil }
