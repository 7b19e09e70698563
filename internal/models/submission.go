package models

import (
	"time"
)

type Submission struct {
	ID           int64     `json:"id" db:"submission_id"`
	AssignmentID int64     `json:"assignment_id" db:"assignment_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	FileURL      string    `json:"file_url" db:"file_url"`
	Comments     string    `json:"comments,omitempty" db:"comments"`
	Marks        *int      `json:"marks,omitempty" db:"marks"`
	Feedback     string    `json:"feedback,omitempty" db:"feedback"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
}

// Status возвращает вычисленный статус для уже загруженной записи.
func (s *Submission) Status() SubmissionStatus {
	return ResolveStatus(true, s.Marks)
}

// SubmissionWithDetails — сдача с данными студента и задания
// для списков преподавателя и страницы оценивания.
type SubmissionWithDetails struct {
	Submission
	StudentName        string           `json:"student_name" db:"student_name"`
	AssignmentTitle    string           `json:"assignment_title" db:"assignment_title"`
	AssignmentDeadline time.Time        `json:"deadline" db:"assignment_deadline"`
	ComputedStatus     SubmissionStatus `json:"status" db:"status"`
}

// SubmissionResult — оценённая сдача для страницы результатов студента.
type SubmissionResult struct {
	SubmissionID    int64     `json:"submission_id"`
	AssignmentID    int64     `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	Subject         string    `json:"subject"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Marks           int       `json:"marks"`
	Feedback        string    `json:"feedback"`
}
