package models

import (
	"time"
)

type Assignment struct {
	ID          int64     `json:"id" db:"assignment_id"`
	Title       string    `json:"title" db:"title"`
	Subject     string    `json:"subject" db:"subject"`
	Description string    `json:"description" db:"description"`
	Deadline    time.Time `json:"deadline" db:"deadline"`
	MaxMarks    int       `json:"max_marks" db:"max_marks"`
	TeacherID   string    `json:"teacher_id" db:"teacher_id"`
	FileURL     string    `json:"file_url,omitempty" db:"file_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AssignmentWithStatus — строка студенческого дашборда: задание плюс
// вычисленный статус сдачи этого студента.
type AssignmentWithStatus struct {
	ID          int64            `json:"id" db:"assignment_id"`
	Title       string           `json:"title" db:"title"`
	Subject     string           `json:"subject" db:"subject"`
	Deadline    time.Time        `json:"deadline" db:"deadline"`
	Status      SubmissionStatus `json:"submission_status" db:"submission_status"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty" db:"submitted_at"`
}

type StudentCounts struct {
	Total     int `json:"total_assignments"`
	Submitted int `json:"submitted_count"`
	Evaluated int `json:"evaluated_count"`
	Pending   int `json:"pending_count"`
}

type TeacherCounts struct {
	TotalAssignments    int `json:"total_assignments"`
	SubmissionsReceived int `json:"submissions_received"`
	PendingEvaluation   int `json:"pending_evaluation"`
	EvaluatedCount      int `json:"evaluated_count"`
}
