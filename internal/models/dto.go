package models

import "time"

// Data Transfer Objects

type CreateSubmissionRequest struct {
	StudentID    string
	AssignmentID int64
	FileName     string
	FileContent  []byte
	ContentType  string
	Comments     string
}

type CreateSubmissionResponse struct {
	SubmissionID int64  `json:"submission_id"`
	FileURL      string `json:"file_url"`
}

type ReplaceSubmissionFileRequest struct {
	StudentID    string
	SubmissionID int64
	FileName     string
	FileContent  []byte
	ContentType  string
}

type ReplaceSubmissionFileResponse struct {
	FileURL     string    `json:"file_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type EvaluateSubmissionRequest struct {
	Marks    *int   `json:"marks" validate:"required,gte=0"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

type CreateAssignmentRequest struct {
	TeacherID   string
	Title       string
	Subject     string
	Description string
	Deadline    time.Time
	MaxMarks    int
	FileName    string
	FileContent []byte
	ContentType string
}

type CreateAssignmentResponse struct {
	AssignmentID int64  `json:"assignment_id"`
	FileURL      string `json:"file_url,omitempty"`
}

// UpdateAssignmentRequest: title обязателен при каждом вызове,
// остальные поля меняются только если переданы.
type UpdateAssignmentRequest struct {
	TeacherID    string
	AssignmentID int64
	Title        string
	Subject      *string
	Description  *string
	Deadline     *time.Time
	MaxMarks     *int
	FileName     string
	FileContent  []byte
	ContentType  string
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Role string `json:"role"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type StudentDashboard struct {
	StudentID   string                 `json:"student_id"`
	Counts      StudentCounts          `json:"-"`
	Assignments []AssignmentWithStatus `json:"assignments"`
}

type TeacherDashboard struct {
	TeacherID         string                  `json:"teacher_id"`
	Counts            TeacherCounts           `json:"-"`
	RecentSubmissions []SubmissionWithDetails `json:"recent_submissions"`
}

type AssignmentRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// События для брокера (запускают нотификации, аналитику и т.п.).

type SubmissionCreatedEvent struct {
	SubmissionID int64  `json:"submission_id"`
	AssignmentID int64  `json:"assignment_id"`
	StudentID    string `json:"student_id"`
	FileURL      string `json:"file_url"`
	Timestamp    int64  `json:"timestamp"`
}

type SubmissionEvaluatedEvent struct {
	SubmissionID int64  `json:"submission_id"`
	Marks        int    `json:"marks"`
	Timestamp    int64  `json:"timestamp"`
}
