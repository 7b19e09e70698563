package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")

	dashboard, err := h.dashboardService.StudentDashboard(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"student_id":        dashboard.StudentID,
		"total_assignments": dashboard.Counts.Total,
		"submitted":         dashboard.Counts.Submitted,
		"evaluated":         dashboard.Counts.Evaluated,
		"pending":           dashboard.Counts.Pending,
		"assignments":       dashboard.Assignments,
	})
}

func (h *Handler) StudentAssignments(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")

	assignments, err := h.dashboardService.StudentAssignments(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
	})
}

func (h *Handler) StudentResults(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")

	results, err := h.dashboardService.StudentResults(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

func (h *Handler) TeacherDashboard(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	dashboard, err := h.dashboardService.TeacherDashboard(r.Context(), teacherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"teacher_id":           dashboard.TeacherID,
		"total_assignments":    dashboard.Counts.TotalAssignments,
		"submissions_received": dashboard.Counts.SubmissionsReceived,
		"pending_evaluation":   dashboard.Counts.PendingEvaluation,
		"evaluated":            dashboard.Counts.EvaluatedCount,
		"recent_submissions":   dashboard.RecentSubmissions,
	})
}

func (h *Handler) TeacherSubmissions(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	submissions, err := h.dashboardService.TeacherSubmissions(r.Context(), teacherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
	})
}

func (h *Handler) TeacherAssignments(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	assignments, err := h.dashboardService.TeacherAssignments(r.Context(), teacherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
	})
}
