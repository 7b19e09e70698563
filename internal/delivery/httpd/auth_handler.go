package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assignment-evaluator/backend/internal/models"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"role": response.Role,
		"id":   response.ID,
		"name": response.Name,
	})
}

func (h *Handler) StudentInfo(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")

	student, err := h.authService.GetStudentProfile(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"student": student,
	})
}

func (h *Handler) TeacherInfo(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	teacher, err := h.authService.GetTeacherProfile(r.Context(), teacherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"teacher": teacher,
	})
}
