package httpd

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/assignment-evaluator/backend/internal/models"
)

// Дедлайн принимается в RFC3339 либо как дата без времени.
func parseDeadline(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// readOptionalFile достаёт файл из формы, если он там есть.
func readOptionalFile(r *http.Request) (name string, content []byte, contentType string, err error) {
	file, fileHeader, ferr := r.FormFile("file")
	if ferr != nil {
		if ferr == http.ErrMissingFile {
			return "", nil, "", nil
		}
		return "", nil, "", ferr
	}
	defer file.Close()

	content, err = io.ReadAll(file)
	if err != nil {
		return "", nil, "", err
	}

	return fileHeader.Filename, content, fileHeader.Header.Get("Content-Type"), nil
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	deadline, ok := parseDeadline(r.FormValue("deadline"))
	if !ok {
		writeError(w, http.StatusBadRequest, "deadline is required and must be a valid timestamp")
		return
	}

	maxMarks, err := strconv.Atoi(r.FormValue("max_marks"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "max_marks must be an integer")
		return
	}

	fileName, fileContent, contentType, err := readOptionalFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	response, err := h.assignmentService.Create(r.Context(), &models.CreateAssignmentRequest{
		TeacherID:   teacherID,
		Title:       r.FormValue("title"),
		Subject:     r.FormValue("subject"),
		Description: r.FormValue("description"),
		Deadline:    deadline,
		MaxMarks:    maxMarks,
		FileName:    fileName,
		FileContent: fileContent,
		ContentType: contentType,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	fields := map[string]interface{}{
		"message":       "Assignment created",
		"assignment_id": response.AssignmentID,
	}
	if response.FileURL != "" {
		fields["file_url"] = response.FileURL
	}

	writeSuccess(w, http.StatusCreated, fields)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")
	assignmentID, ok := pathInt64(r, "assignment_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "assignment_id must be a positive integer")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	req := &models.UpdateAssignmentRequest{
		TeacherID:    teacherID,
		AssignmentID: assignmentID,
		Title:        r.FormValue("title"),
	}

	if v := r.FormValue("subject"); r.Form.Has("subject") {
		req.Subject = &v
	}
	if v := r.FormValue("description"); r.Form.Has("description") {
		req.Description = &v
	}
	if v := r.FormValue("deadline"); v != "" {
		deadline, ok := parseDeadline(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "deadline must be a valid timestamp")
			return
		}
		req.Deadline = &deadline
	}
	if v := r.FormValue("max_marks"); v != "" {
		maxMarks, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_marks must be an integer")
			return
		}
		req.MaxMarks = &maxMarks
	}

	fileName, fileContent, contentType, err := readOptionalFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	req.FileName = fileName
	req.FileContent = fileContent
	req.ContentType = contentType

	if err := h.assignmentService.Update(r.Context(), req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Assignment updated",
	})
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")
	assignmentID, ok := pathInt64(r, "assignment_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "assignment_id must be a positive integer")
		return
	}

	if err := h.assignmentService.Delete(r.Context(), teacherID, assignmentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Assignment deleted",
	})
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := pathInt64(r, "assignment_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "assignment_id must be a positive integer")
		return
	}

	assignment, err := h.assignmentService.GetByID(r.Context(), assignmentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"assignment": assignment,
	})
}
