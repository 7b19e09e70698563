package httpd

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/assignment-evaluator/backend/internal/models"
)

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	assignmentID, err := strconv.ParseInt(r.FormValue("assignment_id"), 10, 64)
	if err != nil || assignmentID <= 0 {
		writeError(w, http.StatusBadRequest, "assignment_id must be a positive integer")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	response, err := h.submissionService.Create(r.Context(), &models.CreateSubmissionRequest{
		StudentID:    studentID,
		AssignmentID: assignmentID,
		FileName:     fileHeader.Filename,
		FileContent:  fileBytes,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Comments:     r.FormValue("comments"),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"message":       "Submission created",
		"submission_id": response.SubmissionID,
		"file_url":      response.FileURL,
	})
}

func (h *Handler) ReplaceSubmissionFile(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	submissionID, ok := pathInt64(r, "submission_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "submission_id must be a positive integer")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	response, err := h.submissionService.ReplaceFile(r.Context(), &models.ReplaceSubmissionFileRequest{
		StudentID:    studentID,
		SubmissionID: submissionID,
		FileName:     fileHeader.Filename,
		FileContent:  fileBytes,
		ContentType:  fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"message":      "Submission file replaced",
		"file_url":     response.FileURL,
		"submitted_at": response.SubmittedAt,
	})
}

func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "student_id")
	submissionID, ok := pathInt64(r, "submission_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "submission_id must be a positive integer")
		return
	}

	if err := h.submissionService.Delete(r.Context(), studentID, submissionID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Submission deleted",
	})
}

func (h *Handler) EvaluateSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := pathInt64(r, "submission_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "submission_id must be a positive integer")
		return
	}

	var req models.EvaluateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "marks is required and must be a non-negative integer")
		return
	}

	if err := h.submissionService.Evaluate(r.Context(), submissionID, *req.Marks, req.Feedback); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Submission evaluated",
	})
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := pathInt64(r, "submission_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "submission_id must be a positive integer")
		return
	}

	details, err := h.submissionService.GetDetails(r.Context(), submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"submission": details,
	})
}
