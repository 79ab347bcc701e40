package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/emsi-platform/studyhub/internal/apperr"
	"github.com/emsi-platform/studyhub/internal/models"
)

const uploadField = "file"

// UploadFile stores the multipart "file" field under courses/{course_id}/.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	courseID := mux.Vars(r)["course_id"]

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperr.Invalid("file exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.writeError(w, r, apperr.Wrap(apperr.KindInvalid, err, fmt.Sprintf("multipart field %q is required", uploadField)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindInvalid, err, "could not read upload"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	name := sanitizeFileName(header.Filename)
	rec := &models.FileRecord{
		UserID:   userID,
		CourseID: courseID,
		FileName: name,
		FilePath: path.Join("courses", courseID, name),
		FileType: contentType,
		FileSize: int64(len(data)),
	}

	if err := h.objects.Upload(r.Context(), rec.FilePath, contentType, data); err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindUpstream, err, "upload failed"))
		return
	}
	if err := h.store.CreateFile(r.Context(), rec); err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindInternal, err, "Failed to save metadata"))
		return
	}

	h.logger.Info("Uploaded file",
		zap.String("file", rec.FileName),
		zap.String("course_id", courseID),
		zap.Int64("size", rec.FileSize))
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":   "File uploaded successfully",
		"file_data": rec,
	})
}

func (h *Handler) GetFiles(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	files, err := h.store.ListFiles(r.Context(), userID, mux.Vars(r)["course_id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// GenerateDownloadURL signs the newest file of that name in the course. It
// also serves preview links, which use the same signed URL.
func (h *Handler) GenerateDownloadURL(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	files, err := h.store.ListFiles(r.Context(), userID, vars["course_id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var match *models.FileRecord
	for i := range files {
		if files[i].FileName == vars["file_name"] {
			match = &files[i]
		}
	}
	if match == nil {
		h.writeError(w, r, apperr.NotFound("File not found"))
		return
	}

	url, err := h.objects.SignedDownloadURL(r.Context(), match.FilePath, h.urlTTL)
	if err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindInvalid, err, "could not create download URL"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// DeleteFile removes the stored object first, then the record.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	rec, err := h.store.GetFile(r.Context(), vars["file_id"])
	if err != nil {
		h.writeError(w, r, storeError(err, "File not found"))
		return
	}
	if rec.UserID != userID || rec.CourseID != vars["course_id"] {
		h.writeError(w, r, apperr.NotFound("File not found"))
		return
	}

	if err := h.objects.Delete(r.Context(), rec.FilePath); err != nil {
		h.writeError(w, r, apperr.Wrap(apperr.KindUpstream, err, "delete failed"))
		return
	}
	if err := h.store.DeleteFile(r.Context(), rec.ID); err != nil {
		h.writeError(w, r, storeError(err, "File not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}
