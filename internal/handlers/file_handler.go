package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"vault-backend/internal/dto"
	"vault-backend/internal/middleware"
	"vault-backend/internal/services"
	"vault-backend/internal/storage"
	"vault-backend/utils/response"
)

type FileHandler struct {
	service        *services.FileService
	maxUploadBytes int64
}

func NewFileHandler(service *services.FileService, maxUploadBytes int64) *FileHandler {
	return &FileHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Upload accepts a single multipart field named "file" and persists it for
// the session's owner.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(32 * 1024 * 1024); err != nil {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Failed to get file from form: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read file: %v", err))
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	if _, err := h.service.Upload(r.Context(), middleware.SessionToken(r), header.Filename, mediaType, data); err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			response.Error(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

// List returns the caller's files as a JSON array.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.List(r.Context(), middleware.SessionToken(r))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			response.Error(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]dto.FileListItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, dto.FileListItem{
			ID:         info.ID,
			Name:       info.Name,
			Type:       info.MediaType,
			Size:       info.Size,
			UploadedAt: info.UploadedAt,
			UploadedBy: info.OwnerName,
		})
	}

	response.JSON(w, http.StatusOK, items)
}

// Download streams the stored bytes back with the declared media type. A
// malformed or unknown id, or a file owned by someone else, is the same 404.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.Text(w, http.StatusNotFound, "File not found")
		return
	}

	file, err := h.service.Download(r.Context(), middleware.SessionToken(r), fileID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthenticated):
			response.Error(w, http.StatusUnauthorized, "Not authenticated")
		case errors.Is(err, storage.ErrNotFound):
			response.Text(w, http.StatusNotFound, "File not found")
		default:
			response.Text(w, http.StatusInternalServerError, "Error downloading file")
		}
		return
	}

	w.Header().Set("Content-Type", file.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(file.Data)))

	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
