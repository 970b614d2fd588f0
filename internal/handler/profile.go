package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/sakif/talenthub/internal/auth"
	"github.com/sakif/talenthub/internal/service"
)

// maxUploadBytes bounds the multipart form kept in memory during an upload.
const maxUploadBytes = 32 << 20 // 32 MB

// ProfileHandler serves the authenticated self-service endpoints: the
// resume/photo upload and profile reads.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleUpload attaches a resume and photo to the caller's account.
//
// HTTP: POST /api/upload
// Auth: user token (RequireAuth sets claims in context)
// BODY: multipart/form-data with fields "resume" and "photo"
//
// Missing either file is a 400 before anything is written; the service
// rejects partial uploads.
func (h *ProfileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Warn("invalid multipart upload", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "resume and photo are required"})
		return
	}

	resume := readFormFile(r, "resume")
	photo := readFormFile(r, "photo")

	view, err := h.profiles.Upload(r.Context(), claims.UserID, resume, photo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "resume and photo uploaded successfully",
		"user":    view,
	})
}

// HandleProfile returns the caller's own profile.
//
// HTTP: GET /api/profile
// Auth: user token
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	view, err := h.profiles.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": view})
}

// HandleGetUser returns any user's non-secret fields by ID.
//
// HTTP: GET /api/users/{id}
// Auth: user token. There is deliberately no ownership check: any
// authenticated user can read any account's public fields. Flagged in
// DESIGN.md as a likely authorization gap.
func (h *ProfileHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "user ID is required"})
		return
	}

	view, err := h.profiles.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": view})
}

// readFormFile pulls one named file out of a parsed multipart form.
// Returns nil when the field is absent — the service decides whether a
// missing file is an error.
func readFormFile(r *http.Request, field string) *service.FileUpload {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil
	}

	return &service.FileUpload{
		Filename:    header.Filename,
		ContentType: formFileContentType(header),
		Data:        data,
	}
}

func formFileContentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}
