package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/talenthub/internal/service"
)

// AdminHandler serves the admin-gated endpoints. Routes using it sit behind
// both RequireAuth and RequireAdmin — by the time a request lands here, the
// token was verified and its role claim is "admin".
type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// HandleDashboard returns aggregate counts and the user list.
//
// HTTP: GET /admin/dashboard
// Auth: admin token
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.admin.GetDashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// HandleGetUser returns a user sans password hash.
//
// HTTP: GET /admin/user/{id}
// Auth: admin token
func (h *AdminHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "user ID is required"})
		return
	}

	view, err := h.admin.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": view})
}

// HandleDeleteUser deletes an account.
//
// HTTP: DELETE /admin/user/{id}
// Auth: admin token
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "user ID is required"})
		return
	}

	if err := h.admin.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
