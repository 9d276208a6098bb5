package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"evreserve/internal/auth"
	"evreserve/internal/service"
)

// AdminHandler serves login, administrative deletion and the maintenance jobs.
type AdminHandler struct {
	svc    *service.ReservationsService
	admin  *auth.Admin
	logger *zap.Logger
}

// NewAdminHandler returns handler.
func NewAdminHandler(svc *service.ReservationsService, admin *auth.Admin, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, admin: admin, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin serves POST /auth/login.
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.admin.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("admin login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleDelete serves DELETE /admin/reservations/{id}.
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.DeleteReservation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "reservation not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleMigrateTimes serves POST /admin/maintenance/migrate-times.
func (h *AdminHandler) HandleMigrateTimes(w http.ResponseWriter, r *http.Request) {
	migrated, err := h.svc.MigrateTimestamps(r.Context())
	if err != nil {
		h.logger.Error("timestamp migration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "migration failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"migrated": migrated})
}

// HandleReconcileSlots serves POST /admin/maintenance/reconcile-slots.
func (h *AdminHandler) HandleReconcileSlots(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.svc.ReconcileSlots(r.Context())
	if err != nil {
		h.logger.Error("slot reconciliation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"repaired": repaired})
}
