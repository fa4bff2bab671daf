package handlers

import (
	"net/http"

	"storyjars/internal/repository"
	"storyjars/internal/service"
)

// ParentHandler handles parent account and device settings HTTP requests
type ParentHandler struct {
	authService   *service.AuthService
	settingsRepo  *repository.SettingsRepository
	backupService *service.BackupService
}

// NewParentHandler creates a new parent handler
func NewParentHandler(authService *service.AuthService, settingsRepo *repository.SettingsRepository, backupService *service.BackupService) *ParentHandler {
	return &ParentHandler{
		authService:   authService,
		settingsRepo:  settingsRepo,
		backupService: backupService,
	}
}

// Register creates a parent account guarded by a PIN
func (h *ParentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		PIN   string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	parent, err := h.authService.RegisterParent(req.Email, req.PIN)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    parent.ID,
		"email": parent.Email,
	})
}

// Login verifies a parent PIN and returns a session token
func (h *ParentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		PIN   string `json:"pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, parent, err := h.authService.Login(req.Email, req.PIN)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"email": parent.Email,
	})
}

// ChangePIN updates the parent PIN after verifying the current one
func (h *ParentHandler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	claims := GetParentFromContext(r.Context())
	if claims == nil {
		respondWithError(w, http.StatusUnauthorized, "Missing session")
		return
	}

	var req struct {
		CurrentPIN string `json:"current_pin"`
		NewPIN     string `json:"new_pin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.ChangePIN(claims.Email, req.CurrentPIN, req.NewPIN); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// SetDailyEarningLimit configures the device-wide daily earning cap
func (h *ParentHandler) SetDailyEarningLimit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit float64 `json:"limit"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit <= 0 {
		respondWithError(w, http.StatusBadRequest, "Limit must be positive")
		return
	}

	if err := h.settingsRepo.SetDailyEarningLimit(req.Limit); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]float64{"limit": req.Limit})
}

// SetPremium toggles premium entitlement for a profile
func (h *ParentHandler) SetPremium(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileUID string `json:"profile_uid"`
		Active     bool   `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProfileUID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing profile_uid")
		return
	}

	if err := h.settingsRepo.SetPremium(req.ProfileUID, req.Active); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile_uid": req.ProfileUID,
		"active":      req.Active,
	})
}

// ExportBackup streams a full JSON backup of the device database
func (h *ParentHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=storyjars_backup.json")
	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithServiceError(w, err)
	}
}
