package handlers

import (
	"net/http"

	"storyjars/internal/models"
	"storyjars/internal/service"
)

// ProfileHandler handles child profile HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// CreateProfile creates a new child profile with a starter jar
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID    string `json:"uid"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.profileService.CreateProfile(req.UID, req.Name, req.Avatar)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, profile)
}

// ListProfiles returns all child profiles on this device
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileService.ListProfiles()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profiles)
}

// GetProfile returns a single profile by its UID
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetProfile(r.PathValue("uid"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if profile == nil {
		respondWithServiceError(w, service.ErrProfileNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// DeleteProfile removes a profile and all of its data
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.profileService.DeleteProfile(r.PathValue("uid")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetReadingLevel returns the profile's current reading level
func (h *ProfileHandler) GetReadingLevel(w http.ResponseWriter, r *http.Request) {
	level, err := h.profileService.GetReadingLevel(r.PathValue("uid"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"reading_level": level,
		"ordinal":       level.Ordinal(),
	})
}

// SetReadingLevel overrides the profile's reading level
func (h *ProfileHandler) SetReadingLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReadingLevel string `json:"reading_level"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.profileService.SetReadingLevel(r.PathValue("uid"), models.ReadingLevel(req.ReadingLevel)); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// UpdateAvatar changes the profile's avatar
func (h *ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.profileService.UpdateAvatar(r.PathValue("uid"), req.Avatar); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
