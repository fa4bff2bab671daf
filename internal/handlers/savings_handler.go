package handlers

import (
	"net/http"
	"strconv"

	"storyjars/internal/models"
	"storyjars/internal/naming"
	"storyjars/internal/service"
)

// SavingsHandler handles savings jar and ledger HTTP requests
type SavingsHandler struct {
	ledgerService  *service.LedgerService
	profileService *service.ProfileService
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(ledgerService *service.LedgerService, profileService *service.ProfileService) *SavingsHandler {
	return &SavingsHandler{
		ledgerService:  ledgerService,
		profileService: profileService,
	}
}

func (h *SavingsHandler) resolveProfile(r *http.Request) (*models.Profile, error) {
	profile, err := h.profileService.GetProfile(r.PathValue("uid"))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, service.ErrProfileNotFound
	}
	return profile, nil
}

func parseJarID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("jarId"), 10, 64)
}

// CreateJar creates a new savings jar for a profile
func (h *SavingsHandler) CreateJar(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Emoji string `json:"emoji"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	jar, err := h.ledgerService.CreateJar(profile.ID, req.Name, req.Emoji)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, jar)
}

// ListJars returns all jars belonging to a profile
func (h *SavingsHandler) ListJars(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	jars, err := h.ledgerService.ListJars(profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, jars)
}

// GetJar returns a single jar
func (h *SavingsHandler) GetJar(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	jarID, err := parseJarID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid jar ID")
		return
	}

	jar, err := h.ledgerService.GetJar(jarID, profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, jar)
}

// DeleteJar removes a jar and its transactions
func (h *SavingsHandler) DeleteJar(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	jarID, err := parseJarID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid jar ID")
		return
	}

	if err := h.ledgerService.DeleteJar(jarID, profile.ID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetTransactions returns a jar's transaction history, newest first
func (h *SavingsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	jarID, err := parseJarID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid jar ID")
		return
	}

	transactions, err := h.ledgerService.GetTransactions(jarID, profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

type moneyRequest struct {
	Amount float64 `json:"amount"`
	Memo   string  `json:"memo"`
}

// AddMoney deposits into a jar
func (h *SavingsHandler) AddMoney(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	jarID, err := parseJarID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid jar ID")
		return
	}

	var req moneyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.ledgerService.AddMoney(jarID, req.Amount, req.Memo, profile.ID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	jar, err := h.ledgerService.GetJar(jarID, profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, jar)
}

// RemoveMoney withdraws from a jar
func (h *SavingsHandler) RemoveMoney(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	jarID, err := parseJarID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid jar ID")
		return
	}

	var req moneyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.ledgerService.RemoveMoney(jarID, req.Amount, req.Memo, profile.ID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	jar, err := h.ledgerService.GetJar(jarID, profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, jar)
}

// Transfer moves money between two jars atomically
func (h *SavingsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	var req struct {
		FromJarID int64   `json:"from_jar_id"`
		ToJarID   int64   `json:"to_jar_id"`
		Amount    float64 `json:"amount"`
		Memo      string  `json:"memo"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.ledgerService.Transfer(req.FromJarID, req.ToJarID, req.Amount, req.Memo, profile.ID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

// GetStatistics returns aggregate savings figures for a profile
func (h *SavingsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	stats, err := h.ledgerService.GetStatistics(profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// Diagnose compares cached jar balances against the transaction ledger
func (h *SavingsHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	diagnosis, err := h.ledgerService.Diagnose(profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, diagnosis)
}

// Repair resets drifted jar balances to their ledger-calculated values
func (h *SavingsHandler) Repair(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	result, err := h.ledgerService.Repair(profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SuggestJarName returns a randomly generated jar name
func (h *SavingsHandler) SuggestJarName(w http.ResponseWriter, r *http.Request) {
	name, err := naming.SuggestJarName()
	if err != nil {
		name = naming.FallbackJarName
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"name": name})
}
