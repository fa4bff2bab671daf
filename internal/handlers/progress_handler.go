package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"storyjars/internal/models"
	"storyjars/internal/repository"
	"storyjars/internal/service"
)

// ProgressHandler handles reading progress and question gating HTTP requests
type ProgressHandler struct {
	progressService *service.ProgressService
	limiterService  *service.LimiterService
	profileService  *service.ProfileService
	emailService    *service.EmailService
	parentRepo      *repository.ParentRepository
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService, limiterService *service.LimiterService, profileService *service.ProfileService, emailService *service.EmailService, parentRepo *repository.ParentRepository) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		limiterService:  limiterService,
		profileService:  profileService,
		emailService:    emailService,
		parentRepo:      parentRepo,
	}
}

func (h *ProgressHandler) resolveProfile(r *http.Request) (*models.Profile, error) {
	profile, err := h.profileService.GetProfile(r.PathValue("uid"))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, service.ErrProfileNotFound
	}
	return profile, nil
}

// CompleteChapter records a finished chapter, paying out and adjusting the
// reading level on first attempts
func (h *ProgressHandler) CompleteChapter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LearnerID       string `json:"learner_id"`
		ChapterID       int64  `json:"chapter_id"`
		DurationSeconds int    `json:"duration_seconds"`
		Score           int    `json:"score"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.progressService.CompleteChapter(req.LearnerID, req.ChapterID, req.DurationSeconds, req.Score, r.PathValue("uid"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// NextChapter suggests the next unread chapter in a book
func (h *ProgressHandler) NextChapter(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	query := r.URL.Query()
	bookTitle := query.Get("book")
	if bookTitle == "" {
		respondWithError(w, http.StatusBadRequest, "Missing book parameter")
		return
	}

	currentNumber, _ := strconv.Atoi(query.Get("after"))
	learnerID := query.Get("learner_id")

	level := profile.ReadingLevel
	if requested := query.Get("level"); requested != "" {
		level = models.ParseReadingLevel(requested)
	}

	chapter, err := h.progressService.GetNextChapter(bookTitle, currentNumber, level, learnerID, profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if chapter == nil {
		respondWithError(w, http.StatusNotFound, "No further chapters available")
		return
	}
	respondWithJSON(w, http.StatusOK, chapter)
}

// AnswerQuestion records a comprehension answer, subject to daily and
// lifetime limits
func (h *ProgressHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	var req struct {
		QuestionID string `json:"question_id"`
		Outcome    string `json:"outcome"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Outcome != models.OutcomeCorrect && req.Outcome != models.OutcomeIncorrect {
		respondWithError(w, http.StatusBadRequest, "Outcome must be correct or incorrect")
		return
	}

	result, err := h.limiterService.AnswerQuestion(profile, req.QuestionID, req.Outcome)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if result.Milestone > 0 {
		go h.notifyParentsOfMilestone(profile.Name, result.Remaining)
	}

	respondWithJSON(w, http.StatusOK, result)
}

// notifyParentsOfMilestone emails every parent account when a child
// crosses a remaining-questions threshold
func (h *ProgressHandler) notifyParentsOfMilestone(childName string, remaining int) {
	if h.emailService == nil || !h.emailService.IsEnabled() {
		return
	}

	parents, err := h.parentRepo.ListParents()
	if err != nil {
		log.Printf("Failed to list parents for milestone email: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, parent := range parents {
		if err := h.emailService.SendMilestoneEmail(ctx, parent.Email, childName, remaining); err != nil {
			log.Printf("Failed to send milestone email to %s: %v", parent.Email, err)
		}
	}
}

// GetAllowance reports today's question count and remaining lifetime allowance
func (h *ProgressHandler) GetAllowance(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	answeredToday, err := h.limiterService.AnsweredToday(profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	lifetimeRemaining, err := h.limiterService.LifetimeRemaining(profile)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	earnedToday, err := h.limiterService.EarnedToday(profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"answered_today":     answeredToday,
		"daily_limit":        h.limiterService.DailyQuestionLimit(profile),
		"lifetime_remaining": lifetimeRemaining,
		"earned_today":       earnedToday,
		"earning_limit":      h.limiterService.DailyEarningLimit(),
	})
}

// GetStreak returns the profile's consecutive-day reading streak
func (h *ProgressHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	profile, err := h.resolveProfile(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	learnerID := r.URL.Query().Get("learner_id")
	streak, err := h.progressService.ReadingStreak(learnerID, profile.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

// RemoveDuplicateCompletions deletes duplicate completion rows for a learner
func (h *ProgressHandler) RemoveDuplicateCompletions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LearnerID string `json:"learner_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	removed, err := h.progressService.RemoveDuplicateCompletions(req.LearnerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
