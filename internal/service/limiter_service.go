package service

import (
	"time"

	"storyjars/internal/models"
	"storyjars/internal/repository"
)

// Limits for free-tier profiles. Premium removes the question caps
// entirely (UnlimitedQuestions sentinel, never a large number).
const (
	FreeDailyQuestionLimit    = 20
	FreeLifetimeQuestionLimit = 100
	DefaultDailyEarningLimit  = 5.0
	UnlimitedQuestions        = -1
)

// milestoneThresholds in descending strictness: only the tightest unfired
// threshold fires on a given call
var milestoneThresholds = [3]int{25, 50, 75}

// Answer statuses returned to the quiz UI. Limit breaches are states, not
// errors: nothing is written and the caller shows an upgrade prompt.
const (
	StatusOK                   = "ok"
	StatusLimitReached         = "limitReached"
	StatusLifetimeLimitReached = "lifetimeLimitReached"
)

// Entitlements is the subscription-status collaborator boundary: it
// reports whether a profile's question caps are waived.
type Entitlements interface {
	IsPremium(profileUID string) bool
}

// AnswerResult reports the outcome of one answer attempt. Milestone is
// the threshold that fired on this call, or zero.
type AnswerResult struct {
	Status    string
	Remaining int
	Milestone int
}

// LimiterService enforces the daily earning cap and the daily/lifetime
// question caps. Every count is recomputed from the append-only logs;
// the settings store holds only configured limits and has-fired flags.
type LimiterService struct {
	questionRepo *repository.QuestionRepository
	jarRepo      *repository.JarRepository
	settingsRepo *repository.SettingsRepository
	entitlements Entitlements
}

// NewLimiterService creates a new limiter service
func NewLimiterService(
	questionRepo *repository.QuestionRepository,
	jarRepo *repository.JarRepository,
	settingsRepo *repository.SettingsRepository,
	entitlements Entitlements,
) *LimiterService {
	return &LimiterService{
		questionRepo: questionRepo,
		jarRepo:      jarRepo,
		settingsRepo: settingsRepo,
		entitlements: entitlements,
	}
}

// EarnedToday sums the positive transactions a profile earned today
func (s *LimiterService) EarnedToday(profileID int64) (float64, error) {
	return s.jarRepo.SumEarnedOnDate(profileID, localDate(time.Now()))
}

// DailyEarningLimit returns the configured daily earning cap
func (s *LimiterService) DailyEarningLimit() float64 {
	return s.settingsRepo.GetDailyEarningLimit(DefaultDailyEarningLimit)
}

// CanEarnMoreToday reports whether crediting amount would stay inside the
// daily earning cap
func (s *LimiterService) CanEarnMoreToday(amount float64, profileID int64) (bool, error) {
	earned, err := s.EarnedToday(profileID)
	if err != nil {
		return false, err
	}
	return earned+amount <= s.DailyEarningLimit()+balanceEpsilon, nil
}

// AnsweredToday counts a profile's question reports for today
func (s *LimiterService) AnsweredToday(profileID int64) (int, error) {
	return s.questionRepo.CountOnDate(profileID, localDate(time.Now()))
}

// DailyQuestionLimit returns the profile's daily question cap
func (s *LimiterService) DailyQuestionLimit(profile *models.Profile) int {
	if s.entitlements.IsPremium(profile.UID) {
		return UnlimitedQuestions
	}
	return FreeDailyQuestionLimit
}

// LifetimeRemaining returns how many lifetime questions the profile has
// left, or UnlimitedQuestions for premium
func (s *LimiterService) LifetimeRemaining(profile *models.Profile) (int, error) {
	if s.entitlements.IsPremium(profile.UID) {
		return UnlimitedQuestions, nil
	}
	total, err := s.questionRepo.CountAll(profile.ID)
	if err != nil {
		return 0, err
	}
	remaining := FreeLifetimeQuestionLimit - total
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// AnswerQuestion gates and records one answered question. Order matters:
// daily cap, then lifetime cap, then the write, then milestone state. A
// rejected answer never reaches the log.
func (s *LimiterService) AnswerQuestion(profile *models.Profile, questionID, outcome string) (*AnswerResult, error) {
	premium := s.entitlements.IsPremium(profile.UID)

	if !premium {
		answered, err := s.AnsweredToday(profile.ID)
		if err != nil {
			return nil, err
		}
		if answered >= FreeDailyQuestionLimit {
			return &AnswerResult{Status: StatusLimitReached}, nil
		}

		total, err := s.questionRepo.CountAll(profile.ID)
		if err != nil {
			return nil, err
		}
		if total >= FreeLifetimeQuestionLimit {
			return &AnswerResult{Status: StatusLifetimeLimitReached}, nil
		}
	}

	if _, err := s.questionRepo.AppendReport(questionID, outcome, localDate(time.Now()), profile.ID); err != nil {
		return nil, err
	}

	result := &AnswerResult{Status: StatusOK, Remaining: UnlimitedQuestions}
	if premium {
		return result, nil
	}

	remaining, err := s.LifetimeRemaining(profile)
	if err != nil {
		return nil, err
	}
	result.Remaining = remaining

	milestone, err := s.evaluateMilestone(profile.UID, remaining)
	if err != nil {
		return nil, err
	}
	result.Milestone = milestone
	return result, nil
}

// evaluateMilestone fires at most one threshold per call. Once the
// 25-threshold has fired nothing further is ever produced for the
// profile.
func (s *LimiterService) evaluateMilestone(profileUID string, remaining int) (int, error) {
	if s.settingsRepo.IsMilestoneShown(profileUID, 25) {
		return 0, nil
	}

	// A milestone fires when the remaining count drops below its
	// threshold, not when it lands on it: 25 fires at 24 remaining.
	for _, threshold := range milestoneThresholds {
		if remaining < threshold && !s.settingsRepo.IsMilestoneShown(profileUID, threshold) {
			if err := s.settingsRepo.MarkMilestoneShown(profileUID, threshold); err != nil {
				return 0, err
			}
			return threshold, nil
		}
	}

	return 0, nil
}

// SettingsEntitlements is the default Entitlements implementation: it
// reads the snapshot the subscription collaborator last stored.
type SettingsEntitlements struct {
	settingsRepo *repository.SettingsRepository
}

// NewSettingsEntitlements creates the settings-backed entitlement source
func NewSettingsEntitlements(settingsRepo *repository.SettingsRepository) *SettingsEntitlements {
	return &SettingsEntitlements{settingsRepo: settingsRepo}
}

// IsPremium reports the stored entitlement snapshot
func (e *SettingsEntitlements) IsPremium(profileUID string) bool {
	return e.settingsRepo.IsPremium(profileUID)
}
