package service

import (
	"fmt"
	"log"
	"time"

	"storyjars/internal/models"
	"storyjars/internal/repository"
)

// PassingScore is the comprehension score a chapter must reach to count
// as passed for rewards and next-chapter exclusion
const PassingScore = 80

// ChapterResult reports what one finished chapter produced
type ChapterResult struct {
	FirstAttempt bool
	Rewarded     bool
	RewardAmount float64
	SpeedWpm     float64
	LevelChanged bool
	NewLevel     models.ReadingLevel
}

// ProgressService orchestrates chapter completion: the at-most-once
// reward, next-chapter selection and the reading-level state machine
type ProgressService struct {
	chapterRepo  *repository.ChapterRepository
	profileRepo  *repository.ProfileRepository
	jarRepo      *repository.JarRepository
	ledger       *LedgerService
	limiter      *LimiterService
	rewardAmount float64
}

// NewProgressService creates a new progress service
func NewProgressService(
	chapterRepo *repository.ChapterRepository,
	profileRepo *repository.ProfileRepository,
	jarRepo *repository.JarRepository,
	ledger *LedgerService,
	limiter *LimiterService,
	rewardAmount float64,
) *ProgressService {
	return &ProgressService{
		chapterRepo:  chapterRepo,
		profileRepo:  profileRepo,
		jarRepo:      jarRepo,
		ledger:       ledger,
		limiter:      limiter,
		rewardAmount: rewardAmount,
	}
}

// HasCompleted reports whether any attempt with score >= minScore exists
func (s *ProgressService) HasCompleted(learnerID string, chapterID, profileID int64, minScore int) (bool, error) {
	return s.chapterRepo.HasCompleted(learnerID, chapterID, profileID, minScore)
}

// GetNextChapter picks the chapter the learner should read next
func (s *ProgressService) GetNextChapter(bookTitle string, currentNumber int, level models.ReadingLevel, learnerID string, profileID int64) (*models.Chapter, error) {
	return s.chapterRepo.GetNextChapter(bookTitle, currentNumber, level, learnerID, profileID)
}

// RemoveDuplicateCompletions collapses duplicate completion rows produced
// by racing callers, keeping the lowest id per (chapter, profile)
func (s *ProgressService) RemoveDuplicateCompletions(learnerID string) (int64, error) {
	return s.chapterRepo.RemoveDuplicates(learnerID)
}

// CompleteChapter processes one finished chapter read. Only a first
// attempt inserts a completion row, can earn money and can move the
// reading level; review reads change nothing.
//
// A chapter rewards money iff score >= PassingScore AND no prior attempt
// of any score exists AND the daily earning cap allows it. The
// any-prior-attempt check is what makes earning at-most-once: replaying a
// chapter already attempted can never earn again.
func (s *ProgressService) CompleteChapter(learnerID string, chapterID int64, durationSeconds, score int, profileUID string) (*ChapterResult, error) {
	profile, err := s.profileRepo.GetProfileByUID(profileUID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	chapter, err := s.chapterRepo.GetChapterByID(chapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, ErrChapterNotFound
	}

	attempted, err := s.chapterRepo.HasCompleted(learnerID, chapterID, profile.ID, 0)
	if err != nil {
		return nil, err
	}

	result := &ChapterResult{FirstAttempt: !attempted, NewLevel: profile.ReadingLevel}
	if attempted {
		return result, nil
	}

	completion, err := s.chapterRepo.RecordCompletion(learnerID, chapterID, durationSeconds, score, profile.ID)
	if err != nil {
		return nil, err
	}

	if score >= PassingScore {
		if err := s.awardChapterReward(chapter, profile, result); err != nil {
			return nil, err
		}
	}

	result.SpeedWpm = completion.WordsPerMinute(chapter.WordCount)
	newLevel, changed := EvaluateReadingLevel(profile.ReadingLevel, result.SpeedWpm, score)
	if changed {
		if err := s.profileRepo.SetReadingLevel(profile.UID, newLevel); err != nil {
			return nil, err
		}
		result.LevelChanged = true
		result.NewLevel = newLevel
	}

	return result, nil
}

// awardChapterReward credits the profile's default jar when the daily
// earning cap allows it. Hitting the cap is not an error; the chapter is
// simply not rewarded.
func (s *ProgressService) awardChapterReward(chapter *models.Chapter, profile *models.Profile, result *ChapterResult) error {
	allowed, err := s.limiter.CanEarnMoreToday(s.rewardAmount, profile.ID)
	if err != nil {
		return err
	}
	if !allowed {
		return nil
	}

	jars, err := s.jarRepo.GetProfileJars(profile.ID)
	if err != nil {
		return err
	}
	if len(jars) == 0 {
		// Jar provisioning failed at onboarding; earning resumes once a jar exists
		log.Printf("Profile %s has no jar, skipping chapter reward", profile.UID)
		return nil
	}

	memo := fmt.Sprintf("Finished %s, chapter %d", chapter.BookTitle, chapter.ChapterNumber)
	if err := s.ledger.AddMoney(jars[0].ID, s.rewardAmount, memo, profile.ID); err != nil {
		return err
	}

	result.Rewarded = true
	result.RewardAmount = s.rewardAmount
	return nil
}

// ReadingStreak counts the consecutive device-local days, ending today or
// yesterday, on which the learner completed at least one chapter
func (s *ProgressService) ReadingStreak(learnerID string, profileID int64) (int, error) {
	times, err := s.chapterRepo.CompletionTimes(learnerID, profileID)
	if err != nil {
		return 0, err
	}
	return streakFromTimes(times), nil
}

// ProfileStreak counts the streak across all learners on a profile
func (s *ProgressService) ProfileStreak(profileID int64) (int, error) {
	times, err := s.chapterRepo.ProfileCompletionTimes(profileID)
	if err != nil {
		return 0, err
	}
	return streakFromTimes(times), nil
}

func streakFromTimes(times []time.Time) int {
	days := make(map[string]bool, len(times))
	for _, completedAt := range times {
		days[localDate(completedAt.Local())] = true
	}

	cursor := time.Now()
	if !days[localDate(cursor)] {
		// A streak survives until a full day is missed
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for days[localDate(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
