package service

import (
	"errors"
	"testing"
	"time"

	"storyjars/internal/models"
)

func TestCompleteChapterFirstAttempt(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	chapter := env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)

	// 300 words in 120 seconds is 150 wpm
	result, err := env.progress.CompleteChapter("kid-1", chapter.ID, 120, 100, profile.UID)
	if err != nil {
		t.Fatalf("CompleteChapter() error = %v", err)
	}

	if !result.FirstAttempt {
		t.Error("FirstAttempt = false, want true")
	}
	if !result.Rewarded {
		t.Error("Rewarded = false, want true")
	}
	if !almostEqual(result.RewardAmount, 1.0) {
		t.Errorf("RewardAmount = %v, want 1.0", result.RewardAmount)
	}
	if !almostEqual(result.SpeedWpm, 150) {
		t.Errorf("SpeedWpm = %v, want 150", result.SpeedWpm)
	}
	if !result.LevelChanged || result.NewLevel != models.LevelBuilder {
		t.Errorf("level = (%v, changed=%v), want (Builder, true)", result.NewLevel, result.LevelChanged)
	}

	// Reward lands in the starter jar with a readable memo
	jars, err := env.ledger.ListJars(profile.ID)
	if err != nil {
		t.Fatalf("ListJars() error = %v", err)
	}
	if len(jars) != 1 {
		t.Fatalf("got %d jars, want the starter jar", len(jars))
	}
	if !almostEqual(jars[0].Balance, 1.0) {
		t.Errorf("jar balance = %v, want 1.0", jars[0].Balance)
	}
	transactions, _ := env.ledger.GetTransactions(jars[0].ID, profile.ID)
	if len(transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(transactions))
	}
	if transactions[0].Memo != "Finished Sea Tales, chapter 1" {
		t.Errorf("memo = %q", transactions[0].Memo)
	}

	// Level change is persisted
	updated, err := env.profiles.GetProfile(profile.UID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if updated.ReadingLevel != models.LevelBuilder {
		t.Errorf("persisted level = %v, want Builder", updated.ReadingLevel)
	}
}

func TestCompleteChapterRepeatIsNoOp(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	chapter := env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)

	if _, err := env.progress.CompleteChapter("kid-1", chapter.ID, 120, 100, profile.UID); err != nil {
		t.Fatalf("CompleteChapter() error = %v", err)
	}

	result, err := env.progress.CompleteChapter("kid-1", chapter.ID, 60, 100, profile.UID)
	if err != nil {
		t.Fatalf("repeat CompleteChapter() error = %v", err)
	}
	if result.FirstAttempt {
		t.Error("repeat FirstAttempt = true, want false")
	}
	if result.Rewarded {
		t.Error("repeat Rewarded = true, want false")
	}
	if result.LevelChanged {
		t.Error("repeat LevelChanged = true, want false")
	}

	// No second completion row, no second payout
	count, err := env.chapterRepo.CountCompletions(profile.ID)
	if err != nil {
		t.Fatalf("CountCompletions() error = %v", err)
	}
	if count != 1 {
		t.Errorf("completions = %d, want 1", count)
	}
	jars, _ := env.ledger.ListJars(profile.ID)
	if !almostEqual(jars[0].Balance, 1.0) {
		t.Errorf("jar balance = %v, want 1.0", jars[0].Balance)
	}
}

func TestCompleteChapterFailingScore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	chapter := env.createChapter(t, "Sea Tales", 1, models.LevelBuilder, 300)
	if err := env.profiles.SetReadingLevel(profile.UID, models.LevelBuilder); err != nil {
		t.Fatalf("SetReadingLevel() error = %v", err)
	}

	// 300 words in 600 seconds is 30 wpm
	result, err := env.progress.CompleteChapter("kid-1", chapter.ID, 600, 50, profile.UID)
	if err != nil {
		t.Fatalf("CompleteChapter() error = %v", err)
	}
	if !result.FirstAttempt {
		t.Error("FirstAttempt = false, want true")
	}
	if result.Rewarded {
		t.Error("Rewarded = true, want false for failing score")
	}
	if !result.LevelChanged || result.NewLevel != models.LevelExplorer {
		t.Errorf("level = (%v, changed=%v), want demotion to Explorer", result.NewLevel, result.LevelChanged)
	}

	// A passing replay of an already-attempted chapter never earns
	replay, err := env.progress.CompleteChapter("kid-1", chapter.ID, 120, 100, profile.UID)
	if err != nil {
		t.Fatalf("replay CompleteChapter() error = %v", err)
	}
	if replay.Rewarded {
		t.Error("replay Rewarded = true, want false")
	}
}

func TestCompleteChapterRespectsEarningCap(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	chapter := env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)

	// Fill today's earning allowance
	jars, _ := env.ledger.ListJars(profile.ID)
	if err := env.ledger.AddMoney(jars[0].ID, DefaultDailyEarningLimit, "Allowance", profile.ID); err != nil {
		t.Fatalf("AddMoney() error = %v", err)
	}

	result, err := env.progress.CompleteChapter("kid-1", chapter.ID, 120, 90, profile.UID)
	if err != nil {
		t.Fatalf("CompleteChapter() error = %v", err)
	}
	if result.Rewarded {
		t.Error("Rewarded = true, want false once the daily cap is filled")
	}

	// The completion itself is still recorded
	count, _ := env.chapterRepo.CountCompletions(profile.ID)
	if count != 1 {
		t.Errorf("completions = %d, want 1", count)
	}
}

func TestCompleteChapterUnknownIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	chapter := env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)

	if _, err := env.progress.CompleteChapter("kid-1", chapter.ID, 120, 90, "no-such-profile"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("unknown profile error = %v, want ErrProfileNotFound", err)
	}
	if _, err := env.progress.CompleteChapter("kid-1", 9999, 120, 90, profile.UID); !errors.Is(err, ErrChapterNotFound) {
		t.Errorf("unknown chapter error = %v, want ErrChapterNotFound", err)
	}
}

func TestGetNextChapter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)
	ch2 := env.createChapter(t, "Sea Tales", 2, models.LevelExplorer, 300)
	ch3 := env.createChapter(t, "Sea Tales", 3, models.LevelBuilder, 300)
	ch4 := env.createChapter(t, "Sea Tales", 4, models.LevelExplorer, 300)

	t.Run("prefers the reading level", func(t *testing.T) {
		next, err := env.progress.GetNextChapter("Sea Tales", 1, models.LevelExplorer, "kid-1", profile.ID)
		if err != nil {
			t.Fatalf("GetNextChapter() error = %v", err)
		}
		if next == nil || next.ID != ch2.ID {
			t.Errorf("next = %+v, want chapter 2", next)
		}
	})

	t.Run("falls back to any level", func(t *testing.T) {
		next, err := env.progress.GetNextChapter("Sea Tales", 2, models.LevelChallenger, "kid-1", profile.ID)
		if err != nil {
			t.Fatalf("GetNextChapter() error = %v", err)
		}
		if next == nil || next.ID != ch3.ID {
			t.Errorf("next = %+v, want chapter 3", next)
		}
	})

	t.Run("skips passed chapters", func(t *testing.T) {
		if _, err := env.progress.CompleteChapter("kid-1", ch2.ID, 120, 95, profile.UID); err != nil {
			t.Fatalf("CompleteChapter() error = %v", err)
		}
		next, err := env.progress.GetNextChapter("Sea Tales", 1, models.LevelExplorer, "kid-1", profile.ID)
		if err != nil {
			t.Fatalf("GetNextChapter() error = %v", err)
		}
		if next == nil || next.ID != ch4.ID {
			t.Errorf("next = %+v, want chapter 4", next)
		}
	})

	t.Run("nil when the book is finished", func(t *testing.T) {
		next, err := env.progress.GetNextChapter("Sea Tales", 4, models.LevelExplorer, "kid-1", profile.ID)
		if err != nil {
			t.Fatalf("GetNextChapter() error = %v", err)
		}
		if next != nil {
			t.Errorf("next = %+v, want nil", next)
		}
	})
}

func TestRemoveDuplicateCompletions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	chapter := env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)

	// Racing callers can insert the same completion twice
	if _, err := env.chapterRepo.RecordCompletion("kid-1", chapter.ID, 120, 90, profile.ID); err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}
	if _, err := env.chapterRepo.RecordCompletion("kid-1", chapter.ID, 130, 85, profile.ID); err != nil {
		t.Fatalf("duplicate RecordCompletion() error = %v", err)
	}

	removed, err := env.progress.RemoveDuplicateCompletions("kid-1")
	if err != nil {
		t.Fatalf("RemoveDuplicateCompletions() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	// The earliest attempt survives
	completed, err := env.progress.HasCompleted("kid-1", chapter.ID, profile.ID, 90)
	if err != nil {
		t.Fatalf("HasCompleted() error = %v", err)
	}
	if !completed {
		t.Error("HasCompleted() = false after dedupe, want true")
	}

	// A second pass finds nothing
	removed, err = env.progress.RemoveDuplicateCompletions("kid-1")
	if err != nil {
		t.Fatalf("second RemoveDuplicateCompletions() error = %v", err)
	}
	if removed != 0 {
		t.Errorf("second pass removed = %d, want 0", removed)
	}
}

func TestReadingStreak(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	ch1 := env.createChapter(t, "Sea Tales", 1, models.LevelExplorer, 300)
	ch2 := env.createChapter(t, "Sea Tales", 2, models.LevelExplorer, 300)

	t.Run("no completions means no streak", func(t *testing.T) {
		streak, err := env.progress.ReadingStreak("kid-1", profile.ID)
		if err != nil {
			t.Fatalf("ReadingStreak() error = %v", err)
		}
		if streak != 0 {
			t.Errorf("streak = %d, want 0", streak)
		}
	})

	if _, err := env.chapterRepo.RecordCompletion("kid-1", ch1.ID, 120, 90, profile.ID); err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}

	t.Run("today counts as one", func(t *testing.T) {
		streak, err := env.progress.ReadingStreak("kid-1", profile.ID)
		if err != nil {
			t.Fatalf("ReadingStreak() error = %v", err)
		}
		if streak != 1 {
			t.Errorf("streak = %d, want 1", streak)
		}
	})

	t.Run("consecutive days extend the streak", func(t *testing.T) {
		second, err := env.chapterRepo.RecordCompletion("kid-1", ch2.ID, 120, 90, profile.ID)
		if err != nil {
			t.Fatalf("RecordCompletion() error = %v", err)
		}
		yesterday := time.Now().AddDate(0, 0, -1)
		if _, err := env.db.Exec("UPDATE chapter_completion SET completed_at = ? WHERE id = ?", yesterday, second.ID); err != nil {
			t.Fatalf("failed to backdate completion: %v", err)
		}

		streak, err := env.progress.ReadingStreak("kid-1", profile.ID)
		if err != nil {
			t.Fatalf("ReadingStreak() error = %v", err)
		}
		if streak != 2 {
			t.Errorf("streak = %d, want 2", streak)
		}
	})
}
