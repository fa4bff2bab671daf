package service

import (
	"fmt"
	"testing"

	"storyjars/internal/models"
)

// seedReports appends n question reports on a past date, bypassing the
// gate, to set up lifetime counts
func seedReports(t *testing.T, env *testEnv, profileID int64, n int, date string) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := env.questionRepo.AppendReport(fmt.Sprintf("q-%s-%d", date, i), models.OutcomeCorrect, date, profileID); err != nil {
			t.Fatalf("AppendReport() error = %v", err)
		}
	}
}

func TestAnswerQuestion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")

	result, err := env.limiter.AnswerQuestion(profile, "q-1", models.OutcomeCorrect)
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("Status = %q, want %q", result.Status, StatusOK)
	}
	if result.Remaining != FreeLifetimeQuestionLimit-1 {
		t.Errorf("Remaining = %d, want %d", result.Remaining, FreeLifetimeQuestionLimit-1)
	}
	if result.Milestone != 0 {
		t.Errorf("Milestone = %d, want 0", result.Milestone)
	}
}

func TestDailyQuestionLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")

	for i := 0; i < FreeDailyQuestionLimit; i++ {
		result, err := env.limiter.AnswerQuestion(profile, fmt.Sprintf("q-%d", i), models.OutcomeIncorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() #%d error = %v", i+1, err)
		}
		if result.Status != StatusOK {
			t.Fatalf("answer %d status = %q, want %q", i+1, result.Status, StatusOK)
		}
	}

	result, err := env.limiter.AnswerQuestion(profile, "q-over", models.OutcomeCorrect)
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if result.Status != StatusLimitReached {
		t.Errorf("Status = %q, want %q", result.Status, StatusLimitReached)
	}

	// A rejected answer never reaches the log
	total, err := env.questionRepo.CountAll(profile.ID)
	if err != nil {
		t.Fatalf("CountAll() error = %v", err)
	}
	if total != FreeDailyQuestionLimit {
		t.Errorf("total reports = %d, want %d", total, FreeDailyQuestionLimit)
	}
}

func TestLifetimeQuestionLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")

	// Spread past answers over dates so the daily cap stays clear
	for day := 0; day < 5; day++ {
		seedReports(t, env, profile.ID, 20, fmt.Sprintf("2025-01-%02d", day+1))
	}

	result, err := env.limiter.AnswerQuestion(profile, "q-101", models.OutcomeCorrect)
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if result.Status != StatusLifetimeLimitReached {
		t.Errorf("Status = %q, want %q", result.Status, StatusLifetimeLimitReached)
	}

	total, _ := env.questionRepo.CountAll(profile.ID)
	if total != FreeLifetimeQuestionLimit {
		t.Errorf("total reports = %d, want %d", total, FreeLifetimeQuestionLimit)
	}
}

func TestMilestones(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Run("fires once near the final threshold", func(t *testing.T) {
		env := newTestEnv(t)
		profile := env.createProfile(t, "Maya")

		// 75 prior answers leave 25 remaining before today's answer
		for day := 0; day < 5; day++ {
			seedReports(t, env, profile.ID, 15, fmt.Sprintf("2025-02-%02d", day+1))
		}

		result, err := env.limiter.AnswerQuestion(profile, "q-76", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Remaining != 24 {
			t.Errorf("Remaining = %d, want 24", result.Remaining)
		}
		if result.Milestone != 25 {
			t.Errorf("Milestone = %d, want 25", result.Milestone)
		}

		// The next answer produces no further milestone
		result, err = env.limiter.AnswerQuestion(profile, "q-77", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Milestone != 0 {
			t.Errorf("second Milestone = %d, want 0", result.Milestone)
		}
	})

	t.Run("fires on crossing the threshold, not on landing on it", func(t *testing.T) {
		env := newTestEnv(t)
		profile := env.createProfile(t, "Theo")

		// 74 answers already given; the 75 and 50 milestones fired on
		// the way down
		for day := 0; day < 4; day++ {
			seedReports(t, env, profile.ID, 18, fmt.Sprintf("2025-05-%02d", day+1))
		}
		seedReports(t, env, profile.ID, 2, "2025-05-05")
		for _, threshold := range []int{75, 50} {
			if err := env.settingsRepo.MarkMilestoneShown(profile.UID, threshold); err != nil {
				t.Fatalf("MarkMilestoneShown(%d) error = %v", threshold, err)
			}
		}

		// 75th answer lands exactly on 25 remaining: nothing fires yet
		result, err := env.limiter.AnswerQuestion(profile, "q-75", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Remaining != 25 {
			t.Fatalf("Remaining after 75th answer = %d, want 25", result.Remaining)
		}
		if result.Milestone != 0 {
			t.Errorf("Milestone on 75th answer = %d, want 0", result.Milestone)
		}

		// 76th answer crosses the threshold: 25 fires
		result, err = env.limiter.AnswerQuestion(profile, "q-76", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Remaining != 24 {
			t.Fatalf("Remaining after 76th answer = %d, want 24", result.Remaining)
		}
		if result.Milestone != 25 {
			t.Errorf("Milestone on 76th answer = %d, want 25", result.Milestone)
		}

		// 77th answer fires nothing
		result, err = env.limiter.AnswerQuestion(profile, "q-77", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Milestone != 0 {
			t.Errorf("Milestone on 77th answer = %d, want 0", result.Milestone)
		}
	})

	t.Run("loosest unfired threshold fires first", func(t *testing.T) {
		env := newTestEnv(t)
		profile := env.createProfile(t, "Noah")

		seedReports(t, env, profile.ID, 19, "2025-03-01")
		seedReports(t, env, profile.ID, 7, "2025-03-02")

		// 27th answer leaves 73 remaining
		result, err := env.limiter.AnswerQuestion(profile, "q-27", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Milestone != 75 {
			t.Errorf("Milestone = %d, want 75", result.Milestone)
		}
	})

	t.Run("nothing fires after the tightest threshold", func(t *testing.T) {
		env := newTestEnv(t)
		profile := env.createProfile(t, "Ivy")

		if err := env.settingsRepo.MarkMilestoneShown(profile.UID, 25); err != nil {
			t.Fatalf("MarkMilestoneShown() error = %v", err)
		}

		result, err := env.limiter.AnswerQuestion(profile, "q-1", models.OutcomeCorrect)
		if err != nil {
			t.Fatalf("AnswerQuestion() error = %v", err)
		}
		if result.Milestone != 0 {
			t.Errorf("Milestone = %d, want 0", result.Milestone)
		}
	})
}

func TestPremiumBypassesCaps(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")

	if err := env.settingsRepo.SetPremium(profile.UID, true); err != nil {
		t.Fatalf("SetPremium() error = %v", err)
	}

	// Well past both free caps
	for day := 0; day < 6; day++ {
		seedReports(t, env, profile.ID, 25, fmt.Sprintf("2025-04-%02d", day+1))
	}

	result, err := env.limiter.AnswerQuestion(profile, "q-151", models.OutcomeCorrect)
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if result.Status != StatusOK {
		t.Errorf("Status = %q, want %q", result.Status, StatusOK)
	}
	if result.Remaining != UnlimitedQuestions {
		t.Errorf("Remaining = %d, want %d", result.Remaining, UnlimitedQuestions)
	}
	if result.Milestone != 0 {
		t.Errorf("Milestone = %d, want 0", result.Milestone)
	}

	if limit := env.limiter.DailyQuestionLimit(profile); limit != UnlimitedQuestions {
		t.Errorf("DailyQuestionLimit() = %d, want %d", limit, UnlimitedQuestions)
	}
	remaining, err := env.limiter.LifetimeRemaining(profile)
	if err != nil {
		t.Fatalf("LifetimeRemaining() error = %v", err)
	}
	if remaining != UnlimitedQuestions {
		t.Errorf("LifetimeRemaining() = %d, want %d", remaining, UnlimitedQuestions)
	}
}

func TestDailyEarningCap(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	profile := env.createProfile(t, "Maya")
	jar, err := env.ledger.CreateJar(profile.ID, "Bike Fund", "")
	if err != nil {
		t.Fatalf("CreateJar() error = %v", err)
	}

	if err := env.ledger.AddMoney(jar.ID, 4.00, "Chapter rewards", profile.ID); err != nil {
		t.Fatalf("AddMoney() error = %v", err)
	}

	allowed, err := env.limiter.CanEarnMoreToday(1.00, profile.ID)
	if err != nil {
		t.Fatalf("CanEarnMoreToday() error = %v", err)
	}
	if !allowed {
		t.Error("CanEarnMoreToday(1.00) = false, want true at the cap boundary")
	}

	allowed, err = env.limiter.CanEarnMoreToday(1.50, profile.ID)
	if err != nil {
		t.Fatalf("CanEarnMoreToday() error = %v", err)
	}
	if allowed {
		t.Error("CanEarnMoreToday(1.50) = true, want false beyond the cap")
	}

	t.Run("configured limit overrides default", func(t *testing.T) {
		if err := env.settingsRepo.SetDailyEarningLimit(10.00); err != nil {
			t.Fatalf("SetDailyEarningLimit() error = %v", err)
		}
		allowed, err := env.limiter.CanEarnMoreToday(5.00, profile.ID)
		if err != nil {
			t.Fatalf("CanEarnMoreToday() error = %v", err)
		}
		if !allowed {
			t.Error("CanEarnMoreToday(5.00) = false after raising the limit to 10")
		}
	})
}
