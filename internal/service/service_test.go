package service

import (
	"path/filepath"
	"testing"

	"storyjars/internal/database"
	"storyjars/internal/models"
	"storyjars/internal/repository"
)

// testEnv wires real repositories over a throwaway SQLite database
type testEnv struct {
	db       *database.DB
	profiles *ProfileService
	ledger   *LedgerService
	limiter  *LimiterService
	progress *ProgressService

	profileRepo  *repository.ProfileRepository
	jarRepo      *repository.JarRepository
	chapterRepo  *repository.ChapterRepository
	questionRepo *repository.QuestionRepository
	settingsRepo *repository.SettingsRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "storyjars_test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	jarRepo := repository.NewJarRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	ledger := NewLedgerService(jarRepo)
	limiter := NewLimiterService(questionRepo, jarRepo, settingsRepo, NewSettingsEntitlements(settingsRepo))
	progress := NewProgressService(chapterRepo, profileRepo, jarRepo, ledger, limiter, 1.0)

	return &testEnv{
		db:           db,
		profiles:     NewProfileService(profileRepo, jarRepo),
		ledger:       ledger,
		limiter:      limiter,
		progress:     progress,
		profileRepo:  profileRepo,
		jarRepo:      jarRepo,
		chapterRepo:  chapterRepo,
		questionRepo: questionRepo,
		settingsRepo: settingsRepo,
	}
}

func (env *testEnv) createProfile(t *testing.T, name string) *models.Profile {
	t.Helper()
	profile, err := env.profiles.CreateProfile("", name, "")
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return profile
}

func (env *testEnv) createChapter(t *testing.T, book string, number int, level models.ReadingLevel, wordCount int) *models.Chapter {
	t.Helper()
	chapter, err := env.chapterRepo.InsertChapter(book, number, "", level, wordCount)
	if err != nil {
		t.Fatalf("Failed to create chapter: %v", err)
	}
	return chapter
}
