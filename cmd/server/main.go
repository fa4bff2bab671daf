package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storyjars/internal/config"
	"storyjars/internal/database"
	"storyjars/internal/handlers"
	"storyjars/internal/repository"
	"storyjars/internal/security"
	"storyjars/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	jarRepo := repository.NewJarRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	parentRepo := repository.NewParentRepository(db)

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.SessionDuration)
	authService := service.NewAuthService(parentRepo, tokens)
	profileService := service.NewProfileService(profileRepo, jarRepo)
	ledgerService := service.NewLedgerService(jarRepo)
	entitlements := service.NewSettingsEntitlements(settingsRepo)
	limiterService := service.NewLimiterService(questionRepo, jarRepo, settingsRepo, entitlements)
	progressService := service.NewProgressService(chapterRepo, profileRepo, jarRepo, ledgerService, limiterService, cfg.RewardPerChapter)
	backupService := service.NewBackupService(db)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	loginLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, loginLimiter)
	profileHandler := handlers.NewProfileHandler(profileService)
	savingsHandler := handlers.NewSavingsHandler(ledgerService, profileService)
	progressHandler := handlers.NewProgressHandler(progressService, limiterService, profileService, emailService, parentRepo)
	parentHandler := handlers.NewParentHandler(authService, settingsRepo, backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Profile routes
	mux.HandleFunc("POST /profiles", profileHandler.CreateProfile)
	mux.HandleFunc("GET /profiles", profileHandler.ListProfiles)
	mux.HandleFunc("GET /profiles/{uid}", profileHandler.GetProfile)
	mux.HandleFunc("DELETE /profiles/{uid}", middleware.RequireParent(profileHandler.DeleteProfile))
	mux.HandleFunc("GET /profiles/{uid}/reading-level", profileHandler.GetReadingLevel)
	mux.HandleFunc("PUT /profiles/{uid}/reading-level", profileHandler.SetReadingLevel)
	mux.HandleFunc("PUT /profiles/{uid}/avatar", profileHandler.UpdateAvatar)

	// Savings routes
	mux.HandleFunc("POST /profiles/{uid}/jars", savingsHandler.CreateJar)
	mux.HandleFunc("GET /profiles/{uid}/jars", savingsHandler.ListJars)
	mux.HandleFunc("GET /profiles/{uid}/jars/{jarId}", savingsHandler.GetJar)
	mux.HandleFunc("DELETE /profiles/{uid}/jars/{jarId}", savingsHandler.DeleteJar)
	mux.HandleFunc("GET /profiles/{uid}/jars/{jarId}/transactions", savingsHandler.GetTransactions)
	mux.HandleFunc("POST /profiles/{uid}/jars/{jarId}/deposit", savingsHandler.AddMoney)
	mux.HandleFunc("POST /profiles/{uid}/jars/{jarId}/withdraw", savingsHandler.RemoveMoney)
	mux.HandleFunc("POST /profiles/{uid}/transfer", savingsHandler.Transfer)
	mux.HandleFunc("GET /profiles/{uid}/statistics", savingsHandler.GetStatistics)
	mux.HandleFunc("GET /profiles/{uid}/ledger/diagnose", middleware.RequireParent(savingsHandler.Diagnose))
	mux.HandleFunc("POST /profiles/{uid}/ledger/repair", middleware.RequireParent(savingsHandler.Repair))
	mux.HandleFunc("GET /jars/suggest-name", savingsHandler.SuggestJarName)

	// Progress routes
	mux.HandleFunc("POST /profiles/{uid}/chapters/complete", progressHandler.CompleteChapter)
	mux.HandleFunc("GET /profiles/{uid}/chapters/next", progressHandler.NextChapter)
	mux.HandleFunc("POST /profiles/{uid}/questions/answer", progressHandler.AnswerQuestion)
	mux.HandleFunc("GET /profiles/{uid}/allowance", progressHandler.GetAllowance)
	mux.HandleFunc("GET /profiles/{uid}/streak", progressHandler.GetStreak)
	mux.HandleFunc("POST /completions/remove-duplicates", progressHandler.RemoveDuplicateCompletions)

	// Parent routes
	mux.HandleFunc("POST /parent/register", middleware.RateLimit(parentHandler.Register))
	mux.HandleFunc("POST /parent/login", middleware.RateLimit(parentHandler.Login))
	mux.HandleFunc("POST /parent/pin", middleware.RequireParent(parentHandler.ChangePIN))
	mux.HandleFunc("PUT /parent/settings/earning-limit", middleware.RequireParent(parentHandler.SetDailyEarningLimit))
	mux.HandleFunc("PUT /parent/settings/premium", middleware.RequireParent(parentHandler.SetPremium))
	mux.HandleFunc("GET /parent/backup", middleware.RequireParent(parentHandler.ExportBackup))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start weekly parent summaries
	go sendWeeklySummaries(emailService, parentRepo, profileRepo, chapterRepo, jarRepo, progressService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// sendWeeklySummaries emails every parent a reading digest for each
// profile once a week
func sendWeeklySummaries(
	emailService *service.EmailService,
	parentRepo *repository.ParentRepository,
	profileRepo *repository.ProfileRepository,
	chapterRepo *repository.ChapterRepository,
	jarRepo *repository.JarRepository,
	progressService *service.ProgressService,
) {
	if !emailService.IsEnabled() {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if time.Now().Weekday() != time.Sunday {
			continue
		}

		parents, err := parentRepo.ListParents()
		if err != nil {
			log.Printf("Weekly summary: failed to list parents: %v", err)
			continue
		}
		if len(parents) == 0 {
			continue
		}

		profiles, err := profileRepo.ListProfiles()
		if err != nil {
			log.Printf("Weekly summary: failed to list profiles: %v", err)
			continue
		}

		weekAgo := time.Now().AddDate(0, 0, -7)
		for _, profile := range profiles {
			chaptersRead, err := chapterRepo.CountCompletionsSince(profile.ID, weekAgo)
			if err != nil {
				log.Printf("Weekly summary: failed to count completions for %s: %v", profile.UID, err)
				continue
			}

			earned, err := jarRepo.SumEarnedSince(profile.ID, weekAgo.Format("2006-01-02"))
			if err != nil {
				log.Printf("Weekly summary: failed to sum earnings for %s: %v", profile.UID, err)
				continue
			}

			streak, err := progressService.ProfileStreak(profile.ID)
			if err != nil {
				log.Printf("Weekly summary: failed to compute streak for %s: %v", profile.UID, err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			for _, parent := range parents {
				if err := emailService.SendWeeklySummaryEmail(ctx, parent.Email, profile.Name, chaptersRead, earned, streak); err != nil {
					log.Printf("Weekly summary: failed to email %s: %v", parent.Email, err)
				}
			}
			cancel()
		}
	}
}
