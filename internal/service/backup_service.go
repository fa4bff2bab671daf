package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"storyjars/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Profiles    []ProfileBackup    `json:"profiles"`
	Jars        []JarBackup        `json:"jars"`
	Ledger      []LedgerBackup     `json:"ledger"`
	Chapters    []ChapterBackup    `json:"chapters"`
	Completions []CompletionBackup `json:"completions"`
	Questions   []QuestionBackup   `json:"question_reports"`
	Settings    []SettingBackup    `json:"settings"`
	Parents     []ParentBackup     `json:"parents"`
}

// ProfileBackup represents a child profile record for backup
type ProfileBackup struct {
	ID           int64     `json:"id"`
	UID          string    `json:"uid"`
	Name         string    `json:"name"`
	ReadingLevel string    `json:"reading_level"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JarBackup represents a savings jar record for backup
type JarBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	Emoji     string    `json:"emoji"`
	ProfileID int64     `json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerBackup represents a savings transaction record for backup
type LedgerBackup struct {
	ID        int64     `json:"id"`
	JarID     int64     `json:"jar_id"`
	Memo      string    `json:"memo"`
	Amount    float64   `json:"amount"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// ChapterBackup represents a chapter record for backup
type ChapterBackup struct {
	ID            int64     `json:"id"`
	BookTitle     string    `json:"book_title"`
	ChapterNumber int       `json:"chapter_number"`
	Title         string    `json:"title"`
	ReadingLevel  string    `json:"reading_level"`
	WordCount     int       `json:"word_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// CompletionBackup represents a chapter completion record for backup
type CompletionBackup struct {
	ID              int64     `json:"id"`
	LearnerID       string    `json:"learner_id"`
	ChapterID       int64     `json:"chapter_id"`
	DurationSeconds int       `json:"duration_seconds"`
	Score           int       `json:"score"`
	ProfileID       int64     `json:"profile_id"`
	CompletedAt     time.Time `json:"completed_at"`
}

// QuestionBackup represents a question report record for backup
type QuestionBackup struct {
	ID         int64     `json:"id"`
	QuestionID string    `json:"question_id"`
	Outcome    string    `json:"outcome"`
	Date       string    `json:"date"`
	ProfileID  int64     `json:"profile_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SettingBackup represents a settings key/value for backup
type SettingBackup struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParentBackup represents a parent account record for backup
type ParentBackup struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	PINHash   string    `json:"pin_hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer (useful for HTTP responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportProfiles(backup); err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	if err := s.exportJars(backup); err != nil {
		return fmt.Errorf("failed to export jars: %w", err)
	}
	if err := s.exportLedger(backup); err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}
	if err := s.exportChapters(backup); err != nil {
		return fmt.Errorf("failed to export chapters: %w", err)
	}
	if err := s.exportCompletions(backup); err != nil {
		return fmt.Errorf("failed to export completions: %w", err)
	}
	if err := s.exportQuestions(backup); err != nil {
		return fmt.Errorf("failed to export question reports: %w", err)
	}
	if err := s.exportSettings(backup); err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}
	if err := s.exportParents(backup); err != nil {
		return fmt.Errorf("failed to export parents: %w", err)
	}

	log.Printf("Exported: %d profiles, %d jars, %d transactions, %d chapters, %d completions, %d question reports",
		len(backup.Profiles), len(backup.Jars), len(backup.Ledger),
		len(backup.Chapters), len(backup.Completions), len(backup.Questions))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importProfiles(backup.Profiles); err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}
	if err := s.importJars(backup.Jars); err != nil {
		return fmt.Errorf("failed to import jars: %w", err)
	}
	if err := s.importLedger(backup.Ledger); err != nil {
		return fmt.Errorf("failed to import ledger: %w", err)
	}
	if err := s.importChapters(backup.Chapters); err != nil {
		return fmt.Errorf("failed to import chapters: %w", err)
	}
	if err := s.importCompletions(backup.Completions); err != nil {
		return fmt.Errorf("failed to import completions: %w", err)
	}
	if err := s.importQuestions(backup.Questions); err != nil {
		return fmt.Errorf("failed to import question reports: %w", err)
	}
	if err := s.importSettings(backup.Settings); err != nil {
		return fmt.Errorf("failed to import settings: %w", err)
	}
	if err := s.importParents(backup.Parents); err != nil {
		return fmt.Errorf("failed to import parents: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportProfiles(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, uid, name, reading_level, avatar, created_at, updated_at FROM profiles ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		if err := rows.Scan(&p.ID, &p.UID, &p.Name, &p.ReadingLevel, &p.Avatar, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Profiles = append(backup.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportJars(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, balance, COALESCE(emoji, ''), profile_id, created_at, updated_at FROM savings_jug ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var j JarBackup
		if err := rows.Scan(&j.ID, &j.Name, &j.Balance, &j.Emoji, &j.ProfileID, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return err
		}
		backup.Jars = append(backup.Jars, j)
	}
	return rows.Err()
}

func (s *BackupService) exportLedger(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, jug_id, memo, amount, entry_date, created_at FROM savings_transaction ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l LedgerBackup
		if err := rows.Scan(&l.ID, &l.JarID, &l.Memo, &l.Amount, &l.Date, &l.CreatedAt); err != nil {
			return err
		}
		backup.Ledger = append(backup.Ledger, l)
	}
	return rows.Err()
}

func (s *BackupService) exportChapters(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, book_title, chapter_number, title, reading_level, word_count, created_at FROM chapters ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChapterBackup
		if err := rows.Scan(&c.ID, &c.BookTitle, &c.ChapterNumber, &c.Title, &c.ReadingLevel, &c.WordCount, &c.CreatedAt); err != nil {
			return err
		}
		backup.Chapters = append(backup.Chapters, c)
	}
	return rows.Err()
}

func (s *BackupService) exportCompletions(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, learner_id, chapter_id, duration_seconds, score, profile_id, completed_at FROM chapter_completion ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CompletionBackup
		if err := rows.Scan(&c.ID, &c.LearnerID, &c.ChapterID, &c.DurationSeconds, &c.Score, &c.ProfileID, &c.CompletedAt); err != nil {
			return err
		}
		backup.Completions = append(backup.Completions, c)
	}
	return rows.Err()
}

func (s *BackupService) exportQuestions(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, question_id, outcome, entry_date, profile_id, created_at FROM question_report ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var q QuestionBackup
		if err := rows.Scan(&q.ID, &q.QuestionID, &q.Outcome, &q.Date, &q.ProfileID, &q.CreatedAt); err != nil {
			return err
		}
		backup.Questions = append(backup.Questions, q)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st SettingBackup
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return err
		}
		backup.Settings = append(backup.Settings, st)
	}
	return rows.Err()
}

func (s *BackupService) exportParents(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, email, pin_hash, created_at, updated_at FROM parents ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ParentBackup
		if err := rows.Scan(&p.ID, &p.Email, &p.PINHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Parents = append(backup.Parents, p)
	}
	return rows.Err()
}

func (s *BackupService) importProfiles(profiles []ProfileBackup) error {
	log.Printf("Importing %d profiles...", len(profiles))
	for _, p := range profiles {
		query := "INSERT INTO profiles (id, uid, name, reading_level, avatar, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.ID, p.UID, p.Name, p.ReadingLevel, p.Avatar, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import profile %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importJars(jars []JarBackup) error {
	log.Printf("Importing %d jars...", len(jars))
	for _, j := range jars {
		query := "INSERT INTO savings_jug (id, name, balance, emoji, profile_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, j.ID, j.Name, j.Balance, j.Emoji, j.ProfileID, j.CreatedAt, j.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import jar %d: %w", j.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importLedger(entries []LedgerBackup) error {
	log.Printf("Importing %d transactions...", len(entries))
	for _, l := range entries {
		query := "INSERT INTO savings_transaction (id, jug_id, memo, amount, entry_date, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, l.ID, l.JarID, l.Memo, l.Amount, l.Date, l.CreatedAt); err != nil {
			return fmt.Errorf("failed to import transaction %d: %w", l.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importChapters(chapters []ChapterBackup) error {
	log.Printf("Importing %d chapters...", len(chapters))
	for _, c := range chapters {
		query := "INSERT INTO chapters (id, book_title, chapter_number, title, reading_level, word_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.ID, c.BookTitle, c.ChapterNumber, c.Title, c.ReadingLevel, c.WordCount, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to import chapter %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCompletions(completions []CompletionBackup) error {
	log.Printf("Importing %d completions...", len(completions))
	for _, c := range completions {
		query := "INSERT INTO chapter_completion (id, learner_id, chapter_id, duration_seconds, score, profile_id, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.ID, c.LearnerID, c.ChapterID, c.DurationSeconds, c.Score, c.ProfileID, c.CompletedAt); err != nil {
			return fmt.Errorf("failed to import completion %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importQuestions(questions []QuestionBackup) error {
	log.Printf("Importing %d question reports...", len(questions))
	for _, q := range questions {
		query := "INSERT INTO question_report (id, question_id, outcome, entry_date, profile_id, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, q.ID, q.QuestionID, q.Outcome, q.Date, q.ProfileID, q.CreatedAt); err != nil {
			return fmt.Errorf("failed to import question report %d: %w", q.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSettings(settings []SettingBackup) error {
	log.Printf("Importing %d settings...", len(settings))
	query := s.db.Dialect.UpsertSettings()
	for _, st := range settings {
		if _, err := s.db.Exec(query, st.Key, st.Value); err != nil {
			return fmt.Errorf("failed to import setting %s: %w", st.Key, err)
		}
	}
	return nil
}

func (s *BackupService) importParents(parents []ParentBackup) error {
	log.Printf("Importing %d parents...", len(parents))
	for _, p := range parents {
		query := "INSERT INTO parents (id, email, pin_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, p.ID, p.Email, p.PINHash, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import parent %d: %w", p.ID, err)
		}
	}
	return nil
}
