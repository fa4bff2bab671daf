package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storyjars/internal/database"
	"storyjars/internal/models"
)

// ChapterRepository handles the chapter catalog and the completion log
type ChapterRepository struct {
	db *database.DB
}

// NewChapterRepository creates a new chapter repository
func NewChapterRepository(db *database.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// InsertChapter adds a chapter to the catalog
func (r *ChapterRepository) InsertChapter(bookTitle string, chapterNumber int, title string, level models.ReadingLevel, wordCount int) (*models.Chapter, error) {
	query := `
		INSERT INTO chapters (book_title, chapter_number, title, reading_level, word_count)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, bookTitle, chapterNumber, title, string(level), wordCount)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chapter: %w", err)
	}

	return &models.Chapter{
		ID:            id,
		BookTitle:     bookTitle,
		ChapterNumber: chapterNumber,
		Title:         title,
		ReadingLevel:  level,
		WordCount:     wordCount,
		CreatedAt:     time.Now(),
	}, nil
}

const chapterColumns = "id, book_title, chapter_number, title, reading_level, word_count, created_at"

func scanChapter(row *sql.Row) (*models.Chapter, error) {
	chapter := &models.Chapter{}
	var level string
	err := row.Scan(
		&chapter.ID,
		&chapter.BookTitle,
		&chapter.ChapterNumber,
		&chapter.Title,
		&level,
		&chapter.WordCount,
		&chapter.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	chapter.ReadingLevel = models.ParseReadingLevel(level)
	return chapter, nil
}

// GetChapterByID retrieves a chapter, nil when absent
func (r *ChapterRepository) GetChapterByID(chapterID int64) (*models.Chapter, error) {
	query := "SELECT " + chapterColumns + " FROM chapters WHERE id = ?"
	return scanChapter(r.db.QueryRow(query, chapterID))
}

// ListBookChapters retrieves every chapter of a book in reading order
func (r *ChapterRepository) ListBookChapters(bookTitle string) ([]models.Chapter, error) {
	query := "SELECT " + chapterColumns + " FROM chapters WHERE book_title = ? ORDER BY chapter_number ASC, id ASC"
	rows, err := r.db.Query(query, bookTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var chapter models.Chapter
		var level string
		if err := rows.Scan(
			&chapter.ID,
			&chapter.BookTitle,
			&chapter.ChapterNumber,
			&chapter.Title,
			&level,
			&chapter.WordCount,
			&chapter.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapter.ReadingLevel = models.ParseReadingLevel(level)
		chapters = append(chapters, chapter)
	}

	return chapters, rows.Err()
}

// HasCompleted reports whether a completion row with score >= minScore
// exists for the (learner, chapter, profile) tuple
func (r *ChapterRepository) HasCompleted(learnerID string, chapterID, profileID int64, minScore int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM chapter_completion
		WHERE learner_id = ? AND chapter_id = ? AND profile_id = ? AND score >= ?
	`
	var count int
	if err := r.db.QueryRow(query, learnerID, chapterID, profileID, minScore).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check completion: %w", err)
	}
	return count > 0, nil
}

// RecordCompletion appends a completion row. Callers must check
// HasCompleted first for first attempts; the store accepts review reads.
func (r *ChapterRepository) RecordCompletion(learnerID string, chapterID int64, durationSeconds, score int, profileID int64) (*models.ChapterCompletion, error) {
	query := `
		INSERT INTO chapter_completion (learner_id, chapter_id, duration_seconds, score, profile_id)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, learnerID, chapterID, durationSeconds, score, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	return &models.ChapterCompletion{
		ID:              id,
		LearnerID:       learnerID,
		ChapterID:       chapterID,
		DurationSeconds: durationSeconds,
		Score:           score,
		CompletedAt:     time.Now(),
		ProfileID:       profileID,
	}, nil
}

// RemoveDuplicates collapses duplicate (chapter, profile) completion rows
// for a learner, keeping the lowest id of each group. Returns the number
// of rows removed.
func (r *ChapterRepository) RemoveDuplicates(learnerID string) (int64, error) {
	query := `
		DELETE FROM chapter_completion
		WHERE learner_id = ?
		  AND id NOT IN (
			SELECT MIN(id)
			FROM chapter_completion
			WHERE learner_id = ?
			GROUP BY chapter_id, profile_id
		  )
	`
	result, err := r.db.Exec(query, learnerID, learnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove duplicate completions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count removed completions: %w", err)
	}
	return removed, nil
}

// GetNextChapter selects the smallest chapter number greater than current
// for the same book, preferring chapters tagged with the given reading
// level and falling back to any level. When learnerID is non-empty,
// chapters the learner already passed (score >= 80) are skipped so a
// finished chapter is never re-surfaced across parallel level tracks.
func (r *ChapterRepository) GetNextChapter(bookTitle string, currentNumber int, level models.ReadingLevel, learnerID string, profileID int64) (*models.Chapter, error) {
	base := "SELECT " + chapterColumns + ` FROM chapters
		WHERE book_title = ? AND chapter_number > ?`
	exclusion := ` AND NOT EXISTS (
			SELECT 1 FROM chapter_completion cc
			WHERE cc.chapter_id = chapters.id
			  AND cc.learner_id = ?
			  AND cc.profile_id = ?
			  AND cc.score >= 80
		)`
	order := " ORDER BY chapter_number ASC, id ASC"

	// First pass: chapters written for the learner's level
	query := base + " AND reading_level = ?"
	args := []interface{}{bookTitle, currentNumber, string(level)}
	if learnerID != "" {
		query += exclusion
		args = append(args, learnerID, profileID)
	}
	chapter, err := scanChapter(r.db.QueryRow(query+order+" LIMIT 1", args...))
	if err != nil {
		return nil, err
	}
	if chapter != nil {
		return chapter, nil
	}

	// Fallback: any level
	query = base
	args = []interface{}{bookTitle, currentNumber}
	if learnerID != "" {
		query += exclusion
		args = append(args, learnerID, profileID)
	}
	return scanChapter(r.db.QueryRow(query+order+" LIMIT 1", args...))
}

// CompletionTimes returns a learner's completion timestamps for a profile,
// newest first. Streaks are computed from these in device-local time.
func (r *ChapterRepository) CompletionTimes(learnerID string, profileID int64) ([]time.Time, error) {
	query := `
		SELECT completed_at
		FROM chapter_completion
		WHERE learner_id = ? AND profile_id = ?
		ORDER BY completed_at DESC
	`
	rows, err := r.db.Query(query, learnerID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var completedAt time.Time
		if err := rows.Scan(&completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion time: %w", err)
		}
		times = append(times, completedAt)
	}

	return times, rows.Err()
}

// ProfileCompletionTimes returns all completion timestamps for a profile
// across learners, newest first
func (r *ChapterRepository) ProfileCompletionTimes(profileID int64) ([]time.Time, error) {
	query := `
		SELECT completed_at
		FROM chapter_completion
		WHERE profile_id = ?
		ORDER BY completed_at DESC
	`
	rows, err := r.db.Query(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var completedAt time.Time
		if err := rows.Scan(&completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion time: %w", err)
		}
		times = append(times, completedAt)
	}

	return times, rows.Err()
}

// CountCompletionsSince returns how many completions a profile recorded
// at or after the given instant
func (r *ChapterRepository) CountCompletionsSince(profileID int64, since time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM chapter_completion WHERE profile_id = ? AND completed_at >= ?"
	var count int
	if err := r.db.QueryRow(query, profileID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent completions: %w", err)
	}
	return count, nil
}

// CountCompletions returns how many completions a profile has recorded
func (r *ChapterRepository) CountCompletions(profileID int64) (int, error) {
	query := "SELECT COUNT(*) FROM chapter_completion WHERE profile_id = ?"
	var count int
	if err := r.db.QueryRow(query, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}
