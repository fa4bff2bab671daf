package repository

import (
	"fmt"
	"time"

	"storyjars/internal/database"
	"storyjars/internal/models"
)

// QuestionRepository handles the append-only practice question log
type QuestionRepository struct {
	db *database.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// AppendReport records one answered question. The limiters must be checked
// before calling this; a rejected answer never reaches the log.
func (r *QuestionRepository) AppendReport(questionID, outcome, date string, profileID int64) (*models.QuestionReport, error) {
	query := "INSERT INTO question_report (question_id, outcome, entry_date, profile_id) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, questionID, outcome, date, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to append question report: %w", err)
	}

	return &models.QuestionReport{
		ID:         id,
		QuestionID: questionID,
		Outcome:    outcome,
		Date:       date,
		ProfileID:  profileID,
		CreatedAt:  time.Now(),
	}, nil
}

// CountOnDate counts a profile's reports on one device-local calendar date
func (r *QuestionRepository) CountOnDate(profileID int64, date string) (int, error) {
	query := "SELECT COUNT(*) FROM question_report WHERE profile_id = ? AND entry_date = ?"
	var count int
	if err := r.db.QueryRow(query, profileID, date).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count daily reports: %w", err)
	}
	return count, nil
}

// CountAll counts every report a profile has ever recorded
func (r *QuestionRepository) CountAll(profileID int64) (int, error) {
	query := "SELECT COUNT(*) FROM question_report WHERE profile_id = ?"
	var count int
	if err := r.db.QueryRow(query, profileID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// CountByOutcome counts a profile's reports with the given outcome
func (r *QuestionRepository) CountByOutcome(profileID int64, outcome string) (int, error) {
	query := "SELECT COUNT(*) FROM question_report WHERE profile_id = ? AND outcome = ?"
	var count int
	if err := r.db.QueryRow(query, profileID, outcome).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports by outcome: %w", err)
	}
	return count, nil
}
