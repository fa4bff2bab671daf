package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storyjars/internal/database"
	"storyjars/internal/models"
)

// ProfileRepository handles database operations for learner profiles
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateProfile inserts a new learner profile
func (r *ProfileRepository) CreateProfile(uid, name, avatar string) (*models.Profile, error) {
	query := "INSERT INTO profiles (uid, name, avatar) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, uid, name, avatar)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &models.Profile{
		ID:           id,
		UID:          uid,
		Name:         name,
		ReadingLevel: models.LevelExplorer,
		Avatar:       avatar,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	profile := &models.Profile{}
	var level string
	err := row.Scan(
		&profile.ID,
		&profile.UID,
		&profile.Name,
		&level,
		&profile.Avatar,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	profile.ReadingLevel = models.ParseReadingLevel(level)
	return profile, nil
}

// GetProfileByUID retrieves a profile by its unique uid, nil when absent
func (r *ProfileRepository) GetProfileByUID(uid string) (*models.Profile, error) {
	query := "SELECT id, uid, name, reading_level, avatar, created_at, updated_at FROM profiles WHERE uid = ?"
	return scanProfile(r.db.QueryRow(query, uid))
}

// GetProfileByID retrieves a profile by row id, nil when absent
func (r *ProfileRepository) GetProfileByID(id int64) (*models.Profile, error) {
	query := "SELECT id, uid, name, reading_level, avatar, created_at, updated_at FROM profiles WHERE id = ?"
	return scanProfile(r.db.QueryRow(query, id))
}

// ListProfiles retrieves all profiles on this device
func (r *ProfileRepository) ListProfiles() ([]models.Profile, error) {
	query := `
		SELECT id, uid, name, reading_level, avatar, created_at, updated_at
		FROM profiles
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var profile models.Profile
		var level string
		if err := rows.Scan(
			&profile.ID,
			&profile.UID,
			&profile.Name,
			&level,
			&profile.Avatar,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profile.ReadingLevel = models.ParseReadingLevel(level)
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

// DeleteProfile removes a profile and everything scoped to it. Deletion
// order respects the log-then-balance rule: transactions first, then jars,
// then the fact logs, then the profile row.
func (r *ProfileRepository) DeleteProfile(uid string) error {
	profile, err := r.GetProfileByUID(uid)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		"DELETE FROM savings_transaction WHERE jug_id IN (SELECT id FROM savings_jug WHERE profile_id = ?)",
		"DELETE FROM savings_jug WHERE profile_id = ?",
		"DELETE FROM chapter_completion WHERE profile_id = ?",
		"DELETE FROM question_report WHERE profile_id = ?",
		"DELETE FROM profiles WHERE id = ?",
	}
	for _, statement := range statements {
		if _, err := tx.Exec(statement, profile.ID); err != nil {
			return fmt.Errorf("failed to delete profile data: %w", err)
		}
	}

	return tx.Commit()
}

// GetReadingLevel returns the profile's level, defaulting to Explorer when
// the profile is missing or the stored value is unknown
func (r *ProfileRepository) GetReadingLevel(uid string) (models.ReadingLevel, error) {
	var level string
	query := "SELECT reading_level FROM profiles WHERE uid = ?"
	err := r.db.QueryRow(query, uid).Scan(&level)
	if err == sql.ErrNoRows {
		return models.LevelExplorer, nil
	}
	if err != nil {
		return models.LevelExplorer, fmt.Errorf("failed to get reading level: %w", err)
	}
	return models.ParseReadingLevel(level), nil
}

// SetReadingLevel updates the profile's reading level
func (r *ProfileRepository) SetReadingLevel(uid string, level models.ReadingLevel) error {
	query := "UPDATE profiles SET reading_level = ?, updated_at = CURRENT_TIMESTAMP WHERE uid = ?"
	_, err := r.db.Exec(query, string(level), uid)
	if err != nil {
		return fmt.Errorf("failed to set reading level: %w", err)
	}
	return nil
}

// UpdateAvatar changes the profile's avatar
func (r *ProfileRepository) UpdateAvatar(uid, avatar string) error {
	query := "UPDATE profiles SET avatar = ?, updated_at = CURRENT_TIMESTAMP WHERE uid = ?"
	_, err := r.db.Exec(query, avatar, uid)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}
