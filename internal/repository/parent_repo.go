package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storyjars/internal/database"
	"storyjars/internal/models"
)

// ParentRepository handles database operations for the parent account
type ParentRepository struct {
	db *database.DB
}

// NewParentRepository creates a new parent repository
func NewParentRepository(db *database.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// CreateParent inserts a new parent account
func (r *ParentRepository) CreateParent(email, pinHash string) (*models.Parent, error) {
	query := "INSERT INTO parents (email, pin_hash) VALUES (?, ?)"
	id, err := r.db.ExecReturningID(query, email, pinHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent: %w", err)
	}

	return &models.Parent{
		ID:        id,
		Email:     email,
		PINHash:   pinHash,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetParentByEmail retrieves a parent by email, nil when absent
func (r *ParentRepository) GetParentByEmail(email string) (*models.Parent, error) {
	query := "SELECT id, email, pin_hash, created_at, updated_at FROM parents WHERE email = ?"
	parent := &models.Parent{}
	err := r.db.QueryRow(query, email).Scan(
		&parent.ID,
		&parent.Email,
		&parent.PINHash,
		&parent.CreatedAt,
		&parent.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	return parent, nil
}

// ListParents returns every parent account on the device
func (r *ParentRepository) ListParents() ([]models.Parent, error) {
	query := "SELECT id, email, pin_hash, created_at, updated_at FROM parents ORDER BY id"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list parents: %w", err)
	}
	defer rows.Close()

	var parents []models.Parent
	for rows.Next() {
		var parent models.Parent
		if err := rows.Scan(&parent.ID, &parent.Email, &parent.PINHash, &parent.CreatedAt, &parent.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		parents = append(parents, parent)
	}
	return parents, rows.Err()
}

// UpdatePIN replaces the parent's PIN hash
func (r *ParentRepository) UpdatePIN(parentID int64, pinHash string) error {
	query := "UPDATE parents SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, pinHash, parentID); err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	return nil
}
