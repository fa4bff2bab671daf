package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storyjars/internal/database"
	"storyjars/internal/models"
)

// JarRepository handles database operations for savings jars and their
// append-only transaction log
type JarRepository struct {
	db *database.DB
}

// NewJarRepository creates a new jar repository
func NewJarRepository(db *database.DB) *JarRepository {
	return &JarRepository{db: db}
}

// CreateJar inserts a new jar with a zero balance
func (r *JarRepository) CreateJar(profileID int64, name, emoji string) (*models.SavingsJar, error) {
	query := "INSERT INTO savings_jug (name, balance, emoji, profile_id) VALUES (?, 0, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, emoji, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to create jar: %w", err)
	}

	return &models.SavingsJar{
		ID:        id,
		Name:      name,
		Balance:   0,
		Emoji:     emoji,
		ProfileID: profileID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

const jarColumns = "id, name, balance, emoji, profile_id, created_at, updated_at"

func scanJar(row *sql.Row) (*models.SavingsJar, error) {
	jar := &models.SavingsJar{}
	err := row.Scan(
		&jar.ID,
		&jar.Name,
		&jar.Balance,
		&jar.Emoji,
		&jar.ProfileID,
		&jar.CreatedAt,
		&jar.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jar: %w", err)
	}
	return jar, nil
}

// GetJarByID retrieves a jar by ID, nil when absent
func (r *JarRepository) GetJarByID(jarID int64) (*models.SavingsJar, error) {
	query := "SELECT " + jarColumns + " FROM savings_jug WHERE id = ?"
	return scanJar(r.db.QueryRow(query, jarID))
}

// GetJarTx retrieves a jar inside an open transaction so balance checks and
// the subsequent ledger writes see the same state
func (r *JarRepository) GetJarTx(q database.DBTX, jarID int64) (*models.SavingsJar, error) {
	query := "SELECT " + jarColumns + " FROM savings_jug WHERE id = ?"
	return scanJar(q.QueryRow(query, jarID))
}

// GetProfileJars retrieves all jars owned by a profile
func (r *JarRepository) GetProfileJars(profileID int64) ([]models.SavingsJar, error) {
	query := "SELECT " + jarColumns + " FROM savings_jug WHERE profile_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jars: %w", err)
	}
	defer rows.Close()

	var jars []models.SavingsJar
	for rows.Next() {
		var jar models.SavingsJar
		if err := rows.Scan(
			&jar.ID,
			&jar.Name,
			&jar.Balance,
			&jar.Emoji,
			&jar.ProfileID,
			&jar.CreatedAt,
			&jar.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan jar: %w", err)
		}
		jars = append(jars, jar)
	}

	return jars, rows.Err()
}

// DeleteJar removes a jar and its transactions. Transactions go first so a
// failure never leaves log rows pointing at a missing jar.
func (r *JarRepository) DeleteJar(jarID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM savings_transaction WHERE jug_id = ?", jarID); err != nil {
		return fmt.Errorf("failed to delete jar transactions: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM savings_jug WHERE id = ?", jarID); err != nil {
		return fmt.Errorf("failed to delete jar: %w", err)
	}

	return tx.Commit()
}

// AppendTransaction adds one signed entry to a jar's ledger
func (r *JarRepository) AppendTransaction(q database.DBTX, jarID int64, memo string, amount float64, date string) (int64, error) {
	query := "INSERT INTO savings_transaction (jug_id, memo, amount, entry_date) VALUES (?, ?, ?, ?)"
	id, err := q.ExecReturningID(query, jarID, memo, amount, date)
	if err != nil {
		return 0, fmt.Errorf("failed to append transaction: %w", err)
	}
	return id, nil
}

// AdjustBalance moves a jar's cached balance by delta in a single atomic
// statement; never read-then-write
func (r *JarRepository) AdjustBalance(q database.DBTX, jarID int64, delta float64) error {
	query := "UPDATE savings_jug SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := q.Exec(query, delta, jarID); err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	return nil
}

// SetBalance overwrites a jar's cached balance. Only reconciliation uses
// this; everything else goes through AdjustBalance.
func (r *JarRepository) SetBalance(jarID int64, balance float64) error {
	query := "UPDATE savings_jug SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, balance, jarID); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

// GetJarTransactions retrieves a jar's ledger, newest first
func (r *JarRepository) GetJarTransactions(jarID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, jug_id, memo, amount, entry_date, created_at
		FROM savings_transaction
		WHERE jug_id = ?
		ORDER BY id DESC
	`
	rows, err := r.db.Query(query, jarID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.JarID,
			&txn.Memo,
			&txn.Amount,
			&txn.Date,
			&txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// SumTransactions calculates a jar's balance from its log
func (r *JarRepository) SumTransactions(jarID int64) (float64, error) {
	query := "SELECT COALESCE(SUM(amount), 0) FROM savings_transaction WHERE jug_id = ?"
	var total float64
	err := r.db.QueryRow(query, jarID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// GetStatistics aggregates a profile's savings
func (r *JarRepository) GetStatistics(profileID int64) (*models.LedgerStatistics, error) {
	stats := &models.LedgerStatistics{}

	query := "SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM savings_jug WHERE profile_id = ?"
	if err := r.db.QueryRow(query, profileID).Scan(&stats.TotalJars, &stats.TotalBalance); err != nil {
		return nil, fmt.Errorf("failed to aggregate jars: %w", err)
	}

	query = `
		SELECT COUNT(*)
		FROM savings_transaction
		WHERE jug_id IN (SELECT id FROM savings_jug WHERE profile_id = ?)
	`
	if err := r.db.QueryRow(query, profileID).Scan(&stats.TotalTransactions); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	if stats.TotalJars > 0 {
		stats.AverageBalance = stats.TotalBalance / float64(stats.TotalJars)
	}

	return stats, nil
}

// SumsByKind returns a profile's lifetime earned (positive entries) and
// withdrawn (negative entries) totals from the log
func (r *JarRepository) SumsByKind(profileID int64) (earned, withdrawn float64, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END), 0)
		FROM savings_transaction
		WHERE jug_id IN (SELECT id FROM savings_jug WHERE profile_id = ?)
	`
	if err := r.db.QueryRow(query, profileID).Scan(&earned, &withdrawn); err != nil {
		return 0, 0, fmt.Errorf("failed to sum transactions by kind: %w", err)
	}
	return earned, withdrawn, nil
}

// SumEarnedOnDate totals the positive transaction amounts a profile earned
// on one device-local calendar date. Always computed from the log.
func (r *JarRepository) SumEarnedOnDate(profileID int64, date string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM savings_transaction
		WHERE amount > 0
		  AND entry_date = ?
		  AND jug_id IN (SELECT id FROM savings_jug WHERE profile_id = ?)
	`
	var total float64
	if err := r.db.QueryRow(query, date, profileID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum daily earnings: %w", err)
	}
	return total, nil
}

// SumEarnedSince totals the positive transaction amounts a profile earned
// on or after the given device-local calendar date
func (r *JarRepository) SumEarnedSince(profileID int64, date string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM savings_transaction
		WHERE amount > 0
		  AND entry_date >= ?
		  AND jug_id IN (SELECT id FROM savings_jug WHERE profile_id = ?)
	`
	var total float64
	if err := r.db.QueryRow(query, date, profileID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum earnings: %w", err)
	}
	return total, nil
}

// Begin starts a transaction for multi-step ledger operations
func (r *JarRepository) Begin() (*database.Tx, error) {
	return r.db.Begin()
}
