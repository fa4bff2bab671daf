package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"storyjars/internal/models"
	"storyjars/internal/repository"
	"storyjars/internal/validation"
)

// balanceEpsilon absorbs floating-point error in currency comparisons.
// Amounts are decimal values, so every balance comparison and every drift
// check uses this tolerance.
const balanceEpsilon = 0.01

// localDate formats a moment as the device-local calendar date used to
// group ledger and question log rows
func localDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// LedgerService owns the savings jars and their append-only transaction
// log. Every balance mutation appends a log row and moves the cached
// balance with a single atomic UPDATE inside one database transaction.
type LedgerService struct {
	jarRepo *repository.JarRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(jarRepo *repository.JarRepository) *LedgerService {
	return &LedgerService{jarRepo: jarRepo}
}

// CreateJar creates an empty jar for a profile
func (s *LedgerService) CreateJar(profileID int64, name, emoji string) (*models.SavingsJar, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	return s.jarRepo.CreateJar(profileID, name, emoji)
}

// GetJar retrieves a jar scoped to a profile
func (s *LedgerService) GetJar(jarID, profileID int64) (*models.SavingsJar, error) {
	jar, err := s.jarRepo.GetJarByID(jarID)
	if err != nil {
		return nil, err
	}
	if jar == nil || jar.ProfileID != profileID {
		return nil, ErrJarNotFound
	}
	return jar, nil
}

// ListJars retrieves all of a profile's jars
func (s *LedgerService) ListJars(profileID int64) ([]models.SavingsJar, error) {
	return s.jarRepo.GetProfileJars(profileID)
}

// GetTransactions retrieves a jar's ledger, newest first
func (s *LedgerService) GetTransactions(jarID, profileID int64) ([]models.Transaction, error) {
	if _, err := s.GetJar(jarID, profileID); err != nil {
		return nil, err
	}
	return s.jarRepo.GetJarTransactions(jarID)
}

// DeleteJar removes a jar and its transaction log
func (s *LedgerService) DeleteJar(jarID, profileID int64) error {
	if _, err := s.GetJar(jarID, profileID); err != nil {
		return err
	}
	return s.jarRepo.DeleteJar(jarID)
}

// AddMoney appends a positive transaction and credits the jar
func (s *LedgerService) AddMoney(jarID int64, amount float64, memo string, profileID int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := s.jarRepo.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	jar, err := s.jarRepo.GetJarTx(tx, jarID)
	if err != nil {
		return err
	}
	if jar == nil || jar.ProfileID != profileID {
		return ErrJarNotFound
	}

	if _, err := s.jarRepo.AppendTransaction(tx, jarID, memo, amount, localDate(time.Now())); err != nil {
		return err
	}
	if err := s.jarRepo.AdjustBalance(tx, jarID, amount); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveMoney appends a negative transaction and debits the jar. Fails
// with ErrInsufficientFunds when the jar holds less than amount.
func (s *LedgerService) RemoveMoney(jarID int64, amount float64, memo string, profileID int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := s.jarRepo.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	jar, err := s.jarRepo.GetJarTx(tx, jarID)
	if err != nil {
		return err
	}
	if jar == nil || jar.ProfileID != profileID {
		return ErrJarNotFound
	}
	if amount > jar.Balance+balanceEpsilon {
		return ErrInsufficientFunds
	}

	if _, err := s.jarRepo.AppendTransaction(tx, jarID, memo, -amount, localDate(time.Now())); err != nil {
		return err
	}
	if err := s.jarRepo.AdjustBalance(tx, jarID, -amount); err != nil {
		return err
	}

	return tx.Commit()
}

// Transfer moves money between two jars as exactly two log rows (debit,
// credit) with cross-reference memos. Both rows and both balance moves
// commit atomically: an interrupted transfer leaves no trace.
func (s *LedgerService) Transfer(fromJarID, toJarID int64, amount float64, memo string, profileID int64) error {
	if fromJarID == toJarID {
		return ErrSameJar
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := s.jarRepo.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transfer transaction: %w", err)
	}
	defer tx.Rollback()

	from, err := s.jarRepo.GetJarTx(tx, fromJarID)
	if err != nil {
		return err
	}
	to, err := s.jarRepo.GetJarTx(tx, toJarID)
	if err != nil {
		return err
	}
	if from == nil || from.ProfileID != profileID || to == nil || to.ProfileID != profileID {
		return ErrJarNotFound
	}
	if amount > from.Balance+balanceEpsilon {
		return ErrInsufficientFunds
	}

	ref := uuid.New().String()[:8]
	date := localDate(time.Now())
	debitMemo := fmt.Sprintf("%s (to %s) [transfer %s]", memo, to.Name, ref)
	creditMemo := fmt.Sprintf("%s (from %s) [transfer %s]", memo, from.Name, ref)

	if _, err := s.jarRepo.AppendTransaction(tx, fromJarID, debitMemo, -amount, date); err != nil {
		return err
	}
	if err := s.jarRepo.AdjustBalance(tx, fromJarID, -amount); err != nil {
		return err
	}
	if _, err := s.jarRepo.AppendTransaction(tx, toJarID, creditMemo, amount, date); err != nil {
		return err
	}
	if err := s.jarRepo.AdjustBalance(tx, toJarID, amount); err != nil {
		return err
	}

	return tx.Commit()
}

// GetStatistics aggregates a profile's savings for display
func (s *LedgerService) GetStatistics(profileID int64) (*models.LedgerStatistics, error) {
	return s.jarRepo.GetStatistics(profileID)
}

// Diagnose recomputes every jar's balance from its transaction log and
// reports the gap to the cached value. A non-zero Discrepancy means the
// ledger invariant has been violated (old pre-atomic data, or a direct
// balance write that bypassed the log).
func (s *LedgerService) Diagnose(profileID int64) (*models.LedgerDiagnosis, error) {
	jars, err := s.jarRepo.GetProfileJars(profileID)
	if err != nil {
		return nil, err
	}

	earned, withdrawn, err := s.jarRepo.SumsByKind(profileID)
	if err != nil {
		return nil, err
	}

	diagnosis := &models.LedgerDiagnosis{
		TotalEarned:     earned,
		TotalWithdrawn:  withdrawn,
		NetTransactions: earned + withdrawn,
	}

	for _, jar := range jars {
		calculated, err := s.jarRepo.SumTransactions(jar.ID)
		if err != nil {
			return nil, err
		}
		difference := jar.Balance - calculated
		diagnosis.TotalBalance += jar.Balance
		diagnosis.Discrepancy += math.Abs(difference)
		diagnosis.JarDifferences = append(diagnosis.JarDifferences, models.JarDifference{
			JarID:             jar.ID,
			JarName:           jar.Name,
			CachedBalance:     jar.Balance,
			CalculatedBalance: calculated,
			Difference:        difference,
		})
	}

	return diagnosis, nil
}

// Repair overwrites the cached balance of every jar that disagrees with
// its transaction log by more than the epsilon. Safe to call at any time;
// an immediate second call is a no-op.
func (s *LedgerService) Repair(profileID int64) (*models.RepairResult, error) {
	jars, err := s.jarRepo.GetProfileJars(profileID)
	if err != nil {
		return nil, err
	}

	result := &models.RepairResult{}
	for _, jar := range jars {
		calculated, err := s.jarRepo.SumTransactions(jar.ID)
		if err != nil {
			return nil, err
		}
		difference := jar.Balance - calculated
		if math.Abs(difference) <= balanceEpsilon {
			continue
		}

		if err := s.jarRepo.SetBalance(jar.ID, calculated); err != nil {
			return nil, err
		}

		result.FixedJars++
		result.TotalDiscrepancyFixed += math.Abs(difference)
		result.Details = append(result.Details, models.JarRepair{
			JarID:      jar.ID,
			JarName:    jar.Name,
			OldBalance: jar.Balance,
			NewBalance: calculated,
			Difference: difference,
		})
	}

	return result, nil
}
