package models

import "time"

// SavingsJar is a named bucket of earned money. Balance is a cached value
// that must equal the sum of the jar's transactions at rest.
type SavingsJar struct {
	ID        int64
	Name      string
	Balance   float64
	Emoji     string
	ProfileID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is one signed, dated entry in a jar's ledger.
// Rows are append-only: money is removed by a negative entry, never by
// deleting an earlier one.
type Transaction struct {
	ID        int64
	JarID     int64
	Memo      string
	Amount    float64
	Date      string // device-local calendar date, YYYY-MM-DD
	CreatedAt time.Time
}

// LedgerStatistics aggregates a profile's savings for display
type LedgerStatistics struct {
	TotalJars         int
	TotalBalance      float64
	TotalTransactions int
	AverageBalance    float64
}

// JarDifference reports one jar's cached-vs-calculated balance gap
type JarDifference struct {
	JarID             int64
	JarName           string
	CachedBalance     float64
	CalculatedBalance float64
	Difference        float64
}

// LedgerDiagnosis is the result of checking a profile's ledger invariant:
// a non-zero Discrepancy means some jar's cached balance has drifted from
// its transaction log.
type LedgerDiagnosis struct {
	TotalBalance    float64
	TotalEarned     float64
	TotalWithdrawn  float64
	NetTransactions float64
	Discrepancy     float64
	JarDifferences  []JarDifference
}

// JarRepair records one jar whose cached balance was overwritten with the
// value calculated from its transaction log
type JarRepair struct {
	JarID      int64
	JarName    string
	OldBalance float64
	NewBalance float64
	Difference float64
}

// RepairResult summarizes a reconciliation pass
type RepairResult struct {
	FixedJars             int
	TotalDiscrepancyFixed float64
	Details               []JarRepair
}
