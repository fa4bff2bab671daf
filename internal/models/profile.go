package models

import "time"

// Profile represents one learner profile on the device.
// All jars, transactions and completions are partitioned by profile.
type Profile struct {
	ID           int64
	UID          string
	Name         string
	ReadingLevel ReadingLevel
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Parent is the adult account guarding settings and destructive operations
type Parent struct {
	ID        int64
	Email     string
	PINHash   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
