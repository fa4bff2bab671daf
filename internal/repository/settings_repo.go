package repository

import (
	"fmt"
	"strconv"

	"storyjars/internal/database"
)

// SettingsRepository is the device key/value store for configured limit
// values, one-shot milestone flags and the premium entitlement snapshot.
// Counts are never stored here; the append-only logs stay the source of
// truth for anything countable.
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	query := "SELECT value FROM settings WHERE key = ?"
	err := r.db.QueryRow(query, key).Scan(&value)
	return value, err
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	query := r.db.Dialect.UpsertSettings()
	_, err := r.db.Exec(query, key, value)
	return err
}

// GetDailyEarningLimit returns the configured daily earning cap, falling
// back to the supplied default when unset or unparsable
func (r *SettingsRepository) GetDailyEarningLimit(defaultLimit float64) float64 {
	value, err := r.GetSetting("daily_earning_limit")
	if err != nil {
		return defaultLimit
	}
	limit, err := strconv.ParseFloat(value, 64)
	if err != nil || limit < 0 {
		return defaultLimit
	}
	return limit
}

// SetDailyEarningLimit stores the daily earning cap
func (r *SettingsRepository) SetDailyEarningLimit(limit float64) error {
	return r.SetSetting("daily_earning_limit", strconv.FormatFloat(limit, 'f', -1, 64))
}

func milestoneKey(profileUID string, threshold int) string {
	return fmt.Sprintf("milestone_%d_shown:%s", threshold, profileUID)
}

// IsMilestoneShown reports whether the one-shot milestone for this
// threshold has already fired for the profile
func (r *SettingsRepository) IsMilestoneShown(profileUID string, threshold int) bool {
	value, err := r.GetSetting(milestoneKey(profileUID, threshold))
	if err != nil {
		return false
	}
	return value == "true"
}

// MarkMilestoneShown records that a milestone notification fired. This is
// the only limiter state persisted outside the logs, because "has this
// been shown" cannot be derived from them.
func (r *SettingsRepository) MarkMilestoneShown(profileUID string, threshold int) error {
	return r.SetSetting(milestoneKey(profileUID, threshold), "true")
}

// IsPremium reads the subscription entitlement snapshot for a profile
func (r *SettingsRepository) IsPremium(profileUID string) bool {
	value, err := r.GetSetting("premium_active:" + profileUID)
	if err != nil {
		return false
	}
	return value == "true"
}

// SetPremium stores the subscription entitlement snapshot supplied by the
// external subscription-status collaborator
func (r *SettingsRepository) SetPremium(profileUID string, active bool) error {
	value := "false"
	if active {
		value = "true"
	}
	return r.SetSetting("premium_active:"+profileUID, value)
}
