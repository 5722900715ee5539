package config

import "time"

const (
	activityIntervalVar = "FITCAMP_ACTIVITY_INTERVAL"
	tabExpiryVar        = "FITCAMP_TAB_EXPIRY"
)

type Session struct{}

var _ SessionConfig = Session{}

// GetActivityInterval is how often a running tab stamps its directory entry
// and sweeps expired ones.
func (Session) GetActivityInterval() time.Duration {
	return GetDurationEnv(activityIntervalVar, 30*time.Second)
}

// GetTabExpiry is how long a directory entry may go without activity before
// any tab's sweep removes it.
func (Session) GetTabExpiry() time.Duration {
	return GetDurationEnv(tabExpiryVar, time.Hour)
}
