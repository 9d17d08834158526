package model

import "time"

// ResponseLock is the persisted mutual-exclusion record for one artifact
// (one mapping) while team-based reviewing is enabled. Expiry is checked by
// every caller on access; no background sweeper exists.
type ResponseLock struct {
	MapID      string    `json:"mapId" bson:"_id"`
	HolderID   string    `json:"holderId" bson:"holderId"`
	AcquiredAt time.Time `json:"acquiredAt" bson:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}

// ExpiredAt reports whether the lock has lapsed at the given instant.
func (l *ResponseLock) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
