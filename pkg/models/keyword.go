package models

import (
	"time"
)

// Keyword is a tracked search keyword. ExpiredAt drives the refresh state
// machine: nil means never scheduled (due now), a past timestamp means due,
// a future timestamp means armed.
type Keyword struct {
	ID           int64      `db:"id"`
	Keyword      string     `db:"keyword"`
	Active       bool       `db:"active"`
	RefreshHours int        `db:"refresh_hours"`
	ExpiredAt    *time.Time `db:"expired_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Due reports whether the keyword should be refreshed at the given time.
func (k *Keyword) Due(now time.Time) bool {
	return k.ExpiredAt == nil || !k.ExpiredAt.After(now)
}

// Subscription ties a user to a tracked keyword. A keyword with no
// subscriptions left is deleted.
type Subscription struct {
	UserID    int64     `db:"user_id"`
	KeywordID int64     `db:"keyword_id"`
	CreatedAt time.Time `db:"created_at"`
}
