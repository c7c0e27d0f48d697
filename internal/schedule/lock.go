package schedule

import (
	"slices"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
)

// LockState is what a user sees of their order lock
type LockState string

const (
	Unlocked   LockState = "unlocked"
	LockedDay  LockState = "locked_day"
	LockedWeek LockState = "locked_week"
)

// LockStatus is the read-time evaluation of a stored lock
type LockStatus struct {
	State     LockState  `json:"state"`
	Active    bool       `json:"active"`
	Dormant   bool       `json:"dormant"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Weekdays  []int      `json:"weekdays,omitempty"`
}

// NewDayLock locks ordering until the end of now's local day.
func NewDayLock(userID int64, now time.Time) *models.OrderLock {
	return &models.OrderLock{
		UserID:    userID,
		Kind:      models.LockDay,
		ExpiresAt: EndOfDay(now),
		CreatedAt: now,
	}
}

// NewWeekLock locks ordering on the given weekdays.
func NewWeekLock(userID int64, now time.Time, weekdays []int) (*models.OrderLock, error) {
	expires, err := WeekLockExpiry(now, weekdays)
	if err != nil {
		return nil, err
	}
	days := slices.Clone(weekdays)
	slices.Sort(days)
	return &models.OrderLock{
		UserID:    userID,
		Kind:      models.LockWeek,
		ExpiresAt: expires,
		Weekdays:  slices.Compact(days),
		CreatedAt: now,
	}, nil
}

// Expired reports whether the lock has run out.
func Expired(l *models.OrderLock, now time.Time) bool {
	return l == nil || !now.Before(l.ExpiresAt)
}

// LockActive reports whether l refuses order mutations at now.
func LockActive(l *models.OrderLock, now time.Time) bool {
	if Expired(l, now) {
		return false
	}
	if l.Kind == models.LockWeek {
		return slices.Contains(l.Weekdays, int(now.Weekday()))
	}
	return true
}

// Status evaluates l at now.
func Status(l *models.OrderLock, now time.Time) LockStatus {
	if Expired(l, now) {
		return LockStatus{State: Unlocked}
	}
	expires := l.ExpiresAt
	st := LockStatus{
		Active:    LockActive(l, now),
		ExpiresAt: &expires,
		Weekdays:  l.Weekdays,
	}
	if l.Kind == models.LockWeek {
		st.State = LockedWeek
		st.Dormant = !st.Active
	} else {
		st.State = LockedDay
	}
	return st
}
