package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scope identifies one explicitly ordered list
type Scope string

// ScopeTimeline is the single list spanning every grouping context
const ScopeTimeline Scope = "timeline"

// ContextScope returns the scope of a grouping context
func ContextScope(c GroupingContext) Scope {
	return Scope(c)
}

// BucketScope returns the scope of one program week. Week 0 is the
// every-week bucket.
func BucketScope(programID string, week int) Scope {
	if week == 0 {
		return Scope(fmt.Sprintf("program:%s:every", programID))
	}
	return Scope(fmt.Sprintf("program:%s:week:%d", programID, week))
}

// IsBucket returns true for program bucket scopes
func (s Scope) IsBucket() bool {
	return strings.HasPrefix(string(s), "program:")
}

// OrderRecord is the persisted order of one scope
type OrderRecord struct {
	UserID     int64     `json:"user_id" db:"user_id"`
	Scope      Scope     `json:"scope" db:"scope"`
	OrderedIDs []string  `json:"ordered_ids" db:"ordered_ids"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// LockKind is the span of an order lock
type LockKind string

const (
	LockDay  LockKind = "day"
	LockWeek LockKind = "week"
)

// OrderLock freezes reordering until ExpiresAt. Week locks are only
// enforced on their applicable weekdays (0 = Sunday).
type OrderLock struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	Kind      LockKind  `json:"kind" db:"kind"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Weekdays  []int     `json:"weekdays,omitempty" db:"weekdays"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SkipRecord marks an item as manually skipped on a date
type SkipRecord struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Date      string    `json:"date" db:"skip_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DayExclusion lists weekdays on which an item is switched off
type DayExclusion struct {
	UserID   int64  `json:"user_id" db:"user_id"`
	ItemID   string `json:"item_id" db:"item_id"`
	Weekdays []int  `json:"weekdays" db:"weekdays"`
}

// Bucket splits a bucket scope into program id and week (0 = every week).
func (s Scope) Bucket() (string, int, bool) {
	rest, ok := strings.CutPrefix(string(s), "program:")
	if !ok {
		return "", 0, false
	}
	if id, ok := strings.CutSuffix(rest, ":every"); ok && id != "" {
		return id, 0, true
	}
	i := strings.LastIndex(rest, ":week:")
	if i <= 0 {
		return "", 0, false
	}
	week, err := strconv.Atoi(rest[i+len(":week:"):])
	if err != nil || week < 1 {
		return "", 0, false
	}
	return rest[:i], week, true
}
