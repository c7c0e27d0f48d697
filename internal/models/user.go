package models

import "time"

// SortMode selects how a user's lists are ordered
type SortMode string

const (
	SortModeAuto     SortMode = "auto"
	SortModeManual   SortMode = "manual"
	SortModeTimeline SortMode = "timeline"
)

// Valid reports whether m is a known sort mode
func (m SortMode) Valid() bool {
	switch m {
	case SortModeAuto, SortModeManual, SortModeTimeline:
		return true
	}
	return false
}

// User represents a person whose day is planned. Users arriving through
// Telegram carry their Telegram identity; ChatID is where reminders go.
type User struct {
	ID               int64     `json:"id" db:"id"`
	TelegramID       int64     `json:"telegram_id" db:"telegram_id"`
	TelegramUsername string    `json:"telegram_username" db:"telegram_username"`
	FirstName        string    `json:"first_name" db:"first_name"`
	LastName         string    `json:"last_name" db:"last_name"`
	ChatID           int64     `json:"chat_id" db:"chat_id"`
	SortMode         SortMode  `json:"sort_mode" db:"sort_mode"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's full name
func (u *User) FullName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// DisplayName returns the best display name for the user
func (u *User) DisplayName() string {
	if u.TelegramUsername != "" {
		return "@" + u.TelegramUsername
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return "user"
}
