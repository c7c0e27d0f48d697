package models

import "time"

// TemplateEntry is one item of a schedule template
type TemplateEntry struct {
	ItemID          string  `json:"item_id" db:"item_id"`
	StartTime       *string `json:"start_time" db:"start_time"`
	ReminderMinutes *int    `json:"reminder_minutes" db:"reminder_minutes"`
}

// ScheduleTemplate is a named snapshot of timeline order plus timings
type ScheduleTemplate struct {
	ID        string          `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Name      string          `json:"name" db:"name"`
	IsDefault bool            `json:"is_default" db:"is_default"`
	Entries   []TemplateEntry `json:"entries"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemIDs returns the template's item ids in template order
func (t *ScheduleTemplate) ItemIDs() []string {
	ids := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		ids[i] = e.ItemID
	}
	return ids
}
