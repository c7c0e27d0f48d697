package schedule

import (
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
)

// Buckets groups a program's items by cycle week
type Buckets struct {
	ProgramID   string         `json:"program_id"`
	CurrentWeek int            `json:"current_week"`
	EveryWeek   []*models.Item `json:"every_week"`
	// Weeks[n-1] holds the items tagged for week n.
	Weeks [][]*models.Item `json:"weeks"`
	// Dormant holds items tagged beyond the program length.
	Dormant []*models.Item `json:"dormant,omitempty"`
}

// Group places each of the program's items in exactly one bucket.
// CurrentWeek is 0 when rotation is inactive.
func Group(p *models.CycleProgram, items []*models.Item, today time.Time) *Buckets {
	length := p.LengthWeeks
	if length < 0 {
		length = 0
	}
	b := &Buckets{ProgramID: p.ID, Weeks: make([][]*models.Item, length)}
	b.CurrentWeek, _ = CurrentWeek(p, today)

	for _, item := range items {
		if item.ProgramID == nil || *item.ProgramID != p.ID {
			continue
		}
		switch {
		case !item.IsCycleTagged():
			b.EveryWeek = append(b.EveryWeek, item)
		case item.CycleWeek <= length:
			b.Weeks[item.CycleWeek-1] = append(b.Weeks[item.CycleWeek-1], item)
		default:
			b.Dormant = append(b.Dormant, item)
		}
	}
	return b
}

// Week returns the bucket for week n; 0 is the every-week bucket.
func (b *Buckets) Week(n int) []*models.Item {
	if n == 0 {
		return b.EveryWeek
	}
	if n < 1 || n > len(b.Weeks) {
		return nil
	}
	return b.Weeks[n-1]
}

// Sort orders every bucket by its own stored order.
func (b *Buckets) Sort(orders map[models.Scope][]string) {
	b.EveryWeek = Arrange(b.EveryWeek, orders[models.BucketScope(b.ProgramID, 0)])
	for i := range b.Weeks {
		b.Weeks[i] = Arrange(b.Weeks[i], orders[models.BucketScope(b.ProgramID, i+1)])
	}
}

// Current returns what is due this week: the current week's bucket then
// the every-week bucket. With rotation inactive every item is due.
func (b *Buckets) Current() []*models.Item {
	if b.CurrentWeek == 0 {
		out := append([]*models.Item(nil), b.EveryWeek...)
		for _, w := range b.Weeks {
			out = append(out, w...)
		}
		return append(out, b.Dormant...)
	}
	out := append([]*models.Item(nil), b.Week(b.CurrentWeek)...)
	return append(out, b.EveryWeek...)
}
