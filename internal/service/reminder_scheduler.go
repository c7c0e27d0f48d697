package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// ReminderCallback is a function that sends a reminder message to a chat.
type ReminderCallback func(chatID int64, text string)

// Reminder is an item whose reminder time has come.
type Reminder struct {
	UserID   int64
	ChatID   int64
	Item     *models.Item
	RemindAt time.Time
}

type reminderKey struct {
	userID int64
	itemID string
	date   string
}

// StartReminderScheduler runs a background loop that checks for due item
// reminders every interval and invokes the callback for each one. It blocks
// until the context is cancelled, so it should be launched in a separate
// goroutine.
func (s *Service) StartReminderScheduler(ctx context.Context, interval time.Duration, callback ReminderCallback) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Infof("Reminder scheduler started (interval=%s)", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.processReminders(ctx, interval, callback)
		}
	}
}

// processReminders sends every reminder that became due within the last
// window, at most once per user, item and day.
func (s *Service) processReminders(ctx context.Context, window time.Duration, callback ReminderCallback) {
	reminders, err := s.DueReminders(ctx, window)
	if err != nil {
		s.logger.Errorf("Failed to get due reminders: %v", err)
		return
	}

	for _, r := range reminders {
		key := reminderKey{r.UserID, r.Item.ID, r.RemindAt.Format(models.DateLayout)}

		s.sentMu.Lock()
		if s.sent[key] {
			s.sentMu.Unlock()
			continue
		}
		s.sent[key] = true
		s.sentMu.Unlock()

		callback(r.ChatID, fmt.Sprintf("⏰ *Reminder*\n%s at %s", r.Item.Title, *r.Item.StartTime))
		s.metrics.ReminderSent()
	}
	s.forgetSent()
}

// forgetSent drops keys of past days.
func (s *Service) forgetSent() {
	today := s.now().Format(models.DateLayout)

	s.sentMu.Lock()
	defer s.sentMu.Unlock()
	for key := range s.sent {
		if key.date < today {
			delete(s.sent, key)
		}
	}
}

// DueReminders returns the reminders of every active user whose reminder
// time falls in (now-window, now]. Only items shown today and not yet
// completed are considered.
func (s *Service) DueReminders(ctx context.Context, window time.Duration) ([]Reminder, error) {
	users, err := s.store.Users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	var out []Reminder
	for _, user := range users {
		if user.ChatID == 0 {
			continue
		}
		p, err := s.Planner(ctx, user.ID)
		if err != nil {
			s.logger.Warnf("Skipping reminders of user %d: %v", user.ID, err)
			continue
		}
		for _, r := range p.dueReminders(ctx, window) {
			r.ChatID = user.ChatID
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *Planner) dueReminders(ctx context.Context, window time.Duration) []Reminder {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		p.log.WithError(err).Warn("Failed to load planner for reminders")
		return nil
	}
	now := p.now()
	visible, _ := p.filter(now).Split(p.st.items)

	var out []Reminder
	for _, item := range visible {
		if item.Completed || !item.HasReminder() {
			continue
		}
		at, err := remindAt(item, now)
		if err != nil {
			continue
		}
		if at.After(now) || !at.After(now.Add(-window)) {
			continue
		}
		out = append(out, Reminder{UserID: p.userID, Item: item.Clone(), RemindAt: at})
	}
	return out
}

// remindAt is the item's start time today minus its reminder lead.
func remindAt(item *models.Item, now time.Time) (time.Time, error) {
	start, err := time.Parse(models.TimeLayout, *item.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	day := schedule.StartOfDay(now)
	at := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, now.Location())
	return at.Add(-time.Duration(*item.ReminderMinutes) * time.Minute), nil
}
