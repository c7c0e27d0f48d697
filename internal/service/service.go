package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/metrics"
	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/pkg/logger"
)

// Service is the central business logic layer. It owns one Planner per
// user and the background reminder loop.
type Service struct {
	store   repository.Store
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.Mutex
	planners map[int64]*Planner

	sentMu sync.Mutex
	sent   map[reminderKey]bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the local clock used for every "today" computation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records planner outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service over the given repositories.
func New(store repository.Store, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   logger,
		now:      time.Now,
		planners: make(map[int64]*Planner),
		sent:     make(map[reminderKey]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Planner returns the planner of userID, loading its state on first use.
func (s *Service) Planner(ctx context.Context, userID int64) (*Planner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.planners[userID]; ok {
		return p, nil
	}

	p := &Planner{
		userID:  userID,
		store:   s.store,
		log:     logger.ForUser(s.logger, userID),
		metrics: s.metrics,
		now:     s.now,
	}
	if err := p.load(ctx); err != nil {
		return nil, fmt.Errorf("load planner for user %d: %w", userID, err)
	}
	s.planners[userID] = p
	return p, nil
}

// CreateUser registers a user that does not come from Telegram.
func (s *Service) CreateUser(ctx context.Context, firstName string, chatID int64) (*models.User, error) {
	user, err := s.store.Users.Create(ctx, &models.User{
		FirstName: strings.TrimSpace(firstName),
		ChatID:    chatID,
		SortMode:  models.SortModeManual,
		IsActive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Infof("Created new user: %s (id=%d)", user.DisplayName(), user.ID)
	return user, nil
}

// EnsureUser retrieves an existing user by Telegram ID, or creates a new one
// if not found. Changed profile fields and chat are written back.
func (s *Service) EnsureUser(ctx context.Context, telegramID int64, username, firstName, lastName string, chatID int64) (*models.User, error) {
	username = strings.TrimSpace(username)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	user, err := s.store.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (telegram_id=%d): %w", telegramID, err)
	}
	if user == nil {
		user, err = s.store.Users.Create(ctx, &models.User{
			TelegramID:       telegramID,
			TelegramUsername: username,
			FirstName:        firstName,
			LastName:         lastName,
			ChatID:           chatID,
			SortMode:         models.SortModeManual,
			IsActive:         true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user (telegram_id=%d): %w", telegramID, err)
		}
		s.logger.Infof("Created new user: %s (telegram_id=%d)", user.DisplayName(), telegramID)
		return user, nil
	}

	if user.TelegramUsername == username && user.FirstName == firstName &&
		user.LastName == lastName && user.ChatID == chatID {
		return user, nil
	}

	user.TelegramUsername = username
	user.FirstName = firstName
	user.LastName = lastName
	user.ChatID = chatID
	user, err = s.store.Users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user (telegram_id=%d): %w", telegramID, err)
	}
	s.logger.Infof("Updated user profile: %s (telegram_id=%d)", user.DisplayName(), telegramID)

	return user, nil
}
