// Package subscriber provides business operations over subscriber profiles.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/newscluster/telegram-bot/internal/domain"
	"github.com/newscluster/telegram-bot/internal/repository"
)

const cacheTTL = 10 * time.Minute

// Service provides business operations over subscribers.
type Service struct {
	repo  repository.SubscriberRepository
	cache *Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. The cache may be nil.
func NewService(repo repository.SubscriberRepository, cache *Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Provision registers the Telegram sender as a subscriber, or refreshes the
// profile fields of an existing one. Existing preferences are preserved.
func (s *Service) Provision(ctx context.Context, tgUser *telebot.User) (*domain.Subscriber, error) {
	if tgUser == nil {
		return nil, errors.New("telegram user is nil")
	}

	sub := &domain.Subscriber{
		ID:          tgUser.ID,
		FirstName:   tgUser.FirstName,
		LastName:    tgUser.LastName,
		FullName:    fullName(tgUser),
		Username:    tgUser.Username,
		Link:        domain.DeepLink(tgUser.ID),
		Preferences: domain.DefaultPreferences(),
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		s.logError("provision", tgUser.ID, err)
		return nil, fmt.Errorf("provision subscriber: %w", err)
	}

	if err := s.cache.Invalidate(ctx, tgUser.ID); err != nil {
		s.logError("provision.invalidate", tgUser.ID, err)
	}

	return s.Get(ctx, tgUser.ID)
}

// Get returns the subscriber profile, consulting the cache first.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Subscriber, error) {
	if cached, err := s.cache.Get(ctx, id); err != nil {
		s.logError("get.cache", id, err)
	} else if cached != nil {
		return cached, nil
	}

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logError("get.find", id, err)
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, id, sub, cacheTTL); err != nil {
		s.logError("get.cache_set", id, err)
	}

	return sub, nil
}

// SavePreferences validates and stores the full preference set.
func (s *Service) SavePreferences(ctx context.Context, id int64, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdatePreferences(ctx, id, prefs); err != nil {
		s.logError("save_preferences", id, err)
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logError("save_preferences.invalidate", id, err)
	}

	return nil
}

// SetAutoDigest flips the daily digest flag.
func (s *Service) SetAutoDigest(ctx context.Context, id int64, enabled bool) error {
	if err := s.repo.SetAutoDigest(ctx, id, enabled); err != nil {
		s.logError("set_auto_digest", id, err)
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logError("set_auto_digest.invalidate", id, err)
	}

	return nil
}

// ListAutoSubscribed returns digest recipients, most recently updated first.
func (s *Service) ListAutoSubscribed(ctx context.Context) ([]*domain.Subscriber, error) {
	subs, err := s.repo.ListAutoSubscribed(ctx)
	if err != nil {
		s.logError("list_auto_subscribed", 0, err)
		return nil, err
	}

	return subs, nil
}

// TouchLastActive refreshes the last_active_at field for the subscriber.
func (s *Service) TouchLastActive(ctx context.Context, id int64) error {
	if err := s.repo.TouchLastActive(ctx, id); err != nil {
		s.logError("touch_last_active", id, err)
		return err
	}

	return nil
}

func (s *Service) logError(operation string, id int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("subscriber service operation failed",
		slog.String("operation", operation),
		slog.Int64("subscriber_id", id),
		slog.Any("error", err),
	)
}

func fullName(tgUser *telebot.User) string {
	return strings.TrimSpace(strings.TrimSpace(tgUser.FirstName) + " " + strings.TrimSpace(tgUser.LastName))
}
