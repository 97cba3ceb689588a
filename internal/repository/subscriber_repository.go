// Package repository implements SQL persistence for subscribers.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/newscluster/telegram-bot/internal/domain"
)

// ErrNotFound is returned when the requested subscriber does not exist.
var ErrNotFound = errors.New("subscriber not found")

// SubscriberRepository defines persistence operations for subscribers.
type SubscriberRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Subscriber, error)
	Upsert(ctx context.Context, sub *domain.Subscriber) error
	UpdatePreferences(ctx context.Context, id int64, prefs domain.Preferences) error
	SetAutoDigest(ctx context.Context, id int64, enabled bool) error
	ListAutoSubscribed(ctx context.Context) ([]*domain.Subscriber, error)
	TouchLastActive(ctx context.Context, id int64) error
}

type subscriberRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSubscriberRepository creates a new SQL-backed subscriber repository.
func NewSubscriberRepository(db *sql.DB, log *slog.Logger) SubscriberRepository {
	return &subscriberRepository{
		db:  db,
		log: log,
	}
}

// FindByID retrieves a subscriber by their Telegram identifier.
func (r *subscriberRepository) FindByID(ctx context.Context, id int64) (*domain.Subscriber, error) {
	const query = `
		SELECT id, first_name, last_name, full_name, username, link,
		       COALESCE(topic, ''), language, location, auto_digest,
		       created_at, updated_at, last_active_at
		FROM subscribers
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var (
		sub       domain.Subscriber
		firstName sql.NullString
		lastName  sql.NullString
		fullName  sql.NullString
		username  sql.NullString
		link      sql.NullString
	)
	if err := row.Scan(
		&sub.ID,
		&firstName,
		&lastName,
		&fullName,
		&username,
		&link,
		&sub.Preferences.Topic,
		&sub.Preferences.Language,
		&sub.Preferences.Location,
		&sub.Preferences.AutoDigest,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.LastActiveAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.log.Error("failed to fetch subscriber", slog.Int64("subscriber_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("find subscriber %d: %w", id, err)
	}

	sub.FirstName = firstName.String
	sub.LastName = lastName.String
	sub.FullName = fullName.String
	sub.Username = username.String
	sub.Link = link.String

	return &sub, nil
}

// Upsert inserts a subscriber or refreshes their profile fields on conflict.
// Preferences of an existing row are left untouched.
func (r *subscriberRepository) Upsert(ctx context.Context, sub *domain.Subscriber) error {
	const query = `
		INSERT INTO subscribers (id, first_name, last_name, full_name, username, link, language, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			full_name = EXCLUDED.full_name,
			username = EXCLUDED.username,
			link = EXCLUDED.link,
			last_active_at = CURRENT_TIMESTAMP
	`

	prefs := sub.Preferences
	if prefs.Language == "" {
		prefs = domain.DefaultPreferences()
	}

	if _, err := r.db.ExecContext(ctx, query,
		sub.ID,
		nullIfEmpty(sub.FirstName),
		nullIfEmpty(sub.LastName),
		nullIfEmpty(sub.FullName),
		nullIfEmpty(sub.Username),
		nullIfEmpty(sub.Link),
		prefs.Language,
		prefs.Location,
	); err != nil {
		r.log.Error("failed to upsert subscriber", slog.Int64("subscriber_id", sub.ID), slog.Any("error", err))
		return fmt.Errorf("upsert subscriber %d: %w", sub.ID, err)
	}

	return nil
}

// UpdatePreferences stores a fully validated preference set for the subscriber.
func (r *subscriberRepository) UpdatePreferences(ctx context.Context, id int64, prefs domain.Preferences) error {
	const query = `
		UPDATE subscribers
		SET topic = $2,
		    language = $3,
		    location = $4,
		    auto_digest = $5,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, prefs.Topic, prefs.Language, prefs.Location, prefs.AutoDigest)
	if err != nil {
		r.log.Error("failed to update preferences", slog.Int64("subscriber_id", id), slog.Any("error", err))
		return fmt.Errorf("update preferences for %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update preferences for %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetAutoDigest flips the daily digest flag for the subscriber.
func (r *subscriberRepository) SetAutoDigest(ctx context.Context, id int64, enabled bool) error {
	const query = `
		UPDATE subscribers
		SET auto_digest = $2,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING id
	`

	var updatedID int64
	if err := r.db.QueryRowContext(ctx, query, id, enabled).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}

		r.log.Error("failed to set auto digest flag", slog.Int64("subscriber_id", id), slog.Any("error", err))
		return fmt.Errorf("set auto digest for %d: %w", id, err)
	}

	return nil
}

// ListAutoSubscribed returns subscribers with the daily digest enabled,
// most recently updated first.
func (r *subscriberRepository) ListAutoSubscribed(ctx context.Context) ([]*domain.Subscriber, error) {
	const query = `
		SELECT id, COALESCE(full_name, ''), COALESCE(username, ''),
		       COALESCE(topic, ''), language, location, auto_digest,
		       created_at, updated_at, last_active_at
		FROM subscribers
		WHERE auto_digest = TRUE
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Error("failed to list auto-subscribed", slog.Any("error", err))
		return nil, fmt.Errorf("list auto subscribed: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(
			&sub.ID,
			&sub.FullName,
			&sub.Username,
			&sub.Preferences.Topic,
			&sub.Preferences.Language,
			&sub.Preferences.Location,
			&sub.Preferences.AutoDigest,
			&sub.CreatedAt,
			&sub.UpdatedAt,
			&sub.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("scan auto subscribed row: %w", err)
		}

		subs = append(subs, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auto subscribed rows: %w", err)
	}

	return subs, nil
}

// TouchLastActive refreshes the subscriber's activity timestamp.
func (r *subscriberRepository) TouchLastActive(ctx context.Context, id int64) error {
	const query = `
		UPDATE subscribers
		SET last_active_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("touch last active for %d: %w", id, err)
	}

	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
