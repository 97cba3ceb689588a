// Package handlers implements asynq task handlers for background jobs.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/newscluster/telegram-bot/internal/i18n"
	"github.com/newscluster/telegram-bot/internal/jobs"
	"github.com/newscluster/telegram-bot/internal/news"
	"github.com/newscluster/telegram-bot/internal/repository"
	"github.com/newscluster/telegram-bot/internal/subscriber"
	"github.com/newscluster/telegram-bot/pkg/metrics"
)

// DigestBroadcastHandler fans the daily digest out as one delivery task per
// auto-subscribed user, so a failing user never blocks the rest.
type DigestBroadcastHandler struct {
	subscribers *subscriber.Service
	queue       jobs.Manager
	log         *slog.Logger
}

// NewDigestBroadcastHandler creates the fan-out handler.
func NewDigestBroadcastHandler(subscribers *subscriber.Service, queue jobs.Manager, log *slog.Logger) *DigestBroadcastHandler {
	if log == nil {
		log = slog.Default()
	}

	return &DigestBroadcastHandler{
		subscribers: subscribers,
		queue:       queue,
		log:         log,
	}
}

// ProcessTask enqueues one delivery task per digest recipient, most recently
// updated subscribers first.
func (h *DigestBroadcastHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DigestBroadcastPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode broadcast payload: %w", err)
	}

	subs, err := h.subscribers.ListAutoSubscribed(ctx)
	if err != nil {
		return fmt.Errorf("list digest recipients: %w", err)
	}

	enqueued := 0
	for _, sub := range subs {
		task, err := jobs.NewDigestDeliverTask(sub.ID)
		if err != nil {
			h.log.Error("failed to build delivery task", slog.Int64("subscriber_id", sub.ID), slog.Any("error", err))
			continue
		}

		if _, err := h.queue.Enqueue(ctx, task); err != nil {
			h.log.Error("failed to enqueue delivery task", slog.Int64("subscriber_id", sub.ID), slog.Any("error", err))
			continue
		}
		enqueued++
	}

	h.log.Info("digest broadcast dispatched",
		slog.String("trigger", payload.Trigger),
		slog.Int("recipients", len(subs)),
		slog.Int("enqueued", enqueued),
	)

	return nil
}

// DigestDeliverHandler builds and sends the digest for a single subscriber.
type DigestDeliverHandler struct {
	subscribers *subscriber.Service
	news        *news.Service
	sender      news.Sender
	i18n        *i18n.Manager
	log         *slog.Logger
}

// NewDigestDeliverHandler creates the per-subscriber delivery handler.
func NewDigestDeliverHandler(
	subscribers *subscriber.Service,
	newsService *news.Service,
	sender news.Sender,
	i18nManager *i18n.Manager,
	log *slog.Logger,
) *DigestDeliverHandler {
	if log == nil {
		log = slog.Default()
	}

	return &DigestDeliverHandler{
		subscribers: subscribers,
		news:        newsService,
		sender:      sender,
		i18n:        i18nManager,
		log:         log,
	}
}

// ProcessTask sends the morning greeting followed by the digest. Subscribers
// who opted out since the broadcast was scheduled are skipped.
func (h *DigestDeliverHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DigestDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode delivery payload: %w", err)
	}

	sub, err := h.subscribers.Get(ctx, payload.SubscriberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.log.Warn("digest recipient no longer exists", slog.Int64("subscriber_id", payload.SubscriberID))
			metrics.RecordDigestDelivery("scheduled", "skipped")
			return nil
		}
		metrics.RecordDigestDelivery("scheduled", "error")
		return fmt.Errorf("load subscriber %d: %w", payload.SubscriberID, err)
	}

	if !sub.Preferences.AutoDigest || sub.Preferences.Topic == "" {
		metrics.RecordDigestDelivery("scheduled", "skipped")
		return nil
	}

	translator := h.i18n.Translator(sub.Preferences.Language)
	greeting := translator.Tf("digest.good_morning", news.EscapeMarkdownV2(sub.Preferences.Topic))
	if err := h.sender.SendMarkdown(ctx, sub.ID, greeting); err != nil {
		metrics.RecordDigestDelivery("scheduled", "error")
		return fmt.Errorf("send greeting to %d: %w", sub.ID, err)
	}

	if err := h.news.Deliver(ctx, sub.ID, sub.Preferences); err != nil {
		metrics.RecordDigestDelivery("scheduled", "error")
		return fmt.Errorf("deliver digest to %d: %w", sub.ID, err)
	}

	metrics.RecordDigestDelivery("scheduled", "ok")
	return nil
}
