package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/newscluster/telegram-bot/internal/domain"
	"github.com/newscluster/telegram-bot/pkg/metrics"
)

const (
	noArticlesMessage = "❌ No news articles found for your query\\."
	analyzingMessage  = "✅ Fetched articles\\. Analyzing\\.\\.\\."
)

// Fetcher pulls articles for a topic in the given locale.
type Fetcher interface {
	FetchRecent(ctx context.Context, topic, location, language string) ([]Article, error)
}

// Sender delivers rendered digest messages to a chat.
type Sender interface {
	SendMarkdown(ctx context.Context, chatID int64, text string) error
}

// Service runs the full digest pipeline: fetch, filter, cluster, format, send.
type Service struct {
	fetcher       Fetcher
	sender        Sender
	recencyWindow time.Duration
	threshold     float64
	maxClusters   int
	log           *slog.Logger
	now           func() time.Time
}

// NewService wires the digest pipeline.
func NewService(
	fetcher Fetcher,
	sender Sender,
	recencyWindow time.Duration,
	threshold float64,
	maxClusters int,
	log *slog.Logger,
) *Service {
	return &Service{
		fetcher:       fetcher,
		sender:        sender,
		recencyWindow: recencyWindow,
		threshold:     threshold,
		maxClusters:   maxClusters,
		log:           log,
		now:           time.Now,
	}
}

// Deliver builds a digest for the preferences and sends it to the chat.
func (s *Service) Deliver(ctx context.Context, chatID int64, prefs domain.Preferences) error {
	log := s.log.With(
		slog.Int64("chat_id", chatID),
		slog.String("topic", prefs.Topic),
		slog.String("location", prefs.Location),
		slog.String("language", prefs.Language),
	)

	articles, err := s.fetcher.FetchRecent(ctx, prefs.Topic, prefs.Location, prefs.Language)
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}

	if len(articles) == 0 {
		return s.sender.SendMarkdown(ctx, chatID, noArticlesMessage)
	}

	if err := s.sender.SendMarkdown(ctx, chatID, analyzingMessage); err != nil {
		return fmt.Errorf("send progress message: %w", err)
	}

	recent := FilterRecent(articles, s.recencyWindow, s.now().UTC())
	clusters := ClusterArticles(recent, s.threshold)
	metrics.RecordClusters(len(clusters))

	log.Info("digest built",
		slog.Int("fetched", len(articles)),
		slog.Int("recent", len(recent)),
		slog.Int("clusters", len(clusters)),
	)

	messages := FormatClusters(clusters, s.maxClusters)

	header := fmt.Sprintf("🗞 *News Clusters for %s*", EscapeMarkdownV2(s.now().Format("02-01-2006")))
	if err := s.sender.SendMarkdown(ctx, chatID, header); err != nil {
		return fmt.Errorf("send digest header: %w", err)
	}

	for _, message := range messages {
		if err := s.sender.SendMarkdown(ctx, chatID, message); err != nil {
			return fmt.Errorf("send digest message: %w", err)
		}
	}

	return nil
}
