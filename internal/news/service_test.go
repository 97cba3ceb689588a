package news

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newscluster/telegram-bot/internal/domain"
)

type stubFetcher struct {
	articles []Article
	err      error
}

func (f *stubFetcher) FetchRecent(_ context.Context, _, _, _ string) ([]Article, error) {
	return f.articles, f.err
}

type recordingSender struct {
	messages []string
	failOn   int
}

func (s *recordingSender) SendMarkdown(_ context.Context, _ int64, text string) error {
	if s.failOn > 0 && len(s.messages)+1 == s.failOn {
		return errors.New("telegram unavailable")
	}

	s.messages = append(s.messages, text)
	return nil
}

func newsTestService(fetcher Fetcher, sender Sender) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(fetcher, sender, 48*time.Hour, 0.5, 10, log)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 20, 7, 0, 0, 0, time.UTC)
	}

	return svc
}

func TestService_Deliver(t *testing.T) {
	now := time.Date(2025, 8, 20, 7, 0, 0, 0, time.UTC)

	fetcher := &stubFetcher{articles: []Article{
		{Title: "Rocket launch succeeds after delays", Link: "https://n.example/1", Source: "Wire", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "Rocket launch succeeds after delays overnight", Link: "https://n.example/2", Source: "Post", PublishedAt: now.Add(-3 * time.Hour)},
		{Title: "Unrelated election coverage continues", Link: "https://n.example/3", Source: "Herald", PublishedAt: now.Add(-4 * time.Hour)},
	}}
	sender := &recordingSender{}

	svc := newsTestService(fetcher, sender)

	err := svc.Deliver(context.Background(), 42, domain.Preferences{
		Topic:    "rocket launch",
		Language: "en",
		Location: "US",
	})
	assert.NoError(t, err)

	if !assert.GreaterOrEqual(t, len(sender.messages), 3) {
		return
	}

	assert.Equal(t, "✅ Fetched articles\\. Analyzing\\.\\.\\.", sender.messages[0])
	assert.Contains(t, sender.messages[1], "News Clusters for 20\\-08\\-2025")
	assert.Contains(t, sender.messages[2], "*Rocket launch succeeds after delays*")
	assert.Contains(t, sender.messages[2], "*Mixed Articles*")
}

func TestService_DeliverNoArticles(t *testing.T) {
	sender := &recordingSender{}
	svc := newsTestService(&stubFetcher{}, sender)

	err := svc.Deliver(context.Background(), 42, domain.Preferences{Topic: "nothing", Language: "en", Location: "US"})
	assert.NoError(t, err)

	if assert.Len(t, sender.messages, 1) {
		assert.Equal(t, "❌ No news articles found for your query\\.", sender.messages[0])
	}
}

func TestService_DeliverFetchError(t *testing.T) {
	sender := &recordingSender{}
	svc := newsTestService(&stubFetcher{err: errors.New("upstream down")}, sender)

	err := svc.Deliver(context.Background(), 42, domain.Preferences{Topic: "anything", Language: "en", Location: "US"})
	assert.Error(t, err)
	assert.Empty(t, sender.messages)
}

func TestService_DeliverSendError(t *testing.T) {
	now := time.Date(2025, 8, 20, 7, 0, 0, 0, time.UTC)

	fetcher := &stubFetcher{articles: []Article{
		{Title: "Some story", Link: "https://n.example/1", Source: "Wire", PublishedAt: now.Add(-time.Hour)},
	}}
	sender := &recordingSender{failOn: 2}

	svc := newsTestService(fetcher, sender)

	err := svc.Deliver(context.Background(), 42, domain.Preferences{Topic: "story", Language: "en", Location: "US"})
	assert.Error(t, err)
}
