package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterRecent(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	window := 48 * time.Hour

	articles := []Article{
		{Title: "fresh", PublishedAt: now.Add(-time.Hour)},
		{Title: "edge inside", PublishedAt: now.Add(-window + time.Minute)},
		{Title: "exactly at cutoff", PublishedAt: now.Add(-window)},
		{Title: "too old", PublishedAt: now.Add(-72 * time.Hour)},
		{Title: "no date"},
	}

	recent := FilterRecent(articles, window, now)

	titles := make([]string, 0, len(recent))
	for _, article := range recent {
		titles = append(titles, article.Title)
	}

	assert.Equal(t, []string{"fresh", "edge inside"}, titles)
}

func TestFilterRecent_Empty(t *testing.T) {
	assert.Empty(t, FilterRecent(nil, 48*time.Hour, time.Now()))
}
