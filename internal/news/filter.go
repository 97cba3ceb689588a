package news

import "time"

// FilterRecent keeps articles published within the window before now.
// Articles with no parseable publication time are dropped.
func FilterRecent(articles []Article, window time.Duration, now time.Time) []Article {
	cutoff := now.Add(-window)

	recent := make([]Article, 0, len(articles))
	for _, article := range articles {
		if article.PublishedAt.IsZero() {
			continue
		}
		if article.PublishedAt.After(cutoff) {
			recent = append(recent, article)
		}
	}

	return recent
}
