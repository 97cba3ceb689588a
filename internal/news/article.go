// Package news fetches articles from RSS feeds, groups them into story
// clusters by headline similarity, and renders Telegram-ready digests.
package news

import "time"

// Article is a single entry pulled from an RSS feed.
type Article struct {
	Title       string
	Link        string
	Source      string
	PublishedAt time.Time
}

// Cluster is a group of articles covering the same story.
// Articles keep the order they were fetched in, so the first
// article's title serves as the cluster headline.
type Cluster struct {
	Articles []Article
}

// Headline returns the representative title for the cluster.
func (c Cluster) Headline() string {
	if len(c.Articles) == 0 {
		return ""
	}

	return c.Articles[0].Title
}

// Size returns the number of articles in the cluster.
func (c Cluster) Size() int {
	return len(c.Articles)
}
