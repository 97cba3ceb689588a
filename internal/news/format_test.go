package news

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdownV2(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Regular headline without markup",
			expected: "Regular headline without markup",
		},
		{
			name:     "dots and dashes",
			input:    "U.S.-based firm",
			expected: "U\\.S\\.\\-based firm",
		},
		{
			name:     "full special set",
			input:    "_*[]()~`>#+-=|{}.!",
			expected: "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EscapeMarkdownV2(tc.input))
		})
	}
}

func clusterOf(n int, headline string) Cluster {
	articles := make([]Article, 0, n)
	for i := 0; i < n; i++ {
		title := headline
		if i > 0 {
			title = fmt.Sprintf("%s follow-up %d", headline, i)
		}
		articles = append(articles, Article{
			Title:  title,
			Link:   fmt.Sprintf("https://news.example/%s/%d", strings.ReplaceAll(headline, " ", "-"), i),
			Source: "Example Wire",
		})
	}

	return Cluster{Articles: articles}
}

func TestFormatClusters_NoMultiArticleClusters(t *testing.T) {
	messages := FormatClusters(nil, 10)
	assert.Equal(t, []string{"No clustered news found\\."}, messages)

	onlySingles := []Cluster{clusterOf(1, "lone story"), clusterOf(1, "another lone story")}
	messages = FormatClusters(onlySingles, 10)
	assert.Equal(t, []string{"No clustered news found\\."}, messages)
}

func TestFormatClusters_BasicRendering(t *testing.T) {
	clusters := []Cluster{
		clusterOf(3, "Major event unfolds"),
		clusterOf(1, "Unrelated single"),
	}

	messages := FormatClusters(clusters, 10)

	if !assert.Len(t, messages, 1) {
		return
	}

	msg := messages[0]
	assert.Contains(t, msg, "*Major event unfolds*")
	assert.Contains(t, msg, "[Major event unfolds]")
	assert.Contains(t, msg, "_via Example Wire_")
	assert.Contains(t, msg, "*Mixed Articles*")
	assert.Contains(t, msg, "[Unrelated single]")
}

func TestFormatClusters_TruncatesArticleList(t *testing.T) {
	clusters := []Cluster{clusterOf(8, "Big story")}

	messages := FormatClusters(clusters, 10)

	if !assert.Len(t, messages, 1) {
		return
	}

	msg := messages[0]
	assert.Contains(t, msg, "and 3 more related articles")
	assert.Equal(t, 5, strings.Count(msg, "_via Example Wire_"))
}

func TestFormatClusters_MixedArticlesCapped(t *testing.T) {
	clusters := []Cluster{clusterOf(2, "Grouped story")}
	for i := 0; i < 13; i++ {
		clusters = append(clusters, clusterOf(1, fmt.Sprintf("singleton %d", i)))
	}

	messages := FormatClusters(clusters, 10)

	joined := strings.Join(messages, "")
	assert.Contains(t, joined, "and 3 more articles")
	// 2 grouped + 10 singles shown
	assert.Equal(t, 12, strings.Count(joined, "_via Example Wire_"))
}

func TestFormatClusters_RespectsMaxClusters(t *testing.T) {
	var clusters []Cluster
	for i := 0; i < 12; i++ {
		clusters = append(clusters, clusterOf(2, fmt.Sprintf("repeated topic %d", i)))
	}

	messages := FormatClusters(clusters, 10)
	joined := strings.Join(messages, "")

	assert.Contains(t, joined, "repeated topic 9")
	assert.NotContains(t, joined, "repeated topic 10")
	assert.NotContains(t, joined, "repeated topic 11")
}

func TestFormatClusters_ChunksLongOutput(t *testing.T) {
	var clusters []Cluster
	for i := 0; i < 10; i++ {
		clusters = append(clusters, clusterOf(5, fmt.Sprintf("a fairly long recurring headline about ongoing developments number %d", i)))
	}

	messages := FormatClusters(clusters, 10)

	assert.Greater(t, len(messages), 1)
	for _, msg := range messages {
		assert.LessOrEqual(t, len(msg), messageChunkLimit+1024)
	}

	// every cluster still appears across the chunks
	joined := strings.Join(messages, "")
	for i := 0; i < 10; i++ {
		assert.Contains(t, joined, fmt.Sprintf("number %d*", i))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "abc", truncate("abcdef", 3))
}
