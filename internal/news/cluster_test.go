package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		expected []string
	}{
		{
			name:     "lowercases and splits on punctuation",
			title:    "Apple Unveils iPhone-16, Pro!",
			expected: []string{"apple", "unveils", "iphone", "16", "pro"},
		},
		{
			name:     "collapses whitespace",
			title:    "  breaking   news \t today ",
			expected: []string{"breaking", "news", "today"},
		},
		{
			name:     "empty title",
			title:    "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tokenize(tc.title))
		})
	}
}

func TestNgrams(t *testing.T) {
	grams := ngrams([]string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "b", "c", "a b", "b c", "a b c"}, grams)

	assert.Nil(t, ngrams(nil))
}

func TestClusterArticles_GroupsSimilarTitles(t *testing.T) {
	articles := []Article{
		{Title: "Apple unveils new iPhone at September event", Link: "https://a.example/1"},
		{Title: "Stock markets tumble amid inflation fears", Link: "https://a.example/2"},
		{Title: "Apple unveils new iPhone at September event today", Link: "https://a.example/3"},
	}

	clusters := ClusterArticles(articles, 0.5)

	if !assert.Len(t, clusters, 2) {
		return
	}

	// largest cluster first
	assert.Equal(t, 2, clusters[0].Size())
	assert.Equal(t, "Apple unveils new iPhone at September event", clusters[0].Headline())

	assert.Equal(t, 1, clusters[1].Size())
	assert.Equal(t, "Stock markets tumble amid inflation fears", clusters[1].Headline())
}

func TestClusterArticles_DistinctTitlesStaySeparate(t *testing.T) {
	articles := []Article{
		{Title: "Volcano erupts in Iceland", Link: "https://a.example/1"},
		{Title: "Championship final ends in penalty shootout", Link: "https://a.example/2"},
		{Title: "Central bank holds interest rates steady", Link: "https://a.example/3"},
	}

	clusters := ClusterArticles(articles, 0.5)
	assert.Len(t, clusters, 3)
	for _, cluster := range clusters {
		assert.Equal(t, 1, cluster.Size())
	}
}

func TestClusterArticles_EmptyInput(t *testing.T) {
	assert.Nil(t, ClusterArticles(nil, 0.5))
	assert.Nil(t, ClusterArticles([]Article{}, 0.5))
}

func TestClusterArticles_SingleArticle(t *testing.T) {
	clusters := ClusterArticles([]Article{{Title: "Solo story", Link: "https://a.example/1"}}, 0.5)

	if assert.Len(t, clusters, 1) {
		assert.Equal(t, 1, clusters[0].Size())
		assert.Equal(t, "Solo story", clusters[0].Headline())
	}
}

func TestClusterArticles_IdenticalTitlesMerge(t *testing.T) {
	articles := []Article{
		{Title: "Global summit opens in Geneva", Link: "https://a.example/1"},
		{Title: "Global summit opens in Geneva", Link: "https://a.example/2"},
		{Title: "Heavy rain floods coastal towns", Link: "https://a.example/3"},
	}

	clusters := ClusterArticles(articles, 0.5)

	if assert.Len(t, clusters, 2) {
		assert.Equal(t, 2, clusters[0].Size())
		assert.Equal(t, 1, clusters[1].Size())
	}
}

func TestClusterArticles_PreservesFetchOrderInsideCluster(t *testing.T) {
	articles := []Article{
		{Title: "Mars rover discovers ancient riverbed", Link: "https://a.example/first"},
		{Title: "Mars rover discovers ancient riverbed on red planet", Link: "https://a.example/second"},
	}

	clusters := ClusterArticles(articles, 0.5)

	if assert.Len(t, clusters, 1) && assert.Equal(t, 2, clusters[0].Size()) {
		assert.Equal(t, "https://a.example/first", clusters[0].Articles[0].Link)
		assert.Equal(t, "https://a.example/second", clusters[0].Articles[1].Link)
	}
}
