package news

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	ngramMin = 1
	ngramMax = 3
	// Terms appearing in more than this share of titles are discarded.
	maxDocFreqRatio = 0.8
)

// ClusterArticles groups articles whose titles read as the same story.
// Titles are vectorized with word 1..3-gram TF-IDF and merged by
// average-linkage agglomerative clustering: two clusters join while the mean
// cosine similarity of their members stays at or above threshold.
// Clusters come back ordered by size, largest first; ties keep fetch order.
func ClusterArticles(articles []Article, threshold float64) []Cluster {
	if len(articles) == 0 {
		return nil
	}

	vectors := vectorize(articles)
	labels := agglomerate(similarityMatrix(vectors), threshold)

	byLabel := make(map[int][]Article)
	order := make([]int, 0)
	for idx, label := range labels {
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], articles[idx])
	}

	clusters := make([]Cluster, 0, len(byLabel))
	for _, label := range order {
		clusters = append(clusters, Cluster{Articles: byLabel[label]})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size() > clusters[j].Size()
	})

	return clusters
}

// vectorize builds l2-normalized TF-IDF vectors over word n-grams.
func vectorize(articles []Article) []map[string]float64 {
	docs := make([][]string, len(articles))
	docFreq := make(map[string]int)

	for i, article := range articles {
		grams := ngrams(tokenize(article.Title))
		docs[i] = grams

		seen := make(map[string]struct{}, len(grams))
		for _, gram := range grams {
			if _, ok := seen[gram]; ok {
				continue
			}
			seen[gram] = struct{}{}
			docFreq[gram]++
		}
	}

	n := len(articles)
	maxDocFreq := int(maxDocFreqRatio * float64(n))
	if maxDocFreq < 1 {
		maxDocFreq = 1
	}

	vectors := make([]map[string]float64, n)
	for i, grams := range docs {
		vector := make(map[string]float64)
		for _, gram := range grams {
			if n > 1 && docFreq[gram] > maxDocFreq {
				continue
			}
			vector[gram]++
		}

		var norm float64
		for gram, tf := range vector {
			idf := math.Log(float64(1+n)/float64(1+docFreq[gram])) + 1
			weighted := tf * idf
			vector[gram] = weighted
			norm += weighted * weighted
		}

		if norm > 0 {
			norm = math.Sqrt(norm)
			for gram := range vector {
				vector[gram] /= norm
			}
		}

		vectors[i] = vector
	}

	return vectors
}

// tokenize lowercases the title and splits it into word tokens,
// a word being a run of letters, digits, or underscores.
func tokenize(title string) []string {
	title = strings.ToLower(strings.Join(strings.Fields(title), " "))

	var tokens []string
	var current strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func ngrams(tokens []string) []string {
	var grams []string
	for size := ngramMin; size <= ngramMax; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+size], " "))
		}
	}

	return grams
}

func similarityMatrix(vectors []map[string]float64) [][]float64 {
	n := len(vectors)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := dot(vectors[i], vectors[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}

	return matrix
}

// dot of two l2-normalized sparse vectors equals their cosine similarity.
func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	var sum float64
	for gram, weight := range a {
		sum += weight * b[gram]
	}

	return sum
}

// agglomerate performs average-linkage clustering over the similarity
// matrix. The result maps each article index to a cluster label; labels are
// ordered by first article appearance.
func agglomerate(sims [][]float64, threshold float64) []int {
	n := len(sims)

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > 1 {
		bestI, bestJ := -1, -1
		bestSim := math.Inf(-1)

		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				sim := averageLinkage(sims, clusters[i], clusters[j])
				if sim > bestSim {
					bestSim = sim
					bestI, bestJ = i, j
				}
			}
		}

		if bestSim < threshold {
			break
		}

		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}

	labels := make([]int, n)
	type firstSeen struct {
		label int
		first int
	}

	ordered := make([]firstSeen, 0, len(clusters))
	for _, members := range clusters {
		first := members[0]
		for _, m := range members[1:] {
			if m < first {
				first = m
			}
		}
		ordered = append(ordered, firstSeen{first: first})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].first < ordered[j].first })

	rank := make(map[int]int, len(ordered))
	for label, fs := range ordered {
		rank[fs.first] = label
	}

	for _, members := range clusters {
		first := members[0]
		for _, m := range members[1:] {
			if m < first {
				first = m
			}
		}
		for _, m := range members {
			labels[m] = rank[first]
		}
	}

	return labels
}

func averageLinkage(sims [][]float64, a, b []int) float64 {
	var total float64
	for _, i := range a {
		for _, j := range b {
			total += sims[i][j]
		}
	}

	return total / float64(len(a)*len(b))
}
