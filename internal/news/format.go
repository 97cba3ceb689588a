package news

import (
	"fmt"
	"strings"
)

const (
	// Telegram caps messages at 4096 characters; chunk below that to leave
	// room for closing markup.
	messageChunkLimit = 3900

	maxHeadlineLen    = 120
	maxTitleLen       = 100
	maxSourceLen      = 30
	articlesPerGroup  = 5
	maxMixedArticles  = 10
	defaultMaxGroups  = 10
	mixedGroupTitle   = "Mixed Articles"
	noClustersMessage = "No clustered news found\\."
)

var markdownV2Replacer = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMarkdownV2 escapes the characters Telegram's MarkdownV2 parser
// treats as markup.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}

// FormatClusters renders clusters into MarkdownV2 messages that fit
// Telegram's length limit. Multi-article clusters come first (up to
// maxClusters of them, five articles shown each); singleton articles are
// folded into one trailing "Mixed Articles" section.
func FormatClusters(clusters []Cluster, maxClusters int) []string {
	if maxClusters <= 0 {
		maxClusters = defaultMaxGroups
	}

	var multi []Cluster
	var singles []Article
	for _, cluster := range clusters {
		if cluster.Size() > 1 {
			multi = append(multi, cluster)
		} else if cluster.Size() == 1 {
			singles = append(singles, cluster.Articles[0])
		}
	}

	if len(multi) == 0 {
		return []string{noClustersMessage}
	}

	if len(multi) > maxClusters {
		multi = multi[:maxClusters]
	}

	var messages []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			messages = append(messages, current.String())
			current.Reset()
		}
	}

	appendSection := func(section string) {
		if current.Len()+len(section) > messageChunkLimit {
			flush()
		}
		current.WriteString(section)
	}

	for _, cluster := range multi {
		appendSection(formatClusterSection(cluster))
	}

	if len(singles) > 0 {
		appendSection(formatMixedSection(singles))
	}

	flush()

	if len(messages) == 0 {
		return []string{noClustersMessage}
	}

	return messages
}

func formatClusterSection(cluster Cluster) string {
	var section strings.Builder

	headline := truncate(cluster.Headline(), maxHeadlineLen)
	section.WriteString("*" + EscapeMarkdownV2(headline) + "*\n\n")

	shown := cluster.Articles
	if len(shown) > articlesPerGroup {
		shown = shown[:articlesPerGroup]
	}
	for _, article := range shown {
		writeArticleLine(&section, article)
	}

	if remaining := cluster.Size() - articlesPerGroup; remaining > 0 {
		section.WriteString(fmt.Sprintf("  _\\.\\.\\.and %d more related articles_\n\n", remaining))
	}

	writeDivider(&section)

	return section.String()
}

func formatMixedSection(singles []Article) string {
	var section strings.Builder

	section.WriteString("*" + EscapeMarkdownV2(mixedGroupTitle) + "*\n\n")

	shown := singles
	if len(shown) > maxMixedArticles {
		shown = shown[:maxMixedArticles]
	}
	for _, article := range shown {
		writeArticleLine(&section, article)
	}

	if remaining := len(singles) - maxMixedArticles; remaining > 0 {
		section.WriteString(fmt.Sprintf("  _\\.\\.\\.and %d more articles_\n\n", remaining))
	}

	writeDivider(&section)

	return section.String()
}

// writeArticleLine emits a bulleted MarkdownV2 link with its source.
// Link URLs stay unescaped; MarkdownV2 takes them verbatim inside parentheses.
func writeArticleLine(b *strings.Builder, article Article) {
	title := EscapeMarkdownV2(truncate(article.Title, maxTitleLen))
	source := EscapeMarkdownV2(truncate(article.Source, maxSourceLen))
	link := strings.TrimSpace(article.Link)

	fmt.Fprintf(b, "  • [%s](%s)\n", title, link)
	fmt.Fprintf(b, "    _via %s_\n\n", source)
}

func writeDivider(b *strings.Builder) {
	b.WriteString(strings.Repeat("─", 35) + "\n\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
