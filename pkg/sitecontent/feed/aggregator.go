// Package feed merges the articles, videos and newsletters collections
// into one ranked, filterable resource feed.
package feed

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

// ItemType tags the source shape of an aggregated item.
type ItemType string

const (
	TypeArticle    ItemType = "article"
	TypeVideo      ItemType = "video"
	TypeNewsletter ItemType = "newsletter"
)

// CategoryAll selects every source collection.
const CategoryAll = "all"

// Item is the normalized view over the three source shapes. Title and
// Excerpt are always non-empty.
type Item struct {
	ID        string    `json:"id"`
	Type      ItemType  `json:"type"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	CreatedAt time.Time `json:"created_at"`

	// Shape-specific fields.
	YouTubeURL string `json:"youtube_url,omitempty"`
	Duration   string `json:"duration,omitempty"`
	Issue      string `json:"issue,omitempty"`
}

// Result is an aggregation outcome. DegradedSources names the source
// collections whose load failed and was substituted with an empty
// sequence.
type Result struct {
	Items           []Item   `json:"items"`
	DegradedSources []string `json:"degraded_sources,omitempty"`
}

// Aggregator fans out over the three content collections and joins their
// results. It is a pure function of the store contents: no caching, no
// randomness.
type Aggregator struct {
	articles    *sitecontent.Collection[sitecontent.Article]
	videos      *sitecontent.Collection[sitecontent.Video]
	newsletters *sitecontent.Collection[sitecontent.Newsletter]
	logger      *slog.Logger
}

// NewAggregator creates an aggregator over the three source collections.
func NewAggregator(
	articles *sitecontent.Collection[sitecontent.Article],
	videos *sitecontent.Collection[sitecontent.Video],
	newsletters *sitecontent.Collection[sitecontent.Newsletter],
	logger *slog.Logger,
) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		articles:    articles,
		videos:      videos,
		newsletters: newsletters,
		logger:      logger,
	}
}

// Aggregate loads the selected collections concurrently, waits for all of
// them to settle, and returns the flattened, filtered, date-ranked feed.
// A failed source degrades to an empty sequence instead of failing the
// whole call.
func (g *Aggregator) Aggregate(ctx context.Context, category, query string) Result {
	type sourceResult struct {
		name     string
		items    []Item
		degraded bool
	}

	selected := func(t ItemType) bool {
		return category == CategoryAll || category == string(t)
	}

	// Fan-out/join: one goroutine per selected source, all awaited.
	results := make([]sourceResult, 3)
	var wg sync.WaitGroup

	if selected(TypeArticle) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list := g.articles.List(ctx)
			items := make([]Item, 0, len(list.Items))
			for _, rec := range list.Items {
				if item, ok := articleItem(rec); ok {
					items = append(items, item)
				}
			}
			results[0] = sourceResult{name: sitecontent.CollectionArticles, items: items, degraded: list.Degraded}
		}()
	}
	if selected(TypeVideo) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list := g.videos.List(ctx)
			items := make([]Item, 0, len(list.Items))
			for _, rec := range list.Items {
				if item, ok := videoItem(rec); ok {
					items = append(items, item)
				}
			}
			results[1] = sourceResult{name: sitecontent.CollectionVideos, items: items, degraded: list.Degraded}
		}()
	}
	if selected(TypeNewsletter) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list := g.newsletters.List(ctx)
			items := make([]Item, 0, len(list.Items))
			for _, rec := range list.Items {
				if item, ok := newsletterItem(rec); ok {
					items = append(items, item)
				}
			}
			results[2] = sourceResult{name: sitecontent.CollectionNewsletters, items: items, degraded: list.Degraded}
		}()
	}
	wg.Wait()

	// Flatten in fixed source order so equal-date ties rank the same way
	// on every call.
	out := Result{Items: []Item{}}
	for _, res := range results {
		if res.degraded {
			out.DegradedSources = append(out.DegradedSources, res.name)
			g.logger.Warn("feed source degraded to empty", "collection", res.name)
		}
		out.Items = append(out.Items, res.items...)
	}

	out.Items = Filter(out.Items, query)

	sort.SliceStable(out.Items, func(i, j int) bool {
		return out.Items[i].CreatedAt.After(out.Items[j].CreatedAt)
	})

	return out
}

// Filter applies a case-insensitive substring match against title or
// excerpt. An empty or whitespace-only query passes everything through.
func Filter(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matched := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), query) ||
			strings.Contains(strings.ToLower(item.Excerpt), query) {
			matched = append(matched, item)
		}
	}
	return matched
}

func articleItem(rec sitecontent.Article) (Item, bool) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return Item{}, false
	}
	return Item{
		ID:        rec.ID,
		Type:      TypeArticle,
		Title:     title,
		Excerpt:   excerptOf(rec.Excerpt, rec.Body, title),
		CreatedAt: rec.CreatedAt,
	}, true
}

func videoItem(rec sitecontent.Video) (Item, bool) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return Item{}, false
	}
	return Item{
		ID:         rec.ID,
		Type:       TypeVideo,
		Title:      title,
		Excerpt:    excerptOf(rec.Excerpt, "", title),
		CreatedAt:  rec.CreatedAt,
		YouTubeURL: rec.YouTubeURL,
		Duration:   rec.Duration,
	}, true
}

func newsletterItem(rec sitecontent.Newsletter) (Item, bool) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return Item{}, false
	}
	return Item{
		ID:        rec.ID,
		Type:      TypeNewsletter,
		Title:     title,
		Excerpt:   excerptOf(rec.Excerpt, "", title),
		CreatedAt: rec.CreatedAt,
		Issue:     rec.Issue,
	}, true
}

const maxExcerptLen = 160

// excerptOf picks the first non-empty candidate, truncated to a display
// length. The title fallback keeps the non-empty-excerpt invariant.
func excerptOf(candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		runes := []rune(c)
		if len(runes) > maxExcerptLen {
			return string(runes[:maxExcerptLen])
		}
		return c
	}
	return ""
}
