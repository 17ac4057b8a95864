package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"cryptosense/internal/domain"

	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const googleNewsBaseURL = "https://news.google.com/rss/search"

// GoogleNewsProvider searches the Google News RSS endpoint. It needs no
// credentials and backs news search when no NewsAPI key is configured.
type GoogleNewsProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

func NewGoogleNewsProvider(tracer trace.Tracer) *GoogleNewsProvider {
	return &GoogleNewsProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: googleNewsBaseURL,
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Search returns up to MaxNewsItems feed entries about topic, most recent
// first.
func (p *GoogleNewsProvider) Search(ctx context.Context, topic string) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "googlenews.search")
	defer span.End()

	topic = strings.TrimSpace(topic)
	span.SetAttributes(attribute.String("news.topic", topic))
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("q", topic)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")

	fp := gofeed.NewParser()
	fp.Client = p.client
	feed, err := fp.ParseURLWithContext(p.baseURL+"?"+q.Encode(), ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("search news for %s: %w", topic, err)
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := sanitizeText(it.Title, 300)
		if title == "" {
			continue
		}
		var published time.Time
		if it.PublishedParsed != nil {
			published = it.PublishedParsed.UTC()
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Summary:     sanitizeText(htmlStrip(it.Description), 1000),
			URL:         sanitizeText(it.Link, 500),
			PublishedAt: published,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > MaxNewsItems {
		items = items[:MaxNewsItems]
	}
	return items, nil
}
