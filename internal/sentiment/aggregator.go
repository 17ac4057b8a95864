// Package sentiment turns recent news and an asset's reference description
// into a single signed sentiment score.
//
// Every collaborator failure degrades to a score of 0 plus a notification;
// none of the scoring methods return an error.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptosense/internal/cache"
	"cryptosense/internal/classifier"
	"cryptosense/internal/domain"
	"cryptosense/internal/metrics"
	"cryptosense/internal/notify"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	NewsWeight        = 0.6
	DescriptionWeight = 0.4

	// MaxNewsItems is how many of the most recent articles are scored.
	MaxNewsItems = 20

	DefaultCacheTTL = 10 * time.Minute
)

// NewsSearcher finds recent articles about a topic, most recent first.
type NewsSearcher interface {
	Search(ctx context.Context, topic string) ([]domain.NewsItem, error)
}

// DescriptionSource returns the reference description for an asset id.
type DescriptionSource interface {
	GetDescription(ctx context.Context, assetID string) (string, error)
}

type Aggregator struct {
	news         NewsSearcher
	descriptions DescriptionSource
	classifier   classifier.Classifier
	store        cache.Store
	ttl          time.Duration
	maxLength    int
	notifier     notify.Notifier
	tracer       trace.Tracer
}

type Option func(*Aggregator)

// WithCache memoizes successful sub-scores in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(a *Aggregator) {
		a.store = store
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *Aggregator) { a.notifier = n }
}

// WithMaxLength sets the classifier input limit in tokens.
func WithMaxLength(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxLength = n
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(a *Aggregator) { a.tracer = t }
}

// New builds an aggregator. A nil news or description source is treated
// as missing credentials: that source always scores 0 with an error
// notification.
func New(news NewsSearcher, descriptions DescriptionSource, clf classifier.Classifier, opts ...Option) *Aggregator {
	a := &Aggregator{
		news:         news,
		descriptions: descriptions,
		classifier:   clf,
		ttl:          DefaultCacheTTL,
		maxLength:    classifier.DefaultMaxLength,
		tracer:       trace.NewNoopTracerProvider().Tracer("sentiment"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.notifier = notify.OrDefault(a.notifier)
	return a
}

// ScoreFromNews averages the signed classification of up to MaxNewsItems
// recent articles about topic. Articles whose classification fails are
// skipped.
func (a *Aggregator) ScoreFromNews(ctx context.Context, topic string) float64 {
	ctx, span := a.tracer.Start(ctx, "sentiment.news")
	defer span.End()
	span.SetAttributes(attribute.String("news.topic", topic))

	key := "sentiment:news:" + topic
	if score, ok := a.cached(ctx, key); ok {
		metrics.SentimentSourceTotal.WithLabelValues("news", "cached").Inc()
		return score
	}

	if a.news == nil {
		a.notifier.Error(ctx, "News sentiment analysis failed: news source is not configured (missing NEWSAPI_KEY).")
		metrics.SentimentSourceTotal.WithLabelValues("news", "error").Inc()
		return 0
	}
	if a.classifier == nil {
		a.notifier.Error(ctx, "News sentiment analysis failed: no text classifier configured.")
		metrics.SentimentSourceTotal.WithLabelValues("news", "error").Inc()
		return 0
	}

	items, err := a.news.Search(ctx, topic)
	if err != nil {
		span.RecordError(err)
		a.notifier.Warning(ctx, fmt.Sprintf("News request failed for %s: %v", topic, err))
		metrics.SentimentSourceTotal.WithLabelValues("news", "error").Inc()
		return 0
	}
	if len(items) == 0 {
		a.notifier.Info(ctx, fmt.Sprintf("No recent news found for %s.", topic))
		metrics.SentimentSourceTotal.WithLabelValues("news", "empty").Inc()
		a.remember(ctx, key, 0)
		return 0
	}
	if len(items) > MaxNewsItems {
		items = items[:MaxNewsItems]
	}

	var (
		sum      float64
		scored   int
		failures int
	)
	for i, item := range items {
		text := strings.TrimSpace(item.Title + " " + item.Summary)
		if text == "" {
			continue
		}
		sample, err := a.classifier.Classify(ctx, text, a.maxLength)
		if err != nil {
			failures++
			metrics.ClassifierFailures.Inc()
			a.notifier.Warning(ctx, fmt.Sprintf("Skipping article %d for %s: classification failed: %v", i+1, topic, err))
			continue
		}
		log.Debug("article sentiment", "topic", topic, "index", i+1, "label", sample.Label, "confidence", sample.Confidence)
		sum += sample.Signed()
		scored++
	}

	span.SetAttributes(attribute.Int("news.items", len(items)), attribute.Int("news.scored", scored))
	if scored == 0 {
		if failures > 0 {
			metrics.SentimentSourceTotal.WithLabelValues("news", "error").Inc()
			return 0
		}
		a.notifier.Info(ctx, fmt.Sprintf("No recent news found for %s.", topic))
		metrics.SentimentSourceTotal.WithLabelValues("news", "empty").Inc()
		a.remember(ctx, key, 0)
		return 0
	}

	score := sum / float64(scored)
	metrics.SentimentSourceTotal.WithLabelValues("news", "ok").Inc()
	if failures == 0 {
		a.remember(ctx, key, score)
	}
	return score
}

// ScoreFromDescription classifies the asset's reference description once.
func (a *Aggregator) ScoreFromDescription(ctx context.Context, assetID string) float64 {
	ctx, span := a.tracer.Start(ctx, "sentiment.description")
	defer span.End()
	span.SetAttributes(attribute.String("asset.id", assetID))

	key := "sentiment:description:" + assetID
	if score, ok := a.cached(ctx, key); ok {
		metrics.SentimentSourceTotal.WithLabelValues("description", "cached").Inc()
		return score
	}

	if a.descriptions == nil {
		a.notifier.Error(ctx, "Description sentiment analysis failed: reference data source is not configured.")
		metrics.SentimentSourceTotal.WithLabelValues("description", "error").Inc()
		return 0
	}
	if a.classifier == nil {
		a.notifier.Error(ctx, "Description sentiment analysis failed: no text classifier configured.")
		metrics.SentimentSourceTotal.WithLabelValues("description", "error").Inc()
		return 0
	}

	desc, err := a.descriptions.GetDescription(ctx, assetID)
	if err != nil {
		span.RecordError(err)
		a.notifier.Warning(ctx, fmt.Sprintf("Description request failed for %s: %v", assetID, err))
		metrics.SentimentSourceTotal.WithLabelValues("description", "error").Inc()
		return 0
	}
	if strings.TrimSpace(desc) == "" {
		a.notifier.Info(ctx, fmt.Sprintf("No description available for %s.", assetID))
		metrics.SentimentSourceTotal.WithLabelValues("description", "empty").Inc()
		a.remember(ctx, key, 0)
		return 0
	}

	sample, err := a.classifier.Classify(ctx, desc, a.maxLength)
	if err != nil {
		if errors.Is(err, classifier.ErrEmptyText) {
			a.notifier.Info(ctx, fmt.Sprintf("No description available for %s.", assetID))
			return 0
		}
		metrics.ClassifierFailures.Inc()
		a.notifier.Error(ctx, fmt.Sprintf("Description sentiment analysis failed for %s: %v", assetID, err))
		metrics.SentimentSourceTotal.WithLabelValues("description", "error").Inc()
		return 0
	}

	score := sample.Signed()
	metrics.SentimentSourceTotal.WithLabelValues("description", "ok").Inc()
	a.remember(ctx, key, score)
	return score
}

// CombinedScore resolves assetName through the catalog (unknown names use
// Bitcoin) and returns 0.6*news + 0.4*description.
func (a *Aggregator) CombinedScore(ctx context.Context, assetName string) float64 {
	return a.Breakdown(ctx, assetName).Combined
}

// Breakdown is CombinedScore with the per-source scores kept.
func (a *Aggregator) Breakdown(ctx context.Context, assetName string) domain.Sentiment {
	ctx, span := a.tracer.Start(ctx, "sentiment.combined")
	defer span.End()

	asset, ok := domain.LookupAsset(assetName)
	if !ok {
		asset = domain.FallbackAsset
		a.notifier.Warning(ctx, fmt.Sprintf("Unknown asset %q, using %s.", assetName, asset.Name))
	}
	span.SetAttributes(attribute.String("asset", asset.Name))

	news := a.ScoreFromNews(ctx, asset.Name)
	description := a.ScoreFromDescription(ctx, asset.CoinGeckoID)
	combined := NewsWeight*news + DescriptionWeight*description

	log.Debug("combined sentiment", "asset", asset.Name, "news", news, "description", description, "combined", combined)
	metrics.SentimentScore.WithLabelValues(asset.Name).Set(combined)
	return domain.Sentiment{
		Asset:       asset.Name,
		News:        news,
		Description: description,
		Combined:    combined,
	}
}

// Refresh recomputes every sub-score for assetName from the sources and
// overwrites the cached values, even when they have not expired yet.
func (a *Aggregator) Refresh(ctx context.Context, assetName string) domain.Sentiment {
	return a.Breakdown(WithoutCacheRead(ctx), assetName)
}

type skipCacheReadKey struct{}

// WithoutCacheRead marks ctx so scoring ignores cached values. Fresh
// results are still written back.
func WithoutCacheRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipCacheReadKey{}, true)
}

func skipCacheRead(ctx context.Context) bool {
	skip, _ := ctx.Value(skipCacheReadKey{}).(bool)
	return skip
}

func (a *Aggregator) cached(ctx context.Context, key string) (float64, bool) {
	if a.store == nil || skipCacheRead(ctx) {
		return 0, false
	}
	var score float64
	ok, err := cache.GetJSON(ctx, a.store, key, &score)
	if err != nil {
		log.Warn("sentiment cache read failed", "key", key, "err", err)
		return 0, false
	}
	return score, ok
}

func (a *Aggregator) remember(ctx context.Context, key string, score float64) {
	if a.store == nil {
		return
	}
	if err := cache.SetJSON(ctx, a.store, key, score, a.ttl); err != nil {
		log.Warn("sentiment cache write failed", "key", key, "err", err)
	}
}
