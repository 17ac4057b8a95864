package job

import (
	"context"
	"sync/atomic"
	"time"

	"cryptosense/internal/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SentimentRefresher recomputes an asset's sentiment bypassing cached
// values and stores the result.
type SentimentRefresher interface {
	Refresh(ctx context.Context, assetName string) domain.Sentiment
}

// SentimentWarmer periodically recomputes sentiment for every catalog asset
// so interactive requests usually hit the cache.
type SentimentWarmer struct {
	tracer       trace.Tracer
	sentiment    SentimentRefresher
	pollInterval time.Duration
	runs         atomic.Int64
}

func NewSentimentWarmer(tracer trace.Tracer, sentiment SentimentRefresher, pollIntervalSecs int) *SentimentWarmer {
	return &SentimentWarmer{
		tracer:       tracer,
		sentiment:    sentiment,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start blocks until ctx is cancelled. A non-positive interval disables
// the warmer.
func (w *SentimentWarmer) Start(ctx context.Context) {
	if w.pollInterval <= 0 {
		log.Info("Sentiment warmer disabled")
		return
	}
	log.Info("Sentiment warmer starting", "interval", w.pollInterval)
	w.pollLoop(ctx, "sentiment-warm", w.pollInterval, w.warmAll)
	log.Info("Sentiment warmer stopped")
}

func (w *SentimentWarmer) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	// Run immediately on start
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Debug("poller tick", "name", name)
			fn(ctx)
		}
	}
}

func (w *SentimentWarmer) warmAll(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "job.sentiment-warm")
	defer span.End()

	for _, asset := range domain.Catalog {
		if ctx.Err() != nil {
			return
		}
		s := w.sentiment.Refresh(ctx, asset.Name)
		log.Debug("sentiment warmed", "asset", asset.Name, "combined", s.Combined)
	}
	span.SetAttributes(attribute.Int("assets", len(domain.Catalog)))
	w.runs.Add(1)
}

// Runs reports how many full warm passes have completed.
func (w *SentimentWarmer) Runs() int64 {
	return w.runs.Load()
}
