// Package app wires configuration into the sentiment, price and prediction
// components shared by every binary.
package app

import (
	"context"
	"fmt"

	"cryptosense/internal/cache"
	"cryptosense/internal/classifier"
	"cryptosense/internal/config"
	"cryptosense/internal/notify"
	"cryptosense/internal/predict"
	"cryptosense/internal/provider"
	"cryptosense/internal/sentiment"
	"cryptosense/internal/service"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
)

type App struct {
	Config      *config.Config
	Store       cache.Store
	Sentiment   *sentiment.Aggregator
	Predictions *service.PredictionService
}

var openStore = cache.Open

// Build assembles the component graph. Notifications go to the log sink
// and to any recorder attached to the request context.
func Build(ctx context.Context, cfg *config.Config, tracer trace.Tracer, sink notify.Notifier) *App {
	notifier := notify.Scoped(sink)
	store := openStore(ctx, cfg.RedisURL, cfg.SentimentCacheTTL)

	agg := sentiment.New(
		newsSource(cfg, tracer),
		provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoAPIKey),
		newClassifier(cfg, tracer),
		sentiment.WithCache(store, cfg.SentimentCacheTTL),
		sentiment.WithMaxLength(cfg.ClassifierMaxLength),
		sentiment.WithNotifier(notifier),
		sentiment.WithTracer(tracer),
	)

	predictions := service.NewPredictionService(
		tracer,
		agg,
		provider.NewBinanceProvider(tracer),
		predict.NewEngine(notifier),
		notifier,
	)

	return &App{
		Config:      cfg,
		Store:       store,
		Sentiment:   agg,
		Predictions: predictions,
	}
}

func newsSource(cfg *config.Config, tracer trace.Tracer) sentiment.NewsSearcher {
	if cfg.NewsProvider == config.NewsProviderNewsAPI {
		if p := provider.NewNewsAPIProvider(tracer, cfg.NewsAPIKey); p != nil {
			log.Info("News source: NewsAPI")
			return p
		}
	}
	log.Info("News source: Google News RSS")
	return provider.NewGoogleNewsProvider(tracer)
}

// newClassifier defers backend construction to first use and shares the
// instance process-wide.
func newClassifier(cfg *config.Config, tracer trace.Tracer) classifier.Classifier {
	return classifier.Lazy(func() (classifier.Classifier, error) {
		switch cfg.Classifier {
		case config.ClassifierHuggingFace:
			c := classifier.NewHuggingFace(tracer, cfg.HuggingFaceAPIKey, cfg.HuggingFaceModel)
			if c == nil {
				return nil, fmt.Errorf("huggingface classifier requires HUGGINGFACE_API_KEY")
			}
			log.Info("Classifier: Hugging Face", "model", cfg.HuggingFaceModel)
			return classifier.WithBreaker("huggingface", c, classifier.BreakerSettings{}), nil
		case config.ClassifierOpenAI:
			c := classifier.NewOpenAI(tracer, cfg.OpenAIAPIKey, cfg.OpenAIModel)
			if c == nil {
				return nil, fmt.Errorf("openai classifier requires OPENAI_API_KEY")
			}
			log.Info("Classifier: OpenAI", "model", cfg.OpenAIModel)
			return classifier.WithBreaker("openai", c, classifier.BreakerSettings{}), nil
		default:
			log.Info("Classifier: keyword heuristic")
			return classifier.NewHeuristic(), nil
		}
	})
}
