package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptosense/internal/domain"
	"cryptosense/internal/metrics"
	"cryptosense/internal/notify"
	"cryptosense/internal/predict"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrPriceUnavailable is returned when no positive current price could be
// obtained for the asset. Price is the one mandatory input of a prediction.
var ErrPriceUnavailable = errors.New("current price unavailable")

type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*domain.MarketQuote, error)
}

type SentimentScorer interface {
	Breakdown(ctx context.Context, assetName string) domain.Sentiment
}

// PredictionService runs one end-to-end evaluation: sentiment, price, then
// the prediction engine.
type PredictionService struct {
	tracer    trace.Tracer
	sentiment SentimentScorer
	quotes    QuoteSource
	engine    *predict.Engine
	notifier  notify.Notifier
	now       func() time.Time
}

func NewPredictionService(
	tracer trace.Tracer,
	sentiment SentimentScorer,
	quotes QuoteSource,
	engine *predict.Engine,
	notifier notify.Notifier,
) *PredictionService {
	return &PredictionService{
		tracer:    tracer,
		sentiment: sentiment,
		quotes:    quotes,
		engine:    engine,
		notifier:  notify.OrDefault(notifier),
		now:       time.Now,
	}
}

// Predict evaluates assetName (unknown names use Bitcoin) over horizon.
// Notifications raised along the way are returned in Prediction.Notes.
func (s *PredictionService) Predict(ctx context.Context, assetName string, horizon domain.Horizon) (*domain.Prediction, error) {
	ctx, span := s.tracer.Start(ctx, "prediction-service.predict")
	defer span.End()

	ctx, rec := withRecorder(ctx)

	asset := domain.ResolveAsset(assetName)
	span.SetAttributes(
		attribute.String("asset", asset.Name),
		attribute.String("horizon", string(horizon)),
	)

	// The raw name goes through so the unknown-asset warning lands in Notes.
	sentiment := s.sentiment.Breakdown(ctx, assetName)

	quote, err := s.currentQuote(ctx, asset)
	if err != nil {
		span.RecordError(err)
		metrics.PredictionFailures.WithLabelValues("price").Inc()
		return nil, err
	}

	result, err := s.engine.Evaluate(ctx, domain.PredictionRequest{
		SentimentScore: sentiment.Combined,
		CurrentPrice:   quote.Price,
		Horizon:        horizon,
	})
	if err != nil {
		span.RecordError(err)
		metrics.PredictionFailures.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	metrics.PredictionsTotal.WithLabelValues(string(result.Horizon), string(result.Recommendation)).Inc()
	return &domain.Prediction{
		Asset:       asset,
		Quote:       *quote,
		Sentiment:   sentiment,
		Result:      result,
		Notes:       rec.Messages(),
		EvaluatedAt: s.now().UTC(),
	}, nil
}

// Sentiment returns the per-source sentiment for assetName together with
// the notes raised while computing it.
func (s *PredictionService) Sentiment(ctx context.Context, assetName string) (domain.Sentiment, []string) {
	ctx, span := s.tracer.Start(ctx, "prediction-service.sentiment")
	defer span.End()

	ctx, rec := withRecorder(ctx)
	out := s.sentiment.Breakdown(ctx, assetName)
	return out, rec.Messages()
}

func (s *PredictionService) currentQuote(ctx context.Context, asset domain.Asset) (*domain.MarketQuote, error) {
	if s.quotes == nil {
		s.notifier.Error(ctx, "Price source is not configured.")
		return nil, ErrPriceUnavailable
	}
	quote, err := s.quotes.GetQuote(ctx, asset.Symbol)
	if err != nil {
		s.notifier.Error(ctx, fmt.Sprintf("Failed to fetch current price for %s.", asset.Symbol))
		return nil, fmt.Errorf("%w for %s: %v", ErrPriceUnavailable, asset.Symbol, err)
	}
	if quote == nil || !(quote.Price > 0) {
		s.notifier.Error(ctx, fmt.Sprintf("Failed to fetch current price for %s.", asset.Symbol))
		return nil, fmt.Errorf("%w for %s: non-positive price", ErrPriceUnavailable, asset.Symbol)
	}
	return quote, nil
}

// withRecorder reuses the caller's recorder so nested calls share one set
// of notes.
func withRecorder(ctx context.Context) (context.Context, *notify.Recorder) {
	if rec := notify.RecorderFrom(ctx); rec != nil {
		return ctx, rec
	}
	rec := notify.NewRecorder()
	return notify.WithRecorder(ctx, rec), rec
}
