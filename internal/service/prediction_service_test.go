package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"cryptosense/internal/domain"
	"cryptosense/internal/notify"
	"cryptosense/internal/predict"
	"cryptosense/internal/sentiment"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubSentiment struct {
	combined float64
	notifier notify.Notifier
	assets   []string
}

func (s *stubSentiment) Breakdown(ctx context.Context, assetName string) domain.Sentiment {
	s.assets = append(s.assets, assetName)
	if s.notifier != nil {
		s.notifier.Info(ctx, "sentiment computed for "+assetName)
	}
	return domain.Sentiment{Asset: assetName, Combined: s.combined}
}

type stubQuotes struct {
	quote   *domain.MarketQuote
	err     error
	symbols []string
}

func (s *stubQuotes) GetQuote(_ context.Context, symbol string) (*domain.MarketQuote, error) {
	s.symbols = append(s.symbols, symbol)
	return s.quote, s.err
}

func newTestService(sent *stubSentiment, quotes QuoteSource) *PredictionService {
	sink := notify.Scoped(notify.NewRecorder())
	if sent.notifier == nil {
		sent.notifier = sink
	}
	svc := NewPredictionService(testTracer, sent, quotes, predict.NewEngine(sink), sink)
	svc.now = func() time.Time { return time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestPredictionService_Predict(t *testing.T) {
	t.Parallel()

	sent := &stubSentiment{combined: 0.5}
	quotes := &stubQuotes{quote: &domain.MarketQuote{Symbol: "ETHUSDT", Price: 100}}
	svc := newTestService(sent, quotes)

	got, err := svc.Predict(context.Background(), "ethereum", domain.HorizonMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "Ethereum" || quotes.symbols[0] != "ETHUSDT" {
		t.Fatalf("unexpected asset resolution: %+v, symbols %v", got.Asset, quotes.symbols)
	}
	if math.Abs(got.Result.PredictedPrice-112) > 1e-9 {
		t.Fatalf("expected 112, got %v", got.Result.PredictedPrice)
	}
	if got.Result.Recommendation != domain.RecommendationBuy {
		t.Fatalf("expected Buy, got %s", got.Result.Recommendation)
	}
	if got.Result.Horizon != domain.HorizonMedium {
		t.Fatalf("unexpected horizon: %s", got.Result.Horizon)
	}
	if !got.EvaluatedAt.Equal(time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected evaluated at: %v", got.EvaluatedAt)
	}
	if len(got.Notes) != 2 {
		t.Fatalf("expected sentiment and prediction notes, got %v", got.Notes)
	}
	if got.Notes[1] != "info: Predicted price: 112.00 for timeframe 1d" {
		t.Fatalf("unexpected prediction note: %q", got.Notes[1])
	}
}

func TestPredictionService_UnknownAssetUsesBitcoin(t *testing.T) {
	t.Parallel()

	sent := &stubSentiment{}
	quotes := &stubQuotes{quote: &domain.MarketQuote{Symbol: "BTCUSDT", Price: 50000}}
	svc := newTestService(sent, quotes)

	got, err := svc.Predict(context.Background(), "Solana", domain.HorizonShort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "Bitcoin" || sent.assets[0] != "Solana" || quotes.symbols[0] != "BTCUSDT" {
		t.Fatalf("expected Bitcoin fallback, got %+v", got.Asset)
	}
	if got.Result.PredictedPrice != 50000 || got.Result.Recommendation != domain.RecommendationHold {
		t.Fatalf("expected zero drift hold, got %+v", got.Result)
	}
}

func TestPredictionService_UnknownAssetWarningInNotes(t *testing.T) {
	t.Parallel()

	sink := notify.Scoped(notify.NewRecorder())
	agg := sentiment.New(nil, nil, nil, sentiment.WithNotifier(sink))
	quotes := &stubQuotes{quote: &domain.MarketQuote{Symbol: "BTCUSDT", Price: 50000}}
	svc := NewPredictionService(testTracer, agg, quotes, predict.NewEngine(sink), sink)

	got, err := svc.Predict(context.Background(), "Solana", domain.HorizonShort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "Bitcoin" || got.Sentiment.Asset != "Bitcoin" {
		t.Fatalf("expected Bitcoin fallback, got %+v", got)
	}
	found := false
	for _, n := range got.Notes {
		if strings.Contains(n, `Unknown asset "Solana"`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unknown asset warning in notes, got %v", got.Notes)
	}
}

func TestPredictionService_PriceFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]QuoteSource{
		"error":     &stubQuotes{err: errors.New("binance down")},
		"zero":      &stubQuotes{quote: &domain.MarketQuote{Symbol: "BTCUSDT", Price: 0}},
		"nil":       &stubQuotes{},
		"no-source": nil,
	}
	for name, quotes := range cases {
		svc := newTestService(&stubSentiment{combined: 0.2}, quotes)
		_, err := svc.Predict(context.Background(), "Bitcoin", domain.HorizonShort)
		if !errors.Is(err, ErrPriceUnavailable) {
			t.Fatalf("%s: expected ErrPriceUnavailable, got %v", name, err)
		}
	}
}

func TestPredictionService_NotesAreScopedPerCall(t *testing.T) {
	t.Parallel()

	quotes := &stubQuotes{quote: &domain.MarketQuote{Symbol: "BTCUSDT", Price: 10}}
	svc := newTestService(&stubSentiment{}, quotes)

	first, err := svc.Predict(context.Background(), "Bitcoin", domain.HorizonShort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Predict(context.Background(), "Bitcoin", domain.HorizonShort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Notes) != len(second.Notes) {
		t.Fatalf("notes leaked between calls: %v vs %v", first.Notes, second.Notes)
	}
}

func TestPredictionService_Sentiment(t *testing.T) {
	t.Parallel()

	svc := newTestService(&stubSentiment{combined: -0.3}, nil)
	got, notes := svc.Sentiment(context.Background(), "Dogecoin")
	if got.Combined != -0.3 || got.Asset != "Dogecoin" {
		t.Fatalf("unexpected sentiment: %+v", got)
	}
	if len(notes) != 1 || notes[0] != "info: sentiment computed for Dogecoin" {
		t.Fatalf("unexpected notes: %v", notes)
	}
}
