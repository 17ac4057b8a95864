package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cryptosense/internal/app"
	"cryptosense/internal/config"
	"cryptosense/internal/domain"
	"cryptosense/internal/notify"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type stubPredictor struct {
	prediction *domain.Prediction
	err        error
	gotAsset   string
	gotHorizon domain.Horizon
}

func (s *stubPredictor) Predict(_ context.Context, assetName string, horizon domain.Horizon) (*domain.Prediction, error) {
	s.gotAsset = assetName
	s.gotHorizon = horizon
	return s.prediction, s.err
}

func (s *stubPredictor) Sentiment(_ context.Context, assetName string) (domain.Sentiment, []string) {
	s.gotAsset = assetName
	return domain.Sentiment{Asset: "Ethereum", News: 0.5, Description: -0.25, Combined: 0.2}, []string{"info: No description available for ethereum."}
}

func withStubSession(t *testing.T, p predictor) *bool {
	t.Helper()
	orig := openSessionFunc
	closed := false
	openSessionFunc = func(context.Context) (predictor, func(), error) {
		return p, func() { closed = true }, nil
	}
	t.Cleanup(func() { openSessionFunc = orig })
	return &closed
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	stub := &stubPredictor{prediction: &domain.Prediction{
		Asset:     domain.Catalog[1],
		Quote:     domain.MarketQuote{Symbol: "ETHUSDT", Price: 2000},
		Sentiment: domain.Sentiment{Combined: 0.5},
		Result:    domain.PredictionResult{PredictedPrice: 2200, Recommendation: domain.RecommendationBuy, Horizon: domain.HorizonMedium},
		Notes:     []string{"info: Predicted price: 2200.00 for timeframe 1d"},
	}}
	closed := withStubSession(t, stub)

	out, err := run(t, "predict", "--asset", "eth", "--horizon", "1D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.gotAsset != "eth" || stub.gotHorizon != domain.HorizonMedium {
		t.Fatalf("unexpected args: %s %s", stub.gotAsset, stub.gotHorizon)
	}
	for _, want := range []string{"Ethereum (ETHUSDT) 1d", "$2000.00", "$2200.00", "Buy", "Predicted price: 2200.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if !*closed {
		t.Fatal("expected session to be closed")
	}
}

func TestPredictCommandDefaults(t *testing.T) {
	stub := &stubPredictor{prediction: &domain.Prediction{}}
	withStubSession(t, stub)

	if _, err := run(t, "predict"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.gotAsset != "Bitcoin" || stub.gotHorizon != domain.HorizonShort {
		t.Fatalf("unexpected defaults: %s %s", stub.gotAsset, stub.gotHorizon)
	}
}

func TestPredictCommandError(t *testing.T) {
	withStubSession(t, &stubPredictor{err: errors.New("price unavailable")})

	if _, err := run(t, "predict", "Bitcoin"); err == nil || !strings.Contains(err.Error(), "price unavailable") {
		t.Fatalf("expected predict error, got %v", err)
	}
}

func TestSentimentCommand(t *testing.T) {
	stub := &stubPredictor{}
	withStubSession(t, stub)

	out, err := run(t, "sentiment", "ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Ethereum sentiment", "+0.500", "-0.250", "+0.200", "No description available"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAssetsCommand(t *testing.T) {
	out, err := run(t, "assets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range domain.Catalog {
		if !strings.Contains(out, a.Symbol) {
			t.Fatalf("expected %s in output:\n%s", a.Symbol, out)
		}
	}
}

func TestOpenSessionBuildsApp(t *testing.T) {
	origEnv, origCfg, origTracer, origBuild := loadEnvFunc, loadConfigFunc, initTracerFunc, buildAppFunc
	t.Cleanup(func() {
		loadEnvFunc, loadConfigFunc, initTracerFunc, buildAppFunc = origEnv, origCfg, origTracer, origBuild
	})

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			SentimentCacheTTL:   time.Minute,
			NewsProvider:        config.NewsProviderGoogleNews,
			Classifier:          config.ClassifierHeuristic,
			ClassifierMaxLength: 512,
			LogLevel:            "error",
		}
	}
	var gotService string
	initTracerFunc = func(_ context.Context, serviceName string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		gotService = serviceName
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	built := false
	buildAppFunc = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer, sink notify.Notifier) *app.App {
		built = true
		return app.Build(ctx, cfg, tracer, notify.NewRecorder())
	}

	p, closeFn, err := openSession(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if p == nil || !built || gotService != "cryptosense-cli" {
		t.Fatalf("unexpected session: predictor=%v built=%v service=%q", p, built, gotService)
	}
}
