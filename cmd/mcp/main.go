package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cryptosense/internal/app"
	"cryptosense/internal/config"
	"cryptosense/internal/domain"
	"cryptosense/internal/notify"
	"cryptosense/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverVersion = "v0.3.0"

type predictor interface {
	Predict(ctx context.Context, assetName string, horizon domain.Horizon) (*domain.Prediction, error)
	Sentiment(ctx context.Context, assetName string) (domain.Sentiment, []string)
}

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initTracerFunc = tracing.InitTracer
	buildAppFunc   = app.Build
	runServerFunc  = func(ctx context.Context, s *mcp.Server) error { return s.Run(ctx, &mcp.StdioTransport{}) }
)

type PredictInput struct {
	Asset   string `json:"asset" jsonschema:"asset name or symbol, e.g. Bitcoin, ETH, dogecoin"`
	Horizon string `json:"horizon,omitempty" jsonschema:"prediction horizon: 1h, 1d or 1w (default 1h)"`
}

type PredictOutput struct {
	Asset          string   `json:"asset"`
	Symbol         string   `json:"symbol"`
	Horizon        string   `json:"horizon"`
	CurrentPrice   float64  `json:"current_price"`
	PredictedPrice float64  `json:"predicted_price"`
	Sentiment      float64  `json:"sentiment"`
	Recommendation string   `json:"recommendation"`
	Notes          []string `json:"notes"`
}

type SentimentInput struct {
	Asset string `json:"asset" jsonschema:"asset name or symbol, e.g. Bitcoin, ETH, dogecoin"`
}

type SentimentOutput struct {
	Asset       string   `json:"asset"`
	News        float64  `json:"news"`
	Description float64  `json:"description"`
	Combined    float64  `json:"combined"`
	Notes       []string `json:"notes"`
}

func main() {
	// stdout carries the protocol; everything else goes to stderr.
	log.SetOutput(os.Stderr)
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, tracing.DefaultServiceName+"-mcp")
	if err != nil {
		log.Fatal("failed to initialize tracer", "err", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", "err", err)
		}
	}()

	a := buildAppFunc(ctx, cfg, tracer, notify.NewLogWithLogger(log.Default()))

	log.Info("MCP server starting on stdio")
	if err := runServerFunc(ctx, newServer(a.Predictions)); err != nil && ctx.Err() == nil {
		log.Error("MCP server stopped", "err", err)
	}
}

func newServer(p predictor) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: tracing.DefaultServiceName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "predict",
		Description: "Predict the price of a crypto asset at a horizon from news and description sentiment, and recommend Buy, Sell or Hold.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in PredictInput) (*mcp.CallToolResult, PredictOutput, error) {
		prediction, err := p.Predict(ctx, in.Asset, domain.ParseHorizon(in.Horizon))
		if err != nil {
			return nil, PredictOutput{}, err
		}
		return nil, PredictOutput{
			Asset:          prediction.Asset.Name,
			Symbol:         prediction.Quote.Symbol,
			Horizon:        string(prediction.Result.Horizon),
			CurrentPrice:   prediction.Quote.Price,
			PredictedPrice: prediction.Result.PredictedPrice,
			Sentiment:      prediction.Sentiment.Combined,
			Recommendation: string(prediction.Result.Recommendation),
			Notes:          append([]string{}, prediction.Notes...),
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sentiment",
		Description: "Score news and description sentiment for a crypto asset in [-1, 1].",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in SentimentInput) (*mcp.CallToolResult, SentimentOutput, error) {
		s, notes := p.Sentiment(ctx, in.Asset)
		return nil, SentimentOutput{
			Asset:       s.Asset,
			News:        s.News,
			Description: s.Description,
			Combined:    s.Combined,
			Notes:       append([]string{}, notes...),
		}, nil
	})

	return server
}
