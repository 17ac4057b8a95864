package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptosense/internal/domain"
	"cryptosense/internal/predict"
	"cryptosense/internal/service"

	"github.com/charmbracelet/log"
	tele "gopkg.in/telebot.v3"
)

// Predictor is the service surface the bot commands need.
type Predictor interface {
	Predict(ctx context.Context, assetName string, horizon domain.Horizon) (*domain.Prediction, error)
	Sentiment(ctx context.Context, assetName string) (domain.Sentiment, []string)
}

const commandTimeout = 60 * time.Second

// StartTelegramBot starts long polling in the background and stops it when
// ctx is cancelled. It returns nil, nil when token is empty.
func StartTelegramBot(ctx context.Context, token string, predictor Predictor) (*tele.Bot, error) {
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/start", func(c tele.Context) error {
		return c.Send(usage())
	})
	b.Handle("/predict", func(c tele.Context) error {
		cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		return c.Send(predictReply(cmdCtx, predictor, c.Args()))
	})
	b.Handle("/sentiment", func(c tele.Context) error {
		cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()
		return c.Send(sentimentReply(cmdCtx, predictor, c.Args()))
	})

	log.Info("Telegram bot started")
	go b.Start()
	go func() {
		<-ctx.Done()
		b.Stop()
	}()
	return b, nil
}

func usage() string {
	return fmt.Sprintf(
		"Usage:\n/predict <asset> [horizon]\n/sentiment <asset>\nAssets: %s\nHorizons: 1h, 1d, 1w",
		strings.Join(domain.AssetNames(), ", "),
	)
}

func predictReply(ctx context.Context, predictor Predictor, args []string) string {
	if len(args) == 0 {
		return usage()
	}
	horizon := domain.HorizonShort
	if len(args) > 1 {
		horizon = domain.ParseHorizon(args[1])
	}

	p, err := predictor.Predict(ctx, args[0], horizon)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPriceUnavailable):
			return fmt.Sprintf("Could not fetch the current price for %s. Try again later.", args[0])
		case errors.Is(err, predict.ErrInvalidInput):
			return fmt.Sprintf("Cannot predict %s: %v", args[0], err)
		default:
			return fmt.Sprintf("Error predicting %s: %v", args[0], err)
		}
	}
	return formatPrediction(p)
}

func sentimentReply(ctx context.Context, predictor Predictor, args []string) string {
	if len(args) == 0 {
		return usage()
	}
	s, notes := predictor.Sentiment(ctx, args[0])
	var b strings.Builder
	fmt.Fprintf(&b, "%s sentiment\nNews: %+.3f\nDescription: %+.3f\nCombined: %+.3f", s.Asset, s.News, s.Description, s.Combined)
	writeNotes(&b, notes)
	return b.String()
}

func formatPrediction(p *domain.Prediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) %s\n", p.Asset.Name, p.Quote.Symbol, p.Result.Horizon)
	fmt.Fprintf(&b, "Current: $%.2f\n", p.Quote.Price)
	fmt.Fprintf(&b, "Predicted: $%.2f\n", p.Result.PredictedPrice)
	fmt.Fprintf(&b, "Sentiment: %+.3f\n", p.Sentiment.Combined)
	fmt.Fprintf(&b, "Recommendation: %s", p.Result.Recommendation)
	writeNotes(&b, p.Notes)
	return b.String()
}

func writeNotes(b *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\n\nNotes:")
	for _, n := range notes {
		b.WriteString("\n- ")
		b.WriteString(n)
	}
}
