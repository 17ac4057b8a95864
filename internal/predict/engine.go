// Package predict turns a sentiment score, a current price and a horizon
// into a predicted price and a Buy/Sell/Hold recommendation.
//
// The model is a closed-form linear drift: every hour-equivalent of the
// horizon moves the price by BaseVolatility times the sentiment score. The
// result is not clamped, so extreme inputs can produce non-physical prices.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"

	"cryptosense/internal/domain"
	"cryptosense/internal/notify"
)

// BaseVolatility is the notional drift per hour-equivalent unit.
const BaseVolatility = 0.01

// RecommendationBandPct is the symmetric band, in percent, inside which a
// predicted move is treated as no meaningful move.
const RecommendationBandPct = 2.0

// ErrInvalidInput is returned when the current price is not positive.
var ErrInvalidInput = errors.New("invalid prediction input")

// PredictPrice applies the sentiment drift to the current price.
func PredictPrice(req domain.PredictionRequest) (float64, error) {
	if !(req.CurrentPrice > 0) {
		return 0, fmt.Errorf("%w: current price must be positive, got %v", ErrInvalidInput, req.CurrentPrice)
	}
	changeFactor := req.SentimentScore * BaseVolatility * req.Horizon.Hours()
	return req.CurrentPrice * (1 + changeFactor), nil
}

// Recommend maps the predicted move to a recommendation. A NaN prediction
// means no prediction is available; it and a zero current price resolve to
// Hold.
func Recommend(currentPrice, predictedPrice float64) domain.Recommendation {
	if math.IsNaN(predictedPrice) || currentPrice == 0 || math.IsNaN(currentPrice) {
		return domain.RecommendationHold
	}
	pct := (predictedPrice - currentPrice) / currentPrice * 100
	switch {
	case pct > RecommendationBandPct:
		return domain.RecommendationBuy
	case pct < -RecommendationBandPct:
		return domain.RecommendationSell
	default:
		return domain.RecommendationHold
	}
}

// Evaluate predicts the price and derives the recommendation from it.
func Evaluate(req domain.PredictionRequest) (domain.PredictionResult, error) {
	predicted, err := PredictPrice(req)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	return domain.PredictionResult{
		PredictedPrice: predicted,
		Recommendation: Recommend(req.CurrentPrice, predicted),
		Horizon:        req.Horizon,
	}, nil
}

// Engine wraps the pure functions with advisory notifications.
type Engine struct {
	notifier notify.Notifier
}

func NewEngine(notifier notify.Notifier) *Engine {
	return &Engine{notifier: notify.OrDefault(notifier)}
}

func (e *Engine) PredictPrice(ctx context.Context, req domain.PredictionRequest) (float64, error) {
	predicted, err := PredictPrice(req)
	if err != nil {
		e.notifier.Error(ctx, "Invalid current price for prediction.")
		return 0, err
	}
	if !req.Horizon.Known() {
		e.notifier.Warning(ctx, fmt.Sprintf("Unknown horizon %q, using %s scaling.", req.Horizon, domain.HorizonShort))
	}
	e.notifier.Info(ctx, fmt.Sprintf("Predicted price: %.2f for timeframe %s", predicted, req.Horizon))
	return predicted, nil
}

func (e *Engine) Recommend(ctx context.Context, currentPrice, predictedPrice float64) domain.Recommendation {
	if math.IsNaN(predictedPrice) || currentPrice == 0 || math.IsNaN(currentPrice) {
		e.notifier.Error(ctx, "Cannot generate recommendation due to invalid price data.")
	}
	return Recommend(currentPrice, predictedPrice)
}

func (e *Engine) Evaluate(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResult, error) {
	predicted, err := e.PredictPrice(ctx, req)
	if err != nil {
		return domain.PredictionResult{}, err
	}
	return domain.PredictionResult{
		PredictedPrice: predicted,
		Recommendation: e.Recommend(ctx, req.CurrentPrice, predicted),
		Horizon:        req.Horizon,
	}, nil
}
