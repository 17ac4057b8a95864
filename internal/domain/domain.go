package domain

import (
	"strings"
	"time"
)

// Horizon is the requested prediction window.
type Horizon string

const (
	HorizonShort  Horizon = "1h"
	HorizonMedium Horizon = "1d"
	HorizonLong   Horizon = "1w"
)

// SupportedHorizons lists the horizons with a known scaling factor.
var SupportedHorizons = []Horizon{HorizonShort, HorizonMedium, HorizonLong}

var horizonHours = map[Horizon]float64{
	HorizonShort:  1,
	HorizonMedium: 24,
	HorizonLong:   168,
}

// Hours returns the hours-equivalent multiplier for the horizon.
// Unrecognized horizons use the shortest horizon's factor.
func (h Horizon) Hours() float64 {
	if hours, ok := horizonHours[h]; ok {
		return hours
	}
	return horizonHours[HorizonShort]
}

// Known reports whether the horizon has its own entry in the scaling table.
func (h Horizon) Known() bool {
	_, ok := horizonHours[h]
	return ok
}

// ParseHorizon normalizes user input ("1H", " 1d ") into a Horizon. Empty
// input yields the short horizon; anything else is passed through as-is so
// the engine can apply its default factor.
func ParseHorizon(s string) Horizon {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return HorizonShort
	}
	return Horizon(s)
}

type Recommendation string

const (
	RecommendationBuy  Recommendation = "Buy"
	RecommendationSell Recommendation = "Sell"
	RecommendationHold Recommendation = "Hold"
)

type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// SentimentSample is one classified text fragment.
type SentimentSample struct {
	Label      Polarity `json:"label"`
	Confidence float64  `json:"confidence"`
}

// Signed maps the sample to +confidence for positive and -confidence for
// negative text.
func (s SentimentSample) Signed() float64 {
	if s.Label == PolarityPositive {
		return s.Confidence
	}
	return -s.Confidence
}

// MarketQuote is the latest traded price for a symbol.
type MarketQuote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

// NewsItem is one search hit from a news source.
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type PredictionRequest struct {
	SentimentScore float64 `json:"sentiment_score"`
	CurrentPrice   float64 `json:"current_price"`
	Horizon        Horizon `json:"horizon"`
}

type PredictionResult struct {
	PredictedPrice float64        `json:"predicted_price"`
	Recommendation Recommendation `json:"recommendation"`
	Horizon        Horizon        `json:"horizon"`
}

// Sentiment is the per-source breakdown behind a combined score.
type Sentiment struct {
	Asset       string  `json:"asset"`
	News        float64 `json:"news"`
	Description float64 `json:"description"`
	Combined    float64 `json:"combined"`
}

// Prediction is the end-to-end answer for one asset and horizon.
type Prediction struct {
	Asset       Asset            `json:"asset"`
	Quote       MarketQuote      `json:"quote"`
	Sentiment   Sentiment        `json:"sentiment"`
	Result      PredictionResult `json:"result"`
	Notes       []string         `json:"notes,omitempty"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}
