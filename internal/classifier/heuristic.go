package classifier

import (
	"context"
	"strings"

	"cryptosense/internal/domain"
)

var (
	bullishTokens = []string{"bull", "breakout", "surge", "rally", "adoption", "growth", "gain", "record high", "uptrend", "recover", "approve", "partnership", "upgrade"}
	bearishTokens = []string{"bear", "dump", "sell-off", "crash", "hack", "lawsuit", "ban", "decline", "downtrend", "liquidation", "fraud", "plunge", "exploit"}
)

// Heuristic scores text by counting bullish and bearish keywords. It needs
// no network access and is the fallback when no model backend is
// configured.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error) {
	text = strings.ToLower(Truncate(text, maxLength))
	if text == "" {
		return domain.SentimentSample{}, ErrEmptyText
	}

	bull := countMatches(text, bullishTokens)
	bear := countMatches(text, bearishTokens)

	label := domain.PolarityPositive
	if bear > bull {
		label = domain.PolarityNegative
	}
	diff := bull - bear
	if diff < 0 {
		diff = -diff
	}
	confidence := clamp(float64(diff)/float64(bull+bear+1), 0, 1)
	return domain.SentimentSample{Label: label, Confidence: confidence}, nil
}

func countMatches(text string, tokens []string) int {
	count := 0
	for _, token := range tokens {
		if strings.Contains(text, token) {
			count++
		}
	}
	return count
}
