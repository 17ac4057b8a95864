// Package classifier provides binary (positive/negative) text polarity
// classification behind a single interface, with FinBERT, OpenAI and
// keyword-heuristic backends.
package classifier

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"cryptosense/internal/domain"
)

// DefaultMaxLength is the classifier input limit, in whitespace-delimited
// tokens.
const DefaultMaxLength = 512

var ErrEmptyText = errors.New("classifier: empty text")

// Classifier labels text as positive or negative with a confidence in
// [0,1]. Input longer than maxLength tokens is truncated, not rejected.
type Classifier interface {
	Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error)

func (f Func) Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error) {
	return f(ctx, text, maxLength)
}

// Truncate keeps at most maxLength whitespace-delimited tokens of text and
// collapses runs of whitespace. maxLength <= 0 means DefaultMaxLength.
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	fields := strings.Fields(text)
	if len(fields) > maxLength {
		fields = fields[:maxLength]
	}
	return strings.Join(fields, " ")
}

// Lazy defers building the classifier until the first Classify call and
// shares the single instance across all callers, including concurrent
// ones. A build error is returned from every call.
func Lazy(build func() (Classifier, error)) Classifier {
	return &lazy{get: sync.OnceValues(build)}
}

type lazy struct {
	get func() (Classifier, error)
}

func (l *lazy) Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error) {
	c, err := l.get()
	if err != nil {
		return domain.SentimentSample{}, err
	}
	return c.Classify(ctx, text, maxLength)
}

func normalizeLabel(label string) (domain.Polarity, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos", "bullish", "bull", "label_2":
		return domain.PolarityPositive, true
	case "negative", "neg", "bearish", "bear", "label_0":
		return domain.PolarityNegative, true
	default:
		return "", false
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
