package classifier

import (
	"context"
	"errors"
	"time"

	"cryptosense/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
)

// BreakerSettings tunes WithBreaker.
type BreakerSettings struct {
	// Consecutive failures that open the breaker.
	MaxFailures uint32
	// How long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// WithBreaker wraps c in a circuit breaker so a failing backend is skipped
// quickly instead of being called once per news item. Empty-text errors
// do not count as backend failures.
func WithBreaker(name string, c Classifier, s BreakerSettings) Classifier {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrEmptyText)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("classifier breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &breaker{cb: cb, next: c}
}

type breaker struct {
	cb   *gobreaker.CircuitBreaker
	next Classifier
}

func (b *breaker) Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Classify(ctx, text, maxLength)
	})
	if err != nil {
		return domain.SentimentSample{}, err
	}
	return out.(domain.SentimentSample), nil
}
