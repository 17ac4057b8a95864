package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptosense/internal/domain"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const binanceBaseURL = "https://api.binance.com"

// BinanceProvider fetches spot prices from the public Binance ticker
// endpoint. Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff.
type BinanceProvider struct {
	client     *http.Client
	baseURL    string
	tracer     trace.Tracer
	limiter    *rate.Limiter
	maxTries   uint
	newBackOff func() backoff.BackOff
}

func NewBinanceProvider(tracer trace.Tracer) *BinanceProvider {
	return &BinanceProvider{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  binanceBaseURL,
		tracer:   tracer,
		limiter:  rate.NewLimiter(rate.Limit(10), 10),
		maxTries: 3,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// GetQuote returns the latest price for a trading pair such as BTCUSDT.
func (p *BinanceProvider) GetQuote(ctx context.Context, symbol string) (*domain.MarketQuote, error) {
	ctx, span := p.tracer.Start(ctx, "binance.get-quote")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	span.SetAttributes(attribute.String("symbol", symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", p.baseURL, url.QueryEscape(symbol))

	quote, err := backoff.Retry(ctx, func() (*domain.MarketQuote, error) {
		body, err := doGet(ctx, p.client, p.limiter, "binance", endpoint, nil)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				if se.code == http.StatusBadRequest || se.code == http.StatusNotFound {
					return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, symbol))
				}
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		q, err := parseBinanceTicker(body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return q, nil
	}, backoff.WithBackOff(p.newBackOff()), backoff.WithMaxTries(p.maxTries))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch price for %s: %w", symbol, err)
	}
	return quote, nil
}

func parseBinanceTicker(body []byte) (*domain.MarketQuote, error) {
	// Response shape: {"symbol":"BTCUSDT","price":"97000.12000000"}
	var raw struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse ticker: %w", err)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(raw.Price), 64)
	if err != nil {
		return nil, fmt.Errorf("parse ticker price %q: %w", raw.Price, err)
	}
	if !(price > 0) {
		return nil, fmt.Errorf("ticker price %v for %s is not positive", price, raw.Symbol)
	}
	return &domain.MarketQuote{
		Symbol: raw.Symbol,
		Price:  price,
		AsOf:   time.Now().UTC(),
	}, nil
}
