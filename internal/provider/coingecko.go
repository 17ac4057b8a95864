package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches coin reference data from the CoinGecko API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewCoinGeckoProvider creates a provider rate limited to the free tier
// (8 requests per minute). apiKey is the optional demo key.
func NewCoinGeckoProvider(tracer trace.Tracer, apiKey string) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(7500*time.Millisecond), 8),
	}
}

// GetDescription returns the English project description for a CoinGecko
// coin id, with markup removed. An empty string means the coin exists but
// has no description.
func (p *CoinGeckoProvider) GetDescription(ctx context.Context, assetID string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.get-description")
	defer span.End()

	assetID = strings.ToLower(strings.TrimSpace(assetID))
	span.SetAttributes(attribute.String("coingecko.id", assetID))
	if assetID == "" {
		return "", fmt.Errorf("asset id is required")
	}

	endpoint := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=false&community_data=false&developer_data=false&sparkline=false",
		p.baseURL, url.PathEscape(assetID))

	var header http.Header
	if p.apiKey != "" {
		header = http.Header{"x-cg-demo-api-key": []string{p.apiKey}}
	}

	body, err := doGet(ctx, p.client, p.limiter, "coingecko", endpoint, header)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return "", fmt.Errorf("coin %s: %w", assetID, ErrNotFound)
		}
		span.RecordError(err)
		return "", fmt.Errorf("fetch description for %s: %w", assetID, err)
	}

	var raw struct {
		Description map[string]string `json:"description"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("parse description for %s: %w", assetID, err)
	}
	return sanitizeText(htmlStrip(raw.Description["en"]), 0), nil
}
