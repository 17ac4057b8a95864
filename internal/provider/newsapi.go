package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptosense/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIProvider searches recent articles through newsapi.org.
type NewsAPIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewNewsAPIProvider returns nil when apiKey is empty.
func NewNewsAPIProvider(tracer trace.Tracer, apiKey string) *NewsAPIProvider {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	return &NewsAPIProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: newsAPIBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Search returns up to MaxNewsItems English articles about topic, most
// recent first.
func (p *NewsAPIProvider) Search(ctx context.Context, topic string) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "newsapi.search")
	defer span.End()

	topic = strings.TrimSpace(topic)
	span.SetAttributes(attribute.String("news.topic", topic))
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	q := url.Values{}
	q.Set("q", topic)
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprint(MaxNewsItems))
	endpoint := p.baseURL + "/everything?" + q.Encode()

	body, err := doGet(ctx, p.client, p.limiter, "newsapi", endpoint, http.Header{"X-Api-Key": []string{p.apiKey}})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("search news for %s: %w", topic, err)
	}

	var raw struct {
		Status   string `json:"status"`
		Code     string `json:"code"`
		Message  string `json:"message"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse news for %s: %w", topic, err)
	}
	if raw.Status != "" && raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s", raw.Code, raw.Message)
	}

	items := make([]domain.NewsItem, 0, min(MaxNewsItems, len(raw.Articles)))
	for _, a := range raw.Articles {
		if len(items) >= MaxNewsItems {
			break
		}
		published, _ := time.Parse(time.RFC3339, strings.TrimSpace(a.PublishedAt))
		items = append(items, domain.NewsItem{
			Title:       sanitizeText(a.Title, 300),
			Summary:     sanitizeText(htmlStrip(a.Description), 1000),
			URL:         sanitizeText(a.URL, 500),
			PublishedAt: published.UTC(),
		})
	}
	return items, nil
}
