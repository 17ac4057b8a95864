package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cryptosense/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	huggingFaceBaseURL = "https://router.huggingface.co/hf-inference"
	DefaultFinBERT     = "ProsusAI/finbert"
)

// HuggingFace calls a hosted text-classification model (FinBERT by
// default) through the Hugging Face inference API.
type HuggingFace struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	tracer  trace.Tracer
	limiter *rate.Limiter
}

// NewHuggingFace returns nil when apiKey is empty.
func NewHuggingFace(tracer trace.Tracer, apiKey, model string) *HuggingFace {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultFinBERT
	}
	return &HuggingFace{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: huggingFaceBaseURL,
		apiKey:  apiKey,
		model:   model,
		tracer:  tracer,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HuggingFace) Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error) {
	ctx, span := c.tracer.Start(ctx, "classifier.huggingface")
	defer span.End()
	span.SetAttributes(attribute.String("hf.model", c.model))

	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	text = Truncate(text, maxLength)
	if text == "" {
		return domain.SentimentSample{}, ErrEmptyText
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.SentimentSample{}, fmt.Errorf("rate limit wait: %w", err)
	}

	// maxLength counts words but the model limit counts sub-word tokens,
	// so the endpoint must truncate whatever still overflows.
	payload, err := json.Marshal(map[string]any{
		"inputs":     text,
		"parameters": map[string]any{"truncation": true, "max_length": maxLength},
		"options":    map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return domain.SentimentSample{}, err
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(c.baseURL, "/"), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.SentimentSample{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return domain.SentimentSample{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SentimentSample{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.SentimentSample{}, fmt.Errorf("huggingface API error %d: %s", resp.StatusCode, string(body))
	}

	scores, err := parseLabelScores(body)
	if err != nil {
		return domain.SentimentSample{}, err
	}
	return pickPolarity(scores)
}

// parseLabelScores accepts both the nested ([[...]]) and flat ([...])
// shapes the inference API returns for text classification.
func parseLabelScores(body []byte) ([]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("huggingface response has no rows")
		}
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode huggingface response: %w", err)
	}
	return flat, nil
}

// pickPolarity restricts the model output to positive and negative and
// returns the stronger of the two.
func pickPolarity(scores []labelScore) (domain.SentimentSample, error) {
	var best domain.SentimentSample
	found := false
	for _, s := range scores {
		label, ok := normalizeLabel(s.Label)
		if !ok {
			continue
		}
		if !found || s.Score > best.Confidence {
			best = domain.SentimentSample{Label: label, Confidence: clamp(s.Score, 0, 1)}
			found = true
		}
	}
	if !found {
		return domain.SentimentSample{}, fmt.Errorf("huggingface response has no positive/negative label")
	}
	return best, nil
}
