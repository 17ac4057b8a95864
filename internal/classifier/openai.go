package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cryptosense/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const openAISystemPrompt = "You classify the sentiment of crypto market text for investors. " +
	"Return ONLY a JSON object with: label (positive|negative) and confidence (0..1). " +
	"Neutral text should be labelled by its slight lean with low confidence. No markdown."

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAI classifies text with a chat completion model.
type OpenAI struct {
	client openAIChatClient
	model  string
	tracer trace.Tracer
}

// NewOpenAI returns nil when apiKey is empty.
func NewOpenAI(tracer trace.Tracer, apiKey, model string) *OpenAI {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		client: &openAIClient{client: client},
		model:  model,
		tracer: tracer,
	}
}

func (c *OpenAI) Classify(ctx context.Context, text string, maxLength int) (domain.SentimentSample, error) {
	ctx, span := c.tracer.Start(ctx, "classifier.openai")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))

	text = Truncate(text, maxLength)
	if text == "" {
		return domain.SentimentSample{}, ErrEmptyText
	}

	completion, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openAISystemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		span.RecordError(err)
		return domain.SentimentSample{}, fmt.Errorf("openai classify: %w", err)
	}
	if len(completion.Choices) == 0 {
		return domain.SentimentSample{}, fmt.Errorf("empty classifier completion")
	}

	raw := trimCodeFence(completion.Choices[0].Message.Content)
	var parsed struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return domain.SentimentSample{}, fmt.Errorf("parse classifier json: %w", err)
	}
	label, ok := normalizeLabel(parsed.Label)
	if !ok {
		return domain.SentimentSample{}, fmt.Errorf("unexpected classifier label %q", parsed.Label)
	}
	return domain.SentimentSample{Label: label, Confidence: clamp(parsed.Confidence, 0, 1)}, nil
}

func trimCodeFence(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "```") {
		v = strings.TrimPrefix(v, "```")
		v = strings.TrimSpace(v)
		if strings.HasPrefix(strings.ToLower(v), "json") {
			v = strings.TrimSpace(v[4:])
		}
		v = strings.TrimSuffix(v, "```")
		v = strings.TrimSpace(v)
	}
	return v
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
