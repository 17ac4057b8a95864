package handler

import (
	"context"

	"cryptosense/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// Predictor is the service surface the HTTP API needs.
type Predictor interface {
	Predict(ctx context.Context, assetName string, horizon domain.Horizon) (*domain.Prediction, error)
	Sentiment(ctx context.Context, assetName string) (domain.Sentiment, []string)
}

type Handler struct {
	tracer    trace.Tracer
	predictor Predictor
	apiKey    string
}

func New(tracer trace.Tracer, predictor Predictor, apiKey string) *Handler {
	return &Handler{
		tracer:    tracer,
		predictor: predictor,
		apiKey:    apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(Metrics())
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/assets", h.ListAssets)
	api.GET("/sentiment/:asset", h.GetSentiment)
	api.GET("/predict/:asset", h.GetPrediction)
}
