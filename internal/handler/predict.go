package handler

import (
	"errors"
	"net/http"

	"cryptosense/internal/domain"
	"cryptosense/internal/predict"
	"cryptosense/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListAssets godoc
// @Summary      List supported assets
// @Description  Returns the asset catalog and the supported prediction horizons
// @Tags         assets
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/assets [get]
func (h *Handler) ListAssets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"assets":   domain.Catalog,
		"horizons": domain.SupportedHorizons,
		"default":  domain.FallbackAsset.Name,
	})
}

// GetSentiment godoc
// @Summary      Get sentiment for an asset
// @Description  Returns news, description and combined sentiment scores. Unknown assets fall back to Bitcoin.
// @Tags         sentiment
// @Produce      json
// @Param        asset  path  string  true  "Asset name (e.g., Bitcoin, Ethereum, Dogecoin)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/sentiment/{asset} [get]
func (h *Handler) GetSentiment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sentiment")
	defer span.End()

	asset := c.Param("asset")
	span.SetAttributes(attribute.String("asset", asset))

	sentiment, notes := h.predictor.Sentiment(ctx, asset)
	c.JSON(http.StatusOK, gin.H{
		"sentiment": sentiment,
		"notes":     notes,
	})
}

// GetPrediction godoc
// @Summary      Predict price and recommendation
// @Description  Combines sentiment with the current price to predict the price at the horizon and recommend Buy, Sell or Hold
// @Tags         predict
// @Produce      json
// @Param        asset    path   string  true   "Asset name (e.g., Bitcoin, Ethereum, Dogecoin)"
// @Param        horizon  query  string  false  "Prediction horizon (1h, 1d, 1w)"  default(1h)
// @Success      200  {object}  domain.Prediction
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/predict/{asset} [get]
func (h *Handler) GetPrediction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prediction")
	defer span.End()

	asset := c.Param("asset")
	horizon := domain.ParseHorizon(c.Query("horizon"))
	span.SetAttributes(
		attribute.String("asset", asset),
		attribute.String("horizon", string(horizon)),
	)

	prediction, err := h.predictor.Predict(ctx, asset, horizon)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, predict.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrPriceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
