package api

import (
	stderrors "errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rzzdr/payoff-pipeline/internal/payoff"
	"github.com/rzzdr/payoff-pipeline/pkg/models"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/errors"
	"github.com/rzzdr/payoff-pipeline/pkg/utils/logger"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	calculator *payoff.Calculator
	version    string
	log        *logger.Logger
}

// BatchRequest is the body of the batch endpoint
type BatchRequest struct {
	Positions []*models.Position `json:"positions"`
}

// NewHandlers creates new API handlers
func NewHandlers(calculator *payoff.Calculator, version string) *Handlers {
	return &Handlers{
		calculator: calculator,
		version:    version,
		log:        logger.GetLogger("api.handlers"),
	}
}

// HealthCheckHandler handles health check requests
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   h.version,
	})
}

// ChartHandler samples the payoff curve of the posted position.
// ?format=series answers with labels/data arrays and ?distinct=true drops
// points that repeat an x-value.
func (h *Handlers) ChartHandler(c *gin.Context) {
	position, ok := h.bindPosition(c)
	if !ok {
		return
	}

	distinct, err := boolQuery(c, "distinct")
	if err != nil {
		h.respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", "points")
	if format != "points" && format != "series" {
		h.respondError(c, errors.InvalidArgumentf("unknown format %q, expected \"points\" or \"series\"", format))
		return
	}

	points, err := h.calculator.Chart(c.Request.Context(), position)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if distinct {
		points = payoff.Distinct(points)
	}

	if format == "series" {
		c.JSON(http.StatusOK, models.NewReturnData(points))
		return
	}

	c.JSON(http.StatusOK, points)
}

// GainLossHandler values the posted position at ?expectedPrice, or at the
// position's own price when the parameter is absent
func (h *Handlers) GainLossHandler(c *gin.Context) {
	position, ok := h.bindPosition(c)
	if !ok {
		return
	}

	expectedPrice := position.Price
	if raw, present := c.GetQuery("expectedPrice"); present {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			h.respondError(c, errors.InvalidArgumentf("expectedPrice must be a finite number, got %q", raw))
			return
		}
		expectedPrice = parsed
	}

	gainLoss, err := h.calculator.GainLoss(c.Request.Context(), position, expectedPrice)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gainLoss)
}

// SummaryHandler returns the chart of the posted position together with its summary
func (h *Handlers) SummaryHandler(c *gin.Context) {
	position, ok := h.bindPosition(c)
	if !ok {
		return
	}

	report, err := h.calculator.Summary(c.Request.Context(), position)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// BatchHandler charts several positions at once; result i belongs to position i
func (h *Handlers) BatchHandler(c *gin.Context) {
	var request BatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.respondError(c, decodeError(err))
		return
	}

	charts, err := h.calculator.ChartBatch(c.Request.Context(), request.Positions)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, charts)
}

func (h *Handlers) bindPosition(c *gin.Context) (*models.Position, bool) {
	var position models.Position
	if err := c.ShouldBindJSON(&position); err != nil {
		h.respondError(c, decodeError(err))
		return nil, false
	}
	return &position, true
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}

	if status >= http.StatusInternalServerError {
		h.log.Errorf("Failed to handle %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
	})
}

func decodeError(err error) error {
	return errors.WithType(errors.Wrap(err, "invalid request body"), errors.ErrorTypeInvalidArgument)
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return false, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidArgumentf("%s must be a boolean, got %q", name, raw)
	}
	return value, nil
}
