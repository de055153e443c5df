package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shop_sales/internal/metrics"
	"shop_sales/internal/sales"
)

const notFoundMessage = "Sale not found"

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	metrics      *metrics.Registry
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, reg *metrics.Registry, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		metrics:      reg,
		logger:       logger,
	}
}

// handleListSales handles the GET /sales endpoint.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	list, err := h.salesService.ListSales(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// handleGetSale handles the GET /sales/:id endpoint.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	id, ok := saleID(ctx)
	if !ok {
		return
	}

	sale, err := h.salesService.GetSale(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	req, err := h.bindInput(ctx)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), req)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, sale)
}

// handleUpdateSale handles the PUT /sales/:id endpoint.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	id, ok := saleID(ctx)
	if !ok {
		return
	}

	req, err := h.bindInput(ctx)
	if err != nil {
		h.fail(ctx, err)
		return
	}

	updated, err := h.salesService.UpdateSale(ctx.Request.Context(), id, req)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// handleDeleteSale handles the DELETE /sales/:id endpoint.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	id, ok := saleID(ctx)
	if !ok {
		return
	}

	msg, err := h.salesService.DeleteSale(ctx.Request.Context(), id)
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": msg})
}

// handleTotalSales handles the GET /sales/total endpoint.
func (h *salesHandler) handleTotalSales(ctx *gin.Context) {
	total, err := h.salesService.TotalSales(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"total": total})
}

func (h *salesHandler) handleHealth(ctx *gin.Context) {
	if err := h.salesService.Ping(ctx.Request.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// errInvalidPayload marks a body that is not a JSON object with correctly
// typed fields.
var errInvalidPayload = errors.New("invalid request payload")

// bindInput decodes a create or update body. Presence of the required fields
// is checked on the raw object first, so a missing field is reported even when
// another field has the wrong type.
func (h *salesHandler) bindInput(ctx *gin.Context) (sales.Input, error) {
	var req sales.Input
	var raw map[string]json.RawMessage
	if err := ctx.ShouldBindBodyWithJSON(&raw); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		return req, errInvalidPayload
	}
	if err := sales.CheckPresence(raw); err != nil {
		return req, err
	}
	if err := ctx.ShouldBindBodyWithJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		return req, errInvalidPayload
	}
	return req, nil
}

// fail writes the error response for err. Storage messages are passed
// through unchanged.
func (h *salesHandler) fail(ctx *gin.Context, err error) {
	var validationErr *sales.ValidationError
	var connErr *sales.ConnectionError

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: " + validationErr.Field})
	case errors.Is(err, errInvalidPayload):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	case errors.As(err, &connErr):
		h.metrics.StorageErrors.WithLabelValues("connection").Inc()
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.metrics.StorageErrors.WithLabelValues("storage").Inc()
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// saleID parses the :id path parameter. Anything but a positive integer
// does not address a sale, so it is answered like an unknown route.
func saleID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
		return 0, false
	}
	return id, true
}
