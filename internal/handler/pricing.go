package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/apierror"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct{ svc service.PricingService }

func NewPricingHandler(svc service.PricingService) *PricingHandler {
	return &PricingHandler{svc: svc}
}

// BulkUpdatePrices godoc
// @Summary Adjust every product price by a percentage
// @Tags pricing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.BulkPercentRequest true "Non-zero percentage, e.g. 10 or -5"
// @Success 200 {object} dto.BulkPriceResponse
// @Failure 400 {object} apierror.APIError
// @Router /products/bulk-update-prices [post]
func (h *PricingHandler) BulkUpdatePrices(c *gin.Context) {
	var req dto.BulkPercentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.BulkAdjustByPercent(c.Request.Context(), req.Percent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkPriceResponse{
		Message: "Prices updated by " + req.Percent.String() + "%",
		Count:   n,
	})
}

// BulkDiscount godoc
// @Summary Subtract a flat amount from every product price (floored at zero)
// @Tags pricing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.BulkDiscountRequest true "Non-zero amount"
// @Success 200 {object} dto.BulkPriceResponse
// @Failure 400 {object} apierror.APIError
// @Router /products/bulk-discount [post]
func (h *PricingHandler) BulkDiscount(c *gin.Context) {
	var req dto.BulkDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.BulkDiscount(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkPriceResponse{
		Message: "Discount of " + req.Amount.StringFixed(2) + " applied",
		Count:   n,
	})
}

// ResetPrices godoc
// @Summary Restore every product to its original price
// @Tags pricing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Router /products/reset-prices [post]
func (h *PricingHandler) ResetPrices(c *gin.Context) {
	if _, err := h.svc.ResetAllPrices(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "All prices reset to original"})
}

// UndoLastPriceChange godoc
// @Summary Revert the newest logged price change of every product
// @Tags pricing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BulkPriceResponse
// @Router /products/undo-last-price-change [post]
func (h *PricingHandler) UndoLastPriceChange(c *gin.Context) {
	n, err := h.svc.Undo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkPriceResponse{Message: "Last price change undone", Count: n})
}

// PriceHistory godoc
// @Summary Newest price changes across the catalog
// @Tags pricing
// @Produce json
// @Param limit query int false "Entries to return (default 5, max 50)"
// @Success 200 {object} dto.PriceHistoryResponse
// @Router /products/price-history [get]
func (h *PricingHandler) PriceHistory(c *gin.Context) {
	limit := service.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, apierror.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := h.svc.GetRecentHistory(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []dto.PriceHistoryEntry{}
	}
	c.JSON(http.StatusOK, dto.PriceHistoryResponse{History: entries})
}
