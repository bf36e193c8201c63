package handler

import (
	"net/http"

	"storefront/internal/apierror"
	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Place godoc
// @Summary Place an order for the authenticated user
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PlaceOrderRequest true "Order"
// @Success 201 {object} dto.PlaceOrderResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /orders [post]
func (h *OrdersHandler) Place(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return
	}
	var req dto.PlaceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	id, err := h.svc.PlaceOrder(c.Request.Context(), claims.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PlaceOrderResponse{Message: "Order created", OrderID: id})
}

// SetStatus godoc
// @Summary Set an order's status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param body body dto.SetOrderStatusRequest true "pending | paid | shipped | delivered"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} apierror.APIError
// @Router /orders/{id}/status [put]
func (h *OrdersHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.SetOrderStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Order status updated"})
}

// Get returns one order. Customers only see their own orders.
func (h *OrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	claims := middleware.GetClaims(c)
	if claims == nil || (claims.Role != model.RoleAdmin && claims.UserID != resp.UserID) {
		c.JSON(http.StatusNotFound, apierror.New("order not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
