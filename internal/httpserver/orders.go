package httpserver

import (
	"net/http"

	"campus-food-ordering/internal/domain"
	ordersvc "campus-food-ordering/internal/service/order"
	"github.com/gin-gonic/gin"
)

func (h *handlers) placeOrder(c *gin.Context) {
	var in ordersvc.PlaceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	placement, err := h.deps.OrderSvc.PlaceOrder(c.Request.Context(), currentProfile(c).StudentID, in)
	if err != nil {
		h.writeError(c, "place order", err)
		return
	}
	c.JSON(http.StatusCreated, placement)
}

func (h *handlers) reviewOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.OrderSvc.Review(c.Request.Context(), currentProfile(c).StudentID))
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := h.deps.OrderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) orderCountdown(c *gin.Context) {
	state, err := h.deps.OrderSvc.CountdownFor(c.Request.Context(), currentProfile(c).StudentID, c.Param("id"))
	if err != nil {
		h.writeError(c, "order countdown", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type statusRequest struct {
	Status string `json:"status"`
}

// updateOrder moves an order to the requested status on behalf of the caller.
func (h *handlers) updateOrder(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + req.Status})
		return
	}
	h.applyStatus(c, status)
}

func (h *handlers) transition(status domain.OrderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.applyStatus(c, status)
	}
}

func (h *handlers) applyStatus(c *gin.Context, status domain.OrderStatus) {
	o, err := h.deps.OrderSvc.UpdateOrder(c.Request.Context(), status, currentProfile(c).StudentID, c.Param("id"))
	if err != nil {
		h.writeError(c, "update order", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *handlers) cancelOrder(c *gin.Context) {
	if err := h.deps.OrderSvc.Cancel(c.Request.Context(), currentProfile(c).StudentID, c.Param("id")); err != nil {
		h.writeError(c, "cancel order", err)
		return
	}
	c.Status(http.StatusNoContent)
}
