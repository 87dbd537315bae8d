package httpserver

import (
	"errors"
	"net/http"

	"campus-food-ordering/internal/payment"
	checkoutsvc "campus-food-ordering/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

// createCheckoutSession answers {id} on success and {error} with the provider
// message when the provider rejects the request.
func (h *handlers) createCheckoutSession(c *gin.Context) {
	var req checkoutsvc.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	id, err := h.deps.CheckoutSvc.CreateSession(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, checkoutsvc.ErrInvalidCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": payment.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
