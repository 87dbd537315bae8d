package httpserver

import (
	"errors"
	"net/http"

	"campus-food-ordering/internal/domain"
	cartsvc "campus-food-ordering/internal/service/cart"
	checkoutsvc "campus-food-ordering/internal/service/checkout"
	feedbacksvc "campus-food-ordering/internal/service/feedback"
	ordersvc "campus-food-ordering/internal/service/order"
	profilesvc "campus-food-ordering/internal/service/profile"
	"github.com/gin-gonic/gin"
)

var badRequest = []error{
	ordersvc.ErrInvalidInput,
	cartsvc.ErrEmptyCart,
	cartsvc.ErrItemNotFound,
	cartsvc.ErrInvalidAction,
	profilesvc.ErrInvalidInput,
	feedbacksvc.ErrInvalidMessage,
	checkoutsvc.ErrInvalidCart,
}

// statusFor maps service and repository errors to HTTP status codes.
func statusFor(err error) int {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, ordersvc.ErrConfirmationPending):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ordersvc.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, profilesvc.ErrInvalidCredentials),
		errors.Is(err, profilesvc.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) writeError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Printf("http: %s path=%s error=%v", action, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
