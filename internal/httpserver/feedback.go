package httpserver

import (
	"net/http"

	"campus-food-ordering/internal/domain"
	"github.com/gin-gonic/gin"
)

type feedbackRequest struct {
	Message string `json:"message"`
}

func (h *handlers) listFeedback(c *gin.Context) {
	list := h.deps.FeedbackSvc.List(c.Request.Context())
	if list == nil {
		list = []domain.Feedback{}
	}
	c.JSON(http.StatusOK, gin.H{"results": list, "count": len(list)})
}

func (h *handlers) createFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	fb, err := h.deps.FeedbackSvc.Create(c.Request.Context(), req.Message)
	if err != nil {
		h.writeError(c, "create feedback", err)
		return
	}
	c.JSON(http.StatusCreated, fb)
}

func (h *handlers) updateFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	fb, err := h.deps.FeedbackSvc.Update(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		h.writeError(c, "update feedback", err)
		return
	}
	c.JSON(http.StatusOK, fb)
}

func (h *handlers) deleteFeedback(c *gin.Context) {
	if err := h.deps.FeedbackSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "delete feedback", err)
		return
	}
	c.Status(http.StatusNoContent)
}
