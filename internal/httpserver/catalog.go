package httpserver

import (
	"net/http"

	"campus-food-ordering/internal/domain"
	cartsvc "campus-food-ordering/internal/service/cart"
	"github.com/gin-gonic/gin"
)

func (h *handlers) listCategories(c *gin.Context) {
	categories := h.deps.CatalogSvc.ListCategories(c.Request.Context(), c.Query("type"))
	if categories == nil {
		categories = []domain.ItemCategory{}
	}
	c.JSON(http.StatusOK, gin.H{"results": categories, "count": len(categories)})
}

func (h *handlers) itemsByCategory(c *gin.Context) {
	items, err := h.deps.CatalogSvc.ItemsByCategory(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, "items by category", err)
		return
	}
	writeItems(c, items)
}

func (h *handlers) listItems(c *gin.Context) {
	writeItems(c, h.deps.CatalogSvc.ListItems(c.Request.Context()))
}

func (h *handlers) getItem(c *gin.Context) {
	it, err := h.deps.CatalogSvc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get item", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func writeItems(c *gin.Context, items []domain.Item) {
	if items == nil {
		items = []domain.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"results": items, "count": len(items)})
}

type cartRequest struct {
	Actions []cartsvc.UpdateAction `json:"actions"`
}

// previewCart prices a cart from the catalog without persisting anything.
func (h *handlers) previewCart(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	cart := domain.NewCart()
	if err := h.deps.CartSvc.Apply(c.Request.Context(), cart, req.Actions); err != nil {
		h.writeError(c, "preview cart", err)
		return
	}
	c.JSON(http.StatusOK, cartsvc.NewView(cart))
}
