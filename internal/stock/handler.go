package stock

import (
	"errors"
	"net/http"

	"familymeal/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/families/:id/stock", h.List)
	rg.PUT("/families/:id/stock/:ingredientId", h.Set)
	rg.POST("/families/:id/stock/:ingredientId/adjust", h.Adjust)
	rg.DELETE("/families/:id/stock/:ingredientId", h.Remove)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []*Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Set(c *gin.Context) {
	var req struct {
		Quantity *float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	item, err := h.service.Set(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("ingredientId"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Adjust(c *gin.Context) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.service.Adjust(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("ingredientId"), req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("ingredientId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrUnknownIngredient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
