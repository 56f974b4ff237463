package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the catalog routes on an (already authenticated) group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/ingredients", h.ListIngredients)
	rg.POST("/ingredients", h.CreateIngredient)
	rg.GET("/ingredients/:id", h.GetIngredient)
	rg.PUT("/ingredients/:id", h.UpdateIngredient)
	rg.DELETE("/ingredients/:id", h.DeleteIngredient)
	rg.POST("/ingredients/:id/photo", h.UploadPhoto)

	rg.GET("/dishes", h.ListDishes)
	rg.POST("/dishes", h.CreateDish)
	rg.GET("/dishes/:id", h.GetDish)
	rg.DELETE("/dishes/:id", h.DeleteDish)
}

type ingredientRequest struct {
	Name      string   `json:"name"`
	Unit      string   `json:"unit"`
	UnitPrice float64  `json:"unit_price"`
	Allergens []string `json:"allergens"`
}

// --------------------------------------------------
// Ingredients
// --------------------------------------------------

func (h *Handler) CreateIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ing, err := h.service.CreateIngredient(c.Request.Context(), &Ingredient{
		Name:      req.Name,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
		Allergens: req.Allergens,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ing)
}

func (h *Handler) UpdateIngredient(c *gin.Context) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ing, err := h.service.UpdateIngredient(c.Request.Context(), &Ingredient{
		ID:        c.Param("id"),
		Name:      req.Name,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
		Allergens: req.Allergens,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ing)
}

func (h *Handler) GetIngredient(c *gin.Context) {
	ing, err := h.service.GetIngredient(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func (h *Handler) ListIngredients(c *gin.Context) {
	ings, err := h.service.ListIngredients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ingredients"})
		return
	}
	if ings == nil {
		ings = []*Ingredient{}
	}
	c.JSON(http.StatusOK, ings)
}

func (h *Handler) DeleteIngredient(c *gin.Context) {
	if err := h.service.DeleteIngredient(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /catalog/ingredients/:id/photo (multipart field "photo")
func (h *Handler) UploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo is required"})
		return
	}
	defer file.Close()

	url, err := h.service.UploadIngredientPhoto(
		c.Request.Context(),
		c.Param("id"),
		file,
		header.Filename,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// --------------------------------------------------
// Dishes
// --------------------------------------------------

func (h *Handler) CreateDish(c *gin.Context) {
	var req struct {
		Name  string     `json:"name"`
		Items []DishItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dish, err := h.service.CreateDish(c.Request.Context(), req.Name, req.Items)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dish)
}

func (h *Handler) GetDish(c *gin.Context) {
	dish, err := h.service.GetDish(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *Handler) ListDishes(c *gin.Context) {
	dishes, err := h.service.ListDishes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dishes"})
		return
	}
	if dishes == nil {
		dishes = []*Dish{}
	}
	c.JSON(http.StatusOK, dishes)
}

func (h *Handler) DeleteDish(c *gin.Context) {
	if err := h.service.DeleteDish(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidIngredient),
		errors.Is(err, ErrInvalidDish),
		errors.Is(err, ErrUnknownIngredient),
		errors.Is(err, ErrInvalidPhoto):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
