package calendar

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"familymeal/internal/middleware"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/families/:id/calendar", h.View)
	rg.GET("/families/:id/calendar/entries", h.ListRange)
	rg.POST("/families/:id/calendar/entries", h.Plan)
	rg.DELETE("/families/:id/calendar/entries/:entryId", h.Remove)
}

type planRequest struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	DishID string `json:"dish_id"`
	Note   string `json:"note"`
}

func (h *Handler) Plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	e, err := h.service.Plan(c.Request.Context(), middleware.UserID(c), &Entry{
		FamilyID: c.Param("id"),
		Date:     date,
		Slot:     Slot(req.Slot),
		DishID:   req.DishID,
		Note:     req.Note,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) Remove(c *gin.Context) {
	err := h.service.Remove(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("entryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRange handles ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) ListRange(c *gin.Context) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}

	entries, err := h.service.ListRange(c.Request.Context(), middleware.UserID(c), c.Param("id"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// View handles ?view=month|week|day&date=YYYY-MM-DD&step=N. Defaults: month,
// today, 0.
func (h *Handler) View(c *gin.Context) {
	kind := ViewKind(c.DefaultQuery("view", string(ViewMonth)))

	anchor := h.now()
	if raw := c.Query("date"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		anchor = t
	}

	step, err := strconv.Atoi(c.DefaultQuery("step", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "step must be an integer"})
		return
	}

	v, err := h.service.View(c.Request.Context(), middleware.UserID(c), c.Param("id"), kind, anchor, step)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrInvalidEntry), errors.Is(err, ErrInvalidView), errors.Is(err, ErrUnknownDish):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
