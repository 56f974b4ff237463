package shopping

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"familymeal/internal/core"
	"familymeal/internal/middleware"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout   = "2006-01-02"
	defaultTitle = "Shopping list"
)

// Families checks family ownership and lists the digest addresses of the
// families a user owns.
type Families interface {
	core.FamilyAccess
	DigestAddresses(ctx context.Context, ownerID string) ([]string, error)
}

type Handler struct {
	service  *Service
	families Families
}

func NewHandler(service *Service, families Families) *Handler {
	return &Handler{service: service, families: families}
}

// Register mounts the shopping routes on an authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/shopping/lists", h.Generate)
	rg.POST("/shopping/lists/pdf", h.ExportPDF)
	rg.POST("/shopping/lists/email", h.Email)
	rg.GET("/shopping/calendar", h.FromCalendar)
}

type documentRequest struct {
	Request
	Title string   `json:"title"`
	To    []string `json:"to"`
}

func (r documentRequest) title() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return defaultTitle
}

func (h *Handler) Generate(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	list, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) ExportPDF(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	list, err := h.service.Generate(c.Request.Context(), req.Request)
	if err != nil {
		writeError(c, err)
		return
	}

	doc, url, err := h.service.ExportPDF(c.Request.Context(), list, req.title())
	if err != nil {
		writeError(c, err)
		return
	}

	if url != "" {
		c.Header("X-Archive-URL", url)
	}
	c.Header("Content-Disposition", `attachment; filename="shopping-list.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (h *Handler) Email(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	callerEmail := c.GetString(middleware.KeyUserEmail)

	to := req.To
	if len(to) == 0 && callerEmail != "" {
		to = []string{callerEmail}
	}

	to, err := ParseRecipients(to)
	if err != nil {
		writeError(c, err)
		return
	}

	// lists only go to the caller or to digest addresses of their families
	allowed, err := h.families.DigestAddresses(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load family addresses"})
		return
	}
	allowed = append(allowed, strings.ToLower(callerEmail))
	for _, addr := range to {
		if !slices.Contains(allowed, addr) {
			c.JSON(http.StatusForbidden, gin.H{"error": "recipient " + addr + " is not you or one of your families"})
			return
		}
	}

	list, err := h.service.Generate(c.Request.Context(), req.Request)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.service.Email(c.Request.Context(), list, to, req.title()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"sent_to": to,
		"lines":   len(list.Lines),
		"total":   list.Total,
	})
}

// FromCalendar builds the list for ?family_id=..&from=YYYY-MM-DD&to=YYYY-MM-DD.
// The range defaults to the seven days starting today.
func (h *Handler) FromCalendar(c *gin.Context) {
	familyID := c.Query("family_id")
	if familyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "family_id is required"})
		return
	}

	from, to, err := parseRange(c.Query("from"), c.Query("to"), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner, err := h.families.IsOwner(c.Request.Context(), familyID, middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check family access"})
		return
	}
	if !owner {
		writeError(c, ErrForbidden)
		return
	}

	list, err := h.service.FromCalendar(c.Request.Context(), familyID, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func parseRange(fromRaw, toRaw string, now time.Time) (time.Time, time.Time, error) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if fromRaw != "" {
		t, err := time.Parse(dateLayout, fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", fromRaw)
		}
		from = t
	}

	to := from.AddDate(0, 0, 6)
	if toRaw != "" {
		t, err := time.Parse(dateLayout, toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", toRaw)
		}
		to = t
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	return from, to, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAggregationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingredient catalog unavailable, try again later"})
	case errors.Is(err, ErrDishNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrNoNotifier):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
