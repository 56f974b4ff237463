package family

import (
	"errors"
	"net/http"
	"time"

	"familymeal/internal/catalog"
	"familymeal/internal/core"
	"familymeal/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	catalog core.CatalogReader
}

func NewHandler(service *Service, catalog core.CatalogReader) *Handler {
	return &Handler{service: service, catalog: catalog}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/families", h.CreateFamily)
	rg.GET("/families", h.ListMyFamilies)
	rg.GET("/families/:id", h.GetFamily)
	rg.PUT("/families/:id", h.UpdateFamily)

	rg.POST("/families/:id/members", h.AddMember)
	rg.GET("/families/:id/members", h.ListMembers)
	rg.PUT("/families/:id/members/:memberId", h.UpdateMember)
	rg.DELETE("/families/:id/members/:memberId", h.RemoveMember)

	rg.GET("/families/:id/allergens", h.Allergens)
	rg.GET("/families/:id/dishes/:dishId/check", h.CheckDish)
}

type familyRequest struct {
	Name        string `json:"name"`
	DigestEmail string `json:"digest_email"`
}

// memberRequest accepts conditions in three shapes: typed objects under
// "conditions", and bare labels or objects under "allergies"/"diseases".
type memberRequest struct {
	Name       string      `json:"name"`
	BirthDate  string      `json:"birth_date"`
	Conditions []Condition `json:"conditions"`
	Allergies  []Condition `json:"allergies"`
	Diseases   []Condition `json:"diseases"`
}

func (r memberRequest) toMember(familyID string) (*Member, error) {
	m := &Member{FamilyID: familyID, Name: r.Name}

	if r.BirthDate != "" {
		t, err := time.Parse("2006-01-02", r.BirthDate)
		if err != nil {
			return nil, errors.Join(ErrInvalidMember, errors.New("birth_date must be YYYY-MM-DD"))
		}
		m.BirthDate = &t
	}

	m.Conditions = append(m.Conditions, r.Conditions...)
	m.Conditions = append(m.Conditions, withKind(KindAllergy, r.Allergies)...)
	m.Conditions = append(m.Conditions, withKind(KindDisease, r.Diseases)...)
	return m, nil
}

func withKind(kind ConditionKind, in []Condition) []Condition {
	out := make([]Condition, len(in))
	for i, c := range in {
		if c.Kind == "" {
			c.Kind = kind
		}
		out[i] = c
	}
	return out
}

// --------------------------------------------------
// Families
// --------------------------------------------------

func (h *Handler) CreateFamily(c *gin.Context) {
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	f, err := h.service.CreateFamily(c.Request.Context(), middleware.UserID(c), req.Name, req.DigestEmail)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListMyFamilies(c *gin.Context) {
	families, err := h.service.ListMyFamilies(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if families == nil {
		families = []*Family{}
	}
	c.JSON(http.StatusOK, families)
}

func (h *Handler) GetFamily(c *gin.Context) {
	f, err := h.service.GetFamily(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) UpdateFamily(c *gin.Context) {
	var req familyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	f, err := h.service.UpdateFamily(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Name, req.DigestEmail)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// --------------------------------------------------
// Members
// --------------------------------------------------

func (h *Handler) AddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	m, err := req.toMember(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	m, err = h.service.AddMember(c.Request.Context(), middleware.UserID(c), m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if members == nil {
		members = []*Member{}
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	m, err := req.toMember(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	m.ID = c.Param("memberId")

	m, err = h.service.UpdateMember(c.Request.Context(), middleware.UserID(c), m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	err := h.service.RemoveMember(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.Param("memberId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Allergens
// --------------------------------------------------

func (h *Handler) Allergens(c *gin.Context) {
	familyID := c.Param("id")
	if err := h.service.authorize(c.Request.Context(), familyID, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}

	allergens, err := h.service.Allergens(c.Request.Context(), familyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allergens": allergens})
}

func (h *Handler) CheckDish(c *gin.Context) {
	familyID := c.Param("id")
	if err := h.service.authorize(c.Request.Context(), familyID, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}

	dish, err := h.catalog.GetDish(c.Request.Context(), c.Param("dishId"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	conflicts, err := h.service.CheckDish(c.Request.Context(), familyID, dish)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dish_id":   dish.ID,
		"safe":      len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ErrInvalidFamily),
		errors.Is(err, ErrInvalidMember),
		errors.Is(err, ErrInvalidCondition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
