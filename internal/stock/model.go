package stock

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("stock item not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrUnknownIngredient = errors.New("unknown ingredient")
)

// Item is how much of one ingredient a family has at home.
type Item struct {
	FamilyID     string    `json:"family_id"`
	IngredientID string    `json:"ingredient_id"`
	Name         string    `json:"name,omitempty"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	UpdatedAt    time.Time `json:"updated_at"`
}
