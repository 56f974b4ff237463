// Package core holds the narrow read interfaces one feature package consumes
// from another, so services depend on behaviour rather than on concrete stores.
package core

import (
	"context"
	"time"

	"familymeal/internal/catalog"
)

// CatalogReader is the read side of the Catalog Store.
// Missing rows are reported as catalog.ErrNotFound; any other error means the
// store could not be reached.
type CatalogReader interface {
	GetIngredient(ctx context.Context, id string) (*catalog.Ingredient, error)
	FindIngredientByName(ctx context.Context, name string) (*catalog.Ingredient, error)
	GetDish(ctx context.Context, id string) (*catalog.Dish, error)
}

// FamilyAccess answers ownership questions for family-scoped resources.
type FamilyAccess interface {
	IsOwner(ctx context.Context, familyID string, userID string) (bool, error)
}

// MealPlanReader lists the dishes planned for a family in [from, to],
// ordered by date and then slot.
type MealPlanReader interface {
	PlannedDishIDs(ctx context.Context, familyID string, from, to time.Time) ([]string, error)
}
