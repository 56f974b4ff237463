package catalog

import "context"

// Repository defines all storage operations for the catalog.
// Every implementation returns ErrNotFound for missing rows.
type Repository interface {

	// -------------------------------
	// Ingredients
	// -------------------------------

	CreateIngredient(ctx context.Context, ing *Ingredient) error
	UpdateIngredient(ctx context.Context, ing *Ingredient) error
	DeleteIngredient(ctx context.Context, id string) error
	GetIngredient(ctx context.Context, id string) (*Ingredient, error)

	// Case-insensitive exact match on the (trimmed) name.
	FindIngredientByName(ctx context.Context, name string) (*Ingredient, error)

	ListIngredients(ctx context.Context) ([]*Ingredient, error)
	SetIngredientPhoto(ctx context.Context, id string, url string) error

	// -------------------------------
	// Dishes
	// -------------------------------

	CreateDish(ctx context.Context, dish *Dish) error
	GetDish(ctx context.Context, id string) (*Dish, error)
	ListDishes(ctx context.Context) ([]*Dish, error)
	DeleteDish(ctx context.Context, id string) error
}
