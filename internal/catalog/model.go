package catalog

import "time"

// Ingredient is one entry of the flat ingredient registry.
type Ingredient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`       // kg | g | l | ml | piece | pinch ...
	UnitPrice float64   `json:"unit_price"` // 0 when unknown
	PhotoURL  string    `json:"photo_url,omitempty"`
	Allergens []string  `json:"allergens,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Dish is a named, ordered list of ingredient requirements.
type Dish struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Items     []DishItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// DishItem references an ingredient by ID. Name and Unit are a snapshot taken
// when the dish was saved and are only used if the ingredient disappears.
type DishItem struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Name         string  `json:"name,omitempty"`
	Unit         string  `json:"unit,omitempty"`
}
