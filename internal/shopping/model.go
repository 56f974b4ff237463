package shopping

import "time"

// ManualEntry is an item added by hand to a shopping list. IngredientID is
// optional; without it the entry is matched against the registry by name.
type ManualEntry struct {
	IngredientID string  `json:"ingredient_id,omitempty"`
	Name         string  `json:"name,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	UnitPrice    float64 `json:"unit_price,omitempty"`
	Quantity     float64 `json:"quantity"`
}

// Line is one merged row of a shopping list. Lines are built per request and
// never persisted.
type Line struct {
	Key          string  `json:"key"`
	IngredientID string  `json:"ingredient_id,omitempty"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	LineTotal    float64 `json:"line_total"`
	PhotoURL     string  `json:"photo_url,omitempty"`

	// Units seen for this key that differ from Unit. No conversion is applied.
	UnitConflicts []string `json:"unit_conflicts,omitempty"`
}

// List is the aggregation result handed to renderers and notifiers.
type List struct {
	Lines       []Line    `json:"lines"`
	Total       float64   `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Request selects the dishes (duplicates count once per occurrence) and
// manual entries to aggregate.
type Request struct {
	DishIDs []string      `json:"dish_ids"`
	Manual  []ManualEntry `json:"manual"`
}
