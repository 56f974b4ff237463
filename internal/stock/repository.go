package stock

import "context"

type Repository interface {
	Upsert(ctx context.Context, item *Item) error
	// Adjust adds delta to the stored quantity, creating the row if needed.
	// The result never drops below zero.
	Adjust(ctx context.Context, familyID, ingredientID string, delta float64, unit string) (*Item, error)
	Get(ctx context.Context, familyID, ingredientID string) (*Item, error)
	List(ctx context.Context, familyID string) ([]*Item, error)
	Delete(ctx context.Context, familyID, ingredientID string) error
}
