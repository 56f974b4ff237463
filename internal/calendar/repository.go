package calendar

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
	// ListRange returns the family's entries with from <= date <= to,
	// ordered by date, then slot.
	ListRange(ctx context.Context, familyID string, from, to time.Time) ([]Entry, error)
}
